package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRating(t *testing.T) {
	assert.Equal(t, "—", FormatRating(0, 0))
	assert.Equal(t, "0", FormatRating(0, 3))
	assert.Equal(t, "4", FormatRating(4.0, 1))
	assert.Equal(t, "4.7", FormatRating(4.66, 9))
	assert.Equal(t, "4.5 ★", FormatRatingWithStar(4.5, 2))
	assert.Equal(t, "—", FormatRatingWithStar(0, 0))
}

func TestFormatRatingStars(t *testing.T) {
	assert.Equal(t, "☆☆☆☆☆", FormatRatingStars(0))
	assert.Equal(t, "★★★★☆", FormatRatingStars(3.6))
	assert.Equal(t, "★★★★★", FormatRatingStars(7))
}

func TestFormatCookTime(t *testing.T) {
	assert.Equal(t, "—", FormatCookTime(0))
	assert.Equal(t, "45 min", FormatCookTime(45))
	assert.Equal(t, "1h", FormatCookTime(60))
	assert.Equal(t, "1h 05m", FormatCookTime(65))
}

func TestFormatServings(t *testing.T) {
	assert.Equal(t, "—", FormatServings(0))
	assert.Equal(t, "1 serving", FormatServings(1))
	assert.Equal(t, "4 servings", FormatServings(4))
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "just now", FormatAge(now.Add(-10*time.Second), now))
	assert.Equal(t, "5m ago", FormatAge(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3h ago", FormatAge(now.Add(-3*time.Hour), now))
	assert.Equal(t, "Mar 01", FormatAge(now.AddDate(0, 0, -9), now))
	assert.Equal(t, "Dec 31 '24", FormatAge(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), now))
}

func TestParseMinutes(t *testing.T) {
	tests := map[string]int{
		"":      0,
		"45":    45,
		"45m":   45,
		"45min": 45,
		"1:30":  90,
		"1h30m": 90,
		"2h":    120,
	}
	for in, want := range tests {
		got, err := ParseMinutes(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"soon", "-5", "1:75"} {
		_, err := ParseMinutes(bad)
		assert.Error(t, err, bad)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"flour", "eggs"}, SplitList(" flour ; ;eggs ", ";"))
	assert.Nil(t, SplitList("   ", "|"))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "Tirami...", TruncateString("Tiramisu Classico", 9))
	assert.Equal(t, "Ti", TruncateString("Tiramisu", 2))
}
