package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatRating formats a 0-5 rating as "4.5" or "—" when unrated.
func FormatRating(rating float64, count int) string {
	if rating <= 0 && count == 0 {
		return "—"
	}
	return formatRatingNumber(rating)
}

// FormatRatingWithStar formats a rating as "4.5 ★" for display.
func FormatRatingWithStar(rating float64, count int) string {
	s := FormatRating(rating, count)
	if s == "—" {
		return s
	}
	return s + " ★"
}

// FormatRatingStars formats a 0-5 rating as stars (e.g., "★★★★☆").
func FormatRatingStars(rating float64) string {
	stars := int(math.Round(rating))
	if stars < 0 {
		stars = 0
	}
	if stars > 5 {
		stars = 5
	}
	return strings.Repeat("★", stars) + strings.Repeat("☆", 5-stars)
}

// FormatCookTime formats minutes as "45 min" or "1h 30m". Zero means unknown.
func FormatCookTime(minutes int) string {
	if minutes <= 0 {
		return "—"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}

// FormatServings formats a serving count. Zero means unknown.
func FormatServings(n int) string {
	switch {
	case n <= 0:
		return "—"
	case n == 1:
		return "1 serving"
	default:
		return fmt.Sprintf("%d servings", n)
	}
}

// FormatAge formats how long ago t was: "just now", "5m ago", "3h ago", "Jan 02".
func FormatAge(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case t.Year() == now.Year():
		return t.Format("Jan 02")
	default:
		return t.Format("Jan 02 '06")
	}
}

// ParseMinutes parses "45", "45m", "1h30m" or "1:30" into minutes. Empty
// input is allowed and returns 0.
func ParseMinutes(input string) (int, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSuffix(s, "min"), "m")); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("cook time must not be negative")
		}
		return n, nil
	}
	if h, m, ok := strings.Cut(s, ":"); ok {
		hn, err1 := strconv.Atoi(h)
		mn, err2 := strconv.Atoi(m)
		if err1 == nil && err2 == nil && hn >= 0 && mn >= 0 && mn < 60 {
			return hn*60 + mn, nil
		}
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return int(d.Minutes()), nil
	}
	return 0, fmt.Errorf("invalid cook time %q", input)
}

// SplitList splits sep-separated input into trimmed, non-empty items.
func SplitList(input, sep string) []string {
	var out []string
	for _, part := range strings.Split(input, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func formatRatingNumber(v float64) string {
	// Keep one decimal at most, but avoid trailing .0 for whole values.
	s := strconv.FormatFloat(v, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	return s
}

// TruncateString truncates a string to maxLen and adds "..." if needed.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
