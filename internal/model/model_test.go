package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"dessert", CategoryDessert},
		{"Dessert", CategoryDessert},
		{"  DESSERT ", CategoryDessert},
		{"Main", CategoryMainCourse},
		{"Main Course", CategoryMainCourse},
		{"Hauptgericht", CategoryMainCourse},
		{"Frühstück", CategoryBreakfast},
		{"Fisch", CategoryFish},
		{"alle", CategoryAll},
		{"all", CategoryAll},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseCategory("sushi")
	assert.Error(t, err)
}

func TestCategoryCycle(t *testing.T) {
	assert.Equal(t, CategoryMainCourse, CategoryAll.Next())
	assert.Equal(t, CategoryAll, CategorySoup.Next())
	assert.Equal(t, CategorySoup, CategoryAll.Prev())

	c := CategoryAll
	for range len(Categories()) + 1 {
		c = c.Next()
	}
	assert.Equal(t, CategoryAll, c)
}

func TestRecipeRecordDefaults(t *testing.T) {
	r, err := RecipeRecord{ID: 7, Title: " Tomato Soup ", Category: "Suppe"}.Recipe()
	require.NoError(t, err)

	assert.Equal(t, "Tomato Soup", r.Title)
	assert.Equal(t, CategorySoup, r.Category)
	assert.Equal(t, DefaultDifficulty, r.Difficulty)
	assert.Zero(t, r.Rating)
	assert.Zero(t, r.CookTimeMinutes)
	assert.Empty(t, r.Ingredients)
}

func TestRecipeRecordRejectsMalformed(t *testing.T) {
	rating := 7.5
	negative := -5

	tests := []struct {
		name  string
		rec   RecipeRecord
		field string
	}{
		{"missing id", RecipeRecord{Title: "x", Category: "soup"}, "id"},
		{"blank title", RecipeRecord{ID: 1, Title: "  ", Category: "soup"}, "title"},
		{"missing category", RecipeRecord{ID: 1, Title: "x"}, "category"},
		{"unknown category", RecipeRecord{ID: 1, Title: "x", Category: "snacks"}, "category"},
		{"all is not a category", RecipeRecord{ID: 1, Title: "x", Category: "all"}, "category"},
		{"rating out of range", RecipeRecord{ID: 1, Title: "x", Category: "soup", Rating: &rating}, "rating"},
		{"negative servings", RecipeRecord{ID: 1, Title: "x", Category: "soup", Servings: &negative}, "servings"},
		{"unknown difficulty", RecipeRecord{ID: 1, Title: "x", Category: "soup", Difficulty: "extreme"}, "difficulty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.rec.Recipe()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidateNewRecipe(t *testing.T) {
	assert.NoError(t, ValidateNewRecipe(NewRecipe{Title: "Pancakes", Category: CategoryBreakfast}))
	assert.Error(t, ValidateNewRecipe(NewRecipe{Title: "", Category: CategoryBreakfast}))
	assert.Error(t, ValidateNewRecipe(NewRecipe{Title: "Pancakes", Category: CategoryAll}))
	assert.Error(t, ValidateNewRecipe(NewRecipe{Title: "Pancakes", Category: CategoryBreakfast, Servings: -1}))
}

func TestFavoriteChangeInverse(t *testing.T) {
	c := FavoriteChange{RecipeID: 3, Op: FavoriteAdd}
	assert.Equal(t, FavoriteChange{RecipeID: 3, Op: FavoriteRemove}, c.Inverse())
	assert.Equal(t, c, c.Inverse().Inverse())
}
