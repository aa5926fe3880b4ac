package model

import (
	"fmt"
	"strings"
)

// ValidationError reports a malformed recipe field.
type ValidationError struct {
	RecipeID int64
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.RecipeID == 0 {
		return fmt.Sprintf("invalid recipe: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid recipe %d: %s %s", e.RecipeID, e.Field, e.Reason)
}

// RecipeRecord is a recipe as decoded from an external source, before
// validation. Optional numeric fields are pointers so absence can be told
// apart from zero.
type RecipeRecord struct {
	ID              int64
	Title           string
	Description     string
	Category        string
	Difficulty      string
	Rating          *float64
	RatingCount     int
	CookTimeMinutes *int
	Servings        *int
	Ingredients     []string
	Instructions    []string
	ImageURL        string
	Author          string
}

// Recipe validates the record and converts it. Required: ID, Title, Category.
// Everything else falls back to the documented default when absent and is
// rejected when present but out of range.
func (r RecipeRecord) Recipe() (Recipe, error) {
	invalid := func(field, reason string) (Recipe, error) {
		return Recipe{}, &ValidationError{RecipeID: r.ID, Field: field, Reason: reason}
	}

	if r.ID <= 0 {
		return invalid("id", "must be positive")
	}
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return invalid("title", "is required")
	}
	if strings.TrimSpace(r.Category) == "" {
		return invalid("category", "is required")
	}
	category, err := ParseCategory(r.Category)
	if err != nil || category == CategoryAll {
		return invalid("category", fmt.Sprintf("%q is not a known category", r.Category))
	}
	difficulty, err := ParseDifficulty(r.Difficulty)
	if err != nil {
		return invalid("difficulty", fmt.Sprintf("%q is not a known difficulty", r.Difficulty))
	}

	rec := Recipe{
		ID:          r.ID,
		Title:       title,
		Description: r.Description,
		Category:    category,
		Difficulty:  difficulty,
		RatingCount: r.RatingCount,
		ImageURL:    r.ImageURL,
		Author:      r.Author,
	}
	if r.Rating != nil {
		if *r.Rating < 0 || *r.Rating > 5 {
			return invalid("rating", fmt.Sprintf("%.2f is outside 0-5", *r.Rating))
		}
		rec.Rating = *r.Rating
	}
	if r.CookTimeMinutes != nil {
		if *r.CookTimeMinutes < 0 {
			return invalid("cookTime", "must not be negative")
		}
		rec.CookTimeMinutes = *r.CookTimeMinutes
	}
	if r.Servings != nil {
		if *r.Servings < 0 {
			return invalid("servings", "must not be negative")
		}
		rec.Servings = *r.Servings
	}
	rec.Ingredients = nonBlank(r.Ingredients)
	rec.Instructions = nonBlank(r.Instructions)
	return rec, nil
}

// ValidateNewRecipe checks a recipe before it is submitted for creation.
func ValidateNewRecipe(r NewRecipe) error {
	if strings.TrimSpace(r.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if r.Category == "" || r.Category == CategoryAll || !r.Category.Valid() {
		return &ValidationError{Field: "category", Reason: "is required"}
	}
	if r.CookTimeMinutes < 0 {
		return &ValidationError{Field: "cook time", Reason: "must not be negative"}
	}
	if r.Servings < 0 {
		return &ValidationError{Field: "servings", Reason: "must not be negative"}
	}
	if r.Difficulty != "" {
		if _, err := ParseDifficulty(string(r.Difficulty)); err != nil {
			return &ValidationError{Field: "difficulty", Reason: err.Error()}
		}
	}
	return nil
}

// ValidateRating checks a star rating.
func ValidateRating(r NewRating) error {
	if r.Stars < 1 || r.Stars > 5 {
		return &ValidationError{RecipeID: r.RecipeID, Field: "stars", Reason: "must be between 1 and 5"}
	}
	return nil
}

func nonBlank(lines []string) []string {
	var out []string
	for _, l := range lines {
		if s := strings.TrimSpace(l); s != "" {
			out = append(out, s)
		}
	}
	return out
}
