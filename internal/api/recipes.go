package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ratemyrecipe/internal/model"
)

// The backend stores the German labels.
var categoryWireNames = map[model.Category]string{
	model.CategoryMainCourse: "Hauptgericht",
	model.CategoryStarter:    "Vorspeise",
	model.CategoryBreakfast:  "Frühstück",
	model.CategoryDessert:    "Dessert",
	model.CategoryVegetarian: "Vegetarisch",
	model.CategoryVegan:      "Vegan",
	model.CategoryFish:       "Fisch",
	model.CategorySalad:      "Salat",
	model.CategorySoup:       "Suppe",
}

var difficultyWireNames = map[model.Difficulty]string{
	model.DifficultyEasy:   "Einfach",
	model.DifficultyMedium: "Mittel",
	model.DifficultyHard:   "Schwer",
}

// ListRecipes fetches every recipe. Any malformed record fails the whole call
// with a *model.ValidationError.
func (c *Client) ListRecipes(ctx context.Context) ([]model.Recipe, error) {
	var payload []recipeDTO
	err := c.do(ctx, request{method: "GET", endpoint: "/recipes", path: "/recipes"}, &payload)
	if err != nil {
		return nil, err
	}

	recipes := make([]model.Recipe, 0, len(payload))
	for _, dto := range payload {
		r, err := dto.record().Recipe()
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

// GetRecipe fetches a single recipe.
func (c *Client) GetRecipe(ctx context.Context, id int64) (model.Recipe, error) {
	var dto recipeDTO
	err := c.do(ctx, request{
		method:   "GET",
		endpoint: "/recipes/{id}",
		path:     fmt.Sprintf("/recipes/%d", id),
	}, &dto)
	if err != nil {
		return model.Recipe{}, err
	}
	return dto.record().Recipe()
}

// CreateRecipe submits a new recipe and returns the id the backend assigned.
func (c *Client) CreateRecipe(ctx context.Context, credential string, r model.NewRecipe) (int64, error) {
	if err := model.ValidateNewRecipe(r); err != nil {
		return 0, err
	}
	difficulty := r.Difficulty
	if difficulty == "" {
		difficulty = model.DefaultDifficulty
	}
	body := createRecipeDTO{
		Title:        strings.TrimSpace(r.Title),
		Description:  r.Description,
		Category:     categoryWireNames[r.Category],
		CookTime:     r.CookTimeMinutes,
		Servings:     r.Servings,
		Difficulty:   difficultyWireNames[difficulty],
		Ingredients:  r.Ingredients,
		Instructions: strings.Join(r.Instructions, "\n"),
	}

	var created recipeDTO
	err := c.do(ctx, request{
		method:     "POST",
		endpoint:   "/recipes",
		path:       "/recipes",
		credential: credential,
		body:       body,
	}, &created)
	if err != nil {
		return 0, err
	}
	return created.ID, nil
}

type createRecipeDTO struct {
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Category     string   `json:"category"`
	CookTime     int      `json:"cookTime,omitempty"`
	Servings     int      `json:"servings,omitempty"`
	Difficulty   string   `json:"difficulty"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
}

// recipeDTO accepts both the entity the backend serializes and the shape the
// web client's seed data uses.
type recipeDTO struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	Difficulty      string     `json:"difficulty"`
	Rating          *float64   `json:"rating"`
	AverageRating   *float64   `json:"averageRating"`
	RatingCount     int        `json:"ratingCount"`
	CookTime        *int       `json:"cookTime"`
	CookTimeMinutes *int       `json:"cookTimeMinutes"`
	Servings        *int       `json:"servings"`
	Ingredients     []string   `json:"ingredients"`
	Instructions    lines      `json:"instructions"`
	ImageURL        string     `json:"imageUrl"`
	Author          authorName `json:"author"`
}

func (d recipeDTO) record() model.RecipeRecord {
	rating := d.Rating
	if rating == nil {
		rating = d.AverageRating
	}
	cook := d.CookTimeMinutes
	if cook == nil {
		cook = d.CookTime
	}
	return model.RecipeRecord{
		ID:              d.ID,
		Title:           d.Title,
		Description:     d.Description,
		Category:        d.Category,
		Difficulty:      d.Difficulty,
		Rating:          rating,
		RatingCount:     d.RatingCount,
		CookTimeMinutes: cook,
		Servings:        d.Servings,
		Ingredients:     d.Ingredients,
		Instructions:    []string(d.Instructions),
		ImageURL:        d.ImageURL,
		Author:          string(d.Author),
	}
}

// lines decodes either a JSON array of strings or a single newline-separated
// string.
type lines []string

func (l *lines) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*l = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("instructions: %w", err)
	}
	*l = strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	return nil
}

// authorName decodes either a plain name or a user object.
type authorName string

func (a *authorName) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*a = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = authorName(s)
	case data[0] == '{':
		var u struct {
			Username string `json:"username"`
		}
		if err := json.Unmarshal(data, &u); err != nil {
			return err
		}
		*a = authorName(u.Username)
	}
	return nil
}
