package api

import (
	"context"
	"fmt"

	"ratemyrecipe/internal/model"
)

// RateRecipe adds or replaces the user's rating for a recipe.
func (c *Client) RateRecipe(ctx context.Context, credential string, r model.NewRating) error {
	if err := model.ValidateRating(r); err != nil {
		return err
	}
	return c.do(ctx, request{
		method:     "POST",
		endpoint:   "/ratings/{id}",
		path:       fmt.Sprintf("/ratings/%d", r.RecipeID),
		credential: credential,
		body: struct {
			Stars   int    `json:"stars"`
			Comment string `json:"comment,omitempty"`
		}{r.Stars, r.Comment},
	}, nil)
}
