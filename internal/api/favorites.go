package api

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// ListFavorites returns the favorite recipe ids of the signed-in user.
func (c *Client) ListFavorites(ctx context.Context, credential string) ([]int64, error) {
	var payload []favoriteDTO
	err := c.do(ctx, request{
		method:     "GET",
		endpoint:   "/favorites",
		path:       "/favorites",
		credential: credential,
	}, &payload)
	if err != nil {
		return nil, err
	}

	// Entries that name no recipe are skipped so one odd row does not hide
	// every other favorite.
	ids := make([]int64, 0, len(payload))
	for i, f := range payload {
		id := f.recipeID()
		if id <= 0 {
			c.log.Debug("skipping favorite entry without recipe id", zap.Int("index", i))
			continue
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// AddFavorite marks a recipe as favorite.
func (c *Client) AddFavorite(ctx context.Context, credential string, recipeID int64) error {
	return c.do(ctx, request{
		method:     "POST",
		endpoint:   "/favorites",
		path:       "/favorites",
		credential: credential,
		body:       map[string]int64{"recipeId": recipeID},
	}, nil)
}

// RemoveFavorite unmarks a recipe.
func (c *Client) RemoveFavorite(ctx context.Context, credential string, recipeID int64) error {
	return c.do(ctx, request{
		method:     "DELETE",
		endpoint:   "/favorites/{id}",
		path:       fmt.Sprintf("/favorites/%d", recipeID),
		credential: credential,
	}, nil)
}

// favoriteDTO is either {"recipeId": n}, a full recipe object {"id": n, ...}
// or a favorite entity wrapping the recipe.
type favoriteDTO struct {
	RecipeID int64           `json:"recipeId"`
	ID       int64           `json:"id"`
	Title    *string         `json:"title"`
	Recipe   json.RawMessage `json:"recipe"`
}

func (f favoriteDTO) recipeID() int64 {
	if f.RecipeID > 0 {
		return f.RecipeID
	}
	if len(f.Recipe) > 0 {
		var inner struct {
			ID int64 `json:"id"`
		}
		if json.Unmarshal(f.Recipe, &inner) == nil && inner.ID > 0 {
			return inner.ID
		}
	}
	// A bare {"id": n} only names a recipe when it looks like one; a favorite
	// entity's own id is not a recipe id.
	if f.Title != nil {
		return f.ID
	}
	return 0
}
