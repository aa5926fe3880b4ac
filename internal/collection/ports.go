package collection

import (
	"context"

	"ratemyrecipe/internal/model"
)

// RecipeSource provides the full recipe list. Implementations are the remote
// API client and the local snapshot cache.
type RecipeSource interface {
	ListRecipes(ctx context.Context) ([]model.Recipe, error)
}

// FavoriteStore persists a user's favorite recipe ids. The credential is
// passed through untouched.
type FavoriteStore interface {
	ListFavorites(ctx context.Context, credential string) ([]int64, error)
	AddFavorite(ctx context.Context, credential string, recipeID int64) error
	RemoveFavorite(ctx context.Context, credential string, recipeID int64) error
}

// AuthContext reports whether a credential is available and returns it.
type AuthContext interface {
	Credential() (string, bool)
}
