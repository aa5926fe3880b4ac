package collection

import (
	"errors"
	"fmt"

	"ratemyrecipe/internal/model"
)

var (
	// ErrUnauthenticated is returned when a favorite mutation is attempted
	// without a credential.
	ErrUnauthenticated = errors.New("not signed in")
	// ErrNotLoaded is returned by operations that need a loaded collection.
	ErrNotLoaded = errors.New("recipes not loaded")
	// ErrLoadInProgress is returned when Load is called while one is in flight.
	ErrLoadInProgress = errors.New("load already in progress")
)

// Load stages.
const (
	StageRecipes   = "recipes"
	StageFavorites = "favorites"
)

// LoadError reports a failed fetch of recipes or favorites.
type LoadError struct {
	Stage string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// FavoriteSyncError reports a failed remote favorite mutation. The local
// favorite set still holds the optimistic value.
type FavoriteSyncError struct {
	RecipeID int64
	Op       model.FavoriteOp
	Err      error
}

func (e *FavoriteSyncError) Error() string {
	return fmt.Sprintf("failed to %s favorite %d: %v", e.Op, e.RecipeID, e.Err)
}

func (e *FavoriteSyncError) Unwrap() error { return e.Err }
