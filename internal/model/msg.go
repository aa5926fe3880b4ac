package model

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// ToggleOrigin says what triggered a favorite toggle.
type ToggleOrigin int

const (
	ToggleUser ToggleOrigin = iota
	ToggleUndo
	ToggleRedo
)

// FavoriteSyncedMsg is sent when the remote half of a favorite toggle finishes.
type FavoriteSyncedMsg struct {
	Change FavoriteChange
	Origin ToggleOrigin
	Err    error
}

// RecipesLoadedMsg is sent when a fetch started by BeginLoad completes.
type RecipesLoadedMsg struct {
	Recipes   []Recipe
	Favorites []int64
	Err       error
}

// RecipeFetchedMsg carries the full record of a recipe opened in the detail
// screen.
type RecipeFetchedMsg struct {
	Recipe Recipe
	Err    error
}

// RecipeCreatedMsg is sent when a recipe was created on the backend.
type RecipeCreatedMsg struct {
	ID    int64
	Title string
}

// RatingSavedMsg is sent when a rating was accepted by the backend.
type RatingSavedMsg struct {
	RecipeID int64
	Stars    int
}

// FormCancelledMsg is sent when a form is cancelled.
type FormCancelledMsg struct{}

// CredentialsChangedMsg is sent when the stored credential was written or
// removed outside the running program.
type CredentialsChangedMsg struct{}

// Screen represents different app screens.
type Screen int

const (
	ScreenRecipes Screen = iota
	ScreenRecipeDetail
	ScreenRecipeForm
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeInsert
)
