package model

// Recipe represents a recipe as served by the backend.
// Recipes are read-only once loaded.
type Recipe struct {
	ID              int64
	Title           string
	Description     string
	Category        Category
	Rating          float64 // 0.0-5.0
	RatingCount     int
	CookTimeMinutes int // 0 when unknown
	Servings        int // 0 when unknown
	Difficulty      Difficulty
	Ingredients     []string
	Instructions    []string
	ImageURL        string
	Author          string
}

// NewRecipe represents data for creating a recipe.
type NewRecipe struct {
	Title           string
	Description     string
	Category        Category
	CookTimeMinutes int
	Servings        int
	Difficulty      Difficulty
	Ingredients     []string
	Instructions    []string
}

// NewRating represents a star rating submitted for a recipe.
type NewRating struct {
	RecipeID int64
	Stars    int // 1-5
	Comment  string
}

// Session represents a signed-in user as returned by the login endpoint.
type Session struct {
	Token    string
	UserID   int64
	Username string
	Email    string
	Roles    []string
}

// FavoriteOp names a favorite mutation.
type FavoriteOp string

const (
	FavoriteAdd    FavoriteOp = "add"
	FavoriteRemove FavoriteOp = "remove"
)

// FavoriteChange describes one optimistic favorite toggle.
type FavoriteChange struct {
	RecipeID int64
	Op       FavoriteOp
	// Generation is the load the change was applied on top of.
	Generation uint64
}

// Inverse returns the change that undoes c.
func (c FavoriteChange) Inverse() FavoriteChange {
	op := FavoriteAdd
	if c.Op == FavoriteAdd {
		op = FavoriteRemove
	}
	return FavoriteChange{RecipeID: c.RecipeID, Op: op, Generation: c.Generation}
}
