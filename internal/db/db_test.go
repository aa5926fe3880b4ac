package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"ratemyrecipe/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRecipes() []model.Recipe {
	return []model.Recipe{
		{ID: 9, Title: "Tomato Soup", Category: model.CategorySoup, Rating: 3.5, RatingCount: 2,
			CookTimeMinutes: 30, Servings: 4, Difficulty: model.DifficultyEasy,
			Ingredients: []string{"tomatoes", "cream"}, Instructions: []string{"Simmer", "Blend"}},
		{ID: 2, Title: "Tiramisu", Description: "Coffee dessert", Category: model.CategoryDessert,
			Difficulty: model.DifficultyMedium, Author: "anna", ImageURL: "https://example.com/t.jpg"},
	}
}

func TestSaveAndListRecipesKeepsOrder(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, SaveRecipes(db, sampleRecipes()))
	got, err := ListRecipes(db)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, sampleRecipes()[0], got[0])
	assert.Equal(t, int64(2), got[1].ID)
	assert.Equal(t, "anna", got[1].Author)
	assert.Zero(t, got[1].CookTimeMinutes)
	assert.Nil(t, got[1].Ingredients)
}

func TestSaveRecipesReplacesSnapshot(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, SaveRecipes(db, sampleRecipes()))
	require.NoError(t, SaveRecipes(db, sampleRecipes()[1:]))

	got, err := ListRecipes(db)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Tiramisu", got[0].Title)
}

func TestRecipeCache(t *testing.T) {
	db := openTestDB(t)
	cache := RecipeCache{DB: db}

	_, err := cache.ListRecipes(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)

	require.NoError(t, SaveRecipes(db, nil))
	got, err := cache.ListRecipes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	_, ok, err := SnapshotTime(db)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFavoriteStoreIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	store := FavoriteStore{DB: db}
	ctx := context.Background()

	require.NoError(t, store.AddFavorite(ctx, "me", 4))
	require.NoError(t, store.AddFavorite(ctx, "me", 4))
	require.NoError(t, store.AddFavorite(ctx, "me", 1))
	require.NoError(t, store.AddFavorite(ctx, "you", 7))

	ids, err := store.ListFavorites(ctx, "me")
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 4}, ids)

	require.NoError(t, store.RemoveFavorite(ctx, "me", 4))
	require.NoError(t, store.RemoveFavorite(ctx, "me", 4))
	ids, err = store.ListFavorites(ctx, "me")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)

	ids, err = store.ListFavorites(ctx, "you")
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids)
}

func TestFavoriteStoreHonorsCancelledContext(t *testing.T) {
	store := FavoriteStore{DB: openTestDB(t)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.AddFavorite(ctx, "me", 1), context.Canceled)
}
