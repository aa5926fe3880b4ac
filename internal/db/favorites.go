package db

import (
	"context"
	"database/sql"
	"fmt"
)

// ListFavorites returns user's favorite recipe ids, oldest first.
func ListFavorites(db *sql.DB, user string) ([]int64, error) {
	rows, err := db.Query(`
		SELECT recipe_id FROM favorites
		WHERE username = ?
		ORDER BY created_at, recipe_id
	`, user)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorite row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorite rows: %w", err)
	}
	return ids, nil
}

// AddFavorite marks a recipe as favorite. Adding twice is a no-op.
func AddFavorite(db *sql.DB, user string, recipeID int64) error {
	if _, err := db.Exec(`
		INSERT INTO favorites (username, recipe_id) VALUES (?, ?)
		ON CONFLICT(username, recipe_id) DO NOTHING
	`, user, recipeID); err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite unmarks a recipe. Removing a missing favorite is a no-op.
func RemoveFavorite(db *sql.DB, user string, recipeID int64) error {
	if _, err := db.Exec(`DELETE FROM favorites WHERE username = ? AND recipe_id = ?`, user, recipeID); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// FavoriteStore keeps favorites in the local database, keyed by the
// credential, which for local use is the user name.
type FavoriteStore struct {
	DB *sql.DB
}

func (s FavoriteStore) ListFavorites(ctx context.Context, credential string) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ListFavorites(s.DB, credential)
}

func (s FavoriteStore) AddFavorite(ctx context.Context, credential string, recipeID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return AddFavorite(s.DB, credential, recipeID)
}

func (s FavoriteStore) RemoveFavorite(ctx context.Context, credential string, recipeID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return RemoveFavorite(s.DB, credential, recipeID)
}
