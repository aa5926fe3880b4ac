package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ratemyrecipe/internal/model"
)

// ErrNoSnapshot is returned by RecipeCache when nothing has been cached yet.
var ErrNoSnapshot = errors.New("no cached recipes; run once while online")

const snapshotKey = "recipes_saved_at"

// SaveRecipes replaces the cached snapshot with recipes, keeping their order.
func SaveRecipes(db *sql.DB, recipes []model.Recipe) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM recipes`); err != nil {
		return fmt.Errorf("failed to clear recipes: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO recipes (id, position, title, description, category, rating, rating_count,
			cook_time, servings, difficulty, ingredients, instructions, image_url, author)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range recipes {
		ingredients, err := encodeList(r.Ingredients)
		if err != nil {
			return err
		}
		instructions, err := encodeList(r.Instructions)
		if err != nil {
			return err
		}
		var cookTime, servings interface{}
		if r.CookTimeMinutes > 0 {
			cookTime = r.CookTimeMinutes
		}
		if r.Servings > 0 {
			servings = r.Servings
		}
		if _, err := stmt.Exec(r.ID, i, r.Title, r.Description, string(r.Category), r.Rating, r.RatingCount,
			cookTime, servings, string(r.Difficulty), ingredients, instructions, r.ImageURL, r.Author); err != nil {
			return fmt.Errorf("failed to insert recipe %d: %w", r.ID, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO cache_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, snapshotKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to record snapshot time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// ListRecipes returns the cached snapshot in its original order. Rows are
// validated on the way out like any other recipe source.
func ListRecipes(db *sql.DB) ([]model.Recipe, error) {
	rows, err := db.Query(`
		SELECT id, title, COALESCE(description, ''), category, rating, rating_count,
			cook_time, servings, COALESCE(difficulty, ''), ingredients, instructions,
			COALESCE(image_url, ''), COALESCE(author, '')
		FROM recipes
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var results []model.Recipe
	for rows.Next() {
		var rec model.RecipeRecord
		var rating sql.NullFloat64
		var cookTime, servings sql.NullInt64
		var ingredients, instructions string
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.Category, &rating, &rec.RatingCount,
			&cookTime, &servings, &rec.Difficulty, &ingredients, &instructions, &rec.ImageURL, &rec.Author); err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		if rating.Valid {
			rec.Rating = &rating.Float64
		}
		if cookTime.Valid {
			v := int(cookTime.Int64)
			rec.CookTimeMinutes = &v
		}
		if servings.Valid {
			v := int(servings.Int64)
			rec.Servings = &v
		}
		if err := json.Unmarshal([]byte(ingredients), &rec.Ingredients); err != nil {
			return nil, fmt.Errorf("recipe %d: bad ingredients column: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(instructions), &rec.Instructions); err != nil {
			return nil, fmt.Errorf("recipe %d: bad instructions column: %w", rec.ID, err)
		}

		r, err := rec.Recipe()
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipe rows: %w", err)
	}

	return results, nil
}

// SnapshotTime reports when the snapshot was last saved.
func SnapshotTime(db *sql.DB) (time.Time, bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM cache_meta WHERE key = ?`, snapshotKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read snapshot time: %w", err)
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("bad snapshot time %q: %w", value, err)
	}
	return t, true, nil
}

// RecipeCache serves the cached snapshot as a recipe source.
type RecipeCache struct {
	DB *sql.DB
}

// ListRecipes implements collection.RecipeSource. An empty cache is an error
// so offline mode never shows a silently empty list.
func (c RecipeCache) ListRecipes(ctx context.Context) ([]model.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, ok, err := SnapshotTime(c.DB)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoSnapshot
	}
	return ListRecipes(c.DB)
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(b), nil
}
