package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS recipes (
    id            INTEGER PRIMARY KEY,
    position      INTEGER NOT NULL,
    title         TEXT NOT NULL,
    description   TEXT,
    category      TEXT NOT NULL,
    rating        REAL CHECK(rating BETWEEN 0 AND 5 OR rating IS NULL),
    rating_count  INTEGER NOT NULL DEFAULT 0,
    cook_time     INTEGER CHECK(cook_time >= 0 OR cook_time IS NULL),
    servings      INTEGER CHECK(servings >= 0 OR servings IS NULL),
    difficulty    TEXT,
    ingredients   TEXT NOT NULL DEFAULT '[]',
    instructions  TEXT NOT NULL DEFAULT '[]',
    image_url     TEXT,
    author        TEXT
);

CREATE TABLE IF NOT EXISTS favorites (
    username      TEXT NOT NULL,
    recipe_id     INTEGER NOT NULL,
    created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
    PRIMARY KEY (username, recipe_id)
);

CREATE TABLE IF NOT EXISTS cache_meta (
    key           TEXT PRIMARY KEY,
    value         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_recipes_position ON recipes(position);
CREATE INDEX IF NOT EXISTS idx_favorites_user ON favorites(username);
`

// Open opens or creates the SQLite database and initializes the schema.
func Open(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}
