package store

import (
	"database/sql"
	"fmt"
)

// schemaStep moves the database from version-1 to version. The version
// lives in SQLite's user_version pragma.
type schemaStep struct {
	version int
	what    string
	sql     string
}

var schema = []schemaStep{
	{1, "user phrases", `
CREATE TABLE IF NOT EXISTS user_phrases (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    phones      TEXT NOT NULL,
    phrase      TEXT NOT NULL,
    frequency   INTEGER NOT NULL DEFAULT 1,
    created_at  INTEGER NOT NULL,
    used_at     INTEGER NOT NULL,
    UNIQUE(phones, phrase)
);
CREATE INDEX IF NOT EXISTS idx_user_phrases_phones ON user_phrases(phones, frequency DESC);`},
	{2, "recently used index", `
CREATE INDEX IF NOT EXISTS idx_user_phrases_used ON user_phrases(used_at DESC);`},
}

// LatestVersion is the schema version Open migrates to.
func LatestVersion() int { return schema[len(schema)-1].version }

// SchemaVersion reads the database's schema version.
func SchemaVersion(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// migrate applies every step newer than the database, each in its own
// transaction. A database newer than this binary is refused.
func migrate(db *sql.DB) error {
	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current > LatestVersion() {
		return fmt.Errorf("schema version %d is newer than supported %d", current, LatestVersion())
	}
	for _, step := range schema {
		if step.version <= current {
			continue
		}
		if err := apply(db, step); err != nil {
			return fmt.Errorf("migrate to %d (%s): %w", step.version, step.what, err)
		}
	}
	return nil
}

func apply(db *sql.DB, step schemaStep) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(step.sql); err != nil {
		return err
	}
	// PRAGMA does not take bind parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", step.version)); err != nil {
		return err
	}
	return tx.Commit()
}

// checkSchema verifies the phrase table exists.
func checkSchema(db *sql.DB) error {
	var n int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'user_phrases'",
	).Scan(&n)
	if err != nil {
		return fmt.Errorf("inspect schema: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("missing table user_phrases")
	}
	return nil
}
