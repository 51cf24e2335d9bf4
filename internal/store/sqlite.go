package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a phrase does not exist.
	ErrNotFound = errors.New("store: phrase not found")
	// ErrInvalidPhrase is returned when the text and reading do not line up.
	ErrInvalidPhrase = errors.New("store: invalid phrase")
)

// Store is the SQLite user phrase store. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path and runs migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func validate(phones, text string) error {
	n := len(strings.Fields(phones))
	if n == 0 || text == "" {
		return fmt.Errorf("%w: empty phrase or reading", ErrInvalidPhrase)
	}
	if c := utf8.RuneCountInString(text); c != n {
		return fmt.Errorf("%w: %q has %d characters but %d syllables", ErrInvalidPhrase, text, c, n)
	}
	return nil
}

// Add inserts a phrase, or bumps it when it already exists. It reports
// whether the phrase was new.
func (s *Store) Add(phones, text string) (bool, error) {
	phones = normalize(phones)
	if err := validate(phones, text); err != nil {
		return false, err
	}

	now := time.Now().UnixNano()
	res, err := s.db.Exec(`
		INSERT INTO user_phrases (phones, phrase, frequency, created_at, used_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(phones, phrase) DO NOTHING`,
		phones, text, now, now,
	)
	if err != nil {
		return false, fmt.Errorf("insert phrase: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 1 {
		return true, nil
	}
	return false, s.Bump(phones, text)
}

// Bump records one more use of an existing phrase.
func (s *Store) Bump(phones, text string) error {
	res, err := s.db.Exec(`
		UPDATE user_phrases SET frequency = frequency + 1, used_at = ?
		WHERE phones = ? AND phrase = ?`,
		time.Now().UnixNano(), normalize(phones), text,
	)
	if err != nil {
		return fmt.Errorf("bump phrase: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Lookup returns the phrases read as phones, most used first.
func (s *Store) Lookup(phones string) ([]Phrase, error) {
	rows, err := s.db.Query(`
		SELECT id, phones, phrase, frequency, created_at, used_at
		FROM user_phrases
		WHERE phones = ?
		ORDER BY frequency DESC, used_at DESC`, normalize(phones),
	)
	if err != nil {
		return nil, fmt.Errorf("query phrases: %w", err)
	}
	defer rows.Close()

	return scanPhrases(rows)
}

// List returns up to limit phrases, most recently used first. A limit of
// zero or less returns everything.
func (s *Store) List(limit int) ([]Phrase, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT id, phones, phrase, frequency, created_at, used_at
		FROM user_phrases
		ORDER BY used_at DESC, id DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list phrases: %w", err)
	}
	defer rows.Close()

	return scanPhrases(rows)
}

// Get retrieves a phrase by its text and reading.
func (s *Store) Get(phones, text string) (*Phrase, error) {
	var p Phrase
	var created, used int64
	err := s.db.QueryRow(`
		SELECT id, phones, phrase, frequency, created_at, used_at
		FROM user_phrases WHERE phones = ? AND phrase = ?`, normalize(phones), text,
	).Scan(&p.ID, &p.Phones, &p.Text, &p.Frequency, &created, &used)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get phrase: %w", err)
	}
	p.CreatedAt = time.Unix(0, created)
	p.UsedAt = time.Unix(0, used)
	return &p, nil
}

// Remove deletes every reading of text and reports how many were removed.
func (s *Store) Remove(text string) (int64, error) {
	res, err := s.db.Exec("DELETE FROM user_phrases WHERE phrase = ?", text)
	if err != nil {
		return 0, fmt.Errorf("delete phrase: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// Stats returns aggregate counts for the store.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	var last sql.NullInt64
	err := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(frequency), 0), MAX(used_at)
		FROM user_phrases`,
	).Scan(&st.Phrases, &st.TotalUses, &last)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	if last.Valid {
		st.LastUpdated = time.Unix(0, last.Int64)
	}
	return st, nil
}

func scanPhrases(rows *sql.Rows) ([]Phrase, error) {
	var phrases []Phrase
	for rows.Next() {
		var p Phrase
		var created, used int64
		if err := rows.Scan(&p.ID, &p.Phones, &p.Text, &p.Frequency, &created, &used); err != nil {
			return nil, fmt.Errorf("scan phrase: %w", err)
		}
		p.CreatedAt = time.Unix(0, created)
		p.UsedAt = time.Unix(0, used)
		phrases = append(phrases, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate phrases: %w", err)
	}

	return phrases, nil
}

// normalize collapses runs of whitespace in a reading.
func normalize(phones string) string {
	return strings.Join(strings.Fields(phones), " ")
}
