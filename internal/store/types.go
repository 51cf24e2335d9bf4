// Package store provides SQLite-based storage for learned user phrases.
package store

import "time"

// Phrase is one user phrase together with its reading.
type Phrase struct {
	ID int64
	// Phones are the syllables of the phrase joined by single spaces.
	Phones    string
	Text      string
	Frequency int
	CreatedAt time.Time
	UsedAt    time.Time
}

// Stats summarizes the store contents.
type Stats struct {
	Phrases     int
	TotalUses   int
	LastUpdated time.Time
}
