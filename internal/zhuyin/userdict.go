package zhuyin

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"chewingd/internal/store"
)

// UserDict persists phrases the user taught the engine. *store.Store
// satisfies it.
type UserDict interface {
	// Lookup returns the phrases read as phones, most used first.
	Lookup(phones string) ([]store.Phrase, error)
	// Add inserts the phrase or records one more use of it. It reports
	// whether the phrase was new.
	Add(phones, text string) (bool, error)
}

// MemoryDict is a UserDict that lives only as long as the process.
type MemoryDict struct {
	mu      sync.Mutex
	phrases map[string][]store.Phrase
}

// NewMemoryDict returns an empty in-memory user dictionary.
func NewMemoryDict() *MemoryDict {
	return &MemoryDict{phrases: make(map[string][]store.Phrase)}
}

func (m *MemoryDict) Lookup(phones string) ([]store.Phrase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.phrases[phones]), nil
}

func (m *MemoryDict) Add(phones, text string) (bool, error) {
	if len(strings.Fields(phones)) != utf8.RuneCountInString(text) || text == "" {
		return false, store.ErrInvalidPhrase
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	list := m.phrases[phones]
	created := true
	if i := slices.IndexFunc(list, func(p store.Phrase) bool { return p.Text == text }); i >= 0 {
		list[i].Frequency++
		list[i].UsedAt = now
		created = false
	} else {
		list = append(list, store.Phrase{Phones: phones, Text: text, Frequency: 1, CreatedAt: now, UsedAt: now})
	}
	slices.SortStableFunc(list, func(a, b store.Phrase) int {
		return cmp.Compare(b.Frequency, a.Frequency)
	})
	m.phrases[phones] = list
	return created, nil
}
