// Package dict holds the syllable and phrase tables used by the reference
// phonetic engine.
package dict

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed data.yaml
var builtin []byte

// document is the on-disk YAML shape.
type document struct {
	Version int               `yaml:"version"`
	Chars   map[string]string `yaml:"chars"`
	Phrases map[string]string `yaml:"phrases"`
}

// Dictionary maps syllables to characters and syllable sequences to
// phrases. It is read-only after construction and safe for concurrent use.
type Dictionary struct {
	chars   map[string][]string
	phrases map[string][]string
	maxLen  int
}

var (
	defaultDict     *Dictionary
	defaultDictOnce sync.Once
)

// Default returns the built-in dictionary.
func Default() *Dictionary {
	defaultDictOnce.Do(func() {
		d, err := Parse(builtin)
		if err != nil {
			panic(fmt.Sprintf("dict: built-in data: %v", err))
		}
		defaultDict = d
	})
	return defaultDict
}

// Load reads a dictionary from a YAML file.
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse decodes a YAML dictionary document.
func Parse(data []byte) (*Dictionary, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse dictionary: %w", err)
	}
	if doc.Version != 1 {
		return nil, fmt.Errorf("unsupported dictionary version %d", doc.Version)
	}

	d := &Dictionary{
		chars:   make(map[string][]string, len(doc.Chars)),
		phrases: make(map[string][]string),
		maxLen:  1,
	}
	for syl, chars := range doc.Chars {
		if syl == "" || chars == "" {
			return nil, fmt.Errorf("empty entry for syllable %q", syl)
		}
		list := make([]string, 0, utf8.RuneCountInString(chars))
		for _, r := range chars {
			list = append(list, string(r))
		}
		d.chars[syl] = list
	}

	// Map iteration order is random; sort so phrases sharing a reading keep
	// a stable order.
	texts := make([]string, 0, len(doc.Phrases))
	for text := range doc.Phrases {
		texts = append(texts, text)
	}
	slices.Sort(texts)
	for _, text := range texts {
		phones := strings.Fields(doc.Phrases[text])
		n := utf8.RuneCountInString(text)
		if n < 2 {
			return nil, fmt.Errorf("phrase %q: phrases need at least two characters", text)
		}
		if n != len(phones) {
			return nil, fmt.Errorf("phrase %q: %d characters but %d syllables", text, n, len(phones))
		}
		key := Key(phones)
		d.phrases[key] = append(d.phrases[key], text)
		d.maxLen = max(d.maxLen, n)
	}
	return d, nil
}

// Key joins syllables into the lookup key used for phrases.
func Key(phones []string) string {
	return strings.Join(phones, " ")
}

// Has reports whether the syllable has at least one character.
func (d *Dictionary) Has(syllable string) bool {
	return len(d.chars[syllable]) > 0
}

// Chars returns the characters for one syllable, most frequent first.
func (d *Dictionary) Chars(syllable string) []string {
	return slices.Clone(d.chars[syllable])
}

// Phrases returns the phrases read as phones. Single syllables have no
// phrases; use Chars.
func (d *Dictionary) Phrases(phones []string) []string {
	if len(phones) < 2 {
		return nil
	}
	return slices.Clone(d.phrases[Key(phones)])
}

// MaxPhraseLen is the length of the longest phrase in characters.
func (d *Dictionary) MaxPhraseLen() int {
	return d.maxLen
}

// Len returns the number of syllables with characters.
func (d *Dictionary) Len() int {
	return len(d.chars)
}
