// Package reporters carries reference data about case reporters and
// adjusts case-citation confidence against it. The bundled dataset
// covers the federal and regional reporters plus the state and
// specialty series the extractor recognizes; callers with broader
// needs load their own dataset.
package reporters

import (
	"embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed reporters.yaml
var datasetFS embed.FS

// Entry describes one reporter series.
type Entry struct {
	// Abbreviation is the canonical form, as printed in citations.
	Abbreviation string `yaml:"abbreviation" json:"abbreviation"`

	// Name is the full series name.
	Name string `yaml:"name" json:"name"`

	// CiteType groups the series: federal, state_regional, state,
	// specialty, english.
	CiteType string `yaml:"cite_type" json:"cite_type"`

	// Variations are alternate printed forms that identify the same
	// series.
	Variations []string `yaml:"variations,omitempty" json:"variations,omitempty"`
}

type dataset struct {
	Reporters []Entry `yaml:"reporters"`
}

var normalizer = strings.NewReplacer(".", "", " ", "")

// Normalize reduces a reporter abbreviation to its index form:
// lowercase with periods and spaces stripped. "F. 2d", "F.2d" and
// "f2d" all normalize to "f2d".
func Normalize(abbr string) string {
	return normalizer.Replace(strings.ToLower(abbr))
}

// DB is an in-memory reporter database indexed by normalized
// abbreviation. It is immutable after construction and safe for
// concurrent readers.
type DB struct {
	entries []Entry
	index   map[string][]Entry
}

// New builds a database from entries. Every entry is indexed under its
// abbreviation and under each of its variations; distinct series that
// share a normalized form, like the Pacific Reporter and the Probate
// Division both printing as "P.", coexist under one key.
func New(entries []Entry) *DB {
	db := &DB{
		entries: entries,
		index:   make(map[string][]Entry, len(entries)),
	}
	for _, entry := range entries {
		seen := make(map[string]bool, 1+len(entry.Variations))
		for _, form := range append([]string{entry.Abbreviation}, entry.Variations...) {
			key := Normalize(form)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			db.index[key] = append(db.index[key], entry)
		}
	}
	return db
}

// Lookup returns every series the abbreviation can denote. One entry
// is an unambiguous match, several an ambiguous one, none a miss.
func (db *DB) Lookup(abbr string) []Entry {
	if db == nil {
		return nil
	}
	return db.index[Normalize(abbr)]
}

// Len returns the number of entries in the database.
func (db *DB) Len() int {
	if db == nil {
		return 0
	}
	return len(db.entries)
}

// Entries returns every entry in registration order. The returned
// slice is shared; callers must not modify it.
func (db *DB) Entries() []Entry {
	if db == nil {
		return nil
	}
	return db.entries
}

// Default returns a database built from the bundled dataset.
func Default() (*DB, error) {
	data, err := datasetFS.ReadFile("reporters.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded dataset: %w", err)
	}
	db, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("embedded dataset: %w", err)
	}
	return db, nil
}

// Load builds a database from a YAML dataset.
func Load(r io.Reader) (*DB, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	return decode(data)
}

// LoadFile builds a database from a YAML dataset file.
func LoadFile(path string) (*DB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	db, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return db, nil
}

func decode(data []byte) (*DB, error) {
	var ds dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if len(ds.Reporters) == 0 {
		return nil, fmt.Errorf("dataset contains no reporters")
	}
	for i, entry := range ds.Reporters {
		if entry.Abbreviation == "" {
			return nil, fmt.Errorf("reporter %d: missing abbreviation", i)
		}
		if entry.Name == "" {
			return nil, fmt.Errorf("reporter %d (%s): missing name", i, entry.Abbreviation)
		}
	}
	return New(ds.Reporters), nil
}
