// Package prefs persists user preferences between sessions.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"callscope/internal/layout"
)

// Prefs is the persisted preference set.
type Prefs struct {
	Orientation string `json:"orientation,omitempty"`
}

// Layout returns the stored orientation. A missing or unknown name falls
// back to def.
func (p Prefs) Layout(def layout.Orientation) layout.Orientation {
	if p.Orientation == "" {
		return def
	}
	o, err := layout.ParseOrientation(p.Orientation)
	if err != nil {
		return layout.Horizontal
	}
	return o
}

// Store reads and writes Prefs as a JSON file.
type Store struct {
	path string
}

// NewStore returns a store backed by path. An empty path keeps preferences
// in memory only.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load reads the preferences. A missing file yields the zero Prefs.
func (s *Store) Load() (Prefs, error) {
	var p Prefs
	if s.path == "" {
		return p, nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("read prefs: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return Prefs{}, fmt.Errorf("parse prefs %s: %w", s.path, err)
	}
	return p, nil
}

// Save writes p, creating the parent directory if needed.
func (s *Store) Save(p Prefs) error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}
