// Package store persists the last controller-reported motor positions.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cableplot/protocol"
)

var ErrNoPositionFile = errors.New("position file not found")

// Store is a single-file record of the four absolute positions, written
// as "p0,p1,p2,p3" without a trailing newline.
type Store struct {
	path     string
	defaults protocol.Positions
}

// New creates a store at path falling back to defaults
func New(path string, defaults protocol.Positions) *Store {
	return &Store{path: path, defaults: defaults}
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// Defaults returns the fallback positions
func (s *Store) Defaults() protocol.Positions {
	return s.defaults
}

// Load reads the stored positions. If the file is missing or unparsable
// it returns the defaults together with the reason.
func (s *Store) Load() (protocol.Positions, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s.defaults, ErrNoPositionFile
	}
	if err != nil {
		return s.defaults, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	p, err := protocol.ParsePositions(string(data))
	if err != nil {
		return s.defaults, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return p, nil
}

// Save replaces the file atomically so a crash never leaves a torn record
func (s *Store) Save(p protocol.Positions) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(p.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write positions: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync positions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}
