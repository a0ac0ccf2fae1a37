package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cruciblehq/backlightd/internal/paths"
	"github.com/cruciblehq/backlightd/internal/protocol"
)

// Reads and writes the config record at a fixed path.
type Store struct {
	path string // Location of the config file.
}

// Creates a store for the config file at path. The file is not accessed
// until the first load or save.
func New(path string) *Store {
	return &Store{path: path}
}

// Returns the location of the config file.
func (s *Store) Path() string { return s.path }

// Returns the record exactly as stored, sentinels included.
func (s *Store) Read() (Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Empty(), fmt.Errorf("%w: %w", ErrStore, err)
	}
	return unmarshal(data)
}

// Returns the stored record with defaults applied. A missing, short or
// unreadable file yields an all-default record.
func (s *Store) Load() Record {
	rec, err := s.Read()
	if err != nil {
		slog.Debug("using default configuration", "path", s.path, "error", err)
		rec = Empty()
	}
	return rec.WithDefaults()
}

// Persists the given fields of cur.
//
// The current file (or an empty record) is re-read and each field is copied
// from cur only if cur holds a set value that differs from the stored one.
// The file is rewritten only when at least one field changed. Returns whether
// the file was written.
func (s *Store) Save(cur Record, fields ...protocol.Field) (bool, error) {
	rec, err := s.Read()
	if err != nil {
		rec = Empty()
	}

	changed := false
	for _, f := range fields {
		c, err := merge(&rec, cur, f)
		if err != nil {
			return false, err
		}
		changed = changed || c
	}

	if !changed {
		return false, nil
	}
	if err := s.write(rec); err != nil {
		return false, err
	}

	slog.Debug("configuration saved", "path", s.path, "fields", fields)
	return true, nil
}

// Copies field f from src into dst when src holds a set, different value.
func merge(dst *Record, src Record, f protocol.Field) (bool, error) {
	var from, to *int

	switch f {
	case protocol.FieldMinimal:
		from, to = &src.Minimal, &dst.Minimal
	case protocol.FieldNumLevels:
		from, to = &src.NumLevels, &dst.NumLevels
	case protocol.FieldTransition:
		from, to = &src.TransitionMs, &dst.TransitionMs
	case protocol.FieldSaved:
		from, to = &src.SavedLevel, &dst.SavedLevel
	case protocol.FieldDevice:
		if src.DeviceName == "" || src.DeviceName == dst.DeviceName {
			return false, nil
		}
		dst.DeviceName = src.DeviceName
		return true, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrField, f)
	}

	if *from < 0 || *from == *to {
		return false, nil
	}
	*to = *from
	return true, nil
}

// Replaces the config file with rec. The record is written to a temporary
// file in the same directory and renamed over the old one, so a reader never
// sees a partial record.
func (s *Store) write(rec Record) error {
	data, err := rec.marshal()
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, paths.DefaultDirMode); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	if err := tmp.Chmod(paths.DefaultFileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	return nil
}
