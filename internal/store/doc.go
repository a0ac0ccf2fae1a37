// Package store persists the daemon's durable settings.
//
// The config file holds one fixed-size binary [Record]: minimal raw
// brightness, number of levels, transition time, saved level and device
// name. A negative integer or an empty name marks a field as unset, in which
// case the compiled-in default applies when the record is loaded.
//
// Saves are read-modify-write and field-scoped: the file on disk is re-read,
// only the fields named by the triggering command are compared against the
// in-memory values, and the file is rewritten only when one of them actually
// differs. Every other field is written back exactly as it was read, and an
// idempotent command never touches the disk.
//
// Example usage:
//
//	s := store.New("/var/lib/backlight/backlight.conf")
//
//	rec := s.Load() // never fails; missing or short files yield defaults
//	rec.TransitionMs = 250
//
//	if _, err := s.Save(rec, protocol.FieldTransition); err != nil {
//	    return err
//	}
package store
