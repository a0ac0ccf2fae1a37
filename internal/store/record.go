package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (

	// Value of an integer field that has never been saved.
	Unset = -1

	// Capacity of the device name, including the terminating NUL.
	NameSize = 256

	// Encoded size of a record.
	RecordSize = 4*4 + NameSize

	DefaultMinimal      = 2000 // Raw brightness of level zero.
	DefaultNumLevels    = 20   // Number of steps above level zero.
	DefaultTransitionMs = 100  // Duration of a one-command ramp.
)

// Durable settings. Integer fields hold [Unset] and DeviceName holds "" until
// they are first saved.
type Record struct {
	Minimal      int    // Raw brightness of level zero.
	NumLevels    int    // Number of levels above zero.
	TransitionMs int    // Ramp duration in milliseconds.
	SavedLevel   int    // Level restored by "on".
	DeviceName   string // Backlight device to bind.
}

// On-disk image of a record.
type diskRecord struct {
	Minimal      int32
	NumLevels    int32
	TransitionMs int32
	SavedLevel   int32
	DeviceName   [NameSize]byte
}

// Returns a record with every field unset.
func Empty() Record {
	return Record{
		Minimal:      Unset,
		NumLevels:    Unset,
		TransitionMs: Unset,
		SavedLevel:   Unset,
	}
}

// Returns r with unset minimal, level count and transition replaced by the
// compiled-in defaults. SavedLevel and DeviceName stay as they are; their
// fallbacks depend on the bound device.
func (r Record) WithDefaults() Record {
	if r.Minimal < 0 {
		r.Minimal = DefaultMinimal
	}
	if r.NumLevels < 0 {
		r.NumLevels = DefaultNumLevels
	}
	if r.TransitionMs < 0 {
		r.TransitionMs = DefaultTransitionMs
	}
	return r
}

func (r Record) marshal() ([]byte, error) {
	d := diskRecord{
		Minimal:      int32(r.Minimal),
		NumLevels:    int32(r.NumLevels),
		TransitionMs: int32(r.TransitionMs),
		SavedLevel:   int32(r.SavedLevel),
	}
	if len(r.DeviceName) >= NameSize {
		return nil, fmt.Errorf("%w: device name longer than %d bytes", ErrStore, NameSize-1)
	}
	copy(d.DeviceName[:], r.DeviceName)

	buf := bytes.NewBuffer(make([]byte, 0, RecordSize))
	if err := binary.Write(buf, binary.NativeEndian, &d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	return buf.Bytes(), nil
}

func unmarshal(data []byte) (Record, error) {
	if len(data) < RecordSize {
		return Empty(), fmt.Errorf("%w: %d bytes, want %d", ErrShort, len(data), RecordSize)
	}

	var d diskRecord
	if err := binary.Read(bytes.NewReader(data[:RecordSize]), binary.NativeEndian, &d); err != nil {
		return Empty(), fmt.Errorf("%w: %w", ErrStore, err)
	}

	name := d.DeviceName[:]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}

	return Record{
		Minimal:      int(d.Minimal),
		NumLevels:    int(d.NumLevels),
		TransitionMs: int(d.TransitionMs),
		SavedLevel:   int(d.SavedLevel),
		DeviceName:   string(name),
	}, nil
}
