package transition

import "math"

// Level index meaning "display off".
const Off = -1

// Mapping of level indexes onto raw brightness for one device.
type Levels struct {
	Minimal   int     // Raw brightness of level zero.
	NumLevels int     // Highest level index.
	Size      float64 // Raw units between adjacent levels.
}

// Derives the level mapping for a device whose raw range is [0, limit].
//
// The level count is capped at limit, a minimal value at or above limit falls
// back to zero, and the remaining range is divided evenly between levels.
func NewLevels(minimal, numLevels, limit int) Levels {
	numLevels = max(min(numLevels, limit), 1)
	if minimal >= limit || minimal < 0 {
		minimal = 0
	}
	return Levels{
		Minimal:   minimal,
		NumLevels: numLevels,
		Size:      float64(limit-minimal) / float64(numLevels),
	}
}

// Returns the raw brightness for index, clamped to [0, limit].
func (l Levels) Target(index, limit int) int {
	if index < 0 {
		return 0
	}
	raw := int(math.Round(float64(l.Minimal) + float64(index)*l.Size))
	return min(max(raw, 0), limit)
}

// Returns index clamped to [Off, NumLevels].
func (l Levels) Clamp(index int) int {
	return min(max(index, Off), l.NumLevels)
}

// Returns the level restored from a saved value, or the middle level when
// the saved value is out of range.
func (l Levels) Restore(saved int) int {
	if saved >= 0 && saved <= l.NumLevels {
		return saved
	}
	return l.NumLevels / 2
}

// Returns the next raw value on a ramp from current toward target.
//
// The ramp covers span raw units in transitionMs, so each tick of tickMs
// moves round(span / transitionMs * tickMs) units, at least one, without
// passing target.
func Step(current, target int, span float64, transitionMs, tickMs int) int {
	if current == target {
		return target
	}

	delta := int(math.Round(span / float64(max(transitionMs, 1)) * float64(tickMs)))
	delta = max(delta, 1)

	if target > current {
		return min(current+delta, target)
	}
	return max(current-delta, target)
}
