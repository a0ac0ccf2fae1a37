// Package transition animates brightness changes.
//
// Levels map a discrete level index onto raw device brightness: index -1 is
// "off" (raw 0) and indexes 0..NumLevels are spaced Size raw units apart
// starting at Minimal. The [Engine] is ticked once per event-loop iteration;
// each tick moves the device one step toward the target level and tells the
// loop how long it may sleep before the next tick.
//
// Steps are sized so that a ramp finishes in roughly the configured
// transition time no matter how many levels it spans, and the target is
// re-read on every tick, so a new command redirects a ramp that is already
// running. A write the hardware does not reflect halts the engine until the
// next command re-arms it.
package transition
