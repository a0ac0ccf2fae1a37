package transition

import (
	"fmt"
	"math"
)

const (

	// Length of one event-loop tick in milliseconds.
	TickMs = 20

	WaitTick    = TickMs // Poll timeout while a ramp is running.
	WaitForever = -1     // Poll timeout while idle.
)

// Raw brightness access the engine drives.
type Device interface {
	Get() (int, error)
	Set(int) error
}

// Outcome of one tick.
type Result struct {
	Wait    int  // Poll timeout in milliseconds until the next tick.
	Settled bool // The device holds the target value.
}

// Drives a device toward a target value, one step per tick.
//
// The engine remembers the ramp it is on: when the target changes, the span
// of the new ramp is measured from the device's current value. It is not
// safe for concurrent use.
type Engine struct {
	tickMs int     // Tick length used to size steps.
	target int     // Target of the current ramp.
	span   float64 // Distance the current ramp covers.
	active bool    // A ramp is in progress.
	halted bool    // A write failed; no writes until Rearm.
}

// Creates an engine for ticks of tickMs milliseconds.
func New(tickMs int) *Engine {
	return &Engine{tickMs: max(tickMs, 1)}
}

// Clears a halt caused by a failed write.
func (e *Engine) Rearm() {
	e.halted = false
}

// Reports whether the engine stopped after a failed write.
func (e *Engine) Halted() bool { return e.halted }

// Advances dev one step toward target.
//
// levelSize is the distance of a single-level change; a ramp never moves
// slower than one level per transitionMs. When transitionMs fits in one tick
// the target is written directly. A write whose read-back differs halts the
// engine and returns [ErrStepFailed].
func (e *Engine) Tick(dev Device, target int, levelSize float64, transitionMs int) (Result, error) {
	if e.halted {
		return Result{Wait: WaitForever}, nil
	}

	current, err := dev.Get()
	if err != nil {
		e.halt()
		return Result{Wait: WaitForever}, err
	}

	if current == target {
		e.active = false
		return Result{Wait: WaitForever, Settled: true}, nil
	}

	next := target
	if transitionMs > e.tickMs {
		if !e.active || e.target != target {
			e.target = target
			e.span = max(math.Abs(float64(target-current)), levelSize)
			e.active = true
		}
		next = Step(current, target, e.span, transitionMs, e.tickMs)
	}

	if err := e.write(dev, next); err != nil {
		return Result{Wait: WaitForever}, err
	}
	return Result{Wait: e.tickMs}, nil
}

// Writes v and checks that the device reports it back.
func (e *Engine) write(dev Device, v int) error {
	if err := dev.Set(v); err != nil {
		e.halt()
		return err
	}

	got, err := dev.Get()
	if err != nil {
		e.halt()
		return err
	}
	if got != v {
		e.halt()
		return fmt.Errorf("%w: wrote %d, read back %d", ErrStepFailed, v, got)
	}
	return nil
}

func (e *Engine) halt() {
	e.halted = true
	e.active = false
}
