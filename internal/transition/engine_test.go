package transition

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// In-memory device that records every write.
type fakeDevice struct {
	value  int
	writes []int
	stuck  bool // Writes are recorded but not applied.
	getErr error
}

func (d *fakeDevice) Get() (int, error) {
	return d.value, d.getErr
}

func (d *fakeDevice) Set(v int) error {
	d.writes = append(d.writes, v)
	if !d.stuck {
		d.value = v
	}
	return nil
}

// Ticks until the engine reports idle or limit ticks have run.
func run(t *testing.T, e *Engine, d *fakeDevice, target int, levelSize float64, transitionMs, limit int) int {
	t.Helper()
	for i := 0; i < limit; i++ {
		res, err := e.Tick(d, target, levelSize, transitionMs)
		require.NoError(t, err)
		if res.Wait == WaitForever {
			require.True(t, res.Settled)
			return i
		}
		require.Equal(t, WaitTick, res.Wait)
	}
	t.Fatalf("ramp to %d did not settle within %d ticks", target, limit)
	return 0
}

func TestRampIsLinearAndOnTime(t *testing.T) {
	d := &fakeDevice{value: 0}
	e := New(20)

	run(t, e, d, 1000, 100, 1000, 1000)

	require.Equal(t, 1000, d.writes[len(d.writes)-1])
	require.InDelta(t, 1000/20, len(d.writes), 1)

	prev := 0
	for _, w := range d.writes {
		require.Greater(t, w, prev)
		prev = w
	}
}

func TestRampDown(t *testing.T) {
	d := &fakeDevice{value: 900}
	e := New(20)

	run(t, e, d, 100, 40, 200, 1000)

	require.Equal(t, 100, d.value)
	require.InDelta(t, 200/20, len(d.writes), 1)
	for i := 1; i < len(d.writes); i++ {
		require.Less(t, d.writes[i], d.writes[i-1])
	}
}

func TestStepsNeverOvershoot(t *testing.T) {
	d := &fakeDevice{value: 0}
	e := New(20)

	run(t, e, d, 7, 7, 100000, 100)

	for _, w := range d.writes {
		require.LessOrEqual(t, w, 7)
	}
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, d.writes)
}

func TestNewTargetRedirectsRamp(t *testing.T) {
	d := &fakeDevice{value: 0}
	e := New(20)

	for i := 0; i < 5; i++ {
		_, err := e.Tick(d, 1000, 100, 1000)
		require.NoError(t, err)
	}
	mid := d.value
	require.Greater(t, mid, 0)

	run(t, e, d, 0, 100, 1000, 1000)
	require.Equal(t, 0, d.value)
	for _, w := range d.writes[5:] {
		require.Less(t, w, mid)
	}
}

func TestShortTransitionWritesTargetDirectly(t *testing.T) {
	d := &fakeDevice{value: 10}
	e := New(20)

	res, err := e.Tick(d, 500, 50, 20)
	require.NoError(t, err)
	require.Equal(t, WaitTick, res.Wait)
	require.Equal(t, []int{500}, d.writes)

	res, err = e.Tick(d, 500, 50, 20)
	require.NoError(t, err)
	require.Equal(t, Result{Wait: WaitForever, Settled: true}, res)
}

func TestFailedWriteHaltsUntilRearm(t *testing.T) {
	d := &fakeDevice{value: 0, stuck: true}
	e := New(20)

	res, err := e.Tick(d, 100, 10, 500)
	require.ErrorIs(t, err, ErrStepFailed)
	require.Equal(t, WaitForever, res.Wait)
	require.True(t, e.Halted())

	res, err = e.Tick(d, 100, 10, 500)
	require.NoError(t, err)
	require.Equal(t, WaitForever, res.Wait)
	require.Len(t, d.writes, 1)

	d.stuck = false
	e.Rearm()
	run(t, e, d, 100, 10, 500, 1000)
	require.Equal(t, 100, d.value)
}

func TestReadFailureHalts(t *testing.T) {
	d := &fakeDevice{getErr: errors.New("gone")}
	e := New(20)

	res, err := e.Tick(d, 100, 10, 500)
	require.Error(t, err)
	require.Equal(t, WaitForever, res.Wait)
	require.True(t, e.Halted())
}

func TestStep(t *testing.T) {
	require.Equal(t, 2, Step(0, 1000, 100, 1000, 20))
	require.Equal(t, 1, Step(0, 1000, 1, 1000, 20))
	require.Equal(t, 1000, Step(990, 1000, 1000, 1000, 20))
	require.Equal(t, 0, Step(5, 0, 1000, 1000, 20))
	require.Equal(t, 42, Step(42, 42, 1000, 1000, 20))
	require.Equal(t, 1000, Step(0, 1000, 1000, 0, 20))
}
