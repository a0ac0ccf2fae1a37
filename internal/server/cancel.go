package server

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// Cancellation flag that can also wake the event loop out of poll(2).
//
// Cancel may be called from any goroutine. The loop polls the read end of a
// pipe alongside its sockets, so a cancellation arriving during an
// indefinite wait takes effect immediately.
type token struct {
	cancelled atomic.Bool
	mu        sync.Mutex // Serialises Cancel against Close.
	r, w      int        // Pipe ends; w receives one byte on cancellation. -1 once closed.
}

func newToken() (*token, error) {
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServer, err)
	}
	return &token{r: p[0], w: p[1]}, nil
}

// Sets the flag and wakes the loop. Only the first call has an effect.
func (t *token) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancelled.CompareAndSwap(false, true) && t.w >= 0 {
		unix.Write(t.w, []byte{1})
	}
}

// Reports whether Cancel was called.
func (t *token) Cancelled() bool {
	return t.cancelled.Load()
}

// Empties the wake pipe.
func (t *token) drain() {
	buf := make([]byte, 16)
	for {
		if n, err := unix.Read(t.r, buf); n <= 0 || err != nil {
			return
		}
	}
}

// Closes the pipe. Later cancellations only set the flag.
func (t *token) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.w < 0 {
		return
	}
	unix.Close(t.r)
	unix.Close(t.w)
	t.r, t.w = -1, -1
}
