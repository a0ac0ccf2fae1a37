package server

// Fixed-capacity table of client connections.
//
// Occupied slots hold a file descriptor; free slot indexes are kept on a
// stack so that admission and release are O(1).
type slots struct {
	fds  []int // Descriptor per slot, -1 when free.
	free []int // Indexes of free slots; the next admission pops the last.
}

func newSlots(n int) *slots {
	s := &slots{
		fds:  make([]int, n),
		free: make([]int, n),
	}
	for i := range s.fds {
		s.fds[i] = -1
		s.free[i] = n - 1 - i
	}
	return s
}

// Places fd in a free slot and returns its index. Reports false when every
// slot is taken.
func (s *slots) admit(fd int) (int, bool) {
	if len(s.free) == 0 {
		return -1, false
	}
	i := s.free[len(s.free)-1]
	s.free = s.free[:len(s.free)-1]
	s.fds[i] = fd
	return i, true
}

// Frees slot i and returns the descriptor it held.
func (s *slots) release(i int) int {
	fd := s.fds[i]
	if fd < 0 {
		return -1
	}
	s.fds[i] = -1
	s.free = append(s.free, i)
	return fd
}

// Number of occupied slots.
func (s *slots) used() int {
	return len(s.fds) - len(s.free)
}

// Returns the descriptor in slot i, or -1.
func (s *slots) fd(i int) int {
	return s.fds[i]
}

// Number of slots.
func (s *slots) capacity() int {
	return len(s.fds)
}
