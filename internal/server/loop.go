package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cruciblehq/backlightd/internal/protocol"
	"golang.org/x/sys/unix"
)

// Kind of descriptor in the poll set.
type pollKind int

const (
	pollListener pollKind = iota // Listening socket.
	pollWake                     // Cancellation pipe.
	pollClient                   // Client connection.
)

// Identifies what a poll set entry refers to.
type pollEntry struct {
	kind pollKind
	slot int // Slot index for pollClient.
}

// Readiness bits that mean a client connection needs attention.
const clientEvents = unix.POLLIN | unix.POLLPRI | unix.POLLHUP | unix.POLLERR | unix.POLLNVAL

// Runs the event loop until ctx is cancelled, [Server.Cancel] is called, or
// poll(2) fails.
//
// Each iteration ticks the transition engine, waits for readiness for at
// most the time the tick allows, then accepts new connections and serves
// ready clients. A shutdown request that interrupts the wait ends the loop
// cleanly.
func (s *Server) Run(ctx context.Context) error {
	if !s.started {
		return ErrNotRunning
	}

	stop := context.AfterFunc(ctx, s.token.Cancel)
	defer stop()

	fds := make([]unix.PollFd, 0, s.slots.capacity()+2)

	for !s.token.Cancelled() {
		s.tick()

		fds = s.pollSet(fds[:0])
		n, err := unix.Poll(fds, s.wait)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if s.token.Cancelled() {
				break
			}
			return fmt.Errorf("%w: poll: %w", ErrServer, err)
		}
		if n > 0 {
			s.dispatch(fds)
		}
	}

	slog.Debug("event loop stopped")
	return nil
}

// Fills fds with the listening socket, the wake pipe and every occupied
// slot, recording what each entry refers to.
func (s *Server) pollSet(fds []unix.PollFd) []unix.PollFd {
	s.pollfds = s.pollfds[:0]

	fds = append(fds, unix.PollFd{Fd: int32(s.socket), Events: unix.POLLIN})
	s.pollfds = append(s.pollfds, pollEntry{kind: pollListener})

	fds = append(fds, unix.PollFd{Fd: int32(s.token.r), Events: unix.POLLIN})
	s.pollfds = append(s.pollfds, pollEntry{kind: pollWake})

	for i := 0; i < s.slots.capacity(); i++ {
		if fd := s.slots.fd(i); fd >= 0 {
			fds = append(fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN | unix.POLLPRI})
			s.pollfds = append(s.pollfds, pollEntry{kind: pollClient, slot: i})
		}
	}
	return fds
}

// Acts on every ready entry of the poll set.
func (s *Server) dispatch(fds []unix.PollFd) {
	for i, p := range fds {
		if p.Revents == 0 {
			continue
		}
		if s.token.Cancelled() {
			return
		}

		switch e := s.pollfds[i]; e.kind {
		case pollListener:
			s.accept()
		case pollWake:
			s.token.drain()
		case pollClient:
			if p.Revents&clientEvents != 0 {
				s.receive(e.slot)
			}
		}
	}
}

// Accepts pending connections into free slots. Connections that find every
// slot taken are closed at once.
func (s *Server) accept() {
	for {
		fd, _, err := unix.Accept4(s.socket, unix.SOCK_CLOEXEC)
		if err != nil {
			if !errors.Is(err, unix.EAGAIN) && !errors.Is(err, unix.EINTR) {
				slog.Error("accept error", "error", err)
			}
			return
		}

		if _, ok := s.slots.admit(fd); !ok {
			slog.Warn("connection rejected, all slots in use", "slots", s.slots.capacity())
			unix.Close(fd)
		}
	}
}

// Reads one message from the client in slot i, handles it and writes the
// reply stream. The connection is closed on hangup, on a read or write
// error, and after a malformed message.
func (s *Server) receive(i int) {
	fd := s.slots.fd(i)

	n, err := unix.Read(fd, s.buf)
	switch {
	case errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR):
		return
	case err != nil:
		slog.Error("failed to receive message", "error", err)
		s.hangup(i)
		return
	case n == 0:
		s.hangup(i)
		return
	}

	var req protocol.Message
	if err := req.UnmarshalBinary(s.buf[:n]); err != nil {
		slog.Warn("malformed message", "bytes", n, "error", err)
		send(fd, protocol.ErrorReply(protocol.FieldNone, err))
		s.hangup(i)
		return
	}

	slog.Debug("command received", "command", req.Field)

	for _, rep := range s.Handle(req) {
		if err := send(fd, rep); err != nil {
			slog.Error("failed to send reply", "command", req.Field, "error", err)
			s.hangup(i)
			return
		}
	}
}

// Closes the connection in slot i and frees the slot.
func (s *Server) hangup(i int) {
	if fd := s.slots.release(i); fd >= 0 {
		unix.Close(fd)
	}
}
