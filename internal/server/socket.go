package server

import (
	"fmt"
	"os"

	"github.com/cruciblehq/backlightd/internal/paths"
	"github.com/cruciblehq/backlightd/internal/protocol"
	"golang.org/x/sys/unix"
)

// Creates a non-blocking listening Unix socket at path. A stale socket file
// from a previous run is removed first, and the new one is made accessible
// to every local user.
func listen(path string, backlog int) (int, error) {
	os.Remove(path)

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("%w: socket: %w", ErrServer, err)
	}

	if err := unix.Bind(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("%w: failed to bind %s: %w", ErrServer, path, err)
	}

	if err := os.Chmod(path, paths.SocketMode); err != nil {
		unix.Close(fd)
		os.Remove(path)
		return -1, fmt.Errorf("%w: failed to chmod socket %s: %w", ErrServer, path, err)
	}

	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		os.Remove(path)
		return -1, fmt.Errorf("%w: failed to listen on %s: %w", ErrServer, path, err)
	}

	return fd, nil
}

// Writes one encoded message to a connection. A peer that already hung up
// yields an error instead of SIGPIPE.
func send(fd int, m protocol.Message) error {
	data, err := m.MarshalBinary()
	if err != nil {
		return err
	}

	n, err := unix.SendmsgN(fd, data, nil, nil, unix.MSG_NOSIGNAL)
	if err != nil {
		return err
	}
	if n != len(data) {
		return fmt.Errorf("%w: short write of %d bytes", ErrServer, n)
	}
	return nil
}
