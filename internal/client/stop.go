package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"syscall"

	"github.com/cruciblehq/backlightd/internal/pidfile"
	"github.com/cruciblehq/backlightd/internal/protocol"
)

// Root of the per-process information tree.
const procRoot = "/proc"

// Terminates the daemon and, for restart, replaces this process with the
// daemon's command line.
//
// The new daemon is started without waiting for the old one to exit, so it
// may still find the old PID file and refuse to start.
func (c *Client) stop(ctx context.Context) error {
	pid, err := c.daemonPID(ctx)
	if err != nil {
		return err
	}

	var argv []string
	var argv0 string
	if c.req.Field == protocol.FieldRestart {
		argv, argv0, err = commandLine(pid)
		if err != nil {
			return err
		}
	}

	if err := c.kill(pid, syscall.SIGTERM); err != nil {
		return fmt.Errorf("%w: failed to signal PID %d: %w", ErrClient, pid, err)
	}
	slog.Info("daemon signalled", "pid", pid)

	if argv == nil {
		return nil
	}

	slog.Info("restarting daemon", "command", argv)
	if err := c.exec(argv0, argv, os.Environ()); err != nil {
		return fmt.Errorf("%w: failed to restart: %w", ErrClient, err)
	}
	return nil
}

// Returns the daemon's PID from the PID file or, when there is none but a
// socket exists, from the daemon itself.
func (c *Client) daemonPID(ctx context.Context) (int, error) {
	pid, err := pidfile.Read(c.loc.PIDFile)
	if err == nil {
		return pid, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("%w: %w", ErrClient, err)
	}

	info, err := os.Stat(c.loc.Socket)
	if err != nil || info.Mode()&os.ModeSocket == 0 {
		return 0, ErrNotRunning
	}

	replies, err := c.exchange(ctx, c.req)
	if err != nil {
		return 0, err
	}
	if len(replies) == 0 || replies[0].Type != protocol.TypeInt || replies[0].Int <= 0 {
		return 0, fmt.Errorf("%w: daemon did not report its PID", ErrClient)
	}
	return int(replies[0].Int), nil
}

// Returns the argument vector of process pid and the executable to run it
// with.
func commandLine(pid int) ([]string, string, error) {
	dir := procRoot + "/" + strconv.Itoa(pid)

	data, err := os.ReadFile(dir + "/cmdline")
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrClient, err)
	}

	var argv []string
	for _, arg := range bytes.Split(bytes.TrimRight(data, "\x00"), []byte{0}) {
		argv = append(argv, string(arg))
	}
	if len(argv) == 0 || argv[0] == "" {
		return nil, "", fmt.Errorf("%w: empty command line for PID %d", ErrClient, pid)
	}

	if exe, err := os.Readlink(dir + "/exe"); err == nil {
		return argv, exe, nil
	}
	exe, err := exec.LookPath(argv[0])
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrClient, err)
	}
	return argv, exe, nil
}
