package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"

	"github.com/cruciblehq/backlightd/internal/protocol"
)

// Environment variable marking a process started by detach.
const detachedEnv = "BACKLIGHT_DETACHED"

// Represents the 'backlight start' command.
type StartCmd struct{}

// Executes the start command.
//
// Starts the daemon and blocks until the context is cancelled (e.g. via
// SIGINT, SIGHUP or SIGTERM). With --daemon the command first re-executes
// itself in a new session and returns.
func (c *StartCmd) Run(ctx context.Context) error {
	sess := newSession(serverRole)
	if err := sess.apply(settings()...); err != nil {
		return err
	}
	if err := sess.apply(protocol.Request(protocol.FieldStart)); err != nil {
		return err
	}
	srv := sess.server

	if srv.Daemon() && os.Getenv(detachedEnv) == "" {
		return detach()
	}

	if err := srv.Start(); err != nil {
		return fmt.Errorf("%w: %w", ErrRun, err)
	}

	slog.Info("backlight daemon is running", "pid", os.Getpid(), "socket", srv.Locations().Socket)

	err := srv.Run(ctx)

	slog.Info("shutting down")
	if stopErr := srv.Stop(); err == nil {
		err = stopErr
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRun, err)
	}
	return nil
}

// Starts a copy of this process in a new session with standard input and
// output on the null device. Standard error is inherited.
func detach() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRun, err)
	}

	null, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRun, err)
	}
	defer null.Close()

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = append(os.Environ(), detachedEnv+"=1")
	cmd.Stdin = null
	cmd.Stdout = null
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: failed to detach: %w", ErrRun, err)
	}
	slog.Info("daemon detached", "pid", cmd.Process.Pid)

	return cmd.Process.Release()
}
