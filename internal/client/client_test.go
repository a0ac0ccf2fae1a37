package client

import (
	"bytes"
	"context"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/cruciblehq/backlightd/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Serves one connection on the socket in dir, replying with replies and
// recording the request.
func fakeDaemon(t *testing.T, dir string, replies ...protocol.Message) <-chan protocol.Message {
	t.Helper()

	l, err := net.Listen("unix", filepath.Join(dir, "backlight.socket"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	got := make(chan protocol.Message, 1)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		req, err := protocol.Read(conn)
		if err != nil {
			return
		}
		got <- req
		for _, m := range replies {
			if protocol.Write(conn, m) != nil {
				return
			}
		}
	}()
	return got
}

func newClient(t *testing.T, dir string) (*Client, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer
	c := New(&out)
	replies := c.Handle(protocol.StringRequest(protocol.FieldWorkdir, dir))
	require.Equal(t, protocol.TypeNone, replies[0].Type)
	return c, &out
}

// Starts a process that lives until the test ends or it is signalled.
func sleeper(t *testing.T) *exec.Cmd {
	t.Helper()

	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		cmd.Process.Kill()
		cmd.Wait()
	})
	return cmd
}

func TestHandleAcceptsOneCommand(t *testing.T) {
	c := New(nil)

	replies := c.Handle(protocol.Request(protocol.FieldIncrease))
	require.Len(t, replies, 1)
	assert.Equal(t, protocol.TypeNone, replies[0].Type)

	replies = c.Handle(protocol.Request(protocol.FieldDecrease))
	require.Len(t, replies, 1)
	assert.Equal(t, protocol.TypeError, replies[0].Type)

	req, ok := c.Request()
	assert.True(t, ok)
	assert.Equal(t, protocol.FieldIncrease, req.Field)
}

func TestHandleRefusesServerSettings(t *testing.T) {
	c := New(nil)

	for _, m := range []protocol.Message{
		protocol.StringRequest(protocol.FieldConfig, "/tmp/conf"),
		protocol.Request(protocol.FieldDaemon),
		protocol.Request(protocol.FieldStart),
	} {
		replies := c.Handle(m)
		require.Len(t, replies, 1)
		assert.Equal(t, protocol.TypeError, replies[0].Type, m.Field.String())
	}

	_, ok := c.Request()
	assert.False(t, ok)
}

func TestHandleRejectsWrongPayload(t *testing.T) {
	c := New(nil)

	replies := c.Handle(protocol.StringRequest(protocol.FieldMinimal, "ten"))
	require.Len(t, replies, 1)
	assert.Equal(t, protocol.TypeError, replies[0].Type)
}

func TestHandleSetsPaths(t *testing.T) {
	c := New(nil)

	c.Handle(protocol.StringRequest(protocol.FieldWorkdir, "/tmp/wd"))
	c.Handle(protocol.StringRequest(protocol.FieldSocket, "/tmp/other.socket"))

	loc := c.Locations()
	assert.Equal(t, "/tmp/wd", loc.Workdir)
	assert.Equal(t, "/tmp/other.socket", loc.Socket)
	assert.Equal(t, "/tmp/wd/backlight.pid", loc.PIDFile)
}

func TestRunWithoutCommand(t *testing.T) {
	c := New(nil)
	assert.ErrorIs(t, c.Run(context.Background()), ErrNoCommand)
}

func TestRunPrintsReplies(t *testing.T) {
	dir := t.TempDir()
	got := fakeDaemon(t, dir,
		protocol.StringReply(protocol.FieldList, "acpi_video0"),
		protocol.StringReply(protocol.FieldList, "intel_backlight"),
		protocol.Done(protocol.FieldList),
	)

	c, out := newClient(t, dir)
	c.Handle(protocol.Request(protocol.FieldList))

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, "acpi_video0\nintel_backlight\n", out.String())
	assert.Equal(t, protocol.FieldList, (<-got).Field)
}

func TestRunPrintsIntReply(t *testing.T) {
	dir := t.TempDir()
	fakeDaemon(t, dir, protocol.IntReply(protocol.FieldSaved, 12))

	c, out := newClient(t, dir)
	c.Handle(protocol.Request(protocol.FieldSaved))

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, "12\n", out.String())
}

func TestRunSendsArgument(t *testing.T) {
	dir := t.TempDir()
	got := fakeDaemon(t, dir, protocol.Done(protocol.FieldNumLevels))

	c, _ := newClient(t, dir)
	c.Handle(protocol.IntRequest(protocol.FieldNumLevels, 15))

	require.NoError(t, c.Run(context.Background()))
	req := <-got
	assert.Equal(t, protocol.FieldNumLevels, req.Field)
	assert.Equal(t, int32(15), req.Int)
}

func TestRunReportsDaemonError(t *testing.T) {
	dir := t.TempDir()
	fakeDaemon(t, dir, protocol.Errorf(protocol.FieldDevice, "no such device"))

	c, _ := newClient(t, dir)
	c.Handle(protocol.StringRequest(protocol.FieldDevice, "missing"))

	err := c.Run(context.Background())
	assert.ErrorIs(t, err, ErrDaemon)
	assert.ErrorContains(t, err, "no such device")
}

func TestRunWithoutDaemon(t *testing.T) {
	c, _ := newClient(t, t.TempDir())
	c.Handle(protocol.Request(protocol.FieldOn))

	assert.ErrorIs(t, c.Run(context.Background()), ErrClient)
}

func TestStopSignalsDaemon(t *testing.T) {
	dir := t.TempDir()
	proc := sleeper(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backlight.pid"), []byte(strconv.Itoa(proc.Process.Pid)), 0o644))

	c, _ := newClient(t, dir)
	c.Handle(protocol.Request(protocol.FieldStop))
	require.NoError(t, c.Run(context.Background()))

	done := make(chan error, 1)
	go func() { done <- proc.Wait() }()

	select {
	case err := <-done:
		var exit *exec.ExitError
		require.ErrorAs(t, err, &exit)
		status := exit.Sys().(syscall.WaitStatus)
		assert.Equal(t, syscall.SIGTERM, status.Signal())
	case <-time.After(5 * time.Second):
		t.Fatal("daemon was not terminated")
	}
}

func TestStopAsksDaemonForPID(t *testing.T) {
	dir := t.TempDir()
	got := fakeDaemon(t, dir, protocol.IntReply(protocol.FieldStop, 4242))

	c, _ := newClient(t, dir)
	var signalled int
	c.kill = func(pid int, sig syscall.Signal) error {
		signalled = pid
		return nil
	}
	c.Handle(protocol.Request(protocol.FieldStop))

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, 4242, signalled)
	assert.Equal(t, protocol.FieldStop, (<-got).Field)
}

func TestStopWithoutDaemon(t *testing.T) {
	c, _ := newClient(t, t.TempDir())
	c.Handle(protocol.Request(protocol.FieldStop))

	assert.ErrorIs(t, c.Run(context.Background()), ErrNotRunning)
}

func TestStopRejectsBadPIDFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backlight.pid"), []byte("nope"), 0o644))

	c, _ := newClient(t, dir)
	c.Handle(protocol.Request(protocol.FieldStop))

	assert.Error(t, c.Run(context.Background()))
}

func TestRestartReplaysCommandLine(t *testing.T) {
	dir := t.TempDir()
	proc := sleeper(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backlight.pid"), []byte(strconv.Itoa(proc.Process.Pid)), 0o644))

	c, _ := newClient(t, dir)
	var signalled int
	var argv0 string
	var argv []string
	c.kill = func(pid int, sig syscall.Signal) error {
		signalled = pid
		return nil
	}
	c.exec = func(path string, args, env []string) error {
		argv0, argv = path, args
		return nil
	}
	c.Handle(protocol.Request(protocol.FieldRestart))

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, proc.Process.Pid, signalled)
	assert.Equal(t, []string{"sleep", "30"}, argv)
	assert.NotEmpty(t, argv0)
}

func TestCommandLineOfMissingProcess(t *testing.T) {
	_, _, err := commandLine(1 << 30)
	assert.ErrorIs(t, err, ErrClient)
}
