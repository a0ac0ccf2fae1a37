package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cruciblehq/backlightd/internal/device/devicetest"
	"github.com/cruciblehq/backlightd/internal/paths"
	"github.com/cruciblehq/backlightd/internal/protocol"
	"github.com/cruciblehq/backlightd/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs a daemon on a fake backlight tree in workdir.
func runDaemon(t *testing.T, workdir string) {
	t.Helper()

	root := devicetest.Root(t)
	devicetest.Create(t, root, "panel", 1000, 0)

	srv := server.New(server.Config{
		Locations:  paths.Locations{Workdir: workdir},
		DeviceRoot: root,
	})
	require.NoError(t, srv.Start())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("daemon did not stop")
		}
		srv.Stop()
	})
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(fmt.Errorf("%w: x", ErrUsage)))
	assert.Equal(t, 2, ExitCode(fmt.Errorf("%w: x", ErrArgument)))
	assert.Equal(t, 3, ExitCode(fmt.Errorf("%w: x", ErrRun)))
	assert.Equal(t, 3, ExitCode(errors.New("other")))
}

func TestExecuteWithoutArguments(t *testing.T) {
	assert.NoError(t, Execute(nil))
}

func TestExecuteUnknownCommand(t *testing.T) {
	assert.Equal(t, 1, ExitCode(Execute([]string{"brighter"})))
}

func TestExecuteBadArgument(t *testing.T) {
	assert.Equal(t, 2, ExitCode(Execute([]string{"minimal", "bright"})))
	assert.Equal(t, 2, ExitCode(Execute([]string{"transition"})))
}

func TestExecuteRefusesDaemonFlagsForClient(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, 2, ExitCode(Execute([]string{"-w", dir, "-c", dir + "/other.conf", "on"})))
	assert.Equal(t, 2, ExitCode(Execute([]string{"-w", dir, "-d", "saved"})))
}

func TestExecuteWithoutDaemon(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, 3, ExitCode(Execute([]string{"-w", dir, "saved"})))
}

func TestExecuteForwardsRequests(t *testing.T) {
	dir := t.TempDir()
	runDaemon(t, dir)

	for _, args := range [][]string{
		{"saved"},
		{"up"},
		{"dn"},
		{"switch"},
		{"on"},
		{"list"},
		{"num-levels", "10"},
		{"transition", "0"},
		{"devname", "panel"},
	} {
		err := Execute(append([]string{"-w", dir}, args...))
		assert.NoError(t, err, args[0])
	}
}

func TestExecuteReportsDaemonErrors(t *testing.T) {
	dir := t.TempDir()
	runDaemon(t, dir)

	assert.Equal(t, 3, ExitCode(Execute([]string{"-w", dir, "devname", "missing"})))
	assert.Equal(t, 3, ExitCode(Execute([]string{"-w", dir, "num-levels", "0"})))
}

func TestExecuteSleepHooks(t *testing.T) {
	for _, hook := range []string{"hibernate", "suspend", "pre", "suspend_hybrid", "thaw", "resume", "post"} {
		assert.NoError(t, Execute([]string{hook}), hook)
	}
}

func TestExecuteVersion(t *testing.T) {
	assert.NoError(t, Execute([]string{"version"}))
}

func TestSettings(t *testing.T) {
	RootCmd = Root{Workdir: "/tmp/wd", PIDFile: "/tmp/pid", Daemon: true}

	msgs := settings()
	require.Len(t, msgs, 3)
	assert.Equal(t, "/tmp/wd", msgs[0].Str)
	assert.Equal(t, "/tmp/pid", msgs[1].Str)
	assert.Equal(t, protocol.FieldDaemon, msgs[2].Field)
	assert.NoError(t, msgs[2].Validate())
}

func TestSettingsApplyToServer(t *testing.T) {
	dir := t.TempDir()
	RootCmd = Root{Workdir: dir, Config: dir + "/other.conf", Daemon: true}

	sess := newSession(serverRole)
	require.NoError(t, sess.apply(settings()...))
	assert.True(t, sess.server.Daemon())
	assert.Equal(t, dir+"/other.conf", sess.server.Locations().Config)
}

func TestSettingsApplyToClient(t *testing.T) {
	dir := t.TempDir()
	RootCmd = Root{Workdir: dir, Socket: dir + "/ctl.socket"}

	sess := newSession(clientRole)
	require.NoError(t, sess.apply(settings()...))
	assert.Equal(t, dir+"/ctl.socket", sess.client.Locations().Socket)
}
