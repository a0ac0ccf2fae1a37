package pidfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backlight.pid")
	require.NoError(t, Write(path, 0644))

	pid, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, os.Getpid(), pid)
	require.Equal(t, os.Getpid(), Running(path))
}

func TestReadGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backlight.pid")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0644))

	_, err := Read(path)
	require.ErrorIs(t, err, ErrPIDFile)
	require.Zero(t, Running(path))
}

func TestRunningMissingFile(t *testing.T) {
	require.Zero(t, Running(filepath.Join(t.TempDir(), "missing.pid")))
}

func TestAlive(t *testing.T) {
	require.True(t, Alive(os.Getpid()))
	require.False(t, Alive(0))
	require.False(t, Alive(-1))
}
