package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveDefaultsInsideWorkdir(t *testing.T) {
	l := Locations{Workdir: "/tmp/bl"}.Resolve()

	require.Equal(t, "/tmp/bl", l.Workdir)
	require.Equal(t, "/tmp/bl/backlight.socket", l.Socket)
	require.Equal(t, "/tmp/bl/backlight.pid", l.PIDFile)
	require.Equal(t, "/tmp/bl/backlight.conf", l.Config)
}

func TestResolveKeepsOverrides(t *testing.T) {
	l := Locations{
		Workdir: "/tmp/bl",
		Socket:  "/run/bl.sock",
		Config:  "/etc/bl.conf",
	}.Resolve()

	require.Equal(t, "/run/bl.sock", l.Socket)
	require.Equal(t, "/etc/bl.conf", l.Config)
	require.Equal(t, "/tmp/bl/backlight.pid", l.PIDFile)
}

func TestWorkdirEndsWithName(t *testing.T) {
	require.Equal(t, "backlight", filepath.Base(Workdir()))
}
