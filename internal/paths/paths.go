package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cruciblehq/backlightd/internal"
)

const (

	// System-wide parent of the working directory for a root daemon.
	systemStateDir = "/var/lib"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for the config and PID files.
	DefaultFileMode os.FileMode = 0664

	// Permission mode applied to the socket after bind. Any local user may
	// control the backlight.
	SocketMode os.FileMode = 0666
)

// Default working directory.
//
//	root:   /var/lib/backlight
//	others: $XDG_STATE_HOME/backlight (~/.local/state/backlight)
func Workdir() string {
	if os.Geteuid() == 0 {
		return filepath.Join(systemStateDir, internal.Name)
	}
	return filepath.Join(xdg.StateHome, internal.Name)
}

// Path of the control socket inside workdir.
func Socket(workdir string) string {
	return filepath.Join(workdir, internal.Name+".socket")
}

// Path of the PID file inside workdir.
func PIDFile(workdir string) string {
	return filepath.Join(workdir, internal.Name+".pid")
}

// Path of the persisted configuration record inside workdir.
func Config(workdir string) string {
	return filepath.Join(workdir, internal.Name+".conf")
}

// Set of paths a process role works with. Empty fields are filled from
// Workdir by [Locations.Resolve].
type Locations struct {
	Workdir string // Directory for state files.
	Socket  string // Control socket.
	PIDFile string // PID file of the running daemon.
	Config  string // Persisted configuration record.
}

// Returns a copy with every unset path replaced by its default. The socket,
// PID file and config default to files inside the (possibly overridden)
// working directory.
func (l Locations) Resolve() Locations {
	if l.Workdir == "" {
		l.Workdir = Workdir()
	}
	if l.Socket == "" {
		l.Socket = Socket(l.Workdir)
	}
	if l.PIDFile == "" {
		l.PIDFile = PIDFile(l.Workdir)
	}
	if l.Config == "" {
		l.Config = Config(l.Workdir)
	}
	return l
}
