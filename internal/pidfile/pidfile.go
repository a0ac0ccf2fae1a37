// Package pidfile reads and writes the daemon's PID file and checks whether
// the process it names is still alive.
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

var ErrPIDFile = errors.New("invalid PID file")

// Returns the process id recorded at path.
func Read(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrPIDFile, path)
	}
	return pid, nil
}

// Records the current process id at path, replacing any previous content.
func Write(path string, mode os.FileMode) error {
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), mode)
}

// Reports whether a process with the given id exists. A process owned by
// another user still counts as alive.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// Returns the id recorded at path if that process is alive, and 0 otherwise.
func Running(path string) int {
	pid, err := Read(path)
	if err != nil || !Alive(pid) {
		return 0
	}
	return pid
}
