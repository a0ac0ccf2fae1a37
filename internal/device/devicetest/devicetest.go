// Package devicetest builds fake sysfs backlight trees for tests.
//
// A fake device is a directory holding a regular brightness file, an
// actual_brightness symlink to it (so every write is read back as applied)
// and a max_brightness file.
package devicetest

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Creates a backlight class directory in a fresh temporary directory.
func Root(t testing.TB) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "backlight")
	require.NoError(t, os.MkdirAll(root, 0755))
	return root
}

// Creates device name under root with the given range and current value.
func Create(t testing.TB, root, name string, limit, value int) {
	t.Helper()

	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "max_brightness"), []byte(strconv.Itoa(limit)+"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brightness"), []byte(strconv.Itoa(value)+"\n"), 0644))
	require.NoError(t, os.Symlink("brightness", filepath.Join(dir, "actual_brightness")))
}

// Detaches actual_brightness from brightness so that writes are no longer
// reflected, simulating hardware that ignores requests.
func Stick(t testing.TB, root, name string, value int) {
	t.Helper()

	actual := filepath.Join(root, name, "actual_brightness")
	require.NoError(t, os.Remove(actual))
	require.NoError(t, os.WriteFile(actual, []byte(strconv.Itoa(value)+"\n"), 0644))
}

// Returns the last value written to the device's brightness file.
func Value(t testing.TB, root, name string) int {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(root, name, "brightness"))
	require.NoError(t, err)

	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	require.NoError(t, err)
	return v
}
