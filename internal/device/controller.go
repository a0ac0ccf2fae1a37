package device

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

const (

	// Directory holding one entry per backlight device.
	DefaultRoot = "/sys/class/backlight"

	// Attribute written to change the brightness.
	fileBrightness = "brightness"

	// Attribute read to learn the applied brightness.
	fileActual = "actual_brightness"

	// Attribute holding the upper bound of raw values.
	fileMax = "max_brightness"

	// Upper bound on the length of a decimal attribute value.
	valueSize = 32
)

// Binds one backlight device and reads and writes its raw brightness.
//
// A Controller is not safe for concurrent use; the daemon's event loop is
// its only user.
type Controller struct {
	root string   // Backlight class directory.
	name string   // Name of the bound device, empty when unbound.
	max  int      // Maximum raw brightness, captured at bind time.
	set  *os.File // Write handle on the brightness attribute.
	get  *os.File // Read handle on the actual_brightness attribute.
}

// Creates an unbound controller for devices under root.
func New(root string) *Controller {
	if root == "" {
		root = DefaultRoot
	}
	return &Controller{root: root}
}

// Returns the backlight class directory.
func (c *Controller) Root() string { return c.root }

// Returns the name of the bound device, or "" when unbound.
func (c *Controller) Name() string { return c.name }

// Returns the maximum raw brightness of the bound device.
func (c *Controller) Max() int { return c.max }

// Reports whether a device is bound.
func (c *Controller) Bound() bool { return c.set != nil && c.get != nil }

// Reports whether name is a device whose brightness can be written and whose
// applied brightness can be read by this process.
func (c *Controller) Validate(name string) bool {
	if !validName(name) {
		return false
	}
	return unix.Access(c.path(name, fileBrightness), unix.W_OK) == nil &&
		unix.Access(c.path(name, fileActual), unix.R_OK) == nil
}

// Binds the named device, or when name is empty, the device with the largest
// maximum brightness.
//
// The new handles are opened and the maximum is read before the current
// binding is released, so a failed bind leaves the previous device in place.
func (c *Controller) Bind(name string) error {
	if name == "" {
		found, err := c.Discover()
		if err != nil {
			return err
		}
		name = found
	}

	if !c.Validate(name) {
		return fmt.Errorf("%w: %q", ErrInvalidDevice, name)
	}

	limit, err := c.readMax(name)
	if err != nil {
		return err
	}
	if limit <= 0 {
		return fmt.Errorf("%w: %q reports max brightness %d", ErrInvalidDevice, name, limit)
	}

	set, err := os.OpenFile(c.path(name, fileBrightness), os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDevice, err)
	}

	get, err := os.Open(c.path(name, fileActual))
	if err != nil {
		set.Close()
		return fmt.Errorf("%w: %w", ErrDevice, err)
	}

	c.Close()
	c.name, c.max, c.set, c.get = name, limit, set, get
	return nil
}

// Returns the name of the device with the largest maximum brightness. Ties
// go to the entry listed first.
func (c *Controller) Discover() (string, error) {
	names, err := c.List()
	if err != nil {
		return "", err
	}

	best, bestMax := "", 0
	for _, name := range names {
		limit, err := c.readMax(name)
		if err != nil {
			continue
		}
		if limit > bestMax {
			best, bestMax = name, limit
		}
	}

	if best == "" {
		return "", fmt.Errorf("%w in %s", ErrNoDevice, c.root)
	}
	return best, nil
}

// Returns the names of the entries in the backlight class directory.
func (c *Controller) List() ([]string, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDevice, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if validName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Reads the brightness the hardware currently applies.
func (c *Controller) Get() (int, error) {
	if !c.Bound() {
		return 0, ErrNotBound
	}
	if _, err := c.get.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDevice, err)
	}

	buf := make([]byte, valueSize)
	n, err := c.get.Read(buf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("%w: %w", ErrDevice, err)
	}
	return parseValue(buf[:n])
}

// Requests raw brightness v.
func (c *Controller) Set(v int) error {
	if !c.Bound() {
		return ErrNotBound
	}
	if _, err := c.set.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", ErrDevice, err)
	}

	// sysfs ignores the size; plain files used in place of sysfs need it
	// to drop the tail of a longer previous value.
	if err := c.set.Truncate(0); err != nil {
		slog.Debug("brightness file not truncated", "device", c.name, "error", err)
	}

	if _, err := c.set.WriteString(strconv.Itoa(v)); err != nil {
		return fmt.Errorf("%w: %w", ErrDevice, err)
	}
	return nil
}

// Releases the bound device, if any.
func (c *Controller) Close() error {
	var err error
	if c.set != nil {
		err = c.set.Close()
	}
	if c.get != nil {
		if e := c.get.Close(); err == nil {
			err = e
		}
	}
	c.name, c.max, c.set, c.get = "", 0, nil, nil
	return err
}

// Reads the max_brightness attribute of the named device.
func (c *Controller) readMax(name string) (int, error) {
	data, err := os.ReadFile(c.path(name, fileMax))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDevice, err)
	}
	return parseValue(data)
}

func (c *Controller) path(name, attr string) string {
	return filepath.Join(c.root, name, attr)
}

// Device names are single path elements that are not hidden.
func validName(name string) bool {
	return name != "" && !strings.HasPrefix(name, ".") && !strings.ContainsRune(name, '/')
}

func parseValue(data []byte) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDevice, err)
	}
	return v, nil
}
