// Package device drives a sysfs backlight.
//
// Each device under the backlight class directory exposes three decimal text
// files: brightness (written to request a value), actual_brightness (read to
// learn the value the hardware applied) and max_brightness. A [Controller]
// keeps the first two open for its whole binding so that every tick of a
// transition costs a seek and a small read or write rather than a path
// lookup.
//
// Example usage:
//
//	c := device.New(device.DefaultRoot)
//	defer c.Close()
//
//	if err := c.Bind(""); err != nil { // picks the device with the largest range
//	    return err
//	}
//
//	if err := c.Set(c.Max() / 2); err != nil {
//	    return err
//	}
package device
