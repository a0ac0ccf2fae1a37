package device

import "errors"

var (
	ErrDevice        = errors.New("device error")
	ErrNoDevice      = errors.New("no backlight device found")
	ErrInvalidDevice = errors.New("invalid backlight device")
	ErrNotBound      = errors.New("no backlight device bound")
)
