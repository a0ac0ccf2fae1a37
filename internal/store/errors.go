package store

import "errors"

var (
	ErrStore = errors.New("config store error")
	ErrShort = errors.New("config file is truncated")
	ErrField = errors.New("field is not persisted")
)
