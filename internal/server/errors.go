package server

import "errors"

var (
	ErrServer         = errors.New("server error")
	ErrAlreadyRunning = errors.New("server is already running")
	ErrNotRunning     = errors.New("server is not running")
	ErrStartupOnly    = errors.New("setting can only be changed at startup")
	ErrArgument       = errors.New("invalid argument")
)
