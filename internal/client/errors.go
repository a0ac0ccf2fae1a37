package client

import "errors"

var (
	ErrClient      = errors.New("client error")
	ErrNoCommand   = errors.New("missing command")
	ErrSecondCmd   = errors.New("only one command may be given")
	ErrUnsupported = errors.New("not supported by the client")
	ErrDaemon      = errors.New("daemon reported an error")
	ErrNotRunning  = errors.New("daemon is not running")
)
