package protocol

import "errors"

var (
	ErrProtocol    = errors.New("protocol error")
	ErrMessageSize = errors.New("received a broken message")
	ErrUnknown     = errors.New("unknown field")
)
