package cli

import (
	"fmt"
	"os"

	"github.com/cruciblehq/backlightd/internal/client"
	"github.com/cruciblehq/backlightd/internal/protocol"
	"github.com/cruciblehq/backlightd/internal/server"
)

// Process role selected by the command.
type role int

const (
	clientRole role = iota // Forwards one request to the daemon.
	serverRole             // Runs the daemon.
)

// Role state of one invocation. Exactly one of client and server is set,
// according to role.
type session struct {
	role   role
	client *client.Client
	server *server.Server
}

// Creates the session for r.
func newSession(r role) *session {
	switch r {
	case serverRole:
		return &session{role: r, server: server.New(server.Config{})}
	default:
		return &session{role: r, client: client.New(os.Stdout)}
	}
}

// Returns the handler that settings and commands are applied to.
func (s *session) handler() protocol.Handler {
	if s.role == serverRole {
		return s.server
	}
	return s.client
}

// Applies messages in order, stopping at the first error reply.
func (s *session) apply(msgs ...protocol.Message) error {
	h := s.handler()
	for _, m := range msgs {
		for _, r := range h.Handle(m) {
			if r.Type == protocol.TypeError {
				return fmt.Errorf("%w: %s: %s", ErrArgument, m.Field, r.Str)
			}
		}
	}
	return nil
}
