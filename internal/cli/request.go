package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alecthomas/kong"
	"github.com/cruciblehq/backlightd/internal/protocol"
)

// Represents a command without arguments that is forwarded to the daemon.
type RequestCmd struct{}

// Executes the command named by the selected node.
func (c *RequestCmd) Run(ctx context.Context, kctx *kong.Context) error {
	field, err := selectedField(kctx)
	if err != nil {
		return err
	}
	return forward(ctx, protocol.Request(field))
}

// Represents a command that sets an integer setting on the daemon.
type ValueCmd struct {
	Value int `arg:"" name:"n" help:"New value."`
}

// Executes the command named by the selected node.
func (c *ValueCmd) Run(ctx context.Context, kctx *kong.Context) error {
	field, err := selectedField(kctx)
	if err != nil {
		return err
	}
	return forward(ctx, protocol.IntRequest(field, c.Value))
}

// Represents a command that sets a string setting on the daemon.
type NameCmd struct {
	Name string `arg:"" name:"name" help:"Device name."`
}

// Executes the command named by the selected node.
func (c *NameCmd) Run(ctx context.Context, kctx *kong.Context) error {
	field, err := selectedField(kctx)
	if err != nil {
		return err
	}
	if len(c.Name) >= protocol.StringSize {
		return fmt.Errorf("%w: name longer than %d bytes", ErrArgument, protocol.StringSize-1)
	}
	return forward(ctx, protocol.StringRequest(field, c.Name))
}

// Represents a sleep hook command. Hooks are accepted so that the binary
// can be linked into sleep hook directories, and do nothing.
type StubCmd struct{}

// Executes the hook.
func (c *StubCmd) Run(kctx *kong.Context) error {
	slog.Debug("ignoring sleep hook", "hook", kctx.Selected().Name)
	return nil
}

// Returns the protocol field of the selected command.
func selectedField(kctx *kong.Context) (protocol.Field, error) {
	node := kctx.Selected()
	if node == nil {
		return protocol.FieldNone, ErrUsage
	}
	field, err := protocol.ParseField(node.Name)
	if err != nil {
		return protocol.FieldNone, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return field, nil
}

// Runs the client role with the global settings and req.
func forward(ctx context.Context, req protocol.Message) error {
	sess := newSession(clientRole)
	if err := sess.apply(settings()...); err != nil {
		return err
	}
	if err := sess.apply(req); err != nil {
		return err
	}

	if err := sess.client.Run(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrRun, err)
	}
	return nil
}
