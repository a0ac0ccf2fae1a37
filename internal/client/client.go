package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"syscall"

	"github.com/cruciblehq/backlightd/internal/paths"
	"github.com/cruciblehq/backlightd/internal/protocol"
	"golang.org/x/sys/unix"
)

// Client role state: where the daemon lives and the one request to send.
type Client struct {
	loc     paths.Locations // Paths as configured, resolved by Run.
	req     protocol.Message
	pending bool      // A command has been set.
	out     io.Writer // Destination of printed replies.

	kill func(pid int, sig syscall.Signal) error                  // Signals the daemon.
	exec func(argv0 string, argv, env []string) error             // Replaces the process on restart.
	dial func(ctx context.Context, path string) (net.Conn, error) // Connects to the socket.
}

// Creates a client that prints replies to out.
func New(out io.Writer) *Client {
	var d net.Dialer
	return &Client{
		out:  out,
		kill: unix.Kill,
		exec: unix.Exec,
		dial: func(ctx context.Context, path string) (net.Conn, error) {
			return d.DialContext(ctx, "unix", path)
		},
	}
}

// Returns the client's paths, with defaults filled in.
func (c *Client) Locations() paths.Locations { return c.loc.Resolve() }

// Returns the command that Run will carry out.
func (c *Client) Request() (protocol.Message, bool) { return c.req, c.pending }

// Applies a path setting or records the command to send.
//
// Only one command is accepted per client; a second one is refused. Config
// path, daemon mode and start belong to the server role and are refused too.
func (c *Client) Handle(m protocol.Message) protocol.Replies {
	if err := m.Validate(); err != nil {
		return protocol.Replies{protocol.ErrorReply(m.Field, err)}
	}

	switch m.Field {
	case protocol.FieldWorkdir:
		c.loc.Workdir = m.Str
	case protocol.FieldSocket:
		c.loc.Socket = m.Str
	case protocol.FieldPIDFile:
		c.loc.PIDFile = m.Str
	case protocol.FieldNone, protocol.FieldConfig, protocol.FieldDaemon, protocol.FieldStart:
		return protocol.Replies{protocol.ErrorReply(m.Field, fmt.Errorf("%w: %s", ErrUnsupported, m.Field))}
	default:
		if c.pending {
			return protocol.Replies{protocol.ErrorReply(m.Field, fmt.Errorf("%w: %s after %s", ErrSecondCmd, m.Field, c.req.Field))}
		}
		c.req = m
		c.pending = true
	}
	return protocol.Replies{protocol.Done(m.Field)}
}

// Carries out the recorded command.
func (c *Client) Run(ctx context.Context) error {
	if !c.pending {
		return ErrNoCommand
	}
	c.loc = c.loc.Resolve()

	switch c.req.Field {
	case protocol.FieldStop, protocol.FieldRestart:
		return c.stop(ctx)
	}

	replies, err := c.exchange(ctx, c.req)
	if err != nil {
		return err
	}
	return c.print(replies)
}

// Sends req to the daemon and collects the reply stream.
func (c *Client) exchange(ctx context.Context, req protocol.Message) (protocol.Replies, error) {
	conn, err := c.dial(ctx, c.loc.Socket)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClient, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if err := protocol.Write(conn, req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClient, err)
	}

	var replies protocol.Replies
	for {
		m, err := protocol.Read(conn)
		if err != nil {
			return replies, fmt.Errorf("%w: %w", ErrClient, err)
		}
		replies = append(replies, m)
		if m.Last() {
			break
		}
	}

	slog.Debug("reply received", "command", req.Field, "messages", len(replies))
	return replies, nil
}

// Prints integer and string replies one per line. An error reply becomes
// the returned error.
func (c *Client) print(replies protocol.Replies) error {
	for _, m := range replies {
		switch m.Type {
		case protocol.TypeInt:
			fmt.Fprintln(c.out, m.Int)
		case protocol.TypeString:
			fmt.Fprintln(c.out, m.Str)
		case protocol.TypeError:
			return fmt.Errorf("%w: %s", ErrDaemon, m.Str)
		}
	}
	return nil
}
