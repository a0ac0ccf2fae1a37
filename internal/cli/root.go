package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/cruciblehq/backlightd/internal"
	"github.com/cruciblehq/backlightd/internal/logging"
	"github.com/cruciblehq/backlightd/internal/protocol"
	"github.com/mattn/go-isatty"
)

// Represents the root command of the backlight binary.
type Root struct {
	Quiet   bool   `short:"q" help:"Suppress informational output."`
	Verbose bool   `short:"v" help:"Enable verbose output."`
	Debug   bool   `help:"Enable debug output."`
	Workdir string `short:"w" help:"Override the working directory." placeholder:"DIR"`
	Socket  string `short:"s" help:"Override the control socket path." placeholder:"PATH"`
	PIDFile string `short:"p" name:"pidfile" help:"Override the PID file path." placeholder:"PATH"`
	Config  string `short:"c" help:"Override the configuration file path." placeholder:"PATH"`
	Daemon  bool   `short:"d" help:"Detach from the terminal after startup checks."`

	Start    StartCmd   `cmd:"" help:"Start the daemon."`
	Increase RequestCmd `cmd:"" aliases:"up" help:"Raise the brightness by one level."`
	Decrease RequestCmd `cmd:"" aliases:"dn" help:"Lower the brightness by one level."`
	On       RequestCmd `cmd:"" help:"Turn the display on at the saved level."`
	Off      RequestCmd `cmd:"" help:"Turn the display off."`
	Switch   RequestCmd `cmd:"" help:"Toggle the display on or off."`
	Stop     RequestCmd `cmd:"" help:"Terminate the daemon."`
	Restart  RequestCmd `cmd:"" help:"Terminate the daemon and start it again."`
	Saved    RequestCmd `cmd:"" help:"Print the current or saved level."`
	List     RequestCmd `cmd:"" help:"List available backlight devices."`

	Minimal    ValueCmd `cmd:"" help:"Set the raw brightness of level zero."`
	NumLevels  ValueCmd `cmd:"" name:"num-levels" help:"Set the number of levels."`
	Transition ValueCmd `cmd:"" help:"Set the transition duration in milliseconds."`
	Devname    NameCmd  `cmd:"" name:"devname" help:"Select the backlight device."`

	Hibernate     StubCmd `cmd:"" hidden:"" help:"Sleep hook, ignored."`
	Suspend       StubCmd `cmd:"" hidden:"" help:"Sleep hook, ignored."`
	Pre           StubCmd `cmd:"" hidden:"" help:"Sleep hook, ignored."`
	SuspendHybrid StubCmd `cmd:"" hidden:"" name:"suspend_hybrid" help:"Sleep hook, ignored."`
	Thaw          StubCmd `cmd:"" hidden:"" help:"Sleep hook, ignored."`
	Resume        StubCmd `cmd:"" hidden:"" help:"Sleep hook, ignored."`
	Post          StubCmd `cmd:"" hidden:"" help:"Sleep hook, ignored."`

	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Flags and command of the current invocation.
var RootCmd Root

// Parses args, configures logging, and runs the selected command.
//
// Without arguments the usage is printed and nil returned. Errors are
// classified with [ErrUsage], [ErrArgument] and [ErrRun]; see [ExitCode].
func Execute(args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGHUP, syscall.SIGTERM)
	defer cancel()

	RootCmd = Root{}
	parser, err := kong.New(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Backlight daemon.\n\nSmoothly adjusts the display backlight on requests received over a Unix domain socket."),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		return err
	}
	defer configureLogger()

	if len(args) == 0 {
		kctx, err := kong.Trace(parser, nil)
		if err != nil {
			return err
		}
		return kctx.PrintUsage(false)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return parseError(err)
	}

	configureLogger()

	return kctx.Run()
}

// Classifies a parse failure. A recognised command with a bad or missing
// argument is an argument error; anything else is a usage error.
func parseError(err error) error {
	var perr *kong.ParseError
	if errors.As(err, &perr) && perr.Context != nil {
		if node := perr.Context.Selected(); node != nil {
			perr.Context.PrintUsage(true)
			return fmt.Errorf("%w: %w", ErrArgument, err)
		}
	}
	return fmt.Errorf("%w: %w", ErrUsage, err)
}

// Returns the messages that carry the global settings given on the command
// line.
func settings() []protocol.Message {
	var msgs []protocol.Message
	for _, s := range []struct {
		field protocol.Field
		value string
	}{
		{protocol.FieldWorkdir, RootCmd.Workdir},
		{protocol.FieldSocket, RootCmd.Socket},
		{protocol.FieldPIDFile, RootCmd.PIDFile},
		{protocol.FieldConfig, RootCmd.Config},
	} {
		if s.value != "" {
			msgs = append(msgs, protocol.StringRequest(s.field, s.value))
		}
	}
	if RootCmd.Daemon {
		msgs = append(msgs, protocol.Request(protocol.FieldDaemon))
	}
	return msgs
}

// Configures the global logger based on CLI flags.
func configureLogger() {
	handler, ok := slog.Default().Handler().(*logging.Handler)
	if !ok {
		return // Not our handler, nothing to configure
	}

	debug := RootCmd.Debug || internal.IsDebug()
	quiet := RootCmd.Quiet || internal.IsQuiet()
	verbose := RootCmd.Verbose || internal.IsVerbose()

	if debug {
		handler.SetLevel(slog.LevelDebug)
	} else if quiet {
		handler.SetLevel(slog.LevelWarn)
	} else {
		handler.SetLevel(slog.LevelInfo)
	}

	// Commit
	handler.SetVerbose(verbose)
	handler.SetColor(isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
	handler.SetStream(os.Stderr)
	handler.Flush()
}
