package main

import (
	"log/slog"
	"os"

	"github.com/cruciblehq/backlightd/internal"
	"github.com/cruciblehq/backlightd/internal/cli"
	"github.com/cruciblehq/backlightd/internal/logging"
)

// Runs the backlight daemon or its client, depending on the command.
//
// Logging is buffered until the command line has been parsed, so the debug
// records below only appear with --debug or a debug build. The process exits
// 0 on success, 1 for a missing or unknown command, 2 for a bad argument and
// 3 when the command itself failed.
func main() {
	slog.SetDefault(logger())

	slog.Debug("build", "version", internal.VersionString())

	slog.Debug("invoked",
		"pid", os.Getpid(),
		"uid", os.Geteuid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	err := cli.Execute(os.Args[1:])
	if err != nil {
		slog.Error(err.Error())
	}
	os.Exit(cli.ExitCode(err))
}

// Returns the process logger. Records are held back until cli.Execute has
// applied -q, -v and --debug; until then the level comes from linker flags.
func logger() *slog.Logger {
	handler := logging.NewHandler()
	handler.SetLevel(logLevel())
	return slog.New(handler.WithGroup(internal.Name))
}

// Level before flags are parsed.
func logLevel() slog.Level {
	if internal.IsDebug() {
		return slog.LevelDebug
	}
	if internal.IsQuiet() {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// Working directory for the startup record.
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
