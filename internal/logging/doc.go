// Package logging provides the slog handler used by the backlight binary.
//
// A [Handler] starts out buffering records, because the final level, output
// stream and colour mode are only known after the command line has been
// parsed. Once configured, [Handler.Flush] replays the buffered records that
// pass the configured level and switches to writing directly.
//
// Example usage:
//
//	h := logging.NewHandler()
//	slog.SetDefault(slog.New(h.WithGroup("backlight")))
//
//	// ... parse flags ...
//
//	h.SetLevel(slog.LevelDebug)
//	h.SetColor(isatty.IsTerminal(os.Stderr.Fd()))
//	h.SetStream(os.Stderr)
//	h.Flush()
package logging
