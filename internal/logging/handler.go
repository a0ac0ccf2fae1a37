package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Time layout used for verbose records.
const timeLayout = "15:04:05.000"

// State shared by a handler and every handler derived from it.
type sink struct {
	mu       sync.Mutex
	level    slog.LevelVar
	out      io.Writer
	pending  []pendingRecord // Records held back until Flush.
	flushed  bool            // Whether records are written directly.
	verbose  bool            // Whether timestamps and source groups are printed.
	colorful bool            // Whether ANSI colours are emitted.
}

// A record captured before the handler was configured, together with the
// attributes and groups of the handler that received it.
type pendingRecord struct {
	record slog.Record
	attrs  []slog.Attr
	groups []string
}

// Line-oriented slog handler with deferred configuration.
type Handler struct {
	sink   *sink
	attrs  []slog.Attr // Attributes added through WithAttrs.
	groups []string    // Groups added through WithGroup.
}

// Creates a handler that buffers every record until [Handler.Flush].
func NewHandler() *Handler {
	s := &sink{}
	s.level.Set(slog.LevelInfo)
	return &Handler{sink: s}
}

// Sets the minimum level of records that are written.
func (h *Handler) SetLevel(level slog.Level) {
	h.sink.level.Set(level)
}

// Sets the destination of formatted records.
func (h *Handler) SetStream(w io.Writer) {
	h.sink.mu.Lock()
	h.sink.out = w
	h.sink.mu.Unlock()
}

// Enables or disables timestamps and group prefixes.
func (h *Handler) SetVerbose(verbose bool) {
	h.sink.mu.Lock()
	h.sink.verbose = verbose
	h.sink.mu.Unlock()
}

// Enables or disables ANSI colours.
func (h *Handler) SetColor(enabled bool) {
	h.sink.mu.Lock()
	h.sink.colorful = enabled
	h.sink.mu.Unlock()
}

// Writes out buffered records that pass the current level and makes the
// handler write directly from now on. Without a stream, buffered records
// are discarded.
func (h *Handler) Flush() {
	s := h.sink
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.pending
	s.pending = nil
	s.flushed = true

	if s.out == nil {
		return
	}
	for _, p := range pending {
		if p.record.Level >= s.level.Level() {
			s.write(p.record, p.attrs, p.groups)
		}
	}
}

// Reports whether records at level are handled. Before Flush every record
// is accepted so that nothing is lost to a level that is raised later.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	s := h.sink
	s.mu.Lock()
	flushed := s.flushed
	s.mu.Unlock()

	if !flushed {
		return true
	}
	return level >= s.level.Level()
}

// Formats and writes the record, or buffers it before Flush.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	s := h.sink
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.flushed {
		s.pending = append(s.pending, pendingRecord{record: r.Clone(), attrs: h.attrs, groups: h.groups})
		return nil
	}
	if s.out == nil || r.Level < s.level.Level() {
		return nil
	}
	return s.write(r, h.attrs, h.groups)
}

// Returns a handler that adds attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

// Returns a handler that prefixes records with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string{}, h.groups...), name)
	return &next
}

// Formats a record as a single line. Must be called with mu held.
func (s *sink) write(r slog.Record, attrs []slog.Attr, groups []string) error {
	var b strings.Builder

	if s.verbose {
		b.WriteString(s.paint(color.New(color.Faint), r.Time.Format(timeLayout)))
		b.WriteByte(' ')
		if len(groups) > 0 {
			b.WriteString(strings.Join(groups, "."))
			b.WriteString(": ")
		}
	}

	b.WriteString(s.paint(levelColor(r.Level), levelLabel(r.Level)))
	b.WriteByte(' ')
	b.WriteString(r.Message)

	for _, a := range attrs {
		s.writeAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		s.writeAttr(&b, a)
		return true
	})
	b.WriteByte('\n')

	_, err := io.WriteString(s.out, b.String())
	return err
}

// Appends a single " key=value" pair.
func (s *sink) writeAttr(b *strings.Builder, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	b.WriteByte(' ')
	b.WriteString(s.paint(color.New(color.FgCyan), a.Key))
	b.WriteByte('=')

	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		if strings.ContainsAny(v, " \t\"=") {
			v = fmt.Sprintf("%q", v)
		}
		b.WriteString(v)
	case slog.KindTime:
		b.WriteString(a.Value.Time().Format(time.RFC3339))
	default:
		b.WriteString(a.Value.String())
	}
}

// Applies c to text when colours are enabled.
func (s *sink) paint(c *color.Color, text string) string {
	if !s.colorful {
		return text
	}
	c.EnableColor()
	return c.Sprint(text)
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error:"
	case level >= slog.LevelWarn:
		return "warning:"
	case level >= slog.LevelInfo:
		return "info:"
	default:
		return "debug:"
	}
}

func levelColor(level slog.Level) *color.Color {
	switch {
	case level >= slog.LevelError:
		return color.New(color.FgRed, color.Bold)
	case level >= slog.LevelWarn:
		return color.New(color.FgYellow)
	case level >= slog.LevelInfo:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgMagenta)
	}
}
