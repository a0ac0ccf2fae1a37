package server

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/cruciblehq/backlightd/internal/device"
	"github.com/cruciblehq/backlightd/internal/paths"
	"github.com/cruciblehq/backlightd/internal/pidfile"
	"github.com/cruciblehq/backlightd/internal/protocol"
	"github.com/cruciblehq/backlightd/internal/store"
	"github.com/cruciblehq/backlightd/internal/transition"
	"golang.org/x/sys/unix"
)

const (

	// Number of client connections served at once.
	DefaultSlots = 9
)

// Holds server configuration. Empty fields use defaults.
type Config struct {
	Locations  paths.Locations // State file locations. Unset paths derive from the working directory.
	DeviceRoot string          // Backlight class directory. Empty uses [device.DefaultRoot].
	Slots      int             // Client connection capacity. Zero uses [DefaultSlots].
	TickMs     int             // Transition tick length. Zero uses [transition.TickMs].
}

// Backlight daemon state. Every field is owned by the goroutine running
// [Server.Run]; only the cancellation token is shared.
type Server struct {
	loc     paths.Locations    // Paths as configured, resolved by Start.
	daemon  bool               // Whether to detach before starting.
	started bool               // Start succeeded; startup-only settings are frozen.
	tickMs  int                // Transition tick length.
	conf    store.Record       // Durable settings as last requested.
	levels  transition.Levels  // Level mapping derived from conf and the device.
	level   int                // Current level index, transition.Off when off.
	wait    int                // Poll timeout chosen by the last tick.
	dev     *device.Controller // Bound backlight device.
	store   *store.Store       // Persistence for conf.
	engine  *transition.Engine // Ramp state.
	slots   *slots             // Client connections.
	token   *token             // Shutdown request.
	socket  int                // Listening socket, -1 when closed.
	pollfds []pollEntry        // Scratch poll set, rebuilt each iteration.
	buf     []byte             // Receive buffer, one byte larger than a message.
}

// Creates a server. Nothing is opened until [Server.Start] is called.
func New(cfg Config) *Server {
	n := cfg.Slots
	if n <= 0 {
		n = DefaultSlots
	}

	tick := cfg.TickMs
	if tick <= 0 {
		tick = transition.TickMs
	}

	return &Server{
		loc:    cfg.Locations,
		tickMs: tick,
		conf:   store.Empty().WithDefaults(),
		level:  transition.Off,
		wait:   transition.WaitForever,
		dev:    device.New(cfg.DeviceRoot),
		engine: transition.New(tick),
		slots:  newSlots(n),
		socket: -1,
		buf:    make([]byte, protocol.Size+1),
	}
}

// Reports whether daemon mode was requested.
func (s *Server) Daemon() bool { return s.daemon }

// Returns the server's paths, with defaults filled in.
func (s *Server) Locations() paths.Locations { return s.loc.Resolve() }

// Returns the current level index.
func (s *Server) Level() int { return s.level }

// Prepares the daemon to serve.
//
// Refuses to start if the PID file names a live process. Otherwise creates
// the working directory, loads the config, binds the backlight device,
// opens the socket and records the PID. Any failure is fatal and leaves
// nothing behind.
func (s *Server) Start() error {
	if s.started {
		return ErrAlreadyRunning
	}
	s.loc = s.loc.Resolve()

	if pid := pidfile.Running(s.loc.PIDFile); pid > 0 && pid != os.Getpid() {
		return fmt.Errorf("%w with PID %d", ErrAlreadyRunning, pid)
	}

	if err := os.MkdirAll(s.loc.Workdir, paths.DefaultDirMode); err != nil {
		return fmt.Errorf("%w: %w", ErrServer, err)
	}

	s.store = store.New(s.loc.Config)
	if err := s.load(); err != nil {
		return err
	}

	tok, err := newToken()
	if err != nil {
		s.dev.Close()
		return err
	}

	fd, err := listen(s.loc.Socket, s.slots.capacity()+1)
	if err != nil {
		tok.Close()
		s.dev.Close()
		return err
	}

	if err := pidfile.Write(s.loc.PIDFile, paths.DefaultFileMode); err != nil {
		slog.Warn("failed to write PID file", "path", s.loc.PIDFile, "error", err)
	}

	s.token = tok
	s.socket = fd
	s.started = true

	slog.Info("server listening on socket", "path", s.loc.Socket)
	return nil
}

// Loads the config and binds the device it names. A configured device that
// is no longer usable is replaced by the best available one.
func (s *Server) load() error {
	rec := s.store.Load()

	err := s.dev.Bind(rec.DeviceName)
	if err != nil && rec.DeviceName != "" {
		slog.Warn("configured device unavailable, searching", "device", rec.DeviceName, "error", err)
		err = s.dev.Bind("")
	}
	if err != nil {
		return err
	}

	s.conf = rec
	s.conf.DeviceName = s.dev.Name()
	s.levels = transition.NewLevels(rec.Minimal, rec.NumLevels, s.dev.Max())
	s.level = s.levels.Restore(rec.SavedLevel)

	slog.Info("device bound",
		"device", s.dev.Name(),
		"max", s.dev.Max(),
		"minimal", s.levels.Minimal,
		"levels", s.levels.NumLevels,
		"level", s.level,
	)
	return nil
}

// Requests shutdown. Safe to call from any goroutine; [Server.Run] returns
// within one loop iteration.
func (s *Server) Cancel() {
	if s.token != nil {
		s.token.Cancel()
	}
}

// Releases everything Start acquired: client connections, the socket, the
// device, and the socket and PID files.
func (s *Server) Stop() error {
	if !s.started {
		return nil
	}

	for i := 0; i < s.slots.capacity(); i++ {
		if fd := s.slots.release(i); fd >= 0 {
			unix.Close(fd)
		}
	}

	var errs []error
	if s.socket >= 0 {
		errs = append(errs, unix.Close(s.socket))
		s.socket = -1
	}
	errs = append(errs, s.dev.Close())

	os.Remove(s.loc.Socket)
	if pid, err := pidfile.Read(s.loc.PIDFile); err == nil && pid == os.Getpid() {
		os.Remove(s.loc.PIDFile)
	}

	s.token.Close()
	s.started = false

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrServer, err)
	}
	return nil
}

// Moves the device one step toward the current level and sets the wait
// budget for the next poll. Reaching the target persists the level.
func (s *Server) tick() {
	target := s.levels.Target(s.level, s.dev.Max())

	res, err := s.engine.Tick(s.dev, target, s.levels.Size, s.conf.TransitionMs)
	if err != nil {
		slog.Error("brightness step failed, idling until next command", "device", s.dev.Name(), "target", target, "error", err)
	}
	s.wait = res.Wait

	if res.Settled && s.level >= 0 && s.conf.SavedLevel != s.level {
		s.conf.SavedLevel = s.level
		s.save(protocol.FieldSaved)
	}
}

// Persists one field of conf, logging failures.
func (s *Server) save(field protocol.Field) error {
	if _, err := s.store.Save(s.conf, field); err != nil {
		slog.Error("failed to save configuration", "field", field, "path", s.store.Path(), "error", err)
		return err
	}
	return nil
}
