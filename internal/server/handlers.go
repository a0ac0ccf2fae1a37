package server

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/cruciblehq/backlightd/internal/protocol"
	"github.com/cruciblehq/backlightd/internal/transition"
)

// Handles one request and returns its reply stream.
//
// Before [Server.Start] only startup settings are accepted; afterwards they
// are refused and runtime commands are served. The returned stream always
// ends with exactly one final message.
func (s *Server) Handle(m protocol.Message) protocol.Replies {
	if err := m.Validate(); err != nil {
		return protocol.Replies{protocol.ErrorReply(m.Field, err)}
	}

	var r protocol.Replies
	switch m.Field {
	case protocol.FieldWorkdir, protocol.FieldSocket, protocol.FieldPIDFile, protocol.FieldConfig, protocol.FieldDaemon:
		r = s.handleSetting(m)
	case protocol.FieldStart:
		r = s.handleStart(m)
	default:
		if !s.started {
			return protocol.Replies{protocol.ErrorReply(m.Field, ErrNotRunning)}
		}
		r = s.handleCommand(m)
	}
	return r.Terminated(m.Field)
}

// Routes a runtime command.
func (s *Server) handleCommand(m protocol.Message) protocol.Replies {
	switch m.Field {
	case protocol.FieldIncrease, protocol.FieldDecrease, protocol.FieldOn, protocol.FieldOff, protocol.FieldSwitch:
		s.handleLevel(m.Field)
		return nil
	case protocol.FieldStop, protocol.FieldRestart:
		return protocol.Replies{protocol.IntReply(m.Field, os.Getpid())}
	case protocol.FieldSaved:
		return s.handleSaved(m)
	case protocol.FieldList:
		return s.handleList(m)
	case protocol.FieldMinimal, protocol.FieldNumLevels, protocol.FieldTransition:
		return s.handleConfig(m)
	case protocol.FieldDevice:
		return s.handleDevice(m)
	default:
		return protocol.Replies{protocol.Errorf(m.Field, "unknown command: %s", m.Field)}
	}
}

// Applies a path or daemon-mode setting before startup.
func (s *Server) handleSetting(m protocol.Message) protocol.Replies {
	if s.started {
		return protocol.Replies{protocol.ErrorReply(m.Field, fmt.Errorf("%w: %s", ErrStartupOnly, m.Field))}
	}

	switch m.Field {
	case protocol.FieldWorkdir:
		s.loc.Workdir = m.Str
	case protocol.FieldSocket:
		s.loc.Socket = m.Str
	case protocol.FieldPIDFile:
		s.loc.PIDFile = m.Str
	case protocol.FieldConfig:
		s.loc.Config = m.Str
	case protocol.FieldDaemon:
		s.daemon = true
	}
	return nil
}

// Acknowledges the start command during startup; a running server refuses it.
func (s *Server) handleStart(m protocol.Message) protocol.Replies {
	if s.started {
		return protocol.Replies{protocol.ErrorReply(m.Field, ErrAlreadyRunning)}
	}
	return nil
}

// Changes the level index. Turning the display off remembers the current
// level; turning it on, or stepping while off, restores it.
func (s *Server) handleLevel(f protocol.Field) {
	prev := s.level

	switch f {
	case protocol.FieldIncrease:
		if s.level < 0 {
			s.restore()
		} else {
			s.level = min(s.level+1, s.levels.NumLevels)
		}
	case protocol.FieldDecrease:
		if s.level < 0 {
			s.restore()
		} else {
			s.level = max(s.level-1, 0)
		}
	case protocol.FieldOn:
		if s.level < 0 {
			s.restore()
		}
	case protocol.FieldOff:
		s.off()
	case protocol.FieldSwitch:
		if s.level < 0 {
			s.restore()
		} else {
			s.off()
		}
	}

	s.engine.Rearm()
	slog.Info("level changed", "command", f, "from", prev, "to", s.level)
}

// Returns to the saved level.
func (s *Server) restore() {
	s.level = s.levels.Restore(s.conf.SavedLevel)
}

// Saves the current level and turns the display off.
func (s *Server) off() {
	if s.level >= 0 {
		s.conf.SavedLevel = s.level
		s.save(protocol.FieldSaved)
	}
	s.level = transition.Off
}

// Replies with the level "on" would restore: the current level while on,
// the saved one while off.
func (s *Server) handleSaved(m protocol.Message) protocol.Replies {
	level := s.level
	if level < 0 {
		level = s.levels.Restore(s.conf.SavedLevel)
	}
	return protocol.Replies{protocol.IntReply(m.Field, level)}
}

// Streams the names of available backlight devices.
func (s *Server) handleList(m protocol.Message) protocol.Replies {
	names, err := s.dev.List()
	if err != nil {
		return protocol.Replies{protocol.ErrorReply(m.Field, err)}
	}

	r := make(protocol.Replies, 0, len(names)+1)
	for _, name := range names {
		r = append(r, protocol.StringReply(m.Field, name))
	}
	return append(r, protocol.Done(m.Field))
}

// Updates minimal brightness, level count or transition time, applies it to
// the level mapping and persists the field.
func (s *Server) handleConfig(m protocol.Message) protocol.Replies {
	v := int(m.Int)
	if v < 0 || (m.Field == protocol.FieldNumLevels && v == 0) {
		return protocol.Replies{protocol.ErrorReply(m.Field, fmt.Errorf("%w: %s %d", ErrArgument, m.Field, v))}
	}

	switch m.Field {
	case protocol.FieldMinimal:
		s.conf.Minimal = v
	case protocol.FieldNumLevels:
		s.conf.NumLevels = v
	case protocol.FieldTransition:
		s.conf.TransitionMs = v
	}

	s.relevel()
	s.engine.Rearm()

	if err := s.save(m.Field); err != nil {
		return protocol.Replies{protocol.ErrorReply(m.Field, err)}
	}
	return nil
}

// Binds another device, starting from the middle level, and persists its
// name.
func (s *Server) handleDevice(m protocol.Message) protocol.Replies {
	if err := s.dev.Bind(m.Str); err != nil {
		return protocol.Replies{protocol.ErrorReply(m.Field, err)}
	}

	s.conf.DeviceName = s.dev.Name()
	s.relevel()
	s.level = s.levels.NumLevels / 2
	s.engine.Rearm()

	slog.Info("device bound", "device", s.dev.Name(), "max", s.dev.Max(), "level", s.level)

	if err := s.save(m.Field); err != nil {
		return protocol.Replies{protocol.ErrorReply(m.Field, err)}
	}
	return nil
}

// Recomputes the level mapping from conf and the bound device and keeps the
// level index within range.
func (s *Server) relevel() {
	s.levels = transition.NewLevels(s.conf.Minimal, s.conf.NumLevels, s.dev.Max())
	s.level = s.levels.Clamp(s.level)
}
