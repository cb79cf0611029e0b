// Package audio supervises the sndcpy audio relay that runs alongside
// the mirror process. The relay is interactive: it prints a prompt that
// must be acknowledged with a newline before playback starts, and a
// second prompt family that would stop playback if acknowledged. The
// sidecar answers the first and never the second.
package audio

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/droidcast/droidcast/internal/classify"
	"github.com/droidcast/droidcast/internal/events"
	"github.com/droidcast/droidcast/internal/metrics"
	"github.com/droidcast/droidcast/internal/proc"
	"github.com/droidcast/droidcast/internal/sched"
)

// Config holds the sidecar's tunables.
type Config struct {
	// ExecutablePath is the configured sndcpy binary. When unset the
	// SNDCPY_EXE environment variable and the system path are consulted.
	ExecutablePath string

	GracefulTimeout time.Duration
	KillTimeout     time.Duration
	DrainInterval   time.Duration
}

func (c Config) withDefaults() Config {
	if c.GracefulTimeout <= 0 {
		c.GracefulTimeout = 2 * time.Second
	}
	if c.KillTimeout <= 0 {
		c.KillTimeout = 5 * time.Second
	}
	if c.DrainInterval <= 0 {
		c.DrainInterval = 200 * time.Millisecond
	}
	return c
}

// Sidecar supervises the audio relay process. All methods must be
// called from the scheduler loop.
type Sidecar struct {
	cfg     Config
	loop    *sched.Loop
	bus     *events.Bus
	metrics *metrics.Session
	logger  *slog.Logger

	spawn   func(spec proc.Spec, logger *slog.Logger) (*proc.Handle, error)
	resolve func(configured, envVar, name string) (string, error)

	handle    *proc.Handle
	queue     *proc.LineQueue
	drain     *sched.Ticker
	requested bool
	acked     bool
	warned    bool
	stopping  bool
}

// New creates a sidecar. The loop must already be started.
func New(cfg Config, loop *sched.Loop, bus *events.Bus, m *metrics.Session, logger *slog.Logger) *Sidecar {
	return &Sidecar{
		cfg:     cfg.withDefaults(),
		loop:    loop,
		bus:     bus,
		metrics: m,
		logger:  logger,
		spawn:   proc.Start,
		resolve: proc.ResolveExecutable,
	}
}

// Start launches the relay for the given device, replacing any previous
// instance. Returns false when the relay could not be started; the
// mirror session continues without audio in that case.
func (s *Sidecar) Start(serial string) bool {
	s.Stop()

	exe, err := s.resolve(s.cfg.ExecutablePath, "SNDCPY_EXE", "sndcpy")
	if err != nil {
		s.unavailable("sndcpy executable not found, continuing without audio.")
		return false
	}

	handle, err := s.spawn(proc.Spec{
		Path: exe,
		Env: []string{
			"ANDROID_SERIAL=" + serial,
			"SNDCPY_SERIAL=" + serial,
		},
		CombineOutput: true,
		PipeStdin:     true,
	}, s.logger)
	if err != nil {
		s.unavailable(fmt.Sprintf("Failed to start audio relay: %v.", err))
		return false
	}

	s.handle = handle
	s.queue = proc.NewLineQueue()
	proc.ReadLines(handle.Output(), s.queue, s.logger)
	s.requested = true
	s.acked = false
	s.warned = false
	s.stopping = false
	s.drain = s.loop.Every(s.cfg.DrainInterval, s.drainOutput)
	s.logger.Info("Audio relay started", "serial", serial, "pid", handle.PID())
	return true
}

// Stop terminates the relay. Idempotent; stopping an idle sidecar does
// nothing.
func (s *Sidecar) Stop() {
	if s.drain != nil {
		s.drain.Stop()
		s.drain = nil
	}
	if s.handle == nil {
		return
	}

	s.stopping = true
	s.handle.Stop(s.cfg.GracefulTimeout, s.cfg.KillTimeout)
	s.stopping = false
	s.handle = nil
	s.queue = nil
	s.requested = false
	s.acked = false
	s.logger.Debug("Audio relay stopped")
}

// Active reports whether a relay process is being supervised.
func (s *Sidecar) Active() bool { return s.handle != nil }

// drainOutput empties the output queue, then checks for process exit.
func (s *Sidecar) drainOutput() {
	if s.queue != nil {
		for _, line := range s.queue.Drain() {
			s.handleLine(line)
		}
	}
	if s.handle == nil {
		return
	}
	code, exited := s.handle.ExitCode()
	if !exited {
		return
	}

	unexpected := s.requested && !s.stopping && code != 0
	s.Stop()
	if unexpected {
		s.unavailable(fmt.Sprintf("Audio relay terminated unexpectedly with code %d. Continuing without audio.", code))
	}
}

func (s *Sidecar) handleLine(line string) {
	if trimmed := strings.TrimSpace(line); trimmed != "" {
		s.logger.Debug("sndcpy output", "line", trimmed)
	}
	s.metrics.OutputLine("sndcpy")

	switch classify.Classify(line) {
	case classify.StopPrompt:
		// Answering would stop playback.
		s.logger.Debug("Ignoring stop prompt from audio relay")
	case classify.ContinuePrompt:
		if s.acked || s.handle == nil {
			return
		}
		s.acked = true
		if err := s.handle.WriteLine(""); err != nil {
			s.logger.Warn("Unable to acknowledge relay prompt", "error", err)
		}
	case classify.AudioUnavailable:
		if !s.warned {
			s.warned = true
			s.unavailable("Device refused the audio stream. Continuing without audio.")
		}
	}
}

func (s *Sidecar) unavailable(message string) {
	s.metrics.AudioUnavailable()
	s.bus.Publish(events.AudioUnavailableEvent{
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	s.logger.Warn("Audio unavailable", "message", message)
}
