// Package scrcpy supervises the external screen-mirroring process. The
// controller owns the session lifecycle; every state transition runs on
// the shared scheduler loop, so controller fields need no locking
// beyond the status snapshot handed to API readers.
package scrcpy

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/droidcast/droidcast/internal/adb"
	"github.com/droidcast/droidcast/internal/classify"
	"github.com/droidcast/droidcast/internal/display"
	"github.com/droidcast/droidcast/internal/events"
	"github.com/droidcast/droidcast/internal/metrics"
	"github.com/droidcast/droidcast/internal/proc"
	"github.com/droidcast/droidcast/internal/sched"
)

// DeviceBridge is the subset of adb queries the controller performs.
type DeviceBridge interface {
	FirstReadyDevice() (string, bool)
	QueryResolution(serial string) (adb.Resolution, bool)
}

// WindowFinder locates native windows by title.
type WindowFinder interface {
	FindWindow(title string) (display.WindowID, bool)
}

// WindowEmbedder adopts the mirror surface window once it appears.
type WindowEmbedder interface {
	Embed(id display.WindowID, aspect float64)
	Release()
}

// AudioSidecar supervises the companion audio relay process.
type AudioSidecar interface {
	// Start launches the relay for the given device. Returns false when
	// audio could not be made available; the session continues without it.
	Start(serial string) bool
	Stop()
}

// Config holds the controller's tunables.
type Config struct {
	// ExecutablePath is the configured scrcpy binary. When unset the
	// SCRCPY_EXE environment variable and the system path are consulted.
	ExecutablePath string

	GracefulTimeout    time.Duration
	KillTimeout        time.Duration
	WindowPollInterval time.Duration
	DrainInterval      time.Duration
}

func (c Config) withDefaults() Config {
	if c.GracefulTimeout <= 0 {
		c.GracefulTimeout = 2 * time.Second
	}
	if c.KillTimeout <= 0 {
		c.KillTimeout = 5 * time.Second
	}
	if c.WindowPollInterval <= 0 {
		c.WindowPollInterval = 250 * time.Millisecond
	}
	if c.DrainInterval <= 0 {
		c.DrainInterval = 200 * time.Millisecond
	}
	return c
}

// Deps bundles the controller's collaborators. Finder, Embedder and
// Sidecar may be nil for headless or audio-less deployments.
type Deps struct {
	Loop     *sched.Loop
	Bus      *events.Bus
	Bridge   DeviceBridge
	Finder   WindowFinder
	Embedder WindowEmbedder
	Sidecar  AudioSidecar
	Metrics  *metrics.Session
	Logger   *slog.Logger
}

// Controller drives the mirror session lifecycle.
type Controller struct {
	cfg     Config
	loop    *sched.Loop
	bus     *events.Bus
	bridge  DeviceBridge
	finder  WindowFinder
	embed   WindowEmbedder
	sidecar AudioSidecar
	metrics *metrics.Session
	logger  *slog.Logger

	spawn func(spec proc.Spec, logger *slog.Logger) (*proc.Handle, error)

	resolve func(configured, envVar, name string) (string, error)

	// Loop-owned session state. Touched only from loop tasks.
	state          State
	serial         string
	resolution     *adb.Resolution
	opts           LaunchOptions
	handle         *proc.Handle
	queue          *proc.LineQueue
	windowPoll     *sched.Ticker
	drainPoll      *sched.Ticker
	audioRequested bool
	audioActive    bool
	audioWarned    bool
	stopping       bool

	statusMu sync.RWMutex
	status   Status

	defaultsMu sync.RWMutex
	defaults   LaunchOptions
}

// New creates a controller. The loop must already be started.
func New(cfg Config, deps Deps) *Controller {
	c := &Controller{
		cfg:      cfg.withDefaults(),
		loop:     deps.Loop,
		bus:      deps.Bus,
		bridge:   deps.Bridge,
		finder:   deps.Finder,
		embed:    deps.Embedder,
		sidecar:  deps.Sidecar,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		spawn:    proc.Start,
		resolve:  proc.ResolveExecutable,
		state:    StateIdle,
		defaults: DefaultLaunchOptions(),
	}
	c.status = Status{State: StateIdle}
	return c
}

// Start schedules a session start. A serial of "" reuses the previous
// device or falls back to the first ready device.
func (c *Controller) Start(serial string, opts LaunchOptions) bool {
	return c.loop.Submit(func() { c.start(serial, opts) })
}

// Stop schedules a session stop.
func (c *Controller) Stop() bool {
	return c.loop.Submit(c.stop)
}

// Shutdown stops the session synchronously. For process teardown hooks.
func (c *Controller) Shutdown() {
	c.loop.Run(c.stop)
}

// Status returns the last published session snapshot.
func (c *Controller) Status() Status {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	return c.status
}

// Defaults returns the current default launch options.
func (c *Controller) Defaults() LaunchOptions {
	c.defaultsMu.RLock()
	defer c.defaultsMu.RUnlock()
	return c.defaults
}

// SetDefaults replaces the default launch options. Affects future
// starts only; a running session keeps its options.
func (c *Controller) SetDefaults(opts LaunchOptions) {
	c.defaultsMu.Lock()
	c.defaults = opts
	c.defaultsMu.Unlock()
}

func (c *Controller) start(serial string, opts LaunchOptions) {
	if c.handle != nil && c.handle.Alive() {
		c.logger.Debug("Session already running, ignoring start request")
		return
	}

	normalized, err := opts.Normalized()
	if err != nil {
		c.fail("invalid_configuration", fmt.Sprintf("Invalid mirror configuration: %v.", err))
		return
	}
	c.opts = normalized

	if serial != "" {
		c.serial = serial
	}
	if c.serial == "" {
		if found, ok := c.bridge.FirstReadyDevice(); ok {
			c.serial = found
		} else {
			c.logger.Info("No ready device detected, mirror process will auto-select")
		}
	}

	exe, err := c.resolve(c.cfg.ExecutablePath, "SCRCPY_EXE", "scrcpy")
	if err != nil {
		c.fail("executable_not_found", "scrcpy executable not found. Install scrcpy or set SCRCPY_EXE.")
		return
	}

	c.resolution = nil
	if res, ok := c.bridge.QueryResolution(c.serial); ok {
		c.resolution = &res
		c.logger.Debug("Device resolution detected", "resolution", res.String())
	}

	c.audioRequested = normalized.Audio
	c.audioActive = false
	c.audioWarned = false
	if c.sidecar != nil {
		if normalized.Audio {
			c.audioActive = c.sidecar.Start(c.serial)
			if !c.audioActive {
				c.logger.Warn("Audio relay unavailable, continuing without audio")
			}
		} else {
			c.sidecar.Stop()
		}
	}

	handle, err := c.spawn(proc.Spec{
		Path:          exe,
		Args:          normalized.Arguments(c.serial),
		CaptureStderr: true,
	}, c.logger)
	if err != nil {
		if c.sidecar != nil {
			c.sidecar.Stop()
		}
		c.audioActive = false
		c.fail("spawn_failed", fmt.Sprintf("Failed to start scrcpy: %v.", err))
		return
	}

	c.handle = handle
	c.queue = proc.NewLineQueue()
	proc.ReadLines(handle.Stderr(), c.queue, c.logger)
	c.stopping = false
	c.setState(StateStarting, "")
	c.metrics.SessionStarted()

	c.drainPoll = c.loop.Every(c.cfg.DrainInterval, c.drainOutput)
	c.windowPoll = c.loop.Every(c.cfg.WindowPollInterval, c.pollWindow)
	c.logger.Info("Mirror session starting", "serial", c.serial, "pid", handle.PID())
}

// pollWindow looks for the mirror window by its title. Once found the
// poll stops, the window is embedded and the session counts as started.
func (c *Controller) pollWindow() {
	if c.handle == nil || c.finder == nil {
		return
	}
	id, ok := c.finder.FindWindow(c.opts.WindowTitle)
	if !ok {
		return
	}
	if c.windowPoll != nil {
		c.windowPoll.Stop()
		c.windowPoll = nil
	}

	var aspect float64
	var width, height int
	if c.resolution != nil {
		aspect = c.resolution.Aspect()
		width, height = c.resolution.Width, c.resolution.Height
	}
	if c.embed != nil {
		c.embed.Embed(id, aspect)
	}

	if c.audioRequested && !c.audioActive {
		c.setState(StateStreamingDegraded, "audio unavailable")
	} else {
		c.setState(StateStreaming, "")
	}
	c.bus.Publish(events.SessionStartedEvent{
		Serial:    c.serial,
		Width:     width,
		Height:    height,
		Timestamp: timestamp(),
	})
	c.logger.Info("Mirror window embedded", "serial", c.serial, "window", id)
}

// drainOutput empties the stderr queue, then checks for process exit.
// The queue is always drained first so classification of final output
// precedes exit handling.
func (c *Controller) drainOutput() {
	if c.queue != nil {
		for _, line := range c.queue.Drain() {
			c.handleLine(line)
		}
	}
	if c.handle == nil {
		return
	}
	code, exited := c.handle.ExitCode()
	if !exited {
		return
	}

	unexpected := !c.stopping && code != 0
	serial := c.serial
	c.stop()
	if unexpected {
		c.metrics.SessionFailure("unexpected_exit")
		c.bus.Publish(events.SessionErrorEvent{
			Message:   fmt.Sprintf("scrcpy exited unexpectedly with code %d.", code),
			Timestamp: timestamp(),
		})
		c.logger.Error("Mirror process exited unexpectedly", "serial", serial, "code", code)
	}
}

func (c *Controller) handleLine(line string) {
	if trimmed := strings.TrimSpace(line); trimmed != "" {
		c.logger.Debug("scrcpy output", "line", trimmed)
	}
	c.metrics.OutputLine("scrcpy")

	if classify.Classify(line) == classify.AudioUnavailable {
		c.degradeAudio("Audio capture is not available on this device. Mirroring continues without audio.")
	}
}

// degradeAudio downgrades the session to video-only. Warned at most
// once per session.
func (c *Controller) degradeAudio(message string) {
	if !c.audioRequested || c.audioWarned {
		return
	}
	c.audioWarned = true
	c.audioActive = false
	if c.state == StateStreaming {
		c.setState(StateStreamingDegraded, "audio unavailable")
	}
	c.metrics.AudioUnavailable()
	c.bus.Publish(events.AudioUnavailableEvent{Message: message, Timestamp: timestamp()})
	c.logger.Warn("Device audio capture unavailable", "serial", c.serial)
}

// stop tears the session down: pollers first so nothing fires against a
// handle mid-teardown, then the embedded window, then the processes.
// Emits exactly one stopped event per running session; a stop with no
// session is a logged no-op.
func (c *Controller) stop() {
	if c.windowPoll != nil {
		c.windowPoll.Stop()
		c.windowPoll = nil
	}
	if c.drainPoll != nil {
		c.drainPoll.Stop()
		c.drainPoll = nil
	}

	if c.handle == nil {
		if c.state != StateIdle {
			c.setState(StateIdle, "")
		}
		c.logger.Debug("Stop requested but no session is running")
		return
	}

	c.setState(StateStopping, "")
	c.stopping = true
	if c.embed != nil {
		c.embed.Release()
	}
	c.handle.Stop(c.cfg.GracefulTimeout, c.cfg.KillTimeout)
	c.stopping = false
	if c.sidecar != nil {
		c.sidecar.Stop()
	}

	serial := c.serial
	c.handle = nil
	c.queue = nil
	c.audioRequested = false
	c.audioActive = false
	c.setState(StateIdle, "")
	c.metrics.SessionStopped()
	c.bus.Publish(events.SessionStoppedEvent{Serial: serial, Timestamp: timestamp()})
	c.logger.Info("Mirror session stopped", "serial", serial)
}

// fail reports a start failure. The session never came up, so no
// stopped event is emitted.
func (c *Controller) fail(reason, message string) {
	c.metrics.SessionFailure(reason)
	c.setState(StateFailed, message)
	c.bus.Publish(events.SessionErrorEvent{Message: message, Timestamp: timestamp()})
	c.logger.Error("Session start failed", "reason", reason, "message", message)
}

func (c *Controller) setState(s State, message string) {
	c.state = s
	snapshot := Status{
		State:       s,
		Serial:      c.serial,
		AudioActive: c.audioActive,
		Message:     message,
	}
	if c.resolution != nil {
		res := *c.resolution
		snapshot.Resolution = &res
	}
	c.statusMu.Lock()
	c.status = snapshot
	c.statusMu.Unlock()
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
