package audio

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/droidcast/droidcast/internal/events"
	"github.com/droidcast/droidcast/internal/proc"
	"github.com/droidcast/droidcast/internal/sched"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newSidecar wires a sidecar with fast ticks and a spawner running the
// given shell script in place of sndcpy.
func newSidecar(t *testing.T, script string) (*Sidecar, *sched.Loop, *events.Bus) {
	t.Helper()

	logger := testLogger()
	loop := sched.NewLoop(logger)
	loop.Start()
	t.Cleanup(loop.Stop)

	bus := events.New()
	cfg := Config{
		GracefulTimeout: 500 * time.Millisecond,
		KillTimeout:     time.Second,
		DrainInterval:   5 * time.Millisecond,
	}
	s := New(cfg, loop, bus, nil, logger)
	s.spawn = func(spec proc.Spec, l *slog.Logger) (*proc.Handle, error) {
		return proc.Start(proc.Spec{
			Path:          "/bin/sh",
			Args:          []string{"-c", script},
			Env:           spec.Env,
			CombineOutput: true,
			PipeStdin:     true,
		}, l)
	}
	s.resolve = func(configured, envVar, name string) (string, error) {
		return "/bin/sh", nil
	}
	t.Cleanup(func() { loop.Run(s.Stop) })
	return s, loop, bus
}

func acked(loop *sched.Loop, s *Sidecar) bool {
	var v bool
	loop.Run(func() { v = s.acked })
	return v
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}

func TestContinuePromptAcknowledgedOnce(t *testing.T) {
	script := `printf 'Press Enter to continue\nPress Enter to continue\nPress Enter to continue\n'; read line; sleep 10`
	s, loop, _ := newSidecar(t, script)

	var ok bool
	loop.Run(func() { ok = s.Start("SERIAL") })
	if !ok {
		t.Fatal("Start() = false")
	}

	waitFor(t, "prompt acknowledgement", func() bool { return acked(loop, s) })

	// Further continue prompts drained after the first must not write
	// again; the acknowledged flag stays latched for the session.
	time.Sleep(100 * time.Millisecond)
	if !acked(loop, s) {
		t.Error("acknowledgement flag reset")
	}
}

func TestStopPromptNeverAcknowledged(t *testing.T) {
	script := `printf 'Press Enter to stop recording\n'; sleep 10`
	s, loop, _ := newSidecar(t, script)

	loop.Run(func() { s.Start("SERIAL") })

	time.Sleep(100 * time.Millisecond)
	if acked(loop, s) {
		t.Error("stop prompt was acknowledged")
	}
}

func TestUnexpectedExitReportsAudioUnavailable(t *testing.T) {
	s, loop, bus := newSidecar(t, "exit 5")

	audio := make(chan events.AudioUnavailableEvent, 1)
	defer bus.Subscribe(func(e events.AudioUnavailableEvent) { audio <- e })()

	loop.Run(func() { s.Start("SERIAL") })

	select {
	case e := <-audio:
		if e.Message != "Audio relay terminated unexpectedly with code 5. Continuing without audio." {
			t.Errorf("event message = %q", e.Message)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for audio unavailable event")
	}

	var active bool
	loop.Run(func() { active = s.Active() })
	if active {
		t.Error("sidecar still active after exit")
	}
}

func TestExplicitStopIsQuiet(t *testing.T) {
	s, loop, bus := newSidecar(t, "sleep 10")

	audio := make(chan events.AudioUnavailableEvent, 1)
	defer bus.Subscribe(func(e events.AudioUnavailableEvent) { audio <- e })()

	loop.Run(func() { s.Start("SERIAL") })
	loop.Run(s.Stop)
	loop.Run(s.Stop)

	select {
	case e := <-audio:
		t.Fatalf("unexpected audio unavailable event: %+v", e)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestResolveFailureReturnsFalse(t *testing.T) {
	s, loop, bus := newSidecar(t, "sleep 10")
	s.resolve = func(configured, envVar, name string) (string, error) {
		return "", proc.ErrExecutableNotFound
	}

	audio := make(chan events.AudioUnavailableEvent, 1)
	defer bus.Subscribe(func(e events.AudioUnavailableEvent) { audio <- e })()

	var ok bool
	loop.Run(func() { ok = s.Start("SERIAL") })
	if ok {
		t.Error("Start() = true with unresolvable executable")
	}

	select {
	case <-audio:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for audio unavailable event")
	}
}
