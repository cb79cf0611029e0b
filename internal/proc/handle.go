// Package proc wraps external process lifecycles behind a small capability
// surface: spawn with captured output, liveness and exit-code observation,
// line writes to stdin, and graceful-then-forced termination. Supervisors
// own handles exclusively; nothing here calls back into them.
package proc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Spec describes a process to spawn.
type Spec struct {
	Path string
	Args []string
	// Env entries are appended to the current environment.
	Env []string
	// CaptureStderr exposes the stderr stream via Stderr().
	CaptureStderr bool
	// CombineOutput merges stdout and stderr into a single stream exposed
	// via Output(). Mutually exclusive with CaptureStderr.
	CombineOutput bool
	// PipeStdin opens a writable stdin pipe for WriteLine.
	PipeStdin bool
}

// Handle is a running (or exited) external process. The owning supervisor
// is the only writer; Alive and ExitCode are safe from any goroutine.
type Handle struct {
	cmd    *exec.Cmd
	logger *slog.Logger

	stderr io.ReadCloser
	output io.ReadCloser
	stdin  io.WriteCloser

	done     chan struct{}
	mu       sync.Mutex
	exitCode int
	exited   bool
}

// Start spawns the process described by spec. The returned handle has
// already begun waiting for the process in the background.
func Start(spec Spec, logger *slog.Logger) (*Handle, error) {
	if spec.Path == "" {
		return nil, fmt.Errorf("empty executable path")
	}

	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}

	h := &Handle{
		cmd:    cmd,
		logger: logger,
		done:   make(chan struct{}),
	}

	var combinedWriter *io.PipeWriter
	switch {
	case spec.CombineOutput:
		pr, pw := io.Pipe()
		cmd.Stdout = pw
		cmd.Stderr = pw
		h.output = pr
		combinedWriter = pw
	case spec.CaptureStderr:
		pipe, err := cmd.StderrPipe()
		if err != nil {
			return nil, fmt.Errorf("stderr pipe: %w", err)
		}
		h.stderr = pipe
	}

	if spec.PipeStdin {
		pipe, err := cmd.StdinPipe()
		if err != nil {
			return nil, fmt.Errorf("stdin pipe: %w", err)
		}
		h.stdin = pipe
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	logger.Debug("Process started", "path", spec.Path, "pid", cmd.Process.Pid)

	go func() {
		err := cmd.Wait()
		if combinedWriter != nil {
			_ = combinedWriter.Close()
		}
		h.mu.Lock()
		h.exitCode = exitCodeFromError(err)
		h.exited = true
		h.mu.Unlock()
		close(h.done)
	}()

	return h, nil
}

// Stderr returns the captured stderr stream, or nil.
func (h *Handle) Stderr() io.ReadCloser { return h.stderr }

// Output returns the combined stdout+stderr stream, or nil.
func (h *Handle) Output() io.ReadCloser { return h.output }

// PID returns the operating system process id.
func (h *Handle) PID() int { return h.cmd.Process.Pid }

// Alive reports whether the process has not yet exited.
func (h *Handle) Alive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.exited
}

// ExitCode returns the exit code once the process has exited.
func (h *Handle) ExitCode() (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitCode, h.exited
}

// WriteLine writes s followed by a newline to the process's stdin pipe.
func (h *Handle) WriteLine(s string) error {
	if h.stdin == nil {
		return fmt.Errorf("stdin not piped")
	}
	w := bufio.NewWriter(h.stdin)
	if _, err := w.WriteString(s + "\n"); err != nil {
		return err
	}
	return w.Flush()
}

// Stop terminates the process: SIGTERM, wait up to graceful, then SIGKILL
// and wait up to kill. Teardown errors are logged, never returned; the
// goal is deterministic resource release. Safe to call on an exited handle.
func (h *Handle) Stop(graceful, kill time.Duration) {
	if h.stdin != nil {
		_ = h.stdin.Close()
	}

	h.mu.Lock()
	exited := h.exited
	h.mu.Unlock()
	if exited {
		return
	}

	h.logger.Debug("Sending SIGTERM to process", "pid", h.cmd.Process.Pid)
	if err := h.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		if !errors.Is(err, os.ErrProcessDone) {
			h.logger.Warn("Failed to send SIGTERM", "error", err)
		}
	}

	select {
	case <-h.done:
		return
	case <-time.After(graceful):
	}

	h.logger.Warn("Graceful shutdown timeout, forcing kill", "timeout", graceful)
	if err := h.cmd.Process.Kill(); err != nil {
		// Process may have exited between the timeout and the kill.
		if !errors.Is(err, os.ErrProcessDone) {
			h.logger.Error("Failed to kill process", "error", err)
		}
	}

	select {
	case <-h.done:
	case <-time.After(kill):
		h.logger.Error("Process did not exit after kill signal")
	}
}

// exitCodeFromError extracts the exit code from a Wait error.
// Returns 0 for nil, the code for ExitError, or 1 for other errors.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
