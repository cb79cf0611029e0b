// Package adb is a thin synchronous wrapper around the Android debug
// bridge CLI. All queries fail soft: a missing binary or a nonzero exit
// yields empty results and a logged warning, never an error the session
// has to handle.
package adb

import (
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Device is one row of the adb device listing.
type Device struct {
	Serial string `json:"serial"`
	Status string `json:"status"`
}

// Ready reports whether the device is authorized and usable.
func (d Device) Ready() bool { return d.Status == "device" }

// Resolution is a device screen size in pixels.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Aspect returns width/height, or 0 when the resolution is degenerate.
func (r Resolution) Aspect() float64 {
	if r.Height == 0 {
		return 0
	}
	return float64(r.Width) / float64(r.Height)
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// runner executes the adb binary and returns its combined output.
// Injectable for tests.
type runner func(args ...string) ([]byte, error)

// Bridge issues adb queries.
type Bridge struct {
	path   string
	run    runner
	logger *slog.Logger
}

// NewBridge creates a bridge using the given adb binary path ("adb" when
// empty, resolved via the system search path).
func NewBridge(path string, logger *slog.Logger) *Bridge {
	if path == "" {
		path = "adb"
	}
	b := &Bridge{path: path, logger: logger}
	b.run = func(args ...string) ([]byte, error) {
		return exec.Command(b.path, args...).CombinedOutput()
	}
	return b
}

// Scans for "Physical size: WxH" or "Override size: WxH". First match in
// output order wins.
var sizePattern = regexp.MustCompile(`(?:Physical|Override) size:\s*(\d+)x(\d+)`)

// ListDevices returns the connected devices. Empty on any failure.
func (b *Bridge) ListDevices() []Device {
	out, err := b.run("devices")
	if err != nil {
		b.logger.Warn("Unable to query adb devices", "error", err)
		return nil
	}

	var devices []Device
	lines := strings.Split(string(out), "\n")
	if len(lines) < 2 {
		return nil
	}
	// First line is the "List of devices attached" header.
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		d := Device{Serial: fields[0]}
		if len(fields) > 1 {
			d.Status = fields[1]
		}
		devices = append(devices, d)
	}
	return devices
}

// FirstReadyDevice returns the serial of the first authorized device.
func (b *Bridge) FirstReadyDevice() (string, bool) {
	for _, d := range b.ListDevices() {
		if d.Ready() {
			return d.Serial, true
		}
	}
	return "", false
}

// QueryResolution reads the device screen size via `adb shell wm size`.
// Returns false on any invocation or parse failure.
func (b *Bridge) QueryResolution(serial string) (Resolution, bool) {
	args := []string{}
	if serial != "" {
		args = append(args, "-s", serial)
	}
	args = append(args, "shell", "wm", "size")

	out, err := b.run(args...)
	if err != nil {
		b.logger.Debug("Unable to query device resolution", "error", err)
		return Resolution{}, false
	}

	for _, line := range strings.Split(string(out), "\n") {
		m := sizePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		w, werr := strconv.Atoi(m[1])
		h, herr := strconv.Atoi(m[2])
		if werr != nil || herr != nil || w <= 0 || h <= 0 {
			continue
		}
		return Resolution{Width: w, Height: h}, true
	}
	return Resolution{}, false
}

// Screencap captures a device-side screenshot as PNG bytes.
func (b *Bridge) Screencap(serial string) ([]byte, error) {
	args := []string{}
	if serial != "" {
		args = append(args, "-s", serial)
	}
	args = append(args, "exec-out", "screencap", "-p")

	out, err := b.run(args...)
	if err != nil {
		return nil, fmt.Errorf("screencap failed: %w", err)
	}
	return out, nil
}
