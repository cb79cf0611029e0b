package display

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// XdoWindowSystem implements WindowSystem by shelling out to xdotool
// and xprop. Both tools are standard on X11 desktops and avoid linking
// against Xlib.
type XdoWindowSystem struct {
	logger *slog.Logger
	run    func(name string, args ...string) ([]byte, error)
}

// NewXdoWindowSystem creates the X11 window system backend.
func NewXdoWindowSystem(logger *slog.Logger) *XdoWindowSystem {
	return &XdoWindowSystem{
		logger: logger,
		run: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).Output()
		},
	}
}

// FindWindow locates a window whose title matches exactly. When several
// match, the first reported by xdotool wins.
func (x *XdoWindowSystem) FindWindow(title string) (WindowID, bool) {
	out, err := x.run("xdotool", "search", "--name", "^"+regexpQuote(title)+"$")
	if err != nil {
		return 0, false
	}
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		id, perr := strconv.ParseUint(strings.TrimSpace(line), 10, 64)
		if perr == nil && id != 0 {
			return WindowID(id), true
		}
	}
	return 0, false
}

// StripDecorations clears the Motif WM hints so the window manager
// draws no border or title bar.
func (x *XdoWindowSystem) StripDecorations(id WindowID) error {
	_, err := x.run("xprop", "-id", windowArg(id),
		"-f", "_MOTIF_WM_HINTS", "32c",
		"-set", "_MOTIF_WM_HINTS", "0x2, 0x0, 0x0, 0x0, 0x0")
	if err != nil {
		return fmt.Errorf("xprop set _MOTIF_WM_HINTS: %w", err)
	}
	return nil
}

// Reparent moves child into parent's client area at origin.
func (x *XdoWindowSystem) Reparent(child, parent WindowID) error {
	_, err := x.run("xdotool", "windowreparent", windowArg(child), windowArg(parent))
	if err != nil {
		return fmt.Errorf("xdotool windowreparent: %w", err)
	}
	return nil
}

// RefreshStyle remaps the window so the manager re-applies its hints.
func (x *XdoWindowSystem) RefreshStyle(id WindowID) error {
	_, err := x.run("xdotool", "windowmap", windowArg(id))
	if err != nil {
		return fmt.Errorf("xdotool windowmap: %w", err)
	}
	return nil
}

// MoveResize applies geometry in a single xdotool invocation.
func (x *XdoWindowSystem) MoveResize(id WindowID, r Rect) error {
	_, err := x.run("xdotool",
		"windowmove", windowArg(id), strconv.Itoa(r.X), strconv.Itoa(r.Y),
		"windowsize", windowArg(id), strconv.Itoa(r.Width), strconv.Itoa(r.Height))
	if err != nil {
		return fmt.Errorf("xdotool windowmove/windowsize: %w", err)
	}
	return nil
}

// ClientRect reads the window geometry via xdotool's shell output,
// KEY=VALUE per line.
func (x *XdoWindowSystem) ClientRect(id WindowID) (Rect, bool) {
	out, err := x.run("xdotool", "getwindowgeometry", "--shell", windowArg(id))
	if err != nil {
		return Rect{}, false
	}

	values := map[string]int{}
	for _, line := range strings.Split(string(out), "\n") {
		key, value, found := strings.Cut(strings.TrimSpace(line), "=")
		if !found {
			continue
		}
		if n, perr := strconv.Atoi(value); perr == nil {
			values[key] = n
		}
	}

	width, wok := values["WIDTH"]
	height, hok := values["HEIGHT"]
	if !wok || !hok {
		return Rect{}, false
	}
	return Rect{X: values["X"], Y: values["Y"], Width: width, Height: height}, true
}

func windowArg(id WindowID) string {
	return strconv.FormatUint(uint64(id), 10)
}

// regexpQuote escapes regexp metacharacters for xdotool's --name
// pattern so window titles match literally.
func regexpQuote(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
