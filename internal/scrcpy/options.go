package scrcpy

import (
	"fmt"
	"regexp"
	"strings"
)

// Built-in launch defaults, overridable through configuration.
const (
	DefaultWindowTitle = "Android (Embedded)"
	DefaultMaxFPS      = 60
	DefaultBitrate     = "16M"
)

// Accepts an integer or decimal value, optionally suffixed with K, M or
// G, optionally followed by "bit/s".
var bitratePattern = regexp.MustCompile(`(?i)^\d+(?:\.\d+)?(?:[KMG](?:bit/s)?)?$`)

// LaunchOptions describe how the mirror process is started.
type LaunchOptions struct {
	MaxFPS      int    `json:"max_fps" toml:"max_fps"`
	Bitrate     string `json:"bitrate" toml:"bitrate"`
	StayAwake   bool   `json:"stay_awake" toml:"stay_awake"`
	Audio       bool   `json:"audio" toml:"audio"`
	WindowTitle string `json:"window_title" toml:"window_title"`
}

// DefaultLaunchOptions returns the built-in defaults: 60 fps, 16M video
// bitrate, audio enabled, device kept awake.
func DefaultLaunchOptions() LaunchOptions {
	return LaunchOptions{
		MaxFPS:      DefaultMaxFPS,
		Bitrate:     DefaultBitrate,
		StayAwake:   true,
		Audio:       true,
		WindowTitle: DefaultWindowTitle,
	}
}

// Normalized validates the options and returns a canonical copy: the
// bitrate in its normalized spelling and an empty window title replaced
// by the default.
func (o LaunchOptions) Normalized() (LaunchOptions, error) {
	if o.MaxFPS <= 0 {
		return LaunchOptions{}, fmt.Errorf("%w: max fps must be greater than zero, got %d", ErrInvalidConfiguration, o.MaxFPS)
	}
	if strings.TrimSpace(o.Bitrate) == "" {
		return LaunchOptions{}, fmt.Errorf("%w: bitrate must not be blank", ErrInvalidConfiguration)
	}

	normalized, err := NormalizeBitrate(o.Bitrate)
	if err != nil {
		return LaunchOptions{}, err
	}
	o.Bitrate = normalized

	if o.WindowTitle == "" {
		o.WindowTitle = DefaultWindowTitle
	}
	return o, nil
}

// NormalizeBitrate canonicalizes a bitrate expression such as "8m" or
// "2.5Mbit/s": the numeric part and unit letter are uppercased while a
// trailing "bit/s" keeps its spelling.
func NormalizeBitrate(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if !bitratePattern.MatchString(text) {
		return "", fmt.Errorf("%w: malformed bitrate %q, expected forms like 16M, 2.5Mbit/s or 8000000", ErrInvalidConfiguration, raw)
	}

	if suffix := "bit/s"; strings.HasSuffix(strings.ToLower(text), suffix) {
		return strings.ToUpper(text[:len(text)-len(suffix)]) + suffix, nil
	}
	return strings.ToUpper(text), nil
}

// Arguments renders the scrcpy command line. The serial is optional;
// when empty scrcpy picks the device itself.
func (o LaunchOptions) Arguments(serial string) []string {
	var args []string
	if serial != "" {
		args = append(args, "-s", serial)
	}
	args = append(args,
		"--window-title="+o.WindowTitle,
		"--window-borderless",
		fmt.Sprintf("--max-fps=%d", o.MaxFPS),
		"--video-bit-rate="+o.Bitrate,
	)
	if o.StayAwake {
		args = append(args, "--stay-awake")
	}
	if !o.Audio {
		args = append(args, "--no-audio")
	}
	return args
}
