package scrcpy

import "github.com/droidcast/droidcast/internal/adb"

// State is the session lifecycle phase.
type State string

// Session states.
const (
	StateIdle              State = "idle"
	StateStarting          State = "starting"
	StateStreaming         State = "streaming"
	StateStreamingDegraded State = "streaming_degraded"
	StateStopping          State = "stopping"
	StateFailed            State = "failed"
)

// Status is a point-in-time snapshot of the session, safe to read from
// any goroutine via Controller.Status.
type Status struct {
	State       State           `json:"state"`
	Serial      string          `json:"serial,omitempty"`
	Resolution  *adb.Resolution `json:"resolution,omitempty"`
	AudioActive bool            `json:"audio_active"`
	Message     string          `json:"message,omitempty"`
}
