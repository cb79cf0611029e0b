package events

// Event type constants for kelindar/event.
const (
	TypeSessionStarted uint32 = iota + 1
	TypeSessionStopped
	TypeSessionError
	TypeAudioUnavailable
	TypeDeviceDiscovery
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// SessionStartedEvent is published when the mirror window has been found
// and the session reached the streaming state.
type SessionStartedEvent struct {
	Serial    string `json:"serial" example:"R5CT60SV0RX" doc:"Device serial"`
	Width     int    `json:"width,omitempty" doc:"Device screen width in pixels, 0 when unknown"`
	Height    int    `json:"height,omitempty" doc:"Device screen height in pixels, 0 when unknown"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for SessionStartedEvent.
func (e SessionStartedEvent) Type() uint32 { return TypeSessionStarted }

// SessionStoppedEvent is published exactly once per teardown.
type SessionStoppedEvent struct {
	Serial    string `json:"serial,omitempty" doc:"Device serial"`
	Timestamp string `json:"timestamp" doc:"Event timestamp"`
}

// Type returns the event type identifier for SessionStoppedEvent.
func (e SessionStoppedEvent) Type() uint32 { return TypeSessionStopped }

// SessionErrorEvent carries a session-fatal failure: executable not found,
// invalid configuration, spawn failure, or unexpected process exit.
type SessionErrorEvent struct {
	Message   string `json:"message" doc:"Error message"`
	Timestamp string `json:"timestamp" doc:"Event timestamp"`
}

// Type returns the event type identifier for SessionErrorEvent.
func (e SessionErrorEvent) Type() uint32 { return TypeSessionError }

// AudioUnavailableEvent is a degradation, not a failure: video streaming
// continues without audio.
type AudioUnavailableEvent struct {
	Message   string `json:"message" doc:"Reason audio is unavailable"`
	Timestamp string `json:"timestamp" doc:"Event timestamp"`
}

// Type returns the event type identifier for AudioUnavailableEvent.
func (e AudioUnavailableEvent) Type() uint32 { return TypeAudioUnavailable }

// DeviceDiscoveryEvent reports a change in the adb device list.
type DeviceDiscoveryEvent struct {
	Serial    string `json:"serial" doc:"Device serial"`
	Status    string `json:"status" example:"device" doc:"Device status as reported by adb"`
	Action    string `json:"action" example:"added" doc:"Action type: added, removed, changed"`
	Timestamp string `json:"timestamp" doc:"Event timestamp"`
}

// Type returns the event type identifier for DeviceDiscoveryEvent.
func (e DeviceDiscoveryEvent) Type() uint32 { return TypeDeviceDiscovery }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"session" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
