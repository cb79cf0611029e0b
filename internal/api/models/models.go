// Package models holds the request and response bodies of the HTTP API.
package models

import "github.com/droidcast/droidcast/internal/adb"

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"1.2.0" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Git commit hash"`
	BuildDate string `json:"build_date" doc:"Build timestamp"`
	BuildID   string `json:"build_id" doc:"Build identifier"`
	GoVersion string `json:"go_version" example:"go1.24" doc:"Go toolchain version"`
	Compiler  string `json:"compiler" example:"gc" doc:"Go compiler"`
	Platform  string `json:"platform" example:"linux/amd64" doc:"Target platform"`
}

type VersionResponse struct {
	Body VersionData
}

// Session models
type SessionStatusData struct {
	State       string `json:"state" example:"streaming" doc:"Session state"`
	Serial      string `json:"serial,omitempty" example:"R5CT60SV0RX" doc:"Mirrored device serial"`
	Width       int    `json:"width,omitempty" doc:"Device screen width in pixels"`
	Height      int    `json:"height,omitempty" doc:"Device screen height in pixels"`
	AudioActive bool   `json:"audio_active" doc:"Whether the audio relay is running"`
	Message     string `json:"message,omitempty" doc:"Last session message"`
}

type SessionStatusResponse struct {
	Body SessionStatusData
}

type StartSessionData struct {
	Serial      string `json:"serial,omitempty" example:"R5CT60SV0RX" doc:"Device serial, auto-detected when empty"`
	MaxFPS      int    `json:"max_fps,omitempty" example:"60" doc:"Frame rate cap, defaults from configuration"`
	Bitrate     string `json:"bitrate,omitempty" example:"16M" doc:"Video bitrate, e.g. 16M or 2.5Mbit/s"`
	StayAwake   *bool  `json:"stay_awake,omitempty" doc:"Keep the device awake while mirroring"`
	Audio       *bool  `json:"audio,omitempty" doc:"Forward device audio"`
	WindowTitle string `json:"window_title,omitempty" doc:"Mirror window title"`
}

type StartSessionRequest struct {
	Body StartSessionData
}

// MessageResponse is a generic acknowledgement body.
type MessageResponse struct {
	Body struct {
		Message string `json:"message" doc:"Status message"`
	}
}

// Device models
type DeviceListData struct {
	Devices []adb.Device `json:"devices" doc:"Connected adb devices"`
	Count   int          `json:"count" example:"1" doc:"Number of connected devices"`
}

type DeviceListResponse struct {
	Body DeviceListData
}

// Log models
type LogEntryData struct {
	Timestamp  string         `json:"timestamp" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"session" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured attributes"`
}

type LogHistoryData struct {
	Entries []LogEntryData `json:"entries" doc:"Buffered log entries, oldest first"`
	Count   int            `json:"count" doc:"Number of entries"`
}

type LogHistoryResponse struct {
	Body LogHistoryData
}
