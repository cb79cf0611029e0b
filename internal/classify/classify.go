// Package classify maps raw process output lines to a closed set of
// semantic events. Keeping the rules in one pure function avoids string
// matching scattered through supervisor control flow.
package classify

import (
	"regexp"
	"strings"
)

// Event is the semantic classification of a single output line.
type Event int

// Line classifications.
const (
	// None matches nothing of interest.
	None Event = iota
	// AudioUnavailable indicates the device cannot capture audio.
	AudioUnavailable
	// ContinuePrompt is an interactive prompt that must be acknowledged
	// with a newline for playback to proceed.
	ContinuePrompt
	// StopPrompt is an interactive prompt that would terminate playback
	// if acknowledged. Never acknowledge it.
	StopPrompt
)

func (e Event) String() string {
	switch e {
	case AudioUnavailable:
		return "audio-unavailable"
	case ContinuePrompt:
		return "continue-prompt"
	case StopPrompt:
		return "stop-prompt"
	default:
		return "none"
	}
}

// Audio capture failure texts emitted by the mirror process when the
// device refuses an audio stream.
var audioFailureTexts = []string{
	"cannot create audiorecord",
	"stream explicitly disabled by the device",
}

var (
	promptPattern     = regexp.MustCompile(`(?i)press\s+(enter|return)`)
	stopPromptPattern = regexp.MustCompile(`(?i)press\s+(enter|return)\s+to\s+(stop|quit|exit|close|end|terminate|finish)`)
)

// Classify returns the semantic event for a raw output line, or None.
// Matching is case-insensitive. A prompt matching the stop family is
// classified StopPrompt even though it also matches the generic prompt
// pattern.
func Classify(line string) Event {
	lower := strings.ToLower(line)
	for _, text := range audioFailureTexts {
		if strings.Contains(lower, text) {
			return AudioUnavailable
		}
	}

	if stopPromptPattern.MatchString(line) {
		return StopPrompt
	}
	if promptPattern.MatchString(line) {
		return ContinuePrompt
	}
	return None
}
