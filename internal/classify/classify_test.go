package classify

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Event
	}{
		{
			name: "audio record failure",
			line: "ERROR: Cannot create AudioRecord: the microphone is busy",
			want: AudioUnavailable,
		},
		{
			name: "audio failure case insensitive",
			line: "cannot create audiorecord",
			want: AudioUnavailable,
		},
		{
			name: "stream disabled by device",
			line: "WARN: audio stream explicitly disabled by the device",
			want: AudioUnavailable,
		},
		{
			name: "continue prompt",
			line: "Press Enter to continue",
			want: ContinuePrompt,
		},
		{
			name: "continue prompt lowercase return",
			line: "press return to keep playing",
			want: ContinuePrompt,
		},
		{
			name: "stop prompt",
			line: "Press Enter to stop recording",
			want: StopPrompt,
		},
		{
			name: "quit prompt",
			line: "Press Enter to quit",
			want: StopPrompt,
		},
		{
			name: "terminate prompt",
			line: "press enter to terminate the relay",
			want: StopPrompt,
		},
		{
			name: "generic log line",
			line: "INFO: scrcpy 2.4 <https://github.com/Genymobile/scrcpy>",
			want: None,
		},
		{
			name: "empty line",
			line: "",
			want: None,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.line); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestEventString(t *testing.T) {
	if None.String() != "none" || StopPrompt.String() != "stop-prompt" {
		t.Error("unexpected Event string representation")
	}
}
