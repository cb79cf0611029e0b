// Package metrics exposes Prometheus instrumentation for mirror
// sessions. All recorder methods are nil-safe so callers can run with
// instrumentation disabled.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Session records counters for the mirror session lifecycle.
type Session struct {
	sessionsStarted  prometheus.Counter
	sessionsStopped  prometheus.Counter
	sessionFailures  *prometheus.CounterVec
	audioUnavailable prometheus.Counter
	outputLines      *prometheus.CounterVec
	windowFits       prometheus.Counter
}

// NewSession registers the session metrics with the given registerer.
func NewSession(reg prometheus.Registerer) *Session {
	factory := promauto.With(reg)
	return &Session{
		sessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "droidcast_sessions_started_total",
			Help: "Number of mirror sessions started",
		}),
		sessionsStopped: factory.NewCounter(prometheus.CounterOpts{
			Name: "droidcast_sessions_stopped_total",
			Help: "Number of mirror sessions stopped",
		}),
		sessionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "droidcast_session_failures_total",
			Help: "Number of session failures by reason",
		}, []string{"reason"}),
		audioUnavailable: factory.NewCounter(prometheus.CounterOpts{
			Name: "droidcast_audio_unavailable_total",
			Help: "Number of times device audio capture was reported unavailable",
		}),
		outputLines: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "droidcast_process_output_lines_total",
			Help: "Number of output lines drained from supervised processes",
		}, []string{"process"}),
		windowFits: factory.NewCounter(prometheus.CounterOpts{
			Name: "droidcast_window_fits_total",
			Help: "Number of aspect-fit window geometry updates applied",
		}),
	}
}

// SessionStarted increments the started counter.
func (s *Session) SessionStarted() {
	if s != nil {
		s.sessionsStarted.Inc()
	}
}

// SessionStopped increments the stopped counter.
func (s *Session) SessionStopped() {
	if s != nil {
		s.sessionsStopped.Inc()
	}
}

// SessionFailure increments the failure counter for the given reason.
func (s *Session) SessionFailure(reason string) {
	if s != nil {
		s.sessionFailures.WithLabelValues(reason).Inc()
	}
}

// AudioUnavailable increments the audio unavailability counter.
func (s *Session) AudioUnavailable() {
	if s != nil {
		s.audioUnavailable.Inc()
	}
}

// OutputLine counts one drained output line for the named process.
func (s *Session) OutputLine(process string) {
	if s != nil {
		s.outputLines.WithLabelValues(process).Inc()
	}
}

// WindowFit counts one applied window geometry update.
func (s *Session) WindowFit() {
	if s != nil {
		s.windowFits.Inc()
	}
}
