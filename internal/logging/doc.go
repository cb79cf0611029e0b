// Package logging provides structured logging with per-module log level configuration.
//
// # Overview
//
// The logging system uses Go's slog package with automatic output routing:
//   - Logs to systemd journal when available (Linux systems with journald)
//   - Logs to stdout when a terminal, pipe, or file is connected
//   - Logs to an in-memory ring buffer for the log history API and SSE streaming
//
// # Usage
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",      // Global log level: debug, info, warn, error
//		Format: "text",      // Output format: text or json
//		Modules: map[string]string{
//			"session": "debug",  // Per-module overrides
//			"api":     "warn",
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("session")
//	logger.Info("Mirror session starting", "serial", serial)
//	logger.Debug("scrcpy output", "line", line)
//
// Add contextual attributes:
//
//	logger := logging.GetLogger("audio").With("serial", serial)
//	logger.Info("Audio relay started")  // Includes serial in all logs
//
// # Output Destinations
//
// The system automatically detects available outputs:
//
//	Journal available + stdout available → MultiHandler (both)
//	Journal available only              → JournalHandler
//	Stdout available only               → TextHandler or JSONHandler
//
// Journal availability is checked via [github.com/coreos/go-systemd/v22/journal.Enabled].
//
// # Viewing Logs
//
// When running as a systemd service or on a system with journald:
//
//	journalctl -t droidcast              # All droidcast logs
//	journalctl -t droidcast -f           # Follow live
//	journalctl -t droidcast -p err       # Errors only
//
// Filter by structured fields:
//
//	journalctl -t droidcast MODULE=session
//	journalctl -t droidcast SERIAL=R5CT60SV0RX
//
// # Configuration
//
// Log levels can be set globally or per-module. Module-specific levels
// override the global level for that module only.
//
// Example TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//
//	[logging.modules]
//	session = "debug"
//	api = "warn"
//	display = "error"
package logging
