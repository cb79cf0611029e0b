package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/pelletier/go-toml/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/droidcast/droidcast/cmd"
	"github.com/droidcast/droidcast/internal/adb"
	"github.com/droidcast/droidcast/internal/api"
	"github.com/droidcast/droidcast/internal/audio"
	"github.com/droidcast/droidcast/internal/config"
	"github.com/droidcast/droidcast/internal/display"
	"github.com/droidcast/droidcast/internal/events"
	"github.com/droidcast/droidcast/internal/logging"
	"github.com/droidcast/droidcast/internal/metrics"
	"github.com/droidcast/droidcast/internal/sched"
	"github.com/droidcast/droidcast/internal/scrcpy"
	"github.com/droidcast/droidcast/internal/updater"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Address to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Tool paths. Empty means resolve via environment variable, then PATH.
	AdbPath    string `help:"Path to the adb binary" default:"" toml:"tools.adb" env:"ADB_PATH"`
	ScrcpyPath string `help:"Path to the scrcpy binary" default:"" toml:"tools.scrcpy" env:"SCRCPY_PATH"`
	SndcpyPath string `help:"Path to the sndcpy binary" default:"" toml:"tools.sndcpy" env:"SNDCPY_PATH"`

	// Session defaults, overridable per start request
	SessionMaxFPS      int    `help:"Default frame rate cap" default:"60" toml:"session.max_fps" env:"SESSION_MAX_FPS"`
	SessionBitrate     string `help:"Default video bitrate" default:"16M" toml:"session.bitrate" env:"SESSION_BITRATE"`
	SessionStayAwake   bool   `help:"Keep the device awake while mirroring" default:"true" toml:"session.stay_awake" env:"SESSION_STAY_AWAKE"`
	SessionAudio       bool   `help:"Forward device audio by default" default:"true" toml:"session.audio" env:"SESSION_AUDIO"`
	SessionWindowTitle string `help:"Mirror window title" default:"Android (Embedded)" toml:"session.window_title" env:"SESSION_WINDOW_TITLE"`

	// Display settings
	ViewportTitle     string `help:"Title of the host window the mirror surface is embedded into (empty disables reparenting)" default:"" toml:"display.viewport_title" env:"DISPLAY_VIEWPORT_TITLE"`
	FitIntervalMs     int    `help:"Window geometry refresh interval in milliseconds" default:"1000" toml:"display.fit_interval_ms" env:"DISPLAY_FIT_INTERVAL_MS"`
	DiscoveryPollMs   int    `help:"Device discovery poll interval in milliseconds" default:"2000" toml:"devices.poll_interval_ms" env:"DEVICES_POLL_INTERVAL_MS"`
	DiscoveryDisabled bool   `help:"Disable device discovery polling" default:"false" toml:"devices.discovery_disabled" env:"DEVICES_DISCOVERY_DISABLED"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Update settings
	UpdateRepo       string `help:"GitHub repository for self-updates" default:"droidcast/droidcast" toml:"update.repository" env:"UPDATE_REPOSITORY"`
	UpdatePrerelease bool   `help:"Include prereleases when checking for updates" default:"false" toml:"update.prerelease" env:"UPDATE_PRERELEASE"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingSession string `help:"Session logging level" default:"info" toml:"logging.session" env:"LOGGING_SESSION"`
	LoggingAudio   string `help:"Audio relay logging level" default:"info" toml:"logging.audio" env:"LOGGING_AUDIO"`
	LoggingDisplay string `help:"Display embedding logging level" default:"info" toml:"logging.display" env:"LOGGING_DISPLAY"`
	LoggingADB     string `help:"ADB bridge logging level" default:"info" toml:"logging.adb" env:"LOGGING_ADB"`
	LoggingAPI     string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingUpdater string `help:"Updater logging level" default:"info" toml:"logging.updater" env:"LOGGING_UPDATER"`
}

// sessionDefaultsLoader reads the [session] table from the config file
// for hot reload of launch option defaults.
func sessionDefaultsLoader(path string) (scrcpy.LaunchOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scrcpy.LaunchOptions{}, err
	}
	cfg := struct {
		Session scrcpy.LaunchOptions `toml:"session"`
	}{Session: scrcpy.DefaultLaunchOptions()}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return scrcpy.LaunchOptions{}, err
	}
	return cfg.Session, nil
}

func main() {
	var root *cobra.Command
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// root is set below before Run parses any flags
		if loadErr := config.LoadConfig(opts, root); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		loggingConfig := logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"session": opts.LoggingSession,
				"audio":   opts.LoggingAudio,
				"display": opts.LoggingDisplay,
				"adb":     opts.LoggingADB,
				"api":     opts.LoggingAPI,
				"updater": opts.LoggingUpdater,
			},
		}
		logging.Initialize(loggingConfig)

		logger := logging.GetLogger("main")

		// Event bus for in-process event handling
		eventBus := events.New()

		// Forward log entries onto the bus for the SSE log stream
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(events.LogEntryEvent{
				Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
				Level:      entry.Level,
				Module:     entry.Module,
				Message:    entry.Message,
				Attributes: entry.Attributes,
			})
		})

		sessionMetrics := metrics.NewSession(prometheus.DefaultRegisterer)

		// All session state changes run on this loop
		loop := sched.NewLoop(logger)

		bridge := adb.NewBridge(opts.AdbPath, logging.GetLogger("adb"))

		windowSystem := display.NewXdoWindowSystem(logging.GetLogger("display"))
		embedder := display.NewEmbedder(
			windowSystem,
			loop,
			opts.ViewportTitle,
			time.Duration(opts.FitIntervalMs)*time.Millisecond,
			logging.GetLogger("display"),
			sessionMetrics,
		)

		sidecar := audio.New(
			audio.Config{ExecutablePath: opts.SndcpyPath},
			loop,
			eventBus,
			sessionMetrics,
			logging.GetLogger("audio"),
		)

		controller := scrcpy.New(
			scrcpy.Config{ExecutablePath: opts.ScrcpyPath},
			scrcpy.Deps{
				Loop:     loop,
				Bus:      eventBus,
				Bridge:   bridge,
				Finder:   windowSystem,
				Embedder: embedder,
				Sidecar:  sidecar,
				Metrics:  sessionMetrics,
				Logger:   logging.GetLogger("session"),
			},
		)
		controller.SetDefaults(scrcpy.LaunchOptions{
			MaxFPS:      opts.SessionMaxFPS,
			Bitrate:     opts.SessionBitrate,
			StayAwake:   opts.SessionStayAwake,
			Audio:       opts.SessionAudio,
			WindowTitle: opts.SessionWindowTitle,
		})

		// Hot reload of session defaults from the config file
		watcher := config.NewConfigWatcher(
			opts.Config,
			sessionDefaultsLoader,
			logger,
			config.WithDebounce[scrcpy.LaunchOptions](1500*time.Millisecond),
		)
		watcher.OnReload(func(defaults scrcpy.LaunchOptions) {
			if _, err := defaults.Normalized(); err != nil {
				logger.Warn("Ignoring invalid session defaults from config", "error", err)
				return
			}
			logger.Info("Session defaults reloaded", "max_fps", defaults.MaxFPS, "bitrate", defaults.Bitrate)
			controller.SetDefaults(defaults)
		})

		var discovery *adb.Discovery
		if !opts.DiscoveryDisabled {
			discovery = adb.NewDiscovery(
				bridge,
				eventBus,
				loop,
				time.Duration(opts.DiscoveryPollMs)*time.Millisecond,
				logging.GetLogger("adb"),
			)
		}

		updateService, updateErr := updater.NewService(&updater.Options{
			Repository: opts.UpdateRepo,
			Prerelease: opts.UpdatePrerelease,
		})
		if updateErr != nil {
			logger.Warn("Update service unavailable", "error", updateErr)
		}

		server := api.NewServer(&api.Options{
			AuthUsername:      opts.AuthUsername,
			AuthPassword:      opts.AuthPassword,
			Controller:        controller,
			Bridge:            bridge,
			EventBus:          eventBus,
			UpdateService:     updateService,
			PrometheusHandler: promhttp.Handler(),
		})

		hooks.OnStart(func() {
			loop.Start()

			if discovery != nil {
				discovery.Start()
			}

			if watchErr := watcher.Start(); watchErr != nil {
				logger.Warn("Config watcher unavailable, hot-reload disabled", "error", watchErr)
			}

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Warn("Error stopping config watcher", "error", stopErr)
			}

			if discovery != nil {
				discovery.Stop()
			}

			// Stops any running session, the audio relay and the loop
			controller.Shutdown()
			loop.Stop()
		})
	})

	root = cli.Root()
	root.AddCommand(cmd.CreateDevicesCmd())
	root.AddCommand(cmd.CreateUpdateCmd())

	cli.Run()
}
