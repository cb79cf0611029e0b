package adb

import (
	"log/slog"
	"time"

	"github.com/droidcast/droidcast/internal/events"
	"github.com/droidcast/droidcast/internal/sched"
)

const defaultDiscoveryInterval = 2 * time.Second

// Discovery polls the adb device list and publishes a
// DeviceDiscoveryEvent whenever a device appears, disappears or changes
// status (for example unauthorized -> device).
type Discovery struct {
	bridge *Bridge
	bus    *events.Bus
	loop   *sched.Loop
	logger *slog.Logger

	interval time.Duration

	// Owned by the loop goroutine.
	known  map[string]string
	ticker *sched.Ticker
}

// NewDiscovery creates a device discovery poller. A non-positive
// interval falls back to the default of two seconds.
func NewDiscovery(bridge *Bridge, bus *events.Bus, loop *sched.Loop, interval time.Duration, logger *slog.Logger) *Discovery {
	if interval <= 0 {
		interval = defaultDiscoveryInterval
	}
	return &Discovery{
		bridge:   bridge,
		bus:      bus,
		loop:     loop,
		logger:   logger,
		interval: interval,
		known:    make(map[string]string),
	}
}

// Start begins polling. The first poll seeds the known device set and
// publishes "added" events for everything already connected.
func (d *Discovery) Start() {
	d.loop.Submit(func() {
		if d.ticker != nil {
			return
		}
		d.poll()
		d.ticker = d.loop.Every(d.interval, d.poll)
	})
}

// Stop halts polling. Safe to call when never started.
func (d *Discovery) Stop() {
	d.loop.Run(func() {
		if d.ticker != nil {
			d.ticker.Stop()
			d.ticker = nil
		}
	})
}

func (d *Discovery) poll() {
	current := make(map[string]string)
	for _, dev := range d.bridge.ListDevices() {
		current[dev.Serial] = dev.Status
	}

	for serial, status := range current {
		old, seen := d.known[serial]
		switch {
		case !seen:
			d.publish(serial, status, "added")
		case old != status:
			d.publish(serial, status, "status_changed")
		}
	}
	for serial, status := range d.known {
		if _, still := current[serial]; !still {
			d.publish(serial, status, "removed")
		}
	}

	d.known = current
}

func (d *Discovery) publish(serial, status, action string) {
	d.logger.Info("Device change", "serial", serial, "status", status, "action", action)
	d.bus.Publish(events.DeviceDiscoveryEvent{
		Serial:    serial,
		Status:    status,
		Action:    action,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
