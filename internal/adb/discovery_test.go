package adb

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/droidcast/droidcast/internal/events"
	"github.com/droidcast/droidcast/internal/sched"
)

func TestDiscoveryPublishesDeviceChanges(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var mu sync.Mutex
	listing := "List of devices attached\nSERIAL1\tunauthorized\n"

	bridge := NewBridge("adb", logger)
	bridge.run = func(_ ...string) ([]byte, error) {
		mu.Lock()
		defer mu.Unlock()
		return []byte(listing), nil
	}

	loop := sched.NewLoop(logger)
	loop.Start()
	defer loop.Stop()

	bus := events.New()
	var received []events.DeviceDiscoveryEvent
	var recvMu sync.Mutex
	unsub := bus.Subscribe(func(ev events.DeviceDiscoveryEvent) {
		recvMu.Lock()
		received = append(received, ev)
		recvMu.Unlock()
	})
	defer unsub()

	d := NewDiscovery(bridge, bus, loop, 5*time.Millisecond, logger)
	d.Start()
	defer d.Stop()

	waitForActions := func(want int) []events.DeviceDiscoveryEvent {
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			recvMu.Lock()
			snapshot := append([]events.DeviceDiscoveryEvent(nil), received...)
			recvMu.Unlock()
			if len(snapshot) >= want {
				return snapshot
			}
			time.Sleep(2 * time.Millisecond)
		}
		t.Fatalf("timed out waiting for %d discovery events", want)
		return nil
	}

	got := waitForActions(1)
	if got[0].Action != "added" || got[0].Serial != "SERIAL1" || got[0].Status != "unauthorized" {
		t.Fatalf("unexpected first event: %+v", got[0])
	}

	// Device gets authorized.
	mu.Lock()
	listing = "List of devices attached\nSERIAL1\tdevice\n"
	mu.Unlock()

	got = waitForActions(2)
	if got[1].Action != "status_changed" || got[1].Status != "device" {
		t.Fatalf("unexpected second event: %+v", got[1])
	}

	// Device unplugged.
	mu.Lock()
	listing = "List of devices attached\n"
	mu.Unlock()

	got = waitForActions(3)
	if got[2].Action != "removed" || got[2].Serial != "SERIAL1" {
		t.Fatalf("unexpected third event: %+v", got[2])
	}
}
