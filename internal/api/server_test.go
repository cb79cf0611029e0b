package api

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/droidcast/droidcast/internal/adb"
	"github.com/droidcast/droidcast/internal/events"
	"github.com/droidcast/droidcast/internal/sched"
	"github.com/droidcast/droidcast/internal/scrcpy"
)

type stubBridge struct{}

func (stubBridge) FirstReadyDevice() (string, bool)              { return "", false }
func (stubBridge) QueryResolution(string) (adb.Resolution, bool) { return adb.Resolution{}, false }

func newTestServer(t *testing.T, opts *Options) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loop := sched.NewLoop(logger)
	loop.Start()
	t.Cleanup(loop.Stop)

	bus := events.New()
	controller := scrcpy.New(scrcpy.Config{}, scrcpy.Deps{
		Loop:   loop,
		Bus:    bus,
		Bridge: stubBridge{},
		Logger: logger,
	})

	if opts == nil {
		opts = &Options{}
	}
	opts.Controller = controller
	opts.Bridge = adb.NewBridge("adb-not-installed", logger)
	opts.EventBus = bus

	server := NewServer(opts)
	ts := httptest.NewServer(server.GetMux())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
}

func TestSessionStatusIdle(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/api/session")
	if err != nil {
		t.Fatalf("GET /api/session: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.State != "idle" {
		t.Errorf("state = %q, want idle", body.State)
	}
}

func TestStartSessionRejectsBadBitrate(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/api/session/start", "application/json",
		strings.NewReader(`{"bitrate": "fast"}`))
	if err != nil {
		t.Fatalf("POST /api/session/start: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
}

func TestBasicAuthGuardsEndpoints(t *testing.T) {
	ts := newTestServer(t, &Options{AuthUsername: "admin", AuthPassword: "secret"})

	// No credentials.
	resp, err := http.Get(ts.URL + "/api/session")
	if err != nil {
		t.Fatalf("GET /api/session: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status without credentials = %d, want 401", resp.StatusCode)
	}

	// Health stays open.
	resp, err = http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}

	// Valid credentials.
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/session", nil)
	req.Header.Set("Authorization", "Basic "+
		base64.StdEncoding.EncodeToString([]byte("admin:secret")))
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/session with auth: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status with credentials = %d, want 200", resp.StatusCode)
	}
}

func TestDevicesEndpointWithoutAdb(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/api/devices")
	if err != nil {
		t.Fatalf("GET /api/devices: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Count != 0 {
		t.Errorf("count = %d, want 0 when adb is missing", body.Count)
	}
}
