package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// registerCaptureRoutes registers the screenshot endpoint. It is served
// directly from the mux because the response is a binary PNG, not a
// JSON body.
func (s *Server) registerCaptureRoutes() {
	s.mux.HandleFunc("GET /api/devices/screenshot", func(w http.ResponseWriter, r *http.Request) {
		serial := r.URL.Query().Get("serial")
		png, err := s.bridge.Screencap(serial)
		if err != nil {
			s.logger.Warn("Screenshot capture failed", "serial", serial, "error", err)
			http.Error(w, "screenshot capture failed", http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		if _, err := w.Write(png); err != nil {
			s.logger.Debug("Screenshot write aborted", "error", err)
		}
	})

	// Document the raw endpoint in the OpenAPI spec.
	spec := s.api.OpenAPI()
	if spec.Paths == nil {
		spec.Paths = map[string]*huma.PathItem{}
	}
	spec.Paths["/api/devices/screenshot"] = &huma.PathItem{
		Get: &huma.Operation{
			OperationID: "device-screenshot",
			Summary:     "Device Screenshot",
			Description: "Capture a PNG screenshot of the device screen via adb",
			Tags:        []string{"devices"},
			Security:    withAuth(),
		},
	}
}
