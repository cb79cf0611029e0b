package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/droidcast/droidcast/internal/api/models"
)

// registerDeviceRoutes registers adb device endpoints.
func (s *Server) registerDeviceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-devices",
		Method:      http.MethodGet,
		Path:        "/api/devices",
		Summary:     "List Devices",
		Description: "List devices currently visible to adb, including unauthorized and offline ones",
		Tags:        []string{"devices"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.DeviceListResponse, error) {
		devices := s.bridge.ListDevices()
		return &models.DeviceListResponse{
			Body: models.DeviceListData{
				Devices: devices,
				Count:   len(devices),
			},
		}, nil
	})

	s.registerCaptureRoutes()
}
