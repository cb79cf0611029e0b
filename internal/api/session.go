package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/droidcast/droidcast/internal/api/models"
	"github.com/droidcast/droidcast/internal/scrcpy"
)

// registerSessionRoutes registers the mirror session endpoints.
func (s *Server) registerSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-session",
		Method:      http.MethodGet,
		Path:        "/api/session",
		Summary:     "Session Status",
		Description: "Get the current mirror session state",
		Tags:        []string{"session"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.SessionStatusResponse, error) {
		return &models.SessionStatusResponse{Body: statusToModel(s.controller.Status())}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "start-session",
		Method:      http.MethodPost,
		Path:        "/api/session/start",
		Summary:     "Start Session",
		Description: "Start mirroring. Omitted options fall back to the configured defaults; the device serial is auto-detected when empty.",
		Tags:        []string{"session"},
		Errors:      []int{401, 422},
		Security:    withAuth(),
	}, func(ctx context.Context, input *models.StartSessionRequest) (*models.SessionStatusResponse, error) {
		opts := s.controller.Defaults()
		body := input.Body
		if body.MaxFPS != 0 {
			opts.MaxFPS = body.MaxFPS
		}
		if body.Bitrate != "" {
			opts.Bitrate = body.Bitrate
		}
		if body.StayAwake != nil {
			opts.StayAwake = *body.StayAwake
		}
		if body.Audio != nil {
			opts.Audio = *body.Audio
		}
		if body.WindowTitle != "" {
			opts.WindowTitle = body.WindowTitle
		}

		// Validate up front so the caller gets a 422 instead of an
		// asynchronous error event.
		if _, err := opts.Normalized(); err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}

		s.controller.Start(body.Serial, opts)
		return &models.SessionStatusResponse{Body: statusToModel(s.controller.Status())}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "stop-session",
		Method:      http.MethodPost,
		Path:        "/api/session/stop",
		Summary:     "Stop Session",
		Description: "Stop the mirror session. A no-op when nothing is running.",
		Tags:        []string{"session"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.MessageResponse, error) {
		s.controller.Stop()
		resp := &models.MessageResponse{}
		resp.Body.Message = "Session stop requested"
		return resp, nil
	})
}

func statusToModel(status scrcpy.Status) models.SessionStatusData {
	data := models.SessionStatusData{
		State:       string(status.State),
		Serial:      status.Serial,
		AudioActive: status.AudioActive,
		Message:     status.Message,
	}
	if status.Resolution != nil {
		data.Width = status.Resolution.Width
		data.Height = status.Resolution.Height
	}
	return data
}
