package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/todopilot/pilot/internal/pilot/service"
	"github.com/todopilot/pilot/pkg/httpx"
	"github.com/todopilot/pilot/pkg/pilotsdk"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &service.ValidationError{Message: "Title is required"}, http.StatusBadRequest, pilotsdk.ErrorCodeValidation},
		{"oversized json", fmt.Errorf("%w: %w", httpx.ErrInvalidJSON, &http.MaxBytesError{Limit: 10}), http.StatusRequestEntityTooLarge, pilotsdk.ErrorCodePayloadTooLarge},
		{"bad json", fmt.Errorf("%w: unexpected EOF", httpx.ErrInvalidJSON), http.StatusBadRequest, pilotsdk.ErrorCodeInvalidJSON},
		{"invalid invitation", service.ErrInvalidInvitation, http.StatusNotFound, pilotsdk.ErrorCodeInvalidInvitation},
		{"invitation used", service.ErrInvitationUsed, http.StatusBadRequest, pilotsdk.ErrorCodeInvitationUsed},
		{"join conflict", service.ErrJoinConflict, http.StatusConflict, pilotsdk.ErrorCodeConflict},
		{"team not found", service.ErrTeamNotFound, http.StatusNotFound, pilotsdk.ErrorCodeNotFound},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, pilotsdk.ErrorCodeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/teams/join/tok", nil)

			writeServiceError(w, r, tt.err, "test action")

			require.Equal(t, tt.wantStatus, w.Code)
			var body httpx.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.Equal(t, tt.wantCode, body.Error)
			require.NotContains(t, body.Message, "disk on fire")
		})
	}
}
