package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/todopilot/pilot/internal/pilot/service"
	"github.com/todopilot/pilot/pkg/httpx"
	"github.com/todopilot/pilot/pkg/pilotsdk"
	"github.com/todopilot/pilot/pkg/slogx"
)

// writeServiceError maps service and decoding errors onto status codes.
// Anything unexpected is logged with action and surfaces as a bare 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var (
		verr   *service.ValidationError
		maxErr *http.MaxBytesError
	)

	switch {
	case errors.As(err, &verr):
		httpx.WriteError(w, http.StatusBadRequest, pilotsdk.ErrorCodeValidation, verr.Message)
	case errors.As(err, &maxErr):
		httpx.WriteError(w, http.StatusRequestEntityTooLarge, pilotsdk.ErrorCodePayloadTooLarge, "Request body is too large")
	case errors.Is(err, httpx.ErrInvalidJSON):
		httpx.WriteError(w, http.StatusBadRequest, pilotsdk.ErrorCodeInvalidJSON, "Invalid JSON body")

	// Accounts
	case errors.Is(err, service.ErrUserExists):
		httpx.WriteError(w, http.StatusBadRequest, pilotsdk.ErrorCodeUserExists, "User already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusBadRequest, pilotsdk.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, service.ErrEmailNotVerified):
		httpx.WriteError(w, http.StatusBadRequest, pilotsdk.ErrorCodeEmailNotVerified, "Email not verified. Please verify your email before logging in.")
	case errors.Is(err, service.ErrInvalidVerificationToken):
		httpx.WriteError(w, http.StatusBadRequest, pilotsdk.ErrorCodeInvalidVerification, "Invalid or expired verification token")
	case errors.Is(err, service.ErrAlreadyVerified):
		httpx.WriteError(w, http.StatusBadRequest, pilotsdk.ErrorCodeAlreadyVerified, "Email is already verified")
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, pilotsdk.ErrorCodeNotFound, "User not found")
	case errors.Is(err, service.ErrEmailDelivery):
		httpx.WriteError(w, http.StatusInternalServerError, pilotsdk.ErrorCodeEmailDelivery,
			"Account saved but the verification email could not be sent. Please use resend verification.")

	// Todos and teams
	case errors.Is(err, service.ErrTodoNotFound):
		httpx.WriteError(w, http.StatusNotFound, pilotsdk.ErrorCodeNotFound, "Todo not found")
	case errors.Is(err, service.ErrTeamNotFound):
		httpx.WriteError(w, http.StatusNotFound, pilotsdk.ErrorCodeNotFound, "Team not found")
	case errors.Is(err, service.ErrTeamExists):
		httpx.WriteError(w, http.StatusBadRequest, pilotsdk.ErrorCodeTeamExists, "Team name already exists")
	case errors.Is(err, service.ErrInvalidInvitation):
		httpx.WriteError(w, http.StatusNotFound, pilotsdk.ErrorCodeInvalidInvitation, "Invalid invitation")
	case errors.Is(err, service.ErrInvitationUsed):
		httpx.WriteError(w, http.StatusBadRequest, pilotsdk.ErrorCodeInvitationUsed, "Invitation has already been used")
	case errors.Is(err, service.ErrJoinConflict):
		httpx.WriteError(w, http.StatusConflict, pilotsdk.ErrorCodeConflict, "Team changed while joining, please retry")

	default:
		slogx.FromContext(r.Context()).Error(action, slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, pilotsdk.ErrorCodeServerError, "Server error")
	}
}
