package pilotsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes sent in the "error" field of failed responses.
const (
	ErrorCodeValidation          = "validation_error"
	ErrorCodeInvalidJSON         = "invalid_json"
	ErrorCodeUserExists          = "user_exists"
	ErrorCodeInvalidCredentials  = "invalid_credentials"
	ErrorCodeEmailNotVerified    = "email_not_verified"
	ErrorCodeAlreadyVerified     = "already_verified"
	ErrorCodeInvalidVerification = "invalid_verification_token"
	ErrorCodeEmailDelivery       = "email_delivery_failed"
	ErrorCodeUnauthenticated     = "unauthenticated"
	ErrorCodeInvalidToken        = "invalid_token"
	ErrorCodeExpiredToken        = "expired_token"
	ErrorCodeNotFound            = "not_found"
	ErrorCodeTeamExists          = "team_exists"
	ErrorCodeInvalidInvitation   = "invalid_invitation"
	ErrorCodeInvitationUsed      = "invitation_used"
	ErrorCodeConflict            = "conflict"
	ErrorCodePayloadTooLarge     = "payload_too_large"
	ErrorCodeRateLimited         = "rate_limit_exceeded"
	ErrorCodeServerError         = "server_error"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
}

// IsCode reports whether err is an *APIError with the given code.
func IsCode(err error, code string) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Code == code
}

func parseErrorResponse(resp *http.Response, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && (apiErr.Code != "" || apiErr.Message != "") {
		apiErr.StatusCode = resp.StatusCode
		if apiErr.Code == "" {
			apiErr.Code = ErrorCodeServerError
		}
		return &apiErr
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       ErrorCodeServerError,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
