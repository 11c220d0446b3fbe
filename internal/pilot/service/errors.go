package service

import "errors"

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation_failed")

	ErrUserExists               = errors.New("user_exists")
	ErrInvalidCredentials       = errors.New("invalid_credentials")
	ErrEmailNotVerified         = errors.New("email_not_verified")
	ErrAlreadyVerified          = errors.New("already_verified")
	ErrInvalidVerificationToken = errors.New("invalid_verification_token")
	ErrUserNotFound             = errors.New("user_not_found")
	ErrEmailDelivery            = errors.New("email_delivery_failed")

	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidToken    = errors.New("invalid_token")
	ErrExpiredToken    = errors.New("expired_token")

	ErrTodoNotFound = errors.New("todo_not_found")

	// ErrTeamNotFound covers unknown teams and teams the caller is not a
	// member of.
	ErrTeamNotFound      = errors.New("team_not_found")
	ErrTeamExists        = errors.New("team_exists")
	ErrInvalidInvitation = errors.New("invalid_invitation")
	ErrInvitationUsed    = errors.New("invitation_used")
	ErrJoinConflict      = errors.New("join_conflict")
)

// ValidationError carries a message that is safe to show to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}
