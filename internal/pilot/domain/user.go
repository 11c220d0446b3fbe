package domain

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string

	IsVerified bool

	// VerificationToken is the outstanding email verification token. It is
	// nil once the account is verified.
	VerificationToken *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
