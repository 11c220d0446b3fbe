package jwtx

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose separates token families signed with the same secret. A
// verification link must never work as a session and the other way round.
type Purpose string

const (
	PurposeVerify  Purpose = "verify"
	PurposeSession Purpose = "session"
)

// Claims is the payload carried by every token we issue.
//
// Verification tokens bind an email address; session tokens bind a user id
// through the standard "sub" claim.
type Claims struct {
	jwt.RegisteredClaims

	Purpose Purpose `json:"typ"`
	Email   string  `json:"email,omitempty"`
}

// VerificationClaims builds the payload for an email verification token.
func VerificationClaims(email string) Claims {
	return Claims{Purpose: PurposeVerify, Email: email}
}

// SessionClaims builds the payload for a bearer session token.
func SessionClaims(userID string) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
		Purpose:          PurposeSession,
	}
}

// newJTI gives every token a distinct id so two tokens issued in the same
// second for the same subject never compare equal.
func newJTI() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
