package service

import (
	"errors"
	"time"

	"github.com/todopilot/pilot/pkg/jwtx"
)

const (
	DefaultVerifyTTL  = 24 * time.Hour
	DefaultResendTTL  = time.Hour
	DefaultSessionTTL = 24 * time.Hour
)

// TokenService issues and checks the two token families: email verification
// tokens bound to an address and session tokens bound to a user id.
type TokenService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier

	VerifyTTL  time.Duration
	ResendTTL  time.Duration
	SessionTTL time.Duration
}

// NewTokenService wires one HS256 key into both roles with default TTLs.
func NewTokenService(key *jwtx.HS256) *TokenService {
	return &TokenService{
		Signer:     key,
		Verifier:   key,
		VerifyTTL:  DefaultVerifyTTL,
		ResendTTL:  DefaultResendTTL,
		SessionTTL: DefaultSessionTTL,
	}
}

func (s *TokenService) IssueVerification(email string, ttl time.Duration) (string, error) {
	return s.Signer.Issue(jwtx.VerificationClaims(email), ttl)
}

func (s *TokenService) IssueSession(userID string) (string, error) {
	return s.Signer.Issue(jwtx.SessionClaims(userID), s.SessionTTL)
}

// ParseVerification returns the email bound to a verification token.
func (s *TokenService) ParseVerification(token string) (string, error) {
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		return "", mapTokenError(err)
	}
	if claims.Purpose != jwtx.PurposeVerify || claims.Email == "" {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}

// ParseSession returns the user id bound to a session token.
func (s *TokenService) ParseSession(token string) (string, error) {
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		return "", mapTokenError(err)
	}
	if claims.Purpose != jwtx.PurposeSession || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func mapTokenError(err error) error {
	if errors.Is(err, jwtx.ErrExpired) {
		return ErrExpiredToken
	}
	return ErrInvalidToken
}
