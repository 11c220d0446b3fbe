package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/todopilot/pilot/internal/pilot/domain"
	"github.com/todopilot/pilot/internal/pilot/store"
	"github.com/todopilot/pilot/pkg/cryptox"
	"github.com/todopilot/pilot/pkg/idx"
	"github.com/todopilot/pilot/pkg/slogx"
)

const (
	MinPasswordLength = 6
	MaxUsernameLength = 64
)

type AuthService struct {
	Store  store.Store
	Hasher *cryptox.PasswordHasher
	Tokens *TokenService
	Mailer *Mailer
}

type SignupInput struct {
	Username string
	Email    string
	Password string
}

// Session is a freshly issued bearer token and the user it belongs to.
type Session struct {
	Token string
	User  domain.User
}

// Signup registers an unverified user and emails a verification link. If
// the email cannot be sent the user is kept and ErrEmailDelivery is returned;
// the client recovers with ResendVerification.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (domain.User, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input
	username := strings.TrimSpace(in.Username)
	email, err := normalizeEmail(in.Email)
	switch {
	case username == "" || in.Email == "" || in.Password == "":
		return domain.User{}, invalid("Username, email and password are required.")
	case len(username) > MaxUsernameLength:
		return domain.User{}, invalid("Username is too long.")
	case err != nil:
		return domain.User{}, err
	case len(in.Password) < MinPasswordLength:
		return domain.User{}, invalid("Password must be at least 6 characters.")
	}

	// 2. Hash password
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	// 3. Issue the verification token
	token, err := s.Tokens.IssueVerification(email, s.Tokens.VerifyTTL)
	if err != nil {
		log.Error("failed to issue verification token", slog.Any("error", err))
		return domain.User{}, err
	}

	// 4. Persist the user
	now := time.Now().UTC()
	u := domain.User{
		ID:                idx.New().String(),
		Username:          username,
		Email:             email,
		PasswordHash:      hash,
		IsVerified:        false,
		VerificationToken: &token,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Info("signup rejected, user exists", slog.String("email", email))
			return domain.User{}, ErrUserExists
		}
		log.Error("failed to create user", slog.Any("error", err))
		return domain.User{}, err
	}

	// 5. Send the verification email
	if err := s.Mailer.SendVerification(ctx, email, username, token); err != nil {
		log.Error("failed to send verification email",
			slog.String("user_id", u.ID),
			slog.Any("error", err),
		)
		return u, ErrEmailDelivery
	}

	log.Info("user signed up", slog.String("user_id", u.ID))
	return u, nil
}

// Login checks credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	log := slogx.FromContext(ctx)

	if strings.TrimSpace(email) == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		log.Error("failed to load user", slog.Any("error", err))
		return Session{}, err
	}

	if err := s.Hasher.Verify(password, u.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Error("stored password hash unusable",
				slog.String("user_id", u.ID),
				slog.Any("error", err),
			)
		}
		return Session{}, ErrInvalidCredentials
	}

	if !u.IsVerified {
		return Session{}, ErrEmailNotVerified
	}

	token, err := s.Tokens.IssueSession(u.ID)
	if err != nil {
		log.Error("failed to issue session token", slog.Any("error", err))
		return Session{}, err
	}

	log.Info("user logged in", slog.String("user_id", u.ID))
	return Session{Token: token, User: u}, nil
}

// VerifyEmail consumes a verification token. The token must carry a valid
// signature and equal the one stored for its email; a consumed or superseded
// token fails with ErrInvalidVerificationToken.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (Session, error) {
	log := slogx.FromContext(ctx)

	// 1. Check signature, expiry and purpose
	email, err := s.Tokens.ParseVerification(token)
	if err != nil {
		log.Info("verification token rejected", slog.Any("error", err))
		return Session{}, ErrInvalidVerificationToken
	}

	// 2. Match the stored token
	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidVerificationToken
		}
		log.Error("failed to load user", slog.Any("error", err))
		return Session{}, err
	}
	if u.IsVerified || u.VerificationToken == nil || *u.VerificationToken != token {
		return Session{}, ErrInvalidVerificationToken
	}

	// 3. Flip the state; the conditional update loses to a concurrent replay
	if err := s.Store.Users().MarkVerified(ctx, u.ID, token); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidVerificationToken
		}
		log.Error("failed to mark user verified", slog.Any("error", err))
		return Session{}, err
	}
	u.IsVerified = true
	u.VerificationToken = nil

	// 4. Log the user straight in
	session, err := s.Tokens.IssueSession(u.ID)
	if err != nil {
		log.Error("failed to issue session token", slog.Any("error", err))
		return Session{}, err
	}

	log.Info("email verified", slog.String("user_id", u.ID))
	return Session{Token: session, User: u}, nil
}

// ResendVerification replaces the outstanding token with a short-lived one
// and mails it. The previous token stops working.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	if strings.TrimSpace(email) == "" {
		return invalid("Email is required.")
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		log.Error("failed to load user", slog.Any("error", err))
		return err
	}
	if u.IsVerified {
		return ErrAlreadyVerified
	}

	token, err := s.Tokens.IssueVerification(u.Email, s.Tokens.ResendTTL)
	if err != nil {
		log.Error("failed to issue verification token", slog.Any("error", err))
		return err
	}

	if err := s.Store.Users().SetVerificationToken(ctx, u.ID, token); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// verified in the meantime
			return ErrAlreadyVerified
		}
		log.Error("failed to store verification token", slog.Any("error", err))
		return err
	}

	if err := s.Mailer.SendVerification(ctx, u.Email, u.Username, token); err != nil {
		log.Error("failed to resend verification email",
			slog.String("user_id", u.ID),
			slog.Any("error", err),
		)
		return ErrEmailDelivery
	}
	return nil
}

// Authenticate resolves a bearer token to a verified user. It only reads.
func (s *AuthService) Authenticate(ctx context.Context, bearer string) (domain.User, error) {
	if bearer == "" {
		return domain.User{}, ErrUnauthenticated
	}

	userID, err := s.Tokens.ParseSession(bearer)
	if err != nil {
		return domain.User{}, err
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		slogx.FromContext(ctx).Error("failed to load user", slog.Any("error", err))
		return domain.User{}, err
	}
	if !u.IsVerified {
		return domain.User{}, ErrEmailNotVerified
	}
	return u, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("Email address is invalid.")
	}
	return email, nil
}
