package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/todopilot/pilot/pkg/jwtx"
)

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   SignupInput
	}{
		{"missing username", SignupInput{Email: "a@example.com", Password: "hunter22"}},
		{"missing email", SignupInput{Username: "a", Password: "hunter22"}},
		{"missing password", SignupInput{Username: "a", Email: "a@example.com"}},
		{"bad email", SignupInput{Username: "a", Email: "not-an-email", Password: "hunter22"}},
		{"short password", SignupInput{Username: "a", Email: "a@example.com", Password: "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Auth.Signup(ctx, tt.in)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
	require.Empty(t, env.Outbox.Sent())
}

func TestSignupVerifyLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.Auth.Signup(ctx, SignupInput{Username: "alice", Email: "Alice@Example.com", Password: "hunter22"})
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", u.Email)
	require.False(t, u.IsVerified)

	t.Run("duplicate signup is a conflict", func(t *testing.T) {
		_, err := env.Auth.Signup(ctx, SignupInput{Username: "alice", Email: "other@example.com", Password: "hunter22"})
		require.ErrorIs(t, err, ErrUserExists)
		_, err = env.Auth.Signup(ctx, SignupInput{Username: "alice2", Email: "alice@example.com", Password: "hunter22"})
		require.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("login before verification", func(t *testing.T) {
		_, err := env.Auth.Login(ctx, "alice@example.com", "hunter22")
		require.ErrorIs(t, err, ErrEmailNotVerified)
	})

	token := env.verificationToken(t, "alice@example.com")

	t.Run("verify issues a session", func(t *testing.T) {
		sess, err := env.Auth.VerifyEmail(ctx, token)
		require.NoError(t, err)
		require.True(t, sess.User.IsVerified)
		require.Nil(t, sess.User.VerificationToken)

		me, err := env.Auth.Authenticate(ctx, sess.Token)
		require.NoError(t, err)
		require.Equal(t, u.ID, me.ID)
	})

	t.Run("replaying the token fails", func(t *testing.T) {
		_, err := env.Auth.VerifyEmail(ctx, token)
		require.ErrorIs(t, err, ErrInvalidVerificationToken)
	})

	t.Run("login after verification", func(t *testing.T) {
		sess, err := env.Auth.Login(ctx, "ALICE@example.com", "hunter22")
		require.NoError(t, err)
		require.NotEmpty(t, sess.Token)
		require.True(t, sess.User.IsVerified)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		_, err := env.Auth.Login(ctx, "alice@example.com", "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = env.Auth.Login(ctx, "nobody@example.com", "hunter22")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("resend for verified user", func(t *testing.T) {
		require.ErrorIs(t, env.Auth.ResendVerification(ctx, "alice@example.com"), ErrAlreadyVerified)
	})
}

func TestResendVerification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Auth.Signup(ctx, SignupInput{Username: "bob", Email: "bob@example.com", Password: "hunter22"})
	require.NoError(t, err)
	first := env.verificationToken(t, "bob@example.com")

	require.ErrorIs(t, env.Auth.ResendVerification(ctx, ""), ErrValidation)
	require.ErrorIs(t, env.Auth.ResendVerification(ctx, "ghost@example.com"), ErrUserNotFound)

	require.NoError(t, env.Auth.ResendVerification(ctx, "bob@example.com"))
	second := env.verificationToken(t, "bob@example.com")
	require.NotEqual(t, first, second)

	// only the latest token verifies
	_, err = env.Auth.VerifyEmail(ctx, first)
	require.ErrorIs(t, err, ErrInvalidVerificationToken)

	sess, err := env.Auth.VerifyEmail(ctx, second)
	require.NoError(t, err)
	require.True(t, sess.User.IsVerified)
}

func TestSignupEmailFailureKeepsUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.Outbox.FailWith(errors.New("smtp down"))
	_, err := env.Auth.Signup(ctx, SignupInput{Username: "carol", Email: "carol@example.com", Password: "hunter22"})
	require.ErrorIs(t, err, ErrEmailDelivery)

	env.Outbox.FailWith(nil)
	require.NoError(t, env.Auth.ResendVerification(ctx, "carol@example.com"))
	_, err = env.Auth.VerifyEmail(ctx, env.verificationToken(t, "carol@example.com"))
	require.NoError(t, err)
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Auth.Signup(ctx, SignupInput{Username: "dave", Email: "dave@example.com", Password: "hunter22"})
	require.NoError(t, err)

	past, err := jwtx.NewHS256(testSecret, testIssuer, jwtx.WithClock(func() time.Time {
		return time.Now().Add(-48 * time.Hour)
	}))
	require.NoError(t, err)
	expired, err := past.Issue(jwtx.VerificationClaims("dave@example.com"), 24*time.Hour)
	require.NoError(t, err)

	session, err := env.Tokens.IssueSession("someone")
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":       "not-a-token",
		"expired":       expired,
		"session token": session,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := env.Auth.VerifyEmail(ctx, token)
			require.ErrorIs(t, err, ErrInvalidVerificationToken)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.verifiedUser(t, "alice")
	unverified, err := env.Auth.Signup(ctx, SignupInput{Username: "eve", Email: "eve@example.com", Password: "hunter22"})
	require.NoError(t, err)

	past, err := jwtx.NewHS256(testSecret, testIssuer, jwtx.WithClock(func() time.Time {
		return time.Now().Add(-48 * time.Hour)
	}))
	require.NoError(t, err)
	expired, err := past.Issue(jwtx.SessionClaims(alice.ID), 24*time.Hour)
	require.NoError(t, err)

	issue := func(userID string) string {
		tok, err := env.Tokens.IssueSession(userID)
		require.NoError(t, err)
		return tok
	}
	verifyTok, err := env.Tokens.IssueVerification(alice.Email, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"missing", "", ErrUnauthenticated},
		{"malformed", "abc.def", ErrInvalidToken},
		{"expired", expired, ErrExpiredToken},
		{"wrong purpose", verifyTok, ErrInvalidToken},
		{"user gone", issue("01ARZ3NDEKTSV4RRFFQ69G5FAV"), ErrUserNotFound},
		{"unverified", issue(unverified.ID), ErrEmailNotVerified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Auth.Authenticate(ctx, tt.token)
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("valid", func(t *testing.T) {
		u, err := env.Auth.Authenticate(ctx, issue(alice.ID))
		require.NoError(t, err)
		require.Equal(t, alice.ID, u.ID)
	})
}
