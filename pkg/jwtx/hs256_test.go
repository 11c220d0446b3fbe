package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/todopilot/pilot/pkg/jwtx"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newSigner(t *testing.T, opts ...jwtx.Option) *jwtx.HS256 {
	t.Helper()
	s, err := jwtx.NewHS256(testSecret, "todo-pilot", opts...)
	require.NoError(t, err)
	return s
}

func TestHS256_RoundTrip(t *testing.T) {
	s := newSigner(t)

	t.Run("verification payload", func(t *testing.T) {
		token, err := s.Issue(jwtx.VerificationClaims("a@x.com"), time.Hour)
		require.NoError(t, err)

		claims, err := s.Verify(token)
		require.NoError(t, err)
		require.Equal(t, jwtx.PurposeVerify, claims.Purpose)
		require.Equal(t, "a@x.com", claims.Email)
		require.Equal(t, "todo-pilot", claims.Issuer)
		require.NotEmpty(t, claims.ID)
	})

	t.Run("session payload", func(t *testing.T) {
		token, err := s.Issue(jwtx.SessionClaims("user-1"), 24*time.Hour)
		require.NoError(t, err)

		claims, err := s.Verify(token)
		require.NoError(t, err)
		require.Equal(t, jwtx.PurposeSession, claims.Purpose)
		require.Equal(t, "user-1", claims.Subject)
		require.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
	})

	t.Run("tokens are distinct", func(t *testing.T) {
		a, err := s.Issue(jwtx.SessionClaims("user-1"), time.Hour)
		require.NoError(t, err)
		b, err := s.Issue(jwtx.SessionClaims("user-1"), time.Hour)
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	})
}

func TestHS256_Failures(t *testing.T) {
	s := newSigner(t)

	t.Run("expired", func(t *testing.T) {
		past := newSigner(t, jwtx.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }))
		token, err := past.Issue(jwtx.SessionClaims("u"), time.Hour)
		require.NoError(t, err)

		_, err = s.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := jwtx.NewHS256([]byte("ffffffffffffffffffffffffffffffff"), "todo-pilot")
		require.NoError(t, err)
		token, err := other.Issue(jwtx.SessionClaims("u"), time.Hour)
		require.NoError(t, err)

		_, err = s.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("tampered payload", func(t *testing.T) {
		token, err := s.Issue(jwtx.SessionClaims("u"), time.Hour)
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		forged, err := s.Issue(jwtx.SessionClaims("admin"), time.Hour)
		require.NoError(t, err)
		parts[1] = strings.Split(forged, ".")[1]

		_, err = s.Verify(strings.Join(parts, "."))
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("other algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwtx.SessionClaims("u")).SignedString(testSecret)
		require.NoError(t, err)

		_, err = s.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, raw := range []string{"", "abc", "a.b.c"} {
			_, err := s.Verify(raw)
			require.ErrorIs(t, err, jwtx.ErrMalformed, raw)
		}
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		other, err := jwtx.NewHS256(testSecret, "someone-else")
		require.NoError(t, err)
		token, err := other.Issue(jwtx.SessionClaims("u"), time.Hour)
		require.NoError(t, err)

		_, err = s.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})
}

func TestNewHS256_WeakSecret(t *testing.T) {
	_, err := jwtx.NewHS256([]byte("short"), "todo-pilot")
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)
}
