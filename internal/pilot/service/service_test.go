package service

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/todopilot/pilot/internal/pilot/domain"
	"github.com/todopilot/pilot/internal/pilot/store"
	"github.com/todopilot/pilot/internal/pilot/store/drivers/sqlite"
	"github.com/todopilot/pilot/pkg/cryptox"
	"github.com/todopilot/pilot/pkg/jwtx"
	"github.com/todopilot/pilot/pkg/mailx"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

const testIssuer = "todo-pilot-test"

type testEnv struct {
	Store  store.Store
	Outbox *mailx.Outbox
	Tokens *TokenService
	Auth   *AuthService
	Todos  *TodoService
	Teams  *TeamService
	Join   *InvitationFlow
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	key, err := jwtx.NewHS256(testSecret, testIssuer)
	require.NoError(t, err)

	outbox := &mailx.Outbox{}
	mailer := &Mailer{Sender: outbox, BaseURL: "http://pilot.test/"}
	tokens := NewTokenService(key)

	return &testEnv{
		Store:  st,
		Outbox: outbox,
		Tokens: tokens,
		Auth: &AuthService{
			Store:  st,
			Hasher: cryptox.NewPasswordHasher("pepper"),
			Tokens: tokens,
			Mailer: mailer,
		},
		Todos: &TodoService{Store: st},
		Teams: &TeamService{Store: st, Mailer: mailer},
		Join:  &InvitationFlow{Store: st},
	}
}

// verificationToken pulls the token out of the last verification email.
func (e *testEnv) verificationToken(t *testing.T, email string) string {
	t.Helper()
	msg, ok := e.Outbox.Last(email)
	require.True(t, ok, "no mail for %s", email)
	return linkParam(t, msg.Text, "http://pilot.test/verify/")
}

// invitationToken pulls the token out of the last invitation email.
func (e *testEnv) invitationToken(t *testing.T, email string) string {
	t.Helper()
	msg, ok := e.Outbox.Last(email)
	require.True(t, ok, "no mail for %s", email)
	raw := linkParam(t, msg.Text, "http://pilot.test/verify?token=")
	token, err := url.QueryUnescape(raw)
	require.NoError(t, err)
	return token
}

func linkParam(t *testing.T, body, prefix string) string {
	t.Helper()
	i := strings.Index(body, prefix)
	require.GreaterOrEqual(t, i, 0, "link %q not in %q", prefix, body)
	rest := body[i+len(prefix):]
	if j := strings.IndexAny(rest, " \n"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

// verifiedUser signs up and verifies a user.
func (e *testEnv) verifiedUser(t *testing.T, username string) domain.User {
	t.Helper()
	ctx := context.Background()
	email := username + "@example.com"

	_, err := e.Auth.Signup(ctx, SignupInput{Username: username, Email: email, Password: "hunter22"})
	require.NoError(t, err)

	sess, err := e.Auth.VerifyEmail(ctx, e.verificationToken(t, email))
	require.NoError(t, err)
	return sess.User
}

func ptr[T any](v T) *T { return &v }
