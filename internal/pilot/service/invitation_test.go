package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/todopilot/pilot/internal/pilot/domain"
	"github.com/todopilot/pilot/internal/pilot/store"
)

func TestInvitationJoin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.verifiedUser(t, "alice")
	bob := env.verifiedUser(t, "bob")
	carol := env.verifiedUser(t, "carol")

	team, err := env.Teams.CreateTeam(ctx, alice, "Eng", "b@x.com")
	require.NoError(t, err)
	token := env.invitationToken(t, "b@x.com")

	t.Run("unknown token", func(t *testing.T) {
		_, err := env.Join.Join(ctx, "bogus", bob)
		require.ErrorIs(t, err, ErrInvalidInvitation)
		_, err = env.Join.Join(ctx, "", bob)
		require.ErrorIs(t, err, ErrInvalidInvitation)
	})

	t.Run("creator is already a member", func(t *testing.T) {
		got, err := env.Join.Join(ctx, token, alice)
		require.NoError(t, err)
		require.Len(t, got.Members, 1)
	})

	t.Run("first join", func(t *testing.T) {
		got, err := env.Join.Join(ctx, token, bob)
		require.NoError(t, err)
		require.Equal(t, team.ID, got.ID)
		require.Equal(t, "Eng", got.Name)
		require.Len(t, got.Members, 2)
		require.EqualValues(t, team.Version+1, got.Version)
	})

	t.Run("second join by the same user is idempotent", func(t *testing.T) {
		got, err := env.Join.Join(ctx, token, bob)
		require.NoError(t, err)
		require.Len(t, got.Members, 2)
	})

	t.Run("spent invitation", func(t *testing.T) {
		_, err := env.Join.Join(ctx, token, carol)
		require.ErrorIs(t, err, ErrInvitationUsed)
	})

	t.Run("members stay unique", func(t *testing.T) {
		stored, err := env.Store.Teams().GetTeamByID(ctx, team.ID)
		require.NoError(t, err)
		seen := map[string]bool{}
		for _, m := range stored.Members {
			require.False(t, seen[m.UserID], "duplicate member %s", m.UserID)
			seen[m.UserID] = true
		}
		require.Len(t, stored.Members, 2)
	})

	t.Run("joined member reaches team todos", func(t *testing.T) {
		_, err := env.Teams.ListTodos(ctx, bob.ID, "Eng")
		require.NoError(t, err)
		_, err = env.Teams.ListTodos(ctx, carol.ID, "Eng")
		require.ErrorIs(t, err, ErrTeamNotFound)
	})
}

// racingStore makes the first conflicts calls to BumpVersion lose the
// optimistic version check, as if another join had committed first.
type racingStore struct {
	store.Store

	mu        sync.Mutex
	conflicts int
	bumps     int
}

func (s *racingStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		return fn(racingTx{storeTx: tx, s: s})
	})
}

// storeTx names the embedded field so it does not shadow the promoted
// Store.Tx method.
type storeTx = store.Tx

type racingTx struct {
	storeTx
	s *racingStore
}

func (tx racingTx) Teams() store.Teams {
	return racingTeams{Teams: tx.storeTx.Teams(), s: tx.s}
}

type racingTeams struct {
	store.Teams
	s *racingStore
}

func (t racingTeams) BumpVersion(ctx context.Context, teamID string, expected int64) error {
	t.s.mu.Lock()
	t.s.bumps++
	lose := t.s.bumps <= t.s.conflicts
	t.s.mu.Unlock()
	if lose {
		return store.ErrConflict
	}
	return t.Teams.BumpVersion(ctx, teamID, expected)
}

func TestInvitationJoinRetriesVersionConflicts(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, conflicts int) (*testEnv, *racingStore, domain.Team, domain.User, string) {
		t.Helper()
		env := newTestEnv(t)
		alice := env.verifiedUser(t, "alice")
		bob := env.verifiedUser(t, "bob")

		team, err := env.Teams.CreateTeam(ctx, alice, "Eng", "b@x.com")
		require.NoError(t, err)

		racing := &racingStore{Store: env.Store, conflicts: conflicts}
		return env, racing, team, bob, env.invitationToken(t, "b@x.com")
	}

	t.Run("one lost race then success", func(t *testing.T) {
		env, racing, team, bob, token := setup(t, 1)
		flow := &InvitationFlow{Store: racing}

		got, err := flow.Join(ctx, token, bob)
		require.NoError(t, err)
		require.True(t, got.IsMember(bob.ID))
		require.Equal(t, 2, racing.bumps)

		stored, err := env.Store.Teams().GetTeamByID(ctx, team.ID)
		require.NoError(t, err)
		require.Len(t, stored.Members, 2)
		require.EqualValues(t, team.Version+1, stored.Version)
	})

	t.Run("every attempt loses", func(t *testing.T) {
		env, racing, team, bob, token := setup(t, MaxJoinAttempts)
		flow := &InvitationFlow{Store: racing}

		_, err := flow.Join(ctx, token, bob)
		require.ErrorIs(t, err, ErrJoinConflict)
		require.Equal(t, MaxJoinAttempts, racing.bumps)

		// Each losing attempt rolled back.
		stored, err := env.Store.Teams().GetTeamByID(ctx, team.ID)
		require.NoError(t, err)
		require.Len(t, stored.Members, 1)
		require.Equal(t, team.Version, stored.Version)
		require.Equal(t, domain.InvitationPending, stored.Invitations[0].Status)

		// The invitation is still good once the contention is gone.
		_, err = env.Join.Join(ctx, token, bob)
		require.NoError(t, err)
	})
}

func TestInvitationJoinConcurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.verifiedUser(t, "alice")

	team, err := env.Teams.CreateTeam(ctx, alice, "Eng", "b@x.com")
	require.NoError(t, err)
	token := env.invitationToken(t, "b@x.com")

	const racers = 8
	users := make([]domain.User, racers)
	for i := range users {
		users[i] = env.verifiedUser(t, fmt.Sprintf("racer%d", i))
	}

	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := range users {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = env.Join.Join(ctx, token, users[i])
		}()
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrInvitationUsed), errors.Is(err, ErrJoinConflict):
		default:
			t.Fatalf("unexpected join error: %v", err)
		}
	}
	require.Equal(t, 1, successes)

	stored, err := env.Store.Teams().GetTeamByID(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, stored.Members, 2)
	seen := map[string]bool{}
	for _, m := range stored.Members {
		require.False(t, seen[m.UserID], "duplicate member %s", m.UserID)
		seen[m.UserID] = true
	}
	require.EqualValues(t, team.Version+1, stored.Version)
}
