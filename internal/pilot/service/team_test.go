package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/todopilot/pilot/internal/pilot/domain"
)

func TestCreateTeam(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.verifiedUser(t, "alice")

	t.Run("validation", func(t *testing.T) {
		_, err := env.Teams.CreateTeam(ctx, alice, "", "b@x.com")
		require.ErrorIs(t, err, ErrValidation)
		_, err = env.Teams.CreateTeam(ctx, alice, "Eng", "")
		require.ErrorIs(t, err, ErrValidation)
		_, err = env.Teams.CreateTeam(ctx, alice, "a/b", "b@x.com")
		require.ErrorIs(t, err, ErrValidation)
		_, err = env.Teams.CreateTeam(ctx, alice, "Join", "b@x.com")
		require.ErrorIs(t, err, ErrValidation)
	})

	team, err := env.Teams.CreateTeam(ctx, alice, "Eng", "B@x.com")
	require.NoError(t, err)
	require.Len(t, team.Members, 1)
	require.Equal(t, domain.RoleAdmin, team.Members[0].Role)
	require.Len(t, team.Invitations, 1)
	require.Equal(t, "b@x.com", team.Invitations[0].Email)
	require.Equal(t, domain.InvitationPending, team.Invitations[0].Status)

	t.Run("invitation mailed, only fingerprint stored", func(t *testing.T) {
		token := env.invitationToken(t, "b@x.com")
		require.NotEmpty(t, token)
		require.NotEqual(t, token, team.Invitations[0].TokenHash)
		require.NotEqual(t, alice.ID, token)
	})

	t.Run("duplicate name in any case", func(t *testing.T) {
		_, err := env.Teams.CreateTeam(ctx, alice, "eng", "c@x.com")
		require.ErrorIs(t, err, ErrTeamExists)
	})

	t.Run("listed for creator", func(t *testing.T) {
		teams, err := env.Teams.ListTeams(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, teams, 1)
		require.Equal(t, "Eng", teams[0].Name)
	})
}

func TestTeamTodosRequireMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.verifiedUser(t, "alice")
	mallory := env.verifiedUser(t, "mallory")

	_, err := env.Teams.CreateTeam(ctx, alice, "Eng", "b@x.com")
	require.NoError(t, err)

	todo, err := env.Teams.CreateTodo(ctx, alice.ID, "Eng", TodoInput{Title: ptr("Plan sprint"), Priority: ptr("Medium")})
	require.NoError(t, err)
	require.Equal(t, alice.ID, todo.CreatedBy)

	t.Run("title and priority required", func(t *testing.T) {
		_, err := env.Teams.CreateTodo(ctx, alice.ID, "Eng", TodoInput{Title: ptr("x")})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("attachments are rejected", func(t *testing.T) {
		files := []Upload{{Name: "a.txt", ContentType: "text/plain", Data: []byte("a")}}

		_, err := env.Teams.CreateTodo(ctx, alice.ID, "Eng", TodoInput{Title: ptr("x"), Priority: ptr("Low"), Files: files})
		require.ErrorIs(t, err, ErrValidation)
		_, err = env.Teams.UpdateTodo(ctx, alice.ID, "Eng", todo.ID, TodoInput{Files: files})
		require.ErrorIs(t, err, ErrValidation)

		todos, err := env.Teams.ListTodos(ctx, alice.ID, "Eng")
		require.NoError(t, err)
		require.Len(t, todos, 1)
	})

	t.Run("member can read, case-insensitive name", func(t *testing.T) {
		todos, err := env.Teams.ListTodos(ctx, alice.ID, "eng")
		require.NoError(t, err)
		require.Len(t, todos, 1)
	})

	t.Run("non-member and unknown team look the same", func(t *testing.T) {
		_, err := env.Teams.ListTodos(ctx, mallory.ID, "Eng")
		require.ErrorIs(t, err, ErrTeamNotFound)
		_, err = env.Teams.ListTodos(ctx, alice.ID, "Nope")
		require.ErrorIs(t, err, ErrTeamNotFound)

		_, err = env.Teams.CreateTodo(ctx, mallory.ID, "Eng", TodoInput{Title: ptr("x"), Priority: ptr("Low")})
		require.ErrorIs(t, err, ErrTeamNotFound)
		_, err = env.Teams.UpdateTodo(ctx, mallory.ID, "Eng", todo.ID, TodoInput{Completed: ptr(true)})
		require.ErrorIs(t, err, ErrTeamNotFound)
		require.ErrorIs(t, env.Teams.DeleteTodo(ctx, mallory.ID, "Eng", todo.ID), ErrTeamNotFound)
	})

	t.Run("update and delete", func(t *testing.T) {
		updated, err := env.Teams.UpdateTodo(ctx, alice.ID, "Eng", todo.ID, TodoInput{Completed: ptr(true)})
		require.NoError(t, err)
		require.True(t, updated.Completed)
		require.Equal(t, "Plan sprint", updated.Title)

		require.NoError(t, env.Teams.DeleteTodo(ctx, alice.ID, "Eng", todo.ID))
		require.ErrorIs(t, env.Teams.DeleteTodo(ctx, alice.ID, "Eng", todo.ID), ErrTodoNotFound)
	})
}
