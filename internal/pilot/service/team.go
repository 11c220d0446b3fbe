package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/todopilot/pilot/internal/pilot/domain"
	"github.com/todopilot/pilot/internal/pilot/store"
	"github.com/todopilot/pilot/pkg/cryptox"
	"github.com/todopilot/pilot/pkg/idx"
	"github.com/todopilot/pilot/pkg/slogx"
)

const MaxTeamNameLength = 64

// reservedTeamName shares its path segment with the join route.
const reservedTeamName = "join"

var errTeamTodoFiles = invalid("Team todos do not take attachments")

type TeamService struct {
	Store  store.Store
	Mailer *Mailer
}

// CreateTeam makes actor the admin of a new team and seeds one pending
// invitation for joinEmail. The raw invitation token only ever leaves the
// process in the invitation email.
func (s *TeamService) CreateTeam(ctx context.Context, actor domain.User, teamName, joinEmail string) (domain.Team, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input
	teamName = strings.TrimSpace(teamName)
	if teamName == "" || strings.TrimSpace(joinEmail) == "" {
		return domain.Team{}, invalid("Team name and join email are required")
	}
	if len(teamName) > MaxTeamNameLength || strings.Contains(teamName, "/") {
		return domain.Team{}, invalid("Team name is invalid")
	}
	if domain.TeamNameKey(teamName) == reservedTeamName {
		return domain.Team{}, invalid("Team name is reserved")
	}
	email, err := normalizeEmail(joinEmail)
	if err != nil {
		return domain.Team{}, err
	}

	// 2. Generate the invitation token
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invitation token", slog.Any("error", err))
		return domain.Team{}, err
	}

	// 3. Store team, admin membership and invitation together
	now := time.Now().UTC()
	team := domain.Team{
		ID:        idx.New().String(),
		Name:      teamName,
		CreatedBy: actor.ID,
		Version:   1,
		Members: []domain.Member{{
			UserID:   actor.ID,
			Email:    actor.Email,
			Role:     domain.RoleAdmin,
			JoinedAt: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	team.Members[0].TeamID = team.ID
	inv := domain.Invitation{
		ID:        idx.New().String(),
		TeamID:    team.ID,
		Email:     email,
		TokenHash: cryptox.FingerprintToken(token),
		Status:    domain.InvitationPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	team.Invitations = []domain.Invitation{inv}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Teams().CreateTeam(ctx, team); err != nil {
			return err
		}
		if err := tx.Teams().AddMember(ctx, team.Members[0]); err != nil {
			return err
		}
		return tx.Invitations().CreateInvitation(ctx, inv)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Team{}, ErrTeamExists
		}
		log.Error("failed to create team", slog.Any("error", err))
		return domain.Team{}, err
	}

	// 4. Email the invitation. The team stands even if this fails.
	if err := s.Mailer.SendInvitation(ctx, email, team.Name, actor.Username, token); err != nil {
		log.Error("failed to send invitation email",
			slog.String("team_id", team.ID),
			slog.Any("error", err),
		)
	}

	log.Info("team created", slog.String("team_id", team.ID), slog.String("team", team.Name))
	return team, nil
}

func (s *TeamService) ListTeams(ctx context.Context, userID string) ([]domain.Team, error) {
	teams, err := s.Store.Teams().ListTeamsForUser(ctx, userID)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list teams", slog.Any("error", err))
		return nil, err
	}
	return teams, nil
}

// memberTeam loads a team by name and checks userID belongs to it. Unknown
// teams and foreign teams both come back as ErrTeamNotFound.
func memberTeam(ctx context.Context, st store.Store, teamName, userID string) (domain.Team, error) {
	team, err := st.Teams().GetTeamByName(ctx, teamName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Team{}, ErrTeamNotFound
		}
		return domain.Team{}, err
	}
	if !team.IsMember(userID) {
		return domain.Team{}, ErrTeamNotFound
	}
	return team, nil
}

func (s *TeamService) ListTodos(ctx context.Context, userID, teamName string) ([]domain.TeamTodo, error) {
	team, err := memberTeam(ctx, s.Store, teamName, userID)
	if err != nil {
		return nil, s.logged(ctx, "failed to load team", err)
	}
	todos, err := s.Store.TeamTodos().ListTeamTodos(ctx, team.ID)
	if err != nil {
		return nil, s.logged(ctx, "failed to list team todos", err)
	}
	return todos, nil
}

// CreateTodo adds a todo to a team. Title and priority are required.
func (s *TeamService) CreateTodo(ctx context.Context, userID, teamName string, in TodoInput) (domain.TeamTodo, error) {
	if len(in.Files) > 0 {
		return domain.TeamTodo{}, errTeamTodoFiles
	}
	if blank(in.Title) || blank(in.Priority) {
		return domain.TeamTodo{}, invalid("Title and priority are required")
	}
	priority, err := parsePriority(*in.Priority)
	if err != nil {
		return domain.TeamTodo{}, err
	}

	team, err := memberTeam(ctx, s.Store, teamName, userID)
	if err != nil {
		return domain.TeamTodo{}, s.logged(ctx, "failed to load team", err)
	}

	now := time.Now().UTC()
	t := domain.TeamTodo{
		ID:         idx.New().String(),
		TeamID:     team.ID,
		Title:      strings.TrimSpace(*in.Title),
		Priority:   priority,
		Completed:  in.Completed != nil && *in.Completed,
		CustomDate: in.CustomDate.Value,
		CreatedBy:  userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Description != nil {
		t.Description = *in.Description
	}

	if err := s.Store.TeamTodos().CreateTeamTodo(ctx, t); err != nil {
		return domain.TeamTodo{}, s.logged(ctx, "failed to create team todo", err)
	}
	return t, nil
}

func (s *TeamService) UpdateTodo(ctx context.Context, userID, teamName, id string, in TodoInput) (domain.TeamTodo, error) {
	if len(in.Files) > 0 {
		return domain.TeamTodo{}, errTeamTodoFiles
	}

	var out domain.TeamTodo
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		team, err := memberTeam(ctx, tx, teamName, userID)
		if err != nil {
			return err
		}

		t, err := tx.TeamTodos().GetTeamTodo(ctx, team.ID, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrTodoNotFound
			}
			return err
		}

		if err := applyTodoFields(&t.Title, &t.Description, &t.Priority, &t.Completed, &t.CustomDate, in); err != nil {
			return err
		}
		t.UpdatedAt = time.Now().UTC()

		if err := tx.TeamTodos().UpdateTeamTodo(ctx, t); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrTodoNotFound
			}
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return domain.TeamTodo{}, s.logged(ctx, "failed to update team todo", err)
	}
	return out, nil
}

func (s *TeamService) DeleteTodo(ctx context.Context, userID, teamName, id string) error {
	team, err := memberTeam(ctx, s.Store, teamName, userID)
	if err != nil {
		return s.logged(ctx, "failed to load team", err)
	}
	if err := s.Store.TeamTodos().DeleteTeamTodo(ctx, team.ID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTodoNotFound
		}
		return s.logged(ctx, "failed to delete team todo", err)
	}
	return nil
}

// logged writes unexpected errors to the request log and passes err through.
func (s *TeamService) logged(ctx context.Context, msg string, err error) error {
	if !isClientError(err) {
		slogx.FromContext(ctx).Error(msg, slog.Any("error", err))
	}
	return err
}
