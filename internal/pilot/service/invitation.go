package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/todopilot/pilot/internal/pilot/domain"
	"github.com/todopilot/pilot/internal/pilot/store"
	"github.com/todopilot/pilot/pkg/cryptox"
	"github.com/todopilot/pilot/pkg/slogx"
)

// MaxJoinAttempts bounds retries after an optimistic version conflict.
const MaxJoinAttempts = 3

// InvitationFlow is the single entry point for redeeming team invitations.
type InvitationFlow struct {
	Store store.Store
}

// Join redeems an invitation token for user.
//
//  1. unknown token: ErrInvalidInvitation
//  2. user already a member: success, nothing changes
//  3. invitation already accepted: ErrInvitationUsed
//  4. otherwise the user is added as a member, the invitation is marked
//     accepted and the team version moves forward, all in one transaction.
//
// A concurrent join that bumps the version first makes this one retry.
func (f *InvitationFlow) Join(ctx context.Context, token string, user domain.User) (domain.Team, error) {
	log := slogx.FromContext(ctx)

	if token == "" {
		return domain.Team{}, ErrInvalidInvitation
	}
	hash := cryptox.FingerprintToken(token)

	for attempt := 1; attempt <= MaxJoinAttempts; attempt++ {
		team, err := f.join(ctx, hash, user)
		if errors.Is(err, store.ErrConflict) {
			log.Warn("team join raced, retrying",
				slog.String("user_id", user.ID),
				slog.Int("attempt", attempt),
			)
			continue
		}
		if err != nil {
			if !isClientError(err) {
				log.Error("failed to join team", slog.Any("error", err))
			}
			return domain.Team{}, err
		}
		return team, nil
	}
	return domain.Team{}, ErrJoinConflict
}

func (f *InvitationFlow) join(ctx context.Context, hash string, user domain.User) (domain.Team, error) {
	var out domain.Team
	err := f.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. Find the invitation by fingerprint
		inv, err := tx.Invitations().GetInvitationByTokenHash(ctx, hash)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidInvitation
			}
			return err
		}

		team, err := tx.Teams().GetTeamByID(ctx, inv.TeamID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidInvitation
			}
			return err
		}

		// 2. Already a member
		if team.IsMember(user.ID) {
			out = team
			return nil
		}

		// 3. Spent
		if inv.Status == domain.InvitationAccepted {
			return ErrInvitationUsed
		}

		// 4. Join
		member := domain.Member{
			TeamID:   team.ID,
			UserID:   user.ID,
			Email:    user.Email,
			Role:     domain.RoleMember,
			JoinedAt: time.Now().UTC(),
		}
		if err := tx.Teams().AddMember(ctx, member); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return store.ErrConflict
			}
			return err
		}
		if err := tx.Invitations().MarkAccepted(ctx, inv.ID, user.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return store.ErrConflict
			}
			return err
		}
		if err := tx.Teams().BumpVersion(ctx, team.ID, team.Version); err != nil {
			return err
		}

		team.Version++
		team.Members = append(team.Members, member)
		for i := range team.Invitations {
			if team.Invitations[i].ID == inv.ID {
				team.Invitations[i].Status = domain.InvitationAccepted
				team.Invitations[i].AcceptedBy = user.ID
			}
		}
		out = team
		return nil
	})
	if err != nil {
		return domain.Team{}, err
	}

	slogx.FromContext(ctx).Info("team joined",
		slog.String("team_id", out.ID),
		slog.String("user_id", user.ID),
	)
	return out, nil
}
