package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/todopilot/pilot/internal/pilot/domain"
	"github.com/todopilot/pilot/internal/pilot/store"
)

const teamColumns = `id, name, version, created_by, created_at, updated_at`

const memberColumns = `team_id, user_id, email, role, joined_at`

type teamsRepo struct {
	q *queries
}

func scanTeam(row interface{ Scan(...any) error }) (domain.Team, error) {
	var t domain.Team
	if err := row.Scan(&t.ID, &t.Name, &t.Version, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.Team{}, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func (r *teamsRepo) CreateTeam(ctx context.Context, t domain.Team) error {
	_, err := r.q.exec(ctx,
		`INSERT INTO teams (id, name, name_key, version, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, domain.TeamNameKey(t.Name), t.Version, t.CreatedBy,
		utc(t.CreatedAt), utc(t.UpdatedAt),
	)
	return r.q.mapWriteErr(err)
}

func (r *teamsRepo) GetTeamByID(ctx context.Context, id string) (domain.Team, error) {
	return r.getTeam(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = ?`, id)
}

func (r *teamsRepo) GetTeamByName(ctx context.Context, name string) (domain.Team, error) {
	return r.getTeam(ctx, `SELECT `+teamColumns+` FROM teams WHERE name_key = ?`, domain.TeamNameKey(name))
}

func (r *teamsRepo) getTeam(ctx context.Context, query string, arg string) (domain.Team, error) {
	t, err := scanTeam(r.q.queryRow(ctx, query, arg))
	if err != nil {
		return domain.Team{}, mapNotFound(err)
	}
	if t.Members, err = r.listMembers(ctx, t.ID); err != nil {
		return domain.Team{}, err
	}
	if t.Invitations, err = (&invitationsRepo{q: r.q}).listByTeam(ctx, t.ID); err != nil {
		return domain.Team{}, err
	}
	return t, nil
}

func (r *teamsRepo) ListTeamsForUser(ctx context.Context, userID string) ([]domain.Team, error) {
	rows, err := r.q.query(ctx,
		`SELECT t.id, t.name, t.version, t.created_by, t.created_at, t.updated_at
		 FROM teams t JOIN team_members m ON m.team_id = t.id
		 WHERE m.user_id = ? ORDER BY t.created_at DESC, t.id DESC`, userID)
	if err != nil {
		return nil, err
	}

	var teams []domain.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Members are loaded after the cursor is released; a single-connection
	// sqlite pool cannot serve two open result sets.
	for i := range teams {
		if teams[i].Members, err = r.listMembers(ctx, teams[i].ID); err != nil {
			return nil, err
		}
	}
	return teams, nil
}

func (r *teamsRepo) AddMember(ctx context.Context, m domain.Member) error {
	joined := m.JoinedAt
	if joined.IsZero() {
		joined = time.Now()
	}
	_, err := r.q.exec(ctx,
		`INSERT INTO team_members (`+memberColumns+`) VALUES (?, ?, ?, ?, ?)`,
		m.TeamID, m.UserID, m.Email, string(m.Role), utc(joined),
	)
	return r.q.mapWriteErr(err)
}

func (r *teamsRepo) BumpVersion(ctx context.Context, teamID string, expected int64) error {
	err := r.q.execOne(ctx,
		`UPDATE teams SET version = version + 1, updated_at = ? WHERE id = ? AND version = ?`,
		utc(time.Now()), teamID, expected,
	)
	if errors.Is(err, errNoRowsAffected) {
		return store.ErrConflict
	}
	return err
}

func (r *teamsRepo) listMembers(ctx context.Context, teamID string) ([]domain.Member, error) {
	rows, err := r.q.query(ctx,
		`SELECT `+memberColumns+` FROM team_members WHERE team_id = ? ORDER BY joined_at, user_id`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		var (
			m    domain.Member
			role string
		)
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.Email, &role, &m.JoinedAt); err != nil {
			return nil, err
		}
		m.Role = domain.Role(role)
		m.JoinedAt = m.JoinedAt.UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

type invitationsRepo struct {
	q *queries
}

const invitationColumns = `id, team_id, email, token_hash, status, accepted_by, created_at, updated_at`

func scanInvitation(row interface{ Scan(...any) error }) (domain.Invitation, error) {
	var (
		inv        domain.Invitation
		status     string
		acceptedBy sql.NullString
	)
	if err := row.Scan(
		&inv.ID, &inv.TeamID, &inv.Email, &inv.TokenHash, &status,
		&acceptedBy, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return domain.Invitation{}, err
	}
	inv.Status = domain.InvitationStatus(status)
	inv.AcceptedBy = acceptedBy.String
	inv.CreatedAt = inv.CreatedAt.UTC()
	inv.UpdatedAt = inv.UpdatedAt.UTC()
	return inv, nil
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	status := inv.Status
	if status == "" {
		status = domain.InvitationPending
	}
	_, err := r.q.exec(ctx,
		`INSERT INTO team_invitations (`+invitationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.TeamID, inv.Email, inv.TokenHash, string(status),
		mapStringNull(inv.AcceptedBy), utc(inv.CreatedAt), utc(inv.UpdatedAt),
	)
	return r.q.mapWriteErr(err)
}

func (r *invitationsRepo) GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error) {
	inv, err := scanInvitation(r.q.queryRow(ctx,
		`SELECT `+invitationColumns+` FROM team_invitations WHERE token_hash = ?`, hash))
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) MarkAccepted(ctx context.Context, id, userID string) error {
	err := r.q.execOne(ctx,
		`UPDATE team_invitations SET status = ?, accepted_by = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		string(domain.InvitationAccepted), userID, utc(time.Now()), id, string(domain.InvitationPending),
	)
	return mapNotFound(err)
}

func (r *invitationsRepo) listByTeam(ctx context.Context, teamID string) ([]domain.Invitation, error) {
	rows, err := r.q.query(ctx,
		`SELECT `+invitationColumns+` FROM team_invitations WHERE team_id = ? ORDER BY created_at, id`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
