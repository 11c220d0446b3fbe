package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/todopilot/pilot/internal/pilot/domain"
)

const userColumns = `id, username, email, password_hash, is_verified, verification_token, created_at, updated_at`

type usersRepo struct {
	q *queries
}

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u     domain.User
		token sql.NullString
	)
	if err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.IsVerified, &token, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return domain.User{}, err
	}
	u.VerificationToken = mapNullStringPtr(token)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, strings.ToLower(u.Email), u.PasswordHash,
		u.IsVerified, mapOptionalString(u.VerificationToken),
		utc(u.CreatedAt), utc(u.UpdatedAt),
	)
	return r.q.mapWriteErr(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.q.queryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := scanUser(r.q.queryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) SetVerificationToken(ctx context.Context, userID, token string) error {
	err := r.q.execOne(ctx,
		`UPDATE users SET verification_token = ?, updated_at = ?
		 WHERE id = ? AND is_verified = ?`,
		token, utc(time.Now()), userID, false,
	)
	return mapNotFound(err)
}

func (r *usersRepo) MarkVerified(ctx context.Context, userID, token string) error {
	err := r.q.execOne(ctx,
		`UPDATE users SET is_verified = ?, verification_token = NULL, updated_at = ?
		 WHERE id = ? AND is_verified = ? AND verification_token = ?`,
		true, utc(time.Now()), userID, false, token,
	)
	return mapNotFound(err)
}

func (r *usersRepo) DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.exec(ctx,
		`DELETE FROM users WHERE is_verified = ? AND created_at < ?`,
		false, utc(cutoff),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
