package store

import (
	"context"
	"errors"
	"time"

	"github.com/todopilot/pilot/internal/pilot/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict reports a failed optimistic version check.
	ErrConflict = errors.New("store: version conflict")
)

// Store is the root data access interface implemented by the sqlite and
// postgres drivers. Sub-repositories hang off it so a Tx exposes exactly
// the same surface.
type Store interface {
	Users() Users
	Todos() Todos
	Teams() Teams
	Invitations() Invitations
	TeamTodos() TeamTodos

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a Store bound to one transaction.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser fails with ErrAlreadyExists on a duplicate email or username.
	CreateUser(ctx context.Context, u domain.User) error
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// SetVerificationToken replaces the outstanding token of an unverified user.
	SetVerificationToken(ctx context.Context, userID, token string) error

	// MarkVerified flips is_verified and clears the token, but only while the
	// stored token still equals token. Returns ErrNotFound otherwise.
	MarkVerified(ctx context.Context, userID, token string) error

	// DeleteUnverifiedBefore removes never-verified accounts created before
	// cutoff and returns how many went.
	DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Todos interface {
	// ListTodosByUser returns the user's todos newest first, attachments
	// included.
	ListTodosByUser(ctx context.Context, userID string) ([]domain.Todo, error)

	// GetTodo returns the todo only when userID owns it.
	GetTodo(ctx context.Context, id, userID string) (domain.Todo, error)

	CreateTodo(ctx context.Context, t domain.Todo) error

	// UpdateTodo writes the scalar fields of t. Ownership is part of the
	// match; a todo of another user is ErrNotFound.
	UpdateTodo(ctx context.Context, t domain.Todo) error

	// ReplaceAttachments drops every attachment of todoID and stores atts.
	ReplaceAttachments(ctx context.Context, todoID string, atts []domain.Attachment) error

	DeleteTodo(ctx context.Context, id, userID string) error
}

type Teams interface {
	// CreateTeam inserts the team row. ErrAlreadyExists when the name is
	// taken in any casing.
	CreateTeam(ctx context.Context, t domain.Team) error

	// GetTeamByID and GetTeamByName load members and invitations too.
	GetTeamByID(ctx context.Context, id string) (domain.Team, error)
	GetTeamByName(ctx context.Context, name string) (domain.Team, error)

	// ListTeamsForUser returns the teams userID belongs to, with members.
	ListTeamsForUser(ctx context.Context, userID string) ([]domain.Team, error)

	// AddMember fails with ErrAlreadyExists if the user is already a member.
	AddMember(ctx context.Context, m domain.Member) error

	// BumpVersion increments the team version when it still equals expected,
	// and returns ErrConflict otherwise.
	BumpVersion(ctx context.Context, teamID string, expected int64) error
}

type Invitations interface {
	CreateInvitation(ctx context.Context, inv domain.Invitation) error
	GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error)

	// MarkAccepted moves a pending invitation to accepted. A second call
	// returns ErrNotFound.
	MarkAccepted(ctx context.Context, id, userID string) error
}

type TeamTodos interface {
	ListTeamTodos(ctx context.Context, teamID string) ([]domain.TeamTodo, error)
	GetTeamTodo(ctx context.Context, teamID, id string) (domain.TeamTodo, error)
	CreateTeamTodo(ctx context.Context, t domain.TeamTodo) error
	UpdateTeamTodo(ctx context.Context, t domain.TeamTodo) error
	DeleteTeamTodo(ctx context.Context, teamID, id string) error
}
