package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
)

// Team groups members around a shared todo list. Version increases on every
// membership change and guards concurrent joins.
type Team struct {
	ID        string
	Name      string
	CreatedBy string
	Version   int64

	Members     []Member
	Invitations []Invitation

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Member struct {
	TeamID   string
	UserID   string
	Email    string
	Role     Role
	JoinedAt time.Time
}

// Invitation offers one email address a seat on a team. Only the SHA-256
// fingerprint of the token is kept.
type Invitation struct {
	ID         string
	TeamID     string
	Email      string
	TokenHash  string
	Status     InvitationStatus
	AcceptedBy string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member returns the membership of userID, if any.
func (t Team) Member(userID string) (Member, bool) {
	for _, m := range t.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return Member{}, false
}

func (t Team) IsMember(userID string) bool {
	_, ok := t.Member(userID)
	return ok
}

// TeamNameKey is the case-folded form used for uniqueness and lookup, so
// "Eng" and "eng" name the same team.
func TeamNameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
