package domain

import (
	"errors"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

var ErrInvalidPriority = errors.New("priority must be one of Low, Medium, High")

// ParsePriority accepts any casing of Low, Medium or High.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	}
	return "", ErrInvalidPriority
}

// Todo is a personal item owned by UserID.
type Todo struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Priority    Priority
	Completed   bool
	CustomDate  *time.Time

	Attachments []Attachment

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Attachment is an uploaded file stored with its todo. Position keeps the
// upload order; the first attachment doubles as the todo's "file".
type Attachment struct {
	ID           string
	TodoID       string
	Position     int
	OriginalName string
	ContentType  string
	Data         []byte
	CreatedAt    time.Time
}

// TeamTodo is an item on a team's shared list.
type TeamTodo struct {
	ID          string
	TeamID      string
	Title       string
	Description string
	Priority    Priority
	Completed   bool
	CustomDate  *time.Time
	CreatedBy   string

	CreatedAt time.Time
	UpdatedAt time.Time
}
