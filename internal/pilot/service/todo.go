package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/todopilot/pilot/internal/pilot/domain"
	"github.com/todopilot/pilot/internal/pilot/store"
	"github.com/todopilot/pilot/pkg/idx"
	"github.com/todopilot/pilot/pkg/slogx"
)

// MaxAttachments caps the files kept on a single todo.
const MaxAttachments = 5

// TodoInput is a create or partial update. Nil fields are left untouched on
// update.
type TodoInput struct {
	Title       *string
	Description *string
	Priority    *string
	Completed   *bool
	CustomDate  DateField

	// Files replace the current attachments when non-empty.
	Files []Upload
}

// DateField distinguishes "not sent" from "cleared". Set with a nil Value
// clears the date.
type DateField struct {
	Set   bool
	Value *time.Time
}

type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate accepts RFC 3339 timestamps, HTML datetime-local values and plain
// dates. An empty string or "null" clears the date.
func ParseDate(raw string) (DateField, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return DateField{Set: true}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return DateField{Set: true, Value: &t}, nil
		}
	}
	return DateField{}, invalid("Invalid customDate format")
}

type TodoService struct {
	Store store.Store
}

func (s *TodoService) List(ctx context.Context, userID string) ([]domain.Todo, error) {
	todos, err := s.Store.Todos().ListTodosByUser(ctx, userID)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list todos", slog.Any("error", err))
		return nil, err
	}
	return todos, nil
}

// Create adds a personal todo. Title, description and priority are required.
func (s *TodoService) Create(ctx context.Context, userID string, in TodoInput) (domain.Todo, error) {
	log := slogx.FromContext(ctx)

	if blank(in.Title) || blank(in.Description) || blank(in.Priority) {
		return domain.Todo{}, invalid("Title, description, and priority are required.")
	}
	priority, err := parsePriority(*in.Priority)
	if err != nil {
		return domain.Todo{}, err
	}
	atts, err := buildAttachments(in.Files)
	if err != nil {
		return domain.Todo{}, err
	}

	now := time.Now().UTC()
	t := domain.Todo{
		ID:          idx.New().String(),
		UserID:      userID,
		Title:       strings.TrimSpace(*in.Title),
		Description: *in.Description,
		Priority:    priority,
		Completed:   in.Completed != nil && *in.Completed,
		CustomDate:  in.CustomDate.Value,
		Attachments: atts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i := range t.Attachments {
		t.Attachments[i].TodoID = t.ID
		t.Attachments[i].CreatedAt = now
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Todos().CreateTodo(ctx, t)
	})
	if err != nil {
		log.Error("failed to create todo", slog.Any("error", err))
		return domain.Todo{}, err
	}

	log.Info("todo created", slog.String("todo_id", t.ID))
	return t, nil
}

// Update applies a partial update to a todo owned by userID.
func (s *TodoService) Update(ctx context.Context, userID, id string, in TodoInput) (domain.Todo, error) {
	log := slogx.FromContext(ctx)

	atts, err := buildAttachments(in.Files)
	if err != nil {
		return domain.Todo{}, err
	}

	var out domain.Todo
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. Load, scoped to the owner
		t, err := tx.Todos().GetTodo(ctx, id, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrTodoNotFound
			}
			return err
		}

		// 2. Apply the fields that were sent
		if err := applyTodoFields(&t.Title, &t.Description, &t.Priority, &t.Completed, &t.CustomDate, in); err != nil {
			return err
		}
		t.UpdatedAt = time.Now().UTC()

		// 3. Persist
		if err := tx.Todos().UpdateTodo(ctx, t); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrTodoNotFound
			}
			return err
		}
		if len(atts) > 0 {
			for i := range atts {
				atts[i].TodoID = t.ID
				atts[i].CreatedAt = t.UpdatedAt
			}
			if err := tx.Todos().ReplaceAttachments(ctx, t.ID, atts); err != nil {
				return err
			}
			t.Attachments = atts
		}

		out = t
		return nil
	})
	if err != nil {
		if !isClientError(err) {
			log.Error("failed to update todo", slog.String("todo_id", id), slog.Any("error", err))
		}
		return domain.Todo{}, err
	}
	return out, nil
}

func (s *TodoService) Delete(ctx context.Context, userID, id string) error {
	if err := s.Store.Todos().DeleteTodo(ctx, id, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTodoNotFound
		}
		slogx.FromContext(ctx).Error("failed to delete todo", slog.Any("error", err))
		return err
	}
	return nil
}

// applyTodoFields is shared by personal and team todo updates.
func applyTodoFields(
	title, description *string,
	priority *domain.Priority,
	completed *bool,
	customDate **time.Time,
	in TodoInput,
) error {
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return invalid("Title cannot be empty.")
		}
		*title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		*description = *in.Description
	}
	if in.Priority != nil {
		p, err := parsePriority(*in.Priority)
		if err != nil {
			return err
		}
		*priority = p
	}
	if in.Completed != nil {
		*completed = *in.Completed
	}
	if in.CustomDate.Set {
		*customDate = in.CustomDate.Value
	}
	return nil
}

func parsePriority(raw string) (domain.Priority, error) {
	p, err := domain.ParsePriority(raw)
	if err != nil {
		return "", invalid(fmt.Sprintf("Invalid priority %q, use Low, Medium or High.", raw))
	}
	return p, nil
}

func buildAttachments(files []Upload) ([]domain.Attachment, error) {
	if len(files) > MaxAttachments {
		return nil, invalid(fmt.Sprintf("At most %d files can be attached.", MaxAttachments))
	}
	atts := make([]domain.Attachment, 0, len(files))
	for i, f := range files {
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		atts = append(atts, domain.Attachment{
			ID:           idx.New().String(),
			Position:     i,
			OriginalName: f.Name,
			ContentType:  contentType,
			Data:         f.Data,
		})
	}
	return atts, nil
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// isClientError reports errors that are the caller's fault and not worth an
// error log line.
func isClientError(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrTodoNotFound, ErrTeamNotFound, ErrInvalidInvitation, ErrInvitationUsed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
