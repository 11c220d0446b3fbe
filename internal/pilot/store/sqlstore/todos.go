package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/todopilot/pilot/internal/pilot/domain"
)

const todoColumns = `id, user_id, title, description, priority, completed, custom_date, created_at, updated_at`

const attachmentColumns = `id, todo_id, position, original_name, content_type, data, created_at`

type todosRepo struct {
	q *queries
}

func scanTodo(row interface{ Scan(...any) error }) (domain.Todo, error) {
	var (
		t          domain.Todo
		priority   string
		customDate sql.NullTime
	)
	if err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &priority,
		&t.Completed, &customDate, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return domain.Todo{}, err
	}
	t.Priority = domain.Priority(priority)
	t.CustomDate = mapNullTimePtr(customDate)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func (r *todosRepo) ListTodosByUser(ctx context.Context, userID string) ([]domain.Todo, error) {
	rows, err := r.q.query(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		todos []domain.Todo
		index = map[string]int{}
	)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		index[t.ID] = len(todos)
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(todos) == 0 {
		return todos, nil
	}

	atts, err := r.listAttachments(ctx,
		`SELECT a.id, a.todo_id, a.position, a.original_name, a.content_type, a.data, a.created_at
		 FROM todo_attachments a JOIN todos t ON t.id = a.todo_id
		 WHERE t.user_id = ? ORDER BY a.todo_id, a.position`, userID)
	if err != nil {
		return nil, err
	}
	for _, a := range atts {
		if i, ok := index[a.TodoID]; ok {
			todos[i].Attachments = append(todos[i].Attachments, a)
		}
	}
	return todos, nil
}

func (r *todosRepo) GetTodo(ctx context.Context, id, userID string) (domain.Todo, error) {
	t, err := scanTodo(r.q.queryRow(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return domain.Todo{}, mapNotFound(err)
	}

	t.Attachments, err = r.listAttachments(ctx,
		`SELECT `+attachmentColumns+` FROM todo_attachments WHERE todo_id = ? ORDER BY position`, id)
	if err != nil {
		return domain.Todo{}, err
	}
	return t, nil
}

func (r *todosRepo) CreateTodo(ctx context.Context, t domain.Todo) error {
	_, err := r.q.exec(ctx,
		`INSERT INTO todos (`+todoColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Title, t.Description, string(t.Priority), t.Completed,
		mapOptionalTime(t.CustomDate), utc(t.CreatedAt), utc(t.UpdatedAt),
	)
	if err != nil {
		return r.q.mapWriteErr(err)
	}
	return r.insertAttachments(ctx, t.ID, t.Attachments)
}

func (r *todosRepo) UpdateTodo(ctx context.Context, t domain.Todo) error {
	err := r.q.execOne(ctx,
		`UPDATE todos
		 SET title = ?, description = ?, priority = ?, completed = ?, custom_date = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		t.Title, t.Description, string(t.Priority), t.Completed,
		mapOptionalTime(t.CustomDate), utc(t.UpdatedAt), t.ID, t.UserID,
	)
	return mapNotFound(err)
}

func (r *todosRepo) ReplaceAttachments(ctx context.Context, todoID string, atts []domain.Attachment) error {
	if _, err := r.q.exec(ctx, `DELETE FROM todo_attachments WHERE todo_id = ?`, todoID); err != nil {
		return err
	}
	return r.insertAttachments(ctx, todoID, atts)
}

func (r *todosRepo) DeleteTodo(ctx context.Context, id, userID string) error {
	err := r.q.execOne(ctx, `DELETE FROM todos WHERE id = ? AND user_id = ?`, id, userID)
	return mapNotFound(err)
}

func (r *todosRepo) insertAttachments(ctx context.Context, todoID string, atts []domain.Attachment) error {
	for i, a := range atts {
		createdAt := a.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		if _, err := r.q.exec(ctx,
			`INSERT INTO todo_attachments (`+attachmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, todoID, i, a.OriginalName, a.ContentType, a.Data, utc(createdAt),
		); err != nil {
			return r.q.mapWriteErr(err)
		}
	}
	return nil
}

func (r *todosRepo) listAttachments(ctx context.Context, query string, args ...any) ([]domain.Attachment, error) {
	rows, err := r.q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Attachment
	for rows.Next() {
		var a domain.Attachment
		if err := rows.Scan(
			&a.ID, &a.TodoID, &a.Position, &a.OriginalName, &a.ContentType, &a.Data, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		a.CreatedAt = a.CreatedAt.UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}
