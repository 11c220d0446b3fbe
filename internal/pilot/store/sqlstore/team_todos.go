package sqlstore

import (
	"context"
	"database/sql"

	"github.com/todopilot/pilot/internal/pilot/domain"
)

const teamTodoColumns = `id, team_id, title, description, priority, completed, custom_date, created_by, created_at, updated_at`

type teamTodosRepo struct {
	q *queries
}

func scanTeamTodo(row interface{ Scan(...any) error }) (domain.TeamTodo, error) {
	var (
		t          domain.TeamTodo
		priority   string
		customDate sql.NullTime
	)
	if err := row.Scan(
		&t.ID, &t.TeamID, &t.Title, &t.Description, &priority, &t.Completed,
		&customDate, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return domain.TeamTodo{}, err
	}
	t.Priority = domain.Priority(priority)
	t.CustomDate = mapNullTimePtr(customDate)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func (r *teamTodosRepo) ListTeamTodos(ctx context.Context, teamID string) ([]domain.TeamTodo, error) {
	rows, err := r.q.query(ctx,
		`SELECT `+teamTodoColumns+` FROM team_todos WHERE team_id = ?
		 ORDER BY created_at DESC, id DESC`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TeamTodo
	for rows.Next() {
		t, err := scanTeamTodo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *teamTodosRepo) GetTeamTodo(ctx context.Context, teamID, id string) (domain.TeamTodo, error) {
	t, err := scanTeamTodo(r.q.queryRow(ctx,
		`SELECT `+teamTodoColumns+` FROM team_todos WHERE team_id = ? AND id = ?`, teamID, id))
	if err != nil {
		return domain.TeamTodo{}, mapNotFound(err)
	}
	return t, nil
}

func (r *teamTodosRepo) CreateTeamTodo(ctx context.Context, t domain.TeamTodo) error {
	_, err := r.q.exec(ctx,
		`INSERT INTO team_todos (`+teamTodoColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.TeamID, t.Title, t.Description, string(t.Priority), t.Completed,
		mapOptionalTime(t.CustomDate), t.CreatedBy, utc(t.CreatedAt), utc(t.UpdatedAt),
	)
	return r.q.mapWriteErr(err)
}

func (r *teamTodosRepo) UpdateTeamTodo(ctx context.Context, t domain.TeamTodo) error {
	err := r.q.execOne(ctx,
		`UPDATE team_todos
		 SET title = ?, description = ?, priority = ?, completed = ?, custom_date = ?, updated_at = ?
		 WHERE team_id = ? AND id = ?`,
		t.Title, t.Description, string(t.Priority), t.Completed,
		mapOptionalTime(t.CustomDate), utc(t.UpdatedAt), t.TeamID, t.ID,
	)
	return mapNotFound(err)
}

func (r *teamTodosRepo) DeleteTeamTodo(ctx context.Context, teamID, id string) error {
	err := r.q.execOne(ctx, `DELETE FROM team_todos WHERE team_id = ? AND id = ?`, teamID, id)
	return mapNotFound(err)
}
