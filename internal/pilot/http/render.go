package http

import (
	"github.com/todopilot/pilot/internal/pilot/domain"
	"github.com/todopilot/pilot/pkg/pilotsdk"
)

func toUser(u domain.User) pilotsdk.User {
	return pilotsdk.User{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

func toTodo(t domain.Todo) pilotsdk.Todo {
	out := pilotsdk.Todo{
		ID:          t.ID,
		User:        t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Completed:   t.Completed,
		CustomDate:  t.CustomDate,
		Files:       make([]pilotsdk.File, 0, len(t.Attachments)),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	for _, a := range t.Attachments {
		out.Files = append(out.Files, pilotsdk.File{
			Data:         a.Data,
			ContentType:  a.ContentType,
			OriginalName: a.OriginalName,
		})
	}
	if len(out.Files) > 0 {
		first := out.Files[0]
		out.File = &first
	}
	return out
}

func toTodos(todos []domain.Todo) []pilotsdk.Todo {
	out := make([]pilotsdk.Todo, 0, len(todos))
	for _, t := range todos {
		out = append(out, toTodo(t))
	}
	return out
}

func toTeamTodo(t domain.TeamTodo) pilotsdk.TeamTodo {
	return pilotsdk.TeamTodo{
		ID:          t.ID,
		TeamID:      t.TeamID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Completed:   t.Completed,
		CustomDate:  t.CustomDate,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTeamTodos(todos []domain.TeamTodo) []pilotsdk.TeamTodo {
	out := make([]pilotsdk.TeamTodo, 0, len(todos))
	for _, t := range todos {
		out = append(out, toTeamTodo(t))
	}
	return out
}

// toTeamSummary describes team from the point of view of userID.
func toTeamSummary(team domain.Team, userID string) pilotsdk.TeamSummary {
	out := pilotsdk.TeamSummary{
		ID:        team.ID,
		TeamName:  team.Name,
		Members:   make([]pilotsdk.TeamMember, 0, len(team.Members)),
		CreatedAt: team.CreatedAt,
	}
	if m, ok := team.Member(userID); ok {
		out.Role = string(m.Role)
	}
	for _, m := range team.Members {
		out.Members = append(out.Members, pilotsdk.TeamMember{
			UserID: m.UserID,
			Email:  m.Email,
			Role:   string(m.Role),
		})
	}
	return out
}
