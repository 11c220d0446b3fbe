package pilotsdk

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) ListTeams(ctx context.Context) ([]TeamSummary, error) {
	var out []TeamSummary
	if err := c.doJSON(ctx, http.MethodGet, "/teams", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTeam creates a team and invites joinEmail.
func (c *Client) CreateTeam(ctx context.Context, teamName, joinEmail string) (*TeamResponse, error) {
	var out TeamResponse
	req := CreateTeamRequest{TeamName: teamName, JoinEmail: joinEmail}
	if err := c.doJSON(ctx, http.MethodPost, "/teams", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// JoinTeam redeems an invitation token.
func (c *Client) JoinTeam(ctx context.Context, token string) (*TeamResponse, error) {
	var out TeamResponse
	if err := c.doJSON(ctx, http.MethodPost, "/teams/join/"+url.PathEscape(token), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func teamTodosPath(teamName string) string {
	return "/teams/" + url.PathEscape(teamName) + "/todos"
}

func (c *Client) ListTeamTodos(ctx context.Context, teamName string) ([]TeamTodo, error) {
	var out []TeamTodo
	if err := c.doJSON(ctx, http.MethodGet, teamTodosPath(teamName), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTeamTodo(ctx context.Context, teamName string, req TodoRequest) (*TeamTodo, error) {
	var out TeamTodo
	if err := c.doJSON(ctx, http.MethodPost, teamTodosPath(teamName), req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTeamTodo(ctx context.Context, teamName, id string, req TodoRequest) (*TeamTodo, error) {
	var out TeamTodo
	path := teamTodosPath(teamName) + "/" + url.PathEscape(id)
	if err := c.doJSON(ctx, http.MethodPut, path, req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTeamTodo(ctx context.Context, teamName, id string) error {
	path := teamTodosPath(teamName) + "/" + url.PathEscape(id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, http.StatusOK)
}
