package http

import (
	"net/http"

	"github.com/todopilot/pilot/internal/pilot/service"
	"github.com/todopilot/pilot/pkg/httpx"
	"github.com/todopilot/pilot/pkg/pilotsdk"
)

// TeamTodosHandler serves a team's shared list. Only members get past the
// service; everyone else sees 404.
type TeamTodosHandler struct {
	TeamService *service.TeamService
}

// HandleList godoc
//
//	@Summary		List Team Todos
//	@Tags			Teams
//	@Produce		json
//	@Security		BearerAuth
//	@Param			teamName	path		string	true	"Team name, any casing"
//	@Success		200			{array}		pilotsdk.TeamTodo
//	@Failure		404			{object}	httpx.ErrorResponse	"team not found or not a member"
//	@Router			/teams/{teamName}/todos [get].
func (h *TeamTodosHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	u, ok := mustUser(w, r)
	if !ok {
		return
	}

	todos, err := h.TeamService.ListTodos(r.Context(), u.ID, r.PathValue("teamName"))
	if err != nil {
		writeServiceError(w, r, err, "failed to list team todos")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTeamTodos(todos))
}

// HandleCreate godoc
//
//	@Summary		Create Team Todo
//	@Tags			Teams
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			teamName	path		string					true	"Team name"
//	@Param			request		body		pilotsdk.TodoRequest	true	"title and priority required"
//	@Success		201			{object}	pilotsdk.TeamTodo
//	@Failure		400			{object}	httpx.ErrorResponse	"validation error"
//	@Failure		404			{object}	httpx.ErrorResponse	"team not found or not a member"
//	@Router			/teams/{teamName}/todos [post].
func (h *TeamTodosHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := mustUser(w, r)
	if !ok {
		return
	}

	in, err := decodeTodoInput(w, r, httpx.MaxJSONBody)
	if err != nil {
		writeServiceError(w, r, err, "failed to decode team todo")
		return
	}

	todo, err := h.TeamService.CreateTodo(r.Context(), u.ID, r.PathValue("teamName"), in)
	if err != nil {
		writeServiceError(w, r, err, "failed to create team todo")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toTeamTodo(todo))
}

// HandleUpdate godoc
//
//	@Summary		Update Team Todo
//	@Tags			Teams
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			teamName	path		string					true	"Team name"
//	@Param			id			path		string					true	"Todo ID"
//	@Param			request		body		pilotsdk.TodoRequest	true	"fields to change"
//	@Success		200			{object}	pilotsdk.TeamTodo
//	@Failure		404			{object}	httpx.ErrorResponse	"team or todo not found"
//	@Router			/teams/{teamName}/todos/{id} [put].
func (h *TeamTodosHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	u, ok := mustUser(w, r)
	if !ok {
		return
	}

	in, err := decodeTodoInput(w, r, httpx.MaxJSONBody)
	if err != nil {
		writeServiceError(w, r, err, "failed to decode team todo")
		return
	}

	todo, err := h.TeamService.UpdateTodo(r.Context(), u.ID, r.PathValue("teamName"), r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, r, err, "failed to update team todo")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTeamTodo(todo))
}

// HandleDelete godoc
//
//	@Summary		Delete Team Todo
//	@Tags			Teams
//	@Produce		json
//	@Security		BearerAuth
//	@Param			teamName	path		string	true	"Team name"
//	@Param			id			path		string	true	"Todo ID"
//	@Success		200			{object}	pilotsdk.MessageResponse
//	@Failure		404			{object}	httpx.ErrorResponse	"team or todo not found"
//	@Router			/teams/{teamName}/todos/{id} [delete].
func (h *TeamTodosHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	u, ok := mustUser(w, r)
	if !ok {
		return
	}

	if err := h.TeamService.DeleteTodo(r.Context(), u.ID, r.PathValue("teamName"), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err, "failed to delete team todo")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pilotsdk.MessageResponse{Message: "Todo deleted successfully"})
}
