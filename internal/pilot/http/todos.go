package http

import (
	"net/http"

	"github.com/todopilot/pilot/internal/pilot/service"
	"github.com/todopilot/pilot/pkg/httpx"
	"github.com/todopilot/pilot/pkg/pilotsdk"
)

// TodosHandler serves the caller's personal todos.
type TodosHandler struct {
	TodoService    *service.TodoService
	MaxUploadBytes int64
}

// HandleList godoc
//
//	@Summary		List Todos
//	@Description	Personal todos of the caller, newest first. Attachment bytes are base64.
//	@Tags			Todos
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		pilotsdk.Todo
//	@Failure		401	{object}	httpx.ErrorResponse	"missing, invalid or expired token"
//	@Router			/todos [get].
func (h *TodosHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	u, ok := mustUser(w, r)
	if !ok {
		return
	}

	todos, err := h.TodoService.List(r.Context(), u.ID)
	if err != nil {
		writeServiceError(w, r, err, "failed to list todos")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTodos(todos))
}

// HandleCreate godoc
//
//	@Summary		Create Todo
//	@Description	JSON or multipart/form-data. Multipart bodies may carry a "file" part or up to five "files" parts.
//	@Tags			Todos
//	@Accept			json,mpfd
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		pilotsdk.TodoRequest	true	"title, description, priority, completed, customDate"
//	@Success		201		{object}	pilotsdk.Todo
//	@Failure		400		{object}	httpx.ErrorResponse	"validation error"
//	@Failure		413		{object}	httpx.ErrorResponse	"upload too large"
//	@Router			/todos [post].
func (h *TodosHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := mustUser(w, r)
	if !ok {
		return
	}

	in, err := decodeTodoInput(w, r, h.MaxUploadBytes)
	if err != nil {
		writeServiceError(w, r, err, "failed to decode todo")
		return
	}

	todo, err := h.TodoService.Create(r.Context(), u.ID, in)
	if err != nil {
		writeServiceError(w, r, err, "failed to create todo")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toTodo(todo))
}

// HandleUpdate godoc
//
//	@Summary		Update Todo
//	@Description	Partial update. Files sent with the request replace the current attachments.
//	@Tags			Todos
//	@Accept			json,mpfd
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Todo ID"
//	@Param			request	body		pilotsdk.TodoRequest	true	"fields to change"
//	@Success		200		{object}	pilotsdk.Todo
//	@Failure		400		{object}	httpx.ErrorResponse	"validation error"
//	@Failure		404		{object}	httpx.ErrorResponse	"todo not found"
//	@Router			/todos/{id} [put].
func (h *TodosHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	u, ok := mustUser(w, r)
	if !ok {
		return
	}

	in, err := decodeTodoInput(w, r, h.MaxUploadBytes)
	if err != nil {
		writeServiceError(w, r, err, "failed to decode todo")
		return
	}

	todo, err := h.TodoService.Update(r.Context(), u.ID, r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, r, err, "failed to update todo")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTodo(todo))
}

// HandleDelete godoc
//
//	@Summary		Delete Todo
//	@Tags			Todos
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Todo ID"
//	@Success		200	{object}	pilotsdk.MessageResponse
//	@Failure		404	{object}	httpx.ErrorResponse	"todo not found"
//	@Router			/todos/{id} [delete].
func (h *TodosHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	u, ok := mustUser(w, r)
	if !ok {
		return
	}

	if err := h.TodoService.Delete(r.Context(), u.ID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err, "failed to delete todo")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pilotsdk.MessageResponse{Message: "Todo deleted successfully"})
}
