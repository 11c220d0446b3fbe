package http

import (
	"net/http"

	"github.com/todopilot/pilot/internal/pilot/service"
	"github.com/todopilot/pilot/pkg/httpx"
	"github.com/todopilot/pilot/pkg/pilotsdk"
)

type TeamsHandler struct {
	TeamService    *service.TeamService
	InvitationFlow *service.InvitationFlow
}

// HandleList godoc
//
//	@Summary		List Teams
//	@Description	Teams the caller belongs to, with the caller's role
//	@Tags			Teams
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		pilotsdk.TeamSummary
//	@Failure		401	{object}	httpx.ErrorResponse	"missing, invalid or expired token"
//	@Router			/teams [get].
func (h *TeamsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	u, ok := mustUser(w, r)
	if !ok {
		return
	}

	teams, err := h.TeamService.ListTeams(r.Context(), u.ID)
	if err != nil {
		writeServiceError(w, r, err, "failed to list teams")
		return
	}

	out := make([]pilotsdk.TeamSummary, 0, len(teams))
	for _, t := range teams {
		out = append(out, toTeamSummary(t, u.ID))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate godoc
//
//	@Summary		Create Team
//	@Description	Create a team with the caller as admin and email an invitation to joinEmail
//	@Tags			Teams
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		pilotsdk.CreateTeamRequest	true	"teamName, joinEmail"
//	@Success		201		{object}	pilotsdk.TeamResponse		"message, teamName, id"
//	@Failure		400		{object}	httpx.ErrorResponse			"validation error or team exists"
//	@Router			/teams [post].
func (h *TeamsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := mustUser(w, r)
	if !ok {
		return
	}

	var req pilotsdk.CreateTeamRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err, "failed to decode team")
		return
	}

	team, err := h.TeamService.CreateTeam(r.Context(), u, req.TeamName, req.JoinEmail)
	if err != nil {
		writeServiceError(w, r, err, "failed to create team")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, pilotsdk.TeamResponse{
		Message:  "Team created successfully",
		TeamName: team.Name,
		ID:       team.ID,
	})
}

// HandleJoin godoc
//
//	@Summary		Join Team
//	@Description	Redeem an invitation token. Joining a team twice is a no-op.
//	@Description	Also served as POST /teams/{teamName}/join/{token}; the team name is ignored.
//	@Tags			Teams
//	@Produce		json
//	@Security		BearerAuth
//	@Param			token	path		string					true	"Invitation token"
//	@Success		200		{object}	pilotsdk.TeamResponse	"message, teamName, id"
//	@Failure		400		{object}	httpx.ErrorResponse		"invitation already used"
//	@Failure		404		{object}	httpx.ErrorResponse		"invalid invitation"
//	@Failure		409		{object}	httpx.ErrorResponse		"concurrent membership change"
//	@Router			/teams/join/{token} [post].
func (h *TeamsHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	u, ok := mustUser(w, r)
	if !ok {
		return
	}

	team, err := h.InvitationFlow.Join(r.Context(), r.PathValue("token"), u)
	if err != nil {
		writeServiceError(w, r, err, "failed to join team")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pilotsdk.TeamResponse{
		Message:  "Joined team successfully",
		TeamName: team.Name,
		ID:       team.ID,
	})
}
