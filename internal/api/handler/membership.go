package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/teamboard/teamboard/internal/api/middleware"
	"github.com/teamboard/teamboard/internal/api/response"
	"github.com/teamboard/teamboard/internal/api/validation"
	"github.com/teamboard/teamboard/internal/team"
)

type createMembershipRequest struct {
	Team int64  `json:"team"`
	User int64  `json:"user"`
	Role string `json:"role"`
}

type membershipResponse struct {
	ID   int64  `json:"id"`
	Team int64  `json:"team"`
	User int64  `json:"user"`
	Role string `json:"role"`
}

func toMembershipResponse(m *team.Membership) membershipResponse {
	return membershipResponse{ID: m.ID, Team: m.TeamID, User: m.UserID, Role: m.Role}
}

// MembershipHandler handles team membership endpoints.
type MembershipHandler struct {
	repo team.Repository
}

// NewMembershipHandler creates a new MembershipHandler.
func NewMembershipHandler(repo team.Repository) *MembershipHandler {
	return &MembershipHandler{repo: repo}
}

// Create handles POST /api/team-memberships/.
func (h *MembershipHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createMembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateMembershipRequest(validation.CreateMembershipRequest{
		TeamID: req.Team,
		UserID: req.User,
		Role:   req.Role,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	m := &team.Membership{TeamID: req.Team, UserID: req.User, Role: req.Role}

	if err := h.repo.AddMember(r.Context(), m); err != nil {
		switch {
		case errors.Is(err, team.ErrUnknownUser):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team or user not found", requestID)
		case errors.Is(err, team.ErrDuplicateMembership):
			response.Err(w, http.StatusConflict, "DUPLICATE_MEMBERSHIP", "User is already a member of the team", requestID)
		default:
			slog.Error("failed to create membership", "error", err)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create membership", requestID)
		}
		return
	}

	response.Success(w, http.StatusCreated, toMembershipResponse(m), requestID)
}

// List handles GET /api/team-memberships/.
func (h *MembershipHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	memberships, err := h.repo.ListMemberships(r.Context())
	if err != nil {
		slog.Error("failed to list memberships", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list memberships", requestID)
		return
	}

	items := make([]membershipResponse, 0, len(memberships))
	for i := range memberships {
		items = append(items, toMembershipResponse(&memberships[i]))
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// Delete handles DELETE /api/team-memberships/{id}.
func (h *MembershipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, requestID)
	if !ok {
		return
	}

	if err := h.repo.RemoveMember(r.Context(), id); err != nil {
		if errors.Is(err, team.ErrMembershipNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Membership not found", requestID)
			return
		}
		slog.Error("failed to delete membership", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete membership", requestID)
		return
	}

	response.NoContent(w)
}
