package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/teamboard/teamboard/internal/api/middleware"
	"github.com/teamboard/teamboard/internal/api/response"
	"github.com/teamboard/teamboard/internal/api/validation"
	"github.com/teamboard/teamboard/internal/card"
	"github.com/teamboard/teamboard/internal/user"
)

type createCardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Column      int64  `json:"column"`
	Assignee    *int64 `json:"assignee"`
	Position    int    `json:"position"`
}

type updateCardRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Column      *int64          `json:"column"`
	Assignee    json.RawMessage `json:"assignee"`
	Position    *int            `json:"position"`
}

type cardResponse struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Column      int64         `json:"column"`
	Assignee    *user.Summary `json:"assignee"`
	Position    int           `json:"position"`
}

// CardHandler handles card CRUD endpoints.
type CardHandler struct {
	repo     card.Repository
	userRepo user.Repository
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(repo card.Repository, userRepo user.Repository) *CardHandler {
	return &CardHandler{repo: repo, userRepo: userRepo}
}

// toCardResponse builds the wire representation of a card, resolving the
// assignee to a nested summary. An unresolvable assignee is rendered as null
// rather than failing the request.
func (h *CardHandler) toCardResponse(ctx context.Context, c *card.Card) cardResponse {
	resp := cardResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Column:      c.ColumnID,
		Position:    c.Position,
	}
	if c.AssigneeID != nil {
		if u, err := h.userRepo.GetByID(ctx, *c.AssigneeID); err == nil {
			s := user.Summarize(u)
			resp.Assignee = &s
		}
	}
	return resp
}

// Create handles POST /api/cards/.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateCardRequest(validation.CreateCardRequest{
		Title:    req.Title,
		ColumnID: req.Column,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	c := &card.Card{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		ColumnID:    req.Column,
		AssigneeID:  req.Assignee,
		Position:    req.Position,
	}

	if err := h.repo.Create(r.Context(), c); err != nil {
		switch {
		case errors.Is(err, card.ErrUnknownColumn):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Column not found", requestID)
		case errors.Is(err, card.ErrUnknownAssignee):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Assignee not found", requestID)
		default:
			slog.Error("failed to create card", "error", err)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create card", requestID)
		}
		return
	}

	response.Success(w, http.StatusCreated, h.toCardResponse(r.Context(), c), requestID)
}

// List handles GET /api/cards/.
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	cards, err := h.repo.List(r.Context())
	if err != nil {
		slog.Error("failed to list cards", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list cards", requestID)
		return
	}

	items := make([]cardResponse, 0, len(cards))
	for i := range cards {
		items = append(items, h.toCardResponse(r.Context(), &cards[i]))
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// GetByID handles GET /api/cards/{id}.
func (h *CardHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, requestID)
	if !ok {
		return
	}

	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, card.ErrCardNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Card not found", requestID)
			return
		}
		slog.Error("failed to get card", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get card", requestID)
		return
	}

	response.Success(w, http.StatusOK, h.toCardResponse(r.Context(), c), requestID)
}

// Update handles PATCH /api/cards/{id}. Absent fields are left unchanged; an
// explicit "assignee": null clears the assignment.
func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, requestID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "title must not be empty", requestID)
		return
	}

	fields := card.UpdateFields{
		Title:       req.Title,
		Description: req.Description,
		ColumnID:    req.Column,
		Position:    req.Position,
	}
	if len(req.Assignee) > 0 {
		fields.SetAssignee = true
		if string(req.Assignee) != "null" {
			var assignee int64
			if err := json.Unmarshal(req.Assignee, &assignee); err != nil {
				response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "assignee must be a user id or null", requestID)
				return
			}
			fields.AssigneeID = &assignee
		}
	}

	c, err := h.repo.Update(r.Context(), id, fields)
	if err != nil {
		switch {
		case errors.Is(err, card.ErrCardNotFound):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Card not found", requestID)
		case errors.Is(err, card.ErrUnknownColumn):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Column not found", requestID)
		case errors.Is(err, card.ErrUnknownAssignee):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Assignee not found", requestID)
		default:
			slog.Error("failed to update card", "error", err, "id", id)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update card", requestID)
		}
		return
	}

	response.Success(w, http.StatusOK, h.toCardResponse(r.Context(), c), requestID)
}

// Delete handles DELETE /api/cards/{id}.
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, requestID)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, card.ErrCardNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Card not found", requestID)
			return
		}
		slog.Error("failed to delete card", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete card", requestID)
		return
	}

	response.NoContent(w)
}
