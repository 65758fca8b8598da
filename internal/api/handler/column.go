package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/teamboard/teamboard/internal/api/middleware"
	"github.com/teamboard/teamboard/internal/api/response"
	"github.com/teamboard/teamboard/internal/api/validation"
	"github.com/teamboard/teamboard/internal/card"
	"github.com/teamboard/teamboard/internal/column"
)

type createColumnRequest struct {
	Name     string `json:"name"`
	Board    int64  `json:"board"`
	Position int    `json:"position"`
}

type updateColumnRequest struct {
	Name     *string `json:"name"`
	Position *int    `json:"position"`
}

type columnResponse struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name"`
	Board    int64          `json:"board"`
	Position int            `json:"position"`
	Cards    []cardResponse `json:"cards"`
}

// ColumnHandler handles column CRUD endpoints. Column reads nest the
// column's cards in position order.
type ColumnHandler struct {
	repo        column.Repository
	cardRepo    card.Repository
	cardHandler *CardHandler
}

// NewColumnHandler creates a new ColumnHandler. The card handler is reused
// for its card serialization.
func NewColumnHandler(repo column.Repository, cardRepo card.Repository, cardHandler *CardHandler) *ColumnHandler {
	return &ColumnHandler{repo: repo, cardRepo: cardRepo, cardHandler: cardHandler}
}

func (h *ColumnHandler) toColumnResponse(r *http.Request, c *column.Column) (columnResponse, error) {
	resp := columnResponse{
		ID:       c.ID,
		Name:     c.Name,
		Board:    c.BoardID,
		Position: c.Position,
		Cards:    []cardResponse{},
	}

	cards, err := h.cardRepo.ListByColumn(r.Context(), c.ID)
	if err != nil {
		return resp, err
	}
	for i := range cards {
		resp.Cards = append(resp.Cards, h.cardHandler.toCardResponse(r.Context(), &cards[i]))
	}

	return resp, nil
}

// Create handles POST /api/columns/.
func (h *ColumnHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createColumnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateColumnRequest(validation.CreateColumnRequest{
		Name:    req.Name,
		BoardID: req.Board,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	c := &column.Column{
		Name:     strings.TrimSpace(req.Name),
		BoardID:  req.Board,
		Position: req.Position,
	}

	if err := h.repo.Create(r.Context(), c); err != nil {
		if errors.Is(err, column.ErrUnknownBoard) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Board not found", requestID)
			return
		}
		slog.Error("failed to create column", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create column", requestID)
		return
	}

	resp, err := h.toColumnResponse(r, c)
	if err != nil {
		slog.Error("failed to load column cards", "error", err, "id", c.ID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create column", requestID)
		return
	}

	response.Success(w, http.StatusCreated, resp, requestID)
}

// List handles GET /api/columns/.
func (h *ColumnHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	columns, err := h.repo.List(r.Context())
	if err != nil {
		slog.Error("failed to list columns", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list columns", requestID)
		return
	}

	items := make([]columnResponse, 0, len(columns))
	for i := range columns {
		resp, err := h.toColumnResponse(r, &columns[i])
		if err != nil {
			slog.Error("failed to load column cards", "error", err, "id", columns[i].ID)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list columns", requestID)
			return
		}
		items = append(items, resp)
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// GetByID handles GET /api/columns/{id}.
func (h *ColumnHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, requestID)
	if !ok {
		return
	}

	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, column.ErrColumnNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Column not found", requestID)
			return
		}
		slog.Error("failed to get column", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get column", requestID)
		return
	}

	resp, err := h.toColumnResponse(r, c)
	if err != nil {
		slog.Error("failed to load column cards", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get column", requestID)
		return
	}

	response.Success(w, http.StatusOK, resp, requestID)
}

// Update handles PATCH /api/columns/{id}.
func (h *ColumnHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, requestID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateColumnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "name must not be empty", requestID)
		return
	}

	c, err := h.repo.Update(r.Context(), id, column.UpdateFields{
		Name:     req.Name,
		Position: req.Position,
	})
	if err != nil {
		if errors.Is(err, column.ErrColumnNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Column not found", requestID)
			return
		}
		slog.Error("failed to update column", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update column", requestID)
		return
	}

	resp, err := h.toColumnResponse(r, c)
	if err != nil {
		slog.Error("failed to load column cards", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update column", requestID)
		return
	}

	response.Success(w, http.StatusOK, resp, requestID)
}

// Delete handles DELETE /api/columns/{id}. Cards in the column are removed
// by cascade.
func (h *ColumnHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, requestID)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, column.ErrColumnNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Column not found", requestID)
			return
		}
		slog.Error("failed to delete column", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete column", requestID)
		return
	}

	response.NoContent(w)
}
