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
	"github.com/teamboard/teamboard/internal/board"
)

type createBoardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Project     int64  `json:"project"`
}

type updateBoardRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type boardResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Project     int64  `json:"project"`
}

func toBoardResponse(b *board.Board) boardResponse {
	return boardResponse{ID: b.ID, Name: b.Name, Description: b.Description, Project: b.ProjectID}
}

// BoardHandler handles board CRUD endpoints.
type BoardHandler struct {
	repo board.Repository
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(repo board.Repository) *BoardHandler {
	return &BoardHandler{repo: repo}
}

// Create handles POST /api/boards/.
func (h *BoardHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateBoardRequest(validation.CreateBoardRequest{
		Name:      req.Name,
		ProjectID: req.Project,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	b := &board.Board{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		ProjectID:   req.Project,
	}

	if err := h.repo.Create(r.Context(), b); err != nil {
		if errors.Is(err, board.ErrUnknownProject) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Project not found", requestID)
			return
		}
		slog.Error("failed to create board", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create board", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toBoardResponse(b), requestID)
}

// List handles GET /api/boards/.
func (h *BoardHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	boards, err := h.repo.List(r.Context())
	if err != nil {
		slog.Error("failed to list boards", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list boards", requestID)
		return
	}

	items := make([]boardResponse, 0, len(boards))
	for i := range boards {
		items = append(items, toBoardResponse(&boards[i]))
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// GetByID handles GET /api/boards/{id}.
func (h *BoardHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, requestID)
	if !ok {
		return
	}

	b, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, board.ErrBoardNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Board not found", requestID)
			return
		}
		slog.Error("failed to get board", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get board", requestID)
		return
	}

	response.Success(w, http.StatusOK, toBoardResponse(b), requestID)
}

// Update handles PATCH /api/boards/{id}.
func (h *BoardHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, requestID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "name must not be empty", requestID)
		return
	}

	b, err := h.repo.Update(r.Context(), id, board.UpdateFields{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, board.ErrBoardNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Board not found", requestID)
			return
		}
		slog.Error("failed to update board", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update board", requestID)
		return
	}

	response.Success(w, http.StatusOK, toBoardResponse(b), requestID)
}

// Delete handles DELETE /api/boards/{id}.
func (h *BoardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, requestID)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, board.ErrBoardNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Board not found", requestID)
			return
		}
		slog.Error("failed to delete board", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete board", requestID)
		return
	}

	response.NoContent(w)
}
