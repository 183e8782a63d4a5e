package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dstrand/tally/internal/register"
	"github.com/dstrand/tally/internal/store"
)

type CategoryHandler struct {
	svc        *register.Service
	categories *store.CategoryStore
	logger     *slog.Logger
}

func NewCategoryHandler(svc *register.Service, categories *store.CategoryStore, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{svc: svc, categories: categories, logger: logger}
}

type categoryRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.categories.List()
	if err != nil {
		h.logger.Error("list categories", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	in := register.CategoryInput{}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Color != nil {
		in.Color = *req.Color
	}

	c, err := h.svc.AddCategory(in)
	if err != nil {
		writeMutatorError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, err := h.categories.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get category")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Color != nil {
		existing.Color = *req.Color
	}

	c, err := h.svc.UpdateCategory(*existing)
	if err != nil {
		writeMutatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCategory(r.PathValue("id")); err != nil {
		writeMutatorError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
