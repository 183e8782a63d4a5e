package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dstrand/tally/internal/register"
	"github.com/dstrand/tally/internal/store"
)

type ProductHandler struct {
	svc      *register.Service
	products *store.ProductStore
	ownerID  *string
	logger   *slog.Logger
}

func NewProductHandler(svc *register.Service, products *store.ProductStore, ownerID *string, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{svc: svc, products: products, ownerID: ownerID, logger: logger}
}

type productRequest struct {
	Name       *string  `json:"name"`
	Price      *float64 `json:"price"`
	Quantity   *int     `json:"quantity"`
	CategoryID *string  `json:"category_id"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		out any
		err error
	)
	if cat := r.URL.Query().Get("category"); cat != "" {
		out, err = h.products.ListByCategory(cat)
	} else {
		out, err = h.products.List()
	}
	if err != nil {
		h.logger.Error("list products", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get product")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	in := register.ProductInput{CategoryID: req.CategoryID, OwnerID: h.ownerID}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Price != nil {
		in.Price = *req.Price
	}
	if req.Quantity != nil {
		in.Quantity = *req.Quantity
	}

	p, err := h.svc.AddProduct(in)
	if err != nil {
		writeMutatorError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Update applies a partial patch over the stored record, then hands the
// full replacement to the mutator.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, err := h.products.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get product")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Price != nil {
		existing.Price = *req.Price
	}
	if req.Quantity != nil {
		existing.Quantity = *req.Quantity
	}
	if req.CategoryID != nil {
		existing.CategoryID = req.CategoryID
	}

	p, err := h.svc.UpdateProduct(*existing)
	if err != nil {
		writeMutatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProduct(r.PathValue("id")); err != nil {
		writeMutatorError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
