package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dstrand/tally/internal/register"
	"github.com/dstrand/tally/internal/store"
)

type SaleHandler struct {
	svc     *register.Service
	sales   *store.SaleStore
	ownerID *string
	logger  *slog.Logger
}

func NewSaleHandler(svc *register.Service, sales *store.SaleStore, ownerID *string, logger *slog.Logger) *SaleHandler {
	return &SaleHandler{svc: svc, sales: sales, ownerID: ownerID, logger: logger}
}

type saleRequest struct {
	ProductID   *string `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Date        string  `json:"date"`
}

func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		out any
		err error
	)
	if date := r.URL.Query().Get("date"); date != "" {
		out, err = h.sales.ListByDate(date)
	} else {
		out, err = h.sales.List()
	}
	if err != nil {
		h.logger.Error("list sales", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list sales")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	sale, err := h.svc.AddSale(register.SaleInput{
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		Date:        req.Date,
		OwnerID:     h.ownerID,
	})
	if err != nil {
		writeMutatorError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}
