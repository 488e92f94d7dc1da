// Package httpapi exposes the till session to the rendering layer over a
// local HTTP API. Handlers translate between JSON and session operations;
// every rule lives below them.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/pos-terminal/internal/backend"
	"github.com/andreasstove999/pos-terminal/internal/cart"
	"github.com/andreasstove999/pos-terminal/internal/session"
)

type Handler struct {
	session *session.Session
}

func NewHandler(s *session.Session) *Handler {
	return &Handler{session: s}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.State())
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query")
		return
	}

	res, err := h.session.Search(r.Context(), query)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	if res.Stale {
		// A newer query superseded this one; nothing to render.
		writeJSON(w, http.StatusOK, session.SearchResult{})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	res, err := h.session.Scan(r.Context())
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// AddItem adds a product the operator picked from the search results. The
// body is the match exactly as the search endpoint returned it.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var m backend.ProductMatch
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if m.ID == "" {
		writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	line := h.session.AddProduct(m)
	writeJSON(w, http.StatusOK, line)
}

type updateItemRequest struct {
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	SerialID  *string          `json:"serial_id,omitempty"`
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid index")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if req.Quantity != nil {
		if err := h.session.SetQuantity(index, *req.Quantity); err != nil {
			writeSessionError(w, err)
			return
		}
	}
	if req.UnitPrice != nil {
		h.session.SetUnitPrice(index, *req.UnitPrice)
	}
	if req.SerialID != nil {
		h.session.SetSerial(index, *req.SerialID)
	}

	writeJSON(w, http.StatusOK, h.session.State())
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid index")
		return
	}

	h.session.RemoveItem(index)
	writeJSON(w, http.StatusOK, h.session.State())
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.session.ClearCart()
	writeJSON(w, http.StatusOK, h.session.State())
}

type settingsRequest struct {
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
	TaxPercent      *decimal.Decimal `json:"tax_percent,omitempty"`
	AmountReceived  *decimal.Decimal `json:"amount_received,omitempty"`
	PaymentMethod   *string          `json:"payment_method,omitempty"`
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if req.DiscountPercent != nil {
		h.session.SetDiscountPercent(*req.DiscountPercent)
	}
	if req.TaxPercent != nil {
		h.session.SetTaxPercent(*req.TaxPercent)
	}
	if req.AmountReceived != nil {
		h.session.SetAmountReceived(*req.AmountReceived)
	}
	if req.PaymentMethod != nil {
		if err := h.session.SetPaymentMethod(r.Context(), *req.PaymentMethod); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to persist payment method")
			return
		}
	}

	writeJSON(w, http.StatusOK, h.session.State())
}

func (h *Handler) SelectWarehouse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WarehouseID string `json:"warehouse_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.WarehouseID == "" {
		writeError(w, http.StatusBadRequest, "missing warehouse_id")
		return
	}

	if err := h.session.SelectWarehouse(r.Context(), req.WarehouseID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist warehouse")
		return
	}
	writeJSON(w, http.StatusOK, h.session.State())
}

func (h *Handler) SelectCustomer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID string `json:"customer_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.session.SelectCustomer(r.Context(), req.CustomerID); err != nil {
		writeError(w, http.StatusBadGateway, "failed to load customer")
		return
	}
	writeJSON(w, http.StatusOK, h.session.State())
}

func (h *Handler) QuickCustomer(w http.ResponseWriter, r *http.Request) {
	var req backend.QuickCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	cust, err := h.session.QuickCustomer(r.Context(), req)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cust)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	res, err := h.session.Checkout(r.Context())
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) Hold(w http.ResponseWriter, r *http.Request) {
	hs, err := h.session.Hold(r.Context())
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hs)
}

func (h *Handler) HeldSales(w http.ResponseWriter, r *http.Request) {
	held, err := h.session.HeldSales(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list held sales")
		return
	}
	writeJSON(w, http.StatusOK, held)
}

// writeSessionError maps the session's typed conditions onto status codes.
// Validation blocks the request but not the session; backend failures are
// upstream errors.
func writeSessionError(w http.ResponseWriter, err error) {
	var stockErr *cart.InsufficientStockError
	switch {
	case errors.Is(err, cart.ErrEmptyCart):
		writeError(w, http.StatusUnprocessableEntity, "cart is empty")
	case errors.As(err, &stockErr):
		writeError(w, http.StatusUnprocessableEntity, stockErr.Error())
	case errors.Is(err, session.ErrCheckoutInFlight):
		writeError(w, http.StatusConflict, "checkout already in progress")
	case errors.Is(err, session.ErrNoWarehouse):
		writeError(w, http.StatusConflict, "select a warehouse first")
	case errors.Is(err, session.ErrNameRequired):
		writeError(w, http.StatusBadRequest, "customer name is required")
	case errors.Is(err, backend.ErrSearchFailed):
		writeError(w, http.StatusBadGateway, "product search failed")
	case errors.Is(err, backend.ErrSubmissionFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
