package api

import (
	"io"
	"net/http"
	"strconv"

	"storefront/internal/cart"
	"storefront/internal/types"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/currency"
)

const statusIgnored = "ignored"

type Handler struct {
	Store    *cart.Store
	Currency currency.Unit
}

func NewHandler(store *cart.Store, unit currency.Unit) *Handler {
	return &Handler{
		Store:    store,
		Currency: unit,
	}
}

// CartView is the JSON shape of the cart returned by every endpoint.
type CartView struct {
	Items    []types.LineItem `json:"items"`
	Total    string           `json:"total"`
	Count    int              `json:"count"`
	Currency string           `json:"currency"`
}

type Response struct {
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	Cart    *CartView `json:"cart,omitempty"`
}

type updateRequest struct {
	Amount *int `json:"amount"`
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /cart", h.handleGetCart)
	mux.HandleFunc("POST /cart/items/{id}", h.handleAdd)
	mux.HandleFunc("DELETE /cart/items/{id}", h.handleRemove)
	mux.HandleFunc("PUT /cart/items/{id}", h.handleUpdate)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	view := h.view(h.Store.Cart())
	if err := writeJSON(w, http.StatusOK, view); err != nil {
		http.Error(w, "failed to write response", http.StatusInternalServerError)
	}
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	h.respond(w, types.Added, h.Store.AddItem(r.Context(), id))
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	h.respond(w, types.Removed, h.Store.RemoveItem(r.Context(), id))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}
	defer func() {
		_ = r.Body.Close()
	}()
	var req updateRequest
	if err := json.Unmarshal(body, &req); err != nil || req.Amount == nil {
		http.Error(w, "body must be {\"amount\": <int>}", http.StatusBadRequest)
		return
	}

	applied, err := h.Store.UpdateAmount(r.Context(), id, *req.Amount)
	if err == nil && !applied {
		// Amounts below one and products not in the cart are accepted and ignored.
		log.WithField("productID", id).Debug("update ignored")
		view := h.view(h.Store.Cart())
		if err := writeJSON(w, http.StatusOK, Response{Status: statusIgnored, Cart: &view}); err != nil {
			http.Error(w, "failed to write response", http.StatusInternalServerError)
		}
		return
	}
	h.respond(w, types.Updated, err)
}

// respond writes the outcome of a cart operation. Failures map to a status
// code by kind; the body carries the same text as the user notification.
func (h *Handler) respond(w http.ResponseWriter, ok types.Signal, err error) {
	code := http.StatusOK
	signal := ok
	if err != nil {
		kind := types.KindOf(err)
		signal = types.SignalFor(kind)
		code = statusFor(kind)
	}
	view := h.view(h.Store.Cart())
	resp := Response{
		Status:  signal.String(),
		Message: types.SignalMessages[signal],
		Cart:    &view,
	}
	if err := writeJSON(w, code, resp); err != nil {
		http.Error(w, "failed to write response", http.StatusInternalServerError)
	}
}

func statusFor(k types.Kind) int {
	switch k {
	case types.KindOutOfStock:
		return http.StatusConflict
	case types.KindAddFailed, types.KindUpdateFailed:
		return http.StatusBadGateway
	case types.KindRemoveFailed:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) view(c types.Cart) CartView {
	return CartView{
		Items:    c.Items,
		Total:    c.Total().StringFixed(2),
		Count:    c.Count(),
		Currency: h.Currency.String(),
	}
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}
