package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/maplemarket/api/internal/domain"
	"github.com/maplemarket/api/internal/platform/auth"
	"github.com/maplemarket/api/internal/platform/httpx"
	"github.com/maplemarket/api/internal/services"
)

const maxCartBodySize = 16 * 1024

// CartHandlers exposes the authenticated cart endpoints for the current
// account.
type CartHandlers struct {
	carts services.CartService
}

// NewCartHandlers constructs handlers backed by the cart service.
func NewCartHandlers(carts services.CartService) *CartHandlers {
	return &CartHandlers{carts: carts}
}

// Routes wires the /cart endpoints onto the provided router. The router group
// is expected to enforce authentication before these handlers run.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getCart)
	r.Post("/entries", h.addItem)
	r.Patch("/entries/{entryID}", h.updateQuantity)
	r.Delete("/entries/{entryID}", h.removeEntry)
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireService(ctx, w)
	if !ok {
		return
	}

	detail, err := h.carts.GetCart(ctx, identity.Email)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}

	lines := make([]cartLinePayload, 0, len(detail.Lines))
	for _, line := range detail.Lines {
		lines = append(lines, cartLinePayload{
			EntryID:  line.EntryID,
			ItemID:   line.ItemID,
			ItemName: line.ItemName,
			Price:    line.Price,
			Quantity: line.Quantity,
			Total:    line.Total,
			ImageURL: line.ImageURL,
		})
	}
	writeJSONResponse(w, http.StatusOK, cartResponse{
		Lines:      lines,
		TotalPrice: detail.TotalPrice,
	})
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireService(ctx, w)
	if !ok {
		return
	}

	var req addCartItemRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	entry, err := h.carts.AddItem(ctx, services.AddCartItemCommand{
		AccountEmail: identity.Email,
		ItemID:       req.ItemID,
		Quantity:     req.Quantity,
	})
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, cartEntryResponse{Entry: buildCartEntryPayload(entry)})
}

func (h *CartHandlers) updateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireService(ctx, w)
	if !ok {
		return
	}

	var req updateCartEntryRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	entry, err := h.carts.UpdateQuantity(ctx, identity.Email, chi.URLParam(r, "entryID"), req.Quantity)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, cartEntryResponse{Entry: buildCartEntryPayload(entry)})
}

func (h *CartHandlers) removeEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireService(ctx, w)
	if !ok {
		return
	}

	if err := h.carts.RemoveEntry(ctx, identity.Email, chi.URLParam(r, "entryID")); err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandlers) requireService(ctx context.Context, w http.ResponseWriter) (*auth.Identity, bool) {
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return nil, false
	}
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return nil, false
	}
	return identity, true
}

func (h *CartHandlers) writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCartEntryNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("cart_entry_not_found", "cart entry not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCartForbidden):
		httpx.WriteError(ctx, w, httpx.NewError("forbidden", "cart entry belongs to another account", http.StatusForbidden))
	case errors.Is(err, services.ErrCartItemNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("item_not_found", "item not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("cart_error", "cart request failed", http.StatusInternalServerError))
	}
}

func buildCartEntryPayload(entry domain.CartEntry) cartEntryPayload {
	return cartEntryPayload{
		ID:        entry.ID,
		ItemID:    entry.ItemID,
		Quantity:  entry.Quantity,
		CreatedAt: formatTime(entry.CreatedAt),
		UpdatedAt: formatTime(entry.UpdatedAt),
	}
}

type cartResponse struct {
	Lines      []cartLinePayload `json:"lines"`
	TotalPrice int64             `json:"total_price"`
}

type cartLinePayload struct {
	EntryID  string `json:"entry_id"`
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Total    int64  `json:"total"`
	ImageURL string `json:"image_url,omitempty"`
}

type cartEntryResponse struct {
	Entry cartEntryPayload `json:"entry"`
}

type cartEntryPayload struct {
	ID        string `json:"id"`
	ItemID    string `json:"item_id"`
	Quantity  int    `json:"quantity"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type addCartItemRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type updateCartEntryRequest struct {
	Quantity int `json:"quantity"`
}
