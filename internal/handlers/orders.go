package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/maplemarket/api/internal/domain"
	"github.com/maplemarket/api/internal/platform/auth"
	"github.com/maplemarket/api/internal/platform/httpx"
	"github.com/maplemarket/api/internal/platform/pagination"
	"github.com/maplemarket/api/internal/services"
)

const maxOrderBodySize = 16 * 1024

// OrderHandlers exposes the authenticated order endpoints for the current
// account.
type OrderHandlers struct {
	orders services.OrderService
	paging pagination.Options
}

// NewOrderHandlers constructs handlers backed by the order service.
func NewOrderHandlers(orders services.OrderService, paging pagination.Options) *OrderHandlers {
	return &OrderHandlers{
		orders: orders,
		paging: paging,
	}
}

// Routes wires the /orders endpoints onto the provided router. The router
// group is expected to enforce authentication before these handlers run.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.placeOrder)
	r.Post("/checkout", h.checkout)
	r.Get("/", h.listHistory)
	r.Get("/{orderID}", h.getOrder)
	r.Post("/{orderID}/cancel", h.cancelOrder)
}

func (h *OrderHandlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireService(ctx, w)
	if !ok {
		return
	}

	var req placeOrderRequest
	if err := decodeJSONBody(r, maxOrderBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	order, err := h.orders.PlaceOrder(ctx, services.PlaceOrderCommand{
		AccountEmail: identity.Email,
		ItemID:       req.ItemID,
		Quantity:     req.Quantity,
	})
	if err != nil {
		h.writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, orderResponse{Order: buildOrderPayload(order)})
}

func (h *OrderHandlers) checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireService(ctx, w)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := decodeJSONBody(r, maxOrderBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	order, err := h.orders.Checkout(ctx, identity.Email, req.EntryIDs)
	if err != nil {
		h.writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, orderResponse{Order: buildOrderPayload(order)})
}

func (h *OrderHandlers) listHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireService(ctx, w)
	if !ok {
		return
	}

	page, err := pagination.FromRequest(r, h.paging)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	history, err := h.orders.ListHistory(ctx, identity.Email, page)
	if err != nil {
		h.writeOrderError(ctx, w, err)
		return
	}

	entries := make([]orderHistoryPayload, 0, len(history.Items))
	for _, entry := range history.Items {
		lines := make([]orderHistoryLinePayload, 0, len(entry.Lines))
		for _, line := range entry.Lines {
			lines = append(lines, orderHistoryLinePayload{
				ItemID:    line.ItemID,
				ItemName:  line.ItemName,
				UnitPrice: line.UnitPrice,
				Quantity:  line.Quantity,
				Total:     line.Total,
				ImageURL:  line.ImageURL,
			})
		}
		entries = append(entries, orderHistoryPayload{
			OrderID:    entry.OrderID,
			Status:     string(entry.Status),
			PlacedAt:   formatTime(entry.PlacedAt),
			TotalPrice: entry.TotalPrice,
			Lines:      lines,
		})
	}
	writeJSONResponse(w, http.StatusOK, pagePayload[orderHistoryPayload]{
		Items:      entries,
		TotalCount: history.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
	})
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireService(ctx, w)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(ctx, identity.Email, chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *OrderHandlers) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireService(ctx, w)
	if !ok {
		return
	}

	order, err := h.orders.CancelOrder(ctx, identity.Email, chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *OrderHandlers) requireService(ctx context.Context, w http.ResponseWriter) (*auth.Identity, bool) {
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return nil, false
	}
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return nil, false
	}
	return identity, true
}

func (h *OrderHandlers) writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	var oos *domain.OutOfStockError
	switch {
	case errors.As(err, &oos):
		httpx.WriteError(ctx, w, httpx.NewError("out_of_stock", oos.Error(), http.StatusConflict).WithDetails(map[string]any{
			"item_id":   oos.ItemID,
			"available": oos.Available,
		}))
	case errors.Is(err, services.ErrOrderInvalidInput), errors.Is(err, domain.ErrInvalidQuantity):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderForbidden):
		httpx.WriteError(ctx, w, httpx.NewError("forbidden", "order belongs to another account", http.StatusForbidden))
	case errors.Is(err, services.ErrOrderItemNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("item_not_found", "item not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderEntryNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("cart_entry_not_found", "cart entry not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderNoItemsSelected):
		httpx.WriteError(ctx, w, httpx.NewError("no_items_selected", "select at least one cart entry", http.StatusBadRequest))
	case errors.Is(err, domain.ErrOrderAlreadyCancelled):
		httpx.WriteError(ctx, w, httpx.NewError("order_already_cancelled", "order is already cancelled", http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("order_error", "order request failed", http.StatusInternalServerError))
	}
}

func buildOrderPayload(order domain.Order) orderPayload {
	lines := make([]orderLinePayload, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, orderLinePayload{
			ItemID:    line.ItemID,
			ItemName:  line.ItemName,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Total:     line.Total(),
		})
	}
	return orderPayload{
		ID:         order.ID,
		Status:     string(order.Status),
		Lines:      lines,
		TotalPrice: order.TotalPrice(),
		PlacedAt:   formatTime(order.PlacedAt),
	}
}

type orderResponse struct {
	Order orderPayload `json:"order"`
}

type orderPayload struct {
	ID         string             `json:"id"`
	Status     string             `json:"status"`
	Lines      []orderLinePayload `json:"lines"`
	TotalPrice int64              `json:"total_price"`
	PlacedAt   string             `json:"placed_at,omitempty"`
}

type orderLinePayload struct {
	ItemID    string `json:"item_id"`
	ItemName  string `json:"item_name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Total     int64  `json:"total"`
}

type placeOrderRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type checkoutRequest struct {
	EntryIDs []string `json:"entry_ids"`
}

type orderHistoryPayload struct {
	OrderID    string                    `json:"order_id"`
	Status     string                    `json:"status"`
	PlacedAt   string                    `json:"placed_at,omitempty"`
	TotalPrice int64                     `json:"total_price"`
	Lines      []orderHistoryLinePayload `json:"lines"`
}

type orderHistoryLinePayload struct {
	ItemID    string `json:"item_id"`
	ItemName  string `json:"item_name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Total     int64  `json:"total"`
	ImageURL  string `json:"image_url,omitempty"`
}
