package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/maplemarket/api/internal/domain"
	"github.com/maplemarket/api/internal/platform/auth"
	"github.com/maplemarket/api/internal/platform/httpx"
	"github.com/maplemarket/api/internal/platform/pagination"
	"github.com/maplemarket/api/internal/services"
)

const maxCatalogBodySize = 64 * 1024

// CatalogHandlers exposes the storefront listing, the back-office item
// search, and the seller item management endpoints.
type CatalogHandlers struct {
	catalog services.CatalogService
	paging  pagination.Options
}

// NewCatalogHandlers constructs handlers backed by the catalog service.
func NewCatalogHandlers(catalog services.CatalogService, paging pagination.Options) *CatalogHandlers {
	return &CatalogHandlers{
		catalog: catalog,
		paging:  paging,
	}
}

// Routes wires the /catalog endpoints onto the provided router. Read access
// is public; item registration and updates require an authenticated caller.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/listing", h.mainListing)
	r.Get("/items", h.searchItems)
	r.Get("/items/{itemID}", h.getItem)

	r.Group(func(protected chi.Router) {
		protected.Use(auth.RequireIdentity)
		protected.Post("/items", h.registerItem)
		protected.Patch("/items/{itemID}", h.updateItem)
	})
}

func (h *CatalogHandlers) mainListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	page, err := pagination.FromRequest(r, h.paging)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	listing, err := h.catalog.MainListing(ctx, r.URL.Query().Get("q"), page)
	if err != nil {
		h.writeCatalogError(ctx, w, err)
		return
	}

	items := make([]listingItemPayload, 0, len(listing.Items))
	for _, item := range listing.Items {
		items = append(items, listingItemPayload{
			ItemID:   item.ItemID,
			Name:     item.Name,
			Detail:   item.Detail,
			ImageURL: item.ImageURL,
			Price:    item.Price,
		})
	}
	writeJSONResponse(w, http.StatusOK, pagePayload[listingItemPayload]{
		Items:      items,
		TotalCount: listing.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
	})
}

func (h *CatalogHandlers) searchItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	page, err := pagination.FromRequest(r, h.paging)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	criteria, err := parseSearchCriteria(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	result, err := h.catalog.SearchItems(ctx, criteria, page)
	if err != nil {
		h.writeCatalogError(ctx, w, err)
		return
	}

	items := make([]itemPayload, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, buildItemPayload(item))
	}
	writeJSONResponse(w, http.StatusOK, pagePayload[itemPayload]{
		Items:      items,
		TotalCount: result.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
	})
}

func (h *CatalogHandlers) getItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	item, err := h.catalog.GetItem(ctx, chi.URLParam(r, "itemID"))
	if err != nil {
		h.writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, itemResponse{Item: buildItemPayload(item)})
}

func (h *CatalogHandlers) registerItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
		return
	}

	var req registerItemRequest
	if err := decodeJSONBody(r, maxCatalogBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	item, err := h.catalog.RegisterItem(ctx, services.RegisterItemCommand{
		Name:          req.Name,
		Detail:        req.Detail,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		SellStatus:    domain.SellStatus(req.SellStatus),
		CreatedBy:     identity.Email,
		ImageURLs:     req.ImageURLs,
	})
	if err != nil {
		h.writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, itemResponse{Item: buildItemPayload(item)})
}

func (h *CatalogHandlers) updateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req updateItemRequest
	if err := decodeJSONBody(r, maxCatalogBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	item, err := h.catalog.UpdateItem(ctx, services.UpdateItemCommand{
		ItemID:        chi.URLParam(r, "itemID"),
		Name:          req.Name,
		Detail:        req.Detail,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		SellStatus:    domain.SellStatus(req.SellStatus),
	})
	if err != nil {
		h.writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, itemResponse{Item: buildItemPayload(item)})
}

func (h *CatalogHandlers) writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCatalogInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCatalogItemNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("item_not_found", "item not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "catalog request failed", http.StatusInternalServerError))
	}
}

// parseSearchCriteria maps the search query parameters onto the domain
// criteria. Unknown window or field tokens are rejected rather than ignored.
func parseSearchCriteria(r *http.Request) (domain.ItemSearchCriteria, error) {
	query := r.URL.Query()
	criteria := domain.ItemSearchCriteria{
		Query: strings.TrimSpace(query.Get("q")),
	}

	switch window := domain.SearchWindow(strings.TrimSpace(query.Get("window"))); window {
	case "", domain.SearchWindowAll:
	case domain.SearchWindowDay, domain.SearchWindowWeek, domain.SearchWindowMonth, domain.SearchWindowSixMonths:
		criteria.Window = window
	default:
		return domain.ItemSearchCriteria{}, fmt.Errorf("unsupported window %q", window)
	}

	switch status := domain.SellStatus(strings.TrimSpace(query.Get("sellStatus"))); status {
	case "":
	case domain.SellStatusOnSale, domain.SellStatusSoldOut:
		criteria.SellStatus = status
	default:
		return domain.ItemSearchCriteria{}, fmt.Errorf("unsupported sellStatus %q", status)
	}

	switch field := domain.SearchField(strings.TrimSpace(query.Get("field"))); field {
	case "":
		if criteria.Query != "" {
			criteria.Field = domain.SearchFieldItemName
		}
	case domain.SearchFieldItemName, domain.SearchFieldCreatedBy:
		criteria.Field = field
	default:
		return domain.ItemSearchCriteria{}, fmt.Errorf("unsupported field %q", field)
	}

	return criteria, nil
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		return
	}
	httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
}

func buildItemPayload(item domain.CatalogItem) itemPayload {
	return itemPayload{
		ID:            item.ID,
		Name:          item.Name,
		Detail:        item.Detail,
		Price:         item.Price,
		StockQuantity: item.StockQuantity,
		SellStatus:    string(item.SellStatus),
		CreatedBy:     item.CreatedBy,
		CreatedAt:     formatTime(item.CreatedAt),
		UpdatedAt:     formatTime(item.UpdatedAt),
	}
}

type pagePayload[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
}

type itemResponse struct {
	Item itemPayload `json:"item"`
}

type itemPayload struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Detail        string `json:"detail,omitempty"`
	Price         int64  `json:"price"`
	StockQuantity int    `json:"stock_quantity"`
	SellStatus    string `json:"sell_status"`
	CreatedBy     string `json:"created_by,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

type listingItemPayload struct {
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	Detail   string `json:"detail,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Price    int64  `json:"price"`
}

type registerItemRequest struct {
	Name          string   `json:"name"`
	Detail        string   `json:"detail"`
	Price         int64    `json:"price"`
	StockQuantity int      `json:"stock_quantity"`
	SellStatus    string   `json:"sell_status"`
	ImageURLs     []string `json:"image_urls"`
}

type updateItemRequest struct {
	Name          string `json:"name"`
	Detail        string `json:"detail"`
	Price         *int64 `json:"price"`
	StockQuantity *int   `json:"stock_quantity"`
	SellStatus    string `json:"sell_status"`
}
