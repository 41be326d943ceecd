package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	domain "github.com/maplemarket/api/internal/domain"
	"github.com/maplemarket/api/internal/platform/pagination"
	"github.com/maplemarket/api/internal/services"
)

func newCatalogRouter(t *testing.T, svc services.CatalogService) chi.Router {
	t.Helper()
	handlers := NewCatalogHandlers(svc, pagination.Options{DefaultPageSize: 6, MaxPageSize: 50})
	return newTestRouter(t, WithCatalogRoutes(handlers.Routes))
}

func TestMainListingEndpointIsPublic(t *testing.T) {
	svc := &stubCatalogService{
		mainListingFn: func(_ context.Context, nameQuery string, page domain.PageRequest) (domain.Page[domain.MainListingItem], error) {
			if nameQuery != "candle" {
				t.Fatalf("name query = %q, want candle", nameQuery)
			}
			if page.PageSize != 6 {
				t.Fatalf("page size = %d, want default 6", page.PageSize)
			}
			return domain.Page[domain.MainListingItem]{
				Items: []domain.MainListingItem{
					{ItemID: "itm_1", Name: "Maple Candle", ImageURL: "https://img.example.com/1.png", Price: 1200},
				},
				TotalCount: 1,
			}, nil
		},
	}
	router := newCatalogRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/listing?q=candle", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	payload := decodeBody(t, rec)
	items, ok := payload["items"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("items = %v, want one listing entry", payload["items"])
	}
}

func TestSearchItemsEndpointParsesCriteria(t *testing.T) {
	svc := &stubCatalogService{
		searchItemsFn: func(_ context.Context, criteria domain.ItemSearchCriteria, _ domain.PageRequest) (domain.Page[domain.CatalogItem], error) {
			if criteria.Window != domain.SearchWindowWeek {
				t.Fatalf("window = %q, want %q", criteria.Window, domain.SearchWindowWeek)
			}
			if criteria.SellStatus != domain.SellStatusOnSale {
				t.Fatalf("sell status = %q, want %q", criteria.SellStatus, domain.SellStatusOnSale)
			}
			if criteria.Field != domain.SearchFieldCreatedBy || criteria.Query != "seller" {
				t.Fatalf("criteria = %+v, want createdBy query seller", criteria)
			}
			return domain.Page[domain.CatalogItem]{TotalCount: 2}, nil
		},
	}
	router := newCatalogRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/items?window=1w&sellStatus=ON_SALE&field=createdBy&q=seller", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	payload := decodeBody(t, rec)
	if payload["total_count"] != float64(2) {
		t.Fatalf("total count = %v, want 2", payload["total_count"])
	}
}

func TestSearchItemsEndpointRejectsUnknownWindow(t *testing.T) {
	svc := &stubCatalogService{
		searchItemsFn: func(_ context.Context, _ domain.ItemSearchCriteria, _ domain.PageRequest) (domain.Page[domain.CatalogItem], error) {
			t.Fatal("service must not be called for an unknown window")
			return domain.Page[domain.CatalogItem]{}, nil
		},
	}
	router := newCatalogRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/items?window=2y", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetItemEndpointNotFound(t *testing.T) {
	svc := &stubCatalogService{
		getItemFn: func(_ context.Context, _ string) (domain.CatalogItem, error) {
			return domain.CatalogItem{}, services.ErrCatalogItemNotFound
		},
	}
	router := newCatalogRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/items/itm_missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRegisterItemEndpointRequiresIdentity(t *testing.T) {
	svc := &stubCatalogService{
		registerItemFn: func(_ context.Context, _ services.RegisterItemCommand) (domain.CatalogItem, error) {
			t.Fatal("service must not be called without an identity")
			return domain.CatalogItem{}, nil
		},
	}
	router := newCatalogRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/items", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRegisterItemEndpointStampsCreator(t *testing.T) {
	svc := &stubCatalogService{
		registerItemFn: func(_ context.Context, cmd services.RegisterItemCommand) (domain.CatalogItem, error) {
			if cmd.CreatedBy != "buyer@example.com" {
				t.Fatalf("created by = %q, want the header identity", cmd.CreatedBy)
			}
			if len(cmd.ImageURLs) != 2 {
				t.Fatalf("image URLs = %v, want two", cmd.ImageURLs)
			}
			return domain.CatalogItem{
				ID:         "itm_1",
				Name:       cmd.Name,
				Price:      cmd.Price,
				SellStatus: domain.SellStatusOnSale,
				CreatedBy:  cmd.CreatedBy,
			}, nil
		},
	}
	router := newCatalogRouter(t, svc)

	body := `{"name":"Maple Candle","price":1200,"stock_quantity":8,"image_urls":["https://img.example.com/a.png","https://img.example.com/b.png"]}`
	req := authedRequest(http.MethodPost, "/api/v1/catalog/items", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	payload := decodeBody(t, rec)
	item, ok := payload["item"].(map[string]any)
	if !ok {
		t.Fatalf("payload = %v, want item object", payload)
	}
	if item["created_by"] != "buyer@example.com" {
		t.Fatalf("created_by = %v, want the header identity", item["created_by"])
	}
}
