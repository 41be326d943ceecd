package handlers

import (
	"context"

	domain "github.com/maplemarket/api/internal/domain"
	"github.com/maplemarket/api/internal/services"
)

type stubOrderService struct {
	placeOrderFn  func(ctx context.Context, cmd services.PlaceOrderCommand) (domain.Order, error)
	checkoutFn    func(ctx context.Context, accountEmail string, entryIDs []string) (domain.Order, error)
	cancelOrderFn func(ctx context.Context, accountEmail string, orderID string) (domain.Order, error)
	getOrderFn    func(ctx context.Context, accountEmail string, orderID string) (domain.Order, error)
	listHistoryFn func(ctx context.Context, accountEmail string, page domain.PageRequest) (domain.Page[services.OrderHistoryEntry], error)
}

func (s *stubOrderService) PlaceOrder(ctx context.Context, cmd services.PlaceOrderCommand) (domain.Order, error) {
	return s.placeOrderFn(ctx, cmd)
}

func (s *stubOrderService) Checkout(ctx context.Context, accountEmail string, entryIDs []string) (domain.Order, error) {
	return s.checkoutFn(ctx, accountEmail, entryIDs)
}

func (s *stubOrderService) CancelOrder(ctx context.Context, accountEmail string, orderID string) (domain.Order, error) {
	return s.cancelOrderFn(ctx, accountEmail, orderID)
}

func (s *stubOrderService) GetOrder(ctx context.Context, accountEmail string, orderID string) (domain.Order, error) {
	return s.getOrderFn(ctx, accountEmail, orderID)
}

func (s *stubOrderService) ListHistory(ctx context.Context, accountEmail string, page domain.PageRequest) (domain.Page[services.OrderHistoryEntry], error) {
	return s.listHistoryFn(ctx, accountEmail, page)
}

type stubCartService struct {
	addItemFn        func(ctx context.Context, cmd services.AddCartItemCommand) (domain.CartEntry, error)
	updateQuantityFn func(ctx context.Context, accountEmail string, entryID string, quantity int) (domain.CartEntry, error)
	removeEntryFn    func(ctx context.Context, accountEmail string, entryID string) error
	getCartFn        func(ctx context.Context, accountEmail string) (services.CartDetail, error)
}

func (s *stubCartService) AddItem(ctx context.Context, cmd services.AddCartItemCommand) (domain.CartEntry, error) {
	return s.addItemFn(ctx, cmd)
}

func (s *stubCartService) UpdateQuantity(ctx context.Context, accountEmail string, entryID string, quantity int) (domain.CartEntry, error) {
	return s.updateQuantityFn(ctx, accountEmail, entryID, quantity)
}

func (s *stubCartService) RemoveEntry(ctx context.Context, accountEmail string, entryID string) error {
	return s.removeEntryFn(ctx, accountEmail, entryID)
}

func (s *stubCartService) GetCart(ctx context.Context, accountEmail string) (services.CartDetail, error) {
	return s.getCartFn(ctx, accountEmail)
}

type stubCatalogService struct {
	registerItemFn func(ctx context.Context, cmd services.RegisterItemCommand) (domain.CatalogItem, error)
	updateItemFn   func(ctx context.Context, cmd services.UpdateItemCommand) (domain.CatalogItem, error)
	getItemFn      func(ctx context.Context, itemID string) (domain.CatalogItem, error)
	searchItemsFn  func(ctx context.Context, criteria domain.ItemSearchCriteria, page domain.PageRequest) (domain.Page[domain.CatalogItem], error)
	mainListingFn  func(ctx context.Context, nameQuery string, page domain.PageRequest) (domain.Page[domain.MainListingItem], error)
}

func (s *stubCatalogService) RegisterItem(ctx context.Context, cmd services.RegisterItemCommand) (domain.CatalogItem, error) {
	return s.registerItemFn(ctx, cmd)
}

func (s *stubCatalogService) UpdateItem(ctx context.Context, cmd services.UpdateItemCommand) (domain.CatalogItem, error) {
	return s.updateItemFn(ctx, cmd)
}

func (s *stubCatalogService) GetItem(ctx context.Context, itemID string) (domain.CatalogItem, error) {
	return s.getItemFn(ctx, itemID)
}

func (s *stubCatalogService) SearchItems(ctx context.Context, criteria domain.ItemSearchCriteria, page domain.PageRequest) (domain.Page[domain.CatalogItem], error) {
	return s.searchItemsFn(ctx, criteria, page)
}

func (s *stubCatalogService) MainListing(ctx context.Context, nameQuery string, page domain.PageRequest) (domain.Page[domain.MainListingItem], error) {
	return s.mainListingFn(ctx, nameQuery, page)
}

type stubSystemService struct {
	healthFn func(ctx context.Context) (domain.SystemHealthReport, error)
}

func (s *stubSystemService) Health(ctx context.Context) (domain.SystemHealthReport, error) {
	return s.healthFn(ctx)
}
