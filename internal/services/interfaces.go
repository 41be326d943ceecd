package services

import (
	"context"
	"time"

	domain "github.com/maplemarket/api/internal/domain"
)

// OrderService owns order placement, cancellation, and history queries.
type OrderService interface {
	// PlaceOrder buys a single item directly, bypassing the cart.
	PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (domain.Order, error)
	// Checkout converts the selected cart entries into one order. Every entry
	// must belong to the caller; a foreign entry aborts before any stock
	// moves. The placement is all or nothing: any stock shortfall aborts it
	// and the cart is left untouched.
	Checkout(ctx context.Context, accountEmail string, entryIDs []string) (domain.Order, error)
	// CancelOrder flips the caller's order to cancelled. Stock is not restored.
	CancelOrder(ctx context.Context, accountEmail string, orderID string) (domain.Order, error)
	GetOrder(ctx context.Context, accountEmail string, orderID string) (domain.Order, error)
	// ListHistory returns the caller's orders newest first, each line joined
	// with the item's representative image.
	ListHistory(ctx context.Context, accountEmail string, page domain.PageRequest) (domain.Page[OrderHistoryEntry], error)
}

// PlaceOrderCommand carries the direct purchase input.
type PlaceOrderCommand struct {
	AccountEmail string
	ItemID       string
	Quantity     int
}

// OrderHistoryLine is one order line decorated for display.
type OrderHistoryLine struct {
	ItemID    string
	ItemName  string
	UnitPrice int64
	Quantity  int
	Total     int64
	ImageURL  string
}

// OrderHistoryEntry is one order decorated for the history listing.
type OrderHistoryEntry struct {
	OrderID    string
	Status     domain.OrderStatus
	PlacedAt   time.Time
	TotalPrice int64
	Lines      []OrderHistoryLine
}

// CartService owns the shopping cart of an account.
type CartService interface {
	// AddItem puts the item in the cart. An existing entry for the same item
	// absorbs the quantity instead of creating a duplicate.
	AddItem(ctx context.Context, cmd AddCartItemCommand) (domain.CartEntry, error)
	// UpdateQuantity sets the entry quantity. Only the owning account may call it.
	UpdateQuantity(ctx context.Context, accountEmail string, entryID string, quantity int) (domain.CartEntry, error)
	// RemoveEntry deletes the entry. Only the owning account may call it.
	RemoveEntry(ctx context.Context, accountEmail string, entryID string) error
	// GetCart returns the cart entries joined with item details and totals.
	GetCart(ctx context.Context, accountEmail string) (CartDetail, error)
}

// AddCartItemCommand carries the add-to-cart input.
type AddCartItemCommand struct {
	AccountEmail string
	ItemID       string
	Quantity     int
}

// CartLine is one cart entry decorated with item details for display.
type CartLine struct {
	EntryID  string
	ItemID   string
	ItemName string
	Price    int64
	Quantity int
	Total    int64
	ImageURL string
}

// CartDetail is the cart listing with the running total.
type CartDetail struct {
	Lines      []CartLine
	TotalPrice int64
}

// CatalogService owns item registration and the search surfaces.
type CatalogService interface {
	RegisterItem(ctx context.Context, cmd RegisterItemCommand) (domain.CatalogItem, error)
	UpdateItem(ctx context.Context, cmd UpdateItemCommand) (domain.CatalogItem, error)
	GetItem(ctx context.Context, itemID string) (domain.CatalogItem, error)
	// SearchItems serves the back-office listing with the dynamic criteria.
	SearchItems(ctx context.Context, criteria domain.ItemSearchCriteria, page domain.PageRequest) (domain.Page[domain.CatalogItem], error)
	// MainListing serves the storefront main page of on-sale items.
	MainListing(ctx context.Context, nameQuery string, page domain.PageRequest) (domain.Page[domain.MainListingItem], error)
}

// RegisterItemCommand carries the new item input.
type RegisterItemCommand struct {
	Name          string
	Detail        string
	Price         int64
	StockQuantity int
	SellStatus    domain.SellStatus
	CreatedBy     string
	ImageURLs     []string
}

// UpdateItemCommand carries the item update input. Zero values leave the
// corresponding field unchanged except SellStatus, which is always applied
// when non-empty.
type UpdateItemCommand struct {
	ItemID        string
	Name          string
	Detail        string
	Price         *int64
	StockQuantity *int
	SellStatus    domain.SellStatus
}

// SystemService reports service health for readiness probes.
type SystemService interface {
	Health(ctx context.Context) (domain.SystemHealthReport, error)
}
