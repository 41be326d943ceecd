package domain

import (
	"time"
)

// SellStatus describes whether a catalog item is currently sellable.
type SellStatus string

const (
	// SellStatusOnSale marks an item as available for purchase.
	SellStatusOnSale SellStatus = "ON_SALE"
	// SellStatusSoldOut marks an item as exhausted and hidden from checkout.
	SellStatusSoldOut SellStatus = "SOLD_OUT"
)

// OrderStatus enumerates the order lifecycle states.
type OrderStatus string

const (
	// OrderStatusPlaced is the initial state of every order.
	OrderStatusPlaced OrderStatus = "PLACED"
	// OrderStatusCancelled is the terminal state reached through cancellation.
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Account identifies a storefront customer. Ownership comparisons use the
// email as the canonical identity, matching the authentication boundary.
type Account struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}

// CatalogItem is a sellable product. StockQuantity is mutated exclusively
// through DecrementStock so the non-negative invariant holds everywhere.
type CatalogItem struct {
	ID            string
	Name          string
	Detail        string
	Price         int64 // minor currency units
	StockQuantity int
	SellStatus    SellStatus
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ItemImage is one of an item's images; the representative image is the one
// shown in listing views.
type ItemImage struct {
	ID             string
	ItemID         string
	URL            string
	Representative bool
}

// CartEntry is a pending per-account selection of an item and quantity.
type CartEntry struct {
	ID           string
	AccountEmail string
	ItemID       string
	Quantity     int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MainListingItem is the customer-facing listing projection joining an item
// with its representative image.
type MainListingItem struct {
	ItemID   string
	Name     string
	Detail   string
	ImageURL string
	Price    int64
}

// PageRequest carries offset-based paging inputs for list operations.
type PageRequest struct {
	Page     int
	PageSize int
}

// Offset returns the number of records to skip for this page.
func (p PageRequest) Offset() int {
	if p.Page <= 0 || p.PageSize <= 0 {
		return 0
	}
	return p.Page * p.PageSize
}

// Page bundles one page of results with the total count matching the same
// filter set, so callers can render page controls consistently.
type Page[T any] struct {
	Items      []T
	TotalCount int64
}
