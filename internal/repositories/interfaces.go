package repositories

import (
	"context"
	"time"

	domain "github.com/maplemarket/api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Items() ItemRepository
	Orders() OrderRepository
	Carts() CartRepository
	Accounts() AccountRepository
	Health() HealthRepository
	UnitOfWork
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// UnitOfWork groups repository operations into one transactional boundary.
// Calls made with the context passed to fn join the same transaction.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ItemRepository persists catalog items and their images, and serves the
// back-office and storefront listing queries.
type ItemRepository interface {
	Insert(ctx context.Context, item domain.CatalogItem) error
	Update(ctx context.Context, item domain.CatalogItem) error
	FindByID(ctx context.Context, itemID string) (domain.CatalogItem, error)
	// Search returns items matching the criteria, newest first, sliced by the
	// page request. TotalCount reflects the same criteria, not the page.
	Search(ctx context.Context, criteria domain.ItemSearchCriteria, page domain.PageRequest) (domain.Page[domain.CatalogItem], error)
	// SearchMainListing returns on-sale items joined with their representative
	// image, filtered by an optional name query.
	SearchMainListing(ctx context.Context, nameQuery string, page domain.PageRequest) (domain.Page[domain.MainListingItem], error)
	FindRepresentativeImage(ctx context.Context, itemID string) (domain.ItemImage, error)
	SaveImages(ctx context.Context, itemID string, images []domain.ItemImage) error
}

// OrderPlacement bundles everything the order creation transaction writes:
// the new order aggregate, the items whose stock it consumed, and any cart
// entries the checkout should remove.
type OrderPlacement struct {
	Order           domain.Order
	ReservedItemIDs []string
	ConsumedEntries []string
}

// OrderRepository persists order aggregates. Lines live inside the order
// document; they are never written or read independently.
type OrderRepository interface {
	// Create atomically re-validates stock for every reserved item,
	// decrements it, writes the order, and deletes consumed cart entries.
	// Any stock shortfall aborts the whole placement.
	Create(ctx context.Context, placement OrderPlacement) (domain.Order, error)
	Update(ctx context.Context, order domain.Order) error
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	// ListByAccount returns the account's orders newest first with the total
	// order count for the account.
	ListByAccount(ctx context.Context, accountEmail string, page domain.PageRequest) (domain.Page[domain.Order], error)
}

// CartRepository stores one cart entry document per account/item pair.
type CartRepository interface {
	Insert(ctx context.Context, entry domain.CartEntry) error
	UpdateQuantity(ctx context.Context, entryID string, quantity int, updatedAt time.Time) error
	Delete(ctx context.Context, entryID string) error
	FindByID(ctx context.Context, entryID string) (domain.CartEntry, error)
	// FindByAccountAndItem locates the entry an AddItem call should merge
	// into. Absence is reported through a RepositoryError with IsNotFound.
	FindByAccountAndItem(ctx context.Context, accountEmail string, itemID string) (domain.CartEntry, error)
	// ListByAccount returns the account's entries oldest first.
	ListByAccount(ctx context.Context, accountEmail string) ([]domain.CartEntry, error)
}

// AccountRepository resolves shopper accounts by their login email. Accounts
// are provisioned by the identity system upstream; the API only reads them.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (domain.Account, error)
}

// HealthRepository exposes status of downstream dependencies for health checks.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}
