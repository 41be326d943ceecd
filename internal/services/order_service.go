package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/maplemarket/api/internal/domain"
	"github.com/maplemarket/api/internal/repositories"
)

const (
	eventOrderPlaced    = "order.placed"
	eventOrderCancelled = "order.cancelled"

	orderIDPrefix = "ord_"
)

var (
	// ErrOrderInvalidInput signals the caller provided invalid arguments.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderNotFound indicates the order could not be located.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderForbidden indicates the caller does not own the order or entry.
	ErrOrderForbidden = errors.New("order: forbidden")
	// ErrOrderItemNotFound indicates a referenced catalog item is missing.
	ErrOrderItemNotFound = errors.New("order: item not found")
	// ErrOrderEntryNotFound indicates a selected cart entry is missing.
	ErrOrderEntryNotFound = errors.New("order: cart entry not found")
	// ErrOrderNoItemsSelected indicates a checkout with no cart entries selected.
	ErrOrderNoItemsSelected = errors.New("order: no cart entries selected")
)

// OrderServiceDeps bundles the collaborators required to construct an order service.
type OrderServiceDeps struct {
	Orders      repositories.OrderRepository
	Items       repositories.ItemRepository
	Carts       repositories.CartRepository
	Accounts    repositories.AccountRepository
	Tx          repositories.UnitOfWork
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type orderService struct {
	orders   repositories.OrderRepository
	items    repositories.ItemRepository
	carts    repositories.CartRepository
	accounts repositories.AccountRepository
	tx       repositories.UnitOfWork
	clock    func() time.Time
	newID    func() string
	logger   func(context.Context, string, map[string]any)
}

// passthroughUnitOfWork runs the grouped operations without a transactional
// boundary. Used when no unit of work is injected.
type passthroughUnitOfWork struct{}

func (passthroughUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// NewOrderService wires dependencies into a concrete OrderService implementation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Items == nil {
		return nil, errors.New("order service: item repository is required")
	}
	if deps.Carts == nil {
		return nil, errors.New("order service: cart repository is required")
	}
	if deps.Accounts == nil {
		return nil, errors.New("order service: account repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return orderIDPrefix + ulid.Make().String()
		}
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	tx := deps.Tx
	if tx == nil {
		tx = passthroughUnitOfWork{}
	}

	return &orderService{
		orders:   deps.Orders,
		items:    deps.Items,
		carts:    deps.Carts,
		accounts: deps.Accounts,
		tx:       tx,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:  idGen,
		logger: logger,
	}, nil
}

func (s *orderService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (domain.Order, error) {
	accountEmail := strings.TrimSpace(cmd.AccountEmail)
	itemID := strings.TrimSpace(cmd.ItemID)
	if accountEmail == "" {
		return domain.Order{}, fmt.Errorf("%w: account email is required", ErrOrderInvalidInput)
	}
	if itemID == "" {
		return domain.Order{}, fmt.Errorf("%w: item id is required", ErrOrderInvalidInput)
	}
	if cmd.Quantity <= 0 {
		return domain.Order{}, fmt.Errorf("%w: quantity must be positive", ErrOrderInvalidInput)
	}

	if _, err := s.accounts.FindByEmail(ctx, accountEmail); err != nil {
		return domain.Order{}, s.mapAccountError(err)
	}

	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return domain.Order{}, s.mapItemError(err)
	}

	line, err := domain.NewOrderLine(&item, cmd.Quantity)
	if err != nil {
		return domain.Order{}, err
	}

	order, err := domain.NewOrder(accountEmail, []domain.OrderLine{line}, s.clock())
	if err != nil {
		return domain.Order{}, err
	}
	order.ID = s.newID()

	created, err := s.orders.Create(ctx, repositories.OrderPlacement{
		Order:           order,
		ReservedItemIDs: []string{itemID},
	})
	if err != nil {
		return domain.Order{}, s.mapPlacementError(err)
	}

	s.logger(ctx, eventOrderPlaced, map[string]any{
		"order_id": created.ID,
		"lines":    len(created.Lines),
		"total":    created.TotalPrice(),
	})
	return created, nil
}

func (s *orderService) Checkout(ctx context.Context, accountEmail string, entryIDs []string) (domain.Order, error) {
	accountEmail = strings.TrimSpace(accountEmail)
	if accountEmail == "" {
		return domain.Order{}, fmt.Errorf("%w: account email is required", ErrOrderInvalidInput)
	}

	selected := make([]string, 0, len(entryIDs))
	seen := make(map[string]struct{}, len(entryIDs))
	for _, entryID := range entryIDs {
		entryID = strings.TrimSpace(entryID)
		if entryID == "" {
			continue
		}
		if _, dup := seen[entryID]; dup {
			continue
		}
		seen[entryID] = struct{}{}
		selected = append(selected, entryID)
	}
	if len(selected) == 0 {
		return domain.Order{}, ErrOrderNoItemsSelected
	}

	if _, err := s.accounts.FindByEmail(ctx, accountEmail); err != nil {
		return domain.Order{}, s.mapAccountError(err)
	}

	// Every selected entry is resolved and authorised before any stock moves.
	entries := make([]domain.CartEntry, 0, len(selected))
	for _, entryID := range selected {
		entry, err := s.carts.FindByID(ctx, entryID)
		if err != nil {
			if isRepoNotFound(err) {
				return domain.Order{}, fmt.Errorf("%w: %s", ErrOrderEntryNotFound, entryID)
			}
			return domain.Order{}, err
		}
		if entry.AccountEmail != accountEmail {
			return domain.Order{}, ErrOrderForbidden
		}
		entries = append(entries, entry)
	}

	lines := make([]domain.OrderLine, 0, len(entries))
	reserved := make([]string, 0, len(entries))
	consumed := make([]string, 0, len(entries))
	for _, entry := range entries {
		item, err := s.items.FindByID(ctx, entry.ItemID)
		if err != nil {
			return domain.Order{}, s.mapItemError(err)
		}
		line, err := domain.NewOrderLine(&item, entry.Quantity)
		if err != nil {
			return domain.Order{}, err
		}
		lines = append(lines, line)
		reserved = append(reserved, entry.ItemID)
		consumed = append(consumed, entry.ID)
	}

	order, err := domain.NewOrder(accountEmail, lines, s.clock())
	if err != nil {
		return domain.Order{}, err
	}
	order.ID = s.newID()

	created, err := s.orders.Create(ctx, repositories.OrderPlacement{
		Order:           order,
		ReservedItemIDs: reserved,
		ConsumedEntries: consumed,
	})
	if err != nil {
		return domain.Order{}, s.mapPlacementError(err)
	}

	s.logger(ctx, eventOrderPlaced, map[string]any{
		"order_id": created.ID,
		"lines":    len(created.Lines),
		"total":    created.TotalPrice(),
		"checkout": true,
	})
	return created, nil
}

// CancelOrder runs the find, authorise, cancel, and update steps inside the
// unit of work so a concurrent cancellation cannot interleave.
func (s *orderService) CancelOrder(ctx context.Context, accountEmail string, orderID string) (domain.Order, error) {
	var cancelled domain.Order
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.authorisedOrder(ctx, accountEmail, orderID)
		if err != nil {
			return err
		}
		if err := order.Cancel(); err != nil {
			return err
		}
		if err := s.orders.Update(ctx, order); err != nil {
			return err
		}
		cancelled = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.logger(ctx, eventOrderCancelled, map[string]any{"order_id": cancelled.ID})
	return cancelled, nil
}

func (s *orderService) GetOrder(ctx context.Context, accountEmail string, orderID string) (domain.Order, error) {
	return s.authorisedOrder(ctx, accountEmail, orderID)
}

func (s *orderService) ListHistory(ctx context.Context, accountEmail string, page domain.PageRequest) (domain.Page[OrderHistoryEntry], error) {
	accountEmail = strings.TrimSpace(accountEmail)
	if accountEmail == "" {
		return domain.Page[OrderHistoryEntry]{}, fmt.Errorf("%w: account email is required", ErrOrderInvalidInput)
	}

	orders, err := s.orders.ListByAccount(ctx, accountEmail, page)
	if err != nil {
		return domain.Page[OrderHistoryEntry]{}, err
	}

	imageURLs := make(map[string]string)
	entries := make([]OrderHistoryEntry, 0, len(orders.Items))
	for _, order := range orders.Items {
		entry := OrderHistoryEntry{
			OrderID:    order.ID,
			Status:     order.Status,
			PlacedAt:   order.PlacedAt,
			TotalPrice: order.TotalPrice(),
			Lines:      make([]OrderHistoryLine, 0, len(order.Lines)),
		}
		for _, line := range order.Lines {
			imageURL, cached := imageURLs[line.ItemID]
			if !cached {
				image, err := s.items.FindRepresentativeImage(ctx, line.ItemID)
				switch {
				case err == nil:
					imageURL = image.URL
				case isRepoNotFound(err):
					imageURL = ""
				default:
					return domain.Page[OrderHistoryEntry]{}, err
				}
				imageURLs[line.ItemID] = imageURL
			}
			entry.Lines = append(entry.Lines, OrderHistoryLine{
				ItemID:    line.ItemID,
				ItemName:  line.ItemName,
				UnitPrice: line.UnitPrice,
				Quantity:  line.Quantity,
				Total:     line.Total(),
				ImageURL:  imageURL,
			})
		}
		entries = append(entries, entry)
	}

	return domain.Page[OrderHistoryEntry]{Items: entries, TotalCount: orders.TotalCount}, nil
}

// authorisedOrder loads the order and verifies the caller owns it. Foreign
// orders yield ErrOrderForbidden before any mutation can happen.
func (s *orderService) authorisedOrder(ctx context.Context, accountEmail string, orderID string) (domain.Order, error) {
	accountEmail = strings.TrimSpace(accountEmail)
	orderID = strings.TrimSpace(orderID)
	if accountEmail == "" {
		return domain.Order{}, fmt.Errorf("%w: account email is required", ErrOrderInvalidInput)
	}
	if orderID == "" {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if isRepoNotFound(err) {
			return domain.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return domain.Order{}, err
	}
	// Ownership is an exact match on the stored email.
	if order.AccountEmail != accountEmail {
		return domain.Order{}, ErrOrderForbidden
	}
	return order, nil
}

func (s *orderService) mapAccountError(err error) error {
	if isRepoNotFound(err) {
		return fmt.Errorf("%w: account not found", ErrOrderInvalidInput)
	}
	return err
}

func (s *orderService) mapItemError(err error) error {
	if isRepoNotFound(err) {
		return ErrOrderItemNotFound
	}
	return err
}

// mapPlacementError lowers repository stock failures onto the domain error the
// handlers already understand.
func (s *orderService) mapPlacementError(err error) error {
	var stockErr *repositories.StockError
	if errors.As(err, &stockErr) {
		switch stockErr.Code {
		case repositories.StockErrorInsufficient:
			return &domain.OutOfStockError{ItemID: stockErr.ItemID, Available: stockErr.Available}
		case repositories.StockErrorItemNotFound:
			return ErrOrderItemNotFound
		}
	}
	return err
}

func isRepoNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.IsNotFound()
	}
	return false
}
