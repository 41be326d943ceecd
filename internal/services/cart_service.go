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
	eventCartItemAdded   = "cart.item_added"
	eventCartItemUpdated = "cart.item_updated"
	eventCartItemRemoved = "cart.item_removed"

	cartEntryIDPrefix = "ce_"
)

var (
	// ErrCartInvalidInput signals the caller provided invalid arguments.
	ErrCartInvalidInput = errors.New("cart: invalid input")
	// ErrCartEntryNotFound indicates the cart entry could not be located.
	ErrCartEntryNotFound = errors.New("cart: entry not found")
	// ErrCartForbidden indicates the entry belongs to another account.
	ErrCartForbidden = errors.New("cart: forbidden")
	// ErrCartItemNotFound indicates the referenced catalog item is missing.
	ErrCartItemNotFound = errors.New("cart: item not found")
)

// CartServiceDeps bundles the collaborators required to construct a cart service.
type CartServiceDeps struct {
	Carts       repositories.CartRepository
	Items       repositories.ItemRepository
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type cartService struct {
	carts  repositories.CartRepository
	items  repositories.ItemRepository
	clock  func() time.Time
	newID  func() string
	logger func(context.Context, string, map[string]any)
}

// NewCartService wires dependencies into a concrete CartService implementation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Carts == nil {
		return nil, errors.New("cart service: cart repository is required")
	}
	if deps.Items == nil {
		return nil, errors.New("cart service: item repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return cartEntryIDPrefix + ulid.Make().String()
		}
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &cartService{
		carts: deps.Carts,
		items: deps.Items,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:  idGen,
		logger: logger,
	}, nil
}

func (s *cartService) AddItem(ctx context.Context, cmd AddCartItemCommand) (domain.CartEntry, error) {
	accountEmail := strings.TrimSpace(cmd.AccountEmail)
	itemID := strings.TrimSpace(cmd.ItemID)
	if accountEmail == "" {
		return domain.CartEntry{}, fmt.Errorf("%w: account email is required", ErrCartInvalidInput)
	}
	if itemID == "" {
		return domain.CartEntry{}, fmt.Errorf("%w: item id is required", ErrCartInvalidInput)
	}
	if cmd.Quantity <= 0 {
		return domain.CartEntry{}, fmt.Errorf("%w: quantity must be positive", ErrCartInvalidInput)
	}

	if _, err := s.items.FindByID(ctx, itemID); err != nil {
		if isRepoNotFound(err) {
			return domain.CartEntry{}, ErrCartItemNotFound
		}
		return domain.CartEntry{}, err
	}

	now := s.clock()

	existing, err := s.carts.FindByAccountAndItem(ctx, accountEmail, itemID)
	switch {
	case err == nil:
		existing.Quantity += cmd.Quantity
		existing.UpdatedAt = now
		if err := s.carts.UpdateQuantity(ctx, existing.ID, existing.Quantity, now); err != nil {
			return domain.CartEntry{}, err
		}
		s.logger(ctx, eventCartItemAdded, map[string]any{"entry_id": existing.ID, "merged": true})
		return existing, nil
	case isRepoNotFound(err):
	default:
		return domain.CartEntry{}, err
	}

	entry := domain.CartEntry{
		ID:           s.newID(),
		AccountEmail: accountEmail,
		ItemID:       itemID,
		Quantity:     cmd.Quantity,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.carts.Insert(ctx, entry); err != nil {
		return domain.CartEntry{}, err
	}
	s.logger(ctx, eventCartItemAdded, map[string]any{"entry_id": entry.ID, "merged": false})
	return entry, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, accountEmail string, entryID string, quantity int) (domain.CartEntry, error) {
	if quantity <= 0 {
		return domain.CartEntry{}, fmt.Errorf("%w: quantity must be positive", ErrCartInvalidInput)
	}

	entry, err := s.authorisedEntry(ctx, accountEmail, entryID)
	if err != nil {
		return domain.CartEntry{}, err
	}

	now := s.clock()
	if err := s.carts.UpdateQuantity(ctx, entry.ID, quantity, now); err != nil {
		return domain.CartEntry{}, err
	}
	entry.Quantity = quantity
	entry.UpdatedAt = now

	s.logger(ctx, eventCartItemUpdated, map[string]any{"entry_id": entry.ID, "quantity": quantity})
	return entry, nil
}

func (s *cartService) RemoveEntry(ctx context.Context, accountEmail string, entryID string) error {
	entry, err := s.authorisedEntry(ctx, accountEmail, entryID)
	if err != nil {
		return err
	}
	if err := s.carts.Delete(ctx, entry.ID); err != nil {
		return err
	}
	s.logger(ctx, eventCartItemRemoved, map[string]any{"entry_id": entry.ID})
	return nil
}

func (s *cartService) GetCart(ctx context.Context, accountEmail string) (CartDetail, error) {
	accountEmail = strings.TrimSpace(accountEmail)
	if accountEmail == "" {
		return CartDetail{}, fmt.Errorf("%w: account email is required", ErrCartInvalidInput)
	}

	entries, err := s.carts.ListByAccount(ctx, accountEmail)
	if err != nil {
		return CartDetail{}, err
	}

	detail := CartDetail{Lines: make([]CartLine, 0, len(entries))}
	for _, entry := range entries {
		item, err := s.items.FindByID(ctx, entry.ItemID)
		if err != nil {
			if isRepoNotFound(err) {
				return CartDetail{}, ErrCartItemNotFound
			}
			return CartDetail{}, err
		}

		line := CartLine{
			EntryID:  entry.ID,
			ItemID:   item.ID,
			ItemName: item.Name,
			Price:    item.Price,
			Quantity: entry.Quantity,
			Total:    item.Price * int64(entry.Quantity),
		}
		image, err := s.items.FindRepresentativeImage(ctx, item.ID)
		switch {
		case err == nil:
			line.ImageURL = image.URL
		case isRepoNotFound(err):
		default:
			return CartDetail{}, err
		}

		detail.Lines = append(detail.Lines, line)
		detail.TotalPrice += line.Total
	}
	return detail, nil
}

// authorisedEntry loads the entry and verifies the caller owns it. A foreign
// entry yields ErrCartForbidden before any mutation can happen.
func (s *cartService) authorisedEntry(ctx context.Context, accountEmail string, entryID string) (domain.CartEntry, error) {
	accountEmail = strings.TrimSpace(accountEmail)
	entryID = strings.TrimSpace(entryID)
	if accountEmail == "" {
		return domain.CartEntry{}, fmt.Errorf("%w: account email is required", ErrCartInvalidInput)
	}
	if entryID == "" {
		return domain.CartEntry{}, fmt.Errorf("%w: entry id is required", ErrCartInvalidInput)
	}

	entry, err := s.carts.FindByID(ctx, entryID)
	if err != nil {
		if isRepoNotFound(err) {
			return domain.CartEntry{}, fmt.Errorf("%w: %s", ErrCartEntryNotFound, entryID)
		}
		return domain.CartEntry{}, err
	}
	// Ownership is an exact match on the stored email.
	if entry.AccountEmail != accountEmail {
		return domain.CartEntry{}, ErrCartForbidden
	}
	return entry, nil
}
