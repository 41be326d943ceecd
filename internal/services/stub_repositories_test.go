package services

import (
	"context"
	"fmt"
	"time"

	domain "github.com/maplemarket/api/internal/domain"
	"github.com/maplemarket/api/internal/repositories"
)

type stubRepoError struct {
	notFound bool
	conflict bool
}

func (e *stubRepoError) Error() string {
	return fmt.Sprintf("stub repo error (notFound=%v)", e.notFound)
}

func (e *stubRepoError) IsNotFound() bool    { return e.notFound }
func (e *stubRepoError) IsConflict() bool    { return e.conflict }
func (e *stubRepoError) IsUnavailable() bool { return false }

var errStubNotFound = &stubRepoError{notFound: true}

type stubItemRepository struct {
	insertFn      func(ctx context.Context, item domain.CatalogItem) error
	updateFn      func(ctx context.Context, item domain.CatalogItem) error
	findByIDFn    func(ctx context.Context, itemID string) (domain.CatalogItem, error)
	searchFn      func(ctx context.Context, criteria domain.ItemSearchCriteria, page domain.PageRequest) (domain.Page[domain.CatalogItem], error)
	mainListingFn func(ctx context.Context, nameQuery string, page domain.PageRequest) (domain.Page[domain.MainListingItem], error)
	repImageFn    func(ctx context.Context, itemID string) (domain.ItemImage, error)
	saveImagesFn  func(ctx context.Context, itemID string, images []domain.ItemImage) error
}

func (s *stubItemRepository) Insert(ctx context.Context, item domain.CatalogItem) error {
	if s.insertFn == nil {
		return nil
	}
	return s.insertFn(ctx, item)
}

func (s *stubItemRepository) Update(ctx context.Context, item domain.CatalogItem) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, item)
}

func (s *stubItemRepository) FindByID(ctx context.Context, itemID string) (domain.CatalogItem, error) {
	if s.findByIDFn == nil {
		return domain.CatalogItem{}, errStubNotFound
	}
	return s.findByIDFn(ctx, itemID)
}

func (s *stubItemRepository) Search(ctx context.Context, criteria domain.ItemSearchCriteria, page domain.PageRequest) (domain.Page[domain.CatalogItem], error) {
	if s.searchFn == nil {
		return domain.Page[domain.CatalogItem]{}, nil
	}
	return s.searchFn(ctx, criteria, page)
}

func (s *stubItemRepository) SearchMainListing(ctx context.Context, nameQuery string, page domain.PageRequest) (domain.Page[domain.MainListingItem], error) {
	if s.mainListingFn == nil {
		return domain.Page[domain.MainListingItem]{}, nil
	}
	return s.mainListingFn(ctx, nameQuery, page)
}

func (s *stubItemRepository) FindRepresentativeImage(ctx context.Context, itemID string) (domain.ItemImage, error) {
	if s.repImageFn == nil {
		return domain.ItemImage{}, errStubNotFound
	}
	return s.repImageFn(ctx, itemID)
}

func (s *stubItemRepository) SaveImages(ctx context.Context, itemID string, images []domain.ItemImage) error {
	if s.saveImagesFn == nil {
		return nil
	}
	return s.saveImagesFn(ctx, itemID, images)
}

type stubOrderRepository struct {
	createFn        func(ctx context.Context, placement repositories.OrderPlacement) (domain.Order, error)
	updateFn        func(ctx context.Context, order domain.Order) error
	findByIDFn      func(ctx context.Context, orderID string) (domain.Order, error)
	listByAccountFn func(ctx context.Context, accountEmail string, page domain.PageRequest) (domain.Page[domain.Order], error)
}

func (s *stubOrderRepository) Create(ctx context.Context, placement repositories.OrderPlacement) (domain.Order, error) {
	if s.createFn == nil {
		return placement.Order, nil
	}
	return s.createFn(ctx, placement)
}

func (s *stubOrderRepository) Update(ctx context.Context, order domain.Order) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, order)
}

func (s *stubOrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	if s.findByIDFn == nil {
		return domain.Order{}, errStubNotFound
	}
	return s.findByIDFn(ctx, orderID)
}

func (s *stubOrderRepository) ListByAccount(ctx context.Context, accountEmail string, page domain.PageRequest) (domain.Page[domain.Order], error) {
	if s.listByAccountFn == nil {
		return domain.Page[domain.Order]{}, nil
	}
	return s.listByAccountFn(ctx, accountEmail, page)
}

type stubCartRepository struct {
	insertFn         func(ctx context.Context, entry domain.CartEntry) error
	updateQuantityFn func(ctx context.Context, entryID string, quantity int, updatedAt time.Time) error
	deleteFn         func(ctx context.Context, entryID string) error
	findByIDFn       func(ctx context.Context, entryID string) (domain.CartEntry, error)
	findByItemFn     func(ctx context.Context, accountEmail string, itemID string) (domain.CartEntry, error)
	listByAccountFn  func(ctx context.Context, accountEmail string) ([]domain.CartEntry, error)
}

func (s *stubCartRepository) Insert(ctx context.Context, entry domain.CartEntry) error {
	if s.insertFn == nil {
		return nil
	}
	return s.insertFn(ctx, entry)
}

func (s *stubCartRepository) UpdateQuantity(ctx context.Context, entryID string, quantity int, updatedAt time.Time) error {
	if s.updateQuantityFn == nil {
		return nil
	}
	return s.updateQuantityFn(ctx, entryID, quantity, updatedAt)
}

func (s *stubCartRepository) Delete(ctx context.Context, entryID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, entryID)
}

func (s *stubCartRepository) FindByID(ctx context.Context, entryID string) (domain.CartEntry, error) {
	if s.findByIDFn == nil {
		return domain.CartEntry{}, errStubNotFound
	}
	return s.findByIDFn(ctx, entryID)
}

func (s *stubCartRepository) FindByAccountAndItem(ctx context.Context, accountEmail string, itemID string) (domain.CartEntry, error) {
	if s.findByItemFn == nil {
		return domain.CartEntry{}, errStubNotFound
	}
	return s.findByItemFn(ctx, accountEmail, itemID)
}

func (s *stubCartRepository) ListByAccount(ctx context.Context, accountEmail string) ([]domain.CartEntry, error) {
	if s.listByAccountFn == nil {
		return nil, nil
	}
	return s.listByAccountFn(ctx, accountEmail)
}

type stubUnitOfWork struct {
	calls int
}

func (s *stubUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.calls++
	return fn(ctx)
}

type stubAccountRepository struct {
	findByEmailFn func(ctx context.Context, email string) (domain.Account, error)
}

func (s *stubAccountRepository) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	if s.findByEmailFn == nil {
		return domain.Account{ID: "acc_1", Email: email}, nil
	}
	return s.findByEmailFn(ctx, email)
}
