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
	eventItemRegistered = "catalog.item_registered"
	eventItemUpdated    = "catalog.item_updated"

	itemIDPrefix  = "itm_"
	imageIDPrefix = "img_"
)

var (
	// ErrCatalogInvalidInput signals the caller provided invalid arguments.
	ErrCatalogInvalidInput = errors.New("catalog: invalid input")
	// ErrCatalogItemNotFound indicates the item could not be located.
	ErrCatalogItemNotFound = errors.New("catalog: item not found")
)

// CatalogServiceDeps bundles the collaborators required to construct a catalog service.
type CatalogServiceDeps struct {
	Items       repositories.ItemRepository
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type catalogService struct {
	items  repositories.ItemRepository
	clock  func() time.Time
	newID  func() string
	logger func(context.Context, string, map[string]any)
}

// NewCatalogService wires dependencies into a concrete CatalogService implementation.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Items == nil {
		return nil, errors.New("catalog service: item repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return ulid.Make().String()
		}
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &catalogService{
		items: deps.Items,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:  idGen,
		logger: logger,
	}, nil
}

func (s *catalogService) RegisterItem(ctx context.Context, cmd RegisterItemCommand) (domain.CatalogItem, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return domain.CatalogItem{}, fmt.Errorf("%w: name is required", ErrCatalogInvalidInput)
	}
	if cmd.Price < 0 {
		return domain.CatalogItem{}, fmt.Errorf("%w: price must not be negative", ErrCatalogInvalidInput)
	}
	if cmd.StockQuantity < 0 {
		return domain.CatalogItem{}, fmt.Errorf("%w: stock quantity must not be negative", ErrCatalogInvalidInput)
	}

	sellStatus := cmd.SellStatus
	if sellStatus == "" {
		sellStatus = domain.SellStatusOnSale
	}

	now := s.clock()
	item := domain.CatalogItem{
		ID:            itemIDPrefix + s.newID(),
		Name:          name,
		Detail:        cmd.Detail,
		Price:         cmd.Price,
		StockQuantity: cmd.StockQuantity,
		SellStatus:    sellStatus,
		CreatedBy:     strings.TrimSpace(cmd.CreatedBy),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.items.Insert(ctx, item); err != nil {
		return domain.CatalogItem{}, err
	}

	if len(cmd.ImageURLs) > 0 {
		images := make([]domain.ItemImage, 0, len(cmd.ImageURLs))
		for i, url := range cmd.ImageURLs {
			url = strings.TrimSpace(url)
			if url == "" {
				continue
			}
			images = append(images, domain.ItemImage{
				ID:             imageIDPrefix + s.newID(),
				ItemID:         item.ID,
				URL:            url,
				Representative: i == 0,
			})
		}
		if err := s.items.SaveImages(ctx, item.ID, images); err != nil {
			return domain.CatalogItem{}, err
		}
	}

	s.logger(ctx, eventItemRegistered, map[string]any{"item_id": item.ID})
	return item, nil
}

func (s *catalogService) UpdateItem(ctx context.Context, cmd UpdateItemCommand) (domain.CatalogItem, error) {
	itemID := strings.TrimSpace(cmd.ItemID)
	if itemID == "" {
		return domain.CatalogItem{}, fmt.Errorf("%w: item id is required", ErrCatalogInvalidInput)
	}

	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		if isRepoNotFound(err) {
			return domain.CatalogItem{}, ErrCatalogItemNotFound
		}
		return domain.CatalogItem{}, err
	}

	if name := strings.TrimSpace(cmd.Name); name != "" {
		item.Name = name
	}
	if cmd.Detail != "" {
		item.Detail = cmd.Detail
	}
	if cmd.Price != nil {
		if *cmd.Price < 0 {
			return domain.CatalogItem{}, fmt.Errorf("%w: price must not be negative", ErrCatalogInvalidInput)
		}
		item.Price = *cmd.Price
	}
	if cmd.StockQuantity != nil {
		if *cmd.StockQuantity < 0 {
			return domain.CatalogItem{}, fmt.Errorf("%w: stock quantity must not be negative", ErrCatalogInvalidInput)
		}
		item.StockQuantity = *cmd.StockQuantity
	}
	if cmd.SellStatus != "" {
		item.SellStatus = cmd.SellStatus
	}
	item.UpdatedAt = s.clock()

	if err := s.items.Update(ctx, item); err != nil {
		return domain.CatalogItem{}, err
	}

	s.logger(ctx, eventItemUpdated, map[string]any{"item_id": item.ID})
	return item, nil
}

func (s *catalogService) GetItem(ctx context.Context, itemID string) (domain.CatalogItem, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return domain.CatalogItem{}, fmt.Errorf("%w: item id is required", ErrCatalogInvalidInput)
	}
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		if isRepoNotFound(err) {
			return domain.CatalogItem{}, ErrCatalogItemNotFound
		}
		return domain.CatalogItem{}, err
	}
	return item, nil
}

func (s *catalogService) SearchItems(ctx context.Context, criteria domain.ItemSearchCriteria, page domain.PageRequest) (domain.Page[domain.CatalogItem], error) {
	return s.items.Search(ctx, criteria, page)
}

func (s *catalogService) MainListing(ctx context.Context, nameQuery string, page domain.PageRequest) (domain.Page[domain.MainListingItem], error) {
	return s.items.SearchMainListing(ctx, strings.TrimSpace(nameQuery), page)
}
