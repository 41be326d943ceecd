package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/maplemarket/api/internal/domain"
	pfirestore "github.com/maplemarket/api/internal/platform/firestore"
)

const (
	itemsCollection      = "items"
	itemImagesCollection = "itemImages"
)

type itemDocument struct {
	Name          string    `firestore:"name"`
	Detail        string    `firestore:"detail"`
	Price         int64     `firestore:"price"`
	StockQuantity int       `firestore:"stockQuantity"`
	SellStatus    string    `firestore:"sellStatus"`
	CreatedBy     string    `firestore:"createdBy"`
	CreatedAt     time.Time `firestore:"createdAt"`
	UpdatedAt     time.Time `firestore:"updatedAt"`
}

func newItemDocument(item domain.CatalogItem) itemDocument {
	return itemDocument{
		Name:          strings.TrimSpace(item.Name),
		Detail:        item.Detail,
		Price:         item.Price,
		StockQuantity: item.StockQuantity,
		SellStatus:    string(item.SellStatus),
		CreatedBy:     strings.TrimSpace(item.CreatedBy),
		CreatedAt:     item.CreatedAt.UTC(),
		UpdatedAt:     item.UpdatedAt.UTC(),
	}
}

func (d itemDocument) toDomain(id string) domain.CatalogItem {
	return domain.CatalogItem{
		ID:            id,
		Name:          d.Name,
		Detail:        d.Detail,
		Price:         d.Price,
		StockQuantity: d.StockQuantity,
		SellStatus:    domain.SellStatus(d.SellStatus),
		CreatedBy:     d.CreatedBy,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type itemImageDocument struct {
	ItemID         string `firestore:"itemId"`
	URL            string `firestore:"url"`
	Representative bool   `firestore:"representative"`
}

func (d itemImageDocument) toDomain(id string) domain.ItemImage {
	return domain.ItemImage{
		ID:             id,
		ItemID:         d.ItemID,
		URL:            d.URL,
		Representative: d.Representative,
	}
}

// ItemRepository persists catalog items and their images within Firestore.
type ItemRepository struct {
	provider *pfirestore.Provider
	items    *pfirestore.BaseRepository[itemDocument]
	images   *pfirestore.BaseRepository[itemImageDocument]
}

// NewItemRepository constructs a Firestore-backed item repository.
func NewItemRepository(provider *pfirestore.Provider) (*ItemRepository, error) {
	if provider == nil {
		return nil, errors.New("item repository requires firestore provider")
	}
	items := pfirestore.NewBaseRepository[itemDocument](provider, itemsCollection, nil, nil)
	images := pfirestore.NewBaseRepository[itemImageDocument](provider, itemImagesCollection, nil, nil)
	return &ItemRepository{provider: provider, items: items, images: images}, nil
}

// Insert creates the item document. The item ID is the document ID.
func (r *ItemRepository) Insert(ctx context.Context, item domain.CatalogItem) error {
	if r == nil || r.items == nil {
		return errors.New("item repository not initialised")
	}
	if strings.TrimSpace(item.ID) == "" {
		return errors.New("item repository: item id is required")
	}
	_, err := r.items.Set(ctx, item.ID, newItemDocument(item))
	return err
}

// Update overwrites the item document.
func (r *ItemRepository) Update(ctx context.Context, item domain.CatalogItem) error {
	return r.Insert(ctx, item)
}

// FindByID fetches the item by its identifier.
func (r *ItemRepository) FindByID(ctx context.Context, itemID string) (domain.CatalogItem, error) {
	if r == nil || r.items == nil {
		return domain.CatalogItem{}, errors.New("item repository not initialised")
	}
	doc, err := r.items.Get(ctx, itemID)
	if err != nil {
		return domain.CatalogItem{}, err
	}
	return doc.Data.toDomain(doc.ID), nil
}

// Search returns items matching the criteria, newest first. Equality and date
// axes are pushed down to Firestore; the free-text axis is applied in memory
// because Firestore has no substring operator. Document IDs are monotonic
// ULIDs, so descending ID order equals newest-first.
func (r *ItemRepository) Search(ctx context.Context, criteria domain.ItemSearchCriteria, page domain.PageRequest) (domain.Page[domain.CatalogItem], error) {
	if r == nil || r.items == nil {
		return domain.Page[domain.CatalogItem]{}, errors.New("item repository not initialised")
	}

	now := time.Now().UTC()
	docs, err := r.items.Query(ctx, func(query firestore.Query) firestore.Query {
		if criteria.SellStatus != "" {
			query = query.Where("sellStatus", "==", string(criteria.SellStatus))
		}
		if cutoff, ok := domain.WindowCutoff(criteria.Window, now); ok {
			query = query.Where("createdAt", ">", cutoff)
		}
		return query
	})
	if err != nil {
		return domain.Page[domain.CatalogItem]{}, err
	}

	predicates := domain.SearchPredicates(criteria, now)
	matched := make([]domain.CatalogItem, 0, len(docs))
	for _, doc := range docs {
		item := doc.Data.toDomain(doc.ID)
		if domain.MatchesAll(item, predicates) {
			matched = append(matched, item)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	return slicePage(matched, page), nil
}

// SearchMainListing returns items joined with their representative image for
// the storefront main page. The join is an inner one: an item without a
// representative image appears neither in the page nor in the total count.
func (r *ItemRepository) SearchMainListing(ctx context.Context, nameQuery string, page domain.PageRequest) (domain.Page[domain.MainListingItem], error) {
	if r == nil || r.items == nil {
		return domain.Page[domain.MainListingItem]{}, errors.New("item repository not initialised")
	}

	docs, err := r.items.Query(ctx, nil)
	if err != nil {
		return domain.Page[domain.MainListingItem]{}, err
	}

	items := make([]domain.CatalogItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.Data.toDomain(doc.ID))
	}

	return mainListingPage(items, nameQuery, page, func(itemID string) (domain.ItemImage, error) {
		return r.FindRepresentativeImage(ctx, itemID)
	})
}

// mainListingPage filters by the optional name query, joins each item with its
// representative image, and slices the requested page, newest first.
func mainListingPage(items []domain.CatalogItem, nameQuery string, page domain.PageRequest, repImage func(itemID string) (domain.ItemImage, error)) (domain.Page[domain.MainListingItem], error) {
	nameQuery = strings.TrimSpace(nameQuery)

	listing := make([]domain.MainListingItem, 0, len(items))
	for _, item := range items {
		if nameQuery != "" && !strings.Contains(item.Name, nameQuery) {
			continue
		}
		image, err := repImage(item.ID)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return domain.Page[domain.MainListingItem]{}, err
		}
		listing = append(listing, domain.MainListingItem{
			ItemID:   item.ID,
			Name:     item.Name,
			Detail:   item.Detail,
			Price:    item.Price,
			ImageURL: image.URL,
		})
	}
	sort.Slice(listing, func(i, j int) bool { return listing[i].ItemID > listing[j].ItemID })

	return slicePage(listing, page), nil
}

// FindRepresentativeImage returns the item's representative image.
func (r *ItemRepository) FindRepresentativeImage(ctx context.Context, itemID string) (domain.ItemImage, error) {
	if r == nil || r.images == nil {
		return domain.ItemImage{}, errors.New("item repository not initialised")
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return domain.ItemImage{}, errors.New("item repository: item id is required")
	}

	docs, err := r.images.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.
			Where("itemId", "==", itemID).
			Where("representative", "==", true).
			Limit(1)
	})
	if err != nil {
		return domain.ItemImage{}, err
	}
	if len(docs) == 0 {
		return domain.ItemImage{}, pfirestore.WrapError("itemImages.get", status.Errorf(codes.NotFound, "representative image for item %s not found", itemID))
	}
	return docs[0].Data.toDomain(docs[0].ID), nil
}

// SaveImages replaces the image documents for the item.
func (r *ItemRepository) SaveImages(ctx context.Context, itemID string, images []domain.ItemImage) error {
	if r == nil || r.images == nil {
		return errors.New("item repository not initialised")
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return errors.New("item repository: item id is required")
	}
	for _, image := range images {
		if strings.TrimSpace(image.ID) == "" {
			return errors.New("item repository: image id is required")
		}
		doc := itemImageDocument{
			ItemID:         itemID,
			URL:            image.URL,
			Representative: image.Representative,
		}
		if _, err := r.images.Set(ctx, image.ID, doc); err != nil {
			return err
		}
	}
	return nil
}

func slicePage[T any](items []T, page domain.PageRequest) domain.Page[T] {
	total := int64(len(items))
	offset := page.Offset()
	if offset >= len(items) {
		return domain.Page[T]{Items: []T{}, TotalCount: total}
	}
	end := len(items)
	if page.PageSize > 0 && offset+page.PageSize < end {
		end = offset + page.PageSize
	}
	return domain.Page[T]{Items: items[offset:end], TotalCount: total}
}

func isNotFound(err error) bool {
	var repoErr *pfirestore.Error
	if errors.As(err, &repoErr) {
		return repoErr.IsNotFound()
	}
	return false
}
