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

const cartEntriesCollection = "cartEntries"

type cartEntryDocument struct {
	AccountEmail string    `firestore:"accountEmail"`
	ItemID       string    `firestore:"itemId"`
	Quantity     int       `firestore:"quantity"`
	CreatedAt    time.Time `firestore:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

func newCartEntryDocument(entry domain.CartEntry) cartEntryDocument {
	return cartEntryDocument{
		AccountEmail: strings.TrimSpace(entry.AccountEmail),
		ItemID:       strings.TrimSpace(entry.ItemID),
		Quantity:     entry.Quantity,
		CreatedAt:    entry.CreatedAt.UTC(),
		UpdatedAt:    entry.UpdatedAt.UTC(),
	}
}

func (d cartEntryDocument) toDomain(id string) domain.CartEntry {
	return domain.CartEntry{
		ID:           id,
		AccountEmail: d.AccountEmail,
		ItemID:       d.ItemID,
		Quantity:     d.Quantity,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// CartRepository stores one cart entry document per account/item pair.
type CartRepository struct {
	base *pfirestore.BaseRepository[cartEntryDocument]
}

// NewCartRepository constructs a Firestore-backed cart repository.
func NewCartRepository(provider *pfirestore.Provider) (*CartRepository, error) {
	if provider == nil {
		return nil, errors.New("cart repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[cartEntryDocument](provider, cartEntriesCollection, nil, nil)
	return &CartRepository{base: base}, nil
}

// Insert creates the cart entry document.
func (r *CartRepository) Insert(ctx context.Context, entry domain.CartEntry) error {
	if r == nil || r.base == nil {
		return errors.New("cart repository not initialised")
	}
	if strings.TrimSpace(entry.ID) == "" {
		return errors.New("cart repository: entry id is required")
	}
	_, err := r.base.Set(ctx, entry.ID, newCartEntryDocument(entry))
	return err
}

// UpdateQuantity sets the entry quantity.
func (r *CartRepository) UpdateQuantity(ctx context.Context, entryID string, quantity int, updatedAt time.Time) error {
	if r == nil || r.base == nil {
		return errors.New("cart repository not initialised")
	}
	_, err := r.base.Update(ctx, entryID, []firestore.Update{
		{Path: "quantity", Value: quantity},
		{Path: "updatedAt", Value: updatedAt.UTC()},
	})
	return err
}

// Delete removes the cart entry document.
func (r *CartRepository) Delete(ctx context.Context, entryID string) error {
	if r == nil || r.base == nil {
		return errors.New("cart repository not initialised")
	}
	ref, err := r.base.DocumentRef(ctx, entryID)
	if err != nil {
		return err
	}
	if _, err := ref.Delete(ctx); err != nil {
		return pfirestore.WrapError("cartEntries.delete", err)
	}
	return nil
}

// FindByID fetches the cart entry by its identifier.
func (r *CartRepository) FindByID(ctx context.Context, entryID string) (domain.CartEntry, error) {
	if r == nil || r.base == nil {
		return domain.CartEntry{}, errors.New("cart repository not initialised")
	}
	doc, err := r.base.Get(ctx, entryID)
	if err != nil {
		return domain.CartEntry{}, err
	}
	return doc.Data.toDomain(doc.ID), nil
}

// FindByAccountAndItem locates the entry an AddItem call should merge into.
func (r *CartRepository) FindByAccountAndItem(ctx context.Context, accountEmail string, itemID string) (domain.CartEntry, error) {
	if r == nil || r.base == nil {
		return domain.CartEntry{}, errors.New("cart repository not initialised")
	}
	accountEmail = strings.TrimSpace(accountEmail)
	itemID = strings.TrimSpace(itemID)
	if accountEmail == "" || itemID == "" {
		return domain.CartEntry{}, errors.New("cart repository: account email and item id are required")
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.
			Where("accountEmail", "==", accountEmail).
			Where("itemId", "==", itemID).
			Limit(1)
	})
	if err != nil {
		return domain.CartEntry{}, err
	}
	if len(docs) == 0 {
		return domain.CartEntry{}, pfirestore.WrapError("cartEntries.get", status.Errorf(codes.NotFound, "cart entry for item %s not found", itemID))
	}
	return docs[0].Data.toDomain(docs[0].ID), nil
}

// ListByAccount returns the account's entries oldest first.
func (r *CartRepository) ListByAccount(ctx context.Context, accountEmail string) ([]domain.CartEntry, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("cart repository not initialised")
	}
	accountEmail = strings.TrimSpace(accountEmail)
	if accountEmail == "" {
		return nil, errors.New("cart repository: account email is required")
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.Where("accountEmail", "==", accountEmail)
	})
	if err != nil {
		return nil, err
	}

	entries := make([]domain.CartEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, doc.Data.toDomain(doc.ID))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}
