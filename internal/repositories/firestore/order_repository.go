package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/maplemarket/api/internal/domain"
	pfirestore "github.com/maplemarket/api/internal/platform/firestore"
	"github.com/maplemarket/api/internal/repositories"
)

const ordersCollection = "orders"

type orderLineDocument struct {
	ItemID    string `firestore:"itemId"`
	ItemName  string `firestore:"itemName"`
	UnitPrice int64  `firestore:"unitPrice"`
	Quantity  int    `firestore:"quantity"`
}

type orderDocument struct {
	AccountEmail string              `firestore:"accountEmail"`
	Status       string              `firestore:"status"`
	Lines        []orderLineDocument `firestore:"lines"`
	PlacedAt     time.Time           `firestore:"placedAt"`
}

func newOrderDocument(order domain.Order) orderDocument {
	lines := make([]orderLineDocument, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, orderLineDocument{
			ItemID:    line.ItemID,
			ItemName:  line.ItemName,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	return orderDocument{
		AccountEmail: order.AccountEmail,
		Status:       string(order.Status),
		Lines:        lines,
		PlacedAt:     order.PlacedAt.UTC(),
	}
}

func (d orderDocument) toDomain(id string) domain.Order {
	lines := make([]domain.OrderLine, 0, len(d.Lines))
	for _, line := range d.Lines {
		lines = append(lines, domain.OrderLine{
			ItemID:    line.ItemID,
			ItemName:  line.ItemName,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	return domain.Order{
		ID:           id,
		AccountEmail: d.AccountEmail,
		Status:       domain.OrderStatus(d.Status),
		Lines:        lines,
		PlacedAt:     d.PlacedAt,
	}
}

// OrderRepository persists order aggregates within Firestore.
type OrderRepository struct {
	provider *pfirestore.Provider
	orders   *pfirestore.BaseRepository[orderDocument]
	items    *pfirestore.BaseRepository[itemDocument]
	entries  *pfirestore.BaseRepository[cartEntryDocument]
}

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	orders := pfirestore.NewBaseRepository[orderDocument](provider, ordersCollection, nil, nil)
	items := pfirestore.NewBaseRepository[itemDocument](provider, itemsCollection, nil, nil)
	entries := pfirestore.NewBaseRepository[cartEntryDocument](provider, cartEntriesCollection, nil, nil)
	return &OrderRepository{provider: provider, orders: orders, items: items, entries: entries}, nil
}

// Create writes the order in a single transaction. Stock for every line is
// re-read and decremented against the authoritative item documents; a
// shortfall on any line aborts the whole placement. Cart entries consumed by
// a checkout are deleted in the same transaction.
func (r *OrderRepository) Create(ctx context.Context, placement repositories.OrderPlacement) (domain.Order, error) {
	if r == nil || r.provider == nil {
		return domain.Order{}, errors.New("order repository not initialised")
	}
	order := placement.Order
	if strings.TrimSpace(order.ID) == "" {
		return domain.Order{}, errors.New("order repository: order id is required")
	}
	if len(order.Lines) == 0 {
		return domain.Order{}, errors.New("order repository: order has no lines")
	}

	quantities := make(map[string]int, len(order.Lines))
	for _, line := range order.Lines {
		quantities[line.ItemID] += line.Quantity
	}
	reserved := placement.ReservedItemIDs
	if len(reserved) == 0 {
		seen := make(map[string]struct{}, len(order.Lines))
		for _, line := range order.Lines {
			if _, ok := seen[line.ItemID]; ok {
				continue
			}
			seen[line.ItemID] = struct{}{}
			reserved = append(reserved, line.ItemID)
		}
	}

	var created domain.Order
	err := r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		orderRef, err := r.orders.DocumentRef(ctx, order.ID)
		if err != nil {
			return err
		}

		// All reads happen before any write, as Firestore transactions require.
		type reservedItem struct {
			ref  *firestore.DocumentRef
			item domain.CatalogItem
		}
		reservedItems := make([]reservedItem, 0, len(reserved))
		for _, itemID := range reserved {
			itemRef, err := r.items.DocumentRef(ctx, itemID)
			if err != nil {
				return err
			}
			snap, err := tx.Get(itemRef)
			if err != nil {
				if status.Code(err) == codes.NotFound {
					return repositories.NewStockError(repositories.StockErrorItemNotFound, itemID, fmt.Sprintf("item %s not found", itemID), err)
				}
				return err
			}
			var doc itemDocument
			if err := snap.DataTo(&doc); err != nil {
				return fmt.Errorf("decode item %s: %w", itemID, err)
			}
			reservedItems = append(reservedItems, reservedItem{ref: itemRef, item: doc.toDomain(itemID)})
		}

		entryRefs := make([]*firestore.DocumentRef, 0, len(placement.ConsumedEntries))
		for _, entryID := range placement.ConsumedEntries {
			entryRef, err := r.entries.DocumentRef(ctx, entryID)
			if err != nil {
				return err
			}
			entryRefs = append(entryRefs, entryRef)
		}

		for _, candidate := range reservedItems {
			item := candidate.item
			qty := quantities[item.ID]
			if err := item.DecrementStock(qty); err != nil {
				var oos *domain.OutOfStockError
				if errors.As(err, &oos) {
					stockErr := repositories.NewStockError(repositories.StockErrorInsufficient, item.ID, fmt.Sprintf("insufficient stock for item %s", item.ID), err)
					stockErr.Available = oos.Available
					return stockErr
				}
				return err
			}
			item.UpdatedAt = order.PlacedAt
			if err := tx.Set(candidate.ref, newItemDocument(item)); err != nil {
				return err
			}
		}

		if err := tx.Create(orderRef, newOrderDocument(order)); err != nil {
			return err
		}

		for _, entryRef := range entryRefs {
			if err := tx.Delete(entryRef); err != nil {
				return err
			}
		}

		created = order
		return nil
	})
	if err != nil {
		return domain.Order{}, unwrapStockError(err)
	}
	return created, nil
}

// Update overwrites the order document. Used for status transitions.
func (r *OrderRepository) Update(ctx context.Context, order domain.Order) error {
	if r == nil || r.orders == nil {
		return errors.New("order repository not initialised")
	}
	if strings.TrimSpace(order.ID) == "" {
		return errors.New("order repository: order id is required")
	}
	_, err := r.orders.Set(ctx, order.ID, newOrderDocument(order))
	return err
}

// FindByID fetches the order aggregate by its identifier.
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	if r == nil || r.orders == nil {
		return domain.Order{}, errors.New("order repository not initialised")
	}
	doc, err := r.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	return doc.Data.toDomain(doc.ID), nil
}

// ListByAccount returns the account's orders newest first together with the
// total order count for the account.
func (r *OrderRepository) ListByAccount(ctx context.Context, accountEmail string, page domain.PageRequest) (domain.Page[domain.Order], error) {
	if r == nil || r.orders == nil {
		return domain.Page[domain.Order]{}, errors.New("order repository not initialised")
	}
	accountEmail = strings.TrimSpace(accountEmail)
	if accountEmail == "" {
		return domain.Page[domain.Order]{}, errors.New("order repository: account email is required")
	}

	byAccount := func(query firestore.Query) firestore.Query {
		return query.Where("accountEmail", "==", accountEmail)
	}

	docs, err := r.orders.Query(ctx, func(query firestore.Query) firestore.Query {
		query = byAccount(query).OrderBy(firestore.DocumentID, firestore.Desc)
		if offset := page.Offset(); offset > 0 {
			query = query.Offset(offset)
		}
		if page.PageSize > 0 {
			query = query.Limit(page.PageSize)
		}
		return query
	})
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}

	total, err := r.orders.Count(ctx, byAccount)
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, doc.Data.toDomain(doc.ID))
	}
	return domain.Page[domain.Order]{Items: orders, TotalCount: total}, nil
}

func unwrapStockError(err error) error {
	if err == nil {
		return nil
	}
	var stockErr *repositories.StockError
	if errors.As(err, &stockErr) {
		return stockErr
	}
	return err
}
