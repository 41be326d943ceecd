package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrOrderEmpty indicates an order was constructed without any lines.
	ErrOrderEmpty = errors.New("order: at least one line is required")
	// ErrOrderAlreadyCancelled indicates Cancel was called on a cancelled order.
	ErrOrderAlreadyCancelled = errors.New("order: already cancelled")
)

// OrderLine is one entry of an order. The unit price is snapshotted at order
// time and never recomputed from the catalog afterwards. Lines are owned by
// their order: they are created through NewOrderLine and persisted or deleted
// only together with the order aggregate.
type OrderLine struct {
	ItemID    string
	ItemName  string
	UnitPrice int64
	Quantity  int
}

// Total returns the line total (snapshot price times quantity).
func (l OrderLine) Total() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Order aggregates one or more lines placed by a single account. The slice
// held here is the authoritative line collection; lines carry no pointer back
// to the order.
type Order struct {
	ID           string
	AccountEmail string
	Status       OrderStatus
	Lines        []OrderLine
	PlacedAt     time.Time
}

// NewOrderLine builds an order line from an item and quantity. The item's
// stock is decremented as a side effect: one line equals one atomic stock
// reservation. On error (invalid quantity, out of stock) the item is left
// unchanged and no line is produced. Because the item is mutated in place, a
// retry must re-fetch the item first.
func NewOrderLine(item *CatalogItem, qty int) (OrderLine, error) {
	if item == nil {
		return OrderLine{}, errors.New("order: item is required")
	}
	if err := item.DecrementStock(qty); err != nil {
		return OrderLine{}, err
	}
	return OrderLine{
		ItemID:    item.ID,
		ItemName:  item.Name,
		UnitPrice: item.Price,
		Quantity:  qty,
	}, nil
}

// NewOrder assembles the aggregate from an owning account and a non-empty
// line list. Stock has already been reserved during line construction, so no
// further validation happens here. The order starts in PLACED.
func NewOrder(accountEmail string, lines []OrderLine, now time.Time) (Order, error) {
	accountEmail = strings.TrimSpace(accountEmail)
	if accountEmail == "" {
		return Order{}, errors.New("order: account email is required")
	}
	if len(lines) == 0 {
		return Order{}, ErrOrderEmpty
	}
	return Order{
		AccountEmail: accountEmail,
		Status:       OrderStatusPlaced,
		Lines:        append([]OrderLine(nil), lines...),
		PlacedAt:     now.UTC(),
	}, nil
}

// TotalPrice sums the line totals. The value is always derived, never stored,
// so it cannot drift from the lines.
func (o *Order) TotalPrice() int64 {
	var total int64
	for _, line := range o.Lines {
		total += line.Total()
	}
	return total
}

// Cancel flips the order to CANCELLED. The only legal transition is
// PLACED -> CANCELLED; cancelling twice returns ErrOrderAlreadyCancelled.
// Cancellation does not restore stock; restocking is handled outside this
// subsystem.
func (o *Order) Cancel() error {
	switch o.Status {
	case OrderStatusPlaced:
		o.Status = OrderStatusCancelled
		return nil
	case OrderStatusCancelled:
		return ErrOrderAlreadyCancelled
	default:
		return fmt.Errorf("order: unknown status %q", o.Status)
	}
}
