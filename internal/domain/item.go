package domain

import (
	"fmt"
)

// OutOfStockError reports a decrement request exceeding the available stock.
// Available carries the stock level at the time of the failed request so
// callers can surface it to the shopper.
type OutOfStockError struct {
	ItemID    string
	Requested int
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("item %s: requested %d exceeds stock %d", e.ItemID, e.Requested, e.Available)
}

// ErrInvalidQuantity signals a non-positive quantity reaching stock or line
// construction.
var ErrInvalidQuantity = fmt.Errorf("item: quantity must be positive")

// DecrementStock reserves qty units by lowering StockQuantity. The check and
// the write are one step: on failure the stock field is untouched. Callers
// must persist the item in the same transaction as the order that consumed
// the stock.
func (i *CatalogItem) DecrementStock(qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, qty)
	}
	remaining := i.StockQuantity - qty
	if remaining < 0 {
		return &OutOfStockError{ItemID: i.ID, Requested: qty, Available: i.StockQuantity}
	}
	i.StockQuantity = remaining
	return nil
}
