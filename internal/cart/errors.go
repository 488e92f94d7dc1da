package cart

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrEmptyCart blocks checkout and hold on a cart with no lines.
var ErrEmptyCart = errors.New("cart is empty")

// InsufficientStockError reports a line whose requested quantity exceeds the
// stock snapshot taken when the product was added. It blocks the mutation
// (or checkout) but never aborts the session.
type InsufficientStockError struct {
	Index     int
	Name      string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %s, available %s",
		e.Name, e.Requested, e.Available)
}
