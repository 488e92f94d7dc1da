package cart

import "github.com/shopspring/decimal"

// Cart holds the ordered line items of the transaction being rung up.
// Insertion order is significant: the display and the last-item quantity
// shortcuts depend on it. Lines are unique by product id; adding a product
// that is already present merges into the existing line.
//
// Cart does no I/O and pushes no updates. Callers recompute totals after
// every mutation via ComputeTotals.
type Cart struct {
	items []LineItem
}

func New() *Cart {
	return &Cart{}
}

// AddItem merges the product into the cart. If a line for the product
// already exists its quantity is incremented by 1 and its price is left
// untouched; otherwise a new line is appended with quantity 1 and the unit
// price resolved from the customer's price level. Stock is not checked here,
// matching the rest of the flow: quantity edits and checkout validate it.
func (c *Cart) AddItem(p Product, level PriceLevel) *LineItem {
	for i := range c.items {
		if c.items[i].ProductID == p.ID {
			c.items[i].Quantity = c.items[i].Quantity.Add(decimal.NewFromInt(1))
			return &c.items[i]
		}
	}

	c.items = append(c.items, LineItem{
		ProductID:      p.ID,
		Name:           p.Name,
		SKU:            p.SKU,
		Quantity:       decimal.NewFromInt(1),
		UnitPrice:      p.PriceForLevel(level),
		AvailableStock: p.Stock,
		TracksSerial:   p.TracksSerial,
	})
	return &c.items[len(c.items)-1]
}

// RemoveItem deletes the line at index. Out-of-bounds indexes are a no-op;
// a remove racing a render refresh must not fail the session.
func (c *Cart) RemoveItem(index int) {
	if index < 0 || index >= len(c.items) {
		return
	}
	c.items = append(c.items[:index], c.items[index+1:]...)
}

// SetQuantity replaces the line's quantity. Quantities above the stock
// snapshot are rejected with InsufficientStockError and leave the cart
// unchanged. Fractional quantities are allowed for weighed goods.
// Out-of-bounds indexes and non-positive quantities are no-ops.
func (c *Cart) SetQuantity(index int, quantity decimal.Decimal) error {
	if index < 0 || index >= len(c.items) || !quantity.IsPositive() {
		return nil
	}

	li := &c.items[index]
	if quantity.GreaterThan(li.AvailableStock) {
		return &InsufficientStockError{
			Index:     index,
			Name:      li.Name,
			Requested: quantity,
			Available: li.AvailableStock,
		}
	}

	li.Quantity = quantity
	return nil
}

// SetUnitPrice overrides the line's unit price. Any non-negative price is
// accepted; manual overrides below or above the list price are intentional.
// Out-of-bounds indexes and negative prices are no-ops.
func (c *Cart) SetUnitPrice(index int, price decimal.Decimal) {
	if index < 0 || index >= len(c.items) || price.IsNegative() {
		return
	}
	c.items[index].UnitPrice = price
}

// SetSerial attaches a chosen serial/IMEI to a serial-tracked line.
func (c *Cart) SetSerial(index int, serialID string) {
	if index < 0 || index >= len(c.items) {
		return
	}
	c.items[index].SerialID = serialID
}

// Clear drops every line. The discount/tax/received scalars live with the
// session and are reset there.
func (c *Cart) Clear() {
	c.items = nil
}

func (c *Cart) Len() int {
	return len(c.items)
}

// Items returns a copy of the lines so callers cannot bypass the mutation
// rules above.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// ComputeTotals derives the money figures from the current lines and the
// three scalar inputs. It is a pure function of its inputs: no rounding, no
// caching, no mutation.
func (c *Cart) ComputeTotals(discountPercent, taxPercent, amountReceived decimal.Decimal) Totals {
	hundred := decimal.NewFromInt(100)

	subtotal := decimal.Zero
	for i := range c.items {
		subtotal = subtotal.Add(c.items[i].LineTotal())
	}

	discountAmount := subtotal.Mul(discountPercent).Div(hundred)
	taxableAmount := subtotal.Sub(discountAmount)
	taxAmount := taxableAmount.Mul(taxPercent).Div(hundred)
	total := taxableAmount.Add(taxAmount)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxableAmount:  taxableAmount,
		TaxAmount:      taxAmount,
		Total:          total,
		Change:         amountReceived.Sub(total),
	}
}

// ValidateForCheckout gates submission. An empty cart fails with
// ErrEmptyCart; the first line whose quantity exceeds its stock snapshot
// fails with InsufficientStockError. Quantities are validated on write, so
// this mostly re-checks lines merged past their stock by repeated adds.
func (c *Cart) ValidateForCheckout() error {
	if len(c.items) == 0 {
		return ErrEmptyCart
	}
	for i := range c.items {
		li := &c.items[i]
		if li.Quantity.GreaterThan(li.AvailableStock) {
			return &InsufficientStockError{
				Index:     i,
				Name:      li.Name,
				Requested: li.Quantity,
				Available: li.AvailableStock,
			}
		}
	}
	return nil
}
