package cart

import "github.com/shopspring/decimal"

// PriceLevel selects which of a product's list prices becomes a line's
// default unit price. Levels run 1-4; anything else resolves to level 1.
type PriceLevel int

const DefaultPriceLevel PriceLevel = 1

// Product is the catalog snapshot a line item is created from. Stock is the
// availability in the selected warehouse at lookup time.
type Product struct {
	ID           string
	SKU          string
	Name         string
	Barcode      string
	Stock        decimal.Decimal
	Price1       decimal.Decimal
	Price2       decimal.Decimal
	Price3       decimal.Decimal
	Price4       decimal.Decimal
	TracksSerial bool
}

// PriceForLevel resolves the list price for a customer tier. Levels 2-4 fall
// back to price1 when the tier price is unset (zero).
func (p Product) PriceForLevel(level PriceLevel) decimal.Decimal {
	var price decimal.Decimal
	switch level {
	case 2:
		price = p.Price2
	case 3:
		price = p.Price3
	case 4:
		price = p.Price4
	default:
		return p.Price1
	}
	if price.IsZero() {
		return p.Price1
	}
	return price
}

type LineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	// Quantity may be fractional for weighed goods.
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	// AvailableStock is the warehouse availability snapshotted at add time.
	AvailableStock decimal.Decimal `json:"stock"`
	TracksSerial   bool            `json:"track_serial"`
	SerialID       string          `json:"serial_id,omitempty"`
}

// LineTotal is quantity times unit price.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// Totals is derived from the line items plus the discount/tax/received
// scalars. It is recomputed on demand and never cached.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxableAmount  decimal.Decimal `json:"taxable_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
	// Change is received minus total. Negative means the payment does not
	// cover the sale yet; only meaningful for cash settlement.
	Change decimal.Decimal `json:"change"`
}
