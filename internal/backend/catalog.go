package backend

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/pos-terminal/internal/cart"
)

// ProductMatch is one search hit. Quantity is the stock in the requested
// warehouse. ExactMatch marks a unique high-confidence hit (identical
// barcode) that the session auto-adds without a selection step.
type ProductMatch struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Barcode      string          `json:"barcode,omitempty"`
	Price1       decimal.Decimal `json:"price1"`
	Price2       decimal.Decimal `json:"price2"`
	Price3       decimal.Decimal `json:"price3"`
	Price4       decimal.Decimal `json:"price4"`
	Quantity     decimal.Decimal `json:"quantity"`
	TracksSerial bool            `json:"track_serial"`
	ExactMatch   bool            `json:"exact_match"`
}

// Product converts the match into the cart's catalog snapshot.
func (m ProductMatch) Product() cart.Product {
	return cart.Product{
		ID:           m.ID,
		SKU:          m.SKU,
		Name:         m.Name,
		Barcode:      m.Barcode,
		Stock:        m.Quantity,
		Price1:       m.Price1,
		Price2:       m.Price2,
		Price3:       m.Price3,
		Price4:       m.Price4,
		TracksSerial: m.TracksSerial,
	}
}

// SearchProducts queries the backend by name, SKU or barcode, scoped to a
// warehouse. Any failure is reported as ErrSearchFailed.
func (c *Client) SearchProducts(ctx context.Context, query, warehouseID string) ([]ProductMatch, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("warehouse_id", warehouseID)

	var resp struct {
		Products []ProductMatch `json:"products"`
	}
	if err := c.getJSON(ctx, "/pos/search_product", q, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	return resp.Products, nil
}
