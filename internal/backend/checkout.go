package backend

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/pos-terminal/internal/cart"
)

// SaleRequest is the finalized cart posted to the sale-processing endpoint.
// CustomerID nil means a walk-in sale.
type SaleRequest struct {
	CustomerID     *string         `json:"customer_id"`
	PaymentMethod  string          `json:"payment_method"`
	Items          []cart.LineItem `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
}

type SaleResult struct {
	SaleID        string          `json:"sale_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Total         decimal.Decimal `json:"total"`
}

// SubmitSale posts the sale. A transport/decode failure or a success=false
// response both come back as ErrSubmissionFailed; the server's message is
// preserved in the error text when present.
func (c *Client) SubmitSale(ctx context.Context, req SaleRequest) (SaleResult, error) {
	var resp struct {
		Success       bool            `json:"success"`
		SaleID        string          `json:"sale_id"`
		InvoiceNumber string          `json:"invoice_number"`
		Total         decimal.Decimal `json:"total"`
		Error         string          `json:"error"`
	}
	if err := c.postJSON(ctx, "/pos/process_sale", req, &resp); err != nil {
		return SaleResult{}, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	if !resp.Success {
		if resp.Error == "" {
			resp.Error = "rejected by server"
		}
		return SaleResult{}, fmt.Errorf("%w: %s", ErrSubmissionFailed, resp.Error)
	}
	return SaleResult{
		SaleID:        resp.SaleID,
		InvoiceNumber: resp.InvoiceNumber,
		Total:         resp.Total,
	}, nil
}
