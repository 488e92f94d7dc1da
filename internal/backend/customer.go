package backend

import (
	"context"
	"fmt"

	"github.com/andreasstove999/pos-terminal/internal/cart"
)

// Customer carries the price level that picks the default unit price for new
// lines. PriceLevel outside 1-4 resolves to the base price list.
type Customer struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email,omitempty"`
	Phone      string          `json:"phone,omitempty"`
	PriceLevel cart.PriceLevel `json:"price_level"`
}

func (c *Client) GetCustomer(ctx context.Context, customerID string) (Customer, error) {
	var cust Customer
	if err := c.getJSON(ctx, "/pos/get_customer/"+customerID, nil, &cust); err != nil {
		return Customer{}, fmt.Errorf("get customer %s: %w", customerID, err)
	}
	return cust, nil
}

// QuickCustomerRequest creates a minimal walk-up customer from the till.
type QuickCustomerRequest struct {
	Name     string `json:"name"`
	Document string `json:"document,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

func (c *Client) CreateQuickCustomer(ctx context.Context, req QuickCustomerRequest) (Customer, error) {
	var resp struct {
		Success  bool     `json:"success"`
		Customer Customer `json:"customer"`
		Error    string   `json:"error"`
	}
	if err := c.postJSON(ctx, "/pos/quick_customer", req, &resp); err != nil {
		return Customer{}, fmt.Errorf("create customer: %w", err)
	}
	if !resp.Success {
		return Customer{}, fmt.Errorf("create customer: %s", resp.Error)
	}
	return resp.Customer, nil
}
