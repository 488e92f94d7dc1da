package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types carried in the message body so store-side consumers can route
// without inspecting the queue name.
const (
	EventTypeSaleCompleted = "SaleCompleted"
	EventTypeSaleHeld      = "SaleHeld"
)

// SaleCompleted is emitted after the backend accepted a sale. The store
// server uses it for the receipt journal; the till does not wait for anyone
// to consume it.
type SaleCompleted struct {
	EventType     string          `json:"event_type"`
	EventID       string          `json:"event_id"`
	SaleID        string          `json:"sale_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    string          `json:"customer_id,omitempty"`
	PaymentMethod string          `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	LineCount     int             `json:"line_count"`
	Timestamp     time.Time       `json:"timestamp"`
}

// SaleHeld is emitted when a transaction is suspended at the till.
type SaleHeld struct {
	EventType  string    `json:"event_type"`
	EventID    string    `json:"event_id"`
	HeldSaleID string    `json:"held_sale_id"`
	CustomerID string    `json:"customer_id,omitempty"`
	LineCount  int       `json:"line_count"`
	Timestamp  time.Time `json:"timestamp"`
}
