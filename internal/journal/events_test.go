package journal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Consumers on the store side key on these field names; renaming one is a
// breaking contract change.
func TestSaleCompletedWireFields(t *testing.T) {
	ev := SaleCompleted{
		EventType:     EventTypeSaleCompleted,
		EventID:       uuid.NewString(),
		SaleID:        "s-1",
		InvoiceNumber: "POS-000001",
		CustomerID:    "c-1",
		PaymentMethod: "cash",
		Total:         decimal.RequireFromString("21.42"),
		LineCount:     2,
		Timestamp:     time.Now().UTC(),
	}

	body, err := json.Marshal(ev)
	require.NoError(t, err)

	var asMap map[string]any
	require.NoError(t, json.Unmarshal(body, &asMap))

	for _, field := range []string{
		"event_type", "event_id", "sale_id", "invoice_number",
		"payment_method", "total", "line_count", "timestamp",
	} {
		assert.Contains(t, asMap, field)
	}
	assert.Equal(t, "SaleCompleted", asMap["event_type"])
}

func TestSaleHeldWireFields(t *testing.T) {
	ev := SaleHeld{
		EventType:  EventTypeSaleHeld,
		EventID:    uuid.NewString(),
		HeldSaleID: uuid.NewString(),
		LineCount:  1,
		Timestamp:  time.Now().UTC(),
	}

	body, err := json.Marshal(ev)
	require.NoError(t, err)

	var asMap map[string]any
	require.NoError(t, json.Unmarshal(body, &asMap))

	for _, field := range []string{"event_type", "event_id", "held_sale_id", "line_count", "timestamp"} {
		assert.Contains(t, asMap, field)
	}
	// Empty customer id is omitted for walk-in sales.
	assert.NotContains(t, asMap, "customer_id")
}
