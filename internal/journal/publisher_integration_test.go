package journal_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/pos-terminal/internal/journal"
	"github.com/andreasstove999/pos-terminal/internal/testutil"
)

func TestPublishSaleCompleted_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	conn := testutil.StartRabbitMQ(t)

	pub, err := journal.NewPublisher(conn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pub.Close() })

	ev := journal.SaleCompleted{
		EventID:       uuid.NewString(),
		SaleID:        "s-42",
		InvoiceNumber: "POS-000042",
		PaymentMethod: "cash",
		Total:         decimal.RequireFromString("21.42"),
		LineCount:     1,
		Timestamp:     time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, pub.PublishSaleCompleted(ctx, ev))

	ch, err := conn.Channel()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ch.Close() })

	deliveries, err := ch.Consume(journal.SaleCompletedQueue, "", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		var got journal.SaleCompleted
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, journal.EventTypeSaleCompleted, got.EventType)
		assert.Equal(t, "POS-000042", got.InvoiceNumber)
		assert.True(t, got.Total.Equal(ev.Total))
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for journal event")
	}
}
