// Package journal publishes till activity to the store-side broker. It is
// strictly fire-and-forget: a down broker never blocks a sale.
package journal

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	SaleCompletedQueue = "pos.sale.completed"
	SaleHeldQueue      = "pos.sale.held"
)

type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare queues so publish never fails due to missing infra
	for _, q := range []string{SaleCompletedQueue, SaleHeldQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("declare %s: %w", q, err)
		}
	}

	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishSaleCompleted(ctx context.Context, ev SaleCompleted) error {
	ev.EventType = EventTypeSaleCompleted
	return p.publish(ctx, SaleCompletedQueue, ev)
}

func (p *Publisher) PublishSaleHeld(ctx context.Context, ev SaleHeld) error {
	ev.EventType = EventTypeSaleHeld
	return p.publish(ctx, SaleHeldQueue, ev)
}

func (p *Publisher) publish(ctx context.Context, queue string, ev any) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", queue, err)
	}

	err = p.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", queue, err)
	}
	return nil
}
