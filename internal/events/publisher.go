package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/order"
)

// Tracker receives storefront analytics. Implementations never fail the
// caller.
type Tracker interface {
	TrackPageView(ctx context.Context, p ProductView)
	TrackAddToCart(ctx context.Context, p ProductView, quantity int)
}

type Publisher struct {
	ch       channel
	producer string
	currency string
	logger   *log.Logger
	now      func() time.Time
}

type PublisherOptions struct {
	Producer string
	Currency string
}

func NewPublisher(conn *amqp.Connection, opts PublisherOptions, logger *log.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := newPublisher(ch, opts, logger)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	return p, nil
}

func newPublisher(ch channel, opts PublisherOptions, logger *log.Logger) (*Publisher, error) {
	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	producer := opts.Producer
	if producer == "" {
		producer = storefrontServiceName
	}
	return &Publisher{
		ch:       ch,
		producer: producer,
		currency: opts.Currency,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

type EventMeta struct {
	CorrelationID string
	PartitionKey  string
}

func (p *Publisher) meta(ctx context.Context, partitionKey string) EventMeta {
	corr := CorrelationID(ctx)
	if corr == "" {
		corr = uuid.NewString()
	}
	return EventMeta{CorrelationID: corr, PartitionKey: partitionKey}
}

func (p *Publisher) TrackPageView(ctx context.Context, v ProductView) {
	now := p.now().UTC()
	ev := newPageViewedEvent(p.meta(ctx, v.ID), p.producer, PageViewedPayload{
		ProductID:   v.ID,
		ProductName: v.Name,
		Value:       v.Value,
		Currency:    p.currency,
		ViewedAt:    now,
	}, now)
	if err := p.publish(ctx, PageViewedRoutingKey, ev); err != nil {
		p.logger.Printf("track page view %s: %v", v.ID, err)
	}
}

func (p *Publisher) TrackAddToCart(ctx context.Context, v ProductView, quantity int) {
	now := p.now().UTC()
	ev := newCartItemAddedEvent(p.meta(ctx, v.ID), p.producer, CartItemAddedPayload{
		ProductID:   v.ID,
		ProductName: v.Name,
		Value:       v.Value,
		Currency:    p.currency,
		Quantity:    quantity,
		AddedAt:     now,
	}, now)
	if err := p.publish(ctx, CartItemAddedRoutingKey, ev); err != nil {
		p.logger.Printf("track add to cart %s: %v", v.ID, err)
	}
}

// OrderCreated publishes order.created.v1. The order is already stored, so a
// failure is only logged.
func (p *Publisher) OrderCreated(ctx context.Context, o order.Placed) {
	ev := newOrderCreatedEvent(p.meta(ctx, o.ID), p.producer, orderCreatedPayload(o, p.currency), p.now().UTC())
	if err := p.publish(ctx, OrderCreatedRoutingKey, ev); err != nil {
		p.logger.Printf("publish order created %s: %v", o.ID, err)
	}
}

func (p *Publisher) publish(ctx context.Context, routingKey string, ev any) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", routingKey, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func newEnvelope(meta EventMeta, name, schema, producer string, occurredAt time.Time) EventEnvelope {
	return EventEnvelope{
		EventName:     name,
		EventVersion:  1,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		Producer:      producer,
		PartitionKey:  meta.PartitionKey,
		OccurredAt:    occurredAt,
		Schema:        schema,
	}
}

func newPageViewedEvent(meta EventMeta, producer string, payload PageViewedPayload, occurredAt time.Time) PageViewedEvent {
	return PageViewedEvent{
		EventEnvelope: newEnvelope(meta, EventTypePageViewed, pageViewedSchema, producer, occurredAt),
		Payload:       payload,
	}
}

func newCartItemAddedEvent(meta EventMeta, producer string, payload CartItemAddedPayload, occurredAt time.Time) CartItemAddedEvent {
	return CartItemAddedEvent{
		EventEnvelope: newEnvelope(meta, EventTypeCartItemAdded, cartItemAddedSchema, producer, occurredAt),
		Payload:       payload,
	}
}

func newOrderCreatedEvent(meta EventMeta, producer string, payload OrderCreatedPayload, occurredAt time.Time) OrderCreatedEvent {
	return OrderCreatedEvent{
		EventEnvelope: newEnvelope(meta, EventTypeOrderCreated, orderCreatedSchema, producer, occurredAt),
		Payload:       payload,
	}
}
