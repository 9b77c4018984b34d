package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// StartOrderFeedConsumer binds a private, auto-deleted queue to
// order.created.v1 and hands every order to sink. Each storefront instance
// gets its own copy of the stream.
func StartOrderFeedConsumer(ctx context.Context, conn *amqp.Connection, sink OrderSink, logger *log.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	if err := declareEventsExchange(ch); err != nil {
		return fmt.Errorf("declare events exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		"",
		false, // durable
		true,  // autoDelete
		true,  // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(q.Name, OrderCreatedRoutingKey, EventsExchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		orderFeedConsumerTagPrefix+"-"+uuid.NewString(),
		false, // autoAck
		true,  // exclusive
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				logger.Println("stopping order feed consumer")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Println("order feed channel closed")
					return
				}
				if err := handleOrderCreated(ctx, msg.Body, sink); err != nil {
					logger.Printf("order feed: %v", err)
					_ = msg.Nack(false, false)
					continue
				}
				_ = msg.Ack(false)
			}
		}
	}()

	return nil
}

func handleOrderCreated(ctx context.Context, body []byte, sink OrderSink) error {
	env, raw, err := parseEnvelope(body)
	if err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := env.Validate(EventTypeOrderCreated, 1); err != nil {
		return err
	}
	var payload OrderCreatedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.OrderID == "" {
		return fmt.Errorf("missing orderId")
	}
	sink(ctx, payload)
	return nil
}
