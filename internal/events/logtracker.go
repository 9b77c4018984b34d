package events

import (
	"context"
	"log"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/order"
)

// OrderSink receives every order placed, for the admin live feed.
type OrderSink func(ctx context.Context, p OrderCreatedPayload)

// LogTracker stands in for the publisher when no broker is configured. Orders
// go straight to sink instead of round-tripping through the exchange.
type LogTracker struct {
	logger   *log.Logger
	currency string
	sink     OrderSink
}

func NewLogTracker(logger *log.Logger, currency string, sink OrderSink) *LogTracker {
	return &LogTracker{logger: logger, currency: currency, sink: sink}
}

func (t *LogTracker) TrackPageView(ctx context.Context, p ProductView) {
	t.logger.Printf("analytics: page view product=%s value=%.2f %s", p.ID, p.Value, t.currency)
}

func (t *LogTracker) TrackAddToCart(ctx context.Context, p ProductView, quantity int) {
	t.logger.Printf("analytics: add to cart product=%s qty=%d value=%.2f %s", p.ID, quantity, p.Value, t.currency)
}

func (t *LogTracker) OrderCreated(ctx context.Context, o order.Placed) {
	t.logger.Printf("order %s placed total=%.2f %s", o.ID, o.Total, t.currency)
	if t.sink != nil {
		t.sink(ctx, orderCreatedPayload(o, t.currency))
	}
}
