package events

import (
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/order"
)

const (
	EventTypeOrderCreated = "OrderCreated"
	orderCreatedSchema    = "contracts/events/storefront/OrderCreated.v1.payload.schema.json"
)

type OrderCreatedItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type OrderCreatedPayload struct {
	OrderID      string             `json:"orderId"`
	CustomerName string             `json:"customerName"`
	City         string             `json:"city"`
	Items        []OrderCreatedItem `json:"items"`
	Total        float64            `json:"total"`
	Currency     string             `json:"currency"`
	Status       string             `json:"status"`
	CreatedAt    time.Time          `json:"createdAt"`
}

type OrderCreatedEvent struct {
	EventEnvelope
	Payload OrderCreatedPayload `json:"payload"`
}

func orderCreatedPayload(o order.Placed, currency string) OrderCreatedPayload {
	p := OrderCreatedPayload{
		OrderID:      o.ID,
		CustomerName: o.FullName,
		City:         o.City,
		Items:        make([]OrderCreatedItem, 0, len(o.Lines)),
		Total:        o.Total,
		Currency:     currency,
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt,
	}
	for _, l := range o.Lines {
		p.Items = append(p.Items, OrderCreatedItem{
			ProductID: l.ProductID,
			Name:      l.ProductName,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
	}
	return p
}
