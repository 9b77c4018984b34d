package events

import "time"

const (
	EventTypePageViewed    = "PageViewed"
	EventTypeCartItemAdded = "CartItemAdded"

	pageViewedSchema    = "contracts/events/storefront/PageViewed.v1.payload.schema.json"
	cartItemAddedSchema = "contracts/events/storefront/CartItemAdded.v1.payload.schema.json"
)

// ProductView is what analytics knows about a product.
type ProductView struct {
	ID    string
	Name  string
	Value float64
}

type PageViewedPayload struct {
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Value       float64   `json:"value"`
	Currency    string    `json:"currency"`
	ViewedAt    time.Time `json:"viewedAt"`
}

type PageViewedEvent struct {
	EventEnvelope
	Payload PageViewedPayload `json:"payload"`
}

type CartItemAddedPayload struct {
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Value       float64   `json:"value"`
	Currency    string    `json:"currency"`
	Quantity    int       `json:"quantity"`
	AddedAt     time.Time `json:"addedAt"`
}

type CartItemAddedEvent struct {
	EventEnvelope
	Payload CartItemAddedPayload `json:"payload"`
}
