package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}

// Subtotal is price × quantity.
func (it Item) Subtotal() float64 {
	return decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))).InexactFloat64()
}

type State struct {
	Items  []Item `json:"cart"`
	BuyNow *Item  `json:"buyNowProduct"`
}

// Total sums the cart list, ignoring the buy-now slot.
func (s State) Total() float64 {
	sum := decimal.Zero
	for _, it := range s.Items {
		sum = sum.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum.InexactFloat64()
}

// Count is the number of units in the cart list.
func (s State) Count() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

func (s State) clone() State {
	out := State{Items: make([]Item, len(s.Items))}
	copy(out.Items, s.Items)
	if s.BuyNow != nil {
		b := *s.BuyNow
		out.BuyNow = &b
	}
	return out
}

var ErrCorrupt = errors.New("corrupt cart record")

// EncodeItems is the persisted representation of the cart list.
func EncodeItems(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(items)
}

// DecodeItems rejects records that could not have been written by the store.
func DecodeItems(data []byte) ([]Item, error) {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("%w: item without id", ErrCorrupt)
		}
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %s with quantity %d", ErrCorrupt, it.ID, it.Quantity)
		}
		if _, dup := seen[it.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item %s", ErrCorrupt, it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}
