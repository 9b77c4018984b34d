package cart

// Command is one of the cart intents below.
type Command interface {
	isCommand()
}

type AddToCart struct {
	Item     Item
	Quantity int // 0 means 1
}

type RemoveFromCart struct {
	ID string
}

// UpdateQuantity sets the quantity as given. Callers reject values below 1.
type UpdateQuantity struct {
	ID       string
	Quantity int
}

type ClearCart struct{}

type BuyNow struct {
	Item     Item
	Quantity int // 0 means 1
}

type ClearBuyNow struct{}

// RemoveOrdered takes placed quantities out of the cart list. Units added
// after the order was taken stay; items left below 1 are removed.
type RemoveOrdered struct {
	Quantities map[string]int
}

// ClearBuyNowIf empties the buy-now slot only while it still holds Item with
// the same quantity.
type ClearBuyNowIf struct {
	Item Item
}

func (AddToCart) isCommand()      {}
func (RemoveFromCart) isCommand() {}
func (UpdateQuantity) isCommand() {}
func (ClearCart) isCommand()      {}
func (BuyNow) isCommand()         {}
func (ClearBuyNow) isCommand()    {}
func (RemoveOrdered) isCommand()  {}
func (ClearBuyNowIf) isCommand()  {}

// Reduce returns the state after cmd. It never mutates s.
func Reduce(s State, cmd Command) State {
	next := s.clone()

	switch c := cmd.(type) {
	case AddToCart:
		qty := orOne(c.Quantity)
		for i := range next.Items {
			if next.Items[i].ID == c.Item.ID {
				next.Items[i].Quantity += qty
				return next
			}
		}
		it := c.Item
		it.Quantity = qty
		next.Items = append(next.Items, it)
	case RemoveFromCart:
		kept := next.Items[:0]
		for _, it := range next.Items {
			if it.ID != c.ID {
				kept = append(kept, it)
			}
		}
		next.Items = kept
	case UpdateQuantity:
		for i := range next.Items {
			if next.Items[i].ID == c.ID {
				next.Items[i].Quantity = c.Quantity
			}
		}
	case ClearCart:
		next.Items = []Item{}
	case BuyNow:
		it := c.Item
		it.Quantity = orOne(c.Quantity)
		next.BuyNow = &it
	case ClearBuyNow:
		next.BuyNow = nil
	case RemoveOrdered:
		kept := next.Items[:0]
		for _, it := range next.Items {
			it.Quantity -= c.Quantities[it.ID]
			if it.Quantity >= 1 {
				kept = append(kept, it)
			}
		}
		next.Items = kept
	case ClearBuyNowIf:
		if b := next.BuyNow; b != nil && b.ID == c.Item.ID && b.Quantity == c.Item.Quantity {
			next.BuyNow = nil
		}
	default:
		return s
	}
	return next
}

// touchesCart reports whether cmd changes the persisted list.
func touchesCart(cmd Command) bool {
	switch cmd.(type) {
	case AddToCart, RemoveFromCart, UpdateQuantity, ClearCart, RemoveOrdered:
		return true
	}
	return false
}

func orOne(q int) int {
	if q == 0 {
		return 1
	}
	return q
}
