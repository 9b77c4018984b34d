package cart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	mug = Item{ID: "p1", Title: "Mug", Price: 10, Image: "mug.png"}
	hat = Item{ID: "p2", Title: "Hat", Price: 5, Image: "hat.png"}
)

type unknownCommand struct{}

func (unknownCommand) isCommand() {}

func TestReduce_AddToCartAccumulates(t *testing.T) {
	tests := map[string]struct {
		quantities []int
		want       int
	}{
		"single default":     {quantities: []int{0}, want: 1},
		"three defaults":     {quantities: []int{0, 0, 0}, want: 3},
		"explicit amounts":   {quantities: []int{2, 5}, want: 7},
		"mixed with default": {quantities: []int{0, 4, 0}, want: 6},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s := State{}
			for _, q := range tc.quantities {
				s = Reduce(s, AddToCart{Item: mug, Quantity: q})
			}
			require.Len(t, s.Items, 1)
			require.Equal(t, tc.want, s.Items[0].Quantity)
		})
	}
}

func TestReduce_AddAppendsNewIDs(t *testing.T) {
	s := Reduce(State{}, AddToCart{Item: mug})
	s = Reduce(s, AddToCart{Item: hat, Quantity: 2})

	require.Equal(t, []Item{
		{ID: "p1", Title: "Mug", Price: 10, Image: "mug.png", Quantity: 1},
		{ID: "p2", Title: "Hat", Price: 5, Image: "hat.png", Quantity: 2},
	}, s.Items)
}

func TestReduce_RemoveUpdateClear(t *testing.T) {
	s := Reduce(State{}, AddToCart{Item: mug})
	s = Reduce(s, AddToCart{Item: hat})

	s = Reduce(s, UpdateQuantity{ID: "p2", Quantity: 9})
	require.Equal(t, 9, s.Items[1].Quantity)

	s = Reduce(s, RemoveFromCart{ID: "p1"})
	require.Len(t, s.Items, 1)
	require.Equal(t, "p2", s.Items[0].ID)

	s = Reduce(s, ClearCart{})
	require.Empty(t, s.Items)
}

func TestReduce_UpdateQuantityHasNoBoundCheck(t *testing.T) {
	s := Reduce(State{}, AddToCart{Item: mug})
	s = Reduce(s, UpdateQuantity{ID: "p1", Quantity: 0})
	require.Equal(t, 0, s.Items[0].Quantity)
}

func TestReduce_BuyNowIsIndependent(t *testing.T) {
	s := Reduce(State{}, AddToCart{Item: mug})

	s = Reduce(s, BuyNow{Item: hat, Quantity: 3})
	require.NotNil(t, s.BuyNow)
	require.Equal(t, 3, s.BuyNow.Quantity)
	require.Len(t, s.Items, 1)

	s = Reduce(s, BuyNow{Item: mug})
	require.Equal(t, "p1", s.BuyNow.ID, "slot replaced wholesale")
	require.Equal(t, 1, s.BuyNow.Quantity)

	s = Reduce(s, ClearBuyNow{})
	require.Nil(t, s.BuyNow)
	require.Len(t, s.Items, 1)
}

func TestReduce_RemoveOrderedKeepsLaterAdditions(t *testing.T) {
	s := Reduce(State{}, AddToCart{Item: mug, Quantity: 2})
	s = Reduce(s, AddToCart{Item: hat})
	ordered := map[string]int{"p1": 2, "p2": 1}

	s = Reduce(s, AddToCart{Item: mug, Quantity: 3})
	s = Reduce(s, AddToCart{Item: Item{ID: "p3", Title: "Lamp", Price: 40}})
	s = Reduce(s, BuyNow{Item: hat})

	s = Reduce(s, RemoveOrdered{Quantities: ordered})
	require.Len(t, s.Items, 2)
	require.Equal(t, "p1", s.Items[0].ID)
	require.Equal(t, 3, s.Items[0].Quantity)
	require.Equal(t, "p3", s.Items[1].ID)
	require.NotNil(t, s.BuyNow, "buy-now slot untouched")

	s = Reduce(s, UpdateQuantity{ID: "p1", Quantity: 1})
	s = Reduce(s, RemoveOrdered{Quantities: map[string]int{"p1": 2}})
	require.Len(t, s.Items, 1, "item lowered below the ordered quantity is removed")
}

func TestReduce_ClearBuyNowIfStillOrdered(t *testing.T) {
	s := Reduce(State{}, BuyNow{Item: hat, Quantity: 2})
	ordered := *s.BuyNow

	replaced := Reduce(s, BuyNow{Item: mug})
	require.Equal(t, "p1", Reduce(replaced, ClearBuyNowIf{Item: ordered}).BuyNow.ID)

	requantified := Reduce(s, BuyNow{Item: hat, Quantity: 5})
	require.NotNil(t, Reduce(requantified, ClearBuyNowIf{Item: ordered}).BuyNow)

	require.Nil(t, Reduce(s, ClearBuyNowIf{Item: ordered}).BuyNow)
	require.Nil(t, Reduce(State{}, ClearBuyNowIf{Item: ordered}).BuyNow)
}

func TestReduce_IsPure(t *testing.T) {
	before := Reduce(State{}, AddToCart{Item: mug})
	before = Reduce(before, BuyNow{Item: hat})

	_ = Reduce(before, AddToCart{Item: mug, Quantity: 5})
	_ = Reduce(before, RemoveFromCart{ID: "p1"})
	_ = Reduce(before, BuyNow{Item: mug, Quantity: 7})

	require.Equal(t, 1, before.Items[0].Quantity)
	require.Equal(t, "p2", before.BuyNow.ID)
}

func TestReduce_UnknownCommandIsNoop(t *testing.T) {
	s := Reduce(State{}, AddToCart{Item: mug})
	require.Equal(t, s, Reduce(s, unknownCommand{}))
}

func TestState_Totals(t *testing.T) {
	s := State{Items: []Item{{ID: "a", Price: 10, Quantity: 2}, {ID: "b", Price: 5, Quantity: 1}}}
	require.Equal(t, 25.0, s.Total())
	require.Equal(t, 3, s.Count())

	s = State{Items: []Item{{ID: "a", Price: 0.1, Quantity: 3}}}
	require.Equal(t, 0.3, s.Total())
}
