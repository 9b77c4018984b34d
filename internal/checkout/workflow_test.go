package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validators"
)

var submittedAt = time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)

type fakeOrders struct {
	mu      sync.Mutex
	err     error
	created []order.New
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeOrders) Create(ctx context.Context, o order.New) (order.Placed, error) {
	if f.block != nil {
		f.entered <- struct{}{}
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return order.Placed{}, f.err
	}
	f.created = append(f.created, o)
	return order.Placed{ID: "order-1", Lines: o.Lines, Total: order.Total(o.Lines), Status: order.StatusNew}, nil
}

type recordingNotifier struct {
	placed []order.Placed
}

func (n *recordingNotifier) OrderCreated(ctx context.Context, o order.Placed) {
	n.placed = append(n.placed, o)
}

var validForm = Form{Name: "Sara Amrani", Phone: "+212 612 345 678", City: "Rabat", Address: "12 Rue Atlas"}

func newCart(t *testing.T) *cart.Store {
	t.Helper()
	return cart.NewStore(context.Background(), cart.NewMemoryPersister(nil), log.New(io.Discard, "", 0))
}

func newWorkflow(src Source, c *cart.Store, orders *fakeOrders, n *recordingNotifier) *Workflow {
	deps := Deps{
		Cart:      c,
		Orders:    orders,
		Translate: func(key string) string { return "t:" + key },
		Now:       func() time.Time { return submittedAt },
		Logger:    log.New(io.Discard, "", 0),
	}
	if n != nil {
		deps.Notifier = n
	}
	return NewWorkflow(src, deps)
}

func fill(t *testing.T, c *cart.Store) {
	t.Helper()
	ctx := context.Background()
	_, err := c.Dispatch(ctx, cart.AddToCart{Item: cart.Item{ID: "p1", Title: "Mug", Price: 10}, Quantity: 2})
	require.NoError(t, err)
	_, err = c.Dispatch(ctx, cart.AddToCart{Item: cart.Item{ID: "p2", Title: "Cap", Price: 5}})
	require.NoError(t, err)
}

func TestParseSource(t *testing.T) {
	src, err := ParseSource("buy-now")
	require.NoError(t, err)
	require.Equal(t, SourceBuyNow, src)

	_, err = ParseSource("wishlist")
	require.True(t, errors.Is(err, ErrUnknownSource))
}

func TestEnter_EmptySource(t *testing.T) {
	c := newCart(t)
	orders := &fakeOrders{}

	for _, src := range []Source{SourceCart, SourceBuyNow} {
		w := newWorkflow(src, c, orders, nil)
		_, err := w.Enter()
		require.True(t, errors.Is(err, ErrEmptySource))

		_, err = w.Submit(context.Background(), validForm)
		require.True(t, errors.Is(err, ErrEmptySource))
		require.Equal(t, StateIdle, w.Snapshot().State)
	}
	require.Empty(t, orders.created)
}

func TestSubmit_CartSuccess(t *testing.T) {
	ctx := context.Background()
	c := newCart(t)
	fill(t, c)
	orders := &fakeOrders{}
	notifier := &recordingNotifier{}
	w := newWorkflow(SourceCart, c, orders, notifier)

	snap, err := w.Enter()
	require.NoError(t, err)
	require.Equal(t, 25.0, snap.Total)

	snap, err = w.Submit(ctx, validForm)
	require.NoError(t, err)
	require.Equal(t, StateSucceeded, snap.State)
	require.Equal(t, &Confirmation{OrderID: "order-1", Total: 25}, snap.Confirmation)

	require.Len(t, orders.created, 1)
	require.Equal(t, submittedAt, orders.created[0].SubmittedAt)
	require.Len(t, orders.created[0].Lines, 2)
	require.Empty(t, c.State().Items, "cart cleared after success")
	require.Len(t, notifier.placed, 1)

	_, err = w.Enter()
	require.True(t, errors.Is(err, ErrEmptySource))
}

func TestSubmit_BuyNowLeavesCart(t *testing.T) {
	ctx := context.Background()
	c := newCart(t)
	fill(t, c)
	_, err := c.Dispatch(ctx, cart.BuyNow{Item: cart.Item{ID: "p9", Title: "Lamp", Price: 150}})
	require.NoError(t, err)

	orders := &fakeOrders{}
	w := newWorkflow(SourceBuyNow, c, orders, nil)

	snap, err := w.Submit(ctx, validForm)
	require.NoError(t, err)
	require.Equal(t, 150.0, snap.Confirmation.Total)
	require.Equal(t, "p9", orders.created[0].Lines[0].ProductID)
	require.Nil(t, c.State().BuyNow)
	require.Len(t, c.State().Items, 2)
}

func TestSubmit_WithoutNotifier(t *testing.T) {
	c := newCart(t)
	fill(t, c)
	w := newWorkflow(SourceCart, c, &fakeOrders{}, nil)

	snap, err := w.Submit(context.Background(), validForm)
	require.NoError(t, err)
	require.Equal(t, StateSucceeded, snap.State)
}

func TestSubmit_KeepsItemsAddedWhileSubmitting(t *testing.T) {
	ctx := context.Background()
	c := newCart(t)
	fill(t, c)
	orders := &fakeOrders{block: make(chan struct{}), entered: make(chan struct{})}
	w := newWorkflow(SourceCart, c, orders, &recordingNotifier{})

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(ctx, validForm)
		done <- err
	}()

	<-orders.entered
	_, err := c.Dispatch(ctx, cart.AddToCart{Item: cart.Item{ID: "p3", Title: "Lamp", Price: 40}})
	require.NoError(t, err)
	_, err = c.Dispatch(ctx, cart.AddToCart{Item: cart.Item{ID: "p1", Title: "Mug", Price: 10}})
	require.NoError(t, err)
	close(orders.block)
	require.NoError(t, <-done)

	require.Len(t, orders.created[0].Lines, 2, "order holds what was in the cart at submit")
	require.Equal(t, []cart.Item{
		{ID: "p1", Title: "Mug", Price: 10, Quantity: 1},
		{ID: "p3", Title: "Lamp", Price: 40, Quantity: 1},
	}, c.State().Items)
}

func TestSubmit_BuyNowReplacedWhileSubmitting(t *testing.T) {
	ctx := context.Background()
	c := newCart(t)
	_, err := c.Dispatch(ctx, cart.BuyNow{Item: cart.Item{ID: "p9", Title: "Lamp", Price: 150}})
	require.NoError(t, err)
	orders := &fakeOrders{block: make(chan struct{}), entered: make(chan struct{})}
	w := newWorkflow(SourceBuyNow, c, orders, nil)

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(ctx, validForm)
		done <- err
	}()

	<-orders.entered
	_, err = c.Dispatch(ctx, cart.BuyNow{Item: cart.Item{ID: "p7", Title: "Rug", Price: 90}})
	require.NoError(t, err)
	close(orders.block)
	require.NoError(t, <-done)

	require.Equal(t, "p9", orders.created[0].Lines[0].ProductID)
	require.NotNil(t, c.State().BuyNow)
	require.Equal(t, "p7", c.State().BuyNow.ID, "new selection survives")
}

func TestSubmit_Validation(t *testing.T) {
	c := newCart(t)
	fill(t, c)
	orders := &fakeOrders{}
	w := newWorkflow(SourceCart, c, orders, nil)

	snap, err := w.Submit(context.Background(), Form{Name: "  ", Phone: "12ab", City: "Rabat"})
	var fe validators.FieldErrors
	require.True(t, errors.As(err, &fe))
	require.Equal(t, "t:fieldRequired", fe["name"])
	require.Equal(t, "t:invalidPhone", fe["phone"])
	require.Equal(t, "t:fieldRequired", fe["address"])
	require.NotContains(t, fe, "city")
	require.Equal(t, StateIdle, snap.State)
	require.Equal(t, "Rabat", snap.Form.City, "form kept")
	require.Empty(t, orders.created, "no remote call on invalid form")
}

func TestSubmit_FailureThenRetry(t *testing.T) {
	ctx := context.Background()
	c := newCart(t)
	fill(t, c)
	orders := &fakeOrders{err: errors.New("unavailable")}
	w := newWorkflow(SourceCart, c, orders, nil)

	snap, err := w.Submit(ctx, validForm)
	require.True(t, errors.Is(err, ErrSubmitFailed))
	require.Equal(t, StateFailed, snap.State)
	require.Equal(t, "t:orderFailed", snap.Message)
	require.Equal(t, validForm, snap.Form)
	require.Len(t, c.State().Items, 2, "cart kept on failure")

	orders.err = nil
	snap, err = w.Submit(ctx, validForm)
	require.NoError(t, err)
	require.Equal(t, StateSucceeded, snap.State)
	require.Empty(t, snap.Message)
}

func TestSubmit_RetryOnlyRevalidatesChangedFields(t *testing.T) {
	c := newCart(t)
	fill(t, c)
	w := newWorkflow(SourceCart, c, &fakeOrders{err: errors.New("down")}, nil)

	_, err := w.Submit(context.Background(), validForm)
	require.True(t, errors.Is(err, ErrSubmitFailed))

	w.mu.Lock()
	errs := w.validate(Form{Name: validForm.Name, Phone: "bad", City: validForm.City, Address: ""})
	_, namePassed := w.passed["name"]
	_, phonePassed := w.passed["phone"]
	w.mu.Unlock()

	require.Len(t, errs, 2)
	require.Contains(t, errs, "phone")
	require.Contains(t, errs, "address")
	require.True(t, namePassed, "unchanged field stays validated")
	require.False(t, phonePassed, "changed field is validated again")
}

func TestSubmit_InProgress(t *testing.T) {
	ctx := context.Background()
	c := newCart(t)
	fill(t, c)
	orders := &fakeOrders{block: make(chan struct{}), entered: make(chan struct{})}
	w := newWorkflow(SourceCart, c, orders, nil)

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(ctx, validForm)
		done <- err
	}()

	<-orders.entered
	require.Equal(t, StateSubmitting, w.Snapshot().State)
	_, err := w.Submit(ctx, validForm)
	require.True(t, errors.Is(err, ErrInProgress))

	close(orders.block)
	require.NoError(t, <-done)
	require.Len(t, orders.created, 1)
}

func TestEnter_ResetsAfterSuccess(t *testing.T) {
	ctx := context.Background()
	c := newCart(t)
	fill(t, c)
	w := newWorkflow(SourceCart, c, &fakeOrders{}, nil)

	_, err := w.Submit(ctx, validForm)
	require.NoError(t, err)

	fill(t, c)
	snap, err := w.Enter()
	require.NoError(t, err)
	require.Equal(t, StateIdle, snap.State)
	require.Equal(t, Form{}, snap.Form)
	require.NotNil(t, w.Confirmation(), "last confirmation survives a new visit")
}
