// Package checkout turns a cart or buy-now selection into an order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validators"
)

type Source string

const (
	SourceCart   Source = "cart"
	SourceBuyNow Source = "buy-now"
)

func ParseSource(s string) (Source, error) {
	switch src := Source(strings.TrimSpace(s)); src {
	case SourceCart, SourceBuyNow:
		return src, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
}

type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// EmptyRedirect is where a visitor with nothing to check out is sent.
const EmptyRedirect = "/products"

var (
	ErrUnknownSource = errors.New("unknown checkout source")
	ErrEmptySource   = errors.New("nothing to check out")
	ErrInProgress    = errors.New("order submission already in progress")
	ErrSubmitFailed  = errors.New("order submission failed")
)

type Form struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
	Address string `json:"address"`
}

func (f Form) values() map[string]string {
	return map[string]string{
		"name":    f.Name,
		"phone":   f.Phone,
		"city":    f.City,
		"address": f.Address,
	}
}

// OrderCreator persists a new order.
type OrderCreator interface {
	Create(ctx context.Context, o order.New) (order.Placed, error)
}

// OrderNotifier is told about every order placed.
type OrderNotifier interface {
	OrderCreated(ctx context.Context, o order.Placed)
}

type Confirmation struct {
	OrderID string  `json:"orderId"`
	Total   float64 `json:"total"`
}

// Snapshot is what the checkout view renders.
type Snapshot struct {
	Source       Source                 `json:"source"`
	State        State                  `json:"state"`
	Form         Form                   `json:"form"`
	Errors       validators.FieldErrors `json:"errors,omitempty"`
	Message      string                 `json:"message,omitempty"`
	Lines        []order.Line           `json:"lines"`
	Total        float64                `json:"total"`
	Confirmation *Confirmation          `json:"confirmation,omitempty"`
}

type Deps struct {
	Cart      *cart.Store
	Orders    OrderCreator
	Notifier  OrderNotifier
	Translate func(key string) string
	Now       func() time.Time
	Logger    *log.Logger
}

// Workflow is the checkout state machine for one source of one visitor.
type Workflow struct {
	mu     sync.Mutex
	source Source
	deps   Deps

	state        State
	form         Form
	passed       map[string]string
	errors       validators.FieldErrors
	message      string
	confirmation *Confirmation
}

func NewWorkflow(source Source, deps Deps) *Workflow {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Translate == nil {
		deps.Translate = func(key string) string { return key }
	}
	return &Workflow{source: source, deps: deps, state: StateIdle, passed: map[string]string{}}
}

// Enter opens the checkout view. A workflow that already succeeded starts
// over once its source has something in it again.
func (w *Workflow) Enter() (Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	lines := w.lines()
	if len(lines) == 0 {
		return Snapshot{}, ErrEmptySource
	}
	if w.state == StateSucceeded {
		w.reset()
	}
	return w.snapshot(lines), nil
}

func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot(w.lines())
}

// Submit validates form and places the order. Field errors come back as
// validators.FieldErrors; a failed remote write wraps ErrSubmitFailed.
func (w *Workflow) Submit(ctx context.Context, form Form) (Snapshot, error) {
	w.mu.Lock()
	if w.state == StateSubmitting {
		w.mu.Unlock()
		return Snapshot{}, ErrInProgress
	}
	lines := w.lines()
	if len(lines) == 0 {
		w.mu.Unlock()
		return Snapshot{}, ErrEmptySource
	}
	if w.state == StateSucceeded {
		w.reset()
	}

	w.form = form
	w.message = ""
	w.errors = w.validate(form)
	if err := w.errors.Err(); err != nil {
		snap := w.snapshot(lines)
		w.mu.Unlock()
		return snap, err
	}
	w.state = StateSubmitting
	w.mu.Unlock()

	placed, err := w.deps.Orders.Create(ctx, order.New{
		FullName:    form.Name,
		PhoneNumber: form.Phone,
		City:        form.City,
		Address:     form.Address,
		Lines:       lines,
		SubmittedAt: w.deps.Now(),
	})

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		w.state = StateFailed
		w.message = w.deps.Translate("orderFailed")
		return w.snapshot(lines), fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	w.clearOrdered(ctx, lines)
	w.state = StateSucceeded
	w.confirmation = &Confirmation{OrderID: placed.ID, Total: placed.Total}
	if w.deps.Notifier != nil {
		w.deps.Notifier.OrderCreated(ctx, placed)
	}
	return w.snapshot(lines), nil
}

// Confirmation is the last successful submission, if any.
func (w *Workflow) Confirmation() *Confirmation {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.confirmation == nil {
		return nil
	}
	c := *w.confirmation
	return &c
}

// validate checks every field whose value differs from the one that last
// passed. Must hold w.mu.
func (w *Workflow) validate(form Form) validators.FieldErrors {
	errs := validators.FieldErrors{}
	for field, val := range form.values() {
		if prev, ok := w.passed[field]; ok && prev == val {
			continue
		}
		delete(w.passed, field)

		switch {
		case validators.Blank(val):
			errs[field] = w.deps.Translate("fieldRequired")
		case field == "phone" && !validators.ValidPhone(val):
			errs[field] = w.deps.Translate("invalidPhone")
		default:
			w.passed[field] = val
		}
	}
	return errs
}

func (w *Workflow) lines() []order.Line {
	st := w.deps.Cart.State()

	var items []cart.Item
	switch w.source {
	case SourceCart:
		items = st.Items
	case SourceBuyNow:
		if st.BuyNow != nil {
			items = []cart.Item{*st.BuyNow}
		}
	}

	out := make([]order.Line, 0, len(items))
	for _, it := range items {
		out = append(out, order.Line{
			ProductID:   it.ID,
			ProductName: it.Title,
			Price:       it.Price,
			Quantity:    it.Quantity,
		})
	}
	return out
}

// clearOrdered takes the placed lines out of the source. The source may have
// changed while the order was being written; anything not in lines stays.
func (w *Workflow) clearOrdered(ctx context.Context, lines []order.Line) {
	var cmd cart.Command
	switch w.source {
	case SourceBuyNow:
		cmd = cart.ClearBuyNowIf{Item: cart.Item{ID: lines[0].ProductID, Quantity: lines[0].Quantity}}
	default:
		qty := make(map[string]int, len(lines))
		for _, l := range lines {
			qty[l.ProductID] += l.Quantity
		}
		cmd = cart.RemoveOrdered{Quantities: qty}
	}
	if _, err := w.deps.Cart.Dispatch(ctx, cmd); err != nil && w.deps.Logger != nil {
		w.deps.Logger.Printf("checkout: order placed but clearing %s failed: %v", w.source, err)
	}
}

func (w *Workflow) reset() {
	w.state = StateIdle
	w.form = Form{}
	w.passed = map[string]string{}
	w.errors = nil
	w.message = ""
}

func (w *Workflow) snapshot(lines []order.Line) Snapshot {
	s := Snapshot{
		Source:  w.source,
		State:   w.state,
		Form:    w.form,
		Message: w.message,
		Lines:   lines,
		Total:   order.Total(lines),
	}
	if len(w.errors) > 0 {
		s.Errors = validators.FieldErrors{}
		for k, v := range w.errors {
			s.Errors[k] = v
		}
	}
	if w.confirmation != nil {
		c := *w.confirmation
		s.Confirmation = &c
	}
	return s
}
