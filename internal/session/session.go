// Package session holds everything one visitor's requests share.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/docstore"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/i18n"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/order"
)

// Session is one visitor's cart, language, checkouts and, for admins, the
// back-office editors.
type Session struct {
	ID       string
	Cart     *cart.Store
	Language *i18n.Preference
	Orders   *order.Manager
	Products *catalog.Manager

	checkouts map[checkout.Source]*checkout.Workflow

	mu        sync.Mutex
	lastSeen  time.Time
	lastOrder *checkout.Confirmation
}

func (s *Session) Checkout(src checkout.Source) *checkout.Workflow {
	return s.checkouts[src]
}

// RecordOrder remembers c for the thank-you view.
func (s *Session) RecordOrder(c checkout.Confirmation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastOrder = &c
}

func (s *Session) LastOrder() (checkout.Confirmation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastOrder == nil {
		return checkout.Confirmation{}, false
	}
	return *s.lastOrder, true
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

type Deps struct {
	KV       KV
	Store    docstore.Store
	Catalog  *i18n.Catalog
	Orders   checkout.OrderCreator
	Notifier checkout.OrderNotifier
	Logger   *log.Logger
	Now      func() time.Time
}

// Registry keeps live sessions in memory. A session id that is no longer in
// memory is rebuilt from its persisted values.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	loading  singleflight.Group
	deps     Deps
}

func NewRegistry(deps Deps) *Registry {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Registry{sessions: map[string]*Session{}, deps: deps}
}

// Resolve returns the session for id, creating one under a fresh id when id
// is empty or malformed. created reports whether the caller must hand the id
// back to the visitor.
func (r *Registry) Resolve(ctx context.Context, id string) (s *Session, created bool) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
		created = true
	}

	s = r.live(id)
	if s == nil {
		// one build per id; the KV reads happen outside r.mu
		v, _, _ := r.loading.Do(id, func() (any, error) {
			if existing := r.live(id); existing != nil {
				return existing, nil
			}
			built := r.build(ctx, id)
			r.mu.Lock()
			r.sessions[id] = built
			r.mu.Unlock()
			return built, nil
		})
		s = v.(*Session)
	}

	s.touch(r.deps.Now())
	return s, created
}

func (r *Registry) live(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id]
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep forgets sessions idle for longer than idle. Their persisted values
// stay behind for the next visit.
func (r *Registry) Sweep(idle time.Duration) int {
	now := r.deps.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.idleSince(now) > idle {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done. Persisted values older than
// retain are expired when the KV supports it.
func (r *Registry) Run(ctx context.Context, interval, idle, retain time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				r.deps.Logger.Printf("session: swept %d idle sessions", n)
			}
			if exp, ok := r.deps.KV.(Expirer); ok && retain > 0 {
				if _, err := exp.Expire(ctx, r.deps.Now().Add(-retain)); err != nil {
					r.deps.Logger.Printf("session: expire values: %v", err)
				}
			}
		}
	}
}

// build loads the persisted values of id. It must not be called with r.mu
// held.
func (r *Registry) build(ctx context.Context, id string) *Session {
	d := r.deps
	s := &Session{
		ID:        id,
		Cart:      cart.NewStore(ctx, &cartPersister{kv: d.KV, sessionID: id}, d.Logger),
		Orders:    order.NewManager(order.NewRepository(d.Store, d.Now), d.Now),
		Products:  catalog.NewManager(d.Store, d.Now),
		checkouts: map[checkout.Source]*checkout.Workflow{},
		lastSeen:  d.Now(),
	}

	persisted, err := d.KV.Get(ctx, id, KeyLanguage)
	if err != nil && !errors.Is(err, ErrNotFound) {
		d.Logger.Printf("session: could not load language: %v", err)
	}
	s.Language = i18n.NewPreference(d.Catalog, string(persisted), func(ctx context.Context, code string) error {
		return d.KV.Put(ctx, id, KeyLanguage, []byte(code))
	})

	for _, src := range []checkout.Source{checkout.SourceCart, checkout.SourceBuyNow} {
		s.checkouts[src] = checkout.NewWorkflow(src, checkout.Deps{
			Cart:      s.Cart,
			Orders:    d.Orders,
			Notifier:  d.Notifier,
			Translate: s.Language.T,
			Now:       d.Now,
			Logger:    d.Logger,
		})
	}
	return s
}

type cartPersister struct {
	kv        KV
	sessionID string
}

func (p *cartPersister) Load(ctx context.Context) ([]cart.Item, error) {
	raw, err := p.kv.Get(ctx, p.sessionID, KeyCart)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cart.DecodeItems(raw)
}

func (p *cartPersister) Save(ctx context.Context, items []cart.Item) error {
	raw, err := cart.EncodeItems(items)
	if err != nil {
		return err
	}
	return p.kv.Put(ctx, p.sessionID, KeyCart, raw)
}
