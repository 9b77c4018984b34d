package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/contact"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/dashboard"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/i18n"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/livefeed"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
)

type Deps struct {
	Logger *log.Logger

	CORSAllowOrigins []string
	RequestTimeout   time.Duration
	SecureCookies    bool
	AdminTTL         time.Duration

	Sessions  *session.Registry
	Catalog   *catalog.Reader
	I18n      *i18n.Catalog
	Contact   *contact.Service
	Dashboard *dashboard.Service
	Tracker   events.Tracker

	Auth         auth.Provider
	AuthNotifier *auth.Notifier
	Feed         *livefeed.Hub
}

type Handler struct {
	logger        *log.Logger
	timeout       time.Duration
	secureCookies bool
	adminTTL      time.Duration

	sessions  *session.Registry
	catalog   *catalog.Reader
	i18n      *i18n.Catalog
	contact   *contact.Service
	dashboard *dashboard.Service
	tracker   events.Tracker

	auth         auth.Provider
	authNotifier *auth.Notifier
	feed         *livefeed.Hub
}

func NewHandler(d Deps) *Handler {
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Handler{
		logger:        d.Logger,
		timeout:       timeout,
		secureCookies: d.SecureCookies,
		adminTTL:      d.AdminTTL,
		sessions:      d.Sessions,
		catalog:       d.Catalog,
		i18n:          d.I18n,
		contact:       d.Contact,
		dashboard:     d.Dashboard,
		tracker:       d.Tracker,
		auth:          d.Auth,
		authNotifier:  d.AuthNotifier,
		feed:          d.Feed,
	}
}

func (h *Handler) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

func NewRouter(d Deps) http.Handler {
	h := NewHandler(d)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(Recover(d.Logger))
	r.Use(CORS(d.CORSAllowOrigins))
	r.Use(CorrelationID)

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(h.Visitor)

		r.Get("/home", h.Home)
		r.Get("/products", h.ListProducts)
		r.Get("/products/featured", h.Home)
		r.Get("/products/{id}", h.GetProduct)

		r.Get("/cart", h.GetCart)
		r.Delete("/cart", h.ClearCart)
		r.Post("/cart/items", h.AddCartItem)
		r.Patch("/cart/items/{id}", h.UpdateCartItem)
		r.Delete("/cart/items/{id}", h.RemoveCartItem)

		r.Post("/buy-now", h.BuyNow)
		r.Delete("/buy-now", h.ClearBuyNow)

		r.Get("/checkout/{source}", h.GetCheckout)
		r.Post("/checkout/{source}", h.SubmitCheckout)
		r.Get("/thank-you", h.ThankYou)

		r.Get("/contact", h.GetContact)
		r.Get("/i18n", h.GetI18n)
		r.Put("/language", h.SetLanguage)
		r.Post("/analytics/page-view", h.TrackPageView)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Login)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireAdmin)

				r.Post("/logout", h.Logout)
				r.Get("/session", h.AdminSession)
				r.Get("/dashboard", h.Dashboard)

				r.Get("/orders", h.ListOrders)
				r.Get("/orders/export.xlsx", h.ExportOrders)
				r.Get("/orders/feed", h.OrderFeed)
				r.Patch("/orders/{id}/status", h.UpdateOrderStatus)
				r.Delete("/orders/{id}", h.DeleteOrder)

				r.Get("/products", h.AdminListProducts)
				r.Get("/products/categories", h.AdminCategories)
				r.Get("/products/export.xlsx", h.ExportProducts)
				r.Post("/products", h.CreateProduct)
				r.Put("/products/{id}", h.UpdateProduct)
				r.Delete("/products/{id}", h.DeleteProduct)

				r.Get("/contact", h.AdminGetContact)
				r.Put("/contact", h.UpdateContact)
			})
		})
	})

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "storefront"})
}
