package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/contact"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validators"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	sess, err := h.auth.SignIn(ctx, strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		h.logger.Printf("admin login %q: %v", req.Email, err)
		writeError(w, http.StatusUnauthorized, auth.LoginMessage(err))
		return
	}

	http.SetCookie(w, h.adminSessionCookie(sess.Token, sess.ExpiresAt))
	writeJSON(w, http.StatusOK, map[string]any{
		"session":  sess,
		"redirect": "/admin",
	})
}

func (h *Handler) adminSessionCookie(token string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     adminCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	}
	switch {
	case token == "":
		c.MaxAge = -1
	case !expires.IsZero():
		c.Expires = expires
	case h.adminTTL > 0:
		c.MaxAge = int(h.adminTTL.Seconds())
	}
	return c
}

// Logout revokes the session and closes every live view bound to it.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := adminToken(r)

	ctx, cancel := h.ctx(r)
	defer cancel()

	if err := h.auth.SignOut(ctx, token); err != nil {
		h.logger.Printf("admin logout: %v", err)
		writeError(w, http.StatusBadGateway, "could not sign out")
		return
	}
	h.authNotifier.Publish(token)

	http.SetCookie(w, h.adminSessionCookie("", time.Time{}))
	writeJSON(w, http.StatusOK, map[string]string{"redirect": auth.LoginPath})
}

func (h *Handler) AdminSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, admin(r))
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	sum, err := h.dashboard.Summary(ctx)
	if err != nil {
		h.logger.Printf("dashboard: %v", err)
		writeError(w, http.StatusBadGateway, "could not load dashboard")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	m := visitor(r).Orders

	ctx, cancel := h.ctx(r)
	defer cancel()

	if err := m.Load(ctx, q.Get("refresh") == "1"); err != nil {
		h.logger.Printf("load orders: %v", err)
		writeError(w, http.StatusBadGateway, "could not load orders")
		return
	}

	m.SetFilter(order.Filter{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Price:  order.ParsePriceBucket(q.Get("price")),
	})
	if s := q.Get("sort"); s != "" {
		key, ok := order.ParseSortKey(s)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown sort key")
			return
		}
		m.SortBy(key)
	}

	writeJSON(w, http.StatusOK, m.View())
}

func (h *Handler) ExportOrders(w http.ResponseWriter, r *http.Request) {
	m := visitor(r).Orders

	ctx, cancel := h.ctx(r)
	defer cancel()

	if err := m.Load(ctx, false); err != nil {
		h.logger.Printf("load orders: %v", err)
		writeError(w, http.StatusBadGateway, "could not load orders")
		return
	}

	writeAttachment(w, "orders.xlsx")
	if err := order.WriteXLSX(w, m.Orders()); err != nil {
		h.logger.Printf("export orders: %v", err)
	}
}

// OrderFeed streams new orders until the client leaves or the admin signs out.
func (h *Handler) OrderFeed(w http.ResponseWriter, r *http.Request) {
	done := make(chan struct{})
	var once sync.Once
	unsubscribe := h.authNotifier.Subscribe(adminToken(r), func() {
		once.Do(func() { close(done) })
	})
	defer unsubscribe()

	h.feed.ServeWS(w, r, done)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	status, err := order.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	m := visitor(r).Orders
	if err := m.UpdateStatus(ctx, chi.URLParam(r, "id"), status); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Printf("update order status: %v", err)
		writeError(w, http.StatusBadGateway, "could not update order")
		return
	}
	writeJSON(w, http.StatusOK, m.View())
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	m := visitor(r).Orders
	if err := m.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		h.logger.Printf("delete order: %v", err)
		writeError(w, http.StatusBadGateway, "could not delete order")
		return
	}
	writeJSON(w, http.StatusOK, m.View())
}

func (h *Handler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	m := visitor(r).Products

	ctx, cancel := h.ctx(r)
	defer cancel()

	if err := m.Load(ctx, q.Get("refresh") == "1"); err != nil {
		h.logger.Printf("load products: %v", err)
		writeError(w, http.StatusBadGateway, "could not load products")
		return
	}

	m.SetFilter(catalog.Filter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Featured: catalog.ParseFeaturedFilter(q.Get("featured")),
	})
	writeJSON(w, http.StatusOK, m.View())
}

func (h *Handler) AdminCategories(w http.ResponseWriter, r *http.Request) {
	m := visitor(r).Products

	ctx, cancel := h.ctx(r)
	defer cancel()

	if err := m.Load(ctx, false); err != nil {
		h.logger.Printf("load products: %v", err)
		writeError(w, http.StatusBadGateway, "could not load products")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": catalog.CategoryOptions(m.Products()),
	})
}

func (h *Handler) ExportProducts(w http.ResponseWriter, r *http.Request) {
	m := visitor(r).Products

	ctx, cancel := h.ctx(r)
	defer cancel()

	if err := m.Load(ctx, false); err != nil {
		h.logger.Printf("load products: %v", err)
		writeError(w, http.StatusBadGateway, "could not load products")
		return
	}

	writeAttachment(w, "products.xlsx")
	if err := catalog.WriteXLSX(w, m.Products()); err != nil {
		h.logger.Printf("export products: %v", err)
	}
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	m := visitor(r).Products
	id, err := m.Create(ctx, in)
	if h.productWriteFailed(w, err) {
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "view": m.View()})
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	m := visitor(r).Products
	if h.productWriteFailed(w, m.Update(ctx, chi.URLParam(r, "id"), in)) {
		return
	}
	writeJSON(w, http.StatusOK, m.View())
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	m := visitor(r).Products
	if h.productWriteFailed(w, m.Delete(ctx, chi.URLParam(r, "id"))) {
		return
	}
	writeJSON(w, http.StatusOK, m.View())
}

func (h *Handler) productWriteFailed(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	var fe validators.FieldErrors
	switch {
	case errors.As(err, &fe):
		writeFieldErrors(w, fe, nil)
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Printf("product write: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
	}
	return true
}

func (h *Handler) AdminGetContact(w http.ResponseWriter, r *http.Request) {
	h.GetContact(w, r)
}

func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var info contact.Info
	if err := decodeJSON(r, &info); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	if err := h.contact.Update(ctx, info); err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			writeError(w, http.StatusNotFound, contact.NotFoundMessage)
			return
		}
		h.logger.Printf("update contact: %v", err)
		writeError(w, http.StatusBadGateway, "could not save contact details")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func writeAttachment(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
}
