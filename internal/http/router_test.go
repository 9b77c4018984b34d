package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/contact"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/dashboard"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/docstore"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/i18n"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/livefeed"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
)

const (
	adminEmail    = "admin@shop.ma"
	adminPassword = "s3cret"
)

type testEnv struct {
	srv     *httptest.Server
	client  *http.Client
	store   *docstore.MemoryStore
	kv      *switchKV
	hub     *livefeed.Hub
	mugID   string
	orders  *orderSink
	contact *contact.Service
}

// switchKV fails writes while failPut is set.
type switchKV struct {
	*session.MemoryKV
	mu      sync.Mutex
	failPut bool
}

func (k *switchKV) setFail(v bool) {
	k.mu.Lock()
	k.failPut = v
	k.mu.Unlock()
}

func (k *switchKV) Put(ctx context.Context, sessionID, key string, value []byte) error {
	k.mu.Lock()
	fail := k.failPut
	k.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return k.MemoryKV.Put(ctx, sessionID, key, value)
}

type orderSink struct {
	mu       sync.Mutex
	payloads []events.OrderCreatedPayload
}

func (s *orderSink) record(ctx context.Context, p events.OrderCreatedPayload) {
	s.mu.Lock()
	s.payloads = append(s.payloads, p)
	s.mu.Unlock()
}

func (s *orderSink) all() []events.OrderCreatedPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]events.OrderCreatedPayload(nil), s.payloads...)
}

func newTestEnv(t *testing.T, provider auth.Provider) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := log.New(io.Discard, "", 0)

	store := docstore.NewMemoryStore()
	mugID, err := store.Create(ctx, catalog.Collection, docstore.Fields{
		"product_name": "Mug", "product_price": 12.5, "category": "Kitchen",
		"product_description": "Big mug", "product_img_url": "mug.png",
		"feature_product": true, "product_stock": 4,
	})
	require.NoError(t, err)
	_, err = store.Create(ctx, catalog.Collection, docstore.Fields{
		"product_name": "Hat", "product_price": 20, "category": "Clothing",
		"product_description": "Sun hat", "product_img_url": "hat.png",
	})
	require.NoError(t, err)

	translations, err := i18n.Load("en")
	require.NoError(t, err)

	if provider == nil {
		h, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
		require.NoError(t, err)
		accounts, err := auth.ParseAccounts([]string{adminEmail + ":" + string(h)})
		require.NoError(t, err)
		provider = auth.NewLocalProvider(accounts, "test-secret", time.Hour)
	}

	hub := livefeed.NewHub(logger, []string{"http://shop.test"})
	sink := &orderSink{}
	tracker := events.NewLogTracker(logger, "MAD", func(ctx context.Context, p events.OrderCreatedPayload) {
		sink.record(ctx, p)
		hub.Broadcast(livefeed.Message{Type: events.EventTypeOrderCreated, Data: p})
	})

	contacts := contact.NewService(store)
	kv := &switchKV{MemoryKV: session.NewMemoryKV()}
	sessions := session.NewRegistry(session.Deps{
		KV:       kv,
		Store:    store,
		Catalog:  translations,
		Orders:   order.NewWriter(store),
		Notifier: tracker,
		Logger:   logger,
	})

	router := NewRouter(Deps{
		Logger:           logger,
		CORSAllowOrigins: []string{"http://shop.test"},
		RequestTimeout:   time.Second,
		AdminTTL:         time.Hour,
		Sessions:         sessions,
		Catalog:          catalog.NewReader(store, logger),
		I18n:             translations,
		Contact:          contacts,
		Dashboard:        dashboard.NewService(order.NewRepository(store, time.Now), time.Now),
		Tracker:          tracker,
		Auth:             provider,
		AuthNotifier:     auth.NewNotifier(),
		Feed:             hub,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testEnv{
		srv:     srv,
		client:  &http.Client{Jar: jar, Timeout: 5 * time.Second},
		store:   store,
		kv:      kv,
		hub:     hub,
		mugID:   mugID,
		orders:  sink,
		contact: contacts,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") && len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/api/admin/login", map[string]string{"email": adminEmail, "password": adminPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func validForm() map[string]string {
	return map[string]string{"name": "Sara", "phone": "0612345678", "city": "Rabat", "address": "1 Rue A"}
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t, nil)

	resp, body := e.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body["status"])
	require.NotEmpty(t, resp.Header.Get(HeaderCorrelationID))
}

func TestProducts(t *testing.T) {
	e := newTestEnv(t, nil)

	resp, body := e.do(t, http.MethodGet, "/api/home", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["products"], 1)

	_, body = e.do(t, http.MethodGet, "/api/products?category=Clothing", nil)
	require.Len(t, body["products"], 1)
	require.Equal(t, []any{"All", "Clothing", "Kitchen"}, body["categories"])

	_, body = e.do(t, http.MethodGet, "/api/products/"+e.mugID, nil)
	require.Equal(t, "Mug", body["product_name"])

	resp, _ = e.do(t, http.MethodGet, "/api/products/missing", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestVisitorLanguageFromAcceptLanguage(t *testing.T) {
	e := newTestEnv(t, nil)

	req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/api/i18n", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9")
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "fr", body["language"])

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.True(t, cookie.HttpOnly)

	// later requests keep the stored choice
	resp2, body := e.do(t, http.MethodPut, "/api/language", map[string]string{"language": "en"})
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	require.Equal(t, "en", body["language"])

	resp2, _ = e.do(t, http.MethodPut, "/api/language", map[string]string{"language": "xx"})
	require.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestCartAndCheckout(t *testing.T) {
	e := newTestEnv(t, nil)

	resp, body := e.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": e.mugID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 1, body["count"])

	_, body = e.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": e.mugID, "quantity": 2})
	require.EqualValues(t, 3, body["count"])
	require.EqualValues(t, 37.5, body["total"])

	resp, _ = e.do(t, http.MethodPatch, "/api/cart/items/"+e.mugID, map[string]any{"quantity": 0})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, body = e.do(t, http.MethodPatch, "/api/cart/items/"+e.mugID, map[string]any{"quantity": 2})
	require.EqualValues(t, 25, body["total"])

	resp, _ = e.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": "missing"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = e.do(t, http.MethodGet, "/api/checkout/cart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 25, body["total"])

	bad := validForm()
	bad["phone"] = "12"
	resp, body = e.do(t, http.MethodPost, "/api/checkout/cart", bad)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Equal(t, map[string]any{"phone": "Please enter a valid phone number"}, body["fields"])

	resp, body = e.do(t, http.MethodPost, "/api/checkout/cart", validForm())
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	require.Equal(t, thankYouPath, body["redirect"])

	resp, body = e.do(t, http.MethodGet, "/api/thank-you", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body["orderId"])
	require.EqualValues(t, 25, body["total"])

	_, body = e.do(t, http.MethodGet, "/api/cart", nil)
	require.EqualValues(t, 0, body["count"])

	resp, body = e.do(t, http.MethodGet, "/api/checkout/cart", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "/products", body["redirect"])

	placed := e.orders.all()
	require.Len(t, placed, 1)
	require.Equal(t, "Sara", placed[0].CustomerName)

	docs, err := e.store.List(context.Background(), order.Collection)
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestCart_SaveFailureRollsBack(t *testing.T) {
	e := newTestEnv(t, nil)
	e.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": e.mugID})

	e.kv.setFail(true)
	resp, body := e.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": e.mugID})
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.EqualValues(t, 1, body["cart"].(map[string]any)["count"])

	e.kv.setFail(false)
	_, body = e.do(t, http.MethodGet, "/api/cart", nil)
	require.EqualValues(t, 1, body["count"])
}

func TestBuyNowLeavesCartAlone(t *testing.T) {
	e := newTestEnv(t, nil)

	e.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": e.mugID})

	resp, body := e.do(t, http.MethodPost, "/api/buy-now", map[string]any{"productId": e.mugID, "quantity": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/checkout/buy-now", body["redirect"])

	resp, _ = e.do(t, http.MethodPost, "/api/checkout/buy-now", validForm())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, body = e.do(t, http.MethodGet, "/api/thank-you", nil)
	require.EqualValues(t, 37.5, body["total"])

	_, body = e.do(t, http.MethodGet, "/api/cart", nil)
	require.EqualValues(t, 1, body["count"])
	require.Nil(t, body["buyNowProduct"])
}

func TestCheckout_UnknownSourceAndNoOrder(t *testing.T) {
	e := newTestEnv(t, nil)

	resp, _ := e.do(t, http.MethodGet, "/api/checkout/wishlist", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/thank-you", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdmin_RequiresLogin(t *testing.T) {
	e := newTestEnv(t, nil)

	resp, body := e.do(t, http.MethodGet, "/api/admin/orders", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, auth.LoginPath, body["redirect"])

	resp, body = e.do(t, http.MethodPost, "/api/admin/login", map[string]string{"email": adminEmail, "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Invalid email or password", body["error"])

	resp, body = e.do(t, http.MethodPost, "/api/admin/login", map[string]string{"email": "bad", "password": "x"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Invalid email address", body["error"])

	e.login(t)
	resp, body = e.do(t, http.MethodGet, "/api/admin/session", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, adminEmail, body["email"])

	resp, _ = e.do(t, http.MethodPost, "/api/admin/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/admin/session", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

type unreachableProvider struct{}

func (unreachableProvider) SignIn(context.Context, string, string) (auth.Session, error) {
	return auth.Session{}, errors.New("unreachable")
}
func (unreachableProvider) Verify(context.Context, string) (auth.Session, error) {
	return auth.Session{}, errors.New("unreachable")
}
func (unreachableProvider) SignOut(context.Context, string) error { return nil }

func TestAdmin_PendingWhileProviderUnreachable(t *testing.T) {
	e := newTestEnv(t, unreachableProvider{})

	req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/api/admin/dashboard", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: adminCookie, Value: "some-token"})

	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.Equal(t, "1", resp.Header.Get("Retry-After"))
}

func TestAdmin_Orders(t *testing.T) {
	e := newTestEnv(t, nil)
	e.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": e.mugID, "quantity": 2})
	e.do(t, http.MethodPost, "/api/checkout/cart", validForm())
	e.login(t)

	resp, body := e.do(t, http.MethodGet, "/api/admin/orders", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	orders := body["orders"].([]any)
	require.Len(t, orders, 1)
	id := orders[0].(map[string]any)["id"].(string)
	require.Equal(t, "new", orders[0].(map[string]any)["status"])

	_, body = e.do(t, http.MethodGet, "/api/admin/orders?status=shipped", nil)
	require.Empty(t, body["orders"])

	resp, _ = e.do(t, http.MethodGet, "/api/admin/orders?sort=colour", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPatch, "/api/admin/orders/"+id+"/status", map[string]string{"status": "lost"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = e.do(t, http.MethodPatch, "/api/admin/orders/"+id+"/status", map[string]string{"status": "Shipped"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "shipped", body["orders"].([]any)[0].(map[string]any)["status"])

	_, body = e.do(t, http.MethodGet, "/api/admin/dashboard", nil)
	require.EqualValues(t, 1, body["totalOrders"])

	resp, _ = e.do(t, http.MethodGet, "/api/admin/orders/export.xlsx", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	require.Contains(t, resp.Header.Get("Content-Disposition"), "orders.xlsx")

	resp, body = e.do(t, http.MethodDelete, "/api/admin/orders/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, body["orders"])
}

func TestAdmin_Products(t *testing.T) {
	e := newTestEnv(t, nil)
	e.login(t)

	resp, body := e.do(t, http.MethodGet, "/api/admin/products?featured=featured", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["products"], 1)

	resp, body = e.do(t, http.MethodPost, "/api/admin/products", map[string]any{"product_name": "Cap"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Contains(t, body["fields"], "product_price")

	resp, body = e.do(t, http.MethodPost, "/api/admin/products", map[string]any{
		"product_name": "Cap", "product_price": 8, "category": catalog.NewCategoryOption, "newCategory": "Hats",
		"product_description": "Cotton cap", "product_img_url": "cap.png", "product_stock": 2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	id := body["id"].(string)

	_, body = e.do(t, http.MethodGet, "/api/admin/products/categories", nil)
	require.Contains(t, body["categories"], "Hats")

	resp, _ = e.do(t, http.MethodPut, "/api/admin/products/missing", map[string]any{
		"product_name": "Cap", "product_price": 8, "category": "Hats",
		"product_description": "Cotton cap", "product_img_url": "cap.png", "product_stock": 2,
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = e.do(t, http.MethodDelete, "/api/admin/products/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/admin/products/export.xlsx", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdmin_Contact(t *testing.T) {
	e := newTestEnv(t, nil)
	e.login(t)

	info := map[string]string{"instagram": "@shop", "mail": "hi@shop.ma", "phone": "0612345678"}
	resp, body := e.do(t, http.MethodPut, "/api/admin/contact", info)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, contact.NotFoundMessage, body["error"])

	_, err := e.contact.Ensure(context.Background(), contact.Info{Mail: "old@shop.ma"})
	require.NoError(t, err)

	resp, _ = e.do(t, http.MethodPut, "/api/admin/contact", info)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = e.do(t, http.MethodGet, "/api/contact", nil)
	require.Equal(t, "hi@shop.ma", body["mail"])
}

func TestOrderFeed(t *testing.T) {
	e := newTestEnv(t, nil)
	e.login(t)

	wsURL := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/api/admin/orders/feed"
	header := http.Header{}
	for _, c := range e.client.Jar.Cookies(mustURL(t, e.srv.URL+"/api")) {
		header.Add("Cookie", c.Name+"="+c.Value)
	}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	require.Eventually(t, func() bool { return e.hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	e.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": e.mugID})
	e.do(t, http.MethodPost, "/api/checkout/cart", validForm())

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg livefeed.Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, events.EventTypeOrderCreated, msg.Type)

	e.do(t, http.MethodPost, "/api/admin/logout", nil)

	_, _, err = conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
}

func TestOrderFeed_RejectsForeignOrigin(t *testing.T) {
	e := newTestEnv(t, nil)
	e.login(t)

	wsURL := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/api/admin/orders/feed"
	header := http.Header{"Origin": []string{"http://evil.test"}}
	for _, c := range e.client.Jar.Cookies(mustURL(t, e.srv.URL+"/api")) {
		header.Add("Cookie", c.Name+"="+c.Value)
	}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, 0, e.hub.Clients())

	header.Set("Origin", "http://shop.test")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	_ = conn.Close()
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://shop.test"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/cart", nil)
	req.Header.Set("Origin", "http://shop.test")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, "http://shop.test", rr.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Origin", "http://evil.test")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverAndCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	h := CorrelationID(Recover(log.New(&buf, "", 0))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderCorrelationID, "cid-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "cid-1", rr.Header().Get(HeaderCorrelationID))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "internal server error", body["error"])
	require.Equal(t, "cid-1", body["correlationId"])
	require.Contains(t, buf.String(), "boom")
}
