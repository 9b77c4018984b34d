package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/i18n"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validators"
)

const thankYouPath = "/thank-you"

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	featured, err := h.catalog.Featured(ctx)
	if err != nil {
		h.logger.Printf("featured products: %v", err)
		writeError(w, http.StatusBadGateway, "could not load products")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": featured})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	all, err := h.catalog.List(ctx)
	if err != nil {
		h.logger.Printf("list products: %v", err)
		writeError(w, http.StatusBadGateway, "could not load products")
		return
	}

	listing := catalog.Listing{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products":   listing.Apply(all),
		"categories": catalog.PublicCategories(all),
		"listing":    listing,
	})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	p, ok := h.lookupProduct(ctx, w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	h.tracker.TrackPageView(ctx, events.ProductView{ID: p.ID, Name: p.Name, Value: p.Price})
	writeJSON(w, http.StatusOK, p)
}

type cartResponse struct {
	Items  []cart.Item `json:"cart"`
	BuyNow *cart.Item  `json:"buyNowProduct"`
	Total  float64     `json:"total"`
	Count  int         `json:"count"`
}

func newCartResponse(s cart.State) cartResponse {
	return cartResponse{Items: s.Items, BuyNow: s.BuyNow, Total: s.Total(), Count: s.Count()}
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newCartResponse(visitor(r).Cart.State()))
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId required")
		return
	}
	if req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	p, ok := h.lookupProduct(ctx, w, req.ProductID)
	if !ok {
		return
	}

	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	state, err := visitor(r).Cart.Dispatch(ctx, cart.AddToCart{Item: itemFor(p), Quantity: qty})
	if h.dispatched(w, state, err) {
		h.tracker.TrackAddToCart(ctx, events.ProductView{ID: p.ID, Name: p.Name, Value: p.Price}, qty)
	}
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	state, err := visitor(r).Cart.Dispatch(ctx, cart.UpdateQuantity{ID: chi.URLParam(r, "id"), Quantity: req.Quantity})
	h.dispatched(w, state, err)
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	state, err := visitor(r).Cart.Dispatch(ctx, cart.RemoveFromCart{ID: chi.URLParam(r, "id")})
	h.dispatched(w, state, err)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	state, err := visitor(r).Cart.Dispatch(ctx, cart.ClearCart{})
	h.dispatched(w, state, err)
}

func (h *Handler) BuyNow(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId required")
		return
	}
	if req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	p, ok := h.lookupProduct(ctx, w, req.ProductID)
	if !ok {
		return
	}

	state, err := visitor(r).Cart.Dispatch(ctx, cart.BuyNow{Item: itemFor(p), Quantity: req.Quantity})
	if err != nil {
		h.logger.Printf("buy now: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"buyNowProduct": state.BuyNow,
		"redirect":      "/checkout/" + string(checkout.SourceBuyNow),
	})
}

func (h *Handler) ClearBuyNow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	state, err := visitor(r).Cart.Dispatch(ctx, cart.ClearBuyNow{})
	h.dispatched(w, state, err)
}

// dispatched answers with the cart after a command. When the save failed the
// store has already rolled back, so the client gets the unchanged cart.
func (h *Handler) dispatched(w http.ResponseWriter, state cart.State, err error) bool {
	if err != nil {
		h.logger.Printf("cart persist: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error": "could not save cart",
			"cart":  newCartResponse(state),
		})
		return false
	}
	writeJSON(w, http.StatusOK, newCartResponse(state))
	return true
}

func (h *Handler) lookupProduct(ctx context.Context, w http.ResponseWriter, id string) (catalog.Product, bool) {
	p, err := h.catalog.Get(ctx, id)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "product not found")
		return catalog.Product{}, false
	case err != nil:
		h.logger.Printf("get product %s: %v", id, err)
		writeError(w, http.StatusBadGateway, "could not load product")
		return catalog.Product{}, false
	}
	return p, true
}

func itemFor(p catalog.Product) cart.Item {
	return cart.Item{ID: p.ID, Title: p.Name, Price: p.Price, Image: p.ImageURL}
}

func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.workflow(w, r)
	if !ok {
		return
	}

	snap, err := wf.Enter()
	if errors.Is(err, checkout.ErrEmptySource) {
		writeRedirect(w, http.StatusConflict, err.Error(), checkout.EmptyRedirect)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.workflow(w, r)
	if !ok {
		return
	}

	var form checkout.Form
	if err := decodeJSON(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	snap, err := wf.Submit(ctx, form)
	var fe validators.FieldErrors
	switch {
	case err == nil:
	case errors.Is(err, checkout.ErrEmptySource):
		writeRedirect(w, http.StatusConflict, err.Error(), checkout.EmptyRedirect)
		return
	case errors.Is(err, checkout.ErrInProgress):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.As(err, &fe):
		writeFieldErrors(w, fe, map[string]any{"checkout": snap})
		return
	case errors.Is(err, checkout.ErrSubmitFailed):
		h.logger.Printf("checkout %s: %v", snap.Source, err)
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": snap.Message, "checkout": snap})
		return
	default:
		h.logger.Printf("checkout: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	visitor(r).RecordOrder(*snap.Confirmation)
	writeJSON(w, http.StatusCreated, map[string]any{
		"checkout": snap,
		"redirect": thankYouPath,
	})
}

func (h *Handler) workflow(w http.ResponseWriter, r *http.Request) (*checkout.Workflow, bool) {
	src, err := checkout.ParseSource(chi.URLParam(r, "source"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return visitor(r).Checkout(src), true
}

func (h *Handler) ThankYou(w http.ResponseWriter, r *http.Request) {
	c, ok := visitor(r).LastOrder()
	if !ok {
		writeRedirect(w, http.StatusNotFound, "no recent order", "/")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()

	info, err := h.contact.Get(ctx)
	if err != nil {
		h.logger.Printf("contact: %v", err)
		writeError(w, http.StatusBadGateway, "could not load contact details")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) GetI18n(w http.ResponseWriter, r *http.Request) {
	lang := visitor(r).Language.Language()
	writeJSON(w, http.StatusOK, map[string]any{
		"language":  lang,
		"languages": h.i18n.Languages(),
		"messages":  h.i18n.Messages(lang),
	})
}

type languageRequest struct {
	Language string `json:"language"`
}

func (h *Handler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	pref := visitor(r).Language
	if err := pref.Set(ctx, req.Language); err != nil {
		if errors.Is(err, i18n.ErrUnsupported) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Printf("set language: %v", err)
		writeError(w, http.StatusBadGateway, "could not save language")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"language": pref.Language(),
		"messages": h.i18n.Messages(pref.Language()),
	})
}

type pageViewRequest struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Value       float64 `json:"value"`
}

func (h *Handler) TrackPageView(w http.ResponseWriter, r *http.Request) {
	var req pageViewRequest
	if err := decodeJSON(r, &req); err != nil || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId required")
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	h.tracker.TrackPageView(ctx, events.ProductView{ID: req.ProductID, Name: req.ProductName, Value: req.Value})
	w.WriteHeader(http.StatusAccepted)
}
