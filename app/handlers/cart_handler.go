package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
	"go.uber.org/zap"

	"github.com/webshop-go/storefront/app/middlewares"
	"github.com/webshop-go/storefront/app/models"
	"github.com/webshop-go/storefront/app/services"
	"github.com/webshop-go/storefront/app/utils/format"
)

type CartHandler struct {
	carts    *services.CartSessionManager
	render   *render.Render
	validate *validator.Validate
	log      *zap.SugaredLogger
}

func NewCartHandler(carts *services.CartSessionManager, r *render.Render, validate *validator.Validate, log *zap.SugaredLogger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		render:   r,
		validate: validate,
		log:      log,
	}
}

type addItemForm struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

type setQuantityForm struct {
	Quantity int `json:"quantity"`
}

type applyCouponForm struct {
	Code string `json:"code" validate:"required,min=2,max=50"`
}

type cartItemView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type cartView struct {
	Items       []cartItemView `json:"items"`
	CouponCode  string         `json:"coupon_code,omitempty"`
	Subtotal    string         `json:"subtotal"`
	ShippingFee string         `json:"shipping_fee"`
	Discount    string         `json:"discount"`
	Total       string         `json:"total"`
	ItemCount   int            `json:"item_count"`
}

func newCartView(cart models.Cart) cartView {
	view := cartView{
		Items:       []cartItemView{},
		CouponCode:  cart.AppliedCouponCode,
		Subtotal:    format.Money(cart.Subtotal),
		ShippingFee: format.Money(cart.ShippingFee),
		Discount:    format.Money(cart.Discount),
		Total:       format.Money(cart.Total),
		ItemCount:   cart.ItemCount(),
	}
	for i := range cart.Items {
		item := cart.Items[i]
		name := ""
		unitPrice := format.Money(item.LineTotal())
		if item.Product != nil {
			name = item.Product.Name
			unitPrice = format.Money(item.Product.Price)
		}
		view.Items = append(view.Items, cartItemView{
			ProductID: item.ProductID,
			Name:      name,
			UnitPrice: unitPrice,
			Quantity:  item.Quantity,
			LineTotal: format.Money(item.LineTotal()),
		})
	}
	return view
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	_ = h.render.JSON(w, http.StatusOK, newCartView(sess.Store.Cart()))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var form addItemForm
	if !h.decode(w, r, &form) {
		return
	}
	if form.Quantity == 0 {
		form.Quantity = 1
	}

	sess := h.session(r)
	cart, err := sess.Store.AddItem(r.Context(), form.ProductID, form.Quantity)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			_ = h.render.JSON(w, http.StatusNotFound, map[string]string{"error": "product is unavailable"})
			return
		}
		h.log.Errorw("add to cart failed", "product_id", form.ProductID, "error", err)
		_ = h.render.JSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "the catalog is temporarily unavailable, please try again",
		})
		return
	}
	_ = h.render.JSON(w, http.StatusOK, newCartView(cart))
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["productID"]

	var form setQuantityForm
	if !h.decode(w, r, &form) {
		return
	}

	sess := h.session(r)
	cart, err := sess.Store.SetQuantity(r.Context(), productID, form.Quantity)
	if err != nil {
		if errors.Is(err, services.ErrItemNotInCart) {
			_ = h.render.JSON(w, http.StatusNotFound, map[string]string{"error": "item is not in the cart"})
			return
		}
		h.log.Errorw("set quantity failed", "product_id", productID, "error", err)
		_ = h.render.JSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "the catalog is temporarily unavailable, please try again",
		})
		return
	}
	_ = h.render.JSON(w, http.StatusOK, newCartView(cart))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["productID"]

	sess := h.session(r)
	cart := sess.Store.RemoveItem(r.Context(), productID)
	_ = h.render.JSON(w, http.StatusOK, newCartView(cart))
}

func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var form applyCouponForm
	if !h.decode(w, r, &form) {
		return
	}

	sess := h.session(r)
	cart, err := sess.Store.ApplyCoupon(r.Context(), form.Code)
	if err != nil {
		var couponErr *services.CouponError
		if errors.As(err, &couponErr) {
			_ = h.render.JSON(w, http.StatusUnprocessableEntity, map[string]string{
				"reason": string(couponErr.Reason),
				"error":  couponErr.Message,
			})
			return
		}
		h.log.Errorw("coupon lookup failed", "code", form.Code, "error", err)
		_ = h.render.JSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "coupons are temporarily unavailable, please try again",
		})
		return
	}
	_ = h.render.JSON(w, http.StatusOK, newCartView(cart))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	cart := sess.Store.Clear(r.Context())
	_ = h.render.JSON(w, http.StatusOK, newCartView(cart))
}

// session resolves the request's cart session, signing it in lazily when the
// cookie already carries an authenticated user.
func (h *CartHandler) session(r *http.Request) *services.CartSession {
	ctx := r.Context()
	return h.carts.Session(ctx, middlewares.ClientIDFromContext(ctx), middlewares.UserIDFromContext(ctx))
}

func (h *CartHandler) decode(w http.ResponseWriter, r *http.Request, form interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(form); err != nil {
		_ = h.render.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	if err := h.validate.Struct(form); err != nil {
		_ = h.render.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}
