package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/webshop-go/storefront/app/configs"
	"github.com/webshop-go/storefront/app/middlewares"
	"github.com/webshop-go/storefront/app/models"
	"github.com/webshop-go/storefront/app/repositories"
	"github.com/webshop-go/storefront/app/services"
	"github.com/webshop-go/storefront/app/utils/renderer"
)

type stubCatalog struct {
	products map[string]*models.Product
	err      error
}

func (s *stubCatalog) GetByID(ctx context.Context, id string) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	product, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return product, nil
}

type stubCoupons struct{}

func (stubCoupons) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return nil, nil
}

type nullRemote struct{}

func (nullRemote) Load(ctx context.Context, identityID string) (*models.CartSnapshot, error) {
	return nil, nil
}

func (nullRemote) Save(ctx context.Context, identityID string, snap models.CartSnapshot) error {
	return nil
}

func (nullRemote) Delete(ctx context.Context, identityID string) error { return nil }

func newCartHandlerFixture(catalog *stubCatalog) *CartHandler {
	mustDec := func(s string) decimal.Decimal {
		d, err := decimal.NewFromString(s)
		if err != nil {
			panic(err)
		}
		return d
	}
	pricing := configs.PricingConfig{
		FreeShippingMinimum: mustDec("50.00"),
		FlatShippingFee:     mustDec("5.95"),
	}
	log := zap.NewNop().Sugar()
	manager := services.NewCartSessionManager(
		catalog, stubCoupons{}, repositories.NewCartCache(), nullRemote{},
		pricing, 10*time.Millisecond, log,
	)
	return NewCartHandler(manager, renderer.New(), validator.New(), log)
}

func addItemRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", bytes.NewBufferString(body))
	ctx := context.WithValue(req.Context(), middlewares.ClientIDKey, "client-1")
	return req.WithContext(ctx)
}

func TestCartHandler_AddItemMissingProductIs404(t *testing.T) {
	h := newCartHandlerFixture(&stubCatalog{products: map[string]*models.Product{}})

	rec := httptest.NewRecorder()
	h.AddItem(rec, addItemRequest(`{"product_id":"ghost","quantity":1}`))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d for a missing product", rec.Code, http.StatusNotFound)
	}
}

func TestCartHandler_AddItemTransportFaultIs503(t *testing.T) {
	h := newCartHandlerFixture(&stubCatalog{err: errors.New("catalog unreachable")})

	rec := httptest.NewRecorder()
	h.AddItem(rec, addItemRequest(`{"product_id":"p1","quantity":1}`))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d for a catalog fault", rec.Code, http.StatusServiceUnavailable)
	}
}
