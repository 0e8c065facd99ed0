package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/webshop-go/storefront/app/configs"
	"github.com/webshop-go/storefront/app/models"
	"github.com/webshop-go/storefront/app/utils/calc"
)

// ErrProductNotFound marks a product reference the catalog cannot resolve.
// Callers distinguish it from transport faults, which are wrapped lookup
// errors instead.
var ErrProductNotFound = errors.New("product not found")

// ErrItemNotInCart marks an operation on a product the cart does not hold.
var ErrItemNotInCart = errors.New("item not in cart")

// CatalogLookup resolves a product by id. A missing product is (nil, nil);
// errors are transport faults.
type CatalogLookup interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// CouponLookup resolves a coupon by normalized code. A missing coupon is
// (nil, nil); errors are transport faults.
type CouponLookup interface {
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
}

// SyncHook receives cart changes for persistence. Implementations must not
// block: the mutation path is synchronous and never waits on network I/O.
type SyncHook interface {
	CartChanged(snapshot models.CartSnapshot)
	CartCleared()
}

// CartStore is the authoritative in-memory cart for one browser client. All
// operations are synchronous against local state; every mutation re-resolves
// product prices and stock from the catalog, recomputes the totals and hands
// a snapshot to the sync hook.
//
// The applied coupon's discount is recomputed from its cached kind/value on
// every subtotal change without re-running the temporal and usage checks.
// Within a session an applied coupon can therefore keep discounting after it
// expires out-of-band; full validation runs again on apply and on restore.
type CartStore struct {
	catalog CatalogLookup
	coupons CouponLookup
	pricing configs.PricingConfig
	log     *zap.SugaredLogger

	mu     sync.Mutex
	cart   models.Cart
	coupon *models.AppliedCoupon
	hook   SyncHook
}

func NewCartStore(catalog CatalogLookup, coupons CouponLookup, pricing configs.PricingConfig, log *zap.SugaredLogger) *CartStore {
	return &CartStore{
		catalog: catalog,
		coupons: coupons,
		pricing: pricing,
		log:     log,
	}
}

// SetSyncHook attaches the persistence synchronizer. Must be called before
// the store is shared.
func (s *CartStore) SetSyncHook(hook SyncHook) {
	s.hook = hook
}

// Cart returns a copy of the current cart state.
func (s *CartStore) Cart() models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyCart()
}

// ItemCount is the sum of quantities over all line items.
func (s *CartStore) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.ItemCount()
}

// Snapshot returns the persistable form of the cart.
func (s *CartStore) Snapshot() models.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// AddItem puts qty units of a product into the cart, increasing the quantity
// if the product is already present. The amount actually added is capped at
// the stock still available; a cart already holding all available stock makes
// this a logged no-op, not an error.
func (s *CartStore) AddItem(ctx context.Context, productID string, qty int) (models.Cart, error) {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return s.copyCart(), fmt.Errorf("catalog lookup for %s: %w", productID, err)
	}
	if product == nil {
		return s.copyCart(), fmt.Errorf("product %s: %w", productID, ErrProductNotFound)
	}

	item := s.findItem(productID)
	current := 0
	if item != nil {
		current = item.Quantity
	}

	room := product.Stock - current
	if room <= 0 {
		s.log.Warnw("cart add ignored, no stock left",
			"product_id", productID, "stock", product.Stock, "in_cart", current)
		return s.copyCart(), nil
	}
	if qty > room {
		s.log.Warnw("cart add clamped to stock",
			"product_id", productID, "requested", qty, "added", room)
		qty = room
	}

	if item != nil {
		item.Quantity = current + qty
		item.Product = product
	} else {
		s.cart.Items = append(s.cart.Items, models.LineItem{
			ProductID: productID,
			Product:   product,
			Quantity:  qty,
		})
	}

	s.recompute(ctx)
	s.notifyChanged()
	return s.copyCart(), nil
}

// RemoveItem deletes the line item entirely. The applied coupon code is kept;
// its discount simply recomputes against the new subtotal, possibly to zero.
func (s *CartStore) RemoveItem(ctx context.Context, productID string) models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeItemLocked(ctx, productID)
	return s.copyCart()
}

// SetQuantity sets a line item's quantity, clamped to the product's stock.
// A quantity of zero or less removes the item. Idempotent.
func (s *CartStore) SetQuantity(ctx context.Context, productID string, qty int) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty <= 0 {
		s.removeItemLocked(ctx, productID)
		return s.copyCart(), nil
	}

	item := s.findItem(productID)
	if item == nil {
		return s.copyCart(), fmt.Errorf("product %s: %w", productID, ErrItemNotInCart)
	}

	product, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return s.copyCart(), fmt.Errorf("catalog lookup for %s: %w", productID, err)
	}
	if product == nil {
		// dangling reference, recompute drops it
		s.recompute(ctx)
		s.notifyChanged()
		return s.copyCart(), nil
	}

	if qty > product.Stock {
		s.log.Warnw("cart quantity clamped to stock",
			"product_id", productID, "requested", qty, "stock", product.Stock)
		qty = product.Stock
	}
	item.Quantity = qty
	item.Product = product

	s.recompute(ctx)
	s.notifyChanged()
	return s.copyCart(), nil
}

// ApplyCoupon validates a promotional code against the current cart and
// wall-clock time. On success the coupon's code and kind/value are stored and
// the totals recompute; on failure the cart is left untouched and the typed
// reason is returned (a *CouponError). Lookup faults come back as ordinary
// errors.
func (s *CartStore) ApplyCoupon(ctx context.Context, code string) (models.Cart, error) {
	normalized := models.NormalizeCouponCode(code)

	s.mu.Lock()
	defer s.mu.Unlock()

	coupon, err := s.coupons.GetByCode(ctx, normalized)
	if err != nil {
		return s.copyCart(), fmt.Errorf("coupon lookup for %s: %w", normalized, err)
	}

	var categoryIDs []string
	if coupon != nil {
		categoryIDs = coupon.CategoryIDs()
	}
	applied, cerr := ValidateCoupon(coupon, calc.DiscountBase(s.cart.Items, categoryIDs), time.Now())
	if cerr != nil {
		return s.copyCart(), cerr
	}

	s.coupon = applied
	s.cart.AppliedCouponCode = applied.Code
	s.recompute(ctx)
	s.notifyChanged()
	return s.copyCart(), nil
}

// Clear empties the cart, drops the coupon and asks persistence to delete the
// remote document. Used after checkout hands the cart over to an order.
func (s *CartStore) Clear(ctx context.Context) models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = models.Cart{}
	s.coupon = nil
	if s.hook != nil {
		s.hook.CartCleared()
	}
	return s.copyCart()
}

// Replace hydrates the store from a persisted snapshot: every product is
// re-resolved against the catalog (dangling references dropped, quantities
// clamped to current stock) and the coupon code is re-validated in full,
// since its validity window or usage may have changed while the snapshot was
// at rest. A coupon that no longer validates is dropped with a warning.
//
// Replace does not notify the sync hook; the synchronizer persists the result
// itself after a load.
func (s *CartStore) Replace(ctx context.Context, snap models.CartSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = models.Cart{}
	s.coupon = nil

	for _, si := range snap.Items {
		if si.Quantity < 1 {
			continue
		}
		product, err := s.catalog.GetByID(ctx, si.ProductID)
		if err != nil {
			s.log.Errorw("catalog lookup failed during cart restore, dropping line",
				"product_id", si.ProductID, "error", err)
			continue
		}
		if product == nil {
			s.log.Warnw("dropping restored cart line, product gone", "product_id", si.ProductID)
			continue
		}
		qty := si.Quantity
		if qty > product.Stock {
			qty = product.Stock
		}
		if qty < 1 {
			continue
		}
		s.cart.Items = append(s.cart.Items, models.LineItem{
			ProductID: si.ProductID,
			Product:   product,
			Quantity:  qty,
		})
	}

	if snap.AppliedCouponCode != "" {
		code := models.NormalizeCouponCode(snap.AppliedCouponCode)
		coupon, err := s.coupons.GetByCode(ctx, code)
		if err != nil {
			s.log.Errorw("coupon lookup failed during cart restore, dropping coupon",
				"code", code, "error", err)
		} else {
			var categoryIDs []string
			if coupon != nil {
				categoryIDs = coupon.CategoryIDs()
			}
			applied, cerr := ValidateCoupon(coupon, calc.DiscountBase(s.cart.Items, categoryIDs), time.Now())
			if cerr != nil {
				s.log.Warnw("restored coupon no longer valid, dropping",
					"code", code, "reason", cerr.Reason)
			} else {
				s.coupon = applied
				s.cart.AppliedCouponCode = applied.Code
			}
		}
	}

	s.recompute(ctx)
}

func (s *CartStore) removeItemLocked(ctx context.Context, productID string) {
	kept := s.cart.Items[:0]
	for i := range s.cart.Items {
		if s.cart.Items[i].ProductID != productID {
			kept = append(kept, s.cart.Items[i])
		}
	}
	s.cart.Items = kept

	s.recompute(ctx)
	s.notifyChanged()
}

// recompute re-resolves every line item's product (fresh price and stock),
// drops lines whose product disappeared, clamps quantities to stock and
// recalculates the totals. The coupon discount comes from the cached
// kind/value; no coupon lookup happens here.
func (s *CartStore) recompute(ctx context.Context) {
	kept := s.cart.Items[:0]
	for i := range s.cart.Items {
		item := s.cart.Items[i]

		product, err := s.catalog.GetByID(ctx, item.ProductID)
		if err != nil {
			s.log.Errorw("catalog lookup failed during recompute, keeping last known price",
				"product_id", item.ProductID, "error", err)
			if item.Product != nil {
				kept = append(kept, item)
			}
			continue
		}
		if product == nil {
			s.log.Warnw("dropping cart line, product gone", "product_id", item.ProductID)
			continue
		}

		item.Product = product
		if item.Quantity > product.Stock {
			s.log.Warnw("cart quantity clamped to stock during recompute",
				"product_id", item.ProductID, "was", item.Quantity, "stock", product.Stock)
			item.Quantity = product.Stock
		}
		if item.Quantity < 1 {
			continue
		}
		kept = append(kept, item)
	}
	s.cart.Items = kept

	s.cart.Totals = calc.ComputeTotals(s.cart.Items, s.coupon, s.pricing)
}

func (s *CartStore) findItem(productID string) *models.LineItem {
	for i := range s.cart.Items {
		if s.cart.Items[i].ProductID == productID {
			return &s.cart.Items[i]
		}
	}
	return nil
}

func (s *CartStore) notifyChanged() {
	if s.hook != nil {
		s.hook.CartChanged(s.snapshot())
	}
}

func (s *CartStore) snapshot() models.CartSnapshot {
	snap := models.CartSnapshot{AppliedCouponCode: s.cart.AppliedCouponCode}
	for i := range s.cart.Items {
		snap.Items = append(snap.Items, models.SnapshotItem{
			ProductID: s.cart.Items[i].ProductID,
			Quantity:  s.cart.Items[i].Quantity,
		})
	}
	return snap
}

func (s *CartStore) copyCart() models.Cart {
	out := s.cart
	out.Items = make([]models.LineItem, len(s.cart.Items))
	copy(out.Items, s.cart.Items)
	return out
}
