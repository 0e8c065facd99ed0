package services

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/webshop-go/storefront/app/configs"
	"github.com/webshop-go/storefront/app/models"
)

func newTestManager(catalog *fakeCatalog, coupons *fakeCoupons, local *fakeLocalCache, remote *fakeRemoteStore) *CartSessionManager {
	pricing := configs.PricingConfig{
		FreeShippingMinimum: dec("50.00"),
		FlatShippingFee:     dec("5.95"),
	}
	return NewCartSessionManager(catalog, coupons, local, remote, pricing, testDebounce, zap.NewNop().Sugar())
}

func TestSessionManager_AuthenticatedRequestRestoresRemoteCart(t *testing.T) {
	catalog := &fakeCatalog{products: map[string]*models.Product{
		"p1": testProduct("p1", "10.00", 10),
	}}
	remote := newFakeRemoteStore()
	remote.carts["user-1"] = models.CartSnapshot{
		Items: []models.SnapshotItem{{ProductID: "p1", Quantity: 2}},
	}
	m := newTestManager(catalog, &fakeCoupons{}, newFakeLocalCache(), remote)

	// first request after a process restart: the cookie still carries the
	// user, no login happens, the remote cart must come back anyway
	ctx := context.Background()
	sess := m.Session(ctx, "client-1", "user-1")

	cart := sess.Store.Cart()
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("remote cart not restored: %+v", cart.Items)
	}

	// repeated authenticated requests reuse the session without re-merging
	sess2 := m.Session(ctx, "client-1", "user-1")
	if sess2 != sess {
		t.Fatal("expected the same session for the same client")
	}
	if got := sess2.Store.Cart().Items[0].Quantity; got != 2 {
		t.Errorf("quantity = %d after repeated requests, want 2", got)
	}

	// an explicit sign-in under the same identity is equally a no-op
	m.SignIn(ctx, "client-1", "user-1")
	if got := sess.Store.Cart().Items[0].Quantity; got != 2 {
		t.Errorf("quantity = %d after repeated sign-in, want 2", got)
	}
}

func TestSessionManager_AnonymousSessionSeededFromLocalCache(t *testing.T) {
	catalog := &fakeCatalog{products: map[string]*models.Product{
		"p1": testProduct("p1", "10.00", 10),
	}}
	local := newFakeLocalCache()
	local.carts["client-1"] = models.CartSnapshot{
		Items: []models.SnapshotItem{{ProductID: "p1", Quantity: 3}},
	}
	remote := newFakeRemoteStore()
	m := newTestManager(catalog, &fakeCoupons{}, local, remote)

	sess := m.Session(context.Background(), "client-1", "")

	cart := sess.Store.Cart()
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 3 {
		t.Fatalf("local cart not restored: %+v", cart.Items)
	}
	if remote.saveCount() != 0 {
		t.Errorf("remote saves = %d, want 0 while anonymous", remote.saveCount())
	}
}
