package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/webshop-go/storefront/app/models"
)

type fakeLocalCache struct {
	mu       sync.Mutex
	carts    map[string]models.CartSnapshot
	writes   int
	readErr  error
	writeErr error
}

func newFakeLocalCache() *fakeLocalCache {
	return &fakeLocalCache{carts: make(map[string]models.CartSnapshot)}
}

func (f *fakeLocalCache) Read(clientID string) (*models.CartSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	snap, ok := f.carts[clientID]
	if !ok {
		return nil, nil
	}
	out := snap
	return &out, nil
}

func (f *fakeLocalCache) Write(clientID string, snap models.CartSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.carts[clientID] = snap
	f.writes++
	return nil
}

func (f *fakeLocalCache) Delete(clientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, clientID)
	return nil
}

func (f *fakeLocalCache) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

type fakeRemoteStore struct {
	mu      sync.Mutex
	carts   map[string]models.CartSnapshot
	saves   int
	deletes int
	loadErr error
	saveErr error
}

func newFakeRemoteStore() *fakeRemoteStore {
	return &fakeRemoteStore{carts: make(map[string]models.CartSnapshot)}
}

func (f *fakeRemoteStore) Load(ctx context.Context, identityID string) (*models.CartSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	snap, ok := f.carts[identityID]
	if !ok {
		return nil, nil
	}
	out := snap
	return &out, nil
}

func (f *fakeRemoteStore) Save(ctx context.Context, identityID string, snap models.CartSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.carts[identityID] = snap
	f.saves++
	return nil
}

func (f *fakeRemoteStore) Delete(ctx context.Context, identityID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, identityID)
	f.deletes++
	return nil
}

func (f *fakeRemoteStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func (f *fakeRemoteStore) get(identityID string) (models.CartSnapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, ok := f.carts[identityID]
	return snap, ok
}

const testDebounce = 20 * time.Millisecond

// settle waits out the debounce window plus slack.
func settle() { time.Sleep(5 * testDebounce) }

func newSyncFixture(catalog *fakeCatalog, coupons *fakeCoupons) (*CartStore, *CartSynchronizer, *fakeLocalCache, *fakeRemoteStore) {
	store := newTestStore(catalog, coupons)
	local := newFakeLocalCache()
	remote := newFakeRemoteStore()
	syncer := NewCartSynchronizer("client-1", store, local, remote, testDebounce, store.log)
	return store, syncer, local, remote
}

func TestSynchronizer_LocalMirrorAlwaysWritten(t *testing.T) {
	catalog := &fakeCatalog{products: map[string]*models.Product{
		"p1": testProduct("p1", "10.00", 10),
	}}
	store, _, local, remote := newSyncFixture(catalog, &fakeCoupons{})

	ctx := context.Background()
	if _, err := store.AddItem(ctx, "p1", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := store.AddItem(ctx, "p1", 1); err != nil {
		t.Fatal(err)
	}

	if local.writeCount() != 2 {
		t.Errorf("local writes = %d, want 2 (one per mutation)", local.writeCount())
	}
	settle()
	// anonymous session: nothing may reach the remote store
	if remote.saveCount() != 0 {
		t.Errorf("remote saves = %d, want 0 while anonymous", remote.saveCount())
	}

	snap, err := local.Read("client-1")
	if err != nil || snap == nil {
		t.Fatalf("local cache empty after mutations: %v", err)
	}
	if len(snap.Items) != 1 || snap.Items[0].Quantity != 2 {
		t.Errorf("cached snapshot = %+v, want p1 x2", snap.Items)
	}
}

func TestSynchronizer_DebounceCollapsesWrites(t *testing.T) {
	catalog := &fakeCatalog{products: map[string]*models.Product{
		"p1": testProduct("p1", "10.00", 100),
	}}
	store, syncer, _, remote := newSyncFixture(catalog, &fakeCoupons{})

	ctx := context.Background()
	syncer.SignIn(ctx, "user-1")
	settle()
	baseline := remote.saveCount()

	// rapid quantity edits inside one debounce window
	if _, err := store.AddItem(ctx, "p1", 1); err != nil {
		t.Fatal(err)
	}
	for qty := 2; qty <= 5; qty++ {
		if _, err := store.SetQuantity(ctx, "p1", qty); err != nil {
			t.Fatal(err)
		}
	}
	settle()

	if got := remote.saveCount() - baseline; got != 1 {
		t.Errorf("remote saves = %d, want 1 (debounced)", got)
	}
	snap, ok := remote.get("user-1")
	if !ok || len(snap.Items) != 1 || snap.Items[0].Quantity != 5 {
		t.Errorf("remote snapshot = %+v, want final state p1 x5", snap.Items)
	}
}

func TestSynchronizer_ClearDeletesRemote(t *testing.T) {
	catalog := &fakeCatalog{products: map[string]*models.Product{
		"p1": testProduct("p1", "10.00", 10),
	}}
	store, syncer, local, remote := newSyncFixture(catalog, &fakeCoupons{})

	ctx := context.Background()
	syncer.SignIn(ctx, "user-1")
	if _, err := store.AddItem(ctx, "p1", 2); err != nil {
		t.Fatal(err)
	}
	syncer.Flush()
	if _, ok := remote.get("user-1"); !ok {
		t.Fatal("remote cart missing after flush")
	}

	store.Clear(ctx)
	settle()

	if _, ok := remote.get("user-1"); ok {
		t.Error("remote cart document still present after clear; absence expected")
	}
	if snap, _ := local.Read("client-1"); snap != nil {
		t.Errorf("local cache still holds %+v after clear", snap)
	}
}

func TestSynchronizer_SignInMergesCarts(t *testing.T) {
	catalog := &fakeCatalog{products: map[string]*models.Product{
		"p1": testProduct("p1", "10.00", 4),
		"p2": testProduct("p2", "20.00", 10),
		"p3": testProduct("p3", "5.00", 10),
	}}
	coupons := &fakeCoupons{coupons: map[string]*models.Coupon{
		"SAVE10": liveCoupon("SAVE10", models.CouponKindPercentage, "10"),
	}}
	store, syncer, _, remote := newSyncFixture(catalog, coupons)

	ctx := context.Background()
	// anonymous cart built before login
	if _, err := store.AddItem(ctx, "p1", 3); err != nil {
		t.Fatal(err)
	}
	if _, err := store.AddItem(ctx, "p2", 1); err != nil {
		t.Fatal(err)
	}
	// saved cart from a previous authenticated session
	remote.carts["user-1"] = models.CartSnapshot{
		Items: []models.SnapshotItem{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p3", Quantity: 1},
		},
		AppliedCouponCode: "SAVE10",
	}

	syncer.SignIn(ctx, "user-1")

	cart := store.Cart()
	got := map[string]int{}
	for _, item := range cart.Items {
		got[item.ProductID] = item.Quantity
	}
	// union by product id; shared quantities sum (3+2) and clamp to stock 4
	if got["p1"] != 4 {
		t.Errorf("p1 quantity = %d, want 4", got["p1"])
	}
	if got["p2"] != 1 || got["p3"] != 1 {
		t.Errorf("merged cart = %v, want p2 x1 and p3 x1 kept", got)
	}
	if cart.AppliedCouponCode != "SAVE10" {
		t.Errorf("coupon = %q, want the remote SAVE10", cart.AppliedCouponCode)
	}

	settle()
	snap, ok := remote.get("user-1")
	if !ok {
		t.Fatal("merged cart never persisted remotely")
	}
	if len(snap.Items) != 3 {
		t.Errorf("persisted merge has %d items, want 3", len(snap.Items))
	}
}

func TestSynchronizer_RemoteLoadFailureFallsBackToLocal(t *testing.T) {
	catalog := &fakeCatalog{products: map[string]*models.Product{
		"p1": testProduct("p1", "10.00", 10),
	}}
	store, syncer, _, remote := newSyncFixture(catalog, &fakeCoupons{})

	ctx := context.Background()
	if _, err := store.AddItem(ctx, "p1", 2); err != nil {
		t.Fatal(err)
	}

	remote.mu.Lock()
	remote.loadErr = errors.New("remote store unreachable")
	remote.mu.Unlock()

	syncer.SignIn(ctx, "user-1")

	cart := store.Cart()
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("local cart lost on failed remote load: %+v", cart.Items)
	}
}

func TestSynchronizer_RoundTrip(t *testing.T) {
	catalog := &fakeCatalog{products: map[string]*models.Product{
		"p1": testProduct("p1", "10.00", 10),
	}}
	coupons := &fakeCoupons{coupons: map[string]*models.Coupon{
		"SAVE10": liveCoupon("SAVE10", models.CouponKindPercentage, "10"),
	}}
	store, syncer, _, remote := newSyncFixture(catalog, coupons)

	ctx := context.Background()
	syncer.SignIn(ctx, "user-1")
	if _, err := store.AddItem(ctx, "p1", 2); err != nil {
		t.Fatal(err)
	}
	if _, err := store.ApplyCoupon(ctx, "SAVE10"); err != nil {
		t.Fatal(err)
	}
	syncer.Flush()

	// a fresh session for the same identity reproduces the cart
	store2 := newTestStore(catalog, coupons)
	local2 := newFakeLocalCache()
	sync2 := NewCartSynchronizer("client-2", store2, local2, remote, testDebounce, store2.log)
	sync2.SignIn(ctx, "user-1")

	cart := store2.Cart()
	if len(cart.Items) != 1 || cart.Items[0].ProductID != "p1" || cart.Items[0].Quantity != 2 {
		t.Fatalf("items not reproduced: %+v", cart.Items)
	}
	if cart.AppliedCouponCode != "SAVE10" {
		t.Errorf("coupon code = %q, want SAVE10", cart.AppliedCouponCode)
	}
	if !cart.Discount.Equal(dec("2.00")) {
		t.Errorf("discount re-derived = %s, want 2.00 (10%% of 20.00)", cart.Discount)
	}
}

func TestSynchronizer_SignOutStopsRemoteWrites(t *testing.T) {
	catalog := &fakeCatalog{products: map[string]*models.Product{
		"p1": testProduct("p1", "10.00", 10),
	}}
	store, syncer, local, remote := newSyncFixture(catalog, &fakeCoupons{})

	ctx := context.Background()
	syncer.SignIn(ctx, "user-1")
	if _, err := store.AddItem(ctx, "p1", 1); err != nil {
		t.Fatal(err)
	}
	syncer.SignOut()
	saves := remote.saveCount()

	if _, err := store.AddItem(ctx, "p1", 1); err != nil {
		t.Fatal(err)
	}
	settle()

	if remote.saveCount() != saves {
		t.Errorf("remote saves grew after sign-out: %d -> %d", saves, remote.saveCount())
	}
	if snap, _ := local.Read("client-1"); snap == nil || snap.Items[0].Quantity != 2 {
		t.Errorf("local cache not the working set after sign-out: %+v", snap)
	}
}

func TestMergeSnapshots(t *testing.T) {
	remote := &models.CartSnapshot{
		Items:             []models.SnapshotItem{{ProductID: "p1", Quantity: 2}},
		AppliedCouponCode: "REMOTE",
	}
	local := &models.CartSnapshot{
		Items:             []models.SnapshotItem{{ProductID: "p1", Quantity: 1}, {ProductID: "p2", Quantity: 3}},
		AppliedCouponCode: "LOCAL",
	}

	merged := mergeSnapshots(remote, local)
	if len(merged.Items) != 2 {
		t.Fatalf("merged items = %+v, want 2 lines", merged.Items)
	}
	if merged.Items[0].ProductID != "p1" || merged.Items[0].Quantity != 3 {
		t.Errorf("p1 = %+v, want quantity 3 first", merged.Items[0])
	}
	if merged.AppliedCouponCode != "REMOTE" {
		t.Errorf("coupon = %q, remote must win", merged.AppliedCouponCode)
	}

	merged = mergeSnapshots(nil, local)
	if len(merged.Items) != 2 || merged.AppliedCouponCode != "LOCAL" {
		t.Errorf("local-only merge wrong: %+v", merged)
	}

	merged = mergeSnapshots(&models.CartSnapshot{}, local)
	if merged.AppliedCouponCode != "LOCAL" {
		t.Errorf("empty remote coupon must fall back to local, got %q", merged.AppliedCouponCode)
	}
}
