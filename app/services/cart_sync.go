package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/webshop-go/storefront/app/models"
)

const remoteCallTimeout = 5 * time.Second

// LocalCartCache is the browser-scoped fast cache: the fallback source of
// truth for anonymous sessions and for remote-store outages. A missing entry
// is (nil, nil).
type LocalCartCache interface {
	Read(clientID string) (*models.CartSnapshot, error)
	Write(clientID string, snap models.CartSnapshot) error
	Delete(clientID string) error
}

// RemoteCartStore is the durable store keyed by authenticated identity. Save
// overwrites the whole document; there is no field-level patching. A missing
// cart is (nil, nil).
type RemoteCartStore interface {
	Load(ctx context.Context, identityID string) (*models.CartSnapshot, error)
	Save(ctx context.Context, identityID string, snap models.CartSnapshot) error
	Delete(ctx context.Context, identityID string) error
}

// CartSynchronizer mirrors one CartStore into the local cache on every change
// and, while a session is authenticated, into the remote store. Remote writes
// are debounced so rapid quantity edits collapse into a single write of the
// final state; a newer change resets the timer, implicitly superseding the
// pending one. Remote failures degrade to local-only behavior and are never
// surfaced to the mutation path.
type CartSynchronizer struct {
	clientID string
	store    *CartStore
	local    LocalCartCache
	remote   RemoteCartStore
	debounce time.Duration
	log      *zap.SugaredLogger

	mu         sync.Mutex
	identityID string
	loading    bool
	timer      *time.Timer
	pending    *models.CartSnapshot
}

func NewCartSynchronizer(clientID string, store *CartStore, local LocalCartCache, remote RemoteCartStore, debounce time.Duration, log *zap.SugaredLogger) *CartSynchronizer {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	s := &CartSynchronizer{
		clientID: clientID,
		store:    store,
		local:    local,
		remote:   remote,
		debounce: debounce,
		log:      log,
	}
	store.SetSyncHook(s)
	return s
}

// CartChanged mirrors the snapshot locally, unconditionally and
// synchronously, then schedules a debounced remote save when a session is
// authenticated. Outbound syncing is suppressed while a sign-in load is in
// flight so stale local state cannot overwrite the just-fetched remote cart.
func (s *CartSynchronizer) CartChanged(snap models.CartSnapshot) {
	if err := s.local.Write(s.clientID, snap); err != nil {
		s.log.Errorw("local cart cache write failed", "client_id", s.clientID, "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identityID == "" || s.loading {
		return
	}
	s.pending = &snap
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.flushPending)
}

// CartCleared removes the cart from both substrates. The remote document is
// deleted, not left as an empty record: "no cart" is absence.
func (s *CartSynchronizer) CartCleared() {
	if err := s.local.Delete(s.clientID); err != nil {
		s.log.Errorw("local cart cache delete failed", "client_id", s.clientID, "error", err)
	}

	s.mu.Lock()
	identity := s.identityID
	loading := s.loading
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if identity == "" || loading {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), remoteCallTimeout)
		defer cancel()
		if err := s.remote.Delete(ctx, identity); err != nil {
			s.log.Errorw("remote cart delete failed", "identity_id", identity, "error", err)
		}
	}()
}

// Identity returns the authenticated identity this synchronizer writes for,
// or the empty string while the session is anonymous.
func (s *CartSynchronizer) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identityID
}

// SignIn switches the session to an authenticated identity. The remote cart
// is fetched (falling back to the local cache on transport failure) and
// merged with the anonymous cart: union by product id, quantities summed and
// later clamped to stock, the remote coupon code winning over the local one.
// The merged result replaces the in-memory cart and is persisted to both
// substrates. Signing in again under the same identity is a no-op; merging
// twice would double the shared quantities.
func (s *CartSynchronizer) SignIn(ctx context.Context, identityID string) {
	s.mu.Lock()
	if s.identityID == identityID {
		s.mu.Unlock()
		return
	}
	s.identityID = identityID
	s.loading = true
	s.mu.Unlock()

	localSnap, err := s.local.Read(s.clientID)
	if err != nil {
		s.log.Errorw("local cart cache read failed", "client_id", s.clientID, "error", err)
		localSnap = nil
	}

	remoteSnap, err := s.remote.Load(ctx, identityID)
	if err != nil {
		s.log.Errorw("remote cart load failed, falling back to local cache",
			"identity_id", identityID, "error", err)
		remoteSnap = nil
	}

	merged := mergeSnapshots(remoteSnap, localSnap)
	s.store.Replace(ctx, merged)

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()

	// persist the merged result; an empty cart stays absent remotely
	snap := s.store.Snapshot()
	if snap.IsEmpty() {
		if err := s.local.Write(s.clientID, snap); err != nil {
			s.log.Errorw("local cart cache write failed", "client_id", s.clientID, "error", err)
		}
		return
	}
	s.CartChanged(snap)
}

// SignOut flushes any pending remote write and reverts to local-only
// persistence. The local cache remains the working set.
func (s *CartSynchronizer) SignOut() {
	s.Flush()
	s.mu.Lock()
	s.identityID = ""
	s.mu.Unlock()
}

// Flush forces a pending debounced write out immediately. Used on sign-out
// and shutdown.
func (s *CartSynchronizer) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.flushPending()
}

func (s *CartSynchronizer) flushPending() {
	s.mu.Lock()
	snap := s.pending
	identity := s.identityID
	s.pending = nil
	s.mu.Unlock()

	if snap == nil || identity == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), remoteCallTimeout)
	defer cancel()
	if err := s.remote.Save(ctx, identity, *snap); err != nil {
		s.log.Errorw("remote cart save failed, keeping local copy",
			"identity_id", identity, "error", err)
	}
}

// mergeSnapshots unions two carts by product id, remote lines first in their
// stored order, local-only lines appended. Quantities of shared products are
// summed; stock clamping happens when the merged snapshot is re-resolved. The
// remote coupon code is preferred.
func mergeSnapshots(remote, local *models.CartSnapshot) models.CartSnapshot {
	var merged models.CartSnapshot

	index := make(map[string]int)
	appendItems := func(snap *models.CartSnapshot) {
		if snap == nil {
			return
		}
		for _, item := range snap.Items {
			if pos, ok := index[item.ProductID]; ok {
				merged.Items[pos].Quantity += item.Quantity
				continue
			}
			index[item.ProductID] = len(merged.Items)
			merged.Items = append(merged.Items, item)
		}
	}
	appendItems(remote)
	appendItems(local)

	if remote != nil && remote.AppliedCouponCode != "" {
		merged.AppliedCouponCode = remote.AppliedCouponCode
	} else if local != nil {
		merged.AppliedCouponCode = local.AppliedCouponCode
	}
	return merged
}
