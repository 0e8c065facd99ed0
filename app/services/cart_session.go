package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/webshop-go/storefront/app/configs"
)

// CartSession pairs a cart store with its persistence synchronizer. One
// session per browser client id; the pair is the single logical owner of the
// cart state. Two tabs sharing a client id share the session, and concurrent
// edits of the same remote cart from different devices stay last-writer-wins.
type CartSession struct {
	Store *CartStore
	Sync  *CartSynchronizer
}

// CartSessionManager owns all live cart sessions. It is constructed once at
// wiring time and injected into handlers; there is no package-level cart
// state.
type CartSessionManager struct {
	catalog  CatalogLookup
	coupons  CouponLookup
	local    LocalCartCache
	remote   RemoteCartStore
	pricing  configs.PricingConfig
	debounce time.Duration
	log      *zap.SugaredLogger

	mu       sync.Mutex
	sessions map[string]*CartSession
}

func NewCartSessionManager(catalog CatalogLookup, coupons CouponLookup, local LocalCartCache, remote RemoteCartStore, pricing configs.PricingConfig, debounce time.Duration, log *zap.SugaredLogger) *CartSessionManager {
	return &CartSessionManager{
		catalog:  catalog,
		coupons:  coupons,
		local:    local,
		remote:   remote,
		pricing:  pricing,
		debounce: debounce,
		log:      log,
		sessions: make(map[string]*CartSession),
	}
}

// Session returns the cart session owned by the given browser client id,
// creating it on first use. A new session is seeded from the local cache so
// carts survive server restarts of anonymous sessions that still hold a
// cookie. When the request already carries an authenticated identity (a
// cookie that outlived the server process) the session is signed in on the
// spot, so the remote cart is restored without waiting for the next login.
func (m *CartSessionManager) Session(ctx context.Context, clientID, identityID string) *CartSession {
	m.mu.Lock()
	sess, ok := m.sessions[clientID]
	if !ok {
		store := NewCartStore(m.catalog, m.coupons, m.pricing, m.log)
		synchronizer := NewCartSynchronizer(clientID, store, m.local, m.remote, m.debounce, m.log)

		if snap, err := m.local.Read(clientID); err != nil {
			m.log.Errorw("local cart cache read failed, starting empty",
				"client_id", clientID, "error", err)
		} else if snap != nil {
			store.Replace(ctx, *snap)
		}

		sess = &CartSession{Store: store, Sync: synchronizer}
		m.sessions[clientID] = sess
	}
	m.mu.Unlock()

	if identityID != "" && sess.Sync.Identity() != identityID {
		sess.Sync.SignIn(ctx, identityID)
	}
	return sess
}

// SignIn transitions the client's session to the authenticated identity.
func (m *CartSessionManager) SignIn(ctx context.Context, clientID, identityID string) {
	m.Session(ctx, clientID, identityID)
}

// SignOut reverts the client's session to anonymous, local-only persistence.
func (m *CartSessionManager) SignOut(ctx context.Context, clientID string) {
	m.Session(ctx, clientID, "").Sync.SignOut()
}

// Shutdown flushes every pending remote write. Called on server stop.
func (m *CartSessionManager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*CartSession, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.mu.Unlock()

	for _, sess := range sessions {
		sess.Sync.Flush()
	}
}
