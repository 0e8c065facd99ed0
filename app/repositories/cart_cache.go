package repositories

import (
	"sync"

	"github.com/webshop-go/storefront/app/models"
)

// CartCache is the process-local snapshot cache backing anonymous sessions
// and remote-store outages, keyed by browser client id. Reads hand out
// copies so callers cannot alias cached state.
type CartCache struct {
	mu    sync.RWMutex
	carts map[string]models.CartSnapshot
}

func NewCartCache() *CartCache {
	return &CartCache{carts: make(map[string]models.CartSnapshot)}
}

func (c *CartCache) Read(clientID string) (*models.CartSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap, ok := c.carts[clientID]
	if !ok {
		return nil, nil
	}
	out := models.CartSnapshot{AppliedCouponCode: snap.AppliedCouponCode}
	out.Items = append(out.Items, snap.Items...)
	return &out, nil
}

func (c *CartCache) Write(clientID string, snap models.CartSnapshot) error {
	stored := models.CartSnapshot{AppliedCouponCode: snap.AppliedCouponCode}
	stored.Items = append(stored.Items, snap.Items...)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.carts[clientID] = stored
	return nil
}

func (c *CartCache) Delete(clientID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.carts, clientID)
	return nil
}
