package repositories

import (
	"context"
	"sync"
	"time"

	"judicial-archive/internal/models"
)

const (
	// UserCacheTTL bounds how long a role or activation change can take to
	// reach authenticated requests.
	UserCacheTTL = 30 * time.Second
)

// UserCache memoizes user lookups made on every authenticated request.
type UserCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	cache map[string]*cachedUser
}

type cachedUser struct {
	user      models.User
	expiresAt time.Time
}

func NewUserCache(ttl time.Duration) *UserCache {
	if ttl <= 0 {
		ttl = UserCacheTTL
	}
	return &UserCache{
		ttl:   ttl,
		cache: make(map[string]*cachedUser),
	}
}

// Get returns a cached user if present and not expired.
func (c *UserCache) Get(id string) (*models.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if cached, ok := c.cache[id]; ok && time.Now().Before(cached.expiresAt) {
		u := cached.user
		return &u, true
	}
	return nil, false
}

func (c *UserCache) Set(u *models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[u.ID] = &cachedUser{
		user:      *u,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *UserCache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cache, id)
}

func (c *UserCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]*cachedUser)
}

// Lookup serves id from the cache, falling back to the store on a miss.
func (c *UserCache) Lookup(ctx context.Context, store Store, id string) (*models.User, error) {
	if u, ok := c.Get(id); ok {
		return u, nil
	}
	u, err := store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Set(u)
	return u, nil
}
