// Package cache keeps tenant plans close to the plan gate so that every
// request does not hit the subscriptions table.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Plan is the cached view of a tenant subscription.
type Plan struct {
	Nombre       string          `json:"nombre"`
	Features     map[string]bool `json:"features"`
	MaxVentasMes int             `json:"max_ventas_mes"` // 0 = unlimited
	VenceAt      *time.Time      `json:"vence_at,omitempty"`
}

type PlanCache interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*Plan, bool, error)
	Set(ctx context.Context, tenantID uuid.UUID, plan *Plan) error
	Invalidate(ctx context.Context, tenantID uuid.UUID) error
}

type NoopPlanCache struct{}

func (NoopPlanCache) Get(_ context.Context, _ uuid.UUID) (*Plan, bool, error) { return nil, false, nil }

func (NoopPlanCache) Set(_ context.Context, _ uuid.UUID, _ *Plan) error { return nil }

func (NoopPlanCache) Invalidate(_ context.Context, _ uuid.UUID) error { return nil }

type memoryEntry struct {
	plan    Plan
	expires time.Time
}

// MemoryPlanCache is a per-process cache, used when Redis is not configured.
type MemoryPlanCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[uuid.UUID]memoryEntry
	now     func() time.Time
}

func NewMemoryPlanCache(ttl time.Duration) *MemoryPlanCache {
	return &MemoryPlanCache{
		ttl:     ttl,
		entries: make(map[uuid.UUID]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryPlanCache) Get(_ context.Context, tenantID uuid.UUID) (*Plan, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[tenantID]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expires) {
		return nil, false, nil
	}
	p := e.plan
	return &p, true, nil
}

func (c *MemoryPlanCache) Set(_ context.Context, tenantID uuid.UUID, plan *Plan) error {
	if plan == nil {
		return nil
	}
	c.mu.Lock()
	c.entries[tenantID] = memoryEntry{plan: *plan, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryPlanCache) Invalidate(_ context.Context, tenantID uuid.UUID) error {
	c.mu.Lock()
	delete(c.entries, tenantID)
	c.mu.Unlock()
	return nil
}
