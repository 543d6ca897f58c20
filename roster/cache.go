/*
cache.go - Bounded-staleness memoization of duty resolution

PURPOSE:
  The resolver is queried on every page render but its answer only
  changes at hour granularity (or when a new roster is imported). This
  cache serves the last result for a short, bounded window and is a pure
  performance layer: disabling it must not change any answer.

INVALIDATION:
  Two triggers, whichever comes first:
  - TTL expiry (default 30s)
  - a successful ingestion bumping the generation counter, so a reader
    never sees a result computed against the pre-import roster

SEE ALSO:
  - resolver.go: the computation being memoized
  - ingest.go: calls Invalidate after every successful replace
*/
package roster

import (
	"context"
	"sync"
	"time"
)

// DefaultCacheTTL bounds how stale a served duty result may be.
const DefaultCacheTTL = 30 * time.Second

// CachedResolver wraps a Resolver with TTL + generation invalidation.
type CachedResolver struct {
	Resolver *Resolver
	TTL      time.Duration

	mu         sync.Mutex
	generation uint64
	cachedGen  uint64
	cachedAt   time.Time
	cached     Result
	valid      bool
}

// NewCachedResolver wraps the resolver with the default TTL.
func NewCachedResolver(r *Resolver) *CachedResolver {
	return &CachedResolver{Resolver: r, TTL: DefaultCacheTTL}
}

// Invalidate discards any cached result. Called by ingestion after each
// successful atomic replace.
func (c *CachedResolver) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.valid = false
}

// ActiveStaff serves the cached result while it is fresh, otherwise
// recomputes. Errors are never cached.
func (c *CachedResolver) ActiveStaff(ctx context.Context, now time.Time) (Result, error) {
	c.mu.Lock()
	// Inspection queries may ask about instants before the cached one;
	// a negative elapsed must miss, not hit.
	elapsed := now.Sub(c.cachedAt)
	if c.valid && c.cachedGen == c.generation && elapsed >= 0 && elapsed < c.ttl() {
		res := c.cached
		c.mu.Unlock()
		return res, nil
	}
	gen := c.generation
	c.mu.Unlock()

	res, err := c.Resolver.ActiveStaff(ctx, now)
	if err != nil {
		return Result{}, err
	}

	c.mu.Lock()
	// Only publish if no ingestion landed while we were computing.
	if c.generation == gen {
		c.cached = res
		c.cachedAt = now
		c.cachedGen = gen
		c.valid = true
	}
	c.mu.Unlock()

	return res, nil
}

func (c *CachedResolver) ttl() time.Duration {
	if c.TTL <= 0 {
		return DefaultCacheTTL
	}
	return c.TTL
}
