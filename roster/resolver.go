/*
resolver.go - On-duty staff resolution

PURPOSE:
  Given a wall-clock instant, computes which staff are on duty right now.
  This output gates task assignment: an incoming deletion request with no
  named technician goes to whoever the resolver says is standing by.

ALGORITHM:
  1. Convert the instant to the clinic's local timezone
  2. today = day of month, yesterday = day of month of (instant - 24h)
  3. If the store holds zero entries for the whole month, report
     StatusNoSchedule (distinct from "nobody on duty")
  4. Fetch entries for {today, yesterday}, apply the duty rule table
  5. Return the deduplicated, sorted set of matching staff

PURITY:
  The resolver never writes. Recomputing at the same instant over the
  same roster always yields the same result; cache.go exploits this.

SEE ALSO:
  - rules.go: the duty window table
  - cache.go: bounded-staleness memoization
*/
package roster

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Resolver computes the on-duty staff set from the current roster.
type Resolver struct {
	Store  Store
	Config Config
}

// NewResolver wires a resolver over the given store.
func NewResolver(st Store, cfg Config) *Resolver {
	return &Resolver{Store: st, Config: cfg}
}

// ActiveStaff resolves the on-duty set at the given instant. The only
// error cause is store unavailability, which is transient and retryable.
func (r *Resolver) ActiveStaff(ctx context.Context, now time.Time) (Result, error) {
	if r.Config.Location != nil {
		now = now.In(r.Config.Location)
	}

	total, err := r.Store.Count(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if total == 0 {
		return Result{Status: StatusNoSchedule}, nil
	}

	q := query{
		today:     now.Day(),
		yesterday: now.AddDate(0, 0, -1).Day(),
		hour:      now.Hour(),
	}

	entries, err := r.Store.EntriesForDays(ctx, q.today, q.yesterday)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	seen := make(map[PersonID]bool)
	var staff []PersonID
	for _, e := range entries {
		if seen[e.Person] {
			continue
		}
		if onDuty(e, q, r.Config) {
			seen[e.Person] = true
			staff = append(staff, e.Person)
		}
	}

	sort.Slice(staff, func(i, j int) bool { return staff[i] < staff[j] })

	// Staff may legitimately be empty here: the roster is loaded but
	// nobody's window covers this hour. Callers must not confuse that
	// with StatusNoSchedule.
	return Result{Status: StatusOK, Staff: staff}, nil
}
