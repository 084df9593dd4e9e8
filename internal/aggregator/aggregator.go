package aggregator

import (
	"context"
	"strconv"
	"time"

	"github.com/antonmedv/expr/vm"
	log "github.com/golang/glog"

	"github.com/hugomfc/ttmon/internal/domain"
	"github.com/hugomfc/ttmon/internal/storage"
)

// Aggregator turns one discovery pass over the store into a metrics snapshot.
// It holds no cross-tick state itself; the previous State is passed into
// RunOnce and the successor State is returned, which keeps the decay rule
// testable against synthetic histories.
type Aggregator struct {
	store   storage.Storage
	pattern string
	filter  *vm.Program
	grace   time.Duration
}

func New(store storage.Storage, pattern string, filter *vm.Program, grace time.Duration) *Aggregator {
	return &Aggregator{
		store:   store,
		pattern: pattern,
		filter:  filter,
		grace:   grace,
	}
}

// RunOnce performs a single tick: discover windows, sum their counters, and
// reconcile with the previous state under the grace-period rule.
//
// A scan failure aborts the tick; prev is returned untouched so the next tick
// resumes from the same state. A fetch failure for a single window reports
// zero for that identifier only.
func (a *Aggregator) RunOnce(ctx context.Context, prev domain.State, now time.Time) (domain.Snapshot, domain.State, error) {
	selected, err := Discover(ctx, a.store, a.pattern, a.filter)
	if err != nil {
		return domain.Snapshot{}, prev, err
	}

	snapshot := domain.Snapshot{Counts: make(map[domain.Identifier]int64, len(selected))}
	next := make(domain.State, len(selected))

	for id, window := range selected {
		count, err := a.sumWindow(ctx, window.Key)
		if err != nil {
			log.Warningf("fetch %q failed, reporting 0 for %s this tick: %v", window.Key, id, err)
			count = 0
		}
		snapshot.Counts[id] = count
		snapshot.Total += count
		// The identifier was live in the scan even if its contents were
		// unreadable, so LastSeen is refreshed either way.
		next[id] = domain.Observation{Count: count, LastSeen: now}
	}

	for id, obs := range prev {
		if _, ok := next[id]; ok {
			continue
		}
		if now.Sub(obs.LastSeen) > a.grace {
			continue
		}
		// Window vanished but the grace period has not elapsed: keep the
		// identifier visible at zero without refreshing LastSeen, so expiry
		// is measured from true last activity.
		snapshot.Counts[id] = 0
		next[id] = domain.Observation{Count: 0, LastSeen: obs.LastSeen}
	}

	return snapshot, next, nil
}

// sumWindow fetches one window hash and sums every field value that parses
// as a non-negative integer. Anything else in the hash is skipped.
func (a *Aggregator) sumWindow(ctx context.Context, key string) (int64, error) {
	counters, err := a.store.GetCounters(ctx, key)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, raw := range counters {
		n, err := strconv.ParseUint(raw, 10, 63)
		if err != nil {
			continue
		}
		total += int64(n)
	}
	return total, nil
}
