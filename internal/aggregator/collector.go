package aggregator

import (
	"context"
	"time"

	log "github.com/golang/glog"

	"github.com/hugomfc/ttmon/internal/domain"
)

// Publisher receives each tick's outcome at the metrics boundary.
type Publisher interface {
	// Publish applies a snapshot; expired lists identifiers whose grace
	// period elapsed this tick and whose series must be removed.
	Publish(snapshot domain.Snapshot, expired []domain.Identifier)

	// TickError records a tick whose snapshot could not be produced.
	TickError()
}

// Collector drives the aggregator on a fixed interval. Ticks never overlap:
// one pass runs to completion, its state is swapped in, the snapshot is
// published, and only then does the loop sleep or observe cancellation.
type Collector struct {
	agg       *Aggregator
	publisher Publisher
	interval  time.Duration
	state     domain.State
}

func NewCollector(agg *Aggregator, publisher Publisher, interval time.Duration) *Collector {
	return &Collector{
		agg:       agg,
		publisher: publisher,
		interval:  interval,
		state:     domain.State{},
	}
}

// Run ticks immediately, then on every interval until ctx is cancelled.
func (c *Collector) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.tick(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.tick(ctx, now)
		}
	}
}

func (c *Collector) tick(ctx context.Context, now time.Time) {
	snapshot, next, err := c.agg.RunOnce(ctx, c.state, now)
	if err != nil {
		log.Warningf("tick skipped, keeping previous state: %v", err)
		c.publisher.TickError()
		return
	}

	expired := expiredIdentifiers(c.state, next)
	c.state = next
	c.publisher.Publish(snapshot, expired)
}

func expiredIdentifiers(prev, next domain.State) []domain.Identifier {
	var expired []domain.Identifier
	for id := range prev {
		if _, ok := next[id]; !ok {
			expired = append(expired, id)
		}
	}
	return expired
}
