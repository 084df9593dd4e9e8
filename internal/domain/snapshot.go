package domain

import "time"

// Observation is what the collector remembers about an identifier between
// ticks. LastSeen is the time the identifier last had a live window in the
// store, not the time of the last tick that reported it.
type Observation struct {
	Count    int64
	LastSeen time.Time
}

// State maps each known identifier to its last observation. It is the only
// data carried from one tick to the next; a fresh State is returned by every
// aggregation pass instead of mutating the previous one in place.
type State map[Identifier]Observation

// Snapshot is the externally visible result of one tick. Total always equals
// the sum of Counts; identifiers inside their grace period contribute zero.
type Snapshot struct {
	Total  int64
	Counts map[Identifier]int64
}
