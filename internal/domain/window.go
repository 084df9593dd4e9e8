package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNotWindowKey = errors.New("not a window key")
)

// WindowKey identifies one timestamped counting window written by the rate
// limiter, stored as a hash under "<timestamp>:<window_size>:<entity>".
type WindowKey struct {
	Timestamp  int64
	WindowSize int64
	Entity     string
}

// ParseWindowKey parses a store key of the form "<timestamp>:<window_size>:<entity>".
// The entity segment is greedy and may itself contain the delimiter.
func ParseWindowKey(key string) (WindowKey, error) {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) != 3 || parts[2] == "" {
		return WindowKey{}, fmt.Errorf("%w: %q", ErrNotWindowKey, key)
	}

	timestamp, err := strconv.ParseUint(parts[0], 10, 63)
	if err != nil {
		return WindowKey{}, fmt.Errorf("%w: %q", ErrNotWindowKey, key)
	}
	windowSize, err := strconv.ParseUint(parts[1], 10, 63)
	if err != nil {
		return WindowKey{}, fmt.Errorf("%w: %q", ErrNotWindowKey, key)
	}

	return WindowKey{
		Timestamp:  int64(timestamp),
		WindowSize: int64(windowSize),
		Entity:     parts[2],
	}, nil
}

// Identifier names the (window_size, entity) pair that persists across
// successive window rollovers for the same rate-limited entity.
func (k WindowKey) Identifier() Identifier {
	return Identifier(fmt.Sprintf("%d-%s", k.WindowSize, k.Entity))
}

// Identifier is the serialized "<window_size>-<entity>" pair.
type Identifier string

// WindowSize returns the window-size segment of the identifier.
func (id Identifier) WindowSize() string {
	size, _, _ := strings.Cut(string(id), "-")
	return size
}

// Entity returns the entity segment of the identifier. Entities containing
// "-" are preserved because the window size never contains one.
func (id Identifier) Entity() string {
	_, entity, _ := strings.Cut(string(id), "-")
	return entity
}

// SelectedWindow is the single window chosen for an identifier in one tick:
// the raw store key plus its parsed form. Key is kept verbatim so fetches
// always address exactly what the scan returned.
type SelectedWindow struct {
	Key    string
	Window WindowKey
}
