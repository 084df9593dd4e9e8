package aggregator

import (
	"context"
	"fmt"

	"github.com/antonmedv/expr"
	"github.com/antonmedv/expr/vm"
	log "github.com/golang/glog"

	"github.com/hugomfc/ttmon/internal/domain"
	"github.com/hugomfc/ttmon/internal/storage"
)

// WindowInfo is the environment a filter expression is evaluated against,
// one instance per parsed window key.
type WindowInfo struct {
	Entity     string
	WindowSize int64
	Timestamp  int64
}

// CompileFilter compiles an optional boolean expression over WindowInfo,
// e.g. `WindowSize == 60 && Entity startsWith "api"`. An empty expression
// means no filtering.
func CompileFilter(expression string) (*vm.Program, error) {
	if expression == "" {
		return nil, nil
	}
	program, err := expr.Compile(expression, expr.Env(WindowInfo{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", expression, err)
	}
	return program, nil
}

// Discover scans the keyspace for window keys and selects, per identifier,
// the window with the smallest start timestamp. During a rollover several
// windows for one identifier are live at once; the oldest is the one still
// accumulating historical traffic, so it is the one reported. Ties on equal
// timestamps keep the first key seen in scan order.
//
// Keys that do not parse as window keys belong to unrelated data sharing the
// store and are skipped.
func Discover(ctx context.Context, store storage.Storage, pattern string, filter *vm.Program) (map[domain.Identifier]domain.SelectedWindow, error) {
	keys, err := store.ScanKeys(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", pattern, err)
	}

	selected := make(map[domain.Identifier]domain.SelectedWindow)
	for _, key := range keys {
		window, err := domain.ParseWindowKey(key)
		if err != nil {
			continue
		}
		if filter != nil && !matchesFilter(filter, window) {
			continue
		}
		id := window.Identifier()
		if current, ok := selected[id]; !ok || window.Timestamp < current.Window.Timestamp {
			selected[id] = domain.SelectedWindow{Key: key, Window: window}
		}
	}
	return selected, nil
}

func matchesFilter(program *vm.Program, window domain.WindowKey) bool {
	out, err := expr.Run(program, WindowInfo{
		Entity:     window.Entity,
		WindowSize: window.WindowSize,
		Timestamp:  window.Timestamp,
	})
	if err != nil {
		log.Warningf("filter failed for window %d:%d:%s, excluding it: %v",
			window.Timestamp, window.WindowSize, window.Entity, err)
		return false
	}
	keep, ok := out.(bool)
	return ok && keep
}
