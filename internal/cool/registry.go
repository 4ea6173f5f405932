package cool

import (
	"sync"
	"time"
)

// Registry holds one Record per pre-registered login name. spec.md §4.6
// and §4.7 (pre-registration happens at orchestrator startup, before the
// wire session opens, per original_source/src/gomi.cc — see DESIGN.md).
type Registry struct {
	mu      sync.RWMutex
	records map[string]*Record

	historySize int
}

// NewRegistry returns an empty Registry; Register must be called once per
// pre-registered name before any login can bind against it.
func NewRegistry(historySize int) *Registry {
	return &Registry{
		records:     make(map[string]*Record),
		historySize: historySize,
	}
}

// Register pre-registers name, starting offline as of now. Re-registering
// an existing name is a no-op (the existing Record, with its history, is
// kept).
func (reg *Registry) Register(name string, now time.Time) *Record {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if r, ok := reg.records[name]; ok {
		return r
	}
	r := NewRecord(name, now, reg.historySize)
	reg.records[name] = r
	return r
}

// Lookup returns the Record for name, if pre-registered.
func (reg *Registry) Lookup(name string) (*Record, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.records[name]
	return r, ok
}

// Snapshot is a point-in-time copy of every pre-registered name's derived
// metrics, used by the admin telemetry endpoint (spec_full.md §2).
func (reg *Registry) Snapshot(now time.Time) map[string]Metrics {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make(map[string]Metrics, len(reg.records))
	for name, r := range reg.records {
		out[name] = r.Snapshot(now)
	}
	return out
}
