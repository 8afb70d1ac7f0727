// Package store holds the bounded, insertion-ordered in-memory action log.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/clario-app/reporter/internal/model"
	"github.com/clario-app/reporter/internal/telemetry"
)

// DefaultMaxActions bounds the log when no explicit cap is configured.
const DefaultMaxActions = 10_000

// ErrNotFound is returned when a requested action does not exist.
var ErrNotFound = errors.New("store: action not found")

// Store is an append-only log of actions with FIFO eviction past a
// configured cap. Insertion order approximates timestamp order because
// the lifecycle tracker is the only writer and appends at creation time.
//
// One coarse mutex guards the log, the id index, and the pending counter,
// so the append/evict pair and per-action check-then-set sequences stay
// atomic in multi-threaded hosts.
type Store struct {
	mu      sync.Mutex
	actions []*model.Action
	byID    map[string]*model.Action
	pending int
	max     int

	evictedTotal int64
}

// New creates a store holding at most max actions. A non-positive max
// falls back to DefaultMaxActions.
func New(max int) *Store {
	if max <= 0 {
		max = DefaultMaxActions
	}
	return &Store{
		byID: make(map[string]*model.Action),
		max:  max,
	}
}

// Append inserts the action at the end of the log. If the cap is exceeded
// the oldest entries are silently dropped until the size fits — a soft
// bound, not a failure condition.
func (s *Store) Append(a *model.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.actions = append(s.actions, a)
	s.byID[a.ID] = a
	if a.Status == model.StatusPending {
		s.pending++
	}

	for len(s.actions) > s.max {
		s.dropFront()
	}
}

// dropFront evicts the oldest entry. Caller must hold s.mu.
func (s *Store) dropFront() {
	old := s.actions[0]
	s.actions[0] = nil
	s.actions = s.actions[1:]
	delete(s.byID, old.ID)
	if old.Status == model.StatusPending {
		s.pending--
	}
	s.evictedTotal++
}

// Mutate runs fn against the action with the given id while holding the
// store lock, making check-then-set sequences atomic per action. Returns
// ErrNotFound when the id is unknown; any error from fn is returned
// unchanged and leaves the pending counter untouched.
func (s *Store) Mutate(id string, fn func(*model.Action) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	wasPending := a.Status == model.StatusPending
	if err := fn(a); err != nil {
		return err
	}
	if wasPending && a.Status != model.StatusPending {
		s.pending--
	}
	return nil
}

// QueryRange returns copies of all actions with start <= timestamp <= end,
// optionally filtered to the given types. Side-effect free. The copies
// share metadata maps with the stored records; the core never mutates
// metadata, so callers see a stable view.
func (s *Store) QueryRange(start, end time.Time, types ...model.ActionType) []model.Action {
	var allow map[model.ActionType]struct{}
	if len(types) > 0 {
		allow = make(map[model.ActionType]struct{}, len(types))
		for _, t := range types {
			allow[t] = struct{}{}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Action
	for _, a := range s.actions {
		if a.Timestamp.Before(start) || a.Timestamp.After(end) {
			continue
		}
		if allow != nil {
			if _, ok := allow[a.Type]; !ok {
				continue
			}
		}
		out = append(out, *a)
	}
	return out
}

// Since returns copies of all actions with timestamp >= cutoff. It seeks
// the first matching entry by binary search over the insertion order and
// copies only the tail, so frequent polling never scans the full history.
func (s *Store) Since(cutoff time.Time) []model.Action {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := sort.Search(len(s.actions), func(i int) bool {
		return !s.actions[i].Timestamp.Before(cutoff)
	})
	if i >= len(s.actions) {
		return nil
	}
	out := make([]model.Action, 0, len(s.actions)-i)
	for _, a := range s.actions[i:] {
		out = append(out, *a)
	}
	return out
}

// EvictOlderThan removes all actions with timestamp < cutoff and returns
// the number removed.
func (s *Store) EvictOlderThan(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.actions[:0]
	removed := 0
	for _, a := range s.actions {
		if a.Timestamp.Before(cutoff) {
			delete(s.byID, a.ID)
			if a.Status == model.StatusPending {
				s.pending--
			}
			removed++
			continue
		}
		kept = append(kept, a)
	}
	for i := len(kept); i < len(s.actions); i++ {
		s.actions[i] = nil
	}
	s.actions = kept
	s.evictedTotal += int64(removed)
	return removed
}

// Len returns the current number of stored actions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actions)
}

// PendingCount returns the number of actions still pending. Maintained as
// a counter on append/complete/evict so polling it is O(1).
func (s *Store) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// EvictedTotal returns the total number of actions dropped by the cap or
// by age-based eviction over the store's lifetime.
func (s *Store) EvictedTotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictedTotal
}

// RegisterMetrics registers observable OTEL gauges for store health.
// Call after the global meter provider has been initialized; with no-op
// providers this is harmless.
func (s *Store) RegisterMetrics() {
	meter := telemetry.Meter("reporter/store")

	_, _ = meter.Int64ObservableGauge("reporter.store.actions",
		metric.WithDescription("Current number of actions in the store"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(s.Len()))
			return nil
		}),
	)

	_, _ = meter.Int64ObservableGauge("reporter.store.pending",
		metric.WithDescription("Current number of pending actions"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(s.PendingCount()))
			return nil
		}),
	)

	_, _ = meter.Int64ObservableGauge("reporter.store.evicted_total",
		metric.WithDescription("Total actions evicted by the retention cap or age cleanup"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(s.EvictedTotal())
			return nil
		}),
	)
}
