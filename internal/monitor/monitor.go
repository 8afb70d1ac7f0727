// Package monitor provides the cheap, today-scoped realtime snapshot,
// distinct from the heavier windowed report.
package monitor

import (
	"time"

	"github.com/clario-app/reporter/internal/model"
	"github.com/clario-app/reporter/internal/store"
)

// Snapshot summarizes the current day's activity. ErrorRate and
// AverageResponseTime cover only today's completed actions; pending
// actions count toward ActiveActions and TodayActions but never skew the
// rates.
type Snapshot struct {
	ActiveActions       int     `json:"active_actions"`
	TodayActions        int     `json:"today_actions"`
	ErrorRate           float64 `json:"error_rate"`
	AverageResponseTime float64 `json:"average_response_time_ms"`
}

// Monitor reads the store directly; it is intended to be polled every few
// seconds and touches only records from the current calendar day.
type Monitor struct {
	store *store.Store
	now   func() time.Time
}

// New creates a monitor. A nil now falls back to time.Now.
func New(st *store.Store, now func() time.Time) *Monitor {
	if now == nil {
		now = time.Now
	}
	return &Monitor{store: st, now: now}
}

// Snapshot computes the realtime view. "Today" starts at local midnight,
// not a rolling 24 hours.
func (m *Monitor) Snapshot() Snapshot {
	now := m.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today := m.store.Since(midnight)

	var completed, failed int
	var totalMs int64
	var sampled int
	for _, a := range today {
		if a.Status == model.StatusPending {
			continue
		}
		completed++
		if a.Status == model.StatusError {
			failed++
		}
		if a.Performance != nil {
			totalMs += a.Performance.ResponseTimeMs
			sampled++
		}
	}

	snap := Snapshot{
		ActiveActions: m.store.PendingCount(),
		TodayActions:  len(today),
	}
	if completed > 0 {
		snap.ErrorRate = float64(failed) / float64(completed)
	}
	if sampled > 0 {
		snap.AverageResponseTime = float64(totalMs) / float64(sampled)
	}
	return snap
}
