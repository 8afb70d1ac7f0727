// Package analytics computes windowed statistical reports over the action store.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/clario-app/reporter/internal/model"
	"github.com/clario-app/reporter/internal/store"
)

// DefaultWindow is the report window when the caller gives no start time.
const DefaultWindow = 24 * time.Hour

// Window selects the actions a report is computed over. A zero End means
// now; a zero Start means End minus the aggregator's default window.
// Types, when non-empty, is an allow-list.
type Window struct {
	Start time.Time
	End   time.Time
	Types []model.ActionType
}

// Aggregator derives reports from store snapshots. Report generation is
// read-only and leaves the store untouched.
type Aggregator struct {
	store         *store.Store
	defaultWindow time.Duration
	now           func() time.Time
}

// New creates an aggregator. A non-positive defaultWindow falls back to
// DefaultWindow; a nil now falls back to time.Now.
func New(st *store.Store, defaultWindow time.Duration, now func() time.Time) *Aggregator {
	if defaultWindow <= 0 {
		defaultWindow = DefaultWindow
	}
	if now == nil {
		now = time.Now
	}
	return &Aggregator{store: st, defaultWindow: defaultWindow, now: now}
}

// Report computes an immutable report over the window. An empty window
// yields zero counts and rates, never a division by zero.
func (g *Aggregator) Report(w Window) model.Report {
	now := g.now()
	end := w.End
	if end.IsZero() {
		end = now
	}
	start := w.Start
	if start.IsZero() {
		start = end.Add(-g.defaultWindow)
	}

	actions := g.store.QueryRange(start, end, w.Types...)

	var successful, failed int
	var responseTimes []int64
	byType := make(map[model.ActionType]int)
	byHour := make(map[string]int)
	for _, a := range actions {
		switch a.Status {
		case model.StatusSuccess:
			successful++
			if a.Performance != nil {
				responseTimes = append(responseTimes, a.Performance.ResponseTimeMs)
			}
		case model.StatusError:
			failed++
		}
		byType[a.Type]++
		byHour[fmt.Sprintf("%02d", a.Timestamp.Hour())]++
	}

	avg := meanMs(responseTimes)
	p95 := p95Ms(responseTimes)

	errorRate := 0.0
	if len(actions) > 0 {
		errorRate = float64(failed) / float64(len(actions))
	}

	return model.Report{
		ReportID:    uuid.NewString(),
		GeneratedAt: now,
		TimeRange:   model.TimeRange{Start: start, End: end},
		Summary: model.Summary{
			TotalActions:        len(actions),
			SuccessfulActions:   successful,
			FailedActions:       failed,
			AverageResponseTime: avg,
			MostUsedActionType:  mostUsed(byType),
		},
		Actions: actions,
		Analytics: model.Analytics{
			ActionsByType: byType,
			ActionsByHour: byHour,
			Performance: model.PerformanceMetrics{
				AverageResponseTime: avg,
				P95ResponseTime:     p95,
				ErrorRate:           errorRate,
			},
		},
	}
}

// meanMs is the arithmetic mean of the samples, 0 when there are none.
func meanMs(samples []int64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum int64
	for _, v := range samples {
		sum += v
	}
	return float64(sum) / float64(len(samples))
}

// p95Ms is the value at index floor(0.95*n) of the ascending-sorted
// samples, with no interpolation between ranks. The index stays below n
// for any n >= 1; the clamp keeps the top boundary explicit and the
// empty list yields 0.
func p95Ms(samples []int64) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}
	sorted := make([]int64, n)
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(float64(n) * 0.95)
	if idx >= n {
		idx = n - 1
	}
	return float64(sorted[idx])
}

// mostUsed returns the type with the highest count, empty when counts is
// empty. Ties break toward the lexicographically smaller type name so
// reports stay deterministic across map iteration orders.
func mostUsed(counts map[model.ActionType]int) model.ActionType {
	var best model.ActionType
	bestCount := 0
	for typ, c := range counts {
		if c > bestCount || (c == bestCount && bestCount > 0 && typ < best) {
			best = typ
			bestCount = c
		}
	}
	return best
}
