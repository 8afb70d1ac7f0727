package model

import "time"

// TimeRange is the inclusive window a report was computed over.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Summary is the headline block of a report.
// MostUsedActionType is empty when the window contains no actions.
type Summary struct {
	TotalActions        int        `json:"total_actions"`
	SuccessfulActions   int        `json:"successful_actions"`
	FailedActions       int        `json:"failed_actions"`
	AverageResponseTime float64    `json:"average_response_time_ms"`
	MostUsedActionType  ActionType `json:"most_used_action_type,omitempty"`
}

// PerformanceMetrics aggregates latency and failure statistics over a window.
type PerformanceMetrics struct {
	AverageResponseTime float64 `json:"average_response_time_ms"`
	P95ResponseTime     float64 `json:"p95_response_time_ms"`
	ErrorRate           float64 `json:"error_rate"`
}

// Analytics is the detailed breakdown block of a report. ActionsByType
// omits types with zero occurrences; ActionsByHour is keyed by the
// zero-padded local calendar hour ("00".."23").
type Analytics struct {
	ActionsByType map[ActionType]int `json:"actions_by_type"`
	ActionsByHour map[string]int     `json:"actions_by_hour"`
	Performance   PerformanceMetrics `json:"performance_metrics"`
}

// Report is an immutable, point-in-time aggregation over a time-windowed
// subset of recorded actions. It holds copies, never references into the
// store, and is never persisted back.
type Report struct {
	ReportID    string    `json:"report_id"`
	GeneratedAt time.Time `json:"generated_at"`
	TimeRange   TimeRange `json:"time_range"`
	Summary     Summary   `json:"summary"`
	Actions     []Action  `json:"actions"`
	Analytics   Analytics `json:"analytics"`
}
