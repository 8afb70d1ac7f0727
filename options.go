package reporter

import (
	"log/slog"
	"time"

	"github.com/clario-app/reporter/internal/tracker"
)

// Option configures a Reporter.
type Option func(*resolvedOptions)

// Sink receives best-effort copies of actions for archival outside the
// in-memory store. Implementations must tolerate the same action id
// arriving twice: once pending, once completed.
type Sink = tracker.Sink

// resolvedOptions holds all extension points after applying defaults.
// Unexported — callers use the With* functions.
type resolvedOptions struct {
	logger           *slog.Logger
	maxStoredActions int
	reportWindow     time.Duration
	retentionMaxAge  *time.Duration
	sinkPath         string
	sink             Sink
	userID           string
	now              func() time.Time
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *resolvedOptions) { o.logger = logger }
}

// WithMaxStoredActions overrides the retention cap from config
// (CLARIO_MAX_STORED_ACTIONS env var).
func WithMaxStoredActions(n int) Option {
	return func(o *resolvedOptions) { o.maxStoredActions = n }
}

// WithReportWindow overrides the default report window from config
// (CLARIO_REPORT_WINDOW env var).
func WithReportWindow(d time.Duration) Option {
	return func(o *resolvedOptions) { o.reportWindow = d }
}

// WithRetentionMaxAge overrides the age-based eviction threshold from
// config (CLARIO_RETENTION_MAX_AGE env var). Zero disables age eviction;
// the size cap still applies.
func WithRetentionMaxAge(d time.Duration) Option {
	return func(o *resolvedOptions) { o.retentionMaxAge = &d }
}

// WithSinkPath overrides the sqlite archive path from config
// (CLARIO_SINK_PATH env var). Ignored when WithSink is also given.
func WithSinkPath(path string) Option {
	return func(o *resolvedOptions) { o.sinkPath = path }
}

// WithSink replaces the built-in sqlite archive with a custom sink.
func WithSink(s Sink) Option {
	return func(o *resolvedOptions) { o.sink = s }
}

// WithUserID sets the initial default user for actions recorded without
// an explicit user. Can be changed later with SetUserID.
func WithUserID(id string) Option {
	return func(o *resolvedOptions) { o.userID = id }
}

// WithNowFunc overrides the clock. Tests only.
func WithNowFunc(now func() time.Time) Option {
	return func(o *resolvedOptions) { o.now = now }
}
