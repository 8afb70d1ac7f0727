// Package reporter is the public API for embedding the Clario AI action
// reporter: an in-process service that records discrete AI actions
// (scans, generations, classifications), tracks their lifecycle from
// pending to a terminal state, and produces both a cheap realtime
// snapshot and full time-windowed reports with three export encodings.
//
//	rep, err := reporter.New(
//	    reporter.WithLogger(logger),
//	    reporter.WithMaxStoredActions(10_000),
//	)
//	if err != nil { ... }
//	defer rep.Close(ctx)
//
//	id := rep.Record(ctx, reporter.TypeQRCodeAnalysis, map[string]any{"qrData": data}, "")
//	...
//	err = rep.Complete(ctx, id, reporter.StatusSuccess, &reporter.Performance{ResponseTimeMs: 200}, "")
//
// The import graph enforces a strict no-cycle rule: reporter (root)
// imports internal/*, but internal/* never imports the root. Record and
// report shapes are aliased from internal/model so there is one source
// of truth for the data model.
package reporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/clario-app/reporter/internal/analytics"
	"github.com/clario-app/reporter/internal/config"
	"github.com/clario-app/reporter/internal/export"
	"github.com/clario-app/reporter/internal/monitor"
	"github.com/clario-app/reporter/internal/sink"
	"github.com/clario-app/reporter/internal/store"
	"github.com/clario-app/reporter/internal/telemetry"
	"github.com/clario-app/reporter/internal/tracker"
)

// Reporter owns one session's worth of action tracking. Construct with
// New; every instance is isolated, so tests and hosts compose their own
// rather than sharing a process-wide singleton.
type Reporter struct {
	cfg          config.Config
	store        *store.Store
	tracker      *tracker.Tracker
	aggregator   *analytics.Aggregator
	monitor      *monitor.Monitor
	sqliteSink   *sink.SQLite // nil when archival is not configured
	otelShutdown telemetry.Shutdown
	logger       *slog.Logger
	now          func() time.Time
}

// New initialises a reporter. It loads configuration from the
// environment, applies option overrides, wires the store, tracker,
// aggregator, and monitor, and optionally opens the sqlite archive and
// OTEL exporters. It starts no goroutines.
func New(opts ...Option) (*Reporter, error) {
	o := resolvedOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	now := o.now
	if now == nil {
		now = time.Now
	}

	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.maxStoredActions != 0 {
		cfg.MaxStoredActions = o.maxStoredActions
	}
	if o.reportWindow != 0 {
		cfg.ReportWindow = o.reportWindow
	}
	if o.retentionMaxAge != nil {
		cfg.RetentionMaxAge = *o.retentionMaxAge
	}
	if o.sinkPath != "" {
		cfg.SinkPath = o.sinkPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	otelShutdown, err := telemetry.Init(context.Background(), cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	st := store.New(cfg.MaxStoredActions)
	st.RegisterMetrics()

	actionSink := o.sink
	var sqliteSink *sink.SQLite
	if actionSink == nil && cfg.SinkPath != "" {
		sqliteSink, err = sink.NewSQLite(cfg.SinkPath)
		if err != nil {
			return nil, fmt.Errorf("open sink: %w", err)
		}
		actionSink = sqliteSink
	}

	tr := tracker.New(st, tracker.Config{
		SessionID:       uuid.NewString(),
		DefaultUserID:   o.userID,
		RetentionMaxAge: cfg.RetentionMaxAge,
		Sink:            actionSink,
		Logger:          logger,
		Now:             now,
	})

	return &Reporter{
		cfg:          cfg,
		store:        st,
		tracker:      tr,
		aggregator:   analytics.New(st, cfg.ReportWindow, now),
		monitor:      monitor.New(st, now),
		sqliteSink:   sqliteSink,
		otelShutdown: otelShutdown,
		logger:       logger,
		now:          now,
	}, nil
}

// version is overridden at build time via -ldflags by binary hosts.
var version = "dev"

// SessionID returns the identifier stamped on every action recorded by
// this reporter instance.
func (r *Reporter) SessionID() string { return r.tracker.SessionID() }

// SetUserID sets the default user recorded on actions created without an
// explicit user.
func (r *Reporter) SetUserID(id string) { r.tracker.SetDefaultUserID(id) }

// Record creates a pending action and returns its id immediately. The
// metadata map is opaque to the core: it is carried through reports and
// exports but never inspected or validated. An empty userID falls back
// to the reporter default.
func (r *Reporter) Record(ctx context.Context, typ ActionType, metadata map[string]any, userID string) string {
	return r.tracker.Record(ctx, typ, metadata, userID)
}

// Complete transitions a pending action to the given terminal status,
// computing its duration and attaching performance and, for
// StatusError, the error message. Returns ErrNotFound for unknown ids
// and ErrInvalidState when the action already completed — the first
// completion's fields are never overwritten.
func (r *Reporter) Complete(ctx context.Context, id string, status Status, perf *Performance, errMsg string) error {
	return r.tracker.Complete(ctx, id, status, perf, errMsg)
}

// GenerateReport computes an immutable report over the window. Zero
// window fields default to end = now and start = end minus the
// configured report window (24h unless overridden).
func (r *Reporter) GenerateReport(w Window) Report {
	return r.aggregator.Report(w)
}

// GenerateReportDays computes a report over the last n days. Non-positive
// n defaults to 7.
func (r *Reporter) GenerateReportDays(n int) Report {
	if n <= 0 {
		n = 7
	}
	end := r.now()
	return r.aggregator.Report(Window{Start: end.AddDate(0, 0, -n), End: end})
}

// Export serializes a report in the given format. Unknown formats return
// ErrUnsupportedFormat.
func (r *Reporter) Export(rep Report, f Format) (string, error) {
	return export.Render(rep, f)
}

// RealTimeAnalytics returns the cheap today-scoped snapshot. Safe to poll
// every few seconds: it never scans beyond the current calendar day.
func (r *Reporter) RealTimeAnalytics() Snapshot {
	return r.monitor.Snapshot()
}

// CleanupOldActions deletes all actions older than maxAge and returns the
// number removed.
func (r *Reporter) CleanupOldActions(maxAge time.Duration) int {
	return r.store.EvictOlderThan(r.now().Add(-maxAge))
}

// StoredActions returns the current size of the in-memory store.
func (r *Reporter) StoredActions() int { return r.store.Len() }

// Close releases the sqlite archive (if open) and shuts down the OTEL
// exporters. The in-memory store needs no teardown.
func (r *Reporter) Close(ctx context.Context) error {
	var firstErr error
	if r.sqliteSink != nil {
		if err := r.sqliteSink.Close(); err != nil {
			firstErr = fmt.Errorf("close sink: %w", err)
		}
	}
	if r.otelShutdown != nil {
		if err := r.otelShutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shutdown telemetry: %w", err)
		}
	}
	return firstErr
}
