package sink_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clario-app/reporter/internal/model"
	"github.com/clario-app/reporter/internal/sink"
)

func newTestSink(t *testing.T) *sink.SQLite {
	t.Helper()
	s, err := sink.NewSQLite(filepath.Join(t.TempDir(), "actions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveActionInsertAndUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestSink(t)

	a := model.Action{
		ID:        "a1",
		Type:      model.TypeQRCodeAnalysis,
		Timestamp: time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC),
		SessionID: "session-1",
		Metadata:  map[string]any{"qrData": "https://x"},
		Status:    model.StatusPending,
	}
	require.NoError(t, s.SaveAction(ctx, a))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Completion is an update in place, not a second row.
	duration := int64(120)
	a.Status = model.StatusSuccess
	a.DurationMs = &duration
	a.Performance = &model.Performance{ResponseTimeMs: 100}
	require.NoError(t, s.SaveAction(ctx, a))

	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSaveActionMinimalFields(t *testing.T) {
	ctx := context.Background()
	s := newTestSink(t)

	require.NoError(t, s.SaveAction(ctx, model.Action{
		ID:        "bare",
		Type:      model.TypeClassification,
		Timestamp: time.Now(),
		SessionID: "session-1",
		Status:    model.StatusPending,
	}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestNewSQLiteCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested.db")
	s, err := sink.NewSQLite(path)
	require.NoError(t, err)
	_ = s.Close()

	// Reopening against the existing schema must succeed.
	s, err = sink.NewSQLite(path)
	require.NoError(t, err)
	_ = s.Close()
}
