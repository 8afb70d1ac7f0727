package tracker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clario-app/reporter/internal/model"
	"github.com/clario-app/reporter/internal/store"
	"github.com/clario-app/reporter/internal/testutil"
	"github.com/clario-app/reporter/internal/tracker"
)

func newTracker(t *testing.T, st *store.Store, clock *testutil.Clock, cfg tracker.Config) *tracker.Tracker {
	t.Helper()
	cfg.Logger = testutil.TestLogger()
	if clock != nil {
		cfg.Now = clock.Now
	}
	return tracker.New(st, cfg)
}

func find(t *testing.T, st *store.Store, id string) model.Action {
	t.Helper()
	var got model.Action
	require.NoError(t, st.Mutate(id, func(a *model.Action) error {
		got = *a
		return nil
	}))
	return got
}

func TestRecordCreatesPendingAction(t *testing.T) {
	st := store.New(10)
	clock := testutil.NewClock(time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC))
	tr := newTracker(t, st, clock, tracker.Config{SessionID: "session-x", DefaultUserID: "default-user"})

	id := tr.Record(context.Background(), model.TypeQRCodeAnalysis, map[string]any{"qrData": "https://x"}, "")
	require.NotEmpty(t, id)

	a := find(t, st, id)
	assert.Equal(t, model.TypeQRCodeAnalysis, a.Type)
	assert.Equal(t, model.StatusPending, a.Status)
	assert.Equal(t, "session-x", a.SessionID)
	assert.Equal(t, "default-user", a.UserID, "empty user falls back to the default")
	assert.Equal(t, clock.Now(), a.Timestamp)
	assert.Equal(t, map[string]any{"qrData": "https://x"}, a.Metadata)
	assert.Nil(t, a.DurationMs)
	assert.Nil(t, a.Performance)

	id2 := tr.Record(context.Background(), model.TypeQRCodeAnalysis, nil, "alice")
	assert.NotEqual(t, id, id2, "ids are unique")
	assert.Equal(t, "alice", find(t, st, id2).UserID)
}

func TestCompleteSuccess(t *testing.T) {
	st := store.New(10)
	clock := testutil.NewClock(time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC))
	tr := newTracker(t, st, clock, tracker.Config{})

	id := tr.Record(context.Background(), model.TypeTextGeneration, nil, "")
	clock.Advance(250 * time.Millisecond)

	tokens := int64(512)
	confidence := 0.95
	perf := &model.Performance{
		ResponseTimeMs:  200,
		TokensUsed:      &tokens,
		ModelVersion:    "clario-lm-2.1",
		ConfidenceScore: &confidence,
	}
	require.NoError(t, tr.Complete(context.Background(), id, model.StatusSuccess, perf, ""))

	a := find(t, st, id)
	assert.Equal(t, model.StatusSuccess, a.Status)
	require.NotNil(t, a.DurationMs)
	assert.Equal(t, int64(250), *a.DurationMs)
	assert.Equal(t, perf, a.Performance, "the exact performance object is attached")
	assert.Empty(t, a.Error)
	assert.Equal(t, 0, st.PendingCount())
}

func TestCompleteError(t *testing.T) {
	st := store.New(10)
	tr := newTracker(t, st, nil, tracker.Config{})

	id := tr.Record(context.Background(), model.TypeImageAnalysis, nil, "")
	require.NoError(t, tr.Complete(context.Background(), id, model.StatusError, nil, "model overloaded"))

	a := find(t, st, id)
	assert.Equal(t, model.StatusError, a.Status)
	assert.Equal(t, "model overloaded", a.Error)
	require.NotNil(t, a.DurationMs)
	assert.GreaterOrEqual(t, *a.DurationMs, int64(0))
}

func TestCompleteUnknownID(t *testing.T) {
	st := store.New(10)
	tr := newTracker(t, st, nil, tracker.Config{})

	err := tr.Complete(context.Background(), "no-such-action", model.StatusSuccess, nil, "")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCompleteTwiceKeepsFirstCompletion(t *testing.T) {
	st := store.New(10)
	clock := testutil.NewClock(time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC))
	tr := newTracker(t, st, clock, tracker.Config{})

	id := tr.Record(context.Background(), model.TypeClassification, nil, "")
	clock.Advance(100 * time.Millisecond)

	first := &model.Performance{ResponseTimeMs: 100}
	require.NoError(t, tr.Complete(context.Background(), id, model.StatusSuccess, first, ""))

	clock.Advance(time.Second)
	err := tr.Complete(context.Background(), id, model.StatusError, &model.Performance{ResponseTimeMs: 999}, "late failure")
	assert.ErrorIs(t, err, tracker.ErrInvalidState)

	a := find(t, st, id)
	assert.Equal(t, model.StatusSuccess, a.Status, "first completion is preserved")
	assert.Equal(t, first, a.Performance)
	assert.Equal(t, int64(100), *a.DurationMs)
	assert.Empty(t, a.Error)
}

func TestCompleteCancelledIsTerminal(t *testing.T) {
	st := store.New(10)
	tr := newTracker(t, st, nil, tracker.Config{})

	id := tr.Record(context.Background(), model.TypeTextGeneration, nil, "")
	require.NoError(t, tr.Complete(context.Background(), id, model.StatusCancelled, nil, ""))

	err := tr.Complete(context.Background(), id, model.StatusSuccess, nil, "")
	assert.ErrorIs(t, err, tracker.ErrInvalidState)
	assert.Equal(t, model.StatusCancelled, find(t, st, id).Status)
}

func TestCompleteRejectsNonTerminalStatus(t *testing.T) {
	st := store.New(10)
	tr := newTracker(t, st, nil, tracker.Config{})

	id := tr.Record(context.Background(), model.TypeTextGeneration, nil, "")
	err := tr.Complete(context.Background(), id, model.StatusPending, nil, "")
	assert.ErrorIs(t, err, tracker.ErrInvalidState)
	assert.Equal(t, model.StatusPending, find(t, st, id).Status)
}

func TestRetentionPiggybacksOnRecord(t *testing.T) {
	st := store.New(100)
	clock := testutil.NewClock(time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC))
	tr := newTracker(t, st, clock, tracker.Config{RetentionMaxAge: time.Hour})

	old := tr.Record(context.Background(), model.TypeClassification, nil, "")
	clock.Advance(2 * time.Hour)

	tr.Record(context.Background(), model.TypeClassification, nil, "")
	assert.Equal(t, 1, st.Len(), "expired action evicted as a side effect")
	assert.ErrorIs(t, st.Mutate(old, func(*model.Action) error { return nil }), store.ErrNotFound)
}

// recordingSink captures sink calls; failures are injectable.
type recordingSink struct {
	mu    sync.Mutex
	saved []model.Action
	err   error
}

func (s *recordingSink) SaveAction(_ context.Context, a model.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, a)
	return nil
}

func TestSinkReceivesRecordAndComplete(t *testing.T) {
	st := store.New(10)
	snk := &recordingSink{}
	tr := newTracker(t, st, nil, tracker.Config{Sink: snk})

	id := tr.Record(context.Background(), model.TypeBarcodeAnalysis, nil, "")
	require.NoError(t, tr.Complete(context.Background(), id, model.StatusSuccess, &model.Performance{ResponseTimeMs: 10}, ""))

	require.Len(t, snk.saved, 2)
	assert.Equal(t, model.StatusPending, snk.saved[0].Status)
	assert.Equal(t, model.StatusSuccess, snk.saved[1].Status)
}

func TestSinkFailureDoesNotFailLifecycle(t *testing.T) {
	st := store.New(10)
	snk := &recordingSink{err: errors.New("disk full")}
	tr := newTracker(t, st, nil, tracker.Config{Sink: snk})

	id := tr.Record(context.Background(), model.TypeBarcodeAnalysis, nil, "")
	require.NotEmpty(t, id)
	assert.NoError(t, tr.Complete(context.Background(), id, model.StatusSuccess, nil, ""))
}

func TestGeneratedSessionID(t *testing.T) {
	tr := tracker.New(store.New(10), tracker.Config{Logger: testutil.TestLogger()})
	assert.NotEmpty(t, tr.SessionID())
}
