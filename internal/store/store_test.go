package store_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clario-app/reporter/internal/model"
	"github.com/clario-app/reporter/internal/store"
)

func newAction(id string, typ model.ActionType, ts time.Time) *model.Action {
	return &model.Action{
		ID:        id,
		Type:      typ,
		Timestamp: ts,
		SessionID: "session-1",
		Status:    model.StatusPending,
	}
}

func TestAppendEvictsFIFOPastCap(t *testing.T) {
	s := store.New(5)
	base := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		s.Append(newAction(fmt.Sprintf("a%02d", i), model.TypeClassification, base.Add(time.Duration(i)*time.Second)))
	}

	assert.Equal(t, 5, s.Len(), "size never exceeds the cap")
	assert.Equal(t, int64(7), s.EvictedTotal())

	// The most recently inserted ids survive.
	kept := s.QueryRange(base, base.Add(time.Minute))
	require.Len(t, kept, 5)
	for i, a := range kept {
		assert.Equal(t, fmt.Sprintf("a%02d", 7+i), a.ID)
	}

	// Evicted ids are gone from the index too.
	err := s.Mutate("a00", func(*model.Action) error { return nil })
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAppendTracksPendingCount(t *testing.T) {
	s := store.New(2)
	base := time.Now()

	s.Append(newAction("a1", model.TypeTextGeneration, base))
	s.Append(newAction("a2", model.TypeTextGeneration, base.Add(time.Second)))
	assert.Equal(t, 2, s.PendingCount())

	require.NoError(t, s.Mutate("a2", func(a *model.Action) error {
		a.Status = model.StatusSuccess
		return nil
	}))
	assert.Equal(t, 1, s.PendingCount())

	// a1 (still pending) is evicted by the cap.
	s.Append(newAction("a3", model.TypeTextGeneration, base.Add(2*time.Second)))
	assert.Equal(t, 1, s.PendingCount())
}

func TestMutateUnknownID(t *testing.T) {
	s := store.New(10)
	err := s.Mutate("missing", func(*model.Action) error {
		t.Fatal("fn must not run for unknown ids")
		return nil
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMutateErrorLeavesPendingCount(t *testing.T) {
	s := store.New(10)
	s.Append(newAction("a1", model.TypeClassification, time.Now()))

	sentinel := fmt.Errorf("rejected")
	err := s.Mutate("a1", func(a *model.Action) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, s.PendingCount())
}

func TestQueryRange(t *testing.T) {
	s := store.New(100)
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	s.Append(newAction("before", model.TypeTextGeneration, base.Add(-time.Hour)))
	s.Append(newAction("inA", model.TypeQRCodeAnalysis, base))
	s.Append(newAction("inB", model.TypeBarcodeAnalysis, base.Add(time.Minute)))
	s.Append(newAction("after", model.TypeTextGeneration, base.Add(2*time.Hour)))

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		types []model.ActionType
		want  []string
	}{
		{"window bounds are inclusive", base, base.Add(time.Minute), nil, []string{"inA", "inB"}},
		{"type filter", base.Add(-2 * time.Hour), base.Add(3 * time.Hour), []model.ActionType{model.TypeQRCodeAnalysis}, []string{"inA"}},
		{"empty window", base.Add(10 * time.Hour), base.Add(11 * time.Hour), nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.QueryRange(tt.start, tt.end, tt.types...)
			ids := make([]string, 0, len(got))
			for _, a := range got {
				ids = append(ids, a.ID)
			}
			if tt.want == nil {
				assert.Empty(t, ids)
			} else {
				assert.Equal(t, tt.want, ids)
			}
		})
	}
}

func TestQueryRangeReturnsCopies(t *testing.T) {
	s := store.New(10)
	s.Append(newAction("a1", model.TypeClassification, time.Now().Add(-time.Minute)))

	got := s.QueryRange(time.Now().Add(-time.Hour), time.Now())
	require.Len(t, got, 1)

	require.NoError(t, s.Mutate("a1", func(a *model.Action) error {
		a.Status = model.StatusSuccess
		return nil
	}))
	assert.Equal(t, model.StatusPending, got[0].Status, "snapshot must not see later mutations")
}

func TestSince(t *testing.T) {
	s := store.New(100)
	base := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	s.Append(newAction("old", model.TypeClassification, base.Add(-time.Hour)))
	s.Append(newAction("new1", model.TypeClassification, base.Add(time.Hour)))
	s.Append(newAction("new2", model.TypeClassification, base.Add(2*time.Hour)))

	got := s.Since(base)
	require.Len(t, got, 2)
	assert.Equal(t, "new1", got[0].ID)
	assert.Equal(t, "new2", got[1].ID)

	assert.Empty(t, s.Since(base.Add(24*time.Hour)))
}

func TestEvictOlderThan(t *testing.T) {
	s := store.New(100)
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	s.Append(newAction("old1", model.TypeClassification, base.Add(-2*time.Hour)))
	s.Append(newAction("old2", model.TypeClassification, base.Add(-time.Hour)))
	s.Append(newAction("fresh", model.TypeClassification, base))

	removed := s.EvictOlderThan(base.Add(-90 * time.Minute))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 2, s.PendingCount())

	err := s.Mutate("old1", func(*model.Action) error { return nil })
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Cutoff is exclusive: timestamp == cutoff survives.
	removed = s.EvictOlderThan(base)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, s.Len())
}
