// Package tracker is the sole writer of new actions and the only mutator
// of existing ones.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clario-app/reporter/internal/model"
	"github.com/clario-app/reporter/internal/store"
)

// ErrInvalidState is returned when Complete targets an action that has
// already reached a terminal state. Terminal states are absorbing; the
// first completion's fields are never overwritten.
var ErrInvalidState = errors.New("tracker: action already completed")

// Sink receives best-effort copies of actions for archival. Failures are
// logged and never fail the lifecycle call.
type Sink interface {
	SaveAction(ctx context.Context, a model.Action) error
}

// Config carries the tracker's collaborators and knobs.
type Config struct {
	// SessionID is stamped on every action this tracker creates.
	SessionID string
	// DefaultUserID is used when Record is called without a user.
	DefaultUserID string
	// RetentionMaxAge, when positive, evicts actions older than this age
	// as a side effect of every successful Record/Complete.
	RetentionMaxAge time.Duration
	// Sink, when non-nil, receives each action after record and complete.
	Sink   Sink
	Logger *slog.Logger
	// Now overrides the clock. Tests only.
	Now func() time.Time
}

// Tracker creates pending actions and transitions them to a terminal
// status exactly once.
type Tracker struct {
	store       *store.Store
	sessionID   string
	defaultUser string
	maxAge      time.Duration
	sink        Sink
	logger      *slog.Logger
	now         func() time.Time
}

// New creates a tracker writing to st.
func New(st *store.Store, cfg Config) *Tracker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &Tracker{
		store:       st,
		sessionID:   sessionID,
		defaultUser: cfg.DefaultUserID,
		maxAge:      cfg.RetentionMaxAge,
		sink:        cfg.Sink,
		logger:      logger,
		now:         now,
	}
}

// SessionID returns the identifier stamped on every action this tracker creates.
func (t *Tracker) SessionID() string { return t.sessionID }

// SetDefaultUserID sets the user recorded on actions created without an
// explicit user. Applies to subsequent Record calls only.
func (t *Tracker) SetDefaultUserID(id string) { t.defaultUser = id }

// Record creates a pending action and returns its id. It never blocks:
// the store append is synchronous and local, and the sink write is
// best-effort. An empty userID falls back to the tracker default.
func (t *Tracker) Record(ctx context.Context, typ model.ActionType, metadata map[string]any, userID string) string {
	if userID == "" {
		userID = t.defaultUser
	}
	a := &model.Action{
		ID:        newActionID(),
		Type:      typ,
		Timestamp: t.now(),
		UserID:    userID,
		SessionID: t.sessionID,
		Metadata:  metadata,
		Status:    model.StatusPending,
	}
	t.store.Append(a)
	t.retain()
	t.persist(ctx, *a)
	return a.ID
}

// Complete transitions the action to the given terminal status, computes
// its duration, and attaches performance (as given) and, for error
// status, the error message. Returns store.ErrNotFound for unknown ids
// and ErrInvalidState when the action is already terminal.
func (t *Tracker) Complete(ctx context.Context, id string, status model.Status, perf *model.Performance, errMsg string) error {
	if !status.Terminal() {
		return fmt.Errorf("tracker: complete with non-terminal status %q: %w", status, ErrInvalidState)
	}

	var done model.Action
	err := t.store.Mutate(id, func(a *model.Action) error {
		if a.Status != model.StatusPending {
			return fmt.Errorf("tracker: action %s is already %s: %w", id, a.Status, ErrInvalidState)
		}
		a.Status = status
		d := t.now().Sub(a.Timestamp).Milliseconds()
		if d < 0 {
			d = 0
		}
		a.DurationMs = &d
		a.Performance = perf
		if status == model.StatusError {
			a.Error = errMsg
		}
		done = *a
		return nil
	})
	if err != nil {
		return err
	}

	t.retain()
	t.persist(ctx, done)
	return nil
}

// retain applies the age-based retention policy, if one is configured.
// The size cap is enforced by the store on every append.
func (t *Tracker) retain() {
	if t.maxAge <= 0 {
		return
	}
	if n := t.store.EvictOlderThan(t.now().Add(-t.maxAge)); n > 0 {
		t.logger.Debug("tracker: evicted expired actions", "count", n, "max_age", t.maxAge)
	}
}

// persist archives the action to the sink. Log-and-continue: archival is
// an extension point, not part of the lifecycle contract.
func (t *Tracker) persist(ctx context.Context, a model.Action) {
	if t.sink == nil {
		return
	}
	if err := t.sink.SaveAction(ctx, a); err != nil {
		t.logger.Warn("tracker: persist action failed", "error", err, "action_id", a.ID)
	}
}

// newActionID returns a time-ordered unique id. UUIDv7 embeds a
// millisecond timestamp plus random bits, so ids stay unique under rapid
// concurrent creation within the same millisecond.
func newActionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
