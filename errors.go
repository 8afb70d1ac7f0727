package reporter

import (
	"github.com/clario-app/reporter/internal/export"
	"github.com/clario-app/reporter/internal/store"
	"github.com/clario-app/reporter/internal/tracker"
)

// Sentinel errors surfaced by the reporter. Match with errors.Is — the
// lifecycle methods wrap them with the offending action id or format.
var (
	// ErrNotFound: Complete was called with an unknown action id.
	ErrNotFound = store.ErrNotFound
	// ErrInvalidState: Complete was called on an already-terminal action.
	ErrInvalidState = tracker.ErrInvalidState
	// ErrUnsupportedFormat: Export was called with an unrecognized format tag.
	ErrUnsupportedFormat = export.ErrUnsupportedFormat
)
