package reporter

import (
	"github.com/clario-app/reporter/internal/analytics"
	"github.com/clario-app/reporter/internal/export"
	"github.com/clario-app/reporter/internal/model"
	"github.com/clario-app/reporter/internal/monitor"
)

// Record and report shapes are aliased from internal/model: the same
// structs flow through the store, the aggregator, and the exporters, so
// aliasing keeps one source of truth instead of maintaining parallel
// public copies with converters.

// Action is one tracked unit of AI-adjacent work.
type Action = model.Action

// ActionType categorizes a tracked operation. The set is closed.
type ActionType = model.ActionType

// Status is an action's lifecycle state.
type Status = model.Status

// Performance holds the metrics attached when an action completes.
type Performance = model.Performance

// Report is an immutable windowed aggregation over recorded actions.
type Report = model.Report

// Summary is a report's headline block.
type Summary = model.Summary

// TimeRange is the inclusive window a report covers.
type TimeRange = model.TimeRange

// Window selects the actions a report is computed over.
type Window = analytics.Window

// Snapshot is the cheap today-scoped realtime view.
type Snapshot = monitor.Snapshot

// Format identifies a report export encoding.
type Format = export.Format

// Action types.
const (
	TypeTextGeneration     = model.TypeTextGeneration
	TypeImageAnalysis      = model.TypeImageAnalysis
	TypeQRCodeAnalysis     = model.TypeQRCodeAnalysis
	TypeBarcodeAnalysis    = model.TypeBarcodeAnalysis
	TypeObjectDetection    = model.TypeObjectDetection
	TypeTextExtraction     = model.TypeTextExtraction
	TypeSentimentAnalysis  = model.TypeSentimentAnalysis
	TypeClassification     = model.TypeClassification
	TypeSuggestionAccepted = model.TypeSuggestionAccepted
	TypeSuggestionRejected = model.TypeSuggestionRejected
	TypeFeedbackProvided   = model.TypeFeedbackProvided
	TypeModelLoaded        = model.TypeModelLoaded
	TypeModelUpdated       = model.TypeModelUpdated
	TypeTrainingStarted    = model.TypeTrainingStarted
	TypeTrainingCompleted  = model.TypeTrainingCompleted
)

// AllActionTypes lists every declared action type, in declaration order.
func AllActionTypes() []ActionType { return model.AllTypes() }

// Lifecycle statuses.
const (
	StatusPending   = model.StatusPending
	StatusSuccess   = model.StatusSuccess
	StatusError     = model.StatusError
	StatusCancelled = model.StatusCancelled
)

// Export formats.
const (
	FormatJSON     = export.FormatJSON
	FormatCSV      = export.FormatCSV
	FormatMarkdown = export.FormatMarkdown
)
