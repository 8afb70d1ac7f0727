package model

import "time"

// ActionType categorizes one tracked AI operation. The set is closed:
// adding a category is a code change, not runtime configuration.
type ActionType string

const (
	// Core AI operations.
	TypeTextGeneration  ActionType = "text_generation"
	TypeImageAnalysis   ActionType = "image_analysis"
	TypeQRCodeAnalysis  ActionType = "qr_code_analysis"
	TypeBarcodeAnalysis ActionType = "barcode_analysis"

	// ML features.
	TypeObjectDetection   ActionType = "object_detection"
	TypeTextExtraction    ActionType = "text_extraction"
	TypeSentimentAnalysis ActionType = "sentiment_analysis"
	TypeClassification    ActionType = "classification"

	// User interactions with AI.
	TypeSuggestionAccepted ActionType = "ai_suggestion_accepted"
	TypeSuggestionRejected ActionType = "ai_suggestion_rejected"
	TypeFeedbackProvided   ActionType = "ai_feedback_provided"

	// Model lifecycle events.
	TypeModelLoaded       ActionType = "ai_model_loaded"
	TypeModelUpdated      ActionType = "ai_model_updated"
	TypeTrainingStarted   ActionType = "ai_training_started"
	TypeTrainingCompleted ActionType = "ai_training_completed"
)

// AllTypes lists every declared action type, in declaration order.
func AllTypes() []ActionType {
	return []ActionType{
		TypeTextGeneration, TypeImageAnalysis, TypeQRCodeAnalysis, TypeBarcodeAnalysis,
		TypeObjectDetection, TypeTextExtraction, TypeSentimentAnalysis, TypeClassification,
		TypeSuggestionAccepted, TypeSuggestionRejected, TypeFeedbackProvided,
		TypeModelLoaded, TypeModelUpdated, TypeTrainingStarted, TypeTrainingCompleted,
	}
}

// Status is an action's lifecycle state. Every action starts pending and
// transitions exactly once to one of the three terminal states.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether s is an absorbing state.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusError || s == StatusCancelled
}

// Performance holds the metrics a caller attaches when an action completes.
// ConfidenceScore is conventionally within [0, 1]; the core does not enforce it.
type Performance struct {
	ResponseTimeMs  int64    `json:"response_time_ms"`
	TokensUsed      *int64   `json:"tokens_used,omitempty"`
	ModelVersion    string   `json:"model_version,omitempty"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty"`
}

// Action is one tracked unit of AI-adjacent work, from creation (pending)
// to a terminal outcome. DurationMs, Performance, and Error are populated
// only when the action leaves the pending state; Timestamp is immutable
// once set.
type Action struct {
	ID          string         `json:"id"`
	Type        ActionType     `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	UserID      string         `json:"user_id,omitempty"`
	SessionID   string         `json:"session_id"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Status      Status         `json:"status"`
	DurationMs  *int64         `json:"duration_ms,omitempty"`
	Performance *Performance   `json:"performance,omitempty"`
	Error       string         `json:"error,omitempty"`
}
