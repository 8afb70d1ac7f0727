package reporter

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// Tracking is a handle for an in-flight action: it carries the action id
// and the wall-clock start so completion can attach a measured response
// time without the caller doing its own timing.
type Tracking struct {
	r         *Reporter
	ActionID  string
	StartedAt time.Time
}

// Start records a pending action and returns its tracking handle.
func (r *Reporter) Start(ctx context.Context, typ ActionType, metadata map[string]any) *Tracking {
	return &Tracking{
		r:         r,
		ActionID:  r.Record(ctx, typ, metadata, ""),
		StartedAt: r.now(),
	}
}

// Succeed completes the action with StatusSuccess. When perf is nil or
// carries no response time, the elapsed time since Start is filled in.
func (tk *Tracking) Succeed(ctx context.Context, perf *Performance) error {
	if perf == nil {
		perf = &Performance{}
	}
	if perf.ResponseTimeMs == 0 {
		perf.ResponseTimeMs = tk.elapsedMs()
	}
	return tk.r.Complete(ctx, tk.ActionID, StatusSuccess, perf, "")
}

// Fail completes the action with StatusError and the given message.
func (tk *Tracking) Fail(ctx context.Context, msg string) error {
	return tk.r.Complete(ctx, tk.ActionID, StatusError, &Performance{ResponseTimeMs: tk.elapsedMs()}, msg)
}

// Cancel completes the action with StatusCancelled.
func (tk *Tracking) Cancel(ctx context.Context) error {
	return tk.r.Complete(ctx, tk.ActionID, StatusCancelled, nil, "")
}

func (tk *Tracking) elapsedMs() int64 {
	ms := tk.r.now().Sub(tk.StartedAt).Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return ms
}

// TrackQRScan starts tracking a QR code analysis, recording the scanned
// payload, its length, and its detected kind.
func (r *Reporter) TrackQRScan(ctx context.Context, data string) *Tracking {
	return r.Start(ctx, TypeQRCodeAnalysis, map[string]any{
		"qrData":     data,
		"dataLength": len(data),
		"dataType":   detectQRPayloadKind(data),
	})
}

// TrackBarcodeScan starts tracking a barcode analysis. kind is the
// symbology reported by the scanner (e.g. "ean13").
func (r *Reporter) TrackBarcodeScan(ctx context.Context, data, kind string) *Tracking {
	return r.Start(ctx, TypeBarcodeAnalysis, map[string]any{
		"barcodeData": data,
		"barcodeType": kind,
		"dataLength":  len(data),
	})
}

// TrackImageAnalysis starts tracking an image analysis.
func (r *Reporter) TrackImageAnalysis(ctx context.Context, imageURI string) *Tracking {
	source := "remote"
	if strings.HasPrefix(imageURI, "file://") {
		source = "local"
	}
	return r.Start(ctx, TypeImageAnalysis, map[string]any{
		"imageUri":    imageURI,
		"imageSource": source,
	})
}

var numericPayload = regexp.MustCompile(`^\d+$`)

// detectQRPayloadKind classifies a scanned QR payload for metadata.
// Heuristic only; never affects lifecycle behavior.
func detectQRPayloadKind(data string) string {
	switch {
	case strings.HasPrefix(data, "http://"), strings.HasPrefix(data, "https://"):
		return "url"
	case strings.HasPrefix(data, "mailto:"):
		return "email"
	case strings.HasPrefix(data, "tel:"):
		return "phone"
	case strings.HasPrefix(data, "wifi:"):
		return "wifi"
	case strings.Contains(data, "@") && strings.Contains(data, "."):
		return "email"
	case numericPayload.MatchString(data):
		return "numeric"
	case strings.Contains(data, "\n") || len(data) > 100:
		return "text_block"
	default:
		return "text"
	}
}
