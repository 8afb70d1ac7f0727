// Package export serializes reports into their textual encodings.
// It performs no I/O.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/clario-app/reporter/internal/model"
)

// Format identifies a report encoding.
type Format string

const (
	// FormatJSON is the full object graph, lossless for round-tripping.
	FormatJSON Format = "json"
	// FormatCSV flattens the action list (not the summary) into rows.
	FormatCSV Format = "csv"
	// FormatMarkdown is a human-readable narrative summary.
	FormatMarkdown Format = "markdown"
)

// ErrUnsupportedFormat is returned for an unrecognized format tag.
var ErrUnsupportedFormat = errors.New("export: unsupported format")

// Render serializes the report in the given format.
func Render(r model.Report, f Format) (string, error) {
	switch f {
	case FormatJSON:
		return toJSON(r)
	case FormatCSV:
		return toCSV(r)
	case FormatMarkdown:
		return toMarkdown(r), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

func toJSON(r model.Report) (string, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export: encode report: %w", err)
	}
	return string(b), nil
}

// csvHeader is the fixed column set of the tabular encoding.
var csvHeader = []string{
	"ID", "Type", "Timestamp", "Status", "Duration",
	"ResponseTime", "TokensUsed", "ConfidenceScore", "Error",
}

// toCSV writes one row per action with RFC 4180 quoting — error messages
// are free text and may embed commas, quotes, or newlines.
func toCSV(r model.Report) (string, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("export: write csv header: %w", err)
	}
	for _, a := range r.Actions {
		row := []string{
			a.ID,
			string(a.Type),
			a.Timestamp.Format(time.RFC3339),
			string(a.Status),
			optInt(a.DurationMs),
			"", "", "",
			a.Error,
		}
		if p := a.Performance; p != nil {
			row[5] = strconv.FormatInt(p.ResponseTimeMs, 10)
			row[6] = optInt(p.TokensUsed)
			if p.ConfidenceScore != nil {
				row[7] = strconv.FormatFloat(*p.ConfidenceScore, 'f', -1, 64)
			}
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("export: write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("export: flush csv: %w", err)
	}
	return buf.String(), nil
}

func optInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

// recentActionCount is how many trailing actions the narrative lists.
const recentActionCount = 10

// toMarkdown renders the narrative encoding: metadata, summary,
// performance metrics, per-type counts, and the most recent actions in
// insertion order.
func toMarkdown(r model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# AI Action Report\n\n")
	fmt.Fprintf(&b, "**Report ID:** %s  \n", r.ReportID)
	fmt.Fprintf(&b, "**Generated:** %s  \n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "**Time Range:** %s to %s\n\n",
		r.TimeRange.Start.Format(time.RFC3339), r.TimeRange.End.Format(time.RFC3339))

	mostUsed := "n/a"
	if r.Summary.MostUsedActionType != "" {
		mostUsed = string(r.Summary.MostUsedActionType)
	}
	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "- **Total Actions:** %d\n", r.Summary.TotalActions)
	fmt.Fprintf(&b, "- **Successful Actions:** %d\n", r.Summary.SuccessfulActions)
	fmt.Fprintf(&b, "- **Failed Actions:** %d\n", r.Summary.FailedActions)
	fmt.Fprintf(&b, "- **Average Response Time:** %.2fms\n", r.Summary.AverageResponseTime)
	fmt.Fprintf(&b, "- **Most Used Action Type:** %s\n\n", mostUsed)

	m := r.Analytics.Performance
	fmt.Fprintf(&b, "## Performance Metrics\n\n")
	fmt.Fprintf(&b, "- **Average Response Time:** %.2fms\n", m.AverageResponseTime)
	fmt.Fprintf(&b, "- **95th Percentile Response Time:** %.2fms\n", m.P95ResponseTime)
	fmt.Fprintf(&b, "- **Error Rate:** %.2f%%\n\n", m.ErrorRate*100)

	fmt.Fprintf(&b, "## Actions by Type\n\n")
	types := make([]model.ActionType, 0, len(r.Analytics.ActionsByType))
	for typ := range r.Analytics.ActionsByType {
		types = append(types, typ)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, typ := range types {
		fmt.Fprintf(&b, "- **%s:** %d\n", typ, r.Analytics.ActionsByType[typ])
	}

	fmt.Fprintf(&b, "\n## Recent Actions\n\n")
	recent := r.Actions
	if len(recent) > recentActionCount {
		recent = recent[len(recent)-recentActionCount:]
	}
	for _, a := range recent {
		fmt.Fprintf(&b, "- **%s** (%s) - %s\n", a.Type, a.Status, a.Timestamp.Format(time.RFC3339))
	}

	return b.String()
}
