// Command clario-reporter exercises the AI action reporter with sample
// data: it records a batch of simulated actions across every action
// type, then prints the realtime snapshot and a report in all three
// encodings.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/clario-app/reporter"
)

func main() {
	os.Exit(run0())
}

func run0() int {
	level := slog.LevelInfo
	if os.Getenv("CLARIO_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, logger *slog.Logger) error {
	numActions := flag.Int("actions", 50, "number of sample actions to generate")
	days := flag.Int("days", 7, "report window in days")
	flag.Parse()

	// Load .env file if present (non-fatal).
	_ = godotenv.Load()

	rep, err := reporter.New(reporter.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("new reporter: %w", err)
	}
	defer func() { _ = rep.Close(context.Background()) }()

	logger.Info("generating sample actions", "count", *numActions, "session_id", rep.SessionID())
	if err := generateSampleData(ctx, rep, *numActions); err != nil {
		return fmt.Errorf("generate sample data: %w", err)
	}

	snap := rep.RealTimeAnalytics()
	logger.Info("realtime snapshot",
		"active_actions", snap.ActiveActions,
		"today_actions", snap.TodayActions,
		"error_rate", snap.ErrorRate,
		"avg_response_time_ms", snap.AverageResponseTime,
	)

	report := rep.GenerateReportDays(*days)
	for _, f := range []reporter.Format{reporter.FormatJSON, reporter.FormatCSV, reporter.FormatMarkdown} {
		out, err := rep.Export(report, f)
		if err != nil {
			return fmt.Errorf("export %s: %w", f, err)
		}
		fmt.Printf("--- %s ---\n%s\n", f, out)
	}
	return nil
}

var sampleUsers = []string{"user1", "user2", "user3", "demo_user"}

var sampleErrors = []string{
	"Network timeout",
	"Model overloaded",
	"Invalid input format",
	"Rate limit exceeded",
	"Processing error",
}

// generateSampleData records numActions actions concurrently with
// realistic per-type metadata and a 90% success rate.
func generateSampleData(ctx context.Context, rep *reporter.Reporter, numActions int) error {
	types := reporter.AllActionTypes()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := 0; i < numActions; i++ {
		g.Go(func() error {
			typ := types[rand.Intn(len(types))]
			user := sampleUsers[rand.Intn(len(sampleUsers))]

			id := rep.Record(ctx, typ, sampleMetadata(typ, i), user)

			processing := processingTime(typ)
			select {
			case <-time.After(processing):
			case <-ctx.Done():
				return ctx.Err()
			}

			if rand.Float64() > 0.1 {
				tokens := sampleTokenUsage(typ)
				confidence := 0.85 + rand.Float64()*0.15
				return rep.Complete(ctx, id, reporter.StatusSuccess, &reporter.Performance{
					ResponseTimeMs:  processing.Milliseconds(),
					TokensUsed:      &tokens,
					ModelVersion:    modelVersion(typ),
					ConfidenceScore: &confidence,
				}, "")
			}
			return rep.Complete(ctx, id, reporter.StatusError, nil, sampleErrors[rand.Intn(len(sampleErrors))])
		})
	}
	return g.Wait()
}

func sampleMetadata(typ reporter.ActionType, i int) map[string]any {
	switch typ {
	case reporter.TypeQRCodeAnalysis:
		return map[string]any{
			"qrData":     fmt.Sprintf("https://example.com/product/%d", i),
			"dataLength": 20 + rand.Intn(100),
			"dataType":   "url",
		}
	case reporter.TypeBarcodeAnalysis:
		return map[string]any{
			"barcodeData": fmt.Sprintf("%d", 1_000_000_000_000+i),
			"barcodeType": "ean13",
			"dataLength":  13,
		}
	case reporter.TypeImageAnalysis:
		return map[string]any{
			"imageUri":    fmt.Sprintf("file://sample_image_%d.jpg", i),
			"imageSize":   1024 + rand.Intn(2048),
			"imageFormat": "jpg",
		}
	case reporter.TypeTextGeneration:
		return map[string]any{
			"promptLength": 50 + rand.Intn(500),
			"temperature":  0.7,
		}
	default:
		return map[string]any{"sampleIndex": i}
	}
}

// processingTime simulates a realistic latency range per action type.
func processingTime(typ reporter.ActionType) time.Duration {
	var base, spread int
	switch typ {
	case reporter.TypeQRCodeAnalysis, reporter.TypeBarcodeAnalysis:
		base, spread = 5, 20
	case reporter.TypeImageAnalysis, reporter.TypeObjectDetection:
		base, spread = 20, 60
	case reporter.TypeTextGeneration:
		base, spread = 40, 120
	default:
		base, spread = 10, 40
	}
	return time.Duration(base+rand.Intn(spread)) * time.Millisecond
}

func sampleTokenUsage(typ reporter.ActionType) int64 {
	if typ == reporter.TypeTextGeneration {
		return int64(200 + rand.Intn(800))
	}
	return int64(10 + rand.Intn(90))
}

func modelVersion(typ reporter.ActionType) string {
	switch typ {
	case reporter.TypeTextGeneration:
		return "clario-lm-2.1"
	case reporter.TypeImageAnalysis, reporter.TypeObjectDetection:
		return "clario-vision-1.4"
	default:
		return "clario-core-1.0"
	}
}
