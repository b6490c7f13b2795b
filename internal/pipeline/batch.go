package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/phishscan/internal/config"
	"github.com/nao1215/phishscan/internal/model"
)

// BatchProcessor analyses multiple URLs concurrently.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline for each analysis.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent analyses.
	concurrency int

	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent analyses.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     config.DefaultBatchSize,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch analyses every URL and returns the reports in input order.
//
// A failed analysis still yields a report carrying the error. The returned
// error is only set when ctx ends before every URL was started; reports of
// URLs that never started are nil.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) ([]*model.Report, error) {
	reports := make([]*model.Report, len(urls))
	err := bp.ProcessBatchWithCallback(ctx, urls, func(report *model.Report, index int) {
		reports[index] = report
	})
	return reports, err
}

// ProcessBatchWithCallback analyses every URL and calls callback as each
// report completes. The callback runs on the worker goroutine, so it must
// be safe for concurrent use unless it only touches its own index.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	urls []string,
	callback func(report *model.Report, index int),
) error {
	bp.logger.Info("starting batch analysis",
		"total_urls", len(urls),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, rawURL := range urls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			bp.logger.Debug("analysing url",
				"url", rawURL,
				"index", i+1,
				"total", len(urls),
			)

			report := bp.pipelineFactory().Analyze(ctx, rawURL)
			if report.Error != nil {
				bp.logger.Warn("analysis failed", "url", rawURL, "error", report.Error)
			}

			callback(report, i)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch analysis complete",
		"total_urls", len(urls),
		"elapsed", time.Since(startTime),
	)

	return err
}
