package runner

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lukman83/rakurank/internal/models"
)

// RunAll checks every active keyword of the variant with bounded concurrency
// and records a bulk summary. Individual failures do not stop the run.
func (r *Runner) RunAll(ctx context.Context, variant models.Variant, concurrency int) (models.BulkLog, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	keywords, err := r.Store.ListKeywords(ctx, variant, true)
	if err != nil {
		return models.BulkLog{}, err
	}

	started := time.Now()
	summary := models.BulkLog{
		Variant:    variant,
		Keywords:   len(keywords),
		ExecutedAt: started,
	}

	results := make([]error, len(keywords))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, kw := range keywords {
		g.Go(func() error {
			var err error
			switch variant {
			case models.VariantRPP:
				_, err = r.CheckSponsored(gctx, kw)
			default:
				_, err = r.CheckOrganic(gctx, kw)
			}
			results[i] = err
			if err != nil {
				r.logger().Error("bulk check failed", "keyword", kw.Phrase, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range results {
		if err == nil {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	summary.DurationMS = time.Since(started).Milliseconds()
	summary.Completed = ctx.Err() == nil

	if _, err := r.Store.InsertBulkLog(ctx, summary); err != nil {
		r.logger().Warn("bulk log insert failed", "error", err)
	}
	return summary, nil
}
