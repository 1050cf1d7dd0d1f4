// Package runner ties resolvers to persistence: every check is logged before
// it starts, stored whatever its outcome, and the log updated afterwards.
package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/lukman83/rakurank/internal/ichiba"
	"github.com/lukman83/rakurank/internal/models"
	"github.com/lukman83/rakurank/internal/store"
)

// OrganicResolver is the rank-resolution half the runner drives.
type OrganicResolver interface {
	Resolve(ctx context.Context, phrase string, target ichiba.Target, maxPages int) (ichiba.Resolution, error)
}

// Runner executes checks for stored keywords and persists their results.
type Runner struct {
	Store    *store.Store
	Organic  OrganicResolver
	Ads      SponsoredResolver
	MaxPages int
	AdPages  int
	Logger   *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default().With("component", "runner")
}

// CheckOrganic runs one organic rank check for the keyword and stores the
// result with its snapshots. A resolver failure is still persisted as a
// failed result row before the error is returned.
func (r *Runner) CheckOrganic(ctx context.Context, kw models.Keyword) (models.RankResult, error) {
	phrase := ichiba.SanitizeKeyword(kw.Phrase)
	started := time.Now()

	logID, logErr := r.Store.InsertExecutionLog(ctx, models.ExecutionLog{
		Variant:   models.VariantOrganic,
		Keyword:   phrase,
		CreatedAt: started,
	})
	if logErr != nil {
		r.logger().Warn("execution log insert failed", "keyword", phrase, "error", logErr)
	}

	target := ichiba.Target{ShopID: kw.ShopID, ItemCode: kw.ItemCode, ItemURL: kw.ItemURL}
	resolution, resolveErr := r.Organic.Resolve(ctx, phrase, target, r.MaxPages)

	result := models.RankResult{
		KeywordID:      kw.ID,
		Rank:           resolution.Rank,
		TotalSnapshots: len(resolution.Snapshots),
		ReportedTotal:  resolution.ReportedTotal,
		Found:          resolution.Rank != nil,
		CheckedAt:      started,
		Snapshots:      resolution.Snapshots,
	}
	if resolveErr != nil {
		result.ErrorMessage = resolveErr.Error()
	}

	stored, saveErr := r.Store.SaveRankResult(ctx, result)
	if saveErr != nil {
		r.logger().Error("rank result save failed", "keyword", phrase, "error", saveErr)
		if resolveErr == nil {
			resolveErr = saveErr
		}
	} else {
		result = stored
	}

	if logErr == nil {
		r.finishLog(ctx, logID, models.ExecutionLog{
			DurationMS:   time.Since(started).Milliseconds(),
			PagesChecked: resolution.PagesChecked,
			ItemsFound:   len(resolution.Snapshots),
			Success:      resolveErr == nil,
			ErrorDetails: result.ErrorMessage,
		})
	}
	return result, resolveErr
}

func (r *Runner) finishLog(ctx context.Context, id int64, entry models.ExecutionLog) {
	if err := r.Store.UpdateExecutionLog(ctx, id, entry); err != nil {
		r.logger().Warn("execution log update failed", "id", id, "error", err)
	}
}
