package runner

import (
	"context"
	"time"

	"github.com/lukman83/rakurank/internal/ichiba"
	"github.com/lukman83/rakurank/internal/models"
	"github.com/lukman83/rakurank/internal/rpp"
)

// SponsoredResolver is the ad-rank half the runner drives.
type SponsoredResolver interface {
	Resolve(ctx context.Context, phrase string, target rpp.Target, maxPages int) (rpp.Resolution, error)
}

// CheckSponsored runs one sponsored-placement check for the keyword and
// stores the result with everything collected, even on a transport failure.
func (r *Runner) CheckSponsored(ctx context.Context, kw models.Keyword) (models.AdResult, error) {
	phrase := ichiba.SanitizeKeyword(kw.Phrase)
	started := time.Now()

	logID, logErr := r.Store.InsertExecutionLog(ctx, models.ExecutionLog{
		Variant:   models.VariantRPP,
		Keyword:   phrase,
		CreatedAt: started,
	})
	if logErr != nil {
		r.logger().Warn("execution log insert failed", "keyword", phrase, "error", logErr)
	}

	target := rpp.Target{ShopID: kw.ShopID, ItemURL: kw.ItemURL}
	resolution, resolveErr := r.Ads.Resolve(ctx, phrase, target, r.AdPages)

	result := models.AdResult{
		KeywordID:    kw.ID,
		Rank:         resolution.Rank,
		TotalAds:     len(resolution.Ads),
		PagesChecked: resolution.PagesChecked,
		Found:        resolution.Rank != nil,
		CheckedAt:    started,
		Ads:          resolution.Ads,
	}
	if resolveErr != nil {
		result.ErrorMessage = resolveErr.Error()
	}

	stored, saveErr := r.Store.SaveAdResult(ctx, result)
	if saveErr != nil {
		r.logger().Error("ad result save failed", "keyword", phrase, "error", saveErr)
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
			ItemsFound:   len(resolution.Ads),
			Success:      resolveErr == nil && resolution.Success,
			ErrorDetails: result.ErrorMessage,
		})
	}
	return result, resolveErr
}
