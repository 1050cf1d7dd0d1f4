package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lukman83/rakurank/internal/ichiba"
	"github.com/lukman83/rakurank/internal/models"
	"github.com/lukman83/rakurank/internal/rpp"
	"github.com/lukman83/rakurank/internal/store"
)

type fakeOrganic struct {
	res     ichiba.Resolution
	err     error
	phrases []string
}

func (f *fakeOrganic) Resolve(ctx context.Context, phrase string, target ichiba.Target, maxPages int) (ichiba.Resolution, error) {
	f.phrases = append(f.phrases, phrase)
	return f.res, f.err
}

type fakeSponsored struct {
	res rpp.Resolution
	err error
}

func (f *fakeSponsored) Resolve(ctx context.Context, phrase string, target rpp.Target, maxPages int) (rpp.Resolution, error) {
	return f.res, f.err
}

func newTestRunner(t *testing.T, organic OrganicResolver, ads SponsoredResolver) (*Runner, *store.Store) {
	t.Helper()
	st, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return &Runner{Store: st, Organic: organic, Ads: ads, MaxPages: 10, AdPages: 3}, st
}

func addKeyword(t *testing.T, st *store.Store, variant models.Variant, phrase string) models.Keyword {
	t.Helper()
	kw, err := st.AddKeyword(context.Background(), models.Keyword{
		Phrase: phrase, ShopID: "stepmarket", Variant: variant, Active: true,
	})
	require.NoError(t, err)
	return kw
}

func TestCheckOrganicPersistsResult(t *testing.T) {
	rank := 7
	organic := &fakeOrganic{res: ichiba.Resolution{
		Rank:          &rank,
		ReportedTotal: 248,
		PagesChecked:  1,
		Snapshots: []models.ListingSnapshot{
			{Rank: 1, Name: "競合A"},
			{Rank: 7, Name: "自店舗", IsTarget: true},
		},
	}}
	run, st := newTestRunner(t, organic, nil)
	kw := addKeyword(t, st, models.VariantOrganic, "ペットブランケット l")

	result, err := run.CheckOrganic(context.Background(), kw)
	require.NoError(t, err)
	require.NotZero(t, result.ID)
	require.Equal(t, 7, *result.Rank)
	require.True(t, result.Found)

	// The resolver receives the sanitized phrase.
	require.Equal(t, []string{"ペットブランケット Lサイズ"}, organic.phrases)

	loaded, err := st.GetRankResult(context.Background(), result.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Snapshots, 2)

	logs, err := st.ExecutionHistory(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.True(t, logs[0].Success)
	require.Equal(t, 1, logs[0].PagesChecked)
}

func TestCheckOrganicFailureStillPersists(t *testing.T) {
	wantErr := errors.New("context canceled")
	run, st := newTestRunner(t, &fakeOrganic{err: wantErr}, nil)
	kw := addKeyword(t, st, models.VariantOrganic, "毛布")

	result, err := run.CheckOrganic(context.Background(), kw)
	require.ErrorIs(t, err, wantErr)

	// The failed run is still recorded with its error text.
	loaded, err := st.GetRankResult(context.Background(), result.ID)
	require.NoError(t, err)
	require.Nil(t, loaded.Rank)
	require.False(t, loaded.Found)
	require.Equal(t, "context canceled", loaded.ErrorMessage)

	logs, err := st.ExecutionHistory(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.False(t, logs[0].Success)
	require.Equal(t, "context canceled", logs[0].ErrorDetails)
}

func TestCheckSponsoredPersistsResult(t *testing.T) {
	rank := 2
	ads := &fakeSponsored{res: rpp.Resolution{
		Rank:         &rank,
		PagesChecked: 1,
		Success:      true,
		Ads: []models.AdSnapshot{
			{Rank: 1, Name: "競合広告", PageNumber: 1, PositionOnPage: 1},
			{Rank: 2, Name: "自社広告", PageNumber: 1, PositionOnPage: 2, IsTarget: true},
		},
	}}
	run, st := newTestRunner(t, nil, ads)
	kw := addKeyword(t, st, models.VariantRPP, "ペット ブランケット")

	result, err := run.CheckSponsored(context.Background(), kw)
	require.NoError(t, err)
	require.Equal(t, 2, *result.Rank)
	require.Equal(t, 2, result.TotalAds)

	loaded, err := st.GetAdResult(context.Background(), result.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Ads, 2)
}

func TestCheckSponsoredTransportFailureKeepsPartial(t *testing.T) {
	wantErr := errors.New("fetch ad page 2: connection reset")
	ads := &fakeSponsored{
		res: rpp.Resolution{
			PagesChecked: 1,
			Success:      false,
			Ads:          []models.AdSnapshot{{Rank: 1, Name: "競合広告", PageNumber: 1, PositionOnPage: 1}},
		},
		err: wantErr,
	}
	run, st := newTestRunner(t, nil, ads)
	kw := addKeyword(t, st, models.VariantRPP, "毛布")

	result, err := run.CheckSponsored(context.Background(), kw)
	require.ErrorIs(t, err, wantErr)

	loaded, err := st.GetAdResult(context.Background(), result.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Ads, 1)
	require.Equal(t, wantErr.Error(), loaded.ErrorMessage)
}

func TestRunAllCountsOutcomes(t *testing.T) {
	organic := &failSecondResolver{}
	run, st := newTestRunner(t, organic, nil)
	addKeyword(t, st, models.VariantOrganic, "毛布")
	addKeyword(t, st, models.VariantOrganic, "ブランケット")
	addKeyword(t, st, models.VariantOrganic, "ペットベッド")

	// Paused keywords are skipped.
	paused := addKeyword(t, st, models.VariantOrganic, "休止中")
	require.NoError(t, st.SetKeywordActive(context.Background(), paused.ID, false))

	summary, err := run.RunAll(context.Background(), models.VariantOrganic, 1)
	require.NoError(t, err)
	require.Equal(t, 3, summary.Keywords)
	require.Equal(t, 2, summary.Succeeded)
	require.Equal(t, 1, summary.Failed)
	require.True(t, summary.Completed)
}

// failSecondResolver fails only the second phrase it sees.
type failSecondResolver struct {
	calls int
}

func (f *failSecondResolver) Resolve(ctx context.Context, phrase string, target ichiba.Target, maxPages int) (ichiba.Resolution, error) {
	f.calls++
	if f.calls == 2 {
		return ichiba.Resolution{}, errors.New("boom")
	}
	return ichiba.Resolution{PagesChecked: 1}, nil
}
