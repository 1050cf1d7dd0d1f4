package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lukman83/rakurank/internal/models"
)

func TestWriteSnapshots(t *testing.T) {
	collected := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	snapshots := []models.ListingSnapshot{
		{
			Rank: 1, Name: "ペット用ブランケット ふわふわ", Catchcopy: "人気のブランケット",
			ShopName: "ショップA", ShopID: "shopA", ItemCode: "shopA:100", Price: 1980,
			ReviewCount: 12, ReviewAverage: 4.5, GenreID: "508985", GenreName: "ペット用品",
			TagNames: []string{"洗える", "小型犬"}, Description: "ペットがよろこぶブランケット",
			CollectedAt: collected,
		},
		{
			Rank: 2, Name: "自店舗ブランケット", ShopID: "stepmarket", Price: 2480,
			IsTarget: true, CollectedAt: collected,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshots(&buf, "ペット ブランケット", snapshots))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, snapshotHeader, rows[0])

	first := rows[1]
	require.Equal(t, "1", first[0])
	require.Equal(t, "ペット用ブランケット ふわふわ", first[1])
	require.Equal(t, "洗える / 小型犬", first[13])
	// Keyword frequency: ペット(name1+desc1) + ブランケット(name1+catch1+desc1)
	require.Equal(t, "2", first[14]) // name
	require.Equal(t, "1", first[15]) // catchcopy
	require.Equal(t, "2", first[16]) // description
	require.Equal(t, "5", first[17]) // total
	require.NotEmpty(t, first[18])
	require.Equal(t, "0", first[19])
	require.Equal(t, "2026-08-30 10:00:00", first[20])

	require.Equal(t, "1", rows[2][19]) // target row flagged
}

func TestWriteAds(t *testing.T) {
	price := 1980
	ads := []models.AdSnapshot{
		{Rank: 1, Name: "競合広告", ShopName: "shopA", PageNumber: 1, PositionOnPage: 1, Price: &price},
		{Rank: 2, Name: "自社広告", ShopName: "stepmarket", PageNumber: 1, PositionOnPage: 2, IsTarget: true},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAds(&buf, ads))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, adHeader, rows[0])
	require.Equal(t, "1980", rows[1][9])
	require.Equal(t, "", rows[2][9]) // missing price stays blank
	require.Equal(t, "1", rows[2][10])
}

func TestWriteHistory(t *testing.T) {
	rank := 7
	results := []models.RankResult{
		{Rank: &rank, Found: true, ReportedTotal: 248, TotalSnapshots: 10,
			CheckedAt: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)},
		{Found: false, ErrorMessage: "context canceled",
			CheckedAt: time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHistory(&buf, results))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "7", rows[1][1])
	require.Equal(t, "", rows[2][1])
	require.Equal(t, "context canceled", rows[2][5])
}
