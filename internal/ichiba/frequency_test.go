package ichiba

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitPhrase(t *testing.T) {
	require.Equal(t, []string{"ペット", "ブランケット"}, SplitPhrase("ペット ブランケット"))

	// Mixed-script tokens split into per-script runs, lowercased.
	require.Equal(t, []string{"ペット", "毛布", "xl"}, SplitPhrase("ペット毛布XL"))

	require.Empty(t, SplitPhrase(""))
	require.Empty(t, SplitPhrase("!!!"))
}

func TestKeywordFrequency(t *testing.T) {
	freq := KeywordFrequency(
		"ペット ブランケット",
		"ペット用ブランケット ふわふわ ペットにやさしい",
		"人気のブランケット",
		"ペットがよろこぶブランケットです",
	)

	require.Equal(t, 3, freq.NameCount)        // ペット x2, ブランケット x1
	require.Equal(t, 1, freq.CatchcopyCount)   // ブランケット x1
	require.Equal(t, 2, freq.DescriptionCount) // ペット x1, ブランケット x1
	require.Equal(t, 6, freq.TotalCount)

	require.Equal(t, WordCounts{Name: 2, Catchcopy: 0, Description: 1, Total: 3}, freq.Details["ペット"])
	require.Equal(t, WordCounts{Name: 1, Catchcopy: 1, Description: 1, Total: 3}, freq.Details["ブランケット"])
}

func TestKeywordFrequencySkipsSingleASCIILetters(t *testing.T) {
	// A lone latin letter matches far too often to be a useful signal.
	freq := KeywordFrequency("t シャツ", "tシャツ 白 tシャツ", "", "")
	require.NotContains(t, freq.Details, "t")
	require.Equal(t, 2, freq.Details["シャツ"].Name)
}

func TestKeywordFrequencyCaseInsensitive(t *testing.T) {
	freq := KeywordFrequency("USB ケーブル", "USB-C usbケーブル", "", "")
	require.Equal(t, 2, freq.Details["usb"].Name)
}

func TestDetailString(t *testing.T) {
	freq := KeywordFrequency("ペット ブランケット", "ペットブランケット", "", "ペット")
	require.Equal(t, "ブランケット:1(名1/キ0/説0) ペット:2(名1/キ0/説1)", freq.DetailString())

	require.Equal(t, "", Frequency{}.DetailString())
}
