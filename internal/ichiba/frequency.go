package ichiba

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Phrase words are split into runs of a single script before counting, so a
// compound like "ペット毛布L" contributes its katakana, kanji and latin
// parts separately.
var scriptRun = regexp.MustCompile(`[ぁ-ん]+|[ァ-ヶー]+|[一-龠々]+|[a-zA-Z0-9]+`)

var (
	japaneseWord = regexp.MustCompile(`^[ぁ-んァ-ヶ一-龠々ー]+$`)
	asciiWord    = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// WordCounts holds per-field occurrence counts for one phrase word.
type WordCounts struct {
	Name        int `json:"name"`
	Catchcopy   int `json:"catchcopy"`
	Description int `json:"description"`
	Total       int `json:"total"`
}

// Frequency summarizes how often the search phrase's words appear in a
// listing's visible text.
type Frequency struct {
	NameCount        int                   `json:"name_count"`
	CatchcopyCount   int                   `json:"catchcopy_count"`
	DescriptionCount int                   `json:"description_count"`
	TotalCount       int                   `json:"total_count"`
	Words            []string              `json:"words"`
	Details          map[string]WordCounts `json:"details"`
}

// SplitPhrase breaks a search phrase into countable words: whitespace split
// first, then each token split into single-script runs, all lowercased.
func SplitPhrase(phrase string) []string {
	var words []string
	for _, token := range strings.Fields(strings.ToLower(phrase)) {
		words = append(words, scriptRun.FindAllString(token, -1)...)
	}
	return words
}

// KeywordFrequency counts phrase-word occurrences in a listing's name,
// tagline and description. Japanese words count from one character; ASCII
// words only from two, since single latin characters match too noisily.
func KeywordFrequency(phrase, name, catchcopy, description string) Frequency {
	freq := Frequency{Details: make(map[string]WordCounts)}
	freq.Words = SplitPhrase(phrase)

	name = strings.ToLower(name)
	catchcopy = strings.ToLower(catchcopy)
	description = strings.ToLower(description)

	for _, word := range freq.Words {
		if !countable(word) {
			continue
		}
		wc := WordCounts{
			Name:        strings.Count(name, word),
			Catchcopy:   strings.Count(catchcopy, word),
			Description: strings.Count(description, word),
		}
		wc.Total = wc.Name + wc.Catchcopy + wc.Description
		if wc.Total > 0 {
			freq.Details[word] = wc
		}
		freq.NameCount += wc.Name
		freq.CatchcopyCount += wc.Catchcopy
		freq.DescriptionCount += wc.Description
	}
	freq.TotalCount = freq.NameCount + freq.CatchcopyCount + freq.DescriptionCount
	return freq
}

func countable(word string) bool {
	switch {
	case japaneseWord.MatchString(word):
		return utf8.RuneCountInString(word) >= 1
	case asciiWord.MatchString(word):
		return len(word) >= 2
	default:
		return false
	}
}

// DetailString renders the per-word counts as one flat string for CSV
// export, e.g. "ペット:3(名1/キ1/説1) ブランケット:2(名2/キ0/説0)".
func (f Frequency) DetailString() string {
	if len(f.Details) == 0 {
		return ""
	}
	words := make([]string, 0, len(f.Details))
	for w := range f.Details {
		words = append(words, w)
	}
	sort.Strings(words)

	parts := make([]string, 0, len(words))
	for _, w := range words {
		wc := f.Details[w]
		parts = append(parts, fmt.Sprintf("%s:%d(名%d/キ%d/説%d)", w, wc.Total, wc.Name, wc.Catchcopy, wc.Description))
	}
	return strings.Join(parts, " ")
}
