package ichiba

import "strings"

// Bare single-letter size tokens confuse the search API; expand them into
// the disambiguated size vocabulary sellers actually use.
var sizeTokens = map[string]string{
	"l": "Lサイズ",
	"m": "Mサイズ",
	"s": "Sサイズ",
}

// SanitizeKeyword normalizes a raw search phrase into an API-safe query:
// whitespace collapsed, bare l/m/s expanded to size tokens, any other
// single ASCII letter uppercased. Pure and idempotent.
func SanitizeKeyword(raw string) string {
	words := strings.Fields(raw)
	for i, w := range words {
		if repl, ok := sizeTokens[strings.ToLower(w)]; ok {
			words[i] = repl
			continue
		}
		if len(w) == 1 && isASCIILetter(w[0]) {
			words[i] = strings.ToUpper(w)
		}
	}
	return strings.Join(words, " ")
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
