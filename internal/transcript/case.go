package transcript

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

var (
	pronounIContractionPattern = regexp.MustCompile(`\bi['’](?:m|d|ll|ve|re|s)\b`)

	abbreviations = []string{"e.g", "i.e", "etc", "vs", "approx", "mr", "mrs", "ms", "dr"}
)

func capitalizeSentenceStarts(text string) string {
	runes := []rune(text)

	var out strings.Builder
	out.Grow(len(text))

	capitalize := true
	for i, r := range runes {
		switch {
		case capitalize && unicode.IsLetter(r):
			r = unicode.ToUpper(r)
			capitalize = false
		case capitalize && unicode.IsDigit(r):
			capitalize = false
		}
		out.WriteRune(r)

		switch r {
		case '!', '?':
			capitalize = true
		case '.':
			capitalize = isSentenceBoundaryPeriod(runes, i)
		}
	}
	return out.String()
}

func isSentenceBoundaryPeriod(runes []rune, idx int) bool {
	// 3.14 and file.go are not boundaries.
	if idx+1 < len(runes) && !unicode.IsSpace(runes[idx+1]) {
		return false
	}

	start := idx
	for start > 0 && (unicode.IsLetter(runes[start-1]) || runes[start-1] == '.') {
		start--
	}
	token := strings.ToLower(strings.Trim(string(runes[start:idx]), "."))
	return !slices.Contains(abbreviations, token)
}

// capitalizePronounI expects single-space separated text.
func capitalizePronounI(text string) string {
	words := strings.Split(text, " ")
	for i, word := range words {
		core := strings.TrimFunc(word, func(r rune) bool {
			return unicode.IsPunct(r) && r != '.'
		})
		if strings.TrimSuffix(core, ".") == "i" {
			words[i] = strings.Replace(word, "i", "I", 1)
		}
	}
	return strings.Join(words, " ")
}
