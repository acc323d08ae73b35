// Package transcript normalizes recognized speech before it reaches the answer box.
package transcript

import "strings"

// Options controls transcript formatting.
type Options struct {
	CapitalizeSentences bool
}

// Assemble joins recognized segments and applies configured normalization.
func Assemble(segments []string, opts Options) string {
	if len(segments) == 0 {
		return ""
	}

	normalized := strings.Join(strings.Fields(strings.Join(segments, " ")), " ")
	if normalized == "" {
		return ""
	}

	if opts.CapitalizeSentences {
		normalized = capitalizeSentences(normalized)
	}
	return normalized
}

func capitalizeSentences(text string) string {
	text = capitalizeSentenceStarts(text)
	text = pronounIContractionPattern.ReplaceAllStringFunc(text, func(match string) string {
		return "I" + match[1:]
	})
	return capitalizePronounI(text)
}
