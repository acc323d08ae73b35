// Package evaluator scores interview answers with a word-count heuristic.
package evaluator

import (
	"strings"

	"github.com/rbright/mockview/internal/questionbank"
)

const (
	FeedbackGoodDepth = "Good depth."
	FeedbackTooShort  = "Too short. Add clarity/examples."
	FeedbackTeamwork  = "Good teamwork/structure."
	FeedbackSTAR      = "Try STAR format."
)

// technicalTypes are scored on depth; every other type is scored on structure.
var technicalTypes = map[questionbank.InterviewType]struct{}{
	"Technical":     {},
	"Coding":        {},
	"System Design": {},
}

// IsTechnical reports whether kind uses the depth rubric.
func IsTechnical(kind questionbank.InterviewType) bool {
	_, ok := technicalTypes[kind]
	return ok
}

// Evaluate returns the score (0-10) and feedback for one answer.
func Evaluate(answer string, kind questionbank.InterviewType) (int, string) {
	words := len(strings.Fields(answer))

	if IsTechnical(kind) {
		score := clamp(words/5+5, 4, 10)
		if words > 15 {
			return score, FeedbackGoodDepth
		}
		return score, FeedbackTooShort
	}

	score := clamp(words/6+5, 5, 10)
	if strings.Contains(strings.ToLower(answer), "team") {
		return score, FeedbackTeamwork
	}
	return score, FeedbackSTAR
}

func clamp(v, lo, hi int) int {
	return min(hi, max(lo, v))
}
