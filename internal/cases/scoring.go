package cases

import (
	"strings"

	"github.com/arbovm/levenshtein"
	"github.com/google/uuid"
)

// ScoreResult compares a trainee's free-text findings against the expert
// findings of a case.
type ScoreResult struct {
	AttemptID string   `json:"attempt_id"`
	Score     float64  `json:"score"` // 0..100
	Matched   []string `json:"matched_findings"`
	Missed    []string `json:"missed_findings"`
}

// ScoreFindings marks an expert finding as matched when at least half of
// its content words appear in the trainee's answer, tolerating one-letter
// typos on longer words. It deliberately rewards recall of the concept,
// not phrasing.
func ScoreFindings(c Case, answer string) ScoreResult {
	answerTokens := contentTokens(answer)

	result := ScoreResult{AttemptID: uuid.NewString()}
	for _, finding := range c.Findings {
		refTokens := contentTokens(finding)
		if matchedFraction(refTokens, answerTokens) >= 0.5 {
			result.Matched = append(result.Matched, finding)
		} else {
			result.Missed = append(result.Missed, finding)
		}
	}

	if len(c.Findings) > 0 {
		result.Score = float64(len(result.Matched)) / float64(len(c.Findings)) * 100
	}
	return result
}

// contentTokens lowercases, strips punctuation, and keeps words long
// enough to carry meaning.
func contentTokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})

	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= 4 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func matchedFraction(ref, answer []string) float64 {
	if len(ref) == 0 {
		return 0
	}
	matched := 0
	for _, r := range ref {
		if containsToken(answer, r) {
			matched++
		}
	}
	return float64(matched) / float64(len(ref))
}

func containsToken(tokens []string, needle string) bool {
	maxDist := 0
	if len(needle) >= 6 {
		maxDist = 1
	}
	for _, t := range tokens {
		if t == needle {
			return true
		}
		if maxDist > 0 && levenshtein.Distance(t, needle) <= maxDist {
			return true
		}
	}
	return false
}
