package quizparse

import (
	"regexp"
	"strings"
)

// answerPatterns are tried in order; the first pattern that matches anywhere in a block
// decides the answer letter. Inside a line the bare "Answer B" form only accepts an
// uppercase letter so that prose such as "answer a question" is not taken as a key; at the
// end of a line either case is accepted.
var answerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?i:answere?)\s+([A-E])\b`),
	regexp.MustCompile(`(?im)\banswere?\s+([a-e])[ \t]*$`),
	regexp.MustCompile(`(?i)\banswere?\s*:\s*([a-e])\b`),
	regexp.MustCompile(`(?i)\bcorrect\s*:\s*([a-e])\b`),
	regexp.MustCompile(`(?i)\b([a-e])\s+is\s+correct\b`),
}

// residualPatterns catch answer-marker leftovers that no longer carry a letter.
var residualPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:correct\s+)?answere?\s*[:\-]\s*\S?\s*$`),
	regexp.MustCompile(`(?i)\bcorrect\s*[:\-]\s*$`),
	regexp.MustCompile(`(?i)\banswere?\s+[a-e]\s*$`),
}

// detectAnswer returns the uppercase answer letter of a block, or "" if none is marked.
func detectAnswer(block string) string {
	for _, p := range answerPatterns {
		if m := p.FindStringSubmatch(block); m != nil {
			return strings.ToUpper(m[1])
		}
	}
	return ""
}

// stripAnswerMarkers removes every answer marker from a block.
func stripAnswerMarkers(block string) string {
	for _, p := range answerPatterns {
		block = p.ReplaceAllString(block, " ")
	}
	return block
}

// stripResidual removes leftover answer wording from an option body.
func stripResidual(s string) string {
	for _, p := range residualPatterns {
		s = p.ReplaceAllString(s, " ")
	}
	return s
}
