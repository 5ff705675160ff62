package quizparse

import (
	"regexp"
	"strings"
)

// boundaryDetector looks for the point where an option E slice runs into text that belongs
// to something else (usually the next question when its header was lost). It returns the
// cut index into s, or false when it has no opinion.
type boundaryDetector func(s string) (int, bool)

const (
	fallbackCutMax = 80
	fallbackCutMin = 50
)

var (
	explicitAnswerRe = regexp.MustCompile(`(?i)\banswere?\s*:`)
	runOnSentenceRe  = regexp.MustCompile(`\b[a-z]+\s+([A-Z][a-z]+)\s+(?:is|are|was|were|has|have|had|do|does|did|can|could|will|would|shall|should|may|might|must)\b`)
	sentenceEndRe    = regexp.MustCompile(`[.?!]\s+[A-Z]`)
	sentenceOpenerRe = regexp.MustCompile(`\s(What|Which|Who|Whom|Whose|When|Where|Why|How|The|An)\s`)
	lonelyArticleRe  = regexp.MustCompile(`[a-z] A [a-z]`)
)

// boundaryDetectors run in priority order; the first detector with a cut wins.
var boundaryDetectors = []boundaryDetector{
	firstCut(explicitAnswerRe, 0, 0),
	firstCut(runOnSentenceRe, 2, 0),
	firstCut(sentenceEndRe, 0, 1),
	firstCut(sentenceOpenerRe, 0, 1),
	firstCut(lonelyArticleRe, 0, 2),
}

// firstCut builds a detector from a pattern. The cut lands at submatch index group (0 for
// the whole match) plus offset. Cuts at position 0 are ignored so an option never ends up
// empty because it merely starts with a trigger word.
func firstCut(re *regexp.Regexp, group, offset int) boundaryDetector {
	return func(s string) (int, bool) {
		for _, loc := range re.FindAllStringSubmatchIndex(s, -1) {
			if loc[group] < 0 {
				continue
			}
			cut := loc[group] + offset
			if cut > 0 && cut <= len(s) {
				return cut, true
			}
		}
		return 0, false
	}
}

// cutOptionE trims a runaway final option.
func cutOptionE(s string) string {
	for _, detect := range boundaryDetectors {
		if cut, ok := detect(s); ok {
			return strings.TrimSpace(s[:cut])
		}
	}
	return truncateAtWord(s, fallbackCutMax, fallbackCutMin)
}

// truncateAtWord shortens s to at most max runes, preferring the last space at or after
// min runes in.
func truncateAtWord(s string, max, min int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	head := r[:max]
	for i := len(head) - 1; i >= min; i-- {
		if head[i] == ' ' {
			return strings.TrimSpace(string(head[:i]))
		}
	}
	return strings.TrimSpace(string(head))
}
