// Package quizparse recovers multiple-choice questions from text laid out as
// "Question N / a. b. c. d. [e.] / Answer: X", the convention of scanned past papers and of
// the AI generator's prompt.
package quizparse

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minStemLen   = 20
	minOptionLen = 3
	maxOptionLen = 250
	minOptions   = 4
)

var (
	questionHeaderRe = regexp.MustCompile(`(?i)\bquestion\s*\d+`)
	explanationRe    = regexp.MustCompile(`(?is)(?:^|\s)explanation\s*:\s*(.*)$`)
	optionPrefixRe   = regexp.MustCompile(`^(?i)[a-e]\.\s*`)
	spaceRe          = regexp.MustCompile(`\s+`)

	optionLetters = []string{"A", "B", "C", "D", "E"}
	optionMarkers = buildOptionMarkers()
)

// buildOptionMarkers returns one whole-word "x. " matcher per option letter. The letter
// must start the text or follow whitespace, so "i.e. " never opens an option E.
func buildOptionMarkers() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(optionLetters))
	for i, l := range optionLetters {
		out[i] = regexp.MustCompile(`(?i)(?:^|\s)(` + l + `)\.\s`)
	}
	return out
}

// Parse extracts every well-formed question block from text, in source order. It never
// fails; text without structured questions yields an empty slice.
func Parse(text string) []Candidate {
	out := []Candidate{}
	for _, block := range splitBlocks(normalizeNoise(text)) {
		if c, ok := parseBlock(block); ok {
			out = append(out, c)
		}
	}
	return out
}

// splitBlocks cuts text at each question header. Each block keeps its header; anything
// before the first header is dropped.
func splitBlocks(text string) []string {
	locs := questionHeaderRe.FindAllStringIndex(text, -1)
	blocks := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		blocks = append(blocks, text[loc[0]:end])
	}
	return blocks
}

// markerAt finds option marker idx at or after from. It returns the letter position and
// the end of the marker match.
func markerAt(s string, idx, from int) (int, int, bool) {
	if from > len(s) {
		return 0, 0, false
	}
	loc := optionMarkers[idx].FindStringSubmatchIndex(s[from:])
	if loc == nil {
		return 0, 0, false
	}
	return from + loc[2], from + loc[1], true
}

func parseBlock(raw string) (Candidate, bool) {
	detected := detectAnswer(raw)
	cleaned := stripAnswerMarkers(raw)

	aStart, aEnd, ok := markerAt(cleaned, 0, 0)
	if !ok {
		return Candidate{}, false
	}
	stem := collapse(cleaned[:aStart])
	if utf8.RuneCountInString(stem) < minStemLen {
		return Candidate{}, false
	}

	body := cleaned[aStart:]
	explanation := ""
	if loc := explanationRe.FindStringSubmatchIndex(body); loc != nil {
		explanation = collapse(body[loc[2]:loc[3]])
		body = body[:loc[0]]
	}

	// Positions are relative to body from here on.
	starts := []int{0}
	from := aEnd - aStart
	for idx := 1; idx < len(optionLetters); idx++ {
		start, end, ok := markerAt(body, idx, from)
		if !ok {
			if idx < minOptions {
				return Candidate{}, false
			}
			break
		}
		starts = append(starts, start)
		from = end
	}

	c := Candidate{
		Stem:           stem,
		DetectedLetter: detected,
		Explanation:    explanation,
		Source:         raw,
	}
	for i, start := range starts {
		end := len(body)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		text, ok := cleanOption(body[start:end], i == 4)
		if !ok {
			continue
		}
		c.Options = append(c.Options, text)
		c.Letters = append(c.Letters, optionLetters[i])
	}
	if len(c.Options) < minOptions {
		return Candidate{}, false
	}

	if i := c.letterIndex(detected); i >= 0 {
		c.CorrectAnswer = c.Options[i]
	} else {
		c.CorrectAnswer = c.Options[0]
	}
	return c, true
}

// cleanOption turns a raw option slice (marker included) into option text. The length
// guard is applied to the located span, marker and all, after cleanup.
func cleanOption(slice string, last bool) (string, bool) {
	s := collapse(slice)
	letter := ""
	if m := optionPrefixRe.FindString(s); m != "" {
		letter = strings.ToUpper(m[:1])
		s = s[len(m):]
	}
	if last {
		s = cutOptionE(s)
	}
	s = collapse(stripResidual(s))
	if s == "" {
		return "", false
	}
	span := utf8.RuneCountInString(letter + ". " + s)
	if span < minOptionLen || span > maxOptionLen {
		return "", false
	}
	return s, true
}

func collapse(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
