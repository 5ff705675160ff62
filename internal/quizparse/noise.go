package quizparse

import "regexp"

// replacement is one noise-normalisation rule applied before structural parsing.
type replacement struct {
	pattern *regexp.Regexp
	with    string
}

// noiseReplacements scrub artifacts that OCR engines and document exporters leave behind in
// past papers. They are applied in order, each over the whole text.
var noiseReplacements = []replacement{
	{regexp.MustCompile(`\x{00A0}|\x{2007}|\x{202F}`), " "},
	{regexp.MustCompile(`\f|\r\n?`), "\n"},
	{regexp.MustCompile(`\x{FB01}`), "fi"},
	{regexp.MustCompile(`\x{FB02}`), "fl"},
	{regexp.MustCompile(`[\x{2018}\x{2019}\x{201B}]`), "'"},
	{regexp.MustCompile(`[\x{201C}\x{201D}]`), `"`},
	{regexp.MustCompile(`[\x{2013}\x{2014}]`), "-"},
	// Scanner apps stamp every page.
	{regexp.MustCompile(`(?i)scanned\s+(?:with|by)\s+(?:cam\s*scanner|adobe\s+scan)`), " "},
	{regexp.MustCompile(`(?im)^\s*page\s+\d+(?:\s+of\s+\d+)?\s*$`), " "},
	{regexp.MustCompile(`(?im)^\s*-\s*\d+\s*-\s*$`), " "},
	// OCR tends to break or decorate the question header.
	{regexp.MustCompile(`(?i)\bques\s+tion\b`), "Question"},
	{regexp.MustCompile(`(?i)\bquestion\s*[#№]\s*(\d)`), "Question $1"},
	{regexp.MustCompile(`(?i)\bans\s+wer`), "Answer"},
	// An answer key glued to the last option, as in "Berlin6Answer: B".
	{regexp.MustCompile(`(?i)([\p{L}\p{N}])(answere?\s*:)`), "$1 $2"},
}

// normalizeNoise applies every noise replacement to text.
func normalizeNoise(text string) string {
	for _, r := range noiseReplacements {
		text = r.pattern.ReplaceAllString(text, r.with)
	}
	return text
}
