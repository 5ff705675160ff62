package mixedpaper

import (
	"regexp"
	"strings"

	"studyquiz/internal/models"
)

const (
	defaultUploadTitle = "Uploaded Mixed Paper"
	uploadedCourses    = "Uploaded"
)

var (
	blankLineRe   = regexp.MustCompile(`\n[ \t]*\n`)
	stemRe        = regexp.MustCompile(`(?i)^(?:q|question)\s*:\s*(.*)$`)
	optionLineRe  = regexp.MustCompile(`(?i)^[a-d]\)\s*(.*)$`)
	answerRe      = regexp.MustCompile(`(?i)^(?:correct|answer)\s*:\s*(.*)$`)
	shortAnswerRe = regexp.MustCompile(`(?i)^a\s*:\s*(.*)$`)
	explainRe     = regexp.MustCompile(`(?i)^(?:exp|explanation)\s*:\s*(.*)$`)
)

// ParseUpload reads a plain-text paper made of blank-line separated blocks:
//
//	Q: 2+2?
//	a) 3
//	b) 4
//	Correct: b
//	Exp: basic arithmetic
//
// Option lines are kept verbatim. A "Correct:" or "Answer:" value of one or two characters
// is stored as the literal answer key; a longer value, or an "A:" line, is the answer text
// of a short-answer question unless it names one of the options.
func ParseUpload(text, title string) (*models.MixedPaper, error) {
	text = strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\r", "\n")

	var qs []models.MixedQuestion
	for _, block := range blankLineRe.Split(text, -1) {
		if q, ok := parseUploadBlock(block); ok {
			qs = append(qs, models.MixedQuestion{Question: q, SourceQuiz: title})
		}
	}
	if len(qs) == 0 {
		return nil, ErrNoValidQuestions
	}
	if title == "" {
		title = defaultUploadTitle
	}
	return &models.MixedPaper{
		Title:          title,
		TotalQuestions: len(qs),
		Questions:      qs,
		Courses:        uploadedCourses,
	}, nil
}

func parseUploadBlock(block string) (models.Question, bool) {
	var (
		stem, answer, explanation string
		hasStem, saq              bool
		options                   []string
	)
	for _, raw := range strings.Split(block, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		switch {
		case stemRe.MatchString(line):
			stem = strings.TrimSpace(stemRe.FindStringSubmatch(line)[1])
			hasStem = true
		case optionLineRe.MatchString(line):
			options = append(options, line)
		case shortAnswerRe.MatchString(line):
			answer = strings.TrimSpace(shortAnswerRe.FindStringSubmatch(line)[1])
			saq = true
		case answerRe.MatchString(line):
			answer = strings.TrimSpace(answerRe.FindStringSubmatch(line)[1])
			saq = len(answer) > 2
		case explainRe.MatchString(line):
			explanation = strings.TrimSpace(explainRe.FindStringSubmatch(line)[1])
		case hasStem && len(options) == 0 && answer == "":
			stem += " " + line
		}
	}
	if !hasStem || stem == "" {
		return models.Question{}, false
	}

	q := models.Question{Question: stem, Explanation: explanation, CorrectAnswer: answer}
	if saq && len(options) > 0 {
		if opt, ok := optionNamed(options, answer); ok {
			saq = false
			q.CorrectAnswer = opt
		}
	}
	if saq || len(options) == 0 {
		q.Type = models.QuestionTypeSAQ
		q.Options = []string{}
		return q, true
	}
	q.Type = models.QuestionTypeMCQ
	q.Options = options
	return q, true
}

// optionNamed finds the option line whose text, marker removed, equals answer.
func optionNamed(options []string, answer string) (string, bool) {
	for _, o := range options {
		body := strings.TrimSpace(optionLineRe.FindStringSubmatch(o)[1])
		if strings.EqualFold(body, answer) {
			return o, true
		}
	}
	return "", false
}
