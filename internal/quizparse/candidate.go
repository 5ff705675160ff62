package quizparse

import "studyquiz/internal/models"

// Candidate is a multiple-choice question recovered from free text.
type Candidate struct {
	Stem    string
	Options []string
	// Letters holds the original marker letter of each surviving option.
	Letters        []string
	DetectedLetter string
	CorrectAnswer  string
	Explanation    string
	Source         string
}

// LowConfidence reports whether the answer fell back to the first option because the block
// carried no usable answer marker.
func (c Candidate) LowConfidence() bool {
	return c.letterIndex(c.DetectedLetter) < 0
}

func (c Candidate) letterIndex(letter string) int {
	if letter == "" {
		return -1
	}
	for i, l := range c.Letters {
		if l == letter {
			return i
		}
	}
	return -1
}

// ToQuestion converts the candidate into a persisted MCQ question.
func (c Candidate) ToQuestion() models.Question {
	opts := make([]string, len(c.Options))
	copy(opts, c.Options)
	return models.Question{
		Type:          models.QuestionTypeMCQ,
		Question:      c.Stem,
		Options:       opts,
		CorrectAnswer: c.CorrectAnswer,
		Explanation:   c.Explanation,
	}
}

// ToQuestions converts candidates in order and counts the low-confidence ones.
func ToQuestions(cands []Candidate) ([]models.Question, int) {
	out := make([]models.Question, 0, len(cands))
	low := 0
	for _, c := range cands {
		if c.LowConfidence() {
			low++
		}
		out = append(out, c.ToQuestion())
	}
	return out, low
}
