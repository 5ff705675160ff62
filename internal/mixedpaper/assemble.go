// Package mixedpaper builds ad-hoc practice papers, either by sampling stored quizzes across
// courses or by reading an uploaded plain-text paper.
package mixedpaper

import (
	"errors"
	"math/rand"
	"strings"

	"studyquiz/internal/models"
)

var (
	// ErrNoQuestionsAvailable means the selected courses hold no questions.
	ErrNoQuestionsAvailable = errors.New("no questions found in selected courses")
	// ErrNoValidQuestions means an uploaded paper contained no readable question.
	ErrNoValidQuestions = errors.New("no valid questions found in file")
)

// DefaultPerCourse is the number of questions drawn per course when none is requested.
const DefaultPerCourse = 5

// CourseQuizzes is everything one course contributes to a paper.
type CourseQuizzes struct {
	CourseID   string
	CourseName string
	Quizzes    []models.Quiz
}

// Assemble draws up to perCourse questions from each course without replacement and
// shuffles the combined list. Courses without questions contribute nothing.
func Assemble(courses []CourseQuizzes, perCourse int, rng *rand.Rand) (*models.MixedPaper, error) {
	if perCourse <= 0 {
		perCourse = DefaultPerCourse
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	var picked []models.MixedQuestion
	names := make([]string, 0, len(courses))
	for _, c := range courses {
		if c.CourseName != "" {
			names = append(names, c.CourseName)
		}
		var pool []models.MixedQuestion
		for _, q := range c.Quizzes {
			for _, question := range q.Questions {
				pool = append(pool, models.MixedQuestion{
					Question:     question,
					SourceQuiz:   q.Title,
					SourceCourse: c.CourseID,
				})
			}
		}
		shuffle(rng, pool)
		if len(pool) > perCourse {
			pool = pool[:perCourse]
		}
		picked = append(picked, pool...)
	}
	if len(picked) == 0 {
		return nil, ErrNoQuestionsAvailable
	}
	shuffle(rng, picked)

	joined := strings.Join(names, ", ")
	return &models.MixedPaper{
		Title:          "Mixed Paper: " + joined,
		TotalQuestions: len(picked),
		Questions:      picked,
		Courses:        joined,
	}, nil
}

func shuffle(rng *rand.Rand, qs []models.MixedQuestion) {
	rng.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
}
