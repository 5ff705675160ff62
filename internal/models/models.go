package models

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType distinguishes multiple-choice from short-answer questions
type QuestionType string

const (
	QuestionTypeMCQ QuestionType = "MCQ"
	QuestionTypeSAQ QuestionType = "SAQ"
)

// Question is a single quiz question. CorrectAnswer holds the answer text, not an index.
type Question struct {
	Type          QuestionType `json:"type"`
	Question      string       `json:"question"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correctAnswer"`
	Explanation   string       `json:"explanation,omitempty"`
}

// HasValidAnswer reports whether an MCQ's answer is one of its options.
// SAQ questions are always considered valid.
func (q Question) HasValidAnswer() bool {
	if q.Type != QuestionTypeMCQ {
		return true
	}
	for _, o := range q.Options {
		if o == q.CorrectAnswer {
			return true
		}
	}
	return false
}

// Quiz represents a persisted quiz owned by a user inside a course
type Quiz struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	CourseID       uuid.UUID  `json:"courseId"`
	UserID         uuid.UUID  `json:"userId"`
	Questions      []Question `json:"questions"`
	TotalQuestions int        `json:"totalQuestions"`
	GeneratedFrom  string     `json:"generatedFrom,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Normalize recomputes derived fields. Call it before every save.
func (q *Quiz) Normalize() {
	if q.Questions == nil {
		q.Questions = []Question{}
	}
	for i := range q.Questions {
		if q.Questions[i].Options == nil {
			q.Questions[i].Options = []string{}
		}
	}
	q.TotalQuestions = len(q.Questions)
}

// QuizSummary is the list view of a quiz (no questions)
type QuizSummary struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	CourseID       uuid.UUID `json:"courseId"`
	TotalQuestions int       `json:"totalQuestions"`
	GeneratedFrom  string    `json:"generatedFrom,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// MixedQuestion is a question tagged with where it was sampled from
type MixedQuestion struct {
	Question
	SourceQuiz   string `json:"sourceQuiz,omitempty"`
	SourceCourse string `json:"sourceCourse,omitempty"`
}

// MixedPaper is an ad-hoc paper handed straight to the client. It is never stored.
type MixedPaper struct {
	Title          string          `json:"title"`
	TotalQuestions int             `json:"totalQuestions"`
	Questions      []MixedQuestion `json:"questions"`
	Courses        string          `json:"courses"`
}

// RawDocument is an uploaded document held in memory for one generation request
type RawDocument struct {
	Name     string
	MimeType string
	Data     []byte
}

// Year groups courses
type Year struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	UserID    uuid.UUID `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Course belongs to a year and owns files and quizzes
type Course struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	YearID    uuid.UUID `json:"yearId"`
	UserID    uuid.UUID `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// File is an uploaded course document. Its bytes live in blob storage under StorageKey,
// and optionally at a public URL.
type File struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	CourseID   uuid.UUID `json:"courseId"`
	UserID     uuid.UUID `json:"userId"`
	MimeType   string    `json:"mimeType"`
	Size       int64     `json:"size"`
	StorageKey string    `json:"-"`
	URL        string    `json:"url,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// AttemptAnswer records one answered question of an attempt
type AttemptAnswer struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
}

// QuizAttempt is a scored submission of a quiz
type QuizAttempt struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"userId"`
	QuizID         uuid.UUID       `json:"quizId"`
	QuizTitle      string          `json:"quizTitle,omitempty"`
	CourseID       uuid.UUID       `json:"courseId"`
	Score          float64         `json:"score"`
	CorrectCount   int             `json:"correctCount"`
	TotalQuestions int             `json:"totalQuestions"`
	Answers        []AttemptAnswer `json:"answers"`
	CompletedAt    time.Time       `json:"completedAt"`
}

// User is an application account
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	GoogleID  string    `json:"googleId,omitempty"`
	Picture   string    `json:"picture,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
