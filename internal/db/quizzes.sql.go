package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"studyquiz/internal/models"
)

const quizColumns = `id, title, course_id, user_id, questions, total_questions, generated_from, created_at`

func scanQuiz(row interface{ Scan(...interface{}) error }) (models.Quiz, error) {
	var qz models.Quiz
	var questions []byte
	var generatedFrom pgtype.Text
	err := row.Scan(&qz.ID, &qz.Title, &qz.CourseID, &qz.UserID, &questions, &qz.TotalQuestions, &generatedFrom, &qz.CreatedAt)
	if err != nil {
		return models.Quiz{}, err
	}
	qz.GeneratedFrom = generatedFrom.String
	if err := unmarshalJSON(questions, &qz.Questions); err != nil {
		return models.Quiz{}, err
	}
	qz.Normalize()
	return qz, nil
}

const createQuiz = `-- name: CreateQuiz :one
INSERT INTO quizzes (title, course_id, user_id, questions, total_questions, generated_from)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + quizColumns

// CreateQuiz stores quiz; totalQuestions is recomputed from its questions.
func (q *Queries) CreateQuiz(ctx context.Context, quiz models.Quiz) (models.Quiz, error) {
	quiz.Normalize()
	questions, err := marshalJSON(quiz.Questions)
	if err != nil {
		return models.Quiz{}, err
	}
	return scanQuiz(q.db.QueryRow(ctx, createQuiz,
		quiz.Title,
		quiz.CourseID,
		quiz.UserID,
		questions,
		quiz.TotalQuestions,
		pgtype.Text{String: quiz.GeneratedFrom, Valid: quiz.GeneratedFrom != ""},
	))
}

const getQuiz = `-- name: GetQuiz :one
SELECT ` + quizColumns + ` FROM quizzes WHERE id = $1 AND user_id = $2
`

func (q *Queries) GetQuiz(ctx context.Context, id, userID uuid.UUID) (models.Quiz, error) {
	qz, err := scanQuiz(q.db.QueryRow(ctx, getQuiz, id, userID))
	return qz, notFound(err)
}

const listQuizzesByCourse = `-- name: ListQuizzesByCourse :many
SELECT id, title, course_id, total_questions, generated_from, created_at FROM quizzes
WHERE course_id = $1 AND user_id = $2
ORDER BY created_at DESC
`

func (q *Queries) ListQuizzesByCourse(ctx context.Context, courseID, userID uuid.UUID) ([]models.QuizSummary, error) {
	rows, err := q.db.Query(ctx, listQuizzesByCourse, courseID, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.QuizSummary, error) {
		var s models.QuizSummary
		var generatedFrom pgtype.Text
		err := row.Scan(&s.ID, &s.Title, &s.CourseID, &s.TotalQuestions, &generatedFrom, &s.CreatedAt)
		s.GeneratedFrom = generatedFrom.String
		return s, err
	})
}

const listQuizzesByCourses = `-- name: ListQuizzesByCourses :many
SELECT ` + quizColumns + ` FROM quizzes
WHERE user_id = $1 AND course_id = ANY($2::uuid[])
ORDER BY created_at ASC
`

// ListQuizzesByCourses returns the caller's full quizzes in any of the given courses.
func (q *Queries) ListQuizzesByCourses(ctx context.Context, userID uuid.UUID, courseIDs []uuid.UUID) ([]models.Quiz, error) {
	rows, err := q.db.Query(ctx, listQuizzesByCourses, userID, courseIDs)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Quiz, error) {
		return scanQuiz(row)
	})
}

const deleteQuiz = `-- name: DeleteQuiz :exec
DELETE FROM quizzes WHERE id = $1 AND user_id = $2
`

func (q *Queries) DeleteQuiz(ctx context.Context, id, userID uuid.UUID) error {
	return mustAffect(q.db.Exec(ctx, deleteQuiz, id, userID))
}
