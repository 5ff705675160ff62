package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studyquiz/internal/models"
)

const createQuizAttempt = `-- name: CreateQuizAttempt :one
INSERT INTO quiz_attempts (user_id, quiz_id, course_id, score, correct_count, total_questions, answers)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, completed_at
`

func (q *Queries) CreateQuizAttempt(ctx context.Context, a models.QuizAttempt) (models.QuizAttempt, error) {
	if a.Answers == nil {
		a.Answers = []models.AttemptAnswer{}
	}
	answers, err := marshalJSON(a.Answers)
	if err != nil {
		return models.QuizAttempt{}, err
	}
	err = q.db.QueryRow(ctx, createQuizAttempt,
		a.UserID,
		a.QuizID,
		a.CourseID,
		a.Score,
		a.CorrectCount,
		a.TotalQuestions,
		answers,
	).Scan(&a.ID, &a.CompletedAt)
	if err != nil {
		return models.QuizAttempt{}, err
	}
	return a, nil
}

const listUserAttempts = `-- name: ListUserAttempts :many
SELECT a.id, a.user_id, a.quiz_id, q.title, a.course_id, a.score, a.correct_count,
       a.total_questions, a.answers, a.completed_at
FROM quiz_attempts a
JOIN quizzes q ON q.id = a.quiz_id
WHERE a.user_id = $1
ORDER BY a.completed_at DESC
LIMIT $2
`

// ListUserAttempts returns the caller's most recent attempts, newest first.
func (q *Queries) ListUserAttempts(ctx context.Context, userID uuid.UUID, limit int32) ([]models.QuizAttempt, error) {
	rows, err := q.db.Query(ctx, listUserAttempts, userID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.QuizAttempt, error) {
		var a models.QuizAttempt
		var answers []byte
		if err := row.Scan(&a.ID, &a.UserID, &a.QuizID, &a.QuizTitle, &a.CourseID, &a.Score,
			&a.CorrectCount, &a.TotalQuestions, &answers, &a.CompletedAt); err != nil {
			return a, err
		}
		err := unmarshalJSON(answers, &a.Answers)
		return a, err
	})
}
