package db

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SearchParams struct {
	UserID uuid.UUID
	Query  string
	// CourseID limits the search to one course when non-nil.
	CourseID *uuid.UUID
	Limit    int32
}

// pattern turns a free-text query into a case-insensitive ILIKE substring pattern.
func (p SearchParams) pattern() string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(p.Query)) + "%"
}

type FileHit struct {
	ID         uuid.UUID
	Name       string
	CourseID   uuid.UUID
	CourseName string
	UploadedAt time.Time
}

type QuizHit struct {
	ID             uuid.UUID
	Title          string
	CourseID       uuid.UUID
	CourseName     string
	TotalQuestions int
	CreatedAt      time.Time
}

type CourseHit struct {
	ID       uuid.UUID
	Name     string
	YearID   uuid.UUID
	YearName string
}

const searchFiles = `-- name: SearchFiles :many
SELECT f.id, f.name, f.course_id, c.name, f.uploaded_at
FROM files f JOIN courses c ON c.id = f.course_id
WHERE f.user_id = $1 AND f.name ILIKE $2 AND ($3::uuid IS NULL OR f.course_id = $3)
ORDER BY f.uploaded_at DESC
LIMIT $4
`

func (q *Queries) SearchFiles(ctx context.Context, arg SearchParams) ([]FileHit, error) {
	rows, err := q.db.Query(ctx, searchFiles, arg.UserID, arg.pattern(), arg.CourseID, arg.Limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (FileHit, error) {
		var h FileHit
		err := row.Scan(&h.ID, &h.Name, &h.CourseID, &h.CourseName, &h.UploadedAt)
		return h, err
	})
}

const searchQuizzes = `-- name: SearchQuizzes :many
SELECT q.id, q.title, q.course_id, c.name, q.total_questions, q.created_at
FROM quizzes q JOIN courses c ON c.id = q.course_id
WHERE q.user_id = $1 AND q.title ILIKE $2 AND ($3::uuid IS NULL OR q.course_id = $3)
ORDER BY q.created_at DESC
LIMIT $4
`

func (q *Queries) SearchQuizzes(ctx context.Context, arg SearchParams) ([]QuizHit, error) {
	rows, err := q.db.Query(ctx, searchQuizzes, arg.UserID, arg.pattern(), arg.CourseID, arg.Limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (QuizHit, error) {
		var h QuizHit
		err := row.Scan(&h.ID, &h.Title, &h.CourseID, &h.CourseName, &h.TotalQuestions, &h.CreatedAt)
		return h, err
	})
}

const searchCourses = `-- name: SearchCourses :many
SELECT c.id, c.name, c.year_id, y.name
FROM courses c JOIN years y ON y.id = c.year_id
WHERE c.user_id = $1 AND c.name ILIKE $2
ORDER BY c.name ASC
LIMIT $3
`

func (q *Queries) SearchCourses(ctx context.Context, arg SearchParams) ([]CourseHit, error) {
	rows, err := q.db.Query(ctx, searchCourses, arg.UserID, arg.pattern(), arg.Limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (CourseHit, error) {
		var h CourseHit
		err := row.Scan(&h.ID, &h.Name, &h.YearID, &h.YearName)
		return h, err
	})
}
