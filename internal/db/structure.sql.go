package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studyquiz/internal/models"
)

const listYears = `-- name: ListYears :many
SELECT id, name, user_id, created_at FROM years
WHERE user_id = $1
ORDER BY created_at ASC
`

func (q *Queries) ListYears(ctx context.Context, userID uuid.UUID) ([]models.Year, error) {
	rows, err := q.db.Query(ctx, listYears, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Year, error) {
		var y models.Year
		err := row.Scan(&y.ID, &y.Name, &y.UserID, &y.CreatedAt)
		return y, err
	})
}

const getYear = `-- name: GetYear :one
SELECT id, name, user_id, created_at FROM years WHERE id = $1 AND user_id = $2
`

func (q *Queries) GetYear(ctx context.Context, id, userID uuid.UUID) (models.Year, error) {
	var y models.Year
	err := q.db.QueryRow(ctx, getYear, id, userID).Scan(&y.ID, &y.Name, &y.UserID, &y.CreatedAt)
	return y, notFound(err)
}

const createYear = `-- name: CreateYear :one
INSERT INTO years (user_id, name) VALUES ($1, $2)
RETURNING id, name, user_id, created_at
`

func (q *Queries) CreateYear(ctx context.Context, userID uuid.UUID, name string) (models.Year, error) {
	var y models.Year
	err := q.db.QueryRow(ctx, createYear, userID, name).Scan(&y.ID, &y.Name, &y.UserID, &y.CreatedAt)
	return y, err
}

const renameYear = `-- name: RenameYear :one
UPDATE years SET name = $3 WHERE id = $1 AND user_id = $2
RETURNING id, name, user_id, created_at
`

func (q *Queries) RenameYear(ctx context.Context, id, userID uuid.UUID, name string) (models.Year, error) {
	var y models.Year
	err := q.db.QueryRow(ctx, renameYear, id, userID, name).Scan(&y.ID, &y.Name, &y.UserID, &y.CreatedAt)
	return y, notFound(err)
}

const deleteYear = `-- name: DeleteYear :exec
DELETE FROM years WHERE id = $1 AND user_id = $2
`

// DeleteYear removes a year together with its courses, files and quizzes.
func (q *Queries) DeleteYear(ctx context.Context, id, userID uuid.UUID) error {
	return mustAffect(q.db.Exec(ctx, deleteYear, id, userID))
}

const courseColumns = `id, name, year_id, user_id, created_at`

func scanCourse(row interface{ Scan(...interface{}) error }) (models.Course, error) {
	var c models.Course
	err := row.Scan(&c.ID, &c.Name, &c.YearID, &c.UserID, &c.CreatedAt)
	return c, err
}

const listCourses = `-- name: ListCourses :many
SELECT ` + courseColumns + ` FROM courses
WHERE user_id = $1 AND ($2::uuid IS NULL OR year_id = $2)
ORDER BY created_at DESC
`

// ListCourses lists the caller's courses, limited to one year when yearID is non-nil.
func (q *Queries) ListCourses(ctx context.Context, userID uuid.UUID, yearID *uuid.UUID) ([]models.Course, error) {
	rows, err := q.db.Query(ctx, listCourses, userID, yearID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Course, error) {
		return scanCourse(row)
	})
}

const getCourse = `-- name: GetCourse :one
SELECT ` + courseColumns + ` FROM courses WHERE id = $1 AND user_id = $2
`

func (q *Queries) GetCourse(ctx context.Context, id, userID uuid.UUID) (models.Course, error) {
	c, err := scanCourse(q.db.QueryRow(ctx, getCourse, id, userID))
	return c, notFound(err)
}

const getCoursesByIDs = `-- name: GetCoursesByIDs :many
SELECT ` + courseColumns + ` FROM courses
WHERE user_id = $1 AND id = ANY($2::uuid[])
`

// GetCoursesByIDs returns the caller's courses among ids, in no particular order.
func (q *Queries) GetCoursesByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.Course, error) {
	rows, err := q.db.Query(ctx, getCoursesByIDs, userID, ids)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Course, error) {
		return scanCourse(row)
	})
}

const createCourse = `-- name: CreateCourse :one
INSERT INTO courses (year_id, user_id, name) VALUES ($1, $2, $3)
RETURNING ` + courseColumns

type CreateCourseParams struct {
	YearID uuid.UUID
	UserID uuid.UUID
	Name   string
}

func (q *Queries) CreateCourse(ctx context.Context, arg CreateCourseParams) (models.Course, error) {
	return scanCourse(q.db.QueryRow(ctx, createCourse, arg.YearID, arg.UserID, arg.Name))
}

const renameCourse = `-- name: RenameCourse :one
UPDATE courses SET name = $3 WHERE id = $1 AND user_id = $2
RETURNING ` + courseColumns

func (q *Queries) RenameCourse(ctx context.Context, id, userID uuid.UUID, name string) (models.Course, error) {
	c, err := scanCourse(q.db.QueryRow(ctx, renameCourse, id, userID, name))
	return c, notFound(err)
}

const deleteCourse = `-- name: DeleteCourse :exec
DELETE FROM courses WHERE id = $1 AND user_id = $2
`

// DeleteCourse removes a course together with its files and quizzes.
func (q *Queries) DeleteCourse(ctx context.Context, id, userID uuid.UUID) error {
	return mustAffect(q.db.Exec(ctx, deleteCourse, id, userID))
}
