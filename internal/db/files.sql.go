package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"studyquiz/internal/models"
)

const fileColumns = `id, name, course_id, user_id, mime_type, size, storage_key, url, uploaded_at`

func scanFile(row interface{ Scan(...interface{}) error }) (models.File, error) {
	var f models.File
	var url pgtype.Text
	err := row.Scan(&f.ID, &f.Name, &f.CourseID, &f.UserID, &f.MimeType, &f.Size, &f.StorageKey, &url, &f.UploadedAt)
	f.URL = url.String
	return f, err
}

const createFile = `-- name: CreateFile :one
INSERT INTO files (id, name, course_id, user_id, mime_type, size, storage_key, url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + fileColumns

type CreateFileParams struct {
	ID         uuid.UUID
	Name       string
	CourseID   uuid.UUID
	UserID     uuid.UUID
	MimeType   string
	Size       int64
	StorageKey string
	URL        pgtype.Text
}

func (q *Queries) CreateFile(ctx context.Context, arg CreateFileParams) (models.File, error) {
	return scanFile(q.db.QueryRow(ctx, createFile,
		arg.ID,
		arg.Name,
		arg.CourseID,
		arg.UserID,
		arg.MimeType,
		arg.Size,
		arg.StorageKey,
		arg.URL,
	))
}

const getFile = `-- name: GetFile :one
SELECT ` + fileColumns + ` FROM files WHERE id = $1 AND user_id = $2
`

func (q *Queries) GetFile(ctx context.Context, id, userID uuid.UUID) (models.File, error) {
	f, err := scanFile(q.db.QueryRow(ctx, getFile, id, userID))
	return f, notFound(err)
}

const listFilesByCourse = `-- name: ListFilesByCourse :many
SELECT ` + fileColumns + ` FROM files
WHERE course_id = $1 AND user_id = $2
ORDER BY uploaded_at DESC
`

func (q *Queries) ListFilesByCourse(ctx context.Context, courseID, userID uuid.UUID) ([]models.File, error) {
	rows, err := q.db.Query(ctx, listFilesByCourse, courseID, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.File, error) {
		return scanFile(row)
	})
}

const renameFile = `-- name: RenameFile :one
UPDATE files SET name = $3 WHERE id = $1 AND user_id = $2
RETURNING ` + fileColumns

func (q *Queries) RenameFile(ctx context.Context, id, userID uuid.UUID, name string) (models.File, error) {
	f, err := scanFile(q.db.QueryRow(ctx, renameFile, id, userID, name))
	return f, notFound(err)
}

const deleteFile = `-- name: DeleteFile :one
DELETE FROM files WHERE id = $1 AND user_id = $2
RETURNING ` + fileColumns

// DeleteFile removes a file row and returns it so the caller can drop the stored object.
func (q *Queries) DeleteFile(ctx context.Context, id, userID uuid.UUID) (models.File, error) {
	f, err := scanFile(q.db.QueryRow(ctx, deleteFile, id, userID))
	return f, notFound(err)
}

const listStorageKeys = `-- name: ListStorageKeys :many
SELECT f.storage_key FROM files f
JOIN courses c ON c.id = f.course_id
WHERE f.user_id = $1 AND f.storage_key <> ''
  AND ($2::uuid IS NULL OR c.id = $2)
  AND ($3::uuid IS NULL OR c.year_id = $3)
`

// ListStorageKeys returns the object keys of the caller's files in a course or a year.
// Called before a cascading delete, whose rows disappear without touching blob storage.
func (q *Queries) ListStorageKeys(ctx context.Context, userID uuid.UUID, courseID, yearID *uuid.UUID) ([]string, error) {
	rows, err := q.db.Query(ctx, listStorageKeys, userID, courseID, yearID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
