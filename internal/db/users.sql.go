package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"studyquiz/internal/models"
)

const userColumns = `id, email, name, google_id, picture, created_at`

func scanUser(row interface{ Scan(...interface{}) error }) (models.User, error) {
	var u models.User
	var name, googleID, picture pgtype.Text
	if err := row.Scan(&u.ID, &u.Email, &name, &googleID, &picture, &u.CreatedAt); err != nil {
		return models.User{}, notFound(err)
	}
	u.Name = name.String
	u.GoogleID = googleID.String
	u.Picture = picture.String
	return u, nil
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT ` + userColumns + ` FROM users WHERE email = $1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByEmail, email))
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (email, name, google_id, picture)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns

type CreateUserParams struct {
	Email    string
	Name     pgtype.Text
	GoogleID pgtype.Text
	Picture  pgtype.Text
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error) {
	return scanUser(q.db.QueryRow(ctx, createUser, arg.Email, arg.Name, arg.GoogleID, arg.Picture))
}

const updateUserProfile = `-- name: UpdateUserProfile :one
UPDATE users
SET name = COALESCE($2, name), google_id = COALESCE($3, google_id), picture = COALESCE($4, picture)
WHERE id = $1
RETURNING ` + userColumns

type UpdateUserProfileParams struct {
	ID       pgtype.UUID
	Name     pgtype.Text
	GoogleID pgtype.Text
	Picture  pgtype.Text
}

// UpdateUserProfile refreshes the Google profile fields; NULL params keep the stored value.
func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (models.User, error) {
	return scanUser(q.db.QueryRow(ctx, updateUserProfile, arg.ID, arg.Name, arg.GoogleID, arg.Picture))
}
