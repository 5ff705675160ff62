package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createActivityLog = `-- name: CreateActivityLog :one
INSERT INTO activity_logs (user_id, action, target_type, target_id, details)
VALUES ($1, $2::text::activity_action, $3::text::activity_target_type, $4, $5)
RETURNING id, user_id, action::text, target_type::text, target_id, details, created_at
`

type CreateActivityLogParams struct {
	UserID     pgtype.UUID
	Action     ActivityAction
	TargetType NullActivityTargetType
	TargetID   pgtype.UUID
	Details    []byte
}

func (q *Queries) CreateActivityLog(ctx context.Context, arg CreateActivityLogParams) (ActivityLog, error) {
	row := q.db.QueryRow(ctx, createActivityLog,
		arg.UserID,
		string(arg.Action),
		arg.TargetType.text(),
		arg.TargetID,
		arg.Details,
	)
	var i ActivityLog
	var action string
	var targetType pgtype.Text
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&action,
		&targetType,
		&i.TargetID,
		&i.Details,
		&i.CreatedAt,
	)
	i.Action = ActivityAction(action)
	i.TargetType = NullActivityTargetType{ActivityTargetType: ActivityTargetType(targetType.String), Valid: targetType.Valid}
	return i, err
}
