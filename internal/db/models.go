package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ActivityAction string

const (
	ActivityActionLogin            ActivityAction = "login"
	ActivityActionLogout           ActivityAction = "logout"
	ActivityActionError            ActivityAction = "error"
	ActivityActionYearCreate       ActivityAction = "year_create"
	ActivityActionYearDelete       ActivityAction = "year_delete"
	ActivityActionCourseCreate     ActivityAction = "course_create"
	ActivityActionCourseDelete     ActivityAction = "course_delete"
	ActivityActionFileUpload       ActivityAction = "file_upload"
	ActivityActionFileDelete       ActivityAction = "file_delete"
	ActivityActionQuizGenerate     ActivityAction = "quiz_generate"
	ActivityActionQuizUpload       ActivityAction = "quiz_upload"
	ActivityActionQuizDelete       ActivityAction = "quiz_delete"
	ActivityActionQuizSubmit       ActivityAction = "quiz_submit"
	ActivityActionMixedPaperCreate ActivityAction = "mixed_paper_create"
)

type ActivityTargetType string

const (
	ActivityTargetTypeUser    ActivityTargetType = "user"
	ActivityTargetTypeYear    ActivityTargetType = "year"
	ActivityTargetTypeCourse  ActivityTargetType = "course"
	ActivityTargetTypeFile    ActivityTargetType = "file"
	ActivityTargetTypeQuiz    ActivityTargetType = "quiz"
	ActivityTargetTypeAttempt ActivityTargetType = "attempt"
)

type NullActivityTargetType struct {
	ActivityTargetType ActivityTargetType
	Valid              bool // Valid is true if ActivityTargetType is not NULL
}

func (n NullActivityTargetType) text() pgtype.Text {
	return pgtype.Text{String: string(n.ActivityTargetType), Valid: n.Valid}
}

type ActivityLog struct {
	ID         uuid.UUID
	UserID     pgtype.UUID
	Action     ActivityAction
	TargetType NullActivityTargetType
	TargetID   pgtype.UUID
	Details    []byte
	CreatedAt  time.Time
}
