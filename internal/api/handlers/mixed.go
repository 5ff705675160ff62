package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"studyquiz/internal/db"
	"studyquiz/internal/mixedpaper"
	"studyquiz/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// MaxMixedPaperUploadBytes caps an uploaded mixed paper.
const MaxMixedPaperUploadBytes = 5 << 20

// MixedPaperRequest defines the body of POST /api/search/mixed-paper.
type MixedPaperRequest struct {
	CourseIDs          []string `json:"courseIds"`
	QuestionsPerCourse int      `json:"questionsPerCourse"`
}

// HandleMixedPaper samples questions from the caller's quizzes across several courses.
// The paper is returned, never stored.
func (h *Handler) HandleMixedPaper(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var req MixedPaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Bind Mixed Paper Request", err)
		return
	}
	if len(req.CourseIDs) == 0 {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Validate Mixed Paper Request", errors.New("at least one course must be selected"))
		return
	}
	if req.QuestionsPerCourse < 0 {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Validate Mixed Paper Request", errors.New("questionsPerCourse must be positive"))
		return
	}
	ids := make([]uuid.UUID, 0, len(req.CourseIDs))
	for _, raw := range req.CourseIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Invalid courseIds format", err)
			return
		}
		ids = append(ids, id)
	}

	courses, err := h.DB.GetCoursesByIDs(ctx, userID, ids)
	if err != nil {
		h.fail(c, userID, "Get Courses", err)
		return
	}
	quizzes, err := h.DB.ListQuizzesByCourses(ctx, userID, ids)
	if err != nil {
		h.fail(c, userID, "List Course Quizzes", err)
		return
	}

	paper, err := mixedpaper.Assemble(groupByCourse(ids, courses, quizzes), req.QuestionsPerCourse, nil)
	if err != nil {
		h.fail(c, userID, "Assemble Mixed Paper", err)
		return
	}
	h.logActivity(ctx, userID, db.ActivityActionMixedPaperCreate, db.NullActivityTargetType{}, pgtype.UUID{}, map[string]interface{}{
		"courses":   paper.Courses,
		"questions": paper.TotalQuestions,
	})
	c.JSON(http.StatusOK, paper)
}

// groupByCourse orders the caller's courses as requested and attaches their quizzes.
// Requested ids the caller does not own are dropped.
func groupByCourse(order []uuid.UUID, courses []models.Course, quizzes []models.Quiz) []mixedpaper.CourseQuizzes {
	byID := make(map[uuid.UUID]*mixedpaper.CourseQuizzes, len(courses))
	for _, c := range courses {
		byID[c.ID] = &mixedpaper.CourseQuizzes{CourseID: c.ID.String(), CourseName: c.Name}
	}
	for _, q := range quizzes {
		if cq, ok := byID[q.CourseID]; ok {
			cq.Quizzes = append(cq.Quizzes, q)
		}
	}

	out := make([]mixedpaper.CourseQuizzes, 0, len(byID))
	seen := make(map[uuid.UUID]bool, len(order))
	for _, id := range order {
		if cq, ok := byID[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, *cq)
		}
	}
	return out
}

// HandleUploadMixedPaper reads a plain-text paper and returns it as a mixed paper.
func (h *Handler) HandleUploadMixedPaper(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	fileName, text, ok := h.readTextUpload(c, userID, MaxMixedPaperUploadBytes)
	if !ok {
		return
	}
	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		title = strings.TrimSuffix(fileName, filepath.Ext(fileName))
	}

	paper, err := mixedpaper.ParseUpload(text, title)
	if err != nil {
		h.fail(c, userID, "Parse Uploaded Mixed Paper", err)
		return
	}
	h.logActivity(c.Request.Context(), userID, db.ActivityActionMixedPaperCreate, db.NullActivityTargetType{}, pgtype.UUID{}, map[string]interface{}{
		"uploaded":  fileName,
		"questions": paper.TotalQuestions,
	})
	c.JSON(http.StatusOK, paper)
}
