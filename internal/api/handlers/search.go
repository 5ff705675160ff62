package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"studyquiz/internal/db"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	minSearchQueryLen = 2
	searchLimit       = 10
)

type FileResult struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Course     string    `json:"course"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type QuizResult struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Course    string    `json:"course"`
	Questions int       `json:"questions"`
	CreatedAt time.Time `json:"createdAt"`
}

type CourseResult struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Type string    `json:"type"`
	Year string    `json:"year"`
}

// SearchResponse is the body of GET /api/search.
type SearchResponse struct {
	Files   []FileResult   `json:"files"`
	Quizzes []QuizResult   `json:"quizzes"`
	Courses []CourseResult `json:"courses,omitempty"`
	// CourseName is set on course-scoped searches.
	CourseName string `json:"courseName,omitempty"`
}

func (h *Handler) searchQuery(c *gin.Context, userID uuid.UUID) (string, bool) {
	query := strings.TrimSpace(c.Query("query"))
	if utf8.RuneCountInString(query) < minSearchQueryLen {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Validate Search Query", errors.New("search query must be at least 2 characters"))
		return "", false
	}
	return query, true
}

// HandleSearch searches the caller's file names, quiz titles and course names.
func (h *Handler) HandleSearch(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	query, ok := h.searchQuery(c, userID)
	if !ok {
		return
	}
	params := db.SearchParams{UserID: userID, Query: query, Limit: searchLimit}

	resp, err := h.searchFilesAndQuizzes(c, params)
	if err != nil {
		h.fail(c, userID, "Search", err)
		return
	}
	courses, err := h.DB.SearchCourses(c.Request.Context(), params)
	if err != nil {
		h.fail(c, userID, "Search Courses", err)
		return
	}
	resp.Courses = make([]CourseResult, 0, len(courses))
	for _, hit := range courses {
		resp.Courses = append(resp.Courses, CourseResult{ID: hit.ID, Name: hit.Name, Type: "course", Year: hit.YearName})
	}
	c.JSON(http.StatusOK, resp)
}

// HandleSearchInCourse searches file names and quiz titles inside one course.
func (h *Handler) HandleSearchInCourse(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	courseID, ok := h.pathUUID(c, userID, "courseId")
	if !ok {
		return
	}
	query, ok := h.searchQuery(c, userID)
	if !ok {
		return
	}
	course, err := h.DB.GetCourse(c.Request.Context(), courseID, userID)
	if err != nil {
		h.fail(c, userID, "Get Course", err)
		return
	}

	resp, err := h.searchFilesAndQuizzes(c, db.SearchParams{UserID: userID, Query: query, CourseID: &courseID, Limit: searchLimit})
	if err != nil {
		h.fail(c, userID, "Search Course", err)
		return
	}
	resp.CourseName = course.Name
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) searchFilesAndQuizzes(c *gin.Context, params db.SearchParams) (SearchResponse, error) {
	ctx := c.Request.Context()
	files, err := h.DB.SearchFiles(ctx, params)
	if err != nil {
		return SearchResponse{}, err
	}
	quizzes, err := h.DB.SearchQuizzes(ctx, params)
	if err != nil {
		return SearchResponse{}, err
	}

	resp := SearchResponse{
		Files:   make([]FileResult, 0, len(files)),
		Quizzes: make([]QuizResult, 0, len(quizzes)),
	}
	for _, f := range files {
		resp.Files = append(resp.Files, FileResult{ID: f.ID, Name: f.Name, Type: "file", Course: f.CourseName, UploadedAt: f.UploadedAt})
	}
	for _, q := range quizzes {
		resp.Quizzes = append(resp.Quizzes, QuizResult{
			ID:        q.ID,
			Title:     q.Title,
			Type:      "quiz",
			Course:    q.CourseName,
			Questions: q.TotalQuestions,
			CreatedAt: q.CreatedAt,
		})
	}
	return resp, nil
}
