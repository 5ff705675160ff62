package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"studyquiz/internal/db"
	"studyquiz/internal/mixedpaper"
	"studyquiz/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultNumQuestions = 10
	maxNumQuestions     = 50
	// MaxQuizUploadBytes caps a manual quiz upload.
	MaxQuizUploadBytes = 10 << 20
)

// GenerateQuizRequest defines the body of POST /api/quizzes/generate.
type GenerateQuizRequest struct {
	FileID       string `json:"fileId" binding:"required"`
	CourseID     string `json:"courseId"`
	NumQuestions int    `json:"numQuestions"`
	Title        string `json:"title"`
}

// GenerateQuizResponse is the created quiz plus how its questions were produced.
type GenerateQuizResponse struct {
	models.Quiz
	Method        string `json:"method"`
	LowConfidence int    `json:"lowConfidence"`
}

// HandleGenerateQuiz builds a quiz from one of the caller's stored files.
func (h *Handler) HandleGenerateQuiz(c *gin.Context) {
	startTime := time.Now()
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	if h.Pipeline == nil || h.Fetcher == nil {
		h.handleErrorAndNotify(c, userID, http.StatusServiceUnavailable, "Generate Quiz", errors.New("quiz generation is not configured"))
		return
	}
	ctx := c.Request.Context()

	var req GenerateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Bind Generate Quiz Request", err)
		return
	}
	fileID, err := uuid.Parse(req.FileID)
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Invalid fileId format", err)
		return
	}
	if req.NumQuestions == 0 {
		req.NumQuestions = defaultNumQuestions
	}
	if req.NumQuestions < 1 || req.NumQuestions > maxNumQuestions {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Validate Generate Quiz Request",
			fmt.Errorf("numQuestions must be between 1 and %d", maxNumQuestions))
		return
	}

	file, err := h.DB.GetFile(ctx, fileID, userID)
	if err != nil {
		h.fail(c, userID, "Get File", err)
		return
	}
	if req.CourseID != "" && req.CourseID != file.CourseID.String() {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Validate Generate Quiz Request", errors.New("file does not belong to the selected course"))
		return
	}
	log.Printf("INFO: Generating quiz from file %s (%s) for user %s", file.ID, file.Name, userID)

	data, err := h.Fetcher.Fetch(ctx, file)
	if err != nil {
		h.fail(c, userID, "Fetch File", err)
		return
	}
	result, err := h.Pipeline.Generate(ctx, models.RawDocument{Name: file.Name, MimeType: file.MimeType, Data: data}, req.NumQuestions)
	if err != nil {
		h.fail(c, userID, "Generate Quiz", err)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = strings.TrimSuffix(file.Name, filepath.Ext(file.Name)) + " Quiz"
	}
	quiz, err := h.DB.CreateQuiz(ctx, models.Quiz{
		Title:         title,
		CourseID:      file.CourseID,
		UserID:        userID,
		Questions:     result.Questions,
		GeneratedFrom: file.Name,
	})
	if err != nil {
		h.fail(c, userID, "Create Quiz in DB", err)
		return
	}

	duration := time.Since(startTime)
	targetType, targetID := target(db.ActivityTargetTypeQuiz, quiz.ID)
	h.logActivity(ctx, userID, db.ActivityActionQuizGenerate, targetType, targetID, map[string]interface{}{
		"file_id":        file.ID.String(),
		"method":         result.Method,
		"questions":      quiz.TotalQuestions,
		"low_confidence": result.LowConfidence,
		"duration_ms":    duration.Milliseconds(),
	})
	log.Printf("INFO: Generated quiz %s with %d questions via %s in %s", quiz.ID, quiz.TotalQuestions, result.Method, duration)

	c.JSON(http.StatusCreated, GenerateQuizResponse{Quiz: quiz, Method: result.Method, LowConfidence: result.LowConfidence})
}

// HandleUploadQuiz stores a quiz written by hand in the plain-text paper format.
// Multipart fields: file (.txt), courseId, optional title.
func (h *Handler) HandleUploadQuiz(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	courseID, err := uuid.Parse(c.PostForm("courseId"))
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Invalid courseId format", err)
		return
	}
	fileName, text, ok := h.readTextUpload(c, userID, MaxQuizUploadBytes)
	if !ok {
		return
	}
	if _, err := h.DB.GetCourse(ctx, courseID, userID); err != nil {
		h.fail(c, userID, "Get Course", err)
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		title = strings.TrimSuffix(fileName, filepath.Ext(fileName))
	}
	paper, err := mixedpaper.ParseUpload(text, title)
	if err != nil {
		h.fail(c, userID, "Parse Uploaded Quiz", err)
		return
	}
	questions := make([]models.Question, 0, len(paper.Questions))
	for _, q := range paper.Questions {
		questions = append(questions, q.Question)
	}

	quiz, err := h.DB.CreateQuiz(ctx, models.Quiz{
		Title:         paper.Title,
		CourseID:      courseID,
		UserID:        userID,
		Questions:     questions,
		GeneratedFrom: fileName,
	})
	if err != nil {
		h.fail(c, userID, "Create Quiz in DB", err)
		return
	}
	targetType, targetID := target(db.ActivityTargetTypeQuiz, quiz.ID)
	h.logActivity(ctx, userID, db.ActivityActionQuizUpload, targetType, targetID, map[string]interface{}{"questions": quiz.TotalQuestions})
	c.JSON(http.StatusCreated, quiz)
}

// readTextUpload reads the multipart "file" field, accepting only plain text up to limit
// bytes.
func (h *Handler) readTextUpload(c *gin.Context, userID uuid.UUID, limit int64) (string, string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Read Uploaded File", err)
		return "", "", false
	}
	if fileHeader.Size > limit {
		h.handleErrorAndNotify(c, userID, http.StatusRequestEntityTooLarge, "Validate Uploaded File",
			fmt.Errorf("file exceeds the %d MB limit", limit>>20))
		return "", "", false
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "text/plain") && !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".txt") {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Validate Uploaded File", errors.New("only .txt files are allowed"))
		return "", "", false
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusInternalServerError, "Open Uploaded File", err)
		return "", "", false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusInternalServerError, "Read Uploaded File", err)
		return "", "", false
	}
	return fileHeader.Filename, string(data), true
}

// HandleListCourseQuizzes lists the quizzes of one course without their questions.
func (h *Handler) HandleListCourseQuizzes(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	courseID, ok := h.pathUUID(c, userID, "courseId")
	if !ok {
		return
	}
	quizzes, err := h.DB.ListQuizzesByCourse(c.Request.Context(), courseID, userID)
	if err != nil {
		h.fail(c, userID, "List Course Quizzes", err)
		return
	}
	if quizzes == nil {
		quizzes = []models.QuizSummary{}
	}
	c.JSON(http.StatusOK, quizzes)
}

// HandleGetQuiz returns one quiz with its questions.
func (h *Handler) HandleGetQuiz(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	quizID, ok := h.pathUUID(c, userID, "quizId")
	if !ok {
		return
	}
	quiz, err := h.DB.GetQuiz(c.Request.Context(), quizID, userID)
	if err != nil {
		h.fail(c, userID, "Get Quiz", err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// HandleDeleteQuiz deletes a quiz and its attempts.
func (h *Handler) HandleDeleteQuiz(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	quizID, ok := h.pathUUID(c, userID, "quizId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.DB.DeleteQuiz(ctx, quizID, userID); err != nil {
		h.fail(c, userID, "Delete Quiz", err)
		return
	}
	targetType, targetID := target(db.ActivityTargetTypeQuiz, quizID)
	h.logActivity(ctx, userID, db.ActivityActionQuizDelete, targetType, targetID, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted successfully"})
}
