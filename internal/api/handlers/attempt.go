package handlers

import (
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"studyquiz/internal/db"
	"studyquiz/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	defaultAttemptsLimit = 20
	maxAttemptsLimit     = 100
)

// SubmittedAnswer is one answer of a submission, addressed by question position.
type SubmittedAnswer struct {
	QuestionIndex int    `json:"questionIndex"`
	Answer        string `json:"answer"`
}

// SubmitQuizRequest defines the body of POST /api/quizzes/:quizId/submit.
type SubmitQuizRequest struct {
	Answers []SubmittedAnswer `json:"answers"`
}

// optionLetterRe reads the letter of an option such as "b. 4" or "b) 4".
var optionLetterRe = regexp.MustCompile(`(?i)^([a-e])(?:[.)]\s|[.)]?$)`)

func optionLetter(s string) string {
	m := optionLetterRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

// answerMatches reports whether answer is correct for q. Text compares case-insensitively.
// An MCQ also accepts an option letter for the correct option, and a lettered option line
// for a letter answer key.
func answerMatches(q models.Question, answer string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}
	if strings.EqualFold(answer, strings.TrimSpace(q.CorrectAnswer)) {
		return true
	}
	if q.Type != models.QuestionTypeMCQ {
		return false
	}
	got := optionLetter(answer)
	if got == "" {
		return false
	}
	// A bare letter picks an option by position.
	if idx := int(got[0] - 'a'); len(answer) == 1 && idx < len(q.Options) &&
		strings.EqualFold(strings.TrimSpace(q.Options[idx]), strings.TrimSpace(q.CorrectAnswer)) {
		return true
	}
	return got == optionLetter(q.CorrectAnswer)
}

// scoreAttempt grades answers against quiz. Unanswered questions count as wrong; when an
// index repeats, the last answer wins.
func scoreAttempt(quiz models.Quiz, answers []SubmittedAnswer) (models.QuizAttempt, error) {
	given := make(map[int]string, len(answers))
	for _, a := range answers {
		if a.QuestionIndex < 0 || a.QuestionIndex >= len(quiz.Questions) {
			return models.QuizAttempt{}, fmt.Errorf("questionIndex %d out of range (quiz has %d questions)", a.QuestionIndex, len(quiz.Questions))
		}
		given[a.QuestionIndex] = a.Answer
	}

	attempt := models.QuizAttempt{
		UserID:         quiz.UserID,
		QuizID:         quiz.ID,
		QuizTitle:      quiz.Title,
		CourseID:       quiz.CourseID,
		TotalQuestions: len(quiz.Questions),
		Answers:        make([]models.AttemptAnswer, 0, len(quiz.Questions)),
	}
	for i, q := range quiz.Questions {
		ans := given[i]
		ok := answerMatches(q, ans)
		if ok {
			attempt.CorrectCount++
		}
		attempt.Answers = append(attempt.Answers, models.AttemptAnswer{
			Question:      q.Question,
			UserAnswer:    ans,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     ok,
		})
	}
	if attempt.TotalQuestions > 0 {
		pct := float64(attempt.CorrectCount) / float64(attempt.TotalQuestions) * 100
		attempt.Score = math.Round(pct*100) / 100
	}
	return attempt, nil
}

// HandleSubmitQuiz grades a submission and stores it as an attempt.
func (h *Handler) HandleSubmitQuiz(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	quizID, ok := h.pathUUID(c, userID, "quizId")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var req SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Bind Submit Quiz Request", err)
		return
	}
	quiz, err := h.DB.GetQuiz(ctx, quizID, userID)
	if err != nil {
		h.fail(c, userID, "Get Quiz", err)
		return
	}
	attempt, err := scoreAttempt(quiz, req.Answers)
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Validate Submit Quiz Request", err)
		return
	}
	attempt.UserID = userID

	saved, err := h.DB.CreateQuizAttempt(ctx, attempt)
	if err != nil {
		h.fail(c, userID, "Create Quiz Attempt in DB", err)
		return
	}
	targetType, targetID := target(db.ActivityTargetTypeAttempt, saved.ID)
	h.logActivity(ctx, userID, db.ActivityActionQuizSubmit, targetType, targetID, map[string]interface{}{
		"quiz_id": quizID.String(),
		"score":   saved.Score,
	})
	c.JSON(http.StatusCreated, saved)
}

// HandleListUserAttempts lists the caller's recent attempts. ?limit= defaults to 20.
func (h *Handler) HandleListUserAttempts(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	limit := defaultAttemptsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Invalid limit", fmt.Errorf("limit must be a positive integer, got %q", raw))
			return
		}
		limit = min(n, maxAttemptsLimit)
	}

	attempts, err := h.DB.ListUserAttempts(c.Request.Context(), userID, int32(limit))
	if err != nil {
		h.fail(c, userID, "List User Attempts", err)
		return
	}
	if attempts == nil {
		attempts = []models.QuizAttempt{}
	}
	c.JSON(http.StatusOK, attempts)
}
