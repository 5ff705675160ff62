package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"studyquiz/internal/ai"
	"studyquiz/internal/db"
	"studyquiz/internal/extract"
	"studyquiz/internal/mixedpaper"
	"studyquiz/internal/models"
	"studyquiz/internal/ocr"
	"studyquiz/internal/pipeline"
	"studyquiz/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/oauth2"
)

// UserProfile stores information about the authenticated user.
type UserProfile struct {
	DatabaseID    uuid.UUID `json:"-"`  // Our internal DB UUID (omit from JSON response to client)
	GoogleID      string    `json:"id"` // Google's ID (keep as 'id' in JSON)
	Email         string    `json:"email"`
	VerifiedEmail bool      `json:"verified_email"`
	Name          string    `json:"name"`
	GivenName     string    `json:"given_name"`
	FamilyName    string    `json:"family_name"`
	Picture       string    `json:"picture"`
	Locale        string    `json:"locale"`
}

// Session and context keys shared with the auth middleware.
const (
	OauthStateSessionKey = "oauthstate"
	ProfileSessionKey    = "profile"
	UserIDContextKey     = "userID"
	ProfileContextKey    = "userProfile"
)

// Discord Embed Structures (based on documentation)
type DiscordEmbedFooter struct {
	Text string `json:"text,omitempty"`
}

type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type DiscordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"` // ISO8601 timestamp
	Color       int                 `json:"color,omitempty"`     // Decimal color code
	Footer      *DiscordEmbedFooter `json:"footer,omitempty"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
}

// WebhookPayload is the structure Discord expects for webhook requests with embeds
type WebhookPayload struct {
	Username string         `json:"username,omitempty"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

// Store is the persistence the handlers need. *db.Queries implements it.
type Store interface {
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	CreateUser(ctx context.Context, arg db.CreateUserParams) (models.User, error)
	UpdateUserProfile(ctx context.Context, arg db.UpdateUserProfileParams) (models.User, error)
	CreateActivityLog(ctx context.Context, arg db.CreateActivityLogParams) (db.ActivityLog, error)

	ListYears(ctx context.Context, userID uuid.UUID) ([]models.Year, error)
	GetYear(ctx context.Context, id, userID uuid.UUID) (models.Year, error)
	CreateYear(ctx context.Context, userID uuid.UUID, name string) (models.Year, error)
	RenameYear(ctx context.Context, id, userID uuid.UUID, name string) (models.Year, error)
	DeleteYear(ctx context.Context, id, userID uuid.UUID) error

	ListCourses(ctx context.Context, userID uuid.UUID, yearID *uuid.UUID) ([]models.Course, error)
	GetCourse(ctx context.Context, id, userID uuid.UUID) (models.Course, error)
	GetCoursesByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.Course, error)
	CreateCourse(ctx context.Context, arg db.CreateCourseParams) (models.Course, error)
	RenameCourse(ctx context.Context, id, userID uuid.UUID, name string) (models.Course, error)
	DeleteCourse(ctx context.Context, id, userID uuid.UUID) error

	CreateFile(ctx context.Context, arg db.CreateFileParams) (models.File, error)
	GetFile(ctx context.Context, id, userID uuid.UUID) (models.File, error)
	ListFilesByCourse(ctx context.Context, courseID, userID uuid.UUID) ([]models.File, error)
	RenameFile(ctx context.Context, id, userID uuid.UUID, name string) (models.File, error)
	DeleteFile(ctx context.Context, id, userID uuid.UUID) (models.File, error)
	ListStorageKeys(ctx context.Context, userID uuid.UUID, courseID, yearID *uuid.UUID) ([]string, error)

	CreateQuiz(ctx context.Context, quiz models.Quiz) (models.Quiz, error)
	GetQuiz(ctx context.Context, id, userID uuid.UUID) (models.Quiz, error)
	ListQuizzesByCourse(ctx context.Context, courseID, userID uuid.UUID) ([]models.QuizSummary, error)
	ListQuizzesByCourses(ctx context.Context, userID uuid.UUID, courseIDs []uuid.UUID) ([]models.Quiz, error)
	DeleteQuiz(ctx context.Context, id, userID uuid.UUID) error

	CreateQuizAttempt(ctx context.Context, a models.QuizAttempt) (models.QuizAttempt, error)
	ListUserAttempts(ctx context.Context, userID uuid.UUID, limit int32) ([]models.QuizAttempt, error)

	SearchFiles(ctx context.Context, arg db.SearchParams) ([]db.FileHit, error)
	SearchQuizzes(ctx context.Context, arg db.SearchParams) ([]db.QuizHit, error)
	SearchCourses(ctx context.Context, arg db.SearchParams) ([]db.CourseHit, error)
}

// QuizGenerator turns a document into questions.
type QuizGenerator interface {
	Generate(ctx context.Context, doc models.RawDocument, numQuestions int) (*pipeline.Result, error)
}

// FileFetcher reads back the bytes of a stored file.
type FileFetcher interface {
	Fetch(ctx context.Context, file models.File) ([]byte, error)
}

// Handler contains the API handlers dependencies
type Handler struct {
	OauthConfig *oauth2.Config
	StoreName   string
	FrontendURL string
	DB          Store
	Pipeline    QuizGenerator
	Blob        storage.Blob
	Fetcher     FileFetcher

	DiscordWebhookURL string
	DiscordClient     *http.Client
}

// NewHandler creates a new Handler. oauth may be nil when Google login is not configured.
func NewHandler(oauth *oauth2.Config, store string, database Store, gen QuizGenerator, blob storage.Blob, fetcher FileFetcher) *Handler {
	// Create a dedicated HTTP client for Discord with a timeout
	discordClient := &http.Client{
		Timeout: 5 * time.Second,
	}

	return &Handler{
		OauthConfig:   oauth,
		StoreName:     store,
		FrontendURL:   "/",
		DB:            database,
		Pipeline:      gen,
		Blob:          blob,
		Fetcher:       fetcher,
		DiscordClient: discordClient,
	}
}

// sendDiscordNotification sends an embed message to the configured Discord webhook.
// It runs asynchronously to avoid blocking the main request flow.
func (h *Handler) sendDiscordNotification(embed DiscordEmbed) {
	if h.DiscordWebhookURL == "" {
		return
	}
	go func() {
		if embed.Timestamp == "" {
			embed.Timestamp = time.Now().Format(time.RFC3339)
		}

		payload := WebhookPayload{
			Username: "StudyQuiz Notifier",
			Embeds:   []DiscordEmbed{embed},
		}

		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			log.Printf("ERROR: Failed to marshal Discord embed payload: %v", err)
			return
		}

		req, err := http.NewRequest(http.MethodPost, h.DiscordWebhookURL, bytes.NewBuffer(jsonPayload))
		if err != nil {
			log.Printf("ERROR: Failed to create Discord embed request: %v", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := h.DiscordClient.Do(req)
		if err != nil {
			log.Printf("ERROR: Failed to send Discord embed notification: %v", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			bodyBytes, _ := io.ReadAll(resp.Body)
			log.Printf("ERROR: Discord embed notification failed with status %d: %s", resp.StatusCode, string(bodyBytes))
		} else {
			log.Printf("INFO: Sent Discord embed notification: %s", embed.Title)
		}
	}()
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ocr.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, extract.ErrExtractionFailed),
		errors.Is(err, pipeline.ErrNoQuestionsExtracted),
		errors.Is(err, ai.ErrGenerationUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, mixedpaper.ErrNoQuestionsAvailable),
		errors.Is(err, mixedpaper.ErrNoValidQuestions):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrFetchFailed):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// userMessage is the client-facing text for err. Sentinels the user can act on are shown
// as-is; everything else keeps the full wrapped chain.
func userMessage(err error) string {
	var exErr *extract.ExtractionError
	switch {
	case errors.Is(err, ocr.ErrUnavailable):
		return "text recognition is currently unavailable"
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return extract.ErrUnsupportedFormat.Error()
	case errors.As(err, &exErr):
		return exErr.Error()
	case errors.Is(err, pipeline.ErrNoQuestionsExtracted), errors.Is(err, ai.ErrGenerationUnavailable):
		return pipeline.ErrNoQuestionsExtracted.Error()
	default:
		return err.Error()
	}
}

// fail reports err with the status derived from its kind.
func (h *Handler) fail(c *gin.Context, userID uuid.UUID, errorContext string, err error) {
	h.handleErrorAndNotify(c, userID, statusFor(err), errorContext, err)
}

// handleErrorAndNotify logs an error, sends a Discord notification, logs to activity table, and aborts the request.
func (h *Handler) handleErrorAndNotify(c *gin.Context, userID uuid.UUID, statusCode int, errorContext string, err error) {
	log.Printf("ERROR: %s: %v (UserID: %s)", errorContext, err, userID)

	h.logActivity(c.Request.Context(), userID, db.ActivityActionError,
		db.NullActivityTargetType{},
		pgtype.UUID{},
		map[string]interface{}{
			"error_context": errorContext,
			"error_message": err.Error(),
			"request_path":  c.Request.URL.Path,
			"http_status":   statusCode,
		})

	// Client mistakes are not worth a page.
	if statusCode >= http.StatusInternalServerError {
		errorEmbed := DiscordEmbed{
			Title:       fmt.Sprintf("🚨 API Error: %s", errorContext),
			Description: fmt.Sprintf("**Error Details:**\n```%s```", err.Error()),
			Color:       0xFF0000,
		}
		if userID != uuid.Nil {
			errorEmbed.Fields = append(errorEmbed.Fields, DiscordEmbedField{Name: "User ID", Value: fmt.Sprintf("`%s`", userID.String()), Inline: true})
		}
		errorEmbed.Fields = append(errorEmbed.Fields,
			DiscordEmbedField{Name: "HTTP Status", Value: fmt.Sprintf("%d", statusCode), Inline: true},
			DiscordEmbedField{Name: "Path", Value: c.Request.URL.Path},
		)
		h.sendDiscordNotification(errorEmbed)
	}

	c.AbortWithStatusJSON(statusCode, models.ErrorResponse{Error: fmt.Sprintf("%s: %s", errorContext, userMessage(err))})
}

// logActivity is a helper function to create activity log entries.
func (h *Handler) logActivity(ctx context.Context, userID uuid.UUID, action db.ActivityAction, targetType db.NullActivityTargetType, targetID pgtype.UUID, details map[string]interface{}) {
	var detailsJSON []byte
	var err error

	if details != nil {
		detailsJSON, err = json.Marshal(details)
		if err != nil {
			log.Printf("ERROR: Failed to marshal activity log details for user %s, action %s: %v", userID, action, err)
			detailsJSON = nil
		}
	}

	logParams := db.CreateActivityLogParams{
		UserID:     pgtype.UUID{Bytes: userID, Valid: userID != uuid.Nil},
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    detailsJSON,
	}

	if _, err = h.DB.CreateActivityLog(ctx, logParams); err != nil {
		// Log the error but don't block the main request flow
		log.Printf("ERROR: Failed to create activity log for user %s, action %s: %v", userID, action, err)
	} else {
		log.Printf("INFO: Activity logged for user %s: %s", userID, action)
	}
}

// target builds the activity target columns for a row id.
func target(kind db.ActivityTargetType, id uuid.UUID) (db.NullActivityTargetType, pgtype.UUID) {
	return db.NullActivityTargetType{ActivityTargetType: kind, Valid: true}, pgtype.UUID{Bytes: id, Valid: true}
}

// currentUser returns the caller's ID set by the auth middleware, aborting with 401 when
// it is missing.
func (h *Handler) currentUser(c *gin.Context) (uuid.UUID, bool) {
	userIDValue, exists := c.Get(UserIDContextKey)
	if !exists {
		h.handleErrorAndNotify(c, uuid.Nil, http.StatusUnauthorized, "Get User ID from Context", errors.New("user not authenticated"))
		return uuid.Nil, false
	}
	userID, ok := userIDValue.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		h.handleErrorAndNotify(c, uuid.Nil, http.StatusInternalServerError, "Get User ID from Context", errors.New("invalid user ID type in context"))
		return uuid.Nil, false
	}
	return userID, true
}

// pathUUID parses a UUID route parameter, aborting with 400 when it is malformed.
func (h *Handler) pathUUID(c *gin.Context, userID uuid.UUID, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", param), err)
		return uuid.Nil, false
	}
	return id, true
}
