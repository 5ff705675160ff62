package main

import (
	"context"
	"database/sql"
	"encoding/gob"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studyquiz/internal/ai"
	"studyquiz/internal/api"
	"studyquiz/internal/api/handlers"
	"studyquiz/internal/config"
	"studyquiz/internal/db"
	"studyquiz/internal/extract"
	"studyquiz/internal/ocr"
	"studyquiz/internal/pipeline"
	"studyquiz/internal/storage"

	sessions "github.com/gin-contrib/sessions"
	gsessions "github.com/gin-contrib/sessions/postgres"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib" // Import pgx driver for database/sql
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const storeName = "studyquiz_session"

func init() {
	// Load environment variables FIRST
	log.Println("Attempting to load .env file...")
	if err := godotenv.Load(); err != nil {
		// Only treat "file not found" as a warning, other errors are fatal
		if !os.IsNotExist(err) {
			log.Fatalf("FATAL: Error loading .env file: %v", err)
		}
		log.Println("Warning: .env file not found. Relying on system environment variables.")
	} else {
		log.Println(".env file loaded successfully.")
	}

	// Gob needs the concrete type stored in the session.
	gob.Register(handlers.UserProfile{})
}

func googleOauthConfig(cfg config.Config) *oauth2.Config {
	if !cfg.GoogleOAuthConfigured() {
		log.Println("WARN: GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET or GOOGLE_REDIRECT_URL not set; Google login disabled.")
		return nil
	}
	return &oauth2.Config{
		RedirectURL:  cfg.GoogleRedirectURL,
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// newGenerator builds the AI fallback chain: every configured Gemini model, then OpenAI.
func newGenerator(ctx context.Context, cfg config.Config) (*ai.Generator, func()) {
	var backends []ai.Backend
	closeFn := func() {}

	if cfg.GeminiAPIKey != "" {
		client, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Printf("WARN: Failed to initialize Gemini client: %v", err)
		} else {
			backends = append(backends, client.Backends(cfg.GeminiModels...)...)
			closeFn = client.Close
		}
	}
	if cfg.OpenAIAPIKey != "" {
		backends = append(backends, ai.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, ""))
	}
	if len(backends) == 0 {
		log.Println("WARN: No AI provider configured; only structured documents will produce quizzes.")
	}
	return ai.NewGenerator(cfg.AITimeout, backends...), closeFn
}

func newStorage(ctx context.Context, cfg config.Config) (storage.Blob, *storage.Fetcher) {
	fs, err := storage.NewFSStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to prepare upload directory %s: %v", cfg.UploadDir, err)
	}

	r2, err := storage.NewR2Client(ctx, storage.R2Config{
		AccountID:       cfg.R2AccountID,
		BucketName:      cfg.R2BucketName,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		PublicURL:       cfg.R2PublicURL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize R2 client: %v", err)
	}
	if r2 == nil {
		log.Printf("INFO: R2 not configured; storing uploads under %s", cfg.UploadDir)
		return fs, storage.NewFetcher(cfg.StorageTimeout, fs)
	}
	// Files uploaded before R2 was enabled still resolve from local disk.
	return r2, storage.NewFetcher(cfg.StorageTimeout, r2, fs)
}

func main() {
	cfg := config.FromEnv()

	// Set up context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	database, err := db.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// A database/sql pool over the pgx driver serves migrations and the session store.
	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database connection for session store: %v", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database for session store: %v", err)
	}
	if err := db.Migrate(sqlDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	generator, closeAI := newGenerator(ctx, cfg)
	defer closeAI()

	recognizer := ocr.New(ocr.NewTesseract(cfg.OCRLang, cfg.OCRPageTimeout), ocr.NewPdftoppm(cfg.OCRRasterTimeout))
	recognizer.MaxPages = cfg.OCRMaxPages
	recognizer.Scale = cfg.OCRScale
	quizPipeline := pipeline.New(extract.New(recognizer), generator)

	blob, fetcher := newStorage(ctx, cfg)

	// Set up Gin router
	router := gin.Default()

	// --- Session Configuration ---
	if cfg.SessionSecret == "" {
		log.Println("WARNING: SESSION_SECRET environment variable is not set or empty!")
	}
	store, err := gsessions.NewStore(sqlDB, []byte(cfg.SessionSecret))
	if err != nil {
		log.Fatalf("Failed to create postgres session store: %v", err)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		Secure:   cfg.SessionSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(storeName, store))

	// Set up API handlers
	handler := handlers.NewHandler(googleOauthConfig(cfg), storeName, database.Queries, quizPipeline, blob, fetcher)
	handler.FrontendURL = cfg.FrontendURL
	handler.DiscordWebhookURL = cfg.DiscordWebhookURL

	verifier := api.NewTokenVerifier(cfg.AuthJWTSecret)
	if verifier == nil {
		log.Println("INFO: AUTH_JWT_SECRET not set; bearer token auth disabled.")
	}
	api.SetupRoutes(router, handler, verifier, cfg.FrontendURL)

	// Create HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}
