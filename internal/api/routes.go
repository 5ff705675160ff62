package api

import (
	"studyquiz/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the API routes
func SetupRoutes(router *gin.Engine, handler *handlers.Handler, verifier *TokenVerifier, frontendURL string) {
	router.Use(CORSMiddleware(frontendURL))

	// --- Public Auth Routes ---
	router.GET("/login", handler.HandleGoogleLogin)                   // Initiates OAuth flow
	router.GET("/auth/google/callback", handler.HandleGoogleCallback) // Handles the redirect from Google

	api := router.Group("/api")
	{
		api.GET("/auth/status", handler.HandleAuthStatus)

		authorized := api.Group("/")
		authorized.Use(AuthRequired(verifier))
		{
			authorized.GET("/user/profile", handler.HandleUserProfile)
			authorized.POST("/logout", handler.HandleLogout)

			// --- Year / Course structure ---
			authorized.GET("/structure/years", handler.HandleListYears)
			authorized.POST("/structure/years", handler.HandleCreateYear)
			authorized.PUT("/structure/years/:yearId", handler.HandleRenameYear)
			authorized.DELETE("/structure/years/:yearId", handler.HandleDeleteYear) // Cascades courses
			authorized.GET("/structure/courses", handler.HandleListCourses)         // ?yearId= filters
			authorized.POST("/structure/courses", handler.HandleCreateCourse)
			authorized.PUT("/structure/courses/:courseId", handler.HandleRenameCourse)
			authorized.DELETE("/structure/courses/:courseId", handler.HandleDeleteCourse)

			// --- Files ---
			authorized.POST("/files", handler.HandleUploadFile)
			authorized.GET("/files/course/:courseId", handler.HandleListCourseFiles)
			authorized.PUT("/files/:fileId", handler.HandleRenameFile)
			authorized.DELETE("/files/:fileId", handler.HandleDeleteFile)

			// --- Quizzes ---
			authorized.POST("/quizzes/generate", handler.HandleGenerateQuiz)
			authorized.POST("/quizzes/upload", handler.HandleUploadQuiz)
			authorized.GET("/quizzes/course/:courseId", handler.HandleListCourseQuizzes)
			authorized.GET("/quizzes/:quizId", handler.HandleGetQuiz)
			authorized.DELETE("/quizzes/:quizId", handler.HandleDeleteQuiz)
			authorized.POST("/quizzes/:quizId/submit", handler.HandleSubmitQuiz)
			authorized.GET("/attempts", handler.HandleListUserAttempts)

			// --- Search and mixed papers ---
			authorized.GET("/search", handler.HandleSearch)
			authorized.GET("/search/course/:courseId", handler.HandleSearchInCourse)
			authorized.POST("/search/mixed-paper", handler.HandleMixedPaper)
			authorized.POST("/search/upload-mixed-paper", handler.HandleUploadMixedPaper)
		}
	}
}
