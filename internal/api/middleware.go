package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"studyquiz/internal/api/handlers"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CORSMiddleware adds CORS headers to allow cross-origin requests from frontendURL.
func CORSMiddleware(frontendURL string) gin.HandlerFunc {
	origin := strings.TrimSuffix(frontendURL, "/")
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Claims are the bearer token claims issued by the external identity provider.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// TokenVerifier checks HS256 bearer tokens whose subject is the user's UUID.
type TokenVerifier struct{ secret []byte }

// NewTokenVerifier returns nil when secret is empty, which disables bearer auth.
func NewTokenVerifier(secret string) *TokenVerifier {
	if secret == "" {
		return nil
	}
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify parses tokenStr and returns the profile it authenticates.
func (v *TokenVerifier) Verify(tokenStr string) (handlers.UserProfile, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return handlers.UserProfile{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return handlers.UserProfile{}, errors.New("invalid token claims")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == uuid.Nil {
		return handlers.UserProfile{}, fmt.Errorf("token subject is not a user id: %q", claims.Subject)
	}
	return handlers.UserProfile{DatabaseID: id, Email: claims.Email, Name: claims.Name}, nil
}

// AuthRequired is middleware to ensure the user is authenticated.
// A bearer token is checked when present; otherwise the user profile must be in the
// session. The internal user ID (UUID) is added to the context.
func AuthRequired(verifier *TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var profile handlers.UserProfile

		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			if verifier == nil {
				log.Printf("WARN: AuthRequired failed - bearer token sent but bearer auth is not configured.")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer authentication is not enabled"})
				return
			}
			p, err := verifier.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				log.Printf("WARN: AuthRequired failed - invalid bearer token: %v", err)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				return
			}
			profile = p
		} else {
			session := sessions.Default(c)
			p, ok := session.Get(handlers.ProfileSessionKey).(handlers.UserProfile)
			// Check if profile exists in session AND if the DatabaseID is valid (not Nil)
			if !ok || p.DatabaseID == uuid.Nil {
				log.Printf("WARN: AuthRequired failed - profile not found, invalid type, or missing DatabaseID in session.")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required or session invalid"})
				return
			}
			profile = p
		}

		c.Set(handlers.UserIDContextKey, profile.DatabaseID)
		c.Set(handlers.ProfileContextKey, profile)

		log.Printf("DEBUG: AuthRequired successful for user %s (DB ID: %s)", profile.Email, profile.DatabaseID)
		c.Next()
	}
}
