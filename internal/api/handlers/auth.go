package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"

	"studyquiz/internal/db"
	"studyquiz/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/oauth2"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// HandleGoogleLogin: Initiates the Google OAuth flow.
func (h *Handler) HandleGoogleLogin(c *gin.Context) {
	if h.OauthConfig == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google login is not configured"})
		return
	}
	session := sessions.Default(c)

	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		log.Printf("ERROR: Failed to generate state: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate state"})
		return
	}
	oauthStateString := base64.URLEncoding.EncodeToString(stateBytes)

	session.Set(OauthStateSessionKey, oauthStateString)
	if err := session.Save(); err != nil {
		log.Printf("ERROR: Failed to save session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}
	log.Printf("DEBUG: Saved session state for session ID %s", session.ID())

	url := h.OauthConfig.AuthCodeURL(oauthStateString, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// HandleGoogleCallback: Handles the redirect back from Google.
func (h *Handler) HandleGoogleCallback(c *gin.Context) {
	if h.OauthConfig == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google login is not configured"})
		return
	}
	session := sessions.Default(c)
	retrievedState, _ := session.Get(OauthStateSessionKey).(string)
	originalState := c.Query("state")

	if originalState == "" || retrievedState != originalState {
		log.Printf("WARN: Invalid state parameter. Session state: %q, Query state: %q", retrievedState, originalState)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid state parameter."})
		return
	}

	ctx := c.Request.Context()
	token, err := h.OauthConfig.Exchange(ctx, c.Query("code"))
	if err != nil {
		log.Printf("ERROR: Failed to exchange code: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exchange code"})
		return
	}
	if !token.Valid() {
		log.Printf("WARN: Retrieved invalid token.")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Retrieved invalid token"})
		return
	}

	oauth2Service, err := oauth2api.NewService(ctx, option.WithHTTPClient(h.OauthConfig.Client(ctx, token)))
	if err != nil {
		log.Printf("ERROR: Failed to create OAuth2 service: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create OAuth2 service"})
		return
	}
	userinfo, err := oauth2Service.Userinfo.V2.Me.Get().Do()
	if err != nil {
		log.Printf("ERROR: Failed to get user info: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user info"})
		return
	}

	dbUser, isNewUser, err := h.upsertGoogleUser(c, userinfo)
	if err != nil {
		log.Printf("ERROR: Failed to resolve user %s: %v", userinfo.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking user profile"})
		return
	}

	targetType, targetID := target(db.ActivityTargetTypeUser, dbUser.ID)
	h.logActivity(ctx, dbUser.ID, db.ActivityActionLogin, targetType, targetID,
		map[string]interface{}{"email": dbUser.Email, "signup": isNewUser})
	if isNewUser {
		h.sendDiscordNotification(DiscordEmbed{
			Title: "🎉 New Signup",
			Color: 0x00FF00,
			Fields: []DiscordEmbedField{
				{Name: "User", Value: fmt.Sprintf("%s (%s)", dbUser.Name, dbUser.Email)},
			},
		})
	}

	profile := UserProfile{
		DatabaseID:    dbUser.ID,
		GoogleID:      userinfo.Id,
		Email:         userinfo.Email,
		VerifiedEmail: userinfo.VerifiedEmail != nil && *userinfo.VerifiedEmail,
		Name:          userinfo.Name,
		GivenName:     userinfo.GivenName,
		FamilyName:    userinfo.FamilyName,
		Picture:       userinfo.Picture,
		Locale:        userinfo.Locale,
	}
	log.Printf("INFO: User %s mapped to internal ID %s", profile.Email, dbUser.ID)

	session.Set(ProfileSessionKey, profile)
	session.Delete(OauthStateSessionKey)
	if err := session.Save(); err != nil {
		log.Printf("ERROR: Failed to save session after login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	log.Printf("INFO: Redirecting user %s to frontend: %s", profile.Email, h.FrontendURL)
	c.Redirect(http.StatusTemporaryRedirect, h.FrontendURL)
}

// upsertGoogleUser finds the user by email, creating them on first login and refreshing
// their Google profile fields otherwise.
func (h *Handler) upsertGoogleUser(c *gin.Context, info *oauth2api.Userinfo) (models.User, bool, error) {
	ctx := c.Request.Context()
	name := pgtype.Text{String: info.Name, Valid: info.Name != ""}
	googleID := pgtype.Text{String: info.Id, Valid: info.Id != ""}
	picture := pgtype.Text{String: info.Picture, Valid: info.Picture != ""}

	existing, err := h.DB.GetUserByEmail(ctx, info.Email)
	if errors.Is(err, db.ErrNotFound) {
		log.Printf("INFO: User with email %s not found, creating new user.", info.Email)
		created, err := h.DB.CreateUser(ctx, db.CreateUserParams{
			Email:    info.Email,
			Name:     name,
			GoogleID: googleID,
			Picture:  picture,
		})
		if err != nil {
			return models.User{}, false, fmt.Errorf("failed to create user: %w", err)
		}
		log.Printf("INFO: Created user with ID %s for email %s", created.ID, created.Email)
		return created, true, nil
	}
	if err != nil {
		return models.User{}, false, fmt.Errorf("failed to get user by email: %w", err)
	}

	log.Printf("INFO: Found existing user with ID %s for email %s", existing.ID, existing.Email)
	updated, err := h.DB.UpdateUserProfile(ctx, db.UpdateUserProfileParams{
		ID:       pgtype.UUID{Bytes: existing.ID, Valid: true},
		Name:     name,
		GoogleID: googleID,
		Picture:  picture,
	})
	if err != nil {
		log.Printf("WARN: Failed to refresh profile of user %s: %v", existing.ID, err)
		return existing, false, nil
	}
	return updated, false, nil
}

// HandleUserProfile: Displays the user's profile information.
func (h *Handler) HandleUserProfile(c *gin.Context) {
	profile, ok := c.Get(ProfileContextKey)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated or session invalid"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// HandleLogout: Clears the session.
func (h *Handler) HandleLogout(c *gin.Context) {
	userID, _ := c.Get(UserIDContextKey)
	id, _ := userID.(uuid.UUID)

	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{MaxAge: -1})
	if err := session.Save(); err != nil {
		log.Printf("ERROR: Failed to save session during logout for user %s: %v", id, err)
	}

	if id != uuid.Nil {
		targetType, targetID := target(db.ActivityTargetTypeUser, id)
		h.logActivity(c.Request.Context(), id, db.ActivityActionLogout, targetType, targetID, nil)
	}
	log.Printf("INFO: User session cleared for user ID: %s", id)
	c.Status(http.StatusOK)
}

// HandleAuthStatus checks if a user is currently authenticated via session.
func (h *Handler) HandleAuthStatus(c *gin.Context) {
	session := sessions.Default(c)
	profile, ok := session.Get(ProfileSessionKey).(UserProfile)
	if !ok || profile.DatabaseID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          profile,
	})
}
