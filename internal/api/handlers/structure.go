package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"studyquiz/internal/db"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NameRequest is the body of every create/rename call in the year/course/file tree.
type NameRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateCourseRequest defines the body of POST /api/structure/courses.
type CreateCourseRequest struct {
	Name   string `json:"name" binding:"required"`
	YearID string `json:"yearId" binding:"required"`
}

func (h *Handler) bindName(c *gin.Context, userID uuid.UUID, what string) (string, bool) {
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Validate "+what+" Request", errors.New(strings.ToLower(what)+" name is required"))
		return "", false
	}
	return strings.TrimSpace(req.Name), true
}

// HandleListYears returns the caller's years, oldest first.
func (h *Handler) HandleListYears(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	years, err := h.DB.ListYears(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, userID, "List Years", err)
		return
	}
	c.JSON(http.StatusOK, years)
}

// HandleCreateYear creates a year.
func (h *Handler) HandleCreateYear(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	name, ok := h.bindName(c, userID, "Year")
	if !ok {
		return
	}

	year, err := h.DB.CreateYear(c.Request.Context(), userID, name)
	if err != nil {
		h.fail(c, userID, "Create Year in DB", err)
		return
	}
	targetType, targetID := target(db.ActivityTargetTypeYear, year.ID)
	h.logActivity(c.Request.Context(), userID, db.ActivityActionYearCreate, targetType, targetID, map[string]interface{}{"name": year.Name})
	c.JSON(http.StatusCreated, year)
}

// HandleRenameYear renames a year.
func (h *Handler) HandleRenameYear(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	yearID, ok := h.pathUUID(c, userID, "yearId")
	if !ok {
		return
	}
	name, ok := h.bindName(c, userID, "Year")
	if !ok {
		return
	}
	year, err := h.DB.RenameYear(c.Request.Context(), yearID, userID, name)
	if err != nil {
		h.fail(c, userID, "Rename Year", err)
		return
	}
	c.JSON(http.StatusOK, year)
}

// HandleDeleteYear deletes a year with its courses, files and quizzes.
func (h *Handler) HandleDeleteYear(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	yearID, ok := h.pathUUID(c, userID, "yearId")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	keys, err := h.DB.ListStorageKeys(ctx, userID, nil, &yearID)
	if err != nil {
		h.fail(c, userID, "List Year Files", err)
		return
	}
	if err := h.DB.DeleteYear(ctx, yearID, userID); err != nil {
		h.fail(c, userID, "Delete Year", err)
		return
	}
	h.deleteObjects(ctx, keys)

	targetType, targetID := target(db.ActivityTargetTypeYear, yearID)
	h.logActivity(ctx, userID, db.ActivityActionYearDelete, targetType, targetID, map[string]interface{}{"files_removed": len(keys)})
	c.JSON(http.StatusOK, gin.H{"message": "Year deleted successfully"})
}

// HandleListCourses returns the caller's courses, optionally filtered by ?yearId=.
func (h *Handler) HandleListCourses(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var yearID *uuid.UUID
	if raw := c.Query("yearId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Invalid yearId format", err)
			return
		}
		yearID = &id
	}
	courses, err := h.DB.ListCourses(c.Request.Context(), userID, yearID)
	if err != nil {
		h.fail(c, userID, "List Courses", err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

// HandleCreateCourse creates a course inside one of the caller's years.
func (h *Handler) HandleCreateCourse(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Validate Course Request", errors.New("course name and yearId are required"))
		return
	}
	yearID, err := uuid.Parse(req.YearID)
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Invalid yearId format", err)
		return
	}
	ctx := c.Request.Context()

	if _, err := h.DB.GetYear(ctx, yearID, userID); err != nil {
		h.fail(c, userID, "Get Year", err)
		return
	}
	course, err := h.DB.CreateCourse(ctx, db.CreateCourseParams{
		YearID: yearID,
		UserID: userID,
		Name:   strings.TrimSpace(req.Name),
	})
	if err != nil {
		h.fail(c, userID, "Create Course in DB", err)
		return
	}
	targetType, targetID := target(db.ActivityTargetTypeCourse, course.ID)
	h.logActivity(ctx, userID, db.ActivityActionCourseCreate, targetType, targetID, map[string]interface{}{"name": course.Name, "year_id": yearID.String()})
	c.JSON(http.StatusCreated, course)
}

// HandleRenameCourse renames a course.
func (h *Handler) HandleRenameCourse(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	courseID, ok := h.pathUUID(c, userID, "courseId")
	if !ok {
		return
	}
	name, ok := h.bindName(c, userID, "Course")
	if !ok {
		return
	}
	course, err := h.DB.RenameCourse(c.Request.Context(), courseID, userID, name)
	if err != nil {
		h.fail(c, userID, "Rename Course", err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// HandleDeleteCourse deletes a course with its files and quizzes.
func (h *Handler) HandleDeleteCourse(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	courseID, ok := h.pathUUID(c, userID, "courseId")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	keys, err := h.DB.ListStorageKeys(ctx, userID, &courseID, nil)
	if err != nil {
		h.fail(c, userID, "List Course Files", err)
		return
	}
	if err := h.DB.DeleteCourse(ctx, courseID, userID); err != nil {
		h.fail(c, userID, "Delete Course", err)
		return
	}
	h.deleteObjects(ctx, keys)

	targetType, targetID := target(db.ActivityTargetTypeCourse, courseID)
	h.logActivity(ctx, userID, db.ActivityActionCourseDelete, targetType, targetID, map[string]interface{}{"files_removed": len(keys)})
	c.JSON(http.StatusOK, gin.H{"message": "Course deleted successfully"})
}

// deleteObjects removes stored blobs whose rows are already gone. Failures only orphan
// objects, so they are logged and skipped.
func (h *Handler) deleteObjects(ctx context.Context, keys []string) {
	if h.Blob == nil {
		return
	}
	for _, key := range keys {
		if err := h.Blob.Delete(ctx, key); err != nil {
			log.Printf("WARN: Failed to delete stored object %s: %v", key, err)
		}
	}
}
