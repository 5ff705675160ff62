package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"studyquiz/internal/db"
	"studyquiz/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// MaxFileUploadBytes caps a course file upload.
const MaxFileUploadBytes = 10 << 20

// HandleUploadFile stores a course document. Multipart fields: file, courseId.
func (h *Handler) HandleUploadFile(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	if h.Blob == nil {
		h.handleErrorAndNotify(c, userID, http.StatusServiceUnavailable, "Upload File", errors.New("file storage is not configured"))
		return
	}
	ctx := c.Request.Context()

	courseID, err := uuid.Parse(c.PostForm("courseId"))
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Invalid courseId format", err)
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Read Uploaded File", err)
		return
	}
	if fileHeader.Size > MaxFileUploadBytes {
		h.handleErrorAndNotify(c, userID, http.StatusRequestEntityTooLarge, "Validate Uploaded File",
			fmt.Errorf("file %s exceeds the %d MB limit", fileHeader.Filename, MaxFileUploadBytes>>20))
		return
	}
	if _, err := h.DB.GetCourse(ctx, courseID, userID); err != nil {
		h.fail(c, userID, "Get Course", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusInternalServerError, "Open Uploaded File", err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, MaxFileUploadBytes+1))
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusInternalServerError, "Read Uploaded File", err)
		return
	}
	if len(data) > MaxFileUploadBytes {
		h.handleErrorAndNotify(c, userID, http.StatusRequestEntityTooLarge, "Validate Uploaded File",
			fmt.Errorf("file %s exceeds the %d MB limit", fileHeader.Filename, MaxFileUploadBytes>>20))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mimetype.Detect(data).String()
	}

	fileID := uuid.New()
	key := storage.ObjectKey(userID, fileID, fileHeader.Filename)
	publicURL, err := h.Blob.Put(ctx, key, bytes.NewReader(data), contentType)
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadGateway, "Store Uploaded File", err)
		return
	}

	record, err := h.DB.CreateFile(ctx, db.CreateFileParams{
		ID:         fileID,
		Name:       fileHeader.Filename,
		CourseID:   courseID,
		UserID:     userID,
		MimeType:   contentType,
		Size:       int64(len(data)),
		StorageKey: key,
		URL:        pgtype.Text{String: publicURL, Valid: publicURL != ""},
	})
	if err != nil {
		h.deleteObjects(ctx, []string{key})
		h.fail(c, userID, "Create File in DB", err)
		return
	}

	targetType, targetID := target(db.ActivityTargetTypeFile, record.ID)
	h.logActivity(ctx, userID, db.ActivityActionFileUpload, targetType, targetID, map[string]interface{}{
		"name":      record.Name,
		"mime_type": record.MimeType,
		"size":      record.Size,
	})
	c.JSON(http.StatusCreated, record)
}

// HandleListCourseFiles lists the files of one course, newest first.
func (h *Handler) HandleListCourseFiles(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	courseID, ok := h.pathUUID(c, userID, "courseId")
	if !ok {
		return
	}
	files, err := h.DB.ListFilesByCourse(c.Request.Context(), courseID, userID)
	if err != nil {
		h.fail(c, userID, "List Course Files", err)
		return
	}
	c.JSON(http.StatusOK, files)
}

// HandleRenameFile renames a stored file. The object key is unchanged.
func (h *Handler) HandleRenameFile(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	fileID, ok := h.pathUUID(c, userID, "fileId")
	if !ok {
		return
	}
	name, ok := h.bindName(c, userID, "File")
	if !ok {
		return
	}
	file, err := h.DB.RenameFile(c.Request.Context(), fileID, userID, name)
	if err != nil {
		h.fail(c, userID, "Rename File", err)
		return
	}
	c.JSON(http.StatusOK, file)
}

// HandleDeleteFile deletes a file row and its stored object.
func (h *Handler) HandleDeleteFile(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	fileID, ok := h.pathUUID(c, userID, "fileId")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	file, err := h.DB.DeleteFile(ctx, fileID, userID)
	if err != nil {
		h.fail(c, userID, "Delete File", err)
		return
	}
	if file.StorageKey != "" {
		h.deleteObjects(ctx, []string{file.StorageKey})
	}

	targetType, targetID := target(db.ActivityTargetTypeFile, file.ID)
	h.logActivity(ctx, userID, db.ActivityActionFileDelete, targetType, targetID, map[string]interface{}{"name": file.Name})
	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}
