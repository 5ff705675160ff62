package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyquiz/internal/ai"
	"studyquiz/internal/api/handlers"
	"studyquiz/internal/db"
	"studyquiz/internal/extract"
	"studyquiz/internal/models"
	"studyquiz/internal/ocr"
	"studyquiz/internal/pipeline"
	"studyquiz/internal/storage"
)

const testSecret = "test-secret"

type testEnv struct {
	t      *testing.T
	router *gin.Engine
	store  *memStore
	blob   *memBlob
	pipe   *fakePipeline
	user   uuid.UUID
	token  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemStore()
	blob := newMemBlob()
	pipe := &fakePipeline{}
	h := handlers.NewHandler(nil, "test_session", store, pipe, blob, storage.NewFetcher(time.Second, blob))

	router := gin.New()
	router.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("session-secret"))))
	SetupRoutes(router, h, NewTokenVerifier(testSecret), "http://localhost:5173/")

	user := uuid.New()
	return &testEnv{t: t, router: router, store: store, blob: blob, pipe: pipe, user: user, token: signToken(t, user.String(), testSecret)}
}

func signToken(t *testing.T, sub, secret string) string {
	t.Helper()
	claims := Claims{
		Email: "student@example.com",
		Name:  "Student",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func (e *testEnv) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	e.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(method, path string, v interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var body io.Reader
	if v != nil {
		b, err := json.Marshal(v)
		require.NoError(e.t, err)
		body = bytes.NewReader(b)
	}
	return e.do(method, path, body, "application/json")
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type upload struct {
	field, name, contentType string
	data                     []byte
}

func multipartBody(t *testing.T, fields map[string]string, file upload) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.field, file.name))
	if file.contentType != "" {
		hdr.Set("Content-Type", file.contentType)
	}
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(file.data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) seedCourse(name string) models.Course {
	e.t.Helper()
	ctx := context.Background()
	year, err := e.store.CreateYear(ctx, e.user, "Year 1")
	require.NoError(e.t, err)
	course, err := e.store.CreateCourse(ctx, db.CreateCourseParams{YearID: year.ID, UserID: e.user, Name: name})
	require.NoError(e.t, err)
	return course
}

func (e *testEnv) seedFile(course models.Course, name string, data []byte) models.File {
	e.t.Helper()
	ctx := context.Background()
	id := uuid.New()
	key := storage.ObjectKey(e.user, id, name)
	_, err := e.blob.Put(ctx, key, bytes.NewReader(data), "application/pdf")
	require.NoError(e.t, err)
	f, err := e.store.CreateFile(ctx, db.CreateFileParams{ID: id, Name: name, CourseID: course.ID, UserID: e.user, MimeType: "application/pdf", Size: int64(len(data)), StorageKey: key})
	require.NoError(e.t, err)
	return f
}

func (e *testEnv) seedQuiz(course models.Course, title string, n int) models.Quiz {
	e.t.Helper()
	qs := make([]models.Question, n)
	for i := range qs {
		qs[i] = models.Question{
			Type:          models.QuestionTypeMCQ,
			Question:      fmt.Sprintf("%s question %d?", title, i+1),
			Options:       []string{"one", "two", "three", "four"},
			CorrectAnswer: "two",
		}
	}
	quiz, err := e.store.CreateQuiz(context.Background(), models.Quiz{Title: title, CourseID: course.ID, UserID: e.user, Questions: qs})
	require.NoError(e.t, err)
	return quiz
}

func TestAuthRequired(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/user/profile", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var profile map[string]interface{}
	decodeBody(t, w, &profile)
	assert.Equal(t, "student@example.com", profile["email"])

	for name, token := range map[string]string{
		"no token":        "",
		"wrong secret":    signToken(t, e.user.String(), "other-secret"),
		"subject not id":  signToken(t, "user-42", testSecret),
		"garbage":         "not.a.jwt",
		"nil subject uid": signToken(t, uuid.Nil.String(), testSecret),
	} {
		e.token = token
		w := e.do(http.MethodGet, "/api/structure/years", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
	}
}

func TestAuthStatusWithoutSession(t *testing.T) {
	e := newTestEnv(t)
	e.token = ""

	w := e.do(http.MethodGet, "/api/auth/status", nil, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"authenticated": false}`, w.Body.String())
}

func TestGoogleLoginNotConfigured(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodGet, "/login", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodOptions, "/api/quizzes/generate", nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestYearAndCourseLifecycle(t *testing.T) {
	e := newTestEnv(t)

	w := e.doJSON(http.MethodPost, "/api/structure/years", map[string]string{"name": "  Year 2  "})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var year models.Year
	decodeBody(t, w, &year)
	assert.Equal(t, "Year 2", year.Name)

	w = e.doJSON(http.MethodPost, "/api/structure/courses", map[string]string{"name": "Biology", "yearId": year.ID.String()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var course models.Course
	decodeBody(t, w, &course)

	w = e.do(http.MethodGet, "/api/structure/courses?yearId="+year.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var courses []models.Course
	decodeBody(t, w, &courses)
	require.Len(t, courses, 1)
	assert.Equal(t, "Biology", courses[0].Name)

	w = e.doJSON(http.MethodPut, "/api/structure/courses/"+course.ID.String(), map[string]string{"name": "Biology II"})
	require.Equal(t, http.StatusOK, w.Code)

	e.seedFile(course, "cells.pdf", []byte("%PDF-1.4"))
	require.Equal(t, 1, e.blob.len())

	w = e.do(http.MethodDelete, "/api/structure/years/"+year.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 0, e.blob.len())
	assert.Empty(t, e.store.courses)
	assert.Contains(t, e.store.actions(), db.ActivityActionYearDelete)
}

func TestStructureValidation(t *testing.T) {
	e := newTestEnv(t)

	w := e.doJSON(http.MethodPost, "/api/structure/years", map[string]string{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	otherYear, err := e.store.CreateYear(context.Background(), uuid.New(), "Not mine")
	require.NoError(t, err)
	w = e.doJSON(http.MethodPost, "/api/structure/courses", map[string]string{"name": "Sneaky", "yearId": otherYear.ID.String()})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodDelete, "/api/structure/courses/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodDelete, "/api/structure/courses/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, e.store.actions(), db.ActivityActionError)
}

func TestFileUploadListDelete(t *testing.T) {
	e := newTestEnv(t)
	course := e.seedCourse("Chemistry")

	body, ct := multipartBody(t, map[string]string{"courseId": course.ID.String()},
		upload{field: "file", name: "acids.pdf", contentType: "application/octet-stream", data: []byte("%PDF-1.4\n%stub\n")})
	w := e.do(http.MethodPost, "/api/files", body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var file models.File
	decodeBody(t, w, &file)
	assert.Equal(t, "acids.pdf", file.Name)
	assert.Equal(t, "application/pdf", file.MimeType)
	assert.Equal(t, 1, e.blob.len())

	w = e.do(http.MethodGet, "/api/files/course/"+course.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var files []models.File
	decodeBody(t, w, &files)
	require.Len(t, files, 1)
	assert.NotContains(t, w.Body.String(), "files/", "storage keys stay server-side")

	w = e.do(http.MethodDelete, "/api/files/"+file.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, e.blob.len())
}

func TestFileUploadUnknownCourse(t *testing.T) {
	e := newTestEnv(t)
	body, ct := multipartBody(t, map[string]string{"courseId": uuid.NewString()},
		upload{field: "file", name: "notes.txt", contentType: "text/plain", data: []byte("notes")})

	w := e.do(http.MethodPost, "/api/files", body, ct)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, e.blob.len())
}

func TestGenerateQuiz(t *testing.T) {
	e := newTestEnv(t)
	course := e.seedCourse("Physics")
	file := e.seedFile(course, "forces.pdf", []byte("pdf bytes"))
	e.pipe.result = &pipeline.Result{
		Questions: []models.Question{
			{Type: models.QuestionTypeMCQ, Question: "Question 1: Unit of force?", Options: []string{"Newton", "Joule", "Watt", "Pascal"}, CorrectAnswer: "Newton"},
			{Type: models.QuestionTypeMCQ, Question: "Question 2: Unit of energy?", Options: []string{"Newton", "Joule", "Watt", "Pascal"}, CorrectAnswer: "Joule"},
		},
		Method:        pipeline.MethodStructured,
		LowConfidence: 1,
	}

	w := e.doJSON(http.MethodPost, "/api/quizzes/generate", map[string]interface{}{"fileId": file.ID, "courseId": course.ID})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp handlers.GenerateQuizResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "forces Quiz", resp.Title)
	assert.Equal(t, "forces.pdf", resp.GeneratedFrom)
	assert.Equal(t, 2, resp.TotalQuestions)
	assert.Equal(t, pipeline.MethodStructured, resp.Method)
	assert.Equal(t, 1, resp.LowConfidence)
	assert.Equal(t, []byte("pdf bytes"), e.pipe.seen.Data)
	assert.Equal(t, "application/pdf", e.pipe.seen.MimeType)
	assert.Equal(t, 10, e.pipe.count)

	w = e.do(http.MethodGet, "/api/quizzes/course/"+course.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.QuizSummary
	decodeBody(t, w, &list)
	require.Len(t, list, 1)

	w = e.do(http.MethodGet, "/api/quizzes/"+resp.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Quiz
	decodeBody(t, w, &got)
	assert.Equal(t, "Joule", got.Questions[1].CorrectAnswer)
}

func TestGenerateQuizErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"nothing extracted", fmt.Errorf("%w: %w", pipeline.ErrNoQuestionsExtracted, ai.ErrGenerationUnavailable), http.StatusUnprocessableEntity, "no questions could be generated"},
		{"ocr down", fmt.Errorf("failed to extract text from scan.pdf: %w", ocr.ErrUnavailable), http.StatusServiceUnavailable, "text recognition is currently unavailable"},
		{"unsupported", fmt.Errorf("failed to extract text from a.bin: %w", extract.ErrUnsupportedFormat), http.StatusUnsupportedMediaType, "cannot extract text from this file type"},
		{"malformed", &extract.ExtractionError{Format: "docx", Reason: "missing word/document.xml"}, http.StatusUnprocessableEntity, "missing word/document.xml"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEnv(t)
			file := e.seedFile(e.seedCourse("Maths"), "algebra.pdf", []byte("x"))
			e.pipe.err = tc.err

			w := e.doJSON(http.MethodPost, "/api/quizzes/generate", map[string]interface{}{"fileId": file.ID, "numQuestions": 5})

			assert.Equal(t, tc.status, w.Code)
			var resp models.ErrorResponse
			decodeBody(t, w, &resp)
			assert.Contains(t, resp.Error, tc.message)
			assert.Empty(t, e.store.quizzes)
		})
	}
}

func TestGenerateQuizRequestChecks(t *testing.T) {
	e := newTestEnv(t)
	course := e.seedCourse("History")
	file := e.seedFile(course, "wars.pdf", []byte("x"))

	w := e.doJSON(http.MethodPost, "/api/quizzes/generate", map[string]interface{}{"fileId": file.ID, "numQuestions": 500})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.doJSON(http.MethodPost, "/api/quizzes/generate", map[string]interface{}{"fileId": file.ID, "courseId": uuid.New()})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.doJSON(http.MethodPost, "/api/quizzes/generate", map[string]interface{}{"fileId": uuid.New()})
	assert.Equal(t, http.StatusNotFound, w.Code)

	lost, err := e.store.CreateFile(context.Background(), db.CreateFileParams{ID: uuid.New(), Name: "lost.pdf", CourseID: course.ID, UserID: e.user, StorageKey: "files/missing"})
	require.NoError(t, err)
	w = e.doJSON(http.MethodPost, "/api/quizzes/generate", map[string]interface{}{"fileId": lost.ID})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

const paperText = "Q: What is 2+2?\na) 3\nb) 4\nc) 5\nCorrect: b\n\nQ: Name the powerhouse of the cell\nA: Mitochondria\n"

func TestUploadQuiz(t *testing.T) {
	e := newTestEnv(t)
	course := e.seedCourse("Revision")

	body, ct := multipartBody(t, map[string]string{"courseId": course.ID.String()},
		upload{field: "file", name: "week1.txt", contentType: "text/plain", data: []byte(paperText)})
	w := e.do(http.MethodPost, "/api/quizzes/upload", body, ct)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var quiz models.Quiz
	decodeBody(t, w, &quiz)
	assert.Equal(t, "week1", quiz.Title)
	assert.Equal(t, 2, quiz.TotalQuestions)
	assert.Equal(t, "b", quiz.Questions[0].CorrectAnswer)
	assert.Contains(t, e.store.actions(), db.ActivityActionQuizUpload)
}

func TestUploadQuizRejectsNonText(t *testing.T) {
	e := newTestEnv(t)
	course := e.seedCourse("Revision")

	body, ct := multipartBody(t, map[string]string{"courseId": course.ID.String()},
		upload{field: "file", name: "week1.pdf", contentType: "application/pdf", data: []byte("%PDF")})
	w := e.do(http.MethodPost, "/api/quizzes/upload", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, ct = multipartBody(t, map[string]string{"courseId": course.ID.String()},
		upload{field: "file", name: "empty.txt", contentType: "text/plain", data: []byte("just some prose\n")})
	w = e.do(http.MethodPost, "/api/quizzes/upload", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no valid questions found in file")
}

func TestSubmitQuizAndListAttempts(t *testing.T) {
	e := newTestEnv(t)
	quiz := e.seedQuiz(e.seedCourse("Art"), "Colours", 4)

	w := e.doJSON(http.MethodPost, "/api/quizzes/"+quiz.ID.String()+"/submit", map[string]interface{}{
		"answers": []map[string]interface{}{
			{"questionIndex": 0, "answer": "two"},
			{"questionIndex": 1, "answer": "b"},
			{"questionIndex": 2, "answer": "one"},
		},
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var attempt models.QuizAttempt
	decodeBody(t, w, &attempt)
	assert.Equal(t, 2, attempt.CorrectCount)
	assert.Equal(t, 4, attempt.TotalQuestions)
	assert.Equal(t, 50.0, attempt.Score)
	assert.Equal(t, e.user, attempt.UserID)
	require.Len(t, attempt.Answers, 4)
	assert.False(t, attempt.Answers[3].IsCorrect)

	w = e.do(http.MethodGet, "/api/attempts", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var attempts []models.QuizAttempt
	decodeBody(t, w, &attempts)
	require.Len(t, attempts, 1)
	assert.Equal(t, "Colours", attempts[0].QuizTitle)

	w = e.doJSON(http.MethodPost, "/api/quizzes/"+quiz.ID.String()+"/submit", map[string]interface{}{
		"answers": []map[string]interface{}{{"questionIndex": 9, "answer": "two"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteQuiz(t *testing.T) {
	e := newTestEnv(t)
	quiz := e.seedQuiz(e.seedCourse("Art"), "Shapes", 1)

	w := e.do(http.MethodDelete, "/api/quizzes/"+quiz.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodGet, "/api/quizzes/"+quiz.ID.String(), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMixedPaper(t *testing.T) {
	e := newTestEnv(t)
	bio := e.seedCourse("Biology")
	chem := e.seedCourse("Chemistry")
	empty := e.seedCourse("Empty")
	e.seedQuiz(bio, "Cells", 3)
	e.seedQuiz(chem, "Acids", 4)
	e.seedQuiz(chem, "Bases", 4)

	w := e.doJSON(http.MethodPost, "/api/search/mixed-paper", map[string]interface{}{
		"courseIds":          []string{bio.ID.String(), chem.ID.String(), empty.ID.String()},
		"questionsPerCourse": 5,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var paper models.MixedPaper
	decodeBody(t, w, &paper)
	assert.Equal(t, 8, paper.TotalQuestions)
	assert.Len(t, paper.Questions, 8)
	assert.Equal(t, "Mixed Paper: Biology, Chemistry, Empty", paper.Title)
	perCourse := map[string]int{}
	for _, q := range paper.Questions {
		perCourse[q.SourceCourse]++
		assert.NotEmpty(t, q.SourceQuiz)
	}
	assert.Equal(t, 3, perCourse[bio.ID.String()])
	assert.Equal(t, 5, perCourse[chem.ID.String()])
}

func TestMixedPaperErrors(t *testing.T) {
	e := newTestEnv(t)
	empty := e.seedCourse("Empty")

	w := e.doJSON(http.MethodPost, "/api/search/mixed-paper", map[string]interface{}{"courseIds": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.doJSON(http.MethodPost, "/api/search/mixed-paper", map[string]interface{}{"courseIds": []string{empty.ID.String()}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no questions found in selected courses")
}

func TestUploadMixedPaper(t *testing.T) {
	e := newTestEnv(t)

	body, ct := multipartBody(t, nil, upload{field: "file", name: "mock-exam.txt", contentType: "text/plain", data: []byte(paperText)})
	w := e.do(http.MethodPost, "/api/search/upload-mixed-paper", body, ct)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var paper models.MixedPaper
	decodeBody(t, w, &paper)
	assert.Equal(t, "mock-exam", paper.Title)
	assert.Equal(t, 2, paper.TotalQuestions)
	assert.Equal(t, "Uploaded", paper.Courses)
	assert.Equal(t, models.QuestionTypeSAQ, paper.Questions[1].Type)

	big := bytes.Repeat([]byte("x"), handlers.MaxMixedPaperUploadBytes+1)
	body, ct = multipartBody(t, nil, upload{field: "file", name: "huge.txt", contentType: "text/plain", data: big})
	w = e.do(http.MethodPost, "/api/search/upload-mixed-paper", body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSearch(t *testing.T) {
	e := newTestEnv(t)
	bio := e.seedCourse("Biology 101")
	e.seedFile(bio, "bio-notes.pdf", []byte("x"))
	e.seedQuiz(bio, "Biology basics", 2)
	e.seedQuiz(e.seedCourse("Maths"), "Algebra", 1)

	w := e.do(http.MethodGet, "/api/search?query=b", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodGet, "/api/search?query=BIO", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp handlers.SearchResponse
	decodeBody(t, w, &resp)
	require.Len(t, resp.Files, 1)
	require.Len(t, resp.Quizzes, 1)
	require.Len(t, resp.Courses, 1)
	assert.Equal(t, "Biology 101", resp.Files[0].Course)
	assert.Equal(t, "quiz", resp.Quizzes[0].Type)
	assert.Equal(t, 2, resp.Quizzes[0].Questions)
	assert.Equal(t, "Year 1", resp.Courses[0].Year)

	w = e.do(http.MethodGet, "/api/search/course/"+bio.ID.String()+"?query=basics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = handlers.SearchResponse{}
	decodeBody(t, w, &resp)
	assert.Equal(t, "Biology 101", resp.CourseName)
	assert.Empty(t, resp.Files)
	assert.Len(t, resp.Quizzes, 1)
	assert.True(t, strings.Contains(w.Body.String(), `"files":[]`))
}
