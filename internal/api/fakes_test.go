package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"studyquiz/internal/db"
	"studyquiz/internal/models"
	"studyquiz/internal/pipeline"
)

// memStore is an in-memory handlers.Store.
type memStore struct {
	mu       sync.Mutex
	users    map[string]models.User
	years    map[uuid.UUID]models.Year
	courses  map[uuid.UUID]models.Course
	files    map[uuid.UUID]models.File
	quizzes  map[uuid.UUID]models.Quiz
	attempts []models.QuizAttempt
	activity []db.CreateActivityLogParams
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[string]models.User{},
		years:   map[uuid.UUID]models.Year{},
		courses: map[uuid.UUID]models.Course{},
		files:   map[uuid.UUID]models.File{},
		quizzes: map[uuid.UUID]models.Quiz{},
	}
}

func (s *memStore) actions() []db.ActivityAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]db.ActivityAction, 0, len(s.activity))
	for _, a := range s.activity {
		out = append(out, a.Action)
	}
	return out
}

func (s *memStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return models.User{}, db.ErrNotFound
	}
	return u, nil
}

func (s *memStore) CreateUser(ctx context.Context, arg db.CreateUserParams) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := models.User{ID: uuid.New(), Email: arg.Email, Name: arg.Name.String, GoogleID: arg.GoogleID.String, Picture: arg.Picture.String, CreatedAt: time.Now()}
	s.users[u.Email] = u
	return u, nil
}

func (s *memStore) UpdateUserProfile(ctx context.Context, arg db.UpdateUserProfileParams) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, u := range s.users {
		if u.ID == uuid.UUID(arg.ID.Bytes) {
			if arg.Name.Valid {
				u.Name = arg.Name.String
			}
			s.users[email] = u
			return u, nil
		}
	}
	return models.User{}, db.ErrNotFound
}

func (s *memStore) CreateActivityLog(ctx context.Context, arg db.CreateActivityLogParams) (db.ActivityLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity = append(s.activity, arg)
	return db.ActivityLog{ID: uuid.New(), UserID: arg.UserID, Action: arg.Action}, nil
}

func (s *memStore) ListYears(ctx context.Context, userID uuid.UUID) ([]models.Year, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Year
	for _, y := range s.years {
		if y.UserID == userID {
			out = append(out, y)
		}
	}
	return out, nil
}

func (s *memStore) GetYear(ctx context.Context, id, userID uuid.UUID) (models.Year, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	y, ok := s.years[id]
	if !ok || y.UserID != userID {
		return models.Year{}, db.ErrNotFound
	}
	return y, nil
}

func (s *memStore) CreateYear(ctx context.Context, userID uuid.UUID, name string) (models.Year, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	y := models.Year{ID: uuid.New(), Name: name, UserID: userID, CreatedAt: time.Now()}
	s.years[y.ID] = y
	return y, nil
}

func (s *memStore) RenameYear(ctx context.Context, id, userID uuid.UUID, name string) (models.Year, error) {
	y, err := s.GetYear(ctx, id, userID)
	if err != nil {
		return y, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	y.Name = name
	s.years[id] = y
	return y, nil
}

func (s *memStore) DeleteYear(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := s.GetYear(ctx, id, userID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.years, id)
	for cid, c := range s.courses {
		if c.YearID == id {
			s.dropCourseLocked(cid)
		}
	}
	return nil
}

func (s *memStore) dropCourseLocked(id uuid.UUID) {
	delete(s.courses, id)
	for fid, f := range s.files {
		if f.CourseID == id {
			delete(s.files, fid)
		}
	}
	for qid, q := range s.quizzes {
		if q.CourseID == id {
			delete(s.quizzes, qid)
		}
	}
}

func (s *memStore) ListCourses(ctx context.Context, userID uuid.UUID, yearID *uuid.UUID) ([]models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Course
	for _, c := range s.courses {
		if c.UserID == userID && (yearID == nil || c.YearID == *yearID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) GetCourse(ctx context.Context, id, userID uuid.UUID) (models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[id]
	if !ok || c.UserID != userID {
		return models.Course{}, db.ErrNotFound
	}
	return c, nil
}

func (s *memStore) GetCoursesByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.Course, error) {
	var out []models.Course
	for _, id := range ids {
		if c, err := s.GetCourse(ctx, id, userID); err == nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) CreateCourse(ctx context.Context, arg db.CreateCourseParams) (models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := models.Course{ID: uuid.New(), Name: arg.Name, YearID: arg.YearID, UserID: arg.UserID, CreatedAt: time.Now()}
	s.courses[c.ID] = c
	return c, nil
}

func (s *memStore) RenameCourse(ctx context.Context, id, userID uuid.UUID, name string) (models.Course, error) {
	c, err := s.GetCourse(ctx, id, userID)
	if err != nil {
		return c, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Name = name
	s.courses[id] = c
	return c, nil
}

func (s *memStore) DeleteCourse(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := s.GetCourse(ctx, id, userID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropCourseLocked(id)
	return nil
}

func (s *memStore) CreateFile(ctx context.Context, arg db.CreateFileParams) (models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := models.File{
		ID: arg.ID, Name: arg.Name, CourseID: arg.CourseID, UserID: arg.UserID, MimeType: arg.MimeType,
		Size: arg.Size, StorageKey: arg.StorageKey, URL: arg.URL.String, UploadedAt: time.Now(),
	}
	s.files[f.ID] = f
	return f, nil
}

func (s *memStore) GetFile(ctx context.Context, id, userID uuid.UUID) (models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok || f.UserID != userID {
		return models.File{}, db.ErrNotFound
	}
	return f, nil
}

func (s *memStore) ListFilesByCourse(ctx context.Context, courseID, userID uuid.UUID) ([]models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.File
	for _, f := range s.files {
		if f.CourseID == courseID && f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *memStore) RenameFile(ctx context.Context, id, userID uuid.UUID, name string) (models.File, error) {
	f, err := s.GetFile(ctx, id, userID)
	if err != nil {
		return f, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f.Name = name
	s.files[id] = f
	return f, nil
}

func (s *memStore) DeleteFile(ctx context.Context, id, userID uuid.UUID) (models.File, error) {
	f, err := s.GetFile(ctx, id, userID)
	if err != nil {
		return f, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, id)
	return f, nil
}

func (s *memStore) ListStorageKeys(ctx context.Context, userID uuid.UUID, courseID, yearID *uuid.UUID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, f := range s.files {
		c := s.courses[f.CourseID]
		if f.UserID != userID || f.StorageKey == "" {
			continue
		}
		if (courseID == nil || f.CourseID == *courseID) && (yearID == nil || c.YearID == *yearID) {
			out = append(out, f.StorageKey)
		}
	}
	return out, nil
}

func (s *memStore) CreateQuiz(ctx context.Context, quiz models.Quiz) (models.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz.ID = uuid.New()
	quiz.CreatedAt = time.Now()
	quiz.Normalize()
	s.quizzes[quiz.ID] = quiz
	return quiz, nil
}

func (s *memStore) GetQuiz(ctx context.Context, id, userID uuid.UUID) (models.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[id]
	if !ok || q.UserID != userID {
		return models.Quiz{}, db.ErrNotFound
	}
	return q, nil
}

func (s *memStore) ListQuizzesByCourse(ctx context.Context, courseID, userID uuid.UUID) ([]models.QuizSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.QuizSummary
	for _, q := range s.quizzes {
		if q.CourseID == courseID && q.UserID == userID {
			out = append(out, models.QuizSummary{ID: q.ID, Title: q.Title, CourseID: q.CourseID, TotalQuestions: q.TotalQuestions, CreatedAt: q.CreatedAt})
		}
	}
	return out, nil
}

func (s *memStore) ListQuizzesByCourses(ctx context.Context, userID uuid.UUID, courseIDs []uuid.UUID) ([]models.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range courseIDs {
		want[id] = true
	}
	var out []models.Quiz
	for _, q := range s.quizzes {
		if q.UserID == userID && want[q.CourseID] {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *memStore) DeleteQuiz(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := s.GetQuiz(ctx, id, userID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.quizzes, id)
	return nil
}

func (s *memStore) CreateQuizAttempt(ctx context.Context, a models.QuizAttempt) (models.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = uuid.New()
	a.CompletedAt = time.Now()
	s.attempts = append(s.attempts, a)
	return a, nil
}

func (s *memStore) ListUserAttempts(ctx context.Context, userID uuid.UUID, limit int32) ([]models.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.QuizAttempt
	for i := len(s.attempts) - 1; i >= 0 && len(out) < int(limit); i-- {
		if s.attempts[i].UserID == userID {
			out = append(out, s.attempts[i])
		}
	}
	return out, nil
}

func matches(name string, arg db.SearchParams) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(strings.TrimSpace(arg.Query)))
}

func (s *memStore) SearchFiles(ctx context.Context, arg db.SearchParams) ([]db.FileHit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.FileHit
	for _, f := range s.files {
		if f.UserID == arg.UserID && matches(f.Name, arg) && (arg.CourseID == nil || f.CourseID == *arg.CourseID) {
			out = append(out, db.FileHit{ID: f.ID, Name: f.Name, CourseID: f.CourseID, CourseName: s.courses[f.CourseID].Name, UploadedAt: f.UploadedAt})
		}
	}
	return out, nil
}

func (s *memStore) SearchQuizzes(ctx context.Context, arg db.SearchParams) ([]db.QuizHit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.QuizHit
	for _, q := range s.quizzes {
		if q.UserID == arg.UserID && matches(q.Title, arg) && (arg.CourseID == nil || q.CourseID == *arg.CourseID) {
			out = append(out, db.QuizHit{ID: q.ID, Title: q.Title, CourseID: q.CourseID, CourseName: s.courses[q.CourseID].Name, TotalQuestions: q.TotalQuestions})
		}
	}
	return out, nil
}

func (s *memStore) SearchCourses(ctx context.Context, arg db.SearchParams) ([]db.CourseHit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.CourseHit
	for _, c := range s.courses {
		if c.UserID == arg.UserID && matches(c.Name, arg) {
			out = append(out, db.CourseHit{ID: c.ID, Name: c.Name, YearID: c.YearID, YearName: s.years[c.YearID].Name})
		}
	}
	return out, nil
}

// memBlob is an in-memory storage.Blob.
type memBlob struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemBlob() *memBlob { return &memBlob{objects: map[string][]byte{}} }

func (m *memBlob) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
	return "", nil
}

func (m *memBlob) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memBlob) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memBlob) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// fakePipeline returns a canned result and records the document it saw.
type fakePipeline struct {
	result *pipeline.Result
	err    error
	seen   models.RawDocument
	count  int
}

func (f *fakePipeline) Generate(ctx context.Context, doc models.RawDocument, numQuestions int) (*pipeline.Result, error) {
	f.seen = doc
	f.count = numQuestions
	return f.result, f.err
}
