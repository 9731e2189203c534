package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/kotoba-lab/learning-service/internal/cache"
	"github.com/kotoba-lab/learning-service/internal/models"
	"github.com/kotoba-lab/learning-service/internal/repositories"
)

// MockLessonRepository is a mock implementation of LessonRepository
type MockLessonRepository struct {
	mock.Mock
}

func (m *MockLessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	args := m.Called(ctx, lesson)
	return args.Error(0)
}

func (m *MockLessonRepository) GetByID(ctx context.Context, id uint) (*models.Lesson, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Lesson), args.Error(1)
}

func (m *MockLessonRepository) GetByIDWithContent(ctx context.Context, id uint) (*models.Lesson, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Lesson), args.Error(1)
}

func (m *MockLessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	args := m.Called(ctx, lesson)
	return args.Error(0)
}

func (m *MockLessonRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLessonRepository) List(ctx context.Context, filters repositories.LessonFilters) ([]*models.Lesson, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Lesson), args.Get(1).(int64), args.Error(2)
}

func (m *MockLessonRepository) GetStats(ctx context.Context, id uint) (*repositories.LessonStats, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*repositories.LessonStats), args.Error(1)
}

// MockWordRepository is a mock implementation of WordRepository
type MockWordRepository struct {
	mock.Mock
}

func (m *MockWordRepository) Create(ctx context.Context, word *models.Word) error {
	args := m.Called(ctx, word)
	return args.Error(0)
}

func (m *MockWordRepository) CreateBatch(ctx context.Context, words []*models.Word) error {
	args := m.Called(ctx, words)
	return args.Error(0)
}

func (m *MockWordRepository) GetByID(ctx context.Context, id uint) (*models.Word, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Word), args.Error(1)
}

func (m *MockWordRepository) GetByLesson(ctx context.Context, lessonID uint) ([]*models.Word, error) {
	args := m.Called(ctx, lessonID)
	return args.Get(0).([]*models.Word), args.Error(1)
}

func (m *MockWordRepository) Update(ctx context.Context, word *models.Word) error {
	args := m.Called(ctx, word)
	return args.Error(0)
}

func (m *MockWordRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) CreateBatch(ctx context.Context, questions []*models.Question) error {
	args := m.Called(ctx, questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByLesson(ctx context.Context, lessonID uint) ([]*models.Question, error) {
	args := m.Called(ctx, lessonID)
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Update(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSubmissionRepository is a mock implementation of SubmissionRepository
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionRepository) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) GetByIDWithReview(ctx context.Context, id uint) (*models.Submission, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionRepository) List(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Submission), args.Get(1).(int64), args.Error(2)
}

func (m *MockSubmissionRepository) GetByUser(ctx context.Context, userID string, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	args := m.Called(ctx, userID, filters)
	return args.Get(0).([]*models.Submission), args.Get(1).(int64), args.Error(2)
}

func (m *MockSubmissionRepository) GetPendingReview(ctx context.Context, limit, offset int) ([]*models.Submission, int64, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Submission), args.Get(1).(int64), args.Error(2)
}

func (m *MockSubmissionRepository) UpdateStatus(ctx context.Context, id uint, status models.SubmissionStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockSubmissionRepository) GetUserProgress(ctx context.Context, userID string) (*repositories.UserProgressStats, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(*repositories.UserProgressStats), args.Error(1)
}

// MockReviewRepository is a mock implementation of ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) GetBySubmission(ctx context.Context, submissionID uint) (*models.Review, error) {
	args := m.Called(ctx, submissionID)
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) GetQueueStats(ctx context.Context) (*repositories.ReviewQueueStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(*repositories.ReviewQueueStats), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, int64, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// mockRepository bundles the per-entity mocks behind the Repository
// interface. WithTransaction runs the callback against the same mocks, so
// transactional expectations are set up exactly like plain ones.
type mockRepository struct {
	lesson     *MockLessonRepository
	word       *MockWordRepository
	question   *MockQuestionRepository
	submission *MockSubmissionRepository
	review     *MockReviewRepository
	user       *MockUserRepository
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		lesson:     new(MockLessonRepository),
		word:       new(MockWordRepository),
		question:   new(MockQuestionRepository),
		submission: new(MockSubmissionRepository),
		review:     new(MockReviewRepository),
		user:       new(MockUserRepository),
	}
}

func (r *mockRepository) Lesson() repositories.LessonRepository         { return r.lesson }
func (r *mockRepository) Word() repositories.WordRepository             { return r.word }
func (r *mockRepository) Question() repositories.QuestionRepository     { return r.question }
func (r *mockRepository) Submission() repositories.SubmissionRepository { return r.submission }
func (r *mockRepository) Review() repositories.ReviewRepository         { return r.review }
func (r *mockRepository) User() repositories.UserRepository             { return r.user }

func (r *mockRepository) WithTransaction(ctx context.Context, fn func(repo repositories.Repository) error) error {
	return fn(r)
}

func (r *mockRepository) Ping(ctx context.Context) error { return nil }
func (r *mockRepository) Close() error                   { return nil }
func (r *mockRepository) DB() *gorm.DB                   { return nil }

func (r *mockRepository) assertExpectations(t mock.TestingT) {
	r.lesson.AssertExpectations(t)
	r.word.AssertExpectations(t)
	r.question.AssertExpectations(t)
	r.submission.AssertExpectations(t)
	r.review.AssertExpectations(t)
	r.user.AssertExpectations(t)
}

// memoryCache is an in-memory CacheService with the same JSON round-trip
// behavior as the Redis implementation. TTLs are recorded but not enforced.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		entries: make(map[string][]byte),
		ttls:    make(map[string]time.Duration),
	}
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	c.ttls[key] = ttl
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	data, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	delete(c.ttls, key)
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	c.ttls = make(map[string]time.Duration)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
