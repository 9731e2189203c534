package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kotoba-lab/learning-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type LessonFilters struct {
	Kind      *models.LessonKind `json:"kind"`
	Level     *models.JLPTLevel  `json:"level"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "lesson_order", "title", "created_at"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

type SubmissionFilters struct {
	UserID    *string                  `json:"user_id"`
	LessonID  *uint                    `json:"lesson_id"`
	Mode      *models.SubmissionMode   `json:"mode"`
	Status    *models.SubmissionStatus `json:"status"`
	DateFrom  *time.Time               `json:"date_from"`
	DateTo    *time.Time               `json:"date_to"`
	Limit     int                      `json:"limit"`
	Offset    int                      `json:"offset"`
	SortBy    string                   `json:"sort_by"`
	SortOrder string                   `json:"sort_order"`
}

// ===== SHARED STATISTICS STRUCTS =====

type LessonStats struct {
	TotalSubmissions int     `json:"total_submissions"`
	AverageScore     float64 `json:"average_score"`
	AverageTimeSpent int     `json:"average_time_spent"`
	WordCount        int     `json:"word_count"`
	QuestionCount    int     `json:"question_count"`
}

type UserProgressStats struct {
	TotalSubmissions int                             `json:"total_submissions"`
	LessonsAttempted int                             `json:"lessons_attempted"`
	AverageScore     float64                         `json:"average_score"`
	BestScore        float64                         `json:"best_score"`
	TotalTimeSpent   int                             `json:"total_time_spent"`
	StatusBreakdown  map[models.SubmissionStatus]int `json:"status_breakdown"`
}

type ReviewQueueStats struct {
	PendingReviews int `json:"pending_reviews"`
	ReviewedToday  int `json:"reviewed_today"`
	TotalReviewed  int `json:"total_reviewed"`
}

// ===== REPOSITORY INTERFACES =====

type LessonRepository interface {
	Create(ctx context.Context, lesson *models.Lesson) error
	GetByID(ctx context.Context, id uint) (*models.Lesson, error)
	GetByIDWithContent(ctx context.Context, id uint) (*models.Lesson, error)
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters LessonFilters) ([]*models.Lesson, int64, error)
	GetStats(ctx context.Context, id uint) (*LessonStats, error)
}

type WordRepository interface {
	Create(ctx context.Context, word *models.Word) error
	CreateBatch(ctx context.Context, words []*models.Word) error
	GetByID(ctx context.Context, id uint) (*models.Word, error)
	GetByLesson(ctx context.Context, lessonID uint) ([]*models.Word, error)
	Update(ctx context.Context, word *models.Word) error
	Delete(ctx context.Context, id uint) error
}

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	CreateBatch(ctx context.Context, questions []*models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetByLesson(ctx context.Context, lessonID uint) ([]*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error
}

type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (*models.Submission, error)
	GetByIDWithReview(ctx context.Context, id uint) (*models.Submission, error)
	Update(ctx context.Context, submission *models.Submission) error
	List(ctx context.Context, filters SubmissionFilters) ([]*models.Submission, int64, error)
	GetByUser(ctx context.Context, userID string, filters SubmissionFilters) ([]*models.Submission, int64, error)
	GetPendingReview(ctx context.Context, limit, offset int) ([]*models.Submission, int64, error)
	UpdateStatus(ctx context.Context, id uint, status models.SubmissionStatus) error
	GetUserProgress(ctx context.Context, userID string) (*UserProgressStats, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetBySubmission(ctx context.Context, submissionID uint) (*models.Review, error)
	GetQueueStats(ctx context.Context) (*ReviewQueueStats, error)
}

type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, limit, offset int) ([]*models.User, int64, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// Repository aggregates all repositories and owns the database handle.
type Repository interface {
	Lesson() LessonRepository
	Word() WordRepository
	Question() QuestionRepository
	Submission() SubmissionRepository
	Review() ReviewRepository
	User() UserRepository

	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	Ping(ctx context.Context) error
	Close() error
	DB() *gorm.DB
}
