package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/kotoba-lab/learning-service/internal/cache"
	"github.com/kotoba-lab/learning-service/internal/events"
	"github.com/kotoba-lab/learning-service/internal/models"
	"github.com/kotoba-lab/learning-service/internal/repositories"
	"github.com/kotoba-lab/learning-service/internal/validator"
)

// ===== REQUEST DTOs =====

type CreateLessonRequest struct {
	Title            string            `json:"title" validate:"required,min=1,max=200"`
	Description      *string           `json:"description" validate:"omitempty,max=1000"`
	Kind             models.LessonKind `json:"kind" validate:"required,lesson_kind"`
	Level            models.JLPTLevel  `json:"level" validate:"required,jlpt_level"`
	Order            int               `json:"order" validate:"omitempty,min=0"`
	ExerciseDuration int               `json:"exercise_duration" validate:"omitempty,min=1,max=180"`
}

type UpdateLessonRequest struct {
	Title            *string            `json:"title" validate:"omitempty,min=1,max=200"`
	Description      *string            `json:"description" validate:"omitempty,max=1000"`
	Kind             *models.LessonKind `json:"kind" validate:"omitempty,lesson_kind"`
	Level            *models.JLPTLevel  `json:"level" validate:"omitempty,jlpt_level"`
	Order            *int               `json:"order" validate:"omitempty,min=0"`
	ExerciseDuration *int               `json:"exercise_duration" validate:"omitempty,min=1,max=180"`
}

type ListLessonsRequest struct {
	Kind      *models.LessonKind `json:"kind" form:"kind" validate:"omitempty,lesson_kind"`
	Level     *models.JLPTLevel  `json:"level" form:"level" validate:"omitempty,jlpt_level"`
	Page      int                `json:"page" form:"page" validate:"omitempty,min=1"`
	PageSize  int                `json:"page_size" form:"page_size" validate:"omitempty,min=1,max=100"`
	SortBy    string             `json:"sort_by" form:"sort_by"`
	SortOrder string             `json:"sort_order" form:"sort_order" validate:"omitempty,oneof=asc desc"`
}

type CreateWordRequest struct {
	Kana    string  `json:"kana" validate:"required,min=1,max=100"`
	Kanji   *string `json:"kanji" validate:"omitempty,max=100"`
	Romaji  string  `json:"romaji" validate:"omitempty,max=200"`
	Meaning string  `json:"meaning" validate:"required,min=1,max=500"`
	Example *string `json:"example"`
	Order   int     `json:"order" validate:"omitempty,min=0"`
}

type CreateQuestionRequest struct {
	Kind        models.QuestionKind `json:"kind" validate:"required,question_kind"`
	Prompt      string              `json:"prompt" validate:"required,min=1"`
	Options     []string            `json:"options"`
	Blanks      []string            `json:"blanks"`
	Answer      *string             `json:"answer"`
	Points      float64             `json:"points" validate:"omitempty,min=0"`
	Explanation *string             `json:"explanation"`
	Order       int                 `json:"order" validate:"omitempty,min=0"`
}

// SubmitRequest carries one learner attempt at a lesson's question set.
// Answers maps question ID to the raw text per blank.
type SubmitRequest struct {
	Answers   map[uint][]string `json:"answers" validate:"required"`
	TimeSpent int               `json:"time_spent" validate:"omitempty,min=0"` // seconds
}

type ListSubmissionsRequest struct {
	LessonID *uint                    `json:"lesson_id" form:"lesson_id"`
	Mode     *models.SubmissionMode   `json:"mode" form:"mode" validate:"omitempty,oneof=exercise mini_test"`
	Status   *models.SubmissionStatus `json:"status" form:"status" validate:"omitempty,oneof=graded pending_review reviewed"`
	Page     int                      `json:"page" form:"page" validate:"omitempty,min=1"`
	PageSize int                      `json:"page_size" form:"page_size" validate:"omitempty,min=1,max=100"`
}

type ReviewRequest struct {
	Score    *float64 `json:"score" validate:"omitempty,min=0"`
	Feedback string   `json:"feedback" validate:"omitempty,max=2000"`
}

type UpdateProfileRequest struct {
	TargetLevel *models.JLPTLevel `json:"target_level" validate:"omitempty,jlpt_level"`
}

type UpdateUserStatusRequest struct {
	Role     *models.UserRole `json:"role" validate:"omitempty,user_role"`
	IsActive *bool            `json:"is_active"`
}

// ===== RESPONSE DTOs =====

type LessonSummary struct {
	ID               uint              `json:"id"`
	Title            string            `json:"title"`
	Description      *string           `json:"description,omitempty"`
	Kind             models.LessonKind `json:"kind"`
	Level            models.JLPTLevel  `json:"level"`
	Order            int               `json:"order"`
	ExerciseDuration int               `json:"exercise_duration"`
	WordCount        int               `json:"word_count"`
	QuestionCount    int               `json:"question_count"`
}

type LessonListResponse struct {
	Lessons  []*LessonSummary `json:"lessons"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// LessonGroup collects one JLPT level's lessons for the grouped browse view.
type LessonGroup struct {
	Level   models.JLPTLevel `json:"level"`
	Lessons []*LessonSummary `json:"lessons"`
}

// QuestionView is a question as shown to a learner: the expected answers
// are stripped, only the shape needed to render and answer it remains.
type QuestionView struct {
	ID         uint                `json:"id"`
	Kind       models.QuestionKind `json:"kind"`
	Prompt     string              `json:"prompt"`
	Options    []string            `json:"options,omitempty"`
	BlankCount int                 `json:"blank_count"`
	Points     float64             `json:"points"`
	Order      int                 `json:"order"`
}

type LessonDetailResponse struct {
	LessonSummary
	Words     []*models.Word  `json:"words"`
	Questions []*QuestionView `json:"questions"`
}

// QuestionResult is the graded outcome of one question, including the
// feedback shown after an exercise.
type QuestionResult struct {
	QuestionID  uint     `json:"question_id"`
	Correct     []bool   `json:"correct"`
	Awarded     float64  `json:"awarded"`
	Points      float64  `json:"points"`
	Expected    []string `json:"expected,omitempty"`
	Explanation *string  `json:"explanation,omitempty"`
}

type SubmissionResponse struct {
	ID          uint                    `json:"id"`
	LessonID    uint                    `json:"lesson_id"`
	LessonTitle string                  `json:"lesson_title,omitempty"`
	UserID      string                  `json:"user_id"`
	Mode        models.SubmissionMode   `json:"mode"`
	Status      models.SubmissionStatus `json:"status"`
	TotalScore  float64                 `json:"total_score"`
	MaxScore    float64                 `json:"max_score"`
	TimeSpent   int                     `json:"time_spent"`
	SubmittedAt time.Time               `json:"submitted_at"`
	Results     []*QuestionResult       `json:"results,omitempty"`
	Review      *models.Review          `json:"review,omitempty"`
}

type SubmissionListResponse struct {
	Submissions []*SubmissionResponse `json:"submissions"`
	Total       int64                 `json:"total"`
	Page        int                   `json:"page"`
	PageSize    int                   `json:"page_size"`
}

type UserListResponse struct {
	Users    []*models.User `json:"users"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

type ReviewQueueResponse struct {
	Submissions []*SubmissionResponse          `json:"submissions"`
	Total       int64                          `json:"total"`
	Stats       *repositories.ReviewQueueStats `json:"stats"`
}

// ===== SERVICE INTERFACES =====

type LessonService interface {
	Create(ctx context.Context, req *CreateLessonRequest, creatorID string) (*LessonSummary, error)
	Update(ctx context.Context, id uint, req *UpdateLessonRequest) (*LessonSummary, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint) (*LessonDetailResponse, error)
	List(ctx context.Context, req *ListLessonsRequest) (*LessonListResponse, error)
	ListGroupedByLevel(ctx context.Context, kind *models.LessonKind) ([]*LessonGroup, error)
	AddWord(ctx context.Context, lessonID uint, req *CreateWordRequest) (*models.Word, error)
	AddQuestion(ctx context.Context, lessonID uint, req *CreateQuestionRequest) (*models.Question, error)
	GetStats(ctx context.Context, id uint) (*repositories.LessonStats, error)
}

type ExerciseService interface {
	Submit(ctx context.Context, lessonID uint, req *SubmitRequest, userID string) (*SubmissionResponse, error)
	GetSubmission(ctx context.Context, id uint, userID string, isAdmin bool) (*SubmissionResponse, error)
	ListSubmissions(ctx context.Context, req *ListSubmissionsRequest, userID string) (*SubmissionListResponse, error)
	GetProgress(ctx context.Context, userID string) (*repositories.UserProgressStats, error)
}

type MiniTestService interface {
	Submit(ctx context.Context, lessonID uint, req *SubmitRequest, userID string) (*SubmissionResponse, error)
	Review(ctx context.Context, submissionID uint, req *ReviewRequest, reviewerID string) (*SubmissionResponse, error)
	PendingReviews(ctx context.Context, page, pageSize int) (*ReviewQueueResponse, error)
}

type DeckService interface {
	Build(ctx context.Context, lessonID uint) (*models.Deck, error)
	Get(ctx context.Context, key string) (*models.Deck, error)
}

type UserService interface {
	EnsureUser(ctx context.Context, id, fullName, email string, avatarURL *string) (*models.User, error)
	GetProfile(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest) (*models.User, error)
	ListUsers(ctx context.Context, page, pageSize int) (*UserListResponse, error)
	UpdateStatus(ctx context.Context, id string, req *UpdateUserStatusRequest) (*models.User, error)
}

type ImportExportService interface {
	ImportWords(ctx context.Context, lessonID uint, r io.Reader) (*models.ImportSummary, error)
	ImportQuestions(ctx context.Context, lessonID uint, r io.Reader) (*models.ImportSummary, error)
	ExportSubmissions(ctx context.Context, filters repositories.SubmissionFilters, w io.Writer) error
}

// ===== SERVICE MANAGER =====

// ServiceManager wires every service with its shared dependencies.
type ServiceManager struct {
	Lesson       LessonService
	Exercise     ExerciseService
	MiniTest     MiniTestService
	Deck         DeckService
	User         UserService
	ImportExport ImportExportService
}

type ManagerConfig struct {
	Repo      repositories.Repository
	Cache     cache.CacheService
	Publisher events.EventPublisher
	Logger    *slog.Logger
	Validator *validator.Validator
	DeckTTL   time.Duration
}

func NewServiceManager(cfg ManagerConfig) *ServiceManager {
	return &ServiceManager{
		Lesson:       NewLessonService(cfg.Repo, cfg.Cache, cfg.Logger, cfg.Validator),
		Exercise:     NewExerciseService(cfg.Repo, cfg.Publisher, cfg.Logger, cfg.Validator),
		MiniTest:     NewMiniTestService(cfg.Repo, cfg.Publisher, cfg.Logger, cfg.Validator),
		Deck:         NewDeckService(cfg.Repo, cfg.Cache, cfg.Logger, cfg.DeckTTL),
		User:         NewUserService(cfg.Repo, cfg.Logger, cfg.Validator),
		ImportExport: NewImportExportService(cfg.Repo, cfg.Cache, cfg.Logger, cfg.Validator),
	}
}
