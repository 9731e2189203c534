package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/kotoba-lab/learning-service/internal/cache"
	"github.com/kotoba-lab/learning-service/internal/models"
	"github.com/kotoba-lab/learning-service/internal/repositories"
	"github.com/kotoba-lab/learning-service/internal/validator"
)

const (
	defaultPageSize = 20
	lessonCacheTTL  = 10 * time.Minute
)

type lessonService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewLessonService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger, v *validator.Validator) LessonService {
	return &lessonService{
		repo:      repo,
		cache:     cacheService,
		logger:    logger,
		validator: v,
	}
}

// ===== LESSON CRUD =====

func (s *lessonService) Create(ctx context.Context, req *CreateLessonRequest, creatorID string) (*LessonSummary, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	lesson := &models.Lesson{
		Title:            req.Title,
		Description:      req.Description,
		Kind:             req.Kind,
		Level:            req.Level,
		Order:            req.Order,
		ExerciseDuration: req.ExerciseDuration,
		CreatedBy:        creatorID,
	}
	if lesson.ExerciseDuration <= 0 {
		lesson.ExerciseDuration = 10
	}

	if err := s.repo.Lesson().Create(ctx, lesson); err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	s.logger.Info("Lesson created",
		"lesson_id", lesson.ID,
		"kind", lesson.Kind,
		"level", lesson.Level,
		"created_by", creatorID)

	return toLessonSummary(lesson), nil
}

func (s *lessonService) Update(ctx context.Context, id uint, req *UpdateLessonRequest) (*LessonSummary, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	lesson, err := s.repo.Lesson().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	if req.Title != nil {
		lesson.Title = *req.Title
	}
	if req.Description != nil {
		lesson.Description = req.Description
	}
	if req.Kind != nil {
		lesson.Kind = *req.Kind
	}
	if req.Level != nil {
		lesson.Level = *req.Level
	}
	if req.Order != nil {
		lesson.Order = *req.Order
	}
	if req.ExerciseDuration != nil {
		lesson.ExerciseDuration = *req.ExerciseDuration
	}

	if err := s.repo.Lesson().Update(ctx, lesson); err != nil {
		return nil, fmt.Errorf("failed to update lesson: %w", err)
	}

	s.invalidateLessonCache(ctx, id)
	return toLessonSummary(lesson), nil
}

func (s *lessonService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.Lesson().GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLessonNotFound
		}
		return fmt.Errorf("failed to get lesson: %w", err)
	}

	if err := s.repo.Lesson().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}

	s.invalidateLessonCache(ctx, id)
	s.logger.Info("Lesson deleted", "lesson_id", id)
	return nil
}

func (s *lessonService) Get(ctx context.Context, id uint) (*LessonDetailResponse, error) {
	cacheKey := lessonCacheKey(id)

	var cached LessonDetailResponse
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	lesson, err := s.repo.Lesson().GetByIDWithContent(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	resp := &LessonDetailResponse{
		LessonSummary: *toLessonSummary(lesson),
		Words:         make([]*models.Word, 0, len(lesson.Words)),
		Questions:     make([]*QuestionView, 0, len(lesson.Questions)),
	}
	for i := range lesson.Words {
		resp.Words = append(resp.Words, &lesson.Words[i])
	}
	for i := range lesson.Questions {
		resp.Questions = append(resp.Questions, toQuestionView(&lesson.Questions[i]))
	}

	if err := s.cache.Set(ctx, cacheKey, resp, lessonCacheTTL); err != nil {
		s.logger.Warn("failed to cache lesson", "lesson_id", id, "error", err)
	}

	return resp, nil
}

func (s *lessonService) List(ctx context.Context, req *ListLessonsRequest) (*LessonListResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	lessons, total, err := s.repo.Lesson().List(ctx, repositories.LessonFilters{
		Kind:      req.Kind,
		Level:     req.Level,
		Limit:     pageSize,
		Offset:    (page - 1) * pageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}

	resp := &LessonListResponse{
		Lessons:  make([]*LessonSummary, 0, len(lessons)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, lesson := range lessons {
		resp.Lessons = append(resp.Lessons, toLessonSummary(lesson))
	}
	return resp, nil
}

// ListGroupedByLevel returns every lesson bucketed by JLPT level, ordered
// N5 first, for the browse screen.
func (s *lessonService) ListGroupedByLevel(ctx context.Context, kind *models.LessonKind) ([]*LessonGroup, error) {
	lessons, _, err := s.repo.Lesson().List(ctx, repositories.LessonFilters{
		Kind:      kind,
		SortBy:    "lesson_order",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}

	byLevel := make(map[models.JLPTLevel][]*LessonSummary)
	for _, lesson := range lessons {
		byLevel[lesson.Level] = append(byLevel[lesson.Level], toLessonSummary(lesson))
	}

	levels := []models.JLPTLevel{models.LevelN5, models.LevelN4, models.LevelN3, models.LevelN2, models.LevelN1}
	groups := make([]*LessonGroup, 0, len(levels))
	for _, level := range levels {
		if summaries := byLevel[level]; len(summaries) > 0 {
			groups = append(groups, &LessonGroup{Level: level, Lessons: summaries})
		}
	}
	return groups, nil
}

// ===== LESSON CONTENT =====

func (s *lessonService) AddWord(ctx context.Context, lessonID uint, req *CreateWordRequest) (*models.Word, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if _, err := s.repo.Lesson().GetByID(ctx, lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	word := &models.Word{
		LessonID: lessonID,
		Kana:     req.Kana,
		Kanji:    req.Kanji,
		Romaji:   req.Romaji,
		Meaning:  req.Meaning,
		Example:  req.Example,
		Order:    req.Order,
	}
	if err := s.validator.Content().ValidateWord(word); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := s.repo.Word().Create(ctx, word); err != nil {
		return nil, fmt.Errorf("failed to create word: %w", err)
	}

	s.invalidateLessonCache(ctx, lessonID)
	return word, nil
}

func (s *lessonService) AddQuestion(ctx context.Context, lessonID uint, req *CreateQuestionRequest) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if _, err := s.repo.Lesson().GetByID(ctx, lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	question := &models.Question{
		LessonID:    lessonID,
		Kind:        req.Kind,
		Prompt:      req.Prompt,
		Options:     models.StringListJSON(req.Options),
		Blanks:      models.StringListJSON(req.Blanks),
		Answer:      req.Answer,
		Points:      req.Points,
		Explanation: req.Explanation,
		Order:       req.Order,
	}
	if err := s.validator.Content().ValidateQuestion(question); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.invalidateLessonCache(ctx, lessonID)
	return question, nil
}

func (s *lessonService) GetStats(ctx context.Context, id uint) (*repositories.LessonStats, error) {
	if _, err := s.repo.Lesson().GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return s.repo.Lesson().GetStats(ctx, id)
}

// ===== HELPERS =====

func (s *lessonService) invalidateLessonCache(ctx context.Context, id uint) {
	if err := s.cache.Delete(ctx, lessonCacheKey(id)); err != nil {
		s.logger.Warn("failed to invalidate lesson cache", "lesson_id", id, "error", err)
	}
}

func lessonCacheKey(id uint) string {
	return fmt.Sprintf("lesson:content:%d", id)
}

func toLessonSummary(lesson *models.Lesson) *LessonSummary {
	return &LessonSummary{
		ID:               lesson.ID,
		Title:            lesson.Title,
		Description:      lesson.Description,
		Kind:             lesson.Kind,
		Level:            lesson.Level,
		Order:            lesson.Order,
		ExerciseDuration: lesson.ExerciseDuration,
		WordCount:        lesson.WordCount,
		QuestionCount:    lesson.QuestionCount,
	}
}

func toQuestionView(q *models.Question) *QuestionView {
	return &QuestionView{
		ID:         q.ID,
		Kind:       q.Kind,
		Prompt:     q.Prompt,
		Options:    q.OptionList(),
		BlankCount: q.BlankCount(),
		Points:     q.EffectivePoints(),
		Order:      q.Order,
	}
}
