package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/kotoba-lab/learning-service/internal/events"
	"github.com/kotoba-lab/learning-service/internal/models"
	"github.com/kotoba-lab/learning-service/internal/repositories"
	"github.com/kotoba-lab/learning-service/internal/validator"
)

type exerciseService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewExerciseService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) ExerciseService {
	return &exerciseService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// Submit grades an exercise attempt and stores it as final. The machine
// score is authoritative for exercises; no human review follows.
func (s *exerciseService) Submit(ctx context.Context, lessonID uint, req *SubmitRequest, userID string) (*SubmissionResponse, error) {
	s.logger.Info("Submitting exercise",
		"lesson_id", lessonID,
		"user_id", userID,
		"answer_count", len(req.Answers))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	lesson, submission, feedback, err := gradeLesson(ctx, s.repo, lessonID, req, userID, models.ModeExercise)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Submission().Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	s.publishEvent(ctx, events.NewSubmissionReceivedEvent(submission, lesson.Title))
	s.publishEvent(ctx, events.NewSubmissionGradedEvent(submission))

	s.logger.Info("Exercise graded",
		"submission_id", submission.ID,
		"lesson_id", lessonID,
		"user_id", userID,
		"total_score", submission.TotalScore,
		"max_score", submission.MaxScore)

	return toSubmissionResponse(submission, lesson.Title, feedback), nil
}

func (s *exerciseService) GetSubmission(ctx context.Context, id uint, userID string, isAdmin bool) (*SubmissionResponse, error) {
	submission, err := s.repo.Submission().GetByIDWithReview(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	if submission.UserID != userID && !isAdmin {
		return nil, NewPermissionError(userID, id, "submission", "read", "not owned by user")
	}

	return toSubmissionResponse(submission, submission.Lesson.Title, nil), nil
}

func (s *exerciseService) ListSubmissions(ctx context.Context, req *ListSubmissionsRequest, userID string) (*SubmissionListResponse, error) {
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

	submissions, total, err := s.repo.Submission().GetByUser(ctx, userID, repositories.SubmissionFilters{
		LessonID: req.LessonID,
		Mode:     req.Mode,
		Status:   req.Status,
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	resp := &SubmissionListResponse{
		Submissions: make([]*SubmissionResponse, 0, len(submissions)),
		Total:       total,
		Page:        page,
		PageSize:    pageSize,
	}
	for _, submission := range submissions {
		resp.Submissions = append(resp.Submissions, toSubmissionResponse(submission, submission.Lesson.Title, nil))
	}
	return resp, nil
}

func (s *exerciseService) GetProgress(ctx context.Context, userID string) (*repositories.UserProgressStats, error) {
	return s.repo.Submission().GetUserProgress(ctx, userID)
}

func (s *exerciseService) publishEvent(ctx context.Context, event *events.LearningEvent) {
	if err := s.publisher.PublishLearningEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish event",
			"event_type", event.Type,
			"error", err)
	}
}
