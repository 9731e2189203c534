package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/kotoba-lab/learning-service/internal/events"
	"github.com/kotoba-lab/learning-service/internal/models"
	"github.com/kotoba-lab/learning-service/internal/repositories"
	"github.com/kotoba-lab/learning-service/internal/validator"
)

type miniTestService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewMiniTestService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) MiniTestService {
	return &miniTestService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// Submit grades a mini-test attempt with the same evaluator the exercise
// flow uses, but the result is only a pre-score: the submission waits in
// the review queue until an admin rater signs it off.
func (s *miniTestService) Submit(ctx context.Context, lessonID uint, req *SubmitRequest, userID string) (*SubmissionResponse, error) {
	s.logger.Info("Submitting mini-test",
		"lesson_id", lessonID,
		"user_id", userID,
		"answer_count", len(req.Answers))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	lesson, submission, feedback, err := gradeLesson(ctx, s.repo, lessonID, req, userID, models.ModeMiniTest)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Submission().Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	s.publishEvent(ctx, events.NewSubmissionReceivedEvent(submission, lesson.Title))
	s.publishEvent(ctx, events.NewReviewRequestedEvent(submission, lesson.Title))

	s.logger.Info("Mini-test pre-scored, awaiting review",
		"submission_id", submission.ID,
		"lesson_id", lessonID,
		"user_id", userID,
		"pre_score", submission.TotalScore,
		"max_score", submission.MaxScore)

	return toSubmissionResponse(submission, lesson.Title, feedback), nil
}

// Review records an admin rater's verdict on a pending mini-test. An
// optional score overrides the machine pre-score for reporting; the
// machine grade itself is kept untouched.
func (s *miniTestService) Review(ctx context.Context, submissionID uint, req *ReviewRequest, reviewerID string) (*SubmissionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	submission, err := s.repo.Submission().GetByIDWithReview(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	if submission.Mode != models.ModeMiniTest {
		return nil, ErrSubmissionWrongMode
	}
	if submission.Review != nil {
		return nil, ErrReviewAlreadyExists
	}
	if submission.Status != models.SubmissionPendingReview {
		return nil, ErrSubmissionNotPending
	}
	if req.Score != nil && (*req.Score < 0 || *req.Score > submission.MaxScore) {
		return nil, ErrReviewInvalidScore
	}

	review := &models.Review{
		SubmissionID: submissionID,
		ReviewerID:   reviewerID,
		Score:        req.Score,
		Feedback:     req.Feedback,
		ReviewedAt:   time.Now(),
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Review().Create(ctx, review); err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}
		if err := txRepo.Submission().UpdateStatus(ctx, submissionID, models.SubmissionReviewed); err != nil {
			return fmt.Errorf("failed to update submission status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	submission.Status = models.SubmissionReviewed
	submission.Review = review

	s.publishEvent(ctx, events.NewReviewCompletedEvent(submission, review))

	s.logger.Info("Mini-test reviewed",
		"submission_id", submissionID,
		"reviewer_id", reviewerID,
		"has_override", req.Score != nil)

	return toSubmissionResponse(submission, submission.Lesson.Title, nil), nil
}

// PendingReviews returns the oldest-first queue of mini-tests waiting for
// an admin rater.
func (s *miniTestService) PendingReviews(ctx context.Context, page, pageSize int) (*ReviewQueueResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	submissions, total, err := s.repo.Submission().GetPendingReview(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reviews: %w", err)
	}

	stats, err := s.repo.Review().GetQueueStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get review queue stats: %w", err)
	}

	resp := &ReviewQueueResponse{
		Submissions: make([]*SubmissionResponse, 0, len(submissions)),
		Total:       total,
		Stats:       stats,
	}
	for _, submission := range submissions {
		resp.Submissions = append(resp.Submissions, toSubmissionResponse(submission, submission.Lesson.Title, nil))
	}
	return resp, nil
}

func (s *miniTestService) publishEvent(ctx context.Context, event *events.LearningEvent) {
	if err := s.publisher.PublishLearningEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish event",
			"event_type", event.Type,
			"error", err)
	}
}
