package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/kotoba-lab/learning-service/internal/models"
)

// EventType represents different types of learning events
type EventType string

const (
	// Submission events
	EventSubmissionReceived EventType = "submission.received"
	EventSubmissionGraded   EventType = "submission.graded"

	// Review events
	EventReviewRequested EventType = "review.requested"
	EventReviewCompleted EventType = "review.completed"
)

const eventSource = "learning-service"

// LearningEvent is the envelope shared by all published events.
type LearningEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Submission event payloads

type SubmissionReceivedEvent struct {
	SubmissionID uint                  `json:"submission_id"`
	LessonID     uint                  `json:"lesson_id"`
	LessonTitle  string                `json:"lesson_title"`
	UserID       string                `json:"user_id"`
	Mode         models.SubmissionMode `json:"mode"`
	SubmittedAt  time.Time             `json:"submitted_at"`
	TimeSpent    int                   `json:"time_spent"` // seconds
}

type SubmissionGradedEvent struct {
	SubmissionID uint                  `json:"submission_id"`
	LessonID     uint                  `json:"lesson_id"`
	UserID       string                `json:"user_id"`
	Mode         models.SubmissionMode `json:"mode"`
	TotalScore   float64               `json:"total_score"`
	MaxScore     float64               `json:"max_score"`
	GradedAt     time.Time             `json:"graded_at"`
}

// Review event payloads

type ReviewRequestedEvent struct {
	SubmissionID uint      `json:"submission_id"`
	LessonID     uint      `json:"lesson_id"`
	LessonTitle  string    `json:"lesson_title"`
	UserID       string    `json:"user_id"`
	PreScore     float64   `json:"pre_score"`
	MaxScore     float64   `json:"max_score"`
	RequestedAt  time.Time `json:"requested_at"`
}

type ReviewCompletedEvent struct {
	SubmissionID  uint      `json:"submission_id"`
	LessonID      uint      `json:"lesson_id"`
	UserID        string    `json:"user_id"`
	ReviewerID    string    `json:"reviewer_id"`
	ReportedScore float64   `json:"reported_score"`
	MaxScore      float64   `json:"max_score"`
	HasOverride   bool      `json:"has_override"`
	ReviewedAt    time.Time `json:"reviewed_at"`
}

// Event factory functions

func NewSubmissionReceivedEvent(submission *models.Submission, lessonTitle string) *LearningEvent {
	return &LearningEvent{
		ID:        uuid.NewString(),
		Type:      EventSubmissionReceived,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: SubmissionReceivedEvent{
			SubmissionID: submission.ID,
			LessonID:     submission.LessonID,
			LessonTitle:  lessonTitle,
			UserID:       submission.UserID,
			Mode:         submission.Mode,
			SubmittedAt:  submission.SubmittedAt,
			TimeSpent:    submission.TimeSpent,
		},
	}
}

func NewSubmissionGradedEvent(submission *models.Submission) *LearningEvent {
	return &LearningEvent{
		ID:        uuid.NewString(),
		Type:      EventSubmissionGraded,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: SubmissionGradedEvent{
			SubmissionID: submission.ID,
			LessonID:     submission.LessonID,
			UserID:       submission.UserID,
			Mode:         submission.Mode,
			TotalScore:   submission.TotalScore,
			MaxScore:     submission.MaxScore,
			GradedAt:     time.Now(),
		},
	}
}

func NewReviewRequestedEvent(submission *models.Submission, lessonTitle string) *LearningEvent {
	return &LearningEvent{
		ID:        uuid.NewString(),
		Type:      EventReviewRequested,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: ReviewRequestedEvent{
			SubmissionID: submission.ID,
			LessonID:     submission.LessonID,
			LessonTitle:  lessonTitle,
			UserID:       submission.UserID,
			PreScore:     submission.TotalScore,
			MaxScore:     submission.MaxScore,
			RequestedAt:  submission.SubmittedAt,
		},
	}
}

func NewReviewCompletedEvent(submission *models.Submission, review *models.Review) *LearningEvent {
	reported := submission.TotalScore
	if review.Score != nil {
		reported = *review.Score
	}
	return &LearningEvent{
		ID:        uuid.NewString(),
		Type:      EventReviewCompleted,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: ReviewCompletedEvent{
			SubmissionID:  submission.ID,
			LessonID:      submission.LessonID,
			UserID:        submission.UserID,
			ReviewerID:    review.ReviewerID,
			ReportedScore: reported,
			MaxScore:      submission.MaxScore,
			HasOverride:   review.Score != nil,
			ReviewedAt:    review.ReviewedAt,
		},
	}
}
