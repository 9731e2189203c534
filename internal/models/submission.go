package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubmissionMode string

const (
	ModeExercise SubmissionMode = "exercise"
	ModeMiniTest SubmissionMode = "mini_test"
)

type SubmissionStatus string

const (
	// SubmissionGraded means the machine score is final (exercise flow).
	SubmissionGraded SubmissionStatus = "graded"
	// SubmissionPendingReview means the machine pre-score awaits an admin
	// rater (mini-test flow).
	SubmissionPendingReview SubmissionStatus = "pending_review"
	SubmissionReviewed      SubmissionStatus = "reviewed"
)

// Submission is one learner attempt at a lesson's question set. Answers
// maps question ID to the learner's raw text per blank; a single-element
// slice for multiple-choice and reorder questions. Results carries the
// per-blank correctness produced when the submission was graded.
type Submission struct {
	ID       uint             `json:"id" gorm:"primaryKey"`
	LessonID uint             `json:"lesson_id" gorm:"not null;index"`
	UserID   string           `json:"user_id" gorm:"not null;size:255;index"`
	Mode     SubmissionMode   `json:"mode" gorm:"not null;index" validate:"required,oneof=exercise mini_test"`
	Status   SubmissionStatus `json:"status" gorm:"not null;default:graded;index"`

	Answers datatypes.JSON `json:"answers" gorm:"type:jsonb"` // map[uint][]string
	Results datatypes.JSON `json:"results" gorm:"type:jsonb"` // map[uint][]bool

	TimeSpent   int       `json:"time_spent" gorm:"not null;default:1"` // seconds, clamped to >= 1
	SubmittedAt time.Time `json:"submitted_at" gorm:"not null"`

	TotalScore float64 `json:"total_score"`
	MaxScore   float64 `json:"max_score"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Lesson Lesson  `json:"lesson,omitempty" gorm:"foreignKey:LessonID"`
	Review *Review `json:"review,omitempty" gorm:"foreignKey:SubmissionID"`
}

func (Submission) TableName() string {
	return "submissions"
}

// AnswerSet decodes the stored learner answers. A missing or malformed
// value decodes to an empty set, which grades as all-incorrect.
func (s *Submission) AnswerSet() map[uint][]string {
	answers := make(map[uint][]string)
	if len(s.Answers) == 0 {
		return answers
	}
	if err := json.Unmarshal(s.Answers, &answers); err != nil {
		return make(map[uint][]string)
	}
	return answers
}

// ReportedScore returns the score an admin override has replaced, or the
// machine score when no override exists.
func (s *Submission) ReportedScore() float64 {
	if s.Review != nil && s.Review.Score != nil {
		return *s.Review.Score
	}
	return s.TotalScore
}

// ClampTimeSpent enforces the non-zero floor on recorded attempt duration.
func ClampTimeSpent(seconds int) int {
	if seconds < 1 {
		return 1
	}
	return seconds
}
