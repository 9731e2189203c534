package models

import "time"

// Review is an admin rater's feedback on a mini-test submission. Score,
// when set, overrides the machine-computed total for reporting; the
// machine grade itself is never recomputed.
type Review struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	SubmissionID uint      `json:"submission_id" gorm:"not null;uniqueIndex"`
	ReviewerID   string    `json:"reviewer_id" gorm:"not null;size:255;index"`
	Score        *float64  `json:"score" validate:"omitempty,min=0"`
	Feedback     string    `json:"feedback" gorm:"type:text"`
	ReviewedAt   time.Time `json:"reviewed_at" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Review) TableName() string {
	return "reviews"
}
