package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionKind string

const (
	FillBlank      QuestionKind = "fill_blank"
	MultipleChoice QuestionKind = "multiple_choice"
	Reorder        QuestionKind = "reorder"
)

// DefaultQuestionPoints is used when a question carries no explicit point
// value.
const DefaultQuestionPoints = 10.0

// AlternativeDelimiter separates acceptable alternatives inside one
// fill-blank expected-answer spec, e.g. "食べます|たべます".
const AlternativeDelimiter = "|"

// Question is one assessable item in a lesson. The prompt may embed
// furigana annotations and blank markers; the expected answer is stored
// per kind:
//
//   - MultipleChoice: Answer holds the correct option, Options the full set.
//   - Reorder: Answer holds the correct ordering rendered as a string.
//   - FillBlank: Blanks holds one expected-answer spec per blank, each spec
//     optionally listing alternatives joined by "|".
type Question struct {
	ID       uint         `json:"id" gorm:"primaryKey"`
	LessonID uint         `json:"lesson_id" gorm:"not null;index"`
	Kind     QuestionKind `json:"kind" gorm:"not null;index" validate:"required,question_kind"`
	Prompt   string       `json:"prompt" gorm:"type:text;not null" validate:"required,min=1"`

	Options datatypes.JSON `json:"options,omitempty" gorm:"type:jsonb"` // []string, MultipleChoice only
	Blanks  datatypes.JSON `json:"blanks,omitempty" gorm:"type:jsonb"`  // []string, FillBlank only
	Answer  *string        `json:"answer,omitempty" gorm:"type:text"`   // MultipleChoice / Reorder

	Points      float64 `json:"points" gorm:"default:10" validate:"omitempty,min=0"`
	Explanation *string `json:"explanation" gorm:"type:text"`
	Order       int     `json:"order" gorm:"column:question_order;default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Question) TableName() string {
	return "questions"
}

// EffectivePoints returns the question's point value, falling back to
// DefaultQuestionPoints when none is set.
func (q *Question) EffectivePoints() float64 {
	if q.Points > 0 {
		return q.Points
	}
	return DefaultQuestionPoints
}

// OptionList decodes the stored option set. Malformed data yields nil;
// content validation rejects such rows at import time.
func (q *Question) OptionList() []string {
	return decodeStringList(q.Options)
}

// BlankList decodes the per-blank expected-answer specs. Malformed data
// yields nil.
func (q *Question) BlankList() []string {
	return decodeStringList(q.Blanks)
}

// BlankCount returns the number of blanks a FillBlank question carries,
// and 1 for every other kind.
func (q *Question) BlankCount() int {
	if q.Kind != FillBlank {
		return 1
	}
	return len(q.BlankList())
}

// ExpectedAnswer returns the single stored answer for MultipleChoice and
// Reorder questions, or "" when absent.
func (q *Question) ExpectedAnswer() string {
	if q.Answer == nil {
		return ""
	}
	return *q.Answer
}

func decodeStringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return list
}

// StringListJSON encodes a string slice for storage in a JSON column.
func StringListJSON(list []string) datatypes.JSON {
	if list == nil {
		return nil
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return nil
	}
	return raw
}
