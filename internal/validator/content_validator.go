package validator

import (
	"fmt"
	"strings"

	"github.com/kotoba-lab/learning-service/internal/models"
)

// ContentValidator rejects malformed lesson content before it reaches the
// evaluator. The evaluator itself treats malformed expected answers as
// "nothing can match", so every rejection here is about keeping bad rows
// out of the content store, not about runtime safety.
type ContentValidator struct{}

// NewContentValidator creates a new content validator
func NewContentValidator() *ContentValidator {
	return &ContentValidator{}
}

// ValidateQuestion validates a complete question object against its kind.
func (v *ContentValidator) ValidateQuestion(q *models.Question) error {
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("question prompt is required")
	}

	if q.Points < 0 {
		return fmt.Errorf("question points must not be negative")
	}

	switch q.Kind {
	case models.MultipleChoice:
		return v.validateMultipleChoice(q)
	case models.FillBlank:
		return v.validateFillBlank(q)
	case models.Reorder:
		return v.validateReorder(q)
	default:
		return fmt.Errorf("unsupported question kind: %s", q.Kind)
	}
}

// ValidateBatch validates multiple questions
func (v *ContentValidator) ValidateBatch(questions []*models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question batch cannot be empty")
	}

	for i, q := range questions {
		if err := v.ValidateQuestion(q); err != nil {
			return fmt.Errorf("validation failed for question %d: %w", i+1, err)
		}
	}

	return nil
}

// ValidateWord validates a vocabulary entry.
func (v *ContentValidator) ValidateWord(w *models.Word) error {
	if strings.TrimSpace(w.Kana) == "" {
		return fmt.Errorf("word kana is required")
	}
	if strings.TrimSpace(w.Meaning) == "" {
		return fmt.Errorf("word meaning is required")
	}
	return nil
}

func (v *ContentValidator) validateMultipleChoice(q *models.Question) error {
	options := q.OptionList()
	if len(options) < 2 {
		return fmt.Errorf("multiple choice question needs at least 2 options")
	}

	answer := q.ExpectedAnswer()
	if strings.TrimSpace(answer) == "" {
		return fmt.Errorf("multiple choice question needs a correct answer")
	}

	for _, opt := range options {
		if strings.EqualFold(strings.TrimSpace(opt), strings.TrimSpace(answer)) {
			return nil
		}
	}
	return fmt.Errorf("correct answer must be one of the options")
}

func (v *ContentValidator) validateFillBlank(q *models.Question) error {
	blanks := q.BlankList()
	if len(blanks) == 0 {
		return fmt.Errorf("fill blank question needs at least 1 blank")
	}

	for i, spec := range blanks {
		if !hasAcceptableAlternative(spec) {
			return fmt.Errorf("blank %d has no acceptable alternative", i+1)
		}
	}
	return nil
}

func (v *ContentValidator) validateReorder(q *models.Question) error {
	if strings.TrimSpace(q.ExpectedAnswer()) == "" {
		return fmt.Errorf("reorder question needs the correct ordering")
	}
	return nil
}

// hasAcceptableAlternative reports whether an expected-answer spec contains
// at least one non-empty alternative.
func hasAcceptableAlternative(spec string) bool {
	for _, alt := range strings.Split(spec, models.AlternativeDelimiter) {
		if strings.TrimSpace(alt) != "" {
			return true
		}
	}
	return false
}
