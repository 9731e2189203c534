// Package evaluation compares learner answers against a lesson's expected
// answers and computes scores. It is shared by the timed exercise flow and
// the mini-test flow so both grade with identical semantics.
//
// Every function here is pure: no I/O, no state, safe to call from any
// number of goroutines.
package evaluation

import (
	"math"
	"strings"

	"github.com/kotoba-lab/learning-service/internal/models"
)

// AnswerSet maps a question ID to the learner's raw text per blank. For
// multiple-choice and reorder questions the slice holds a single element.
// An absent entry grades exactly like an empty string.
type AnswerSet map[uint][]string

// QuestionScore is the outcome of grading one question.
type QuestionScore struct {
	// Correct holds one flag per blank; a single flag for multiple-choice
	// and reorder questions.
	Correct []bool `json:"correct"`
	// Awarded is in [0, points]. Multiple-choice and reorder are
	// all-or-nothing; fill-blank earns even partial credit per blank.
	Awarded float64 `json:"awarded"`
}

// Result is the outcome of grading one submission against a question set.
type Result struct {
	PerQuestion map[uint][]bool `json:"per_question"`
	TotalScore  float64         `json:"total_score"`
	MaxScore    float64         `json:"max_score"`
}

// Normalize prepares a string for comparison: leading and trailing
// whitespace is trimmed and the remainder lower-cased. Idempotent.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsCorrect reports whether a learner answer matches the expected-answer
// spec for the given question kind. An empty normalized value on either
// side is never correct. For fill-blank items the spec may list several
// acceptable alternatives joined by "|"; matching one of them by exact
// normalized equality is correct. No fuzzy matching is performed.
func IsCorrect(userAnswer, expected string, kind models.QuestionKind) bool {
	user := Normalize(userAnswer)
	if user == "" || Normalize(expected) == "" {
		return false
	}

	if kind == models.FillBlank {
		for _, alt := range strings.Split(expected, models.AlternativeDelimiter) {
			norm := Normalize(alt)
			if norm != "" && user == norm {
				return true
			}
		}
		return false
	}

	return user == Normalize(expected)
}

// ScoreQuestion grades one question against the learner's per-blank
// answers. Missing answers are treated as empty strings.
func ScoreQuestion(q *models.Question, answers []string) QuestionScore {
	points := q.EffectivePoints()

	if q.Kind != models.FillBlank {
		ok := IsCorrect(answerAt(answers, 0), q.ExpectedAnswer(), q.Kind)
		score := QuestionScore{Correct: []bool{ok}}
		if ok {
			score.Awarded = points
		}
		return score
	}

	blanks := q.BlankList()
	score := QuestionScore{Correct: make([]bool, len(blanks))}
	if len(blanks) == 0 {
		return score
	}

	correct := 0
	for i, expected := range blanks {
		if IsCorrect(answerAt(answers, i), expected, models.FillBlank) {
			score.Correct[i] = true
			correct++
		}
	}
	score.Awarded = round1(float64(correct) / float64(len(blanks)) * points)
	return score
}

// EvaluateSet grades a full submission. The total is rounded once after
// summation rather than accumulating per-item rounding error, and the max
// is the sum of the set's point values. An empty question set yields a
// zero result; it is not an error.
func EvaluateSet(questions []*models.Question, answers AnswerSet) *Result {
	result := &Result{PerQuestion: make(map[uint][]bool, len(questions))}

	var total float64
	for _, q := range questions {
		score := ScoreQuestion(q, answers[q.ID])
		result.PerQuestion[q.ID] = score.Correct
		total += score.Awarded
		result.MaxScore += q.EffectivePoints()
	}
	result.TotalScore = round1(total)
	return result
}

func answerAt(answers []string, i int) string {
	if i < 0 || i >= len(answers) {
		return ""
	}
	return answers[i]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
