package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kotoba-lab/learning-service/internal/models"
)

func strPtr(s string) *string { return &s }

func mcQuestion(id uint, answer string, points float64, options ...string) *models.Question {
	return &models.Question{
		ID:      id,
		Kind:    models.MultipleChoice,
		Prompt:  "choose one",
		Options: models.StringListJSON(options),
		Answer:  strPtr(answer),
		Points:  points,
	}
}

func fillBlankQuestion(id uint, points float64, blanks ...string) *models.Question {
	return &models.Question{
		ID:     id,
		Kind:   models.FillBlank,
		Prompt: "fill in",
		Blanks: models.StringListJSON(blanks),
		Points: points,
	}
}

func reorderQuestion(id uint, answer string, points float64) *models.Question {
	return &models.Question{
		ID:     id,
		Kind:   models.Reorder,
		Prompt: "put in order",
		Answer: strPtr(answer),
		Points: points,
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Tokyo ", "tokyo"},
		{"TOKYO", "tokyo"},
		{"", ""},
		{"   ", ""},
		{"食べます", "食べます"},
		{"\tmixed Case\n", "mixed case"},
	}

	for _, tt := range tests {
		got := Normalize(tt.input)
		assert.Equal(t, tt.want, got, "Normalize(%q)", tt.input)

		// Idempotence: normalizing twice changes nothing.
		assert.Equal(t, got, Normalize(got))
	}
}

func TestIsCorrect(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		expected string
		kind     models.QuestionKind
		want     bool
	}{
		{"case and whitespace insensitive", "  Tokyo ", "tokyo", models.MultipleChoice, true},
		{"exact match reorder", "私は寿司を食べます", "私は寿司を食べます", models.Reorder, true},
		{"one character off reorder", "私は寿司を食べま", "私は寿司を食べます", models.Reorder, false},
		{"fill blank alternative hit", "cat", "dog|cat|feline", models.FillBlank, true},
		{"fill blank no partial match", "dogs", "dog|cat", models.FillBlank, false},
		{"fill blank alternatives trimmed", " CAT ", "dog | cat", models.FillBlank, true},
		{"empty user answer", "", "tokyo", models.MultipleChoice, false},
		{"blank user answer", "   ", "tokyo", models.MultipleChoice, false},
		{"empty expected", "tokyo", "", models.MultipleChoice, false},
		{"empty alternatives never match", "", "|", models.FillBlank, false},
		{"no fuzzy matching", "tokio", "tokyo", models.MultipleChoice, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCorrect(tt.user, tt.expected, tt.kind))
		})
	}
}

func TestScoreQuestion_MultipleChoiceAllOrNothing(t *testing.T) {
	q := mcQuestion(1, "B", 10, "A", "B", "C", "D")

	score := ScoreQuestion(q, []string{"b"})
	assert.Equal(t, []bool{true}, score.Correct)
	assert.Equal(t, 10.0, score.Awarded)

	score = ScoreQuestion(q, []string{"C"})
	assert.Equal(t, []bool{false}, score.Correct)
	assert.Equal(t, 0.0, score.Awarded)
}

func TestScoreQuestion_ReorderAllOrNothing(t *testing.T) {
	q := reorderQuestion(1, "わたしは学生です", 5)

	// A single-character difference earns nothing.
	score := ScoreQuestion(q, []string{"わたしは学生で"})
	assert.Equal(t, 0.0, score.Awarded)

	score = ScoreQuestion(q, []string{" わたしは学生です "})
	assert.Equal(t, 5.0, score.Awarded)
}

func TestScoreQuestion_FillBlankPartialCredit(t *testing.T) {
	// Four blanks worth 8 points total; one correct blank earns 2.0.
	q := fillBlankQuestion(1, 8, "a", "b", "c", "d")

	score := ScoreQuestion(q, []string{"a", "x", "", "y"})
	assert.Equal(t, []bool{true, false, false, false}, score.Correct)
	assert.Equal(t, 2.0, score.Awarded)

	// All correct earns the full point value, never more.
	score = ScoreQuestion(q, []string{"A", " b", "c ", "d"})
	assert.Equal(t, 8.0, score.Awarded)
}

func TestScoreQuestion_FillBlankRounding(t *testing.T) {
	// 1 of 3 blanks on a 10-point question: 10/3 rounds to 3.3.
	q := fillBlankQuestion(1, 10, "a", "b", "c")

	score := ScoreQuestion(q, []string{"a"})
	assert.Equal(t, 3.3, score.Awarded)
}

func TestScoreQuestion_MissingAnswersAreEmpty(t *testing.T) {
	q := fillBlankQuestion(1, 10, "a", "b")

	withEmpty := ScoreQuestion(q, []string{"a", ""})
	withMissing := ScoreQuestion(q, []string{"a"})
	assert.Equal(t, withEmpty, withMissing)
}

func TestScoreQuestion_DefaultPoints(t *testing.T) {
	q := mcQuestion(1, "B", 0, "A", "B")

	score := ScoreQuestion(q, []string{"B"})
	assert.Equal(t, models.DefaultQuestionPoints, score.Awarded)
}

func TestScoreQuestion_MalformedBlanksNeverMatch(t *testing.T) {
	q := &models.Question{ID: 1, Kind: models.FillBlank, Points: 10}

	score := ScoreQuestion(q, []string{"anything"})
	assert.Empty(t, score.Correct)
	assert.Equal(t, 0.0, score.Awarded)
}

func TestEvaluateSet_EmptyQuestionSet(t *testing.T) {
	result := EvaluateSet(nil, AnswerSet{1: {"whatever"}})

	assert.Equal(t, 0.0, result.TotalScore)
	assert.Equal(t, 0.0, result.MaxScore)
	assert.Empty(t, result.PerQuestion)
}

func TestEvaluateSet_MultipleChoiceEndToEnd(t *testing.T) {
	questions := []*models.Question{mcQuestion(1, "B", 10, "A", "B", "C", "D")}

	result := EvaluateSet(questions, AnswerSet{1: {"B"}})
	assert.Equal(t, 10.0, result.TotalScore)
	assert.Equal(t, 10.0, result.MaxScore)
	assert.Equal(t, []bool{true}, result.PerQuestion[1])
}

func TestEvaluateSet_FillBlankEndToEnd(t *testing.T) {
	questions := []*models.Question{fillBlankQuestion(1, 10, "食べます", "飲みます")}

	result := EvaluateSet(questions, AnswerSet{1: {"食べます", "見ます"}})
	assert.Equal(t, 5.0, result.TotalScore)
	assert.Equal(t, 10.0, result.MaxScore)
	assert.Equal(t, []bool{true, false}, result.PerQuestion[1])
}

func TestEvaluateSet_MissingAnswerMatchesEmptyAnswer(t *testing.T) {
	questions := []*models.Question{
		mcQuestion(1, "B", 10, "A", "B"),
		fillBlankQuestion(2, 10, "a", "b"),
	}

	missing := EvaluateSet(questions, AnswerSet{1: {"B"}})
	empty := EvaluateSet(questions, AnswerSet{1: {"B"}, 2: {"", ""}})

	assert.Equal(t, empty.TotalScore, missing.TotalScore)
	assert.Equal(t, empty.PerQuestion, missing.PerQuestion)
}

func TestEvaluateSet_TotalWithinBounds(t *testing.T) {
	questions := []*models.Question{
		mcQuestion(1, "B", 10, "A", "B"),
		fillBlankQuestion(2, 8, "a", "b", "c", "d"),
		reorderQuestion(3, "one two three", 5),
		fillBlankQuestion(4, 10, "x|y", "z"),
	}

	answerSets := []AnswerSet{
		{},
		{1: {"B"}, 2: {"a", "b", "c", "d"}, 3: {"one two three"}, 4: {"y", "z"}},
		{1: {"wrong"}, 2: {"a"}, 4: {"nope"}},
		{1: {"b "}, 3: {"three two one"}},
	}

	for _, answers := range answerSets {
		result := EvaluateSet(questions, answers)
		assert.GreaterOrEqual(t, result.TotalScore, 0.0)
		assert.LessOrEqual(t, result.TotalScore, result.MaxScore)
		assert.Equal(t, 33.0, result.MaxScore)
	}
}

func TestEvaluateSet_TotalRoundedAfterSummation(t *testing.T) {
	// Two 10-point questions with 3 blanks each, one correct blank apiece:
	// each awards round1(10/3) = 3.3, summed and rounded once to 6.6.
	questions := []*models.Question{
		fillBlankQuestion(1, 10, "a", "b", "c"),
		fillBlankQuestion(2, 10, "d", "e", "f"),
	}

	result := EvaluateSet(questions, AnswerSet{1: {"a"}, 2: {"d"}})
	assert.Equal(t, 6.6, result.TotalScore)
}
