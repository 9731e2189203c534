package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/kotoba-lab/learning-service/internal/events"
	"github.com/kotoba-lab/learning-service/internal/models"
	"github.com/kotoba-lab/learning-service/internal/repositories"
	"github.com/kotoba-lab/learning-service/internal/validator"
)

func strPtr(s string) *string { return &s }

// verbLesson returns a lesson with one question of each kind. The fill
// blank question has two blanks, the first accepting an alternative.
func verbLesson() (*models.Lesson, []*models.Question) {
	lesson := &models.Lesson{
		ID:    1,
		Title: "Verbs of Eating",
		Kind:  models.LessonVocabulary,
		Level: models.LevelN5,
	}
	questions := []*models.Question{
		{
			ID:      10,
			Kind:    models.MultipleChoice,
			Prompt:  "Which word means \"to eat\"?",
			Options: models.StringListJSON([]string{"食べます", "飲みます"}),
			Answer:  strPtr("食べます"),
			Points:  10,
		},
		{
			ID:     11,
			Kind:   models.FillBlank,
			Prompt: "パンを＿＿。水を＿＿。",
			Blanks: models.StringListJSON([]string{"食べます|たべます", "飲みます"}),
			Points: 10,
		},
		{
			ID:     12,
			Kind:   models.Reorder,
			Prompt: "Arrange into a sentence",
			Answer: strPtr("私 は 寿司 を 食べます"),
			// Points left at zero, graded with the default value.
		},
	}
	for _, q := range questions {
		q.LessonID = lesson.ID
	}
	return lesson, questions
}

func newExerciseFixture() (*mockRepository, *events.MockEventPublisher, ExerciseService) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	service := NewExerciseService(repo, publisher, testLogger(), validator.New())
	return repo, publisher, service
}

func TestExerciseSubmit_GradesAndStores(t *testing.T) {
	repo, publisher, service := newExerciseFixture()
	lesson, questions := verbLesson()

	repo.lesson.On("GetByID", mock.Anything, uint(1)).Return(lesson, nil)
	repo.question.On("GetByLesson", mock.Anything, uint(1)).Return(questions, nil)
	repo.submission.On("Create", mock.Anything, mock.AnythingOfType("*models.Submission")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Submission).ID = 100
		}).
		Return(nil)

	req := &SubmitRequest{
		Answers: map[uint][]string{
			10: {"  食べます "},             // correct after trimming
			11: {"たべます", "のみます"},        // alternative hits, second blank misses
			12: {"私 は 寿司 を 食べます"},       // exact ordering
		},
		TimeSpent: 95,
	}

	resp, err := service.Submit(context.Background(), 1, req, "learner-1")
	assert.NoError(t, err)
	assert.Equal(t, uint(100), resp.ID)
	assert.Equal(t, models.ModeExercise, resp.Mode)
	assert.Equal(t, models.SubmissionGraded, resp.Status)
	// 10 (choice) + 5 (one of two blanks) + 10 (reorder at default points)
	assert.Equal(t, 25.0, resp.TotalScore)
	assert.Equal(t, 30.0, resp.MaxScore)
	assert.Equal(t, 95, resp.TimeSpent)

	assert.Len(t, resp.Results, 3)
	assert.Equal(t, []bool{true}, resp.Results[0].Correct)
	assert.Equal(t, []bool{true, false}, resp.Results[1].Correct)
	assert.Equal(t, 5.0, resp.Results[1].Awarded)
	assert.Equal(t, []string{"食べます|たべます", "飲みます"}, resp.Results[1].Expected)
	assert.Equal(t, 10.0, resp.Results[2].Points)

	published := publisher.GetPublishedEvents()
	assert.Len(t, published, 2)
	assert.Equal(t, events.EventSubmissionReceived, published[0].Type)
	assert.Equal(t, events.EventSubmissionGraded, published[1].Type)

	repo.assertExpectations(t)
}

func TestExerciseSubmit_MissingAnswersScoreZero(t *testing.T) {
	repo, _, service := newExerciseFixture()
	lesson, questions := verbLesson()

	repo.lesson.On("GetByID", mock.Anything, uint(1)).Return(lesson, nil)
	repo.question.On("GetByLesson", mock.Anything, uint(1)).Return(questions, nil)
	repo.submission.On("Create", mock.Anything, mock.AnythingOfType("*models.Submission")).Return(nil)

	resp, err := service.Submit(context.Background(), 1, &SubmitRequest{
		Answers: map[uint][]string{},
	}, "learner-1")
	assert.NoError(t, err)
	assert.Equal(t, 0.0, resp.TotalScore)
	assert.Equal(t, 30.0, resp.MaxScore)
	// Attempt duration is floored at one second even when unreported.
	assert.Equal(t, 1, resp.TimeSpent)
}

func TestExerciseSubmit_LessonNotFound(t *testing.T) {
	repo, publisher, service := newExerciseFixture()

	repo.lesson.On("GetByID", mock.Anything, uint(99)).
		Return((*models.Lesson)(nil), gorm.ErrRecordNotFound)

	_, err := service.Submit(context.Background(), 99, &SubmitRequest{
		Answers: map[uint][]string{1: {"x"}},
	}, "learner-1")
	assert.ErrorIs(t, err, ErrLessonNotFound)
	assert.Empty(t, publisher.GetPublishedEvents())
}

func TestExerciseSubmit_LessonWithoutQuestions(t *testing.T) {
	repo, _, service := newExerciseFixture()
	lesson, _ := verbLesson()

	repo.lesson.On("GetByID", mock.Anything, uint(1)).Return(lesson, nil)
	repo.question.On("GetByLesson", mock.Anything, uint(1)).Return([]*models.Question{}, nil)

	_, err := service.Submit(context.Background(), 1, &SubmitRequest{
		Answers: map[uint][]string{},
	}, "learner-1")
	assert.ErrorIs(t, err, ErrLessonNoQuestions)
}

func TestExerciseSubmit_RejectsMissingAnswerField(t *testing.T) {
	_, _, service := newExerciseFixture()

	_, err := service.Submit(context.Background(), 1, &SubmitRequest{}, "learner-1")
	assert.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestGetSubmission_OwnershipEnforced(t *testing.T) {
	repo, _, service := newExerciseFixture()

	submission := &models.Submission{
		ID:     100,
		UserID: "learner-1",
		Mode:   models.ModeExercise,
		Status: models.SubmissionGraded,
		Lesson: models.Lesson{ID: 1, Title: "Verbs of Eating"},
	}
	repo.submission.On("GetByIDWithReview", mock.Anything, uint(100)).Return(submission, nil)

	resp, err := service.GetSubmission(context.Background(), 100, "learner-1", false)
	assert.NoError(t, err)
	assert.Equal(t, "Verbs of Eating", resp.LessonTitle)

	_, err = service.GetSubmission(context.Background(), 100, "learner-2", false)
	assert.True(t, IsUnauthorized(err))

	// Admins may read any submission.
	_, err = service.GetSubmission(context.Background(), 100, "admin-1", true)
	assert.NoError(t, err)
}

func TestGetSubmission_NotFound(t *testing.T) {
	repo, _, service := newExerciseFixture()

	repo.submission.On("GetByIDWithReview", mock.Anything, uint(404)).
		Return((*models.Submission)(nil), gorm.ErrRecordNotFound)

	_, err := service.GetSubmission(context.Background(), 404, "learner-1", false)
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestListSubmissions_AppliesPagingDefaults(t *testing.T) {
	repo, _, service := newExerciseFixture()

	repo.submission.On("GetByUser", mock.Anything, "learner-1", mock.MatchedBy(func(f repositories.SubmissionFilters) bool {
		return f.Limit == defaultPageSize && f.Offset == 0
	})).Return([]*models.Submission{}, int64(0), nil)

	resp, err := service.ListSubmissions(context.Background(), &ListSubmissionsRequest{}, "learner-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, defaultPageSize, resp.PageSize)
	assert.Empty(t, resp.Submissions)
}
