package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/kotoba-lab/learning-service/internal/models"
	"github.com/kotoba-lab/learning-service/internal/repositories"
	"github.com/kotoba-lab/learning-service/internal/validator"
)

func newLessonFixture() (*mockRepository, *memoryCache, LessonService) {
	repo := newMockRepository()
	store := newMemoryCache()
	service := NewLessonService(repo, store, testLogger(), validator.New())
	return repo, store, service
}

func TestLessonCreate_DefaultsExerciseDuration(t *testing.T) {
	repo, _, service := newLessonFixture()

	repo.lesson.On("Create", mock.Anything, mock.AnythingOfType("*models.Lesson")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Lesson).ID = 1
		}).
		Return(nil)

	summary, err := service.Create(context.Background(), &CreateLessonRequest{
		Title: "Verbs of Eating",
		Kind:  models.LessonVocabulary,
		Level: models.LevelN5,
	}, "admin-1")
	assert.NoError(t, err)
	assert.Equal(t, uint(1), summary.ID)
	assert.Equal(t, 10, summary.ExerciseDuration)
}

func TestLessonCreate_RejectsUnknownLevel(t *testing.T) {
	_, _, service := newLessonFixture()

	_, err := service.Create(context.Background(), &CreateLessonRequest{
		Title: "Verbs of Eating",
		Kind:  models.LessonVocabulary,
		Level: "N6",
	}, "admin-1")
	assert.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestLessonGet_ServesSecondReadFromCache(t *testing.T) {
	repo, _, service := newLessonFixture()

	lesson := &models.Lesson{
		ID:    1,
		Title: "Verbs of Eating",
		Kind:  models.LessonVocabulary,
		Level: models.LevelN5,
		Questions: []models.Question{
			{
				ID:     10,
				Kind:   models.FillBlank,
				Prompt: "パンを＿＿。",
				Blanks: models.StringListJSON([]string{"食べます|たべます"}),
				Answer: strPtr("食べます"),
			},
		},
	}
	repo.lesson.On("GetByIDWithContent", mock.Anything, uint(1)).Return(lesson, nil).Once()

	first, err := service.Get(context.Background(), 1)
	assert.NoError(t, err)

	second, err := service.Get(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, first.Title, second.Title)

	// Expected answers never reach the learner view.
	assert.Len(t, second.Questions, 1)
	assert.Equal(t, 1, second.Questions[0].BlankCount)
	assert.Equal(t, models.DefaultQuestionPoints, second.Questions[0].Points)

	repo.assertExpectations(t)
}

func TestLessonUpdate_InvalidatesCache(t *testing.T) {
	repo, store, service := newLessonFixture()

	lesson := &models.Lesson{ID: 1, Title: "Old Title", Kind: models.LessonVocabulary, Level: models.LevelN5}
	repo.lesson.On("GetByIDWithContent", mock.Anything, uint(1)).Return(lesson, nil)
	repo.lesson.On("GetByID", mock.Anything, uint(1)).Return(lesson, nil)
	repo.lesson.On("Update", mock.Anything, mock.AnythingOfType("*models.Lesson")).Return(nil)

	_, err := service.Get(context.Background(), 1)
	assert.NoError(t, err)
	assert.Contains(t, store.entries, "lesson:content:1")

	_, err = service.Update(context.Background(), 1, &UpdateLessonRequest{Title: strPtr("New Title")})
	assert.NoError(t, err)
	assert.NotContains(t, store.entries, "lesson:content:1")
}

func TestLessonListGroupedByLevel_OrdersN5First(t *testing.T) {
	repo, _, service := newLessonFixture()

	lessons := []*models.Lesson{
		{ID: 1, Title: "Keigo", Kind: models.LessonGrammar, Level: models.LevelN2},
		{ID: 2, Title: "Greetings", Kind: models.LessonVocabulary, Level: models.LevelN5},
		{ID: 3, Title: "Counters", Kind: models.LessonVocabulary, Level: models.LevelN5},
	}
	repo.lesson.On("List", mock.Anything, mock.AnythingOfType("repositories.LessonFilters")).
		Return(lessons, int64(3), nil)

	groups, err := service.ListGroupedByLevel(context.Background(), nil)
	assert.NoError(t, err)
	assert.Len(t, groups, 2)
	assert.Equal(t, models.LevelN5, groups[0].Level)
	assert.Len(t, groups[0].Lessons, 2)
	assert.Equal(t, models.LevelN2, groups[1].Level)
}

func TestAddQuestion_RejectsAnswerNotAmongOptions(t *testing.T) {
	repo, _, service := newLessonFixture()

	repo.lesson.On("GetByID", mock.Anything, uint(1)).
		Return(&models.Lesson{ID: 1, Title: "Verbs of Eating"}, nil)

	_, err := service.AddQuestion(context.Background(), 1, &CreateQuestionRequest{
		Kind:    models.MultipleChoice,
		Prompt:  "Which word means \"to eat\"?",
		Options: []string{"食べます", "飲みます"},
		Answer:  strPtr("行きます"),
	})
	assert.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestAddQuestion_StoresFillBlankSpecs(t *testing.T) {
	repo, store, service := newLessonFixture()

	repo.lesson.On("GetByID", mock.Anything, uint(1)).
		Return(&models.Lesson{ID: 1, Title: "Verbs of Eating"}, nil)
	repo.question.On("Create", mock.Anything, mock.AnythingOfType("*models.Question")).Return(nil)

	store.Set(context.Background(), "lesson:content:1", &LessonDetailResponse{}, lessonCacheTTL)

	question, err := service.AddQuestion(context.Background(), 1, &CreateQuestionRequest{
		Kind:   models.FillBlank,
		Prompt: "パンを＿＿。",
		Blanks: []string{"食べます|たべます"},
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"食べます|たべます"}, question.BlankList())

	// Content changes drop the cached lesson detail.
	assert.NotContains(t, store.entries, "lesson:content:1")

	repo.assertExpectations(t)
}

func TestAddWord_RequiresExistingLesson(t *testing.T) {
	repo, _, service := newLessonFixture()

	repo.lesson.On("GetByID", mock.Anything, uint(99)).
		Return((*models.Lesson)(nil), gorm.ErrRecordNotFound)

	_, err := service.AddWord(context.Background(), 99, &CreateWordRequest{
		Kana:    "たべます",
		Meaning: "to eat",
	})
	assert.ErrorIs(t, err, ErrLessonNotFound)
}

func TestLessonGetStats_PassesThrough(t *testing.T) {
	repo, _, service := newLessonFixture()

	repo.lesson.On("GetByID", mock.Anything, uint(1)).
		Return(&models.Lesson{ID: 1, Title: "Verbs of Eating"}, nil)
	repo.lesson.On("GetStats", mock.Anything, uint(1)).
		Return(&repositories.LessonStats{TotalSubmissions: 4, AverageScore: 21.5, WordCount: 12, QuestionCount: 3}, nil)

	stats, err := service.GetStats(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, 4, stats.TotalSubmissions)
	assert.Equal(t, 21.5, stats.AverageScore)
}
