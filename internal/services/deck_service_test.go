package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/kotoba-lab/learning-service/internal/models"
)

func newDeckFixture(ttl time.Duration) (*mockRepository, *memoryCache, DeckService) {
	repo := newMockRepository()
	store := newMemoryCache()
	service := NewDeckService(repo, store, testLogger(), ttl)
	return repo, store, service
}

func lessonWords() []*models.Word {
	return []*models.Word{
		{ID: 1, LessonID: 1, Kana: "たべます", Kanji: strPtr("食べます"), Meaning: "to eat", Example: strPtr("パンを食べます。"), Order: 0},
		{ID: 2, LessonID: 1, Kana: "のみます", Meaning: "to drink", Order: 1},
	}
}

func TestDeckBuild_AssemblesCards(t *testing.T) {
	repo, store, service := newDeckFixture(time.Hour)

	repo.lesson.On("GetByID", mock.Anything, uint(1)).
		Return(&models.Lesson{ID: 1, Title: "Verbs of Eating"}, nil)
	repo.word.On("GetByLesson", mock.Anything, uint(1)).Return(lessonWords(), nil)

	deck, err := service.Build(context.Background(), 1)
	assert.NoError(t, err)
	assert.NotEmpty(t, deck.Key)
	assert.Equal(t, "Verbs of Eating", deck.Title)
	assert.Len(t, deck.Cards, 2)

	// Kanji form on the front when present, kana otherwise.
	assert.Equal(t, "食べます", deck.Cards[0].Front)
	assert.Equal(t, "たべます", deck.Cards[0].Reading)
	assert.Equal(t, "パンを食べます。", deck.Cards[0].Example)
	assert.Equal(t, "のみます", deck.Cards[1].Front)
	assert.Empty(t, deck.Cards[1].Example)

	assert.Equal(t, time.Hour, store.ttls["deck:"+deck.Key])
	repo.assertExpectations(t)
}

func TestDeckBuild_RequiresWords(t *testing.T) {
	repo, _, service := newDeckFixture(time.Hour)

	repo.lesson.On("GetByID", mock.Anything, uint(1)).
		Return(&models.Lesson{ID: 1, Title: "Grammar Drills"}, nil)
	repo.word.On("GetByLesson", mock.Anything, uint(1)).Return([]*models.Word{}, nil)

	_, err := service.Build(context.Background(), 1)
	assert.ErrorIs(t, err, ErrDeckNoWords)
}

func TestDeckBuild_LessonNotFound(t *testing.T) {
	repo, _, service := newDeckFixture(time.Hour)

	repo.lesson.On("GetByID", mock.Anything, uint(99)).
		Return((*models.Lesson)(nil), gorm.ErrRecordNotFound)

	_, err := service.Build(context.Background(), 99)
	assert.ErrorIs(t, err, ErrLessonNotFound)
}

func TestDeckGet_RoundTripsByKey(t *testing.T) {
	repo, _, service := newDeckFixture(time.Hour)

	repo.lesson.On("GetByID", mock.Anything, uint(1)).
		Return(&models.Lesson{ID: 1, Title: "Verbs of Eating"}, nil)
	repo.word.On("GetByLesson", mock.Anything, uint(1)).Return(lessonWords(), nil)

	built, err := service.Build(context.Background(), 1)
	assert.NoError(t, err)

	fetched, err := service.Get(context.Background(), built.Key)
	assert.NoError(t, err)
	assert.Equal(t, built.Key, fetched.Key)
	assert.Equal(t, built.LessonID, fetched.LessonID)
	assert.Equal(t, built.Cards, fetched.Cards)
}

func TestDeckGet_UnknownKeyIsNotFound(t *testing.T) {
	_, _, service := newDeckFixture(time.Hour)

	_, err := service.Get(context.Background(), "no-such-key")
	assert.ErrorIs(t, err, ErrDeckNotFound)
	assert.True(t, IsNotFound(err))
}

func TestNewDeckService_DefaultsTTL(t *testing.T) {
	repo, store, service := newDeckFixture(0)

	repo.lesson.On("GetByID", mock.Anything, uint(1)).
		Return(&models.Lesson{ID: 1, Title: "Verbs of Eating"}, nil)
	repo.word.On("GetByLesson", mock.Anything, uint(1)).Return(lessonWords(), nil)

	deck, err := service.Build(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, 30*time.Minute, store.ttls["deck:"+deck.Key])
}
