package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kotoba-lab/learning-service/internal/cache"
	"github.com/kotoba-lab/learning-service/internal/models"
	"github.com/kotoba-lab/learning-service/internal/repositories"
)

type deckService struct {
	repo   repositories.Repository
	cache  cache.CacheService
	logger *slog.Logger
	ttl    time.Duration
}

func NewDeckService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger, ttl time.Duration) DeckService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &deckService{
		repo:   repo,
		cache:  cacheService,
		logger: logger,
		ttl:    ttl,
	}
}

// Build assembles a flashcard deck from a lesson's vocabulary and parks it
// under an opaque key. The caller passes the key to the study view, which
// fetches the deck explicitly; nothing travels through shared browser
// state.
func (s *deckService) Build(ctx context.Context, lessonID uint) (*models.Deck, error) {
	lesson, err := s.repo.Lesson().GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	words, err := s.repo.Word().GetByLesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get words: %w", err)
	}
	if len(words) == 0 {
		return nil, ErrDeckNoWords
	}

	deck := &models.Deck{
		Key:       uuid.NewString(),
		LessonID:  lessonID,
		Title:     lesson.Title,
		Cards:     make([]models.Card, 0, len(words)),
		CreatedAt: time.Now(),
	}
	for _, word := range words {
		deck.Cards = append(deck.Cards, models.NewCard(word))
	}

	if err := s.cache.Set(ctx, deckCacheKey(deck.Key), deck, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store deck: %w", err)
	}

	s.logger.Info("Deck built",
		"deck_key", deck.Key,
		"lesson_id", lessonID,
		"card_count", len(deck.Cards))

	return deck, nil
}

// Get fetches a previously built deck. An unknown or expired key is a
// not-found condition, never stale data.
func (s *deckService) Get(ctx context.Context, key string) (*models.Deck, error) {
	var deck models.Deck
	if err := s.cache.Get(ctx, deckCacheKey(key), &deck); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrDeckNotFound
		}
		return nil, fmt.Errorf("failed to fetch deck: %w", err)
	}
	return &deck, nil
}

func deckCacheKey(key string) string {
	return "deck:" + key
}
