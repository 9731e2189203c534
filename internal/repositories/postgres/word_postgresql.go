package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/kotoba-lab/learning-service/internal/models"
	"github.com/kotoba-lab/learning-service/internal/repositories"
)

type WordPostgreSQL struct {
	db *gorm.DB
}

func NewWordPostgreSQL(db *gorm.DB) repositories.WordRepository {
	return &WordPostgreSQL{db: db}
}

func (w WordPostgreSQL) Create(ctx context.Context, word *models.Word) error {
	return w.db.WithContext(ctx).Create(word).Error
}

func (w WordPostgreSQL) CreateBatch(ctx context.Context, words []*models.Word) error {
	if len(words) == 0 {
		return nil
	}
	return w.db.WithContext(ctx).Create(words).Error
}

func (w WordPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Word, error) {
	var word models.Word
	if err := w.db.WithContext(ctx).First(&word, id).Error; err != nil {
		return nil, err
	}
	return &word, nil
}

func (w WordPostgreSQL) GetByLesson(ctx context.Context, lessonID uint) ([]*models.Word, error) {
	var words []*models.Word
	if err := w.db.WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Order("word_order ASC").
		Find(&words).Error; err != nil {
		return nil, err
	}
	return words, nil
}

func (w WordPostgreSQL) Update(ctx context.Context, word *models.Word) error {
	return w.db.WithContext(ctx).Save(word).Error
}

func (w WordPostgreSQL) Delete(ctx context.Context, id uint) error {
	return w.db.WithContext(ctx).Delete(&models.Word{}, id).Error
}
