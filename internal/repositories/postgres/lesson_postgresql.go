package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/kotoba-lab/learning-service/internal/models"
	"github.com/kotoba-lab/learning-service/internal/repositories"
)

type LessonPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewLessonPostgreSQL(db *gorm.DB) repositories.LessonRepository {
	return &LessonPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (l LessonPostgreSQL) Create(ctx context.Context, lesson *models.Lesson) error {
	return l.db.WithContext(ctx).Create(lesson).Error
}

func (l LessonPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := l.db.WithContext(ctx).First(&lesson, id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (l LessonPostgreSQL) GetByIDWithContent(ctx context.Context, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := l.db.WithContext(ctx).
		Preload("Words", func(db *gorm.DB) *gorm.DB {
			return db.Order("word_order ASC")
		}).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_order ASC")
		}).
		First(&lesson, id).Error; err != nil {
		return nil, err
	}

	lesson.WordCount = len(lesson.Words)
	lesson.QuestionCount = len(lesson.Questions)
	return &lesson, nil
}

func (l LessonPostgreSQL) Update(ctx context.Context, lesson *models.Lesson) error {
	return l.db.WithContext(ctx).Save(lesson).Error
}

func (l LessonPostgreSQL) Delete(ctx context.Context, id uint) error {
	return l.db.WithContext(ctx).Delete(&models.Lesson{}, id).Error
}

func (l LessonPostgreSQL) List(ctx context.Context, filters repositories.LessonFilters) ([]*models.Lesson, int64, error) {
	var lessons []*models.Lesson
	var total int64

	query := l.db.WithContext(ctx).Model(&models.Lesson{})
	query = l.helpers.ApplyLessonFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "lesson_order"
	}
	sortOrder := filters.SortOrder
	if sortOrder == "" {
		sortOrder = "asc"
	}
	query = l.helpers.ApplyPaginationAndSort(query, sortBy, sortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&lessons).Error; err != nil {
		return nil, 0, err
	}

	if err := l.fillContentCounts(ctx, lessons); err != nil {
		return nil, 0, err
	}

	return lessons, total, nil
}

func (l LessonPostgreSQL) GetStats(ctx context.Context, id uint) (*repositories.LessonStats, error) {
	var stats repositories.LessonStats

	var wordCount, questionCount int64
	if err := l.db.WithContext(ctx).Model(&models.Word{}).
		Where("lesson_id = ?", id).Count(&wordCount).Error; err != nil {
		return nil, err
	}
	if err := l.db.WithContext(ctx).Model(&models.Question{}).
		Where("lesson_id = ?", id).Count(&questionCount).Error; err != nil {
		return nil, err
	}

	var totalSubmissions int64
	var avgScore, avgTimeSpent float64
	row := l.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("lesson_id = ?", id).
		Select("COUNT(*), COALESCE(AVG(total_score), 0), COALESCE(AVG(time_spent), 0)").
		Row()
	if err := row.Scan(&totalSubmissions, &avgScore, &avgTimeSpent); err != nil {
		return nil, err
	}

	stats = repositories.LessonStats{
		TotalSubmissions: int(totalSubmissions),
		AverageScore:     avgScore,
		AverageTimeSpent: int(avgTimeSpent),
		WordCount:        int(wordCount),
		QuestionCount:    int(questionCount),
	}
	return &stats, nil
}

// fillContentCounts populates the computed word and question counts for a
// page of lessons with two grouped queries instead of 2n.
func (l LessonPostgreSQL) fillContentCounts(ctx context.Context, lessons []*models.Lesson) error {
	if len(lessons) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(lessons))
	for _, lesson := range lessons {
		ids = append(ids, lesson.ID)
	}

	type countRow struct {
		LessonID uint
		Count    int
	}

	wordCounts := make(map[uint]int, len(ids))
	var rows []countRow
	if err := l.db.WithContext(ctx).Model(&models.Word{}).
		Select("lesson_id, COUNT(*) as count").
		Where("lesson_id IN ?", ids).
		Group("lesson_id").
		Scan(&rows).Error; err != nil {
		return err
	}
	for _, r := range rows {
		wordCounts[r.LessonID] = r.Count
	}

	questionCounts := make(map[uint]int, len(ids))
	rows = nil
	if err := l.db.WithContext(ctx).Model(&models.Question{}).
		Select("lesson_id, COUNT(*) as count").
		Where("lesson_id IN ?", ids).
		Group("lesson_id").
		Scan(&rows).Error; err != nil {
		return err
	}
	for _, r := range rows {
		questionCounts[r.LessonID] = r.Count
	}

	for _, lesson := range lessons {
		lesson.WordCount = wordCounts[lesson.ID]
		lesson.QuestionCount = questionCounts[lesson.ID]
	}
	return nil
}
