package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/kotoba-lab/learning-service/internal/models"
	"github.com/kotoba-lab/learning-service/internal/repositories"
)

type SubmissionPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (s SubmissionPostgreSQL) Create(ctx context.Context, submission *models.Submission) error {
	return s.db.WithContext(ctx).Create(submission).Error
}

func (s SubmissionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s SubmissionPostgreSQL) GetByIDWithReview(ctx context.Context, id uint) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).
		Preload("Lesson").
		Preload("Review").
		First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s SubmissionPostgreSQL) Update(ctx context.Context, submission *models.Submission) error {
	return s.db.WithContext(ctx).Save(submission).Error
}

func (s SubmissionPostgreSQL) List(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	var submissions []*models.Submission
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Submission{})
	query = s.helpers.ApplySubmissionFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "submitted_at"
	}
	query = s.helpers.ApplyPaginationAndSort(query, sortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Lesson").Preload("Review").Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (s SubmissionPostgreSQL) GetByUser(ctx context.Context, userID string, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	filters.UserID = &userID
	return s.List(ctx, filters)
}

func (s SubmissionPostgreSQL) GetPendingReview(ctx context.Context, limit, offset int) ([]*models.Submission, int64, error) {
	status := models.SubmissionPendingReview
	return s.List(ctx, repositories.SubmissionFilters{
		Status:    &status,
		Limit:     limit,
		Offset:    offset,
		SortBy:    "submitted_at",
		SortOrder: "asc",
	})
}

func (s SubmissionPostgreSQL) UpdateStatus(ctx context.Context, id uint, status models.SubmissionStatus) error {
	return s.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (s SubmissionPostgreSQL) GetUserProgress(ctx context.Context, userID string) (*repositories.UserProgressStats, error) {
	var total, lessonsAttempted int64
	var avgScore, bestScore float64
	var totalTimeSpent int64

	if err := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("user_id = ?", userID).
		Distinct("lesson_id").
		Count(&lessonsAttempted).Error; err != nil {
		return nil, err
	}

	row := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("user_id = ?", userID).
		Select("COALESCE(AVG(total_score), 0), COALESCE(MAX(total_score), 0), COALESCE(SUM(time_spent), 0)").
		Row()
	if err := row.Scan(&avgScore, &bestScore, &totalTimeSpent); err != nil {
		return nil, err
	}

	statusBreakdown := make(map[models.SubmissionStatus]int)
	statuses := []models.SubmissionStatus{
		models.SubmissionGraded,
		models.SubmissionPendingReview,
		models.SubmissionReviewed,
	}
	for _, status := range statuses {
		var count int64
		if err := s.db.WithContext(ctx).
			Model(&models.Submission{}).
			Where("user_id = ? AND status = ?", userID, status).
			Count(&count).Error; err != nil {
			return nil, err
		}
		statusBreakdown[status] = int(count)
	}

	return &repositories.UserProgressStats{
		TotalSubmissions: int(total),
		LessonsAttempted: int(lessonsAttempted),
		AverageScore:     avgScore,
		BestScore:        bestScore,
		TotalTimeSpent:   int(totalTimeSpent),
		StatusBreakdown:  statusBreakdown,
	}, nil
}
