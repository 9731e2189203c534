package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kotoba-lab/learning-service/internal/models"
	"github.com/kotoba-lab/learning-service/internal/repositories"
)

type ReviewPostgreSQL struct {
	db *gorm.DB
}

func NewReviewPostgreSQL(db *gorm.DB) repositories.ReviewRepository {
	return &ReviewPostgreSQL{db: db}
}

func (r ReviewPostgreSQL) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r ReviewPostgreSQL) GetBySubmission(ctx context.Context, submissionID uint) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r ReviewPostgreSQL) GetQueueStats(ctx context.Context) (*repositories.ReviewQueueStats, error) {
	var pending, reviewedToday, totalReviewed int64

	if err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("status = ?", models.SubmissionPendingReview).
		Count(&pending).Error; err != nil {
		return nil, err
	}

	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	if err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("reviewed_at >= ?", startOfDay).
		Count(&reviewedToday).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Count(&totalReviewed).Error; err != nil {
		return nil, err
	}

	return &repositories.ReviewQueueStats{
		PendingReviews: int(pending),
		ReviewedToday:  int(reviewedToday),
		TotalReviewed:  int(totalReviewed),
	}, nil
}
