package postgres

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/kotoba-lab/learning-service/internal/repositories"
)

// SharedHelpers holds filter and pagination logic used by more than one
// repository implementation.
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

var allowedSortColumns = map[string]bool{
	"created_at":   true,
	"submitted_at": true,
	"title":        true,
	"lesson_order": true,
	"total_score":  true,
}

// ApplyPaginationAndSort applies sorting and pagination. Unknown sort
// columns fall back to created_at so filter input can never reach ORDER BY
// unchecked.
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	if !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}
	if !strings.EqualFold(sortOrder, "asc") {
		sortOrder = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

// ApplyLessonFilters applies the optional lesson list filters.
func (h *SharedHelpers) ApplyLessonFilters(query *gorm.DB, filters repositories.LessonFilters) *gorm.DB {
	if filters.Kind != nil {
		query = query.Where("kind = ?", *filters.Kind)
	}
	if filters.Level != nil {
		query = query.Where("level = ?", *filters.Level)
	}
	return query
}

// ApplySubmissionFilters applies the optional submission list filters.
func (h *SharedHelpers) ApplySubmissionFilters(query *gorm.DB, filters repositories.SubmissionFilters) *gorm.DB {
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.LessonID != nil {
		query = query.Where("lesson_id = ?", *filters.LessonID)
	}
	if filters.Mode != nil {
		query = query.Where("mode = ?", *filters.Mode)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("submitted_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("submitted_at <= ?", *filters.DateTo)
	}
	return query
}
