package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/kotoba-lab/learning-service/internal/repositories"
)

// Repository is the GORM-backed aggregate of all entity repositories.
type Repository struct {
	db *gorm.DB

	lesson     repositories.LessonRepository
	word       repositories.WordRepository
	question   repositories.QuestionRepository
	submission repositories.SubmissionRepository
	review     repositories.ReviewRepository
	user       repositories.UserRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:         db,
		lesson:     NewLessonPostgreSQL(db),
		word:       NewWordPostgreSQL(db),
		question:   NewQuestionPostgreSQL(db),
		submission: NewSubmissionPostgreSQL(db),
		review:     NewReviewPostgreSQL(db),
		user:       NewUserPostgreSQL(db),
	}
}

func (r *Repository) Lesson() repositories.LessonRepository         { return r.lesson }
func (r *Repository) Word() repositories.WordRepository             { return r.word }
func (r *Repository) Question() repositories.QuestionRepository     { return r.question }
func (r *Repository) Submission() repositories.SubmissionRepository { return r.submission }
func (r *Repository) Review() repositories.ReviewRepository         { return r.review }
func (r *Repository) User() repositories.UserRepository             { return r.user }

// WithTransaction runs fn against a repository bound to a transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repo repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *Repository) DB() *gorm.DB {
	return r.db
}
