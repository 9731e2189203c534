package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleLearner UserRole = "learner"
	RoleAdmin   UserRole = "admin"
)

type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role     UserRole `json:"role" gorm:"not null;default:learner" validate:"omitempty,user_role"`

	// Profile info
	AvatarURL *string `json:"avatar_url" gorm:"size:500"`

	// Learning preferences
	TargetLevel JLPTLevel `json:"target_level" gorm:"default:N5" validate:"omitempty,jlpt_level"`

	// Status
	IsActive    bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
