package models

import (
	"time"

	"gorm.io/gorm"
)

type LessonKind string

const (
	LessonVocabulary LessonKind = "vocabulary"
	LessonKanji      LessonKind = "kanji"
	LessonGrammar    LessonKind = "grammar"
)

type JLPTLevel string

const (
	LevelN5 JLPTLevel = "N5"
	LevelN4 JLPTLevel = "N4"
	LevelN3 JLPTLevel = "N3"
	LevelN2 JLPTLevel = "N2"
	LevelN1 JLPTLevel = "N1"
)

type Lesson struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string    `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Kind        LessonKind `json:"kind" gorm:"not null;index" validate:"required,lesson_kind"`
	Level       JLPTLevel  `json:"level" gorm:"not null;index" validate:"required,jlpt_level"`
	Order       int        `json:"order" gorm:"column:lesson_order;default:0"`

	// Exercise settings
	ExerciseDuration int `json:"exercise_duration" gorm:"default:10"` // minutes

	CreatedBy string         `json:"created_by" gorm:"size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Words     []Word     `json:"words,omitempty" gorm:"foreignKey:LessonID"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:LessonID"`

	// Computed fields (not stored)
	WordCount     int `json:"word_count" gorm:"-"`
	QuestionCount int `json:"question_count" gorm:"-"`
}

func (Lesson) TableName() string {
	return "lessons"
}
