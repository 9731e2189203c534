package models

import (
	"time"

	"gorm.io/gorm"
)

// Word is a single vocabulary entry within a lesson. Kana carries the
// reading, Kanji the written form where one exists.
type Word struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	LessonID uint    `json:"lesson_id" gorm:"not null;index"`
	Kana     string  `json:"kana" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Kanji    *string `json:"kanji" gorm:"size:100" validate:"omitempty,max=100"`
	Romaji   string  `json:"romaji" gorm:"size:200"`
	Meaning  string  `json:"meaning" gorm:"not null;size:500" validate:"required,min=1,max=500"`
	Example  *string `json:"example" gorm:"type:text"`
	Order    int     `json:"order" gorm:"column:word_order;default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Word) TableName() string {
	return "words"
}

// DisplayForm returns the written form shown on a flashcard front: the
// kanji when present, otherwise the kana.
func (w *Word) DisplayForm() string {
	if w.Kanji != nil && *w.Kanji != "" {
		return *w.Kanji
	}
	return w.Kana
}
