package models

import "time"

// Deck is the typed flashcard payload handed off between the lesson view
// and the study view. It is addressed by an opaque key and carried through
// the navigation call itself rather than through an implicit shared store.
type Deck struct {
	Key       string    `json:"key"`
	LessonID  uint      `json:"lesson_id"`
	Title     string    `json:"title"`
	Cards     []Card    `json:"cards"`
	CreatedAt time.Time `json:"created_at"`
}

// Card is one flashcard: written form on the front, reading and meaning on
// the back.
type Card struct {
	Front   string `json:"front"`
	Reading string `json:"reading"`
	Meaning string `json:"meaning"`
	Example string `json:"example,omitempty"`
}

// NewCard builds a flashcard from a vocabulary entry.
func NewCard(w *Word) Card {
	card := Card{
		Front:   w.DisplayForm(),
		Reading: w.Kana,
		Meaning: w.Meaning,
	}
	if w.Example != nil {
		card.Example = *w.Example
	}
	return card
}
