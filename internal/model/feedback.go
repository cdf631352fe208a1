package model

import (
	"errors"
	"time"
)

// ErrInvalidRating rejects ratings outside the 1-5 band.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// FeedbackEvent is a user rating of an answer. Immutable once created except
// for the Processed flag, which the learner sets exactly once.
type FeedbackEvent struct {
	ID        string    `json:"id" yaml:"id"`
	UserID    string    `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	Question  string    `json:"question" yaml:"question"`
	Answer    string    `json:"answer" yaml:"answer"`
	Rating    int       `json:"rating" yaml:"rating"`
	Topics    []string  `json:"topics,omitempty" yaml:"topics,omitempty"`
	Comment   string    `json:"comment,omitempty" yaml:"comment,omitempty"`
	Processed bool      `json:"processed" yaml:"processed"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Positive reports whether the event praises the answer (rating >= 4).
func (e FeedbackEvent) Positive() bool {
	return e.Rating >= 4
}

// ValidateRating checks a rating is in the 1-5 band.
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	return nil
}
