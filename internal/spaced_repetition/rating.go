package spaced_repetition

import (
	"encoding"
	"errors"
	"fmt"
)

// ErrInvalidRating is returned when a rating outside the known set is used.
var ErrInvalidRating = errors.New("invalid rating")

// Rating is the learner's self-assessment of recall quality, Anki style.
type Rating string

const (
	// RatingAgain means the answer could not be recalled.
	RatingAgain Rating = "again"
	// RatingHard means the answer was recalled with significant difficulty.
	RatingHard Rating = "hard"
	// RatingGood means the answer was recalled with some effort.
	RatingGood Rating = "good"
	// RatingEasy means the answer was recalled effortlessly.
	RatingEasy Rating = "easy"
)

// Compile-time interface checks.
var (
	_ encoding.TextMarshaler   = Rating("")
	_ encoding.TextUnmarshaler = (*Rating)(nil)
)

// ParseRating converts a string into a Rating.
func ParseRating(s string) (Rating, error) {
	r := Rating(s)
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRating, s)
	}
	return r, nil
}

// IsValid reports whether r is one of the four known ratings.
func (r Rating) IsValid() bool {
	switch r {
	case RatingAgain, RatingHard, RatingGood, RatingEasy:
		return true
	}
	return false
}

// String returns the rating's name.
func (r Rating) String() string { return string(r) }

// MarshalText implements encoding.TextMarshaler.
func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRating, string(r))
	}
	return []byte(r), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rating) UnmarshalText(text []byte) error {
	v, err := ParseRating(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Quality maps the rating to the SM-2 quality scale (0-5). Hard maps to 3 so
// it enters the success path; its interval cap is applied inside Schedule.
func (r Rating) Quality() int {
	switch r {
	case RatingAgain:
		return 0
	case RatingHard:
		return 3
	case RatingGood:
		return 4
	case RatingEasy:
		return 5
	}
	return 0
}
