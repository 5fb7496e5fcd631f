package spaced_repetition

import (
	"math"
	"math/rand"
	"time"
)

// MinEasinessFactor is the SM-2 floor for the easiness factor.
const MinEasinessFactor = 1.3

// InitialEasinessFactor is the easiness factor assigned to a fresh card.
const InitialEasinessFactor = 2.5

// Result holds the scheduling state produced by one review.
type Result struct {
	EasinessFactor float64
	Interval       int    // days until the next review, always >= 1
	Repetition     int    // consecutive successful reviews, 0 after a failure
	NextReview     string // "YYYY-MM-DD"
}

// SM2 implements the SuperMemo-2 algorithm for spaced repetition.
// Scheduling is deterministic apart from an interval jitter of up to ±5%
// drawn from the instance's random source; DisableJitter turns it off.
type SM2 struct {
	// DisableJitter suppresses the anti-clustering interval jitter.
	DisableJitter bool
	rng           *rand.Rand
}

// NewSM2 creates a scheduler with a time-seeded jitter source.
func NewSM2() *SM2 {
	return NewSM2WithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewSM2WithSource creates a scheduler drawing jitter from src.
// Tests pass a fixed seed to make schedules reproducible.
func NewSM2WithSource(src rand.Source) *SM2 {
	return &SM2{rng: rand.New(src)}
}

// Schedule computes the next review schedule from the previous card state and
// the learner's rating. today is the current date as "YYYY-MM-DD"; an empty
// string means time.Now's date. The failure path (again) is a hard reset
// regardless of how far the card had progressed.
func (s *SM2) Schedule(prevEF float64, prevInterval, prevRepetition int, rating Rating, today string) (Result, error) {
	if !rating.IsValid() {
		return Result{}, ErrInvalidRating
	}
	if today == "" {
		today = Today()
	}
	quality := rating.Quality()

	// Failure: restart from a one-day interval and lower the easiness factor.
	if quality < 3 {
		return Result{
			EasinessFactor: math.Max(MinEasinessFactor, prevEF-0.2),
			Interval:       1,
			Repetition:     0,
			NextReview:     AddDays(today, 1),
		}, nil
	}

	// Success: standard SM-2 easiness factor update.
	newEF := prevEF + (0.1 - float64(5-quality)*(0.08+float64(5-quality)*0.02))
	if newEF < MinEasinessFactor {
		newEF = MinEasinessFactor
	}

	newRepetition := prevRepetition + 1

	var interval int
	switch {
	case newRepetition == 1:
		interval = 1
	case newRepetition == 2:
		interval = 6
	default:
		interval = int(math.Round(float64(prevInterval) * newEF))
	}

	// Hard caps growth and easy earns a bonus, but only once the card is past
	// the fixed early intervals.
	if newRepetition > 2 {
		if rating == RatingHard {
			interval = int(math.Round(float64(prevInterval) * 1.2))
			if interval < 1 {
				interval = 1
			}
		}
		if rating == RatingEasy {
			interval = int(math.Round(float64(interval) * 1.3))
		}
	}

	interval = s.applyJitter(interval)

	return Result{
		EasinessFactor: newEF,
		Interval:       interval,
		Repetition:     newRepetition,
		NextReview:     AddDays(today, interval),
	}, nil
}

// applyJitter shifts the interval by up to ±5% to keep cards reviewed together
// from staying clustered on the same due date forever.
func (s *SM2) applyJitter(interval int) int {
	if !s.DisableJitter {
		u := s.rng.Float64()*0.1 - 0.05
		interval += int(math.Round(float64(interval) * u))
	}
	if interval < 1 {
		interval = 1
	}
	return interval
}

// Today returns the current date as "YYYY-MM-DD".
func Today() string {
	return time.Now().Format("2006-01-02")
}

// AddDays returns the date days after base as "YYYY-MM-DD". An unparsable
// base falls back to today. Calendar arithmetic keeps the result stable
// across DST boundaries.
func AddDays(base string, days int) string {
	d, err := time.Parse("2006-01-02", base)
	if err != nil {
		d = time.Now()
	}
	return d.AddDate(0, 0, days).Format("2006-01-02")
}

// DateOf extracts the "YYYY-MM-DD" portion of an RFC3339 timestamp. Plain
// dates pass through unchanged.
func DateOf(timestamp string) string {
	if len(timestamp) >= 10 {
		return timestamp[:10]
	}
	return timestamp
}
