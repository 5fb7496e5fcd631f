package models

// Status describes how far a card has progressed. It is derived from the
// scheduling state after each review, never set directly by callers.
type Status string

const (
	// StatusUnseen means the card has never been rated.
	StatusUnseen Status = "unseen"
	// StatusLearning means the card has at least one review but fewer than
	// three consecutive successes.
	StatusLearning Status = "learning"
	// StatusMastered means the card has three or more consecutive successes.
	StatusMastered Status = "mastered"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	return s == StatusUnseen || s == StatusLearning || s == StatusMastered
}

// CardState tracks a learner's progress with a single question using the SM-2 algorithm
type CardState struct {
	ID             string  `json:"id" db:"id"`
	QuestionID     string  `json:"question_id" db:"question_id"`
	Status         Status  `json:"status" db:"status"`
	CorrectCount   int     `json:"correct_count" db:"correct_count"`
	WrongCount     int     `json:"wrong_count" db:"wrong_count"`
	LastReviewed   string  `json:"last_reviewed" db:"last_reviewed"`     // RFC3339 timestamp of the last rating
	EasinessFactor float64 `json:"easiness_factor" db:"easiness_factor"` // SM-2 EF parameter, never below 1.3
	Interval       int     `json:"interval" db:"interval"`               // Current interval in days
	Repetition     int     `json:"repetition" db:"repetition"`           // Consecutive successful reviews
	NextReview     string  `json:"next_review" db:"next_review"`         // "YYYY-MM-DD" date of the next review
}

// RemoteRecord is the server-side mirror of a CardState, one row per
// (user_id, question_id). It is a peer of the local record, not a master copy.
type RemoteRecord struct {
	ID             string  `json:"id" db:"id"`
	UserID         string  `json:"user_id" db:"user_id"`
	QuestionID     string  `json:"question_id" db:"question_id"`
	Status         Status  `json:"status" db:"status"`
	CorrectCount   int     `json:"correct_count" db:"correct_count"`
	WrongCount     int     `json:"wrong_count" db:"wrong_count"`
	LastReviewed   string  `json:"last_reviewed" db:"last_reviewed"`
	EasinessFactor float64 `json:"easiness_factor" db:"easiness_factor"`
	Interval       int     `json:"interval" db:"interval"`
	Repetition     int     `json:"repetition" db:"repetition"`
	NextReview     string  `json:"next_review" db:"next_review"`
}

// ToRemote converts a local card state to its remote row for the given user.
func (c CardState) ToRemote(userID string) RemoteRecord {
	return RemoteRecord{
		ID:             c.ID,
		UserID:         userID,
		QuestionID:     c.QuestionID,
		Status:         c.Status,
		CorrectCount:   c.CorrectCount,
		WrongCount:     c.WrongCount,
		LastReviewed:   c.LastReviewed,
		EasinessFactor: c.EasinessFactor,
		Interval:       c.Interval,
		Repetition:     c.Repetition,
		NextReview:     c.NextReview,
	}
}

// ToCard converts a remote row back to a local card state.
func (r RemoteRecord) ToCard() CardState {
	return CardState{
		ID:             r.ID,
		QuestionID:     r.QuestionID,
		Status:         r.Status,
		CorrectCount:   r.CorrectCount,
		WrongCount:     r.WrongCount,
		LastReviewed:   r.LastReviewed,
		EasinessFactor: r.EasinessFactor,
		Interval:       r.Interval,
		Repetition:     r.Repetition,
		NextReview:     r.NextReview,
	}
}
