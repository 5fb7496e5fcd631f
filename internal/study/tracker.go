// Package study is the entry point the UI layer talks to: rating a card,
// querying the due set, activity views, and login-time sync all go through a
// Tracker.
package study

import (
	"context"
	"sort"
	"time"

	"github.com/example/studybot/internal/activity"
	"github.com/example/studybot/internal/progress"
	"github.com/example/studybot/internal/spaced_repetition"
	"github.com/example/studybot/pkg/models"
)

// Syncer is what the tracker needs from the sync layer. A nil Syncer means
// local-only (anonymous) operation.
type Syncer interface {
	FullMerge(ctx context.Context) error
	WriteThrough(card models.CardState)
}

// Tracker coordinates the scheduler, the local store, and the sync layer.
// Review operations are synchronous through the local store; remote pushes
// happen behind the store's update hook and never block the next review.
type Tracker struct {
	store  *progress.Store
	sm2    *spaced_repetition.SM2
	syncer Syncer
	now    func() time.Time
}

// NewTracker creates a tracker over the given store and scheduler.
func NewTracker(store *progress.Store, sm2 *spaced_repetition.SM2) *Tracker {
	return &Tracker{store: store, sm2: sm2, now: time.Now}
}

// SetSyncer attaches the sync layer and routes the store's update hook to its
// write-through, so every persisted review is pushed remotely best-effort.
func (t *Tracker) SetSyncer(s Syncer) {
	t.syncer = s
	if s != nil {
		t.store.SetUpdateHook(s.WriteThrough)
	} else {
		t.store.SetUpdateHook(nil)
	}
}

// SetClock overrides the tracker's time source. Tests use it to pin today.
func (t *Tracker) SetClock(now func() time.Time) {
	t.now = now
}

func (t *Tracker) today() string {
	return t.now().Format("2006-01-02")
}

// ReviewCard applies a rating to a card and persists the rescheduled state.
// A card without a prior record starts from the SM-2 defaults. The returned
// state is what was written; the remote push happens asynchronously.
func (t *Tracker) ReviewCard(questionID string, rating spaced_repetition.Rating) (models.CardState, error) {
	cards := t.store.Load()
	existing, ok := cards[questionID]

	prevEF := spaced_repetition.InitialEasinessFactor
	prevInterval := 0
	prevRepetition := 0
	if ok {
		prevEF = existing.EasinessFactor
		prevInterval = existing.Interval
		prevRepetition = existing.Repetition
	}

	res, err := t.sm2.Schedule(prevEF, prevInterval, prevRepetition, rating, t.today())
	if err != nil {
		return models.CardState{}, err
	}

	correct := rating != spaced_repetition.RatingAgain

	status := models.StatusLearning
	if res.Repetition >= 3 {
		status = models.StatusMastered
	}

	card := models.CardState{
		ID:             questionID,
		QuestionID:     questionID,
		Status:         status,
		CorrectCount:   existing.CorrectCount,
		WrongCount:     existing.WrongCount,
		LastReviewed:   t.now().Format(time.RFC3339),
		EasinessFactor: res.EasinessFactor,
		Interval:       res.Interval,
		Repetition:     res.Repetition,
		NextReview:     res.NextReview,
	}
	if ok && existing.ID != "" {
		card.ID = existing.ID
	}
	if correct {
		card.CorrectCount++
	} else {
		card.WrongCount++
	}

	if err := t.store.Upsert(questionID, card); err != nil {
		return models.CardState{}, err
	}
	return card, nil
}

// UpdateQuestionProgress is the legacy knew/didn't-know entry point used by
// non-flashcard surfaces. It maps the boolean onto the rating scale (knew →
// good, didn't → again) and goes through the same scheduling path.
func (t *Tracker) UpdateQuestionProgress(questionID string, knew bool) (models.CardState, error) {
	rating := spaced_repetition.RatingAgain
	if knew {
		rating = spaced_repetition.RatingGood
	}
	return t.ReviewCard(questionID, rating)
}

// GetProgress returns the stored state for one question, if any.
func (t *Tracker) GetProgress(questionID string) (models.CardState, bool) {
	return t.store.Get(questionID)
}

// Load returns the full progress map. Callers doing several queries in one
// session pass it back in to avoid re-reading storage.
func (t *Tracker) Load() map[string]models.CardState {
	return t.store.Load()
}

// DueCardIDs returns the questions due for review today, oldest overdue
// first. Cards tied on next_review come back in unspecified order. preloaded
// may be nil, in which case the store is read.
func (t *Tracker) DueCardIDs(preloaded map[string]models.CardState) []string {
	cards := preloaded
	if cards == nil {
		cards = t.store.Load()
	}
	today := t.today()

	due := make([]models.CardState, 0, len(cards))
	for _, card := range cards {
		if card.NextReview <= today {
			due = append(due, card)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].NextReview < due[j].NextReview
	})

	ids := make([]string, len(due))
	for i, card := range due {
		ids[i] = card.QuestionID
	}
	return ids
}

// DueCardCount counts due cards without sorting; cheaper than DueCardIDs for
// UI badges.
func (t *Tracker) DueCardCount(preloaded map[string]models.CardState) int {
	cards := preloaded
	if cards == nil {
		cards = t.store.Load()
	}
	today := t.today()

	count := 0
	for _, card := range cards {
		if card.NextReview <= today {
			count++
		}
	}
	return count
}

// StudyHeatmap returns per-date review counts for the activity calendar.
func (t *Tracker) StudyHeatmap(preloaded map[string]models.CardState) map[string]int {
	cards := preloaded
	if cards == nil {
		cards = t.store.Load()
	}
	return activity.Heatmap(cards)
}

// CurrentStreak returns the learner's consecutive-day study streak.
func (t *Tracker) CurrentStreak(preloaded map[string]models.CardState) int {
	return activity.Streak(t.StudyHeatmap(preloaded), t.today())
}

// SyncOnLogin runs the full bidirectional merge. It must complete before due
// counts are trusted after an authentication event. Without a sync layer it
// is a no-op.
func (t *Tracker) SyncOnLogin(ctx context.Context) error {
	if t.syncer == nil {
		return nil
	}
	return t.syncer.FullMerge(ctx)
}
