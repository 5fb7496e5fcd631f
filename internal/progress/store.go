package progress

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/example/studybot/internal/spaced_repetition"
	"github.com/example/studybot/pkg/models"
)

// Store is the durable question_id -> CardState map on the local device.
// The whole map is persisted as a single JSON object; Save replaces the file
// atomically via a temp file and rename. The store is the only owner of the
// local records: the sync layer reads and writes through it, never around it.
type Store struct {
	path string
	mu   sync.Mutex

	// onUpsert, when set, is called with each record written through Upsert.
	// It decouples the store from the sync transport: the store only knows a
	// callback, the wiring layer decides where the record goes.
	onUpsert func(models.CardState)
}

// NewStore creates a store persisting to the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// SetUpdateHook registers a callback invoked after every successful Upsert.
func (s *Store) SetUpdateHook(fn func(models.CardState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpsert = fn
}

// Load reads the persisted map. A missing or unparsable file yields an empty
// map, never an error: losing local progress is preferable to blocking the
// learner, and the remote store is the durable backup once synced. Records
// written before the SM-2 fields existed are migrated in place and the
// migrated map is written back.
func (s *Store) Load() map[string]models.CardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() map[string]models.CardState {
	out := make(map[string]models.CardState)

	data, err := os.ReadFile(s.path)
	if err != nil {
		return out
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return make(map[string]models.CardState)
	}

	migrated := false
	for id, card := range out {
		if card.EasinessFactor != 0 && card.QuestionID != "" {
			continue
		}
		out[id] = Migrate(id, card)
		migrated = true
	}
	if migrated {
		// Best effort: a failed write-back just means migration runs again
		// on the next load.
		_ = s.saveLocked(out)
	}
	return out
}

// Migrate upgrades a record persisted before the SM-2 fields existed.
// Mastered cards resume at the second repetition tier, everything else
// restarts; next_review is forced to today so the card is re-evaluated
// immediately.
func Migrate(questionID string, old models.CardState) models.CardState {
	today := spaced_repetition.Today()

	card := old
	if card.QuestionID == "" {
		card.QuestionID = questionID
	}
	if card.ID == "" {
		card.ID = questionID
	}
	if !card.Status.IsValid() {
		card.Status = models.StatusLearning
	}
	if card.EasinessFactor == 0 {
		card.EasinessFactor = spaced_repetition.InitialEasinessFactor
		if card.Status == models.StatusMastered {
			card.Interval = 6
			card.Repetition = 2
		} else {
			card.Interval = 1
			card.Repetition = 0
		}
		card.NextReview = today
	}
	if card.LastReviewed == "" {
		card.LastReviewed = today
	}
	return card
}

// Save atomically overwrites the persisted map.
func (s *Store) Save(cards map[string]models.CardState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(cards)
}

func (s *Store) saveLocked(cards map[string]models.CardState) error {
	data, err := json.Marshal(cards)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create progress directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".progress-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp progress file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write progress: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close progress file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace progress file: %w", err)
	}
	return nil
}

// Upsert merges one record into the persisted map and fires the update hook.
func (s *Store) Upsert(questionID string, card models.CardState) error {
	s.mu.Lock()
	cards := s.loadLocked()
	cards[questionID] = card
	err := s.saveLocked(cards)
	hook := s.onUpsert
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if hook != nil {
		hook(card)
	}
	return nil
}

// Get returns the record for questionID, if present.
func (s *Store) Get(questionID string) (models.CardState, bool) {
	cards := s.Load()
	card, ok := cards[questionID]
	return card, ok
}
