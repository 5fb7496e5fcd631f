// Package sync reconciles the local progress store with the remote store of
// record. Conflicts between devices are resolved per record by comparing
// last_reviewed timestamps: the later write wins. Clock skew between devices
// is not compensated for, so a device with a fast clock can win merges it
// should lose; that is a known trade-off of the protocol, not corruption —
// concurrent upserts from two devices still converge.
package sync

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/studybot/internal/progress"
	"github.com/example/studybot/pkg/models"
)

// RemoteStore is the subset of the remote API the engine needs.
type RemoteStore interface {
	FetchAll(ctx context.Context, userID string) ([]models.RemoteRecord, error)
	Upsert(ctx context.Context, rec models.RemoteRecord) error
	BatchUpsert(ctx context.Context, recs []models.RemoteRecord) error
}

// writeThroughTimeout bounds a single background push.
const writeThroughTimeout = 15 * time.Second

// Engine performs the one-shot full merge on login and the incremental
// write-through after each review. All remote failures degrade to operating
// on local state only; nothing here is fatal.
type Engine struct {
	session *Session
	store   *progress.Store
	remote  RemoteStore
}

// NewEngine wires a sync engine over the local store and the remote store.
func NewEngine(session *Session, store *progress.Store, remote RemoteStore) *Engine {
	return &Engine{session: session, store: store, remote: remote}
}

// Session exposes the engine's session for sign-in/sign-out invalidation.
func (e *Engine) Session() *Session {
	return e.session
}

// FullMerge reconciles local and remote progress bidirectionally. For every
// question present on both sides the record with the later last_reviewed wins;
// local-only records are pushed, remote-only records are adopted. The merged
// map is persisted in a single Save, and all queued pushes go out in one batch
// upsert whose failure is logged and ignored (the data is already durable
// locally). A fetch failure aborts before any local mutation.
func (e *Engine) FullMerge(ctx context.Context) error {
	userID, err := e.session.UserID(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve user: %w", err)
	}
	if userID == "" {
		// Anonymous: nothing to merge.
		return nil
	}

	remoteRecs, err := e.remote.FetchAll(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch remote progress: %w", err)
	}

	local := e.store.Load()

	remoteMap := make(map[string]models.CardState, len(remoteRecs))
	for _, rec := range remoteRecs {
		// Rows written before the SM-2 fields existed get the same lazy
		// migration as local records.
		remoteMap[rec.QuestionID] = progress.Migrate(rec.QuestionID, rec.ToCard())
	}

	merged := make(map[string]models.CardState, len(local)+len(remoteMap))
	var toUpsert []models.RemoteRecord

	for id, card := range local {
		remoteCard, ok := remoteMap[id]
		if !ok {
			merged[id] = card
			toUpsert = append(toUpsert, card.ToRemote(userID))
			continue
		}
		localTime := parseWhen(card.LastReviewed)
		remoteTime := parseWhen(remoteCard.LastReviewed)
		if localTime.Before(remoteTime) {
			merged[id] = remoteCard
			continue
		}
		// Local wins ties; only a strictly newer local record needs pushing,
		// which keeps a repeated merge from re-issuing upserts.
		merged[id] = card
		if localTime.After(remoteTime) {
			toUpsert = append(toUpsert, card.ToRemote(userID))
		}
	}
	for id, card := range remoteMap {
		if _, ok := local[id]; !ok {
			merged[id] = card
		}
	}

	if err := e.store.Save(merged); err != nil {
		return fmt.Errorf("failed to persist merged progress: %w", err)
	}

	if len(toUpsert) > 0 {
		if err := e.remote.BatchUpsert(ctx, toUpsert); err != nil {
			log.Printf("Error pushing %d merged records: %v", len(toUpsert), err)
		}
	}
	return nil
}

// WriteThrough pushes one record to the remote store in the background.
// Best effort: the local write has already succeeded, so failures are logged
// and discarded and the next successful merge repairs the gap. The call never
// blocks the next review action.
func (e *Engine) WriteThrough(card models.CardState) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeThroughTimeout)
		defer cancel()

		userID, err := e.session.UserID(ctx)
		if err != nil {
			log.Printf("Error resolving user for write-through: %v", err)
			return
		}
		if userID == "" {
			return
		}
		if err := e.remote.Upsert(ctx, card.ToRemote(userID)); err != nil {
			log.Printf("Error syncing card %s: %v", card.QuestionID, err)
		}
	}()
}

// parseWhen parses a last_reviewed value, accepting RFC3339 timestamps and
// bare dates. Unparsable values sort before everything else.
func parseWhen(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}
