package study

import "github.com/example/studybot/pkg/models"

// Stats summarizes the whole progress store.
type Stats struct {
	Total    int `json:"total"`
	Mastered int `json:"mastered"`
	Learning int `json:"learning"`
}

// CategoryStats summarizes progress over one category's question ids.
// Unseen counts ids with no stored record at all.
type CategoryStats struct {
	Mastered int `json:"mastered"`
	Learning int `json:"learning"`
	Unseen   int `json:"unseen"`
}

// ProgressStats computes overall totals. preloaded may be nil.
func (t *Tracker) ProgressStats(preloaded map[string]models.CardState) Stats {
	cards := preloaded
	if cards == nil {
		cards = t.store.Load()
	}

	stats := Stats{Total: len(cards)}
	for _, card := range cards {
		if card.Status == models.StatusMastered {
			stats.Mastered++
		} else {
			stats.Learning++
		}
	}
	return stats
}

// ProgressByCategory computes per-category totals for the given question ids.
// preloaded may be nil; pass it when calling repeatedly across categories.
func (t *Tracker) ProgressByCategory(questionIDs []string, preloaded map[string]models.CardState) CategoryStats {
	cards := preloaded
	if cards == nil {
		cards = t.store.Load()
	}

	var stats CategoryStats
	for _, id := range questionIDs {
		card, ok := cards[id]
		switch {
		case !ok:
			stats.Unseen++
		case card.Status == models.StatusMastered:
			stats.Mastered++
		default:
			stats.Learning++
		}
	}
	return stats
}
