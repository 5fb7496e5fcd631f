// Package activity derives study-activity views (calendar heatmap, streak)
// from stored card states.
package activity

import (
	"time"

	"github.com/example/studybot/internal/spaced_repetition"
	"github.com/example/studybot/pkg/models"
)

// streakWindowDays bounds how far back the streak walk looks.
const streakWindowDays = 365

// Heatmap buckets cards by the calendar date of their most recent review and
// counts them per date. Because only last_reviewed is stored, a date counts
// distinct cards whose latest review fell on it, not total review events: a
// card reviewed twice in one day contributes 1, and reviewing an old card
// moves its contribution to the new date. That is a known semantic limit of
// the stored data, not something to compensate for here.
func Heatmap(cards map[string]models.CardState) map[string]int {
	heatmap := make(map[string]int)
	for _, card := range cards {
		if card.LastReviewed == "" {
			continue
		}
		date := spaced_repetition.DateOf(card.LastReviewed)
		heatmap[date]++
	}
	return heatmap
}

// Streak counts consecutive study days walking backward from today. A missing
// entry for today is neutral (the learner may simply not have studied yet) and
// the walk continues from yesterday; any other gap ends the streak. today is
// "YYYY-MM-DD"; an empty string means the current date.
func Streak(heatmap map[string]int, today string) int {
	if today == "" {
		today = spaced_repetition.Today()
	}
	d, err := time.Parse("2006-01-02", today)
	if err != nil {
		return 0
	}

	streak := 0
	for i := 0; i < streakWindowDays; i++ {
		if i > 0 {
			d = d.AddDate(0, 0, -1)
		}
		if heatmap[d.Format("2006-01-02")] > 0 {
			streak++
			continue
		}
		if i == 0 {
			continue
		}
		break
	}
	return streak
}
