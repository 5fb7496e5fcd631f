package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/studybot/pkg/models"
)

func cardReviewedAt(id, when string) models.CardState {
	return models.CardState{QuestionID: id, LastReviewed: when}
}

func TestHeatmapBucketsByDate(t *testing.T) {
	cards := map[string]models.CardState{
		"q1": cardReviewedAt("q1", "2026-03-01T08:00:00Z"),
		"q2": cardReviewedAt("q2", "2026-03-01T21:30:00Z"),
		"q3": cardReviewedAt("q3", "2026-02-27T10:00:00Z"),
		"q4": {QuestionID: "q4"}, // never reviewed
	}

	heatmap := Heatmap(cards)
	assert.Equal(t, map[string]int{
		"2026-03-01": 2,
		"2026-02-27": 1,
	}, heatmap)
}

// Each card contributes once, to the date of its latest review only.
func TestHeatmapCountsCardsNotEvents(t *testing.T) {
	cards := map[string]models.CardState{
		"q1": cardReviewedAt("q1", "2026-03-01T23:59:00Z"),
	}
	heatmap := Heatmap(cards)
	assert.Equal(t, 1, heatmap["2026-03-01"])
	assert.Len(t, heatmap, 1)
}

func days(today string, offsets ...int) map[string]int {
	d, _ := time.Parse("2006-01-02", today)
	m := make(map[string]int)
	for _, off := range offsets {
		m[d.AddDate(0, 0, -off).Format("2006-01-02")] = 1
	}
	return m
}

func TestStreakCountsConsecutiveDays(t *testing.T) {
	today := "2026-03-10"

	// Today, yesterday, and a detached day: the gap ends the streak at 2.
	assert.Equal(t, 2, Streak(days(today, 0, 1, 5), today))

	assert.Equal(t, 4, Streak(days(today, 0, 1, 2, 3), today))
	assert.Equal(t, 1, Streak(days(today, 0), today))
}

// Not having studied yet today is neutral: the walk keeps counting from
// yesterday.
func TestStreakTodayMissingIsNeutral(t *testing.T) {
	today := "2026-03-10"
	assert.Equal(t, 3, Streak(days(today, 1, 2, 3), today))
}

func TestStreakGapBeforeYesterdayBreaks(t *testing.T) {
	today := "2026-03-10"
	assert.Equal(t, 0, Streak(days(today, 2, 3), today))
}

func TestStreakEmptyHeatmap(t *testing.T) {
	assert.Equal(t, 0, Streak(map[string]int{}, "2026-03-10"))
}

func TestStreakZeroCountDayBreaks(t *testing.T) {
	today := "2026-03-10"
	m := days(today, 0, 2)
	m["2026-03-09"] = 0 // present but empty
	assert.Equal(t, 1, Streak(m, today))
}

func TestStreakCapsAtWindow(t *testing.T) {
	today := "2026-03-10"
	offsets := make([]int, 0, 400)
	for i := 0; i < 400; i++ {
		offsets = append(offsets, i)
	}
	assert.Equal(t, 365, Streak(days(today, offsets...), today))
}

func TestStreakBadToday(t *testing.T) {
	assert.Equal(t, 0, Streak(days("2026-03-10", 0), "bogus"))
}
