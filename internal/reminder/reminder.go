// Package reminder schedules periodic due-card reminders.
package reminder

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/studybot/pkg/models"
)

// Default notification window (local hours).
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// Notifier delivers a due-card reminder to the learner.
type Notifier interface {
	SendDueReminder(count int) error
}

// DueSource supplies the current due-card count.
type DueSource interface {
	DueCardCount(preloaded map[string]models.CardState) int
}

// Scheduler runs an hourly check and sends at most one reminder per day when
// cards are waiting, inside the configured notification window.
type Scheduler struct {
	scheduler    *gocron.Scheduler
	notifier     Notifier
	due          DueSource
	lastNotified string // "YYYY-MM-DD" of the last reminder sent
}

// New creates a scheduler over the given due source and notifier.
func New(due DueSource, notifier Notifier) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		notifier:  notifier,
		due:       due,
	}
}

// Start begins the hourly reminder checks in the background.
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminder)
	s.scheduler.StartAsync()
}

// Stop terminates the scheduled checks.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// notificationWindow reads the configured window, falling back to defaults.
func notificationWindow() (int, int) {
	startHour := DefaultNotificationStartHour
	endHour := DefaultNotificationEndHour

	if v := os.Getenv("NOTIFICATION_START_HOUR"); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h >= 0 && h <= 23 {
			startHour = h
		}
	}
	if v := os.Getenv("NOTIFICATION_END_HOUR"); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h >= 0 && h <= 23 {
			endHour = h
		}
	}
	return startHour, endHour
}

func (s *Scheduler) checkAndSendReminder() {
	now := time.Now()
	startHour, endHour := notificationWindow()
	if now.Hour() < startHour || now.Hour() > endHour {
		return
	}

	today := now.Format("2006-01-02")
	if s.lastNotified == today {
		return
	}

	count := s.due.DueCardCount(nil)
	if count == 0 {
		return
	}

	if err := s.notifier.SendDueReminder(count); err != nil {
		log.Printf("Error sending due-card reminder: %v", err)
		return
	}
	s.lastNotified = today
}

// RunManualCheck sends a reminder immediately if any cards are due,
// ignoring the notification window and the once-per-day guard.
func (s *Scheduler) RunManualCheck() error {
	count := s.due.DueCardCount(nil)
	if count == 0 {
		return nil
	}
	if err := s.notifier.SendDueReminder(count); err != nil {
		return err
	}
	s.lastNotified = time.Now().Format("2006-01-02")
	return nil
}
