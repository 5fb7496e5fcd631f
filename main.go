package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/studybot/internal/bot"
	"github.com/example/studybot/internal/exporter"
	"github.com/example/studybot/internal/progress"
	"github.com/example/studybot/internal/reminder"
	"github.com/example/studybot/internal/remote"
	"github.com/example/studybot/internal/spaced_repetition"
	"github.com/example/studybot/internal/study"
	appsync "github.com/example/studybot/internal/sync"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: studybot <command> [args]

Commands:
  review <question_id> <again|hard|good|easy>  rate a flashcard
  update <question_id> <knew|didnt>            legacy boolean update
  due                                          list due question ids
  count                                        print the due-card count
  stats                                        print progress statistics
  sync                                         full merge with the remote store
  export <file.xlsx|file.csv>                  write a progress report
  remind                                       run the reminder daemon`)
	os.Exit(2)
}

func main() {
	// Optional .env file; real environment always wins.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
	}

	progressPath := os.Getenv("PROGRESS_FILE")
	if progressPath == "" {
		progressPath = "data/progress.json"
	}

	store := progress.NewStore(progressPath)
	tracker := study.NewTracker(store, spaced_repetition.NewSM2())

	// A configured user id enables sync; without one we run local-only.
	var engine *appsync.Engine
	if userID := os.Getenv("USER_ID"); userID != "" {
		remoteStore, err := remote.Connect()
		if err != nil {
			log.Printf("Remote store unavailable, continuing local-only: %v", err)
		} else {
			defer remoteStore.Close()
			session := appsync.NewSession(appsync.StaticResolver(userID))
			engine = appsync.NewEngine(session, store, remoteStore)
			tracker.SetSyncer(engine)
		}
	}

	switch os.Args[1] {
	case "review":
		if len(os.Args) != 4 {
			usage()
		}
		rating, err := spaced_repetition.ParseRating(os.Args[3])
		if err != nil {
			log.Fatalf("Invalid rating %q: must be again, hard, good, or easy", os.Args[3])
		}
		card, err := tracker.ReviewCard(os.Args[2], rating)
		if err != nil {
			log.Fatalf("Failed to review card: %v", err)
		}
		fmt.Printf("%s: %s, interval %d day(s), next review %s\n",
			card.QuestionID, card.Status, card.Interval, card.NextReview)
		// Give the background write-through a moment before the process exits.
		time.Sleep(200 * time.Millisecond)

	case "update":
		if len(os.Args) != 4 || (os.Args[3] != "knew" && os.Args[3] != "didnt") {
			usage()
		}
		card, err := tracker.UpdateQuestionProgress(os.Args[2], os.Args[3] == "knew")
		if err != nil {
			log.Fatalf("Failed to update progress: %v", err)
		}
		fmt.Printf("%s: %s, next review %s\n", card.QuestionID, card.Status, card.NextReview)
		time.Sleep(200 * time.Millisecond)

	case "due":
		for _, id := range tracker.DueCardIDs(nil) {
			fmt.Println(id)
		}

	case "count":
		fmt.Println(tracker.DueCardCount(nil))

	case "stats":
		cards := tracker.Load()
		stats := tracker.ProgressStats(cards)
		fmt.Printf("Cards:    %d (%d mastered, %d learning)\n", stats.Total, stats.Mastered, stats.Learning)
		fmt.Printf("Due:      %d\n", tracker.DueCardCount(cards))
		fmt.Printf("Streak:   %d day(s)\n", tracker.CurrentStreak(cards))

	case "sync":
		if engine == nil {
			log.Fatal("Sync requires USER_ID and a reachable remote store")
		}
		// Treat an explicit sync as an authentication event.
		engine.Session().Invalidate()
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		if err := tracker.SyncOnLogin(ctx); err != nil {
			log.Fatalf("Sync failed, local data unchanged: %v", err)
		}
		fmt.Println("Sync complete")

	case "export":
		if len(os.Args) != 3 {
			usage()
		}
		cards := tracker.Load()
		stats := tracker.ProgressStats(cards)
		summary := exporter.Summary{
			Total:    stats.Total,
			Mastered: stats.Mastered,
			Learning: stats.Learning,
			Due:      tracker.DueCardCount(cards),
			Streak:   tracker.CurrentStreak(cards),
		}
		if err := exporter.Export(cards, summary, exporter.DefaultConfig(os.Args[2])); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		fmt.Printf("Exported %d card(s) to %s\n", stats.Total, os.Args[2])

	case "remind":
		notifier, err := bot.NewNotifierFromEnv()
		if err != nil {
			log.Fatalf("Failed to create notifier: %v", err)
		}
		r := reminder.New(tracker, notifier)
		r.Start()
		defer r.Stop()
		log.Println("Reminder daemon started. Press Ctrl+C to stop.")

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan
		log.Printf("Received signal: %v, shutting down", sig)

	default:
		usage()
	}
}
