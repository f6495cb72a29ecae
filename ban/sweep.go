// path: ban/sweep.go
package ban

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/notify"
)

// Sweeper periodically re-evaluates every user who flagged anything in
// the trailing window and raises a notification for those the heuristic
// recommends suspending. Read-only, like the evaluator itself.
type Sweeper struct {
	evaluator *Evaluator
	notifier  notify.Notifier
}

func NewSweeper(e *Evaluator, n notify.Notifier) *Sweeper {
	return &Sweeper{evaluator: e, notifier: n}
}

// Schedule registers the daily sweep on c.
func (s *Sweeper) Schedule(c *cron.Cron) error {
	_, err := c.AddFunc("@daily", s.Run)
	return err
}

// Run executes one sweep. Failures are logged; the next run starts
// clean.
func (s *Sweeper) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	since := s.evaluator.now().Add(-RecentWindow)
	userIDs, err := s.evaluator.store.ActiveFlaggers(ctx, since)
	if err != nil {
		log.Printf("ban sweep: listing active flaggers: %v", err)
		return
	}

	flagged := 0
	for _, userID := range userIDs {
		rec, err := s.evaluator.Evaluate(ctx, userID)
		if err != nil {
			log.Printf("ban sweep: evaluating %s: %v", userID, err)
			continue
		}
		if !rec.ShouldBan {
			continue
		}
		flagged++
		notify.Emit(ctx, s.notifier, notify.Event{
			Type:    notify.EventBanSignal,
			ActorID: userID,
			Detail: map[string]string{
				"recent_flags":   fmt.Sprintf("%d", rec.Signal.RecentFlagCount),
				"total_flags":    fmt.Sprintf("%d", rec.Signal.TotalFlagCount),
				"rejection_rate": fmt.Sprintf("%.2f", rec.Signal.RejectionRate),
			},
		})
	}

	log.Printf("ban sweep: %d flaggers evaluated, %d recommended for suspension", len(userIDs), flagged)
}
