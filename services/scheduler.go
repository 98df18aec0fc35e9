// services/scheduler.go
package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartAnnualAwardScheduler checks once a day whether last season's badge still
// needs awarding. The job is idempotent, so running it every day after Jan 1 is
// harmless: winners already holding the badge are skipped.
func (s *AwardService) StartAnnualAwardScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			year := s.Now().UTC().Year() - 1

			summary, err := s.AwardAnnualBadge(context.Background(), year, false)
			switch {
			case errors.Is(err, ErrTooEarly):
				return
			case errors.Is(err, ErrNoEventsFound), errors.Is(err, ErrNoScoredPicks):
				log.Printf("[Scheduler] nothing to award for %d: %v", year, err)
				return
			case err != nil:
				log.Printf("[Scheduler] annual award for %d failed: %v", year, err)
				return
			}

			log.Printf("[Scheduler] annual award for %d settled: %d winner(s) at %d points",
				year, len(summary.Winners), summary.MaxScore)
		}),
	)
}
