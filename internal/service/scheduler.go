package service

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// StartRankScheduler refreshes every peer group on a fixed interval. This
// bounds snapshot staleness for idle groups; the on-demand recompute path
// stays the primary freshness mechanism. Returns the scheduler so the
// caller can shut it down.
func StartRankScheduler(rankSvc *RankService, interval time.Duration, log zerolog.Logger) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := rankSvc.RecomputeAll(ctx); err != nil {
				log.Error().Err(err).Msg("scheduled rank refresh failed")
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	log.Info().Dur("interval", interval).Msg("rank refresh scheduler started")
	return sched, nil
}
