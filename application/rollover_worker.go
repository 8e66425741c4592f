package application

import (
	"context"
	"time"

	"layledger/service"

	log "github.com/sirupsen/logrus"
)

// RolloverWorker runs the weekly rollover every Monday at a fixed UTC time
type RolloverWorker struct {
	rollover service.RolloverService
	hour     int
	minute   int
	now      service.Clock
	after    func(time.Duration) <-chan time.Time
}

// NewRolloverWorker creates a new rollover worker firing at hour:minute UTC on Mondays
func NewRolloverWorker(rollover service.RolloverService, hour, minute int) *RolloverWorker {
	return &RolloverWorker{
		rollover: rollover,
		hour:     hour,
		minute:   minute,
		now:      service.SystemClock,
		after:    time.After,
	}
}

// Run blocks until ctx is cancelled, rolling over the previous week at each slot
func (w *RolloverWorker) Run(ctx context.Context) error {
	log.Infof("Rollover worker started, runs Mondays at %02d:%02d UTC", w.hour, w.minute)

	for {
		now := w.now()
		waitDuration := service.NextRolloverTime(now, w.hour, w.minute).Sub(now)
		log.Infof("Rollover worker waiting %v until next run", waitDuration)

		select {
		case <-ctx.Done():
			log.Info("Rollover worker shutting down (context cancelled)...")
			return nil
		case <-w.after(waitDuration):
			w.RunOnce(ctx)
		}
	}
}

// RunOnce rolls over the week before the current one. Errors are logged, not returned,
// so a bad week never stops the schedule.
func (w *RolloverWorker) RunOnce(ctx context.Context) {
	week := service.PreviousWeek(w.now())
	log.WithField("week", week.Format(time.DateOnly)).Info("Processing weekly rollover")

	paid, err := w.rollover.RolloverWeek(ctx, week)
	if err != nil {
		log.WithFields(log.Fields{
			"week":  week.Format(time.DateOnly),
			"error": err,
		}).Error("Error processing weekly rollover")
		return
	}

	log.WithFields(log.Fields{
		"week":       week.Format(time.DateOnly),
		"users_paid": paid,
		"source":     "rollover_worker",
	}).Info("Weekly rollover finished")
}
