// Package daily detects calendar-day rollover in the game's reference
// timezone and regenerates the Daily mission subset.
//
// The day is computed in one fixed zone rather than UTC or the device's
// local zone, so travelling never causes an extra or a skipped reset.
package daily

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/daviddao/critterdex/pkg/catalog"
	"github.com/daviddao/critterdex/pkg/clock"
	"github.com/daviddao/critterdex/pkg/metrics"
	"github.com/daviddao/critterdex/pkg/model"
	"github.com/daviddao/critterdex/pkg/progress"
	"github.com/daviddao/critterdex/pkg/store"
)

// Scheduler owns the persisted "last reset day" marker.
type Scheduler struct {
	store   store.StoreInterface
	tracker *progress.Tracker
	clk     clock.Clock
	loc     *time.Location
	log     logrus.FieldLogger

	day string
}

// New returns a Scheduler computing days in loc.
func New(s store.StoreInterface, tracker *progress.Tracker, clk clock.Clock, loc *time.Location, log logrus.FieldLogger) *Scheduler {
	return &Scheduler{store: s, tracker: tracker, clk: clk, loc: loc, log: log}
}

// Restore sets the last reset day read from durable state.
func (s *Scheduler) Restore(day string) { s.day = day }

// Day returns the last reset day.
func (s *Scheduler) Day() string { return s.day }

// Today returns the current calendar day in the reference zone.
func (s *Scheduler) Today() string { return clock.Today(s.clk, s.loc) }

// ResetIfNeeded regenerates the Daily subset when the calendar day has
// changed since the last reset. The in-memory subset is rebuilt from the
// catalog first, pre-satisfied missions included. Then one transaction
// deletes every Daily record, stores the new day and runs each of also,
// so a caller's save of the rebuilt state lands together with the purge.
// It reports whether a reset happened. A failed write is logged and the
// in-memory reset stands.
func (s *Scheduler) ResetIfNeeded(ctx context.Context, also ...func(store.Tx) error) bool {
	today := s.Today()
	if today == s.day {
		return false
	}
	log := s.log.WithFields(logrus.Fields{"day": today, "previous": s.day})

	s.tracker.ReplaceDaily(catalog.BuildDaily(s.tracker.Data()))
	s.day = today

	var purged int64
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var err error
		if purged, err = tx.DeleteMissionsByKind(model.KindDaily); err != nil {
			return err
		}
		meta, err := tx.GetMeta()
		if err != nil {
			return err
		}
		meta.LastResetDay = today
		if err := tx.PutMeta(meta); err != nil {
			return err
		}
		for _, fn := range also {
			if err := fn(tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		metrics.ObservePersistenceFailure("daily_reset")
		log.WithError(err).Warn("persist daily reset")
	}

	metrics.ObserveDailyReset()
	log.WithField("purged", purged).Info("daily missions reset")
	return true
}

// NextReset returns the next reference-zone midnight after now.
func (s *Scheduler) NextReset() time.Time {
	return clock.NextMidnight(s.clk.Now(), s.loc)
}

// Spec returns the cron spec firing at midnight in the reference zone.
func (s *Scheduler) Spec() string {
	return "CRON_TZ=" + s.loc.String() + " 0 0 * * *"
}

// Schedule registers run on c at every reference-zone midnight. run is
// expected to call ResetIfNeeded under the caller's serialization.
func (s *Scheduler) Schedule(c *cron.Cron, run func()) (cron.EntryID, error) {
	return c.AddFunc(s.Spec(), run)
}
