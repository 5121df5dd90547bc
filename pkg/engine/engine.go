// Package engine wires the mission catalog, progress tracker, claim
// transition, tool effect clock, reconciler and daily scheduler into one
// explicit instance per session.
//
// Every public method takes the engine's lock, so event recording, claims,
// tool reads and the scheduled midnight reset apply strictly in call order
// and no caller can observe a half-rebuilt Daily set. Each mutating call
// persists its result before returning; persistence failures are swallowed
// by the reconciler and never reach the caller.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/daviddao/critterdex/pkg/catalog"
	"github.com/daviddao/critterdex/pkg/clock"
	"github.com/daviddao/critterdex/pkg/daily"
	"github.com/daviddao/critterdex/pkg/kv"
	"github.com/daviddao/critterdex/pkg/model"
	"github.com/daviddao/critterdex/pkg/progress"
	"github.com/daviddao/critterdex/pkg/reconcile"
	"github.com/daviddao/critterdex/pkg/reward"
	"github.com/daviddao/critterdex/pkg/store"
	"github.com/daviddao/critterdex/pkg/tools"
)

// Options are the collaborators of an Engine. Data, Clock, Location and
// Log default to the embedded catalog, the system clock, the default
// reference zone and a discarding logger.
type Options struct {
	Data     *catalog.Data
	Store    store.StoreInterface
	KV       kv.Store
	Ledger   reward.Ledger
	Unlocker reward.Unlocker
	Clock    clock.Clock
	Location *time.Location
	Log      logrus.FieldLogger
}

// Engine is the mission and progression engine of one session.
type Engine struct {
	mu sync.Mutex

	data       *catalog.Data
	tracker    *progress.Tracker
	advancer   *progress.Advancer
	tools      *tools.Clock
	reconciler *reconcile.Reconciler
	daily      *daily.Scheduler
	grants     *reward.Dispatcher
	log        logrus.FieldLogger
}

// New builds an engine with a freshly built catalog. Call Load before
// anything else to apply durable state.
func New(opts Options) *Engine {
	if opts.Data == nil {
		opts.Data = catalog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Location == nil {
		loc, err := clock.LoadZone(clock.DefaultZone)
		if err != nil {
			loc = time.UTC
		}
		opts.Location = loc
	}
	if opts.Log == nil {
		opts.Log = logrus.New()
	}

	tracker := progress.NewTracker(opts.Data, opts.Log.WithField("component", "progress"))
	grants := reward.NewDispatcher(opts.Ledger, opts.Unlocker, opts.Log.WithField("component", "reward"))
	tc := tools.New(opts.Data, opts.KV, opts.Clock, opts.Log.WithField("component", "tools"))

	return &Engine{
		data:       opts.Data,
		tracker:    tracker,
		advancer:   progress.NewAdvancer(tracker, grants, opts.Log.WithField("component", "claim")),
		tools:      tc,
		reconciler: reconcile.New(opts.Store, tracker, tc, opts.Log.WithField("component", "reconcile")),
		daily:      daily.New(opts.Store, tracker, opts.Clock, opts.Location, opts.Log.WithField("component", "daily")),
		grants:     grants,
		log:        opts.Log,
	}
}

// Data returns the catalog data the engine was built from.
func (e *Engine) Data() *catalog.Data { return e.data }

// Load applies durable state to the freshly built catalog. It reports
// false when the store could not be read; the engine then runs on the
// fresh catalog.
func (e *Engine) Load(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.reconciler.Load(ctx) {
		return false
	}
	e.daily.Restore(e.reconciler.LastResetDay())
	return true
}

// Save persists the current state.
func (e *Engine) Save(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reconciler.Save(ctx)
}

// ResetDailyIfNeeded regenerates Daily missions once per reference-zone
// calendar day.
func (e *Engine) ResetDailyIfNeeded(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resetDaily(ctx)
}

func (e *Engine) resetDaily(ctx context.Context) bool {
	return e.daily.ResetIfNeeded(ctx, e.reconciler.Sweep)
}

// Foreground is the app-foreground hook: it resets Daily missions if the
// day rolled over and credits today's login.
func (e *Engine) Foreground(ctx context.Context) (reset, credited bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	reset = e.resetDaily(ctx)
	credited = e.recordLogin(ctx)
	return reset, credited
}

// RecordLogin credits today's login. A second call on the same day is a
// no-op and reports false.
func (e *Engine) RecordLogin(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recordLogin(ctx)
}

func (e *Engine) recordLogin(ctx context.Context) bool {
	if !e.tracker.RecordLogin(e.daily.Today()) {
		return false
	}
	e.reconciler.Save(ctx)
	return true
}

// RecordItemGet counts an item pickup.
func (e *Engine) RecordItemGet(ctx context.Context, item model.Item) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tracker.RecordItemGet(item)
	e.reconciler.Save(ctx)
}

// RecordMonsterCatch counts a monster play.
func (e *Engine) RecordMonsterCatch(ctx context.Context, monster model.Monster, isNew bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tracker.RecordMonsterCatch(monster, isNew)
	e.reconciler.Save(ctx)
}

// RecordMapPurchase marks a gallery page's map owned. It reports false
// for an unknown page.
func (e *Engine) RecordMapPurchase(ctx context.Context, page string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.tracker.RecordMapPurchase(page) {
		return false
	}
	e.reconciler.Save(ctx)
	return true
}

// Claim claims mission id. See progress.Advancer.Claim for the caller's
// obligations. A retired mission's received record is written in the same
// transaction as the rest of the state.
func (e *Engine) Claim(ctx context.Context, id string) (model.ClaimResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	res, ok := e.advancer.Claim(ctx, id)
	if !ok {
		return res, false
	}
	if res.Terminal {
		e.reconciler.Save(ctx, res.Mission)
	} else {
		e.reconciler.Save(ctx)
	}
	return res, true
}

// UseTool consumes one unit of tool and starts its effect.
func (e *Engine) UseTool(ctx context.Context, tool string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.tools.Use(ctx, tool) {
		return false
	}
	e.reconciler.Save(ctx)
	return true
}

// PurchaseTool adds quantity units of tool to the inventory.
func (e *Engine) PurchaseTool(ctx context.Context, tool string, quantity int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.tools.Purchase(tool, quantity) {
		return false
	}
	e.reconciler.Save(ctx)
	return true
}

// RemainingSeconds returns the seconds left on tool's effect, or false
// when it is inactive. Reading an expired effect clears it.
func (e *Engine) RemainingSeconds(ctx context.Context, tool string) (int64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tools.RemainingSeconds(ctx, tool)
}

// Inventory returns the held count of every tool.
func (e *Engine) Inventory() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tools.Inventory()
}

// Missions returns copies of the active missions in catalog order.
func (e *Engine) Missions() []*model.Mission {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Active()
}

// Mission returns a copy of one active mission.
func (e *Engine) Mission(id string) (*model.Mission, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Get(id)
}

// Today returns the current reference-zone calendar day.
func (e *Engine) Today() string { return e.daily.Today() }

// NextReset returns when the Daily subset next rolls over.
func (e *Engine) NextReset() time.Time { return e.daily.NextReset() }

// ScheduleDaily registers the midnight reset on c.
func (e *Engine) ScheduleDaily(c *cron.Cron) (cron.EntryID, error) {
	return e.daily.Schedule(c, func() {
		if e.ResetDailyIfNeeded(context.Background()) {
			e.log.Info("midnight reset applied")
		}
	})
}

// Close waits for in-flight reward grants. Their failures were already
// logged and do not affect mission state.
func (e *Engine) Close() {
	if err := e.grants.Wait(); err != nil {
		e.log.WithError(err).Debug("reward grants finished with failures")
	}
}
