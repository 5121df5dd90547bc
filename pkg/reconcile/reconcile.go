// Package reconcile synchronizes the in-memory mission, inventory and
// gallery state with the durable record store in both directions.
//
// Every failure is logged, counted and swallowed: memory stays
// authoritative for the rest of the session and callers only learn, via
// the returned boolean, whether the write landed.
package reconcile

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/daviddao/critterdex/pkg/catalog"
	"github.com/daviddao/critterdex/pkg/metrics"
	"github.com/daviddao/critterdex/pkg/model"
	"github.com/daviddao/critterdex/pkg/progress"
	"github.com/daviddao/critterdex/pkg/store"
	"github.com/daviddao/critterdex/pkg/tools"
)

// Reconciler translates between the tracker and durable records. It never
// changes mission semantics, only shape.
type Reconciler struct {
	store   store.StoreInterface
	tracker *progress.Tracker
	tools   *tools.Clock
	log     logrus.FieldLogger

	meta    model.MetaRecord // as of the last Load
	pending map[string]model.MissionRecord
}

// New returns a Reconciler.
func New(s store.StoreInterface, tracker *progress.Tracker, tc *tools.Clock, log logrus.FieldLogger) *Reconciler {
	return &Reconciler{store: s, tracker: tracker, tools: tc, log: log}
}

func record(m *model.Mission) model.MissionRecord {
	return model.MissionRecord{
		ID:         m.ID,
		Kind:       m.Kind,
		Progress:   m.Progress,
		Received:   m.Received,
		StageIndex: m.StageIndex,
	}
}

// Save persists the session in one transaction. See Sweep.
func (r *Reconciler) Save(ctx context.Context, terminal ...*model.Mission) bool {
	r.retire(terminal)
	err := r.store.Update(ctx, r.Sweep)
	if err == nil {
		r.pending = nil
	}
	return r.swallow("save", err)
}

// Sweep writes the session inside tx: it upserts a record for every
// active mission and every inventory count, deletes count records of
// tools no longer in the inventory, writes gallery tallies, owned maps
// and the login day, and writes the received record of every mission
// retired since the last successful save. It never deletes mission
// records.
func (r *Reconciler) Sweep(tx store.Tx) error {
	active := r.tracker.Active()
	inventory := r.tools.Inventory()
	tallies := r.tracker.Tallies()
	owned := r.tracker.Owned()
	loginDay := r.tracker.LastLoginDay()

	existing, err := tx.ListMissions()
	if err != nil {
		return err
	}
	byID := make(map[string]model.MissionRecord, len(existing))
	for _, rec := range existing {
		byID[rec.ID] = rec
	}
	upsert := func(rec model.MissionRecord) error {
		old, ok := byID[rec.ID]
		switch {
		case !ok:
			return tx.InsertMission(rec)
		case old != rec:
			return tx.UpdateMission(rec)
		}
		return nil
	}
	for _, m := range active {
		if err := upsert(record(m)); err != nil {
			return err
		}
	}
	for id, rec := range r.pending {
		// A daily rebuild brings a retired id back; its old claim is void.
		if _, ok := r.tracker.Lookup(id); ok {
			delete(r.pending, id)
			continue
		}
		if err := upsert(rec); err != nil {
			return err
		}
	}

	counts, err := tx.ListToolCounts()
	if err != nil {
		return err
	}
	stored := make(map[string]int, len(counts))
	for _, c := range counts {
		stored[c.Tool] = c.Count
	}
	for tool, n := range inventory {
		old, ok := stored[tool]
		switch {
		case !ok:
			err = tx.InsertToolCount(model.ToolCountRecord{Tool: tool, Count: n})
		case old != n:
			err = tx.UpdateToolCount(model.ToolCountRecord{Tool: tool, Count: n})
		}
		if err != nil {
			return err
		}
	}
	for tool := range stored {
		if _, ok := inventory[tool]; !ok {
			if err := tx.DeleteToolCount(tool); err != nil {
				return err
			}
		}
	}

	for page, n := range tallies {
		if err := tx.PutTally(model.GalleryTallyRecord{PageID: page, Tally: n}); err != nil {
			return err
		}
	}
	for _, page := range owned {
		if _, err := tx.InsertUnlock(model.UnlockRecord{Kind: model.UnlockMap, ID: page}); err != nil {
			return err
		}
	}

	meta, err := tx.GetMeta()
	if err != nil {
		return err
	}
	if meta.LastLoginDay != loginDay {
		meta.LastLoginDay = loginDay
		return tx.PutMeta(meta)
	}
	return nil
}

// retire queues the received records of retired missions. They stay
// queued until a save lands.
func (r *Reconciler) retire(terminal []*model.Mission) {
	for _, m := range terminal {
		if r.pending == nil {
			r.pending = make(map[string]model.MissionRecord)
		}
		rec := record(m)
		rec.Progress = m.Target
		rec.Received = true
		r.pending[rec.ID] = rec
	}
}

// Pending reports how many retired missions still await a durable
// received record.
func (r *Reconciler) Pending() int { return len(r.pending) }

// Load applies durable records to the tracker and tool clock. A received
// record retires its mission when it is Daily or at the mission's last
// stage; any other record has its progress, stage and received flag
// copied, with target, description and reward re-derived from the ladder.
func (r *Reconciler) Load(ctx context.Context) bool {
	snap, err := r.store.Snapshot(ctx)
	if !r.swallow("load", err) {
		return false
	}

	removed := 0
	for _, rec := range snap.Missions {
		m, ok := r.tracker.Lookup(rec.ID)
		if !ok {
			continue
		}
		if rec.Received && (m.Kind == model.KindDaily || rec.StageIndex >= len(m.Stages)-1) {
			r.tracker.Remove(rec.ID)
			removed++
			continue
		}
		m.Progress = rec.Progress
		m.Received = rec.Received
		if m.Staged() && rec.StageIndex > 0 {
			idx := rec.StageIndex
			if idx >= len(m.Stages) {
				idx = len(m.Stages) - 1
			}
			catalog.ApplyStage(m, idx)
		}
	}

	counts := make(map[string]int, len(snap.Tools))
	for _, c := range snap.Tools {
		counts[c.Tool] = c.Count
	}
	r.tools.SetInventory(counts)

	for _, u := range snap.Unlocks {
		if u.Kind == model.UnlockMap {
			r.tracker.SetOwned(u.ID)
		}
	}
	for _, t := range snap.Tallies {
		r.tracker.SetTally(t.PageID, t.Tally)
	}

	r.tracker.SetLastLoginDay(snap.Meta.LastLoginDay)
	r.meta = snap.Meta

	r.log.WithFields(logrus.Fields{
		"records": len(snap.Missions),
		"retired": removed,
		"day":     snap.Meta.LastResetDay,
	}).Debug("state loaded")
	return true
}

// LastResetDay returns the reset day read by the last successful Load.
func (r *Reconciler) LastResetDay() string { return r.meta.LastResetDay }

func (r *Reconciler) swallow(op string, err error) bool {
	if err == nil {
		return true
	}
	metrics.ObservePersistenceFailure(op)
	r.log.WithError(err).WithField("op", op).Warn("persistence failed; keeping in-memory state")
	return false
}
