// Package progress holds the authoritative in-memory mission state of a
// session: the Tracker receives gameplay events and updates counters, and
// the Advancer performs the claim transition on top of it.
//
// Neither type locks. Callers serialize access (the engine does).
package progress

import (
	"github.com/sirupsen/logrus"

	"github.com/daviddao/critterdex/pkg/catalog"
	"github.com/daviddao/critterdex/pkg/metrics"
	"github.com/daviddao/critterdex/pkg/model"
)

// Tracker owns the active mission set. Event methods only ever raise
// Progress; they never touch StageIndex or Received.
type Tracker struct {
	data *catalog.Data
	log  logrus.FieldLogger

	missions []*model.Mission // catalog order
	index    map[string]*model.Mission

	rarity  map[string]string // item code -> rarity tier
	tallies map[string]int    // page id -> first-acquisition tally
	owned   map[string]bool   // purchased map (page) ids

	lastLoginDay string
}

// NewTracker builds the full mission set from data.
func NewTracker(data *catalog.Data, log logrus.FieldLogger) *Tracker {
	t := &Tracker{
		data:    data,
		log:     log,
		rarity:  make(map[string]string, len(data.Items)),
		tallies: map[string]int{},
		owned:   map[string]bool{},
	}
	for _, it := range data.Items {
		t.rarity[it.Code] = it.Rarity
	}
	t.setMissions(catalog.Build(data))
	return t
}

func (t *Tracker) setMissions(ms []*model.Mission) {
	t.missions = ms
	t.index = make(map[string]*model.Mission, len(ms))
	for _, m := range ms {
		t.index[m.ID] = m
	}
}

// Data returns the catalog data the tracker was built from.
func (t *Tracker) Data() *catalog.Data { return t.data }

// RecordLogin credits the login mission and, once per calendar day, the
// distinct-login-days counter. It reports whether day was newly credited;
// a second call with the same day is a no-op.
func (t *Tracker) RecordLogin(day string) bool {
	if day == "" || day == t.lastLoginDay {
		return false
	}
	t.lastLoginDay = day
	for _, m := range t.missions {
		switch m.Category {
		case model.CategoryLogin:
			if m.Progress < 1 {
				m.Progress = 1
			}
		case model.CategoryLoginDays:
			m.Progress++
		}
	}
	metrics.ObserveEvent("login")
	t.log.WithField("day", day).Debug("login credited")
	return true
}

// RecordItemGet counts one item pickup. item.Held is the held count after
// the pickup: Held == 1 is the 0->1 transition that credits the per-item
// mission, the new-item daily and every gallery page showing the item.
// Pickups of an item already held only count toward raw totals.
func (t *Tracker) RecordItemGet(item model.Item) {
	tier := item.Rarity
	if tier == "" {
		tier = t.rarity[item.Code]
	}
	first := item.Held == 1

	for _, m := range t.missions {
		switch m.Category {
		case model.CategoryItems:
			m.Progress++
		case model.CategoryRarity:
			if m.Subject == tier {
				m.Progress++
			}
		case model.CategoryNewItem:
			if first {
				m.Progress++
			}
		case model.CategoryItem:
			if first && m.Subject == item.Code {
				m.Progress++
			}
		}
	}
	if first {
		t.creditPages(item.Code)
	}
	metrics.ObserveEvent("item")
}

// RecordMonsterCatch counts one monster play. Gallery pages are credited
// only for a first-ever encounter.
func (t *Tracker) RecordMonsterCatch(monster model.Monster, isNew bool) {
	for _, m := range t.missions {
		switch m.Category {
		case model.CategoryMonsters:
			m.Progress++
		case model.CategoryMonster:
			if m.Subject == monster.Code {
				m.Progress++
			}
		}
	}
	if isNew {
		t.creditPages(monster.Code)
	}
	metrics.ObserveEvent("monster")
}

// RecordMapPurchase marks the page owned and recomputes its gallery
// mission. It reports false for an unknown page.
func (t *Tracker) RecordMapPurchase(page string) bool {
	if _, ok := t.data.Page(page); !ok {
		return false
	}
	t.owned[page] = true
	t.RefreshPage(page)
	metrics.ObserveEvent("map")
	return true
}

func (t *Tracker) creditPages(code string) {
	for _, page := range t.data.PagesContaining(code) {
		t.tallies[page]++
		t.RefreshPage(page)
	}
}

// RefreshPage re-derives the progress of a page's gallery mission from
// its tally and ownership. Progress is never lowered.
func (t *Tracker) RefreshPage(pageID string) {
	m, ok := t.index[catalog.GalleryMissionID(pageID)]
	if !ok {
		return
	}
	p, ok := t.data.Page(pageID)
	if !ok {
		return
	}
	derived := catalog.GalleryProgress(p, m.StageIndex, t.tallies[pageID], t.owned[pageID])
	if derived > m.Progress {
		m.Progress = derived
	}
}

// Active returns copies of the active missions in catalog order.
func (t *Tracker) Active() []*model.Mission {
	out := make([]*model.Mission, len(t.missions))
	for i, m := range t.missions {
		out[i] = m.Clone()
	}
	return out
}

// Get returns a copy of the active mission with id.
func (t *Tracker) Get(id string) (*model.Mission, bool) {
	m, ok := t.index[id]
	if !ok {
		return nil, false
	}
	return m.Clone(), true
}

// Lookup returns the live mission with id. Only collaborators running
// under the caller's serialization may mutate it.
func (t *Tracker) Lookup(id string) (*model.Mission, bool) {
	m, ok := t.index[id]
	return m, ok
}

// Remove drops a mission from the active set. It reports whether it was
// present.
func (t *Tracker) Remove(id string) bool {
	if _, ok := t.index[id]; !ok {
		return false
	}
	delete(t.index, id)
	for i, m := range t.missions {
		if m.ID == id {
			t.missions = append(t.missions[:i], t.missions[i+1:]...)
			break
		}
	}
	return true
}

// ReplaceDaily swaps the whole Daily subset for daily, leaving Cumulative
// missions untouched. Daily missions are kept ahead of Cumulative ones.
func (t *Tracker) ReplaceDaily(daily []*model.Mission) {
	ms := make([]*model.Mission, 0, len(daily)+len(t.missions))
	ms = append(ms, daily...)
	for _, m := range t.missions {
		if m.Kind != model.KindDaily {
			ms = append(ms, m)
		}
	}
	t.setMissions(ms)
}

// Tallies returns a copy of the per-page first-acquisition tallies.
func (t *Tracker) Tallies() map[string]int {
	out := make(map[string]int, len(t.tallies))
	for k, v := range t.tallies {
		out[k] = v
	}
	return out
}

// SetTally restores one page tally and refreshes the page.
func (t *Tracker) SetTally(page string, tally int) {
	t.tallies[page] = tally
	t.RefreshPage(page)
}

// Owned returns the purchased page ids.
func (t *Tracker) Owned() []string {
	out := make([]string, 0, len(t.owned))
	for _, p := range t.data.Gallery {
		if t.owned[p.ID] {
			out = append(out, p.ID)
		}
	}
	return out
}

// SetOwned restores a purchased page without counting an event.
func (t *Tracker) SetOwned(page string) {
	t.owned[page] = true
	t.RefreshPage(page)
}

// LastLoginDay returns the last day credited by RecordLogin.
func (t *Tracker) LastLoginDay() string { return t.lastLoginDay }

// SetLastLoginDay restores the login gate.
func (t *Tracker) SetLastLoginDay(day string) { t.lastLoginDay = day }
