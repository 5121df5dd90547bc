package progress

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/daviddao/critterdex/pkg/catalog"
	"github.com/daviddao/critterdex/pkg/metrics"
	"github.com/daviddao/critterdex/pkg/model"
)

// Granter applies a reward out of band and returns the grant id.
// *reward.Dispatcher implements it.
type Granter interface {
	Dispatch(ctx context.Context, missionID string, r model.Reward) string
}

// Advancer performs the claim transition on a Tracker.
type Advancer struct {
	t      *Tracker
	grants Granter
	log    logrus.FieldLogger
}

// NewAdvancer returns an Advancer claiming missions of t.
func NewAdvancer(t *Tracker, grants Granter, log logrus.FieldLogger) *Advancer {
	return &Advancer{t: t, grants: grants, log: log}
}

// Claim converts the mission's current reward into a grant and then
// either advances it to the next stage or retires it. It does not check
// that the mission is completed; callers only claim completed missions.
// It returns false when id is not active.
//
// The grant is dispatched before the local transition and the transition
// never waits on it: a failed grant leaves the mission claimed.
func (a *Advancer) Claim(ctx context.Context, id string) (model.ClaimResult, bool) {
	m, ok := a.t.Lookup(id)
	if !ok {
		return model.ClaimResult{}, false
	}

	res := model.ClaimResult{MissionID: id, Reward: m.Reward}
	res.GrantID = a.grants.Dispatch(ctx, id, m.Reward)

	log := a.log.WithFields(logrus.Fields{"mission": id, "stage": m.StageIndex})
	if m.Kind == model.KindDaily || m.FinalStage() {
		terminal := m.Clone()
		terminal.Progress = terminal.Target
		terminal.Received = true
		a.t.Remove(id)

		res.Terminal = true
		res.Mission = terminal
		metrics.ObserveClaim(string(m.Kind), true)
		log.Info("mission retired")
		return res, true
	}

	catalog.ApplyStage(m, m.StageIndex+1)
	m.Received = false
	if m.Category == model.CategoryGallery {
		a.t.RefreshPage(m.Subject)
	}
	res.Mission = m.Clone()
	metrics.ObserveClaim(string(m.Kind), false)
	log.WithField("target", m.Target).Info("mission advanced")
	return res, true
}
