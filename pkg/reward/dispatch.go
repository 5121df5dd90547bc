package reward

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/daviddao/critterdex/pkg/metrics"
	"github.com/daviddao/critterdex/pkg/model"
)

// Dispatcher applies grants in the background. Each grant is one attempt
// with no retry and no timeout beyond the ledger's own; the local claim
// has already been committed when Dispatch returns.
type Dispatcher struct {
	ledger   Ledger
	unlocker Unlocker
	log      logrus.FieldLogger
	group    errgroup.Group
}

// NewDispatcher builds a dispatcher. unlocker may be nil when gallery
// rewards are not in use.
func NewDispatcher(ledger Ledger, unlocker Unlocker, log logrus.FieldLogger) *Dispatcher {
	return &Dispatcher{ledger: ledger, unlocker: unlocker, log: log}
}

// Dispatch starts applying r for missionID and returns the grant id.
// Cancelling ctx afterwards does not abort the grant.
func (d *Dispatcher) Dispatch(ctx context.Context, missionID string, r model.Reward) string {
	g := Resolve(r)
	g.ID = uuid.NewString()
	ctx = context.WithoutCancel(ctx)
	log := d.log.WithFields(logrus.Fields{"mission": missionID, "grant": g.ID, "reward": Format(r)})

	d.group.Go(func() error {
		err := d.apply(ctx, g)
		if g.UnlockID == "" {
			metrics.ObserveGrant(err)
		}
		if err != nil {
			// The claim stays committed: the player keeps "received" even
			// though the ledger never credited it.
			log.WithError(err).Error("reward grant failed")
			return err
		}
		log.Debug("reward granted")
		return nil
	})
	return g.ID
}

func (d *Dispatcher) apply(ctx context.Context, g Grant) error {
	if g.UnlockID != "" {
		if d.unlocker == nil {
			return fmt.Errorf("gallery unlock %s: no unlocker configured", g.UnlockID)
		}
		if _, err := d.unlocker.UnlockImage(ctx, g.UnlockID); err != nil {
			return fmt.Errorf("gallery unlock %s: %w", g.UnlockID, err)
		}
		return nil
	}
	if d.ledger == nil {
		return fmt.Errorf("ledger increment: no ledger configured")
	}
	if err := d.ledger.Increment(ctx, g.Currency, g.Amount, g.XP); err != nil {
		return fmt.Errorf("ledger increment: %w", err)
	}
	return nil
}

// Wait blocks until every dispatched grant finished and returns the first
// failure, if any. Failures were already logged.
func (d *Dispatcher) Wait() error {
	return d.group.Wait()
}
