package store

import (
	"context"
	"fmt"

	"github.com/daviddao/critterdex/pkg/model"
)

// xpKey is the wallet row holding accumulated experience.
const xpKey model.Currency = "xp"

// Wallet is the local currency ledger used when no remote ledger is
// configured. It satisfies reward.Ledger.
type Wallet struct {
	s *Store
}

// Wallet returns the local ledger view of the store.
func (s *Store) Wallet() *Wallet { return &Wallet{s: s} }

// Increment credits amount of currency and xp experience in one
// transaction. Zero amounts are skipped.
func (w *Wallet) Increment(ctx context.Context, currency model.Currency, amount, xp int) error {
	err := w.s.Update(ctx, func(t Tx) error {
		if amount != 0 {
			if err := t.AddBalance(currency, amount); err != nil {
				return err
			}
		}
		if xp != 0 {
			return t.AddBalance(xpKey, xp)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("wallet increment %s: %w", currency, err)
	}
	return nil
}

// Balances returns every currency balance and the experience total.
func (w *Wallet) Balances(ctx context.Context) (map[model.Currency]int, int, error) {
	bal := map[model.Currency]int{}
	var xp int
	err := w.s.View(ctx, func(t Tx) error {
		recs, err := t.ListBalances()
		if err != nil {
			return err
		}
		for _, r := range recs {
			if r.Currency == xpKey {
				xp = r.Balance
				continue
			}
			bal[r.Currency] = r.Balance
		}
		return nil
	})
	return bal, xp, err
}
