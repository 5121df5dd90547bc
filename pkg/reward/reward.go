// Package reward turns mission rewards into ledger grants.
//
// Reward tokens are short strings authored in the catalog:
//
//	100G       soft currency
//	(5)        premium currency
//	forest%3   gallery image unlock (any token containing '%')
//
// Tokens are parsed once, when the catalog is built, into model.Reward.
// Claims then hand the typed reward to a Dispatcher which applies it in
// the background; a failed grant is logged and never rolls back the claim.
package reward

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/daviddao/critterdex/pkg/model"
)

// ClaimXP is the experience every non-gallery claim grants.
const ClaimXP = 1

var (
	softToken    = regexp.MustCompile(`^(\d+)G$`)
	premiumToken = regexp.MustCompile(`^\((\d+)\)$`)
)

// Parse decodes a reward token. The empty token is a reward-less mission.
func Parse(token string) (model.Reward, error) {
	tok := strings.TrimSpace(token)
	switch {
	case tok == "":
		return model.Reward{}, nil
	case strings.Contains(tok, "%"):
		return model.Reward{Kind: model.RewardGallery, UnlockID: tok, Token: tok}, nil
	}
	if m := softToken.FindStringSubmatch(tok); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return model.Reward{}, fmt.Errorf("reward %q: %w", token, err)
		}
		return model.Reward{Kind: model.RewardCurrency, Currency: model.CurrencySoft, Amount: n, Token: tok}, nil
	}
	if m := premiumToken.FindStringSubmatch(tok); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return model.Reward{}, fmt.Errorf("reward %q: %w", token, err)
		}
		return model.Reward{Kind: model.RewardCurrency, Currency: model.CurrencyPremium, Amount: n, Token: tok}, nil
	}
	return model.Reward{}, fmt.Errorf("reward %q: unrecognised token", token)
}

// MustParse is Parse for compiled-in tokens.
func MustParse(token string) model.Reward {
	r, err := Parse(token)
	if err != nil {
		panic(err)
	}
	return r
}

// Format renders a reward back to its token form.
func Format(r model.Reward) string {
	switch r.Kind {
	case model.RewardGallery:
		return r.UnlockID
	case model.RewardCurrency:
		if r.Currency == model.CurrencyPremium {
			return fmt.Sprintf("(%d)", r.Amount)
		}
		return fmt.Sprintf("%dG", r.Amount)
	}
	return ""
}

// Ledger is the currency collaborator. Increment is best-effort and not
// idempotent.
type Ledger interface {
	Increment(ctx context.Context, currency model.Currency, amount, xp int) error
}

// Unlocker records gallery-image ownership, reporting whether the image
// was newly unlocked.
type Unlocker interface {
	UnlockImage(ctx context.Context, id string) (bool, error)
}

// Grant is a resolved reward ready to apply.
type Grant struct {
	ID       string
	Currency model.Currency
	Amount   int
	XP       int
	UnlockID string
}

// Resolve maps a reward to the grant a claim applies. Non-gallery claims
// carry ClaimXP, including reward-less ones.
func Resolve(r model.Reward) Grant {
	if r.IsGallery() {
		return Grant{UnlockID: r.UnlockID}
	}
	g := Grant{XP: ClaimXP, Currency: model.CurrencySoft}
	if r.Kind == model.RewardCurrency {
		g.Currency = r.Currency
		g.Amount = r.Amount
	}
	return g
}
