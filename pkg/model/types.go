// Package model defines the core domain types for critterdex.
//
// critterdex tracks the progression of a collection game player with two
// families of goals:
//
//   - Daily missions: small single-shot goals that are rebuilt wholesale
//     when the calendar day rolls over in the game's reference timezone.
//
//   - Cumulative missions: goals tracked over the player's whole history.
//     Most are staged: a ladder of increasing thresholds where each claim
//     advances the mission to the next rung until the final one retires it.
//
// The types here are plain values. Ownership and mutation rules live in
// the progress, reconcile and daily packages.
package model

import "time"

// Kind enumerates the two mission families.
type Kind string

const (
	KindDaily      Kind = "daily"
	KindCumulative Kind = "cumulative"
)

// Category identifies which gameplay events credit a mission.
type Category string

const (
	CategoryLogin     Category = "login"
	CategoryAd        Category = "ad"
	CategoryItems     Category = "items"      // raw item pickups
	CategoryNewItem   Category = "new_item"   // 0->1 held-count transitions
	CategoryRarity    Category = "rarity"     // raw pickups of one rarity tier
	CategoryItem      Category = "item"       // one collectible identity
	CategoryMonsters  Category = "monsters"   // raw monster plays
	CategoryMonster   Category = "monster"    // one monster identity
	CategoryGallery   Category = "gallery"    // derived page completion
	CategoryLoginDays Category = "login_days" // distinct calendar days
)

// Known reports whether c is one of the categories above.
func (c Category) Known() bool {
	switch c {
	case CategoryLogin, CategoryAd, CategoryItems, CategoryNewItem, CategoryRarity,
		CategoryItem, CategoryMonsters, CategoryMonster, CategoryGallery, CategoryLoginDays:
		return true
	}
	return false
}

// Mission is one trackable goal.
//
// Invariants: Completed() <=> Progress >= Target, and whenever Stages is
// non-empty, Target == Stages[StageIndex] with StageIndex < len(Stages).
type Mission struct {
	ID          string   `json:"id"`
	Kind        Kind     `json:"kind"`
	Category    Category `json:"category"`
	Subject     string   `json:"subject,omitempty"`
	Description string   `json:"description"`
	Reward      Reward   `json:"reward"`
	Target      int      `json:"target"`
	Progress    int      `json:"progress"`
	Received    bool     `json:"received"`

	Stages              []int    `json:"stages,omitempty"`
	StageIndex          int      `json:"stage_index"`
	StageDescriptions   []string `json:"-"`
	StageRewards        []Reward `json:"-"`
	DescriptionTemplate string   `json:"-"`
}

// Completed reports whether the current threshold has been reached.
func (m *Mission) Completed() bool { return m.Progress >= m.Target }

// Staged reports whether the mission has a stage ladder.
func (m *Mission) Staged() bool { return len(m.Stages) > 0 }

// FinalStage reports whether the mission has no further stage to advance to.
// Unstaged missions are always on their final stage.
func (m *Mission) FinalStage() bool { return m.StageIndex >= len(m.Stages)-1 }

// Clone returns a deep copy so callers can hand missions out without
// exposing the tracker's state.
func (m *Mission) Clone() *Mission {
	c := *m
	c.Stages = append([]int(nil), m.Stages...)
	c.StageDescriptions = append([]string(nil), m.StageDescriptions...)
	c.StageRewards = append([]Reward(nil), m.StageRewards...)
	return &c
}

// RewardKind tags the Reward union.
type RewardKind string

const (
	RewardNone     RewardKind = ""
	RewardCurrency RewardKind = "currency"
	RewardGallery  RewardKind = "gallery"
)

// Currency enumerates the ledger's currencies.
type Currency string

const (
	CurrencySoft    Currency = "soft"
	CurrencyPremium Currency = "premium"
)

// Reward is a tagged union: Currency{Currency, Amount} or GalleryUnlock{UnlockID}.
// Tokens are decided once when the catalog is built.
type Reward struct {
	Kind     RewardKind `json:"kind"`
	Currency Currency   `json:"currency,omitempty"`
	Amount   int        `json:"amount,omitempty"`
	UnlockID string     `json:"unlock_id,omitempty"`
	Token    string     `json:"token,omitempty"`
}

// IsGallery reports whether the reward unlocks a gallery image.
func (r Reward) IsGallery() bool { return r.Kind == RewardGallery }

// Item is a collectible pickup. Held is the player's held count of this
// identity after the pickup; Held == 1 marks a 0->1 transition.
type Item struct {
	Code   string `json:"code"`
	Rarity string `json:"rarity"`
	Held   int    `json:"held"`
}

// Monster is a catchable creature identity.
type Monster struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

// ToolEffect is the expiry of one time-boxed consumable effect. A nil
// ExpiresAt, or one at or before now, means inactive.
type ToolEffect struct {
	Tool      string     `json:"tool"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Active reports whether the effect is still running at now.
func (e ToolEffect) Active(now time.Time) bool {
	return e.ExpiresAt != nil && e.ExpiresAt.After(now)
}

// ClaimResult describes what a claim did.
type ClaimResult struct {
	MissionID string `json:"mission_id"`
	Reward    Reward `json:"reward"`
	// Terminal is true when the mission left the active set and its
	// received record must be persisted.
	Terminal bool `json:"terminal"`
	// Mission is the state after the claim (terminal record for retired
	// missions, the advanced stage otherwise).
	Mission *Mission `json:"mission"`
	GrantID string   `json:"grant_id,omitempty"`
}
