package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviddao/critterdex/pkg/model"
)

func byID(ms []*model.Mission) map[string]*model.Mission {
	out := make(map[string]*model.Mission, len(ms))
	for _, m := range ms {
		out[m.ID] = m
	}
	return out
}

func TestDefaultCatalogIsValid(t *testing.T) {
	d := Default()
	require.NoError(t, d.Validate())
	assert.NotEmpty(t, d.Items)
	assert.NotEmpty(t, d.Gallery)
}

func TestBuildIsDeterministic(t *testing.T) {
	a := Build(Default())
	b := Build(Default())
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i], b[i], "mission %d differs", i)
	}
}

func TestBuildIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Build(Default()) {
		assert.False(t, seen[m.ID], "duplicate id %s", m.ID)
		seen[m.ID] = true
	}
}

func TestStageInvariantsAtBuild(t *testing.T) {
	for _, m := range Build(Default()) {
		if m.Staged() {
			assert.Equal(t, 0, m.StageIndex, m.ID)
			assert.Equal(t, m.Stages[0], m.Target, m.ID)
		}
		assert.Equal(t, m.Progress >= m.Target, m.Completed(), m.ID)
	}
}

func TestPresatisfiedDailyMissions(t *testing.T) {
	ms := byID(BuildDaily(Default()))

	login := ms["daily_login"]
	require.NotNil(t, login)
	assert.Equal(t, 1, login.Progress)
	assert.Equal(t, 1, login.Target)
	assert.True(t, login.Completed())
	assert.Equal(t, model.Reward{Kind: model.RewardCurrency, Currency: model.CurrencySoft, Amount: 100, Token: "100G"}, login.Reward)

	ad := ms["daily_ad"]
	require.NotNil(t, ad)
	assert.True(t, ad.Completed(), "ad mission is pre-set; the caller gates its claim")

	assert.False(t, ms["daily_items"].Completed())
	for _, m := range ms {
		assert.Equal(t, model.KindDaily, m.Kind)
		assert.Empty(t, m.Stages)
	}
}

func TestBuildDailyDoesNotShareState(t *testing.T) {
	d := Default()
	first := BuildDaily(d)
	first[2].Progress = 7
	second := BuildDaily(d)
	assert.Equal(t, 0, second[2].Progress)
}

func TestItemMissionLadderFollowsRarity(t *testing.T) {
	ms := byID(Build(Default()))

	apple := ms[ItemMissionID("apple")]
	require.NotNil(t, apple)
	assert.Equal(t, []int{50, 100, 150, 200}, apple.Stages)
	assert.Equal(t, 50, apple.Target)
	assert.Equal(t, "Newly own Apple 50 times", apple.Description)
	assert.Equal(t, model.CategoryItem, apple.Category)
	assert.Equal(t, "apple", apple.Subject)

	comet := ms[ItemMissionID("comet")]
	require.NotNil(t, comet)
	assert.Equal(t, []int{3, 6, 9, 12}, comet.Stages)
}

func TestMonsterMissionsHaveTwoStages(t *testing.T) {
	for _, m := range Build(Default()) {
		if m.Category == model.CategoryMonster {
			assert.Len(t, m.Stages, 2, m.ID)
		}
	}
}

func TestGalleryLadders(t *testing.T) {
	ms := byID(Build(Default()))

	meadow := ms[GalleryMissionID("meadow")]
	assert.Equal(t, []int{20, 50, 80, 100}, meadow.Stages)
	assert.Equal(t, "Complete 20% of the Meadow gallery", meadow.Description)
	assert.Equal(t, model.RewardGallery, meadow.Reward.Kind)

	shore := ms[GalleryMissionID("shore")]
	assert.Len(t, shore.Stages, 5)

	volcano := ms[GalleryMissionID("volcano")]
	assert.Equal(t, []int{1, 20, 50, 80, 100}, volcano.Stages)
	assert.Equal(t, 1, volcano.Target)
	assert.Equal(t, "Unlock the Volcano map", volcano.Description)
	assert.Equal(t, 100, volcano.Reward.Amount)
}

func TestApplyStage(t *testing.T) {
	ms := byID(Build(Default()))
	m := ms["items_total"]

	ApplyStage(m, 2)
	assert.Equal(t, 2, m.StageIndex)
	assert.Equal(t, 1000, m.Target)
	assert.Equal(t, "Pick up 1,000 items", m.Description)
	assert.Equal(t, model.CurrencyPremium, m.Reward.Currency)
	assert.Equal(t, 3, m.Reward.Amount)

	ApplyStage(m, 9)
	assert.Equal(t, 2, m.StageIndex, "out-of-range stage is ignored")
}

func TestApplyStagePrefersStageDescriptions(t *testing.T) {
	volcano := byID(Build(Default()))[GalleryMissionID("volcano")]
	ApplyStage(volcano, 1)
	assert.Equal(t, "Complete 20% of the Volcano gallery", volcano.Description)
	ApplyStage(volcano, 0)
	assert.Equal(t, "Unlock the Volcano map", volcano.Description)
}

func TestBucket(t *testing.T) {
	page := Page{Icons: []string{"a", "b", "c", "d", "e"}, Ladder: Ladder{Stages: []int{20, 50, 80, 100}}}
	tests := []struct {
		tally int
		want  int
	}{
		{0, 0},
		{1, 20},  // 20%
		{2, 20},  // 40%
		{3, 50},  // 60%
		{4, 80},  // 80%
		{5, 100}, // 100%
		{9, 100}, // repeated first acquisitions overshoot
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Bucket(page, tt.tally), "tally %d", tt.tally)
	}
}

func TestGalleryProgress(t *testing.T) {
	free := Page{Icons: []string{"a", "b"}, Ladder: Ladder{Stages: []int{20, 50, 80, 100}}}
	shop := Page{Purchasable: true, Icons: []string{"a", "b"}, Ladder: Ladder{Stages: []int{20, 50, 80, 100}}}

	assert.Equal(t, 50, GalleryProgress(free, 0, 1, false))
	assert.Equal(t, 0, GalleryProgress(shop, 0, 2, false), "unowned shop page shows nothing")
	assert.Equal(t, 1, GalleryProgress(shop, 0, 0, true), "ownership stage satisfied")
	assert.Equal(t, 100, GalleryProgress(shop, 1, 2, true))
}

func TestPagesContaining(t *testing.T) {
	d := Default()
	assert.Equal(t, []string{"meadow"}, d.PagesContaining("apple"))
	assert.Equal(t, []string{"shore"}, d.PagesContaining("tide"))
	assert.Empty(t, d.PagesContaining("unknown"))
}

func TestToolSpecs(t *testing.T) {
	d := Default()
	gold, ok := d.Tool("lure_gold")
	require.True(t, ok)
	assert.Equal(t, time.Hour, gold.Duration)
	assert.Equal(t, "lure", gold.Group)
	assert.Equal(t, []string{"lure_bronze", "lure_gold", "lure_silver", "magnet"}, d.ToolIDs())
}

func TestValidateRejects(t *testing.T) {
	base := `
rarities:
  - id: common
    name: Common
    item_ladder: {stages: [1, 2, 3, 4]}
    total: {stages: [10]}
items:
  - {code: apple, name: Apple, rarity: common}
`
	tests := []struct {
		name  string
		extra string
		want  string
	}{
		{"unknown rarity", "  - {code: pear, name: Pear, rarity: mythic}\n", "unknown rarity"},
		{"duplicate code", "  - {code: apple, name: Apple, rarity: common}\n", "duplicate"},
		{"bad page icon", "gallery:\n  - {id: p, name: P, icons: [nope], ladder: {stages: [20, 50, 80, 100]}}\n", "unknown icon"},
		{"short page ladder", "gallery:\n  - {id: p, name: P, icons: [apple], ladder: {stages: [50, 100]}}\n", "4 or 5 stages"},
		{"non increasing", "cumulative:\n  - {id: x, category: items, ladder: {stages: [5, 5]}}\n", "increasing"},
		{"bad reward", "daily:\n  - {id: d, category: items, target: 1, reward: lots}\n", "unrecognised"},
		{"daily category typo", "daily:\n  - {id: d, category: item_get, target: 1, reward: 10G}\n", "unknown category"},
		{"cumulative category typo", "cumulative:\n  - {id: x, category: monster_catch, ladder: {stages: [5, 10]}}\n", "unknown category"},
		{"unknown group", "tools:\n  - {id: t, group: nope, duration: 1m}\n", "exclusive group"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(base + tt.extra))
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, defaultYAML, 0o644))
	d, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, len(Default().Items), len(d.Items))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
