// Package catalog builds the static mission definitions from collection
// data. Building is pure and deterministic: the same Data always yields the
// same missions, in the same order, with no randomness.
package catalog

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/daviddao/critterdex/pkg/model"
	"github.com/daviddao/critterdex/pkg/reward"
)

// Mission id helpers.
func ItemMissionID(code string) string    { return "item_" + code }
func MonsterMissionID(code string) string { return "monster_" + code }
func RarityMissionID(tier string) string  { return "rarity_" + tier }
func GalleryMissionID(page string) string { return "gallery_" + page }

// OwnershipTarget is the target of a purchasable page's first stage.
const OwnershipTarget = 1

var printer = message.NewPrinter(language.English)

// Build returns the full mission set: the Daily subset followed by every
// Cumulative mission.
func Build(d *Data) []*model.Mission {
	return append(BuildDaily(d), BuildCumulative(d)...)
}

// BuildDaily returns a fresh Daily subset. Pre-satisfied missions (login,
// ad watch) start with progress == target and are claimable immediately.
func BuildDaily(d *Data) []*model.Mission {
	out := make([]*model.Mission, 0, len(d.Daily))
	for _, s := range d.Daily {
		m := &model.Mission{
			ID:          s.ID,
			Kind:        model.KindDaily,
			Category:    model.Category(s.Category),
			Subject:     s.Subject,
			Description: s.Description,
			Reward:      reward.MustParse(s.Reward),
			Target:      s.Target,
		}
		if s.Presatisfied {
			m.Progress = m.Target
		}
		out = append(out, m)
	}
	return out
}

// BuildCumulative returns every Cumulative mission: global aggregates,
// rarity aggregates, one per item identity, one per monster identity and
// one per gallery page.
func BuildCumulative(d *Data) []*model.Mission {
	var out []*model.Mission

	for _, s := range d.Cumulative {
		out = append(out, staged(s.ID, model.Category(s.Category), s.Subject, s.Template, s.Ladder))
	}

	rarityName := map[string]string{}
	ladders := map[string]Ladder{}
	for _, r := range d.Rarities {
		rarityName[r.ID] = r.Name
		ladders[r.ID] = r.ItemLadder
		tmpl := "Pick up %d " + escape(r.Name) + " items"
		out = append(out, staged(RarityMissionID(r.ID), model.CategoryRarity, r.ID, tmpl, r.Total))
	}

	for _, it := range d.Items {
		tmpl := "Newly own " + escape(it.Name) + " %d times"
		out = append(out, staged(ItemMissionID(it.Code), model.CategoryItem, it.Code, tmpl, ladders[it.Rarity]))
	}

	for _, mo := range d.Monsters {
		tmpl := "Play with " + escape(mo.Name) + " %d times"
		out = append(out, staged(MonsterMissionID(mo.Code), model.CategoryMonster, mo.Code, tmpl, d.MonsterLadder))
	}

	for _, p := range d.Gallery {
		out = append(out, galleryMission(p))
	}
	return out
}

func galleryMission(p Page) *model.Mission {
	l := p.Ladder
	if p.Purchasable {
		l = Ladder{
			Stages:       append([]int{OwnershipTarget}, p.Ladder.Stages...),
			Rewards:      append([]string{p.OwnershipReward}, padded(p.Ladder.Rewards, len(p.Ladder.Stages))...),
			Descriptions: append([]string{"Unlock the " + p.Name + " map"}, padded(p.Ladder.Descriptions, len(p.Ladder.Stages))...),
		}
	}
	tmpl := "Complete %d%% of the " + escape(p.Name) + " gallery"
	return staged(GalleryMissionID(p.ID), model.CategoryGallery, p.ID, tmpl, l)
}

func staged(id string, cat model.Category, subject, tmpl string, l Ladder) *model.Mission {
	m := &model.Mission{
		ID:                  id,
		Kind:                model.KindCumulative,
		Category:            cat,
		Subject:             subject,
		Stages:              append([]int(nil), l.Stages...),
		DescriptionTemplate: tmpl,
	}
	if len(l.Descriptions) > 0 {
		m.StageDescriptions = append([]string(nil), l.Descriptions...)
	}
	for _, tok := range l.Rewards {
		m.StageRewards = append(m.StageRewards, reward.MustParse(tok))
	}
	ApplyStage(m, 0)
	return m
}

// ApplyStage moves m to stage idx and re-derives Target, Description and
// Reward from the ladder. Progress and Received are left alone. Missions
// without stages or with an out-of-range idx are unchanged.
func ApplyStage(m *model.Mission, idx int) {
	if idx < 0 || idx >= len(m.Stages) {
		return
	}
	m.StageIndex = idx
	m.Target = m.Stages[idx]
	if idx < len(m.StageDescriptions) && m.StageDescriptions[idx] != "" {
		m.Description = m.StageDescriptions[idx]
	} else if m.DescriptionTemplate != "" {
		m.Description = printer.Sprintf(m.DescriptionTemplate, m.Target)
	}
	if idx < len(m.StageRewards) {
		m.Reward = m.StageRewards[idx]
	}
}

// Bucket maps a page tally to its completion percentage: the largest
// threshold of the page's percentage ladder not above tally/len(icons),
// or 0 when none is reached.
func Bucket(p Page, tally int) int {
	if len(p.Icons) == 0 {
		return 0
	}
	ratio := tally * 100 / len(p.Icons)
	best := 0
	for _, s := range p.Ladder.Stages {
		if s <= ratio && s > best {
			best = s
		}
	}
	return best
}

// GalleryProgress derives the progress of a page's mission at stageIndex.
// An unowned purchasable page shows no progress; its ownership stage is
// satisfied once owned; every other stage shows the bucketed percentage.
func GalleryProgress(p Page, stageIndex, tally int, owned bool) int {
	if p.Purchasable {
		if !owned {
			return 0
		}
		if stageIndex == 0 {
			return OwnershipTarget
		}
	}
	return Bucket(p, tally)
}

func escape(s string) string { return strings.ReplaceAll(s, "%", "%%") }

func padded(s []string, n int) []string {
	out := make([]string, n)
	copy(out, s)
	return out
}
