package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/daviddao/critterdex/pkg/model"
	"github.com/daviddao/critterdex/pkg/reward"
)

//go:embed default.yaml
var defaultYAML []byte

// Data is the static collection data missions are generated from.
type Data struct {
	Daily          []MissionSpec `yaml:"daily"`
	Cumulative     []MissionSpec `yaml:"cumulative"`
	Rarities       []Rarity      `yaml:"rarities"`
	MonsterLadder  Ladder        `yaml:"monster_ladder"`
	Items          []ItemSpec    `yaml:"items"`
	Monsters       []MonsterSpec `yaml:"monsters"`
	Gallery        []Page        `yaml:"gallery"`
	Tools          []ToolSpec    `yaml:"tools"`
	ExclusiveGroup []string      `yaml:"exclusive_groups"`
}

// MissionSpec defines one fixed daily or aggregate mission.
type MissionSpec struct {
	ID          string `yaml:"id"`
	Category    string `yaml:"category"`
	Subject     string `yaml:"subject"`
	Description string `yaml:"description"`
	Template    string `yaml:"template"`
	Target      int    `yaml:"target"`
	Reward      string `yaml:"reward"`
	Ladder      Ladder `yaml:"ladder"`
	// Presatisfied missions start with progress == target.
	Presatisfied bool `yaml:"presatisfied"`
}

// Ladder is a staged threshold list with per-stage reward tokens and
// optional per-stage descriptions.
type Ladder struct {
	Stages       []int    `yaml:"stages"`
	Rewards      []string `yaml:"rewards"`
	Descriptions []string `yaml:"descriptions"`
}

// Rarity is a collectible tier. ItemLadder is the 4-stage ladder of every
// per-item mission of the tier; Total is the tier's aggregate ladder.
type Rarity struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	ItemLadder Ladder `yaml:"item_ladder"`
	Total      Ladder `yaml:"total"`
}

// ItemSpec is one collectible identity.
type ItemSpec struct {
	Code   string `yaml:"code"`
	Name   string `yaml:"name"`
	Rarity string `yaml:"rarity"`
}

// MonsterSpec is one monster identity.
type MonsterSpec struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// Page is a gallery page. Ladder holds completion percentages; purchasable
// pages get an extra leading ownership stage with target 1.
type Page struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Purchasable bool     `yaml:"purchasable"`
	Icons       []string `yaml:"icons"`
	Ladder      Ladder   `yaml:"ladder"`
	// OwnershipReward is the reward of the ownership stage.
	OwnershipReward string `yaml:"ownership_reward"`
}

// ToolSpec is a consumable tool with a fixed effect duration.
type ToolSpec struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name"`
	Group    string        `yaml:"group"`
	Duration time.Duration `yaml:"duration"`
}

// Default returns the embedded catalog data.
func Default() *Data {
	d, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return d
}

// LoadFile reads catalog data from a YAML file.
func LoadFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates catalog YAML.
func Parse(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks internal references and ladder shapes.
func (d *Data) Validate() error {
	ids := map[string]bool{}
	claim := func(id string) error {
		if id == "" {
			return fmt.Errorf("catalog: empty mission id")
		}
		if ids[id] {
			return fmt.Errorf("catalog: duplicate mission id %q", id)
		}
		ids[id] = true
		return nil
	}

	for _, s := range d.Daily {
		if err := claim(s.ID); err != nil {
			return err
		}
		if !model.Category(s.Category).Known() {
			return fmt.Errorf("catalog: daily %s: unknown category %q", s.ID, s.Category)
		}
		if s.Target <= 0 {
			return fmt.Errorf("catalog: daily %s: target must be positive", s.ID)
		}
		if _, err := reward.Parse(s.Reward); err != nil {
			return fmt.Errorf("catalog: daily %s: %w", s.ID, err)
		}
	}
	for _, s := range d.Cumulative {
		if err := claim(s.ID); err != nil {
			return err
		}
		if !model.Category(s.Category).Known() {
			return fmt.Errorf("catalog: cumulative %s: unknown category %q", s.ID, s.Category)
		}
		if err := s.Ladder.validate(s.ID, 1); err != nil {
			return err
		}
	}

	rarities := map[string]bool{}
	for _, r := range d.Rarities {
		if rarities[r.ID] {
			return fmt.Errorf("catalog: duplicate rarity %q", r.ID)
		}
		rarities[r.ID] = true
		if err := claim(RarityMissionID(r.ID)); err != nil {
			return err
		}
		if err := r.ItemLadder.validate("rarity "+r.ID+" item ladder", 4); err != nil {
			return err
		}
		if err := r.Total.validate("rarity "+r.ID+" total", 1); err != nil {
			return err
		}
	}
	if len(d.Monsters) > 0 {
		if err := d.MonsterLadder.validate("monster ladder", 2); err != nil {
			return err
		}
	}

	codes := map[string]bool{}
	for _, it := range d.Items {
		if codes[it.Code] {
			return fmt.Errorf("catalog: duplicate code %q", it.Code)
		}
		codes[it.Code] = true
		if !rarities[it.Rarity] {
			return fmt.Errorf("catalog: item %s: unknown rarity %q", it.Code, it.Rarity)
		}
		if err := claim(ItemMissionID(it.Code)); err != nil {
			return err
		}
	}
	for _, m := range d.Monsters {
		if codes[m.Code] {
			return fmt.Errorf("catalog: duplicate code %q", m.Code)
		}
		codes[m.Code] = true
		if err := claim(MonsterMissionID(m.Code)); err != nil {
			return err
		}
	}

	for _, p := range d.Gallery {
		if err := claim(GalleryMissionID(p.ID)); err != nil {
			return err
		}
		if len(p.Icons) == 0 {
			return fmt.Errorf("catalog: page %s has no icons", p.ID)
		}
		for _, icon := range p.Icons {
			if !codes[icon] {
				return fmt.Errorf("catalog: page %s: unknown icon %q", p.ID, icon)
			}
		}
		if n := len(p.Ladder.Stages); n != 4 && n != 5 {
			return fmt.Errorf("catalog: page %s: ladder must have 4 or 5 stages, has %d", p.ID, n)
		}
		if err := p.Ladder.validate("page "+p.ID, 4); err != nil {
			return err
		}
		if last := p.Ladder.Stages[len(p.Ladder.Stages)-1]; last > 100 {
			return fmt.Errorf("catalog: page %s: percentage %d exceeds 100", p.ID, last)
		}
		if _, err := reward.Parse(p.OwnershipReward); err != nil {
			return fmt.Errorf("catalog: page %s: %w", p.ID, err)
		}
	}

	groups := map[string]bool{}
	for _, g := range d.ExclusiveGroup {
		groups[g] = true
	}
	tools := map[string]bool{}
	for _, t := range d.Tools {
		if t.ID == "" || tools[t.ID] {
			return fmt.Errorf("catalog: empty or duplicate tool id %q", t.ID)
		}
		tools[t.ID] = true
		if t.Duration <= 0 {
			return fmt.Errorf("catalog: tool %s: duration must be positive", t.ID)
		}
		if t.Group != "" && !groups[t.Group] {
			return fmt.Errorf("catalog: tool %s: unknown exclusive group %q", t.ID, t.Group)
		}
	}
	return nil
}

func (l Ladder) validate(what string, minStages int) error {
	if len(l.Stages) < minStages {
		return fmt.Errorf("catalog: %s: need at least %d stages, have %d", what, minStages, len(l.Stages))
	}
	prev := 0
	for _, s := range l.Stages {
		if s <= prev {
			return fmt.Errorf("catalog: %s: stages must be positive and increasing: %v", what, l.Stages)
		}
		prev = s
	}
	if len(l.Rewards) != 0 && len(l.Rewards) != len(l.Stages) {
		return fmt.Errorf("catalog: %s: %d rewards for %d stages", what, len(l.Rewards), len(l.Stages))
	}
	if len(l.Descriptions) != 0 && len(l.Descriptions) != len(l.Stages) {
		return fmt.Errorf("catalog: %s: %d descriptions for %d stages", what, len(l.Descriptions), len(l.Stages))
	}
	for _, tok := range l.Rewards {
		if _, err := reward.Parse(tok); err != nil {
			return fmt.Errorf("catalog: %s: %w", what, err)
		}
	}
	return nil
}

// Page returns the gallery page with id.
func (d *Data) Page(id string) (Page, bool) {
	for _, p := range d.Gallery {
		if p.ID == id {
			return p, true
		}
	}
	return Page{}, false
}

// PagesContaining returns the ids of every gallery page whose icon set
// includes code, in catalog order.
func (d *Data) PagesContaining(code string) []string {
	var pages []string
	for _, p := range d.Gallery {
		for _, icon := range p.Icons {
			if icon == code {
				pages = append(pages, p.ID)
				break
			}
		}
	}
	return pages
}

// Tool returns the tool spec with id.
func (d *Data) Tool(id string) (ToolSpec, bool) {
	for _, t := range d.Tools {
		if t.ID == id {
			return t, true
		}
	}
	return ToolSpec{}, false
}

// ToolIDs returns every tool id sorted.
func (d *Data) ToolIDs() []string {
	ids := make([]string, 0, len(d.Tools))
	for _, t := range d.Tools {
		ids = append(ids, t.ID)
	}
	sort.Strings(ids)
	return ids
}
