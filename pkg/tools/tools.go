// Package tools tracks consumable tool inventory and the expiry of the
// time-boxed effects they start.
//
// Expiry timestamps live in a kv.Store under "tool:<id>" as RFC 3339
// strings. Inventory counts are kept in memory and persisted by the
// reconciler alongside the mission records.
package tools

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/daviddao/critterdex/pkg/catalog"
	"github.com/daviddao/critterdex/pkg/clock"
	"github.com/daviddao/critterdex/pkg/kv"
	"github.com/daviddao/critterdex/pkg/metrics"
	"github.com/daviddao/critterdex/pkg/model"
)

const keyPrefix = "tool:"

// Clock is the effect clock of one session.
type Clock struct {
	specs map[string]catalog.ToolSpec
	group map[string][]string // exclusive group -> member tool ids
	kv    kv.Store
	clk   clock.Clock
	log   logrus.FieldLogger

	inventory map[string]int
}

// New returns a Clock for the tools described in data.
func New(data *catalog.Data, store kv.Store, clk clock.Clock, log logrus.FieldLogger) *Clock {
	c := &Clock{
		specs:     make(map[string]catalog.ToolSpec, len(data.Tools)),
		group:     map[string][]string{},
		kv:        store,
		clk:       clk,
		log:       log,
		inventory: map[string]int{},
	}
	for _, t := range data.Tools {
		c.specs[t.ID] = t
		if t.Group != "" {
			c.group[t.Group] = append(c.group[t.Group], t.ID)
		}
	}
	return c
}

// Use consumes one unit of tool and starts its effect. Starting a member
// of an exclusive group ends every other member's effect. It reports
// false when the tool is unknown or none are held.
func (c *Clock) Use(ctx context.Context, tool string) bool {
	spec, ok := c.specs[tool]
	if !ok || c.inventory[tool] <= 0 {
		return false
	}
	c.inventory[tool]--

	if spec.Group != "" {
		for _, other := range c.group[spec.Group] {
			if other != tool {
				c.clear(ctx, other)
			}
		}
	}

	expires := c.clk.Now().Add(spec.Duration)
	if err := c.kv.Set(ctx, keyPrefix+tool, expires.UTC().Format(time.RFC3339Nano)); err != nil {
		metrics.ObservePersistenceFailure("tool_expiry")
		c.log.WithError(err).WithField("tool", tool).Warn("persist tool expiry")
	}
	metrics.ObserveToolUse(tool)
	c.log.WithFields(logrus.Fields{"tool": tool, "expires": expires}).Info("tool used")
	return true
}

// Effect returns the stored effect of tool without expiring it.
func (c *Clock) Effect(ctx context.Context, tool string) model.ToolEffect {
	e := model.ToolEffect{Tool: tool}
	raw, err := c.kv.Get(ctx, keyPrefix+tool)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			metrics.ObservePersistenceFailure("tool_expiry")
			c.log.WithError(err).WithField("tool", tool).Warn("read tool expiry")
		}
		return e
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		c.log.WithError(err).WithField("tool", tool).Warn("malformed tool expiry")
		return e
	}
	e.ExpiresAt = &ts
	return e
}

// RemainingSeconds returns the seconds left on tool's effect, rounded up
// so an active effect never reports zero. An absent or expired effect is
// cleared and reported as inactive (false).
func (c *Clock) RemainingSeconds(ctx context.Context, tool string) (int64, bool) {
	e := c.Effect(ctx, tool)
	now := c.clk.Now()
	if !e.Active(now) {
		c.clear(ctx, tool)
		return 0, false
	}
	left := e.ExpiresAt.Sub(now)
	return int64((left + time.Second - 1) / time.Second), true
}

func (c *Clock) clear(ctx context.Context, tool string) {
	if err := c.kv.Delete(ctx, keyPrefix+tool); err != nil {
		metrics.ObservePersistenceFailure("tool_expiry")
		c.log.WithError(err).WithField("tool", tool).Warn("clear tool expiry")
	}
}

// Purchase adds quantity units of tool. It reports false for an unknown
// tool or a non-positive quantity.
func (c *Clock) Purchase(tool string, quantity int) bool {
	if _, ok := c.specs[tool]; !ok || quantity <= 0 {
		return false
	}
	c.inventory[tool] += quantity
	return true
}

// Count returns the held units of tool.
func (c *Clock) Count(tool string) int { return c.inventory[tool] }

// Inventory returns a copy of every held count, including zeros of tools
// that were held at some point.
func (c *Clock) Inventory() map[string]int {
	out := make(map[string]int, len(c.inventory))
	for k, v := range c.inventory {
		out[k] = v
	}
	return out
}

// SetInventory replaces the inventory, as loaded from durable records.
func (c *Clock) SetInventory(counts map[string]int) {
	c.inventory = make(map[string]int, len(counts))
	for k, v := range counts {
		if v >= 0 {
			c.inventory[k] = v
		}
	}
}
