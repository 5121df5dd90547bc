package tools

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviddao/critterdex/pkg/catalog"
	"github.com/daviddao/critterdex/pkg/clock"
	"github.com/daviddao/critterdex/pkg/kv"
	"github.com/daviddao/critterdex/pkg/logger"
)

var epoch = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestClock(t *testing.T) (*Clock, *clock.Manual, kv.Store) {
	t.Helper()
	store, err := kv.OpenBolt(filepath.Join(t.TempDir(), "effects.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	clk := clock.NewManual(epoch)
	return New(catalog.Default(), store, clk, logger.Discard()), clk, store
}

func TestUseRequiresInventory(t *testing.T) {
	c, _, _ := newTestClock(t)
	ctx := context.Background()

	assert.False(t, c.Use(ctx, "magnet"))
	_, active := c.RemainingSeconds(ctx, "magnet")
	assert.False(t, active)

	require.True(t, c.Purchase("magnet", 2))
	assert.True(t, c.Use(ctx, "magnet"))
	assert.Equal(t, 1, c.Count("magnet"))

	secs, active := c.RemainingSeconds(ctx, "magnet")
	assert.True(t, active)
	assert.Equal(t, int64(600), secs)
}

func TestRemainingSecondsRoundsUp(t *testing.T) {
	c, clk, _ := newTestClock(t)
	ctx := context.Background()
	require.True(t, c.Purchase("magnet", 1))
	require.True(t, c.Use(ctx, "magnet"))

	clk.Advance(10*time.Minute - 400*time.Millisecond)
	secs, active := c.RemainingSeconds(ctx, "magnet")
	assert.True(t, active)
	assert.Equal(t, int64(1), secs)

	clk.Advance(200 * time.Millisecond)
	secs, _ = c.RemainingSeconds(ctx, "magnet")
	assert.Equal(t, int64(1), secs)

	clk.Advance(200 * time.Millisecond)
	_, active = c.RemainingSeconds(ctx, "magnet")
	assert.False(t, active)
}

func TestUseUnknownTool(t *testing.T) {
	c, _, _ := newTestClock(t)
	assert.False(t, c.Purchase("rocket", 1))
	assert.False(t, c.Use(context.Background(), "rocket"))
}

func TestPurchaseRejectsNonPositive(t *testing.T) {
	c, _, _ := newTestClock(t)
	assert.False(t, c.Purchase("magnet", 0))
	assert.False(t, c.Purchase("magnet", -3))
	assert.Zero(t, c.Count("magnet"))
}

func TestExclusiveGroup(t *testing.T) {
	c, clk, _ := newTestClock(t)
	ctx := context.Background()
	c.Purchase("lure_bronze", 1)
	c.Purchase("lure_gold", 1)
	c.Purchase("magnet", 1)

	require.True(t, c.Use(ctx, "lure_bronze"))
	require.True(t, c.Use(ctx, "magnet"))
	clk.Advance(time.Minute)
	require.True(t, c.Use(ctx, "lure_gold"))

	_, active := c.RemainingSeconds(ctx, "lure_bronze")
	assert.False(t, active, "using a group member ends the others")

	secs, active := c.RemainingSeconds(ctx, "lure_gold")
	assert.True(t, active)
	assert.Equal(t, int64(3600), secs)

	_, active = c.RemainingSeconds(ctx, "magnet")
	assert.True(t, active, "tools outside the group are untouched")
}

func TestLazyExpiryClearsRecord(t *testing.T) {
	c, clk, store := newTestClock(t)
	ctx := context.Background()
	c.Purchase("lure_bronze", 1)
	require.True(t, c.Use(ctx, "lure_bronze"))

	clk.Advance(15 * time.Minute)
	_, err := store.Get(ctx, "tool:lure_bronze")
	require.NoError(t, err, "record survives until read")

	_, active := c.RemainingSeconds(ctx, "lure_bronze")
	assert.False(t, active, "expiry at now is inactive")

	_, err = store.Get(ctx, "tool:lure_bronze")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestEffectSurvivesNewClock(t *testing.T) {
	c, clk, store := newTestClock(t)
	ctx := context.Background()
	c.Purchase("lure_silver", 1)
	require.True(t, c.Use(ctx, "lure_silver"))

	again := New(catalog.Default(), store, clk, logger.Discard())
	e := again.Effect(ctx, "lure_silver")
	require.NotNil(t, e.ExpiresAt)
	assert.True(t, e.ExpiresAt.Equal(epoch.Add(30*time.Minute)))
}

func TestInventoryCopies(t *testing.T) {
	c, _, _ := newTestClock(t)
	c.SetInventory(map[string]int{"magnet": 3, "lure_gold": -1})

	inv := c.Inventory()
	assert.Equal(t, map[string]int{"magnet": 3}, inv)
	inv["magnet"] = 0
	assert.Equal(t, 3, c.Count("magnet"))
}
