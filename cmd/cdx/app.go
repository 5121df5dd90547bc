package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/daviddao/critterdex/pkg/catalog"
	"github.com/daviddao/critterdex/pkg/clock"
	"github.com/daviddao/critterdex/pkg/config"
	"github.com/daviddao/critterdex/pkg/engine"
	"github.com/daviddao/critterdex/pkg/kv"
	"github.com/daviddao/critterdex/pkg/logger"
	"github.com/daviddao/critterdex/pkg/reward"
	"github.com/daviddao/critterdex/pkg/store"
)

// app holds shared state for all CLI subcommands.
type app struct {
	cfg    config.Config
	log    *logrus.Logger
	store  *store.Store
	kv     kv.Store
	engine *engine.Engine
	out    io.Writer

	// reset is true when the startup day check regenerated Daily missions.
	reset bool
}

// newApp opens the profile databases, builds the engine, applies durable
// state and performs the foreground day check. Creates .critterdex/ when
// the default paths are in use.
func newApp(ctx context.Context, cfg config.Config, out io.Writer) (*app, error) {
	if cfg.UsesDefaultDir() {
		if err := os.MkdirAll(config.DefaultDir, 0o755); err != nil {
			return nil, fmt.Errorf("cannot create %s: %w", config.DefaultDir, err)
		}
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	data := catalog.Default()
	if cfg.Catalog != "" {
		d, err := catalog.LoadFile(cfg.Catalog)
		if err != nil {
			return nil, err
		}
		data = d
	}
	loc, err := clock.LoadZone(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	s, err := store.New(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("cannot open database %q: %w", cfg.DB, err)
	}
	effects, err := kv.Open(kv.Options{
		Backend:   cfg.KVBackend,
		Path:      cfg.KVPath,
		RedisAddr: cfg.RedisAddr,
		Namespace: kv.DefaultNamespace,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("cannot open effect store: %w", err)
	}

	var ledger reward.Ledger = s.Wallet()
	if cfg.LedgerURL != "" {
		ledger = reward.NewHTTPLedger(cfg.LedgerURL, cfg.LedgerRPS, cfg.LedgerTimeout)
	}

	e := engine.New(engine.Options{
		Data:     data,
		Store:    s,
		KV:       effects,
		Ledger:   ledger,
		Unlocker: s,
		Clock:    clock.System{},
		Location: loc,
		Log:      log,
	})
	if !e.Load(ctx) {
		log.Warn("could not load saved progress; starting from a fresh catalog")
	}
	reset := e.ResetDailyIfNeeded(ctx)

	return &app{cfg: cfg, log: log, store: s, kv: effects, engine: e, out: out, reset: reset}, nil
}

// Close waits for pending reward grants and releases the databases.
func (a *app) Close() {
	a.engine.Close()
	a.kv.Close()
	a.store.Close()
}

func (a *app) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
