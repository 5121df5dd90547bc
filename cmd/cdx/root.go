package main

import (
	"github.com/spf13/cobra"

	"github.com/daviddao/critterdex/pkg/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cdx",
		Short: "critterdex mission and progression engine",
		Long: `cdx drives the critterdex mission and progression engine.

Daily missions reset at midnight in the reference timezone; cumulative
missions advance through stage ladders as they are claimed. State lives
in a local SQLite profile (.critterdex/ by default).

Environment:
  CRITTERDEX_DB           SQLite profile path
  CRITTERDEX_KV_BACKEND   bolt (default) or redis
  CRITTERDEX_KV_PATH      bolt file for tool effects
  CRITTERDEX_REDIS_ADDR   redis address when KV_BACKEND=redis
  CRITTERDEX_LEDGER_URL   remote currency ledger (local wallet when empty)
  CRITTERDEX_TIMEZONE     reference timezone (default Asia/Tokyo)
  CRITTERDEX_CATALOG      YAML file replacing the built-in catalog
  CRITTERDEX_LOG_LEVEL    logrus level (default info)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCmd(),
		newGetCmd(),
		newCatchCmd(),
		newBuyMapCmd(),
		newMissionsCmd(),
		newClaimCmd(),
		newToolCmd(),
		newResetCmd(),
		newWalletCmd(),
		newServeCmd(),
	)
	return root
}

// withApp runs fn against an app opened from the environment.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
