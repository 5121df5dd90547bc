package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daviddao/critterdex/pkg/model"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Credit today's login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app) error {
				day := a.engine.Today()
				if a.engine.RecordLogin(cmd.Context()) {
					a.printf("login credited for %s\n", day)
				} else {
					a.printf("already logged in on %s\n", day)
				}
				return nil
			})
		},
	}
}

func newGetCmd() *cobra.Command {
	var held int
	var rarity string
	cmd := &cobra.Command{
		Use:   "get <item>",
		Short: "Record an item pickup",
		Long: `Record an item pickup. --held is the held count of the item after the
pickup; 1 means the item was not held before and credits first-ownership
missions and gallery pages.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if held < 1 {
				return fmt.Errorf("--held must be at least 1")
			}
			return withApp(cmd, func(a *app) error {
				a.engine.RecordItemGet(cmd.Context(), model.Item{Code: args[0], Rarity: rarity, Held: held})
				a.printf("picked up %s (held %d)\n", args[0], held)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&held, "held", 1, "held count after the pickup")
	cmd.Flags().StringVar(&rarity, "rarity", "", "rarity tier (looked up in the catalog when empty)")
	return cmd
}

func newCatchCmd() *cobra.Command {
	var isNew bool
	cmd := &cobra.Command{
		Use:   "catch <monster>",
		Short: "Record a monster play",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				a.engine.RecordMonsterCatch(cmd.Context(), model.Monster{Code: args[0]}, isNew)
				if isNew {
					a.printf("met %s for the first time\n", args[0])
				} else {
					a.printf("played with %s\n", args[0])
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&isNew, "new", false, "first-ever encounter")
	return cmd
}

func newBuyMapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buy-map <page>",
		Short: "Record a map purchase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if !a.engine.RecordMapPurchase(cmd.Context(), args[0]) {
					return fmt.Errorf("unknown map %q", args[0])
				}
				a.printf("map %s owned\n", args[0])
				return nil
			})
		},
	}
}
