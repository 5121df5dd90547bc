package main

import (
	"github.com/spf13/cobra"

	"github.com/daviddao/critterdex/pkg/model"
)

func newWalletCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Show local wallet balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app) error {
				// Grants dispatched by this process land before reading.
				a.engine.Close()
				bal, xp, err := a.store.Wallet().Balances(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return a.printJSON(map[string]interface{}{
						"soft":    bal[model.CurrencySoft],
						"premium": bal[model.CurrencyPremium],
						"xp":      xp,
						"remote":  a.cfg.LedgerURL != "",
					})
				}
				if a.cfg.LedgerURL != "" {
					a.printf("note: grants go to %s; local balances only\n", a.cfg.LedgerURL)
				}
				a.printf("soft:    %d\npremium: %d\nxp:      %d\n",
					bal[model.CurrencySoft], bal[model.CurrencyPremium], xp)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "JSON output")
	return cmd
}
