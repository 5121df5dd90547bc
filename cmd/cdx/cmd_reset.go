package main

import (
	"time"

	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Regenerate daily missions if the day rolled over",
		Long: `Check the calendar day in the reference timezone and regenerate the
daily missions once per day. Every cdx command already performs this
check on start; reset reports what that check did and when the next
reset is due.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app) error {
				// Midnight may have passed since startup.
				reset := a.engine.ResetDailyIfNeeded(cmd.Context()) || a.reset
				if reset {
					a.printf("daily missions reset for %s\n", a.engine.Today())
				} else {
					a.printf("daily missions current for %s\n", a.engine.Today())
				}
				a.printf("next reset: %s\n", a.engine.NextReset().Local().Format(time.RFC3339))
				return nil
			})
		},
	}
}
