package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newToolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tool",
		Short: "Use, buy and inspect consumable tools",
	}
	cmd.AddCommand(newToolUseCmd(), newToolBuyCmd(), newToolStatusCmd())
	return cmd
}

func newToolUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <tool>",
		Short: "Consume one tool and start its effect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if !a.engine.UseTool(cmd.Context(), args[0]) {
					return fmt.Errorf("cannot use %s: unknown tool or none held", args[0])
				}
				secs, _ := a.engine.RemainingSeconds(cmd.Context(), args[0])
				a.printf("%s active for %ds\n", args[0], secs)
				return nil
			})
		},
	}
}

func newToolBuyCmd() *cobra.Command {
	var qty int
	cmd := &cobra.Command{
		Use:   "buy <tool>",
		Short: "Add tools to the inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if !a.engine.PurchaseTool(cmd.Context(), args[0], qty) {
					return fmt.Errorf("cannot buy %d of %s", qty, args[0])
				}
				a.printf("%s x%d (held %d)\n", args[0], qty, a.engine.Inventory()[args[0]])
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&qty, "qty", 1, "quantity")
	return cmd
}

type toolStatus struct {
	Tool      string `json:"tool"`
	Held      int    `json:"held"`
	Active    bool   `json:"active"`
	Remaining int64  `json:"remaining_seconds,omitempty"`
}

func newToolStatusCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show inventory and running effects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app) error {
				inv := a.engine.Inventory()
				var rows []toolStatus
				for _, id := range a.engine.Data().ToolIDs() {
					secs, active := a.engine.RemainingSeconds(cmd.Context(), id)
					rows = append(rows, toolStatus{Tool: id, Held: inv[id], Active: active, Remaining: secs})
				}
				if jsonOut {
					return a.printJSON(rows)
				}
				for _, r := range rows {
					state := "inactive"
					if r.Active {
						state = fmt.Sprintf("active %ds", r.Remaining)
					}
					a.printf("  %-14s held=%-3d %s\n", r.Tool, r.Held, state)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "JSON output")
	return cmd
}
