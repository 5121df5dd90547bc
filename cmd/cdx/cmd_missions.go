package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daviddao/critterdex/pkg/model"
	"github.com/daviddao/critterdex/pkg/reward"
)

func newMissionsCmd() *cobra.Command {
	var jsonOut, daily, ready bool
	cmd := &cobra.Command{
		Use:   "missions",
		Short: "List active missions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app) error {
				ms := filterMissions(a.engine.Missions(), daily, ready)
				if jsonOut {
					return a.printJSON(ms)
				}
				for _, m := range ms {
					a.printf("%s\n", missionLine(m))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "JSON output")
	cmd.Flags().BoolVar(&daily, "daily", false, "only daily missions")
	cmd.Flags().BoolVar(&ready, "ready", false, "only completed missions")
	return cmd
}

func filterMissions(ms []*model.Mission, daily, ready bool) []*model.Mission {
	out := ms[:0:0]
	for _, m := range ms {
		if daily && m.Kind != model.KindDaily {
			continue
		}
		if ready && !m.Completed() {
			continue
		}
		out = append(out, m)
	}
	return out
}

func missionLine(m *model.Mission) string {
	marker := "[ ]"
	if m.Completed() {
		marker = "[x]"
	}
	stage := ""
	if m.Staged() {
		stage = fmt.Sprintf(" stage %d/%d", m.StageIndex+1, len(m.Stages))
	}
	return fmt.Sprintf("%s %-22s %5d/%-5d %-6s%s  %s",
		marker, m.ID, m.Progress, m.Target, reward.Format(m.Reward), stage, m.Description)
}

func newClaimCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "claim <mission>",
		Short: "Claim a completed mission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				m, ok := a.engine.Mission(args[0])
				if !ok {
					return fmt.Errorf("no active mission %q", args[0])
				}
				if !m.Completed() {
					return fmt.Errorf("mission %s is not completed (%d/%d)", m.ID, m.Progress, m.Target)
				}
				res, _ := a.engine.Claim(cmd.Context(), m.ID)
				if jsonOut {
					return a.printJSON(res)
				}
				if res.Terminal {
					a.printf("claimed %s: %s (mission complete)\n", res.MissionID, reward.Format(res.Reward))
				} else {
					a.printf("claimed %s: %s (next: %s)\n", res.MissionID, reward.Format(res.Reward), res.Mission.Description)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "JSON output")
	return cmd
}
