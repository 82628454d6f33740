package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/blazeboard/internal/api/response"
)

func newKillCmd() *cobra.Command {
	return newEventCmd("kill", "Record a kill for a player", "/api/kill")
}

func newDeathCmd() *cobra.Command {
	return newEventCmd("death", "Record a death for a player", "/api/death")
}

func newEventCmd(use, short, path string) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   use + " <rfid>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}

			req := map[string]string{"rfid": args[0]}
			for range count {
				if err := client.Post(cmd.Context(), path, req, nil); err != nil {
					return err
				}
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage(fmt.Sprintf("Recorded %d %s(s) for %s", count, use, args[0]))
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of events to record")

	return cmd
}

func newLeaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "leaderboard",
		Aliases: []string{"players"},
		Short:   "Show the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Leaderboard

			if err := client.Get(cmd.Context(), "/api/players", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end",
		Short: "End the match and compute the victory summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Success

			if err := client.Post(cmd.Context(), "/api/end_match", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the match is running or ended",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.MatchStatus

			if err := client.Get(cmd.Context(), "/api/match_status", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newVictoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "victory",
		Short: "Show the victory summary of the ended match",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Victory

			if err := client.Get(cmd.Context(), "/api/victory_data", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Zero all counters and clear the match result, keeping the roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Success

			if err := client.Post(cmd.Context(), "/api/reset", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newClearTeamCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "clear-team <team1|team2>",
		Short:     "Remove every player on a team",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"team1", "team2"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post(cmd.Context(), "/api/clear_team", map[string]string{"team": args[0]}, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage(fmt.Sprintf("Cleared %s", args[0]))
			return nil
		},
	}
}
