package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/blazeboard/internal/api/response"
)

func newRegisterCmd() *cobra.Command {
	var name, team string

	cmd := &cobra.Command{
		Use:   "register <rfid>",
		Short: "Register a player, or rename/move an existing one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"rfid": args[0], "name": name, "team": team}
			var result response.Success

			if err := client.Post(cmd.Context(), "/api/register", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&team, "team", "", "Team: team1 or team2 (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("team")

	return cmd
}

func newRegisterExternalCmd() *cobra.Command {
	var name, email, mobile, college, team string

	cmd := &cobra.Command{
		Use:   "register-external",
		Short: "Sign up a player outside the venue terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"name":    name,
				"email":   email,
				"mobile":  mobile,
				"college": college,
				"team":    team,
			}
			var result response.ExternalRegistered

			if err := client.Post(cmd.Context(), "/api/register_external", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&mobile, "mobile", "", "10-digit mobile number (required)")
	cmd.Flags().StringVar(&college, "college", "", "College")
	cmd.Flags().StringVar(&team, "team", "", "Team: team1 or team2 (required)")
	for _, f := range []string{"name", "email", "mobile", "team"} {
		_ = cmd.MarkFlagRequired(f)
	}

	return cmd
}

func newPlayerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "player <rfid>",
		Short: "Show a player's full stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.PlayerDetail

			if err := client.Get(cmd.Context(), "/api/players/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <rfid>",
		Short: "Remove a player and their history from the roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post(cmd.Context(), "/api/remove_player", map[string]string{"rfid": args[0]}, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage(fmt.Sprintf("Removed %s", args[0]))
			return nil
		},
	}
}

func newRegistryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "registry",
		Short: "List every registered RFID with name and team",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result map[string]response.RegistryEntry

			if err := client.Get(cmd.Context(), "/api/registry", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newCandidatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "candidates",
		Short: "List externally registered players",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Candidates

			if err := client.Get(cmd.Context(), "/api/registered_candidates", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
