package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"pingcap.com/rere/internal"
)

var cleanCommand = &cobra.Command{
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts internal.CleanOptions
		opts.All, _ = cmd.Flags().GetBool("all")
		opts.Snapshots, _ = cmd.Flags().GetBool("snapshots")
		opts.Config, _ = cmd.Flags().GetBool("reset-config")

		var what string
		switch {
		case opts.All:
			what = "the config, the test list and every snapshot"
		case opts.Snapshots:
			what = "every snapshot"
		case opts.Config:
			what = "the config settings and history"
		default:
			return fmt.Errorf("nothing to clean: pass --all, --snapshots or --reset-config")
		}

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			fmt.Fprintf(cmd.OutOrStdout(), "This removes %s. Continue? [y/N] ", what)
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			answer = strings.ToLower(strings.TrimSpace(answer))
			if answer != "y" && answer != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
				return nil
			}
		}

		ws, err := openWorkspace(cmd)
		if err != nil {
			return err
		}
		defer ws.Close()
		return ws.Clean(opts)
	},
	Use:   "clean",
	Short: "Remove snapshots, reset the config or delete the whole workspace",
	Args:  cobra.NoArgs,
}

func init() {
	cleanCommand.Flags().Bool("all", false, "remove the config, the test list and all snapshots")
	cleanCommand.Flags().Bool("snapshots", false, "remove all snapshots and the recording history")
	cleanCommand.Flags().Bool("reset-config", false, "reset settings to their defaults")
	cleanCommand.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}
