package cmd

import (
	"github.com/spf13/cobra"
)

var replayCommand = &cobra.Command{
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd)
		if err != nil {
			return err
		}
		defer ws.Close()

		_, err = ws.Replay(cmd.Context())
		return err
	},
	Use:   "replay",
	Short: "Re-run the test list and compare it against the latest snapshot",
	Args:  cobra.NoArgs,
}
