package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var recordCommand = &cobra.Command{
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd)
		if err != nil {
			return err
		}
		defer ws.Close()

		if _, err := ws.Record(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Recording completed successfully")
		return nil
	},
	Use:   "record",
	Short: "Run every command of the test list and snapshot its outputs",
	Args:  cobra.NoArgs,
}
