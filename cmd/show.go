package cmd

import (
	"github.com/spf13/cobra"
)

var showCommand = &cobra.Command{
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd)
		if err != nil {
			return err
		}
		defer ws.Close()

		noValidate, _ := cmd.Flags().GetBool("no-validate")
		return ws.Show(cmd.OutOrStdout(), !noValidate)
	},
	Use:   "show",
	Short: "Print the fields of the latest snapshot",
	Args:  cobra.NoArgs,
}

func init() {
	showCommand.Flags().Bool("no-validate", false, "skip field validation while reading")
}
