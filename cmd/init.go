package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"pingcap.com/rere/internal/config"
)

var initCommand = &cobra.Command{
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")

		var opts config.InitOptions
		opts.TestFile, _ = cmd.Flags().GetString("test-file")
		opts.SnapshotDir, _ = cmd.Flags().GetString("snapshot-dir")
		opts.History, _ = cmd.Flags().GetInt("history")
		if cmd.Flags().Changed("overwrite") {
			v, _ := cmd.Flags().GetBool("overwrite")
			opts.Overwrite = &v
		}
		if cmd.Flags().Changed("fail-fast") {
			v, _ := cmd.Flags().GetBool("fail-fast")
			opts.FailFast = &v
		}

		if _, err := config.Init(path, opts); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized config at %s\n", path)
		return nil
	},
	Use:   "init",
	Short: "Create a config, an empty test list and the snapshot directory",
	Args:  cobra.NoArgs,
}

func init() {
	initCommand.Flags().String("test-file", "", "test list path, relative to the config directory (default \""+config.DefaultTestFile+"\")")
	initCommand.Flags().String("snapshot-dir", "", "snapshot directory, relative to the config directory (default \""+config.DefaultSnapshotDir+"\")")
	initCommand.Flags().Int("history", 0, fmt.Sprintf("number of runs kept in the history (default %d)", config.DefaultHistory))
	initCommand.Flags().Bool("overwrite", config.DefaultOverwrite, "reuse one snapshot file instead of keeping a history of snapshots")
	initCommand.Flags().Bool("fail-fast", config.DefaultFailFast, "stop replaying at the first difference")
}
