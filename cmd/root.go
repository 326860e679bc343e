package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"pingcap.com/rere/internal"
	"pingcap.com/rere/internal/config"
	"pingcap.com/rere/internal/snapshot/encoding"
)

const version = "1.0.0"

var rootCommand = &cobra.Command{
	Use:           "rere [options] [commands]",
	Short:         "Records shell command outputs and replays them as regression tests",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetLevel(log.WarnLevel)
		if v, _ := cmd.Flags().GetBool("verbose"); v {
			log.SetLevel(log.DebugLevel)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if b, _ := cmd.Flags().GetBool("version"); b {
			fmt.Fprintf(cmd.OutOrStdout(), "version %s\n", version)
			return nil
		}
		return cmd.Help()
	},
}

func init() {
	rootCommand.AddCommand(initCommand)
	rootCommand.AddCommand(recordCommand)
	rootCommand.AddCommand(replayCommand)
	rootCommand.AddCommand(cleanCommand)
	rootCommand.AddCommand(showCommand)
	rootCommand.PersistentFlags().StringP("config", "c", config.DefaultPath, "path to the rere config file")
	rootCommand.PersistentFlags().BoolP("verbose", "v", false, "log debug output")
	rootCommand.Flags().BoolP("version", "V", false, "version")
}

//Execute root command entrypoint
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCommand.ExecuteContext(ctx)
	if err != nil {
		log.WithField("class", encoding.Classify(err)).Error(err)
	}
	return err
}

func openWorkspace(cmd *cobra.Command) (*internal.Workspace, error) {
	path, _ := cmd.Flags().GetString("config")
	return internal.OpenWorkspace(path, internal.WithOutput(cmd.OutOrStdout()))
}
