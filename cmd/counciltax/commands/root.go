package commands

import (
	"context"
	"fmt"
	"os"

	"counciltax/lib/telemetry"

	"github.com/spf13/cobra"
)

var configPath *string
var debug *bool

var rootCmd = &cobra.Command{
	Use:   "counciltax",
	Short: "counciltax scrapes council tax band charges into csv files.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*debug)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "counciltax.json5", "The config file to read run parameters from.")
	debug = rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging.")
}

func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return err
}
