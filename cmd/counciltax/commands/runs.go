package commands

import (
	"os"
	"time"

	configlibsql "counciltax/lib/configutil/libsql"
	"counciltax/lib/recordio/archive"
	"counciltax/lib/serviceutil"
	"counciltax/lib/timezone"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runsLimit *int
var runsAuthToken *string

func init() {
	runsLimit = runsCmd.Flags().Int("limit", 20, "The number of runs to show.")
	runsAuthToken = runsCmd.Flags().String("auth-token", "", "The libsql auth token, for remote archives.")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs <archive>",
	Short: "Prints the most recent runs recorded in an archive.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := configlibsql.FromTarget(args[0])
		config.AuthToken = *runsAuthToken
		arch, err := archive.Open(config)
		if err != nil {
			serviceutil.Fatal("failed to open archive", err)
		}
		defer arch.Close()

		runs, err := arch.Runs(cmd.Context(), *runsLimit)
		if err != nil {
			serviceutil.Fatal("failed to list runs", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Run", "Source", "Authority", "Year", "Output", "Started", "Rows"})

		for _, r := range runs {
			started := time.Unix(r.StartedAt, 0).In(timezone.Location).Format(time.DateTime)
			var rows any = r.RowCount
			if !r.FinishedAt.Valid {
				rows = "unfinished"
			}
			t.AppendRow(table.Row{r.ID, r.Source, r.Authority, r.YearCode, r.OutputPath, started, rows})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
