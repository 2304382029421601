package commands

import (
	"os"

	"counciltax/lib/counciltax"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(bandsCmd)
}

var bandsCmd = &cobra.Command{
	Use:   "bands",
	Short: "Prints the council tax bands and the csv column each is written to.",
	Run: func(cmd *cobra.Command, args []string) {
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Band", "Fraction of D", "Column"})

		for _, b := range counciltax.Bands {
			t.AppendRow(table.Row{b.Code, b.Fraction, b.Column()})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
