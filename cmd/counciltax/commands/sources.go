package commands

import (
	"os"

	"counciltax/lib/sources"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Prints the built-in source presets.",
	Run: func(cmd *cobra.Command, args []string) {
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Preset", "Kind", "Authority", "Source", "Output", "Delay"})

		for _, p := range sources.Presets {
			t.AppendRow(table.Row{p.Name, p.Kind, p.Authority, p.SourceUrl, p.OutputPath, p.Delay})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
