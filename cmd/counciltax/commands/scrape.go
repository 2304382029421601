package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"counciltax/lib/configutil"
	configlibsql "counciltax/lib/configutil/libsql"
	"counciltax/lib/pipeline"
	"counciltax/lib/recordio"
	"counciltax/lib/recordio/archive"
	"counciltax/lib/restyutil"
	"counciltax/lib/scrapers/core"
	"counciltax/lib/serviceutil"
	"counciltax/lib/sources"
	"counciltax/lib/telemetry"
	"counciltax/lib/timezone"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const envPrefix = "COUNCILTAX_"

var scrapeFlags struct {
	kind             *string
	sourceUrl        *string
	calculationUrl   *string
	yearCode         *string
	output           *string
	authority        *string
	delay            *float64
	timeout          *float64
	userAgent        *string
	cloudflareBypass *bool
	archive          *string
	only             *[]string
	dumpHttp         *string
}

func init() {
	flags := scrapeCmd.Flags()
	scrapeFlags.kind = flags.String("kind", "", "The source kind, directory or calculator.")
	scrapeFlags.sourceUrl = flags.String("url", "", "The listing page or calculator form to enumerate.")
	scrapeFlags.calculationUrl = flags.String("calculation-url", "", "The endpoint calculator forms are posted to.")
	scrapeFlags.yearCode = flags.String("year", "", "The calculator year code.")
	scrapeFlags.output = flags.StringP("output", "o", "", "The csv file to write, it is overwritten.")
	scrapeFlags.authority = flags.String("authority", "", "The value written to the Council column.")
	scrapeFlags.delay = flags.Float64("delay", 0, "Seconds to wait after every request.")
	scrapeFlags.timeout = flags.Float64("timeout", 0, "Per request timeout in seconds.")
	scrapeFlags.userAgent = flags.String("user-agent", "", "The user agent to send.")
	scrapeFlags.cloudflareBypass = flags.Bool("cloudflare-bypass", false, "Wrap the http transport with a cloudflare bypass.")
	scrapeFlags.archive = flags.String("archive", "", "A sqlite file or libsql url to archive the run to.")
	scrapeFlags.only = flags.StringSlice("only", nil, "Only collect entities whose name contains one of these.")
	scrapeFlags.dumpHttp = flags.String("dump-http", "", "Write every http request and response to this directory (needs --debug).")
	rootCmd.AddCommand(scrapeCmd)
}

// applyFlags overlays the flags that were explicitly set onto the config.
func applyFlags(cmd *cobra.Command, args []string, cfg *sources.Config) {
	if len(args) > 0 {
		cfg.Preset = args[0]
	}
	flags := cmd.Flags()
	if flags.Changed("kind") {
		cfg.Kind = sources.Kind(*scrapeFlags.kind)
	}
	if flags.Changed("url") {
		cfg.SourceUrl = *scrapeFlags.sourceUrl
	}
	if flags.Changed("calculation-url") {
		cfg.CalculationUrl = *scrapeFlags.calculationUrl
	}
	if flags.Changed("year") {
		cfg.YearCode = *scrapeFlags.yearCode
	}
	if flags.Changed("output") {
		cfg.OutputPath = *scrapeFlags.output
	}
	if flags.Changed("authority") {
		cfg.AuthorityName = *scrapeFlags.authority
	}
	if flags.Changed("delay") {
		cfg.DelaySeconds = scrapeFlags.delay
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds = *scrapeFlags.timeout
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent = *scrapeFlags.userAgent
	}
	if flags.Changed("cloudflare-bypass") {
		cfg.CloudflareBypass = *scrapeFlags.cloudflareBypass
	}
	if flags.Changed("archive") {
		cfg.Archive = *scrapeFlags.archive
	}
}

func loadConfig(cmd *cobra.Command, args []string) (sources.Config, error) {
	cfg, err := configutil.ReadOptional[sources.Config](*configPath)
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", *configPath, err)
	}
	err = configutil.ApplyEnv(&cfg, envPrefix)
	if err != nil {
		return cfg, fmt.Errorf("read environment: %w", err)
	}
	applyFlags(cmd, args, &cfg)
	return cfg, nil
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [preset] [flags]",
	Short: "Scrapes a council tax site into a csv file.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cfg, err := loadConfig(cmd, args)
		if err != nil {
			serviceutil.Fatal("failed to load config", err)
		}
		preset, err := cfg.Resolve()
		if err != nil {
			serviceutil.Fatal("invalid run parameters", err)
		}
		slog.Debug("resolved run parameters", "preset", preset.Name, "kind", preset.Kind, "url", preset.SourceUrl)

		clientOpts := preset.ClientOptions()
		if *scrapeFlags.dumpHttp != "" {
			output, err := restyutil.NewFilesystemOutput(*scrapeFlags.dumpHttp)
			if err != nil {
				serviceutil.Fatal("failed to create http dump directory", err)
			}
			clientOpts.Instrument = output
		}
		client, err := core.NewClient(clientOpts)
		if err != nil {
			serviceutil.Fatal("failed to create http client", err)
		}
		source, err := preset.NewSource(client)
		if err != nil {
			serviceutil.Fatal("failed to create source", err)
		}

		sinks, closeArchive, err := openSinks(ctx, cfg, preset, source)
		if err != nil {
			serviceutil.Fatal("failed to open output", err)
		}
		defer closeArchive()

		perfCtx, stopPerf := context.WithCancel(ctx)
		telemetry.InstrumentPerfStats(perfCtx)
		summary, err := pipeline.Run(ctx, source, sinks, pipeline.Options{
			Progress: cmd.OutOrStdout(),
			Only:     *scrapeFlags.only,
		})
		stopPerf()

		closeErr := sinks.Close()
		if errors.Is(err, context.Canceled) {
			slog.Warn("scrape interrupted", "written", summary.Written, "output", preset.OutputPath)
			return
		}
		if err != nil {
			closeArchive()
			serviceutil.Fatal("scrape failed", err)
		}
		if closeErr != nil {
			closeArchive()
			serviceutil.Fatal("failed to close output", closeErr)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Data successfully saved to %s.\n", preset.OutputPath)
		renderSummary(out, preset, summary)
	},
}

func openSinks(ctx context.Context, cfg sources.Config, preset sources.Preset, source pipeline.Source) (recordio.MultiSink, func(), error) {
	csvWriter, err := recordio.CreateCSV(preset.OutputPath, source.Schema())
	if err != nil {
		return nil, nil, err
	}
	sinks := recordio.MultiSink{csvWriter}
	if cfg.Archive == "" {
		return sinks, func() {}, nil
	}

	archiveConfig := configlibsql.FromTarget(cfg.Archive)
	archiveConfig.AuthToken = cfg.ArchiveAuthToken
	arch, err := archive.Open(archiveConfig)
	if err != nil {
		csvWriter.Close()
		return nil, nil, err
	}
	runSink, err := arch.BeginRun(ctx, archive.RunInfo{
		Source:     preset.Name,
		Authority:  preset.Authority,
		YearCode:   preset.YearCode,
		OutputPath: preset.OutputPath,
		StartedAt:  timezone.Now(),
	}, source.Schema())
	if err != nil {
		csvWriter.Close()
		arch.Close()
		return nil, nil, err
	}
	slog.Info("archiving run", "target", cfg.Archive, "run_id", runSink.RunId())

	closeArchive := func() {
		err := arch.Close()
		if err != nil {
			slog.Warn("failed to close archive", "err", err)
		}
	}
	return append(sinks, runSink), closeArchive, nil
}

func renderSummary(out io.Writer, preset sources.Preset, summary pipeline.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendRows([]table.Row{
		{"Source", preset.Name},
		{"Authority", preset.Authority},
		{"Tax year", timezone.GetTaxYear(timezone.Now()).String()},
		{"Entities", summary.Entities},
		{"Written", summary.Written},
		{"Skipped", summary.Skipped},
		{"Partial", summary.Partial},
		{"Duration", summary.Duration.Round(time.Millisecond)},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
