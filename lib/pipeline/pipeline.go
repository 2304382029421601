package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"counciltax/lib/counciltax"
	"counciltax/lib/recordio"
	"counciltax/lib/telemetry"
	"counciltax/lib/textutil"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

// Source is a site adapter, see the directory and calculator scrapers.
type Source interface {
	Name() string
	Schema() counciltax.Schema
	Enumerate(ctx context.Context) ([]counciltax.Entity, error)
	Collect(ctx context.Context, entity counciltax.Entity) (counciltax.Record, error)
}

type Options struct {
	// progress lines are written here, nil discards them
	Progress io.Writer

	// when non-empty only entities whose name contains one of these are
	// collected
	Only []string
}

// Summary describes a finished run. Partial counts the written rows that
// have at least one band missing.
type Summary struct {
	Source   string
	Entities int
	Written  int
	Skipped  int
	Partial  int
	Duration time.Duration
}

// Run enumerates the source and writes one record per entity to sink.
// Entities that fail to collect are logged and skipped, enumeration and
// sink failures end the run.
func Run(ctx context.Context, source Source, sink recordio.Sink, opts Options) (Summary, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(attribute.String("source", source.Name()))

	start := time.Now()
	summary := Summary{Source: source.Name()}
	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}

	entities, err := source.Enumerate(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to enumerate entities")
		return summary, fmt.Errorf("enumerate: %w", err)
	}
	fmt.Fprintf(progress, "Found %d entities.\n", len(entities))

	if len(opts.Only) > 0 {
		entities = filterEntities(ctx, entities, opts.Only)
	}
	summary.Entities = len(entities)
	attrs := metric.WithAttributes(attribute.String("source", source.Name()))

	for i, entity := range entities {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(start)
			return summary, err
		}

		fmt.Fprintf(progress, "Processing %d/%d: %s\n", i+1, len(entities), entity.Name)

		record, err := source.Collect(ctx, entity)
		if err != nil {
			if ctx.Err() != nil {
				summary.Duration = time.Since(start)
				return summary, ctx.Err()
			}
			logSkip(ctx, entity, err)
			telemetry.EntityFailureCounter.Add(ctx, 1, attrs)
			summary.Skipped++
			continue
		}

		err = sink.WriteRecord(ctx, record)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to write record")
			summary.Duration = time.Since(start)
			return summary, fmt.Errorf("write %s: %w", entity.Name, err)
		}
		telemetry.RowsWrittenCounter.Add(ctx, 1, attrs)
		summary.Written++
		if len(record.MissingBands()) > 0 {
			summary.Partial++
		}
	}

	summary.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("written", summary.Written),
		attribute.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

func logSkip(ctx context.Context, entity counciltax.Entity, err error) {
	var extractErr *counciltax.ExtractionError
	if errors.As(err, &extractErr) {
		slog.WarnContext(ctx, "no charges found, skipping", "entity", entity.Name, "err", err)
		return
	}
	slog.ErrorContext(ctx, "failed to collect entity", "entity", entity.Name, "err", err)
}

func filterEntities(ctx context.Context, entities []counciltax.Entity, only []string) []counciltax.Entity {
	filtered := lo.Filter(entities, func(e counciltax.Entity, _ int) bool {
		return textutil.MatchName(e.Name, only)
	})

	names := lo.Map(entities, func(e counciltax.Entity, _ int) string {
		return e.Name
	})
	for _, term := range only {
		matched := lo.ContainsBy(filtered, func(e counciltax.Entity) bool {
			return textutil.MatchName(e.Name, []string{term})
		})
		if matched {
			continue
		}
		closest, _ := textutil.ClosestName(term, names)
		slog.WarnContext(ctx, "filter matched no entities", "filter", term, "closest", closest)
	}
	return filtered
}
