package calculator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"counciltax/lib/counciltax"
	"counciltax/lib/htmlutil"
	"counciltax/lib/scrapers/core"
	"counciltax/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

const (
	DefaultSelectName = "PARISH"
	DefaultTotalLabel = "Total"
)

type Options struct {
	// page holding the parish <select>
	FormUrl string
	// endpoint the band form is posted to
	CalculationUrl string
	YearCode       string
	Authority      string
	SelectName     string
	TotalLabel     string
}

// Source scrapes the council tax calculator sites, one form post per parish
// and band against a single server-side session.
type Source struct {
	client *core.Client
	opts   Options
}

func NewSource(client *core.Client, opts Options) (*Source, error) {
	if opts.FormUrl == "" {
		return nil, fmt.Errorf("form url is required")
	}
	if opts.CalculationUrl == "" {
		return nil, fmt.Errorf("calculation url is required")
	}
	if opts.YearCode == "" {
		return nil, fmt.Errorf("year code is required")
	}
	if opts.SelectName == "" {
		opts.SelectName = DefaultSelectName
	}
	if opts.TotalLabel == "" {
		opts.TotalLabel = DefaultTotalLabel
	}
	return &Source{client: client, opts: opts}, nil
}

func (s *Source) Name() string {
	return "calculator"
}

func (s *Source) Schema() counciltax.Schema {
	return counciltax.CouncilFirst()
}

func (s *Source) Enumerate(ctx context.Context) ([]counciltax.Entity, error) {
	ctx, span := tracer.Start(ctx, "Enumerate")
	defer span.End()

	doc, err := s.client.Get(ctx, s.opts.FormUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch calculator form")
		return nil, err
	}

	entities, err := ExtractOptions(doc, s.opts.SelectName)
	if err != nil {
		var extractErr *counciltax.ExtractionError
		if errors.As(err, &extractErr) {
			extractErr.Url = s.opts.FormUrl
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to find select")
		return nil, err
	}
	for i := range entities {
		entities[i].Authority = s.opts.Authority
	}
	span.SetAttributes(attribute.Int("entities", len(entities)))
	return entities, nil
}

// ExtractOptions turns every <option> of the named <select> into an entity.
func ExtractOptions(doc *goquery.Document, selectName string) ([]counciltax.Entity, error) {
	selector := fmt.Sprintf("select[name=%q]", selectName)
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, &counciltax.ExtractionError{Selector: selector}
	}

	options := sel.Find("option")
	entities := make([]counciltax.Entity, 0, options.Length())
	options.Each(func(_ int, option *goquery.Selection) {
		entities = append(entities, counciltax.Entity{
			Code: option.AttrOr("value", ""),
			Name: htmlutil.Text(option),
		})
	})
	return entities, nil
}

// Collect posts the calculation form once per band. A band that fails to
// fetch or has no total is logged and left out of the record, the record is
// returned regardless.
func (s *Source) Collect(ctx context.Context, entity counciltax.Entity) (counciltax.Record, error) {
	ctx, span := tracer.Start(ctx, "Collect")
	defer span.End()
	span.SetAttributes(
		attribute.String("entity", entity.Name),
		attribute.String("code", entity.Code),
	)

	record := counciltax.NewRecord(entity)
	for _, band := range counciltax.Bands {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		total, err := s.collectBand(ctx, entity, band)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.WarnContext(
				ctx, "skipping band",
				"entity", entity.Name,
				"band", band.Code,
				"err", err,
			)
			telemetry.BandFailureCounter.Add(ctx, 1, metric.WithAttributes(
				attribute.String("band", band.Code),
			))
			span.AddEvent("band failed")
			continue
		}
		record.Set(band.Column(), total)
	}
	return record, nil
}

func (s *Source) collectBand(ctx context.Context, entity counciltax.Entity, band counciltax.Band) (string, error) {
	doc, err := s.client.PostForm(ctx, s.opts.CalculationUrl, map[string]string{
		"MODULE": "Calculation",
		"YEAR":   s.opts.YearCode,
		"PARISH": entity.Code,
		"FACTOR": band.Code,
		"Submit": "Submit",
	})
	if err != nil {
		return "", err
	}
	return ExtractTotal(doc, s.opts.TotalLabel)
}

// ExtractTotal finds the cell labeled with label and returns the cleaned
// amount held in the cell that follows it.
func ExtractTotal(doc *goquery.Document, label string) (string, error) {
	labelCell := doc.Find("div.celldiv").FilterFunction(func(_ int, cell *goquery.Selection) bool {
		return strings.TrimSpace(cell.Text()) == label
	}).First()
	if labelCell.Length() == 0 {
		return "", &counciltax.FieldNotFound{Field: label}
	}

	valueCell := labelCell.NextAllFiltered("div.celldiv").First()
	if valueCell.Length() == 0 {
		return "", &counciltax.FieldNotFound{Field: label + " value"}
	}
	return counciltax.CleanAmount(valueCell.Text()), nil
}
