package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"counciltax/lib/counciltax"
	"counciltax/lib/htmlutil"
	"counciltax/lib/scrapers/core"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Selectors locate the listing and the definition list on a directory
// site. Empty fields take the defaults from DefaultSelectors.
type Selectors struct {
	List       string
	Link       string
	Definition string
	Heading    string
	Content    string
}

var DefaultSelectors = Selectors{
	List:       "ul.list.list--rich.list--group-col2",
	Link:       "li.list__item a.list__link",
	Definition: "dl.list.list--definition",
	Heading:    "dt.list--definition__heading",
	Content:    "dd.list--definition__content",
}

func (s Selectors) withDefaults() Selectors {
	if s.List == "" {
		s.List = DefaultSelectors.List
	}
	if s.Link == "" {
		s.Link = DefaultSelectors.Link
	}
	if s.Definition == "" {
		s.Definition = DefaultSelectors.Definition
	}
	if s.Heading == "" {
		s.Heading = DefaultSelectors.Heading
	}
	if s.Content == "" {
		s.Content = DefaultSelectors.Content
	}
	return s
}

type Options struct {
	ListingUrl string
	Authority  string
	Selectors  Selectors
}

// Source scrapes sites that publish a listing page linking to one detail page
// per parish, each with the band charges in a definition list.
type Source struct {
	client    *core.Client
	listing   *url.URL
	authority string
	selectors Selectors
}

func NewSource(client *core.Client, opts Options) (*Source, error) {
	if opts.ListingUrl == "" {
		return nil, fmt.Errorf("listing url is required")
	}
	listing, err := url.Parse(opts.ListingUrl)
	if err != nil {
		return nil, fmt.Errorf("parse listing url: %w", err)
	}
	return &Source{
		client:    client,
		listing:   listing,
		authority: opts.Authority,
		selectors: opts.Selectors.withDefaults(),
	}, nil
}

func (s *Source) Name() string {
	return "directory"
}

func (s *Source) Schema() counciltax.Schema {
	return counciltax.CouncilLast()
}

func (s *Source) Enumerate(ctx context.Context) ([]counciltax.Entity, error) {
	ctx, span := tracer.Start(ctx, "Enumerate")
	defer span.End()

	link := s.listing.String()
	doc, err := s.client.Get(ctx, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch listing")
		return nil, err
	}

	entities, err := ExtractEntities(ctx, doc, s.listing, s.selectors)
	if err != nil {
		var extractErr *counciltax.ExtractionError
		if errors.As(err, &extractErr) {
			extractErr.Url = link
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to find listing")
		return nil, err
	}
	for i := range entities {
		entities[i].Authority = s.authority
	}
	span.SetAttributes(attribute.Int("entities", len(entities)))
	return entities, nil
}

// ExtractEntities reads the link list, hrefs are resolved against base.
func ExtractEntities(ctx context.Context, doc *goquery.Document, base *url.URL, selectors Selectors) ([]counciltax.Entity, error) {
	selectors = selectors.withDefaults()

	list := doc.Find(selectors.List).First()
	if list.Length() == 0 {
		return nil, &counciltax.ExtractionError{Selector: selectors.List}
	}

	anchors := htmlutil.GetAnchors(ctx, base, list.Find(selectors.Link))
	entities := make([]counciltax.Entity, 0, len(anchors))
	for _, a := range anchors {
		entities = append(entities, counciltax.Entity{
			Name: a.Name,
			Url:  a.Href,
		})
	}
	return entities, nil
}

func (s *Source) Collect(ctx context.Context, entity counciltax.Entity) (counciltax.Record, error) {
	ctx, span := tracer.Start(ctx, "Collect")
	defer span.End()
	span.SetAttributes(
		attribute.String("entity", entity.Name),
		attribute.String("url", entity.Url),
	)

	doc, err := s.client.Get(ctx, entity.Url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch detail page")
		return nil, err
	}

	bands, err := ExtractBands(doc, s.selectors)
	if err != nil {
		var extractErr *counciltax.ExtractionError
		if errors.As(err, &extractErr) {
			extractErr.Url = entity.Url
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to find definition list")
		return nil, err
	}

	record := counciltax.NewRecord(entity)
	record.Set("url", entity.Url)
	for heading, value := range bands {
		record.Set(heading, value)
	}
	if missing := record.MissingBands(); len(missing) > 0 {
		slog.DebugContext(ctx, "detail page is missing bands", "entity", entity.Name, "missing", len(missing))
	}
	return record, nil
}

// ExtractBands pairs the headings and contents of the definition list in
// document order and keeps the ones whose heading mentions a band. Values
// are kept verbatim apart from trimming.
func ExtractBands(doc *goquery.Document, selectors Selectors) (map[string]string, error) {
	selectors = selectors.withDefaults()

	dl := doc.Find(selectors.Definition).First()
	if dl.Length() == 0 {
		return nil, &counciltax.ExtractionError{Selector: selectors.Definition}
	}

	headings := dl.Find(selectors.Heading)
	contents := dl.Find(selectors.Content)
	count := min(headings.Length(), contents.Length())

	bands := make(map[string]string, count)
	for i := 0; i < count; i++ {
		heading := htmlutil.CleanText(headings.Eq(i).Text())
		if !strings.Contains(heading, "Band") {
			continue
		}
		bands[heading] = htmlutil.Text(contents.Eq(i))
	}
	return bands, nil
}
