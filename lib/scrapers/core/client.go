package core

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"counciltax/lib/counciltax"
	"counciltax/lib/restyutil"
	"counciltax/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html/charset"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Client is the single http session used for a run. Cookies persist across
// requests so calculator sites keep their server-side session.
type Client struct {
	Http  *resty.Client
	Pacer Pacer
}

type ClientOptions struct {
	UserAgent string
	// zero means 30 seconds
	Timeout time.Duration
	// pause after every request
	Delay            time.Duration
	CloudflareBypass bool
	// raw http messages are written here when debug logging is on, may be nil
	Instrument restyutil.InstrumentOutput
}

func NewClient(opts ClientOptions) (*Client, error) {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	client.SetHeader("user-agent", userAgent)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Second * 30
	}
	client.SetTimeout(timeout)

	telemetry.InstrumentResty(client, "counciltax.scrapers.http")
	restyutil.InstrumentClient(client, opts.Instrument)

	return &Client{
		Http:  client,
		Pacer: Pacer{Delay: opts.Delay},
	}, nil
}

// Get fetches and parses a page.
func (c *Client) Get(ctx context.Context, link string) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "client:Get")
	defer span.End()

	return c.do(ctx, span, c.Http.R().SetContext(ctx), http.MethodGet, link)
}

// PostForm submits an application/x-www-form-urlencoded body and parses the
// resulting page.
func (c *Client) PostForm(ctx context.Context, link string, form map[string]string) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "client:PostForm")
	defer span.End()

	req := c.Http.R().
		SetContext(ctx).
		SetFormData(form)
	return c.do(ctx, span, req, http.MethodPost, link)
}

func (c *Client) do(ctx context.Context, span trace.Span, req *resty.Request, method, link string) (*goquery.Document, error) {
	span.SetAttributes(attribute.String("url", link))

	res, err := req.Execute(method, link)
	waitErr := c.Pacer.Wait(ctx)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, &counciltax.FetchError{Method: method, Url: link, Err: err}
	}
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		statusErr := &counciltax.FetchError{
			Method: method,
			Url:    link,
			Status: res.StatusCode(),
			Err:    fmt.Errorf("%s", res.Status()),
		}
		span.RecordError(statusErr)
		span.SetStatus(codes.Error, "unexpected status")
		return nil, statusErr
	}
	if waitErr != nil {
		return nil, waitErr
	}

	doc, err := parseDocument(res.Body(), res.Header().Get("Content-Type"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, &counciltax.FetchError{Method: method, Url: link, Err: err}
	}
	return doc, nil
}

// parseDocument decodes the body to utf-8 using the content type or the
// document's <meta> charset before handing it to goquery.
func parseDocument(body []byte, contentType string) (*goquery.Document, error) {
	// an empty page is a valid, empty document
	if len(body) == 0 {
		return goquery.NewDocumentFromReader(bytes.NewReader(nil))
	}
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return goquery.NewDocumentFromReader(reader)
}
