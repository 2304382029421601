package directory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"counciltax/lib/counciltax"
	"counciltax/lib/scrapers/core"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const listingPage = `<html><body>
<ul class="list list--rich list--group-col2">
	<li class="list__item"><a class="list__link" href="/directory-record/101/adderbury">Adderbury</a></li>
	<li class="list__item"><a class="list__link" href="/directory-record/102/ambrosden">
		Ambrosden
	</a></li>
	<li class="list__item"><a class="list__link" href="https://elsewhere.example/arncott">Arncott</a></li>
</ul>
</body></html>`

const detailPage = `<html><body>
<dl class="list list--definition">
	<dt class="list--definition__heading">Location</dt>
	<dd class="list--definition__content">Adderbury</dd>
	<dt class="list--definition__heading">Band A (6/9)</dt>
	<dd class="list--definition__content"> £1,520.33 </dd>
	<dt class="list--definition__heading">Band D (9/9)</dt>
	<dd class="list--definition__content">£2,280.50</dd>
	<dt class="list--definition__heading">Information</dt>
	<dd class="list--definition__content">Includes parish precept</dd>
</dl>
</body></html>`

func newTestClient(t *testing.T) *core.Client {
	t.Helper()
	client, err := core.NewClient(core.ClientOptions{})
	require.NoError(t, err)
	return client
}

func parse(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestEnumerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingPage)
	}))
	defer server.Close()

	source, err := NewSource(newTestClient(t), Options{
		ListingUrl: server.URL + "/directory/149/council-tax-charges",
		Authority:  "Cherwell District Council",
	})
	require.NoError(t, err)

	entities, err := source.Enumerate(context.Background())
	require.NoError(t, err)

	expected := []counciltax.Entity{
		{Name: "Adderbury", Url: server.URL + "/directory-record/101/adderbury", Authority: "Cherwell District Council"},
		{Name: "Ambrosden", Url: server.URL + "/directory-record/102/ambrosden", Authority: "Cherwell District Council"},
		{Name: "Arncott", Url: "https://elsewhere.example/arncott", Authority: "Cherwell District Council"},
	}
	if diff := cmp.Diff(expected, entities); diff != "" {
		t.Fatal("entities mismatch (-want +got):\n", diff)
	}
}

func TestEnumerateMissingList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>Page moved</p></body></html>`)
	}))
	defer server.Close()

	source, err := NewSource(newTestClient(t), Options{ListingUrl: server.URL})
	require.NoError(t, err)

	_, err = source.Enumerate(context.Background())
	var extractErr *counciltax.ExtractionError
	require.True(t, errors.As(err, &extractErr))
	require.Equal(t, DefaultSelectors.List, extractErr.Selector)
	require.Equal(t, server.URL, extractErr.Url)
}

func TestEnumerateFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	source, err := NewSource(newTestClient(t), Options{ListingUrl: server.URL})
	require.NoError(t, err)

	_, err = source.Enumerate(context.Background())
	var fetchErr *counciltax.FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, http.StatusServiceUnavailable, fetchErr.Status)
}

func TestExtractEntitiesEmptyList(t *testing.T) {
	doc := parse(t, `<ul class="list list--rich list--group-col2"></ul>`)
	entities, err := ExtractEntities(context.Background(), doc, nil, Selectors{})
	require.NoError(t, err)
	require.Empty(t, entities)
}

func TestExtractBands(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected map[string]string
	}{
		{
			name: "keeps band headings only",
			body: detailPage,
			expected: map[string]string{
				"Band A (6/9)": "£1,520.33",
				"Band D (9/9)": "£2,280.50",
			},
		},
		{
			name: "unpaired headings are dropped",
			body: `<dl class="list list--definition">
				<dt class="list--definition__heading">Band A (6/9)</dt>
				<dd class="list--definition__content">100.00</dd>
				<dt class="list--definition__heading">Band B (7/9)</dt>
			</dl>`,
			expected: map[string]string{
				"Band A (6/9)": "100.00",
			},
		},
		{
			name:     "empty list",
			body:     `<dl class="list list--definition"></dl>`,
			expected: map[string]string{},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			bands, err := ExtractBands(parse(t, test.body), Selectors{})
			require.NoError(t, err)
			if diff := cmp.Diff(test.expected, bands); diff != "" {
				t.Fatal("bands mismatch (-want +got):\n", diff)
			}
		})
	}
}

func TestExtractBandsMissingList(t *testing.T) {
	_, err := ExtractBands(parse(t, `<html><body><dl class="other"></dl></body></html>`), Selectors{})
	var extractErr *counciltax.ExtractionError
	require.True(t, errors.As(err, &extractErr))
	require.Equal(t, DefaultSelectors.Definition, extractErr.Selector)
}

func TestCollectEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	source, err := NewSource(newTestClient(t), Options{ListingUrl: server.URL})
	require.NoError(t, err)

	_, err = source.Collect(context.Background(), counciltax.Entity{
		Name: "Adderbury",
		Url:  server.URL + "/record/1",
	})
	var extractErr *counciltax.ExtractionError
	require.True(t, errors.As(err, &extractErr))
	var fetchErr *counciltax.FetchError
	require.False(t, errors.As(err, &fetchErr))
}

func TestCollect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/directory-record/101/adderbury":
			fmt.Fprint(w, detailPage)
		default:
			fmt.Fprint(w, `<html><body>No charges published.</body></html>`)
		}
	}))
	defer server.Close()

	source, err := NewSource(newTestClient(t), Options{
		ListingUrl: server.URL,
		Authority:  "Cherwell District Council",
	})
	require.NoError(t, err)

	entity := counciltax.Entity{
		Name:      "Adderbury",
		Url:       server.URL + "/directory-record/101/adderbury",
		Authority: "Cherwell District Council",
	}
	record, err := source.Collect(context.Background(), entity)
	require.NoError(t, err)

	expected := []string{
		"Adderbury", "£1,520.33", "", "", "£2,280.50", "", "", "", "",
		"Cherwell District Council",
	}
	if diff := cmp.Diff(expected, record.Values(source.Schema())); diff != "" {
		t.Fatal("row mismatch (-want +got):\n", diff)
	}
	require.Equal(t, entity.Url, record.Get("url"))

	_, err = source.Collect(context.Background(), counciltax.Entity{
		Name: "Ambrosden",
		Url:  server.URL + "/directory-record/102/ambrosden",
	})
	var extractErr *counciltax.ExtractionError
	require.True(t, errors.As(err, &extractErr))
	require.Equal(t, server.URL+"/directory-record/102/ambrosden", extractErr.Url)
}
