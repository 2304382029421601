package htmlutil

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	require.Equal(t, "Band A (6/9)", CleanText("\n\t Band   A\n (6/9) ​"))
	require.Equal(t, "", CleanText("  \n "))
}

func TestGetAnchors(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<ul>
			<li><a href="/directory-record/1/adderbury">  Adderbury
			</a></li>
			<li><a href="https://other.example/x">Ambrosden</a></li>
		</ul>`))
	require.NoError(t, err)

	base, err := url.Parse("https://www.cherwell.gov.uk/directory/149/council-tax-charges")
	require.NoError(t, err)

	anchors := GetAnchors(context.Background(), base, doc.Find("a"))
	expected := []Anchor{
		{Name: "Adderbury", Href: "https://www.cherwell.gov.uk/directory-record/1/adderbury"},
		{Name: "Ambrosden", Href: "https://other.example/x"},
	}
	if diff := cmp.Diff(expected, anchors); diff != "" {
		t.Fatal("anchors mismatch (-want +got):\n", diff)
	}
}
