package sites

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"eventsScraper/internal/utils/logger/handlers/slogdiscard"
)

var errNotFound = errors.New("not found")

// stubFetcher отдаёт заранее заданные страницы и JSON по точному URL.
type stubFetcher struct {
	pages map[string]string
	json  map[string]string

	requested []string
	queries   []map[string]string
}

func (s *stubFetcher) Document(_ context.Context, rawURL string) (*goquery.Document, error) {
	s.requested = append(s.requested, rawURL)
	html, ok := s.pages[rawURL]
	if !ok {
		return nil, errNotFound
	}
	return mustDoc(nil, html, rawURL), nil
}

func (s *stubFetcher) JSON(_ context.Context, rawURL string, query map[string]string, out any) error {
	s.requested = append(s.requested, rawURL)
	s.queries = append(s.queries, query)
	body, ok := s.json[rawURL]
	if !ok {
		return errNotFound
	}
	return json.Unmarshal([]byte(body), out)
}

func discardLogger() *slog.Logger {
	return slogdiscard.NewDiscardLogger()
}

func mustDoc(t *testing.T, html, pageURL string) *goquery.Document {
	doc, err := parseDoc(html)
	if err != nil {
		if t != nil {
			t.Fatalf("parse fixture: %v", err)
		}
		panic(err)
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		panic(err)
	}
	doc.Url = u
	return doc
}

func TestFirstOf_RecoversPanickingTier(t *testing.T) {
	doc := mustDoc(t, "<html><body><p>x</p></body></html>", "https://example.com")

	got, ok := firstOf(doc,
		func(*goquery.Document) (string, bool) { panic("broken tier") },
		func(*goquery.Document) (string, bool) { return "", false },
		func(*goquery.Document) (string, bool) { return "third", true },
	)
	require.True(t, ok)
	require.Equal(t, "third", got)
}

func TestStrippedText(t *testing.T) {
	doc := mustDoc(t, `<div id="x">  Hello <b> big </b>
		world<script>var a = 1;</script><!-- note --></div>`, "https://example.com")

	sel := doc.Find("#x")
	require.Equal(t, "Hellobigworld", strippedText(sel))
	require.Equal(t, "Hello big world", joinedText(sel, " "))
}

func TestCleanDescription(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{in: "About This show is great", want: "This show is great"},
		{in: "Description: A night out", want: "A night out"},
		{in: "DETAILS: Bring friends", want: "Bring friends"},
		{in: "Plain text", want: "Plain text"},
		{in: "", want: ""},
	} {
		t.Run(tc.in, func(t *testing.T) {
			require.Equal(t, tc.want, cleanDescription(tc.in))
		})
	}
}

func TestSplitVenue(t *testing.T) {
	v, l := splitVenue("Grand Arena, GrandWest, Goodwood")
	require.Equal(t, "Grand Arena", v)
	require.Equal(t, "GrandWest, Goodwood", l)

	v, l = splitVenue("Artscape Theatre")
	require.Equal(t, "Artscape Theatre", v)
	require.Equal(t, "Artscape Theatre", l)
}

func TestResolveURL(t *testing.T) {
	base, _ := url.Parse("https://www.webtickets.co.za/v2/event.aspx?itemid=1")

	require.Equal(t, "https://www.webtickets.co.za/images/a.jpg", resolveURL(base, "/images/a.jpg"))
	require.Equal(t, "https://www.webtickets.co.za/v2/b.jpg", resolveURL(base, "b.jpg"))
	require.Equal(t, "https://cdn.example.com/c.jpg", resolveURL(base, "https://cdn.example.com/c.jpg"))
}

func TestValidImageURL(t *testing.T) {
	require.True(t, validImageURL("https://cdn.example.com/c.jpg"))
	require.False(t, validImageURL("/relative.jpg"))
	require.False(t, validImageURL("data:image/png;base64,AAAA"))
}

func TestFormatRand(t *testing.T) {
	require.Equal(t, "R250", formatRand(250))
	require.Equal(t, "R250.5", formatRand(250.5))
}
