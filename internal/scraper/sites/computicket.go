package sites

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"eventsScraper/internal/dateparse"
	"eventsScraper/internal/models/domain"
)

// Computicket извлекает события со страниц computicket.com.
type Computicket struct {
	logger  *slog.Logger
	fetcher Fetcher
}

func NewComputicket(logger *slog.Logger, fetcher Fetcher) *Computicket {
	return &Computicket{logger: logger, fetcher: fetcher}
}

func (c *Computicket) Source() domain.Source {
	return domain.SourceComputicket
}

func (c *Computicket) Extract(ctx context.Context, url string) (*domain.EventDetails, error) {
	op := "Computicket.Extract()"

	doc, err := c.fetcher.Document(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ParseComputicket(doc, url), nil
}

var computicketVenueRegions = []string{"south africa", "limpopo", "cape town", "johannesburg"}

// ParseComputicket разбирает загруженную страницу события Computicket.
func ParseComputicket(doc *goquery.Document, eventURL string) *domain.EventDetails {
	title, ok := firstOf(doc,
		func(doc *goquery.Document) (string, bool) {
			t := strippedText(doc.Find("h1.mt-4").First())
			return t, t != ""
		},
		metaContent(`meta[property="og:title"]`),
	)
	if !ok {
		title = domain.NoTitle
	}

	description, _ := firstOf(doc, computicketDescription)

	venue, location := domain.VenueNotSpecified, domain.LocationNotSpecified
	if pair, ok := firstOf(doc, computicketVenue); ok {
		venue, location = pair[0], pair[1]
	}

	start, end := computicketDates(doc)

	image, _ := firstOf(doc, computicketImage)

	return &domain.EventDetails{
		Title:       title,
		Description: description,
		Venue:       venue,
		Location:    location,
		StartDate:   start,
		EndDate:     end,
		Prices:      computicketPrices(doc),
		ImageURL:    image,
		EventURL:    eventURL,
		Source:      domain.SourceComputicket,
		RawData: map[string]any{
			"title":    title,
			"venue":    venue,
			"location": location,
		},
	}
}

// computicketDescription — первый абзац длиннее 20 символов, не похожий на служебную строку,
// без ведущих "About", "Description:" и "Details:".
func computicketDescription(doc *goquery.Document) (string, bool) {
	var found string
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strippedText(p)
		if len(text) > 20 &&
			!strings.Contains(text, "Event") &&
			!strings.Contains(text, "Date:") &&
			!strings.Contains(text, "Time:") {
			found = cleanDescription(text)
			return false
		}
		return true
	})
	return found, found != ""
}

func computicketVenue(doc *goquery.Document) ([2]string, bool) {
	var pair [2]string
	var found bool
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strippedText(p)
		if strings.Contains(text, ",") && containsAny(text, computicketVenueRegions...) {
			pair[0], pair[1] = splitVenue(text)
			found = true
			return false
		}
		return true
	})
	return pair, found
}

func computicketDates(doc *goquery.Document) (start, end *time.Time) {
	if start, end = dateparse.Computicket(pageText(doc)); start != nil {
		return start, end
	}

	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		start = dateparse.DateLine(strippedText(p))
		return start == nil
	})

	return start, nil
}

var computicketIconMarkers = []string{"android-chrome", "favicon", "icon"}

func computicketImage(doc *goquery.Document) (string, bool) {
	var found string
	doc.Find("img[src]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, _ := img.Attr("src")
		for _, marker := range computicketIconMarkers {
			if strings.Contains(src, marker) {
				return true
			}
		}
		if isAbsoluteHTTP(src) && validImageURL(src) {
			found = src
			return false
		}
		return true
	})
	return found, found != ""
}

var computicketPriceRe = regexp.MustCompile(`R\s*\d+(?:\.\d{2})?`)

// computicketPrices собирает строки "Tickets start at R 200.00" из div и span.
// Вложенные блоки дают один и тот же текст, повторы отбрасываются.
func computicketPrices(doc *goquery.Document) []domain.Price {
	prices := []domain.Price{}
	seen := make(map[string]struct{})

	doc.Find("div, span").Each(func(_ int, el *goquery.Selection) {
		text := strippedText(el)
		if !strings.Contains(text, "R") || !strings.Contains(strings.ToLower(text), "start at") {
			return
		}
		m := computicketPriceRe.FindString(text)
		if m == "" {
			return
		}
		if _, dup := seen[m]; dup {
			return
		}
		seen[m] = struct{}{}
		prices = append(prices, domain.Price{Type: domain.PriceStartingFrom, Price: m})
	})

	return prices
}

// metaContent — стратегия, читающая атрибут content мета-тега.
func metaContent(selector string) strategy[string] {
	return func(doc *goquery.Document) (string, bool) {
		content, ok := doc.Find(selector).First().Attr("content")
		content = strings.TrimSpace(content)
		return content, ok && content != ""
	}
}
