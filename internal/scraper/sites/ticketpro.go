package sites

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"eventsScraper/internal/dateparse"
	"eventsScraper/internal/models/domain"
)

// Ticketpro извлекает события ticketpro.co.za и ticketproshop.co.za.
type Ticketpro struct {
	logger  *slog.Logger
	fetcher Fetcher
	now     func() time.Time
}

func NewTicketpro(logger *slog.Logger, fetcher Fetcher) *Ticketpro {
	return &Ticketpro{logger: logger, fetcher: fetcher, now: time.Now}
}

func (t *Ticketpro) Source() domain.Source {
	return domain.SourceTicketpro
}

func (t *Ticketpro) Extract(ctx context.Context, url string) (*domain.EventDetails, error) {
	op := "Ticketpro.Extract()"

	doc, err := t.fetcher.Document(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ParseTicketpro(doc, url, t.now()), nil
}

// ParseTicketpro разбирает загруженную страницу события Ticketpro.
// now задаёт год для дат без года.
func ParseTicketpro(doc *goquery.Document, eventURL string, now time.Time) *domain.EventDetails {
	title, ok := firstOf(doc,
		func(doc *goquery.Document) (string, bool) {
			t := ticketproTitle(strippedText(doc.Find("h1").First()))
			return t, t != ""
		},
		func(doc *goquery.Document) (string, bool) {
			t := ticketproTitle(strings.TrimSpace(doc.Find("title").First().Text()))
			return t, t != ""
		},
	)
	if !ok {
		title = domain.NoTitle
	}

	description, _ := firstOf(doc,
		ticketproMetaDescription,
		descriptionContainer("div.description", "p.description", `div[data-testid="event-description"]`),
		longBlock("p", 100, true, "ticketpro"),
		func(doc *goquery.Document) (string, bool) {
			return readableText(doc, 100)
		},
	)
	description = normalizeText(description)

	text := pageText(doc)

	venue, location := domain.VenueNotSpecified, domain.LocationNotSpecified
	if v, l, ok := ticketproVenue(text); ok {
		venue, location = v, l
	}

	start, end := dateparse.Ticketpro(text, now)

	image, _ := firstOf(doc,
		func(doc *goquery.Document) (string, bool) {
			content, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content")
			if !ok || strings.TrimSpace(content) == "" {
				return "", false
			}
			abs := resolveURL(doc.Url, content)
			return abs, validImageURL(abs)
		},
		imageByAlt("event"),
		imageBySelector("img.event-image"),
		imageBySelector(`img[data-testid="event-image"]`),
		ticketproAnyImage,
	)

	return &domain.EventDetails{
		Title:       title,
		Description: description,
		Venue:       venue,
		Location:    location,
		StartDate:   start,
		EndDate:     end,
		Prices:      ticketproPrices(text),
		ImageURL:    image,
		EventURL:    eventURL,
		Source:      domain.SourceTicketpro,
		RawData: map[string]any{
			"title":    title,
			"venue":    venue,
			"location": location,
		},
	}
}

// ticketproTitle убирает обрамление "Tickets for ... | Ticketpro".
func ticketproTitle(t string) string {
	if strings.HasPrefix(t, "Tickets for ") {
		t = strings.ReplaceAll(t, "Tickets for ", "")
		t = strings.ReplaceAll(t, " | Ticketpro", "")
	}
	return strings.TrimSpace(t)
}

func ticketproMetaDescription(doc *goquery.Document) (string, bool) {
	content, ok := doc.Find(`meta[name="description"]`).First().Attr("content")
	if !ok {
		return "", false
	}
	content = strings.ReplaceAll(content, "Buy tickets for", "")
	content = strings.ReplaceAll(content, "from Ticketpro", "")
	if len(content) <= 100 {
		return "", false
	}
	return cleanDescription(strings.TrimSpace(content)), true
}

// descriptionContainer — первый из контейнеров описания с текстом длиннее 50 символов.
func descriptionContainer(selectors ...string) strategy[string] {
	return func(doc *goquery.Document) (string, bool) {
		for _, s := range selectors {
			sel := doc.Find(s).First()
			if sel.Length() == 0 {
				continue
			}
			if text := strippedText(sel); len(text) > 50 {
				return cleanDescription(text), true
			}
		}
		return "", false
	}
}

var ticketproVenueRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Location\s*([^\n]+?)(?:\d{4}|$)`),
	regexp.MustCompile(`(?i)Venue\s*([^\n]+?)(?:\d{4}|$)`),
	regexp.MustCompile(`(?i)at\s+([^\n]+?)(?:\d{4}|Tickets)`),
	regexp.MustCompile(`(?i)Location\s*([^\n]+?)(?:Tickets|from|$)`),
}

// ticketproVenue ищет место проведения в тексте страницы по подписям "Location", "Venue" и "at".
func ticketproVenue(text string) (venue, location string, ok bool) {
	for _, re := range ticketproVenueRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		found := collapseSpaces(m[1])
		found = strings.TrimSpace(strings.ReplaceAll(found, "(opens in a new tab)", ""))
		venue, location = splitVenue(found)
		return venue, location, true
	}
	return "", "", false
}

func ticketproAnyImage(doc *goquery.Document) (string, bool) {
	var found string
	doc.Find("img[src]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, _ := img.Attr("src")
		alt, _ := img.Attr("alt")
		if src == "" || containsAny(src, "logo", "icon", "ticketpro") {
			return true
		}
		if containsAny(alt, "event") || len(src) > 50 {
			found = resolveURL(doc.Url, src)
			return false
		}
		return true
	})
	return found, found != "" && validImageURL(found)
}

var (
	ticketproStartPriceRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Tickets? start at\s+(?:ZAR\s+)?R?(\d+(?:\.\d{2})?)`),
		regexp.MustCompile(`(?i)from\s+(?:ZAR\s+)?R?(\d+(?:\.\d{2})?)`),
		regexp.MustCompile(`(?i)Starting from\s+(?:ZAR\s+)?R?(\d+(?:\.\d{2})?)`),
	}
	ticketproAnyPriceRes = []*regexp.Regexp{
		regexp.MustCompile(`ZAR\s+(\d+(?:\.\d{2})?)`),
		regexp.MustCompile(`R(\d+(?:\.\d{2})?)`),
	}
)

// Границы правдоподобной цены билета в рандах.
const (
	minPlausiblePrice = 50
	maxPlausiblePrice = 5000
)

// ticketproPrices: первая цена "Tickets start at"/"from"/"Starting from",
// иначе минимальная правдоподобная сумма на странице.
func ticketproPrices(text string) []domain.Price {
	for _, re := range ticketproStartPriceRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil || v <= 0 {
				continue
			}
			return []domain.Price{{Type: domain.PriceGeneral, Price: formatRand(v)}}
		}
	}

	var minPrice float64
	for _, re := range ticketproAnyPriceRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil || v < minPlausiblePrice || v > maxPlausiblePrice {
				continue
			}
			if minPrice == 0 || v < minPrice {
				minPrice = v
			}
		}
	}
	if minPrice == 0 {
		return []domain.Price{}
	}

	return []domain.Price{{Type: domain.PriceGeneral, Price: formatRand(minPrice)}}
}
