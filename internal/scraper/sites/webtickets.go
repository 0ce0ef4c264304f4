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

	"eventsScraper/internal/models/domain"
)

// Webtickets извлекает события webtickets.co.za.
type Webtickets struct {
	logger  *slog.Logger
	fetcher Fetcher
}

func NewWebtickets(logger *slog.Logger, fetcher Fetcher) *Webtickets {
	return &Webtickets{logger: logger, fetcher: fetcher}
}

func (w *Webtickets) Source() domain.Source {
	return domain.SourceWebtickets
}

func (w *Webtickets) Extract(ctx context.Context, url string) (*domain.EventDetails, error) {
	op := "Webtickets.Extract()"

	doc, err := w.fetcher.Document(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ParseWebtickets(doc, url), nil
}

// ParseWebtickets разбирает загруженную страницу события Webtickets.
func ParseWebtickets(doc *goquery.Document, eventURL string) *domain.EventDetails {
	title, ok := firstOf(doc,
		func(doc *goquery.Document) (string, bool) {
			t := strippedText(doc.Find("h1#PageHeaderPanel_pageHeader").First())
			return t, t != ""
		},
		titleTag,
	)
	if !ok {
		title = domain.NoTitle
	}

	description, _ := firstOf(doc,
		func(doc *goquery.Document) (string, bool) {
			text := strippedText(doc.Find("div.event-description").First())
			return text, text != ""
		},
		longBlock("div", 100, true, "webtickets"),
		longBlock("p", 100, false),
		func(doc *goquery.Document) (string, bool) {
			return readableText(doc, 100)
		},
	)
	description = normalizeText(description)

	venue, location := domain.VenueNotSpecified, domain.LocationNotSpecified
	if pair, ok := firstOf(doc, webticketsVenue); ok {
		venue, location = pair[0], pair[1]
	}

	start, _ := firstOf(doc, webticketsPanelDate, webticketsPageDate)

	image, _ := firstOf(doc,
		imageBySelector("img.event-image"),
		imageByAlt("event logo", "sharing"),
		imageBySelector(`img[src*="content.webtickets.co.za"]`),
		webticketsAnyImage,
	)

	return &domain.EventDetails{
		Title:       title,
		Description: description,
		Venue:       venue,
		Location:    location,
		StartDate:   start,
		Prices:      webticketsPrices(doc),
		ImageURL:    image,
		EventURL:    eventURL,
		Source:      domain.SourceWebtickets,
		RawData: map[string]any{
			"title":    title,
			"venue":    venue,
			"location": location,
		},
	}
}

// titleTag — заголовок из <title>: атрибут title, если есть, иначе текст.
func titleTag(doc *goquery.Document) (string, bool) {
	sel := doc.Find("title").First()
	if sel.Length() == 0 {
		return "", false
	}
	if attr, ok := sel.Attr("title"); ok && strings.TrimSpace(attr) != "" {
		return strings.TrimSpace(attr), true
	}
	t := strippedText(sel)
	return t, t != ""
}

var boilerplateWords = []string{"ticket", "price", "venue", "date"}

// longBlock — первый элемент tag с текстом длиннее minLen.
// При filter отбрасываются блоки со служебными словами, названием площадки и начинающиеся с "R".
func longBlock(tag string, minLen int, filter bool, platform ...string) strategy[string] {
	return func(doc *goquery.Document) (string, bool) {
		var found string
		doc.Find(tag).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			text := strippedText(el)
			if len(text) <= minLen {
				return true
			}
			if filter && (containsAny(text, boilerplateWords...) ||
				containsAny(text, platform...) ||
				strings.HasPrefix(text, "R")) {
				return true
			}
			found = cleanDescription(text)
			return false
		})
		return found, found != ""
	}
}

func webticketsVenue(doc *goquery.Document) ([2]string, bool) {
	var pair [2]string
	var found bool
	doc.Find("div.row").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if !strings.Contains(row.Text(), "Venue") {
			return true
		}
		col := row.Find("div.col-lg-8").First()
		if col.Length() == 0 {
			return true
		}
		text := strings.TrimSpace(strings.ReplaceAll(strippedText(col), "Location on Google Maps", ""))
		pair[0], pair[1] = splitVenue(text)
		found = true
		return false
	})
	return pair, found
}

var webticketsDateRe = regexp.MustCompile(`\d{1,2}\s+\w{3}\s+\d{4}\s+\d{1,2}:\d{2}`)

func parseWebticketsDate(s string) (*time.Time, bool) {
	s = spaceRe.ReplaceAllString(s, " ")
	t, err := time.Parse("2 Jan 2006 15:04", s)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// webticketsPanelDate ищет дату в заголовках билетных панелей:
// "Golden Circle - Standing 06 Dec 2025 12:00R550".
func webticketsPanelDate(doc *goquery.Document) (*time.Time, bool) {
	var found *time.Time
	doc.Find("div.ticket-panel").EachWithBreak(func(_ int, panel *goquery.Selection) bool {
		title := panel.Find("div.ticket-panel-title").First()
		if title.Length() == 0 {
			return true
		}
		m := webticketsDateRe.FindString(strippedText(title))
		if m == "" {
			return true
		}
		if t, ok := parseWebticketsDate(m); ok {
			found = t
			return false
		}
		return true
	})
	return found, found != nil
}

func webticketsPageDate(doc *goquery.Document) (*time.Time, bool) {
	m := webticketsDateRe.FindString(pageText(doc))
	if m == "" {
		return nil, false
	}
	return parseWebticketsDate(m)
}

// imageBySelector — src первого подходящего img, относительные ссылки разрешаются от страницы.
func imageBySelector(selector string) strategy[string] {
	return func(doc *goquery.Document) (string, bool) {
		src, ok := doc.Find(selector).First().Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			return "", false
		}
		abs := resolveURL(doc.Url, src)
		return abs, validImageURL(abs)
	}
}

// imageByAlt — первый img, в alt которого встречается одно из слов.
func imageByAlt(words ...string) strategy[string] {
	return func(doc *goquery.Document) (string, bool) {
		var found string
		doc.Find("img[alt]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
			alt, _ := img.Attr("alt")
			if !containsAny(alt, words...) {
				return true
			}
			src, ok := img.Attr("src")
			if !ok || strings.TrimSpace(src) == "" {
				return false
			}
			found = resolveURL(doc.Url, src)
			return false
		})
		return found, found != "" && validImageURL(found)
	}
}

func webticketsAnyImage(doc *goquery.Document) (string, bool) {
	var found string
	doc.Find("img[src]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, _ := img.Attr("src")
		alt, _ := img.Attr("alt")
		if src == "" ||
			containsAny(src, "logo", "icon") ||
			strings.Contains(src, "webticketsLogo") ||
			strings.Contains(src, "pnplogo") {
			return true
		}
		if strings.Contains(src, "content.webtickets.co.za") || containsAny(alt, "event") {
			found = resolveURL(doc.Url, src)
			return false
		}
		return true
	})
	return found, found != "" && validImageURL(found)
}

var randAmountRe = regexp.MustCompile(`R(\d+)`)

// webticketsPrices: минимальная цена по всем билетным панелям, затем цены карточек товаров.
func webticketsPrices(doc *goquery.Document) []domain.Price {
	prices := []domain.Price{}

	minPrice := 0
	doc.Find("div.ticket-panel").Each(func(_ int, panel *goquery.Selection) {
		for _, m := range randAmountRe.FindAllStringSubmatch(panel.Text(), -1) {
			v, err := strconv.Atoi(m[1])
			if err != nil || v <= 0 {
				continue
			}
			if minPrice == 0 || v < minPrice {
				minPrice = v
			}
		}
	})
	if minPrice > 0 {
		prices = append(prices, domain.Price{Type: domain.PriceGeneral, Price: fmt.Sprintf("R%d", minPrice)})
	}

	doc.Find("div.product-card-price").Each(func(_ int, el *goquery.Selection) {
		m := randAmountRe.FindStringSubmatch(strippedText(el))
		if m == nil {
			return
		}
		if v, err := strconv.Atoi(m[1]); err == nil && v > 0 {
			prices = append(prices, domain.Price{Type: domain.PriceGeneral, Price: fmt.Sprintf("R%d", v)})
		}
	})

	return prices
}
