package sites

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"eventsScraper/internal/dateparse"
	"eventsScraper/internal/models/domain"
	"eventsScraper/internal/utils/logger/sl"
)

const DefaultHowlerTicketBaseURL = "https://ag.howler.co.za"

const (
	howlerHeroSelector   = "div.page-wrapper div.event-hero div.inset-x--large-on-medium div.event-hero__content"
	howlerBarSelector    = "div.page-wrapper div.event-bar"
	howlerTicketsForm    = `div.purchase-process-wrapper div.ticket-selection-layout__main form#ticket_order_form[action="/ticket_order/tickets"]`
	howlerAccordion      = "div.accordion-content.ticket-selection__accordion-content"
	howlerLooseTicket    = "div.ticket-selection.ticket-selection--loose-ticket"
	howlerBookingStatus  = "div.ticket-info__booking-status"
	howlerTicketPriceSel = "div.ticket__price"
)

// Howler извлекает события howler.co.za. Цены берутся со второй страницы — страницы покупки билетов.
type Howler struct {
	logger        *slog.Logger
	fetcher       Fetcher
	ticketBaseURL string
	now           func() time.Time
}

func NewHowler(logger *slog.Logger, fetcher Fetcher, ticketBaseURL string) *Howler {
	if ticketBaseURL == "" {
		ticketBaseURL = DefaultHowlerTicketBaseURL
	}
	return &Howler{
		logger:        logger,
		fetcher:       fetcher,
		ticketBaseURL: strings.TrimRight(ticketBaseURL, "/"),
		now:           time.Now,
	}
}

func (h *Howler) Source() domain.Source {
	return domain.SourceHowler
}

func (h *Howler) Extract(ctx context.Context, url string) (*domain.EventDetails, error) {
	op := "Howler.Extract()"
	log := h.logger.With(slog.String("op", op), slog.String("url", url))

	doc, err := h.fetcher.Document(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	details := ParseHowler(doc, url, h.now())

	href, ok := HowlerTicketHref(doc)
	if !ok {
		log.Debug("no ticket purchase link")
		return details, nil
	}

	ticketURL := h.ticketURL(href)
	ticketDoc, err := h.fetcher.Document(ctx, ticketURL)
	if err != nil {
		log.Warn("ticket page unavailable, prices left empty", slog.String("ticketUrl", ticketURL), sl.Err(err))
		return details, nil
	}

	details.Prices = ParseHowlerTickets(ticketDoc)

	return details, nil
}

func (h *Howler) ticketURL(href string) string {
	if isAbsoluteHTTP(href) {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return h.ticketBaseURL + href
}

// ParseHowler разбирает страницу события Howler без цен.
func ParseHowler(doc *goquery.Document, eventURL string, now time.Time) *domain.EventDetails {
	title, ok := firstOf(doc,
		func(doc *goquery.Document) (string, bool) {
			t := strippedText(doc.Find(howlerHeroSelector + " h1.t-display").First())
			return t, t != ""
		},
		metaContent(`meta[property="og:title"]`),
	)
	if !ok {
		title = domain.UnknownEvent
	}

	var paragraphs []string
	doc.Find("div.page-wrapper div.event-carousel div.event-section__content").First().
		Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := strippedText(p); t != "" {
			paragraphs = append(paragraphs, t)
		}
	})

	venue, location := domain.UnknownVenue, domain.UnknownLocation
	venueBlock := doc.Find(howlerBarSelector + " div.event-bar__info div.event-detail.event-detail__venue").First()
	if t := strippedText(venueBlock.Find("h3").First()); t != "" {
		venue = t
	}
	if t := strippedText(venueBlock.Find("a").First()); t != "" {
		location = t
	}

	var start, end *time.Time
	dateBlock := doc.Find(howlerBarSelector + " div.event-bar__info div.event-detail.event-detail__date").First()
	if dateText := strippedTextSpaced(dateBlock.Find("a").First()); dateText != "" {
		start, end = dateparse.Howler(dateText, strippedTextSpaced(dateBlock.Find("h3").First()), now)
	}

	var image string
	if src, ok := doc.Find(howlerHeroSelector + " img").First().Attr("src"); ok {
		if abs := resolveURL(doc.Url, src); validImageURL(abs) {
			image = abs
		}
	}

	return &domain.EventDetails{
		Title:       title,
		Description: strings.Join(paragraphs, "\n"),
		Venue:       venue,
		Location:    location,
		StartDate:   start,
		EndDate:     end,
		Prices:      []domain.Price{},
		ImageURL:    image,
		EventURL:    eventURL,
		Source:      domain.SourceHowler,
		RawData:     map[string]any{"url": eventURL},
	}
}

// HowlerTicketHref возвращает ссылку кнопки покупки билетов.
func HowlerTicketHref(doc *goquery.Document) (string, bool) {
	href, ok := doc.Find(howlerBarSelector + " div.event-bar__action a[href]").First().Attr("href")
	href = strings.TrimSpace(href)
	return href, ok && href != ""
}

// ParseHowlerTickets читает цены со страницы покупки: сначала раскладка-аккордеон,
// затем отдельные карточки билетов. Билеты со статусом бронирования (распроданы) пропускаются.
func ParseHowlerTickets(doc *goquery.Document) []domain.Price {
	prices := []domain.Price{}

	form := doc.Find(howlerTicketsForm).First()
	if form.Length() == 0 {
		return prices
	}

	tickets := form.Find(howlerAccordion).First().Children()
	if form.Find(howlerAccordion).Length() == 0 {
		tickets = form.Find(howlerLooseTicket)
	}

	tickets.Each(func(_ int, ticket *goquery.Selection) {
		if ticket.Find(howlerBookingStatus).Length() > 0 {
			return
		}
		priceEl := ticket.Find(howlerTicketPriceSel).First()
		if priceEl.Length() == 0 {
			return
		}
		value, ok := howlerPrice(strippedText(priceEl))
		if !ok {
			return
		}
		prices = append(prices, domain.Price{Type: domain.PriceGeneral, Price: strconv.Itoa(value)})
	})

	return prices
}

// howlerPrice оставляет цифры и точки и отбрасывает дробную часть: "R 1,250.50" -> 1250.
func howlerPrice(text string) (int, bool) {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

// strippedTextSpaced склеивает текстовые узлы через пробел: в блоке даты время и день
// лежат в соседних элементах.
func strippedTextSpaced(sel *goquery.Selection) string {
	return joinedText(sel, " ")
}
