package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/geziyor/geziyor"
	"github.com/geziyor/geziyor/client"
	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"

	"eventsScraper/internal/config"
	"eventsScraper/internal/models/domain"
	"eventsScraper/internal/models/dto"
	"eventsScraper/internal/scraper"
	"eventsScraper/internal/utils/logger/sl"
)

var (
	ErrNoDocument         = errors.New("listing page returned no document")
	ErrSheetNotConfigured = errors.New("sheet is not configured")
)

// eventPaths — фрагменты пути, по которым ссылка платформы считается страницей события.
var eventPaths = map[domain.Source][]string{
	domain.SourceWebtickets:  {"event.aspx"},
	domain.SourceComputicket: {"/e/", "/event/"},
	domain.SourceQuicket:     {"/events/"},
	domain.SourceHowler:      {"/events/"},
	domain.SourceTicketpro:   {"/event/"},
}

// Discovery собирает ссылки на события из страниц-каталогов, лент и Google-таблицы.
type Discovery struct {
	logger *slog.Logger
	cfg    config.DiscoveryConfig
	client *resty.Client
	feeds  *gofeed.Parser
}

func New(logger *slog.Logger, cfg config.DiscoveryConfig) *Discovery {
	c := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Discovery{
		logger: logger,
		cfg:    cfg,
		client: c,
		feeds:  gofeed.NewParser(),
	}
}

// IsEventURL проверяет, что ссылка ведёт на страницу события поддерживаемой платформы.
func IsEventURL(rawURL string) bool {
	source, err := scraper.Route(rawURL)
	if err != nil {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	path := strings.ToLower(u.Path)
	for _, fragment := range eventPaths[source] {
		if i := strings.Index(path, fragment); i >= 0 {
			rest := strings.Trim(path[i+len(fragment):], "/")
			if rest != "" || !strings.HasSuffix(fragment, "/") {
				return true
			}
		}
	}
	return false
}

// Listing обходит страницу-каталог и возвращает ссылки на события в порядке появления.
func (d *Discovery) Listing(ctx context.Context, pageURL string) ([]string, error) {
	op := "Discovery.Listing()"
	log := d.logger.With(
		slog.String("op", op),
		slog.String("url", pageURL),
	)

	var (
		mu     sync.Mutex
		links  []string
		parsed bool
	)

	gez := geziyor.NewGeziyor(&geziyor.Options{
		StartURLs:         []string{pageURL},
		RobotsTxtDisabled: true,
		LogDisabled:       true,
		Timeout:           d.cfg.Timeout,
		ParseFunc: func(g *geziyor.Geziyor, r *client.Response) {
			if r.HTMLDoc == nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			parsed = true
			r.HTMLDoc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
				href, _ := sel.Attr("href")
				absoluteURL, err := r.Request.URL.Parse(strings.TrimSpace(href))
				if err != nil {
					return
				}
				absoluteURL.Fragment = ""
				links = append(links, absoluteURL.String())
			})
		},
	})

	done := make(chan struct{})
	go func() {
		gez.Start()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	case <-done:
	}

	mu.Lock()
	defer mu.Unlock()
	if !parsed {
		return nil, fmt.Errorf("%s: %w", op, ErrNoDocument)
	}

	result := filterEventLinks(links)
	log.Info("listing crawled", slog.Int("links", len(links)), slog.Int("events", len(result)))
	return result, nil
}

// Feed возвращает ссылки на события из RSS/Atom-ленты.
func (d *Discovery) Feed(ctx context.Context, feedURL string) ([]string, error) {
	op := "Discovery.Feed()"
	log := d.logger.With(
		slog.String("op", op),
		slog.String("url", feedURL),
	)

	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	feed, err := d.feeds.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse feed: %w", op, err)
	}

	var links []string
	for _, item := range feed.Items {
		if item.Link != "" {
			links = append(links, strings.TrimSpace(item.Link))
		}
		links = append(links, item.Links...)
	}

	result := filterEventLinks(links)
	log.Info("feed parsed", slog.Int("items", len(feed.Items)), slog.Int("events", len(result)))
	return result, nil
}

// Sheet читает столбец B настроенного листа через Sheets API v4.
func (d *Discovery) Sheet(ctx context.Context) ([]string, error) {
	op := "Discovery.Sheet()"
	log := d.logger.With(slog.String("op", op))

	sheet := d.cfg.Sheet
	if sheet.SpreadsheetID == "" || sheet.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrSheetNotConfigured)
	}

	readRange := "A:B"
	if sheet.SheetName != "" {
		readRange = sheet.SheetName + "!" + readRange
	}

	var values dto.SheetValues
	resp, err := d.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"spreadsheetId": sheet.SpreadsheetID,
			"range":         readRange,
		}).
		SetQueryParam("key", sheet.APIKey).
		SetResult(&values).
		Get(strings.TrimRight(sheet.BaseURL, "/") + "/{spreadsheetId}/values/{range}")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s: sheets api status %d", op, resp.StatusCode())
	}

	var links []string
	for _, v := range values.Column(1) {
		if v = strings.TrimSpace(v); v != "" {
			links = append(links, v)
		}
	}
	links = uniqueStrings(links)

	log.Info("sheet read", slog.Int("links", len(links)))
	return links, nil
}

// All проходит по всем настроенным источникам. Ошибка одного источника только логируется.
func (d *Discovery) All(ctx context.Context) []string {
	op := "Discovery.All()"
	log := d.logger.With(slog.String("op", op))

	var links []string
	for _, u := range d.cfg.ListingURLs {
		found, err := d.Listing(ctx, u)
		if err != nil {
			log.Error("listing failed", slog.String("url", u), sl.Err(err))
			continue
		}
		links = append(links, found...)
	}

	for _, u := range d.cfg.FeedURLs {
		found, err := d.Feed(ctx, u)
		if err != nil {
			log.Error("feed failed", slog.String("url", u), sl.Err(err))
			continue
		}
		links = append(links, found...)
	}

	if d.cfg.Sheet.SpreadsheetID != "" {
		found, err := d.Sheet(ctx)
		if err != nil {
			log.Error("sheet failed", sl.Err(err))
		}
		links = append(links, found...)
	}

	return uniqueStrings(links)
}

func filterEventLinks(links []string) []string {
	var out []string
	for _, l := range links {
		if IsEventURL(l) {
			out = append(out, l)
		}
	}
	return uniqueStrings(out)
}

// uniqueStrings удаляет дубликаты, сохраняя порядок.
func uniqueStrings(input []string) []string {
	seen := make(map[string]bool)
	result := []string{}
	for _, v := range input {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}
