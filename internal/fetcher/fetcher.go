package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"eventsScraper/internal/utils/logger/sl"
)

// ErrNoContent — страница не получена: сетевая ошибка, таймаут или статус вне 2xx.
var ErrNoContent = errors.New("no content")

const (
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	DefaultAcceptLanguage = "en-US,en;q=0.9"
	DefaultTimeout        = 10 * time.Second
	MaxTimeout            = 30 * time.Second
)

type Options struct {
	UserAgent        string
	AcceptLanguage   string
	Timeout          time.Duration
	CloudflareBypass bool
}

// Fetcher выполняет одиночный GET с фиксированным набором заголовков браузера.
// Повторных попыток не делает.
type Fetcher struct {
	log     *slog.Logger
	client  *resty.Client
	timeout time.Duration
}

func New(log *slog.Logger, opts Options) *Fetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.AcceptLanguage == "" {
		opts.AcceptLanguage = DefaultAcceptLanguage
	}

	client := resty.New()
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetHeader("Accept-Language", opts.AcceptLanguage)
	client.SetTimeout(MaxTimeout)

	return &Fetcher{
		log:     log,
		client:  client,
		timeout: clampTimeout(opts.Timeout),
	}
}

// WithTimeout возвращает копию загрузчика с другим таймаутом запроса.
// Клиент и заголовки общие.
func (f *Fetcher) WithTimeout(d time.Duration) *Fetcher {
	return &Fetcher{
		log:     f.log,
		client:  f.client,
		timeout: clampTimeout(d),
	}
}

func (f *Fetcher) Timeout() time.Duration {
	return f.timeout
}

// Get загружает тело страницы. Любая неудача сводится к ErrNoContent.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	op := "Fetcher.Get()"
	log := f.log.With(slog.String("op", op), slog.String("url", rawURL))

	resp, err := f.do(ctx, rawURL, nil, nil)
	if err != nil {
		log.Warn("fetch failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return resp.Body(), nil
}

// Document загружает страницу и разбирает её в goquery-документ.
// doc.Url указывает на итоговый адрес после редиректов.
func (f *Fetcher) Document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	op := "Fetcher.Document()"
	log := f.log.With(slog.String("op", op), slog.String("url", rawURL))

	resp, err := f.do(ctx, rawURL, nil, nil)
	if err != nil {
		log.Warn("fetch failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("%s: parse html: %w", op, err)
	}

	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		doc.Url = resp.RawResponse.Request.URL
	} else if u, err := url.Parse(rawURL); err == nil {
		doc.Url = u
	}

	return doc, nil
}

// JSON выполняет GET с параметрами запроса и декодирует ответ в out.
func (f *Fetcher) JSON(ctx context.Context, rawURL string, query map[string]string, out any) error {
	op := "Fetcher.JSON()"
	log := f.log.With(slog.String("op", op), slog.String("url", rawURL))

	if _, err := f.do(ctx, rawURL, query, out); err != nil {
		log.Warn("fetch failed", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (f *Fetcher) do(ctx context.Context, rawURL string, query map[string]string, out any) (*resty.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req := f.client.R().SetContext(ctx)
	if query != nil {
		req.SetQueryParams(query)
	}
	if out != nil {
		req.SetResult(out)
		req.ForceContentType("application/json")
	}

	resp, err := req.Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoContent, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: status %d", ErrNoContent, resp.StatusCode())
	}

	return resp, nil
}

func clampTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	if d > MaxTimeout {
		return MaxTimeout
	}
	return d
}
