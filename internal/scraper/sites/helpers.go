package sites

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/text/unicode/norm"
)

// strategy — один уровень цепочки извлечения поля.
type strategy[T any] = func(doc *goquery.Document) (T, bool)

// firstOf возвращает результат первой сработавшей стратегии.
// Паника внутри стратегии считается промахом, следующие уровни всё равно выполняются.
func firstOf[T any](doc *goquery.Document, strategies ...strategy[T]) (T, bool) {
	for _, s := range strategies {
		if v, ok := try(doc, s); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func try[T any](doc *goquery.Document, s strategy[T]) (v T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, ok = zero, false
		}
	}()
	return s(doc)
}

// textParts собирает непустые обрезанные текстовые узлы выделения в порядке документа.
// Содержимое script и style пропускается.
func textParts(sel *goquery.Selection) []string {
	var parts []string
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "#text":
			if t := strings.TrimSpace(c.Text()); t != "" {
				parts = append(parts, t)
			}
		case "script", "style", "#comment":
		default:
			parts = append(parts, textParts(c)...)
		}
	})
	return parts
}

// strippedText склеивает обрезанные текстовые узлы без разделителя.
func strippedText(sel *goquery.Selection) string {
	return strings.Join(textParts(sel), "")
}

// joinedText склеивает обрезанные текстовые узлы через sep.
func joinedText(sel *goquery.Selection, sep string) string {
	return strings.Join(textParts(sel), sep)
}

// pageText — весь текст документа без обрезки, как он идёт в разметке.
func pageText(doc *goquery.Document) string {
	return doc.Text()
}

var spaceRe = regexp.MustCompile(`\s+`)

func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// normalizeText приводит неразрывные пробелы и совместимые символы к обычному виду.
func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

var descriptionPrefixes = []string{"about", "description:", "details:"}

// cleanDescription убирает ведущие "About", "Description:" и "Details:" без учёта регистра.
func cleanDescription(text string) string {
	if text == "" {
		return text
	}
	if strings.HasPrefix(strings.ToLower(text), "about") {
		text = strings.TrimSpace(text[len("about"):])
	}
	for _, p := range descriptionPrefixes {
		if strings.HasPrefix(strings.ToLower(text), p) {
			text = strings.TrimSpace(text[len(p):])
		}
	}
	return text
}

// containsAny сообщает, встречается ли в s (в нижнем регистре) хоть одно из слов.
func containsAny(s string, words ...string) bool {
	lower := strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// splitVenue делит "Заведение, адрес" по первой запятой.
// Без запятой обе части равны исходной строке.
func splitVenue(text string) (venue, location string) {
	if before, after, ok := strings.Cut(text, ","); ok {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return text, text
}

func isAbsoluteHTTP(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// resolveURL превращает относительную ссылку в абсолютную относительно base.
func resolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || isAbsoluteHTTP(ref) || base == nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

// validImageURL проверяет, что ссылка на изображение — корректный абсолютный http(s) URL.
func validImageURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// readableText извлекает основной текст страницы алгоритмом readability.
func readableText(doc *goquery.Document, minLen int) (string, bool) {
	html, err := doc.Html()
	if err != nil {
		return "", false
	}
	article, err := readability.FromReader(strings.NewReader(html), doc.Url)
	if err != nil {
		return "", false
	}
	text := collapseSpaces(article.TextContent)
	if len(text) <= minLen {
		return "", false
	}
	return text, true
}

// formatRand форматирует сумму в рандах: "R250" для целых, иначе "R250.5".
func formatRand(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("R%d", int64(v))
	}
	return fmt.Sprintf("R%v", v)
}

func parseDoc(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}
