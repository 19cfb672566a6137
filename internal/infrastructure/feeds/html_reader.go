package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// KindHTML identifies listing pages scraped with CSS selectors.
const KindHTML = "html"

// Option keys understood by HTMLReader. Only "item" is required.
const (
	OptItem        = "item"
	OptTitle       = "title"
	OptLink        = "link"
	OptDescription = "description"
	OptDate        = "date"
)

// HTMLReader scrapes news listing pages that publish no feed.
type HTMLReader struct {
	client *http.Client
	logger *slog.Logger
}

var _ ports.FeedReader = (*HTMLReader)(nil)

// NewHTMLReader wires an HTTP client; a nil client gets a 20 second timeout.
func NewHTMLReader(client *http.Client, log *slog.Logger) *HTMLReader {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTMLReader{client: client, logger: log}
}

// Kind identifies the reader inside the registry.
func (h *HTMLReader) Kind() string {
	return KindHTML
}

// Read fetches the page and extracts one entry per matched item element.
func (h *HTMLReader) Read(ctx context.Context, src domain.Source) ([]domain.Entry, error) {
	sel := selectorsFrom(src.Options)
	if sel.item == "" {
		return nil, fmt.Errorf("source %s: option %q is required", src.Name, OptItem)
	}

	base, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("source %s: invalid url: %w", src.Name, err)
	}

	doc, err := h.fetchDocument(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src.Name, err)
	}

	var entries []domain.Entry
	doc.Find(sel.item).Each(func(_ int, node *goquery.Selection) {
		raw := extractEntry(node, sel, base)
		entry, err := normalizeEntry(src.Name, raw)
		if err != nil {
			h.debug("skip html entry", "source", src.Name, "link", raw.Link, "reason", err)
			return
		}
		entries = append(entries, entry)
	})

	return entries, nil
}

func (h *HTMLReader) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

type selectors struct {
	item, title, link, description, date string
}

func selectorsFrom(opts map[string]string) selectors {
	s := selectors{
		item:        strings.TrimSpace(opts[OptItem]),
		title:       strings.TrimSpace(opts[OptTitle]),
		link:        strings.TrimSpace(opts[OptLink]),
		description: strings.TrimSpace(opts[OptDescription]),
		date:        strings.TrimSpace(opts[OptDate]),
	}
	if s.title == "" {
		s.title = "a"
	}
	if s.link == "" {
		s.link = "a[href]"
	}
	return s
}

func extractEntry(node *goquery.Selection, sel selectors, base *url.URL) rawEntry {
	raw := rawEntry{
		Title: strings.TrimSpace(node.Find(sel.title).First().Text()),
	}

	linkNode := node.Find(sel.link).First()
	if linkNode.Length() == 0 && node.Is("a[href]") {
		linkNode = node
	}
	if href, ok := linkNode.Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			raw.Link = base.ResolveReference(ref).String()
		}
	}

	if sel.description != "" {
		if html, err := node.Find(sel.description).First().Html(); err == nil {
			raw.Description = html
		}
	}

	if sel.date != "" {
		dateNode := node.Find(sel.date).First()
		if dt, ok := dateNode.Attr("datetime"); ok {
			raw.Published = dt
		} else {
			raw.Published = strings.TrimSpace(dateNode.Text())
		}
	}

	return raw
}

func (h *HTMLReader) debug(msg string, args ...interface{}) {
	if h.logger != nil {
		h.logger.Debug(msg, args...)
	}
}
