package swissvotes

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
)

// Scraper runs the two-stage extraction pipeline against one site. It is
// strictly sequential: discovery finishes before any detail fetch, and detail
// fetches with their nested brochure downloads happen one at a time.
type Scraper struct {
	cfg    Config
	pages  *resty.Client
	pdfs   *resty.Client
	logger *slog.Logger
}

// NewScraper creates a Scraper from option functions applied over the default
// configuration.
func NewScraper(opts ...ConfigOptionFunc) *Scraper {
	return NewScraperWithConfig(NewConfig(opts...))
}

// NewScraperWithConfig creates a Scraper from an already-built Config.
func NewScraperWithConfig(cfg Config) *Scraper {
	pages := resty.New().
		SetTimeout(cfg.HTTPTimeout).
		SetHeader("User-Agent", cfg.UserAgent)
	pdfs := resty.New().
		SetTimeout(cfg.PDFTimeout).
		SetHeader("User-Agent", cfg.UserAgent)

	return &Scraper{
		cfg:    cfg,
		pages:  pages,
		pdfs:   pdfs,
		logger: cfg.Logger,
	}
}

// Config returns the scraper's effective configuration.
func (s *Scraper) Config() Config {
	return s.cfg
}

// fetchDocument GETs a page and parses it. A non-200 status is an error here;
// callers decide whether that aborts the run or just the current vote.
func (s *Scraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	res, err := s.pages.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to request %s: %w", pageURL, err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", res.StatusCode(), pageURL)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}
	return doc, nil
}

// joinedText returns every text node under the selection, trimmed, with empty
// fragments dropped, joined by sep. Whitespace inside a single text node is
// kept as-is.
func joinedText(sel *goquery.Selection, sep string) string {
	var parts []string
	for _, n := range sel.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, sep)
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// firstHref returns the href of the first anchor inside the selection.
func firstHref(sel *goquery.Selection) (string, bool) {
	return sel.Find("a[href]").First().Attr("href")
}
