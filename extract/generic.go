package extract

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Override selects a specific container for URLs containing a substring.
type Override struct {
	URLContains string
	Selector    string
}

// DefaultOverrides apply before the generic container list.
var DefaultOverrides = []Override{
	{URLContains: "law.cornell.edu/uscode/text", Selector: "div#text"},
}

// DefaultContainers are tried in order to find a page's main content.
var DefaultContainers = []string{
	"main",
	`div[role="main"]`,
	"div.main-content",
	"div.content",
	"article",
	"div#content",
	"div.body-content",
	"div.bill-text",
	"div.legal-text",
	"div.statute-text",
}

const genericBlocks = "p, h1, h2, h3, h4, h5, h6, li, blockquote, pre"

// Generic extracts block text from ordinary web pages.
type Generic struct {
	downloader Downloader
	overrides  []Override
	containers []string
	minLength  int
	logger     *slog.Logger
}

// NewGeneric creates a Generic extractor with the default container list.
func NewGeneric(d Downloader) *Generic {
	return &Generic{
		downloader: d,
		overrides:  DefaultOverrides,
		containers: DefaultContainers,
		minLength:  50,
		logger:     slog.Default().With("component", "extract-generic"),
	}
}

func (g *Generic) Extract(ctx context.Context, url string) string {
	resp, err := g.downloader.Download(ctx, url)
	if err != nil {
		g.logger.Debug("download failed", "url", url, "err", err)
		return ""
	}
	markup, err := resp.Text()
	if err != nil {
		g.logger.Debug("decode failed", "url", url, "err", err)
		return ""
	}
	return g.ExtractHTML(url, []byte(markup))
}

// ExtractHTML extracts text from markup fetched from url.
func (g *Generic) ExtractHTML(url string, markup []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return ""
	}

	container := g.container(doc, url)
	if container == nil {
		return ""
	}

	c := newCollector()
	container.Find(genericBlocks).Each(func(_ int, s *goquery.Selection) {
		c.add(selectionText(s), g.minLength)
	})

	combined := strings.TrimSpace(strings.Join(c.kept, "\n"))
	return extraNewlines.ReplaceAllString(combined, "\n\n")
}

func (g *Generic) container(doc *goquery.Document, url string) *goquery.Selection {
	lowered := strings.ToLower(url)
	for _, o := range g.overrides {
		if strings.Contains(lowered, o.URLContains) {
			if s := doc.Find(o.Selector).First(); s.Length() > 0 {
				return s
			}
		}
	}
	for _, sel := range g.containers {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	if body := doc.Find("body").First(); body.Length() > 0 {
		return body
	}
	return nil
}
