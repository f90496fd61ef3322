package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/fetch"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Extractor produces raw text for a URL. It returns "" when nothing could
// be recovered.
type Extractor interface {
	Extract(ctx context.Context, url string) string
}

// Downloader fetches a URL's body, failing on non-2xx responses.
type Downloader interface {
	Download(ctx context.Context, url string) (*fetch.Response, error)
}

// Registry dispatches to the extractor registered for a strategy.
type Registry struct {
	extractors map[core.Strategy]Extractor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[core.Strategy]Extractor)}
}

// NewDefaultRegistry registers the generic, encyclopedic and PDF
// extractors over a shared downloader.
func NewDefaultRegistry(d Downloader, pdfOpts ...PDFOption) *Registry {
	r := NewRegistry()
	r.Register(core.StrategyGeneric, NewGeneric(d))
	r.Register(core.StrategyEncyclopedic, NewEncyclopedic(d))
	r.Register(core.StrategyPDF, NewPDF(d, pdfOpts...))
	return r
}

// Register binds an extractor to a strategy, replacing any previous one.
func (r *Registry) Register(strategy core.Strategy, e Extractor) {
	r.extractors[strategy] = e
}

// Extract runs the extractor for strategy.
func (r *Registry) Extract(ctx context.Context, strategy core.Strategy, url string) (string, error) {
	e, ok := r.extractors[strategy]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
	return e.Extract(ctx, url), nil
}

var (
	whitespace    = regexp.MustCompile(`\s+`)
	extraNewlines = regexp.MustCompile(`\n{3,}`)
)

// nodeText joins the trimmed text nodes under n with single spaces,
// skipping script and style content.
func nodeText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

func selectionText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	return nodeText(s.Get(0))
}

// dedupeKey collapses whitespace and folds case and compatibility forms.
func dedupeKey(text string) string {
	return strings.ToLower(norm.NFKC.String(whitespace.ReplaceAllString(text, " ")))
}

// collector keeps texts in order, dropping short and repeated ones.
type collector struct {
	seen map[string]struct{}
	kept []string
}

func newCollector() *collector {
	return &collector{seen: make(map[string]struct{})}
}

// add keeps text if its key is longer than minKeyLen runes and unseen.
func (c *collector) add(text string, minKeyLen int) {
	key := dedupeKey(text)
	if utf8.RuneCountInString(key) <= minKeyLen {
		return
	}
	if _, dup := c.seen[key]; dup {
		return
	}
	c.seen[key] = struct{}{}
	c.kept = append(c.kept, text)
}
