package extract

import (
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Non-content structures removed from articles before extraction.
var (
	encyclopedicNoise = []string{
		".navbox",
		".infobox",
		".ambox",
		".hatnote",
		".dablink",
		".sistersitebox",
		".vertical-navbox",
		".toc",
		".thumbcaption",
		".reflist",
		".catlinks",
		".printfooter",
		".mw-editsection",
		"table.wikitable",
		".sidebar",
		".quotebox",
	}

	// Matched as substrings of class names to catch variants like
	// "navbox-inner" that the selectors miss.
	encyclopedicNoiseClasses = []string{
		"navbox",
		"infobox",
		"ambox",
		"hatnote",
		"dablink",
		"vertical-navbox",
		"reflist",
		"catlinks",
		"printfooter",
	}

	citationMarker = regexp.MustCompile(`\[\d+\]`)
)

// Encyclopedic extracts article prose from wiki-style pages.
type Encyclopedic struct {
	downloader Downloader
	container  string
	logger     *slog.Logger
}

// NewEncyclopedic creates an Encyclopedic extractor.
func NewEncyclopedic(d Downloader) *Encyclopedic {
	return &Encyclopedic{
		downloader: d,
		container:  "div.mw-parser-output",
		logger:     slog.Default().With("component", "extract-encyclopedic"),
	}
}

func (e *Encyclopedic) Extract(ctx context.Context, url string) string {
	resp, err := e.downloader.Download(ctx, url)
	if err != nil {
		e.logger.Debug("download failed", "url", url, "err", err)
		return ""
	}
	markup, err := resp.Text()
	if err != nil {
		e.logger.Debug("decode failed", "url", url, "err", err)
		return ""
	}
	return e.ExtractHTML([]byte(markup))
}

// ExtractHTML extracts article text from markup.
func (e *Encyclopedic) ExtractHTML(markup []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return ""
	}
	content := doc.Find(e.container).First()
	if content.Length() == 0 {
		e.logger.Debug("content container not found", "selector", e.container)
		return ""
	}

	for _, sel := range encyclopedicNoise {
		content.Find(sel).Remove()
	}
	content.Find("[class]").Each(func(_ int, s *goquery.Selection) {
		if hasNoiseClass(s) {
			s.Remove()
		}
	})

	c := newCollector()
	content.Find("p, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		c.add(selectionText(s), 30)
	})
	content.Find("ul, ol").Each(func(_ int, s *goquery.Selection) {
		noisy := false
		s.Parents().EachWithBreak(func(_ int, p *goquery.Selection) bool {
			noisy = hasNoiseClass(p)
			return !noisy
		})
		if noisy {
			return
		}
		text := selectionText(s)
		if utf8.RuneCountInString(text) <= 50 {
			return
		}
		c.add(text, 0)
	})

	text := strings.Join(c.kept, "\n\n")
	text = citationMarker.ReplaceAllString(text, "")
	text = extraNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func hasNoiseClass(s *goquery.Selection) bool {
	class, ok := s.Attr("class")
	if !ok {
		return false
	}
	for _, name := range strings.Fields(strings.ToLower(class)) {
		for _, pattern := range encyclopedicNoiseClasses {
			if strings.Contains(name, pattern) {
				return true
			}
		}
	}
	return false
}
