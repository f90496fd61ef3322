// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package classify decides which extraction strategy suits a URL.
package classify

import (
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/fetch"
)

var pdfSuffix = regexp.MustCompile(`(?i)(\.pdf|/pdf)$`)

// Prober issues the network probes used for classification.
type Prober interface {
	Head(ctx context.Context, url string) (*fetch.Response, error)
	Probe(ctx context.Context, url string) (*fetch.Response, error)
}

// Classifier maps URLs to extraction strategies. Network failures never
// surface as errors; a failed check simply does not match.
type Classifier struct {
	prober            Prober
	pdfHosts          []string
	encyclopedicHosts []string
	logger            *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithPDFHosts replaces the hosts whose URLs are PDFs whenever they
// mention "pdf".
func WithPDFHosts(hosts ...string) Option {
	return func(c *Classifier) {
		c.pdfHosts = lower(hosts)
	}
}

// WithEncyclopedicHosts replaces the hosts routed to the encyclopedic
// strategy.
func WithEncyclopedicHosts(hosts ...string) Option {
	return func(c *Classifier) {
		c.encyclopedicHosts = lower(hosts)
	}
}

// NewClassifier creates a Classifier.
func NewClassifier(prober Prober, opts ...Option) *Classifier {
	c := &Classifier{
		prober:            prober,
		pdfHosts:          []string{"flsenate.gov"},
		encyclopedicHosts: []string{"wikipedia.org"},
		logger:            slog.Default().With("component", "classifier"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the strategy for url. Checks run in order and the first
// match wins:
//  1. path ends in ".pdf" or "/pdf"
//  2. HEAD reports an application/pdf content type
//  3. a known PDF host with "pdf" anywhere in the URL
//  4. GET reports a PDF content type or the page embeds a PDF
//  5. a known encyclopedia host
//
// Anything else is generic.
func (c *Classifier) Classify(ctx context.Context, url string) core.Strategy {
	if pdfSuffix.MatchString(url) {
		return core.StrategyPDF
	}

	if resp, err := c.prober.Head(ctx, url); err != nil {
		c.logger.Debug("head probe failed", "url", url, "err", err)
	} else if resp.IsPDF() {
		return core.StrategyPDF
	}

	lowered := strings.ToLower(url)
	if strings.Contains(lowered, "pdf") && containsAny(lowered, c.pdfHosts) {
		return core.StrategyPDF
	}

	if resp, err := c.prober.Probe(ctx, url); err != nil {
		c.logger.Debug("get probe failed", "url", url, "err", err)
	} else if resp.IsPDF() || embedsPDF(resp.Body) {
		return core.StrategyPDF
	}

	if containsAny(lowered, c.encyclopedicHosts) {
		return core.StrategyEncyclopedic
	}
	return core.StrategyGeneric
}

// embedsPDF reports whether markup carries an embed, iframe or object
// that points at a PDF.
func embedsPDF(body []byte) bool {
	if len(body) == 0 {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return false
	}
	found := false
	doc.Find("embed[src], iframe[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		found = strings.Contains(strings.ToLower(src), ".pdf")
		return !found
	})
	if found {
		return true
	}
	doc.Find("object[data]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		data, _ := s.Attr("data")
		found = strings.Contains(strings.ToLower(data), ".pdf")
		return !found
	})
	return found
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func lower(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}
