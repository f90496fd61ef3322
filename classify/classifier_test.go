package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/fetch"
	"github.com/stretchr/testify/assert"
)

type stubProber struct {
	head      *fetch.Response
	headErr   error
	probe     *fetch.Response
	probeErr  error
	headCalls int
	getCalls  int
}

func (s *stubProber) Head(ctx context.Context, url string) (*fetch.Response, error) {
	s.headCalls++
	if s.headErr != nil {
		return nil, s.headErr
	}
	if s.head == nil {
		return &fetch.Response{StatusCode: 200, ContentType: "text/html"}, nil
	}
	return s.head, nil
}

func (s *stubProber) Probe(ctx context.Context, url string) (*fetch.Response, error) {
	s.getCalls++
	if s.probeErr != nil {
		return nil, s.probeErr
	}
	if s.probe == nil {
		return &fetch.Response{StatusCode: 200, ContentType: "text/html"}, nil
	}
	return s.probe, nil
}

func TestClassify_SuffixSkipsNetwork(t *testing.T) {
	p := &stubProber{}
	c := NewClassifier(p)
	assert.Equal(t, core.StrategyPDF, c.Classify(context.Background(), "https://example.com/a/Report.PDF"))
	assert.Equal(t, core.StrategyPDF, c.Classify(context.Background(), "https://example.com/bill/pdf"))
	assert.Zero(t, p.headCalls)
	assert.Zero(t, p.getCalls)
}

func TestClassify_HeadContentType(t *testing.T) {
	p := &stubProber{head: &fetch.Response{StatusCode: 200, ContentType: "application/pdf"}}
	c := NewClassifier(p)
	assert.Equal(t, core.StrategyPDF, c.Classify(context.Background(), "https://example.com/download?id=3"))
	assert.Zero(t, p.getCalls)
}

func TestClassify_KnownPDFHost(t *testing.T) {
	p := &stubProber{headErr: errors.New("refused")}
	c := NewClassifier(p)
	got := c.Classify(context.Background(), "https://www.flsenate.gov/Session/Bill/2024/1/BillText/Filed/PDF?x=1")
	assert.Equal(t, core.StrategyPDF, got)
	assert.Zero(t, p.getCalls)
}

func TestClassify_EmbeddedPDF(t *testing.T) {
	cases := []string{
		`<html><body><embed src="/files/Doc.PDF"></body></html>`,
		`<html><body><iframe src="viewer/x.pdf#page=2"></iframe></body></html>`,
		`<html><body><object data="/a/b.pdf"></object></body></html>`,
	}
	for _, body := range cases {
		p := &stubProber{probe: &fetch.Response{StatusCode: 200, ContentType: "text/html", Body: []byte(body)}}
		c := NewClassifier(p)
		assert.Equal(t, core.StrategyPDF, c.Classify(context.Background(), "https://example.com/page"), body)
	}
}

func TestClassify_GetContentType(t *testing.T) {
	p := &stubProber{probe: &fetch.Response{StatusCode: 200, ContentType: "application/pdf; qs=0.1"}}
	c := NewClassifier(p)
	assert.Equal(t, core.StrategyPDF, c.Classify(context.Background(), "https://example.com/page"))
}

func TestClassify_Encyclopedic(t *testing.T) {
	c := NewClassifier(&stubProber{})
	assert.Equal(t, core.StrategyEncyclopedic, c.Classify(context.Background(), "https://en.wikipedia.org/wiki/Tort"))
}

func TestClassify_Generic(t *testing.T) {
	p := &stubProber{
		headErr:  errors.New("timeout"),
		probeErr: errors.New("timeout"),
	}
	c := NewClassifier(p)
	assert.Equal(t, core.StrategyGeneric, c.Classify(context.Background(), "https://example.com/statute"))
	assert.Equal(t, 1, p.headCalls)
	assert.Equal(t, 1, p.getCalls)
}

func TestClassify_CustomHosts(t *testing.T) {
	c := NewClassifier(&stubProber{}, WithEncyclopedicHosts("Britannica.com"), WithPDFHosts("legis.example"))
	assert.Equal(t, core.StrategyEncyclopedic, c.Classify(context.Background(), "https://www.britannica.com/topic/law"))
	assert.Equal(t, core.StrategyGeneric, c.Classify(context.Background(), "https://en.wikipedia.org/wiki/Tort"))
	assert.Equal(t, core.StrategyPDF, c.Classify(context.Background(), "https://legis.example/bill?format=pdf"))
}
