package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneric_PrefersContainer(t *testing.T) {
	markup := `<html><body>
<nav><p>` + long("Navigation that is outside the main container") + `</p></nav>
<main>
  <h1>Title too short</h1>
  <p>` + long("First paragraph of the statute") + `</p>
  <ul><li>` + long("A list item that matters") + `</li></ul>
  <p>` + long("FIRST   paragraph of the STATUTE") + `</p>
</main></body></html>`

	got := NewGeneric(&stubDownloader{}).ExtractHTML("https://example.com", []byte(markup))
	lines := strings.Split(got, "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "First paragraph"))
	assert.True(t, strings.HasPrefix(lines[1], "A list item"))
	assert.NotContains(t, got, "Navigation")
}

func TestGeneric_Override(t *testing.T) {
	markup := `<html><body>
<main><p>` + long("Sidebar statute listing in main") + `</p></main>
<div id="text"><p>` + long("Section 1983 civil action text") + `</p></div>
</body></html>`

	g := NewGeneric(&stubDownloader{})
	got := g.ExtractHTML("https://www.law.cornell.edu/uscode/text/42/1983", []byte(markup))
	assert.True(t, strings.HasPrefix(got, "Section 1983"))

	got = g.ExtractHTML("https://example.com/other", []byte(markup))
	assert.True(t, strings.HasPrefix(got, "Sidebar statute"))
}

func TestGeneric_FallsBackToBody(t *testing.T) {
	markup := `<html><body><div><p>` + long("Body level paragraph") + `</p><script>var x = 1;</script></div></body></html>`
	got := NewGeneric(&stubDownloader{}).ExtractHTML("https://example.com", []byte(markup))
	assert.True(t, strings.HasPrefix(got, "Body level paragraph"))
	assert.NotContains(t, got, "var x")
}

func TestGeneric_JoinsNestedText(t *testing.T) {
	markup := `<main><p>The court <b>held</b> that the <a href="#">statute</a> applies to every contract formed after enactment.</p></main>`
	got := NewGeneric(&stubDownloader{}).ExtractHTML("https://example.com", []byte(markup))
	assert.Equal(t, "The court held that the statute applies to every contract formed after enactment.", got)
}

func TestGeneric_ShortTextDropped(t *testing.T) {
	markup := `<main><p>exactly fifty characters of text in this paragraph</p></main>`
	assert.Equal(t, "", NewGeneric(&stubDownloader{}).ExtractHTML("https://example.com", []byte(markup)))
}

func TestGeneric_TransportFailure(t *testing.T) {
	d := &stubDownloader{err: errTransport}
	assert.Equal(t, "", NewGeneric(d).Extract(context.Background(), "https://example.com"))
	assert.Equal(t, 1, d.calls)
}

func TestGeneric_Extract(t *testing.T) {
	d := &stubDownloader{body: `<article><p>` + long("Article paragraph") + `</p></article>`}
	got := NewGeneric(d).Extract(context.Background(), "https://example.com")
	assert.True(t, strings.HasPrefix(got, "Article paragraph"))
}
