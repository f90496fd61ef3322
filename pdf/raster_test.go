package pdf

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRasterizer struct {
	pages [][]byte
	err   error
	calls int
}

func (s *stubRasterizer) Rasterize(data []byte) ([][]byte, error) {
	s.calls++
	return s.pages, s.err
}

func TestChain_FirstSuccessWins(t *testing.T) {
	failing := &stubRasterizer{err: errors.New("no renderer")}
	working := &stubRasterizer{pages: [][]byte{[]byte("png")}}
	unused := &stubRasterizer{pages: [][]byte{[]byte("other")}}

	pages, err := Chain{failing, working, unused}.Rasterize([]byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("png")}, pages)
	assert.Equal(t, 1, failing.calls)
	assert.Zero(t, unused.calls)
}

func TestChain_AllFail(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")
	_, err := Chain{&stubRasterizer{err: first}, &stubRasterizer{err: second}}.Rasterize(nil)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)

	_, err = Chain{}.Rasterize(nil)
	assert.ErrorIs(t, err, ErrRasterizeFailed)
}

func TestUpscale(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 3))
	src.Set(1, 1, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	out, err := upscale(buf.Bytes(), 2)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 8, decoded.Bounds().Dx())
	assert.Equal(t, 6, decoded.Bounds().Dy())

	same, err := upscale(buf.Bytes(), 1)
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), same)
}

func TestRasterizers_RejectEmpty(t *testing.T) {
	_, err := NewFitzRasterizer().Rasterize(nil)
	assert.ErrorIs(t, err, ErrEmptyDocument)
	_, err = NewImageRasterizer().Rasterize(nil)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestTextLayer_RejectsGarbage(t *testing.T) {
	_, err := NewTextLayer().Pages(nil)
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = NewTextLayer().Pages([]byte("not a pdf at all"))
	assert.ErrorIs(t, err, ErrOpenFailed)
}
