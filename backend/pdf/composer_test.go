package pdf

import (
	"encoding/hex"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/slidekit/canvas"
	"github.com/wudi/slidekit/content"
	"github.com/wudi/slidekit/geo"
	"github.com/wudi/slidekit/node"
)

func emptyPage(w, h float64) *node.Page {
	return node.NewPage(0, w, h)
}

func TestLinkAnnotationRectAndAction(t *testing.T) {
	c := NewComposer(-1)
	c.BeginPages(1)

	cv := &canvas.Canvas{
		Links: []canvas.Link{{
			Rect: geo.Rectangle{X: 10, Y: 20, Width: 30, Height: 40},
			URL:  "https://example.org",
		}},
	}
	require.NoError(t, c.EmitPage(0, emptyPage(100, 100), cv, content.ContentMap{}))

	out, err := c.Finish()
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "/Subtype /Link")
	// (x, h-y, x+w, h-y-height) per the spec's rect-flip formula.
	assert.Contains(t, text, "/Rect [10 80 40 40]")
	assert.Contains(t, text, "/S /URI")
	assert.Contains(t, text, "<"+hex.EncodeToString([]byte("https://example.org"))+">")
}

func TestEmitPageFlipsYAxis(t *testing.T) {
	c := NewComposer(-1)
	c.BeginPages(1)
	require.NoError(t, c.EmitPage(0, emptyPage(200, 150), &canvas.Canvas{}, content.ContentMap{}))

	out, err := c.Finish()
	require.NoError(t, err)
	assert.Contains(t, string(out), "1 0 0 -1 0 150.0000 cm")
}

func TestExtGStateDeduplication(t *testing.T) {
	c := NewComposer(-1)
	a := c.extGState(0.5, 1.0)
	b := c.extGState(0.5, 1.0)
	assert.Equal(t, a, b)

	d := c.extGState(0.25, 1.0)
	assert.NotEqual(t, a, d)
}

func TestRasterImageWithAlphaGetsSoftMask(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 255, A: 128}) // semitransparent

	c := NewComposer(-1)
	c.BeginPages(1)
	cm := content.ContentMap{
		0: {Width: 2, Height: 2, Kind: content.BodyBinImage, Image: img},
	}
	require.NoError(t, c.Preprocess(cm))
	require.NoError(t, c.EmitPage(0, emptyPage(10, 10), &canvas.Canvas{}, cm))

	out, err := c.Finish()
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "/SMask")
	assert.Contains(t, text, "/ColorSpace /DeviceGray")
	assert.Contains(t, text, "/ColorSpace /DeviceRGB")
	assert.Contains(t, text, "/BitsPerComponent 8")
}

func TestRasterImageFullyOpaqueHasNoSoftMask(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}

	c := NewComposer(-1)
	c.BeginPages(1)
	cm := content.ContentMap{
		0: {Width: 2, Height: 2, Kind: content.BodyBinImage, Image: img},
	}
	require.NoError(t, c.Preprocess(cm))

	out, errFinishPrep := finishWithPage(t, c, cm)
	require.NoError(t, errFinishPrep)
	assert.NotContains(t, string(out), "/SMask")
}

func finishWithPage(t *testing.T, c *Composer, cm content.ContentMap) ([]byte, error) {
	t.Helper()
	if err := c.EmitPage(0, emptyPage(10, 10), &canvas.Canvas{}, cm); err != nil {
		return nil, err
	}
	return c.Finish()
}

func TestSequentialRendersAreByteIdentical(t *testing.T) {
	render := func() []byte {
		c := NewComposer(-1)
		c.BeginPages(2)
		cv := &canvas.Canvas{Items: []canvas.DrawItem{{
			Kind: canvas.ItemBackground, Rect: geo.Rectangle{Width: 50, Height: 50},
			BgColor: geo.Color{R: 200, G: 100, B: 50, A: 255},
		}}}
		require.NoError(t, c.EmitPage(0, emptyPage(100, 100), cv, content.ContentMap{}))
		require.NoError(t, c.EmitPage(1, emptyPage(100, 100), cv, content.ContentMap{}))
		out, err := c.Finish()
		require.NoError(t, err)
		return out
	}
	assert.Equal(t, render(), render())
}
