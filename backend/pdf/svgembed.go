// SVG-to-PDF embedding. The Rust original pipes embedded SVG images
// through svg2pdf, which has no Go equivalent anywhere in the corpus;
// the nearest grounded tool the pack actually carries is oksvg/rasterx
// (used by the teacher's image-handling peers for exactly this
// "rasterize an SVG" step, see rupor-github-fb2cng/utils/images/svg.go).
// svgembed therefore flattens the SVG to an RGBA raster at its
// intrinsic size and embeds it the same way a registered raster image
// is embedded, rather than re-deriving vector path operators.
package pdf

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/wudi/slidekit/ir/raw"
	"github.com/wudi/slidekit/rendererr"
)

const defaultSVGFlattenSize = 1024

// embedSVGImage rasterizes svgSource at its intrinsic (or a default)
// resolution and registers the result as an Image XObject.
func (c *Composer) embedSVGImage(svgSource []byte) (raw.ObjectRef, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgSource))
	if err != nil {
		return raw.ObjectRef{}, &rendererr.ConversionError{Stage: "svg-to-pdf", Err: err}
	}

	w := int(math.Ceil(icon.ViewBox.W))
	h := int(math.Ceil(icon.ViewBox.H))
	if w <= 0 {
		w = defaultSVGFlattenSize
	}
	if h <= 0 {
		h = defaultSVGFlattenSize
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.RGBA{R: 0, G: 0, B: 0, A: 0}}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)

	return c.embedRasterImage(dst), nil
}
