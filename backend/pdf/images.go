// Raster and SVG image preprocessing: spec §4.11(b)/(c). Raster images
// become DeviceRGB image X-objects with an optional DeviceGray SMask
// X-object carrying the source alpha channel; SVG images are rasterized
// by svgembed.go and embedded through the same raster path, not as
// vector content. Grounded on the
// teacher's builder/images.go decode/SMask-split pattern (adapted here
// directly into the PDF backend rather than kept as a separate builder
// layer, per DESIGN.md).
package pdf

import (
	"image"

	"github.com/wudi/slidekit/ir/raw"
)

// embedRasterImage registers img (already decoded by content.BuildContentMap)
// as an Image XObject, splitting out a DeviceGray SMask when any pixel
// is not fully opaque.
func (c *Composer) embedRasterImage(img image.Image) raw.ObjectRef {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	rgb := make([]byte, 0, w*h*3)
	alpha := make([]byte, 0, w*h)
	hasAlpha := false
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bch, a := img.At(x, y).RGBA()
			rgb = append(rgb, byte(r>>8), byte(g>>8), byte(bch>>8))
			av := byte(a >> 8)
			if av != 255 {
				hasAlpha = true
			}
			alpha = append(alpha, av)
		}
	}

	imgDict := raw.Dict()
	imgDict.Set(raw.NameLiteral("Type"), raw.NameLiteral("XObject"))
	imgDict.Set(raw.NameLiteral("Subtype"), raw.NameLiteral("Image"))
	imgDict.Set(raw.NameLiteral("Width"), raw.NumberInt(int64(w)))
	imgDict.Set(raw.NameLiteral("Height"), raw.NumberInt(int64(h)))
	imgDict.Set(raw.NameLiteral("ColorSpace"), raw.NameLiteral("DeviceRGB"))
	imgDict.Set(raw.NameLiteral("BitsPerComponent"), raw.NumberInt(8))

	if hasAlpha {
		maskDict := raw.Dict()
		maskDict.Set(raw.NameLiteral("Type"), raw.NameLiteral("XObject"))
		maskDict.Set(raw.NameLiteral("Subtype"), raw.NameLiteral("Image"))
		maskDict.Set(raw.NameLiteral("Width"), raw.NumberInt(int64(w)))
		maskDict.Set(raw.NameLiteral("Height"), raw.NumberInt(int64(h)))
		maskDict.Set(raw.NameLiteral("ColorSpace"), raw.NameLiteral("DeviceGray"))
		maskDict.Set(raw.NameLiteral("BitsPerComponent"), raw.NumberInt(8))
		maskStream, err := c.builder.NewStream(maskDict, alpha, true, c.compressionLevel)
		if err != nil {
			maskStream = raw.NewStream(maskDict, alpha)
		}
		ref := c.builder.Add(maskStream)
		imgDict.Set(raw.NameLiteral("SMask"), raw.Ref(ref.Num, ref.Gen))
	}

	imgStream, err := c.builder.NewStream(imgDict, rgb, true, c.compressionLevel)
	if err != nil {
		imgStream = raw.NewStream(imgDict, rgb)
	}
	return c.builder.Add(imgStream)
}
