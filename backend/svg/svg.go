// Package svg implements the SVG composition backend (spec §4.11): one
// standalone <svg> document per page, with a background <rect>, one
// element per canvas item, raster images as base64 data: URLs, and
// embedded SVG images inlined by reserialization. Grounded on
// original_source/renderer/src/render/canvas_svg.rs; XML construction
// uses etree, the pack's XML-building library (rupor-github-fb2cng).
package svg

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/beevik/etree"

	"github.com/wudi/slidekit/canvas"
	"github.com/wudi/slidekit/content"
	"github.com/wudi/slidekit/geo"
	"github.com/wudi/slidekit/node"
	"github.com/wudi/slidekit/rendererr"
	"github.com/wudi/slidekit/shaper"
)

// Composer collects one SVG string per page into a fixed-size vector,
// each page slot assigned under a briefly-held mutex (spec §5's
// collecting-backend pattern).
type Composer struct {
	mu    sync.Mutex
	pages []string
}

// NewComposer returns a Composer with nPages preallocated page slots.
func NewComposer(nPages int) *Composer {
	return &Composer{pages: make([]string, nPages)}
}

// NeedsImagePreprocessing reports false: the SVG backend embeds the
// original encoded image bytes directly.
func (c *Composer) NeedsImagePreprocessing() bool { return false }

// EmitPage renders one page's canvas to an SVG document string and
// assigns it to slot pageIdx.
func (c *Composer) EmitPage(pageIdx int, page *node.Page, cv *canvas.Canvas, cm content.ContentMap) error {
	s, err := RenderPage(page, cv, cm)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.pages[pageIdx] = s
	c.mu.Unlock()
	return nil
}

// Pages returns the collected per-page SVG strings in page order.
func (c *Composer) Pages() []string { return c.pages }

// RenderPage serializes one page's canvas as a standalone SVG document
// (exported separately because the PNG backend renders through the same
// SVG string before rasterizing, spec §4.11).
func RenderPage(page *node.Page, cv *canvas.Canvas, cm content.ContentMap) (string, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("svg")
	root.CreateAttr("xmlns", "http://www.w3.org/2000/svg")
	root.CreateAttr("xmlns:xlink", "http://www.w3.org/1999/xlink")
	root.CreateAttr("width", fnum(page.Width))
	root.CreateAttr("height", fnum(page.Height))
	root.CreateAttr("viewBox", fmt.Sprintf("0 0 %s %s", fnum(page.Width), fnum(page.Height)))

	if page.BgColor != nil {
		bg := root.CreateElement("rect")
		bg.CreateAttr("width", fnum(page.Width))
		bg.CreateAttr("height", fnum(page.Height))
		bg.CreateAttr("fill", colorAttr(*page.BgColor))
	}

	for _, item := range cv.Items {
		if err := emitItem(root, item, cm); err != nil {
			return "", err
		}
	}

	doc.Indent(2)
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return "", &rendererr.IOError{Op: "svg-serialize", Err: err}
	}
	return buf.String(), nil
}

func emitItem(root *etree.Element, item canvas.DrawItem, cm content.ContentMap) error {
	switch item.Kind {
	case canvas.ItemBackground:
		el := root.CreateElement("rect")
		el.CreateAttr("x", fnum(item.Rect.X))
		el.CreateAttr("y", fnum(item.Rect.Y))
		el.CreateAttr("width", fnum(item.Rect.Width))
		el.CreateAttr("height", fnum(item.Rect.Height))
		if item.Rounded {
			el.CreateAttr("rx", fnum(item.Radius))
		}
		el.CreateAttr("fill", colorAttr(item.BgColor))
		if !item.BgColor.Opaque() {
			el.CreateAttr("fill-opacity", fnum(item.BgColor.AlphaFraction()))
		}
	case canvas.ItemRect:
		el := root.CreateElement("rect")
		el.CreateAttr("x", fnum(item.Rect.X))
		el.CreateAttr("y", fnum(item.Rect.Y))
		el.CreateAttr("width", fnum(item.Rect.Width))
		el.CreateAttr("height", fnum(item.Rect.Height))
		paintAttrs(el, item.Fill, item.Stroke)
	case canvas.ItemOval:
		el := root.CreateElement("ellipse")
		el.CreateAttr("cx", fnum(item.Rect.X+item.Rect.Width/2))
		el.CreateAttr("cy", fnum(item.Rect.Y+item.Rect.Height/2))
		el.CreateAttr("rx", fnum(item.Rect.Width/2))
		el.CreateAttr("ry", fnum(item.Rect.Height/2))
		paintAttrs(el, item.Fill, item.Stroke)
	case canvas.ItemPath:
		el := root.CreateElement("path")
		el.CreateAttr("d", pathData(item.Path))
		paintAttrs(el, item.Fill, item.Stroke)
	case canvas.ItemContent:
		body, ok := cm[item.Content]
		if !ok {
			return nil
		}
		return emitContent(root, item.Rect, body, cm)
	}
	return nil
}

// emitContent places body inside a <g transform='translate(x,
// y)[,scale(sx, sy)]'> wrapper, the translate-only form used when both
// scale factors are within 1e-6 of 1 (spec §4.11/§6).
func emitContent(root *etree.Element, rect geo.Rectangle, body content.Content, cm content.ContentMap) error {
	sx, sy := 1.0, 1.0
	if body.Width > 0 {
		sx = rect.Width / body.Width
	}
	if body.Height > 0 {
		sy = rect.Height / body.Height
	}

	g := root.CreateElement("g")
	transform := fmt.Sprintf("translate(%s, %s)", fnum(rect.X), fnum(rect.Y))
	if !geo.NearlyUnitScale(sx, sy) {
		transform += fmt.Sprintf(",scale(%s, %s)", fnum(sx), fnum(sy))
	}
	g.CreateAttr("transform", transform)

	switch body.Kind {
	case content.BodyText:
		return emitShapedText(g, body.Shaped)
	case content.BodyBinImage:
		el := g.CreateElement("image")
		el.CreateAttr("width", fnum(body.Width))
		el.CreateAttr("height", fnum(body.Height))
		el.CreateAttr("xlink:href", fmt.Sprintf("data:image/%s;base64,%s",
			body.RawFormat, base64.StdEncoding.EncodeToString(body.RawData)))
	case content.BodySvgImage:
		sub := etree.NewDocument()
		if err := sub.ReadFromBytes(body.SvgSource); err != nil {
			return &rendererr.ConversionError{Stage: "svg-inline", Err: err}
		}
		if el := sub.Root(); el != nil {
			inner := el.Copy()
			inner.RemoveAttr("width")
			inner.RemoveAttr("height")
			inner.CreateAttr("width", fnum(body.Width))
			inner.CreateAttr("height", fnum(body.Height))
			g.AddChild(inner)
		}
	case content.BodyComposition:
		for _, sub := range body.CompositionItems {
			subBody, ok := cm[sub.Content]
			if !ok {
				continue
			}
			r := geo.Rectangle{X: sub.X, Y: sub.Y, Width: sub.Width, Height: sub.Height}
			if err := emitContent(g, r, subBody, cm); err != nil {
				return err
			}
		}
	}
	return nil
}

// emitShapedText draws each glyph as an outline <path> plus each
// underline/strikethrough decoration as a filled rect, in the text's
// own coordinate system (the caller's <g> wrapper owns placement).
func emitShapedText(g *etree.Element, st *shaper.ShapedText) error {
	if st == nil {
		return nil
	}
	for _, line := range st.Lines {
		for _, glyph := range line.Glyphs {
			segs, err := shaper.GlyphOutline(glyph.Font, glyph.ID, glyph.FontSize, glyph.X, glyph.Y)
			if err != nil {
				return &rendererr.ConversionError{Stage: "glyph-outline", Err: err}
			}
			if len(segs) == 0 {
				continue
			}
			el := g.CreateElement("path")
			el.CreateAttr("d", glyphPathData(segs))
			el.CreateAttr("fill", colorAttr(glyph.Color))
			if !glyph.Color.Opaque() {
				el.CreateAttr("fill-opacity", fnum(glyph.Color.AlphaFraction()))
			}
		}
		for _, d := range line.Decoration {
			el := g.CreateElement("rect")
			el.CreateAttr("x", fnum(d.X))
			el.CreateAttr("y", fnum(d.Y))
			el.CreateAttr("width", fnum(d.Width))
			el.CreateAttr("height", fnum(d.Thickness))
			el.CreateAttr("fill", colorAttr(d.Color))
		}
	}
	return nil
}

func paintAttrs(el *etree.Element, fill *geo.Fill, stroke *geo.Stroke) {
	if fill != nil {
		el.CreateAttr("fill", colorAttr(fill.Color))
		if !fill.Color.Opaque() {
			el.CreateAttr("fill-opacity", fnum(fill.Color.AlphaFraction()))
		}
	} else {
		el.CreateAttr("fill", "none")
	}
	if stroke != nil {
		el.CreateAttr("stroke", colorAttr(stroke.Color))
		el.CreateAttr("stroke-width", fnum(stroke.Width))
		if !stroke.Color.Opaque() {
			el.CreateAttr("stroke-opacity", fnum(stroke.Color.AlphaFraction()))
		}
		if len(stroke.Dash) > 0 {
			var b bytes.Buffer
			for i, d := range stroke.Dash {
				if i > 0 {
					b.WriteByte(',')
				}
				b.WriteString(fnum(d))
			}
			el.CreateAttr("stroke-dasharray", b.String())
		}
	}
}

func pathData(parts []canvas.ResolvedPathPart) string {
	var b bytes.Buffer
	for _, p := range parts {
		switch p.Kind {
		case node.PathMoveTo:
			fmt.Fprintf(&b, "M %s %s ", fnum(p.X), fnum(p.Y))
		case node.PathLineTo:
			fmt.Fprintf(&b, "L %s %s ", fnum(p.X), fnum(p.Y))
		case node.PathQuadTo:
			fmt.Fprintf(&b, "Q %s %s %s %s ", fnum(p.ControlX), fnum(p.ControlY), fnum(p.X), fnum(p.Y))
		case node.PathCubicTo:
			fmt.Fprintf(&b, "C %s %s %s %s %s %s ", fnum(p.ControlX), fnum(p.ControlY),
				fnum(p.Control2X), fnum(p.Control2Y), fnum(p.X), fnum(p.Y))
		case node.PathClose:
			b.WriteString("Z ")
		}
	}
	return trimTrailingSpace(b.String())
}

func glyphPathData(segs []shaper.PathSegment) string {
	var b bytes.Buffer
	for _, s := range segs {
		switch s.Op {
		case shaper.OpMoveTo:
			fmt.Fprintf(&b, "M %s %s ", fnum(s.X), fnum(s.Y))
		case shaper.OpLineTo:
			fmt.Fprintf(&b, "L %s %s ", fnum(s.X), fnum(s.Y))
		case shaper.OpQuadTo:
			fmt.Fprintf(&b, "Q %s %s %s %s ", fnum(s.ControlX), fnum(s.ControlY), fnum(s.X), fnum(s.Y))
		case shaper.OpCubeTo:
			fmt.Fprintf(&b, "C %s %s %s %s %s %s ", fnum(s.ControlX), fnum(s.ControlY),
				fnum(s.Control2X), fnum(s.Control2Y), fnum(s.X), fnum(s.Y))
		}
	}
	b.WriteString("Z")
	return b.String()
}

func trimTrailingSpace(s string) string {
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	return s
}

func colorAttr(c geo.Color) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

func fnum(v float64) string {
	s := fmt.Sprintf("%.4f", v)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}
