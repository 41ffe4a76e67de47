// This file implements spec §4.6's "glyph outliner": glyph id -> cubic
// path in page coordinates. Go has no skrifa-equivalent outline API
// behind go-text/typesetting's shaper, so outline extraction goes
// through golang.org/x/image/font/sfnt's Buffer.LoadGlyph, which the
// teacher already uses for metrics/bounds in fonts/opentype.go.
package shaper

import (
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/wudi/slidekit/resources"
)

// SegmentOp mirrors sfnt.SegmentOp's four path commands.
type SegmentOp int

const (
	OpMoveTo SegmentOp = iota
	OpLineTo
	OpQuadTo
	OpCubeTo
)

// PathSegment is one outline path command in page-coordinate points (y
// grows downward), already scaled from font units to the run's font
// size and translated to (originX, originY).
type PathSegment struct {
	Op               SegmentOp
	X, Y             float64
	ControlX, ControlY   float64
	Control2X, Control2Y float64
}

// GlyphOutline extracts glyph id's outline from font, scaled to
// fontSize and translated so the glyph's origin sits at (originX,
// originY) in page coordinates. Quadratic segments are returned as
// quads; PDF-targeting callers convert to cubics with the standard
// (last + 2*control)/3 rule (spec §4.6).
func GlyphOutline(font *resources.LoadedFont, glyphID int, fontSize, originX, originY float64) ([]PathSegment, error) {
	sf, err := sfnt.Parse(font.Data)
	if err != nil {
		return nil, err
	}
	var buf sfnt.Buffer
	ppem := fixed.Int26_6(fontSize * 64)
	segs, err := sf.LoadGlyph(&buf, sfnt.GlyphIndex(glyphID), ppem, nil)
	if err != nil {
		return nil, err
	}
	// LoadGlyph's segments are already scaled to ppem (fontSize) and
	// have y growing downward, so only the 26.6 unit and origin remain.
	out := make([]PathSegment, 0, len(segs))
	toPt := func(p fixed.Point26_6) (float64, float64) {
		return originX + float64(p.X)/64, originY + float64(p.Y)/64
	}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			x, y := toPt(seg.Args[0])
			out = append(out, PathSegment{Op: OpMoveTo, X: x, Y: y})
		case sfnt.SegmentOpLineTo:
			x, y := toPt(seg.Args[0])
			out = append(out, PathSegment{Op: OpLineTo, X: x, Y: y})
		case sfnt.SegmentOpQuadTo:
			cx, cy := toPt(seg.Args[0])
			x, y := toPt(seg.Args[1])
			out = append(out, PathSegment{Op: OpQuadTo, ControlX: cx, ControlY: cy, X: x, Y: y})
		case sfnt.SegmentOpCubeTo:
			cx, cy := toPt(seg.Args[0])
			cx2, cy2 := toPt(seg.Args[1])
			x, y := toPt(seg.Args[2])
			out = append(out, PathSegment{Op: OpCubeTo, ControlX: cx, ControlY: cy, Control2X: cx2, Control2Y: cy2, X: x, Y: y})
		}
	}
	return out, nil
}

// QuadToCubic converts a quadratic Bezier (from, control, to) to the
// equivalent cubic control points, using the standard
// (last + 2*control)/3 rule referenced in spec §4.6.
func QuadToCubic(fromX, fromY, ctrlX, ctrlY, toX, toY float64) (c1x, c1y, c2x, c2y float64) {
	c1x = fromX + 2.0/3.0*(ctrlX-fromX)
	c1y = fromY + 2.0/3.0*(ctrlY-fromY)
	c2x = toX + 2.0/3.0*(ctrlX-toX)
	c2y = toY + 2.0/3.0*(ctrlY-toY)
	return
}
