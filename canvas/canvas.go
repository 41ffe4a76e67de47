// Package canvas builds the ordered draw-item list for one page (spec
// §4.9): a depth-first walk of the resolved node tree emitting
// background rects, content references, link regions, and child
// shapes, followed by a stable z-level sort. Grounded on
// original_source's render/canvas.rs, render/draw.rs, render/arrows.rs.
package canvas

import (
	"sort"

	"github.com/wudi/slidekit/geo"
	"github.com/wudi/slidekit/layoutexpr"
	"github.com/wudi/slidekit/node"
	"github.com/wudi/slidekit/pdflayout"
)

// ItemKind discriminates a DrawItem's payload.
type ItemKind int

const (
	ItemBackground ItemKind = iota
	ItemContent
	ItemRect
	ItemOval
	ItemPath
)

// DrawItem is one entry of a Canvas: a resolved, ready-to-paint shape
// or content reference, carrying the emitting node's z-level for the
// final stable sort.
type DrawItem struct {
	Kind     ItemKind
	ZLevel   int
	Seq      int // insertion order, used to prove z-sort stability
	Rect     geo.Rectangle
	Rounded  bool    // ItemBackground: border_radius > 0.001
	Radius   float64 // ItemBackground: the node's border_radius value
	BgColor  geo.Color

	Content node.ContentId // ItemContent

	Fill   *geo.Fill   // ItemRect/ItemOval/ItemPath
	Stroke *geo.Stroke // ItemRect/ItemOval/ItemPath

	Path []ResolvedPathPart // ItemPath
}

// ResolvedPathPart is one segment of a Path shape with its LayoutExpr
// coordinates already evaluated to points.
type ResolvedPathPart struct {
	Kind           node.PathPartKind
	X, Y           float64
	ControlX, ControlY   float64
	Control2X, Control2Y float64
}

// Link is a hyperlink region, kept in its own unsorted list per spec
// §4.9 ("Link regions are kept in their own list and not sorted").
type Link struct {
	Rect geo.Rectangle
	URL  string
}

// Canvas is one page's ordered draw items plus its link regions.
type Canvas struct {
	Items []DrawItem
	Links []Link
}

// Build walks page's node tree in the layout cl already solved for it,
// emitting a Canvas per spec §4.9. step selects which build state's
// Show values apply.
func Build(page *node.Page, cl *pdflayout.ComputedLayout, step int) (*Canvas, error) {
	c := &Canvas{}
	seq := 0
	if err := walk(&page.Node, cl, step, c, &seq); err != nil {
		return nil, err
	}
	sort.SliceStable(c.Items, func(i, j int) bool { return c.Items[i].ZLevel < c.Items[j].ZLevel })
	return c, nil
}

func walk(n *node.Node, cl *pdflayout.ComputedLayout, step int, c *Canvas, seq *int) error {
	if !n.Show.At(step) {
		return nil
	}
	rect, err := cl.Rect(n.NodeId)
	if err != nil {
		return err
	}

	if bg := n.BgColor.At(step); bg != nil {
		c.Items = append(c.Items, DrawItem{
			Kind: ItemBackground, ZLevel: n.ZLevel, Seq: *seq,
			Rect: rect, Rounded: n.BorderRadius > 0.001, Radius: n.BorderRadius, BgColor: *bg,
		})
		*seq++
	}
	if n.Content != nil {
		c.Items = append(c.Items, DrawItem{
			Kind: ItemContent, ZLevel: n.ZLevel, Seq: *seq,
			Rect: rect, Content: *n.Content,
		})
		*seq++
	}
	if n.URL != nil {
		c.Links = append(c.Links, Link{Rect: rect, URL: *n.URL})
	}

	for _, ch := range n.Children {
		switch ch.Kind {
		case node.ChildNode:
			if err := walk(ch.Node, cl, step, c, seq); err != nil {
				return err
			}
		case node.ChildShape:
			if err := emitShape(ch.Shape, n.NodeId, cl, c, seq); err != nil {
				return err
			}
		}
	}
	return nil
}

func emitShape(s *node.Shape, parent node.Id, cl *pdflayout.ComputedLayout, c *Canvas, seq *int) error {
	ctx := exprCtx{cl: cl}
	switch s.Kind {
	case node.ShapeRect, node.ShapeOval:
		x1, err := layoutexpr.Eval(s.P1.X, ctx, int(parent))
		if err != nil {
			return err
		}
		y1, err := layoutexpr.Eval(s.P1.Y, ctx, int(parent))
		if err != nil {
			return err
		}
		x2, err := layoutexpr.Eval(s.P2.X, ctx, int(parent))
		if err != nil {
			return err
		}
		y2, err := layoutexpr.Eval(s.P2.Y, ctx, int(parent))
		if err != nil {
			return err
		}
		rect := normalizeRect(x1, y1, x2, y2)
		kind := ItemRect
		if s.Kind == node.ShapeOval {
			kind = ItemOval
		}
		c.Items = append(c.Items, DrawItem{
			Kind: kind, ZLevel: s.Z, Seq: *seq,
			Rect: rect, Fill: s.Fill, Stroke: s.Stroke,
		})
		*seq++
		return nil
	case node.ShapePath:
		parts := make([]ResolvedPathPart, 0, len(s.Parts))
		for _, p := range s.Parts {
			rp := ResolvedPathPart{Kind: p.Kind}
			if p.Point.X != nil {
				x, err := layoutexpr.Eval(p.Point.X, ctx, int(parent))
				if err != nil {
					return err
				}
				y, err := layoutexpr.Eval(p.Point.Y, ctx, int(parent))
				if err != nil {
					return err
				}
				rp.X, rp.Y = x, y
			}
			if p.Control.X != nil {
				cx, err := layoutexpr.Eval(p.Control.X, ctx, int(parent))
				if err != nil {
					return err
				}
				cy, err := layoutexpr.Eval(p.Control.Y, ctx, int(parent))
				if err != nil {
					return err
				}
				rp.ControlX, rp.ControlY = cx, cy
			}
			if p.Control2.X != nil {
				cx, err := layoutexpr.Eval(p.Control2.X, ctx, int(parent))
				if err != nil {
					return err
				}
				cy, err := layoutexpr.Eval(p.Control2.Y, ctx, int(parent))
				if err != nil {
					return err
				}
				rp.Control2X, rp.Control2Y = cx, cy
			}
			parts = append(parts, rp)
		}
		parts = applyArrows(parts, s.StartArrow, s.EndArrow, s.Stroke)
		c.Items = append(c.Items, DrawItem{
			Kind: ItemPath, ZLevel: s.Z, Seq: *seq,
			Fill: s.Fill, Stroke: s.Stroke, Path: parts,
		})
		*seq++
	}
	return nil
}

func normalizeRect(x1, y1, x2, y2 float64) geo.Rectangle {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return geo.Rectangle{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// exprCtx adapts pdflayout.ComputedLayout to layoutexpr.Context for
// shape-coordinate evaluation (shapes are LayoutExpr-valued directly,
// resolved here rather than during the layout solve pass).
type exprCtx struct{ cl *pdflayout.ComputedLayout }

func (e exprCtx) Rect(nodeId int) (x, y, w, h float64, ok bool) {
	r, err := e.cl.Rect(node.Id(nodeId))
	if err != nil {
		return 0, 0, 0, 0, false
	}
	return r.X, r.Y, r.Width, r.Height, true
}

func (e exprCtx) Line(nodeId, lineIdx int) (x, y, w, h float64, ok bool) {
	return e.cl.Line(nodeId, lineIdx)
}

func (e exprCtx) Inline(nodeId, inlineId int) (x, y, w, h float64, ok bool) {
	return e.cl.Inline(nodeId, inlineId)
}

// RoundedRectPath returns the cubic-bezier path for a rounded rectangle
// built from four cubic quarter-circle corners, following original_source's
// Rectangle::draw_rounded (spec's SUPPLEMENTED FEATURES). radius is
// clamped to at most half of the rectangle's shorter side.
func RoundedRectPath(r geo.Rectangle, radius float64) []ResolvedPathPart {
	maxR := r.Width / 2
	if r.Height/2 < maxR {
		maxR = r.Height / 2
	}
	if radius > maxR {
		radius = maxR
	}
	if radius <= 0.001 {
		return []ResolvedPathPart{
			{Kind: node.PathMoveTo, X: r.X, Y: r.Y},
			{Kind: node.PathLineTo, X: r.X + r.Width, Y: r.Y},
			{Kind: node.PathLineTo, X: r.X + r.Width, Y: r.Y + r.Height},
			{Kind: node.PathLineTo, X: r.X, Y: r.Y + r.Height},
			{Kind: node.PathClose},
		}
	}

	k := radius * 0.5522847498 // cubic quarter-circle approximation factor (kappa)
	x0, y0 := r.X, r.Y
	x1, y1 := r.X+r.Width, r.Y+r.Height

	return []ResolvedPathPart{
		{Kind: node.PathMoveTo, X: x0 + radius, Y: y0},
		{Kind: node.PathLineTo, X: x1 - radius, Y: y0},
		{Kind: node.PathCubicTo, ControlX: x1 - radius + k, ControlY: y0, Control2X: x1, Control2Y: y0 + radius - k, X: x1, Y: y0 + radius},
		{Kind: node.PathLineTo, X: x1, Y: y1 - radius},
		{Kind: node.PathCubicTo, ControlX: x1, ControlY: y1 - radius + k, Control2X: x1 - radius + k, Control2Y: y1, X: x1 - radius, Y: y1},
		{Kind: node.PathLineTo, X: x0 + radius, Y: y1},
		{Kind: node.PathCubicTo, ControlX: x0 + radius - k, ControlY: y1, Control2X: x0, Control2Y: y1 - radius + k, X: x0, Y: y1 - radius},
		{Kind: node.PathLineTo, X: x0, Y: y0 + radius},
		{Kind: node.PathCubicTo, ControlX: x0, ControlY: y0 + radius - k, Control2X: x0 + radius - k, Control2Y: y0, X: x0 + radius, Y: y0},
		{Kind: node.PathClose},
	}
}
