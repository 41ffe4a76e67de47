// Package pdflayout implements the per-page layout solver described in
// spec §4.8: a flex/grid box-model pass over the node tree followed by
// a post-resolve pass that evaluates absolute positioning and
// layoutexpr-valued dimensions against already-finalized sibling
// geometry. Grounded on original_source's render/layout.rs; no example
// repo in the corpus implements a CSS-flexbox-equivalent solver (the
// Rust original's `taffy` crate has no Go port), so this is hand-written
// against the standard library, in the small-dependency-free-numeric-
// core style of the teacher's own coords package (see DESIGN.md).
package pdflayout

import (
	"sort"

	"github.com/wudi/slidekit/content"
	"github.com/wudi/slidekit/geo"
	"github.com/wudi/slidekit/layoutexpr"
	"github.com/wudi/slidekit/node"
	"github.com/wudi/slidekit/rendererr"
	"github.com/wudi/slidekit/shaper"
)

// ComputedLayout is the solver's output for one page: a resolved
// rectangle per visible node, plus the shaped text attached to any
// text-bearing node (needed for Line*/Inline* expression evaluation).
// Expression evaluation reaches it through the layoutCtx adapter, which
// implements layoutexpr.Context.
type ComputedLayout struct {
	rects  map[node.Id]geo.Rectangle
	texts  map[node.Id]*shaper.ShapedText
	anchor map[node.Id]map[node.InlineId]geo.Rectangle
	order  []node.Id // node_id_order: post-order, leaves first

	// resolved marks nodes the pre-order resolve pass has finalized;
	// expression evaluation only sees these, so a reference to a later
	// sibling fails deterministically instead of reading its
	// box-model-relative rect (spec §9 "Cyclic/forward references").
	resolved map[node.Id]bool
}

// Rect returns the resolved rectangle for a NodeId, or an error if the
// node has not yet been solved (spec §8: "querying a non-resolved
// NodeId is an error").
func (c *ComputedLayout) Rect(id node.Id) (geo.Rectangle, error) {
	r, ok := c.rects[id]
	if !ok {
		return geo.Rectangle{}, &rendererr.InternalError{ReferencedNode: int(id), Reason: "node not resolved"}
	}
	return r, nil
}

// Text returns the shaped text attached to id, if any.
func (c *ComputedLayout) Text(id node.Id) (*shaper.ShapedText, bool) {
	t, ok := c.texts[id]
	return t, ok
}

// Rects returns a copy of every resolved node rectangle, keyed by node
// id (the layout-report backend's entire output, spec §4.11).
func (c *ComputedLayout) Rects() map[node.Id]geo.Rectangle {
	out := make(map[node.Id]geo.Rectangle, len(c.rects))
	for id, r := range c.rects {
		out[id] = r
	}
	return out
}

// --- layoutexpr.Context implementation ---

func (c *ComputedLayout) ctxRect(id int) (x, y, w, h float64, ok bool) {
	if c.resolved != nil && !c.resolved[node.Id(id)] {
		return 0, 0, 0, 0, false
	}
	r, found := c.rects[node.Id(id)]
	if !found {
		return 0, 0, 0, 0, false
	}
	return r.X, r.Y, r.Width, r.Height, true
}

// exprRect returns geometry in the shape of layoutexpr.Context's Rect
// (not an error: ok=false signals a forward/unknown reference).
func (c *ComputedLayout) exprRect(nodeId int) (x, y, w, h float64, ok bool) {
	return c.ctxRect(nodeId)
}

func (c *ComputedLayout) Line(nodeId, lineIdx int) (x, y, w, h float64, ok bool) {
	st, found := c.texts[node.Id(nodeId)]
	if !found || lineIdx < 0 || lineIdx >= len(st.Lines) {
		return 0, 0, 0, 0, false
	}
	l := st.Lines[lineIdx]
	base := c.rects[node.Id(nodeId)]
	return base.X + l.Rect.X, base.Y + l.Rect.Y, l.Rect.Width, l.Rect.Height, true
}

func (c *ComputedLayout) Inline(nodeId, inlineId int) (x, y, w, h float64, ok bool) {
	anchors, found := c.anchor[node.Id(nodeId)]
	if !found {
		return 0, 0, 0, 0, false
	}
	r, found := anchors[node.InlineId(inlineId)]
	if !found {
		return 0, 0, 0, 0, false
	}
	base := c.rects[node.Id(nodeId)]
	return base.X + r.X, base.Y + r.Y, r.Width, r.Height, true
}

// layoutCtx adapts ComputedLayout to layoutexpr.Context (the Rect
// signature differs slightly -- geo.Rectangle vs. four scalars -- to
// keep layoutexpr leaf-package-free of a geo import; bridged here).
type layoutCtx struct{ c *ComputedLayout }

func (l layoutCtx) Rect(nodeId int) (x, y, w, h float64, ok bool)   { return l.c.exprRect(nodeId) }
func (l layoutCtx) Line(nodeId, lineIdx int) (x, y, w, h float64, ok bool) { return l.c.Line(nodeId, lineIdx) }
func (l layoutCtx) Inline(nodeId, inlineId int) (x, y, w, h float64, ok bool) {
	return l.c.Inline(nodeId, inlineId)
}

// Solve maps a Page to a ComputedLayout at the given build step (spec
// §4.8). cm supplies intrinsic content sizes for nodes with Content set.
func Solve(page *node.Page, cm content.ContentMap, step int) (*ComputedLayout, error) {
	cl := &ComputedLayout{
		rects:    map[node.Id]geo.Rectangle{},
		texts:    map[node.Id]*shaper.ShapedText{},
		anchor:   map[node.Id]map[node.InlineId]geo.Rectangle{},
		resolved: map[node.Id]bool{},
	}
	s := &solver{cm: cm, step: step, cl: cl}

	// Pass 1: post-order, bottom-up intrinsic sizing.
	s.measure(&page.Node)

	// Step 2: run the box model on the root with page dimensions as the
	// definite available space, producing absolute page rectangles.
	root := geo.Rectangle{X: 0, Y: 0, Width: page.Width, Height: page.Height}
	s.arrange(&page.Node, root, false)

	// Step 3 / pass B: pre-order top-down resolve of absolute origin +
	// LayoutExpr-valued dimensions, evaluated against already-finalized
	// earlier siblings (this IS the pre-order walk -- see DESIGN.md's
	// Open Question resolution).
	if err := s.resolve(&page.Node, node.Id(-1)); err != nil {
		return nil, err
	}

	return cl, nil
}

type solver struct {
	cm   content.ContentMap
	step int
	cl   *ComputedLayout

	intrinsic map[node.Id]intrinsicSize
}

type intrinsicSize struct {
	w, h     float64
	hasW     bool
	hasH     bool
	aspect   float64 // w/h of the content, 0 if none
}

// measure walks the tree post-order (leaves first), recording each
// node's intrinsic content-driven size (spec §4.8 step 1's "content's
// intrinsic size supplies both; if only one is missing, the aspect
// ratio supplies a constraint").
func (s *solver) measure(n *node.Node) {
	if s.intrinsic == nil {
		s.intrinsic = map[node.Id]intrinsicSize{}
	}
	for _, ch := range n.Children {
		if ch.Kind == node.ChildNode {
			s.measure(ch.Node)
		}
	}
	var is intrinsicSize
	if n.Content != nil {
		if c, ok := s.cm[*n.Content]; ok && c.Width > 0 && c.Height > 0 {
			is = intrinsicSize{w: c.Width, h: c.Height, hasW: true, hasH: true, aspect: c.Width / c.Height}
		}
	}
	s.intrinsic[n.NodeId] = is
	s.cl.order = append(s.cl.order, n.NodeId)
}

func resolveLength(l node.Length, basis float64) float64 {
	if l.IsFraction() {
		return l.Fraction * basis
	}
	return l.Points
}

// resolvedDim returns the definite size of a node's width or height
// given the containing basis, falling back to intrinsic content size
// (and the content's aspect ratio against the other definite
// dimension) when the attribute is Auto or expression-valued (box-model
// treats LayoutExpr dimensions as auto per spec §3's invariant).
func (s *solver) resolvedDim(loe node.LengthOrExpr, basis float64, intrinsic float64, hasIntrinsic bool, otherDefinite float64, otherHasIntrinsic bool, aspect float64, otherIsWidth bool) (float64, bool) {
	if !loe.IsExpr() && (loe.Length.Points != 0 || loe.Length.IsFraction()) {
		return resolveLength(loe.Length, basis), true
	}
	if hasIntrinsic {
		if otherDefinite > 0 && aspect > 0 {
			if otherIsWidth {
				return otherDefinite / aspect, true
			}
			return otherDefinite * aspect, true
		}
		return intrinsic, true
	}
	return 0, false
}

// axisMainIsRow reports whether the main axis for arranging n's
// children is horizontal, per the parent's row flag (spec §4.8 step 1).
func axisMainIsRow(n *node.Node) bool { return n.Row }

func isGrid(n *node.Node) bool {
	return len(n.GridTemplateRows) > 0 || len(n.GridTemplateColumns) > 0
}

func isAbsolute(n *node.Node, parentRow bool) bool {
	mainPosSet := false
	if parentRow {
		mainPosSet = n.X != nil
	} else {
		mainPosSet = n.Y != nil
	}
	return mainPosSet && !n.Width.IsExpr() && !n.Height.IsExpr()
}

// arrange runs the flex/grid box model over n's children inside rect
// (n's own border box, in absolute page coordinates), writing each
// child's absolute page rectangle into cl.rects. The pre-order resolve
// pass (resolve) then applies LayoutExpr overrides.
func (s *solver) arrange(n *node.Node, rect geo.Rectangle, selfAbsolute bool) {
	s.cl.rects[n.NodeId] = rect

	box := geo.Rectangle{
		X:      rect.X + n.Padding.Left,
		Y:      rect.Y + n.Padding.Top,
		Width:  rect.Width - n.Padding.Left - n.Padding.Right,
		Height: rect.Height - n.Padding.Top - n.Padding.Bottom,
	}
	if box.Width < 0 {
		box.Width = 0
	}
	if box.Height < 0 {
		box.Height = 0
	}

	var kids []*node.Node
	for _, ch := range n.Children {
		if ch.Kind == node.ChildNode {
			kids = append(kids, ch.Node)
		}
	}
	if len(kids) == 0 {
		return
	}

	if isGrid(n) {
		s.arrangeGrid(n, kids, box)
		return
	}
	s.arrangeFlex(n, kids, box)
}

type flexItem struct {
	n           *node.Node
	base        float64
	cross       float64
	grow, shrink float64
	margin      node.Sides
	absolute    bool
}

func (s *solver) arrangeFlex(n *node.Node, kids []*node.Node, box geo.Rectangle) {
	row := axisMainIsRow(n)
	mainBasis, crossBasis := box.Width, box.Height
	if !row {
		mainBasis, crossBasis = box.Height, box.Width
	}

	alignItems := n.AlignItems
	if alignItems == node.AlignAuto {
		alignItems = node.AlignCenter
	}
	justify := n.JustifyContent
	if justify == node.AlignAuto {
		justify = node.AlignCenter
	}

	gap := n.ColumnGap
	if !row {
		gap = n.RowGap
	}

	items := make([]flexItem, 0, len(kids))
	var flowIdx []int
	for i, k := range kids {
		abs := isAbsolute(k, row)
		is := s.intrinsic[k.NodeId]
		var main, cross float64
		if row {
			w, wok := s.resolvedDim(k.Width, mainBasis, is.w, is.hasW, 0, false, is.aspect, false)
			h, hok := s.resolvedDim(k.Height, crossBasis, is.h, is.hasH, w, wok && is.aspect > 0, is.aspect, true)
			main, cross = w, h
			_ = hok
		} else {
			h, hok := s.resolvedDim(k.Height, mainBasis, is.h, is.hasH, 0, false, is.aspect, true)
			w, wok := s.resolvedDim(k.Width, crossBasis, is.w, is.hasW, h, hok && is.aspect > 0, is.aspect, false)
			main, cross = h, w
			_ = wok
		}
		items = append(items, flexItem{n: k, base: main, cross: cross, grow: k.FlexGrow, shrink: k.FlexShrink, margin: k.Margin, absolute: abs})
		if !abs {
			flowIdx = append(flowIdx, i)
		}
	}

	// Distribute remaining main-axis space among flex-flow items.
	sumBase := 0.0
	for _, fi := range flowIdx {
		it := items[fi]
		sumBase += it.base + it.margin.Top + it.margin.Bottom
		if row {
			sumBase = sumBase - it.margin.Top - it.margin.Bottom + it.margin.Left + it.margin.Right
		}
	}
	if n := len(flowIdx); n > 1 {
		sumBase += gap * float64(n-1)
	}
	remaining := mainBasis - sumBase

	if remaining > 0 {
		totalGrow := 0.0
		for _, fi := range flowIdx {
			totalGrow += items[fi].grow
		}
		if totalGrow > 0 {
			for _, fi := range flowIdx {
				items[fi].base += remaining * items[fi].grow / totalGrow
			}
		}
	} else if remaining < 0 {
		totalShrink := 0.0
		for _, fi := range flowIdx {
			totalShrink += items[fi].shrink * items[fi].base
		}
		if totalShrink > 0 {
			for _, fi := range flowIdx {
				w := items[fi].shrink * items[fi].base / totalShrink
				items[fi].base += remaining * w
				if items[fi].base < 0 {
					items[fi].base = 0
				}
			}
		}
	}

	// main-axis positions
	usedMain := 0.0
	for _, fi := range flowIdx {
		usedMain += items[fi].base
	}
	if len(flowIdx) > 1 {
		usedMain += gap * float64(len(flowIdx)-1)
	}
	freeMain := mainBasis - usedMain
	if freeMain < 0 {
		freeMain = 0
	}

	var cursor, spacing float64
	switch justify {
	case node.AlignCenter:
		cursor = freeMain / 2
	case node.AlignEnd:
		cursor = freeMain
	case node.AlignSpaceBetween:
		if len(flowIdx) > 1 {
			spacing = freeMain / float64(len(flowIdx)-1)
		}
	case node.AlignSpaceAround:
		if len(flowIdx) > 0 {
			spacing = freeMain / float64(len(flowIdx))
			cursor = spacing / 2
		}
	}

	order := flowIdx
	if n.Reverse {
		order = make([]int, len(flowIdx))
		for i, v := range flowIdx {
			order[len(flowIdx)-1-i] = v
		}
	}

	for oi, fi := range order {
		it := &items[fi]
		crossAlign := it.n.AlignSelf
		if crossAlign == node.AlignAuto {
			crossAlign = alignItems
		}
		cross := it.cross
		var crossOffset float64
		if crossAlign == node.AlignStretch || cross == 0 {
			cross = crossBasis
		}
		switch crossAlign {
		case node.AlignCenter:
			crossOffset = (crossBasis - cross) / 2
		case node.AlignEnd:
			crossOffset = crossBasis - cross
		}

		var childRect geo.Rectangle
		if row {
			childRect = geo.Rectangle{X: box.X + cursor, Y: box.Y + crossOffset, Width: it.base, Height: cross}
		} else {
			childRect = geo.Rectangle{X: box.X + crossOffset, Y: box.Y + cursor, Width: cross, Height: it.base}
		}
		s.arrange(it.n, childRect, it.absolute)
		cursor += it.base + gap + spacing
		_ = oi
	}

	// Absolute-positioned flow children: give them a placeholder rect
	// sized by their resolved width/height (origin fixed up in resolve).
	for i, it := range items {
		if !it.absolute {
			continue
		}
		w, h := it.base, it.cross
		if row {
			s.arrange(kids[i], geo.Rectangle{X: box.X, Y: box.Y, Width: w, Height: h}, true)
		} else {
			s.arrange(kids[i], geo.Rectangle{X: box.X, Y: box.Y, Width: h, Height: w}, true)
		}
	}
}

// arrangeGrid implements a row-major auto-placement CSS-grid subset:
// fixed/percent/flex-fraction ("fr") track sizing and Auto/Line/Span
// placement (spec §3's GridPlacement, §8's "empty templates fall back
// to flex" boundary case).
func (s *solver) arrangeGrid(n *node.Node, kids []*node.Node, box geo.Rectangle) {
	if len(n.GridTemplateRows) == 0 && len(n.GridTemplateColumns) == 0 {
		s.arrangeFlex(n, kids, box)
		return
	}
	cols := resolveTracks(n.GridTemplateColumns, box.Width, n.ColumnGap)
	rows := resolveTracks(n.GridTemplateRows, box.Height, n.RowGap)
	if len(cols) == 0 {
		cols = []track{{size: box.Width}}
	}
	if len(rows) == 0 {
		rows = []track{{size: box.Height}}
	}

	colOffsets := trackOffsets(cols, n.ColumnGap)
	rowOffsets := trackOffsets(rows, n.RowGap)

	autoRow, autoCol := 0, 0
	for _, k := range kids {
		colStart, colSpan := placementRange(k.GridColumn, autoCol, len(cols))
		rowStart, rowSpan := placementRange(k.GridRow, autoRow, len(rows))

		x0 := box.X + colOffsets[clampIdx(colStart, len(colOffsets)-1)]
		x1 := box.X + colOffsets[clampIdx(colStart+colSpan, len(colOffsets)-1)] - n.ColumnGap
		y0 := box.Y + rowOffsets[clampIdx(rowStart, len(rowOffsets)-1)]
		y1 := box.Y + rowOffsets[clampIdx(rowStart+rowSpan, len(rowOffsets)-1)] - n.RowGap

		rect := geo.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
		if rect.Width < 0 {
			rect.Width = 0
		}
		if rect.Height < 0 {
			rect.Height = 0
		}
		s.arrange(k, rect, isAbsolute(k, true))

		autoCol = colStart + colSpan
		if autoCol >= len(cols) {
			autoCol = 0
			autoRow++
		}
	}
}

type track struct{ size float64 }

func resolveTracks(specs []node.TrackSize, basis, gap float64) []track {
	if len(specs) == 0 {
		return nil
	}
	fixed := 0.0
	totalFlex := 0.0
	for _, t := range specs {
		switch t.Kind {
		case node.TrackPoints:
			fixed += t.Points
		case node.TrackPercent:
			fixed += t.Percent * basis
		case node.TrackFlex:
			totalFlex += t.Flex
		}
	}
	if len(specs) > 1 {
		fixed += gap * float64(len(specs)-1)
	}
	remaining := basis - fixed
	if remaining < 0 {
		remaining = 0
	}
	out := make([]track, len(specs))
	for i, t := range specs {
		switch t.Kind {
		case node.TrackPoints:
			out[i] = track{size: t.Points}
		case node.TrackPercent:
			out[i] = track{size: t.Percent * basis}
		case node.TrackFlex:
			if totalFlex > 0 {
				out[i] = track{size: remaining * t.Flex / totalFlex}
			}
		}
	}
	return out
}

func trackOffsets(tracks []track, gap float64) []float64 {
	offsets := make([]float64, len(tracks)+1)
	cur := 0.0
	for i, t := range tracks {
		offsets[i] = cur
		cur += t.size + gap
	}
	offsets[len(tracks)] = cur
	return offsets
}

func clampIdx(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}

func placementRange(p node.GridPlacement, auto, trackCount int) (start, span int) {
	switch p.Kind {
	case node.GridLine:
		return p.N, 1
	case node.GridSpan:
		return auto, maxInt(p.N, 1)
	default:
		return auto, 1
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// resolve is the pre-order top-down pass: for each node in document
// order (parent before children, earlier siblings -- and their whole
// subtree -- before later ones), convert its box-model-relative rect to
// an absolute page rectangle and apply any LayoutExpr override for x,
// y, width, or height. currentParent is the "current parent" node id
// LayoutExpr's Parent* leaves resolve against.
func (s *solver) resolve(n *node.Node, currentParent node.Id) error {
	// rel was already computed in absolute coordinates by arrange (it
	// derived box.X/Y from the parent's own absolute rect at call
	// time), so no extra shift is needed here unless this node carries
	// an explicit X/Y or width/height expression, applied below.
	abs := s.cl.rects[n.NodeId]
	ctx := layoutCtx{c: s.cl}

	if n.X != nil {
		v, err := layoutexpr.Eval(n.X, ctx, int(currentParent))
		if err != nil {
			return wrapExprErr(n.NodeId, err)
		}
		abs.X = v
	}
	if n.Y != nil {
		v, err := layoutexpr.Eval(n.Y, ctx, int(currentParent))
		if err != nil {
			return wrapExprErr(n.NodeId, err)
		}
		abs.Y = v
	}
	if n.Width.IsExpr() {
		v, err := layoutexpr.Eval(n.Width.Expr, ctx, int(currentParent))
		if err != nil {
			return wrapExprErr(n.NodeId, err)
		}
		abs.Width = v
	}
	if n.Height.IsExpr() {
		v, err := layoutexpr.Eval(n.Height.Expr, ctx, int(currentParent))
		if err != nil {
			return wrapExprErr(n.NodeId, err)
		}
		abs.Height = v
	}
	s.cl.rects[n.NodeId] = abs
	s.cl.resolved[n.NodeId] = true

	if n.Content != nil {
		if c, ok := s.cm[*n.Content]; ok && c.Kind == content.BodyText && c.Shaped != nil {
			s.cl.texts[n.NodeId] = c.Shaped
			anchors := map[node.InlineId]geo.Rectangle{}
			for id, r := range c.Shaped.Anchors {
				anchors[id] = r
			}
			s.cl.anchor[n.NodeId] = anchors
		}
	}

	for _, ch := range n.Children {
		if ch.Kind == node.ChildNode {
			if err := s.resolve(ch.Node, n.NodeId); err != nil {
				return err
			}
		}
	}
	return nil
}

func wrapExprErr(referring node.Id, err error) error {
	if ue, ok := err.(*layoutexpr.UnresolvedNodeError); ok {
		return &rendererr.InternalError{
			ReferringNode:  int(referring),
			ReferencedNode: ue.ReferencedNode,
			Reason:         "layout expression references a node that has not been resolved (forward reference or unknown id)",
		}
	}
	return err
}

// VisibleNodeIds returns the ids of the page's nodes whose Show is true
// at step, sorted ascending; a hidden node's whole subtree is skipped.
func VisibleNodeIds(page *node.Page, step int) []node.Id {
	var ids []node.Id
	var walk func(n *node.Node)
	walk = func(n *node.Node) {
		if !n.Show.At(step) {
			return
		}
		ids = append(ids, n.NodeId)
		for _, ch := range n.Children {
			if ch.Kind == node.ChildNode {
				walk(ch.Node)
			}
		}
	}
	walk(&page.Node)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
