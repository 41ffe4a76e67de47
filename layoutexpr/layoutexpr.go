// Package layoutexpr implements the symbolic layout-expression language
// (spec §4.2): absolute positions and sizes computed from already-solved
// sibling/parent geometry and per-line/per-anchor text geometry, late
// bound to a resolved layout context at post-resolve time.
package layoutexpr

import (
	"fmt"
	"math"
)

// Context is the evaluation environment an Expr resolves against: a
// resolved layout (spec's ComputedLayout) plus the "current parent" node
// id used by Parent* leaves. Implemented by adapters over
// pdflayout.ComputedLayout (pdflayout's layoutCtx, canvas's exprCtx);
// defined here (rather than imported) to avoid a layoutexpr<->pdflayout
// import cycle, following the teacher's own practice of keeping leaf
// packages (coords, geo) free of upward dependencies.
type Context interface {
	// Rect returns the resolved rectangle for nodeId, or false if the
	// node has not been resolved yet (forward reference).
	Rect(nodeId int) (x, y, w, h float64, ok bool)
	// Line returns a line's geometry for the given node: min_x, a
	// baseline-derived y, width, line_height. Returns zeros if the node
	// has no text or lineIdx is out of range (per spec §4.2).
	Line(nodeId, lineIdx int) (x, y, w, h float64, ok bool)
	// Inline returns an inline anchor's resolved rectangle. Returns
	// zeros if the node has no such anchor.
	Inline(nodeId, inlineId int) (x, y, w, h float64, ok bool)
}

// kind discriminates an Expr node's variant.
type kind int

const (
	kConst kind = iota
	kX
	kY
	kWidth
	kHeight
	kParentX
	kParentY
	kParentWidth
	kParentHeight
	kLineX
	kLineY
	kLineWidth
	kLineHeight
	kInlineX
	kInlineY
	kInlineWidth
	kInlineHeight
	kAdd
	kSub
	kMul
	kMax
)

// Expr is a symbolic position/size expression tree. Construct with the
// package-level constructors (Const, X, Y, Width, ...); evaluate with
// Eval against a Context and a "current parent" node id.
type Expr struct {
	kind     kind
	value    float64          // kConst
	nodeId   int              // kX/kY/kWidth/kHeight/kLine*/kInline*
	lineIdx  int              // kLine*
	inlineId int              // kInline*
	fraction float64          // kWidth/kHeight/kLineWidth/kLineHeight/kInline*
	shift    float64          // kParent*
	operands []*Expr          // kAdd/kSub/kMul/kMax
}

// Const builds a constant-valued leaf, in points.
func Const(v float64) *Expr { return &Expr{kind: kConst, value: v} }

// X references another node's resolved x origin.
func X(nodeId int) *Expr { return &Expr{kind: kX, nodeId: nodeId} }

// Y references another node's resolved y origin.
func Y(nodeId int) *Expr { return &Expr{kind: kY, nodeId: nodeId} }

// Width references a fraction k of another node's resolved width.
func Width(nodeId int, k float64) *Expr { return &Expr{kind: kWidth, nodeId: nodeId, fraction: k} }

// Height references a fraction k of another node's resolved height.
func Height(nodeId int, k float64) *Expr { return &Expr{kind: kHeight, nodeId: nodeId, fraction: k} }

// ParentX returns the current parent's x origin, shifted by shift points.
func ParentX(shift float64) *Expr { return &Expr{kind: kParentX, shift: shift} }

// ParentY returns the current parent's y origin, shifted by shift points.
func ParentY(shift float64) *Expr { return &Expr{kind: kParentY, shift: shift} }

// ParentWidth returns the current parent's resolved width.
func ParentWidth() *Expr { return &Expr{kind: kParentWidth} }

// ParentHeight returns the current parent's resolved height.
func ParentHeight() *Expr { return &Expr{kind: kParentHeight} }

// LineX references the min_x of line lineIdx inside nodeId's text.
func LineX(nodeId, lineIdx int) *Expr { return &Expr{kind: kLineX, nodeId: nodeId, lineIdx: lineIdx} }

// LineY references the baseline-derived y of line lineIdx.
func LineY(nodeId, lineIdx int) *Expr { return &Expr{kind: kLineY, nodeId: nodeId, lineIdx: lineIdx} }

// LineWidth references a fraction k of line lineIdx's width.
func LineWidth(nodeId, lineIdx int, k float64) *Expr {
	return &Expr{kind: kLineWidth, nodeId: nodeId, lineIdx: lineIdx, fraction: k}
}

// LineHeight references a fraction k of line lineIdx's line height.
func LineHeight(nodeId, lineIdx int, k float64) *Expr {
	return &Expr{kind: kLineHeight, nodeId: nodeId, lineIdx: lineIdx, fraction: k}
}

// InlineX references the x of an inline anchor's resolved rectangle.
func InlineX(nodeId, inlineId int) *Expr {
	return &Expr{kind: kInlineX, nodeId: nodeId, inlineId: inlineId}
}

// InlineY references the y of an inline anchor's resolved rectangle.
func InlineY(nodeId, inlineId int) *Expr {
	return &Expr{kind: kInlineY, nodeId: nodeId, inlineId: inlineId}
}

// InlineWidth references a fraction k of an inline anchor's width.
func InlineWidth(nodeId, inlineId int, k float64) *Expr {
	return &Expr{kind: kInlineWidth, nodeId: nodeId, inlineId: inlineId, fraction: k}
}

// InlineHeight references a fraction k of an inline anchor's height.
func InlineHeight(nodeId, inlineId int, k float64) *Expr {
	return &Expr{kind: kInlineHeight, nodeId: nodeId, inlineId: inlineId, fraction: k}
}

// Add sums its operands elementwise.
func Add(operands ...*Expr) *Expr { return &Expr{kind: kAdd, operands: operands} }

// Sub subtracts operands[1:] from operands[0].
func Sub(operands ...*Expr) *Expr { return &Expr{kind: kSub, operands: operands} }

// Mul multiplies its operands elementwise.
func Mul(operands ...*Expr) *Expr { return &Expr{kind: kMul, operands: operands} }

// Max returns the maximum of its operands, folding from -Inf; an empty
// operand list evaluates to 0 per spec §4.2/§8.
func Max(operands ...*Expr) *Expr { return &Expr{kind: kMax, operands: operands} }

// UnresolvedNodeError is returned by Eval when an expression references
// a node id not yet present in the Context (a forward reference or an
// id unknown to the page), per spec §9's "deterministic error, not
// panic" requirement.
type UnresolvedNodeError struct {
	ReferencedNode int
}

func (e *UnresolvedNodeError) Error() string {
	return fmt.Sprintf("layoutexpr: reference to unresolved node %d", e.ReferencedNode)
}

// Eval evaluates the expression against ctx, with currentParent as the
// node id used for Parent* leaves. Units are points throughout.
func Eval(e *Expr, ctx Context, currentParent int) (float64, error) {
	switch e.kind {
	case kConst:
		return e.value, nil
	case kX:
		x, _, _, _, ok := ctx.Rect(e.nodeId)
		if !ok {
			return 0, &UnresolvedNodeError{ReferencedNode: e.nodeId}
		}
		return x, nil
	case kY:
		_, y, _, _, ok := ctx.Rect(e.nodeId)
		if !ok {
			return 0, &UnresolvedNodeError{ReferencedNode: e.nodeId}
		}
		return y, nil
	case kWidth:
		_, _, w, _, ok := ctx.Rect(e.nodeId)
		if !ok {
			return 0, &UnresolvedNodeError{ReferencedNode: e.nodeId}
		}
		return w * e.fraction, nil
	case kHeight:
		_, _, _, h, ok := ctx.Rect(e.nodeId)
		if !ok {
			return 0, &UnresolvedNodeError{ReferencedNode: e.nodeId}
		}
		return h * e.fraction, nil
	case kParentX:
		x, _, _, _, ok := ctx.Rect(currentParent)
		if !ok {
			return 0, &UnresolvedNodeError{ReferencedNode: currentParent}
		}
		return x + e.shift, nil
	case kParentY:
		_, y, _, _, ok := ctx.Rect(currentParent)
		if !ok {
			return 0, &UnresolvedNodeError{ReferencedNode: currentParent}
		}
		return y + e.shift, nil
	case kParentWidth:
		_, _, w, _, ok := ctx.Rect(currentParent)
		if !ok {
			return 0, &UnresolvedNodeError{ReferencedNode: currentParent}
		}
		return w, nil
	case kParentHeight:
		_, _, _, h, ok := ctx.Rect(currentParent)
		if !ok {
			return 0, &UnresolvedNodeError{ReferencedNode: currentParent}
		}
		return h, nil
	case kLineX:
		x, _, _, _, _ := ctx.Line(e.nodeId, e.lineIdx)
		return x, nil
	case kLineY:
		_, y, _, _, _ := ctx.Line(e.nodeId, e.lineIdx)
		return y, nil
	case kLineWidth:
		_, _, w, _, _ := ctx.Line(e.nodeId, e.lineIdx)
		return w * e.fraction, nil
	case kLineHeight:
		_, _, _, h, _ := ctx.Line(e.nodeId, e.lineIdx)
		return h * e.fraction, nil
	case kInlineX:
		x, _, _, _, _ := ctx.Inline(e.nodeId, e.inlineId)
		return x, nil
	case kInlineY:
		_, y, _, _, _ := ctx.Inline(e.nodeId, e.inlineId)
		return y, nil
	case kInlineWidth:
		_, _, w, _, _ := ctx.Inline(e.nodeId, e.inlineId)
		return w * e.fraction, nil
	case kInlineHeight:
		_, _, _, h, _ := ctx.Inline(e.nodeId, e.inlineId)
		return h * e.fraction, nil
	case kAdd:
		sum := 0.0
		for _, op := range e.operands {
			v, err := Eval(op, ctx, currentParent)
			if err != nil {
				return 0, err
			}
			sum += v
		}
		return sum, nil
	case kSub:
		if len(e.operands) == 0 {
			return 0, nil
		}
		v0, err := Eval(e.operands[0], ctx, currentParent)
		if err != nil {
			return 0, err
		}
		for _, op := range e.operands[1:] {
			v, err := Eval(op, ctx, currentParent)
			if err != nil {
				return 0, err
			}
			v0 -= v
		}
		return v0, nil
	case kMul:
		product := 1.0
		for _, op := range e.operands {
			v, err := Eval(op, ctx, currentParent)
			if err != nil {
				return 0, err
			}
			product *= v
		}
		return product, nil
	case kMax:
		best := math.Inf(-1)
		for _, op := range e.operands {
			v, err := Eval(op, ctx, currentParent)
			if err != nil {
				return 0, err
			}
			if v > best {
				best = v
			}
		}
		if math.IsInf(best, -1) {
			return 0, nil
		}
		return best, nil
	default:
		return 0, fmt.Errorf("layoutexpr: unknown expr kind %d", e.kind)
	}
}
