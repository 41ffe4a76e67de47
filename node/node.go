// Package node defines the declarative tree the host builds to describe
// a page: layout boxes (Node), vector shapes (Shape), and their shared
// identifiers. Grounded on spec §3 and original_source's node.rs /
// shapes.rs.
package node

import (
	"github.com/wudi/slidekit/geo"
	"github.com/wudi/slidekit/layoutexpr"
	"github.com/wudi/slidekit/stepvalue"
)

// Id is an opaque non-negative integer, unique within a Document,
// assigned by the host.
type Id int

// ContentId is allocated by the content Register via a monotonic
// counter, unique within a Document.
type ContentId int

// InlineId identifies a named inline anchor region inside a styled-text
// block.
type InlineId int

// Length is either an absolute pre-layout measurement (Points) or a
// fraction of the containing block (Fraction).
type Length struct {
	Points   float64
	Fraction float64
	isFrac   bool
}

// Pt builds an absolute-points Length.
func Pt(v float64) Length { return Length{Points: v} }

// Frac builds a containing-block-fraction Length.
func Frac(v float64) Length { return Length{Fraction: v, isFrac: true} }

// IsFraction reports whether this Length is a fraction of the
// containing block rather than an absolute point value.
func (l Length) IsFraction() bool { return l.isFrac }

// LengthOrAuto is a Length, or Auto (solver-determined).
type LengthOrAuto struct {
	Length Length
	Auto   bool
}

// AutoLength is the sentinel "let the solver decide" value.
var AutoLength = LengthOrAuto{Auto: true}

// LengthOrExpr is either a Length (participates in box-model solving)
// or a LayoutExpr (participates only in the post-resolve pass; the
// box-model treats such a dimension as auto).
type LengthOrExpr struct {
	Length Length
	Expr   *layoutexpr.Expr
}

// IsExpr reports whether this dimension is expression-driven.
func (l LengthOrExpr) IsExpr() bool { return l.Expr != nil }

// Direction is the main-axis direction flag pair (row/reverse).
type Direction struct {
	Row     bool
	Reverse bool
}

// Align enumerates the flex/grid alignment keywords used by AlignItems,
// AlignSelf, JustifySelf, AlignContent, and JustifyContent.
type Align int

const (
	AlignAuto Align = iota
	AlignStart
	AlignCenter
	AlignEnd
	AlignStretch
	AlignSpaceBetween
	AlignSpaceAround
)

// TrackSize is one entry of a grid_template_rows/columns list: an
// absolute length, a percentage of the container, or a flex fraction
// ("1fr").
type TrackSize struct {
	Points  float64
	Percent float64
	Flex    float64
	Kind    TrackSizeKind
}

type TrackSizeKind int

const (
	TrackPoints TrackSizeKind = iota
	TrackPercent
	TrackFlex
)

// GridPlacementKind discriminates GridPlacement's three forms.
type GridPlacementKind int

const (
	GridAuto GridPlacementKind = iota
	GridLine
	GridSpan
)

// GridPlacement is a node's grid_row/grid_column value: Auto, a fixed
// Line(i), or a Span(n) of tracks.
type GridPlacement struct {
	Kind GridPlacementKind
	N    int
}

// Sides holds a per-side box value (padding or margin).
type Sides struct {
	Top, Right, Bottom, Left float64
}

// Node is a layout box: the sole structural element of a page tree.
type Node struct {
	NodeId Id

	X, Y          *layoutexpr.Expr // optional absolute positioning
	Width, Height LengthOrExpr

	Show stepvalue.StepValue[bool]

	ZLevel int

	Row     bool
	Reverse bool

	FlexGrow, FlexShrink float64
	FlexWrap             bool
	AlignItems           Align
	AlignSelf            Align
	JustifySelf          Align
	AlignContent         Align
	JustifyContent       Align
	ColumnGap, RowGap    float64

	Padding, Margin Sides

	GridTemplateRows, GridTemplateColumns []TrackSize
	GridRow, GridColumn                  GridPlacement

	BgColor      stepvalue.StepValue[*geo.Color]
	BorderRadius float64

	Content *ContentId
	URL     *string

	Children []Child
}

// ChildKind discriminates a Child's two possible payloads.
type ChildKind int

const (
	ChildNode ChildKind = iota
	ChildShape
)

// Child is one entry of Node.Children: either a nested Node or a Shape.
type Child struct {
	Kind  ChildKind
	Node  *Node
	Shape *Shape
}

// NewNode returns a Node with spec-mandated defaults applied later by
// the layout solver (align_items/justify_content default to Center only
// for non-grid nodes, so they are left zero-valued -- AlignAuto -- here
// and resolved contextually in pdflayout).
func NewNode(id Id) *Node {
	return &Node{
		NodeId:  id,
		Width:   LengthOrExpr{Length: Length{}, Expr: nil},
		Height:  LengthOrExpr{Length: Length{}, Expr: nil},
		Show:    stepvalue.Const(true),
		BgColor: stepvalue.Const[*geo.Color](nil),
	}
}

// ShapeKind discriminates Shape's three payloads.
type ShapeKind int

const (
	ShapeRect ShapeKind = iota
	ShapeOval
	ShapePath
)

// Shape is a vector drawing primitive attached as a Node child.
type Shape struct {
	Kind ShapeKind
	Z    int

	// Rect/Oval: two corner points.
	P1, P2 PointExpr
	Fill   *geo.Fill
	Stroke *geo.Stroke

	// Path only.
	Parts      []PathPart
	StartArrow *Arrow
	EndArrow   *Arrow
}

// PointExpr is a layout-expression-valued 2D point (used by shape
// corners and path commands).
type PointExpr struct {
	X, Y *layoutexpr.Expr
}

// PathPartKind discriminates a path segment's drawing command.
type PathPartKind int

const (
	PathMoveTo PathPartKind = iota
	PathLineTo
	PathQuadTo
	PathCubicTo
	PathClose
)

// PathPart is one segment of a Shape's Path, expressed with
// layout-expression coordinates resolved at canvas-build time.
type PathPart struct {
	Kind    PathPartKind
	Point   PointExpr
	Control PointExpr
	Control2 PointExpr
}

// Arrow describes an arrowhead rendered at a path's start or end.
type Arrow struct {
	Size        float64
	AngleDeg    float64
	Color       *geo.Color
	StrokeWidth *float64 // nil => filled arrowhead, set => stroked
	InnerPoint  *float64 // notch depth fraction, nil => no notch
}
