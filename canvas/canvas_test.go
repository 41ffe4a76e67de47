package canvas

import (
	"math"
	"testing"

	"github.com/wudi/slidekit/content"
	"github.com/wudi/slidekit/geo"
	"github.com/wudi/slidekit/layoutexpr"
	"github.com/wudi/slidekit/node"
	"github.com/wudi/slidekit/pdflayout"
	"github.com/wudi/slidekit/stepvalue"
)

func solve(t *testing.T, page *node.Page, step int) *pdflayout.ComputedLayout {
	t.Helper()
	cl, err := pdflayout.Solve(page, content.ContentMap{}, step)
	if err != nil {
		t.Fatal(err)
	}
	return cl
}

func TestStepBuildHidesAndShows(t *testing.T) {
	page := node.NewPage(0, 100, 100)
	child := node.NewNode(1)
	child.Show = stepvalue.Steps(map[int]bool{1: false, 2: true})
	child.BgColor = stepvalue.Const(&geo.Color{R: 255, A: 255})
	child.Width = node.LengthOrExpr{Length: node.Pt(10)}
	child.Height = node.LengthOrExpr{Length: node.Pt(10)}
	page.Node.Children = append(page.Node.Children, node.Child{Kind: node.ChildNode, Node: child})

	if got := page.NSteps(); got != 2 {
		t.Fatalf("NSteps = %d, want 2", got)
	}

	cv1, err := Build(page, solve(t, page, 1), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(cv1.Items) != 0 {
		t.Fatalf("step 1 items = %d, want 0", len(cv1.Items))
	}

	cv2, err := Build(page, solve(t, page, 2), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(cv2.Items) != 1 || cv2.Items[0].Kind != ItemBackground {
		t.Fatalf("step 2 items = %+v, want one background", cv2.Items)
	}
}

func TestStepValuedBackgroundColor(t *testing.T) {
	red := geo.Color{R: 255, A: 255}
	blue := geo.Color{B: 255, A: 255}
	page := node.NewPage(0, 100, 100)
	child := node.NewNode(1)
	child.BgColor = stepvalue.Steps(map[int]*geo.Color{1: &red, 2: &blue})
	child.Width = node.LengthOrExpr{Length: node.Pt(10)}
	child.Height = node.LengthOrExpr{Length: node.Pt(10)}
	page.Node.Children = append(page.Node.Children, node.Child{Kind: node.ChildNode, Node: child})

	if got := page.NSteps(); got != 2 {
		t.Fatalf("NSteps = %d, want 2", got)
	}
	for step, want := range map[int]geo.Color{1: red, 2: blue} {
		cv, err := Build(page, solve(t, page, step), step)
		if err != nil {
			t.Fatal(err)
		}
		if len(cv.Items) != 1 || cv.Items[0].BgColor != want {
			t.Fatalf("step %d items = %+v, want one %v background", step, cv.Items, want)
		}
	}
}

func rectShape(z int, x1, y1, x2, y2 float64, fill geo.Color) *node.Shape {
	return &node.Shape{
		Kind: node.ShapeRect,
		Z:    z,
		P1:   node.PointExpr{X: layoutexpr.Const(x1), Y: layoutexpr.Const(y1)},
		P2:   node.PointExpr{X: layoutexpr.Const(x2), Y: layoutexpr.Const(y2)},
		Fill: &geo.Fill{Color: fill},
	}
}

func TestZSortIsStable(t *testing.T) {
	page := node.NewPage(0, 100, 100)
	colors := []geo.Color{{R: 1}, {R: 2}, {R: 3}, {R: 4}}
	zs := []int{1, 0, 1, 0}
	for i := range colors {
		sh := rectShape(zs[i], 0, 0, 10, 10, colors[i])
		page.Node.Children = append(page.Node.Children, node.Child{Kind: node.ChildShape, Shape: sh})
	}

	cv, err := Build(page, solve(t, page, 1), 1)
	if err != nil {
		t.Fatal(err)
	}
	var got []uint8
	for _, item := range cv.Items {
		got = append(got, item.Fill.Color.R)
	}
	// z 0 items keep insertion order (2 before 4), then z 1 (1 before 3).
	want := []uint8{2, 4, 1, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted order = %v, want %v", got, want)
		}
	}
}

func TestLinkRegionsKeptSeparately(t *testing.T) {
	page := node.NewPage(0, 100, 100)
	url := "https://example.org"
	child := node.NewNode(1)
	child.URL = &url
	child.X = layoutexpr.Const(10)
	child.Y = layoutexpr.Const(20)
	child.Width = node.LengthOrExpr{Length: node.Pt(30)}
	child.Height = node.LengthOrExpr{Length: node.Pt(40)}
	page.Node.Children = append(page.Node.Children, node.Child{Kind: node.ChildNode, Node: child})

	cv, err := Build(page, solve(t, page, 1), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Items) != 0 {
		t.Fatalf("items = %d, want 0 (links are not draw items)", len(cv.Items))
	}
	if len(cv.Links) != 1 || cv.Links[0].URL != url {
		t.Fatalf("links = %+v", cv.Links)
	}
	r := cv.Links[0].Rect
	if r.X != 10 || r.Y != 20 || r.Width != 30 || r.Height != 40 {
		t.Fatalf("link rect = %+v", r)
	}
}

func TestFilledArrowheadRetraction(t *testing.T) {
	inner := 0.5
	arrow := &node.Arrow{Size: 4, AngleDeg: 30, InnerPoint: &inner}
	parts := []ResolvedPathPart{
		{Kind: node.PathMoveTo, X: 0, Y: 0},
		{Kind: node.PathLineTo, X: 10, Y: 0},
	}
	out := applyArrows(parts, nil, arrow, nil)

	// size*inner/2 = 1 point back along the segment direction.
	if got := out[1].X; math.Abs(got-9) > 1e-9 {
		t.Fatalf("retracted endpoint x = %v, want 9", got)
	}
	if out[1].Y != 0 {
		t.Fatalf("retracted endpoint y = %v, want 0", out[1].Y)
	}
	if len(out) <= 2 {
		t.Fatal("expected arrowhead parts appended")
	}
}

func TestStrokedArrowheadRetraction(t *testing.T) {
	sw := 1.5
	arrow := &node.Arrow{Size: 4, AngleDeg: 30, StrokeWidth: &sw}
	stroke := &geo.Stroke{Color: geo.Black, Width: 3}
	parts := []ResolvedPathPart{
		{Kind: node.PathMoveTo, X: 0, Y: 0},
		{Kind: node.PathLineTo, X: 0, Y: 10},
	}
	out := applyArrows(parts, nil, arrow, stroke)

	// stroke_width/2 = 1.5 points back along -dy.
	if got := out[1].Y; math.Abs(got-8.5) > 1e-9 {
		t.Fatalf("retracted endpoint y = %v, want 8.5", got)
	}
}

func TestRoundedRectPathDegeneratesToCorners(t *testing.T) {
	r := geo.Rectangle{X: 0, Y: 0, Width: 10, Height: 10}
	sharp := RoundedRectPath(r, 0)
	if len(sharp) != 5 || sharp[0].Kind != node.PathMoveTo || sharp[4].Kind != node.PathClose {
		t.Fatalf("sharp path = %+v", sharp)
	}
	round := RoundedRectPath(r, 2)
	cubics := 0
	for _, p := range round {
		if p.Kind == node.PathCubicTo {
			cubics++
		}
	}
	if cubics != 4 {
		t.Fatalf("rounded path cubics = %d, want 4", cubics)
	}
}
