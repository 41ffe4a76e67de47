package pdflayout

import (
	"math"
	"testing"

	"github.com/wudi/slidekit/content"
	"github.com/wudi/slidekit/layoutexpr"
	"github.com/wudi/slidekit/node"
	"github.com/wudi/slidekit/rendererr"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func addChild(parent *node.Node, child *node.Node) {
	parent.Children = append(parent.Children, node.Child{Kind: node.ChildNode, Node: child})
}

func TestGridFractionalTracks(t *testing.T) {
	page := node.NewPage(0, 130, 100)
	page.Node.GridTemplateColumns = []node.TrackSize{
		{Kind: node.TrackPoints, Points: 10},
		{Kind: node.TrackFlex, Flex: 1},
		{Kind: node.TrackFlex, Flex: 2},
	}
	for i := 1; i <= 3; i++ {
		addChild(&page.Node, node.NewNode(node.Id(i)))
	}

	cl, err := Solve(page, content.ContentMap{}, 1)
	if err != nil {
		t.Fatal(err)
	}

	wantW := []float64{10, 40, 80}
	wantX := []float64{0, 10, 50}
	for i := 1; i <= 3; i++ {
		r, err := cl.Rect(node.Id(i))
		if err != nil {
			t.Fatal(err)
		}
		if !approx(r.Width, wantW[i-1]) {
			t.Fatalf("column %d width = %v, want %v", i, r.Width, wantW[i-1])
		}
		if !approx(r.X, wantX[i-1]) {
			t.Fatalf("column %d x = %v, want %v", i, r.X, wantX[i-1])
		}
	}
}

func TestGridEmptyTemplatesFallsBackToFlex(t *testing.T) {
	page := node.NewPage(0, 100, 100)
	child := node.NewNode(1)
	child.Width = node.LengthOrExpr{Length: node.Pt(40)}
	child.Height = node.LengthOrExpr{Length: node.Pt(40)}
	addChild(&page.Node, child)

	cl, err := Solve(page, content.ContentMap{}, 1)
	if err != nil {
		t.Fatal(err)
	}
	r, err := cl.Rect(1)
	if err != nil {
		t.Fatal(err)
	}
	// Non-grid defaults center the child both ways.
	if !approx(r.X, 30) || !approx(r.Y, 30) {
		t.Fatalf("centered rect = %+v, want (30, 30)", r)
	}
}

func TestLayoutCoverage(t *testing.T) {
	page := node.NewPage(0, 100, 100)
	addChild(&page.Node, node.NewNode(1))
	cl, err := Solve(page, content.ContentMap{}, 1)
	if err != nil {
		t.Fatal(err)
	}
	ids := VisibleNodeIds(page, 1)
	if len(ids) != 2 {
		t.Fatalf("visible ids = %v, want [0 1]", ids)
	}
	for _, id := range ids {
		if _, err := cl.Rect(id); err != nil {
			t.Fatalf("Rect(%d): %v", id, err)
		}
	}
	if _, err := cl.Rect(99); err == nil {
		t.Fatal("Rect(99) should fail for a non-resolved node")
	}
}

func TestForwardSiblingReferenceIsDeterministicError(t *testing.T) {
	page := node.NewPage(0, 100, 100)
	first := node.NewNode(1)
	first.X = layoutexpr.X(2) // references the later sibling
	second := node.NewNode(2)
	addChild(&page.Node, first)
	addChild(&page.Node, second)

	_, err := Solve(page, content.ContentMap{}, 1)
	if err == nil {
		t.Fatal("expected a forward-reference error")
	}
	ie, ok := err.(*rendererr.InternalError)
	if !ok {
		t.Fatalf("error type = %T, want *rendererr.InternalError", err)
	}
	if ie.ReferringNode != 1 || ie.ReferencedNode != 2 {
		t.Fatalf("error ids = (%d, %d), want (1, 2)", ie.ReferringNode, ie.ReferencedNode)
	}
}

func TestBackwardSiblingReferenceResolves(t *testing.T) {
	page := node.NewPage(0, 100, 100)
	page.Node.Row = false
	first := node.NewNode(1)
	first.Width = node.LengthOrExpr{Length: node.Pt(20)}
	first.Height = node.LengthOrExpr{Length: node.Pt(20)}
	second := node.NewNode(2)
	second.X = layoutexpr.Add(layoutexpr.X(1), layoutexpr.Width(1, 1.0))
	second.Y = layoutexpr.Y(1)
	second.Width = node.LengthOrExpr{Length: node.Pt(10)}
	second.Height = node.LengthOrExpr{Length: node.Pt(10)}
	addChild(&page.Node, first)
	addChild(&page.Node, second)

	cl, err := Solve(page, content.ContentMap{}, 1)
	if err != nil {
		t.Fatal(err)
	}
	r1, _ := cl.Rect(1)
	r2, _ := cl.Rect(2)
	if !approx(r2.X, r1.X+r1.Width) {
		t.Fatalf("second.X = %v, want %v", r2.X, r1.X+r1.Width)
	}
	if !approx(r2.Y, r1.Y) {
		t.Fatalf("second.Y = %v, want %v", r2.Y, r1.Y)
	}
}

func TestExprWidthOverridesBoxModel(t *testing.T) {
	page := node.NewPage(0, 200, 100)
	child := node.NewNode(1)
	child.X = layoutexpr.Const(5)
	child.Y = layoutexpr.Const(5)
	child.Width = node.LengthOrExpr{Expr: layoutexpr.Mul(layoutexpr.ParentWidth(), layoutexpr.Const(0.5))}
	child.Height = node.LengthOrExpr{Length: node.Pt(10)}
	addChild(&page.Node, child)

	cl, err := Solve(page, content.ContentMap{}, 1)
	if err != nil {
		t.Fatal(err)
	}
	r, _ := cl.Rect(1)
	if !approx(r.Width, 100) {
		t.Fatalf("expr width = %v, want 100", r.Width)
	}
	if !approx(r.X, 5) || !approx(r.Y, 5) {
		t.Fatalf("origin = (%v, %v), want (5, 5)", r.X, r.Y)
	}
}

func TestContentIntrinsicSizeAndAspect(t *testing.T) {
	cid := node.ContentId(0)
	cm := content.ContentMap{cid: content.Content{Width: 80, Height: 40, Kind: content.BodyBinImage}}

	page := node.NewPage(0, 200, 200)
	child := node.NewNode(1)
	child.Content = &cid
	addChild(&page.Node, child)

	cl, err := Solve(page, cm, 1)
	if err != nil {
		t.Fatal(err)
	}
	r, _ := cl.Rect(1)
	if !approx(r.Width, 80) || !approx(r.Height, 40) {
		t.Fatalf("intrinsic rect = %+v, want 80x40", r)
	}
}
