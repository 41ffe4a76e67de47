package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wudi/slidekit/geo"
	"github.com/wudi/slidekit/layoutexpr"
	"github.com/wudi/slidekit/node"
	"github.com/wudi/slidekit/resources"
	"github.com/wudi/slidekit/stepvalue"
)

func TestPadWidth(t *testing.T) {
	cases := map[int]int{1: 1, 9: 1, 10: 2, 99: 2, 100: 3}
	for n, want := range cases {
		if got := PadWidth(n); got != want {
			t.Fatalf("PadWidth(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestPageFilename(t *testing.T) {
	if got := PageFilename(3, 12, "svg"); got != "03.svg" {
		t.Fatalf("got %q", got)
	}
	if got := PageFilename(0, 5, "png"); got != "0.png" {
		t.Fatalf("got %q", got)
	}
}

func simpleDoc() *Document {
	doc := NewDocument()
	page := node.NewPage(0, 100, 100)
	child := node.NewNode(1)
	child.X = layoutexpr.Const(10)
	child.Y = layoutexpr.Const(20)
	child.Width = node.LengthOrExpr{Length: node.Pt(30)}
	child.Height = node.LengthOrExpr{Length: node.Pt(40)}
	child.BgColor = stepvalue.Const(&geo.Color{R: 9, G: 9, B: 9, A: 255})
	page.Node.Children = append(page.Node.Children, node.Child{Kind: node.ChildNode, Node: child})
	doc.AddPage(page)
	return doc
}

func TestRenderLayoutInMemory(t *testing.T) {
	out, err := Render(resources.New(), simpleDoc(), RenderingOptions{NThreads: 1}, "", FormatLayout)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Layouts) != 1 {
		t.Fatalf("layouts = %d, want 1", len(out.Layouts))
	}
	r, ok := out.Layouts[0][1]
	if !ok {
		t.Fatal("node 1 missing from layout report")
	}
	if r.X != 10 || r.Y != 20 || r.Width != 30 || r.Height != 40 {
		t.Fatalf("rect = %+v", r)
	}
}

func TestStepExpansionProducesOnePagePerStep(t *testing.T) {
	doc := NewDocument()
	page := node.NewPage(0, 50, 50)
	child := node.NewNode(1)
	child.Show = stepvalue.Steps(map[int]bool{1: false, 3: true})
	child.Width = node.LengthOrExpr{Length: node.Pt(10)}
	child.Height = node.LengthOrExpr{Length: node.Pt(10)}
	page.Node.Children = append(page.Node.Children, node.Child{Kind: node.ChildNode, Node: child})
	doc.AddPage(page)

	out, err := Render(resources.New(), doc, RenderingOptions{NThreads: 1}, "", FormatLayout)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Layouts) != 3 {
		t.Fatalf("layouts = %d, want 3 (one per step)", len(out.Layouts))
	}
}

func TestRenderSVGInMemoryMatchesPageSize(t *testing.T) {
	out, err := Render(resources.New(), simpleDoc(), RenderingOptions{NThreads: 1}, "", FormatSVG)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.SVGPages) != 1 {
		t.Fatalf("pages = %d, want 1", len(out.SVGPages))
	}
	if !strings.Contains(out.SVGPages[0], `viewBox="0 0 100 100"`) {
		t.Fatalf("page size missing:\n%s", out.SVGPages[0])
	}
}

func TestRenderSVGIsDeterministic(t *testing.T) {
	first, err := Render(resources.New(), simpleDoc(), RenderingOptions{NThreads: 1}, "", FormatSVG)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Render(resources.New(), simpleDoc(), RenderingOptions{NThreads: 1}, "", FormatSVG)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first.SVGPages {
		if first.SVGPages[i] != second.SVGPages[i] {
			t.Fatalf("page %d differs across renders", i)
		}
	}
}

func TestRenderPDFIsDeterministic(t *testing.T) {
	render := func() []byte {
		out, err := Render(resources.New(), simpleDoc(), RenderingOptions{NThreads: 1}, "", FormatPDF)
		if err != nil {
			t.Fatal(err)
		}
		return out.PDF
	}
	a, b := render(), render()
	if string(a) != string(b) {
		t.Fatal("back-to-back single-threaded PDF renders differ")
	}
}

func TestRenderSVGWritesPaddedFiles(t *testing.T) {
	doc := NewDocument()
	for i := 0; i < 10; i++ {
		doc.AddPage(node.NewPage(node.Id(i), 50, 50))
	}
	dir := t.TempDir()
	out, err := Render(resources.New(), doc, RenderingOptions{NThreads: 2}, dir, FormatSVG)
	if err != nil {
		t.Fatal(err)
	}
	if out != nil {
		t.Fatal("path-writing render must not return in-memory output")
	}
	for _, name := range []string{"00.svg", "09.svg"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestRenderEmptyPageProducesOnlyBackground(t *testing.T) {
	doc := NewDocument()
	page := node.NewPage(0, 50, 50)
	bg := geo.Color{R: 1, G: 2, B: 3, A: 255}
	page.BgColor = &bg
	doc.AddPage(page)

	out, err := Render(resources.New(), doc, RenderingOptions{NThreads: 1}, "", FormatSVG)
	if err != nil {
		t.Fatal(err)
	}
	svg := out.SVGPages[0]
	if !strings.Contains(svg, `fill="rgb(1,2,3)"`) {
		t.Fatalf("background rect missing:\n%s", svg)
	}
	if strings.Count(svg, "<rect") != 1 {
		t.Fatalf("expected exactly the background rect:\n%s", svg)
	}
}
