package svg

import (
	"strings"
	"testing"

	"github.com/beevik/etree"

	"github.com/wudi/slidekit/canvas"
	"github.com/wudi/slidekit/content"
	"github.com/wudi/slidekit/geo"
	"github.com/wudi/slidekit/node"
)

func TestRenderPageTopLevelSize(t *testing.T) {
	page := node.NewPage(0, 320, 240)
	bg := geo.Color{R: 250, G: 250, B: 250, A: 255}
	page.BgColor = &bg

	out, err := RenderPage(page, &canvas.Canvas{}, content.ContentMap{})
	if err != nil {
		t.Fatal(err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(out); err != nil {
		t.Fatal(err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "svg" {
		t.Fatalf("root = %v", root)
	}
	if got := root.SelectAttrValue("width", ""); got != "320" {
		t.Fatalf("width = %q", got)
	}
	if got := root.SelectAttrValue("height", ""); got != "240" {
		t.Fatalf("height = %q", got)
	}
	if got := root.SelectAttrValue("viewBox", ""); got != "0 0 320 240" {
		t.Fatalf("viewBox = %q", got)
	}
	if root.SelectAttrValue("xmlns", "") != "http://www.w3.org/2000/svg" {
		t.Fatal("missing svg namespace")
	}
}

func TestContentTransformTranslateOnlyWithinEpsilon(t *testing.T) {
	page := node.NewPage(0, 100, 100)
	cm := content.ContentMap{
		0: {Width: 10, Height: 10, Kind: content.BodyBinImage, RawFormat: "png", RawData: []byte{1}},
	}
	cv := &canvas.Canvas{Items: []canvas.DrawItem{{
		Kind: canvas.ItemContent, Content: 0,
		Rect: geo.Rectangle{X: 5, Y: 7, Width: 10, Height: 10},
	}}}

	out, err := RenderPage(page, cv, cm)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `transform="translate(5, 7)"`) {
		t.Fatalf("expected translate-only transform, got:\n%s", out)
	}
	if strings.Contains(out, "scale(") {
		t.Fatal("unit scale must not emit a scale term")
	}
}

func TestContentTransformEmitsScale(t *testing.T) {
	page := node.NewPage(0, 100, 100)
	cm := content.ContentMap{
		0: {Width: 10, Height: 10, Kind: content.BodyBinImage, RawFormat: "png", RawData: []byte{1}},
	}
	cv := &canvas.Canvas{Items: []canvas.DrawItem{{
		Kind: canvas.ItemContent, Content: 0,
		Rect: geo.Rectangle{X: 0, Y: 0, Width: 20, Height: 10},
	}}}

	out, err := RenderPage(page, cv, cm)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "scale(2, 1)") {
		t.Fatalf("expected scale(2, 1), got:\n%s", out)
	}
}

func TestRasterImageBecomesDataURL(t *testing.T) {
	page := node.NewPage(0, 100, 100)
	cm := content.ContentMap{
		0: {Width: 4, Height: 4, Kind: content.BodyBinImage, RawFormat: "jpeg", RawData: []byte("abc")},
	}
	cv := &canvas.Canvas{Items: []canvas.DrawItem{{
		Kind: canvas.ItemContent, Content: 0,
		Rect: geo.Rectangle{Width: 4, Height: 4},
	}}}

	out, err := RenderPage(page, cv, cm)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "data:image/jpeg;base64,YWJj") {
		t.Fatalf("missing data URL, got:\n%s", out)
	}
}

func TestShapesAndPaths(t *testing.T) {
	page := node.NewPage(0, 100, 100)
	cv := &canvas.Canvas{Items: []canvas.DrawItem{
		{
			Kind: canvas.ItemRect, Rect: geo.Rectangle{X: 1, Y: 2, Width: 3, Height: 4},
			Fill: &geo.Fill{Color: geo.Color{R: 255, A: 128}},
		},
		{
			Kind: canvas.ItemOval, Rect: geo.Rectangle{X: 0, Y: 0, Width: 10, Height: 20},
			Stroke: &geo.Stroke{Color: geo.Black, Width: 2, Dash: []float64{4, 2}},
		},
		{
			Kind: canvas.ItemPath,
			Path: []canvas.ResolvedPathPart{
				{Kind: node.PathMoveTo, X: 0, Y: 0},
				{Kind: node.PathLineTo, X: 10, Y: 10},
			},
			Stroke: &geo.Stroke{Color: geo.Black, Width: 1},
		},
	}}

	out, err := RenderPage(page, cv, content.ContentMap{})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`fill="rgb(255,0,0)"`,
		`fill-opacity="0.502"`,
		"<ellipse",
		`stroke-dasharray="4,2"`,
		`d="M 0 0 L 10 10"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}
