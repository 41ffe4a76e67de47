package pdf

import (
	"bytes"
	"fmt"

	"github.com/wudi/slidekit/canvas"
	"github.com/wudi/slidekit/content"
	"github.com/wudi/slidekit/geo"
	"github.com/wudi/slidekit/ir/raw"
	"github.com/wudi/slidekit/node"
	"github.com/wudi/slidekit/pdfdoc"
	"github.com/wudi/slidekit/shaper"
)

const bezierKappa = 0.5522847498

// BeginPages preallocates one page slot per output page so that
// concurrent EmitPage calls can land in document order regardless of
// worker completion order (spec §5: "reproducibility under fixed
// parallelism").
func (c *Composer) BeginPages(n int) {
	c.mu.Lock()
	c.pageRefs = make([]raw.ObjectRef, n)
	c.pageDicts = make([]*raw.DictObj, n)
	c.mu.Unlock()
}

// EmitPage renders one page's already-built canvas into a content
// stream and assigns the resulting page object to slot pageIdx (spec
// §4.11: "the canvas is emitted with [1, 0, 0, −1, 0, height] to flip
// to PDF's y-up world").
func (c *Composer) EmitPage(pageIdx int, page *node.Page, cv *canvas.Canvas, cm content.ContentMap) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "1 0 0 -1 0 %s cm\n", fnum(page.Height))

	fontsUsed := map[string]bool{}
	xobjUsed := map[node.ContentId]bool{}

	for _, item := range cv.Items {
		switch item.Kind {
		case canvas.ItemBackground:
			c.drawBackground(&buf, item)
		case canvas.ItemContent:
			if err := c.drawContentRef(&buf, item, cm, fontsUsed, xobjUsed); err != nil {
				return err
			}
		case canvas.ItemRect:
			drawRectPath(&buf, item.Rect)
			c.paint(&buf, item.Fill, item.Stroke)
		case canvas.ItemOval:
			drawOvalPath(&buf, item.Rect)
			c.paint(&buf, item.Fill, item.Stroke)
		case canvas.ItemPath:
			drawPath(&buf, item.Path)
			c.paint(&buf, item.Fill, item.Stroke)
		}
	}

	c.mu.Lock()
	pageRef := c.builder.Alloc()
	contentRef := c.builder.Alloc()
	c.mu.Unlock()

	contentStream, err := c.builder.NewStream(raw.Dict(), buf.Bytes(), c.compressionLevel >= 0, c.compressionLevel)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.builder.Set(contentRef, contentStream)

	resources := raw.Dict()
	fontDict := raw.Dict()
	for family := range fontsUsed {
		f := c.fonts[family]
		fontDict.Set(f.name, raw.Ref(f.compositeR.Num, f.compositeR.Gen))
	}
	resources.Set(raw.NameLiteral("Font"), fontDict)

	xobjDict := raw.Dict()
	for id := range xobjUsed {
		ref := c.contentRefs[id]
		xobjDict.Set(c.xobjNames[id], raw.Ref(ref.Num, ref.Gen))
	}
	resources.Set(raw.NameLiteral("XObject"), xobjDict)

	extGStateDict := raw.Dict()
	for key, ref := range c.extGStateRefs {
		extGStateDict.Set(c.extGStateName[key], raw.Ref(ref.Num, ref.Gen))
	}
	resources.Set(raw.NameLiteral("ExtGState"), extGStateDict)

	pageDict := raw.Dict()
	pageDict.Set(raw.NameLiteral("Type"), raw.NameLiteral("Page"))
	pageDict.Set(raw.NameLiteral("MediaBox"), raw.NewArray(raw.NumberInt(0), raw.NumberInt(0), raw.NumberFloat(page.Width), raw.NumberFloat(page.Height)))
	pageDict.Set(raw.NameLiteral("Resources"), resources)
	pageDict.Set(raw.NameLiteral("Contents"), raw.Ref(contentRef.Num, contentRef.Gen))

	c.builder.Set(pageRef, pageDict)
	c.pageRefs[pageIdx] = pageRef
	c.pageDicts[pageIdx] = pageDict
	c.mu.Unlock()

	if len(cv.Links) > 0 {
		annots := raw.NewArray()
		for _, link := range cv.Links {
			annotRef := c.buildLinkAnnotation(link, page.Height)
			annots.Append(raw.Ref(annotRef.Num, annotRef.Gen))
		}
		c.mu.Lock()
		pageDict.Set(raw.NameLiteral("Annots"), annots)
		c.mu.Unlock()
	}

	return nil
}

// buildLinkAnnotation allocates a Link annotation object for link on a
// page of the given height, using the rect-flip formula spelled out in
// spec §4.11/§8 scenario 6: rect = (x, h-y, x+w, h-y-height).
func (c *Composer) buildLinkAnnotation(link canvas.Link, pageHeight float64) raw.ObjectRef {
	r := link.Rect
	rectArr := raw.NewArray(
		raw.NumberFloat(r.X), raw.NumberFloat(pageHeight-r.Y),
		raw.NumberFloat(r.X+r.Width), raw.NumberFloat(pageHeight-r.Y-r.Height),
	)
	action := raw.Dict()
	action.Set(raw.NameLiteral("Type"), raw.NameLiteral("Action"))
	action.Set(raw.NameLiteral("S"), raw.NameLiteral("URI"))
	action.Set(raw.NameLiteral("URI"), raw.Str([]byte(link.URL)))

	annot := raw.Dict()
	annot.Set(raw.NameLiteral("Type"), raw.NameLiteral("Annot"))
	annot.Set(raw.NameLiteral("Subtype"), raw.NameLiteral("Link"))
	annot.Set(raw.NameLiteral("Rect"), rectArr)
	annot.Set(raw.NameLiteral("Border"), raw.NewArray(raw.NumberInt(0), raw.NumberInt(0), raw.NumberInt(0)))
	annot.Set(raw.NameLiteral("A"), action)

	c.mu.Lock()
	ref := c.builder.Add(annot)
	c.mu.Unlock()
	return ref
}

func (c *Composer) drawBackground(buf *bytes.Buffer, item canvas.DrawItem) {
	fmt.Fprintf(buf, "q %s rg\n", colorOp(item.BgColor))
	if item.Rounded {
		drawResolvedPath(buf, canvas.RoundedRectPath(item.Rect, item.Radius))
	} else {
		drawRectPath(buf, item.Rect)
	}
	buf.WriteString("f Q\n")
}

func (c *Composer) drawContentRef(buf *bytes.Buffer, item canvas.DrawItem, cm content.ContentMap, fontsUsed map[string]bool, xobjUsed map[node.ContentId]bool) error {
	body, ok := cm[item.Content]
	if !ok {
		return nil
	}
	if _, ok := c.contentRefs[item.Content]; ok {
		xobjUsed[item.Content] = true
		// [w 0 0 h x y+h] followed by invert-y: the page CTM is already
		// y-down, so the vertical scale lands negative here.
		fmt.Fprintf(buf, "q %s 0 0 %s %s %s cm /%s Do Q\n",
			fnum(item.Rect.Width), fnum(-item.Rect.Height), fnum(item.Rect.X), fnum(item.Rect.Y+item.Rect.Height),
			c.xobjNames[item.Content].Value())
		return nil
	}
	switch body.Kind {
	case content.BodyText:
		fmt.Fprintf(buf, "q 1 0 0 1 %s %s cm\n", fnum(item.Rect.X), fnum(item.Rect.Y))
		c.drawShapedText(buf, body.Shaped, fontsUsed)
		buf.WriteString("Q\n")
	case content.BodyComposition:
		for _, sub := range body.CompositionItems {
			subItem := canvas.DrawItem{Kind: canvas.ItemContent, Content: sub.Content, Rect: geo.Rectangle{
				X: item.Rect.X + sub.X, Y: item.Rect.Y + sub.Y, Width: sub.Width, Height: sub.Height,
			}}
			if err := c.drawContentRef(buf, subItem, cm, fontsUsed, xobjUsed); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Composer) paint(buf *bytes.Buffer, fill *geo.Fill, stroke *geo.Stroke) {
	if fill == nil && stroke == nil {
		buf.WriteString("n\n")
		return
	}
	fillAlpha, strokeAlpha := 1.0, 1.0
	if fill != nil {
		fillAlpha = fill.Color.AlphaFraction()
	}
	if stroke != nil {
		strokeAlpha = stroke.Color.AlphaFraction()
	}
	gsName := c.extGState(fillAlpha, strokeAlpha)
	fmt.Fprintf(buf, "/%s gs\n", gsName.Value())

	if fill != nil {
		fmt.Fprintf(buf, "%s rg\n", colorOp(fill.Color))
	}
	if stroke != nil {
		fmt.Fprintf(buf, "%s RG %s w\n", colorOp(stroke.Color), fnum(stroke.Width))
		if len(stroke.Dash) > 0 {
			fmt.Fprintf(buf, "[%s] 0 d\n", dashArray(stroke.Dash))
		}
	}

	switch {
	case fill != nil && stroke != nil:
		buf.WriteString("B\n")
	case fill != nil:
		buf.WriteString("f\n")
	case stroke != nil:
		buf.WriteString("S\n")
	}
}

func dashArray(dash []float64) string {
	var buf bytes.Buffer
	for i, d := range dash {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(fnum(d))
	}
	return buf.String()
}

func drawRectPath(buf *bytes.Buffer, r geo.Rectangle) {
	fmt.Fprintf(buf, "%s %s %s %s re\n", fnum(r.X), fnum(r.Y), fnum(r.Width), fnum(r.Height))
}

// drawOvalPath approximates an ellipse inscribed in r with four cubic
// Bezier arcs, using the standard kappa constant.
func drawOvalPath(buf *bytes.Buffer, r geo.Rectangle) {
	cx, cy := r.X+r.Width/2, r.Y+r.Height/2
	rx, ry := r.Width/2, r.Height/2
	kx, ky := rx*bezierKappa, ry*bezierKappa

	fmt.Fprintf(buf, "%s %s m\n", fnum(cx+rx), fnum(cy))
	fmt.Fprintf(buf, "%s %s %s %s %s %s c\n", fnum(cx+rx), fnum(cy+ky), fnum(cx+kx), fnum(cy+ry), fnum(cx), fnum(cy+ry))
	fmt.Fprintf(buf, "%s %s %s %s %s %s c\n", fnum(cx-kx), fnum(cy+ry), fnum(cx-rx), fnum(cy+ky), fnum(cx-rx), fnum(cy))
	fmt.Fprintf(buf, "%s %s %s %s %s %s c\n", fnum(cx-rx), fnum(cy-ky), fnum(cx-kx), fnum(cy-ry), fnum(cx), fnum(cy-ry))
	fmt.Fprintf(buf, "%s %s %s %s %s %s c\n", fnum(cx+kx), fnum(cy-ry), fnum(cx+rx), fnum(cy-ky), fnum(cx+rx), fnum(cy))
	buf.WriteString("h\n")
}

func drawPath(buf *bytes.Buffer, parts []canvas.ResolvedPathPart) {
	var curX, curY float64
	for _, p := range parts {
		switch p.Kind {
		case node.PathMoveTo:
			fmt.Fprintf(buf, "%s %s m\n", fnum(p.X), fnum(p.Y))
		case node.PathLineTo:
			fmt.Fprintf(buf, "%s %s l\n", fnum(p.X), fnum(p.Y))
		case node.PathQuadTo:
			// PDF has no quadratic operator; convert with the
			// (last + 2*control)/3 rule.
			c1x, c1y, c2x, c2y := shaper.QuadToCubic(curX, curY, p.ControlX, p.ControlY, p.X, p.Y)
			fmt.Fprintf(buf, "%s %s %s %s %s %s c\n", fnum(c1x), fnum(c1y), fnum(c2x), fnum(c2y), fnum(p.X), fnum(p.Y))
		case node.PathCubicTo:
			fmt.Fprintf(buf, "%s %s %s %s %s %s c\n", fnum(p.ControlX), fnum(p.ControlY), fnum(p.Control2X), fnum(p.Control2Y), fnum(p.X), fnum(p.Y))
		case node.PathClose:
			buf.WriteString("h\n")
			continue
		}
		curX, curY = p.X, p.Y
	}
}

func drawResolvedPath(buf *bytes.Buffer, parts []canvas.ResolvedPathPart) {
	drawPath(buf, parts)
}

// Finish builds the page tree and catalog and returns the complete PDF
// file (spec §4.10 step 5). The trailer /ID is derived from the page
// objects' numbers, so it depends only on the page count and the
// object allocation order, not on page content.
func (c *Composer) Finish() ([]byte, error) {
	kids := raw.NewArray()
	for _, ref := range c.pageRefs {
		kids.Append(raw.Ref(ref.Num, ref.Gen))
	}
	pagesDict := raw.Dict()
	pagesDict.Set(raw.NameLiteral("Type"), raw.NameLiteral("Pages"))
	pagesDict.Set(raw.NameLiteral("Kids"), kids)
	pagesDict.Set(raw.NameLiteral("Count"), raw.NumberInt(int64(len(c.pageRefs))))
	pagesRef := c.builder.Add(pagesDict)

	for _, d := range c.pageDicts {
		d.Set(raw.NameLiteral("Parent"), raw.Ref(pagesRef.Num, pagesRef.Gen))
	}

	catalog := raw.Dict()
	catalog.Set(raw.NameLiteral("Type"), raw.NameLiteral("Catalog"))
	catalog.Set(raw.NameLiteral("Pages"), raw.Ref(pagesRef.Num, pagesRef.Gen))
	catalogRef := c.builder.Add(catalog)
	c.builder.SetCatalog(catalogRef)

	var out bytes.Buffer
	seed := make([]byte, 0, len(c.pageRefs)*8)
	for _, ref := range c.pageRefs {
		seed = append(seed, byte(ref.Num), byte(ref.Num>>8))
	}
	if err := c.builder.WriteTo(&out, pdfdoc.FileID(seed)); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
