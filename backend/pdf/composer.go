// Package pdf implements the PDF composition backend described in
// spec §4.11: an atomic-counter ref allocator plus content-id to
// X-object table (here: pdfdoc.Builder plus Composer's own tables), a
// per-page content-stream emitter that walks a canvas.Canvas, and a
// final catalog/page-tree assembly pass. Grounded on
// original_source/renderer/src/render/composer_pdf.rs, canvas_pdf.rs,
// pdfdraw.rs.
package pdf

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/wudi/slidekit/content"
	"github.com/wudi/slidekit/geo"
	"github.com/wudi/slidekit/ir/raw"
	"github.com/wudi/slidekit/node"
	"github.com/wudi/slidekit/pdfdoc"
	"github.com/wudi/slidekit/shaper"
)

// Composer accumulates pages into a single PDF file. Its builder and
// lookup tables are guarded by mu because the pipeline's page-emission
// phase (spec §4.10 step 4) calls EmitPage concurrently across pages,
// each only briefly holding the lock to extend the builder's object
// list and append its own page reference.
type Composer struct {
	mu               sync.Mutex
	builder          *pdfdoc.Builder
	compressionLevel int

	contentRefs map[node.ContentId]raw.ObjectRef // shared text / image / svg X-objects
	xobjNames   map[node.ContentId]raw.NameObj
	nextXObj    int

	fonts map[string]fontResource

	extGStateRefs map[[2]int]raw.ObjectRef
	extGStateName map[[2]int]raw.NameObj
	nextGState    int

	pageRefs  []raw.ObjectRef
	pageDicts []*raw.DictObj
}

// NewComposer returns a Composer ready for Preprocess then EmitPage
// calls. compressionLevel is the requested FlateDecode level (0-9, or
// negative to disable compression) applied to content streams (spec's
// RenderingOptions.compression_level). Image, soft-mask and font-file
// data are always Flate-compressed; for them a negative level selects
// zlib's default level.
func NewComposer(compressionLevel int) *Composer {
	return &Composer{
		builder:          pdfdoc.NewBuilder(),
		compressionLevel: compressionLevel,
		contentRefs:      map[node.ContentId]raw.ObjectRef{},
		xobjNames:        map[node.ContentId]raw.NameObj{},
		fonts:            map[string]fontResource{},
		extGStateRefs:    map[[2]int]raw.ObjectRef{},
		extGStateName:    map[[2]int]raw.NameObj{},
	}
}

// NeedsImagePreprocessing reports true: the PDF backend is the only one
// that needs image re-encoding during the pipeline's parallel image
// preprocessing step (spec §4.10 step 2).
func (c *Composer) NeedsImagePreprocessing() bool { return true }

// Preprocess builds X-objects for every shared text and every
// registered image/SVG entry (spec §4.11 preprocessing a-c). Composites
// and unshared texts are deliberately left unregistered here: they are
// emitted inline, recursively, at each reference site.
func (c *Composer) Preprocess(cm content.ContentMap) error {
	ids := make([]node.ContentId, 0, len(cm))
	for id := range cm {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		body := cm[id]
		switch body.Kind {
		case content.BodyText:
			if !body.IsShared {
				continue
			}
			ref, err := c.buildSharedTextXObject(body)
			if err != nil {
				return err
			}
			c.registerXObject(id, ref)
		case content.BodyBinImage:
			c.registerXObject(id, c.embedRasterImage(body.Image))
		case content.BodySvgImage:
			ref, err := c.embedSVGImage(body.SvgSource)
			if err != nil {
				return err
			}
			c.registerXObject(id, ref)
		}
	}
	return nil
}

func (c *Composer) registerXObject(id node.ContentId, ref raw.ObjectRef) {
	c.contentRefs[id] = ref
	c.xobjNames[id] = raw.NameLiteral(fmt.Sprintf("X%d", c.nextXObj))
	c.nextXObj++
}

// buildSharedTextXObject wraps body's shaped text in a Form XObject
// with BBox [0 0 1 1] and Matrix [1/w 0 0 -1/h 0 1], so any invoker can
// draw it at an arbitrary destination rect via a `cm` of
// [width 0 0 height x y+height] (spec §4.11(a)).
func (c *Composer) buildSharedTextXObject(body content.Content) (raw.ObjectRef, error) {
	var buf bytes.Buffer
	fontsUsed := map[string]bool{}
	c.drawShapedText(&buf, body.Shaped, fontsUsed)

	dict := raw.Dict()
	dict.Set(raw.NameLiteral("Type"), raw.NameLiteral("XObject"))
	dict.Set(raw.NameLiteral("Subtype"), raw.NameLiteral("Form"))
	dict.Set(raw.NameLiteral("BBox"), raw.NewArray(raw.NumberInt(0), raw.NumberInt(0), raw.NumberInt(1), raw.NumberInt(1)))
	w, h := body.Width, body.Height
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	dict.Set(raw.NameLiteral("Matrix"), raw.NewArray(
		raw.NumberFloat(1/w), raw.NumberInt(0), raw.NumberInt(0), raw.NumberFloat(-1/h), raw.NumberInt(0), raw.NumberInt(1),
	))
	dict.Set(raw.NameLiteral("Resources"), c.fontResourcesDict(fontsUsed))

	stream, err := c.builder.NewStream(dict, buf.Bytes(), c.compressionLevel >= 0, c.compressionLevel)
	if err != nil {
		return raw.ObjectRef{}, err
	}
	return c.builder.Add(stream), nil
}

// fontResourcesDict builds a /Font subdictionary for the font families
// named in used, embedding any not yet embedded.
func (c *Composer) fontResourcesDict(used map[string]bool) *raw.DictObj {
	fontDict := raw.Dict()
	for family := range used {
		f := c.fonts[family]
		fontDict.Set(f.name, raw.Ref(f.compositeR.Num, f.compositeR.Gen))
	}
	res := raw.Dict()
	res.Set(raw.NameLiteral("Font"), fontDict)
	return res
}

// drawShapedText appends BT/ET glyph-show operators for st to buf,
// recording every font family it references into fontsUsed. Each
// glyph's absolute position from shaper.Shape is written via its own Tm
// (rather than relying on PDF's width-driven advance), since the
// shaper, not the PDF viewer, already owns glyph placement.
func (c *Composer) drawShapedText(buf *bytes.Buffer, st *shaper.ShapedText, fontsUsed map[string]bool) {
	if st == nil {
		return
	}
	for _, line := range st.Lines {
		for _, g := range line.Glyphs {
			name, _ := c.ensureFont(g.Font)
			fontsUsed[g.Font.Family] = true
			// the surrounding CTM is y-down; the glyph-local -1 flips
			// each glyph back upright without disturbing its baseline
			fmt.Fprintf(buf, "q %s rg BT /%s %s Tf 1 0 0 -1 %s %s Tm <%04X> Tj ET Q\n",
				colorOp(g.Color), name.Value(), fnum(g.FontSize), fnum(g.X), fnum(g.Y), uint16(g.ID))
		}
		for _, d := range line.Decoration {
			fmt.Fprintf(buf, "q %s rg %s %s %s %s re f Q\n",
				colorOp(d.Color), fnum(d.X), fnum(d.Y), fnum(d.Width), fnum(d.Thickness))
		}
	}
}

// colorOp formats c's RGB channels as the 0..1 operands of an `rg`/`RG`
// PDF color-setting operator.
func colorOp(c geo.Color) string {
	return fmt.Sprintf("%s %s %s", fnum(float64(c.R)/255), fnum(float64(c.G)/255), fnum(float64(c.B)/255))
}

func fnum(v float64) string { return fmt.Sprintf("%.4f", v) }

// extGState returns the resource name for a deduplicated ExtGState
// entry carrying fillAlpha (/ca) and strokeAlpha (/CA), allocating one
// on first use of this (fillAlpha, strokeAlpha) pair (spec §4.11:
// "deduplicated ExtGState entries keyed by (fill_alpha, stroke_alpha)").
func (c *Composer) extGState(fillAlpha, strokeAlpha float64) raw.NameObj {
	key := [2]int{int(fillAlpha*1000 + 0.5), int(strokeAlpha*1000 + 0.5)}
	c.mu.Lock()
	defer c.mu.Unlock()
	if name, ok := c.extGStateName[key]; ok {
		return name
	}
	gs := raw.Dict()
	gs.Set(raw.NameLiteral("Type"), raw.NameLiteral("ExtGState"))
	gs.Set(raw.NameLiteral("ca"), raw.NumberFloat(fillAlpha))
	gs.Set(raw.NameLiteral("CA"), raw.NumberFloat(strokeAlpha))
	ref := c.builder.Add(gs)
	name := raw.NameLiteral(fmt.Sprintf("G%d", c.nextGState))
	c.nextGState++
	c.extGStateRefs[key] = ref
	c.extGStateName[key] = name
	return name
}

