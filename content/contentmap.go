package content

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wudi/slidekit/node"
	"github.com/wudi/slidekit/resources"
	"github.com/wudi/slidekit/shaper"
)

// BodyKind discriminates Content's four payload variants.
type BodyKind int

const (
	BodyText BodyKind = iota
	BodyBinImage
	BodySvgImage
	BodyComposition
)

// Content is the preprocessed, immutable form of one registered entry,
// keyed by ContentId in a ContentMap (spec §3).
type Content struct {
	Width, Height float64
	Kind          BodyKind

	Shaped   *shaper.ShapedText // BodyText
	IsShared bool               // BodyText: ref-count > 1

	Image     image.Image // BodyBinImage: decoded raster
	RawData   []byte      // BodyBinImage: original encoded bytes (SVG backend data: URLs)
	RawFormat string      // BodyBinImage: "png" | "jpeg"

	SvgSource []byte // BodySvgImage: raw SVG bytes

	CompositionItems []CompositionItem // BodyComposition
}

// ContentMap maps ContentId to its preprocessed Content. Built once
// during the pipeline's preprocessing phase and shared immutably across
// all page workers (spec §5).
type ContentMap map[node.ContentId]Content

// Progress is advanced by exactly one per preprocessed item (spec
// §4.10: "each preprocessing sub-phase may advance a shared progress
// counter by exactly one per item"). A nil Progress is a no-op.
type Progress func()

// BuildContentMap preprocesses every entry in r (spec §4.10 steps 1-2):
// shapes every registered text once, decodes every registered raster
// image, and records every SVG image and composition as-is (SVG->PDF
// conversion is a backend-specific step layered on top by backend/pdf,
// not performed here). Texts and images are preprocessed on a worker
// pool of at most nWorkers (<= 0 means the errgroup default of
// unlimited, which the pipeline never passes); shaping is the expensive
// phase the fan-out exists for.
func BuildContentMap(r *Register, res *resources.Resources, nWorkers int, progress Progress) (ContentMap, error) {
	cm := ContentMap{}
	var mu sync.Mutex

	tick := func() {
		if progress != nil {
			progress()
		}
	}

	var g errgroup.Group
	if nWorkers > 0 {
		g.SetLimit(nWorkers)
	}
	for _, e := range r.texts {
		e := e
		g.Go(func() error {
			st, effectiveStyling, err := parseAndHighlight(e.text)
			if err != nil {
				return err
			}
			shaped, err := shaper.Shape(st, effectiveStyling, res)
			if err != nil {
				return err
			}
			mu.Lock()
			cm[e.id] = Content{
				Width: shaped.Width, Height: shaped.Height,
				Kind: BodyText, Shaped: shaped, IsShared: e.refs > 1,
			}
			mu.Unlock()
			tick()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var ig errgroup.Group
	if nWorkers > 0 {
		ig.SetLimit(nWorkers)
	}
	for _, e := range r.binImages {
		e := e
		ig.Go(func() error {
			img, format, err := decodeRasterImage(e.payload)
			if err != nil {
				return err
			}
			mu.Lock()
			cm[e.id] = Content{
				Width: e.w, Height: e.h, Kind: BodyBinImage,
				Image: img, RawData: e.payload.Data, RawFormat: format,
			}
			mu.Unlock()
			tick()
			return nil
		})
	}
	if err := ig.Wait(); err != nil {
		return nil, err
	}

	for _, e := range r.svgImages {
		cm[e.id] = Content{Width: e.w, Height: e.h, Kind: BodySvgImage, SvgSource: e.payload.Data}
		tick()
	}

	for _, e := range r.compositions {
		cm[e.id] = Content{Width: e.w, Height: e.h, Kind: BodyComposition, CompositionItems: e.items}
	}

	return cm, nil
}
