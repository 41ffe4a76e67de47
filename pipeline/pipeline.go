package pipeline

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/wudi/slidekit/backend/layoutreport"
	backendpdf "github.com/wudi/slidekit/backend/pdf"
	backendpng "github.com/wudi/slidekit/backend/png"
	backendsvg "github.com/wudi/slidekit/backend/svg"
	"github.com/wudi/slidekit/canvas"
	"github.com/wudi/slidekit/content"
	"github.com/wudi/slidekit/geo"
	"github.com/wudi/slidekit/node"
	"github.com/wudi/slidekit/observability"
	"github.com/wudi/slidekit/pdflayout"
	"github.com/wudi/slidekit/rendererr"
	"github.com/wudi/slidekit/resources"
)

// Format selects the composition backend (spec §6).
type Format int

const (
	FormatPDF Format = iota
	FormatSVG
	FormatPNG
	FormatLayout
)

// Ext returns the output file extension for directory-writing sinks.
func (f Format) Ext() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatSVG:
		return "svg"
	case FormatPNG:
		return "png"
	}
	return ""
}

// RenderingOptions carries the render call's knobs (spec §6). The zero
// value means: FlateDecode at level 0 (PDF content streams stored
// uncompressed), platform parallelism, no progress reporting, no
// logging.
type RenderingOptions struct {
	// CompressionLevel is the FlateDecode level (0-9) for PDF content
	// streams and embedded data.
	CompressionLevel int
	// NThreads bounds every parallel phase's worker pool; 0 requests
	// the platform's parallelism (spec §4.10).
	NThreads int
	// Progressbar enables per-item progress reporting through Logger.
	Progressbar bool
	// Logger receives phase and progress events; nil means no logging.
	Logger observability.Logger
}

func (o RenderingOptions) workers() int {
	if o.NThreads > 0 {
		return o.NThreads
	}
	return runtime.NumCPU()
}

func (o RenderingOptions) logger() observability.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return observability.NopLogger{}
}

// RenderOutput is the in-memory result of a Render call with no output
// path: exactly one field is populated, matching the requested format.
type RenderOutput struct {
	PDF      []byte
	SVGPages []string
	PNGPages [][]byte
	Layouts  []map[node.Id]geo.Rectangle
}

// progress is the shared per-phase counter each preprocessing and
// emission sub-phase advances by exactly one per item (spec §4.10).
type progress struct {
	label   string
	total   int
	done    atomic.Int64
	log     observability.Logger
	enabled bool
}

func (p *progress) tick() {
	n := p.done.Add(1)
	if p.enabled {
		p.log.Info("progress",
			observability.String("phase", p.label),
			observability.Int64("done", n),
			observability.Int("total", p.total))
	}
}

// Render is the single entry point per document and backend (spec §6).
// When path is non-empty, output is written to disk (one file for pdf
// and layout, one zero-padded file per page for svg/png) and the
// returned RenderOutput is nil. When path is empty, the output is
// collected in memory.
func Render(res *resources.Resources, doc *Document, opts RenderingOptions, path string, format Format) (*RenderOutput, error) {
	log := opts.logger()
	workers := opts.workers()
	outPages := expandSteps(doc.Pages)

	log.Info("render start",
		observability.Int("pages", len(doc.Pages)),
		observability.Int("output pages", len(outPages)),
		observability.Int("workers", workers))

	// Phase 1-2: content preprocessing (parallel across texts, then
	// images), producing the immutable ContentMap every page worker
	// shares (spec §4.10 steps 1-2, §5).
	prep := &progress{label: "preprocess", log: log, enabled: opts.Progressbar}
	cm, err := content.BuildContentMap(doc.Register, res, workers, prep.tick)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatPDF:
		return renderPDF(doc, cm, opts, path, outPages, log)
	case FormatSVG:
		return renderSVG(cm, opts, path, outPages, log)
	case FormatPNG:
		return renderPNG(cm, opts, path, outPages, log)
	case FormatLayout:
		return renderLayout(cm, opts, path, outPages, log)
	}
	return nil, &rendererr.FormatError{Kind: "format", Value: fmt.Sprintf("%d", format)}
}

// solvePage runs the per-page half of the pipeline (spec §4.10 step 4):
// layout solve, then canvas construction at the page's step.
func solvePage(rp renderedPage, cm content.ContentMap) (*pdflayout.ComputedLayout, *canvas.Canvas, error) {
	cl, err := pdflayout.Solve(rp.page, cm, rp.step)
	if err != nil {
		return nil, nil, err
	}
	cv, err := canvas.Build(rp.page, cl, rp.step)
	if err != nil {
		return nil, nil, err
	}
	return cl, cv, nil
}

// forEachPage fans the output-page list across the worker pool and
// joins before returning (the §5 fan-out/fan-in barrier between page
// emission and backend finish).
func forEachPage(outPages []renderedPage, workers int, emit func(idx int, rp renderedPage) error) error {
	var g errgroup.Group
	g.SetLimit(workers)
	for i, rp := range outPages {
		i, rp := i, rp
		g.Go(func() error { return emit(i, rp) })
	}
	return g.Wait()
}

func renderPDF(doc *Document, cm content.ContentMap, opts RenderingOptions, path string, outPages []renderedPage, log observability.Logger) (*RenderOutput, error) {
	comp := backendpdf.NewComposer(opts.CompressionLevel)
	comp.BeginPages(len(outPages))

	// Step 2-3: the PDF backend is the only one that preprocesses
	// images (X-object materialization); refs are allocated in
	// deterministic content-id order inside Preprocess.
	if err := comp.Preprocess(cm); err != nil {
		return nil, err
	}

	pageProgress := &progress{label: "pages", total: len(outPages), log: log, enabled: opts.Progressbar}
	err := forEachPage(outPages, opts.workers(), func(idx int, rp renderedPage) error {
		_, cv, err := solvePage(rp, cm)
		if err != nil {
			return err
		}
		if err := comp.EmitPage(idx, rp.page, cv, cm); err != nil {
			return err
		}
		pageProgress.tick()
		return nil
	})
	if err != nil {
		return nil, err
	}

	data, err := comp.Finish()
	if err != nil {
		return nil, err
	}
	log.Info("render finished", observability.Int("bytes", len(data)))
	if path != "" {
		return nil, writeFile(path, data)
	}
	return &RenderOutput{PDF: data}, nil
}

func renderSVG(cm content.ContentMap, opts RenderingOptions, path string, outPages []renderedPage, log observability.Logger) (*RenderOutput, error) {
	comp := backendsvg.NewComposer(len(outPages))
	pageProgress := &progress{label: "pages", total: len(outPages), log: log, enabled: opts.Progressbar}
	err := forEachPage(outPages, opts.workers(), func(idx int, rp renderedPage) error {
		_, cv, err := solvePage(rp, cm)
		if err != nil {
			return err
		}
		if err := comp.EmitPage(idx, rp.page, cv, cm); err != nil {
			return err
		}
		pageProgress.tick()
		return nil
	})
	if err != nil {
		return nil, err
	}
	pages := comp.Pages()
	log.Info("render finished", observability.Int("pages", len(pages)))
	if path != "" {
		return nil, writePageFiles(path, FormatSVG, pages, func(p string) []byte { return []byte(p) })
	}
	return &RenderOutput{SVGPages: pages}, nil
}

func renderPNG(cm content.ContentMap, opts RenderingOptions, path string, outPages []renderedPage, log observability.Logger) (*RenderOutput, error) {
	comp := backendpng.NewComposer(len(outPages))
	pageProgress := &progress{label: "pages", total: len(outPages), log: log, enabled: opts.Progressbar}
	err := forEachPage(outPages, opts.workers(), func(idx int, rp renderedPage) error {
		_, cv, err := solvePage(rp, cm)
		if err != nil {
			return err
		}
		if err := comp.EmitPage(idx, rp.page, cv, cm); err != nil {
			return err
		}
		pageProgress.tick()
		return nil
	})
	if err != nil {
		return nil, err
	}
	pages := comp.Pages()
	log.Info("render finished", observability.Int("pages", len(pages)))
	if path != "" {
		return nil, writePageFiles(path, FormatPNG, pages, func(p []byte) []byte { return p })
	}
	return &RenderOutput{PNGPages: pages}, nil
}

func renderLayout(cm content.ContentMap, opts RenderingOptions, path string, outPages []renderedPage, log observability.Logger) (*RenderOutput, error) {
	comp := layoutreport.NewComposer(len(outPages))
	err := forEachPage(outPages, opts.workers(), func(idx int, rp renderedPage) error {
		cl, err := pdflayout.Solve(rp.page, cm, rp.step)
		if err != nil {
			return err
		}
		return comp.EmitPage(idx, cl)
	})
	if err != nil {
		return nil, err
	}
	pages := comp.Pages()
	log.Info("render finished", observability.Int("pages", len(pages)))
	if path != "" {
		return nil, writeLayoutReport(path, pages)
	}
	return &RenderOutput{Layouts: pages}, nil
}
