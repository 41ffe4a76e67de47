// Package pipeline is the rendering orchestrator (spec §4.10): parallel
// content preprocessing, parallel per-page layout/canvas/composition,
// and backend finalization, behind the single Render entry point (spec
// §6). Fan-out/fan-in runs on golang.org/x/sync/errgroup (the pack's
// parallel-iteration idiom, see SPEC_FULL.md's AMBIENT STACK); grounded
// on original_source/renderer/src/document.rs and renderer/src/lib.rs.
package pipeline

import (
	"github.com/wudi/slidekit/content"
	"github.com/wudi/slidekit/node"
)

// Document is the host-built input to one render call: an ordered page
// list plus the content register the pages' nodes reference (spec §3).
// Constructed once and consumed by a single Render.
type Document struct {
	Pages    []*node.Page
	Register *content.Register
}

// NewDocument returns an empty Document with a fresh content register.
func NewDocument() *Document {
	return &Document{Register: content.NewRegister()}
}

// AddPage appends p to the document's page sequence.
func (d *Document) AddPage(p *node.Page) {
	d.Pages = append(d.Pages, p)
}

// renderedPage is one (slide, step) output page: the step model
// flattens every page's build steps into the concrete page sequence
// (spec §1, GLOSSARY "Step").
type renderedPage struct {
	page *node.Page
	step int
}

// expandSteps produces the concrete output-page list: each document
// page contributes NSteps() consecutive entries, steps numbered from 1.
func expandSteps(pages []*node.Page) []renderedPage {
	var out []renderedPage
	for _, p := range pages {
		n := p.NSteps()
		for step := 1; step <= n; step++ {
			out = append(out, renderedPage{page: p, step: step})
		}
	}
	return out
}
