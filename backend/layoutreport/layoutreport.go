// Package layoutreport implements the layout-report backend (spec
// §4.11): it records each page's resolved NodeId -> Rectangle map and
// produces no visual output.
package layoutreport

import (
	"sync"

	"github.com/wudi/slidekit/geo"
	"github.com/wudi/slidekit/node"
	"github.com/wudi/slidekit/pdflayout"
)

// Composer collects one resolved-rectangle map per page into a
// fixed-size vector, each slot assigned under a briefly-held mutex.
type Composer struct {
	mu    sync.Mutex
	pages []map[node.Id]geo.Rectangle
}

// NewComposer returns a Composer with nPages preallocated page slots.
func NewComposer(nPages int) *Composer {
	return &Composer{pages: make([]map[node.Id]geo.Rectangle, nPages)}
}

// NeedsImagePreprocessing reports false: no visual output is produced.
func (c *Composer) NeedsImagePreprocessing() bool { return false }

// EmitPage records the page's resolved rectangles into slot pageIdx.
func (c *Composer) EmitPage(pageIdx int, cl *pdflayout.ComputedLayout) error {
	rects := cl.Rects()
	c.mu.Lock()
	c.pages[pageIdx] = rects
	c.mu.Unlock()
	return nil
}

// Pages returns the collected per-page rectangle maps in page order.
func (c *Composer) Pages() []map[node.Id]geo.Rectangle { return c.pages }
