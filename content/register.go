// Package content implements the content registry (spec §4.3): text,
// image, and composition deduplication into stable ContentIds, plus the
// preprocessing step that turns registered entries into a ContentMap of
// shaped/decoded Content (spec §3, §4.10 step 1-2).
package content

import (
	"reflect"

	"github.com/wudi/slidekit/node"
	"github.com/wudi/slidekit/textmodel"
)

// ImagePayload is an immutable shared raster or SVG image payload.
// Dedup for images uses Go's natural pointer identity on *ImagePayload
// (replacing the Rust original's by_address::ByAddress wrapper): two
// distinct payloads with identical bytes are intentionally NOT
// considered equal, matching spec §4.3's "caller responsibility" note.
type ImagePayload struct {
	Data   []byte
	Format string // "png" | "jpeg" | "svg"
}

// CompositionItem places a registered content inside a composition at
// an explicit sub-rectangle.
type CompositionItem struct {
	X, Y, Width, Height float64
	Content             node.ContentId
}

type textEntry struct {
	text    *textmodel.Text
	id      node.ContentId
	refs    int
}

type imageEntry struct {
	payload *ImagePayload
	id      node.ContentId
	w, h    float64
}

type compositionEntry struct {
	id         node.ContentId
	w, h       float64
	items      []CompositionItem
}

// Register canonicalizes text/image/composition entries into stable
// ContentIds via a monotonic counter, per spec §4.3's invariants: ids
// are assigned monotonically and each appears in at most one body.
type Register struct {
	nextId       int
	texts        []*textEntry
	binImages    []*imageEntry
	svgImages    []*imageEntry
	compositions []*compositionEntry
}

// NewRegister returns an empty Register.
func NewRegister() *Register {
	return &Register{}
}

func (r *Register) alloc() node.ContentId {
	id := node.ContentId(r.nextId)
	r.nextId++
	return id
}

// RegisterText canonicalizes by structural equality of Text (spec
// §4.3), returning an existing ContentId and bumping its ref-count when
// an equal entry is already registered.
func (r *Register) RegisterText(t *textmodel.Text) node.ContentId {
	for _, e := range r.texts {
		if reflect.DeepEqual(e.text, t) {
			e.refs++
			return e.id
		}
	}
	id := r.alloc()
	r.texts = append(r.texts, &textEntry{text: t, id: id, refs: 1})
	return id
}

// TextRefCount returns how many times the content registered under id
// was requested (§4.10: ref-count > 1 decides shared-X-object emission).
func (r *Register) TextRefCount(id node.ContentId) int {
	for _, e := range r.texts {
		if e.id == id {
			return e.refs
		}
	}
	return 0
}

// RegisteredTexts returns every distinct registered text entry.
func (r *Register) RegisteredTexts() [](struct {
	Id   node.ContentId
	Text *textmodel.Text
	Refs int
}) {
	out := make([]struct {
		Id   node.ContentId
		Text *textmodel.Text
		Refs int
	}, len(r.texts))
	for i, e := range r.texts {
		out[i] = struct {
			Id   node.ContentId
			Text *textmodel.Text
			Refs int
		}{Id: e.id, Text: e.text, Refs: e.refs}
	}
	return out
}

// RegisterBinImage registers a raster image payload by pointer
// identity, returning an existing id if this exact payload was already
// registered.
func (r *Register) RegisterBinImage(payload *ImagePayload, w, h float64) node.ContentId {
	for _, e := range r.binImages {
		if e.payload == payload {
			return e.id
		}
	}
	id := r.alloc()
	r.binImages = append(r.binImages, &imageEntry{payload: payload, id: id, w: w, h: h})
	return id
}

// RegisterSvgImage registers an embedded SVG image payload by pointer
// identity.
func (r *Register) RegisterSvgImage(payload *ImagePayload, w, h float64) node.ContentId {
	for _, e := range r.svgImages {
		if e.payload == payload {
			return e.id
		}
	}
	id := r.alloc()
	r.svgImages = append(r.svgImages, &imageEntry{payload: payload, id: id, w: w, h: h})
	return id
}

// RegisterComposition always allocates a new id (compositions are never
// deduplicated, per spec §4.3).
func (r *Register) RegisterComposition(w, h float64, items []CompositionItem) node.ContentId {
	id := r.alloc()
	r.compositions = append(r.compositions, &compositionEntry{id: id, w: w, h: h, items: items})
	return id
}
