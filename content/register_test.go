package content

import (
	"testing"

	"github.com/wudi/slidekit/textmodel"
)

func sampleText(src string) *textmodel.Text {
	return &textmodel.Text{Source: src, MainStyle: textmodel.DefaultStyle()}
}

func TestRegisterTextDeduplicates(t *testing.T) {
	r := NewRegister()
	a := r.RegisterText(sampleText("Title"))
	b := r.RegisterText(sampleText("Title"))
	if a != b {
		t.Fatalf("ids differ: %d vs %d", a, b)
	}
	if got := r.TextRefCount(a); got != 2 {
		t.Fatalf("ref count = %d, want 2", got)
	}

	c := r.RegisterText(sampleText("Other"))
	if c == a {
		t.Fatal("distinct texts must get distinct ids")
	}
	if got := r.TextRefCount(c); got != 1 {
		t.Fatalf("ref count = %d, want 1", got)
	}
}

func TestRegisterImagePointerIdentity(t *testing.T) {
	r := NewRegister()
	p1 := &ImagePayload{Data: []byte{1, 2, 3}, Format: "png"}
	p2 := &ImagePayload{Data: []byte{1, 2, 3}, Format: "png"} // equal bytes, distinct payload

	a := r.RegisterBinImage(p1, 2, 2)
	b := r.RegisterBinImage(p1, 2, 2)
	c := r.RegisterBinImage(p2, 2, 2)
	if a != b {
		t.Fatalf("same payload registered twice: ids %d vs %d", a, b)
	}
	if c == a {
		t.Fatal("distinct payloads with identical bytes must get distinct ids")
	}
}

func TestRegisterCompositionAlwaysAllocates(t *testing.T) {
	r := NewRegister()
	items := []CompositionItem{}
	a := r.RegisterComposition(10, 10, items)
	b := r.RegisterComposition(10, 10, items)
	if a == b {
		t.Fatal("compositions are never deduplicated")
	}
}

func TestIdsAreMonotonic(t *testing.T) {
	r := NewRegister()
	prev := r.RegisterText(sampleText("a"))
	for _, src := range []string{"b", "c", "d"} {
		id := r.RegisterText(sampleText(src))
		if id <= prev {
			t.Fatalf("id %d not greater than %d", id, prev)
		}
		prev = id
	}
}
