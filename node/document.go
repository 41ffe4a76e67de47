package node

import "github.com/wudi/slidekit/geo"

// Page is one page of a Document: its root layout box plus page
// dimensions and background color (spec §3).
type Page struct {
	Node    Node
	Width   float64
	Height  float64
	BgColor *geo.Color
}

// NewPage returns a Page whose root node is id, sized width x height.
func NewPage(id Id, width, height float64) *Page {
	n := NewNode(id)
	return &Page{Node: *n, Width: width, Height: height}
}

// NSteps returns the number of build steps this page renders to: the
// greatest step index any node's step-valued attribute mentions, at
// least 1. Each step becomes one output page (spec §1: "one page per
// (slide, step) combination").
func (p *Page) NSteps() int {
	n := maxStep(&p.Node)
	if n < 1 {
		n = 1
	}
	return n
}

func maxStep(n *Node) int {
	max := n.Show.MaxStep()
	if m := n.BgColor.MaxStep(); m > max {
		max = m
	}
	for _, ch := range n.Children {
		if ch.Kind != ChildNode {
			continue
		}
		if m := maxStep(ch.Node); m > max {
			max = m
		}
	}
	return max
}
