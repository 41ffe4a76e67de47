// Package stepvalue implements the constant-or-piecewise-over-step
// attribute container used throughout the node tree: any Node/Shape/Text
// field can vary across the build steps of a page.
package stepvalue

import "sort"

// StepValue is either a constant value or a value that changes at
// specific step boundaries (a build animation). Step indices are >= 1.
type StepValue[T any] struct {
	constant *T
	keys     []int
	values   []T
}

// Const builds a StepValue that never changes across steps.
func Const[T any](v T) StepValue[T] {
	return StepValue[T]{constant: &v}
}

// Steps builds a StepValue from an ordered set of (step, value) entries.
// Entries need not be sorted by caller; Steps sorts them by key. Per the
// data model invariant, a value at step s is only defined once some key
// <= s exists, so callers querying steps below the lowest key get a
// panic from At, matching §4.1/§8's documented programmer-error behavior.
func Steps[T any](entries map[int]T) StepValue[T] {
	keys := make([]int, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	values := make([]T, len(keys))
	for i, k := range keys {
		values[i] = entries[k]
	}
	return StepValue[T]{keys: keys, values: values}
}

// At returns the value for the greatest key <= step. For a Const value
// step is ignored. For a Steps value with no key <= step, At panics —
// this is a programmer error per spec §4.1 ("querying a Steps with no
// key <= the queried step is a programmer error").
func (s StepValue[T]) At(step int) T {
	if s.constant != nil {
		return *s.constant
	}
	idx := sort.Search(len(s.keys), func(i int) bool { return s.keys[i] > step }) - 1
	if idx < 0 {
		panic("stepvalue: At queried below the lowest defined step")
	}
	return s.values[idx]
}

// Values yields each stored value exactly once, in key order for a
// Steps value, or the single value for a Const one.
func (s StepValue[T]) Values() []T {
	if s.constant != nil {
		return []T{*s.constant}
	}
	out := make([]T, len(s.values))
	copy(out, s.values)
	return out
}

// IsConst reports whether the value never changes across steps.
func (s StepValue[T]) IsConst() bool { return s.constant != nil }

// MaxStep returns the highest step index at which this value changes,
// or 0 for a constant value (used by callers enumerating how many
// distinct step pages a page needs to be rendered at).
func (s StepValue[T]) MaxStep() int {
	if s.constant != nil || len(s.keys) == 0 {
		return 0
	}
	return s.keys[len(s.keys)-1]
}
