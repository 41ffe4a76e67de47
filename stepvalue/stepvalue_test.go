package stepvalue

import "testing"

func TestConstAt(t *testing.T) {
	v := Const(42)
	for _, s := range []int{1, 2, 100} {
		if got := v.At(s); got != 42 {
			t.Fatalf("At(%d) = %d, want 42", s, got)
		}
	}
}

func TestStepsFloorsOnKeys(t *testing.T) {
	v := Steps(map[int]string{1: "a", 3: "b", 10: "c"})
	cases := map[int]string{1: "a", 2: "a", 3: "b", 9: "b", 10: "c", 100: "c"}
	for step, want := range cases {
		if got := v.At(step); got != want {
			t.Fatalf("At(%d) = %q, want %q", step, got, want)
		}
	}
}

func TestStepsBelowLowestKeyPanics(t *testing.T) {
	v := Steps(map[int]int{5: 1})
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic querying below lowest key")
		}
	}()
	v.At(1)
}

func TestValuesConst(t *testing.T) {
	v := Const("x")
	got := v.Values()
	if len(got) != 1 || got[0] != "x" {
		t.Fatalf("got %v", got)
	}
}

func TestValuesSteps(t *testing.T) {
	v := Steps(map[int]int{3: 30, 1: 10, 2: 20})
	got := v.Values()
	want := []int{10, 20, 30}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestMaxStep(t *testing.T) {
	if Const(1).MaxStep() != 0 {
		t.Fatal("const MaxStep should be 0")
	}
	if Steps(map[int]int{1: 1, 7: 2}).MaxStep() != 7 {
		t.Fatal("steps MaxStep should be highest key")
	}
}
