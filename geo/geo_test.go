package geo

import "testing"

func TestFitContentWider(t *testing.T) {
	r := Rectangle{X: 0, Y: 0, Width: 100, Height: 50}
	got := FitContent(r, 200, 50) // w/h=4 > r.w/r.h=2
	if got.Width != 100 {
		t.Fatalf("width = %v, want 100", got.Width)
	}
	wantH := 100.0 * 50 / 200
	if got.Height != wantH {
		t.Fatalf("height = %v, want %v", got.Height, wantH)
	}
	if got.X != 0 || got.Y != (50-wantH)/2 {
		t.Fatalf("not centered: %+v", got)
	}
}

func TestFitContentTaller(t *testing.T) {
	r := Rectangle{X: 10, Y: 10, Width: 50, Height: 100}
	got := FitContent(r, 50, 200) // w/h=0.25 < r.w/r.h=0.5
	if got.Height != 100 {
		t.Fatalf("height = %v, want 100", got.Height)
	}
	wantW := 100.0 * 50 / 200
	if got.Width != wantW {
		t.Fatalf("width = %v, want %v", got.Width, wantW)
	}
}

func TestInvertY(t *testing.T) {
	r := Rectangle{X: 10, Y: 20, Width: 30, Height: 40}
	got := r.InvertY(100)
	if got.Y != 100-20-40 {
		t.Fatalf("invert y = %v, want %v", got.Y, 100-20-40)
	}
}

func TestParseColorHexShort(t *testing.T) {
	c, err := ParseColor("#f00")
	if err != nil {
		t.Fatal(err)
	}
	if c != (Color{255, 0, 0, 255}) {
		t.Fatalf("got %+v", c)
	}
}

func TestParseColorRGBA(t *testing.T) {
	c, err := ParseColor("rgba(10, 20, 30, 0.5)")
	if err != nil {
		t.Fatal(err)
	}
	if c.R != 10 || c.G != 20 || c.B != 30 || c.A != 128 {
		t.Fatalf("got %+v", c)
	}
}

func TestParseColorInvalid(t *testing.T) {
	if _, err := ParseColor("not-a-color"); err == nil {
		t.Fatal("expected error")
	}
}

func TestNearlyUnitScale(t *testing.T) {
	if !NearlyUnitScale(1.0000001, 0.9999999) {
		t.Fatal("expected near-unit scale to be true")
	}
	if NearlyUnitScale(1.1, 1.0) {
		t.Fatal("expected false for non-unit scale")
	}
}
