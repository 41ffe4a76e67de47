package observability

import (
	"errors"
	"testing"
)

func TestFieldConstructors(t *testing.T) {
	cases := []struct {
		f    Field
		key  string
		want interface{}
	}{
		{String("phase", "pages"), "phase", "pages"},
		{Int("total", 7), "total", 7},
		{Int64("done", int64(3)), "done", int64(3)},
	}
	for _, c := range cases {
		if c.f.Key() != c.key {
			t.Fatalf("key = %q, want %q", c.f.Key(), c.key)
		}
		if c.f.Value() != c.want {
			t.Fatalf("value = %v, want %v", c.f.Value(), c.want)
		}
	}
}

func TestErrorField(t *testing.T) {
	err := errors.New("boom")
	f := Error("err", err)
	if f.Key() != "err" {
		t.Fatalf("key = %q", f.Key())
	}
	if f.Value() != err {
		t.Fatalf("value = %v", f.Value())
	}
}

func TestNopLoggerWithReturnsNop(t *testing.T) {
	var l Logger = NopLogger{}
	l = l.With(String("k", "v"))
	if _, ok := l.(NopLogger); !ok {
		t.Fatalf("With returned %T, want NopLogger", l)
	}
	l.Debug("ignored")
	l.Info("ignored")
	l.Warn("ignored")
	l.Error("ignored")
}
