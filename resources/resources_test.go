package resources

import "testing"

func TestCheckFontGenericFamily(t *testing.T) {
	r := New()
	r.RegisterGenericFamily("sans-serif", "Arial")
	if err := r.CheckFont("sans-serif"); err != nil {
		t.Fatalf("expected generic family to be accepted: %v", err)
	}
}

func TestCheckFontUnknownRejected(t *testing.T) {
	r := New()
	if err := r.CheckFont("nonexistent-family"); err == nil {
		t.Fatal("expected error for unknown family")
	}
}

func TestListSyntaxesAndThemesHaveDefaults(t *testing.T) {
	r := New()
	found := false
	for _, s := range r.ListSyntaxes() {
		if s == "text" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected default 'text' syntax to be present")
	}
}

func TestAddFontDirectoryMissingDir(t *testing.T) {
	r := New()
	if err := r.AddFontDirectory("/nonexistent/path/for/test"); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
