package style

import "testing"

func TestAll_Order(t *testing.T) {
	want := []ID{Default, Highlight, Quote, Info, Warning, Success, Code}
	got := All()
	if len(got) != len(want) {
		t.Fatalf("len(All()) = %d, want %d", len(got), len(want))
	}
	for i, info := range got {
		if info.ID != want[i] {
			t.Errorf("All()[%d] = %q, want %q", i, info.ID, want[i])
		}
		if info.Name == "" || info.Description == "" {
			t.Errorf("style %q missing display metadata", info.ID)
		}
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	a := All()
	a[0].Name = "mutated"
	if All()[0].Name != "Default" {
		t.Error("All() exposed the registry to mutation")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{"default", Default},
		{"warning", Warning},
		{"code", Code},
		{"", Default},
		{"bogus", Default},
		{"Warning", Default},
		{" info", Default},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	info, ok := Lookup("code")
	if !ok {
		t.Fatal("code not found")
	}
	if info.Name != "Code Block" {
		t.Errorf("Name = %q, want %q", info.Name, "Code Block")
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("Lookup(nope) reported found")
	}
	if Valid("nope") || !Valid("quote") {
		t.Error("Valid disagrees with Lookup")
	}
}

func TestClass(t *testing.T) {
	if got := Info.Class(); got != "paragraph-info" {
		t.Errorf("Class() = %q", got)
	}
	if !Default.IsDefault() || Quote.IsDefault() {
		t.Error("IsDefault wrong")
	}
}
