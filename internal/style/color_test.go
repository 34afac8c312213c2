package style

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Color
		wantErr bool
	}{
		{"default", "default", Color{Kind: ColorDefault}, false},
		{"default any case", " Default ", Color{Kind: ColorDefault}, false},
		{"none", "none", Color{Kind: ColorNone}, false},
		{"empty is none", "", Color{Kind: ColorNone}, false},
		{"rgb", "rgb(1,2,3)", Color{Kind: ColorRGB, R: 1, G: 2, B: 3}, false},
		{"rgb with spaces", "RGB( 255 , 0, 128 )", Color{Kind: ColorRGB, R: 255, B: 128}, false},
		{"long hex", "#ff8000", Color{Kind: ColorRGB, R: 255, G: 128}, false},
		{"short hex", "#0f0", Color{Kind: ColorRGB, G: 255}, false},
		{"channel out of range", "rgb(256,0,0)", Color{}, true},
		{"bad hex", "#zzzzzz", Color{}, true},
		{"named color unsupported", "red", Color{}, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseColor(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestColorRendering(t *testing.T) {
	c := Color{Kind: ColorRGB, R: 10, G: 20, B: 30}
	if got := c.Args(); got != "10,20,30" {
		t.Errorf("Args() = %q", got)
	}
	if got := c.CSS(); got != "rgb(10,20,30)" {
		t.Errorf("CSS() = %q", got)
	}
	for _, tt := range []struct {
		c    Color
		want string
	}{
		{Color{Kind: ColorDefault}, "default"},
		{Color{Kind: ColorNone}, "none"},
		{c, "rgb(10,20,30)"},
	} {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestColorRoundTripThroughString(t *testing.T) {
	for _, in := range []string{"default", "none", "rgb(9,8,7)", "#abcdef"} {
		c, err := ParseColor(in)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", in, err)
		}
		again, err := ParseColor(c.String())
		if err != nil || again != c {
			t.Errorf("ParseColor(%q).String() = %q did not parse back to the same color", in, c.String())
		}
	}
}
