package style

import (
	"strings"
	"testing"
)

func TestParseBorder(t *testing.T) {
	tests := []struct {
		in      string
		want    Border
		wantErr bool
	}{
		{"", BorderNone, false},
		{"none", BorderNone, false},
		{"round", "round", false},
		{"singleDouble", "singleDouble", false},
		{"topBottomBold", "topBottomBold", false},
		{" double ", "double", false},
		{"dotted", "", true},
		{"Round", "", true},
	}
	for _, tt := range tests {
		got, err := ParseBorder(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBorder(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBorder(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseBorder_ErrorListsChoices(t *testing.T) {
	_, err := ParseBorder("dotted")
	if err == nil || !strings.Contains(err.Error(), "round") || !strings.Contains(err.Error(), "topBottomSingle") {
		t.Errorf("error %v should list the valid styles", err)
	}
}

func TestBorderLiteral(t *testing.T) {
	tests := []struct {
		b    Border
		want string
	}{
		{BorderNone, ""},
		{"round", `"round"`},
		{"topBottomSingle", `{top:"─",bottom:"─",left:" ",right:" ",topLeft:" ",topRight:" ",bottomLeft:" ",bottomRight:" "}`},
	}
	for _, tt := range tests {
		if got := tt.b.Literal(); got != tt.want {
			t.Errorf("Border(%q).Literal() = %s, want %s", tt.b, got, tt.want)
		}
	}
}
