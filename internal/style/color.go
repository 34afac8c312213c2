// Package style parses the cosmetic parameters patches accept: colors and
// Ink border styles.
package style

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorKind distinguishes theme-provided, absent and explicit colors.
type ColorKind int

const (
	// ColorDefault keeps the application's theme color.
	ColorDefault ColorKind = iota
	// ColorNone removes the color entirely.
	ColorNone
	// ColorRGB is an explicit 24-bit color.
	ColorRGB
)

// Color is a parsed color parameter.
type Color struct {
	Kind    ColorKind
	R, G, B uint8
}

// IsRGB reports whether c is an explicit color.
func (c Color) IsRGB() bool {
	return c.Kind == ColorRGB
}

// Args renders an explicit color as "r,g,b" for chalk's rgb/bgRgb calls.
func (c Color) Args() string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}

// CSS renders an explicit color as "rgb(r,g,b)".
func (c Color) CSS() string {
	return "rgb(" + c.Args() + ")"
}

// String returns the canonical parameter form of c.
func (c Color) String() string {
	switch c.Kind {
	case ColorNone:
		return "none"
	case ColorRGB:
		return c.CSS()
	default:
		return "default"
	}
}

var rgbRE = regexp.MustCompile(`^rgb\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)$`)

// ParseColor parses "default", "none" (or an empty string), "rgb(r,g,b)"
// and hex forms "#rgb" / "#rrggbb".
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "default":
		return Color{Kind: ColorDefault}, nil
	case "none", "":
		return Color{Kind: ColorNone}, nil
	}

	if m := rgbRE.FindStringSubmatch(strings.ToLower(s)); m != nil {
		var ch [3]uint8
		for i := range ch {
			n, err := strconv.Atoi(m[i+1])
			if err != nil || n > 255 {
				return Color{}, fmt.Errorf("color %q: channel %s out of range 0-255", s, m[i+1])
			}
			ch[i] = uint8(n)
		}
		return Color{Kind: ColorRGB, R: ch[0], G: ch[1], B: ch[2]}, nil
	}

	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return Color{}, fmt.Errorf("color %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return Color{Kind: ColorRGB, R: r, G: g, B: b}, nil
	}

	return Color{}, fmt.Errorf("color %q: expected default, none, rgb(r,g,b) or #rrggbb", s)
}
