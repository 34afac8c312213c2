package style

import (
	"fmt"
	"strings"
)

// Border is an Ink box border style.
type Border string

// BorderNone draws no border.
const BorderNone Border = "none"

// inkBorders are the styles Ink's Box understands by name.
var inkBorders = []Border{"single", "double", "round", "bold", "singleDouble", "doubleSingle", "classic", "arrow"}

// topBottomGlyphs are border styles drawn only above and below the content.
var topBottomGlyphs = map[Border]string{
	"topBottomSingle": "─",
	"topBottomDouble": "═",
	"topBottomBold":   "━",
}

// ParseBorder validates a border style name. An empty string means none.
func ParseBorder(s string) (Border, error) {
	b := Border(strings.TrimSpace(s))
	if b == "" || b == BorderNone {
		return BorderNone, nil
	}
	if _, ok := topBottomGlyphs[b]; ok {
		return b, nil
	}
	for _, known := range inkBorders {
		if b == known {
			return b, nil
		}
	}
	return "", fmt.Errorf("border style %q is not one of none, %s, topBottomSingle, topBottomDouble, topBottomBold",
		s, joinBorders(inkBorders))
}

// Literal renders the value of a Box borderStyle prop: a quoted style name,
// or a custom border object for the top/bottom-only styles. It returns ""
// for BorderNone.
func (b Border) Literal() string {
	if b == BorderNone || b == "" {
		return ""
	}
	if glyph, ok := topBottomGlyphs[b]; ok {
		return fmt.Sprintf(`{top:"%s",bottom:"%s",left:" ",right:" ",topLeft:" ",topRight:" ",bottomLeft:" ",bottomRight:" "}`, glyph, glyph)
	}
	return `"` + string(b) + `"`
}

func joinBorders(bs []Border) string {
	names := make([]string, len(bs))
	for i, b := range bs {
		names[i] = string(b)
	}
	return strings.Join(names, ", ")
}
