package patches

import (
	"fmt"

	"github.com/eykd/bundlepatch/internal/patch"
)

// FormatParams is a display format in which "{}" stands for the captured
// expression.
type FormatParams struct {
	Format string
}

// thinkerFormatCapture locates `=(expr)+"…"` after the assigned name: group
// nameGroup is the name, exprGroup the parenthesized expression.
func thinkerFormatCapture(nameGroup, exprGroup int) patch.CaptureFunc {
	return func(_ string, m patch.Match) (patch.Location, bool, error) {
		name := m.Sub(nameGroup)
		ids, ok := patch.Groups(m, exprGroup)
		if !name.OK || !ok {
			return patch.Location{}, false, nil
		}
		return patch.Location{Start: name.End, End: m.End, Identifiers: ids}, true, nil
	}
}

// ThinkerFormat replaces the spinner's `verb + "…"` text with a template
// built from a caller format string.
var ThinkerFormat = &patch.Patch[FormatParams]{
	Name:    "thinker-format",
	Summary: `change the spinner text; "{}" is replaced by the current verb`,
	Signatures: patch.Locator{
		{
			// N=(X??x?.activeForm??c)+"…"
			Shape:   "nullish-direct",
			Pattern: patch.MustCompile(`([$\w]+)=\(([^)]+\?\?[$\w]+\?\.activeForm\?\?[$\w]+)\)\+"(?:…|\\u2026)"`),
			Capture: thinkerFormatCapture(1, 2),
		},
		{
			// spinnerTip:X,...,overrideMessage:W, followed within 1000 characters by N=(expr)+"…"
			Shape:   "spinner-tip-window",
			Anchor:  patch.MustCompile(`spinnerTip:[$\w]+,(?:[$\w]+:[$\w]+,)*overrideMessage:[$\w]+,.{300}`),
			Window:  1000,
			Pattern: patch.MustCompile(`([$\w]+)=\(([^;]{1,200}?)\)\+"(?:…|\\u2026)"`),
			Capture: thinkerFormatCapture(1, 2),
		},
	},
	Synthesize: func(loc patch.Location, p FormatParams) (string, error) {
		expr := loc.Ident(0)
		if expr == "" {
			return "", fmt.Errorf("spinner verb expression: %w", patch.ErrAmbiguousCapture)
		}
		return "=" + patch.TemplateLiteral(p.Format, expr), nil
	},
}
