package patches

import (
	"fmt"

	"github.com/eykd/bundlepatch/internal/patch"
)

// SymbolSpeedParams sets the spinner symbol's frame interval.
type SymbolSpeedParams struct {
	IntervalMs int
}

// ThinkerSymbolSpeed rewrites the interval literal of the spinner's frame timer.
// Applying it again to its own output rewrites the same literal.
var ThinkerSymbolSpeed = &patch.Patch[SymbolSpeedParams]{
	Name:    "thinker-symbol-speed",
	Summary: "change the spinner symbol frame interval (milliseconds)",
	Signatures: patch.Locator{
		{
			// setTimeout(()=>{z((J)=>J+1)},60)
			Shape:   "set-timeout",
			Pattern: patch.MustCompile(`setTimeout\(\(\)=>\{[$\w]+\(\([$\w]+\)=>[$\w]+\+1\)\},(\d+)\)`),
			Capture: patch.SpanGroup(1),
		},
		{
			// ,X(()=>{if(!frozen){setTimeout(60);return}setState((x)=>x+1)},60)
			Shape:   "frozen-guard",
			Pattern: patch.MustCompile(`[, ][$\w]+\(\(\)=>\{if\(![$\w]+\)\{[$\w]+\(\d+\);return\}[$\w]+\(\([^)]+\)=>[^)]+\+1\)\},(\d+)\)`),
			Capture: patch.SpanGroup(1),
		},
	},
	Synthesize: func(_ patch.Location, p SymbolSpeedParams) (string, error) {
		if p.IntervalMs <= 0 {
			return "", fmt.Errorf("interval must be a positive number of milliseconds, got %d", p.IntervalMs)
		}
		return patch.FormatInt(p.IntervalMs), nil
	},
}
