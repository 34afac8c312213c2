package patches

import (
	"fmt"

	"github.com/eykd/bundlepatch/internal/patch"
)

// Identifier positions captured by the memoized thinking-visibility shape.
const (
	tvCaseHead = iota
	tvTranscriptVar
	tvVerboseVar
	tvHideVar
	tvResultVar
	tvReactVar
	tvComponent
	tvAddMarginVar
	tvParamVar
)

// Identifier positions captured by the braced-case and bare-case shapes.
const (
	tvBlockHead = iota
	tvBlockPrefix
	tvBlockTranscriptVar
	tvBlockSuffix
)

// ThinkingVisibility renders thinking blocks inline as if transcript mode
// were always on: the early `return null` guard is dropped and
// isTranscriptMode is forced to true.
var ThinkingVisibility = &patch.Patch[struct{}]{
	Name:    "thinking-visibility",
	Summary: "always show thinking blocks inline",
	Signatures: patch.Locator{
		{
			// case"thinking":{if(!D&&!H)return null;let T=D&&!(!V||P===V),k;if(K[1]!==Y||K[2]!==D||...)
			// k=g3.createElement(k_1,{addMargin:Y,param:q,isTranscriptMode:D,verbose:H,hideInTranscript:T})
			Shape:   "memoized",
			Pattern: patch.MustCompile(`(case"thinking":\{)if\(!([$\w]+)&&!([$\w]+)\)return null;let ([$\w]+)=\2&&!\(!([$\w]+)\|\|([$\w]+)===\5\),([$\w]+);if\([$\w]+\[\d+\]!==[$\w]+\|\|[$\w]+\[\d+\]!==\2\|\|[$\w]+\[\d+\]!==[$\w]+\|\|[$\w]+\[\d+\]!==\4\|\|[$\w]+\[\d+\]!==\3\)\7=([$\w]+)\.createElement\(([$\w]+),\{addMargin:([$\w]+),param:([$\w]+),isTranscriptMode:\2,verbose:\3,hideInTranscript:\4\}\)`),
			Capture: captureGroups(1, 2, 3, 4, 7, 8, 9, 10, 11),
		},
		{
			// case"thinking":{if(!D&&!Z)return null;return n8.createElement($bA,{addMargin:Q,param:A,
			// isTranscriptMode:D,verbose:Z,hideInTranscript:D&&!(!$||z===$)})}
			Shape:   "braced-case",
			Pattern: patch.MustCompile(`(case"thinking":)\{if\(![$\w]+&&![$\w]+\)return null;(return [$\w]+\.createElement\([$\w]+,\{addMargin:[$\w]+,param:[$\w]+,isTranscriptMode:)([$\w]+)(,verbose:[$\w]+,hideInTranscript:[$\w]+&&!\(![$\w]+\|\|[$\w]+===[$\w]+\)\})\)\}`),
			Capture: captureGroups(1, 2, 3, 4),
		},
		{
			// case"thinking":if(!D)return null;X.createElement(C,{addMargin:Q,param:A,isTranscriptMode:D,verbose:Z})
			Shape:   "bare-case",
			Pattern: patch.MustCompile(`(case"thinking":)if\([$\w!&]+\)return null;([$\w.]+\.createElement\([$\w]+,\{addMargin:[$\w]+,param:[$\w]+,isTranscriptMode:)([$\w]+)(,verbose:[$\w]+\s*\})\)`),
			Capture: captureGroups(1, 2, 3, 4),
		},
	},
	Synthesize: synthesizeThinkingVisibility,
}

func synthesizeThinkingVisibility(loc patch.Location, _ struct{}) (string, error) {
	id := loc.Ident
	switch loc.Shape {
	case "memoized":
		if len(loc.Identifiers) != tvParamVar+1 {
			return "", fmt.Errorf("memoized thinking block: %w", patch.ErrAmbiguousCapture)
		}
		hide, result := id(tvHideVar), id(tvResultVar)
		return id(tvCaseHead) +
			"let " + hide + "=true&&!(!false||false===false)," + result + ";" +
			"if(true)" + result + "=" + id(tvReactVar) + ".createElement(" + id(tvComponent) +
			",{addMargin:" + id(tvAddMarginVar) +
			",param:" + id(tvParamVar) +
			",isTranscriptMode:true" +
			",verbose:" + id(tvVerboseVar) +
			",hideInTranscript:" + hide + "})", nil
	case "braced-case":
		if len(loc.Identifiers) != tvBlockSuffix+1 {
			return "", fmt.Errorf("braced thinking case: %w", patch.ErrAmbiguousCapture)
		}
		return id(tvBlockHead) + "{" + id(tvBlockPrefix) + "true" + id(tvBlockSuffix) + ")}", nil
	case "bare-case":
		if len(loc.Identifiers) != tvBlockSuffix+1 {
			return "", fmt.Errorf("bare thinking case: %w", patch.ErrAmbiguousCapture)
		}
		return id(tvBlockHead) + id(tvBlockPrefix) + "true" + id(tvBlockSuffix) + ")", nil
	}
	return "", fmt.Errorf("unknown thinking block shape %q", loc.Shape)
}

// captureGroups spans the whole match and captures the listed groups, in
// order, as identifiers.
func captureGroups(groups ...int) patch.CaptureFunc {
	return func(_ string, m patch.Match) (patch.Location, bool, error) {
		ids, ok := patch.Groups(m, groups...)
		if !ok {
			return patch.Location{}, false, nil
		}
		return patch.Location{Start: m.Start, End: m.End, Identifiers: ids}, true, nil
	}
}
