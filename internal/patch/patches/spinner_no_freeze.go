package patches

import "github.com/eykd/bundlepatch/internal/patch"

// SpinnerNoFreeze removes the guard that stops the spinner animation while
// the application is waiting on a slow response, so the symbol keeps cycling.
var SpinnerNoFreeze = &patch.Patch[struct{}]{
	Name:    "spinner-no-freeze",
	Summary: "keep the spinner symbol animating instead of freezing it",
	Signatures: patch.Locator{
		{
			// useEffect(()=>{if(Y===-1)return;let f=[...];if(Y>=f.length){s(-1),t(1);return}u(f[Y]);
			// let J=setTimeout(()=>{z((k)=>k+1)},60);return()=>clearTimeout(J)},[Y])
			Shape:   "use-effect",
			Anchor:  patch.MustCompile(`\.useEffect\(\(\)=>\{if\(([$\w]+)===-1\)return;let [$\w]+=\[[^\]]+\];if\(\1>=[$\w]+\.length\)\{[$\w]+\(-1\),[$\w]+\(1\);return\}[$\w]+\([$\w]+\[\1\]\);let ([$\w]+)=setTimeout\(\(\)=>\{[$\w]+\(\([$\w]+\)=>[$\w]+\+1\)\},\d+\);return\(\)=>clearTimeout\(\2\)\},\[\1\]\)`),
			Pattern: patch.MustCompile(`if\([$\w]+===-1\)return;`),
		},
		{
			// X(()=>{if(!frozen){setTimeout(60);return}setState((x)=>x+1)},60)
			Shape:   "frozen-guard",
			Anchor:  patch.MustCompile(`\b[$\w]+\(\(\)=>\{if\(![$\w]+\)\{[$\w]+\(\d+\);return\}[$\w]+\(\([^)]+\)=>[^)]+\+1\)\},\d+\)`),
			Pattern: patch.MustCompile(`if\(![$\w]+\)\{[$\w]+\(\d+\);return\}`),
		},
	},
	Synthesize: patch.Remove[struct{}],
}
