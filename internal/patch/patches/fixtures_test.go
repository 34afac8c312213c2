package patches

import "strings"

// Bundle fragments, one per known shape. Each is embedded in surrounding
// minified code by wrap so that offsets are never zero.
const (
	spinnerUseEffect = `R.useEffect(()=>{if(Y===-1)return;let f=["·","✢","✳"];if(Y>=f.length){s(-1),t(1);return}u(f[Y]);let J=setTimeout(()=>{z((k)=>k+1)},60);return()=>clearTimeout(J)},[Y])`

	spinnerFrozenGuard = `X(()=>{if(!frozen){setTimeout(60);return}setState((x)=>x+1)},60)`

	speedSetTimeout = `setTimeout(()=>{z((J)=>J+1)},60)`

	formatNullish = `N=(Y??C?.activeForm??L)+"…"`

	formatNullishEscaped = `N=(Y??C?.activeForm??L)+"\u2026"`

	thinkingMemoized = `case"thinking":{if(!D&&!H)return null;let T=D&&!(!V||P===V),k;if(K[1]!==Y||K[2]!==D||K[3]!==q||K[4]!==T||K[5]!==H)k=g3.createElement(k_1,{addMargin:Y,param:q,isTranscriptMode:D,verbose:H,hideInTranscript:T})`

	thinkingBraced = `case"thinking":{if(!D&&!Z)return null;return n8.createElement($bA,{addMargin:Q,param:A,isTranscriptMode:D,verbose:Z,hideInTranscript:D&&!(!$||z===$)})}`

	thinkingBare = `case"thinking":if(!D)return null;X.createElement(C,{addMargin:Q,param:A,isTranscriptMode:D,verbose:Z})`

	// Declarations the user-message patch resolves elsewhere in the bundle.
	chalkAndBox = `var ch=mk();function hl(e){return ch.bold.rgb(1,2,3)(e)+ch.dim(e)}function Bx(e){return e}Bx.displayName="Box";`

	userMemoized = `O=R.createElement(T,{backgroundColor:"userMessageBackground"},X,R.createElement(T,{color:"text"},J)),K[5]=J,K[6]=O;else O=K[6];return O`

	userPointer = `return R.createElement(T,{backgroundColor:"userMessageBackground"},R.createElement(T,{color:"subtle"},F.pointer," "),R.createElement(T,{color:"text"},V))`

	userInline = `return R.createElement(T,{backgroundColor:"userMessageBackground",color:"text"},"> ",Z+" ");`
)

// wrap surrounds fragment with unrelated minified code.
func wrap(fragment string) string {
	return `"use strict";var π="…";function a(){return 1}` + fragment + `;function z(){return 2}`
}

// spinnerTipWindow builds the newer spinner layout where the verb
// expression appears a few hundred bytes after the spinnerTip props.
func spinnerTipWindow(expr string) string {
	return `{spinnerTip:A,mode:B,overrideMessage:W,` + strings.Repeat("x", 320) + `;M=(` + expr + `)+"…"`
}
