// Package patch locates version-specific constructs inside a minified
// bundle and splices synthesized replacement text over them.
package patch

import "errors"

// Location is where a patch applies in one document and what it captured there.
// Start and End are half-open byte offsets into the document the location
// was computed against; they are meaningless for any other document.
type Location struct {
	Start int `json:"start"`
	End   int `json:"end"`

	// Identifiers are verbatim substrings of the document, in the order the
	// matching signature documents them. They are never synthesized.
	Identifiers []string `json:"identifiers"`

	// Shape names the signature (artifact generation) that matched.
	Shape string `json:"shape"`
}

// Ident returns the i-th captured identifier, or "" when it is absent.
func (l Location) Ident(i int) string {
	if i < 0 || i >= len(l.Identifiers) {
		return ""
	}
	return l.Identifiers[i]
}

// valid reports whether the span fits inside a document of length n.
func (l Location) valid(n int) bool {
	return 0 <= l.Start && l.Start <= l.End && l.End <= n
}

// Position identifies a source position within a document.
type Position struct {
	Line       int `json:"line"`       // 1-based
	Column     int `json:"column"`     // 1-based, in bytes
	ByteOffset int `json:"byteOffset"` // 0-based byte offset from document start
}

// Diagnostic is a structured error or warning record emitted while applying patches.
type Diagnostic struct {
	Severity string    `json:"severity"` // "error" | "warning"
	Code     string    `json:"code"`     // e.g. "PTW001", "PTE003"
	Patch    string    `json:"patch,omitempty"`
	Stage    Stage     `json:"stage,omitempty"`
	Message  string    `json:"message"`
	Position *Position `json:"position,omitempty"` // nil if no source position
}

// Severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Errors (non-zero exit; the bundle is not written).
const (
	CodeUnknownPatch      = "PTE001"
	CodeAmbiguousPatch    = "PTE002"
	CodeSynthesisFailed   = "PTE003"
	CodeIOOrConfigFailure = "PTE004"
)

// Warnings (exit 0; remaining patches proceed).
const (
	CodeNotApplicable     = "PTW001"
	CodeAmbiguousCapture  = "PTW002"
	CodeNoChange          = "PTW003"
	CodeDuplicateSelector = "PTW004"
)

var (
	// ErrNotApplicable reports that no signature in a patch's chain matched.
	ErrNotApplicable = errors.New("patch not applicable")
	// ErrAmbiguousCapture reports that a signature matched but a required
	// capture was absent.
	ErrAmbiguousCapture = errors.New("required capture missing")
)

// Attempt records the outcome of evaluating one signature.
type Attempt struct {
	Shape string `json:"shape"`
	Stage Stage  `json:"stage,omitempty"` // empty when the signature matched
	Err   error  `json:"-"`
}

// Matched reports whether the signature produced a location.
func (a Attempt) Matched() bool {
	return a.Stage == ""
}

// Result is the outcome of applying one patch to one document.
type Result struct {
	Patch       string       `json:"patch"`
	Applied     bool         `json:"applied"`
	Location    Location     `json:"location"`
	Position    *Position    `json:"position,omitempty"`
	Replacement string       `json:"replacement,omitempty"`
	Attempts    []Attempt    `json:"attempts,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`

	err error
}

// Err returns nil for an applied patch, otherwise an error matching
// ErrNotApplicable, ErrAmbiguousCapture, or the synthesizer's own error.
func (r Result) Err() error {
	return r.err
}

// Stage returns the stage at which an unapplied patch stopped.
func (r Result) Stage() Stage {
	for _, d := range r.Diagnostics {
		if d.Stage != "" {
			return d.Stage
		}
	}
	return ""
}
