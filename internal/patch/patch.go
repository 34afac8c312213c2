package patch

import (
	"errors"
	"fmt"
	"strings"
)

// Patch is one behavioral change to the artifact: a signature chain that
// finds the construct and a synthesizer that rebuilds it. P is the type of
// the caller-supplied parameters.
type Patch[P any] struct {
	Name    string
	Summary string

	// Signatures are evaluated newest artifact generation first.
	Signatures Locator

	// Synthesize builds the replacement for the located span. It may only
	// reference names found in loc.Identifiers. Returning an error wrapping
	// ErrAmbiguousCapture fails the patch closed as not applicable.
	Synthesize func(loc Location, params P) (string, error)
}

// Locate runs the signature chain against doc without modifying anything.
func (p *Patch[P]) Locate(doc string) (Location, []Attempt, bool) {
	return p.Signatures.Locate(doc)
}

// Apply locates the construct in doc, synthesizes its replacement from
// params and splices it in. When the patch does not apply, doc is returned
// unchanged and the Result carries a diagnostic naming the failed stage.
func (p *Patch[P]) Apply(doc string, params P) (string, Result) {
	res := Result{Patch: p.Name}

	loc, attempts, ok := p.Signatures.Locate(doc)
	res.Attempts = attempts
	if !ok {
		d := MissDiagnostic(p.Name, attempts)
		res.err = ErrNotApplicable
		if d.Code == CodeAmbiguousCapture {
			res.err = ErrAmbiguousCapture
		}
		res.Diagnostics = []Diagnostic{d}
		return doc, res
	}

	pos := PositionOf(doc, loc.Start)
	replacement, err := p.Synthesize(loc, params)
	if err != nil {
		d := Diagnostic{
			Severity: SeverityError,
			Code:     CodeSynthesisFailed,
			Patch:    p.Name,
			Stage:    StageSynthesize,
			Message:  fmt.Sprintf("%s: building replacement for %s shape: %v", p.Name, loc.Shape, err),
			Position: &pos,
		}
		if errors.Is(err, ErrAmbiguousCapture) {
			d.Severity, d.Code, d.Stage = SeverityWarning, CodeAmbiguousCapture, StageCapture
		}
		res.err = err
		res.Diagnostics = []Diagnostic{d}
		return doc, res
	}

	res.Applied = true
	res.Location = loc
	res.Position = &pos
	res.Replacement = replacement
	if doc[loc.Start:loc.End] == replacement {
		res.Diagnostics = []Diagnostic{{
			Severity: SeverityWarning,
			Code:     CodeNoChange,
			Patch:    p.Name,
			Message:  fmt.Sprintf("%s: replacement is identical to the existing text", p.Name),
			Position: &pos,
		}}
	}
	return Splice(doc, loc, replacement), res
}

// Step is a patch bound to its parameters, ready to run in a sequence.
type Step interface {
	Name() string
	Apply(doc string) (string, Result)
}

// Bind fixes params for p and returns it as a Step.
func Bind[P any](p *Patch[P], params P) Step {
	return boundPatch[P]{patch: p, params: params}
}

type boundPatch[P any] struct {
	patch  *Patch[P]
	params P
}

func (b boundPatch[P]) Name() string {
	return b.patch.Name
}

func (b boundPatch[P]) Apply(doc string) (string, Result) {
	return b.patch.Apply(doc, b.params)
}

// MissDiagnostic describes a patch none of whose signatures matched. A
// capture failure is PTW002; any other miss is PTW001, tagged with the
// timeout stage when a scan timed out and otherwise with the last stage
// reached.
func MissDiagnostic(name string, attempts []Attempt) Diagnostic {
	code, stage := CodeNotApplicable, lastStage(attempts)
	switch {
	case hasStage(attempts, StageCapture):
		code, stage = CodeAmbiguousCapture, StageCapture
	case hasStage(attempts, StageTimeout):
		stage = StageTimeout
	}
	return Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Patch:    name,
		Stage:    stage,
		Message:  fmt.Sprintf("%s: no signature matched (%s)", name, describeAttempts(attempts)),
	}
}

func lastStage(attempts []Attempt) Stage {
	if len(attempts) == 0 {
		return StageMatch
	}
	return attempts[len(attempts)-1].Stage
}

func hasStage(attempts []Attempt, stage Stage) bool {
	for _, a := range attempts {
		if a.Stage == stage {
			return true
		}
	}
	return false
}

// describeAttempts renders attempts as "shape: stage, shape: stage".
func describeAttempts(attempts []Attempt) string {
	if len(attempts) == 0 {
		return "no signatures"
	}
	parts := make([]string, len(attempts))
	for i, a := range attempts {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// String renders the attempt as "shape: stage".
func (a Attempt) String() string {
	if a.Matched() {
		return a.Shape + ": matched"
	}
	if a.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", a.Shape, a.Stage, a.Err)
	}
	return a.Shape + ": " + string(a.Stage)
}
