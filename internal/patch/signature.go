package patch

import "errors"

// Stage names the step of recognition or application that failed.
type Stage string

const (
	StageAnchor     Stage = "anchor"     // coarse pattern absent from the document
	StageRefine     Stage = "refine"     // fine pattern absent inside the anchored window
	StageMatch      Stage = "match"      // single-tier pattern absent from the document
	StageCapture    Stage = "capture"    // matched, but a required capture was missing
	StageTimeout    Stage = "timeout"    // a scan exceeded its time bound
	StageSynthesize Stage = "synthesize" // replacement text could not be built
)

// Signature recognizes the target construct as emitted by one known
// generation of the artifact. A Signature is a value; it holds no state
// between calls.
//
// With an Anchor the match runs in two tiers: Anchor is found in the whole
// document, a window starting at the anchor is cut, and Pattern is matched
// only inside that window. Without an Anchor, Pattern is matched against the
// whole document.
type Signature struct {
	Shape string

	Anchor *Pattern
	// Window is the length of the refinement window in characters (runes),
	// measured from the anchor's start. Zero uses exactly the anchor's match.
	Window int

	Pattern *Pattern

	// A nil Capture spans the whole match with no identifiers.
	Capture CaptureFunc
}

// CaptureFunc builds the Location from the fine match. doc is the whole
// document, for signatures that also capture names declared elsewhere. It
// reports false when a required capture is missing, and an error when a
// scan of doc failed (ErrScanTimeout).
type CaptureFunc func(doc string, m Match) (Location, bool, error)

// Recognize runs the signature against doc. On failure the returned Attempt
// names the stage that failed and the Location is the zero value.
func (s Signature) Recognize(doc string) (Location, Attempt) {
	region, base := doc, 0
	if s.Anchor != nil {
		a, ok, err := s.Anchor.Find(doc, 0)
		if err != nil {
			return Location{}, s.miss(StageTimeout, err)
		}
		if !ok {
			return Location{}, s.miss(StageAnchor, nil)
		}
		end := a.End
		if s.Window > 0 {
			end = advance(doc, a.Start, s.Window)
		}
		region, base = doc[a.Start:end], a.Start
	}

	m, ok, err := s.Pattern.Find(region, base)
	if err != nil {
		return Location{}, s.miss(StageTimeout, err)
	}
	if !ok {
		if s.Anchor != nil {
			return Location{}, s.miss(StageRefine, nil)
		}
		return Location{}, s.miss(StageMatch, nil)
	}

	capture := s.Capture
	if capture == nil {
		capture = SpanMatch
	}
	loc, ok, err := capture(doc, m)
	if err != nil {
		if errors.Is(err, ErrScanTimeout) {
			return Location{}, s.miss(StageTimeout, err)
		}
		return Location{}, s.miss(StageCapture, err)
	}
	if !ok || !loc.valid(len(doc)) {
		return Location{}, s.miss(StageCapture, nil)
	}
	loc.Shape = s.Shape
	return loc, Attempt{Shape: s.Shape}
}

func (s Signature) miss(stage Stage, err error) Attempt {
	return Attempt{Shape: s.Shape, Stage: stage, Err: err}
}

// SpanMatch is a Capture that covers the whole match.
func SpanMatch(_ string, m Match) (Location, bool, error) {
	return Location{Start: m.Start, End: m.End}, true, nil
}

// SpanGroup returns a Capture covering capture group g, which must have matched.
func SpanGroup(g int) CaptureFunc {
	return func(_ string, m Match) (Location, bool, error) {
		grp := m.Sub(g)
		if !grp.OK {
			return Location{}, false, nil
		}
		return Location{Start: grp.Start, End: grp.End}, true, nil
	}
}

// Groups collects the texts of the listed capture groups as identifiers.
// It reports false if any of them did not participate or is empty.
func Groups(m Match, groups ...int) ([]string, bool) {
	ids := make([]string, 0, len(groups))
	for _, g := range groups {
		grp := m.Sub(g)
		if !grp.OK || grp.Text == "" {
			return nil, false
		}
		ids = append(ids, grp.Text)
	}
	return ids, true
}

// Locator is an ordered chain of signatures for one patch, most recent
// artifact generation first.
type Locator []Signature

// Locate evaluates the signatures in order and returns the first match.
// Later signatures are not evaluated once one matches. The attempts slice
// records every signature evaluated.
func (l Locator) Locate(doc string) (Location, []Attempt, bool) {
	attempts := make([]Attempt, 0, len(l))
	for _, sig := range l {
		loc, at := sig.Recognize(doc)
		attempts = append(attempts, at)
		if at.Matched() {
			return loc, attempts, true
		}
	}
	return Location{}, attempts, false
}
