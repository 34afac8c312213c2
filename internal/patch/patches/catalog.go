// Package patches holds the catalog of patches for the terminal
// application's bundle and maps configuration onto their parameters.
package patches

import (
	"fmt"
	"strings"

	"github.com/eykd/bundlepatch/internal/config"
	"github.com/eykd/bundlepatch/internal/patch"
)

// Entry is a catalog patch with its parameters drawn from configuration.
type Entry interface {
	Name() string
	Summary() string
	// Shapes lists the signature shapes, newest generation first.
	Shapes() []string
	Locate(doc string) (patch.Location, []patch.Attempt, bool)
	Enabled(p config.Patches) bool
	Step(p config.Patches) patch.Step
}

type entry[P any] struct {
	patch   *patch.Patch[P]
	enabled func(config.Patches) bool
	params  func(config.Patches) P
}

func (e entry[P]) Name() string    { return e.patch.Name }
func (e entry[P]) Summary() string { return e.patch.Summary }

func (e entry[P]) Shapes() []string {
	shapes := make([]string, len(e.patch.Signatures))
	for i, s := range e.patch.Signatures {
		shapes[i] = s.Shape
	}
	return shapes
}

func (e entry[P]) Locate(doc string) (patch.Location, []patch.Attempt, bool) {
	return e.patch.Locate(doc)
}

func (e entry[P]) Enabled(p config.Patches) bool { return e.enabled(p) }

func (e entry[P]) Step(p config.Patches) patch.Step {
	return patch.Bind(e.patch, e.params(p))
}

// catalog is in application order. The symbol speed patch runs before
// spinner-no-freeze because older bundles share the frozen guard both
// patches key on, and spinner-no-freeze removes it.
var catalog = []Entry{
	entry[SymbolSpeedParams]{
		patch:   ThinkerSymbolSpeed,
		enabled: func(p config.Patches) bool { return p.ThinkerSymbolSpeed.Enabled },
		params: func(p config.Patches) SymbolSpeedParams {
			return SymbolSpeedParams{IntervalMs: p.ThinkerSymbolSpeed.IntervalMs}
		},
	},
	entry[struct{}]{
		patch:   SpinnerNoFreeze,
		enabled: func(p config.Patches) bool { return p.SpinnerNoFreeze.Enabled },
		params:  func(config.Patches) struct{} { return struct{}{} },
	},
	entry[FormatParams]{
		patch:   ThinkerFormat,
		enabled: func(p config.Patches) bool { return p.ThinkerFormat.Enabled },
		params: func(p config.Patches) FormatParams {
			return FormatParams{Format: p.ThinkerFormat.Format}
		},
	},
	entry[struct{}]{
		patch:   ThinkingVisibility,
		enabled: func(p config.Patches) bool { return p.ThinkingVisibility.Enabled },
		params:  func(config.Patches) struct{} { return struct{}{} },
	},
	entry[UserMessageParams]{
		patch:   UserMessageDisplay,
		enabled: func(p config.Patches) bool { return p.UserMessageDisplay.Enabled },
		params: func(p config.Patches) UserMessageParams {
			u := p.UserMessageDisplay
			return UserMessageParams{
				Format:          u.Format,
				Foreground:      u.Foreground,
				Background:      u.Background,
				Bold:            u.Bold,
				Italic:          u.Italic,
				Underline:       u.Underline,
				Strikethrough:   u.Strikethrough,
				Inverse:         u.Inverse,
				BorderStyle:     u.BorderStyle,
				BorderColor:     u.BorderColor,
				PaddingX:        u.PaddingX,
				PaddingY:        u.PaddingY,
				FitBoxToContent: u.FitBoxToContent,
			}
		},
	},
}

// All returns every catalog entry in application order.
func All() []Entry {
	out := make([]Entry, len(catalog))
	copy(out, catalog)
	return out
}

// Enabled returns the entries switched on in p, in application order.
func Enabled(p config.Patches) []Entry {
	var out []Entry
	for _, e := range catalog {
		if e.Enabled(p) {
			out = append(out, e)
		}
	}
	return out
}

// Steps binds entries to their parameters from p.
func Steps(entries []Entry, p config.Patches) []patch.Step {
	steps := make([]patch.Step, len(entries))
	for i, e := range entries {
		steps[i] = e.Step(p)
	}
	return steps
}

// Select resolves patch selectors to catalog entries. A selector matches a
// patch name exactly, case-insensitively, or as a unique prefix. The result
// keeps application order regardless of selector order. Fatal errors
// (PTE001, PTE002) and duplicate warnings (PTW004) are returned as
// diagnostics; when any error is present the entries are nil.
func Select(selectors []string) ([]Entry, []patch.Diagnostic) {
	var diags []patch.Diagnostic
	chosen := make(map[string]bool)
	failed := false

	for _, sel := range selectors {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		e, d := selectOne(sel)
		if d != nil {
			diags = append(diags, *d)
			failed = true
			continue
		}
		if chosen[e.Name()] {
			diags = append(diags, newSelectorDiag(patch.SeverityWarning, patch.CodeDuplicateSelector,
				fmt.Sprintf("selector %q selects %s more than once", sel, e.Name())))
			continue
		}
		chosen[e.Name()] = true
	}
	if failed {
		return nil, diags
	}

	var out []Entry
	for _, e := range catalog {
		if chosen[e.Name()] {
			out = append(out, e)
		}
	}
	return out, diags
}

// selectOne resolves a single selector, preferring an exact match over a
// case-insensitive one over a prefix.
func selectOne(sel string) (Entry, *patch.Diagnostic) {
	for _, e := range catalog {
		if e.Name() == sel {
			return e, nil
		}
	}
	for _, e := range catalog {
		if strings.EqualFold(e.Name(), sel) {
			return e, nil
		}
	}

	lower := strings.ToLower(sel)
	var matches []Entry
	for _, e := range catalog {
		if strings.HasPrefix(e.Name(), lower) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		d := newSelectorDiag(patch.SeverityError, patch.CodeUnknownPatch,
			fmt.Sprintf("selector %q matched no patch", sel))
		return nil, &d
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Name()
	}
	d := newSelectorDiag(patch.SeverityError, patch.CodeAmbiguousPatch,
		fmt.Sprintf("selector %q is ambiguous: matches %s", sel, strings.Join(names, ", ")))
	return nil, &d
}

// newSelectorDiag constructs a Diagnostic with no source position.
func newSelectorDiag(severity, code, message string) patch.Diagnostic {
	return patch.Diagnostic{Severity: severity, Code: code, Message: message}
}
