package cmd

import "github.com/eykd/bundlepatch/internal/patch"

// hasSeverityError is the canonical check: true when sev matches the error severity constant.
func hasSeverityError(sev string) bool {
	return sev == patch.SeverityError
}

// hasDiagnosticError reports whether any patch.Diagnostic in diags has error severity.
func hasDiagnosticError(diags []patch.Diagnostic) bool {
	for _, d := range diags {
		if hasSeverityError(d.Severity) {
			return true
		}
	}
	return false
}

// collectDiagnostics flattens the diagnostics of every result, in order.
func collectDiagnostics(results []patch.Result) []patch.Diagnostic {
	diags := []patch.Diagnostic{}
	for _, r := range results {
		diags = append(diags, r.Diagnostics...)
	}
	return diags
}
