package patch

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Reporter receives every successful splice for human inspection. start and
// end are offsets into oldDoc; replacement begins at start in newDoc.
type Reporter interface {
	Report(oldDoc, newDoc, replacement string, start, end int) error
}

// Engine runs steps against a document, logging patches that do not apply
// and passing successful splices to an optional Reporter. Neither the logger
// nor the reporter can change the documents an Engine returns.
type Engine struct {
	log      *zap.Logger
	reporter Reporter
}

// NewEngine returns an Engine. A nil logger discards diagnostics and a nil
// reporter disables reporting.
func NewEngine(log *zap.Logger, reporter Reporter) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log, reporter: reporter}
}

// Run applies steps in order, feeding each step's output document to the
// next, and returns the final document with one Result per step.
func (e *Engine) Run(doc string, steps ...Step) (string, []Result) {
	results := make([]Result, 0, len(steps))
	for _, s := range steps {
		var res Result
		doc, res = e.Apply(doc, s)
		results = append(results, res)
	}
	return doc, results
}

// Apply runs a single step against doc.
func (e *Engine) Apply(doc string, s Step) (string, Result) {
	out, res := s.Apply(doc)
	if !res.Applied {
		level := zapcore.WarnLevel
		if hasErrorDiagnostic(res.Diagnostics) {
			level = zapcore.ErrorLevel
		}
		e.log.Log(level, "patch not applied",
			zap.String("patch", res.Patch),
			zap.String("stage", string(res.Stage())),
			zap.Stringers("attempts", res.Attempts),
			zap.Error(res.Err()),
		)
		return doc, res
	}
	e.log.Info("patch applied",
		zap.String("patch", res.Patch),
		zap.String("shape", res.Location.Shape),
		zap.Int("start", res.Location.Start),
		zap.Int("end", res.Location.End),
	)
	e.log.Debug("patch identifiers",
		zap.String("patch", res.Patch),
		zap.Strings("identifiers", res.Location.Identifiers),
	)
	e.report(doc, out, res)
	return out, res
}

func (e *Engine) report(oldDoc, newDoc string, res Result) {
	if e.reporter == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("diff reporter panicked", zap.String("patch", res.Patch), zap.String("panic", fmt.Sprint(r)))
		}
	}()
	if err := e.reporter.Report(oldDoc, newDoc, res.Replacement, res.Location.Start, res.Location.End); err != nil {
		e.log.Warn("diff reporter failed", zap.String("patch", res.Patch), zap.Error(err))
	}
}

func hasErrorDiagnostic(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
