// Package report renders the splices made to a bundle for human review.
package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContext is the number of bytes shown on either side of a splice.
const DefaultContext = 40

// Differ writes a two-line character diff for each splice: the old text
// around the span and the new text around its replacement.
type Differ struct {
	out     io.Writer
	context int
	dmp     *diffmatchpatch.DiffMatchPatch

	header  *color.Color
	removed *color.Color
	added   *color.Color
}

// NewDiffer returns a Differ writing to out. context is clamped to zero;
// colorize turns ANSI colors on regardless of the terminal.
func NewDiffer(out io.Writer, context int, colorize bool) *Differ {
	if context < 0 {
		context = 0
	}
	d := &Differ{
		out:     out,
		context: context,
		dmp:     diffmatchpatch.New(),
		header:  color.New(color.FgCyan),
		removed: color.New(color.FgRed, color.Bold),
		added:   color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{d.header, d.removed, d.added} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return d
}

// Report writes the diff for one splice. start and end are offsets into
// oldDoc; replacement must appear at start in newDoc.
func (d *Differ) Report(oldDoc, newDoc, replacement string, start, end int) error {
	if start < 0 || start > end || end > len(oldDoc) {
		return fmt.Errorf("span [%d,%d) outside document of %d bytes", start, end, len(oldDoc))
	}
	newEnd := start + len(replacement)
	if newEnd > len(newDoc) || newDoc[start:newEnd] != replacement {
		return fmt.Errorf("replacement not found at offset %d of patched document", start)
	}

	lo := runeFloor(oldDoc, start-d.context)
	oldHi := runeCeil(oldDoc, end+d.context)
	newHi := runeCeil(newDoc, newEnd+d.context)
	before, after := oldDoc[lo:oldHi], newDoc[lo:newHi]

	diffs := d.dmp.DiffMain(before, after, false)
	diffs = d.dmp.DiffCleanupSemantic(diffs)

	var rm, add strings.Builder
	for _, df := range diffs {
		text := printable(df.Text)
		switch df.Type {
		case diffmatchpatch.DiffEqual:
			rm.WriteString(text)
			add.WriteString(text)
		case diffmatchpatch.DiffDelete:
			rm.WriteString(d.removed.Sprint(text))
		case diffmatchpatch.DiffInsert:
			add.WriteString(d.added.Sprint(text))
		}
	}

	_, err := fmt.Fprintf(d.out, "%s\n- %s\n+ %s\n",
		d.header.Sprintf("@@ bytes %d-%d (%+d) @@", start, end, len(replacement)-(end-start)),
		rm.String(), add.String())
	return err
}

// printable escapes line breaks and tabs so each side stays on one line.
func printable(s string) string {
	return strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`).Replace(s)
}

func runeFloor(s string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

func runeCeil(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	if i <= 0 {
		return 0
	}
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}
