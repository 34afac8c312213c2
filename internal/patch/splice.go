package patch

import "strings"

// Splice returns doc with the span of loc replaced by replacement. doc itself
// is left untouched.
func Splice(doc string, loc Location, replacement string) string {
	var b strings.Builder
	b.Grow(len(doc) - (loc.End - loc.Start) + len(replacement))
	b.WriteString(doc[:loc.Start])
	b.WriteString(replacement)
	b.WriteString(doc[loc.End:])
	return b.String()
}

// PositionOf returns the line/column position of byte offset off in doc.
func PositionOf(doc string, off int) Position {
	off = max(0, min(off, len(doc)))
	line := 1 + strings.Count(doc[:off], "\n")
	lineStart := strings.LastIndexByte(doc[:off], '\n') + 1
	return Position{Line: line, Column: off - lineStart + 1, ByteOffset: off}
}
