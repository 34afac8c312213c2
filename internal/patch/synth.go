package patch

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Placeholder is the token in caller-supplied formats that stands for the
// captured expression.
const Placeholder = "{}"

// Remove is a Synthesizer for structural removal: the captured span is deleted.
func Remove[P any](Location, P) (string, error) {
	return "", nil
}

// FormatInt serializes n as a JavaScript numeric literal.
func FormatInt(n int) string {
	return strconv.Itoa(n)
}

// TemplateLiteral renders format as a JavaScript template literal in which
// every "{}" interpolates expr. Backslashes, backticks and "${" in format are
// escaped so that only the placeholders interpolate.
func TemplateLiteral(format, expr string) string {
	parts := strings.Split(format, Placeholder)
	var b strings.Builder
	b.WriteByte('`')
	for i, part := range parts {
		if i > 0 {
			b.WriteString("${")
			b.WriteString(expr)
			b.WriteByte('}')
		}
		b.WriteString(escapeTemplate(part))
	}
	b.WriteByte('`')
	return b.String()
}

var templateEscaper = strings.NewReplacer(`\`, `\\`, "`", "\\`", "${", `\${`)

func escapeTemplate(s string) string {
	return templateEscaper.Replace(s)
}

// StringConcat renders format as a double-quoted JavaScript string
// expression with every "{}" replaced by a concatenation of expr, e.g.
// "> {}" becomes "> "+x+"".
func StringConcat(format, expr string) string {
	parts := strings.Split(format, Placeholder)
	quoted := make([]string, len(parts))
	for i, part := range parts {
		quoted[i] = QuoteString(part)
	}
	return strings.Join(quoted, "+"+expr+"+")
}

// QuoteString returns s as a double-quoted JavaScript string literal.
func QuoteString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}
