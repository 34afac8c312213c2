package patch

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// DefaultTimeout bounds one full scan of a document by a Pattern, across
// every match the scan visits.
const DefaultTimeout = 10 * time.Second

// ErrScanTimeout reports a scan that exceeded its Pattern's time bound.
var ErrScanTimeout = errors.New("pattern scan timed out")

// Pattern is a compiled recognizer expression in ECMAScript regular
// expression syntax. Unlike RE2 it supports backreferences, which the
// signatures use to tie repeated minified names together.
type Pattern struct {
	expr    string
	re      *regexp2.Regexp
	timeout time.Duration
}

// MustCompile compiles expr and panics if it is invalid. It is intended for
// package-level signature tables.
func MustCompile(expr string) *Pattern {
	return mustCompile(expr, DefaultTimeout)
}

func mustCompile(expr string, timeout time.Duration) *Pattern {
	re := regexp2.MustCompile(expr, regexp2.ECMAScript)
	re.MatchTimeout = timeout
	return &Pattern{expr: expr, re: re, timeout: timeout}
}

// WithTimeout returns a copy of p whose scans are bounded by d.
func (p *Pattern) WithTimeout(d time.Duration) *Pattern {
	return mustCompile(p.expr, d)
}

// String returns the source expression.
func (p *Pattern) String() string {
	return p.expr
}

// Group is one capture group of a Match, positioned by byte offsets.
type Group struct {
	Text  string
	Start int
	End   int
	OK    bool // false when the group did not participate in the match
}

// Match is the first match of a Pattern. Group 0 is the whole match.
type Match struct {
	Group
	groups []Group
}

// Sub returns capture group i, or a zero Group when i is out of range.
func (m Match) Sub(i int) Group {
	if i < 0 || i >= len(m.groups) {
		return Group{}
	}
	return m.groups[i]
}

// SubText returns the text of capture group i ("" when absent).
func (m Match) SubText(i int) string {
	return m.Sub(i).Text
}

// scan calls fn with each match of p in s, in document order, until fn
// returns false. The whole scan shares one deadline. Errors from the
// engine are timeouts and are reported as ErrScanTimeout without the
// engine's message, which quotes the entire input.
func (p *Pattern) scan(s string, fn func(*regexp2.Match) bool) error {
	deadline := time.Now().Add(p.timeout)
	rm, err := p.re.FindStringMatch(s)
	for rm != nil && err == nil {
		if !fn(rm) {
			return nil
		}
		if time.Now().After(deadline) {
			return p.timedOut()
		}
		rm, err = p.re.FindNextMatch(rm)
	}
	if err != nil {
		return p.timedOut()
	}
	return nil
}

func (p *Pattern) timedOut() error {
	return fmt.Errorf("matching %.40q after %v: %w", p.expr, p.timeout, ErrScanTimeout)
}

// Find returns the first match of p in s. Every offset in the result has
// base added, so a caller searching a window of a larger document gets
// offsets into that document.
func (p *Pattern) Find(s string, base int) (Match, bool, error) {
	var (
		m     Match
		found bool
	)
	err := p.scan(s, func(rm *regexp2.Match) bool {
		m, found = convertMatch(&runeCursor{s: s}, base, rm), true
		return false
	})
	if err != nil {
		return Match{}, false, err
	}
	return m, found, nil
}

// All returns every non-overlapping match of p in s, in document order.
func (p *Pattern) All(s string) ([]Match, error) {
	var out []Match
	cur := &runeCursor{s: s}
	err := p.scan(s, func(rm *regexp2.Match) bool {
		out = append(out, convertMatch(cur, 0, rm))
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MostFrequent returns the text of capture group g that occurs in the most
// matches of p in s. Ties go to the text seen first.
func (p *Pattern) MostFrequent(s string, g int) (string, bool, error) {
	counts := make(map[string]int)
	best, bestCount := "", 0
	err := p.scan(s, func(rm *regexp2.Match) bool {
		grp := rm.GroupByNumber(g)
		if grp == nil || len(grp.Captures) == 0 {
			return true
		}
		text := grp.String()
		counts[text]++
		if counts[text] > bestCount {
			best, bestCount = text, counts[text]
		}
		return true
	})
	if err != nil {
		return "", false, err
	}
	return best, bestCount > 0, nil
}

// runeCursor converts rune indexes of s into byte offsets. Successive
// increasing indexes resume from the previous position, so converting every
// match of a scan costs one pass over s.
type runeCursor struct {
	s     string
	runes int
	bytes int
}

func (c *runeCursor) seek(n int) int {
	if n < c.runes {
		c.runes, c.bytes = 0, 0
	}
	c.bytes = advance(c.s, c.bytes, n-c.runes)
	c.runes = n
	return c.bytes
}

// convertMatch translates regexp2's rune offsets into byte offsets and
// shifts them by base. cur must not be ahead of rm in its document.
func convertMatch(cur *runeCursor, base int, rm *regexp2.Match) Match {
	s := cur.s
	start := cur.seek(rm.Index)
	groups := rm.Groups()
	m := Match{groups: make([]Group, len(groups))}
	for i, g := range groups {
		if len(g.Captures) == 0 {
			continue
		}
		var gs int
		if g.Index >= rm.Index {
			gs = advance(s, start, g.Index-rm.Index)
		} else {
			// Lookbehind capture before the match start.
			gs = advance(s, 0, g.Index)
		}
		ge := advance(s, gs, g.Length)
		m.groups[i] = Group{Text: s[gs:ge], Start: base + gs, End: base + ge, OK: true}
	}
	m.Group = m.groups[0]
	return m
}

// advance returns the byte offset reached by moving n runes forward from
// byte offset from. Invalid bytes count as one rune each, as they do when
// regexp2 decodes its input.
func advance(s string, from, n int) int {
	i := from
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}
