// Package version orders application version strings the way update feeds
// expect: "1.5" < "1.5.1", "1.5b3" < "1.5", "1.2rc1" < "1.2.0".
package version

import "strings"

// Class is the character class of a version segment.
type Class int

const (
	Numeric Class = iota
	Alphabetic
	Separator
)

func (c Class) String() string {
	switch c {
	case Numeric:
		return "numeric"
	case Alphabetic:
		return "alphabetic"
	case Separator:
		return "separator"
	default:
		return "unknown"
	}
}

// Segment is a maximal run of one class. Separators are always one byte long.
type Segment struct {
	Text  string
	Class Class
}

func (s Segment) String() string { return s.Text }

func classOf(b byte) Class {
	switch {
	case b >= '0' && b <= '9':
		return Numeric
	case b == '.':
		return Separator
	default:
		return Alphabetic
	}
}

// Split cuts v into segments. Joining the segment texts yields v again.
func Split(v string) []Segment {
	if v == "" {
		return nil
	}

	var (
		out   []Segment
		start = 0
		cur   = classOf(v[0])
	)
	for i := 1; i < len(v); i++ {
		c := classOf(v[i])
		if c == cur && c != Separator {
			continue
		}
		out = append(out, Segment{Text: v[start:i], Class: cur})
		start, cur = i, c
	}
	return append(out, Segment{Text: v[start:], Class: cur})
}

// Join is the inverse of Split.
func Join(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Compare returns -1 if a < b, 0 if they are equal, 1 if a > b.
func Compare(a, b string) int {
	pa, pb := Split(a), Split(b)

	n := min(len(pa), len(pb))
	for i := 0; i < n; i++ {
		if r := compareSegment(pa[i], pb[i]); r != 0 {
			return r
		}
	}

	switch {
	case len(pa) > len(pb):
		if pa[n].Class == Alphabetic {
			return -1
		}
		return 1
	case len(pb) > len(pa):
		if pb[n].Class == Alphabetic {
			return 1
		}
		return -1
	default:
		return 0
	}
}

// Newer reports whether remote is strictly greater than local.
func Newer(remote, local string) bool {
	return Compare(remote, local) > 0
}

func compareSegment(a, b Segment) int {
	if a.Class == b.Class {
		switch a.Class {
		case Numeric:
			return compareDigits(a.Text, b.Text)
		default:
			return strings.Compare(a.Text, b.Text)
		}
	}

	// anything beats a letter run, and a number beats a separator
	switch {
	case a.Class == Alphabetic:
		return -1
	case b.Class == Alphabetic:
		return 1
	case a.Class == Numeric:
		return 1
	default:
		return -1
	}
}

// compareDigits orders decimal strings by value without converting them, so
// arbitrarily long runs do not overflow.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
