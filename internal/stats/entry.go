// Package stats holds the modifier mapping catalog and the rules used to turn
// a raw modifier line into one trade-site stat filter.
package stats

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Group is the modifier-group tag the trade site shows next to every stat option.
type Group string

const (
	GroupExplicit   Group = "explicit"
	GroupImplicit   Group = "implicit"
	GroupPseudo     Group = "pseudo"
	GroupFractured  Group = "fractured"
	GroupDesecrated Group = "desecrated"
)

// Valid reports whether g is one of the groups the trade site knows about.
func (g Group) Valid() bool {
	switch g {
	case GroupExplicit, GroupImplicit, GroupPseudo, GroupFractured, GroupDesecrated:
		return true
	}
	return false
}

// Extractor is both the acceptance test and the value reader of an entry:
// it returns false when the text is not the modifier the entry describes.
type Extractor func(text string) (float64, bool)

// Entry is one canonical modifier definition.
type Entry struct {
	Key string
	// FilterText is the stat option label on the trade site, with '#' for numbers.
	FilterText string
	// Query is typed into the stat entry field. FilterText is used when empty.
	Query       string
	Group       Group
	Unsupported bool
	Extract     Extractor
}

// ExtractValue runs the entry's extractor.
func (e Entry) ExtractValue(text string) (float64, bool) {
	if e.Extract == nil {
		return 0, false
	}
	return e.Extract(text)
}

// SearchText is the text typed into the stat entry field.
func (e Entry) SearchText() string {
	if e.Query != "" {
		return e.Query
	}
	return e.FilterText
}

// IsRange reports whether the filter is an "Adds # to #" style modifier.
func (e Entry) IsRange() bool {
	return strings.Contains(e.FilterText, "Adds # to #")
}

// Resolution is an entry matched against one modifier line.
type Resolution struct {
	Entry
	Value        float64
	OriginalText string
	SearchKey    string
}

// ScaledValue applies the caller's percentage: floor(value * percent / 100).
// A percentage of 100 (or an unset one) leaves the value untouched.
func (r Resolution) ScaledValue(percent int) float64 {
	if percent <= 0 || percent == 100 {
		return r.Value
	}
	return math.Floor(r.Value * float64(percent) / 100)
}

// FormatValue renders a numeric bound the way it is typed into the min field.
func FormatValue(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

const numberPattern = `\d+(?:\.\d+)?`

// compileTemplate turns a filter text such as "+#% to Fire Resistance" into an
// anchored, case-insensitive regexp. A '#' becomes a named capture; "+#" also
// accepts a negative number. "increased" also accepts "reduced".
func compileTemplate(template string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString(`(?i)^`)

	captures := 0
	name := func() string {
		captures++
		switch captures {
		case 1:
			return "v"
		case 2:
			return "max"
		}
		return fmt.Sprintf("n%d", captures)
	}

	rest := template
	for rest != "" {
		switch {
		case strings.HasPrefix(rest, "+#"):
			fmt.Fprintf(&b, `(?P<%s>[+-]?%s)`, name(), numberPattern)
			rest = rest[2:]
		case strings.HasPrefix(rest, "#"):
			fmt.Fprintf(&b, `(?P<%s>-?%s)`, name(), numberPattern)
			rest = rest[1:]
		case strings.HasPrefix(rest, "increased"):
			b.WriteString(`(?P<dir>increased|reduced)`)
			rest = rest[len("increased"):]
		default:
			next := strings.IndexAny(rest[1:], "+#i")
			chunk := rest
			if next >= 0 {
				chunk = rest[:next+1]
			}
			b.WriteString(regexp.QuoteMeta(chunk))
			rest = rest[len(chunk):]
		}
	}
	b.WriteString(`$`)
	return regexp.MustCompile(b.String())
}

func groupValue(re *regexp.Regexp, m []string, name string) (float64, bool) {
	idx := re.SubexpIndex(name)
	if idx < 0 || idx >= len(m) || m[idx] == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimPrefix(m[idx], "+"), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func declines(text string, excludes []string) bool {
	lower := strings.ToLower(text)
	for _, ex := range excludes {
		if strings.Contains(lower, strings.ToLower(ex)) {
			return true
		}
	}
	return false
}

// single extracts the first number of the template. "reduced" negates it.
func single(template string, excludes ...string) Extractor {
	re := compileTemplate(template)
	return func(text string) (float64, bool) {
		if declines(text, excludes) {
			return 0, false
		}
		m := re.FindStringSubmatch(text)
		if m == nil {
			return 0, false
		}
		v, ok := groupValue(re, m, "v")
		if !ok {
			return 0, false
		}
		if idx := re.SubexpIndex("dir"); idx >= 0 && strings.EqualFold(m[idx], "reduced") {
			v = -v
		}
		return v, true
	}
}

// averaged extracts "Adds # to #" ranges as the mean of both bounds.
func averaged(template string) Extractor {
	re := compileTemplate(template)
	return func(text string) (float64, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return 0, false
		}
		lo, ok := groupValue(re, m, "v")
		if !ok {
			return 0, false
		}
		hi, ok := groupValue(re, m, "max")
		if !ok {
			return 0, false
		}
		return (lo + hi) / 2, true
	}
}

// flag matches a modifier without a searchable number and reports 1.
func flag(pattern string) Extractor {
	re := regexp.MustCompile(`(?i)^` + pattern + `$`)
	return func(text string) (float64, bool) {
		if !re.MatchString(text) {
			return 0, false
		}
		return 1, true
	}
}
