package stats

import (
	"regexp"
	"strconv"
	"strings"
)

// CombinablePattern describes a modifier family whose implicit and explicit
// instances can be summed into one pseudo-total line.
type CombinablePattern struct {
	Name    string
	Pattern *regexp.Regexp
	// Element names the attribute the match contributes to, e.g. "Lightning".
	Element func(match []string) string
	Value   func(match []string) (float64, bool)
	// Build renders the pseudo-total line for an element.
	Build func(element string, total float64) string
}

func valueAt(idx int) func([]string) (float64, bool) {
	return func(m []string) (float64, bool) {
		if idx >= len(m) {
			return 0, false
		}
		v, err := strconv.ParseFloat(strings.TrimPrefix(m[idx], "+"), 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
}

func elementAt(idx int) func([]string) string {
	return func(m []string) string {
		if idx >= len(m) {
			return ""
		}
		return m[idx]
	}
}

func signed(total float64) string {
	s := FormatValue(total)
	if total >= 0 {
		return "+" + s
	}
	return s
}

// DefaultCombinablePatterns are the four mergeable families.
func DefaultCombinablePatterns() []CombinablePattern {
	return []CombinablePattern{
		{
			Name:    "elemental_resistance",
			Pattern: regexp.MustCompile(`(?i)^([+-]?\d+(?:\.\d+)?)% to (Fire|Cold|Lightning) Resistance$`),
			Element: elementAt(2),
			Value:   valueAt(1),
			Build: func(element string, total float64) string {
				return signed(total) + "% total to " + element + " Resistance"
			},
		},
		{
			Name:    "core_attribute",
			Pattern: regexp.MustCompile(`(?i)^([+-]?\d+) to (Strength|Dexterity|Intelligence)$`),
			Element: elementAt(2),
			Value:   valueAt(1),
			Build: func(element string, total float64) string {
				return signed(total) + " total to " + element
			},
		},
		{
			Name:    "energy_shield",
			Pattern: regexp.MustCompile(`(?i)^([+-]?\d+) to maximum (Energy Shield)$`),
			Element: elementAt(2),
			Value:   valueAt(1),
			Build: func(element string, total float64) string {
				return signed(total) + " total maximum " + element
			},
		},
		{
			Name:    "all_attributes",
			Pattern: regexp.MustCompile(`(?i)^([+-]?\d+) to (all Attributes)$`),
			Element: elementAt(2),
			Value:   valueAt(1),
			Build: func(element string, total float64) string {
				return signed(total) + " total to " + element
			},
		},
	}
}

type combined struct {
	pattern *CombinablePattern
	element string
	total   float64
	sources []string
}

// Combine merges implicit and explicit instances of the same combinable
// element into one pseudo-total line. Lines that belong to no family come
// first in scan order, then one line per combinable element: the synthesised
// total when two or more lines contributed, the original line otherwise.
// The first contributor's casing names the element.
func Combine(patterns []CombinablePattern, implicitStats, explicitStats []string) []string {
	inputs := make([]string, 0, len(implicitStats)+len(explicitStats))
	inputs = append(inputs, implicitStats...)
	inputs = append(inputs, explicitStats...)

	var (
		passthrough []string
		order       []string
		groups      = make(map[string]*combined)
	)

	for _, raw := range inputs {
		line := CleanLine(raw)
		if line == "" {
			continue
		}

		matched := false
		for i := range patterns {
			p := &patterns[i]
			m := p.Pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			value, ok := p.Value(m)
			if !ok {
				continue
			}
			element := p.Element(m)
			key := p.Name + ":" + strings.ToLower(element)

			g, exists := groups[key]
			if !exists {
				g = &combined{pattern: p, element: element}
				groups[key] = g
				order = append(order, key)
			}
			g.total += value
			g.sources = append(g.sources, line)
			matched = true
			break
		}

		if !matched {
			passthrough = append(passthrough, line)
		}
	}

	out := passthrough
	for _, key := range order {
		g := groups[key]
		if len(g.sources) > 1 {
			out = append(out, g.pattern.Build(g.element, g.total))
			continue
		}
		out = append(out, g.sources[0])
	}
	return out
}

var spaceRun = regexp.MustCompile(`\s+`)

// CleanLine strips an "(implicit)" suffix and collapses whitespace.
func CleanLine(line string) string {
	line = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	if strings.HasSuffix(strings.ToLower(line), "(implicit)") {
		line = strings.TrimSpace(line[:len(line)-len("(implicit)")])
	}
	return line
}
