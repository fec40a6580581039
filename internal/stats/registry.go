package stats

import (
	"fmt"
	"strings"
)

// Catalog is everything a Registry is built from. Order inside Entries and
// Local is resolution priority.
type Catalog struct {
	Entries    []Entry
	Local      []LocalRule
	Combinable []CombinablePattern
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		Entries:    DefaultEntries(),
		Local:      DefaultLocalRules(),
		Combinable: DefaultCombinablePatterns(),
	}
}

// Registry is the read-only lookup surface shared by the parser preview,
// the combiner and the automation engine. It is safe for concurrent use.
type Registry struct {
	entries    []Entry
	local      []LocalRule
	combinable []CombinablePattern
}

// NewRegistry validates a catalog and builds a registry from it.
func NewRegistry(c Catalog) (*Registry, error) {
	r := &Registry{
		entries:    append([]Entry(nil), c.Entries...),
		local:      append([]LocalRule(nil), c.Local...),
		combinable: append([]CombinablePattern(nil), c.Combinable...),
	}
	seen := make(map[string]bool, len(c.Entries)+len(c.Local))

	add := func(e Entry) error {
		if e.Key == "" {
			return fmt.Errorf("entry %q has no key", e.FilterText)
		}
		if e.Extract == nil {
			return fmt.Errorf("entry %s has no extractor", e.Key)
		}
		if !e.Group.Valid() {
			return fmt.Errorf("entry %s has unknown group %q", e.Key, e.Group)
		}
		if seen[e.Key] {
			return fmt.Errorf("duplicate entry key %s", e.Key)
		}
		seen[e.Key] = true
		return nil
	}

	for _, e := range r.entries {
		if err := add(e); err != nil {
			return nil, err
		}
	}
	for _, rule := range r.local {
		if len(rule.Classes) == 0 {
			return nil, fmt.Errorf("local rule %s has no item classes", rule.Entry.Key)
		}
		if err := add(rule.Entry); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustNewRegistry is NewRegistry for catalogs known to be valid.
func MustNewRegistry(c Catalog) *Registry {
	r, err := NewRegistry(c)
	if err != nil {
		panic(fmt.Sprintf("stats: invalid catalog: %v", err))
	}
	return r
}

// DefaultRegistry builds a registry over the built-in catalog.
func DefaultRegistry() *Registry {
	return MustNewRegistry(DefaultCatalog())
}

// Entries returns the scan-order entries.
func (r *Registry) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// LocalRules returns the local-priority rules in order.
func (r *Registry) LocalRules() []LocalRule {
	return append([]LocalRule(nil), r.local...)
}

// Combine merges compatible implicit and explicit modifiers.
func (r *Registry) Combine(implicitStats, explicitStats []string) []string {
	return Combine(r.combinable, implicitStats, explicitStats)
}

// Resolve maps one modifier line to a filter. Local variants whose item
// classes include itemClass are tried first, then the catalog in order; the
// first extractor that accepts the text wins.
func (r *Registry) Resolve(statText, itemClass string) (*Resolution, bool) {
	text, marker := splitMarker(CleanLine(statText))
	if text == "" {
		return nil, false
	}

	if itemClass != "" {
		for _, rule := range r.local {
			if !rule.Classes.Has(itemClass) {
				continue
			}
			if res, ok := resolveWith(rule.Entry, text, statText, marker); ok {
				return res, true
			}
		}
	}

	for _, e := range r.entries {
		if res, ok := resolveWith(e, text, statText, marker); ok {
			return res, true
		}
	}
	return nil, false
}

func resolveWith(e Entry, text, original string, marker Group) (*Resolution, bool) {
	v, ok := e.ExtractValue(text)
	if !ok {
		return nil, false
	}
	if marker != "" && e.Group == GroupExplicit {
		e.Group = marker
	}
	return &Resolution{
		Entry:        e,
		Value:        v,
		OriginalText: original,
		SearchKey:    e.SearchText(),
	}, true
}

var markers = []struct {
	suffix string
	group  Group
}{
	{"(fractured)", GroupFractured},
	{"(desecrated)", GroupDesecrated},
	{"(crafted)", ""},
	{"(enchant)", ""},
}

// splitMarker removes a trailing provenance marker. Fractured and desecrated
// markers select the matching filter group.
func splitMarker(text string) (string, Group) {
	lower := strings.ToLower(text)
	for _, m := range markers {
		if strings.HasSuffix(lower, m.suffix) {
			return strings.TrimSpace(text[:len(text)-len(m.suffix)]), m.group
		}
	}
	return text, ""
}

// Status classifies a modifier line for previews.
type Status string

const (
	StatusMapped      Status = "mapped"
	StatusUnsupported Status = "unsupported"
	StatusUnmapped    Status = "unmapped"
)

// PreviewLine is one combined stat with its resolution outcome.
type PreviewLine struct {
	Text       string      `json:"text"`
	Status     Status      `json:"status"`
	Resolution *Resolution `json:"-"`
	FilterText string      `json:"filter_text,omitempty"`
	Group      Group       `json:"group,omitempty"`
	Value      float64     `json:"value,omitempty"`
}

// Preview resolves every line and reports whether it will be searched,
// is intentionally unsupported, or has no catalog entry.
func (r *Registry) Preview(lines []string, itemClass string) []PreviewLine {
	out := make([]PreviewLine, 0, len(lines))
	for _, line := range lines {
		p := PreviewLine{Text: line, Status: StatusUnmapped}
		if res, ok := r.Resolve(line, itemClass); ok {
			p.Resolution = res
			p.FilterText = res.FilterText
			p.Group = res.Group
			p.Value = res.Value
			p.Status = StatusMapped
			if res.Unsupported {
				p.Status = StatusUnsupported
			}
		}
		out = append(out, p)
	}
	return out
}
