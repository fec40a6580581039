// Package item turns the text the game client puts on the clipboard into a
// structured record.
package item

import (
	"regexp"
	"strings"
)

// ParsedItem is the structured form of a pasted item. It is built once per
// Parse call and never mutated afterwards.
type ParsedItem struct {
	RawText          string   `json:"raw_text"`
	Name             string   `json:"name"`
	BaseType         string   `json:"base_type"`
	Rarity           string   `json:"rarity"`
	ItemClass        string   `json:"item_class"`
	ExplicitStats    []string `json:"explicit_stats"`
	ImplicitStats    []string `json:"implicit_stats"`
	DescriptionStats []string `json:"description_stats"`
}

// Usable reports whether the record carries enough structure to drive a search.
func (p *ParsedItem) Usable() bool {
	return p != nil && p.ItemClass != ""
}

// WithStats returns a copy of the item restricted to the given modifier lists.
// Used when the user deselects some stats before searching.
func (p *ParsedItem) WithStats(implicitStats, explicitStats []string) *ParsedItem {
	out := *p
	out.ImplicitStats = append([]string(nil), implicitStats...)
	out.ExplicitStats = append([]string(nil), explicitStats...)
	out.DescriptionStats = append([]string(nil), p.DescriptionStats...)
	return &out
}

const (
	labelItemClass = "Item Class:"
	labelRarity    = "Rarity:"
	notePrefix     = "Note:"
	separator      = "--------"

	suffixImplicit  = "(implicit)"
	suffixAugmented = "(augmented)"
	suffixRune      = "(rune)"
)

// baseProperties mark description lines in the property section.
var baseProperties = []string{
	"armour",
	"evasion rating",
	"energy shield",
	"physical damage",
	"elemental damage",
	"fire damage",
	"cold damage",
	"lightning damage",
	"chaos damage",
	"critical hit chance",
	"critical strike chance",
	"attacks per second",
	"block chance",
	"reload time",
	"spirit",
}

// nonModifierPrefixes are lines after the property section that never hold
// a searchable modifier.
var nonModifierPrefixes = []string{
	"requirements",
	"requires",
	"level:",
	"str:",
	"dex:",
	"int:",
	"sockets:",
	"item level:",
	"grants skill:",
	"quality:",
	"stack size:",
	"corrupted",
	"mirrored",
	"unidentified",
	"unmodifiable",
}

var modifierValue = regexp.MustCompile(`[+-]?\d`)

// Lines splits text into trimmed, non-empty lines.
func Lines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Parse never fails: markers that are absent leave their fields empty.
// Use ValidateFormat first to decide whether the result can be trusted.
func Parse(text string) *ParsedItem {
	item := &ParsedItem{
		RawText:          text,
		ExplicitStats:    []string{},
		ImplicitStats:    []string{},
		DescriptionStats: []string{},
	}

	section := 0
	headerLines := 0

	for _, line := range Lines(text) {
		if strings.HasPrefix(line, notePrefix) {
			break
		}
		if strings.HasPrefix(line, separator) {
			section++
			continue
		}
		if v, ok := cutLabel(line, labelItemClass); ok {
			item.ItemClass = v
			continue
		}
		if v, ok := cutLabel(line, labelRarity); ok {
			item.Rarity = v
			continue
		}

		switch {
		case section == 0:
			switch headerLines {
			case 0:
				item.Name = line
			case 1:
				item.BaseType = line
			}
			headerLines++

		case section == 1:
			if isBaseProperty(line) {
				item.DescriptionStats = append(item.DescriptionStats, trimSuffixFold(line, suffixAugmented))
			}

		default:
			if !isModifier(line) {
				continue
			}
			if hasSuffixFold(line, suffixImplicit) {
				item.ImplicitStats = append(item.ImplicitStats, trimSuffixFold(line, suffixImplicit))
				continue
			}
			item.ExplicitStats = append(item.ExplicitStats, line)
		}
	}

	if item.BaseType == "" {
		item.BaseType = item.Name
	}
	return item
}

func cutLabel(line, label string) (string, bool) {
	if !strings.HasPrefix(line, label) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, label)), true
}

func isBaseProperty(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range baseProperties {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isModifier(line string) bool {
	lower := strings.ToLower(line)
	for _, p := range nonModifierPrefixes {
		if strings.HasPrefix(lower, p) {
			return false
		}
	}
	if strings.HasSuffix(lower, suffixRune) {
		return false
	}
	return modifierValue.MatchString(line) || strings.Contains(line, "%")
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}

func trimSuffixFold(s, suffix string) string {
	if !hasSuffixFold(s, suffix) {
		return s
	}
	return strings.TrimSpace(s[:len(s)-len(suffix)])
}
