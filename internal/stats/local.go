package stats

import "strings"

// ClassSet is a case-insensitive set of item classes.
type ClassSet map[string]struct{}

// NewClassSet builds a set from item class names.
func NewClassSet(classes ...string) ClassSet {
	s := make(ClassSet, len(classes))
	for _, c := range classes {
		s[normalizeClass(c)] = struct{}{}
	}
	return s
}

// Has reports whether class is in the set.
func (s ClassSet) Has(class string) bool {
	_, ok := s[normalizeClass(class)]
	return ok
}

// Union returns a new set holding the members of both sets.
func (s ClassSet) Union(other ClassSet) ClassSet {
	out := make(ClassSet, len(s)+len(other))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

func normalizeClass(class string) string {
	return strings.ToLower(strings.Join(strings.Fields(class), " "))
}

var (
	// WeaponClasses scope attack speed, accuracy, physical damage and crit to the weapon.
	WeaponClasses = NewClassSet(
		"Swords", "One Hand Swords", "Two Hand Swords",
		"Axes", "One Hand Axes", "Two Hand Axes",
		"Maces", "One Hand Maces", "Two Hand Maces",
		"Claws", "Daggers", "Spears", "Flails", "Quarterstaves",
		"Bows", "Crossbows", "Wands", "Staves", "Sceptres",
		"Warstaves", "Rune Daggers",
	)

	// ShieldClasses scope block chance to the shield.
	ShieldClasses = NewClassSet("Shields", "Bucklers")

	// ArmourClasses scope flat and percentage defences to the armour piece.
	ArmourClasses = NewClassSet(
		"Body Armours", "Helmets", "Gloves", "Boots", "Foci",
	).Union(ShieldClasses)
)

// LocalRule is tried before the catalog scan when the item class is in Classes.
type LocalRule struct {
	Entry   Entry
	Classes ClassSet
}

// DefaultLocalRules lists the local variants in priority order.
func DefaultLocalRules() []LocalRule {
	weapon := func(wording string, ranged bool) LocalRule {
		return LocalRule{Entry: local(wording, ranged), Classes: WeaponClasses}
	}
	armour := func(wording string) LocalRule {
		return LocalRule{Entry: local(wording, false), Classes: ArmourClasses}
	}

	return []LocalRule{
		weapon("#% increased Attack Speed", false),
		weapon("+# to Accuracy Rating", false),
		weapon("#% increased Physical Damage", false),
		weapon("+#% to Critical Hit Chance", false),
		weapon("Adds # to # Physical Damage", true),
		weapon("Adds # to # Fire Damage", true),
		weapon("Adds # to # Cold Damage", true),
		weapon("Adds # to # Lightning Damage", true),
		weapon("Adds # to # Chaos Damage", true),

		{Entry: local("#% increased Block chance", false), Classes: ShieldClasses},

		armour("+# to Armour"),
		armour("+# to Evasion Rating"),
		armour("+# to maximum Energy Shield"),
		armour("#% increased Armour and Evasion"),
		armour("#% increased Armour and Energy Shield"),
		armour("#% increased Evasion and Energy Shield"),
		armour("#% increased Armour"),
		armour("#% increased Evasion Rating"),
		armour("#% increased Energy Shield"),
	}
}
