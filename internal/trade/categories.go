package trade

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownItemClass is returned when an item class has no trade category.
var ErrUnknownItemClass = errors.New("unknown item class")

// Category is the option text the category control accepts for one item
// class, plus alternatives tried in order when the first has no exact option.
type Category struct {
	Name      string   `json:"name"`
	Fallbacks []string `json:"fallbacks,omitempty"`
}

// Candidates returns the name followed by the fallbacks.
func (c Category) Candidates() []string {
	return append([]string{c.Name}, c.Fallbacks...)
}

// CategoryTable maps item classes (case-insensitive) to categories.
type CategoryTable struct {
	byClass map[string]Category
}

// NewCategoryTable builds a table from class -> category pairs.
func NewCategoryTable(entries map[string]Category) CategoryTable {
	t := CategoryTable{byClass: make(map[string]Category, len(entries))}
	for class, c := range entries {
		t.byClass[strings.ToLower(strings.TrimSpace(class))] = c
	}
	return t
}

// Lookup returns the category for itemClass or ErrUnknownItemClass.
func (t CategoryTable) Lookup(itemClass string) (Category, error) {
	c, ok := t.byClass[strings.ToLower(strings.TrimSpace(itemClass))]
	if !ok {
		return Category{}, fmt.Errorf("%w: %q", ErrUnknownItemClass, itemClass)
	}
	return c, nil
}

// DefaultCategories covers the equippable PoE2 item classes.
func DefaultCategories() CategoryTable {
	return NewCategoryTable(map[string]Category{
		"Amulets": {Name: "Amulet"},
		"Rings":   {Name: "Ring"},
		"Belts":   {Name: "Belt"},

		"Body Armours": {Name: "Body Armour", Fallbacks: []string{"Armour"}},
		"Helmets":      {Name: "Helmet", Fallbacks: []string{"Armour"}},
		"Gloves":       {Name: "Gloves", Fallbacks: []string{"Armour"}},
		"Boots":        {Name: "Boots", Fallbacks: []string{"Armour"}},
		"Shields":      {Name: "Shield", Fallbacks: []string{"Armour"}},
		"Bucklers":     {Name: "Buckler", Fallbacks: []string{"Shield", "Armour"}},
		"Foci":         {Name: "Focus", Fallbacks: []string{"Armour"}},
		"Quivers":      {Name: "Quiver"},

		"Claws":               {Name: "Claw", Fallbacks: []string{"One-Handed Weapon", "Weapon"}},
		"Daggers":             {Name: "Dagger", Fallbacks: []string{"One-Handed Weapon", "Weapon"}},
		"Wands":               {Name: "Wand", Fallbacks: []string{"One-Handed Weapon", "Weapon"}},
		"One Hand Swords":     {Name: "One-Handed Sword", Fallbacks: []string{"One-Handed Weapon", "Weapon"}},
		"One Hand Axes":       {Name: "One-Handed Axe", Fallbacks: []string{"One-Handed Weapon", "Weapon"}},
		"One Hand Maces":      {Name: "One-Handed Mace", Fallbacks: []string{"One-Handed Weapon", "Weapon"}},
		"Sceptres":            {Name: "Sceptre", Fallbacks: []string{"One-Handed Weapon", "Weapon"}},
		"Spears":              {Name: "Spear", Fallbacks: []string{"One-Handed Weapon", "Weapon"}},
		"Flails":              {Name: "Flail", Fallbacks: []string{"One-Handed Weapon", "Weapon"}},
		"Bows":                {Name: "Bow", Fallbacks: []string{"Two-Handed Weapon", "Weapon"}},
		"Staves":              {Name: "Staff", Fallbacks: []string{"Two-Handed Weapon", "Weapon"}},
		"Two Hand Swords":     {Name: "Two-Handed Sword", Fallbacks: []string{"Two-Handed Weapon", "Weapon"}},
		"Two Hand Axes":       {Name: "Two-Handed Axe", Fallbacks: []string{"Two-Handed Weapon", "Weapon"}},
		"Two Hand Maces":      {Name: "Two-Handed Mace", Fallbacks: []string{"Two-Handed Weapon", "Weapon"}},
		"Quarterstaves":       {Name: "Quarterstaff", Fallbacks: []string{"Two-Handed Weapon", "Weapon"}},
		"Crossbows":           {Name: "Crossbow", Fallbacks: []string{"Two-Handed Weapon", "Weapon"}},
		"Traps":               {Name: "Trap", Fallbacks: []string{"Weapon"}},
		"Jewels":              {Name: "Jewel"},
		"Charms":              {Name: "Charm", Fallbacks: []string{"Flask"}},
		"Life Flasks":         {Name: "Life Flask", Fallbacks: []string{"Flask"}},
		"Mana Flasks":         {Name: "Mana Flask", Fallbacks: []string{"Flask"}},
		"Relics":              {Name: "Relic"},
		"Waystones":           {Name: "Waystone"},
		"Tablet":              {Name: "Tablet"},
		"Expedition Logbooks": {Name: "Logbook"},
	})
}
