package item

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ringText = `Item Class: Rings
Rarity: Rare
Storm Loop
Sapphire Ring
--------
Requirements:
Level: 40
--------
Item Level: 72
--------
+28% to Lightning Resistance (implicit)
--------
+36% to Lightning Resistance
+23 to Dexterity
+55 to maximum Life
12% increased Rarity of Items found
--------
Corrupted
--------
Note: ~price 5 exalted`

const armourText = `Item Class: Body Armours
Rarity: Rare
Dusk Shell
Expert Sleek Jacket
--------
Quality: +20% (augmented)
Evasion Rating: 543 (augmented)
300 Energy Shield (augmented)
--------
Requirements:
Level: 65
Dex: 86
Int: 86
--------
Sockets: S S
--------
Item Level: 79
--------
+40% to Cold Resistance (rune)
--------
+80 to maximum Energy Shield
80% increased Evasion and Energy Shield
+14% to Fire Resistance
Has a dashing fur collar
--------
Mirrored`

func TestParse_Ring(t *testing.T) {
	p := Parse(ringText)

	assert.Equal(t, "Rings", p.ItemClass)
	assert.Equal(t, "Rare", p.Rarity)
	assert.Equal(t, "Storm Loop", p.Name)
	assert.Equal(t, "Sapphire Ring", p.BaseType)
	assert.Equal(t, []string{"+28% to Lightning Resistance"}, p.ImplicitStats)
	assert.Equal(t, []string{
		"+36% to Lightning Resistance",
		"+23 to Dexterity",
		"+55 to maximum Life",
		"12% increased Rarity of Items found",
	}, p.ExplicitStats)
	assert.Empty(t, p.DescriptionStats)
	assert.Equal(t, ringText, p.RawText)
	assert.True(t, p.Usable())
}

func TestParse_ArmourDescriptionAndSkips(t *testing.T) {
	p := Parse(armourText)

	assert.Equal(t, []string{"Evasion Rating: 543", "300 Energy Shield"}, p.DescriptionStats)
	assert.Empty(t, p.ImplicitStats)
	assert.Equal(t, []string{
		"+80 to maximum Energy Shield",
		"80% increased Evasion and Energy Shield",
		"+14% to Fire Resistance",
	}, p.ExplicitStats)
}

func TestParse_BaseTypeDefaultsToName(t *testing.T) {
	p := Parse("Item Class: Jewels\nRarity: Magic\nSapphire of the Yeti\n--------\nItem Level: 80\n--------\n+10 to Intelligence\n")
	assert.Equal(t, "Sapphire of the Yeti", p.Name)
	assert.Equal(t, p.Name, p.BaseType)
	assert.Equal(t, []string{"+10 to Intelligence"}, p.ExplicitStats)
}

func TestParse_NoteStopsParsing(t *testing.T) {
	text := strings.Replace(ringText, "+23 to Dexterity", "Note: this is mine\n+23 to Dexterity", 1)
	p := Parse(text)
	assert.Equal(t, []string{"+36% to Lightning Resistance"}, p.ExplicitStats)
}

func TestParse_MalformedNeverPanics(t *testing.T) {
	for _, text := range []string{"", "   \n\n", "hello", "--------\n--------\n+5 to Strength", "Rarity: Rare"} {
		p := Parse(text)
		require.NotNil(t, p)
		assert.NotNil(t, p.ExplicitStats)
		assert.NotNil(t, p.ImplicitStats)
	}
	p := Parse("--------\n--------\n+5 to Strength")
	assert.Equal(t, []string{"+5 to Strength"}, p.ExplicitStats)
	assert.False(t, p.Usable())
}

func TestParse_CRLF(t *testing.T) {
	p := Parse(strings.ReplaceAll(ringText, "\n", "\r\n"))
	assert.Equal(t, "Rings", p.ItemClass)
	assert.Len(t, p.ExplicitStats, 4)
}

func TestParse_Idempotent(t *testing.T) {
	for _, text := range []string{ringText, armourText} {
		assert.Equal(t, Parse(text), Parse(text))
	}
}

func TestWithStats(t *testing.T) {
	p := Parse(ringText)
	q := p.WithStats(nil, []string{"+23 to Dexterity"})
	assert.Empty(t, q.ImplicitStats)
	assert.Equal(t, []string{"+23 to Dexterity"}, q.ExplicitStats)
	assert.Len(t, p.ExplicitStats, 4)
	assert.Equal(t, p.ItemClass, q.ItemClass)
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		valid bool
		err   string
	}{
		{"ring", ringText, true, ""},
		{"armour", armourText, true, ""},
		{"minimal", "Item Class: Rings\nRarity: Normal\nIron Ring\n--------", true, ""},
		{"too short", "Item Class: Rings\nRarity: Normal\n--------", false, "too short"},
		{"no class", "Rarity: Normal\nIron Ring\nIron Ring\n--------", false, "Item Class:"},
		{"no rarity", "Item Class: Rings\nIron Ring\nIron Ring\n--------", false, "Rarity:"},
		{"wrong order", "Rarity: Normal\nItem Class: Rings\nIron Ring\n--------", false, "must come before"},
		{"no separator", "Item Class: Rings\nRarity: Normal\nIron Ring\n+5 to Strength", false, "separator"},
		{"empty class", "Item Class:\nRarity: Normal\nIron Ring\n--------", false, "empty"},
		{"leading junk", "hello\nItem Class: Rings\nRarity: Normal\nIron Ring\n--------", false, "start with"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateFormat(tt.text)
			assert.Equal(t, tt.valid, got.IsValid)
			if tt.valid {
				assert.NoError(t, got.Err())
				return
			}
			assert.Contains(t, got.Error, tt.err)
			assert.ErrorIs(t, got.Err(), ErrInvalidFormat)
		})
	}
}
