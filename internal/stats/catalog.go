package stats

import "strings"

// The catalog below is scanned top to bottom and the first entry whose
// extractor accepts the text wins. Keep more specific wordings above the
// generic ones they could shadow.

func explicit(filterText string, excludes ...string) Entry {
	return Entry{
		Key:        keyFor(GroupExplicit, filterText),
		FilterText: filterText,
		Group:      GroupExplicit,
		Extract:    single(filterText, excludes...),
	}
}

func explicitRange(filterText string) Entry {
	return Entry{
		Key:        keyFor(GroupExplicit, filterText),
		FilterText: filterText,
		Group:      GroupExplicit,
		Extract:    averaged(filterText),
	}
}

// pseudo entries match the lines synthesised by the combiner.
func pseudo(filterText string) Entry {
	return Entry{
		Key:        keyFor(GroupPseudo, filterText),
		FilterText: filterText,
		Group:      GroupPseudo,
		Extract:    single(filterText),
	}
}

// local builds the item-scoped twin of a global wording. The site labels it
// with a "(Local)" suffix while the item text carries no marker.
func local(wording string, ranged bool) Entry {
	filterText := wording + " (Local)"
	extract := single(wording)
	if ranged {
		extract = averaged(wording)
	}
	return Entry{
		Key:        keyFor(GroupExplicit, filterText),
		FilterText: filterText,
		Group:      GroupExplicit,
		Extract:    extract,
	}
}

func unsupported(key, pattern string) Entry {
	return Entry{
		Key:         "unsupported." + key,
		FilterText:  pattern,
		Group:       GroupExplicit,
		Unsupported: true,
		Extract:     flag(pattern),
	}
}

func keyFor(group Group, filterText string) string {
	return string(group) + "." + strings.ToLower(strings.Join(strings.Fields(filterText), "_"))
}

func pseudoEntries() []Entry {
	return []Entry{
		pseudo("+#% total to Fire Resistance"),
		pseudo("+#% total to Cold Resistance"),
		pseudo("+#% total to Lightning Resistance"),
		pseudo("+#% total to Chaos Resistance"),
		pseudo("+#% total Elemental Resistance"),
		pseudo("+# total to Strength"),
		pseudo("+# total to Dexterity"),
		pseudo("+# total to Intelligence"),
		pseudo("+# total to all Attributes"),
		pseudo("+# total maximum Energy Shield"),
		pseudo("+# total maximum Life"),
		pseudo("+# total maximum Mana"),
	}
}

func attributeEntries() []Entry {
	return []Entry{
		explicit("+# to all Attributes"),
		explicit("+# to Strength and Dexterity"),
		explicit("+# to Strength and Intelligence"),
		explicit("+# to Dexterity and Intelligence"),
		explicit("+# to Strength"),
		explicit("+# to Dexterity"),
		explicit("+# to Intelligence"),
		explicit("#% increased Strength"),
		explicit("#% increased Dexterity"),
		explicit("#% increased Intelligence"),
		explicit("#% increased Attributes"),
		explicit("#% reduced Attribute Requirements"),
	}
}

func lifeAndManaEntries() []Entry {
	return []Entry{
		explicit("+# to maximum Life"),
		explicit("#% increased maximum Life"),
		explicit("+# to maximum Mana"),
		explicit("#% increased maximum Mana"),
		explicit("+# to Spirit"),
		explicit("#% increased Spirit"),
		explicit("# Life Regeneration per second"),
		explicit("#% increased Life Regeneration rate"),
		explicit("#% increased Mana Regeneration Rate"),
		explicit("Gain # Life per Enemy Killed"),
		explicit("Gain # Mana per Enemy Killed"),
		explicit("Gain # Life per Enemy Hit with Attacks"),
		explicit("Leeches #% of Physical Damage as Life"),
		explicit("Leeches #% of Physical Damage as Mana"),
		explicit("#% of Damage taken Recouped as Life"),
		explicit("#% of Damage taken Recouped as Mana"),
		explicit("#% increased Life Recovery from Flasks"),
		explicit("#% increased Mana Recovery from Flasks"),
		explicit("#% of Damage is taken from Mana before Life"),
	}
}

func defenceEntries() []Entry {
	return []Entry{
		explicit("+# to Armour"),
		explicit("+# to Evasion Rating"),
		explicit("+# to maximum Energy Shield"),
		explicit("#% increased Armour and Evasion"),
		explicit("#% increased Armour and Energy Shield"),
		explicit("#% increased Evasion and Energy Shield"),
		explicit("#% increased Armour"),
		explicit("#% increased Evasion Rating"),
		explicit("#% increased maximum Energy Shield"),
		explicit("#% increased Energy Shield Recharge Rate"),
		explicit("#% faster start of Energy Shield Recharge"),
		explicit("+#% to Block chance"),
		explicit("#% increased Block chance"),
		explicit("+# to Stun Threshold"),
		explicit("#% increased Stun Threshold"),
		explicit("#% increased Freeze Threshold"),
		explicit("#% increased Elemental Ailment Threshold"),
		explicit("#% reduced Duration of Ignite, Shock and Chill on You"),
		explicit("+# to Accuracy Rating"),
		explicit("#% increased Accuracy Rating"),
		explicit("#% increased Global Defences"),
		explicit("+#% to Thorns Critical Hit Chance"),
		explicit("# to # Physical Thorns damage"),
	}
}

func resistanceEntries() []Entry {
	return []Entry{
		explicit("+#% to all Elemental Resistances"),
		explicit("+#% to Fire and Cold Resistances"),
		explicit("+#% to Fire and Lightning Resistances"),
		explicit("+#% to Cold and Lightning Resistances"),
		explicit("+#% to Fire and Chaos Resistances"),
		explicit("+#% to Cold and Chaos Resistances"),
		explicit("+#% to Lightning and Chaos Resistances"),
		explicit("+#% to Maximum Fire Resistance"),
		explicit("+#% to Maximum Cold Resistance"),
		explicit("+#% to Maximum Lightning Resistance"),
		explicit("+#% to Maximum Chaos Resistance"),
		explicit("+#% to all Maximum Elemental Resistances"),
		explicit("+#% to Fire Resistance"),
		explicit("+#% to Cold Resistance"),
		explicit("+#% to Lightning Resistance"),
		explicit("+#% to Chaos Resistance"),
	}
}

func attackEntries() []Entry {
	return []Entry{
		explicitRange("Adds # to # Physical Damage to Attacks"),
		explicitRange("Adds # to # Fire Damage to Attacks"),
		explicitRange("Adds # to # Cold Damage to Attacks"),
		explicitRange("Adds # to # Lightning Damage to Attacks"),
		explicitRange("Adds # to # Chaos Damage to Attacks"),
		explicitRange("Adds # to # Physical Damage"),
		explicitRange("Adds # to # Fire Damage"),
		explicitRange("Adds # to # Cold Damage"),
		explicitRange("Adds # to # Lightning Damage"),
		explicitRange("Adds # to # Chaos Damage"),
		explicit("#% increased Attack Speed"),
		explicit("#% increased Physical Damage"),
		explicit("#% increased Melee Damage"),
		explicit("#% increased Projectile Damage"),
		explicit("#% increased Projectile Speed"),
		explicit("#% increased Damage with Bows"),
		explicit("#% increased Damage with Crossbows"),
		explicit("#% increased Damage with Quarterstaves"),
		explicit("#% increased Damage with Maces"),
		explicit("#% increased Damage with Spears"),
		explicit("#% increased Attack Damage"),
		explicit("#% increased Elemental Damage with Attacks"),
		explicit("+#% to Critical Hit Chance"),
		explicit("#% increased Critical Hit Chance for Attacks"),
		explicit("#% increased Critical Damage Bonus for Attack Damage"),
		explicit("#% increased Critical Hit Chance"),
		explicit("#% increased Critical Damage Bonus"),
		explicit("+# to Level of all Melee Skills"),
		explicit("+# to Level of all Projectile Skills"),
		explicit("+# to Level of all Attack Skills"),
		explicit("#% chance to Poison on Hit"),
		explicit("#% chance to cause Bleeding on Hit"),
		explicit("#% increased Stun Buildup"),
		explicit("Causes #% increased Stun Buildup"),
		explicit("Gain #% of Damage as Extra Fire Damage"),
		explicit("Gain #% of Damage as Extra Cold Damage"),
		explicit("Gain #% of Damage as Extra Lightning Damage"),
		explicit("Gain #% of Damage as Extra Chaos Damage"),
		explicit("+# to maximum number of Summoned Totems"),
		explicit("Bow Attacks fire # additional Arrows"),
		explicit("Loads # additional bolt"),
		explicit("#% increased Reload Speed"),
	}
}

func casterEntries() []Entry {
	return []Entry{
		explicit("+# to Level of all Spell Skills"),
		explicit("+# to Level of all Fire Spell Skills"),
		explicit("+# to Level of all Cold Spell Skills"),
		explicit("+# to Level of all Lightning Spell Skills"),
		explicit("+# to Level of all Chaos Spell Skills"),
		explicit("+# to Level of all Physical Spell Skills"),
		explicit("+# to Level of all Minion Skills"),
		explicit("#% increased Spell Damage"),
		explicit("#% increased Cast Speed"),
		explicit("#% increased Critical Hit Chance for Spells"),
		explicit("#% increased Critical Spell Damage Bonus"),
		explicit("#% increased Fire Damage"),
		explicit("#% increased Cold Damage"),
		explicit("#% increased Lightning Damage"),
		explicit("#% increased Chaos Damage"),
		explicit("#% increased Elemental Damage"),
		explicit("#% increased Damage over Time"),
		explicit("#% increased chance to Ignite"),
		explicit("#% increased chance to Shock"),
		explicit("#% increased Freeze Buildup"),
		explicit("#% increased Flammability Magnitude"),
		explicit("Damage Penetrates #% Fire Resistance"),
		explicit("Damage Penetrates #% Cold Resistance"),
		explicit("Damage Penetrates #% Lightning Resistance"),
		explicit("Damage Penetrates #% Elemental Resistances"),
		explicit("Minions deal #% increased Damage"),
		explicit("Minions have #% increased maximum Life"),
		explicit("Minions have #% increased Attack and Cast Speed"),
		explicit("Minions have +#% to all Elemental Resistances"),
		explicit("#% increased Mana Cost Efficiency"),
		explicit("#% increased Energy Shield from Equipped Focus"),
		explicit("Invocated Spells have #% chance to consume half as much Energy"),
		// Generic damage last: anything more specific must have matched above.
		explicit("#% increased Damage", "with Bows", "with Crossbows", "with Spells", "with Attacks", "over Time"),
	}
}

func utilityEntries() []Entry {
	return []Entry{
		explicit("#% increased Movement Speed"),
		explicit("#% increased Rarity of Items found"),
		explicit("#% increased Light Radius"),
		explicit("#% increased Skill Effect Duration"),
		explicit("#% increased Cooldown Recovery Rate"),
		explicit("#% increased Area of Effect"),
		explicit("#% increased Flask Charges gained"),
		explicit("#% increased Flask Effect Duration"),
		explicit("#% increased Charm Charges gained"),
		explicit("#% increased Charm Effect Duration"),
		explicit("+# Charm Slot"),
		explicit("#% increased Amount Recovered"),
		explicit("#% increased Recovery rate"),
		explicit("#% increased Charges"),
		explicit("#% reduced Charges per use"),
		explicit("#% increased Experience gain"),
		explicit("#% increased Presence Area of Effect"),
		explicit("#% increased effect of Archon Buffs on you"),
		explicit("Allies in your Presence deal #% increased Damage"),
		explicit("Allies in your Presence have #% increased Attack Speed"),
		explicit("Allies in your Presence have +#% to all Elemental Resistances"),
		explicit("#% increased Waystones found in Area"),
		explicit("#% increased Quantity of Items found in this Area"),
		explicit("#% increased Rarity of Items found in this Area"),
		explicit("#% increased Pack size"),
		explicit("Area contains #% increased number of Magic Monsters"),
		explicit("Area contains #% increased number of Rare Monsters"),
	}
}

func unsupportedEntries() []Entry {
	return []Entry{
		unsupported("allocates", `Allocates .+`),
		unsupported("socketed_rune", `.+ \(rune\)`),
		unsupported("unique_granted_skill", `Grants Skill: .+`),
		unsupported("cannot_be", `(?:You )?Cannot be .+`),
	}
}

// DefaultEntries is the built-in catalog in resolution order.
func DefaultEntries() []Entry {
	var out []Entry
	for _, part := range [][]Entry{
		pseudoEntries(),
		resistanceEntries(),
		attributeEntries(),
		lifeAndManaEntries(),
		defenceEntries(),
		attackEntries(),
		casterEntries(),
		utilityEntries(),
		unsupportedEntries(),
	} {
		out = append(out, part...)
	}
	return out
}
