package cast

import (
	"fmt"
	"strings"
)

// Presets returns the built-in casts.
func Presets() []Definition {
	bottleToShred := EffectDefinition{
		Type: "exchange_on_hit",
		Give: &ExchangeDefinition{Facet: "bottle"},
		Take: &ExchangeDefinition{Facet: "shred"},
	}
	starToDamage := EffectDefinition{
		Type: "exchange_on_hit",
		Give: &ExchangeDefinition{Facet: "star"},
		Take: &ExchangeDefinition{Facet: "damage"},
	}

	return []Definition{
		{
			Name: "cowboy",
			Dice: []string{"red", "white", "black", "black"},
			Characteristics: CharacteristicsDefinition{
				BaseScore:     map[string]int{"damage": 1},
				RequiredSkill: 6,
				SoftArmor:     2,
			},
		},
		{
			Name: "sniper",
			Dice: []string{"red", "white", "green", "green", "blue"},
			Characteristics: CharacteristicsDefinition{
				BaseScore:     map[string]int{"damage": 2},
				RequiredSkill: 9,
				SoftArmor:     5,
				HardArmor:     1,
			},
			Effects: []EffectDefinition{bottleToShred, starToDamage},
		},
		{
			Name: "big guy",
			Dice: []string{"red", "white", "black", "black", "yellow", "green", "green"},
			Characteristics: CharacteristicsDefinition{
				BaseScore:     map[string]int{"damage": 1},
				RequiredSkill: 9,
				SoftArmor:     2,
				HardArmor:     1,
			},
			Effects: []EffectDefinition{
				{Type: "reroll_blank", Die: "black"},
				{Type: "reroll_any_blank"},
				{Type: "luck_for_hit"},
				{Type: "luck_for_miss"},
				{Type: "ignore_armor_on_bottles"},
				{Type: "luck_for_armor"},
				{Type: "luck_for_crit"},
			},
		},
		{
			Name: "result",
			Dice: []string{"red", "white", "black", "black", "yellow", "green", "green"},
			Characteristics: CharacteristicsDefinition{
				BaseScore:     map[string]int{"damage": 1},
				RequiredSkill: 7,
				SoftArmor:     2,
				HardArmor:     1,
			},
		},
	}
}

// Preset returns the built-in cast with the given name (case-insensitive).
func Preset(name string) (Definition, error) {
	for _, def := range Presets() {
		if strings.EqualFold(def.Name, name) {
			return def, nil
		}
	}
	return Definition{}, fmt.Errorf("no preset named %q", name)
}
