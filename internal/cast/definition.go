// Package cast loads named dispositions ("casts") from YAML and turns them into
// attack.Disposition values ready for evaluation.
package cast

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/geniusisme/falldice/internal/attack"
	"github.com/geniusisme/falldice/internal/dice"
)

var (
	// ErrUnknownEffect is returned for an effect type with no registered builder.
	ErrUnknownEffect = errors.New("unknown effect type")

	// ErrInvalidEffect is returned when an effect definition is missing or has bad fields.
	ErrInvalidEffect = errors.New("invalid effect definition")

	// ErrUnnamedCast is returned when a cast has no name.
	ErrUnnamedCast = errors.New("cast must have a name")
)

// CastsConfig represents the structure of a casts YAML file.
type CastsConfig struct {
	Casts []Definition `yaml:"casts" json:"casts" jsonschema:"title=Casts,description=Dispositions to evaluate in file order"`
}

// Definition is one cast as written in YAML.
type Definition struct {
	Name            string                    `yaml:"name" json:"name" jsonschema:"title=Name,minLength=1,required"`
	Dice            []string                  `yaml:"dice" json:"dice" jsonschema:"title=Dice,description=Dice rolled for the attack (white red yellow green black blue or custom)"`
	Characteristics CharacteristicsDefinition `yaml:"characteristics" json:"characteristics"`
	Effects         []EffectDefinition        `yaml:"effects,omitempty" json:"effects,omitempty" jsonschema:"title=Effects,description=Applied in order to every roll"`
}

// CharacteristicsDefinition is the YAML form of attack.Characteristics.
type CharacteristicsDefinition struct {
	BaseScore     map[string]int `yaml:"base_score,omitempty" json:"base_score,omitempty" jsonschema:"description=Dice facet totals added to every roll"`
	RequiredSkill int            `yaml:"required_skill" json:"required_skill" jsonschema:"description=A skill total above this misses"`
	SoftArmor     int            `yaml:"soft_armor" json:"soft_armor" jsonschema:"minimum=0,description=Rolled armor above this breaks"`
	HardArmor     int            `yaml:"hard_armor" json:"hard_armor" jsonschema:"minimum=0"`
}

// EffectDefinition is one effect as written in YAML. Which fields apply depends on Type.
type EffectDefinition struct {
	Type  string              `yaml:"type" json:"type" jsonschema:"enum=exchange_on_hit,enum=ignore_armor_on_bottles,enum=reroll_blank,enum=reroll_any_blank,enum=luck_for_hit,enum=luck_for_miss,enum=luck_for_armor,enum=luck_for_crit,required"`
	Die   string              `yaml:"die,omitempty" json:"die,omitempty" jsonschema:"description=Die whose blank is rerolled (reroll_blank)"`
	Give  *ExchangeDefinition `yaml:"give,omitempty" json:"give,omitempty"`
	Take  *ExchangeDefinition `yaml:"take,omitempty" json:"take,omitempty"`
	Times int                 `yaml:"times,omitempty" json:"times,omitempty" jsonschema:"minimum=0,description=Maximum conversions; 0 means unlimited"`
}

// ExchangeDefinition is one side of a score exchange.
type ExchangeDefinition struct {
	Facet  string `yaml:"facet" json:"facet"`
	Amount int    `yaml:"amount,omitempty" json:"amount,omitempty" jsonschema:"minimum=1,description=Units per conversion; defaults to 1"`
}

// LoadFromYAML loads casts from a YAML file.
func LoadFromYAML(filename string) ([]Definition, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read casts file: %w", err)
	}
	return Parse(data)
}

// Parse parses casts from YAML.
func Parse(data []byte) ([]Definition, error) {
	var config CastsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse casts YAML: %w", err)
	}
	for i, def := range config.Casts {
		if def.Name == "" {
			return nil, fmt.Errorf("cast %d: %w", i, ErrUnnamedCast)
		}
	}
	return config.Casts, nil
}

// Build turns the definition into a Disposition, checking dice against cat.
func (def Definition) Build(cat *dice.Catalogue) (attack.Disposition, error) {
	disp := attack.Disposition{Name: def.Name}

	for _, name := range def.Dice {
		die := dice.Die(name)
		if _, err := cat.Faces(die); err != nil {
			return attack.Disposition{}, fmt.Errorf("cast %s: %w", def.Name, err)
		}
		disp.Dice = append(disp.Dice, die)
	}

	chars, err := def.Characteristics.build()
	if err != nil {
		return attack.Disposition{}, fmt.Errorf("cast %s: %w", def.Name, err)
	}
	disp.Characteristics = chars

	for i, ed := range def.Effects {
		effect, err := buildEffect(ed, cat)
		if err != nil {
			return attack.Disposition{}, fmt.Errorf("cast %s effect %d: %w", def.Name, i, err)
		}
		disp.Effects = append(disp.Effects, effect)
	}
	return disp, nil
}

func (cd CharacteristicsDefinition) build() (attack.Characteristics, error) {
	chars := attack.Characteristics{
		RequiredSkill: cd.RequiredSkill,
		SoftArmor:     cd.SoftArmor,
		HardArmor:     cd.HardArmor,
	}

	// Sorted so error messages are stable.
	names := make([]string, 0, len(cd.BaseScore))
	for name := range cd.BaseScore {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		facet, err := dice.ParseFacet(name)
		if err != nil {
			return attack.Characteristics{}, err
		}
		chars.BaseScore.Add(facet, cd.BaseScore[name])
	}
	return chars, nil
}
