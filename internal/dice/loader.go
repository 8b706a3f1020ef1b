package dice

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// FaceDefinition is one row of a die in the YAML file.
type FaceDefinition struct {
	Count  int            `yaml:"count"`
	Scores map[string]int `yaml:"scores"`
}

// DieDefinition is one die in the YAML file.
type DieDefinition struct {
	Sides int              `yaml:"sides"`
	Faces []FaceDefinition `yaml:"faces"`
}

// CatalogueConfig represents the structure of a dice YAML file.
type CatalogueConfig struct {
	Dice map[string]DieDefinition `yaml:"dice"`
}

// LoadCatalogueFromYAML loads custom dice from a YAML file.
func LoadCatalogueFromYAML(filename string) (*Catalogue, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read dice file: %w", err)
	}
	return ParseCatalogue(data)
}

// ParseCatalogue parses custom dice from YAML. Dice are ordered by name.
func ParseCatalogue(data []byte) (*Catalogue, error) {
	var config CatalogueConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse dice YAML: %w", err)
	}

	names := make([]string, 0, len(config.Dice))
	for name := range config.Dice {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]Definition, 0, len(names))
	for _, name := range names {
		def, err := config.Dice[name].definition(Die(name))
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return NewCatalogue(defs...)
}

func (dd DieDefinition) definition(die Die) (Definition, error) {
	def := Definition{Die: die, Sides: dd.Sides, Rows: make([]Row, 0, len(dd.Faces))}
	for _, fd := range dd.Faces {
		// Sorted so a face's deltas do not depend on map iteration order.
		keys := make([]string, 0, len(fd.Scores))
		for k := range fd.Scores {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		r := Row{Count: fd.Count}
		for _, k := range keys {
			facet, err := ParseFacet(k)
			if err != nil {
				return Definition{}, fmt.Errorf("die %s: %w", die, err)
			}
			r.Deltas = append(r.Deltas, Delta{Facet: facet, Value: fd.Scores[k]})
		}
		def.Rows = append(def.Rows, r)
	}
	return def, nil
}
