package dice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/geniusisme/falldice/internal/outcome"
)

// Facet is one raw scoring axis a die face can contribute to.
type Facet uint8

const (
	Damage Facet = iota
	Shred
	Skill
	Bottle
	Star
	Explosion
	BlackBlank
	GreenBlank
	YellowBlank
	Armor
	Crit
	Action
	Hit
	Miss

	facetCount
)

// ErrUnknownFacet is returned when a facet name does not match any dice facet.
var ErrUnknownFacet = errors.New("unknown dice facet")

var facetNames = [facetCount]string{
	Damage:      "damage",
	Shred:       "shred",
	Skill:       "skill",
	Bottle:      "bottle",
	Star:        "star",
	Explosion:   "explosion",
	BlackBlank:  "black_blank",
	GreenBlank:  "green_blank",
	YellowBlank: "yellow_blank",
	Armor:       "armor",
	Crit:        "crit",
	Action:      "action",
	Hit:         "hit",
	Miss:        "miss",
}

func (f Facet) String() string {
	if f < facetCount {
		return facetNames[f]
	}
	return fmt.Sprintf("facet(%d)", uint8(f))
}

// Facets returns every dice facet in declaration order.
func Facets() []Facet {
	facets := make([]Facet, facetCount)
	for i := range facets {
		facets[i] = Facet(i)
	}
	return facets
}

// ParseFacet converts a facet name (case-insensitive) to a Facet.
func ParseFacet(name string) (Facet, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range facetNames {
		if n == name {
			return Facet(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFacet, name)
}

// Scores is a raw dice tally.
type Scores = outcome.Scores[Facet, int]

// Delta is the contribution of a face to one facet.
type Delta = outcome.Entry[Facet, int]

// NewScores builds a dice tally from deltas.
func NewScores(deltas ...Delta) Scores {
	return outcome.NewScores(deltas...)
}

// Outcome is a dice tally with the probability of rolling it.
type Outcome = outcome.Outcome[Facet, int]
