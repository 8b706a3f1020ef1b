package attack

import (
	"errors"
	"fmt"
	"strings"

	"github.com/geniusisme/falldice/internal/outcome"
)

// Facet is one axis of a resolved attack.
type Facet uint8

const (
	Damage Facet = iota
	Hits
	Crits
	Actions
	BrokenLegs

	facetCount
)

// ErrUnknownFacet is returned when a name does not match any attack facet.
var ErrUnknownFacet = errors.New("unknown attack facet")

var facetNames = [facetCount]string{
	Damage:     "damage",
	Hits:       "hits",
	Crits:      "crits",
	Actions:    "actions",
	BrokenLegs: "broken_legs",
}

func (f Facet) String() string {
	if f < facetCount {
		return facetNames[f]
	}
	return fmt.Sprintf("facet(%d)", uint8(f))
}

// Facets returns every attack facet in declaration order.
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

// Scores holds the resolved (possibly expected) value of every attack facet.
type Scores = outcome.Scores[Facet, float64]

// Outcome is a resolved attack with the probability of its dice combination.
type Outcome = outcome.Outcome[Facet, float64]
