// Package dice holds the face catalogue: the dice types, their faces, and the
// raw scores each face contributes to a roll.
package dice

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Die identifies a physical die type.
type Die string

const (
	White  Die = "white"
	Red    Die = "red"
	Yellow Die = "yellow"
	Green  Die = "green"
	Black  Die = "black"
	Blue   Die = "blue"
)

var (
	// ErrUnknownDie is returned when a die is not in the catalogue.
	ErrUnknownDie = errors.New("unknown die")

	// ErrBadFaceCount is returned when face counts do not add up to the number of sides.
	ErrBadFaceCount = errors.New("face counts must add up to the die's sides")
)

// Face is one side (or group of identical sides) of a die. Faces are immutable
// and shared by every roll of the same die type.
type Face struct {
	Die         Die
	Index       int     // position within the die's face list
	Count       int     // number of physical sides showing this face
	Probability float64 // Count / sides
	Deltas      []Delta
}

// Apply adds the face's deltas to a tally.
func (f *Face) Apply(s *Scores) {
	for _, d := range f.Deltas {
		s.Add(d.Facet, d.Value)
	}
}

// IsBlank reports whether the face is a blank result of its die.
func (f *Face) IsBlank() bool {
	for _, d := range f.Deltas {
		switch d.Facet {
		case BlackBlank, GreenBlank, YellowBlank:
			if d.Value > 0 {
				return true
			}
		}
	}
	return false
}

func (f *Face) String() string {
	parts := make([]string, 0, len(f.Deltas))
	for _, d := range f.Deltas {
		parts = append(parts, fmt.Sprintf("%s=%d", d.Facet, d.Value))
	}
	return fmt.Sprintf("%s#%d(%s)", f.Die, f.Index, strings.Join(parts, ","))
}

// Row describes Count identical sides of a die.
type Row struct {
	Count  int
	Deltas []Delta
}

// Definition describes a die type before it is turned into faces.
type Definition struct {
	Die   Die
	Sides int
	Rows  []Row
}

// Catalogue maps each die type to its ordered faces. It is read-only once built.
type Catalogue struct {
	faces map[Die][]*Face
	order []Die
}

// NewCatalogue builds a catalogue from die definitions. A later definition of the
// same die replaces an earlier one.
func NewCatalogue(defs ...Definition) (*Catalogue, error) {
	c := &Catalogue{faces: make(map[Die][]*Face, len(defs))}
	for _, def := range defs {
		faces, err := buildFaces(def)
		if err != nil {
			return nil, err
		}
		if _, exists := c.faces[def.Die]; !exists {
			c.order = append(c.order, def.Die)
		}
		c.faces[def.Die] = faces
	}
	return c, nil
}

func buildFaces(def Definition) ([]*Face, error) {
	if def.Die == "" {
		return nil, fmt.Errorf("die definition without a name")
	}
	total := 0
	for _, row := range def.Rows {
		if row.Count <= 0 {
			return nil, fmt.Errorf("%w: die %s has a row with count %d", ErrBadFaceCount, def.Die, row.Count)
		}
		total += row.Count
	}
	if def.Sides <= 0 || total != def.Sides {
		return nil, fmt.Errorf("%w: die %s has %d sides but rows count %d", ErrBadFaceCount, def.Die, def.Sides, total)
	}

	faces := make([]*Face, len(def.Rows))
	for i, row := range def.Rows {
		faces[i] = &Face{
			Die:         def.Die,
			Index:       i,
			Count:       row.Count,
			Probability: float64(row.Count) / float64(def.Sides),
			Deltas:      slices.Clone(row.Deltas),
		}
	}
	return faces, nil
}

// Faces returns the faces of a die. The slice must not be modified.
func (c *Catalogue) Faces(die Die) ([]*Face, error) {
	faces, ok := c.faces[die]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDie, die)
	}
	return faces, nil
}

// Seq returns the faces of a die as a sequence.
func (c *Catalogue) Seq(die Die) (iter.Seq[*Face], error) {
	faces, err := c.Faces(die)
	if err != nil {
		return nil, err
	}
	return slices.Values(faces), nil
}

// Dice returns the die types in the order they were defined.
func (c *Catalogue) Dice() []Die {
	return slices.Clone(c.order)
}

// Merge returns a new catalogue with overlay's dice added to (or replacing) c's.
func (c *Catalogue) Merge(overlay *Catalogue) *Catalogue {
	merged := &Catalogue{
		faces: make(map[Die][]*Face, len(c.faces)+len(overlay.faces)),
		order: slices.Clone(c.order),
	}
	for die, faces := range c.faces {
		merged.faces[die] = faces
	}
	for _, die := range overlay.order {
		if _, exists := merged.faces[die]; !exists {
			merged.order = append(merged.order, die)
		}
		merged.faces[die] = overlay.faces[die]
	}
	return merged
}

// Tally folds a combination of faces into a raw dice tally and the probability of
// rolling exactly that combination.
func Tally(faces []*Face) (float64, Scores) {
	probability := 1.0
	var scores Scores
	for _, f := range faces {
		probability *= f.Probability
		f.Apply(&scores)
	}
	return probability, scores
}
