package effects

import (
	"fmt"

	"github.com/geniusisme/falldice/internal/attack"
	"github.com/geniusisme/falldice/internal/dice"
)

// RerollBlank rerolls the first blank face of Die found in the roll, or the first
// blank of any die when Die is empty. The reroll is expressed as one branch per
// face of that die, weighted by the face's probability. A nil Catalogue means
// the built-in dice.
type RerollBlank struct {
	Die       dice.Die
	Catalogue *dice.Catalogue
}

// NewRerollBlank returns a RerollBlank looking faces up in cat.
func NewRerollBlank(cat *dice.Catalogue, die dice.Die) RerollBlank {
	return RerollBlank{Die: die, Catalogue: cat}
}

func (r RerollBlank) String() string {
	if r.Die == "" {
		return "reroll_any_blank"
	}
	return fmt.Sprintf("reroll_blank(%s)", r.Die)
}

func (r RerollBlank) Apply(c *attack.Case, y *attack.Yield) attack.Done {
	slot := r.findBlank(c.Roll())
	if slot < 0 {
		return y.Final(1, c)
	}
	blank := c.Roll()[slot]
	cat := r.Catalogue
	if cat == nil {
		cat = dice.Default()
	}
	faces, err := cat.Faces(blank.Die)
	if err != nil {
		return y.Final(1, c)
	}

	for _, f := range faces {
		if f.Index == blank.Index {
			continue
		}
		c.Update(func(u *attack.Updater) { u.SetFace(slot, f) })
		y.Branch(f.Probability, c)
	}

	// Rerolling into the blank again is the last branch.
	c.Update(func(u *attack.Updater) { u.SetFace(slot, blank) })
	return y.Final(blank.Probability, c)
}

func (r RerollBlank) findBlank(roll []*dice.Face) int {
	for i, f := range roll {
		if f.IsBlank() && (r.Die == "" || f.Die == r.Die) {
			return i
		}
	}
	return -1
}
