package attack

import (
	"github.com/geniusisme/falldice/internal/dice"
	"github.com/geniusisme/falldice/internal/outcome"
)

// Resolve scores one concrete roll. The returned Outcome carries the probability
// of the roll itself; its scores are the weighted sum over every leaf of the
// effect branch tree, so they are the expectation given this roll.
func Resolve(chars Characteristics, roll []*dice.Face, effects []Effect) Outcome {
	return newResolver(&chars, effects).resolve(roll)
}

// resolver drives an effect chain. Branch buffers are kept per chain depth and
// reused across rolls.
type resolver struct {
	chars   *Characteristics
	effects []Effect
	yields  []Yield
	acc     Scores
}

func newResolver(chars *Characteristics, effects []Effect) *resolver {
	return &resolver{
		chars:   chars,
		effects: effects,
		yields:  make([]Yield, len(effects)),
	}
}

func (r *resolver) resolve(roll []*dice.Face) Outcome {
	probability, tally := dice.Tally(roll)
	c := newCase(r.chars, roll, tally)

	if len(r.effects) == 0 {
		return Outcome{Probability: probability, Scores: c.output}
	}

	r.acc = Scores{}
	r.expand(0, 1, &c)
	return Outcome{Probability: probability, Scores: r.acc}
}

// expand applies effect depth to c and recurses into every branch it yields.
// Every branch is resolved completely before the next sibling is visited.
func (r *resolver) expand(depth int, weight float64, c *Case) {
	if depth == len(r.effects) {
		outcome.AddWeighted(&r.acc, c.output, weight)
		return
	}

	y := &r.yields[depth]
	y.reset()
	e := r.effects[depth]
	y.check(e, e.Apply(c, y))

	for i := range y.branches {
		b := &y.branches[i]
		r.expand(depth+1, weight*b.Weight, &b.Case)
	}
}
