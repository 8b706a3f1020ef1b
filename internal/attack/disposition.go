package attack

import (
	"errors"
	"iter"
	"math"

	"github.com/geniusisme/falldice/internal/cartesian"
	"github.com/geniusisme/falldice/internal/dice"
	"github.com/geniusisme/falldice/internal/outcome"
)

// Disposition is a cast to evaluate: the dice rolled, the attack characteristics
// and the ordered effects applied to every roll.
type Disposition struct {
	Name            string
	Dice            []dice.Die
	Characteristics Characteristics
	Effects         []Effect
}

// ErrTooManyCombinations is returned when a disposition has more dice
// combinations than a caller allows.
var ErrTooManyCombinations = errors.New("too many dice combinations")

// Report is the result of evaluating a Disposition over every dice combination.
type Report struct {
	Scores       Scores  // expected value of every attack facet
	Mass         float64 // total probability enumerated, 1 up to rounding
	Combinations int
}

// Evaluate enumerates every combination of the disposition's dice and returns
// the probability-weighted sum of their resolved scores.
func (d *Disposition) Evaluate(cat *dice.Catalogue) (Report, error) {
	factors := make([]iter.Seq[*dice.Face], len(d.Dice))
	for i, die := range d.Dice {
		seq, err := cat.Seq(die)
		if err != nil {
			return Report{}, err
		}
		factors[i] = seq
	}

	chars := d.Characteristics
	r := newResolver(&chars, d.Effects)

	var report Report
	cartesian.New(factors...).Each(func(roll []*dice.Face) {
		o := r.resolve(roll)
		outcome.AddWeighted(&report.Scores, o.Scores, o.Probability)
		report.Mass += o.Probability
		report.Combinations++
	})
	return report, nil
}

// AverageScores returns the expected value of every attack facet.
func (d *Disposition) AverageScores(cat *dice.Catalogue) (Scores, error) {
	report, err := d.Evaluate(cat)
	if err != nil {
		return Scores{}, err
	}
	return report.Scores, nil
}

// CountCombinations returns how many rolls Evaluate would enumerate without
// enumerating them. The count saturates at math.MaxInt.
func (d *Disposition) CountCombinations(cat *dice.Catalogue) (int, error) {
	n := 1
	for _, die := range d.Dice {
		faces, err := cat.Faces(die)
		if err != nil {
			return 0, err
		}
		k := len(faces)
		switch {
		case k == 0:
			n = 0
		case n > math.MaxInt/k:
			n = math.MaxInt
		default:
			n *= k
		}
	}
	return n, nil
}
