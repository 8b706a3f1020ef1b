// Package balance provides Monte Carlo simulation of attacks, used to
// cross-check the exact expected values computed by attack.Disposition.
package balance

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/geniusisme/falldice/internal/attack"
	"github.com/geniusisme/falldice/internal/dice"
)

// SimulationResult holds aggregated results from many sampled attacks
type SimulationResult struct {
	Simulations int
	Mean        attack.Scores // sample mean of every attack facet
	StdDev      attack.Scores // sample standard deviation of every attack facet
	HitRate     float64       // fraction of attacks that hit
	MaxDamage   float64
}

// StandardError returns the standard error of the mean of facet f.
func (r SimulationResult) StandardError(f attack.Facet) float64 {
	if r.Simulations == 0 {
		return 0
	}
	return r.StdDev.Get(f) / math.Sqrt(float64(r.Simulations))
}

// Simulate rolls the disposition's dice iterations times, resolving each roll
// by picking one branch of every effect at random according to its weight.
func Simulate(d attack.Disposition, cat *dice.Catalogue, iterations int, rng *rand.Rand) (SimulationResult, error) {
	if iterations <= 0 {
		return SimulationResult{}, errors.New("iterations must be positive")
	}

	faces := make([][]*dice.Face, len(d.Dice))
	for i, die := range d.Dice {
		f, err := cat.Faces(die)
		if err != nil {
			return SimulationResult{}, err
		}
		faces[i] = f
	}

	result := SimulationResult{Simulations: iterations}
	var sum, sumSq attack.Scores
	hits := 0
	roll := make([]*dice.Face, len(d.Dice))

	for i := 0; i < iterations; i++ {
		for slot, f := range faces {
			roll[slot] = sampleFace(f, rng)
		}
		scores := resolveOnce(d, roll, rng)

		for _, f := range attack.Facets() {
			v := scores.Get(f)
			sum.Set(f, sum.Get(f)+v)
			sumSq.Set(f, sumSq.Get(f)+v*v)
		}
		if scores.Get(attack.Hits) > 0 {
			hits++
		}
		result.MaxDamage = max(result.MaxDamage, scores.Get(attack.Damage))
	}

	n := float64(iterations)
	for _, f := range attack.Facets() {
		mean := sum.Get(f) / n
		result.Mean.Set(f, mean)
		if iterations > 1 {
			variance := (sumSq.Get(f) - n*mean*mean) / (n - 1)
			result.StdDev.Set(f, math.Sqrt(max(variance, 0)))
		}
	}
	result.HitRate = float64(hits) / n

	return result, nil
}

func resolveOnce(d attack.Disposition, roll []*dice.Face, rng *rand.Rand) attack.Scores {
	c := attack.NewCase(d.Characteristics, roll)
	for _, e := range d.Effects {
		branches := attack.Expand(e, c)
		c = pickBranch(branches, rng).Case
	}
	return c.Scores()
}

func sampleFace(faces []*dice.Face, rng *rand.Rand) *dice.Face {
	x := rng.Float64()
	for _, f := range faces {
		if x < f.Probability {
			return f
		}
		x -= f.Probability
	}
	// Rounding left x just above the last face's share.
	return faces[len(faces)-1]
}

func pickBranch(branches []attack.Branch, rng *rand.Rand) attack.Branch {
	x := rng.Float64()
	for _, b := range branches {
		if x < b.Weight {
			return b
		}
		x -= b.Weight
	}
	return branches[len(branches)-1]
}

// Deviation compares a simulated mean with the exact expected value.
type Deviation struct {
	Facet     attack.Facet
	Exact     float64
	Simulated float64
	Sigmas    float64 // |simulated - exact| in standard errors; 0 when both agree exactly
}

func (d Deviation) String() string {
	return fmt.Sprintf("%s: exact %.4f simulated %.4f (%.1f sigma)", d.Facet, d.Exact, d.Simulated, d.Sigmas)
}

// Compare returns the deviation of every facet of sim from exact.
func Compare(exact attack.Scores, sim SimulationResult) []Deviation {
	deviations := make([]Deviation, 0, len(attack.Facets()))
	for _, f := range attack.Facets() {
		dev := Deviation{Facet: f, Exact: exact.Get(f), Simulated: sim.Mean.Get(f)}
		diff := math.Abs(dev.Simulated - dev.Exact)
		if se := sim.StandardError(f); se > 0 {
			dev.Sigmas = diff / se
		} else if diff > 1e-9 {
			dev.Sigmas = math.Inf(1)
		}
		deviations = append(deviations, dev)
	}
	return deviations
}
