package outcome

import "testing"

type testFacet uint8

const (
	alpha testFacet = iota
	beta
	gamma
)

func (f testFacet) String() string {
	switch f {
	case alpha:
		return "alpha"
	case beta:
		return "beta"
	case gamma:
		return "gamma"
	default:
		return "unknown"
	}
}

func TestNewScores(t *testing.T) {
	s := NewScores(
		Entry[testFacet, int]{alpha, 2},
		Entry[testFacet, int]{gamma, -1},
		Entry[testFacet, int]{alpha, 3},
	)

	if got := s.Get(alpha); got != 5 {
		t.Errorf("Get(alpha) = %d, want 5", got)
	}
	if got := s.Get(beta); got != 0 {
		t.Errorf("Get(beta) = %d, want 0 for an absent facet", got)
	}
	if got := s.Get(gamma); got != -1 {
		t.Errorf("Get(gamma) = %d, want -1", got)
	}
}

func TestScoresCopyOnAssign(t *testing.T) {
	var a Scores[testFacet, int]
	a.Set(beta, 4)

	b := a
	b.Add(beta, 1)

	if a.Get(beta) != 4 {
		t.Errorf("original changed through a copy: got %d, want 4", a.Get(beta))
	}
	if b.Get(beta) != 5 {
		t.Errorf("copy = %d, want 5", b.Get(beta))
	}
}

func TestCombine(t *testing.T) {
	a := NewScores(Entry[testFacet, int]{alpha, 1}, Entry[testFacet, int]{beta, 2})
	b := NewScores(Entry[testFacet, int]{beta, 3}, Entry[testFacet, int]{gamma, 4})

	a.Combine(b)

	want := map[testFacet]int{alpha: 1, beta: 5, gamma: 4}
	for f, v := range want {
		if got := a.Get(f); got != v {
			t.Errorf("Combine: %s = %d, want %d", f, got, v)
		}
	}
}

func TestAddWeighted(t *testing.T) {
	var acc Scores[testFacet, float64]
	part := NewScores(Entry[testFacet, float64]{alpha, 4}, Entry[testFacet, float64]{gamma, 1})

	AddWeighted(&acc, part, 0.25)
	AddWeighted(&acc, part, 0.75)

	if acc.Get(alpha) != 4 {
		t.Errorf("alpha = %v, want 4", acc.Get(alpha))
	}
	if acc.Get(gamma) != 1 {
		t.Errorf("gamma = %v, want 1", acc.Get(gamma))
	}
}

func TestNewOutcome(t *testing.T) {
	o := New[testFacet, float64]()
	if o.Probability != 1 {
		t.Errorf("Probability = %v, want 1", o.Probability)
	}
	for i, v := range o.Scores {
		if v != 0 {
			t.Errorf("Scores[%d] = %v, want 0", i, v)
		}
	}
}
