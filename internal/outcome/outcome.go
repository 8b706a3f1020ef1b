// Package outcome provides fixed-size score vectors keyed by a closed facet set,
// and probability-tagged bundles of them.
package outcome

// MaxFacets is the largest facet set a Scores vector can hold.
const MaxFacets = 16

// Facet is implemented by the closed facet enumerations of the dice and attack packages.
type Facet interface {
	~uint8
	String() string
}

// Number is the value type a Scores vector can hold.
type Number interface {
	~int | ~float64
}

// Scores maps every facet of F to a value. Facets never set are zero.
// Scores is an array, so assignment copies it.
type Scores[F Facet, V Number] [MaxFacets]V

// Entry pairs a facet with a value, used to build Scores literals.
type Entry[F Facet, V Number] struct {
	Facet F
	Value V
}

// NewScores builds a Scores vector from the given entries. Repeated facets add up.
func NewScores[F Facet, V Number](entries ...Entry[F, V]) Scores[F, V] {
	var s Scores[F, V]
	for _, e := range entries {
		s.Add(e.Facet, e.Value)
	}
	return s
}

// Get returns the value of a facet.
func (s Scores[F, V]) Get(f F) V {
	return s[f]
}

// Set overwrites the value of a facet.
func (s *Scores[F, V]) Set(f F, v V) {
	(*s)[f] = v
}

// Add adds v to the value of a facet.
func (s *Scores[F, V]) Add(f F, v V) {
	(*s)[f] += v
}

// Combine adds other into s componentwise.
func (s *Scores[F, V]) Combine(other Scores[F, V]) {
	for i := range s {
		(*s)[i] += other[i]
	}
}

// AddWeighted adds other scaled by weight into s componentwise.
func AddWeighted[F Facet](s *Scores[F, float64], other Scores[F, float64], weight float64) {
	for i := range s {
		(*s)[i] += other[i] * weight
	}
}

// Outcome is a scores vector that occurs with the given probability mass.
type Outcome[F Facet, V Number] struct {
	Probability float64
	Scores      Scores[F, V]
}

// New returns an Outcome with probability 1 and zero scores.
func New[F Facet, V Number]() Outcome[F, V] {
	return Outcome[F, V]{Probability: 1}
}
