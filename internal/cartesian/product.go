// Package cartesian enumerates the Cartesian product of several finite sequences
// without allocating a new slice per combination.
package cartesian

import (
	"iter"
	"slices"
)

// Product walks every combination of its factors in odometer order, factor 0
// varying fastest. The combination buffer is reused between steps.
//
// With no factors the product has exactly one combination, the empty one. If any
// factor is empty the product has no combinations.
type Product[T any] struct {
	sources []iter.Seq[T]
	factors [][]T // each source materialized once
	cursors []int
	current []T
	started bool
	done    bool
}

// New returns a product over the given factors. Factors are not read until the
// first call to Next.
func New[T any](factors ...iter.Seq[T]) *Product[T] {
	return &Product[T]{sources: factors}
}

// Of returns a product over slices.
func Of[T any](factors ...[]T) *Product[T] {
	seqs := make([]iter.Seq[T], len(factors))
	for i, f := range factors {
		seqs[i] = slices.Values(f)
	}
	return New(seqs...)
}

// Next advances to the next combination and reports whether there is one.
func (p *Product[T]) Next() bool {
	if p.done {
		return false
	}
	if !p.started {
		p.started = true
		return p.first()
	}

	for i := range p.factors {
		if p.cursors[i]+1 < len(p.factors[i]) {
			p.cursors[i]++
			p.current[i] = p.factors[i][p.cursors[i]]
			for j := 0; j < i; j++ {
				p.cursors[j] = 0
				p.current[j] = p.factors[j][0]
			}
			return true
		}
	}

	p.done = true
	return false
}

func (p *Product[T]) first() bool {
	p.factors = make([][]T, len(p.sources))
	p.cursors = make([]int, len(p.sources))
	p.current = make([]T, len(p.sources))
	for i, src := range p.sources {
		p.factors[i] = slices.Collect(src)
		if len(p.factors[i]) == 0 {
			p.done = true
			return false
		}
		p.current[i] = p.factors[i][0]
	}
	p.sources = nil
	return true
}

// Combination returns the current combination. The slice is owned by the
// Product and is only valid until the next call to Next.
func (p *Product[T]) Combination() []T {
	return p.current
}

// Each calls fn with every remaining combination.
func (p *Product[T]) Each(fn func([]T)) {
	for p.Next() {
		fn(p.current)
	}
}

// All returns the remaining combinations as a single-use sequence. Each yielded
// slice is only valid until the loop body returns.
func (p *Product[T]) All() iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		for p.Next() {
			if !yield(p.current) {
				return
			}
		}
	}
}
