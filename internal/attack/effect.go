package attack

import (
	"fmt"
	"math"
)

// weightTolerance is how far an effect's branch weights may drift from 1.
const weightTolerance = 1e-9

// Effect is a rule applied to a rolled Case that may split it into weighted
// branches before the attack is scored.
//
// Apply reads the Case through its accessors, mutates it only through Update,
// and reports branches on y: zero or more Branch calls followed by exactly one
// Final call, whose return value Apply returns. The weights of all branches
// must sum to 1. Neither c nor y may be kept after Apply returns.
type Effect interface {
	Apply(c *Case, y *Yield) Done
}

// Branch is one weighted continuation produced by an effect.
type Branch struct {
	Weight float64
	Case   Case
}

// Done is returned by Yield.Final and proves an effect closed its branches.
type Done struct {
	y *Yield
}

// Yield collects the branches of one effect invocation.
type Yield struct {
	branches []Branch
	closed   bool
}

// Branch records a non-final branch: a snapshot of c taken now, carried on with
// the given weight. The effect may keep changing c afterwards without affecting
// the snapshot.
func (y *Yield) Branch(weight float64, c *Case) {
	if y.closed {
		panic(&ContractError{Reason: "branch issued after the final branch"})
	}
	y.branches = append(y.branches, Branch{Weight: weight, Case: c.fork()})
}

// Final records the last branch of the invocation and closes the Yield.
func (y *Yield) Final(weight float64, c *Case) Done {
	y.Branch(weight, c)
	y.closed = true
	return Done{y: y}
}

// Branches returns the recorded branches.
func (y *Yield) Branches() []Branch {
	return y.branches
}

func (y *Yield) reset() {
	y.branches = y.branches[:0]
	y.closed = false
}

// check panics unless the invocation of e closed y with weights summing to 1.
func (y *Yield) check(e Effect, done Done) {
	if done.y != y || !y.closed {
		panic(&ContractError{Effect: effectName(e), Reason: "no final branch"})
	}
	sum := 0.0
	for _, b := range y.branches {
		if b.Weight < 0 {
			panic(&ContractError{Effect: effectName(e), Reason: "negative branch weight", Weight: b.Weight})
		}
		sum += b.Weight
	}
	if math.Abs(sum-1) > weightTolerance {
		panic(&ContractError{Effect: effectName(e), Reason: "branch weights do not sum to 1", Weight: sum})
	}
}

// ContractError describes an effect that broke the branching contract. It is
// raised as a panic: a misbehaving effect is a programming error.
type ContractError struct {
	Effect string
	Reason string
	Weight float64
}

func (e *ContractError) Error() string {
	if e.Weight != 0 {
		return fmt.Sprintf("effect %s: %s (weight %g)", e.Effect, e.Reason, e.Weight)
	}
	if e.Effect == "" {
		return "effect: " + e.Reason
	}
	return fmt.Sprintf("effect %s: %s", e.Effect, e.Reason)
}

func effectName(e Effect) string {
	if s, ok := e.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", e)
}

// Expand applies one effect to c and returns its checked branches. The
// caller's Case is left untouched.
func Expand(e Effect, c Case) []Branch {
	// c shares its data with the caller's copy, so it must not own it.
	c = c.fork()
	var y Yield
	done := e.Apply(&c, &y)
	y.check(e, done)
	return y.branches
}
