// Package attack resolves rolled dice into attack scores.
//
// A Disposition names the dice to roll, the attack Characteristics and an
// ordered list of Effects. Evaluate enumerates every combination of faces; each
// combination becomes a Case whose baseline scores come from ComputeOutput.
// Effects are then applied in order. Each effect may split its Case into
// weighted branches through a Yield, and every branch is carried through the
// remaining effects before the next sibling is visited. A leaf's weight is the
// product of the branch weights along its path, and the leaves' scores are
// summed with those weights.
//
// Branches share characteristics and rolled faces with the Case they were forked
// from until one of them changes something, at which point only the changed part
// is copied.
package attack
