package attack

import (
	"slices"

	"github.com/geniusisme/falldice/internal/dice"
)

// Case is one concrete roll being resolved, together with the characteristics it
// is resolved against and the scores derived from both.
//
// Characteristics and the rolled faces are shared with sibling branches until
// the first mutation, which copies only the part being changed. Derived scores
// are recomputed after every Update, so reads never see stale values.
type Case struct {
	chars     *Characteristics
	roll      []*dice.Face
	ownsChars bool
	ownsRoll  bool

	tally  dice.Scores // raw roll, without base scores
	output Scores
}

// NewCase returns a Case for the given characteristics and roll. Neither argument
// is modified by later updates.
func NewCase(chars Characteristics, roll []*dice.Face) Case {
	_, tally := dice.Tally(roll)
	return newCase(&chars, roll, tally)
}

func newCase(chars *Characteristics, roll []*dice.Face, tally dice.Scores) Case {
	c := Case{chars: chars, roll: roll, tally: tally}
	c.output = ComputeOutput(c.chars, c.tally)
	return c
}

// Result returns a derived attack score.
func (c *Case) Result(f Facet) float64 {
	return c.output.Get(f)
}

// Scores returns all derived attack scores.
func (c *Case) Scores() Scores {
	return c.output
}

// Score returns the raw roll total of a dice facet, base score included.
func (c *Case) Score(f dice.Facet) int {
	return c.tally.Get(f) + c.chars.BaseScore.Get(f)
}

// Roll returns the rolled faces. The slice must not be modified; use Update.
func (c *Case) Roll() []*dice.Face {
	return c.roll
}

// Characteristics returns a copy of the characteristics in effect for this Case.
func (c *Case) Characteristics() Characteristics {
	return *c.chars
}

// Update lets fn mutate the Case through an Updater, then recomputes the derived
// scores. The Updater must not be kept after fn returns.
func (c *Case) Update(fn func(u *Updater)) {
	u := Updater{c: c}
	fn(&u)
	u.c = nil
	if u.rollChanged {
		_, c.tally = dice.Tally(c.roll)
	}
	c.output = ComputeOutput(c.chars, c.tally)
}

// fork returns a copy sharing all data with c. Both copies lose ownership, so
// whichever mutates first makes its own copy.
func (c *Case) fork() Case {
	c.ownsChars = false
	c.ownsRoll = false
	return *c
}

func (c *Case) mutableChars() *Characteristics {
	if !c.ownsChars {
		chars := *c.chars
		c.chars = &chars
		c.ownsChars = true
	}
	return c.chars
}

func (c *Case) mutableRoll() []*dice.Face {
	if !c.ownsRoll {
		c.roll = slices.Clone(c.roll)
		c.ownsRoll = true
	}
	return c.roll
}

// Updater is the only way to mutate a Case.
type Updater struct {
	c           *Case
	rollChanged bool
}

// AdjustScore adds delta to one facet of the base score.
func (u *Updater) AdjustScore(f dice.Facet, delta int) {
	u.c.mutableChars().BaseScore.Add(f, delta)
}

// SetFace replaces the face rolled in one slot.
func (u *Updater) SetFace(slot int, face *dice.Face) {
	u.c.mutableRoll()[slot] = face
	u.rollChanged = true
}
