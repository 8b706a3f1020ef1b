// Package effects holds the standard effects applied to rolled attacks.
package effects

import (
	"errors"
	"fmt"

	"github.com/geniusisme/falldice/internal/attack"
	"github.com/geniusisme/falldice/internal/dice"
)

// ErrNotPositive is returned when a Positive is built from a value below 1.
var ErrNotPositive = errors.New("value must be positive")

// Positive is a strictly positive integer. Its zero value is 1.
type Positive struct {
	minusOne int
}

// NewPositive returns n as a Positive.
func NewPositive(n int) (Positive, error) {
	if n < 1 {
		return Positive{}, fmt.Errorf("%w: %d", ErrNotPositive, n)
	}
	return Positive{minusOne: n - 1}, nil
}

// MustPositive is like NewPositive but panics on values below 1.
func MustPositive(n int) Positive {
	p, err := NewPositive(n)
	if err != nil {
		panic(err)
	}
	return p
}

// Int returns the value.
func (p Positive) Int() int {
	return p.minusOne + 1
}

// Exchange is one side of a score exchange: Amount units of Facet.
type Exchange struct {
	Facet  dice.Facet
	Amount Positive
}

// ExchangeScoreOnHit converts Give into Take when the attack hits. Each
// conversion spends Give.Amount and gains Take.Amount; as many conversions as
// the available score allows are made, up to Times when set.
type ExchangeScoreOnHit struct {
	Give  Exchange
	Take  Exchange
	Times *Positive
}

func (e ExchangeScoreOnHit) String() string {
	return fmt.Sprintf("exchange_on_hit(%s->%s)", e.Give.Facet, e.Take.Facet)
}

func (e ExchangeScoreOnHit) Apply(c *attack.Case, y *attack.Yield) attack.Done {
	if c.Result(attack.Hits) <= 0 {
		return y.Final(1, c)
	}

	times := c.Score(e.Give.Facet) / e.Give.Amount.Int()
	if e.Times != nil {
		times = min(times, e.Times.Int())
	}
	if times > 0 {
		c.Update(func(u *attack.Updater) {
			u.AdjustScore(e.Give.Facet, -times*e.Give.Amount.Int())
			u.AdjustScore(e.Take.Facet, times*e.Take.Amount.Int())
		})
	}
	return y.Final(1, c)
}

// IgnoreArmorOnBottles spends one Bottle on a hit to shred all rolled soft armor
// that would otherwise mitigate damage.
type IgnoreArmorOnBottles struct{}

func (IgnoreArmorOnBottles) String() string { return "ignore_armor_on_bottles" }

func (IgnoreArmorOnBottles) Apply(c *attack.Case, y *attack.Yield) attack.Done {
	if c.Result(attack.Hits) <= 0 || c.Score(dice.Bottle) < 1 {
		return y.Final(1, c)
	}

	armor := c.Score(dice.Armor)
	shred := c.Score(dice.Shred)
	if armor <= 0 || armor > c.Characteristics().SoftArmor || shred >= armor {
		return y.Final(1, c)
	}

	c.Update(func(u *attack.Updater) {
		u.AdjustScore(dice.Bottle, -1)
		u.AdjustScore(dice.Shred, armor-shred)
	})
	return y.Final(1, c)
}
