package effects

import (
	"github.com/geniusisme/falldice/internal/attack"
	"github.com/geniusisme/falldice/internal/dice"
)

// luckSkill is how far a lucky break moves the skill total.
const luckSkill = 2

// luck splits c evenly between an adjusted and an unadjusted branch.
func luck(c *attack.Case, y *attack.Yield, facet dice.Facet, delta int) attack.Done {
	c.Update(func(u *attack.Updater) { u.AdjustScore(facet, delta) })
	y.Branch(0.5, c)
	c.Update(func(u *attack.Updater) { u.AdjustScore(facet, -delta) })
	return y.Final(0.5, c)
}

// LuckForHit gives a near miss an even chance to become a hit. Explicit Miss
// faces cannot be saved.
type LuckForHit struct{}

func (LuckForHit) String() string { return "luck_for_hit" }

func (LuckForHit) Apply(c *attack.Case, y *attack.Yield) attack.Done {
	required := c.Characteristics().RequiredSkill
	if c.Result(attack.Hits) == 0 && c.Score(dice.Miss) <= 0 && c.Score(dice.Skill)-luckSkill <= required {
		return luck(c, y, dice.Skill, -luckSkill)
	}
	return y.Final(1, c)
}

// LuckForMiss gives a near hit an even chance to become a miss. Explicit Hit
// faces cannot be turned.
type LuckForMiss struct{}

func (LuckForMiss) String() string { return "luck_for_miss" }

func (LuckForMiss) Apply(c *attack.Case, y *attack.Yield) attack.Done {
	required := c.Characteristics().RequiredSkill
	if c.Result(attack.Hits) > 0 && c.Score(dice.Hit) <= 0 && c.Score(dice.Skill)+luckSkill > required {
		return luck(c, y, dice.Skill, luckSkill)
	}
	return y.Final(1, c)
}

// LuckForArmor gives a damaging hit an even chance to lose one point of damage.
type LuckForArmor struct{}

func (LuckForArmor) String() string { return "luck_for_armor" }

func (LuckForArmor) Apply(c *attack.Case, y *attack.Yield) attack.Done {
	if c.Result(attack.Hits) > 0 && c.Result(attack.Damage) > 0 {
		return luck(c, y, dice.Damage, -1)
	}
	return y.Final(1, c)
}

// LuckForCrit gives a hit an even chance of one extra crit.
type LuckForCrit struct{}

func (LuckForCrit) String() string { return "luck_for_crit" }

func (LuckForCrit) Apply(c *attack.Case, y *attack.Yield) attack.Done {
	if c.Result(attack.Hits) > 0 {
		return luck(c, y, dice.Crit, 1)
	}
	return y.Final(1, c)
}
