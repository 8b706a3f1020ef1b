package attack

import "github.com/geniusisme/falldice/internal/dice"

// Characteristics are the static parameters of one attack.
type Characteristics struct {
	BaseScore     dice.Scores // added to every roll
	RequiredSkill int         // a skill total above this misses
	SoftArmor     int         // rolled armor above this breaks and mitigates nothing
	HardArmor     int         // flat reduction added to soft armor
}

// ComputeOutput translates a raw dice tally into attack scores. It is the only
// place where dice facets turn into attack facets.
//
// An explicit Miss face always misses and an explicit Hit face always hits;
// otherwise the attack hits when the skill total does not exceed RequiredSkill.
// A miss deals no damage.
func ComputeOutput(chars *Characteristics, roll dice.Scores) Scores {
	roll.Combine(chars.BaseScore)

	miss := roll.Get(dice.Miss) > 0 || roll.Get(dice.Skill) > chars.RequiredSkill
	hit := roll.Get(dice.Hit) > 0 || !miss

	scoredArmor := roll.Get(dice.Armor)
	if scoredArmor > chars.SoftArmor {
		scoredArmor = 0
	}
	shredded := min(roll.Get(dice.Shred), scoredArmor)
	appliedSoft := scoredArmor - shredded
	damage := roll.Get(dice.Damage)
	applied := min(appliedSoft+chars.HardArmor, damage)

	var out Scores
	if hit {
		out.Set(Damage, float64(damage-applied))
		out.Set(Hits, 1)
	}
	out.Set(Crits, float64(roll.Get(dice.Crit)))
	out.Set(Actions, float64(roll.Get(dice.Action)))
	return out
}
