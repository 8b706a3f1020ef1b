package cast

import (
	"fmt"
	"sort"

	"github.com/geniusisme/falldice/internal/attack"
	"github.com/geniusisme/falldice/internal/dice"
	"github.com/geniusisme/falldice/internal/effects"
)

type effectBuilder func(def EffectDefinition, cat *dice.Catalogue) (attack.Effect, error)

var effectBuilders = map[string]effectBuilder{
	"exchange_on_hit":         buildExchange,
	"ignore_armor_on_bottles": constant(effects.IgnoreArmorOnBottles{}),
	"reroll_blank":            buildRerollBlank,
	"reroll_any_blank": func(_ EffectDefinition, cat *dice.Catalogue) (attack.Effect, error) {
		return effects.NewRerollBlank(cat, ""), nil
	},
	"luck_for_hit":   constant(effects.LuckForHit{}),
	"luck_for_miss":  constant(effects.LuckForMiss{}),
	"luck_for_armor": constant(effects.LuckForArmor{}),
	"luck_for_crit":  constant(effects.LuckForCrit{}),
}

// EffectTypes returns the registered effect type names, sorted.
func EffectTypes() []string {
	names := make([]string, 0, len(effectBuilders))
	for name := range effectBuilders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func buildEffect(def EffectDefinition, cat *dice.Catalogue) (attack.Effect, error) {
	build, ok := effectBuilders[def.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, def.Type)
	}
	return build(def, cat)
}

func constant(e attack.Effect) effectBuilder {
	return func(EffectDefinition, *dice.Catalogue) (attack.Effect, error) {
		return e, nil
	}
}

func buildRerollBlank(def EffectDefinition, cat *dice.Catalogue) (attack.Effect, error) {
	if def.Die == "" {
		return nil, fmt.Errorf("%w: reroll_blank needs a die", ErrInvalidEffect)
	}
	if _, err := cat.Faces(dice.Die(def.Die)); err != nil {
		return nil, err
	}
	return effects.NewRerollBlank(cat, dice.Die(def.Die)), nil
}

func buildExchange(def EffectDefinition, _ *dice.Catalogue) (attack.Effect, error) {
	if def.Give == nil || def.Take == nil {
		return nil, fmt.Errorf("%w: exchange_on_hit needs give and take", ErrInvalidEffect)
	}
	give, err := def.Give.build()
	if err != nil {
		return nil, err
	}
	take, err := def.Take.build()
	if err != nil {
		return nil, err
	}

	e := effects.ExchangeScoreOnHit{Give: give, Take: take}
	if def.Times < 0 {
		return nil, fmt.Errorf("%w: times %d", ErrInvalidEffect, def.Times)
	}
	if def.Times > 0 {
		times := effects.MustPositive(def.Times)
		e.Times = &times
	}
	return e, nil
}

func (xd ExchangeDefinition) build() (effects.Exchange, error) {
	facet, err := dice.ParseFacet(xd.Facet)
	if err != nil {
		return effects.Exchange{}, err
	}
	amount := xd.Amount
	if amount == 0 {
		amount = 1
	}
	positive, err := effects.NewPositive(amount)
	if err != nil {
		return effects.Exchange{}, fmt.Errorf("%w: %w", ErrInvalidEffect, err)
	}
	return effects.Exchange{Facet: facet, Amount: positive}, nil
}
