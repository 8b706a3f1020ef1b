package dice

func row(count int, deltas ...Delta) Row {
	return Row{Count: count, Deltas: deltas}
}

func d(f Facet, v int) Delta {
	return Delta{Facet: f, Value: v}
}

var defaultDefinitions = []Definition{
	{Die: White, Sides: 20, Rows: []Row{
		row(2, d(Action, 1), d(Hit, 1)),
		row(3, d(Crit, 1), d(Hit, 1)),
		row(1, d(Skill, 2)),
		row(1, d(Skill, 3)),
		row(1, d(Skill, 4)),
		row(1, d(Skill, 5)),
		row(2, d(Skill, 6)),
		row(2, d(Skill, 7)),
		row(2, d(Skill, 8)),
		row(1, d(Skill, 9)),
		row(1, d(Skill, 10)),
		row(2, d(Miss, 1)),
		row(1, d(Miss, 1), d(Action, 1)),
	}},
	{Die: Red, Sides: 12, Rows: []Row{
		row(4, d(Armor, 1)),
		row(3, d(Armor, 2)),
		row(3, d(Armor, 3)),
		row(2, d(Armor, 4)),
	}},
	{Die: Yellow, Sides: 12, Rows: []Row{
		row(5, d(Shred, 1)),
		row(1, d(Shred, 2)),
		row(2, d(YellowBlank, 1)),
		row(1, d(Bottle, 1)),
		row(2, d(Skill, -1)),
		row(1, d(Damage, 1)),
	}},
	{Die: Green, Sides: 12, Rows: []Row{
		row(4, d(Skill, -2), d(GreenBlank, 1)),
		row(2, d(Skill, -2)),
		row(1, d(Skill, -3)),
		row(2, d(Shred, 1)),
		row(2, d(Damage, 1)),
		row(1, d(Bottle, 1)),
	}},
	{Die: Black, Sides: 12, Rows: []Row{
		row(5, d(Damage, 1)),
		row(1, d(Damage, 2)),
		row(3, d(BlackBlank, 1)),
		row(1, d(Bottle, 1)),
		row(1, d(Shred, 1)),
		row(1, d(Skill, -1)),
	}},
	{Die: Blue, Sides: 12, Rows: []Row{
		row(4, d(Bottle, 1)),
		row(2, d(Bottle, 2)),
		row(1, d(Bottle, 1), d(Star, 1)),
		row(2, d(Star, 1)),
		row(1, d(Star, 2)),
		row(2, d(Explosion, 1)),
	}},
}

var defaultCatalogue = mustCatalogue(defaultDefinitions...)

func mustCatalogue(defs ...Definition) *Catalogue {
	c, err := NewCatalogue(defs...)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the built-in catalogue of the six standard dice.
func Default() *Catalogue {
	return defaultCatalogue
}
