package attack

import (
	"errors"
	"math"
	"testing"

	"github.com/geniusisme/falldice/internal/dice"
)

const tolerance = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func d(f dice.Facet, v int) dice.Delta {
	return dice.Delta{Facet: f, Value: v}
}

func testCatalogue(t *testing.T, defs ...dice.Definition) *dice.Catalogue {
	t.Helper()
	cat, err := dice.NewCatalogue(defs...)
	if err != nil {
		t.Fatalf("NewCatalogue error: %v", err)
	}
	return cat
}

func fixedDie(name dice.Die, deltas ...dice.Delta) dice.Definition {
	return dice.Definition{Die: name, Sides: 1, Rows: []dice.Row{{Count: 1, Deltas: deltas}}}
}

func TestComputeOutputHitMiss(t *testing.T) {
	tests := []struct {
		name     string
		roll     dice.Scores
		required int
		wantHit  bool
	}{
		{"skill below threshold", dice.NewScores(d(dice.Skill, 5)), 6, true},
		{"skill at threshold", dice.NewScores(d(dice.Skill, 6)), 6, true},
		{"skill above threshold", dice.NewScores(d(dice.Skill, 7)), 6, false},
		{"explicit miss with low skill", dice.NewScores(d(dice.Skill, 2), d(dice.Miss, 1)), 6, false},
		{"explicit hit with high skill", dice.NewScores(d(dice.Skill, 10), d(dice.Hit, 1)), 6, true},
		{"hit and miss faces together", dice.NewScores(d(dice.Hit, 1), d(dice.Miss, 1)), 6, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chars := Characteristics{RequiredSkill: tt.required}
			out := ComputeOutput(&chars, tt.roll)
			got := out.Get(Hits) == 1
			if got != tt.wantHit {
				t.Errorf("hit = %v, want %v", got, tt.wantHit)
			}
		})
	}
}

func TestComputeOutputArmor(t *testing.T) {
	tests := []struct {
		name       string
		damage     int
		armor      int
		shred      int
		softArmor  int
		hardArmor  int
		wantDamage float64
	}{
		{"armor within capacity mitigates", 5, 2, 0, 3, 0, 3},
		{"armor at capacity mitigates", 5, 3, 0, 3, 0, 2},
		{"armor above capacity breaks", 5, 4, 0, 3, 0, 5},
		{"broken armor still leaves hard armor", 5, 4, 0, 3, 1, 4},
		{"shred reduces soft armor", 5, 3, 2, 3, 0, 4},
		{"shred beyond soft armor is wasted", 5, 1, 3, 3, 1, 4},
		{"shred does not touch hard armor", 5, 0, 2, 3, 2, 3},
		{"mitigation never exceeds damage", 2, 3, 0, 3, 2, 0},
		{"no damage", 0, 2, 0, 3, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chars := Characteristics{
				BaseScore: dice.NewScores(d(dice.Hit, 1)),
				SoftArmor: tt.softArmor,
				HardArmor: tt.hardArmor,
			}
			roll := dice.NewScores(d(dice.Damage, tt.damage), d(dice.Armor, tt.armor), d(dice.Shred, tt.shred))
			out := ComputeOutput(&chars, roll)
			if got := out.Get(Damage); got != tt.wantDamage {
				t.Errorf("Damage = %v, want %v", got, tt.wantDamage)
			}
		})
	}
}

func TestComputeOutputMissDealsNoDamage(t *testing.T) {
	chars := Characteristics{BaseScore: dice.NewScores(d(dice.Damage, 5)), RequiredSkill: 3}
	out := ComputeOutput(&chars, dice.NewScores(d(dice.Skill, 4), d(dice.Crit, 1), d(dice.Action, 2)))

	if out.Get(Damage) != 0 || out.Get(Hits) != 0 {
		t.Errorf("miss scored damage %v hits %v, want 0 0", out.Get(Damage), out.Get(Hits))
	}
	if out.Get(Crits) != 1 || out.Get(Actions) != 2 {
		t.Errorf("crits %v actions %v, want 1 2", out.Get(Crits), out.Get(Actions))
	}
}

func TestComputeOutputDoesNotModifyCharacteristics(t *testing.T) {
	chars := Characteristics{BaseScore: dice.NewScores(d(dice.Damage, 1))}
	ComputeOutput(&chars, dice.NewScores(d(dice.Damage, 3)))
	if chars.BaseScore.Get(dice.Damage) != 1 {
		t.Errorf("base damage = %d, want 1", chars.BaseScore.Get(dice.Damage))
	}
}

func TestScenarioSkillAtThreshold(t *testing.T) {
	cat := testCatalogue(t, fixedDie("six", d(dice.Skill, 6)))
	disp := Disposition{
		Dice:            []dice.Die{"six"},
		Characteristics: Characteristics{RequiredSkill: 6},
	}

	scores, err := disp.AverageScores(cat)
	if err != nil {
		t.Fatalf("AverageScores error: %v", err)
	}
	if scores.Get(Hits) != 1 {
		t.Errorf("expected hits = %v, want exactly 1", scores.Get(Hits))
	}
}

func TestScenarioNoDiceHardArmor(t *testing.T) {
	disp := Disposition{
		Characteristics: Characteristics{
			BaseScore: dice.NewScores(d(dice.Damage, 5), d(dice.Hit, 1)),
			HardArmor: 1,
		},
	}

	report, err := disp.Evaluate(dice.Default())
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if report.Scores.Get(Damage) != 4 {
		t.Errorf("expected damage = %v, want 4", report.Scores.Get(Damage))
	}
	if report.Combinations != 1 || report.Mass != 1 {
		t.Errorf("combinations %d mass %v, want 1 and 1", report.Combinations, report.Mass)
	}
}

func TestScenarioSoftArmor(t *testing.T) {
	cat := testCatalogue(t,
		fixedDie("armor2", d(dice.Armor, 2)),
		fixedDie("armor4", d(dice.Armor, 4)),
	)
	chars := Characteristics{
		BaseScore: dice.NewScores(d(dice.Damage, 5), d(dice.Hit, 1)),
		SoftArmor: 3,
	}

	tests := []struct {
		die  dice.Die
		want float64
	}{
		{"armor2", 3},
		{"armor4", 5},
	}
	for _, tt := range tests {
		t.Run(string(tt.die), func(t *testing.T) {
			disp := Disposition{Dice: []dice.Die{tt.die}, Characteristics: chars}
			scores, err := disp.AverageScores(cat)
			if err != nil {
				t.Fatalf("AverageScores error: %v", err)
			}
			if scores.Get(Damage) != tt.want {
				t.Errorf("expected damage = %v, want %v", scores.Get(Damage), tt.want)
			}
		})
	}
}

func TestEvaluateUnknownDie(t *testing.T) {
	disp := Disposition{Dice: []dice.Die{dice.White, "purple"}}
	_, err := disp.Evaluate(dice.Default())
	if !errors.Is(err, dice.ErrUnknownDie) {
		t.Errorf("error = %v, want ErrUnknownDie", err)
	}
}

func TestCountCombinations(t *testing.T) {
	cat := dice.Default()
	many := make([]dice.Die, 30)
	for i := range many {
		many[i] = dice.Black
	}

	tests := []struct {
		name string
		dice []dice.Die
		want int
	}{
		{"no dice", nil, 1},
		{"white and red", []dice.Die{dice.White, dice.Red}, len(mustFaces(t, cat, dice.White)) * len(mustFaces(t, cat, dice.Red))},
		{"saturates", many, math.MaxInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			disp := Disposition{Dice: tt.dice}
			got, err := disp.CountCombinations(cat)
			if err != nil {
				t.Fatalf("CountCombinations error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CountCombinations() = %d, want %d", got, tt.want)
			}
		})
	}

	white := Disposition{Dice: []dice.Die{dice.White}}
	report, err := white.Evaluate(cat)
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if n, _ := white.CountCombinations(cat); n != report.Combinations {
		t.Errorf("count %d disagrees with Evaluate %d", n, report.Combinations)
	}

	unknown := Disposition{Dice: []dice.Die{"purple"}}
	if _, err := unknown.CountCombinations(cat); !errors.Is(err, dice.ErrUnknownDie) {
		t.Errorf("err = %v, want ErrUnknownDie", err)
	}
}

func mustFaces(t *testing.T, cat *dice.Catalogue, die dice.Die) []*dice.Face {
	t.Helper()
	faces, err := cat.Faces(die)
	if err != nil {
		t.Fatalf("Faces(%s) error: %v", die, err)
	}
	return faces
}

func TestEvaluateMassIsOne(t *testing.T) {
	disp := Disposition{
		Dice: []dice.Die{dice.Red, dice.White, dice.Black, dice.Black},
		Characteristics: Characteristics{
			BaseScore:     dice.NewScores(d(dice.Damage, 1)),
			RequiredSkill: 6,
			SoftArmor:     2,
		},
		Effects: []Effect{split{0.3, dice.Damage, 1}, split{0.5, dice.Skill, -2}},
	}

	report, err := disp.Evaluate(dice.Default())
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if !approx(report.Mass, 1) {
		t.Errorf("probability mass = %v, want 1", report.Mass)
	}
	if want := 4 * 13 * 6 * 6; report.Combinations != want {
		t.Errorf("combinations = %d, want %d", report.Combinations, want)
	}
}

// split yields c unchanged at weight, then adjusts facet by delta and yields
// the rest of the mass.
type split struct {
	weight float64
	facet  dice.Facet
	delta  int
}

func (s split) Apply(c *Case, y *Yield) Done {
	y.Branch(s.weight, c)
	c.Update(func(u *Updater) {
		u.AdjustScore(s.facet, s.delta)
	})
	return y.Final(1-s.weight, c)
}

func TestResolveWeightsBranches(t *testing.T) {
	chars := Characteristics{BaseScore: dice.NewScores(d(dice.Damage, 2), d(dice.Hit, 1))}

	o := Resolve(chars, nil, []Effect{split{0.25, dice.Damage, 2}})
	if o.Probability != 1 {
		t.Errorf("Probability = %v, want 1", o.Probability)
	}
	// 0.25 * 2 + 0.75 * 4
	if !approx(o.Scores.Get(Damage), 3.5) {
		t.Errorf("Damage = %v, want 3.5", o.Scores.Get(Damage))
	}

	o = Resolve(chars, nil, []Effect{split{0.25, dice.Damage, 2}, split{0.5, dice.Damage, 1}})
	if !approx(o.Scores.Get(Damage), 4) {
		t.Errorf("chained Damage = %v, want 4", o.Scores.Get(Damage))
	}
	if !approx(o.Scores.Get(Hits), 1) {
		t.Errorf("chained Hits = %v, want 1", o.Scores.Get(Hits))
	}
}

func TestResolveKeepsRollProbability(t *testing.T) {
	cat := dice.Default()
	black, _ := cat.Faces(dice.Black)
	roll := []*dice.Face{black[0], black[1]}

	o := Resolve(Characteristics{}, roll, []Effect{split{0.5, dice.Damage, 1}})
	if want := black[0].Probability * black[1].Probability; !approx(o.Probability, want) {
		t.Errorf("Probability = %v, want %v", o.Probability, want)
	}
}

// recorder captures the damage each Case reaching it carries.
type recorder struct {
	seen *[]float64
}

func (r recorder) Apply(c *Case, y *Yield) Done {
	*r.seen = append(*r.seen, c.Result(Damage))
	return y.Final(1, c)
}

func TestBranchesVisitedInYieldOrder(t *testing.T) {
	var seen []float64
	chars := Characteristics{BaseScore: dice.NewScores(d(dice.Damage, 1), d(dice.Hit, 1))}

	Resolve(chars, nil, []Effect{split{0.5, dice.Damage, 3}, recorder{&seen}})

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 4 {
		t.Errorf("downstream effect saw %v, want [1 4]", seen)
	}
}

// rerollFirst replaces slot 0 by each face of a die.
type rerollFirst struct {
	faces []*dice.Face
}

func (r rerollFirst) Apply(c *Case, y *Yield) Done {
	last := len(r.faces) - 1
	for _, f := range r.faces[:last] {
		c.Update(func(u *Updater) { u.SetFace(0, f) })
		y.Branch(f.Probability, c)
	}
	c.Update(func(u *Updater) { u.SetFace(0, r.faces[last]) })
	return y.Final(r.faces[last].Probability, c)
}

func TestSetFaceDoesNotTouchCallerRoll(t *testing.T) {
	cat := dice.Default()
	black, _ := cat.Faces(dice.Black)
	roll := []*dice.Face{black[2]}
	chars := Characteristics{BaseScore: dice.NewScores(d(dice.Hit, 1))}

	o := Resolve(chars, roll, []Effect{rerollFirst{black}})

	if roll[0] != black[2] {
		t.Errorf("caller's roll slot changed to %v", roll[0])
	}
	// Expected damage of one black die: 5/12*1 + 1/12*2.
	if want := 7.0 / 12; !approx(o.Scores.Get(Damage), want) {
		t.Errorf("Damage = %v, want %v", o.Scores.Get(Damage), want)
	}
}

func TestForkIsolation(t *testing.T) {
	cat := dice.Default()
	black, _ := cat.Faces(dice.Black)
	chars := Characteristics{BaseScore: dice.NewScores(d(dice.Hit, 1))}

	c := NewCase(chars, []*dice.Face{black[0]})
	sibling := c.fork()

	c.Update(func(u *Updater) {
		u.AdjustScore(dice.Damage, 5)
		u.SetFace(0, black[1])
	})

	if sibling.Result(Damage) != 1 {
		t.Errorf("sibling damage = %v, want 1", sibling.Result(Damage))
	}
	if sibling.Roll()[0] != black[0] {
		t.Errorf("sibling roll changed to %v", sibling.Roll()[0])
	}
	if c.Result(Damage) != 7 {
		t.Errorf("mutated damage = %v, want 7", c.Result(Damage))
	}
	if c.Score(dice.Damage) != 7 {
		t.Errorf("Score(Damage) = %d, want 7", c.Score(dice.Damage))
	}
	if chars.BaseScore.Get(dice.Damage) != 0 {
		t.Error("caller's characteristics changed")
	}

	// The sibling mutating afterwards must not leak into c either.
	sibling.Update(func(u *Updater) { u.AdjustScore(dice.Damage, 1) })
	if c.Result(Damage) != 7 {
		t.Errorf("damage after sibling update = %v, want 7", c.Result(Damage))
	}
}

func TestForkSharesUntilMutation(t *testing.T) {
	c := NewCase(Characteristics{}, []*dice.Face{})
	sibling := c.fork()
	if c.chars != sibling.chars {
		t.Error("fork copied characteristics before any mutation")
	}
	sibling.Update(func(u *Updater) { u.AdjustScore(dice.Skill, 1) })
	if c.chars == sibling.chars {
		t.Error("mutation did not copy characteristics")
	}
}

type noFinal struct{}

func (noFinal) Apply(c *Case, y *Yield) Done {
	y.Branch(1, c)
	return Done{}
}

type leaky struct{}

func (leaky) Apply(c *Case, y *Yield) Done {
	y.Branch(0.5, c)
	return y.Final(0.25, c)
}

type chatty struct{}

func (chatty) Apply(c *Case, y *Yield) Done {
	done := y.Final(1, c)
	y.Branch(0, c)
	return done
}

func TestContractViolationsPanic(t *testing.T) {
	tests := []struct {
		name   string
		effect Effect
	}{
		{"no final branch", noFinal{}},
		{"weights do not sum to one", leaky{}},
		{"branch after final", chatty{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if _, ok := r.(*ContractError); !ok {
					t.Errorf("recovered %v, want *ContractError", r)
				}
			}()
			Resolve(Characteristics{}, nil, []Effect{tt.effect})
		})
	}
}

func TestExpand(t *testing.T) {
	chars := Characteristics{BaseScore: dice.NewScores(d(dice.Damage, 1), d(dice.Hit, 1))}
	branches := Expand(split{0.4, dice.Damage, 1}, NewCase(chars, nil))

	if len(branches) != 2 {
		t.Fatalf("len(branches) = %d, want 2", len(branches))
	}
	if branches[0].Weight != 0.4 || branches[0].Case.Result(Damage) != 1 {
		t.Errorf("branch 0 = %v / %v, want 0.4 / 1", branches[0].Weight, branches[0].Case.Result(Damage))
	}
	if !approx(branches[1].Weight, 0.6) || branches[1].Case.Result(Damage) != 2 {
		t.Errorf("branch 1 = %v / %v, want 0.6 / 2", branches[1].Weight, branches[1].Case.Result(Damage))
	}
}

type bump struct {
	facet dice.Facet
	delta int
}

func (b bump) Apply(c *Case, y *Yield) Done {
	c.Update(func(u *Updater) { u.AdjustScore(b.facet, b.delta) })
	return y.Final(1, c)
}

func TestExpandLeavesOwningCaseAlone(t *testing.T) {
	chars := Characteristics{BaseScore: dice.NewScores(d(dice.Damage, 1), d(dice.Hit, 1))}
	c := NewCase(chars, nil)
	c.Update(func(u *Updater) { u.AdjustScore(dice.Damage, 1) })

	branches := Expand(bump{dice.Damage, 3}, c)

	if got := c.Score(dice.Damage); got != 2 {
		t.Errorf("caller damage score = %d, want 2", got)
	}
	if got := c.Result(Damage); got != 2 {
		t.Errorf("caller derived damage = %v, want 2", got)
	}
	if len(branches) != 1 || branches[0].Case.Result(Damage) != 5 {
		t.Errorf("branches = %+v, want one branch with damage 5", branches)
	}
}

func TestExpandLeavesOwningRollAlone(t *testing.T) {
	cat := dice.Default()
	black, _ := cat.Faces(dice.Black)
	c := NewCase(Characteristics{}, []*dice.Face{black[0]})
	c.Update(func(u *Updater) { u.SetFace(0, black[1]) })

	Expand(rerollFirst{black}, c)

	if c.Roll()[0] != black[1] {
		t.Errorf("caller roll = %v, want %v", c.Roll()[0], black[1])
	}
}

func TestParseFacet(t *testing.T) {
	for _, f := range Facets() {
		got, err := ParseFacet(f.String())
		if err != nil || got != f {
			t.Errorf("ParseFacet(%q) = %v, %v", f.String(), got, err)
		}
	}
	if _, err := ParseFacet("luck"); !errors.Is(err, ErrUnknownFacet) {
		t.Errorf("ParseFacet(luck) error = %v, want ErrUnknownFacet", err)
	}
}
