package ability

import (
	"testing"

	"github.com/aethergs/server/internal/component"
	"github.com/aethergs/server/internal/gamedata"
)

func newTestInstance(specials map[string]float32) *component.InstancedAbility {
	def := &gamedata.AbilityDefinition{
		AbilityName:     "Test_Ability",
		AbilitySpecials: specials,
	}
	sp := make(map[string]float32, len(specials))
	for k, v := range specials {
		sp[k] = v
	}
	return &component.InstancedAbility{
		InstancedAbilityID: 1,
		Data:               def,
		Modifiers:          &def.Modifiers,
		Specials:           sp,
	}
}

func TestEvaluateNil(t *testing.T) {
	if got := Evaluate(nil, nil, nil, 7.5); got != 7.5 {
		t.Errorf("Evaluate(nil expr) = %v; want 7.5", got)
	}
}

func TestEvaluateNumber(t *testing.T) {
	if got := Evaluate(nil, nil, gamedata.Number(42), 0); got != 42 {
		t.Errorf("Evaluate(42) = %v; want 42", got)
	}
}

func TestEvaluateNumericString(t *testing.T) {
	if got := Evaluate(nil, nil, gamedata.Named("3.5"), 0); got != 3.5 {
		t.Errorf("Evaluate(\"3.5\") = %v; want 3.5", got)
	}
}

func TestEvaluateSpecialLookup(t *testing.T) {
	inst := newTestInstance(map[string]float32{"ATK_RATIO": 0.8})
	if got := Evaluate(inst, nil, gamedata.Named("ATK_RATIO"), 0); got != 0.8 {
		t.Errorf("Evaluate(ATK_RATIO) = %v; want 0.8", got)
	}
	if got := Evaluate(inst, nil, gamedata.Named("MISSING"), 1.5); got != 1.5 {
		t.Errorf("Evaluate(MISSING) = %v; want default 1.5", got)
	}
}

func TestEvaluateFightProp(t *testing.T) {
	props := component.NewFightProperties()
	props.Seed(gamedata.FightPropCurAttack, 120)

	if got := Evaluate(nil, props, gamedata.Named("FIGHT_PROP_CUR_ATTACK"), 0); got != 120 {
		t.Errorf("Evaluate(FIGHT_PROP_CUR_ATTACK) = %v; want 120", got)
	}
	// fight prop names never fall back to the default, even without a table
	if got := Evaluate(nil, nil, gamedata.Named("FIGHT_PROP_CUR_ATTACK"), 9); got != 0 {
		t.Errorf("Evaluate(fight prop, nil props) = %v; want 0", got)
	}
}

func TestEvaluateArraySimple(t *testing.T) {
	cases := []struct {
		name string
		expr *gamedata.DynamicFloat
		want float32
	}{
		{"add", gamedata.Array(gamedata.Lit(2), gamedata.Lit(3), gamedata.Op("ADD")), 5},
		{"sub", gamedata.Array(gamedata.Lit(10), gamedata.Lit(4), gamedata.Op("SUB")), 6},
		{"mul", gamedata.Array(gamedata.Lit(6), gamedata.Lit(7), gamedata.Op("MUL")), 42},
		{"div", gamedata.Array(gamedata.Lit(9), gamedata.Lit(3), gamedata.Op("DIV")), 3},
		{"chained", gamedata.Array(gamedata.Lit(2), gamedata.Lit(3), gamedata.Op("ADD"), gamedata.Lit(4), gamedata.Op("MUL")), 20},
		{"single operand", gamedata.Array(gamedata.Lit(5), gamedata.Op("ADD")), 5},
		{"no operator", gamedata.Array(gamedata.Lit(5), gamedata.Lit(6)), 0},
		{"empty", gamedata.Array(), 0},
	}
	for _, tc := range cases {
		if got := Evaluate(nil, nil, tc.expr, 0); got != tc.want {
			t.Errorf("%s = %v; want %v", tc.name, got, tc.want)
		}
	}
}

func TestEvaluateArrayKindPriority(t *testing.T) {
	// ADD reduces before the earlier-positioned MUL: the reduction site is
	// picked by operator kind first, position second.
	expr := gamedata.Array(
		gamedata.Lit(2), gamedata.Lit(4), gamedata.Op("MUL"),
		gamedata.Lit(3), gamedata.Op("ADD"),
	)
	// ADD consumes the MUL marker (numeric value 0) and 3, yielding 3; the
	// MUL token is gone, so 3 is the final scalar.
	if got := Evaluate(nil, nil, expr, 0); got != 3 {
		t.Errorf("kind priority = %v; want 3", got)
	}
}

func TestEvaluateArrayDivisionByZero(t *testing.T) {
	// a stuck division aborts the reduction and yields the last computed scalar
	expr := gamedata.Array(
		gamedata.Lit(4), gamedata.Lit(5), gamedata.Op("MUL"),
		gamedata.Lit(0), gamedata.Op("DIV"),
	)
	if got := Evaluate(nil, nil, expr, 0); got != 20 {
		t.Errorf("div by zero = %v; want last computed 20", got)
	}

	// nothing computed before the stuck step
	expr = gamedata.Array(gamedata.Lit(10), gamedata.Lit(0), gamedata.Op("DIV"))
	if got := Evaluate(nil, nil, expr, 0); got != 0 {
		t.Errorf("immediate div by zero = %v; want 0", got)
	}
}

func TestEvaluateArrayWithNames(t *testing.T) {
	inst := newTestInstance(map[string]float32{"RATIO": 0.5})
	props := component.NewFightProperties()
	props.Seed(gamedata.FightPropMaxHP, 2000)

	expr := gamedata.Array(gamedata.Ref("RATIO"), gamedata.Ref("FIGHT_PROP_MAX_HP"), gamedata.Op("MUL"))
	if got := Evaluate(inst, props, expr, 0); got != 1000 {
		t.Errorf("named array = %v; want 1000", got)
	}
}
