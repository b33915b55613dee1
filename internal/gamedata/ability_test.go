package gamedata

import (
	"encoding/json"
	"testing"
)

func TestOrderedModifiersPreserveOrder(t *testing.T) {
	raw := []byte(`{
		"abilityName": "Order_Test",
		"modifiers": {
			"Zeta": {"onAdded": []},
			"Alpha": {"onRemoved": []},
			"Mid": {}
		}
	}`)
	var def AbilityDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := []string{"Zeta", "Alpha", "Mid"}
	if def.Modifiers.Len() != len(want) {
		t.Fatalf("len = %d; want %d", def.Modifiers.Len(), len(want))
	}
	for i, name := range want {
		md, ok := def.Modifiers.At(i)
		if !ok || md.Name != name {
			t.Errorf("At(%d) = %v; want %s", i, md, name)
		}
	}
	if _, ok := def.Modifiers.Get("Alpha"); !ok {
		t.Error("Get(Alpha) missed")
	}
	if _, ok := def.Modifiers.Get("Nope"); ok {
		t.Error("Get(Nope) hit")
	}
}

func TestDynamicFloatShapes(t *testing.T) {
	var a ActionDefinition
	raw := []byte(`{
		"$type": "HealHP",
		"amount": 12.5,
		"healRatio": "HEAL_RATIO",
		"amountByCasterMaxHPRatio": ["BASE", 2.0, "MUL"],
		"lethal": true
	}`)
	if err := json.Unmarshal(raw, &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if a.Amount.Kind != DynamicNumber || a.Amount.Num != 12.5 {
		t.Errorf("amount = %+v; want number 12.5", a.Amount)
	}
	if a.HealRatio.Kind != DynamicName || a.HealRatio.Name != "HEAL_RATIO" {
		t.Errorf("healRatio = %+v; want name HEAL_RATIO", a.HealRatio)
	}
	arr := a.AmountByCasterMaxHPRatio
	if arr.Kind != DynamicArray || len(arr.Ops) != 3 {
		t.Fatalf("ratio = %+v; want 3-token array", arr)
	}
	if !arr.Ops[0].IsName || arr.Ops[0].Name != "BASE" {
		t.Errorf("ops[0] = %+v; want name BASE", arr.Ops[0])
	}
	if arr.Ops[1].IsName || arr.Ops[1].Num != 2.0 {
		t.Errorf("ops[1] = %+v; want literal 2.0", arr.Ops[1])
	}
	if !a.Lethal {
		t.Error("lethal flag lost")
	}
}

func TestDynamicFloatBool(t *testing.T) {
	var d DynamicFloat
	if err := json.Unmarshal([]byte(`true`), &d); err != nil {
		t.Fatalf("unmarshal bool: %v", err)
	}
	if d.Kind != DynamicNumber || d.Num != 1 {
		t.Errorf("bool true = %+v; want number 1", d)
	}
}

func TestAbilityNameHash(t *testing.T) {
	if AbilityNameHash("") != 5381 {
		t.Errorf("empty hash = %d; want seed 5381", AbilityNameHash(""))
	}
	// h("A") = 5381*33 + 65
	if got, want := AbilityNameHash("A"), uint32(5381*33+65); got != want {
		t.Errorf("hash(A) = %d; want %d", got, want)
	}
	if AbilityNameHash("Avatar_Kestrel_FieldMend") == AbilityNameHash("Avatar_Kestrel_NormalAttack") {
		t.Error("distinct names collided")
	}
}

func TestFightPropByName(t *testing.T) {
	if !IsFightPropName("FIGHT_PROP_CUR_HP") {
		t.Error("FIGHT_PROP_CUR_HP not recognized")
	}
	if IsFightPropName("HEAL_RATIO") {
		t.Error("HEAL_RATIO misclassified as fight prop")
	}
	if got := FightPropByName("FIGHT_PROP_CUR_HP"); got != FightPropCurHP {
		t.Errorf("FightPropByName = %d; want %d", got, FightPropCurHP)
	}
	if got := FightPropByName("FIGHT_PROP_NOPE"); got != FightPropNone {
		t.Errorf("unknown name = %d; want none", got)
	}
}
