package component

import (
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/aethergs/server/internal/gamedata"
)

func testStore(names ...string) *gamedata.Store {
	defs := make([]*gamedata.AbilityDefinition, len(names))
	for i, name := range names {
		defs[i] = &gamedata.AbilityDefinition{
			AbilityName:     name,
			AbilitySpecials: map[string]float32{"BASE": 1.0},
		}
	}
	return gamedata.NewStoreFromDefs(defs...)
}

func TestAddOrReplacePreservesOverrides(t *testing.T) {
	reg := NewInstancedAbilities(testStore("A", "B"), zap.NewNop())

	idx, inst, ok := reg.AddOrReplaceByServerID(10, "A")
	if !ok {
		t.Fatal("add A failed")
	}
	inst.SetSpecial("BASE", 2.5)

	// replace under the same server id with a different definition
	idx2, inst2, ok := reg.AddOrReplaceByServerID(10, "B")
	if !ok {
		t.Fatal("replace with B failed")
	}
	if idx2 != idx {
		t.Errorf("replace moved index %d -> %d; want in place", idx, idx2)
	}
	if inst2 != inst {
		t.Error("replace allocated a new instance; want in-place swap")
	}
	if inst2.Data.AbilityName != "B" {
		t.Errorf("definition = %s; want B", inst2.Data.AbilityName)
	}
	if got := inst2.Special("BASE", 0); got != 2.5 {
		t.Errorf("override lost on replace: BASE = %v; want 2.5", got)
	}
	if reg.Len() != 1 {
		t.Errorf("len = %d; want 1", reg.Len())
	}
}

func TestUnassignedServerIDNeverReplaces(t *testing.T) {
	reg := NewInstancedAbilities(testStore("A", "B"), zap.NewNop())

	// implicit instantiation, no wire id assigned yet
	idxA, instA, ok := reg.FindOrCreateByName("A", 0)
	if !ok {
		t.Fatal("create A failed")
	}
	idxB, instB, ok := reg.FindOrCreateByName("B", 0)
	if !ok {
		t.Fatal("create B failed")
	}
	if idxA == idxB || instA == instB {
		t.Fatal("unassigned instances share a slot")
	}
	if reg.Len() != 2 {
		t.Fatalf("len = %d; want 2", reg.Len())
	}
	if got := instA.Data.AbilityName; got != "A" {
		t.Errorf("first instance holds %s; want A", got)
	}
	// 0 is not a lookup key either
	if _, _, ok := reg.FindByServerID(0); ok {
		t.Error("server id 0 resolvable; want unassigned")
	}
}

func TestAddUnknownName(t *testing.T) {
	reg := NewInstancedAbilities(testStore("A"), zap.NewNop())
	if _, _, ok := reg.AddOrReplaceByServerID(1, "Nope"); ok {
		t.Error("unknown name accepted")
	}
	if reg.Len() != 0 {
		t.Errorf("len = %d; want 0", reg.Len())
	}
}

func TestRegistryCap(t *testing.T) {
	names := make([]string, MaxInstancedAbilities+1)
	for i := range names {
		names[i] = fmt.Sprintf("Ability_%03d", i)
	}
	reg := NewInstancedAbilities(testStore(names...), zap.NewNop())

	for i := 0; i < MaxInstancedAbilities; i++ {
		if _, _, ok := reg.AddOrReplaceByServerID(uint32(i+1), names[i]); !ok {
			t.Fatalf("add %d failed before cap", i)
		}
	}
	if _, _, ok := reg.AddOrReplaceByServerID(uint32(MaxInstancedAbilities+1), names[MaxInstancedAbilities]); ok {
		t.Error("add beyond cap accepted")
	}
	if reg.Len() != MaxInstancedAbilities {
		t.Errorf("len = %d; want %d", reg.Len(), MaxInstancedAbilities)
	}
	// existing entries stay reachable
	if _, _, ok := reg.FindByServerID(1); !ok {
		t.Error("entry 1 lost after cap rejection")
	}
	// replacing an existing server id still works at the cap
	if _, _, ok := reg.AddOrReplaceByServerID(1, names[1]); !ok {
		t.Error("in-place replace rejected at cap")
	}
}

func TestFindOrCreateByName(t *testing.T) {
	reg := NewInstancedAbilities(testStore("A"), zap.NewNop())

	idx, inst, ok := reg.FindOrCreateByName("A", 5)
	if !ok {
		t.Fatal("create failed")
	}
	idx2, inst2, ok := reg.FindOrCreateByName("A", 99)
	if !ok {
		t.Fatal("lookup failed")
	}
	if idx2 != idx || inst2 != inst {
		t.Error("second lookup created a duplicate")
	}
	if reg.Len() != 1 {
		t.Errorf("len = %d; want 1", reg.Len())
	}
}

func TestModifierTableCap(t *testing.T) {
	mods := NewInstancedModifiers()
	if !mods.Put(MaxInstancedModifierID, &ModifierController{AbilityIndex: -1}) {
		t.Error("id at bound rejected")
	}
	if mods.Put(MaxInstancedModifierID+1, &ModifierController{AbilityIndex: -1}) {
		t.Error("id beyond bound accepted")
	}
	mods.Remove(MaxInstancedModifierID)
	if mods.Len() != 0 {
		t.Errorf("len = %d; want 0", mods.Len())
	}
}
