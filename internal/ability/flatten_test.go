package ability

import (
	"testing"

	"github.com/aethergs/server/internal/gamedata"
)

func TestFlattenActionsChildren(t *testing.T) {
	hook := []gamedata.ActionDefinition{
		{
			TypeName: "LoseHP",
			Actions: []gamedata.ActionDefinition{
				{TypeName: "HealHP"},
				{TypeName: "AddHPDebts"},
			},
			// present but must be ignored: Actions wins
			SuccessActions: []gamedata.ActionDefinition{{TypeName: "ReduceHPDebts"}},
		},
		{TypeName: "ClearOverrideMap"},
	}

	flat := FlattenActions(hook)
	want := []string{"LoseHP", "HealHP", "AddHPDebts", "ClearOverrideMap"}
	if len(flat) != len(want) {
		t.Fatalf("len = %d; want %d", len(flat), len(want))
	}
	for i, name := range want {
		if flat[i].TypeName != name {
			t.Errorf("flat[%d] = %s; want %s", i, flat[i].TypeName, name)
		}
	}
}

func TestFlattenActionsBranchFallback(t *testing.T) {
	hook := []gamedata.ActionDefinition{
		{
			TypeName:       "LoseHP",
			SuccessActions: []gamedata.ActionDefinition{{TypeName: "HealHP"}},
			FailActions:    []gamedata.ActionDefinition{{TypeName: "AddHPDebts"}},
		},
	}

	flat := FlattenActions(hook)
	want := []string{"LoseHP", "HealHP", "AddHPDebts"}
	if len(flat) != len(want) {
		t.Fatalf("len = %d; want %d", len(flat), len(want))
	}
	for i, name := range want {
		if flat[i].TypeName != name {
			t.Errorf("flat[%d] = %s; want %s", i, flat[i].TypeName, name)
		}
	}
}

func TestFlattenActionsOneLevelOnly(t *testing.T) {
	hook := []gamedata.ActionDefinition{
		{
			TypeName: "LoseHP",
			Actions: []gamedata.ActionDefinition{
				{
					TypeName: "HealHP",
					Actions:  []gamedata.ActionDefinition{{TypeName: "AddHPDebts"}},
				},
			},
		},
	}

	flat := FlattenActions(hook)
	// grandchildren are not flattened
	if len(flat) != 2 {
		t.Fatalf("len = %d; want 2", len(flat))
	}
}

func TestFlattenActionsEmpty(t *testing.T) {
	if flat := FlattenActions(nil); len(flat) != 0 {
		t.Errorf("len = %d; want 0", len(flat))
	}
}
