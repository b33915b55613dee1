package ability

import (
	"testing"

	"go.uber.org/zap"

	"github.com/aethergs/server/internal/component"
	"github.com/aethergs/server/internal/core/ecs"
	"github.com/aethergs/server/internal/core/event"
	"github.com/aethergs/server/internal/gamedata"
)

// testWorld bundles a one-entity world wired end to end: resolver, engine,
// event bus and component stores.
type testWorld struct {
	ctx      *Context
	resolver *Resolver
	engine   *Engine
	entity   ecs.EntityID
	props    *component.FightProperties
	protos   map[uint32]ecs.EntityID
}

func newTestWorld(t *testing.T, defs ...*gamedata.AbilityDefinition) *testWorld {
	t.Helper()

	log := zap.NewNop()
	world := ecs.NewWorld()
	abilities := ecs.NewStore[component.InstancedAbilities]()
	modifiers := ecs.NewStore[component.InstancedModifiers]()
	props := ecs.NewStore[component.FightProperties]()
	info := ecs.NewStore[component.EntityInfo]()
	world.RegisterStore(abilities)
	world.RegisterStore(modifiers)
	world.RegisterStore(props)
	world.RegisterStore(info)

	protos := make(map[uint32]ecs.EntityID)
	ctx := &Context{
		World:     world,
		Bus:       event.NewBus(),
		Store:     gamedata.NewStoreFromDefs(defs...),
		Abilities: abilities,
		Modifiers: modifiers,
		Props:     props,
		Info:      info,
		ResolveProto: func(protoID uint32) (ecs.EntityID, bool) {
			id, ok := protos[protoID]
			return id, ok
		},
		Log: log,
	}

	tw := &testWorld{
		ctx:      ctx,
		resolver: NewResolver(ctx),
		engine:   NewEngine(ctx),
		protos:   protos,
	}
	tw.engine.Subscribe()

	tw.entity = world.CreateEntity()
	protos[1] = tw.entity
	info.Set(tw.entity, &component.EntityInfo{ProtoID: 1, Kind: component.EntityKindAvatar})

	fp := component.NewFightProperties()
	fp.Seed(gamedata.FightPropMaxHP, 200)
	fp.Seed(gamedata.FightPropCurHP, 50)
	fp.Seed(gamedata.FightPropCurAttack, 100)
	props.Set(tw.entity, fp)
	tw.props = fp

	reg := component.NewInstancedAbilities(ctx.Store, log)
	for i, def := range defs {
		if _, _, ok := reg.AddOrReplaceByServerID(uint32(i+1), def.AbilityName); !ok {
			t.Fatalf("grant %s failed", def.AbilityName)
		}
	}
	abilities.Set(tw.entity, reg)
	modifiers.Set(tw.entity, component.NewInstancedModifiers())

	return tw
}

// drain dispatches queued events until the bus settles.
func (tw *testWorld) drain() {
	for i := 0; i < 8; i++ {
		tw.ctx.Bus.SwapBuffers()
		tw.ctx.Bus.DispatchAll()
		if !tw.ctx.Bus.Pending() {
			return
		}
	}
}

func healDef() *gamedata.AbilityDefinition {
	return &gamedata.AbilityDefinition{
		AbilityName: "Test_Heal",
		OnAbilityStart: []gamedata.ActionDefinition{
			{
				TypeName:              "HealHP",
				Amount:                gamedata.Number(100),
				IgnoreAbilityProperty: true,
			},
		},
		AbilitySpecials: map[string]float32{},
	}
}

func TestHealHPThroughInvocation(t *testing.T) {
	tw := newTestWorld(t, healDef())

	local := LocalID{
		Kind:      ContainerAction,
		ConfigIdx: int32(gamedata.HookOnAbilityStart),
		ActionIdx: 1,
	}
	tw.resolver.Resolve(&Invocation{
		EntityID:           1,
		InstancedAbilityID: 1,
		LocalID:            local.Encode(),
	})
	tw.drain()

	if got := tw.props.Get(gamedata.FightPropCurHP); got != 150 {
		t.Errorf("cur hp = %v; want 150", got)
	}
}

func TestHealHPClampsAtMax(t *testing.T) {
	tw := newTestWorld(t, healDef())
	tw.props.Seed(gamedata.FightPropCurHP, 180)

	local := LocalID{Kind: ContainerAction, ConfigIdx: int32(gamedata.HookOnAbilityStart), ActionIdx: 1}
	tw.resolver.Resolve(&Invocation{EntityID: 1, InstancedAbilityID: 1, LocalID: local.Encode()})
	tw.drain()

	if got := tw.props.Get(gamedata.FightPropCurHP); got != 200 {
		t.Errorf("cur hp = %v; want clamp at max 200", got)
	}
}

func TestHealHPAppliesHealBonuses(t *testing.T) {
	def := healDef()
	def.OnAbilityStart[0].IgnoreAbilityProperty = false
	tw := newTestWorld(t, def)
	tw.props.Seed(gamedata.FightPropHealAdd, 0.2)
	tw.props.Seed(gamedata.FightPropHealedAdd, 0.1)

	local := LocalID{Kind: ContainerAction, ConfigIdx: int32(gamedata.HookOnAbilityStart), ActionIdx: 1}
	tw.resolver.Resolve(&Invocation{EntityID: 1, InstancedAbilityID: 1, LocalID: local.Encode()})
	tw.drain()

	// 50 + 100×(1+0.2+0.1) = 180
	if got := tw.props.Get(gamedata.FightPropCurHP); got != 180 {
		t.Errorf("cur hp = %v; want 180", got)
	}
}

func TestLoseHPLethalGuard(t *testing.T) {
	def := &gamedata.AbilityDefinition{
		AbilityName: "Test_Drain",
		OnAbilityStart: []gamedata.ActionDefinition{
			{TypeName: "LoseHP", Amount: gamedata.Number(60)},
			{TypeName: "LoseHP", Amount: gamedata.Number(60), Lethal: true},
		},
		AbilitySpecials: map[string]float32{},
	}
	tw := newTestWorld(t, def)

	// non-lethal action that would kill: dropped entirely
	local := LocalID{Kind: ContainerAction, ConfigIdx: int32(gamedata.HookOnAbilityStart), ActionIdx: 1}
	tw.resolver.Resolve(&Invocation{EntityID: 1, InstancedAbilityID: 1, LocalID: local.Encode()})
	tw.drain()
	if got := tw.props.Get(gamedata.FightPropCurHP); got != 50 {
		t.Errorf("cur hp after guarded hit = %v; want untouched 50", got)
	}

	// lethal variant lands and clamps at zero
	local.ActionIdx = 2
	tw.resolver.Resolve(&Invocation{EntityID: 1, InstancedAbilityID: 1, LocalID: local.Encode()})
	tw.drain()
	if got := tw.props.Get(gamedata.FightPropCurHP); got != 0 {
		t.Errorf("cur hp after lethal hit = %v; want 0", got)
	}
}

func TestHPDebtsAddAndReduce(t *testing.T) {
	def := &gamedata.AbilityDefinition{
		AbilityName: "Test_Debts",
		OnAbilityStart: []gamedata.ActionDefinition{
			{TypeName: "AddHPDebts", Value: gamedata.Number(300)},
			{TypeName: "AddHPDebts", Value: gamedata.Number(300)},
			{TypeName: "ReduceHPDebts", Value: gamedata.Number(1000)},
		},
		AbilitySpecials: map[string]float32{},
	}
	tw := newTestWorld(t, def)

	invoke := func(idx int32) {
		local := LocalID{Kind: ContainerAction, ConfigIdx: int32(gamedata.HookOnAbilityStart), ActionIdx: idx}
		tw.resolver.Resolve(&Invocation{EntityID: 1, InstancedAbilityID: 1, LocalID: local.Encode()})
		tw.drain()
	}

	invoke(1)
	if got := tw.props.Get(gamedata.FightPropCurHPDebts); got != 300 {
		t.Errorf("debts = %v; want 300", got)
	}
	// second add pushes past the 2×max_hp=400 limit and clamps
	invoke(2)
	if got := tw.props.Get(gamedata.FightPropCurHPDebts); got != 400 {
		t.Errorf("debts = %v; want clamp at 400", got)
	}
	// over-reduction clamps at zero
	invoke(3)
	if got := tw.props.Get(gamedata.FightPropCurHPDebts); got != 0 {
		t.Errorf("debts = %v; want 0", got)
	}
}

func TestDebtChangeClassification(t *testing.T) {
	def := &gamedata.AbilityDefinition{
		AbilityName: "Test_DebtEvents",
		OnAbilityStart: []gamedata.ActionDefinition{
			{TypeName: "AddHPDebts", Value: gamedata.Number(100)},
			{TypeName: "ReduceHPDebts", Value: gamedata.Number(40)},
			{TypeName: "ReduceHPDebts", Value: gamedata.Number(60)},
		},
		AbilitySpecials: map[string]float32{},
	}
	tw := newTestWorld(t, def)

	var changes []event.DebtChange
	event.Subscribe(tw.ctx.Bus, func(ev event.DebtChanged) {
		changes = append(changes, ev.Change)
	})

	for idx := int32(1); idx <= 3; idx++ {
		local := LocalID{Kind: ContainerAction, ConfigIdx: int32(gamedata.HookOnAbilityStart), ActionIdx: idx}
		tw.resolver.Resolve(&Invocation{EntityID: 1, InstancedAbilityID: 1, LocalID: local.Encode()})
		tw.drain()
	}

	want := []event.DebtChange{event.DebtAdded, event.DebtPaid, event.DebtFinished}
	if len(changes) != len(want) {
		t.Fatalf("changes = %v; want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("changes[%d] = %v; want %v", i, changes[i], want[i])
		}
	}
}

func TestSetOverrideAndClear(t *testing.T) {
	def := &gamedata.AbilityDefinition{
		AbilityName: "Test_Override",
		OnAbilityStart: []gamedata.ActionDefinition{
			{TypeName: "SetOverrideMapValue", OverrideKey: "RATIO", Value: gamedata.Number(0.9)},
			{TypeName: "ClearOverrideMap"},
		},
		AbilitySpecials: map[string]float32{"RATIO": 0.5},
	}
	tw := newTestWorld(t, def)
	reg, _ := tw.ctx.Abilities.Get(tw.entity)
	_, inst, _ := reg.FindByServerID(1)

	local := LocalID{Kind: ContainerAction, ConfigIdx: int32(gamedata.HookOnAbilityStart), ActionIdx: 1}
	tw.resolver.Resolve(&Invocation{EntityID: 1, InstancedAbilityID: 1, LocalID: local.Encode()})
	tw.drain()
	if got := inst.Special("RATIO", 0); got != 0.9 {
		t.Errorf("RATIO after override = %v; want 0.9", got)
	}

	local.ActionIdx = 2
	tw.resolver.Resolve(&Invocation{EntityID: 1, InstancedAbilityID: 1, LocalID: local.Encode()})
	tw.drain()
	if got := inst.Special("RATIO", 0); got != 0.5 {
		t.Errorf("RATIO after clear = %v; want default 0.5", got)
	}
}

func TestLimboClamp(t *testing.T) {
	def := &gamedata.AbilityDefinition{
		AbilityName: "Test_Limbo",
		OnAbilityStart: []gamedata.ActionDefinition{
			{
				TypeName:                "LoseHP",
				Amount:                  gamedata.Number(500),
				LimboByTargetMaxHPRatio: gamedata.Number(0.1),
				Lethal:                  true,
			},
		},
		AbilitySpecials: map[string]float32{},
	}
	tw := newTestWorld(t, def)

	local := LocalID{Kind: ContainerAction, ConfigIdx: int32(gamedata.HookOnAbilityStart), ActionIdx: 1}
	tw.resolver.Resolve(&Invocation{EntityID: 1, InstancedAbilityID: 1, LocalID: local.Encode()})
	tw.drain()

	// the clamp stops the loss at the 0.1×200=20 HP floor
	if got := tw.props.Get(gamedata.FightPropCurHP); got != 20 {
		t.Errorf("cur hp = %v; want limbo floor 20", got)
	}
}

func TestModifierChangeAndModifierInvoke(t *testing.T) {
	def := &gamedata.AbilityDefinition{
		AbilityName:     "Test_Modifiers",
		AbilitySpecials: map[string]float32{},
	}
	def.Modifiers.UnmarshalJSON([]byte(`{
		"Burn": {
			"onAdded": [
				{"$type": "LoseHP", "amount": 10.0}
			]
		}
	}`))
	tw := newTestWorld(t, def)

	tw.resolver.ResolveModifierChange(&ModifierChange{
		EntityID:            1,
		InstancedAbilityID:  1,
		InstancedModifierID: 7,
		ParentAbilityName:   "Test_Modifiers",
		ModifierLocalID:     0,
		Op:                  ModifierAdded,
	})
	mods, _ := tw.ctx.Modifiers.Get(tw.entity)
	if _, ok := mods.Get(7); !ok {
		t.Fatal("controller 7 not installed")
	}

	// invoke through the controller: modifier-action container, hook 0 = OnAdded
	local := LocalID{Kind: ContainerModifierAction, ModifierIdx: 0, ConfigIdx: 0, ActionIdx: 1}
	tw.resolver.Resolve(&Invocation{
		EntityID:            1,
		InstancedModifierID: 7,
		LocalID:             local.Encode(),
	})
	tw.drain()
	if got := tw.props.Get(gamedata.FightPropCurHP); got != 40 {
		t.Errorf("cur hp = %v; want 40", got)
	}

	tw.resolver.ResolveModifierChange(&ModifierChange{
		EntityID:            1,
		InstancedModifierID: 7,
		Op:                  ModifierRemoved,
	})
	if _, ok := mods.Get(7); ok {
		t.Error("controller 7 still present after removal")
	}
}
