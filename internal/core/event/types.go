package event

import (
	"github.com/aethergs/server/internal/core/ecs"
	"github.com/aethergs/server/internal/gamedata"
)

// ExecuteAction is emitted by the invocation resolver once per resolved
// invocation. The action engine runs the handler on the next dispatch pass.
type ExecuteAction struct {
	AbilityEntity ecs.EntityID
	TargetEntity  ecs.EntityID
	AbilityIndex  uint32
	Action        *gamedata.ActionDefinition
	AbilityData   []byte
}

// ExecuteMixin mirrors ExecuteAction for the mixin index space.
type ExecuteMixin struct {
	AbilityEntity ecs.EntityID
	TargetEntity  ecs.EntityID
	AbilityIndex  uint32
	Mixin         *gamedata.MixinDefinition
	AbilityData   []byte
}

// DebtChange classifies an HP-debt mutation for the change-reason notify.
type DebtChange int32

const (
	DebtAdded DebtChange = iota + 1
	DebtPaid
	DebtFinished
)

// HPChanged is emitted by HP-mutating action handlers. Delta is signed
// (positive for heal, negative for damage).
type HPChanged struct {
	Entity ecs.EntityID
	Delta  float32
	Heal   bool
}

// DebtChanged is emitted by the HP-debt action handlers.
type DebtChanged struct {
	Entity ecs.EntityID
	Delta  float32
	Change DebtChange
}

// SceneEntered fires when the player's avatar enters a scene; the scripting
// trigger system listens for it.
type SceneEntered struct {
	SceneID uint32
	GroupID uint32
}
