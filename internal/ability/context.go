package ability

import (
	"go.uber.org/zap"

	"github.com/aethergs/server/internal/component"
	"github.com/aethergs/server/internal/core/ecs"
	"github.com/aethergs/server/internal/core/event"
	"github.com/aethergs/server/internal/gamedata"
)

// Context bundles one world's component stores and services for the ability
// pipeline. Everything here is owned by the world goroutine; the gamedata
// store is the only cross-world member and it is immutable.
type Context struct {
	World     *ecs.World
	Bus       *event.Bus
	Store     *gamedata.Store
	Abilities *ecs.Store[component.InstancedAbilities]
	Modifiers *ecs.Store[component.InstancedModifiers]
	Props     *ecs.Store[component.FightProperties]
	Info      *ecs.Store[component.EntityInfo]

	// ResolveProto maps a wire entity id onto the live ECS entity, if any.
	ResolveProto func(protoID uint32) (ecs.EntityID, bool)

	Log *zap.Logger
}

// entityByProto is the common miss-tolerant lookup: zero ids and despawned
// entities both come back false.
func (c *Context) entityByProto(protoID uint32) (ecs.EntityID, bool) {
	if protoID == 0 {
		return 0, false
	}
	id, ok := c.ResolveProto(protoID)
	if !ok || !c.World.Alive(id) {
		return 0, false
	}
	return id, true
}
