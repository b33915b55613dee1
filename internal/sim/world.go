package sim

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aethergs/server/internal/ability"
	"github.com/aethergs/server/internal/component"
	"github.com/aethergs/server/internal/core/ecs"
	"github.com/aethergs/server/internal/core/event"
	coresys "github.com/aethergs/server/internal/core/system"
	"github.com/aethergs/server/internal/gamedata"
	"github.com/aethergs/server/internal/wire"
)

// defaultSceneID is where a fresh player without a snapshot spawns.
const defaultSceneID = 3

// maxEventPasses bounds the immediate event cascade within one tick
// (actions attaching modifiers re-emit into the bus).
const maxEventPasses = 8

// PlayerState is the world's own view of its player.
type PlayerState struct {
	SceneID      uint32
	AvatarID     uint32
	AvatarEntity ecs.EntityID
	AvatarProto  uint32
}

// InPacket is one decoded client message queued for the next tick.
type InPacket struct {
	Head    wire.PacketHead
	CmdID   uint16
	Name    string // empty for the GM route
	Payload []byte
	GM      bool
}

// World is one player's simulation: an ECS container, the ability pipeline,
// and the per-tick phase runner. Everything in here is owned by a single
// goroutine; the only way in is the mailbox.
type World struct {
	UID     uint32
	Version string

	ECS *ecs.World
	Bus *event.Bus
	Ctx *ability.Context

	Resolver *ability.Resolver
	Engine   *ability.Engine
	Output   wire.Output

	Player PlayerState

	deps   *Deps
	runner *coresys.Runner

	protoIndex  map[uint32]ecs.EntityID
	nextProtoID uint32

	inbox    []InPacket
	lastSave time.Time

	Log *zap.Logger
}

// Deps carries the process-wide services a world borrows. All of them are
// injected at assembly; nothing here is an ambient global.
type Deps struct {
	Codec    wire.Codec
	Store    *gamedata.Store
	Scenes   *gamedata.SceneTable
	Avatars  *gamedata.AvatarTable
	Handlers *Registry
	Persist  Saver // nil disables saving
	Scripts  SceneScripts

	// DefaultAvatarID is the template assigned to players with no snapshot.
	DefaultAvatarID uint32
	SaveInterval    time.Duration

	Log *zap.Logger
}

// Saver is the slice of the persistence worker the simulation needs.
type Saver interface {
	Save(uid uint32, data []byte)
}

// SceneScripts is the trigger boundary; nil means no scripting.
type SceneScripts interface {
	OnSceneEnter(sceneID, uid uint32)
	OnGroupLoad(sceneID, groupID uint32)
}

// NewWorld builds a world from a snapshot blob (nil for a fresh player) and
// spawns the player avatar.
func NewWorld(deps *Deps, uid uint32, snapshot []byte, output wire.Output, version string) (*World, error) {
	w := &World{
		UID:         uid,
		Version:     version,
		ECS:         ecs.NewWorld(),
		Bus:         event.NewBus(),
		Output:      output,
		deps:        deps,
		runner:      coresys.NewRunner(),
		protoIndex:  make(map[uint32]ecs.EntityID, 16),
		nextProtoID: 1,
		lastSave:    time.Now(),
		Log:         deps.Log.With(zap.Uint32("uid", uid)),
	}

	abilities := ecs.NewStore[component.InstancedAbilities]()
	modifiers := ecs.NewStore[component.InstancedModifiers]()
	props := ecs.NewStore[component.FightProperties]()
	info := ecs.NewStore[component.EntityInfo]()
	w.ECS.RegisterStore(abilities)
	w.ECS.RegisterStore(modifiers)
	w.ECS.RegisterStore(props)
	w.ECS.RegisterStore(info)

	w.Ctx = &ability.Context{
		World:     w.ECS,
		Bus:       w.Bus,
		Store:     deps.Store,
		Abilities: abilities,
		Modifiers: modifiers,
		Props:     props,
		Info:      info,
		ResolveProto: func(protoID uint32) (ecs.EntityID, bool) {
			id, ok := w.protoIndex[protoID]
			return id, ok
		},
		Log: w.Log,
	}
	w.Resolver = ability.NewResolver(w.Ctx)
	w.Engine = ability.NewEngine(w.Ctx)
	w.Engine.Subscribe()
	w.subscribeNotifies()
	w.subscribeTriggers()

	w.runner.Register(&inputSystem{w})
	w.runner.Register(&eventSystem{w})
	w.runner.Register(&syncSystem{w})
	w.runner.Register(&persistSystem{w})
	w.runner.Register(&cleanupSystem{w})

	if err := w.spawnPlayer(snapshot); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *World) spawnPlayer(snapshot []byte) error {
	snap := &PlayerSnapshot{UID: w.UID, SceneID: defaultSceneID}
	if snapshot != nil {
		parsed, err := ParseSnapshot(snapshot)
		if err != nil {
			return err
		}
		snap = parsed
	}

	avatarID := snap.AvatarID
	if avatarID == 0 {
		avatarID = w.deps.DefaultAvatarID
	}
	tmpl := w.deps.Avatars.Get(avatarID)
	if tmpl == nil {
		return fmt.Errorf("uid %d: unknown avatar %d", w.UID, avatarID)
	}

	entity, protoID := w.SpawnEntity(component.EntityKindAvatar, 0)
	if inf, ok := w.Ctx.Info.Get(entity); ok {
		inf.AvatarID = avatarID
	}

	fp := component.NewFightProperties()
	for prop, v := range tmpl.BaseProps {
		fp.Seed(prop, v)
	}
	for prop, v := range snap.FightProps {
		fp.Seed(gamedata.FightProp(prop), v)
	}
	w.Ctx.Props.Set(entity, fp)

	reg := component.NewInstancedAbilities(w.deps.Store, w.Log)
	for i, name := range tmpl.Abilities {
		if _, _, ok := reg.AddOrReplaceByServerID(uint32(i+1), name); !ok {
			w.Log.Warn("avatar ability not found", zap.String("ability", name))
		}
	}
	w.Ctx.Abilities.Set(entity, reg)
	w.Ctx.Modifiers.Set(entity, component.NewInstancedModifiers())

	w.Player = PlayerState{
		SceneID:      snap.SceneID,
		AvatarID:     avatarID,
		AvatarEntity: entity,
		AvatarProto:  protoID,
	}

	event.Emit(w.Bus, event.SceneEntered{SceneID: snap.SceneID})
	return nil
}

// SpawnEntity creates an entity with an EntityInfo and registers it in the
// proto index. ownerProto is non-zero for owned gadgets/summons.
func (w *World) SpawnEntity(kind component.EntityKind, ownerProto uint32) (ecs.EntityID, uint32) {
	entity := w.ECS.CreateEntity()
	protoID := w.nextProtoID
	w.nextProtoID++
	w.Ctx.Info.Set(entity, &component.EntityInfo{
		ProtoID:      protoID,
		OwnerProtoID: ownerProto,
		Kind:         kind,
	})
	w.protoIndex[protoID] = entity
	return entity, protoID
}

// DespawnEntity queues an entity for end-of-tick destruction and drops its
// proto index entry.
func (w *World) DespawnEntity(entity ecs.EntityID) {
	if inf, ok := w.Ctx.Info.Get(entity); ok {
		delete(w.protoIndex, inf.ProtoID)
	}
	w.ECS.MarkForDestruction(entity)
}

// AddPacket queues one decoded client message for the next tick.
func (w *World) AddPacket(head wire.PacketHead, cmdID uint16, name string, payload []byte, gm bool) {
	if head.Version != "" {
		w.Version = head.Version
	}
	w.inbox = append(w.inbox, InPacket{Head: head, CmdID: cmdID, Name: name, Payload: payload, GM: gm})
}

// Dispatch runs the registered handler for name against this world. Used by
// handlers that unpack nested messages (union commands).
func (w *World) Dispatch(name string, head wire.PacketHead, payload []byte) {
	w.deps.Handlers.Dispatch(w, name, head, payload)
}

// Update runs one full tick.
func (w *World) Update(dt time.Duration) {
	w.runner.Tick(dt)
}

// ShouldSave reports whether enough wall clock has passed since the last
// save and the current scene is in the savable allow-list.
func (w *World) ShouldSave(now time.Time) bool {
	if w.deps.Persist == nil {
		return false
	}
	if now.Sub(w.lastSave) < w.deps.SaveInterval {
		return false
	}
	return w.deps.Scenes.Savable(w.Player.SceneID)
}

// SerializePlayer produces the opaque snapshot blob.
func (w *World) SerializePlayer() ([]byte, error) {
	snap := &PlayerSnapshot{
		UID:      w.UID,
		SceneID:  w.Player.SceneID,
		AvatarID: w.Player.AvatarID,
	}
	if fp, ok := w.Ctx.Props.Get(w.Player.AvatarEntity); ok {
		all := fp.All()
		snap.FightProps = make(map[uint32]float32, len(all))
		for prop, v := range all {
			snap.FightProps[uint32(prop)] = v
		}
	}
	return snap.Marshal()
}

// Save serializes and hands the snapshot to the persistence worker.
// Best-effort: failures are logged, never propagated into the loop.
func (w *World) Save(now time.Time) {
	if w.deps.Persist == nil {
		return
	}
	data, err := w.SerializePlayer()
	if err != nil {
		w.Log.Error("snapshot serialize failed", zap.Error(err))
		return
	}
	w.deps.Persist.Save(w.UID, data)
	w.lastSave = now
}

// subscribeNotifies turns change-reason events into outbound notifies.
func (w *World) subscribeNotifies() {
	event.Subscribe(w.Bus, func(ev event.HPChanged) {
		reason := int32(wire.ReasonAbilityLose)
		if ev.Heal {
			reason = wire.ReasonAbilityHeal
		}
		w.Output.Send(w.UID, wire.MsgEntityFightPropChangeReasonNotify, &wire.EntityFightPropChangeReasonNotify{
			EntityID:  w.protoOf(ev.Entity),
			PropType:  uint32(gamedata.FightPropCurHP),
			PropDelta: ev.Delta,
			Reason:    reason,
		})
	})
	event.Subscribe(w.Bus, func(ev event.DebtChanged) {
		w.Output.Send(w.UID, wire.MsgEntityFightPropChangeDebtsNotify, &wire.EntityFightPropChangeDebtsNotify{
			EntityID:  w.protoOf(ev.Entity),
			PropDelta: ev.Delta,
			Change:    int32(ev.Change),
		})
	})
}

// subscribeTriggers wires scene-entry events into the Lua trigger engine.
func (w *World) subscribeTriggers() {
	if w.deps.Scripts == nil {
		return
	}
	event.Subscribe(w.Bus, func(ev event.SceneEntered) {
		w.deps.Scripts.OnSceneEnter(ev.SceneID, w.UID)
		if info := w.deps.Scenes.Get(ev.SceneID); info != nil {
			for _, gid := range info.GroupIDs {
				w.deps.Scripts.OnGroupLoad(ev.SceneID, gid)
			}
		}
	})
}

func (w *World) protoOf(entity ecs.EntityID) uint32 {
	if inf, ok := w.Ctx.Info.Get(entity); ok {
		return inf.ProtoID
	}
	return 0
}

// ── per-world systems ──

type inputSystem struct{ w *World }

func (s *inputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *inputSystem) Update(_ time.Duration) {
	w := s.w
	if len(w.inbox) == 0 {
		return
	}
	queue := w.inbox
	w.inbox = nil
	for i := range queue {
		pkt := &queue[i]
		if pkt.GM {
			w.deps.Handlers.DispatchGM(w, pkt.Head, pkt.Payload)
			continue
		}
		w.deps.Handlers.Dispatch(w, pkt.Name, pkt.Head, pkt.Payload)
	}
}

type eventSystem struct{ w *World }

func (s *eventSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *eventSystem) Update(_ time.Duration) {
	bus := s.w.Bus
	for pass := 0; pass < maxEventPasses; pass++ {
		bus.SwapBuffers()
		bus.DispatchAll()
		if !bus.Pending() {
			return
		}
	}
}

type syncSystem struct{ w *World }

func (s *syncSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *syncSystem) Update(_ time.Duration) {
	w := s.w
	ecs.Each2(w.Ctx.Props, w.Ctx.Info, func(_ ecs.EntityID, fp *component.FightProperties, inf *component.EntityInfo) {
		if fp.DirtyCount() == 0 {
			return
		}
		ntf := &wire.EntityFightPropUpdateNotify{
			EntityID:     inf.ProtoID,
			FightPropMap: make(map[uint32]float32, fp.DirtyCount()),
		}
		fp.Flush(func(prop gamedata.FightProp, value float32) {
			ntf.FightPropMap[uint32(prop)] = value
		})
		w.Output.Send(w.UID, wire.MsgEntityFightPropUpdateNotify, ntf)
	})
}

type persistSystem struct{ w *World }

func (s *persistSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *persistSystem) Update(_ time.Duration) {
	now := time.Now()
	if s.w.ShouldSave(now) {
		s.w.Save(now)
	}
}

type cleanupSystem struct{ w *World }

func (s *cleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *cleanupSystem) Update(_ time.Duration) {
	s.w.ECS.FlushDestroyQueue()
}
