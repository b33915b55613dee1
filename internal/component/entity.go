package component

// EntityKind classifies a world entity for wire serialization.
type EntityKind int32

const (
	EntityKindAvatar EntityKind = iota + 1
	EntityKindMonster
	EntityKindGadget
)

// EntityInfo carries the wire-facing identity of a world entity. ProtoID is
// the id clients reference in invocations; OwnerProtoID is non-zero for
// owned entities (summons, deployables) whose ability caster resolves to the
// owner instead of the entity itself.
type EntityInfo struct {
	ProtoID      uint32
	OwnerProtoID uint32
	Kind         EntityKind
	AvatarID     uint32 // non-zero for avatar entities
}
