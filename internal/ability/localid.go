package ability

import "errors"

// ContainerKind is the low-3-bit tag of a local_id, selecting which index
// space the remaining bit groups address.
type ContainerKind int32

const (
	ContainerAction         ContainerKind = 1
	ContainerMixin          ContainerKind = 2
	ContainerModifierAction ContainerKind = 3
	ContainerModifierMixin  ContainerKind = 4
)

// ErrBadLocalID marks a local_id whose container tag is outside the known
// range. Malformed protocol input, recoverable: the single invocation is
// dropped.
var ErrBadLocalID = errors.New("ability: malformed local_id container tag")

// LocalID is the decoded form of the 32-bit wire local_id: a container tag
// plus up to four 6-bit indices whose order and count depend on the tag.
// Unused fields are zero.
type LocalID struct {
	Kind        ContainerKind
	ActionIdx   int32
	ConfigIdx   int32
	MixinIdx    int32
	ModifierIdx int32
}

const localIDFieldMask = 0x3f // 6-bit groups

// DecodeLocalID unpacks a wire local_id.
func DecodeLocalID(localID int32) (LocalID, error) {
	v := uint32(localID)
	out := LocalID{Kind: ContainerKind(v & 0x7)}
	switch out.Kind {
	case ContainerAction:
		out.ConfigIdx = int32(v >> 3 & localIDFieldMask)
		out.ActionIdx = int32(v >> 9 & localIDFieldMask)
	case ContainerMixin:
		out.MixinIdx = int32(v >> 3 & localIDFieldMask)
		out.ConfigIdx = int32(v >> 9 & localIDFieldMask)
		out.ActionIdx = int32(v >> 15 & localIDFieldMask)
	case ContainerModifierAction:
		out.ModifierIdx = int32(v >> 3 & localIDFieldMask)
		out.ConfigIdx = int32(v >> 9 & localIDFieldMask)
		out.ActionIdx = int32(v >> 15 & localIDFieldMask)
	case ContainerModifierMixin:
		out.ModifierIdx = int32(v >> 3 & localIDFieldMask)
		out.MixinIdx = int32(v >> 9 & localIDFieldMask)
		out.ConfigIdx = int32(v >> 15 & localIDFieldMask)
		out.ActionIdx = int32(v >> 21 & localIDFieldMask)
	default:
		return LocalID{}, ErrBadLocalID
	}
	return out, nil
}

// Encode packs the decoded form back into the wire representation. Inverse
// of DecodeLocalID for in-range field values.
func (l LocalID) Encode() int32 {
	v := uint32(l.Kind) & 0x7
	switch l.Kind {
	case ContainerAction:
		v |= uint32(l.ConfigIdx&localIDFieldMask) << 3
		v |= uint32(l.ActionIdx&localIDFieldMask) << 9
	case ContainerMixin:
		v |= uint32(l.MixinIdx&localIDFieldMask) << 3
		v |= uint32(l.ConfigIdx&localIDFieldMask) << 9
		v |= uint32(l.ActionIdx&localIDFieldMask) << 15
	case ContainerModifierAction:
		v |= uint32(l.ModifierIdx&localIDFieldMask) << 3
		v |= uint32(l.ConfigIdx&localIDFieldMask) << 9
		v |= uint32(l.ActionIdx&localIDFieldMask) << 15
	case ContainerModifierMixin:
		v |= uint32(l.ModifierIdx&localIDFieldMask) << 3
		v |= uint32(l.MixinIdx&localIDFieldMask) << 9
		v |= uint32(l.ConfigIdx&localIDFieldMask) << 15
		v |= uint32(l.ActionIdx&localIDFieldMask) << 21
	}
	return int32(v)
}
