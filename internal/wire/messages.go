package wire

// Message names are version-independent; the codec maps them to cmd ids per
// protocol version.
const (
	MsgAbilityInvocationsNotify          = "AbilityInvocationsNotify"
	MsgCombatInvocationsNotify           = "CombatInvocationsNotify"
	MsgUnionCmdNotify                    = "UnionCmdNotify"
	MsgEntityFightPropUpdateNotify       = "EntityFightPropUpdateNotify"
	MsgEntityFightPropChangeReasonNotify = "EntityFightPropChangeReasonNotify"
	MsgEntityFightPropChangeDebtsNotify  = "EntityFightPropChangeDebtsNotify"
	MsgGMTalkReq                         = "GMTalkReq"
	MsgGMTalkRsp                         = "GMTalkRsp"
	MsgPlayerLoginReq                    = "PlayerLoginReq"
	MsgPlayerLoginRsp                    = "PlayerLoginRsp"
)

// Fixed cmd ids, identical across protocol versions. Login arrives before
// the session has a version, GM talk is routed before the per-version name
// tables are consulted.
const (
	PlayerLoginCmdID uint16 = 101
	GMTalkCmdID      uint16 = 9001
)

// PlayerLoginReq is the first frame of every session. It binds the session
// to a uid and declares the client protocol version.
type PlayerLoginReq struct {
	UID     uint32 `json:"uid"`
	Version string `json:"version"`
}

type PlayerLoginRsp struct {
	Retcode int32  `json:"retcode"`
	UID     uint32 `json:"uid"`
}

// ForwardType is the wire routing hint on a client-originated invoke entry.
type ForwardType int32

const (
	ForwardNone           ForwardType = 0
	ForwardToAll          ForwardType = 1
	ForwardToAllExceptCur ForwardType = 2
	ForwardToHost         ForwardType = 3
)

// AbilityString names an ability either verbatim or by its compact 32-bit
// name hash. Version-dependent clients pick one of the two shapes.
type AbilityString struct {
	Str  string `json:"str,omitempty"`
	Hash uint32 `json:"hash,omitempty"`
}

// AbilityInvokeArgument tags the payload shape of an invoke entry.
type AbilityInvokeArgument int32

const (
	ArgumentNone               AbilityInvokeArgument = 0
	ArgumentMetaModifierChange AbilityInvokeArgument = 1
	ArgumentMetaAddAbility     AbilityInvokeArgument = 2
	ArgumentMetaSetOverride    AbilityInvokeArgument = 3
	ArgumentServerInvoke       AbilityInvokeArgument = 10
)

// AbilityInvokeEntryHead carries the instance and local ids shared by every
// ability invoke argument.
type AbilityInvokeEntryHead struct {
	InstancedAbilityID  uint32 `json:"instancedAbilityId,omitempty"`
	InstancedModifierID uint32 `json:"instancedModifierId,omitempty"`
	LocalID             int32  `json:"localId,omitempty"`
	TargetID            uint32 `json:"targetId,omitempty"`
}

// AbilityInvokeEntry is one element of an AbilityInvocationsNotify batch.
type AbilityInvokeEntry struct {
	Head         AbilityInvokeEntryHead `json:"head"`
	ArgumentType AbilityInvokeArgument  `json:"argumentType"`
	EntityID     uint32                 `json:"entityId"`
	ForwardType  ForwardType            `json:"forwardType"`
	AbilityData  []byte                 `json:"abilityData,omitempty"`
}

type AbilityInvocationsNotify struct {
	Invokes []AbilityInvokeEntry `json:"invokes"`
}

// AbilityMetaModifierChange is the AbilityData payload of a modifier
// lifecycle entry.
type AbilityMetaModifierChange struct {
	Action            int32         `json:"action"` // 1=added, 2=removed
	ParentAbilityName AbilityString `json:"parentAbilityName"`
	ModifierLocalID   int32         `json:"modifierLocalId"`
}

// AbilityMetaAddAbility is the AbilityData payload of an add-new-ability
// entry.
type AbilityMetaAddAbility struct {
	Ability            AbilityString `json:"ability"`
	InstancedAbilityID uint32        `json:"instancedAbilityId"`
}

// AbilityMetaSetOverride is the AbilityData payload of an override-parameter
// write.
type AbilityMetaSetOverride struct {
	Key   string  `json:"key"`
	Value float32 `json:"value"`
}

// CombatInvokeEntry is one element of a CombatInvocationsNotify batch.
type CombatInvokeEntry struct {
	ArgumentType int32       `json:"argumentType"`
	ForwardType  ForwardType `json:"forwardType"`
	CombatData   []byte      `json:"combatData,omitempty"`
}

const (
	CombatEvtBeingHit = 1
	CombatEntityMove  = 3
)

type CombatInvocationsNotify struct {
	InvokeList []CombatInvokeEntry `json:"invokeList"`
}

// EvtBeingHitInfo is the CombatData payload of a being-hit combat entry.
type EvtBeingHitInfo struct {
	AttackResult AttackResult `json:"attackResult"`
}

type AttackResult struct {
	AttackerID uint32  `json:"attackerId"`
	DefenseID  uint32  `json:"defenseId"`
	Damage     float32 `json:"damage"`
}

// UnionCmd is one packed sub-command of a UnionCmdNotify.
type UnionCmd struct {
	MessageID uint16 `json:"messageId"`
	Body      []byte `json:"body"`
}

type UnionCmdNotify struct {
	CmdList []UnionCmd `json:"cmdList"`
}

// EntityFightPropUpdateNotify carries the drained dirty property values of
// one entity.
type EntityFightPropUpdateNotify struct {
	EntityID     uint32             `json:"entityId"`
	FightPropMap map[uint32]float32 `json:"fightPropMap"`
}

// EntityFightPropChangeReasonNotify explains one HP delta.
type EntityFightPropChangeReasonNotify struct {
	EntityID  uint32  `json:"entityId"`
	PropType  uint32  `json:"propType"`
	PropDelta float32 `json:"propDelta"`
	Reason    int32   `json:"reason"`
}

const (
	ReasonAbilityHeal = 1
	ReasonAbilityLose = 2
)

// EntityFightPropChangeDebtsNotify explains one HP-debt delta.
type EntityFightPropChangeDebtsNotify struct {
	EntityID  uint32  `json:"entityId"`
	PropDelta float32 `json:"propDelta"`
	Change    int32   `json:"change"` // event.DebtChange value
}

// GMTalkReq is the administrative text-command packet. It bypasses normal
// message-name dispatch.
type GMTalkReq struct {
	Token string `json:"token"`
	Msg   string `json:"msg"`
}

type GMTalkRsp struct {
	Retcode int32  `json:"retcode"`
	RetMsg  string `json:"retMsg"`
}
