package ability

// ActionKind is the closed tagged-union over known action type names, with
// an explicit Unknown variant so unhandled types degrade to a logged drop
// instead of string matching at every call site.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionHealHP
	ActionLoseHP
	ActionAddHPDebts
	ActionReduceHPDebts
	ActionSetOverrideMapValue
	ActionClearOverrideMap
	ActionAttachModifier
	ActionRemoveModifier
)

var actionKinds = map[string]ActionKind{
	"HealHP":              ActionHealHP,
	"LoseHP":              ActionLoseHP,
	"AddHPDebts":          ActionAddHPDebts,
	"ReduceHPDebts":       ActionReduceHPDebts,
	"SetOverrideMapValue": ActionSetOverrideMapValue,
	"ClearOverrideMap":    ActionClearOverrideMap,
	"AttachModifier":      ActionAttachModifier,
	"RemoveModifier":      ActionRemoveModifier,
}

// KindOf classifies an action type name; unrecognized names (including the
// empty tag) map to ActionUnknown.
func KindOf(typeName string) ActionKind {
	return actionKinds[typeName]
}
