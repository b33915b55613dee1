package gamedata

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AbilityDefinition is one parsed ability graph. Definitions are immutable
// after Store.Freeze and shared read-only across every world goroutine;
// per-entity instances hold plain pointers into them.
type AbilityDefinition struct {
	AbilityName     string             `json:"abilityName"`
	Modifiers       OrderedModifiers   `json:"modifiers"`
	OnAdded         []ActionDefinition `json:"onAdded"`
	OnRemoved       []ActionDefinition `json:"onRemoved"`
	OnAbilityStart  []ActionDefinition `json:"onAbilityStart"`
	OnKill          []ActionDefinition `json:"onKill"`
	OnFieldEnter    []ActionDefinition `json:"onFieldEnter"`
	OnFieldExit     []ActionDefinition `json:"onFieldExit"`
	OnAttach        []ActionDefinition `json:"onAttach"`
	OnDetach        []ActionDefinition `json:"onDetach"`
	AbilitySpecials map[string]float32 `json:"abilitySpecials"`
	AbilityMixins   []MixinDefinition  `json:"abilityMixins"`
}

// ModifierDefinition is a named sub-unit of an ability with its own event
// hooks and mixins.
type ModifierDefinition struct {
	Name            string             `json:"-"` // key in the parent modifiers object
	Duration        *DynamicFloat      `json:"duration"`
	StackingKey     string             `json:"stacking"`
	ThinkInterval   *DynamicFloat      `json:"thinkInterval"`
	OnAdded         []ActionDefinition `json:"onAdded"`
	OnRemoved       []ActionDefinition `json:"onRemoved"`
	OnBeingHit      []ActionDefinition `json:"onBeingHit"`
	OnAttackLanded  []ActionDefinition `json:"onAttackLanded"`
	OnKill          []ActionDefinition `json:"onKill"`
	OnThinkInterval []ActionDefinition `json:"onThinkInterval"`
	ModifierMixins  []MixinDefinition  `json:"modifierMixins"`
}

// ActionDefinition is one node of the recursive action tree. Every field is
// optional; TypeName selects the handler and unknown types are tolerated.
// Actions and SuccessActions/FailActions are mutually exclusive at flatten
// time: children come from Actions when it is non-empty, otherwise from
// SuccessActions followed by FailActions.
type ActionDefinition struct {
	TypeName string `json:"$type"`

	Amount                       *DynamicFloat `json:"amount"`
	AmountByCasterMaxHPRatio     *DynamicFloat `json:"amountByCasterMaxHPRatio"`
	AmountByCasterAttackRatio    *DynamicFloat `json:"amountByCasterAttackRatio"`
	AmountByCasterCurrentHPRatio *DynamicFloat `json:"amountByCasterCurrentHPRatio"`
	AmountByTargetMaxHPRatio     *DynamicFloat `json:"amountByTargetMaxHPRatio"`
	AmountByTargetCurrentHPRatio *DynamicFloat `json:"amountByTargetCurrentHPRatio"`
	LimboByTargetMaxHPRatio      *DynamicFloat `json:"limboByTargetMaxHPRatio"`

	HealRatio             *DynamicFloat `json:"healRatio"`
	IgnoreAbilityProperty bool          `json:"ignoreAbilityProperty"`
	Lethal                bool          `json:"lethal"`

	Value       *DynamicFloat `json:"value"`
	OverrideKey string        `json:"overrideMapKey"`

	ModifierName string `json:"modifierName"`

	Actions        []ActionDefinition `json:"actions"`
	SuccessActions []ActionDefinition `json:"successActions"`
	FailActions    []ActionDefinition `json:"failActions"`
}

// MixinDefinition is an action-like unit dispatched through a separate index
// space from actions.
type MixinDefinition struct {
	TypeName     string        `json:"$type"`
	ModifierName string        `json:"modifierName"`
	Value        *DynamicFloat `json:"value"`
}

// OrderedModifiers preserves the JSON object key order of an ability's
// modifiers block. local_id decoding indexes modifiers positionally, so the
// stock map[string] decode would scramble the wire contract.
type OrderedModifiers struct {
	list   []*ModifierDefinition
	byName map[string]*ModifierDefinition
}

func (m *OrderedModifiers) Len() int { return len(m.list) }

// At returns the modifier at its definition-order position.
func (m *OrderedModifiers) At(i int) (*ModifierDefinition, bool) {
	if i < 0 || i >= len(m.list) {
		return nil, false
	}
	return m.list[i], true
}

func (m *OrderedModifiers) Get(name string) (*ModifierDefinition, bool) {
	md, ok := m.byName[name]
	return md, ok
}

func (m *OrderedModifiers) Each(fn func(i int, md *ModifierDefinition)) {
	for i, md := range m.list {
		fn(i, md)
	}
}

func (m *OrderedModifiers) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("modifiers: expected object, got %v", tok)
	}
	m.list = m.list[:0]
	m.byName = make(map[string]*ModifierDefinition)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name := keyTok.(string)
		md := &ModifierDefinition{Name: name}
		if err := dec.Decode(md); err != nil {
			return fmt.Errorf("modifier %q: %w", name, err)
		}
		m.list = append(m.list, md)
		m.byName[name] = md
	}
	// consume closing '}'
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// HookKind selects one of an ability's (or modifier's) event-hook action
// lists. The wire encodes it as the config index of an Action local_id.
type HookKind int32

const (
	HookOnAdded HookKind = iota
	HookOnRemoved
	HookOnAbilityStart
	HookOnKill
	HookOnFieldEnter
	HookOnFieldExit
	HookOnAttach
	HookOnDetach
	hookKindCount
)

// HookList returns the ability's action list for the given hook, or nil/false
// for an out-of-range hook index.
func (a *AbilityDefinition) HookList(k HookKind) ([]ActionDefinition, bool) {
	switch k {
	case HookOnAdded:
		return a.OnAdded, true
	case HookOnRemoved:
		return a.OnRemoved, true
	case HookOnAbilityStart:
		return a.OnAbilityStart, true
	case HookOnKill:
		return a.OnKill, true
	case HookOnFieldEnter:
		return a.OnFieldEnter, true
	case HookOnFieldExit:
		return a.OnFieldExit, true
	case HookOnAttach:
		return a.OnAttach, true
	case HookOnDetach:
		return a.OnDetach, true
	}
	return nil, false
}

// HookList returns the modifier's action list for the given config index.
// Modifiers have their own positional hook order; the wire shares the same
// 6-bit config field for both spaces.
func (m *ModifierDefinition) HookList(k HookKind) ([]ActionDefinition, bool) {
	switch int32(k) {
	case 0:
		return m.OnAdded, true
	case 1:
		return m.OnRemoved, true
	case 2:
		return m.OnBeingHit, true
	case 3:
		return m.OnAttackLanded, true
	case 4:
		return m.OnKill, true
	case 5:
		return m.OnThinkInterval, true
	}
	return nil, false
}
