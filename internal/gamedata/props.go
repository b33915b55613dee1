package gamedata

import "strings"

// FightProp identifies one slot of an entity's combat-property table. The
// numeric values are the wire ids used by property-change notifies.
type FightProp uint32

const (
	FightPropNone        FightProp = 0
	FightPropBaseHP      FightProp = 1
	FightPropBaseAttack  FightProp = 4
	FightPropBaseDefense FightProp = 7
	FightPropCurHP       FightProp = 1010
	FightPropCurHPDebts  FightProp = 1020
	FightPropMaxHP       FightProp = 2000
	FightPropCurAttack   FightProp = 2001
	FightPropCurDefense  FightProp = 2002
	FightPropCurSpeed    FightProp = 2003
	FightPropHealAdd     FightProp = 2045
	FightPropHealedAdd   FightProp = 2046
)

// FightPropPrefix marks named references that resolve against the combat
// property table instead of ability specials.
const FightPropPrefix = "FIGHT_PROP_"

var fightPropByName = map[string]FightProp{
	"FIGHT_PROP_BASE_HP":      FightPropBaseHP,
	"FIGHT_PROP_BASE_ATTACK":  FightPropBaseAttack,
	"FIGHT_PROP_BASE_DEFENSE": FightPropBaseDefense,
	"FIGHT_PROP_CUR_HP":       FightPropCurHP,
	"FIGHT_PROP_CUR_HP_DEBTS": FightPropCurHPDebts,
	"FIGHT_PROP_MAX_HP":       FightPropMaxHP,
	"FIGHT_PROP_CUR_ATTACK":   FightPropCurAttack,
	"FIGHT_PROP_CUR_DEFENSE":  FightPropCurDefense,
	"FIGHT_PROP_CUR_SPEED":    FightPropCurSpeed,
	"FIGHT_PROP_HEAL_ADD":     FightPropHealAdd,
	"FIGHT_PROP_HEALED_ADD":   FightPropHealedAdd,
}

// IsFightPropName reports whether a named reference targets the combat
// property table.
func IsFightPropName(s string) bool {
	return strings.HasPrefix(s, FightPropPrefix)
}

// FightPropByName resolves a FIGHT_PROP_* reference to its slot, or
// FightPropNone for names outside the table.
func FightPropByName(s string) FightProp {
	return fightPropByName[s]
}
