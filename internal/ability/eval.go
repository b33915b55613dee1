package ability

import (
	"strconv"
	"strings"

	"github.com/aethergs/server/internal/component"
	"github.com/aethergs/server/internal/gamedata"
)

// Operator tokens recognized inside the array form of a DynamicFloat. The
// priority order is the tie-break when several operator kinds are present:
// the earlier kind in this list reduces first regardless of position.
var evalOperators = [...]string{"ADD", "SUB", "MUL", "DIV"}

// Evaluate resolves a DynamicFloat against an ability instance's override
// map and an optional combat-property table. Deterministic and side-effect
// free; def is returned for unresolvable named references.
func Evaluate(inst *component.InstancedAbility, props *component.FightProperties, expr *gamedata.DynamicFloat, def float32) float32 {
	if expr == nil {
		return def
	}
	switch expr.Kind {
	case gamedata.DynamicNumber:
		return float32(expr.Num)
	case gamedata.DynamicName:
		return evalName(inst, props, expr.Name, def)
	case gamedata.DynamicArray:
		return evalArray(inst, props, expr.Ops, def)
	}
	return def
}

func evalName(inst *component.InstancedAbility, props *component.FightProperties, name string, def float32) float32 {
	if f, err := strconv.ParseFloat(name, 32); err == nil {
		return float32(f)
	}
	if gamedata.IsFightPropName(name) {
		if props == nil {
			return 0
		}
		return props.Get(gamedata.FightPropByName(name))
	}
	if inst == nil {
		return def
	}
	return inst.Special(name, def)
}

// evalToken is one cell of the working array during postfix reduction:
// either a resolved number or a retained operator marker.
type evalToken struct {
	op  int // index into evalOperators, -1 for a number
	num float32
}

// evalArray runs the left-to-right postfix reduction. Each reduction step
// consumes the first occurrence of the highest-priority operator kind still
// present plus its up-to-two preceding operands. A division by zero aborts
// the reduction (bounded, never loops) and yields the last computed scalar.
func evalArray(inst *component.InstancedAbility, props *component.FightProperties, ops []gamedata.DynamicToken, def float32) float32 {
	work := make([]evalToken, 0, len(ops))
	for _, t := range ops {
		if t.IsName {
			if op := operatorIndex(t.Name); op >= 0 {
				work = append(work, evalToken{op: op})
				continue
			}
			work = append(work, evalToken{op: -1, num: evalName(inst, props, t.Name, def)})
			continue
		}
		work = append(work, evalToken{op: -1, num: float32(t.Num)})
	}

	var last float32
	for steps := 0; steps <= len(ops); steps++ {
		pos, op := nextOperator(work)
		if pos < 0 {
			return last
		}
		var a, b float32
		if pos >= 1 {
			b = work[pos-1].num
		}
		if pos >= 2 {
			a = work[pos-2].num
		}
		var v float32
		switch op {
		case 0:
			v = a + b
		case 1:
			v = a - b
		case 2:
			v = a * b
		case 3:
			if b == 0 {
				// stuck reduction; bail out instead of spinning
				return last
			}
			v = a / b
		}
		start := pos - 2
		if start < 0 {
			start = 0
		}
		work[start] = evalToken{op: -1, num: v}
		work = append(work[:start+1], work[pos+1:]...)
		last = v
	}
	return last
}

// nextOperator finds the reduction site: the first position of the
// highest-priority operator kind present anywhere in the array.
func nextOperator(work []evalToken) (pos, op int) {
	for opIdx := range evalOperators {
		for i, t := range work {
			if t.op == opIdx {
				return i, opIdx
			}
		}
	}
	return -1, -1
}

func operatorIndex(name string) int {
	for i, op := range evalOperators {
		if strings.EqualFold(name, op) {
			return i
		}
	}
	return -1
}
