package gamedata

import (
	"encoding/json"
	"fmt"
)

// DynamicFloat is the tagged-union numeric expression used throughout ability
// definitions: a literal number, a named reference (ability special or fight
// property), or a postfix array mixing operands with ADD/SUB/MUL/DIV tokens.
type DynamicFloat struct {
	Kind DynamicKind
	Num  float64
	Name string
	Ops  []DynamicToken
}

type DynamicKind int

const (
	DynamicNone DynamicKind = iota // absent
	DynamicNumber
	DynamicName
	DynamicArray
)

// DynamicToken is one element of the array form: either a literal number or
// a name (which may be an operator token, resolved at evaluation time).
type DynamicToken struct {
	IsName bool
	Num    float64
	Name   string
}

// Number builds a literal DynamicFloat. Test and seed helper.
func Number(n float64) *DynamicFloat {
	return &DynamicFloat{Kind: DynamicNumber, Num: n}
}

// Named builds a named-reference DynamicFloat.
func Named(s string) *DynamicFloat {
	return &DynamicFloat{Kind: DynamicName, Name: s}
}

// Array builds a postfix-array DynamicFloat from raw tokens.
func Array(toks ...DynamicToken) *DynamicFloat {
	return &DynamicFloat{Kind: DynamicArray, Ops: toks}
}

func Op(name string) DynamicToken  { return DynamicToken{IsName: true, Name: name} }
func Lit(n float64) DynamicToken   { return DynamicToken{Num: n} }
func Ref(name string) DynamicToken { return DynamicToken{IsName: true, Name: name} }

func (d *DynamicFloat) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		d.Kind = DynamicNumber
		d.Num = v
	case string:
		d.Kind = DynamicName
		d.Name = v
	case []any:
		d.Kind = DynamicArray
		d.Ops = make([]DynamicToken, 0, len(v))
		for i, item := range v {
			switch t := item.(type) {
			case float64:
				d.Ops = append(d.Ops, DynamicToken{Num: t})
			case string:
				d.Ops = append(d.Ops, DynamicToken{IsName: true, Name: t})
			default:
				return fmt.Errorf("dynamic float: array element %d has type %T", i, item)
			}
		}
	case bool:
		// some authored graphs abuse booleans as 0/1 flags
		d.Kind = DynamicNumber
		if v {
			d.Num = 1
		}
	default:
		return fmt.Errorf("dynamic float: unsupported type %T", raw)
	}
	return nil
}
