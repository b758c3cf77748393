// Package value implements the runtime value model shared by the Dogma
// compiler and evaluator: a tagged union over null, boolean, integer,
// decimal, string, octets, list, and object.
package value

import (
	"fmt"
	"math"
)

// Kind identifies the variant held by a V.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindInteger
	KindDecimal
	KindString
	KindOctets
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindOctets:
		return "octets"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Field is one entry of an Object, in insertion order.
type Field struct {
	Name  string
	Value V
}

// V is the universal runtime value. All cases are immutable once
// constructed; mutating accessors on List/Object return new values.
type V struct {
	kind    Kind
	boolean bool
	integer int64
	decimal float64
	str     string
	octets  []byte
	list    []V
	fields  []Field
}

// Null returns the Null value.
func Null() V { return V{kind: KindNull} }

// Bool returns a Boolean value.
func Bool(b bool) V { return V{kind: KindBoolean, boolean: b} }

// Int returns an Integer value.
func Int(i int64) V { return V{kind: KindInteger, integer: i} }

// Decimal returns a Decimal value.
func Decimal(f float64) V { return V{kind: KindDecimal, decimal: f} }

// Str returns a String value.
func Str(s string) V { return V{kind: KindString, str: s} }

// Octets returns an Octets value. The slice is copied.
func Octets(b []byte) V {
	cp := make([]byte, len(b))
	copy(cp, b)
	return V{kind: KindOctets, octets: cp}
}

// List returns a List value. The slice is copied.
func List(items []V) V {
	cp := make([]V, len(items))
	copy(cp, items)
	return V{kind: KindList, list: cp}
}

// Object returns an Object value from ordered fields. Field names must be
// unique; callers (the decoder, the evaluator) are responsible for that
// invariant per spec §3.
func Object(fields []Field) V {
	cp := make([]Field, len(fields))
	copy(cp, fields)
	return V{kind: KindObject, fields: cp}
}

func (v V) Kind() Kind { return v.kind }

func (v V) AsBool() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.boolean, true
}

func (v V) AsInt() (int64, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	return v.integer, true
}

func (v V) AsDecimal() (float64, bool) {
	if v.kind != KindDecimal {
		return 0, false
	}
	return v.decimal, true
}

func (v V) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

func (v V) AsOctets() ([]byte, bool) {
	if v.kind != KindOctets {
		return nil, false
	}
	return v.octets, true
}

func (v V) AsList() ([]V, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

func (v V) AsObject() ([]Field, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.fields, true
}

// Field looks up a field by name, in O(n). Objects are normally small
// (policy input shapes), so no index is maintained.
func (v V) Field(name string) (V, bool) {
	if v.kind != KindObject {
		return V{}, false
	}
	for _, f := range v.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return V{}, false
}

// WithField returns a copy of the Object with name set to val, preserving
// the position of an existing field or appending a new one at the end.
func (v V) WithField(name string, val V) V {
	fields := make([]Field, len(v.fields))
	copy(fields, v.fields)
	for i, f := range fields {
		if f.Name == name {
			fields[i].Value = val
			return V{kind: KindObject, fields: fields}
		}
	}
	fields = append(fields, Field{Name: name, Value: val})
	return V{kind: KindObject, fields: fields}
}

// Equal implements structural equality per spec §4.3: NaN never equals
// NaN, and integer/decimal only compare equal within the same kind.
func Equal(a, b V) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBoolean:
		return a.boolean == b.boolean
	case KindInteger:
		return a.integer == b.integer
	case KindDecimal:
		if math.IsNaN(a.decimal) || math.IsNaN(b.decimal) {
			return false
		}
		return a.decimal == b.decimal
	case KindString:
		return a.str == b.str
	case KindOctets:
		if len(a.octets) != len(b.octets) {
			return false
		}
		for i := range a.octets {
			if a.octets[i] != b.octets[i] {
				return false
			}
		}
		return true
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.fields) != len(b.fields) {
			return false
		}
		for _, fa := range a.fields {
			fb, ok := b.Field(fa.Name)
			if !ok || !Equal(fa.Value, fb) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders a debug form; not used for the wire format.
func (v V) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBoolean:
		return fmt.Sprintf("%t", v.boolean)
	case KindInteger:
		return fmt.Sprintf("%d", v.integer)
	case KindDecimal:
		return fmt.Sprintf("%g", v.decimal)
	case KindString:
		return fmt.Sprintf("%q", v.str)
	case KindOctets:
		return fmt.Sprintf("octets(%d bytes)", len(v.octets))
	case KindList:
		return fmt.Sprintf("list(%d)", len(v.list))
	case KindObject:
		return fmt.Sprintf("object(%d)", len(v.fields))
	default:
		return "<invalid>"
	}
}
