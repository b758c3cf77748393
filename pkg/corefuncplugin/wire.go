// Package corefuncplugin lets a core function (spec §4.4) live in a
// separate OS process, hosted via HashiCorp's go-plugin over net/rpc
// rather than gRPC: a core function's wire contract is one call and one
// reply, small enough that hand-written gob-friendly structs beat a
// protobuf build step. Adapted from the teacher's pkg/pluginsdk, which
// serves the same "host loads an external binary, talks a fixed
// protocol to it" role for game-event plugins.
package corefuncplugin

import "github.com/seedwing-io/dogma-engine/internal/dogma/value"

// WireValue is a gob-encodable mirror of value.V. value.V's fields are
// unexported (by design, to keep it an immutable tagged union), so it
// cannot cross a net/rpc boundary directly.
type WireValue struct {
	Kind    int
	Bool    bool
	Int     int64
	Decimal float64
	Str     string
	Octets  []byte
	List    []WireValue
	Fields  []WireField
}

// WireField mirrors value.Field.
type WireField struct {
	Name  string
	Value WireValue
}

// ToWire converts a runtime value to its wire form.
func ToWire(v value.V) WireValue {
	switch v.Kind() {
	case value.KindNull:
		return WireValue{Kind: int(value.KindNull)}
	case value.KindBoolean:
		b, _ := v.AsBool()
		return WireValue{Kind: int(value.KindBoolean), Bool: b}
	case value.KindInteger:
		i, _ := v.AsInt()
		return WireValue{Kind: int(value.KindInteger), Int: i}
	case value.KindDecimal:
		d, _ := v.AsDecimal()
		return WireValue{Kind: int(value.KindDecimal), Decimal: d}
	case value.KindString:
		s, _ := v.AsString()
		return WireValue{Kind: int(value.KindString), Str: s}
	case value.KindOctets:
		o, _ := v.AsOctets()
		return WireValue{Kind: int(value.KindOctets), Octets: o}
	case value.KindList:
		items, _ := v.AsList()
		wl := make([]WireValue, len(items))
		for i, it := range items {
			wl[i] = ToWire(it)
		}
		return WireValue{Kind: int(value.KindList), List: wl}
	case value.KindObject:
		fields, _ := v.AsObject()
		wf := make([]WireField, len(fields))
		for i, f := range fields {
			wf[i] = WireField{Name: f.Name, Value: ToWire(f.Value)}
		}
		return WireValue{Kind: int(value.KindObject), Fields: wf}
	default:
		return WireValue{Kind: int(value.KindNull)}
	}
}

// FromWire reconstructs a runtime value from its wire form.
func FromWire(w WireValue) value.V {
	switch value.Kind(w.Kind) {
	case value.KindNull:
		return value.Null()
	case value.KindBoolean:
		return value.Bool(w.Bool)
	case value.KindInteger:
		return value.Int(w.Int)
	case value.KindDecimal:
		return value.Decimal(w.Decimal)
	case value.KindString:
		return value.Str(w.Str)
	case value.KindOctets:
		return value.Octets(w.Octets)
	case value.KindList:
		items := make([]value.V, len(w.List))
		for i, it := range w.List {
			items[i] = FromWire(it)
		}
		return value.List(items)
	case value.KindObject:
		fields := make([]value.Field, len(w.Fields))
		for i, f := range w.Fields {
			fields[i] = value.Field{Name: f.Name, Value: FromWire(f.Value)}
		}
		return value.Object(fields)
	default:
		return value.Null()
	}
}

// CallArgs is the net/rpc request for one core function invocation.
type CallArgs struct {
	Input WireValue
	Args  []WireValue
}

// CallReply is the net/rpc response. Verdict is one of "satisfied",
// "unsatisfied", or "error"; ErrorKind is populated only for "error".
// A plugin's internal rationale is not transmitted — the host records
// the call itself as a single leaf rationale node, since an
// out-of-process core function is as opaque to the host as any other
// (spec §4.4: "the engine treats them as opaque").
type CallReply struct {
	Verdict   string
	ErrorKind string
	Output    WireValue
}
