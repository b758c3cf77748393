package script

import (
	"context"

	lua "github.com/yuin/gopher-lua"

	"github.com/seedwing-io/dogma-engine/internal/dogma/corefunc"
	"github.com/seedwing-io/dogma-engine/internal/dogma/rationale"
	"github.com/seedwing-io/dogma-engine/internal/dogma/value"
	"github.com/seedwing-io/dogma-engine/internal/dogmaerr"
)

// FuncID is the qualified name this core function registers under.
const FuncID = "Script"

// Arity is its declared parameter arity: one bound argument, the Lua
// source to run.
const Arity = 1

// Register adds the Script core function to reg. The Lua snippet is
// bound as the function's sole argument, e.g. Script<"return self.nr >= 18">;
// self is injected as a Lua global holding the input, converted
// recursively to Lua tables/primitives. The snippet's return value, if
// boolean, is the verdict; anything else is a core_function_error.
func Register(reg *corefunc.Registry) error {
	factory := NewStateFactory()
	return reg.Register(FuncID, Arity, "Evaluate a sandboxed Lua expression against self.", func(
		ctx context.Context, input value.V, args []value.V, world corefunc.WorldHandle,
	) (rationale.Verdict, value.V, *rationale.R) {
		src, ok := args[0].AsString()
		if !ok {
			return rationale.Err(dogmaerr.KindCoreFunction), value.Null(), nil
		}

		L, err := factory.NewState(ctx)
		if err != nil {
			return rationale.Err(dogmaerr.KindCoreFunction), value.Null(), nil
		}
		defer L.Close()

		L.SetGlobal("self", toLua(L, input))

		if err := L.DoString(src); err != nil {
			return rationale.Err(dogmaerr.KindCoreFunction), value.Null(), nil
		}

		ret := L.Get(-1)
		L.Pop(1)
		b, ok := ret.(lua.LBool)
		if !ok {
			return rationale.Err(dogmaerr.KindCoreFunction), value.Null(), nil
		}
		if bool(b) {
			return rationale.Ok(), input, nil
		}
		return rationale.No(), input, nil
	})
}

// toLua converts a runtime value into its Lua equivalent for injection
// as the self global.
func toLua(L *lua.LState, v value.V) lua.LValue {
	switch v.Kind() {
	case value.KindNull:
		return lua.LNil
	case value.KindBoolean:
		b, _ := v.AsBool()
		return lua.LBool(b)
	case value.KindInteger:
		i, _ := v.AsInt()
		return lua.LNumber(i)
	case value.KindDecimal:
		d, _ := v.AsDecimal()
		return lua.LNumber(d)
	case value.KindString:
		s, _ := v.AsString()
		return lua.LString(s)
	case value.KindOctets:
		o, _ := v.AsOctets()
		return lua.LString(o)
	case value.KindList:
		items, _ := v.AsList()
		t := L.NewTable()
		for i, it := range items {
			t.RawSetInt(i+1, toLua(L, it))
		}
		return t
	case value.KindObject:
		fields, _ := v.AsObject()
		t := L.NewTable()
		for _, f := range fields {
			t.RawSetString(f.Name, toLua(L, f.Value))
		}
		return t
	default:
		return lua.LNil
	}
}
