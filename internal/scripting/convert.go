package scripting

import (
	"reflect"

	lua "github.com/yuin/gopher-lua"

	"github.com/l1jgo/scriptworld/internal/bridge"
	"github.com/l1jgo/scriptworld/internal/core/ecs"
	"github.com/l1jgo/scriptworld/internal/core/typereg"
)

// toLua converts a value read through the bridge into a Lua value.
// References stay references; plain data is copied into tables.
func toLua(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bridge.DynamicValue:
		return newProxy(L, x)
	case ecs.EntityID:
		return newEntity(L, x)
	case typereg.Handle:
		return newTypeHandle(L, x)
	case lua.LValue:
		return x
	}
	return reflectToLua(L, reflect.ValueOf(v))
}

func reflectToLua(L *lua.LState, rv reflect.Value) lua.LValue {
	if !rv.IsValid() {
		return lua.LNil
	}
	if rv.Type() == entityType {
		return newEntity(L, rv.Interface().(ecs.EntityID))
	}
	switch rv.Kind() {
	case reflect.Bool:
		return lua.LBool(rv.Bool())
	case reflect.String:
		return lua.LString(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lua.LNumber(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(rv.Float())
	case reflect.Slice, reflect.Array:
		t := L.CreateTable(rv.Len(), 0)
		for i := 0; i < rv.Len(); i++ {
			t.RawSetInt(i+1, reflectToLua(L, rv.Index(i)))
		}
		return t
	case reflect.Map:
		t := L.CreateTable(0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			t.RawSet(reflectToLua(L, iter.Key()), reflectToLua(L, iter.Value()))
		}
		return t
	case reflect.Struct:
		t := L.CreateTable(0, rv.NumField())
		for i := 0; i < rv.NumField(); i++ {
			if f := rv.Type().Field(i); f.IsExported() {
				t.RawSetString(f.Name, reflectToLua(L, rv.Field(i)))
			}
		}
		return t
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return lua.LNil
		}
		return reflectToLua(L, rv.Elem())
	}
	return lua.LString(rv.String())
}

// fromLua converts a script value into something bridge assignment accepts.
// Array-like tables become []any, other tables map[string]any.
func fromLua(lv lua.LValue) any {
	switch x := lv.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(x)
	case lua.LNumber:
		return float64(x)
	case lua.LString:
		return string(x)
	case *lua.LUserData:
		return x.Value
	case *lua.LTable:
		if n := x.MaxN(); n > 0 {
			out := make([]any, n)
			for i := 1; i <= n; i++ {
				out[i-1] = fromLua(x.RawGetInt(i))
			}
			return out
		}
		out := make(map[string]any)
		x.ForEach(func(k, v lua.LValue) {
			if s, ok := k.(lua.LString); ok {
				out[string(s)] = fromLua(v)
			}
		})
		return out
	}
	return nil
}

var entityType = reflect.TypeFor[ecs.EntityID]()
