package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/l1jgo/scriptworld/internal/bridge"
	"github.com/l1jgo/scriptworld/internal/core/ecs"
	"github.com/l1jgo/scriptworld/internal/core/typereg"
)

const (
	entityTypeName = "scriptworld.entity"
	typeTypeName   = "scriptworld.type"
	proxyTypeName  = "scriptworld.proxy"
	queryTypeName  = "scriptworld.query"
	worldTypeName  = "scriptworld.world"
	scriptTypeName = "scriptworld.script"
)

// registerTypes installs the metatables for every userdata kind the bridge
// hands to scripts.
func registerTypes(L *lua.LState) {
	mt := L.NewTypeMetatable(entityTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"id":         entityID,
		"index":      entityIndex,
		"generation": entityGeneration,
	}))
	L.SetField(mt, "__eq", L.NewFunction(entityEq))
	L.SetField(mt, "__tostring", L.NewFunction(entityString))

	mt = L.NewTypeMetatable(typeTypeName)
	L.SetField(mt, "__index", L.NewFunction(typeIndex))
	L.SetField(mt, "__eq", L.NewFunction(typeEq))
	L.SetField(mt, "__tostring", L.NewFunction(typeString))

	mt = L.NewTypeMetatable(proxyTypeName)
	L.SetField(mt, "__index", L.NewFunction(proxyIndex))
	L.SetField(mt, "__newindex", L.NewFunction(proxyNewIndex))
	L.SetField(mt, "__tostring", L.NewFunction(proxyString))

	mt = L.NewTypeMetatable(queryTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), queryMethods))

	mt = L.NewTypeMetatable(worldTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), worldMethods))
	L.SetField(mt, "__tostring", L.NewFunction(worldString))

	mt = L.NewTypeMetatable(scriptTypeName)
	L.SetField(mt, "__index", L.NewFunction(scriptIndex))
	L.SetField(mt, "__tostring", L.NewFunction(scriptString))
}

func newUserData(L *lua.LState, typeName string, v any) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = v
	L.SetMetatable(ud, L.GetTypeMetatable(typeName))
	return ud
}

// raise turns a bridge error into a Lua error. It does not return.
func raise(L *lua.LState, err error) {
	L.RaiseError("%s", err.Error())
}

// --- entity ---

func newEntity(L *lua.LState, id ecs.EntityID) lua.LValue {
	return newUserData(L, entityTypeName, id)
}

func checkEntity(L *lua.LState, n int) ecs.EntityID {
	ud := L.CheckUserData(n)
	if id, ok := ud.Value.(ecs.EntityID); ok {
		return id
	}
	L.ArgError(n, "entity expected")
	return 0
}

// checkEntities reads an array table of entities.
func checkEntities(L *lua.LState, n int) []ecs.EntityID {
	t := L.CheckTable(n)
	out := make([]ecs.EntityID, 0, t.Len())
	for i := 1; i <= t.Len(); i++ {
		ud, ok := t.RawGetInt(i).(*lua.LUserData)
		if !ok {
			L.ArgError(n, fmt.Sprintf("element %d: entity expected", i))
		}
		id, ok := ud.Value.(ecs.EntityID)
		if !ok {
			L.ArgError(n, fmt.Sprintf("element %d: entity expected", i))
		}
		out = append(out, id)
	}
	return out
}

// entityID pushes the packed id as a Lua number. Numbers are float64, so the
// value is exact only while the generation stays below 2^21; scripts that
// need a stable key past that use index and generation, and compare entities
// with ==.
func entityID(L *lua.LState) int {
	L.Push(lua.LNumber(checkEntity(L, 1)))
	return 1
}

func entityIndex(L *lua.LState) int {
	L.Push(lua.LNumber(checkEntity(L, 1).Index()))
	return 1
}

func entityGeneration(L *lua.LState) int {
	L.Push(lua.LNumber(checkEntity(L, 1).Generation()))
	return 1
}

func entityEq(L *lua.LState) int {
	L.Push(lua.LBool(checkEntity(L, 1) == checkEntity(L, 2)))
	return 1
}

func entityString(L *lua.LState) int {
	L.Push(lua.LString(checkEntity(L, 1).String()))
	return 1
}

// --- type handle ---

func newTypeHandle(L *lua.LState, h typereg.Handle) lua.LValue {
	return newUserData(L, typeTypeName, h)
}

func checkType(L *lua.LState, n int) typereg.Handle {
	ud := L.CheckUserData(n)
	if h, ok := ud.Value.(typereg.Handle); ok {
		return h
	}
	L.ArgError(n, "type expected")
	return typereg.Handle{}
}

func checkTypes(L *lua.LState, from int) []typereg.Handle {
	out := make([]typereg.Handle, 0, L.GetTop()-from+1)
	for i := from; i <= L.GetTop(); i++ {
		out = append(out, checkType(L, i))
	}
	return out
}

func typeIndex(L *lua.LState) int {
	h := checkType(L, 1)
	switch L.CheckString(2) {
	case "short_name":
		L.Push(lua.LString(h.ShortName()))
	case "type_name":
		L.Push(lua.LString(h.TypePath()))
	default:
		L.Push(lua.LNil)
	}
	return 1
}

func typeEq(L *lua.LState) int {
	L.Push(lua.LBool(checkType(L, 1).Equal(checkType(L, 2))))
	return 1
}

func typeString(L *lua.LState) int {
	L.Push(lua.LString(checkType(L, 1).String()))
	return 1
}

// --- reflected value proxy ---

func newProxy(L *lua.LState, v bridge.DynamicValue) lua.LValue {
	return newUserData(L, proxyTypeName, v)
}

func checkProxy(L *lua.LState, n int) bridge.DynamicValue {
	ud := L.CheckUserData(n)
	if v, ok := ud.Value.(bridge.DynamicValue); ok {
		return v
	}
	L.ArgError(n, "reflected value expected")
	return bridge.DynamicValue{}
}

func proxyIndex(L *lua.LState) int {
	v := checkProxy(L, 1)
	f, err := v.Field(L.CheckString(2))
	if err != nil {
		raise(L, err)
	}
	L.Push(toLua(L, f))
	return 1
}

func proxyNewIndex(L *lua.LState) int {
	v := checkProxy(L, 1)
	if err := v.SetField(L.CheckString(2), fromLua(L.Get(3))); err != nil {
		raise(L, err)
	}
	return 0
}

func proxyString(L *lua.LState) int {
	L.Push(lua.LString(checkProxy(L, 1).String()))
	return 1
}

// --- script identity ---

func newScript(L *lua.LState, id bridge.ScriptIdentity) lua.LValue {
	return newUserData(L, scriptTypeName, id)
}

func checkScript(L *lua.LState, n int) bridge.ScriptIdentity {
	ud := L.CheckUserData(n)
	if id, ok := ud.Value.(bridge.ScriptIdentity); ok {
		return id
	}
	L.ArgError(n, "script expected")
	return bridge.ScriptIdentity{}
}

func scriptIndex(L *lua.LState) int {
	id := checkScript(L, 1)
	switch L.CheckString(2) {
	case "sid":
		L.Push(lua.LNumber(id.SID))
	case "name":
		L.Push(lua.LString(id.Name))
	default:
		L.Push(lua.LNil)
	}
	return 1
}

func scriptString(L *lua.LState) int {
	L.Push(lua.LString(checkScript(L, 1).String()))
	return 1
}
