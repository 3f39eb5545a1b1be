package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/l1jgo/scriptworld/internal/bridge"
	"github.com/l1jgo/scriptworld/internal/core/ecs"
)

var worldMethods = map[string]lua.LGFunction{
	"get_type_by_name":           worldGetTypeByName,
	"spawn":                      worldSpawn,
	"despawn":                    worldDespawn,
	"despawn_later":              worldDespawnLater,
	"add_default_component":      worldAddDefaultComponent,
	"get_component":              worldGetComponent,
	"has_component":              worldHasComponent,
	"remove_component":           worldRemoveComponent,
	"get_resource":               worldGetResource,
	"has_resource":               worldHasResource,
	"remove_resource":            worldRemoveResource,
	"get_children":               worldGetChildren,
	"get_parent":                 worldGetParent,
	"push_child":                 worldPushChild,
	"push_children":              worldPushChildren,
	"insert_child":               worldInsertChild,
	"insert_children":            worldInsertChildren,
	"remove_child":               worldRemoveChild,
	"remove_children":            worldRemoveChildren,
	"despawn_recursive":          worldDespawnRecursive,
	"despawn_children_recursive": worldDespawnChildrenRecursive,
	"query":                      worldQuery,
}

var queryMethods = map[string]lua.LGFunction{
	"with":    queryWith,
	"without": queryWithout,
	"iter":    queryIter,
}

func newWorld(L *lua.LState, sw *bridge.ScriptWorld) lua.LValue {
	return newUserData(L, worldTypeName, sw)
}

func checkWorld(L *lua.LState) *bridge.ScriptWorld {
	ud := L.CheckUserData(1)
	if sw, ok := ud.Value.(*bridge.ScriptWorld); ok {
		return sw
	}
	L.ArgError(1, "world expected")
	return nil
}

func worldString(L *lua.LState) int {
	L.Push(lua.LString("world<" + checkWorld(L).Identity().String() + ">"))
	return 1
}

func worldGetTypeByName(L *lua.LState) int {
	h, ok := checkWorld(L).TypeByName(L.CheckString(2))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(newTypeHandle(L, h))
	return 1
}

func worldSpawn(L *lua.LState) int {
	L.Push(newEntity(L, checkWorld(L).Spawn()))
	return 1
}

func worldDespawn(L *lua.LState) int {
	L.Push(lua.LBool(checkWorld(L).Despawn(checkEntity(L, 2))))
	return 1
}

func worldDespawnLater(L *lua.LState) int {
	check(L, checkWorld(L).DespawnLater(checkEntity(L, 2)))
	return 0
}

func worldAddDefaultComponent(L *lua.LState) int {
	dv, err := checkWorld(L).AddDefaultComponent(checkEntity(L, 2), checkType(L, 3))
	if err != nil {
		raise(L, err)
	}
	L.Push(newProxy(L, dv))
	return 1
}

func worldGetComponent(L *lua.LState) int {
	dv, ok, err := checkWorld(L).GetComponent(checkEntity(L, 2), checkType(L, 3))
	pushOptional(L, dv, ok, err)
	return 1
}

func worldHasComponent(L *lua.LState) int {
	ok, err := checkWorld(L).HasComponent(checkEntity(L, 2), checkType(L, 3))
	if err != nil {
		raise(L, err)
	}
	L.Push(lua.LBool(ok))
	return 1
}

func worldRemoveComponent(L *lua.LState) int {
	if err := checkWorld(L).RemoveComponent(checkEntity(L, 2), checkType(L, 3)); err != nil {
		raise(L, err)
	}
	return 0
}

func worldGetResource(L *lua.LState) int {
	dv, ok, err := checkWorld(L).GetResource(checkType(L, 2))
	pushOptional(L, dv, ok, err)
	return 1
}

func worldHasResource(L *lua.LState) int {
	ok, err := checkWorld(L).HasResource(checkType(L, 2))
	if err != nil {
		raise(L, err)
	}
	L.Push(lua.LBool(ok))
	return 1
}

func worldRemoveResource(L *lua.LState) int {
	if err := checkWorld(L).RemoveResource(checkType(L, 2)); err != nil {
		raise(L, err)
	}
	return 0
}

func worldGetChildren(L *lua.LState) int {
	kids, err := checkWorld(L).GetChildren(checkEntity(L, 2))
	if err != nil {
		raise(L, err)
	}
	L.Push(entityList(L, kids))
	return 1
}

func worldGetParent(L *lua.LState) int {
	p, ok, err := checkWorld(L).GetParent(checkEntity(L, 2))
	if err != nil {
		raise(L, err)
	}
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(newEntity(L, p))
	return 1
}

func worldPushChild(L *lua.LState) int {
	check(L, checkWorld(L).PushChild(checkEntity(L, 2), checkEntity(L, 3)))
	return 0
}

func worldPushChildren(L *lua.LState) int {
	check(L, checkWorld(L).PushChildren(checkEntity(L, 2), checkEntities(L, 3)...))
	return 0
}

// Lua indices are 1-based; the bridge clamps whatever comes out of the shift.
func worldInsertChild(L *lua.LState) int {
	check(L, checkWorld(L).InsertChild(checkEntity(L, 2), L.CheckInt(3)-1, checkEntity(L, 4)))
	return 0
}

func worldInsertChildren(L *lua.LState) int {
	check(L, checkWorld(L).InsertChildren(checkEntity(L, 2), L.CheckInt(3)-1, checkEntities(L, 4)...))
	return 0
}

func worldRemoveChild(L *lua.LState) int {
	check(L, checkWorld(L).RemoveChild(checkEntity(L, 2), checkEntity(L, 3)))
	return 0
}

func worldRemoveChildren(L *lua.LState) int {
	check(L, checkWorld(L).RemoveChildren(checkEntity(L, 2), checkEntities(L, 3)...))
	return 0
}

func worldDespawnRecursive(L *lua.LState) int {
	check(L, checkWorld(L).DespawnRecursive(checkEntity(L, 2)))
	return 0
}

func worldDespawnChildrenRecursive(L *lua.LState) int {
	check(L, checkWorld(L).DespawnChildrenRecursive(checkEntity(L, 2)))
	return 0
}

func worldQuery(L *lua.LState) int {
	q := checkWorld(L).Query(checkTypes(L, 2)...)
	L.Push(newUserData(L, queryTypeName, q))
	return 1
}

func checkQuery(L *lua.LState) *bridge.QueryBuilder {
	ud := L.CheckUserData(1)
	if q, ok := ud.Value.(*bridge.QueryBuilder); ok {
		return q
	}
	L.ArgError(1, "query expected")
	return nil
}

func queryWith(L *lua.LState) int {
	checkQuery(L).With(checkTypes(L, 2)...)
	L.Push(L.Get(1))
	return 1
}

func queryWithout(L *lua.LState) int {
	checkQuery(L).Without(checkTypes(L, 2)...)
	L.Push(L.Get(1))
	return 1
}

// queryIter builds the snapshot and returns a stepping function for a
// generic for loop. Each step yields the entity followed by its fetched
// components; after the last match it yields nil on every call.
func queryIter(L *lua.LState) int {
	snap, err := checkQuery(L).Build()
	if err != nil {
		raise(L, err)
	}
	cur := snap.Cursor()
	L.Push(L.NewFunction(func(L *lua.LState) int {
		r, ok := cur.Next()
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(newEntity(L, r.Entity))
		for _, c := range r.Components {
			L.Push(newProxy(L, c))
		}
		return 1 + len(r.Components)
	}))
	return 1
}

func pushOptional(L *lua.LState, dv bridge.DynamicValue, ok bool, err error) {
	if err != nil {
		raise(L, err)
	}
	if !ok {
		L.Push(lua.LNil)
		return
	}
	L.Push(newProxy(L, dv))
}

func entityList(L *lua.LState, ids []ecs.EntityID) *lua.LTable {
	t := L.CreateTable(len(ids), 0)
	for i, id := range ids {
		t.RawSetInt(i+1, newEntity(L, id))
	}
	return t
}

func check(L *lua.LState, err error) {
	if err != nil {
		raise(L, err)
	}
}
