package event

import "github.com/l1jgo/scriptworld/internal/core/ecs"

// EntitySpawned is emitted when a script or the host creates an entity.
type EntitySpawned struct {
	Entity ecs.EntityID
	SID    uint32
}

// EntityDespawned is emitted once per entity removed from the world,
// including every descendant of a recursive despawn.
type EntityDespawned struct {
	Entity ecs.EntityID
	SID    uint32
}

// ScriptFailed is emitted when a script hook raises an error.
type ScriptFailed struct {
	SID     uint32
	Script  string
	Hook    string
	Message string
}
