package component

import "github.com/l1jgo/scriptworld/internal/core/ecs"

// Parent is stored on a child and points back at its parent.
type Parent struct {
	Entity ecs.EntityID
}

// Children is stored on a parent. Order is significant.
// Mutate it only through the bridge hierarchy operations so Parent stays in sync.
type Children struct {
	Entities []ecs.EntityID
}
