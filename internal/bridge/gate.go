package bridge

import (
	"sync"

	"github.com/l1jgo/scriptworld/internal/core/ecs"
)

// Gate serializes access to a world it does not own: any number of readers,
// or one writer. Locks are held only for the duration of the callback and are
// released on every return path, panics included.
//
// The mutex is not reentrant. Code running inside a callback must use the
// *ecs.World it was handed and never call back into the gate.
type Gate struct {
	mu    sync.RWMutex
	world *ecs.World
}

func NewGate(w *ecs.World) *Gate {
	return &Gate{world: w}
}

// WithRead runs fn with shared access.
func (g *Gate) WithRead(fn func(w *ecs.World) error) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return fn(g.world)
}

// WithWrite runs fn with exclusive access.
func (g *Gate) WithWrite(fn func(w *ecs.World) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.world)
}

func readGate[R any](g *Gate, fn func(w *ecs.World) (R, error)) (R, error) {
	var out R
	err := g.WithRead(func(w *ecs.World) error {
		var err error
		out, err = fn(w)
		return err
	})
	return out, err
}

func writeGate[R any](g *Gate, fn func(w *ecs.World) (R, error)) (R, error) {
	var out R
	err := g.WithWrite(func(w *ecs.World) error {
		var err error
		out, err = fn(w)
		return err
	})
	return out, err
}
