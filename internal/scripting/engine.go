// Package scripting hosts gopher-lua scripts against a bridge.ScriptWorld.
package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/scriptworld/internal/bridge"
	"github.com/l1jgo/scriptworld/internal/core/event"
)

const (
	HookLoad   = "on_load"
	HookUpdate = "on_update"
)

// Script is one loaded source file with its own global environment.
type Script struct {
	ID   bridge.ScriptIdentity
	Path string
	env  *lua.LTable
}

// Engine wraps a single gopher-lua VM shared by all scripts.
// Single-goroutine access only (game loop).
type Engine struct {
	vm      *lua.LState
	world   *bridge.ScriptWorld
	bus     *event.Bus
	log     *zap.Logger
	scripts []*Script
	nextSID uint32
}

// NewEngine creates a VM whose scripts act on sw. bus may be nil.
func NewEngine(sw *bridge.ScriptWorld, bus *event.Bus, log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	registerTypes(vm)
	return &Engine{vm: vm, world: sw, bus: bus, log: log}
}

// LoadDir loads all .lua files in a directory in name order.
func (e *Engine) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			e.log.Warn("script directory missing", zap.String("dir", dir))
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		fn, err := e.vm.LoadFile(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		if _, err := e.start(path, fn); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// LoadString loads source under name as a new script.
func (e *Engine) LoadString(name, src string) (*Script, error) {
	fn, err := e.vm.LoadString(src)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	s, err := e.start(name, fn)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return s, nil
}

// start gives chunk its own environment, runs it, then runs on_load.
func (e *Engine) start(path string, chunk *lua.LFunction) (*Script, error) {
	e.nextSID++
	id := bridge.ScriptIdentity{SID: e.nextSID, Name: scriptName(path)}

	env := e.vm.NewTable()
	meta := e.vm.NewTable()
	meta.RawSetString("__index", e.vm.G.Global)
	e.vm.SetMetatable(env, meta)
	env.RawSetString("world", newWorld(e.vm, e.world.As(id)))
	env.RawSetString("script", newScript(e.vm, id))
	chunk.Env = env

	s := &Script{ID: id, Path: path, env: env}
	if err := e.vm.CallByParam(lua.P{Fn: chunk, NRet: 0, Protect: true}); err != nil {
		return nil, err
	}
	e.scripts = append(e.scripts, s)
	e.log.Debug("loaded lua script", zap.String("file", path), zap.Uint32("sid", id.SID))

	if err := e.CallHook(s, HookLoad); err != nil {
		return s, err
	}
	return s, nil
}

// CallHook runs a global function defined by s. A script that does not
// define the hook is skipped. Failures are logged and published as
// event.ScriptFailed.
func (e *Engine) CallHook(s *Script, hook string, args ...lua.LValue) error {
	fn, ok := s.env.RawGetString(hook).(*lua.LFunction)
	if !ok {
		return nil
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		e.log.Error("lua hook error",
			zap.Uint32("sid", s.ID.SID),
			zap.String("script", s.ID.Name),
			zap.String("hook", hook),
			zap.Error(err))
		event.Emit(e.bus, event.ScriptFailed{
			SID:     s.ID.SID,
			Script:  s.ID.Name,
			Hook:    hook,
			Message: err.Error(),
		})
		return fmt.Errorf("%s %s: %w", s.ID, hook, err)
	}
	return nil
}

// Update calls on_update(dt) on every script. One failing script does not
// stop the others; all failures are joined.
func (e *Engine) Update(dt float64) error {
	var errs []error
	for _, s := range e.scripts {
		if err := e.CallHook(s, HookUpdate, lua.LNumber(dt)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Scripts returns the loaded scripts in load order.
func (e *Engine) Scripts() []*Script { return e.scripts }

// Global reads a global from s's environment, converted for Go.
func (s *Script) Global(name string) any {
	return fromLua(s.env.RawGetString(name))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}

func scriptName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
