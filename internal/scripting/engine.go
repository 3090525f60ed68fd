package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding the pipeline's tuning functions.
// Single-goroutine access only: call it from Configure hooks, never from Execute.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	// Root scripts first, then the per-system directories
	for _, sub := range []string{"", "movement", "regen"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", p, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Has reports whether a global Lua function with the given name is defined.
func (e *Engine) Has(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// Drag returns the velocity factor applied over dt seconds by the
// movement_drag function. 1 means no drag.
func (e *Engine) Drag(dt float64) float64 {
	v := e.callNumberFunc("movement_drag", 1, dt)
	if v < 0 {
		return 0
	}
	return v
}

// RegenContext is passed to regen_rate as a table.
type RegenContext struct {
	Elapsed  float64 // seconds since the pipeline started
	DT       float64 // seconds covered by this tick
	Entities int     // entities the regen job will visit
}

// RegenRate calls the Lua regen_rate function and returns the multiplier
// applied to every entity's base regeneration this tick.
func (e *Engine) RegenRate(ctx RegenContext) float64 {
	fn := e.vm.GetGlobal("regen_rate")
	if fn == lua.LNil {
		return 1
	}

	t := e.vm.NewTable()
	t.RawSetString("elapsed", lua.LNumber(ctx.Elapsed))
	t.RawSetString("dt", lua.LNumber(ctx.DT))
	t.RawSetString("entities", lua.LNumber(ctx.Entities))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua regen_rate error", zap.Error(err))
		return 1
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua regen_rate returned non-number", zap.String("type", result.Type().String()))
		return 1
	}
	return float64(n)
}

// callNumberFunc calls a global Lua function with numeric args and returns its
// numeric result, or fallback when the function is missing or fails.
func (e *Engine) callNumberFunc(name string, fallback float64, args ...float64) float64 {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return fallback
	}

	lArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lArgs[i] = lua.LNumber(a)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lArgs...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return fallback
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return float64(lua.LVAsNumber(result))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
