package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM hosting the scene-group trigger
// scripts. The VM is not goroutine safe and trigger calls arrive from every
// world goroutine, so calls are serialized behind a mutex.
type Engine struct {
	mu  sync.Mutex
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every script under scriptsDir.
// Missing directories are fine; a server without triggers is valid.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"core", "scene"} {
		if err := e.loadDir(filepath.Join(scriptsDir, sub)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
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

// OnGroupLoad fires the on_group_load trigger for one scene group. A scene
// without the hook is not an error.
func (e *Engine) OnGroupLoad(sceneID, groupID uint32) {
	e.call("on_group_load", lua.LNumber(sceneID), lua.LNumber(groupID))
}

// OnSceneEnter fires the on_scene_enter trigger.
func (e *Engine) OnSceneEnter(sceneID uint32, uid uint32) {
	e.call("on_scene_enter", lua.LNumber(sceneID), lua.LNumber(uid))
}

func (e *Engine) call(fn string, args ...lua.LValue) {
	e.mu.Lock()
	defer e.mu.Unlock()
	val := e.vm.GetGlobal(fn)
	if val.Type() != lua.LTFunction {
		return
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      val,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		// trigger failures never propagate into the simulation
		e.log.Warn("lua trigger failed", zap.String("fn", fn), zap.Error(err))
	}
}

func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.Close()
}
