package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Manager owns one sandboxed LState holding the loaded tuning scripts and
// exposes hook dispatch. The hooks let venue operators retune the match
// live without restarting the overlay.
//
// Manager is safe for concurrent CallHook after Load completes; the mutex
// serialises access to the single-threaded LState.
type Manager struct {
	mu     sync.Mutex
	state  *lua.LState
	cancel func()
	logger *zap.Logger

	// Injected after construction. nil = no-op in bout.* modules.
	SetAggressiveness func(corner int, v float64)
	SetSkill          func(corner int, v float64)
	SetSongEnergy     func(v float64)
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger must be non-nil.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// Load creates a sandboxed VM, registers the bout.* modules, then executes
// every *.lua file in scriptDir in lexicographic order. A previously loaded
// VM is replaced.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: returns error on Lua load failure; on success the VM is
// installed and hooks are callable.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	if m.state != nil {
		if m.cancel != nil {
			m.cancel()
		}
		m.state.Close()
	}
	m.state = L
	m.cancel = cancel
	m.mu.Unlock()
	return nil
}

// Close tears down the VM. Safe to call with no scripts loaded.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		if m.cancel != nil {
			m.cancel()
		}
		m.state.Close()
		m.state = nil
		m.cancel = nil
	}
}

// OnTrackChange dispatches the on_track_change hook with the new track's
// title and duration in seconds.
func (m *Manager) OnTrackChange(title string, durationSec float64) {
	m.callHook("on_track_change", lua.LString(title), lua.LNumber(durationSec))
}

// OnDownbeat dispatches the on_downbeat hook with the running downbeat
// count.
func (m *Manager) OnDownbeat(count int) {
	m.callHook("on_downbeat", lua.LNumber(count))
}

// callHook calls the named Lua global function, if defined. Lua runtime
// errors are logged at Warn level and never propagated; a broken tuning
// script must not take the match down.
func (m *Manager) callHook(hook string, args ...lua.LValue) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == nil {
		return
	}
	fn := m.state.GetGlobal(hook)
	if fn == lua.LNil {
		return
	}
	if err := m.state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
	}
}
