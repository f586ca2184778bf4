package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/industry-digital/flux-engine/internal/game/dice"
)

// globalLocationID is the reserved key for shared scripts loaded via
// LoadGlobal. CallHook falls back to this VM when no location VM is found.
const globalLocationID = "__global__"

// locationState holds the per-location LState and its resources.
// mu serializes all LState access within a single location.
type locationState struct {
	mu     sync.Mutex
	L      *lua.LState
	cancel func()
}

// Manager owns one sandboxed LState per location and exposes hook dispatch
// for the combat engine (on_attack_roll, on_damage_roll).
//
// Manager is safe for concurrent CallHook after all LoadLocation calls
// complete.
type Manager struct {
	mapMu     sync.RWMutex
	locations map[string]*locationState
	roller    *dice.Roller
	logger    *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must be non-nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must be non-nil")
	}
	return &Manager{
		locations: make(map[string]*locationState),
		roller:    roller,
		logger:    logger,
	}
}

// LoadLocation creates a sandboxed VM for locationID and executes every
// *.lua file in scriptDir in lexicographic order.
//
// Precondition: locationID must be non-empty; scriptDir must be readable.
// Precondition: call LoadLocation at startup, before any concurrent CallHook.
// Postcondition: Location VM is registered; returns error on Lua load failure.
func (m *Manager) LoadLocation(locationID, scriptDir string, instLimit int) error {
	return m.loadInto(locationID, scriptDir, instLimit)
}

// LoadGlobal creates the shared fallback VM reachable from any location.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(globalLocationID, scriptDir, instLimit)
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	if key == "" {
		return fmt.Errorf("scripting: location ID must be non-empty")
	}

	L, cancel := NewSandboxedState(instLimit)
	m.registerHelpers(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
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
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	ls := &locationState{L: L, cancel: cancel}

	m.mapMu.Lock()
	if old, ok := m.locations[key]; ok {
		old.cancel()
		old.L.Close()
	}
	m.locations[key] = ls
	m.mapMu.Unlock()
	return nil
}

// registerHelpers exposes the roll(expr) helper to hook scripts.
func (m *Manager) registerHelpers(L *lua.LState) {
	L.SetGlobal("roll", L.NewFunction(func(L *lua.LState) int {
		expr := L.CheckString(1)
		result, err := m.roller.RollExpr(expr)
		if err != nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(float64(result.Result())))
		return 1
	}))
}

// CallHook calls the named Lua global function in locationID's VM. If the
// location has no VM, the global VM is tried as a fallback. Returns
// (LNil, nil) if the hook is not defined or no VM exists. Lua runtime
// errors are logged at Warn level and never propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(locationID, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mapMu.RLock()
	ls, ok := m.locations[locationID]
	if !ok {
		ls = m.locations[globalLocationID]
	}
	m.mapMu.RUnlock()

	if ls == nil {
		return lua.LNil, nil
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	fn := ls.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	if err := ls.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("location", locationID),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := ls.L.Get(-1)
	ls.L.Pop(1)
	return ret, nil
}

// Close releases all location VMs and their associated resources.
//
// Precondition: No concurrent CallHook calls are in progress.
func (m *Manager) Close() {
	m.mapMu.Lock()
	defer m.mapMu.Unlock()
	for id, ls := range m.locations {
		ls.cancel()
		ls.L.Close()
		delete(m.locations, id)
	}
}
