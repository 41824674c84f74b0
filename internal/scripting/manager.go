package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// HookOnUse is the Lua global called when the player uses an item.
// Signature: on_use(verb, item, room) -> string|nil.
const HookOnUse = "on_use"

const globalKey = -1

// Manager owns one sandboxed LState for shared scripts and optionally one
// per room. Hook calls fall back from the room VM to the shared VM. It is
// not safe for concurrent use.
type Manager struct {
	states map[int]*lua.LState
	limit  int
	logger *zap.Logger

	// Injected after construction. nil = no-op in castle.* functions.
	Redirect func(from, to int)
	HasItem  func(item string) bool
}

// NewManager creates a Manager with no loaded scripts.
//
// Precondition: logger must be non-nil; instLimit >= 0.
func NewManager(instLimit int, logger *zap.Logger) *Manager {
	return &Manager{
		states: make(map[int]*lua.LState),
		limit:  instLimit,
		logger: logger,
	}
}

// LoadGlobal executes every *.lua file directly in dir, in lexicographic
// order, in the shared VM. If dir has a "rooms" subdirectory, each of its
// numerically named subdirectories is loaded as that room's VM.
//
// Postcondition: Returns an error on an unreadable directory or a Lua load failure.
func (m *Manager) LoadGlobal(dir string) error {
	if err := m.loadInto(globalKey, dir); err != nil {
		return err
	}
	roomsDir := filepath.Join(dir, "rooms")
	entries, err := os.ReadDir(roomsDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("scripting: reading %q: %w", roomsDir, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		room, err := strconv.Atoi(e.Name())
		if err != nil || room < 0 {
			m.logger.Warn("scripting: ignoring non-room directory", zap.String("dir", e.Name()))
			continue
		}
		if err := m.LoadRoom(room, filepath.Join(roomsDir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// LoadRoom creates a VM for room from every *.lua file in dir.
//
// Precondition: room >= 0.
func (m *Manager) LoadRoom(room int, dir string) error {
	return m.loadInto(room, dir)
}

// LoadString executes src in the VM for room (globalKey for shared).
func (m *Manager) LoadString(room int, src string) error {
	L := m.state(room)
	if err := Limited(L, m.limit, func() error { return L.DoString(src) }); err != nil {
		return fmt.Errorf("scripting: loading source for room %d: %w", room, err)
	}
	return nil
}

func (m *Manager) state(key int) *lua.LState {
	if L, ok := m.states[key]; ok {
		return L
	}
	L := NewSandboxedState()
	m.RegisterModules(L)
	m.states[key] = L
	return L
}

func (m *Manager) loadInto(key int, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L := m.state(key)
	for _, path := range luaFiles {
		if err := Limited(L, m.limit, func() error { return L.DoFile(path) }); err != nil {
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}
	m.logger.Debug("scripting: loaded", zap.String("dir", dir), zap.Int("files", len(luaFiles)))
	return nil
}

// CallHook calls the named global in room's VM, falling back to the shared
// VM. Lua runtime errors are logged at Warn and never propagated.
//
// Postcondition: Returns the hook's first return value, or LNil when no VM
// defines it or it fails.
func (m *Manager) CallHook(room int, hook string, args ...lua.LValue) lua.LValue {
	L, fn := m.lookup(room, hook)
	if fn == lua.LNil {
		return lua.LNil
	}
	err := Limited(L, m.limit, func() error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.Int("room", room),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret
}

func (m *Manager) lookup(room int, hook string) (*lua.LState, lua.LValue) {
	for _, key := range []int{room, globalKey} {
		L, ok := m.states[key]
		if !ok {
			continue
		}
		if fn := L.GetGlobal(hook); fn != lua.LNil {
			return L, fn
		}
	}
	return nil, lua.LNil
}

// OnUse runs the on_use hook for an item verb.
//
// Postcondition: Returns (text, true) when a hook returned a string.
func (m *Manager) OnUse(verb, item string, room int) (string, bool) {
	ret := m.CallHook(room, HookOnUse, lua.LString(verb), lua.LString(item), lua.LNumber(room))
	if s, ok := ret.(lua.LString); ok {
		return string(s), true
	}
	return "", false
}

// Close releases every VM.
func (m *Manager) Close() {
	for key, L := range m.states {
		L.Close()
		delete(m.states, key)
	}
}
