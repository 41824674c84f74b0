package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the castle table into L:
//
//	castle.redirect(from, to)  redirect later transitions into room from
//	castle.has(item) -> bool   whether the player carries item
//	castle.log(msg)            write msg to the host log at Info
//
// Precondition: L must be from NewSandboxedState.
func (m *Manager) RegisterModules(L *lua.LState) {
	castle := L.NewTable()
	L.SetFuncs(castle, map[string]lua.LGFunction{
		"redirect": m.luaRedirect,
		"has":      m.luaHas,
		"log":      m.luaLog,
	})
	L.SetGlobal("castle", castle)
}

func (m *Manager) luaRedirect(L *lua.LState) int {
	from := L.CheckInt(1)
	to := L.CheckInt(2)
	if m.Redirect != nil {
		m.Redirect(from, to)
	}
	return 0
}

func (m *Manager) luaHas(L *lua.LState) int {
	item := L.CheckString(1)
	L.Push(lua.LBool(m.HasItem != nil && m.HasItem(item)))
	return 1
}

func (m *Manager) luaLog(L *lua.LState) int {
	m.logger.Info("scripting: script log", zap.String("msg", L.CheckString(1)))
	return 0
}
