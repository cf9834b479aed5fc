package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the bout.* Lua table into L. Every function is
// a thin bridge onto the Manager's injected callbacks; a nil callback makes
// the function a no-op so scripts can be loaded before wiring completes.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: the bout global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	boutTable := L.NewTable()

	L.SetField(boutTable, "set_aggressiveness", L.NewFunction(func(L *lua.LState) int {
		corner := L.CheckInt(1)
		v := float64(L.CheckNumber(2))
		if m.SetAggressiveness != nil {
			m.SetAggressiveness(corner, v)
		}
		return 0
	}))

	L.SetField(boutTable, "set_skill", L.NewFunction(func(L *lua.LState) int {
		corner := L.CheckInt(1)
		v := float64(L.CheckNumber(2))
		if m.SetSkill != nil {
			m.SetSkill(corner, v)
		}
		return 0
	}))

	L.SetField(boutTable, "set_song_energy", L.NewFunction(func(L *lua.LState) int {
		v := float64(L.CheckNumber(1))
		if m.SetSongEnergy != nil {
			m.SetSongEnergy(v)
		}
		return 0
	}))

	L.SetField(boutTable, "log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Info("script", zap.String("message", L.CheckString(1)))
		return 0
	}))

	L.SetGlobal("bout", boutTable)
}
