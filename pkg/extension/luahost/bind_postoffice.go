package luahost

import (
	lua "github.com/yuin/gopher-lua"
)

const (
	postOfficeName       = "postoffice"
	postOfficeAfterName  = "postoffice_after"
	postOfficeBeforeName = "postoffice_before"

	afterMessageSentName  = "message_sent"
	afterMessageReadName  = "message_read"
	beforeMessageSentName = "message_sent"
)

// Hooks holds the Lua functions a script has registered against post office events.
type Hooks struct {
	After  AfterHooks
	Before BeforeHooks
}

// AfterHooks are called once an operation has completed.
type AfterHooks struct {
	MessageSent *lua.LFunction
	MessageRead *lua.LFunction
}

// BeforeHooks may alter an operation before it completes.
type BeforeHooks struct {
	MessageSent *lua.LFunction
}

func registerPostOfficeTypes(ls *lua.LState, hooks *Hooks) {
	// postoffice type.
	mt := ls.NewTypeMetatable(postOfficeName)
	ls.SetField(mt, "__index", ls.NewFunction(postOfficeIndex))

	// postoffice.after type.
	mt = ls.NewTypeMetatable(postOfficeAfterName)
	ls.SetField(mt, "__index", ls.NewFunction(postOfficeAfterIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(postOfficeAfterNewIndex))

	// postoffice.before type.
	mt = ls.NewTypeMetatable(postOfficeBeforeName)
	ls.SetField(mt, "__index", ls.NewFunction(postOfficeBeforeIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(postOfficeBeforeNewIndex))

	// postoffice global.
	ls.SetGlobal(postOfficeName, wrapUserData(ls, hooks, postOfficeName))
}

func wrapUserData(ls *lua.LState, val any, typeName string) *lua.LUserData {
	ud := ls.NewUserData()
	ud.Value = val
	ls.SetMetatable(ud, ls.GetTypeMetatable(typeName))

	return ud
}

func checkHooks(ls *lua.LState, pos int) *Hooks {
	ud := ls.CheckUserData(pos)
	if val, ok := ud.Value.(*Hooks); ok {
		return val
	}
	ls.ArgError(pos, postOfficeName+" expected")
	return nil
}

func checkAfterHooks(ls *lua.LState, pos int) *AfterHooks {
	ud := ls.CheckUserData(pos)
	if val, ok := ud.Value.(*AfterHooks); ok {
		return val
	}
	ls.ArgError(pos, postOfficeAfterName+" expected")
	return nil
}

func checkBeforeHooks(ls *lua.LState, pos int) *BeforeHooks {
	ud := ls.CheckUserData(pos)
	if val, ok := ud.Value.(*BeforeHooks); ok {
		return val
	}
	ls.ArgError(pos, postOfficeBeforeName+" expected")
	return nil
}

// postoffice getter.
func postOfficeIndex(ls *lua.LState) int {
	hooks := checkHooks(ls, 1)
	field := ls.CheckString(2)

	switch field {
	case "after":
		ls.Push(wrapUserData(ls, &hooks.After, postOfficeAfterName))
	case "before":
		ls.Push(wrapUserData(ls, &hooks.Before, postOfficeBeforeName))
	default:
		ls.Push(lua.LNil)
	}

	return 1
}

// postoffice.after getter.
func postOfficeAfterIndex(ls *lua.LState) int {
	after := checkAfterHooks(ls, 1)
	field := ls.CheckString(2)

	switch field {
	case afterMessageSentName:
		ls.Push(funcOrNil(after.MessageSent))
	case afterMessageReadName:
		ls.Push(funcOrNil(after.MessageRead))
	default:
		ls.Push(lua.LNil)
	}

	return 1
}

// postoffice.after setter.
func postOfficeAfterNewIndex(ls *lua.LState) int {
	after := checkAfterHooks(ls, 1)
	index := ls.CheckString(2)

	switch index {
	case afterMessageSentName:
		after.MessageSent = optFunction(ls, 3)
	case afterMessageReadName:
		after.MessageRead = optFunction(ls, 3)
	default:
		ls.RaiseError("invalid postoffice.after index %q", index)
	}

	return 0
}

// postoffice.before getter.
func postOfficeBeforeIndex(ls *lua.LState) int {
	before := checkBeforeHooks(ls, 1)
	field := ls.CheckString(2)

	switch field {
	case beforeMessageSentName:
		ls.Push(funcOrNil(before.MessageSent))
	default:
		ls.Push(lua.LNil)
	}

	return 1
}

// postoffice.before setter.
func postOfficeBeforeNewIndex(ls *lua.LState) int {
	before := checkBeforeHooks(ls, 1)
	index := ls.CheckString(2)

	switch index {
	case beforeMessageSentName:
		before.MessageSent = optFunction(ls, 3)
	default:
		ls.RaiseError("invalid postoffice.before index %q", index)
	}

	return 0
}

// optFunction returns the function at pos, or nil when the script assigned nil to clear a hook.
func optFunction(ls *lua.LState, pos int) *lua.LFunction {
	if ls.Get(pos) == lua.LNil {
		return nil
	}
	return ls.CheckFunction(pos)
}

func funcOrNil(f *lua.LFunction) lua.LValue {
	if f == nil {
		return lua.LNil
	}

	return f
}
