package luahost

import (
	"github.com/inbucket/postoffice/pkg/postoffice"
	lua "github.com/yuin/gopher-lua"
)

const officeName = "office"

func registerOfficeType(ls *lua.LState) {
	mt := ls.NewTypeMetatable(officeName)
	ls.SetField(mt, "__index", ls.SetFuncs(ls.NewTable(), map[string]lua.LGFunction{
		"send":         officeSend,
		"read_inbox":   officeReadInbox,
		"search_inbox": officeSearchInbox,
		"box":          officeBox,
		"users":        officeUsers,
		"last_id":      officeLastID,
	}))
}

func wrapOffice(ls *lua.LState, val *postoffice.Directory) *lua.LUserData {
	return wrapUserData(ls, val, officeName)
}

func checkOffice(ls *lua.LState, pos int) *postoffice.Directory {
	ud := ls.CheckUserData(pos)
	if v, ok := ud.Value.(*postoffice.Directory); ok {
		return v
	}
	ls.ArgError(pos, officeName+" expected")
	return nil
}

// office:send(sender, recipient, title, body [, urgent]) -> id
func officeSend(ls *lua.LState) int {
	d := checkOffice(ls, 1)
	id, err := d.Send(ls.CheckString(2), ls.CheckString(3), ls.CheckString(4), ls.CheckString(5),
		ls.OptBool(6, false))
	if err != nil {
		ls.RaiseError("%v", err)
		return 0
	}
	ls.Push(lua.LNumber(id))
	return 1
}

// office:read_inbox(user, n) -> {rendered}
func officeReadInbox(ls *lua.LState) int {
	d := checkOffice(ls, 1)
	rendered, err := d.ReadInbox(ls.CheckString(2), ls.CheckInt(3))
	if err != nil {
		ls.RaiseError("%v", err)
		return 0
	}
	ls.Push(stringTable(ls, rendered))
	return 1
}

// office:search_inbox(user, substr) -> {rendered}
func officeSearchInbox(ls *lua.LState) int {
	d := checkOffice(ls, 1)
	rendered, err := d.SearchInbox(ls.CheckString(2), ls.CheckString(3))
	if err != nil {
		ls.RaiseError("%v", err)
		return 0
	}
	ls.Push(stringTable(ls, rendered))
	return 1
}

// office:box(user) -> {message}
func officeBox(ls *lua.LState) int {
	d := checkOffice(ls, 1)
	user := ls.CheckString(2)
	box, err := d.Box(user)
	if err != nil {
		ls.RaiseError("%v", err)
		return 0
	}
	lt := ls.CreateTable(len(box), 0)
	for _, m := range box {
		meta := m.Metadata(user)
		lt.Append(wrapMessage(ls, &meta))
	}
	ls.Push(lt)
	return 1
}

// office:users() -> {name}
func officeUsers(ls *lua.LState) int {
	d := checkOffice(ls, 1)
	ls.Push(stringTable(ls, d.Users()))
	return 1
}

// office:last_id() -> id
func officeLastID(ls *lua.LState) int {
	d := checkOffice(ls, 1)
	ls.Push(lua.LNumber(d.LastID()))
	return 1
}

func stringTable(ls *lua.LState, values []string) *lua.LTable {
	lt := ls.CreateTable(len(values), 0)
	for _, v := range values {
		lt.Append(lua.LString(v))
	}
	return lt
}
