package luahost

import (
	"github.com/inbucket/postoffice/pkg/extension/event"
	lua "github.com/yuin/gopher-lua"
)

const (
	messageName         = "message"
	outgoingMessageName = "outgoing_message"
)

func registerMessageType(ls *lua.LState) {
	mt := ls.NewTypeMetatable(messageName)
	ls.SetGlobal(messageName, mt)

	ls.SetField(mt, "__index", ls.NewFunction(messageIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(messageNewIndex))
}

func wrapMessage(ls *lua.LState, val *event.MessageMetadata) *lua.LUserData {
	return wrapUserData(ls, val, messageName)
}

func checkMessage(ls *lua.LState, pos int) *event.MessageMetadata {
	ud := ls.CheckUserData(pos)
	if v, ok := ud.Value.(*event.MessageMetadata); ok {
		return v
	}
	ls.ArgError(pos, messageName+" expected")
	return nil
}

// Gets a field value from a message user object.  This emulates a Lua table, allowing
// `msg.title` instead of a Lua object syntax of `msg:title()`.
func messageIndex(ls *lua.LState) int {
	m := checkMessage(ls, 1)
	field := ls.CheckString(2)

	switch field {
	case "mailbox":
		ls.Push(lua.LString(m.Mailbox))
	case "id":
		ls.Push(lua.LNumber(m.ID))
	case "sender":
		ls.Push(lua.LString(m.Sender))
	case "title":
		ls.Push(lua.LString(m.Title))
	case "body":
		ls.Push(lua.LString(m.Body))
	case "size":
		ls.Push(lua.LNumber(m.Size))
	case "read":
		ls.Push(lua.LBool(m.Read))
	default:
		// Unknown field.
		ls.Push(lua.LNil)
	}

	return 1
}

// Messages are snapshots, writes would be silently lost.
func messageNewIndex(ls *lua.LState) int {
	checkMessage(ls, 1)
	ls.RaiseError("message fields are read-only")
	return 0
}

func registerOutgoingMessageType(ls *lua.LState) {
	mt := ls.NewTypeMetatable(outgoingMessageName)
	ls.SetGlobal(outgoingMessageName, mt)

	ls.SetField(mt, "__index", ls.NewFunction(outgoingMessageIndex))
	ls.SetField(mt, "__newindex", ls.NewFunction(outgoingMessageNewIndex))
}

func wrapOutgoingMessage(ls *lua.LState, val *event.OutgoingMessage) *lua.LUserData {
	return wrapUserData(ls, val, outgoingMessageName)
}

func checkOutgoingMessage(ls *lua.LState, pos int) *event.OutgoingMessage {
	ud := ls.CheckUserData(pos)
	if v, ok := ud.Value.(*event.OutgoingMessage); ok {
		return v
	}
	ls.ArgError(pos, outgoingMessageName+" expected")
	return nil
}

func outgoingMessageIndex(ls *lua.LState) int {
	m := checkOutgoingMessage(ls, 1)
	field := ls.CheckString(2)

	switch field {
	case "sender":
		ls.Push(lua.LString(m.Sender))
	case "recipient":
		ls.Push(lua.LString(m.Recipient))
	case "title":
		ls.Push(lua.LString(m.Title))
	case "body":
		ls.Push(lua.LString(m.Body))
	case "urgent":
		ls.Push(lua.LBool(m.Urgent))
	default:
		ls.Push(lua.LNil)
	}

	return 1
}

// Routing is fixed once the recipient check passes; only content and urgency may change.
func outgoingMessageNewIndex(ls *lua.LState) int {
	m := checkOutgoingMessage(ls, 1)
	index := ls.CheckString(2)

	switch index {
	case "title":
		m.Title = ls.CheckString(3)
	case "body":
		m.Body = ls.CheckString(3)
	case "urgent":
		m.Urgent = ls.CheckBool(3)
	default:
		ls.RaiseError("invalid or read-only index %q", index)
	}

	return 0
}
