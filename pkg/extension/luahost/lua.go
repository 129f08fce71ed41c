package luahost

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/cosmotek/loguago"
	json "github.com/inbucket/gopher-json"
	"github.com/inbucket/postoffice/pkg/config"
	"github.com/inbucket/postoffice/pkg/extension"
	"github.com/inbucket/postoffice/pkg/extension/event"
	"github.com/inbucket/postoffice/pkg/postoffice"
	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// Host runs a Lua script against a post office, and relays post office events to the hook
// functions the script registers.
//
// A Host owns a single LState, and like the post office it is not safe for concurrent use.
type Host struct {
	extHost *extension.Host
	state   *lua.LState
	hooks   *Hooks
	logger  zerolog.Logger
}

// New constructs a Lua Host from the script at conf.Path.  A missing script is not an error, the
// returned Host is nil.
func New(
	conf config.Lua,
	logger zerolog.Logger,
	extHost *extension.Host,
	office *postoffice.Directory,
) (*Host, error) {
	scriptPath := conf.Path
	if scriptPath == "" {
		return nil, nil
	}

	slog := logger.With().Str("module", "lua").Str("phase", "startup").Str("path", scriptPath).
		Logger()

	if fi, err := os.Stat(scriptPath); err != nil {
		slog.Info().Msg("Script file not found")
		return nil, nil
	} else if fi.IsDir() {
		return nil, fmt.Errorf("Lua script %v is a directory", scriptPath)
	}

	slog.Info().Msg("Loading script")
	file, err := os.Open(scriptPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return NewFromReader(logger, extHost, office, bufio.NewReader(file), scriptPath)
}

// NewFromReader constructs a new Lua Host, loading and running Lua source from the provided
// reader.  The provided path is used in logging and error messages.
func NewFromReader(
	logger zerolog.Logger,
	extHost *extension.Host,
	office *postoffice.Directory,
	r io.Reader,
	path string,
) (*Host, error) {
	chunk, err := parse.Parse(r, path)
	if err != nil {
		return nil, err
	}
	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return nil, err
	}

	h := &Host{
		extHost: extHost,
		hooks:   &Hooks{},
		logger:  logger.With().Str("module", "lua").Str("path", path).Logger(),
	}
	h.state = h.newState(office)

	// Hooks must be wired before the script body runs, it may send mail.
	h.wireEventListeners()

	h.state.Push(h.state.NewFunctionFromProto(proto))
	if err := h.state.PCall(0, lua.MultRet, nil); err != nil {
		h.Close()
		return nil, err
	}

	return h, nil
}

// Close releases the Lua state and detaches the host from the extension events.
func (h *Host) Close() {
	h.extHost.Events.BeforeMessageSent.RemoveListener(listenerName)
	h.extHost.Events.AfterMessageSent.RemoveListener(listenerName)
	h.extHost.Events.AfterMessageRead.RemoveListener(listenerName)
	h.state.Close()
}

// newState creates the LState and configures its modules, types and globals.
func (h *Host) newState(office *postoffice.Directory) *lua.LState {
	ls := lua.NewState()

	ls.PreloadModule("json", json.Loader)
	ls.PreloadModule("logger", loguago.NewLogger(h.logger).Loader)

	registerMessageType(ls)
	registerOutgoingMessageType(ls)
	registerOfficeType(ls)
	registerPostOfficeTypes(ls, h.hooks)

	ls.SetGlobal(officeName, wrapOffice(ls, office))

	return ls
}

const listenerName = "lua"

func (h *Host) wireEventListeners() {
	events := h.extHost.Events

	events.BeforeMessageSent.AddListener(listenerName, h.handleBeforeMessageSent)
	events.AfterMessageSent.AddListener(listenerName,
		h.afterHandler(afterMessageSentName, func() *lua.LFunction { return h.hooks.After.MessageSent }))
	events.AfterMessageRead.AddListener(listenerName,
		h.afterHandler(afterMessageReadName, func() *lua.LFunction { return h.hooks.After.MessageRead }))
}

func (h *Host) handleBeforeMessageSent(msg event.OutgoingMessage) *event.OutgoingMessage {
	fn := h.hooks.Before.MessageSent
	if fn == nil {
		return nil
	}

	logger := h.logger.With().Str("event", beforeMessageSentName).Logger()
	ls := h.state
	if err := ls.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true},
		wrapOutgoingMessage(ls, &msg)); err != nil {
		logger.Error().Err(err).Msg("Failed to call Lua function")
		return nil
	}

	lval := ls.Get(-1)
	ls.Pop(1)
	if lval == lua.LNil {
		return nil
	}
	if ud, ok := lval.(*lua.LUserData); ok {
		if result, ok := ud.Value.(*event.OutgoingMessage); ok {
			return result
		}
	}

	logger.Error().Str("type", lval.Type().String()).
		Msg("Lua function returned unexpected type, wanted outgoing_message or nil")
	return nil
}

// afterHandler builds an extension listener that calls the hook returned by fn, if one is set at
// the time of the event.
func (h *Host) afterHandler(
	name string,
	fn func() *lua.LFunction,
) func(event.MessageMetadata) *extension.Void {
	return func(msg event.MessageMetadata) *extension.Void {
		lfunc := fn()
		if lfunc == nil {
			return nil
		}

		ls := h.state
		if err := ls.CallByParam(lua.P{Fn: lfunc, NRet: 0, Protect: true},
			wrapMessage(ls, &msg)); err != nil {
			h.logger.Error().Str("event", name).Err(err).Msg("Failed to call Lua function")
		}
		return nil
	}
}
