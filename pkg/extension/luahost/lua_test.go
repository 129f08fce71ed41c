package luahost_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/inbucket/postoffice/pkg/config"
	"github.com/inbucket/postoffice/pkg/extension"
	"github.com/inbucket/postoffice/pkg/extension/luahost"
	"github.com/inbucket/postoffice/pkg/postoffice"
	"github.com/inbucket/postoffice/pkg/test"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var consoleLogger = zerolog.New(zerolog.NewConsoleWriter())

// runScript loads script, prefixed with the Lua test helpers, against a fresh post office.
func runScript(
	t *testing.T,
	users []string,
	script string,
) (*postoffice.Directory, *luahost.Host, *strings.Builder) {
	t.Helper()
	extHost := extension.NewHost()
	office := postoffice.New(users, extHost)
	output := &strings.Builder{}
	h, err := luahost.NewFromReader(zerolog.New(output), extHost, office,
		strings.NewReader(test.LuaInit+script), "test.lua")
	require.NoError(t, err, "log output: %s", output.String())
	t.Cleanup(h.Close)
	return office, h, output
}

func TestEmptyScript(t *testing.T) {
	office := postoffice.New(nil, nil)
	h, err := luahost.NewFromReader(consoleLogger, extension.NewHost(), office,
		strings.NewReader(""), "test.lua")
	require.NoError(t, err)
	require.NotNil(t, h)
	h.Close()
}

func TestSyntaxError(t *testing.T) {
	office := postoffice.New(nil, nil)
	_, err := luahost.NewFromReader(consoleLogger, extension.NewHost(), office,
		strings.NewReader("function ("), "test.lua")
	assert.Error(t, err)
}

func TestRuntimeErrorReleasesHooks(t *testing.T) {
	extHost := extension.NewHost()
	office := postoffice.New([]string{"a"}, extHost)
	_, err := luahost.NewFromReader(consoleLogger, extHost, office,
		strings.NewReader(`error("boom")`), "test.lua")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Empty(t, extHost.Events.AfterMessageSent.Names())
}

func TestLogger(t *testing.T) {
	script := `
		local logger = require("logger")
		logger.info("_test log entry_", {})
	`
	_, _, output := runScript(t, nil, script)
	assert.Contains(t, output.String(), "_test log entry_")
}

func TestJSONModule(t *testing.T) {
	script := `
		local json = require("json")
		assert_eq(json.encode(office:users()), '["a","b"]', "users json")
		local decoded = json.decode('{"title": "T", "n": 2}')
		assert_eq(decoded.title, "T")
	`
	runScript(t, []string{"b", "a"}, script)
}

func TestOfficeScenario(t *testing.T) {
	script := `
		assert_eq(office:send("a", "b", "T", "hello"), 1)
		assert_eq(office:send("a", "b", "T2", "world", true), 2)
		assert_eq(office:last_id(), 2)

		local box = office:box("b")
		assert_eq(#box, 2, "#box")
		assert_eq(box[1].id, 2, "box[1].id")
		assert_eq(box[1].read, false, "box[1].read")

		assert_eq(office:read_inbox("b", 1), {"Message title: T2 Message body: world"})
		assert_eq(office:search_inbox("b", "hello"), {"Message title: T Message body: hello"})
		assert_eq(office:read_inbox("b", 5), {})
	`
	office, _, _ := runScript(t, []string{"a", "b"}, script)

	box, err := office.Box("b")
	require.NoError(t, err)
	require.Len(t, box, 2)
	assert.True(t, box[0].IsRead())
	assert.True(t, box[1].IsRead())
}

func TestOfficeUnknownUserRaises(t *testing.T) {
	script := `
		assert_error(function() office:send("a", "ghost", "t", "b") end, "unknown user")
		assert_error(function() office:read_inbox("ghost", 1) end, "unknown user")
		assert_error(function() office:search_inbox("ghost", "") end, "unknown user")
		assert_error(function() office:box("ghost") end, "unknown user")
		assert_eq(office:last_id(), 0)
	`
	runScript(t, []string{"a"}, script)
}

func TestMessageFieldsReadOnly(t *testing.T) {
	script := `
		office:send("Mr. Peanutbutter", "Newman", "Hi", "Hello, Newman.")
		local msg = office:box("Newman")[1]
		assert_eq(msg.mailbox, "Newman")
		assert_eq(msg.sender, "Mr. Peanutbutter")
		assert_eq(msg.title, "Hi")
		assert_eq(msg.body, "Hello, Newman.")
		assert_eq(msg.size, 14)
		assert_eq(msg.nonsense, nil)
		assert_error(function() msg.title = "x" end, "read-only")
	`
	runScript(t, []string{"Newman"}, script)
}

func TestAfterMessageSent(t *testing.T) {
	script := `
		function postoffice.after.message_sent(msg)
			if msg.mailbox ~= "audit" then
				office:send("hook", "audit", "sent", string.format("%s #%d", msg.mailbox, msg.id))
			end
		end
	`
	office, _, output := runScript(t, []string{"user", "audit"}, script)

	_, err := office.Send("x", "user", "t", "b", false)
	require.NoError(t, err)
	_, err = office.Send("x", "user", "t", "b", false)
	require.NoError(t, err)

	got, err := office.ReadInbox("audit", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Message title: sent Message body: user #1",
		"Message title: sent Message body: user #3",
	}, got)
	assert.NotContains(t, output.String(), "Failed")
}

func TestAfterMessageRead(t *testing.T) {
	script := `
		read_ids = {}
		function postoffice.after.message_read(msg)
			assert_eq(msg.read, true, "msg.read")
			table.insert(read_ids, msg.id)
		end

		office:send("a", "u", "t", "one")
		office:send("a", "u", "t", "two")
		office:read_inbox("u", 1)
		office:search_inbox("u", "")
		assert_eq(read_ids, {1, 2})
	`
	_, _, output := runScript(t, []string{"u"}, script)
	assert.NotContains(t, output.String(), "Failed")
}

func TestBeforeMessageSent(t *testing.T) {
	script := `
		function postoffice.before.message_sent(msg)
			assert_eq(msg.recipient, "u")
			if msg.sender == "boss" then
				msg.title = "[URGENT] " .. msg.title
				msg.urgent = true
				return msg
			end
			return nil
		end
	`
	office, _, output := runScript(t, []string{"u"}, script)

	_, err := office.Send("peer", "u", "lunch", "?", false)
	require.NoError(t, err)
	_, err = office.Send("boss", "u", "report", "now", false)
	require.NoError(t, err)

	box, err := office.Box("u")
	require.NoError(t, err)
	require.Len(t, box, 2)
	assert.Equal(t, "[URGENT] report", box[0].Title())
	assert.Equal(t, "lunch", box[1].Title())
	assert.NotContains(t, output.String(), "Failed")
}

func TestBeforeMessageSentHookSends(t *testing.T) {
	script := `
		function postoffice.before.message_sent(msg)
			if msg.sender ~= "robot" then
				office:send("robot", msg.recipient, "notice", "incoming from " .. msg.sender)
			end
			return nil
		end

		local id = office:send("a", "u", "t", "b")
		assert_eq(id, 2, "outer id")
		assert_eq(office:last_id(), 2, "last_id")
		local box = office:box("u")
		assert_eq(#box, 2, "box length")
		assert_eq(box[1].id, 1, "box[1].id")
		assert_eq(box[1].title, "notice", "box[1].title")
		assert_eq(box[2].id, 2, "box[2].id")
	`
	office, _, output := runScript(t, []string{"u"}, script)
	assert.NotContains(t, output.String(), "Failed")

	_, err := office.Send("b", "u", "t", "b", false)
	require.NoError(t, err)
	box, err := office.Box("u")
	require.NoError(t, err)
	assert.Len(t, box, 4)
}

func TestAfterMessageReadHookReads(t *testing.T) {
	script := `
		inner = {}
		function postoffice.after.message_read(msg)
			if msg.id == 1 then
				for _, s in ipairs(office:read_inbox("u", 1)) do
					table.insert(inner, s)
				end
			end
		end

		office:send("a", "u", "m1", "b")
		office:send("a", "u", "m2", "b")
		office:send("a", "u", "m3", "b")
		local got = office:read_inbox("u", 2)
		assert_eq(got, {
			"Message title: m1 Message body: b",
			"Message title: m3 Message body: b",
		})
		assert_eq(inner, {"Message title: m2 Message body: b"})
	`
	_, _, output := runScript(t, []string{"u"}, script)
	assert.NotContains(t, output.String(), "Failed")
}

func TestBeforeMessageSentRoutingReadOnly(t *testing.T) {
	script := `
		function postoffice.before.message_sent(msg)
			msg.recipient = "elsewhere"
			return msg
		end
	`
	office, _, output := runScript(t, []string{"u"}, script)

	_, err := office.Send("a", "u", "t", "b", false)
	require.NoError(t, err)
	box, _ := office.Box("u")
	assert.Len(t, box, 1)
	assert.Contains(t, output.String(), "Failed to call Lua function")
}

func TestBeforeMessageSentBadReturn(t *testing.T) {
	script := `
		function postoffice.before.message_sent(msg)
			return "nope"
		end
	`
	office, _, output := runScript(t, []string{"u"}, script)

	_, err := office.Send("a", "u", "t", "b", false)
	require.NoError(t, err)
	assert.Contains(t, output.String(), "unexpected type")
}

func TestInvalidHookName(t *testing.T) {
	extHost := extension.NewHost()
	office := postoffice.New(nil, extHost)
	script := `
		function postoffice.after.message_lost(msg) end
	`
	_, err := luahost.NewFromReader(consoleLogger, extHost, office,
		strings.NewReader(script), "test.lua")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message_lost")
}

func TestClearingHook(t *testing.T) {
	script := `
		count = 0
		function postoffice.after.message_sent(msg) count = count + 1 end
		office:send("a", "u", "t", "b")
		postoffice.after.message_sent = nil
		office:send("a", "u", "t", "b")
		assert_eq(count, 1)
		assert_eq(postoffice.after.message_sent, nil)
	`
	runScript(t, []string{"u"}, script)
}

func TestCloseDetachesListeners(t *testing.T) {
	extHost := extension.NewHost()
	office := postoffice.New([]string{"u"}, extHost)
	h, err := luahost.NewFromReader(consoleLogger, extHost, office,
		strings.NewReader(`function postoffice.after.message_sent(msg) error("x") end`), "test.lua")
	require.NoError(t, err)
	assert.NotEmpty(t, extHost.Events.AfterMessageSent.Names())

	h.Close()
	assert.Empty(t, extHost.Events.BeforeMessageSent.Names())
	assert.Empty(t, extHost.Events.AfterMessageSent.Names())
	assert.Empty(t, extHost.Events.AfterMessageRead.Names())
}

func TestNewFromConfig(t *testing.T) {
	dir := t.TempDir()
	office := postoffice.New([]string{"u"}, nil)

	// Missing scripts are skipped.
	h, err := luahost.New(config.Lua{Path: filepath.Join(dir, "missing.lua")}, consoleLogger,
		extension.NewHost(), office)
	require.NoError(t, err)
	assert.Nil(t, h)

	h, err = luahost.New(config.Lua{Path: ""}, consoleLogger, extension.NewHost(), office)
	require.NoError(t, err)
	assert.Nil(t, h)

	_, err = luahost.New(config.Lua{Path: dir}, consoleLogger, extension.NewHost(), office)
	assert.Error(t, err)

	path := filepath.Join(dir, "hooks.lua")
	require.NoError(t, os.WriteFile(path, []byte(`office:send("lua", "u", "boot", "ok")`), 0o644))
	h, err = luahost.New(config.Lua{Path: path}, consoleLogger, extension.NewHost(), office)
	require.NoError(t, err)
	require.NotNil(t, h)
	defer h.Close()
	assert.Equal(t, 1, office.LastID())
}
