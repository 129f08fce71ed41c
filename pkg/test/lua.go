// Package test holds helpers shared by tests across the module.
package test

import (
	"strings"

	"github.com/cosmotek/loguago"
	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
)

// LuaInit holds useful test globals.  Failed assertions raise Lua errors.
const LuaInit = `
	local logger = require("logger")

	-- Verifies plain values and list-style tables.
	function assert_eq(got, want, label)
		label = label or "value"
		if type(got) == "table" and type(want) == "table" then
			assert(#got == #want,
				string.format("%s: got %d elements, wanted %d", label, #got, #want))

			for i, gotv in ipairs(got) do
				assert_eq(gotv, want[i], string.format("%s[%d]", label, i))
			end

			return
		end

		if got ~= want then
			logger.error("assertion failed", {label = label})
			error(string.format("%s: got %q, wanted %q", label, tostring(got), tostring(want)))
		end
	end

	-- Verifies string got contains plain string want.
	function assert_contains(got, want)
		assert(string.find(got, want, 1, true),
			string.format("got %q, wanted it to contain %q", got, want))
	end

	-- Verifies fn raises an error containing want.
	function assert_error(fn, want)
		local ok, err = pcall(fn)
		assert(not ok, "expected an error")
		assert_contains(tostring(err), want)
	end
`

// NewLuaState creates a new Lua LState initialized with logging and the test helpers in `LuaInit`.
//
// Returns a pointer to the created LState and a string builder to hold the log output.
func NewLuaState() (*lua.LState, *strings.Builder) {
	output := &strings.Builder{}
	logger := loguago.NewLogger(zerolog.New(output))

	ls := lua.NewState()
	ls.PreloadModule("logger", logger.Loader)
	if err := ls.DoString(LuaInit); err != nil {
		panic(err)
	}

	return ls, output
}
