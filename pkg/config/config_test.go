package config_test

import (
	"os"
	"strings"
	"testing"

	"github.com/inbucket/postoffice/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets config variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"POSTOFFICE_LOGLEVEL", "POSTOFFICE_USERS", "POSTOFFICE_LUA_PATH"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestProcessDefaults(t *testing.T) {
	clearEnv(t)

	conf, err := config.Process()
	require.NoError(t, err)
	assert.Equal(t, "info", conf.LogLevel)
	assert.Equal(t, []string{"Newman", "Mr. Peanutbutter"}, conf.Users)
	assert.Equal(t, "postoffice.lua", conf.Lua.Path)
}

func TestProcessEnvironment(t *testing.T) {
	t.Setenv("POSTOFFICE_LOGLEVEL", "debug")
	t.Setenv("POSTOFFICE_USERS", "alice,bob,carol")
	t.Setenv("POSTOFFICE_LUA_PATH", "/tmp/hooks.lua")

	conf, err := config.Process()
	require.NoError(t, err)
	assert.Equal(t, "debug", conf.LogLevel)
	assert.Equal(t, []string{"alice", "bob", "carol"}, conf.Users)
	assert.Equal(t, "/tmp/hooks.lua", conf.Lua.Path)
}

func TestUsage(t *testing.T) {
	b := &strings.Builder{}
	require.NoError(t, config.Usage(b))
	assert.Contains(t, b.String(), "POSTOFFICE_USERS")
	assert.Contains(t, b.String(), "POSTOFFICE_LUA_PATH")
}
