// Package config loads post office settings from the environment.
package config

import (
	"io"
	"text/tabwriter"

	"github.com/kelseyhightower/envconfig"
)

const (
	prefix      = "postoffice"
	tableFormat = `The post office is configured via the environment. The following environment
variables can be used:

KEY	DEFAULT	REQUIRED	DESCRIPTION
{{range .}}{{usage_key .}}	{{usage_default .}}	{{usage_required .}}	{{usage_description .}}
{{end}}`
)

var (
	// Version of this build, set by main
	Version = ""

	// BuildDate for this build, set by main
	BuildDate = ""
)

// Root wraps all other configurations.
type Root struct {
	LogLevel string   `required:"true" default:"info" desc:"debug, info, warn, or error"`
	Users    []string `required:"true" default:"Newman,Mr. Peanutbutter" desc:"Users provisioned with a mailbox"`
	Lua      Lua
}

// Lua contains the Lua scripting configuration.
type Lua struct {
	Path string `required:"true" default:"postoffice.lua" desc:"Lua hook script, skipped if missing"`
}

// Process loads and parses configuration from the environment.
func Process() (*Root, error) {
	c := &Root{}
	err := envconfig.Process(prefix, c)
	return c, err
}

// Usage writes the envconfig usage table to w.
func Usage(w io.Writer) error {
	tabs := tabwriter.NewWriter(w, 1, 0, 4, ' ', 0)
	if err := envconfig.Usagef(prefix, &Root{}, tabs, tableFormat); err != nil {
		return err
	}
	return tabs.Flush()
}
