package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/inbucket/postoffice/pkg/extension"
	"github.com/inbucket/postoffice/pkg/extension/luahost"
	"github.com/inbucket/postoffice/pkg/postoffice"
	"github.com/rs/zerolog/log"
)

type runCmd struct {
	out io.Writer
}

func (*runCmd) Name() string {
	return "run"
}

func (*runCmd) Synopsis() string {
	return "run a Lua script against a fresh post office"
}

func (*runCmd) Usage() string {
	return `run [<script.lua>]:
	run the script with the global 'office' bound to a post office holding a
	mailbox for each configured user; defaults to the configured Lua path
`
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {}

func (r *runCmd) Execute(
	_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	conf := rootConfig(args)
	path := f.Arg(0)
	if path == "" {
		path = conf.Lua.Path
	}
	if path == "" {
		return usage("script path required")
	}

	file, err := os.Open(path)
	if err != nil {
		return fatal("Couldn't open script", err)
	}
	defer file.Close()

	extHost := extension.NewHost()
	office := postoffice.New(conf.Users, extHost)
	host, err := luahost.NewFromReader(log.Logger, extHost, office, bufio.NewReader(file), path)
	if err != nil {
		return fatal("Script failed", err)
	}
	host.Close()

	fmt.Fprintf(r.out, "%s: %d message(s) sent\n", path, office.LastID())
	return subcommands.ExitSuccess
}
