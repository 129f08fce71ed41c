package main

import (
	"context"
	"flag"
	"io"

	"github.com/google/subcommands"
	"github.com/inbucket/postoffice/pkg/config"
)

type envCmd struct {
	out io.Writer
}

func (*envCmd) Name() string {
	return "env"
}

func (*envCmd) Synopsis() string {
	return "describe configuration environment variables"
}

func (*envCmd) Usage() string {
	return `env:
	print the environment variables read at startup
`
}

func (e *envCmd) SetFlags(f *flag.FlagSet) {}

func (e *envCmd) Execute(
	_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := config.Usage(e.out); err != nil {
		return fatal("Unable to describe env config", err)
	}
	return subcommands.ExitSuccess
}
