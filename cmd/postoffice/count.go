package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os/user"

	"github.com/google/subcommands"
	"github.com/inbucket/postoffice/pkg/file"
)

type countCmd struct {
	out    io.Writer
	reader string
}

func (*countCmd) Name() string {
	return "count"
}

func (*countCmd) Synopsis() string {
	return "count lines containing a string"
}

func (*countCmd) Usage() string {
	return `count [-as <user>] <substr> <file>...:
	print the number of lines in each file containing substr; files are created by the
	current user and may only be read by it
`
}

func (c *countCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.reader, "as", currentUser(), "user reading the files")
}

func (c *countCmd) Execute(
	_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 {
		return usage("substr and at least one file required")
	}
	substr := f.Arg(0)

	owner := currentUser()
	for _, path := range f.Args()[1:] {
		tf, err := file.Load(path, owner)
		if err != nil {
			return fatal("Couldn't load file", err)
		}
		if _, err := tf.Read(c.reader); err != nil {
			return fatal("Couldn't read file", err)
		}
		fmt.Fprintf(c.out, "%s: %d\n", path, tf.Count(substr))
	}
	return subcommands.ExitSuccess
}

func currentUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}
