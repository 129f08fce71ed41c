package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/google/subcommands"
	"github.com/inbucket/postoffice/pkg/stego"
)

type decodeCmd struct {
	out io.Writer
}

func (*decodeCmd) Name() string {
	return "decode"
}

func (*decodeCmd) Synopsis() string {
	return "reveal text hidden in an image"
}

func (*decodeCmd) Usage() string {
	return `decode <image>...:
	print the text hidden in each PNG, GIF or JPEG image
`
}

func (d *decodeCmd) SetFlags(f *flag.FlagSet) {}

func (d *decodeCmd) Execute(
	_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return usage("image path required")
	}
	for _, path := range f.Args() {
		text, err := stego.DecodeFile(path)
		if err != nil {
			return fatal("Couldn't decode image", err)
		}
		fmt.Fprintln(d.out, text)
	}
	return subcommands.ExitSuccess
}
