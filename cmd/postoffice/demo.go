package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/google/subcommands"
	"github.com/inbucket/postoffice/pkg/groupby"
	"github.com/inbucket/postoffice/pkg/postoffice"
)

const (
	demoSender    = "Mr. Peanutbutter"
	demoRecipient = "Newman"
	demoTitle     = "Greetings"
)

// demoBodies are sent in order after the first message.
var demoBodies = []string{
	"Hello, Newman.",
	"Hello, Newman.",
	"Hello, Newman.",
	"Hello, Newman.",
	"Hello, Newman.",
	"Hello, Dvir.",
	"Hello, Newman.",
	"Hello, Dvir.",
	"Hello, Newman.",
	"Hello, Dvir.",
}

type demoCmd struct {
	out io.Writer
}

func (*demoCmd) Name() string {
	return "demo"
}

func (*demoCmd) Synopsis() string {
	return "walk through a sample post office session"
}

func (*demoCmd) Usage() string {
	return `demo:
	send a batch of messages to Newman, then read and search his mailbox
`
}

func (d *demoCmd) SetFlags(f *flag.FlagSet) {}

func (d *demoCmd) Execute(
	_ context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	conf := rootConfig(args)
	office, closeHooks, err := newOffice(conf, []string{demoRecipient, demoSender})
	if err != nil {
		return fatal("Failed to load Lua hooks", err)
	}
	defer closeHooks()

	if err := d.run(office); err != nil {
		return fatal("Demo failed", err)
	}
	return subcommands.ExitSuccess
}

func (d *demoCmd) run(office *postoffice.Directory) error {
	id, err := office.Send(demoSender, demoRecipient, demoTitle, "Hello, Newman.", false)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "Successfully sent message number %d.\n", id)
	if err := printBox(d.out, office, demoRecipient); err != nil {
		return err
	}

	for _, body := range demoBodies {
		if id, err = office.Send(demoSender, demoRecipient, demoTitle, body, false); err != nil {
			return err
		}
	}
	fmt.Fprintf(d.out, "Successfully sent message number %d.\n", id)
	if err := printBox(d.out, office, demoRecipient); err != nil {
		return err
	}

	for i := 0; i < 2; i++ {
		rendered, err := office.ReadInbox(demoRecipient, 9)
		if err != nil {
			return err
		}
		printRendered(d.out, fmt.Sprintf("read_inbox(%q, 9)", demoRecipient), rendered)
	}

	rendered, err := office.SearchInbox(demoRecipient, "Dvir")
	if err != nil {
		return err
	}
	printRendered(d.out, fmt.Sprintf("search_inbox(%q, %q)", demoRecipient, "Dvir"), rendered)

	words := []string{"hi", "bye", "yo", "try"}
	fmt.Fprintf(d.out, "group_by(len, %v): %v\n", words,
		groupby.By(func(s string) int { return len(s) }, words))

	return nil
}

// printBox lists the contents of a mailbox without reading it.
func printBox(w io.Writer, office *postoffice.Directory, user string) error {
	box, err := office.Box(user)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s's box holds %d message(s):\n", user, len(box))
	for _, m := range box {
		state := "unread"
		if m.IsRead() {
			state = "read"
		}
		fmt.Fprintf(w, "  #%d from %s, %d chars, %s\n", m.ID(), m.Sender(), m.Size(), state)
	}
	return nil
}

func printRendered(w io.Writer, label string, rendered []string) {
	fmt.Fprintf(w, "%s returned %d message(s):\n", label, len(rendered))
	for _, r := range rendered {
		fmt.Fprintf(w, "  %s\n", r)
	}
}
