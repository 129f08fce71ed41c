package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/google/subcommands"
	"github.com/inbucket/postoffice/pkg/letter"
	"github.com/inbucket/postoffice/pkg/postoffice"
)

type importCmd struct {
	out    io.Writer
	to     string
	urgent bool
}

func (*importCmd) Name() string {
	return "import"
}

func (*importCmd) Synopsis() string {
	return "deliver .eml files to a mailbox and read it"
}

func (*importCmd) Usage() string {
	return `import -to <user> [flags] <file.eml>...:
	parse each RFC 5322 message, send it to the user, then print a per-sender
	summary followed by every unread message in the mailbox
`
}

func (i *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&i.to, "to", "", "recipient user, must be configured")
	f.BoolVar(&i.urgent, "urgent", false, "deliver imported messages as urgent")
}

func (i *importCmd) Execute(
	_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if i.to == "" {
		return usage("-to user required")
	}
	if f.NArg() == 0 {
		return usage("at least one message file required")
	}

	conf := rootConfig(args)
	office, closeHooks, err := newOffice(conf, conf.Users)
	if err != nil {
		return fatal("Failed to load Lua hooks", err)
	}
	defer closeHooks()

	for _, path := range f.Args() {
		if err := i.deliver(office, path); err != nil {
			return fatal("Import of "+path+" failed", err)
		}
	}
	if err := i.report(office); err != nil {
		return fatal("Read failed", err)
	}
	return subcommands.ExitSuccess
}

func (i *importCmd) deliver(office *postoffice.Directory, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	l, err := letter.Read(file)
	if err != nil {
		return err
	}
	_, err = office.Send(l.Sender, i.to, l.Title, l.Body, i.urgent)
	return err
}

func (i *importCmd) report(office *postoffice.Directory) error {
	groups, err := office.GroupBySender(i.to)
	if err != nil {
		return err
	}
	senders := make([]string, 0, len(groups))
	total := 0
	for sender, msgs := range groups {
		senders = append(senders, sender)
		total += len(msgs)
	}
	sort.Strings(senders)
	for _, sender := range senders {
		fmt.Fprintf(i.out, "%d from %s\n", len(groups[sender]), sender)
	}

	rendered, err := office.ReadInbox(i.to, total)
	if err != nil {
		return err
	}
	printRendered(i.out, fmt.Sprintf("read_inbox(%q, %d)", i.to, total), rendered)
	return nil
}
