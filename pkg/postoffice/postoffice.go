// Package postoffice routes messages between a fixed set of user mailboxes.
package postoffice

import (
	"errors"
	"fmt"
	"sort"

	"github.com/inbucket/postoffice/pkg/extension"
	"github.com/inbucket/postoffice/pkg/extension/event"
	"github.com/inbucket/postoffice/pkg/groupby"
	"github.com/inbucket/postoffice/pkg/message"
	"github.com/rs/zerolog/log"
)

// ErrUnknownUser indicates no mailbox was provisioned for the requested user.
var ErrUnknownUser = errors.New("unknown user")

// Directory owns the mailboxes of a fixed set of users.
//
// A Directory is not safe for concurrent use.  Calls from multiple goroutines race on the ID
// counter and the mailbox slices; the results of doing so are undefined.
type Directory struct {
	boxes   map[string][]*message.Message
	lastID  int
	extHost *extension.Host
}

// New creates a Directory with an empty mailbox for each username.  Duplicate usernames share a
// single mailbox.  A nil extHost is replaced with an empty one.
func New(usernames []string, extHost *extension.Host) *Directory {
	if extHost == nil {
		extHost = extension.NewHost()
	}
	d := &Directory{
		boxes:   make(map[string][]*message.Message, len(usernames)),
		extHost: extHost,
	}
	for _, name := range usernames {
		d.boxes[name] = []*message.Message{}
	}
	log.Debug().Str("module", "postoffice").Int("boxes", len(d.boxes)).Msg("Directory created")
	return d
}

// Send delivers a new message to recipient and returns its ID.  Urgent messages are placed at the
// front of the mailbox, all others at the back.  The sender is not validated.
func (d *Directory) Send(sender, recipient, title, body string, urgent bool) (int, error) {
	if _, ok := d.boxes[recipient]; !ok {
		return 0, unknownUser(recipient)
	}

	out := event.OutgoingMessage{
		Sender:    sender,
		Recipient: recipient,
		Title:     title,
		Body:      body,
		Urgent:    urgent,
	}
	if result := d.extHost.Events.BeforeMessageSent.Emit(&out); result != nil {
		// Listeners may rewrite content and urgency, not routing.
		out.Title = result.Title
		out.Body = result.Body
		out.Urgent = result.Urgent
	}

	// Listeners may have delivered to this box; load it after they return.
	box := d.boxes[recipient]
	d.lastID++
	m := message.New(d.lastID, sender, out.Title, out.Body)
	if out.Urgent {
		box = append([]*message.Message{m}, box...)
	} else {
		box = append(box, m)
	}
	d.boxes[recipient] = box

	log.Debug().Str("module", "postoffice").Str("mailbox", recipient).Int("id", m.ID()).
		Bool("urgent", out.Urgent).Msg("Delivered message")
	meta := m.Metadata(recipient)
	d.extHost.Events.AfterMessageSent.Emit(&meta)

	return m.ID(), nil
}

// ReadInbox reads up to n unread messages from the user's mailbox, in stored order, and returns
// their rendered forms.  Each returned message is marked read.  Messages already read are skipped
// and do not count against n.  A request for zero or fewer messages returns an empty result.
func (d *Directory) ReadInbox(username string, n int) ([]string, error) {
	box, ok := d.boxes[username]
	if !ok {
		return nil, unknownUser(username)
	}
	if n > len(box) {
		n = len(box)
	}
	if n <= 0 {
		return []string{}, nil
	}

	rendered := make([]string, 0, n)
	for _, m := range box {
		if m.IsRead() {
			continue
		}
		rendered = append(rendered, d.read(username, m))
		n--
		if n == 0 {
			break
		}
	}

	log.Debug().Str("module", "postoffice").Str("mailbox", username).Int("count", len(rendered)).
		Msg("Read inbox")
	return rendered, nil
}

// SearchInbox returns the rendered form of every message in the user's mailbox whose title or body
// contains substr, in stored order.  Matching messages are marked read; the rest are untouched.
func (d *Directory) SearchInbox(username, substr string) ([]string, error) {
	box, ok := d.boxes[username]
	if !ok {
		return nil, unknownUser(username)
	}

	rendered := make([]string, 0)
	for _, m := range box {
		if m.Contains(substr) {
			rendered = append(rendered, d.read(username, m))
		}
	}

	log.Debug().Str("module", "postoffice").Str("mailbox", username).Str("substr", substr).
		Int("count", len(rendered)).Msg("Searched inbox")
	return rendered, nil
}

// Box returns the messages in the user's mailbox, in stored order.  The slice is a copy; the
// messages are not.
func (d *Directory) Box(username string) ([]*message.Message, error) {
	box, ok := d.boxes[username]
	if !ok {
		return nil, unknownUser(username)
	}
	return append([]*message.Message(nil), box...), nil
}

// GroupBySender returns the user's messages bucketed by sender, each bucket in stored order.
func (d *Directory) GroupBySender(username string) (map[string][]*message.Message, error) {
	box, ok := d.boxes[username]
	if !ok {
		return nil, unknownUser(username)
	}
	return groupby.By((*message.Message).Sender, box), nil
}

// Users returns the provisioned usernames, sorted.
func (d *Directory) Users() []string {
	users := make([]string, 0, len(d.boxes))
	for name := range d.boxes {
		users = append(users, name)
	}
	sort.Strings(users)
	return users
}

// LastID returns the most recently issued message ID, or 0 if nothing has been sent.
func (d *Directory) LastID() int {
	return d.lastID
}

// read transitions m to read, notifies listeners, and renders it.
func (d *Directory) read(mailbox string, m *message.Message) string {
	wasRead := m.IsRead()
	m.MarkRead()
	if !wasRead {
		meta := m.Metadata(mailbox)
		d.extHost.Events.AfterMessageRead.Emit(&meta)
	}
	return m.Render()
}

func unknownUser(username string) error {
	return fmt.Errorf("%w %q", ErrUnknownUser, username)
}
