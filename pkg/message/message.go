// Package message contains the post office message type.
package message

import (
	"strings"
	"unicode/utf8"

	"github.com/inbucket/postoffice/pkg/extension/event"
)

const (
	titleLabel = "Message title: "
	bodyLabel  = "Message body: "
)

// Message is a single piece of mail held in a post office box.  Its identity fields never change
// after construction; only the read flag moves, and only from unread to read.
type Message struct {
	id     int
	sender string
	title  string
	body   string
	size   int
	read   bool
}

// New creates an unread message.  IDs are allocated by the post office, never by the message.
func New(id int, sender, title, body string) *Message {
	return &Message{
		id:     id,
		sender: sender,
		title:  title,
		body:   body,
		size:   utf8.RuneCountInString(body),
	}
}

// ID returns the message ID.
func (m *Message) ID() int { return m.id }

// Sender returns the display name of the sender.
func (m *Message) Sender() string { return m.sender }

// Title returns the title line.
func (m *Message) Title() string { return m.title }

// Body returns the message body.
func (m *Message) Body() string { return m.body }

// Size returns the body length in characters, as measured when the message was created.
func (m *Message) Size() int { return m.size }

// IsRead reports whether the message has been read.
func (m *Message) IsRead() bool { return m.read }

// MarkRead flags the message as read.  Marking an already read message is a no-op.
func (m *Message) MarkRead() { m.read = true }

// Render formats the title and body for display without touching the read flag.
func (m *Message) Render() string {
	return titleLabel + m.title + " " + bodyLabel + m.body
}

// Read marks the message as read and returns its rendered form.
func (m *Message) Read() string {
	m.MarkRead()
	return m.Render()
}

// Contains reports whether substr occurs in the body or the title.  Matching is case sensitive,
// and the empty string matches every message.
func (m *Message) Contains(substr string) bool {
	return strings.Contains(m.body, substr) || strings.Contains(m.title, substr)
}

// Len returns the character length of the body.
func (m *Message) Len() int { return utf8.RuneCountInString(m.body) }

// String renders the message over two lines, title first.
func (m *Message) String() string {
	return titleLabel + m.title + "\n" + bodyLabel + m.body
}

// Metadata returns an event snapshot of the message as stored in the named mailbox.
func (m *Message) Metadata(mailbox string) event.MessageMetadata {
	return event.MessageMetadata{
		Mailbox: mailbox,
		ID:      m.id,
		Sender:  m.sender,
		Title:   m.title,
		Body:    m.body,
		Size:    m.size,
		Read:    m.read,
	}
}
