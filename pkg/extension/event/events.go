// Package event holds the payloads passed to extension listeners.
package event

// OutgoingMessage describes a message that has passed the recipient check but has not yet been
// assigned an ID or placed in a mailbox.
type OutgoingMessage struct {
	Sender    string
	Recipient string
	Title     string
	Body      string
	Urgent    bool
}

// MessageMetadata is a snapshot of a stored message.
type MessageMetadata struct {
	Mailbox string
	ID      int
	Sender  string
	Title   string
	Body    string
	Size    int
	Read    bool
}
