package extension

import (
	"github.com/inbucket/postoffice/pkg/extension/event"
)

// Host defines extension points for the post office.
type Host struct {
	Events *Events
}

// Events defines all the event types supported by the extension host.
//
// Before-events give extensions a chance to alter how the post office handles the event.  The
// first listener to respond with a non-nil value determines the response, remaining listeners are
// not called.
//
// After-events let extensions act once an operation has completed.  Their return values are
// ignored.  All events are delivered synchronously, on the caller's goroutine.
type Events struct {
	BeforeMessageSent EventBroker[event.OutgoingMessage, event.OutgoingMessage]
	AfterMessageSent  EventBroker[event.MessageMetadata, Void]
	AfterMessageRead  EventBroker[event.MessageMetadata, Void]
}

// Void indicates the event emitter will ignore any value returned by listeners.
type Void struct{}

// NewHost creates a new extension host.
func NewHost() *Host {
	return &Host{Events: &Events{}}
}
