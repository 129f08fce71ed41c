package extension

// listener is a named event callback.
type listener[E any, R any] struct {
	name string
	fn   func(E) *R
}

// EventBroker maintains an ordered list of listeners interested in a specific type of event.
//
// Brokers are not safe for concurrent use, they follow the single threaded model of the
// post office that emits them.  A listener may re-enter the post office, but must not add or
// remove listeners on the broker currently emitting.
type EventBroker[E any, R any] struct {
	listeners []listener[E, R]
}

// Emit sends the provided event to each registered listener in order, until one returns a non-nil
// result.  That result will be returned to the caller.
func (eb *EventBroker[E, R]) Emit(event *E) *R {
	for _, l := range eb.listeners {
		// Listeners receive a copy, the emitter's value is not mutated.
		if result := l.fn(*event); result != nil {
			return result
		}
	}

	return nil
}

// AddListener registers the named listener, replacing one with a duplicate name if present.
// Listeners should be added in order of priority, most significant first.
func (eb *EventBroker[E, R]) AddListener(name string, fn func(E) *R) {
	eb.RemoveListener(name)
	eb.listeners = append(eb.listeners, listener[E, R]{name: name, fn: fn})
}

// RemoveListener unregisters the named listener.
func (eb *EventBroker[E, R]) RemoveListener(name string) {
	for i, l := range eb.listeners {
		if l.name == name {
			eb.listeners = append(eb.listeners[:i], eb.listeners[i+1:]...)
			return
		}
	}
}

// Names returns the registered listener names in emit order.
func (eb *EventBroker[E, R]) Names() []string {
	names := make([]string, len(eb.listeners))
	for i, l := range eb.listeners {
		names[i] = l.name
	}
	return names
}
