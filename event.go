package saycheese

import (
	"sync"
)

// Event names a session notification.
type Event string

// Events raised by a Session.
const (
	// EventError carries NotSupported or the acquisition error.
	EventError Event = "error"
	// EventStart is raised once the preview and the overlay canvas are ready.
	EventStart Event = "start"
	// EventSnapshot carries the new *canvas.Canvas.
	EventSnapshot Event = "snapshot"
	// EventStop is raised after the stream has been released.
	EventStop Event = "stop"
)

// Handler receives the payload of an event.
type Handler func(data interface{})

// HandlerID identifies a registered handler so that it can be removed.
type HandlerID uint64

type registration struct {
	id      HandlerID
	handler Handler
}

// emitter dispatches events synchronously to the handlers of one owner.
type emitter struct {
	mu       sync.Mutex
	nextID   HandlerID
	handlers map[Event][]registration
}

func newEmitter() *emitter {
	return &emitter{handlers: make(map[Event][]registration)}
}

func (e *emitter) on(event Event, h Handler) HandlerID {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	e.handlers[event] = append(e.handlers[event], registration{id: e.nextID, handler: h})
	return e.nextID
}

// off removes the given handlers, or every handler of event when ids is empty.
func (e *emitter) off(event Event, ids ...HandlerID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(ids) == 0 {
		delete(e.handlers, event)
		return
	}

	kept := e.handlers[event][:0]
	for _, r := range e.handlers[event] {
		if !containsID(ids, r.id) {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		delete(e.handlers, event)
		return
	}
	e.handlers[event] = kept
}

// trigger calls the handlers registered for event in registration order. Handlers
// may register or remove handlers; the change applies to the next trigger.
func (e *emitter) trigger(event Event, data interface{}) {
	e.mu.Lock()
	regs := make([]registration, len(e.handlers[event]))
	copy(regs, e.handlers[event])
	e.mu.Unlock()

	for _, r := range regs {
		r.handler(data)
	}
}

func containsID(ids []HandlerID, id HandlerID) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}
