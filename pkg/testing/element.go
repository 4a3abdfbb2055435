package testing

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-drift/motion/pkg/element"
)

// StyleWrite is one recorded SetStyle or RemoveStyle call.
type StyleWrite struct {
	Property string
	Value    string
	Removed  bool
}

// FakeElement is an in-memory element.Handle. It records every style write,
// keeps the current inline styles, and lets tests dispatch events to the
// registered listeners. Measure returns whatever SetRect last stored; the
// fake does not apply inline transforms to it.
type FakeElement struct {
	mu        sync.Mutex
	name      string
	rect      element.Rect
	styles    map[string]string
	writes    []StyleWrite
	listeners map[string]map[int]element.EventListener
	nextID    int
}

var (
	_ element.Handle      = (*FakeElement)(nil)
	_ element.StyleReader = (*FakeElement)(nil)
)

// NewFakeElement returns an element named name with the given box.
func NewFakeElement(name string, rect element.Rect) *FakeElement {
	return &FakeElement{
		name:      name,
		rect:      rect,
		styles:    make(map[string]string),
		listeners: make(map[string]map[int]element.EventListener),
	}
}

func (e *FakeElement) String() string { return e.name }

// Measure returns the stored box.
func (e *FakeElement) Measure() element.Rect {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rect
}

// SetRect replaces the box reported by Measure, simulating a layout change.
func (e *FakeElement) SetRect(r element.Rect) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rect = r
}

// SetStyle records and applies an inline style.
func (e *FakeElement) SetStyle(property, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.styles[property] = value
	e.writes = append(e.writes, StyleWrite{Property: property, Value: value})
}

// RemoveStyle records and clears an inline style.
func (e *FakeElement) RemoveStyle(property string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.styles, property)
	e.writes = append(e.writes, StyleWrite{Property: property, Removed: true})
}

// Style returns the current inline value of property.
func (e *FakeElement) Style(property string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.styles[property]
	return v, ok
}

// Styles returns a copy of the current inline styles.
func (e *FakeElement) Styles() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]string, len(e.styles))
	for k, v := range e.styles {
		out[k] = v
	}
	return out
}

// Writes returns every recorded write in order.
func (e *FakeElement) Writes() []StyleWrite {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]StyleWrite(nil), e.writes...)
}

// WritesOf returns the values written to property, in order. Removals are
// recorded as the empty string.
func (e *FakeElement) WritesOf(property string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []string
	for _, w := range e.writes {
		if w.Property == property {
			out = append(out, w.Value)
		}
	}
	return out
}

// ResetWrites clears the write log but keeps current styles.
func (e *FakeElement) ResetWrites() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.writes = nil
}

// AddEventListener registers listener for event.
func (e *FakeElement) AddEventListener(event string, listener element.EventListener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	if e.listeners[event] == nil {
		e.listeners[event] = make(map[int]element.EventListener)
	}
	e.listeners[event][id] = listener
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners[event], id)
	}
}

// ListenerCount returns how many listeners are registered for event.
func (e *FakeElement) ListenerCount(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[event])
}

// Dispatch invokes the listeners of event in registration order. It returns
// an error if none are registered.
func (e *FakeElement) Dispatch(event string, payload any) error {
	e.mu.Lock()
	ids := make([]int, 0, len(e.listeners[event]))
	for id := range e.listeners[event] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]element.EventListener, len(ids))
	for i, id := range ids {
		listeners[i] = e.listeners[event][id]
	}
	e.mu.Unlock()

	if len(listeners) == 0 {
		return fmt.Errorf("%s: no listeners for %q", e.name, event)
	}
	for _, l := range listeners {
		l(payload)
	}
	return nil
}
