package engine

import (
	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/element"
)

// StyleWrite is one property value produced by a tick.
type StyleWrite struct {
	Target   element.Handle
	Property string
	Value    animation.Value
}

// StyleSink receives the writes of one tick, batched per element. Apply is
// called once per element per tick, in the order elements were first
// written.
type StyleSink interface {
	Apply(target element.Handle, writes []StyleWrite)
}

// SinkFunc adapts a function to StyleSink.
type SinkFunc func(target element.Handle, writes []StyleWrite)

// Apply calls f.
func (f SinkFunc) Apply(target element.Handle, writes []StyleWrite) { f(target, writes) }

// ElementSink writes CSS text through element.Handle.SetStyle.
type ElementSink struct{}

// Apply sets every write on target.
func (ElementSink) Apply(target element.Handle, writes []StyleWrite) {
	for _, w := range writes {
		target.SetStyle(w.Property, w.Value.CSS())
	}
}

// batch groups writes per element, keeping first-write order.
type batch struct {
	order []element.Handle
	byEl  map[element.Handle][]StyleWrite
}

func (b *batch) add(w StyleWrite) {
	if b.byEl == nil {
		b.byEl = make(map[element.Handle][]StyleWrite)
	}
	if _, ok := b.byEl[w.Target]; !ok {
		b.order = append(b.order, w.Target)
	}
	b.byEl[w.Target] = append(b.byEl[w.Target], w)
}

func (b *batch) flatten() []StyleWrite {
	var out []StyleWrite
	for _, el := range b.order {
		out = append(out, b.byEl[el]...)
	}
	return out
}
