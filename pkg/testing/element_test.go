package testing

import (
	"reflect"
	"testing"

	"github.com/go-drift/motion/pkg/element"
)

func TestFakeElement_Styles(t *testing.T) {
	el := NewFakeElement("box", element.Rect{Width: 10, Height: 20})
	el.SetStyle("opacity", "0.5")
	el.SetStyle("transform", "scale(2, 2)")
	el.RemoveStyle("opacity")

	if _, ok := el.Style("opacity"); ok {
		t.Error("removed style still present")
	}
	if v, _ := el.Style("transform"); v != "scale(2, 2)" {
		t.Errorf("transform = %q", v)
	}
	if got := el.WritesOf("opacity"); !reflect.DeepEqual(got, []string{"0.5", ""}) {
		t.Errorf("WritesOf(opacity) = %q", got)
	}
	if n := len(el.Writes()); n != 3 {
		t.Errorf("expected 3 writes, got %d", n)
	}

	el.ResetWrites()
	if len(el.Writes()) != 0 {
		t.Error("ResetWrites kept the log")
	}
	if len(el.Styles()) != 1 {
		t.Error("ResetWrites cleared current styles")
	}
}

func TestFakeElement_Dispatch(t *testing.T) {
	el := NewFakeElement("box", element.Rect{})
	if err := el.Dispatch(element.EventClick, nil); err == nil {
		t.Error("expected an error dispatching with no listeners")
	}

	var got []string
	removeA := el.AddEventListener(element.EventClick, func(any) { got = append(got, "a") })
	el.AddEventListener(element.EventClick, func(p any) { got = append(got, p.(string)) })
	if err := el.Dispatch(element.EventClick, "b"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("listeners ran as %q, want registration order", got)
	}

	removeA()
	if n := el.ListenerCount(element.EventClick); n != 1 {
		t.Errorf("expected 1 listener after removal, got %d", n)
	}
}

func TestFakeElement_ListenerMayRemoveItself(t *testing.T) {
	el := NewFakeElement("box", element.Rect{})
	calls := 0
	var remove func()
	remove = el.AddEventListener(element.EventTransitionEnd, func(any) {
		calls++
		remove()
	})
	_ = el.Dispatch(element.EventTransitionEnd, "transform")
	_ = el.Dispatch(element.EventTransitionEnd, "transform")
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}
