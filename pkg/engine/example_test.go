package engine_test

import (
	"fmt"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/element"
	"github.com/go-drift/motion/pkg/engine"
	motiontest "github.com/go-drift/motion/pkg/testing"
)

func ExampleEngine() {
	clock := motiontest.NewFakeClock()
	e := engine.New(engine.Detached(), engine.WithClock(clock))
	box := motiontest.NewFakeElement("box", element.Rect{Width: 100, Height: 100})

	_, _ = e.Start(engine.Config{
		Target:     box,
		From:       animation.Target{"opacity": animation.Number(0)},
		Properties: animation.Target{"opacity": animation.Number(1)},
		Duration:   0.5,
	})
	for i := 0; i < 4; i++ {
		e.Tick(clock.AdvanceSeconds(0.125))
		v, _ := box.Style("opacity")
		fmt.Println(v)
	}
	// Output:
	// 0.25
	// 0.5
	// 0.75
	// 1
}

func ExampleStagger() {
	s := engine.Stagger{Delay: 0.05, From: engine.StaggerCenter}
	fmt.Println(s.Delays(5))
	// Output:
	// [0.1 0.05 0 0.05 0.1]
}
