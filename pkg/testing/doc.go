// Package testing provides fakes and helpers for testing code built on the
// motion runtime without a host.
//
// # Quick Start
//
// Drive an engine with a fake clock and assert on the styles it writes:
//
//	func TestFade(t *testing.T) {
//	    clock := motiontest.NewFakeClock()
//	    eng := engine.New(engine.Detached(), engine.WithClock(clock))
//	    el := motiontest.NewFakeElement("card", element.Rect{Width: 100, Height: 100})
//
//	    eng.Start(engine.FadeIn(el, 0.3))
//	    eng.Tick(clock.AdvanceSeconds(0.3))
//
//	    if v, _ := el.Style("opacity"); v != "1" {
//	        t.Errorf("opacity = %q", v)
//	    }
//	}
//
// # Pointer Input
//
// PointerSim dispatches pointer sequences to a FakeElement, advancing the
// clock one frame per move and calling OnFrame so the code under test can
// tick between events:
//
//	sim := motiontest.NewPointerSim(el, clock)
//	sim.OnFrame = func(now float64) { eng.Tick(now); bridge.Tick(now) }
//	sim.Drag(0, 0, 120, 0, 10)
//
// # Errors
//
// RecordErrors installs a recording error handler for the test, so
// reported anomalies such as watchdog firings can be counted by kind.
//
// # Snapshot Testing
//
// Capture and compare style write histories against golden files:
//
//	snapshot := motiontest.CaptureSnapshot(el)
//	snapshot.MatchesFile(t, "testdata/fade.snapshot.json")
//
// Update snapshots with:
//
//	MOTION_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import motiontest "github.com/go-drift/motion/pkg/testing"
package testing
