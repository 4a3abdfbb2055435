package testing

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/go-drift/motion/pkg/element"
)

func sampleElement(opacity string) *FakeElement {
	el := NewFakeElement("card", element.Rect{X: 1, Y: 2, Width: 30, Height: 40})
	el.SetStyle("transform", "translate(10px, 0px)")
	el.SetStyle("opacity", opacity)
	el.RemoveStyle("transform")
	return el
}

func TestCaptureSnapshot(t *testing.T) {
	snap := CaptureSnapshot(sampleElement("0.5"))
	es, ok := snap.Element("card")
	if !ok {
		t.Fatal("expected card in snapshot")
	}
	if es.Rect != [4]float64{1, 2, 30, 40} {
		t.Errorf("rect = %v", es.Rect)
	}
	wantWrites := []string{"transform: translate(10px, 0px)", "opacity: 0.5", "transform: <removed>"}
	if !reflect.DeepEqual(es.Writes, wantWrites) {
		t.Errorf("writes = %q", es.Writes)
	}
	if !reflect.DeepEqual(es.Styles, map[string]string{"opacity": "0.5"}) {
		t.Errorf("styles = %v", es.Styles)
	}
	if got := snap.Properties(); !reflect.DeepEqual(got, []string{"opacity", "transform"}) {
		t.Errorf("properties = %q", got)
	}
}

func TestSnapshot_Diff(t *testing.T) {
	a := CaptureSnapshot(sampleElement("0.5"))
	b := CaptureSnapshot(sampleElement("0.5"))
	if diff := a.Diff(b); diff != "" {
		t.Errorf("expected no diff, got:\n%s", diff)
	}

	c := CaptureSnapshot(sampleElement("0.75"))
	diff := c.Diff(a)
	if !strings.HasPrefix(diff, "--- expected\n+++ actual\n") ||
		!strings.Contains(diff, `"opacity: 0.5",`) || !strings.Contains(diff, `"opacity: 0.75",`) {
		t.Errorf("unexpected diff:\n%s", diff)
	}
}

func TestSnapshot_UpdateAndMatch(t *testing.T) {
	t.Setenv(UpdateSnapshotsEnv, "")
	snap := CaptureSnapshot(sampleElement("1"))
	path := filepath.Join(t.TempDir(), "testdata", "card.snapshot.json")

	if err := snap.UpdateFile(path); err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("snapshot file should exist after UpdateFile")
	}

	snap.MatchesFile(t, path)
}

func TestSnapshot_MatchesFile_MissingFile(t *testing.T) {
	t.Setenv(UpdateSnapshotsEnv, "")
	snap := CaptureSnapshot(sampleElement("1"))

	failed := false
	sub := &fatalRecorder{name: t.Name(), onFatal: func() { failed = true }}
	snap.MatchesFile(sub, filepath.Join(t.TempDir(), "missing.json"))

	if !failed {
		t.Error("expected MatchesFile to fail for missing file")
	}
}

func TestSnapshot_MatchesFile_Mismatch(t *testing.T) {
	t.Setenv(UpdateSnapshotsEnv, "")
	path := filepath.Join(t.TempDir(), "snap.json")
	if err := CaptureSnapshot(sampleElement("1")).UpdateFile(path); err != nil {
		t.Fatal(err)
	}

	errored := false
	sub := &errorRecorder{name: t.Name(), onError: func() { errored = true }}
	CaptureSnapshot(sampleElement("0")).MatchesFile(sub, path)

	if !errored {
		t.Error("expected MatchesFile to report error for mismatch")
	}
}

func TestSnapshot_UpdateMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "update.snapshot.json")

	t.Setenv(UpdateSnapshotsEnv, "1")
	CaptureSnapshot(sampleElement("1")).MatchesFile(t, path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("snapshot file should be created in update mode")
	}
}

// fatalRecorder intercepts Fatalf calls for testing MatchesFile failures.
type fatalRecorder struct {
	name    string
	onFatal func()
}

func (r *fatalRecorder) Fatalf(format string, args ...any) { r.onFatal() }
func (r *fatalRecorder) Errorf(format string, args ...any) {}
func (r *fatalRecorder) Helper()                           {}
func (r *fatalRecorder) Name() string                      { return r.name }

// errorRecorder intercepts Errorf calls for testing MatchesFile mismatches.
type errorRecorder struct {
	name    string
	onError func()
}

func (r *errorRecorder) Fatalf(format string, args ...any) {}
func (r *errorRecorder) Errorf(format string, args ...any) { r.onError() }
func (r *errorRecorder) Helper()                           {}
func (r *errorRecorder) Name() string                      { return r.name }
