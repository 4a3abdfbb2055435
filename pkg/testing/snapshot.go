package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// UpdateSnapshotsEnv names the environment variable that rewrites golden
// files instead of comparing against them.
const UpdateSnapshotsEnv = "MOTION_UPDATE_SNAPSHOTS"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures the final styles and the full style write history of a
// set of fake elements.
type Snapshot struct {
	Elements []ElementSnapshot `json:"elements"`
}

// ElementSnapshot is one element's part of a Snapshot.
type ElementSnapshot struct {
	Name   string            `json:"name"`
	Rect   [4]float64        `json:"rect"`
	Styles map[string]string `json:"styles,omitempty"`
	Writes []string          `json:"writes,omitempty"`
}

// CaptureSnapshot records els in the given order. Writes are rendered as
// "property: value" lines, removals as "property: <removed>".
func CaptureSnapshot(els ...*FakeElement) *Snapshot {
	snap := &Snapshot{Elements: make([]ElementSnapshot, 0, len(els))}
	for _, el := range els {
		r := el.Measure()
		es := ElementSnapshot{
			Name: el.String(),
			Rect: [4]float64{r.X, r.Y, r.Width, r.Height},
		}
		if styles := el.Styles(); len(styles) > 0 {
			es.Styles = styles
		}
		for _, w := range el.Writes() {
			v := w.Value
			if w.Removed {
				v = "<removed>"
			}
			es.Writes = append(es.Writes, w.Property+": "+v)
		}
		snap.Elements = append(snap.Elements, es)
	}
	return snap
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When MOTION_UPDATE_SNAPSHOTS=1
// is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateSnapshotsEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateSnapshotsEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateSnapshotsEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a line diff between other (expected) and this snapshot, or
// "" if they are equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(s)
	b, _ := marshalSnapshot(other)
	if bytes.Equal(a, b) {
		return ""
	}
	return unifiedDiff(string(b), string(a))
}

// Element returns the snapshot of the element called name.
func (s *Snapshot) Element(name string) (ElementSnapshot, bool) {
	for _, es := range s.Elements {
		if es.Name == name {
			return es, true
		}
	}
	return ElementSnapshot{}, false
}

// Properties returns every property name written to in the snapshot.
func (s *Snapshot) Properties() []string {
	seen := make(map[string]bool)
	for _, es := range s.Elements {
		for _, w := range es.Writes {
			prop, _, _ := strings.Cut(w, ":")
			seen[prop] = true
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unifiedDiff produces a simple line-oriented diff.
func unifiedDiff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var buf strings.Builder
	buf.WriteString("--- expected\n+++ actual\n")

	for i := 0; i < max(len(expectedLines), len(actualLines)); i++ {
		var e, a string
		if i < len(expectedLines) {
			e = expectedLines[i]
		}
		if i < len(actualLines) {
			a = actualLines[i]
		}
		if e != a {
			if i < len(expectedLines) {
				fmt.Fprintf(&buf, "-%s\n", e)
			}
			if i < len(actualLines) {
				fmt.Fprintf(&buf, "+%s\n", a)
			}
		}
	}

	return buf.String()
}
