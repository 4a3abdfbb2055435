package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/flip"
	"github.com/go-drift/motion/pkg/gestures"
	"github.com/go-drift/motion/pkg/perf"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestResolve_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	r, err := Resolve(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, r.Root)
	assert.Empty(t, r.Path)
	assert.Empty(t, r.ModulePath)
	assert.Equal(t, SchemaVersion, r.Version)
	assert.Equal(t, perf.DefaultBudget(), r.Budget)
	assert.Equal(t, perf.DefaultPolicy(), r.Policy)
	assert.Equal(t, flip.DefaultConfig(), r.Flip)
	assert.Equal(t, gestures.DefaultSpring, r.Drag.Spring)
	assert.Equal(t, gestures.DefaultRestitution, r.Drag.Restitution)
	assert.Equal(t, 0.2, r.Gesture.HoverDuration)
	assert.Empty(t, r.Easings)
}

func TestResolve_File(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/app\n\ngo 1.24\n")
	writeFile(t, dir, FileName, `
version: "1.0"
budget:
  max_animations: 20
policy:
  disable_momentum: false
gestures:
  elastic: 0.35
  spring: spring(300, 30, 1)
flip:
  duration: 0.45
  ease: back-out
  z_index: 5
easings:
  card: cubic-bezier(0.2, 0, 0, 1)
  pop: bouncy
`)

	r, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), r.Path)
	assert.Equal(t, "example.com/app", r.ModulePath)
	assert.Equal(t, "v1.0.0", r.Version)

	assert.Equal(t, 20, r.Budget.MaxAnimations)
	assert.Equal(t, 16.67, r.Budget.MaxFrameTimeMs, "unset keys keep defaults")
	assert.False(t, r.Policy.DisableMomentum)
	assert.Equal(t, 0.5, r.Policy.AnimationCapFactor)

	assert.Equal(t, 0.35, r.Drag.Elastic)
	assert.Equal(t, 300.0, r.Drag.Spring.Stiffness)
	assert.Equal(t, gestures.DefaultSpring.RestDelta, r.Drag.Spring.RestDelta)

	assert.Equal(t, 0.45, r.Flip.Duration)
	assert.Equal(t, animation.BackOut, r.Flip.Ease)
	assert.Equal(t, 5, r.Flip.ZIndex)

	assert.Equal(t, animation.CubicBezier(0.2, 0, 0, 1), r.Easings["card"])
	pop, err := r.Easing("pop")
	require.NoError(t, err)
	assert.Equal(t, animation.Spring(animation.BouncySpring), pop)
	linear, err := r.Easing("linear")
	require.NoError(t, err)
	assert.Equal(t, animation.Linear, linear)
}

func TestResolve_FlipPreset(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, "flip:\n  preset: modal-expand\n  z_index: 20\n")

	r, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, 0.25, r.Flip.Duration)
	assert.Equal(t, animation.EaseOut, r.Flip.Ease)
	assert.Equal(t, 20, r.Flip.ZIndex)
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad yaml", "budget: [", "failed to parse"},
		{"bad version", "version: one", "not a valid semantic version"},
		{"other major", "version: v2.0.0", "not supported"},
		{"newer minor", "version: v1.9.0", "newer than this runtime"},
		{"budget", "budget:\n  max_animations: 0", "budget"},
		{"cap factor", "policy:\n  animation_cap_factor: 2", "animation_cap_factor"},
		{"elastic", "gestures:\n  elastic: 1.5", "gestures"},
		{"spring", "gestures:\n  spring: ease-in", "not a spring"},
		{"flip ease", "flip:\n  ease: wobbly-ish", "flip.ease"},
		{"flip duration", "flip:\n  duration: -1", "flip"},
		{"flip preset", "flip:\n  preset: spin", "flip.preset"},
		{"easing", "easings:\n  x: cubic-bezier(1, 2)", "easings.x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, FileName, tt.yaml)
			_, err := Resolve(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, FileName, "")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got, err := FindProjectRoot(nested)
	require.NoError(t, err)
	want, err := filepath.Abs(root)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
