// Package config loads motion.yaml, the optional per-project tuning file for
// the motion runtime.
//
// Every key is optional. Missing keys keep the runtime defaults, so an empty
// or absent file resolves to exactly what the packages use on their own:
//
//	version: v1
//	budget:
//	  max_frame_time_ms: 16.67
//	  max_animations: 100
//	policy:
//	  animation_cap_factor: 0.5
//	  disable_momentum: true
//	gestures:
//	  elastic: 0.2
//	  spring: snappy
//	flip:
//	  duration: 0.3
//	  ease: ease-in-out
//	easings:
//	  card: cubic-bezier(0.2, 0, 0, 1)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/flip"
	"github.com/go-drift/motion/pkg/gestures"
	"github.com/go-drift/motion/pkg/perf"
)

// FileName is the configuration file looked up in a project directory.
const FileName = "motion.yaml"

// SchemaVersion is the newest schema this package reads. Files must share its
// major version.
const SchemaVersion = "v1.0.0"

// Config represents motion.yaml as written.
type Config struct {
	Version  string            `yaml:"version,omitempty"`
	Budget   perf.Budget       `yaml:"budget"`
	Policy   perf.Policy       `yaml:"policy"`
	Gestures GestureConfig     `yaml:"gestures"`
	Flip     FlipConfig        `yaml:"flip"`
	Easings  map[string]string `yaml:"easings,omitempty"`
}

// GestureConfig contains gesture bridge defaults.
type GestureConfig struct {
	Elastic        float64 `yaml:"elastic"`
	Restitution    float64 `yaml:"restitution"`
	Power          float64 `yaml:"power"`
	ReturnDuration float64 `yaml:"return_duration"`
	HoverDuration  float64 `yaml:"hover_duration"`
	TapDuration    float64 `yaml:"tap_duration"`
	// Spring is a preset name or spring(k, c, m).
	Spring string `yaml:"spring,omitempty"`
}

// FlipConfig contains FLIP animator defaults. Preset names one of the flip
// presets to start from; the other keys override it when set.
type FlipConfig struct {
	Preset   string  `yaml:"preset,omitempty"`
	Duration float64 `yaml:"duration,omitempty"`
	Ease     string  `yaml:"ease,omitempty"`
	ZIndex   int     `yaml:"z_index,omitempty"`
}

// Resolved contains typed configuration ready to hand to the runtime.
type Resolved struct {
	// Root is the directory the file was resolved from, and Path the file
	// itself or "" when none was found.
	Root       string
	Path       string
	ModulePath string
	Version    string

	Budget  perf.Budget
	Policy  perf.Policy
	Drag    gestures.DragConfig
	Gesture gestures.Config
	Flip    flip.Config
	Easings map[string]animation.Easing
}

// Defaults returns the configuration an empty motion.yaml resolves to.
func Defaults() *Config {
	return &Config{
		Version: SchemaVersion,
		Budget:  perf.DefaultBudget(),
		Policy:  perf.DefaultPolicy(),
		Gestures: GestureConfig{
			Restitution:    gestures.DefaultRestitution,
			Power:          gestures.DefaultPower,
			ReturnDuration: 0.3,
			HoverDuration:  0.2,
			TapDuration:    0.1,
		},
	}
}

// Parse decodes motion.yaml contents over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return cfg, nil
}

// Load reads the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// LoadOptional reads motion.yaml from dir if present and returns the defaults
// otherwise.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	return cfg, err
}

// Resolve loads motion.yaml from dir (if present) and validates it.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	r, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	r.Root = dir
	if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
		r.Path = filepath.Join(dir, FileName)
	}
	r.ModulePath = modulePath(dir)
	return r, nil
}

// Resolve validates c and converts it to runtime types.
func (c *Config) Resolve() (*Resolved, error) {
	version, err := checkVersion(c.Version)
	if err != nil {
		return nil, err
	}
	if err := c.Budget.Validate(); err != nil {
		return nil, fmt.Errorf("budget: %w", err)
	}
	if c.Policy.AnimationCapFactor < 0 || c.Policy.AnimationCapFactor > 1 {
		return nil, fmt.Errorf("policy.animation_cap_factor must be in [0, 1] (got %v)", c.Policy.AnimationCapFactor)
	}
	if c.Policy.TargetFPS < 0 {
		return nil, fmt.Errorf("policy.target_fps must be non-negative (got %v)", c.Policy.TargetFPS)
	}

	r := &Resolved{
		Version: version,
		Budget:  c.Budget,
		Policy:  c.Policy,
		Easings: make(map[string]animation.Easing, len(c.Easings)),
	}

	g := c.Gestures
	r.Drag = gestures.DragConfig{
		Elastic:        g.Elastic,
		Restitution:    g.Restitution,
		Power:          g.Power,
		ReturnDuration: g.ReturnDuration,
		Spring:         gestures.DefaultSpring,
	}
	if g.Spring != "" {
		spring, err := parseSpring(g.Spring)
		if err != nil {
			return nil, fmt.Errorf("gestures.spring: %w", err)
		}
		r.Drag.Spring = spring
	}
	r.Gesture = gestures.Config{HoverDuration: g.HoverDuration, TapDuration: g.TapDuration}
	probe := r.Gesture
	probe.Drag = &r.Drag
	if err := probe.Validate(); err != nil {
		return nil, fmt.Errorf("gestures: %w", err)
	}

	r.Flip = flip.DefaultConfig()
	if c.Flip.Preset != "" {
		var ok bool
		if r.Flip, ok = flip.Preset(c.Flip.Preset); !ok {
			return nil, fmt.Errorf("flip.preset: unknown preset %q", c.Flip.Preset)
		}
	}
	if c.Flip.Duration != 0 {
		r.Flip.Duration = c.Flip.Duration
	}
	if c.Flip.ZIndex != 0 {
		r.Flip.ZIndex = c.Flip.ZIndex
	}
	if c.Flip.Ease != "" {
		if r.Flip.Ease, err = animation.ParseEasing(c.Flip.Ease); err != nil {
			return nil, fmt.Errorf("flip.ease: %w", err)
		}
	}
	if err := r.Flip.Validate(); err != nil {
		return nil, fmt.Errorf("flip: %w", err)
	}

	names := make([]string, 0, len(c.Easings))
	for name := range c.Easings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e, err := animation.ParseEasing(c.Easings[name])
		if err != nil {
			return nil, fmt.Errorf("easings.%s: %w", name, err)
		}
		r.Easings[name] = e
	}
	return r, nil
}

// Easing looks up a named easing from the easings section, falling back to
// the built-in names ParseEasing accepts.
func (r *Resolved) Easing(name string) (animation.Easing, error) {
	if e, ok := r.Easings[name]; ok {
		return e, nil
	}
	return animation.ParseEasing(name)
}

// checkVersion normalizes v to canonical semver and rejects other majors.
func checkVersion(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return SchemaVersion, nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("version %q is not a valid semantic version", v)
	}
	if semver.Major(v) != semver.Major(SchemaVersion) {
		return "", fmt.Errorf("version %s is not supported (want %s.x)", v, semver.Major(SchemaVersion))
	}
	if semver.Compare(v, SchemaVersion) > 0 {
		return "", fmt.Errorf("version %s is newer than this runtime (%s)", v, SchemaVersion)
	}
	return semver.Canonical(v), nil
}

func parseSpring(s string) (animation.SpringConfig, error) {
	e, err := animation.ParseEasing(s)
	if err != nil {
		return animation.SpringConfig{}, err
	}
	cfg, ok := e.SpringConfig()
	if !ok {
		return animation.SpringConfig{}, fmt.Errorf("%q is not a spring", s)
	}
	// Momentum springs rest at pixel precision rather than unit precision.
	cfg.RestDelta, cfg.RestSpeed = gestures.DefaultSpring.RestDelta, gestures.DefaultSpring.RestSpeed
	return cfg, nil
}

// FindProjectRoot walks up from dir to the nearest directory holding
// motion.yaml or go.mod.
func FindProjectRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, marker := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s or go.mod found", FileName)
		}
		dir = parent
	}
}

// modulePath returns the module declared by dir's go.mod, or "".
func modulePath(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}
