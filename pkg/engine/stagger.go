package engine

import (
	"math"

	"github.com/go-drift/motion/pkg/errors"
)

// StaggerFrom selects the element a stagger radiates from.
type StaggerFrom int

const (
	StaggerFirst StaggerFrom = iota
	StaggerLast
	StaggerCenter
	// StaggerIndex radiates from Stagger.Index.
	StaggerIndex
)

// Stagger offsets the start of a group of animations.
type Stagger struct {
	// Delay between neighbours in seconds.
	Delay float64
	From  StaggerFrom
	Index int
}

// Delays returns the extra delay for each of n animations: the distance from
// the origin times Delay.
func (s Stagger) Delays(n int) []float64 {
	if n <= 0 {
		return nil
	}
	var origin float64
	switch s.From {
	case StaggerLast:
		origin = float64(n - 1)
	case StaggerCenter:
		origin = float64(n-1) / 2
	case StaggerIndex:
		origin = float64(min(max(s.Index, 0), n-1))
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Abs(float64(i)-origin) * s.Delay
	}
	return out
}

// StartStaggered starts every config with its stagger delay added. Either
// all animations start or none do.
func (e *Engine) StartStaggered(cfgs []Config, s Stagger) ([]Handle, error) {
	if !finite(s.Delay) || s.Delay < 0 {
		return nil, errors.InvalidValue("engine.StartStaggered", "stagger delay must be finite and non-negative, got %v", s.Delay)
	}
	delays := s.Delays(len(cfgs))
	staged := make([]Config, len(cfgs))
	for i, cfg := range cfgs {
		cfg.Delay += delays[i]
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		staged[i] = cfg
	}
	handles := make([]Handle, 0, len(staged))
	for _, cfg := range staged {
		h, err := e.Start(cfg)
		if err != nil {
			for _, started := range handles {
				_ = e.Stop(started)
			}
			return nil, err
		}
		handles = append(handles, h)
	}
	return handles, nil
}
