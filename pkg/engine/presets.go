package engine

import (
	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/element"
	"github.com/go-drift/motion/pkg/timeline"
)

// FadeIn animates opacity from 0 to 1.
func FadeIn(target element.Handle, duration float64) Config {
	return Config{
		Target:     target,
		From:       animation.Target{"opacity": animation.Number(0)},
		Properties: animation.Target{"opacity": animation.Number(1)},
		Duration:   duration,
		Ease:       animation.EaseOut,
	}
}

// FadeOut animates opacity from its current value to 0.
func FadeOut(target element.Handle, duration float64) Config {
	return Config{
		Target:     target,
		Properties: animation.Target{"opacity": animation.Number(0)},
		Duration:   duration,
		Ease:       animation.EaseIn,
	}
}

// SlideUp fades in while moving up by distance pixels.
func SlideUp(target element.Handle, distance, duration float64) Config {
	return Config{
		Target: target,
		From: animation.Target{
			"opacity":   animation.Number(0),
			"transform": animation.TransformValue(animation.Translate(0, distance)),
		},
		Properties: animation.Target{
			"opacity":   animation.Number(1),
			"transform": animation.TransformValue(animation.Identity()),
		},
		Duration: duration,
		Ease:     animation.Standard,
	}
}

// ScaleIn grows from scale to full size with a spring.
func ScaleIn(target element.Handle, scale float64) Config {
	ease := animation.Spring(animation.SnappySpring)
	return Config{
		Target: target,
		From: animation.Target{
			"opacity":   animation.Number(0),
			"transform": animation.TransformValue(animation.Scale(scale, scale)),
		},
		Properties: animation.Target{
			"opacity":   animation.Number(1),
			"transform": animation.TransformValue(animation.Identity()),
		},
		Duration: ease.Duration(),
		Ease:     ease,
	}
}

// Pulse returns a timeline that scales up by amount and back over duration.
// Play it with StartTimeline and Forever to loop.
func Pulse(amount, duration float64) *timeline.Timeline {
	tl, _ := timeline.Add(
		timeline.Keyframe{Time: 0, Properties: animation.Target{
			"transform": animation.TransformValue(animation.Identity()),
		}},
		timeline.Keyframe{Time: duration / 2, Ease: animation.EaseOut, Properties: animation.Target{
			"transform": animation.TransformValue(animation.Scale(1+amount, 1+amount)),
		}},
		timeline.Keyframe{Time: duration, Ease: animation.EaseIn, Properties: animation.Target{
			"transform": animation.TransformValue(animation.Identity()),
		}},
	)
	return tl
}
