package timeline

import (
	stderrors "errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/errors"
)

func opacity(v float64) animation.Target {
	return animation.Target{"opacity": animation.Number(v)}
}

func TestKeyframedOpacity(t *testing.T) {
	tl, err := Add(
		Keyframe{Time: 0, Properties: opacity(0)},
		Keyframe{Time: 1, Properties: opacity(1)},
	)
	require.NoError(t, err)

	assert.Equal(t, 0.5, tl.ValueAtTime("opacity", 0.5))

	require.NoError(t, tl.SetEasing(1, animation.EaseIn))
	assert.Equal(t, 0.25, tl.ValueAtTime("opacity", 0.5))
}

func TestValueAtTimeClampsOutsideRange(t *testing.T) {
	tl, err := Add(
		Keyframe{Time: 1, Properties: opacity(0.2)},
		Keyframe{Time: 3, Properties: opacity(0.8)},
	)
	require.NoError(t, err)

	assert.Equal(t, 0.2, tl.ValueAtTime("opacity", 0))
	assert.Equal(t, 0.8, tl.ValueAtTime("opacity", 10))
	assert.Equal(t, 0.8, tl.ValueAtTime("opacity", math.Inf(1)))
	assert.Equal(t, 0.2, tl.ValueAtTime("opacity", math.Inf(-1)))
	assert.Equal(t, 0.2, tl.ValueAtTime("opacity", math.NaN()))
	assert.Equal(t, 0.0, tl.ValueAtTime("missing", 2))
}

func TestLaterInsertionWinsOnEqualTimes(t *testing.T) {
	tl, err := Add(
		Keyframe{Time: 0, Properties: opacity(0)},
		Keyframe{Time: 1, Properties: opacity(0.3)},
		Keyframe{Time: 1, Properties: opacity(0.6)},
		Keyframe{Time: 2, Properties: opacity(1)},
	)
	require.NoError(t, err)

	assert.Equal(t, 0.6, tl.ValueAtTime("opacity", 1))
	assert.InDelta(t, 0.8, tl.ValueAtTime("opacity", 1.5), 1e-12)
	assert.InDelta(t, 0.15, tl.ValueAtTime("opacity", 0.5), 1e-12)

	kfs := tl.Keyframes()
	require.Len(t, kfs, 4)
	assert.Equal(t, animation.Number(0.3), kfs[1].Properties["opacity"])
	assert.Equal(t, animation.Number(0.6), kfs[2].Properties["opacity"])
}

func TestSparseTracks(t *testing.T) {
	tl, err := Add(
		Keyframe{Time: 0, Properties: animation.Target{"opacity": animation.Number(0), "x": animation.Pixels(0)}},
		Keyframe{Time: 1, Properties: animation.Target{"opacity": animation.Number(1)}},
		Keyframe{Time: 2, Properties: animation.Target{"x": animation.Pixels(100)}},
	)
	require.NoError(t, err)

	// x is interpolated between 0 and 2 even though the keyframe at 1 omits it.
	assert.Equal(t, 50.0, tl.ValueAtTime("x", 1))
	assert.Equal(t, 1.0, tl.ValueAtTime("opacity", 1.5))
	assert.Equal(t, []string{"opacity", "x"}, tl.Properties())
}

func TestValueIsFiniteForEveryDefinedProperty(t *testing.T) {
	tl := New()
	for i := 0; i < 10; i++ {
		require.NoError(t, tl.AddKeyframe(Keyframe{
			Time:       float64(i%4) * 0.7,
			Properties: animation.Target{fmt.Sprintf("p%d", i%3): animation.Number(float64(i))},
			Ease:       animation.BackInOut,
		}))
	}
	for _, p := range tl.Properties() {
		for i := -5; i <= 30; i++ {
			v := tl.ValueAtTime(p, float64(i)*0.1)
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s at %v", p, float64(i)*0.1)
		}
	}
}

func TestSampleColors(t *testing.T) {
	tl, err := Add(
		Keyframe{Time: 0, Properties: animation.Target{"color": animation.ColorValue(animation.RGB(0, 0, 0))}},
		Keyframe{Time: 2, Properties: animation.Target{"color": animation.ColorValue(animation.RGB(255, 255, 255))}},
	)
	require.NoError(t, err)

	v, ok := tl.Sample("color", 1)
	require.True(t, ok)
	c, _ := v.Color()
	assert.InDelta(t, 0.5, c.R, 1e-9)
	// Non-scalar values read as zero through the scalar accessor.
	assert.Equal(t, 0.0, tl.ValueAtTime("color", 1))

	_, ok = tl.Sample("missing", 1)
	assert.False(t, ok)
}

func TestAddKeyframeValidation(t *testing.T) {
	tl := New()
	for _, kf := range []Keyframe{
		{Time: -1, Properties: opacity(0)},
		{Time: math.NaN(), Properties: opacity(0)},
		{Time: math.Inf(1), Properties: opacity(0)},
		{Time: 0, Properties: opacity(math.Inf(1))},
		{Time: 0, Properties: opacity(0), Ease: animation.CubicBezier(2, 0, 0, 1)},
	} {
		err := tl.AddKeyframe(kf)
		assert.True(t, stderrors.Is(err, errors.ErrInvalidValue), "%+v", kf)
	}
	assert.Zero(t, tl.Len())
}

func TestCacheIsBounded(t *testing.T) {
	tl, err := Add(
		Keyframe{Time: 0, Properties: opacity(0)},
		Keyframe{Time: 1, Properties: opacity(1)},
	)
	require.NoError(t, err)

	for i := 0; i < 2500; i++ {
		tl.ValueAtTime("opacity", float64(i)/2500)
		require.LessOrEqual(t, tl.CacheLen(), MaxCacheEntries)
	}
	assert.Equal(t, MaxCacheEntries, tl.CacheLen())

	// The newest entries survive eviction.
	tl.mu.Lock()
	_, newest := tl.cache[cacheKey{"opacity", 2499.0 / 2500}]
	_, oldest := tl.cache[cacheKey{"opacity", 0}]
	tl.mu.Unlock()
	assert.True(t, newest)
	assert.False(t, oldest)

	require.NoError(t, tl.AddKeyframe(Keyframe{Time: 2, Properties: opacity(0)}))
	assert.Zero(t, tl.CacheLen())
}

func TestScrubTo(t *testing.T) {
	tl, err := Add(
		Keyframe{Time: 0, Properties: opacity(0)},
		Keyframe{Time: 4, Properties: opacity(1)},
	)
	require.NoError(t, err)

	var got []float64
	tl.OnProgress(func(p float64) { got = append(got, p) })
	tl.ValueAtTime("opacity", 1)

	require.NoError(t, tl.ScrubTo(1))
	assert.Equal(t, []float64{0.25}, got)
	assert.Equal(t, 1.0, tl.CurrentTime())
	assert.Zero(t, tl.CacheLen())

	for _, bad := range []float64{-0.1, 4.1, math.NaN(), math.Inf(1)} {
		assert.Error(t, tl.ScrubTo(bad))
	}
	assert.Len(t, got, 1)

	tl.Stop()
	assert.Zero(t, tl.CurrentTime())

	assert.NotNil(t, tl.ProgressCallback())
	tl.OnProgress(nil)
	assert.Nil(t, tl.ProgressCallback())
}

func TestCloneIsIndependent(t *testing.T) {
	tl, err := Add(
		Keyframe{Time: 0, Properties: opacity(0), ElementID: "a"},
		Keyframe{Time: 1, Properties: opacity(1), ElementID: "b"},
	)
	require.NoError(t, err)
	called := false
	tl.OnProgress(func(float64) { called = true })
	tl.ValueAtTime("opacity", 0.5)

	c := tl.Clone()
	assert.Zero(t, c.CacheLen())
	require.NoError(t, c.ScrubTo(0.5))
	assert.False(t, called)

	require.NoError(t, c.SetEasing(1, animation.EaseIn))
	assert.Equal(t, 0.5, tl.ValueAtTime("opacity", 0.5))
	assert.Equal(t, 0.25, c.ValueAtTime("opacity", 0.5))
	assert.Equal(t, []string{"a", "b"}, c.SynchronizedElements())
}

func TestRemoveKeyframes(t *testing.T) {
	tl, err := Add(
		Keyframe{Time: 0, Properties: opacity(0)},
		Keyframe{Time: 1, Properties: opacity(1)},
		Keyframe{Time: 1, Properties: opacity(0.5)},
		Keyframe{Time: 2, Properties: opacity(0)},
	)
	require.NoError(t, err)

	assert.Equal(t, 2, tl.RemoveKeyframesAt(1))
	assert.Equal(t, 0, tl.RemoveKeyframesAt(7))
	require.NoError(t, tl.RemoveKeyframe(1))
	assert.Equal(t, 0.0, tl.Duration())
	assert.Error(t, tl.RemoveKeyframe(5))
}

func TestMetrics(t *testing.T) {
	tl, err := Add(
		Keyframe{Time: 0, Properties: animation.Target{"opacity": animation.Number(0), "x": animation.Pixels(0)}, ElementID: "card"},
		Keyframe{Time: 0.5, Properties: opacity(1)},
	)
	require.NoError(t, err)
	tl.ValueAtTime("opacity", 0.25)

	m := tl.Metrics()
	assert.Equal(t, 2, m.Keyframes)
	assert.Equal(t, 2, m.Properties)
	assert.Equal(t, 1, m.Elements)
	assert.Equal(t, 1, m.CacheEntries)
	assert.Equal(t, 0.5, m.Duration)
	assert.Positive(t, m.EstimatedBytes)
}
