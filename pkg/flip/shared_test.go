package flip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/motion/pkg/element"
	"github.com/go-drift/motion/pkg/errors"
	motiontest "github.com/go-drift/motion/pkg/testing"
)

// finishCSS plays el's pending FLIP and fires its transitionend.
func finishCSS(t *testing.T, a *Animator, el *motiontest.FakeElement) {
	t.Helper()
	a.Tick(0)
	require.NoError(t, el.Dispatch(element.EventTransitionEnd, "transform"))
}

func TestSharedTransitions_PlaysFromSource(t *testing.T) {
	a := newAnimator(t)
	s := NewSharedTransitions(a)
	thumb := motiontest.NewFakeElement("thumb", before)
	hero := motiontest.NewFakeElement("hero", after)

	id, err := s.Queue(thumb, hero, DefaultConfig(), Normal)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, s.QueuedCount())

	s.Tick(0)
	assert.Zero(t, s.QueuedCount())
	assert.Equal(t, 1, s.ActiveCount())
	assert.True(t, s.Busy(thumb))
	assert.True(t, s.Busy(hero))
	assert.Equal(t, "hidden", style(thumb, "visibility"))
	assert.Equal(t, Inverted, a.Phase(hero))
	assert.Equal(t, "translate(-50px, -25px) scale(0.5, 0.6667)", style(hero, "transform"))

	finishCSS(t, a, hero)
	assert.Zero(t, s.ActiveCount())
	assert.False(t, s.Busy(thumb))
	_, hidden := thumb.Style("visibility")
	assert.False(t, hidden)
}

func TestSharedTransitions_RestoresVisibility(t *testing.T) {
	a := newAnimator(t)
	s := NewSharedTransitions(a)
	thumb := motiontest.NewFakeElement("thumb", before)
	thumb.SetStyle("visibility", "visible")
	hero := motiontest.NewFakeElement("hero", after)

	_, err := s.Queue(thumb, hero, DefaultConfig(), Normal)
	require.NoError(t, err)
	s.Tick(0)
	finishCSS(t, a, hero)
	assert.Equal(t, []string{"visible", "hidden", "visible"}, thumb.WritesOf("visibility"))
}

func TestSharedTransitions_PriorityOrder(t *testing.T) {
	a := newAnimator(t)
	s := NewSharedTransitions(a)
	low := motiontest.NewFakeElement("low", before)
	urgent := motiontest.NewFakeElement("urgent", before)
	hero := motiontest.NewFakeElement("hero", after)

	_, err := s.Queue(low, hero, DefaultConfig(), Low)
	require.NoError(t, err)
	_, err = s.Queue(urgent, hero, DefaultConfig(), Critical)
	require.NoError(t, err)

	s.Tick(0)
	assert.True(t, s.Busy(urgent))
	assert.False(t, s.Busy(low))
	assert.Equal(t, 1, s.QueuedCount(), "the low transition waits for hero")

	finishCSS(t, a, hero)
	s.Tick(0)
	assert.True(t, s.Busy(low))
	assert.Equal(t, "hidden", style(low, "visibility"))
	assert.Zero(t, s.QueuedCount())
}

func TestSharedTransitions_FIFOWithinPriority(t *testing.T) {
	a := newAnimator(t)
	s := NewSharedTransitions(a)
	first := motiontest.NewFakeElement("first", before)
	second := motiontest.NewFakeElement("second", before)
	hero := motiontest.NewFakeElement("hero", after)

	_, err := s.Queue(first, hero, DefaultConfig(), High)
	require.NoError(t, err)
	_, err = s.Queue(second, hero, DefaultConfig(), High)
	require.NoError(t, err)

	s.Tick(0)
	assert.True(t, s.Busy(first))
	assert.False(t, s.Busy(second))
}

func TestSharedTransitions_Cancel(t *testing.T) {
	a := newAnimator(t)
	s := NewSharedTransitions(a)
	thumb := motiontest.NewFakeElement("thumb", before)
	hero := motiontest.NewFakeElement("hero", after)
	other := motiontest.NewFakeElement("other", before)

	running, err := s.Queue(thumb, hero, DefaultConfig(), Normal)
	require.NoError(t, err)
	s.Tick(0)
	queued, err := s.Queue(other, hero, DefaultConfig(), Normal)
	require.NoError(t, err)

	require.NoError(t, s.Cancel(queued))
	assert.Zero(t, s.QueuedCount())

	require.NoError(t, s.Cancel(running))
	assert.Zero(t, s.ActiveCount())
	assert.False(t, s.Busy(hero))
	assert.Equal(t, Idle, a.Phase(hero))
	assert.Empty(t, hero.Styles())
	assert.Empty(t, thumb.Styles())

	assert.ErrorIs(t, s.Cancel(running), errors.ErrNotFound)
}

func TestSharedTransitions_CancelAll(t *testing.T) {
	a := newAnimator(t)
	s := NewSharedTransitions(a)
	for _, name := range []string{"a", "b"} {
		src := motiontest.NewFakeElement(name+"-src", before)
		dst := motiontest.NewFakeElement(name+"-dst", after)
		_, err := s.Queue(src, dst, DefaultConfig(), Normal)
		require.NoError(t, err)
	}
	s.Tick(0)
	_, err := s.Queue(motiontest.NewFakeElement("late", before), motiontest.NewFakeElement("late-dst", after), DefaultConfig(), Low)
	require.NoError(t, err)

	s.CancelAll()
	assert.Zero(t, s.ActiveCount())
	assert.Zero(t, s.QueuedCount())
}

func TestSharedTransitions_QueueValidation(t *testing.T) {
	s := NewSharedTransitions(newAnimator(t))
	el := motiontest.NewFakeElement("el", before)
	other := motiontest.NewFakeElement("other", after)

	_, err := s.Queue(nil, el, DefaultConfig(), Normal)
	assert.ErrorIs(t, err, errors.ErrInvalidValue)
	_, err = s.Queue(el, el, DefaultConfig(), Normal)
	assert.ErrorIs(t, err, errors.ErrInvalidValue)
	_, err = s.Queue(el, other, DefaultConfig(), Critical+1)
	assert.ErrorIs(t, err, errors.ErrInvalidValue)
	_, err = s.Queue(el, other, Config{}, Normal)
	assert.ErrorIs(t, err, errors.ErrInvalidValue)
	assert.Zero(t, s.QueuedCount())
}
