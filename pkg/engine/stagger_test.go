package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/motion/pkg/element"
	"github.com/go-drift/motion/pkg/errors"
	motiontest "github.com/go-drift/motion/pkg/testing"
)

func TestStagger_Delays(t *testing.T) {
	tests := []struct {
		name    string
		stagger Stagger
		want    []float64
	}{
		{"first", Stagger{Delay: 0.1}, []float64{0, 0.1, 0.2, 0.30000000000000004}},
		{"last", Stagger{Delay: 1, From: StaggerLast}, []float64{3, 2, 1, 0}},
		{"center", Stagger{Delay: 1, From: StaggerCenter}, []float64{1.5, 0.5, 0.5, 1.5}},
		{"index", Stagger{Delay: 1, From: StaggerIndex, Index: 1}, []float64{1, 0, 1, 2}},
		{"index clamped", Stagger{Delay: 1, From: StaggerIndex, Index: 9}, []float64{3, 2, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stagger.Delays(4))
		})
	}
	assert.Nil(t, Stagger{Delay: 1}.Delays(0))
}

func TestEngine_StartStaggered(t *testing.T) {
	e, clock := newTestEngine()
	els := []*motiontest.FakeElement{
		motiontest.NewFakeElement("a", element.Rect{}),
		motiontest.NewFakeElement("b", element.Rect{}),
		motiontest.NewFakeElement("c", element.Rect{}),
	}
	var cfgs []Config
	for _, el := range els {
		cfgs = append(cfgs, fade(el, 1))
	}

	handles, err := e.StartStaggered(cfgs, Stagger{Delay: 0.5})
	require.NoError(t, err)
	require.Len(t, handles, 3)

	e.Tick(clock.AdvanceSeconds(0.75))
	assert.Equal(t, "0.75", lastWrite(t, els[0], "opacity"))
	assert.Equal(t, "0.25", lastWrite(t, els[1], "opacity"))
	assert.Empty(t, els[2].WritesOf("opacity"))
}

func TestEngine_StartStaggeredAllOrNothing(t *testing.T) {
	e, _ := newTestEngine()
	el := motiontest.NewFakeElement("a", element.Rect{})
	cfgs := []Config{fade(el, 1), fade(el, -1)}

	handles, err := e.StartStaggered(cfgs, Stagger{Delay: 0.1})
	assert.Nil(t, handles)
	assert.ErrorIs(t, err, errors.ErrInvalidValue)
	assert.Equal(t, 0, e.ActiveCount())

	_, err = e.StartStaggered(cfgs[:1], Stagger{Delay: -1})
	assert.ErrorIs(t, err, errors.ErrInvalidValue)
}
