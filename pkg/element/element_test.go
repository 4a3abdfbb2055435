package element

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectEdges(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 50}
	assert.Equal(t, 110.0, r.Right())
	assert.Equal(t, 70.0, r.Bottom())
	cx, cy := r.Center()
	assert.Equal(t, 60.0, cx)
	assert.Equal(t, 45.0, cy)
	assert.False(t, r.IsEmpty())
	assert.True(t, Rect{Width: 10}.IsEmpty())
	assert.Equal(t, "Rect(10, 20, 100x50)", r.String())
}
