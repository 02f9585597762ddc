package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBox(t *testing.T) {
	t.Parallel()

	b := NewBox(NewPoint(10, 20), 100, 80)
	assert.Equal(t, 110., b.Right())
	assert.Equal(t, 100., b.Bottom())
	assert.True(t, b.Center().Equals(NewPoint(60, 60)))

	assert.True(t, b.Contains(NewPoint(10, 20)))
	assert.False(t, b.Contains(NewPoint(111, 50)))
	assert.True(t, b.Expand(5).Contains(NewPoint(111, 50)))

	other := NewBox(NewPoint(110, 20), 50, 50)
	assert.False(t, b.Overlaps(other), "touching boxes do not overlap")
	other.TopLeft.X = 109
	assert.True(t, b.Overlaps(other))

	u := b.Union(other)
	assert.True(t, u.Equals(NewBox(NewPoint(10, 20), 149, 80)), "got %v", u.ToString())

	b.CenterAt(NewPoint(0, 0))
	assert.True(t, b.TopLeft.Equals(NewPoint(-50, -40)))

	var nilBox *Box
	assert.True(t, nilBox.Union(b).Equals(b))
}

func TestSnap(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 20., Snap(16, 10))
	assert.Equal(t, 14., Snap(14, 0))
	assert.Equal(t, 20., SnapUp(11, 10))
	assert.Equal(t, 10., SnapDown(19, 10))
	assert.True(t, NewPoint(12, 27).Snap(5).Equals(NewPoint(10, 25)))
}
