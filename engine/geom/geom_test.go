package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectClamp(t *testing.T) {
	tests := []struct {
		name string
		r    Rect
	}{
		{"negative width", NewRect(1, 2, -3, 4)},
		{"negative height", NewRect(1, 2, 3, -4)},
		{"inverted corners", FromCorners(10, 10, 0, 0)},
		{"inset past zero", NewRect(0, 0, 4, 4).Inset(5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.GreaterOrEqual(t, tt.r.Width(), 0)
			assert.GreaterOrEqual(t, tt.r.Height(), 0)
		})
	}

	r := NewRect(0, 0, 10, 10)
	r.SetWidth(-1)
	r.SetHeight(-100)
	assert.Equal(t, 0, r.Width())
	assert.Equal(t, 0, r.Height())
	r.SetSize(-5, 7)
	assert.Equal(t, 0, r.Width())
	assert.Equal(t, 7, r.Height())
}

func TestIntersect(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(5, 5, 10, 10)
	assert.Equal(t, NewRect(5, 5, 5, 5), a.Intersect(b))
	assert.Equal(t, a.Intersect(b), b.Intersect(a))

	disjoint := a.Intersect(NewRect(20, 20, 5, 5))
	assert.True(t, disjoint.IsEmpty())
	assert.Equal(t, 0, disjoint.Area())

	touching := a.Intersect(NewRect(10, 0, 5, 5))
	assert.True(t, touching.IsEmpty())
}

func TestUnion(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(5, 5, 10, 10)
	assert.Equal(t, NewRect(0, 0, 15, 15), a.Union(b))
	assert.Equal(t, a, a.Union(Rect{}))
	assert.Equal(t, b, Rect{}.Union(b))
}

func TestContains(t *testing.T) {
	r := NewRect(100, 400, 200, 100)
	assert.True(t, r.Contains(Pt(150, 450)))
	assert.True(t, r.Contains(Pt(100, 400)))
	assert.False(t, r.Contains(Pt(300, 450)), "right edge is exclusive")
	assert.False(t, r.Contains(Pt(500, 500)))
}

func TestTranslate(t *testing.T) {
	r := NewRect(1, 2, 3, 4).Translate(10, 20)
	assert.Equal(t, Pt(11, 22), r.Origin())
	assert.Equal(t, 3, r.Width())
}
