// Package geom holds the integer point and rectangle types shared by the
// whole stack. Rectangles never carry a negative size.
package geom

import "fmt"

type Point struct {
	X, Y int
}

func Pt(x, y int) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Rect is an axis-aligned rectangle. Width and height are clamped to zero
// by every constructor and mutator.
type Rect struct {
	left, top     int
	width, height int
}

func NewRect(left, top, width, height int) Rect {
	return Rect{left: left, top: top, width: max(width, 0), height: max(height, 0)}
}

// FromCorners builds the rectangle spanning [x0,x1) x [y0,y1).
func FromCorners(x0, y0, x1, y1 int) Rect { return NewRect(x0, y0, x1-x0, y1-y0) }

// Sized is a rectangle at the origin.
func Sized(width, height int) Rect { return NewRect(0, 0, width, height) }

func (r Rect) Left() int     { return r.left }
func (r Rect) Top() int      { return r.top }
func (r Rect) Width() int    { return r.width }
func (r Rect) Height() int   { return r.height }
func (r Rect) Right() int    { return r.left + r.width }
func (r Rect) Bottom() int   { return r.top + r.height }
func (r Rect) Origin() Point { return Point{r.left, r.top} }
func (r Rect) Area() int     { return r.width * r.height }
func (r Rect) IsEmpty() bool { return r.width == 0 || r.height == 0 }

func (r *Rect) SetLeft(v int)   { r.left = v }
func (r *Rect) SetTop(v int)    { r.top = v }
func (r *Rect) SetWidth(v int)  { r.width = max(v, 0) }
func (r *Rect) SetHeight(v int) { r.height = max(v, 0) }

func (r *Rect) SetSize(w, h int) {
	r.SetWidth(w)
	r.SetHeight(h)
}

func (r *Rect) SetOrigin(p Point) { r.left, r.top = p.X, p.Y }

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.left += dx
	r.top += dy
	return r
}

// Inset shrinks r by n on every side.
func (r Rect) Inset(n int) Rect {
	return NewRect(r.left+n, r.top+n, r.width-2*n, r.height-2*n)
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.left && p.X < r.Right() && p.Y >= r.top && p.Y < r.Bottom()
}

// Intersect is the & operator. Disjoint rectangles produce a zero-area
// result whose origin callers must not rely on.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.left, o.left), max(r.top, o.top)
	x1, y1 := min(r.Right(), o.Right()), min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{left: x0, top: y0}
	}
	return Rect{left: x0, top: y0, width: x1 - x0, height: y1 - y0}
}

// Union is the | operator: the bounding box of both. An empty operand
// contributes nothing.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	return FromCorners(min(r.left, o.left), min(r.top, o.top), max(r.Right(), o.Right()), max(r.Bottom(), o.Bottom()))
}

func (r Rect) Overlaps(o Rect) bool { return !r.Intersect(o).IsEmpty() }

func (r Rect) String() string {
	return fmt.Sprintf("Rect(%d,%d %dx%d)", r.left, r.top, r.width, r.height)
}
