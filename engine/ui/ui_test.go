package ui

import (
	"testing"

	"github.com/hubastard/trellis/engine/colors"
	"github.com/hubastard/trellis/engine/geom"
	"github.com/hubastard/trellis/engine/gfx"
	"github.com/hubastard/trellis/engine/gfx/renderer2d"
	"github.com/hubastard/trellis/engine/gfx/software"
	"github.com/hubastard/trellis/engine/input"
	"github.com/hubastard/trellis/engine/pixels"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct{ calls []string }

func (r *recorder) handlers() Handlers {
	return Handlers{
		OnPress: func(geom.Point, ID) { r.calls = append(r.calls, "press") },
		OnMove:  func(geom.Point, ID) { r.calls = append(r.calls, "move") },
		OnLift:  func(geom.Point, ID) { r.calls = append(r.calls, "lift") },
		OnClick: func(geom.Point, ID) { r.calls = append(r.calls, "click") },
	}
}

func press(x, y int) input.Event {
	return input.Event{Type: input.Press, Point: geom.Pt(x, y), Origin: geom.Pt(x, y)}
}

func drag(x, y int, from geom.Point) input.Event {
	return input.Event{Type: input.Drag, Point: geom.Pt(x, y), Origin: from}
}

func lift(x, y int, from geom.Point) input.Event {
	return input.Event{Type: input.Lift, Point: geom.Pt(x, y), Origin: from}
}

// screen builds a 800x600 root panel with one touchable child.
func screen(t *testing.T, area geom.Rect) (*Tree, *Control, *Control, *recorder) {
	t.Helper()
	tree := NewTree()
	root := Panel(tree, 800, 600)
	child := Panel(tree, area.Width(), area.Height()).Position(area.Left(), area.Top())
	root.Children(child)
	rec := &recorder{}
	child.Control().SetHandlers(rec.handlers())
	child.Control().SetTouchable(true)
	return tree, root.Control(), child.Control(), rec
}

func TestPressLiftInsideClicks(t *testing.T) {
	tree, root, c, rec := screen(t, geom.NewRect(100, 400, 200, 100))

	require.True(t, tree.ProcessInput(root.ID(), press(150, 450)))
	assert.Equal(t, Pressed, c.State())
	assert.Equal(t, []string{"press"}, rec.calls)

	require.True(t, tree.ProcessInput(root.ID(), lift(150, 450, geom.Pt(150, 450))))
	assert.Equal(t, Normal, c.State())
	assert.Equal(t, []string{"press", "lift", "click"}, rec.calls)
}

func TestLiftOutsideDoesNotClick(t *testing.T) {
	tree, root, c, rec := screen(t, geom.NewRect(100, 400, 200, 100))

	tree.ProcessInput(root.ID(), press(150, 450))
	require.True(t, tree.ProcessInput(root.ID(), lift(500, 500, geom.Pt(150, 450))))
	assert.Equal(t, Normal, c.State())
	assert.Equal(t, []string{"press", "lift"}, rec.calls)
}

func TestDragBackInsideStillClicks(t *testing.T) {
	tree, root, c, rec := screen(t, geom.NewRect(100, 400, 200, 100))
	origin := geom.Pt(150, 450)

	tree.ProcessInput(root.ID(), press(150, 450))
	tree.ProcessInput(root.ID(), drag(700, 100, origin))
	tree.ProcessInput(root.ID(), drag(160, 460, origin))
	tree.ProcessInput(root.ID(), lift(160, 460, origin))
	assert.Equal(t, Normal, c.State())
	assert.Equal(t, []string{"press", "lift", "click"}, rec.calls, "not draggable so no move")
}

func TestPressOutsideIgnored(t *testing.T) {
	tree, root, c, rec := screen(t, geom.NewRect(100, 400, 200, 100))
	assert.False(t, tree.ProcessInput(root.ID(), press(10, 10)))
	assert.Equal(t, Normal, c.State())
	assert.Empty(t, rec.calls)
	assert.False(t, tree.ProcessInput(root.ID(), lift(10, 10, geom.Pt(10, 10))), "lift without press")
}

func TestDraggable(t *testing.T) {
	tree, root, c, rec := screen(t, geom.NewRect(0, 0, 100, 100))
	c.SetDraggable(true)
	origin := geom.Pt(50, 50)

	tree.ProcessInput(root.ID(), press(50, 50))
	require.True(t, tree.ProcessInput(root.ID(), drag(60, 50, origin)))
	assert.Equal(t, Dragged, c.State())
	tree.ProcessInput(root.ID(), lift(60, 50, origin))
	assert.Equal(t, Normal, c.State())
	assert.Equal(t, []string{"press", "move", "lift", "click"}, rec.calls)
}

func TestCheckable(t *testing.T) {
	tree, root, c, rec := screen(t, geom.NewRect(0, 0, 100, 100))
	c.SetCheckable(true)
	at := geom.Pt(10, 10)

	tree.ProcessInput(root.ID(), press(10, 10))
	assert.Equal(t, Pressed, c.State())
	tree.ProcessInput(root.ID(), lift(10, 10, at))
	assert.Equal(t, Checked, c.State())
	assert.True(t, c.IsChecked())

	tree.ProcessInput(root.ID(), press(10, 10))
	assert.Equal(t, CheckedPressed, c.State())
	tree.ProcessInput(root.ID(), lift(500, 500, at))
	assert.Equal(t, Checked, c.State(), "lift outside keeps the check")
	assert.True(t, c.IsChecked())
	assert.Equal(t, 1, count(rec.calls, "click"), "lift outside does not click")

	tree.ProcessInput(root.ID(), press(10, 10))
	tree.ProcessInput(root.ID(), lift(10, 10, at))
	assert.Equal(t, Normal, c.State())
	assert.Equal(t, 2, count(rec.calls, "click"))
}

func TestDisabledAbsorbs(t *testing.T) {
	tree, root, c, rec := screen(t, geom.NewRect(0, 0, 100, 100))
	c.SetEnabled(false)
	assert.Equal(t, Disabled, c.State())

	assert.True(t, tree.ProcessInput(root.ID(), press(10, 10)))
	assert.Equal(t, Disabled, c.State())
	assert.False(t, tree.ProcessInput(root.ID(), press(300, 300)))
	assert.Empty(t, rec.calls)

	c.SetEnabled(true)
	assert.Equal(t, Normal, c.State())
}

func TestDisabledPassesThroughOutsideTouchArea(t *testing.T) {
	tree := NewTree()
	root := Panel(tree, 400, 400)
	parent := Panel(tree, 200, 200)
	var childCalls int
	child := Panel(tree, 50, 50).Position(100, 100).OnPress(func(geom.Point, ID) { childCalls++ })
	parent.Children(child)
	root.Children(parent)
	parent.Control().SetTouchable(true)
	parent.Control().SetTouchArea(geom.NewRect(0, 0, 50, 50))
	parent.Enabled(false)

	assert.True(t, tree.ProcessInput(root.ID(), press(120, 120)))
	assert.Equal(t, 1, childCalls, "child outside the disabled touch area still gets input")
	assert.Equal(t, Pressed, child.Control().State())

	assert.True(t, tree.ProcessInput(root.ID(), press(10, 10)))
	assert.Equal(t, 1, childCalls)
	assert.False(t, tree.ProcessInput(root.ID(), press(180, 20)), "disabled control does not handle input itself")
	assert.Equal(t, Disabled, parent.Control().State())
}

func TestChildShortCircuitsParent(t *testing.T) {
	tree := NewTree()
	root := Panel(tree, 400, 400)
	var parentCalls, childCalls int
	parent := Panel(tree, 200, 200).Position(10, 10).OnPress(func(geom.Point, ID) { parentCalls++ })
	child := Panel(tree, 50, 50).Position(20, 20).OnPress(func(geom.Point, ID) { childCalls++ })
	parent.Children(child)
	root.Children(parent)

	assert.Equal(t, geom.NewRect(30, 30, 50, 50), child.Control().Area(), "translated into parent")

	tree.ProcessInput(root.ID(), press(40, 40))
	assert.Equal(t, 1, childCalls)
	assert.Equal(t, 0, parentCalls)

	tree.ProcessInput(root.ID(), press(150, 150))
	assert.Equal(t, 1, parentCalls)
}

func TestTopmostChildFirst(t *testing.T) {
	tree := NewTree()
	root := Panel(tree, 100, 100)
	var got []string
	a := Panel(tree, 50, 50).OnPress(func(geom.Point, ID) { got = append(got, "a") })
	b := Panel(tree, 50, 50).OnPress(func(geom.Point, ID) { got = append(got, "b") })
	root.Children(a, b)
	tree.ProcessInput(root.ID(), press(5, 5))
	assert.Equal(t, []string{"b"}, got)
}

func TestInvalidate(t *testing.T) {
	tree := NewTree()
	r := renderer2d.New(software.New())
	root := Panel(tree, 100, 100)
	opaque := Panel(tree, 10, 10)
	glass := Panel(tree, 10, 10).Transparent(true)
	root.Children(opaque, glass)

	changed, err := tree.UpdateData(root.ID(), r)
	require.NoError(t, err)
	require.True(t, changed)

	opaque.Invalidate()
	assert.True(t, opaque.Control().IsDirty())
	assert.False(t, root.Control().IsDirty(), "opaque child does not touch parent")
	opaque.Invalidate()

	_, err = tree.UpdateData(root.ID(), r)
	require.NoError(t, err)
	glass.Invalidate()
	assert.True(t, root.Control().IsDirty(), "transparent child exposes parent")
}

func TestUpdateDataAndRender(t *testing.T) {
	hal := software.New()
	r := renderer2d.New(hal)
	tree := NewTree()
	root := Panel(tree, 20, 20).Background(colors.Blue)
	box := Panel(tree, 5, 5).Position(10, 10).Background(colors.Red)
	root.Children(box)

	changed, err := tree.UpdateData(root.ID(), r)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = tree.UpdateData(root.ID(), r)
	require.NoError(t, err)
	assert.False(t, changed, "nothing dirty")
	require.NotNil(t, box.Control().Texture(Normal))
	assert.Nil(t, box.Control().Texture(Pressed))

	target, err := hal.Alloc(20, 20)
	require.NoError(t, err)
	r.BeginFrame(target)
	require.NoError(t, tree.Render(root.ID(), r))
	require.NoError(t, r.EndFrame())

	at := func(x, y int) colors.Color { c, _ := hal.GetPixel(target, x, y); return c }
	assert.Equal(t, colors.Blue, at(0, 0))
	assert.Equal(t, colors.Red, at(12, 12))
	assert.Equal(t, colors.Blue, at(15, 15))

	box.Visible(false)
	r.BeginFrame(target)
	require.NoError(t, tree.Render(root.ID(), r))
	require.NoError(t, r.EndFrame())
	assert.Equal(t, colors.Blue, at(12, 12), "hidden control not drawn")
}

// dot is a 4x4 mask with one opaque pixel.
func dot(x, y int) *pixels.PixelData {
	pd := pixels.MustNew(4, 4, pixels.Alpha)
	_ = pd.SetPixelAt(x, y, colors.White)
	return pd
}

func paintOnce(t *testing.T, tree *Tree, root ID, w, h int) func(x, y int) colors.Color {
	t.Helper()
	hal := software.New()
	r := renderer2d.New(hal)
	_, err := tree.UpdateData(root, r)
	require.NoError(t, err)
	target, err := hal.Alloc(w, h)
	require.NoError(t, err)
	r.BeginFrame(target)
	require.NoError(t, tree.Render(root, r))
	require.NoError(t, r.EndFrame())
	return func(x, y int) colors.Color { c, _ := hal.GetPixel(target, x, y); return c }
}

func TestBitmapCompositesOverBackground(t *testing.T) {
	tree := NewTree()
	p := Panel(tree, 4, 4).Background(colors.Red).Foreground(colors.Green).Bitmap(dot(1, 1))
	at := paintOnce(t, tree, p.ID(), 4, 4)
	assert.Equal(t, colors.Red, at(0, 0), "transparent mask keeps the background")
	assert.Equal(t, colors.Green, at(1, 1))
	assert.Equal(t, colors.Red, at(3, 3))
}

func TestImageCompositesOverBackground(t *testing.T) {
	tree := NewTree()
	im := Image(tree, dot(2, 1)).Background(colors.Blue).Foreground(colors.White)
	at := paintOnce(t, tree, im.ID(), 4, 4)
	assert.Equal(t, colors.Blue, at(0, 0))
	assert.Equal(t, colors.White, at(2, 1))
}

func TestOverlayDrawnAboveContent(t *testing.T) {
	tree := NewTree()
	p := Panel(tree, 4, 4).Background(colors.Red).Foreground(colors.Green).
		Border(colors.Blue).Bitmap(dot(0, 1)).Overlay(dot(0, 0))
	at := paintOnce(t, tree, p.ID(), 4, 4)
	assert.Equal(t, colors.Green, at(0, 0), "overlay covers the border")
	assert.Equal(t, colors.Blue, at(0, 1), "border covers the background bitmap")
	assert.Equal(t, colors.Blue, at(1, 0), "overlay mask is transparent there")
	assert.Equal(t, colors.Red, at(1, 1))
}

func TestStateTextures(t *testing.T) {
	r := renderer2d.New(software.New())
	tree := NewTree()
	root := Panel(tree, 100, 100)
	btn := Button(tree, "OK")
	root.Children(btn)
	_, err := tree.UpdateData(root.ID(), r)
	require.NoError(t, err)

	c := btn.Control()
	p := c.Area().Origin()
	tree.ProcessInput(root.ID(), press(p.X+1, p.Y+1))
	require.True(t, c.IsDirty(), "state change repaints")
	changed, err := tree.UpdateData(root.ID(), r)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotNil(t, c.Texture(Pressed))
	assert.NotNil(t, c.Texture(Normal))
	assert.Equal(t, gfx.Copy, c.Texture(Pressed).Surface().BlendMode)
}

func TestMissingTextureRendersNothing(t *testing.T) {
	hal := software.New()
	r := renderer2d.New(hal)
	tree := NewTree()
	root := Panel(tree, 4, 4).Background(colors.Red)
	target, _ := hal.Alloc(4, 4)
	r.BeginFrame(target)
	require.NoError(t, tree.Render(root.ID(), r))
	require.NoError(t, r.EndFrame())
	c, _ := hal.GetPixel(target, 0, 0)
	assert.Equal(t, colors.Color(0), c)
}

func TestTreeStructure(t *testing.T) {
	tree := NewTree()
	root := Panel(tree, 100, 100).Position(5, 5)
	a := Panel(tree, 10, 10).Position(1, 1)
	b := Panel(tree, 5, 5).Position(2, 2)
	a.Children(b)
	root.Children(a)

	assert.Equal(t, geom.NewRect(8, 8, 5, 5), b.Control().Area())
	assert.Equal(t, a.ID(), b.Control().Parent())

	a.Control().SetOrigin(geom.Pt(50, 50))
	assert.Equal(t, geom.NewRect(52, 52, 5, 5), b.Control().Area(), "subtree moves")

	err := tree.AddChild(root.ID(), a.ID())
	assert.True(t, errors.Is(err, ErrAttached))
	err = tree.AddChild(b.ID(), tree.Get(root.ID()).ID())
	assert.True(t, errors.Is(err, ErrCycle))
	assert.True(t, errors.Is(tree.AddChild(ID(99), a.ID()), ErrNoControl))

	tree.Remove(a.ID())
	assert.Nil(t, tree.Get(a.ID()))
	assert.Nil(t, tree.Get(b.ID()))
	assert.Empty(t, root.Control().Children())
	assert.Equal(t, 1, tree.Len())

	c := Panel(tree, 1, 1)
	assert.Greater(t, int(c.ID()), int(b.ID()), "ids are not reused")
}

func TestResetInput(t *testing.T) {
	tree, root, c, rec := screen(t, geom.NewRect(0, 0, 10, 10))
	tree.ProcessInput(root.ID(), press(1, 1))
	tree.ResetInput(root.ID())
	assert.Equal(t, Normal, c.State())
	assert.False(t, tree.ProcessInput(root.ID(), lift(1, 1, geom.Pt(1, 1))))
	assert.Equal(t, []string{"press"}, rec.calls)
}

func TestArrange(t *testing.T) {
	tests := []struct {
		name  string
		stack Stack
		want  []geom.Rect
	}{
		{
			"row start",
			Stack{Gap: 10, Padding: [4]int{5, 5, 5, 5}},
			[]geom.Rect{geom.NewRect(5, 5, 20, 10), geom.NewRect(35, 5, 30, 20)},
		},
		{
			"column centered",
			Stack{Flow: LayoutVertical, MainAlign: AlignCenter, CrossAlign: AlignCenter},
			[]geom.Rect{geom.NewRect(40, 35, 20, 10), geom.NewRect(35, 45, 30, 20)},
		},
		{
			"row end stretched",
			Stack{MainAlign: AlignEnd, CrossAlign: AlignStretch},
			[]geom.Rect{geom.NewRect(50, 0, 20, 100), geom.NewRect(70, 0, 30, 100)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := NewTree()
			root := Panel(tree, 100, 100)
			a := Panel(tree, 20, 10)
			b := Panel(tree, 30, 20)
			root.Children(a, b)
			tree.Arrange(root.ID(), tt.stack)
			assert.Equal(t, tt.want[0], a.Control().Area())
			assert.Equal(t, tt.want[1], b.Control().Area())
		})
	}
}

func TestArrangeExpand(t *testing.T) {
	tree := NewTree()
	root := Panel(tree, 100, 20)
	a := Panel(tree, 20, 20)
	b := Panel(tree, 10, 20).Expand()
	root.Children(a, b)
	tree.Arrange(root.ID(), Stack{Gap: 10})
	assert.Equal(t, geom.NewRect(30, 0, 70, 20), b.Control().Area())
}

func TestSlider(t *testing.T) {
	tree := NewTree()
	root := Panel(tree, 200, 50)
	var got []int
	s := Slider(tree, 110, 20, 0, 100).OnChange(func(v int) { got = append(got, v) })
	root.Children(s)

	tree.ProcessInput(root.ID(), press(5, 10))
	assert.Equal(t, 0, s.Value())
	tree.ProcessInput(root.ID(), drag(55, 10, geom.Pt(5, 10)))
	assert.Equal(t, 50, s.Value())
	assert.Equal(t, Dragged, s.Control().State())
	tree.ProcessInput(root.ID(), drag(109, 10, geom.Pt(5, 10)))
	assert.Equal(t, 100, s.Value())
	assert.Equal(t, []int{50, 100}, got)
}

func TestLabelWrap(t *testing.T) {
	tree := NewTree()
	f := tree.Face()
	one := wrapText(f, "alpha beta gamma", 1000)
	assert.Equal(t, []string{"alpha beta gamma"}, one)

	lines := wrapText(f, "alpha beta gamma", 1)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, lines)

	assert.Equal(t, []string{"a", "", "b"}, wrapText(f, "a\n\nb", 100))
}

func TestLabelText(t *testing.T) {
	r := renderer2d.New(software.New())
	tree := NewTree()
	l := Label(tree, "hi")
	assert.Greater(t, l.Control().Area().Width(), 0)
	_, err := tree.UpdateData(l.ID(), r)
	require.NoError(t, err)

	l.SetText("hi")
	assert.False(t, l.Control().IsDirty(), "same text")
	l.SetText("hello")
	assert.True(t, l.Control().IsDirty())
	w := l.Control().Area().Width()
	l.Fit()
	assert.Greater(t, l.Control().Area().Width(), w)
}

func count(calls []string, name string) int {
	n := 0
	for _, c := range calls {
		if c == name {
			n++
		}
	}
	return n
}
