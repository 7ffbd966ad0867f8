package ui

import "github.com/hubastard/trellis/engine/geom"

type Align int

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
	AlignStretch
)

type LayoutDirection int

const (
	LayoutHorizontal LayoutDirection = iota
	LayoutVertical
)

// Stack lays children out in a row or column inside the parent's area.
type Stack struct {
	Flow       LayoutDirection
	Gap        int
	Padding    [4]int // left, top, right, bottom
	MainAlign  Align
	CrossAlign Align
}

// Arrange positions the children of parent. Children keep their size on the
// main axis except those marked Expand, which share what is left over.
// Cross-axis Stretch resizes every child to the inner cross size.
func (t *Tree) Arrange(parent ID, s Stack) {
	p := t.Get(parent)
	if p == nil || len(p.children) == 0 {
		return
	}
	vertical := s.Flow == LayoutVertical
	pad := s.Padding
	innerX, innerY := p.area.Left()+pad[0], p.area.Top()+pad[1]
	innerW := max(0, p.area.Width()-pad[0]-pad[2])
	innerH := max(0, p.area.Height()-pad[1]-pad[3])
	innerMain, innerCross := innerW, innerH
	if vertical {
		innerMain, innerCross = innerH, innerW
	}

	children := make([]*Control, 0, len(p.children))
	for _, id := range p.children {
		if c := t.Get(id); c != nil && c.visible {
			children = append(children, c)
		}
	}
	if len(children) == 0 {
		return
	}

	sizes := make([][2]int, len(children)) // main, cross
	mainUsed, expandCount := 0, 0
	for i, c := range children {
		w, h := c.area.Width(), c.area.Height()
		if vertical {
			w, h = h, w
		}
		sizes[i] = [2]int{w, h}
		mainUsed += w
		if c.expand {
			expandCount++
		}
	}
	gapTotal := s.Gap * (len(children) - 1)
	mainUsed += gapTotal

	// Distribute extra space along main axis to expanding children.
	remaining := max(0, innerMain-mainUsed)
	if expandCount > 0 {
		share, extra := remaining/expandCount, remaining%expandCount
		for i, c := range children {
			if !c.expand {
				continue
			}
			sizes[i][0] += share
			if extra > 0 {
				sizes[i][0]++
				extra--
			}
		}
		remaining = 0
	}

	var cursor int
	switch s.MainAlign {
	case AlignCenter:
		cursor = remaining / 2
	case AlignEnd:
		cursor = remaining
	}

	for i, c := range children {
		main, cross := sizes[i][0], sizes[i][1]
		if s.CrossAlign == AlignStretch {
			cross = innerCross
		}
		cross = min(cross, innerCross)

		var off int
		switch s.CrossAlign {
		case AlignCenter:
			off = (innerCross - cross) / 2
		case AlignEnd:
			off = innerCross - cross
		}

		if vertical {
			c.SetSize(cross, main)
			c.SetOrigin(geom.Pt(innerX+off, innerY+cursor))
		} else {
			c.SetSize(main, cross)
			c.SetOrigin(geom.Pt(innerX+cursor, innerY+off))
		}
		cursor += main + s.Gap
	}
}
