package core

import "github.com/hubastard/trellis/engine/gfx/renderer2d"

// Layer is an overlay drawn on top of the active scene, such as a stats
// readout or a modal. Overlays persist across scene switches.
type Layer interface {
	OnAttach(e *Engine)
	OnDetach(e *Engine)
	// UpdateData repaints what changed and reports whether anything did.
	UpdateData(r *renderer2d.Renderer) (bool, error)
	Render(r *renderer2d.Renderer) error
}

// LayerStack keeps overlays in registration order.
type LayerStack struct{ list []Layer }

func (ls *LayerStack) Push(l Layer) { ls.list = append(ls.list, l) }

func (ls *LayerStack) Pop() (Layer, bool) {
	if len(ls.list) == 0 {
		return nil, false
	}
	i := len(ls.list) - 1
	l := ls.list[i]
	ls.list[i] = nil
	ls.list = ls.list[:i]
	return l, true
}

func (ls *LayerStack) Len() int { return len(ls.list) }

// Each visits the layers bottom to top and stops at the first error.
func (ls *LayerStack) Each(f func(Layer) error) error {
	for _, l := range ls.list {
		if err := f(l); err != nil {
			return err
		}
	}
	return nil
}

// EachReverse visits the layers top to bottom until f returns true.
func (ls *LayerStack) EachReverse(f func(Layer) bool) {
	for i := len(ls.list) - 1; i >= 0; i-- {
		if f(ls.list[i]) {
			break
		}
	}
}
