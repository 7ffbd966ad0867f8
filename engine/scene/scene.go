// Package scene groups a control tree into one screen of the application.
package scene

import (
	"github.com/hubastard/trellis/engine/event"
	"github.com/hubastard/trellis/engine/gfx/renderer2d"
	"github.com/hubastard/trellis/engine/input"
	"github.com/hubastard/trellis/engine/logging"
	"github.com/hubastard/trellis/engine/ui"
)

// ID names a scene to the engine.
type ID int

// Scene owns a control tree whose root panel covers the display.
type Scene struct {
	id   ID
	name string
	tree *ui.Tree
	root *ui.UIPanel

	// OnEnter runs when the scene becomes active, OnExit when it stops
	// being active.
	OnEnter func(s *Scene)
	OnExit  func(s *Scene)
	// OnAppEvent receives application events. Returning true stops them
	// reaching later subscribers.
	OnAppEvent func(s *Scene, ev event.App) bool
}

var _ event.Subscriber = (*Scene)(nil)

func New(id ID, name string, width, height int) *Scene {
	tree := ui.NewTree()
	return &Scene{id: id, name: name, tree: tree, root: ui.Panel(tree, width, height)}
}

func (s *Scene) ID() ID                   { return s.id }
func (s *Scene) Name() string             { return s.name }
func (s *Scene) Tree() *ui.Tree           { return s.tree }
func (s *Scene) Root() *ui.UIPanel        { return s.root }
func (s *Scene) RootID() ui.ID            { return s.root.ID() }
func (s *Scene) String() string           { return s.name }
func (s *Scene) Get(id ui.ID) *ui.Control { return s.tree.Get(id) }

// Add attaches nodes to the root panel. Their positions are relative to
// the display.
func (s *Scene) Add(nodes ...ui.Node) *Scene {
	s.root.Children(nodes...)
	return s
}

// Touchables lists the controls that react to touch, topmost first. It is
// computed on each call. ProcessInput walks the tree itself and offers a
// point to overlapping controls in this same order.
func (s *Scene) Touchables() []ui.ID {
	var ids []ui.ID
	s.tree.Walk(s.RootID(), func(c *ui.Control) bool {
		if c.IsTouchable() {
			ids = append(ids, c.ID())
		}
		return true
	})
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids
}

// ProcessInput dispatches ev through the tree and reports whether a
// control took it.
func (s *Scene) ProcessInput(ev input.Event) bool {
	return s.tree.ProcessInput(s.RootID(), ev)
}

func (s *Scene) UpdateData(r *renderer2d.Renderer) (bool, error) {
	return s.tree.UpdateData(s.RootID(), r)
}

func (s *Scene) Render(r *renderer2d.Renderer) error {
	return s.tree.Render(s.RootID(), r)
}

// HandleEvent routes broker events: touches go through ProcessInput, app
// events to OnAppEvent.
func (s *Scene) HandleEvent(ev event.Event) bool {
	switch e := ev.(type) {
	case event.Touch:
		return s.ProcessInput(e.Event)
	case event.App:
		if s.OnAppEvent != nil {
			return s.OnAppEvent(s, e)
		}
	}
	return false
}

// Enter activates the scene. The whole tree is flagged for repaint.
func (s *Scene) Enter() {
	s.tree.Walk(s.RootID(), func(c *ui.Control) bool {
		c.Invalidate()
		return true
	})
	logging.For("scene").Info("enter", "scene", s.name, "id", s.id)
	if s.OnEnter != nil {
		s.OnEnter(s)
	}
}

// Exit deactivates the scene, dropping any gesture in progress.
func (s *Scene) Exit() {
	s.tree.ResetInput(s.RootID())
	if s.OnExit != nil {
		s.OnExit(s)
	}
}
