// Package platform hosts the engine on a desktop for development: a GLFW
// window stands in for the framebuffer and the mouse for the touch panel.
package platform

import (
	"runtime"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/hubastard/trellis/engine/geom"
	"github.com/hubastard/trellis/engine/gfx"
	glbackend "github.com/hubastard/trellis/engine/gfx/gl"
	"github.com/hubastard/trellis/engine/input"
	"github.com/hubastard/trellis/engine/logging"
	"github.com/pkg/errors"
)

// SimulatorConfig sizes the simulated panel. Scale enlarges the window
// without changing the panel resolution.
type SimulatorConfig struct {
	Title  string
	Width  int
	Height int
	Scale  int
	VSync  bool
}

// Simulator is a display and a touch source backed by one GLFW window.
type Simulator struct {
	win       *glfw.Window
	presenter *glbackend.Presenter
	back      *gfx.Surface
	queue     *input.Queue
	down      bool
	onClose   func()
}

// NewSimulator opens the window and makes its GL context current. It must
// run on the goroutine that will drive the engine.
func NewSimulator(cfg SimulatorConfig) (*Simulator, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "glfw init")
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.Samples, 0)

	scale := max(cfg.Scale, 1)
	win, err := glfw.CreateWindow(cfg.Width*scale, cfg.Height*scale, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "create window")
	}
	win.MakeContextCurrent()
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, errors.Wrap(err, "gl init")
	}
	logging.For("platform").Info("simulator window", "gl", gl.GoStr(gl.GetString(gl.VERSION)),
		"width", cfg.Width, "height", cfg.Height, "scale", scale)

	s := &Simulator{
		win:       win,
		presenter: glbackend.NewPresenter(),
		back:      gfx.NewSurface(cfg.Width, cfg.Height),
		queue:     input.NewQueue(),
	}
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		switch action {
		case glfw.Press:
			s.down = true
			s.queue.Push(input.Press, s.cursor())
		case glfw.Release:
			if s.down {
				s.down = false
				s.queue.Push(input.Lift, s.cursor())
			}
		}
	})
	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if s.down {
			s.queue.Push(input.Drag, s.toPanel(x, y))
		}
	})
	win.SetCloseCallback(func(*glfw.Window) {
		if s.onClose != nil {
			s.onClose()
		}
	})
	return s, nil
}

// OnClose runs fn when the window is asked to close.
func (s *Simulator) OnClose(fn func()) { s.onClose = fn }

func (s *Simulator) cursor() geom.Point { return s.toPanel(s.win.GetCursorPos()) }

// toPanel maps window coordinates to panel pixels.
func (s *Simulator) toPanel(x, y float64) geom.Point {
	ww, wh := s.win.GetSize()
	px := int(x * float64(s.back.Width) / float64(max(ww, 1)))
	py := int(y * float64(s.back.Height) / float64(max(wh, 1)))
	return geom.Pt(min(max(px, 0), s.back.Width-1), min(max(py, 0), s.back.Height-1))
}

func (s *Simulator) Back() *gfx.Surface { return s.back }
func (s *Simulator) Size() (int, int)   { return s.back.Width, s.back.Height }

// Present scales the panel surface onto the window and swaps.
func (s *Simulator) Present() error {
	fbW, fbH := s.win.GetFramebufferSize()
	if err := s.presenter.Present(s.back, fbW, fbH); err != nil {
		return err
	}
	s.win.SwapBuffers()
	return nil
}

// Poll pumps window events when nothing is queued, then hands out mouse
// gestures as touch events.
func (s *Simulator) Poll(ev *input.Event) bool {
	if s.queue.Len() == 0 {
		glfw.PollEvents()
	}
	return s.queue.Poll(ev)
}

func (s *Simulator) Flush() {
	s.queue.Flush()
	s.down = false
}

func (s *Simulator) ShouldClose() bool { return s.win.ShouldClose() }

func (s *Simulator) Close() {
	s.presenter.Shutdown()
	s.win.Destroy()
	glfw.Terminate()
}
