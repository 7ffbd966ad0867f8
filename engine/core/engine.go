// Package core runs the frame loop: timers, touch input, scene switching,
// repaint of invalidated controls and presentation.
package core

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/hubastard/trellis/engine/event"
	"github.com/hubastard/trellis/engine/gfx"
	"github.com/hubastard/trellis/engine/gfx/renderer2d"
	"github.com/hubastard/trellis/engine/input"
	"github.com/hubastard/trellis/engine/logging"
	"github.com/hubastard/trellis/engine/profiler"
	"github.com/hubastard/trellis/engine/scene"
	"github.com/hubastard/trellis/engine/timer"
	"github.com/pkg/errors"
)

var ErrUnknownScene = errors.New("unknown scene")

// Display is where finished frames go: the framebuffer on a device, a
// window in the simulator.
type Display interface {
	// Back is the surface the next frame is rendered into.
	Back() *gfx.Surface
	// Present shows the back surface.
	Present() error
	Size() (int, int)
}

// Deps are the collaborators the engine drives. Input, Timers and Broker
// get in-memory defaults when nil.
type Deps struct {
	Hal     gfx.Hal
	Display Display
	Input   input.Source
	Timers  *timer.Queue
	Broker  *event.Broker
}

// Engine owns the scenes and runs one frame per Step.
type Engine struct {
	cfg      Config
	hal      gfx.Hal
	display  Display
	input    input.Source
	timers   *timer.Queue
	broker   *event.Broker
	renderer *renderer2d.Renderer

	scenes    map[scene.ID]*scene.Scene
	active    *scene.Scene
	requested scene.ID
	pending   bool
	overlays  LayerStack
	redraw    bool

	terminate atomic.Bool
	fps       atomic.Int64
	frames    uint64
	start     time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

func New(cfg Config, deps Deps) (*Engine, error) {
	if deps.Hal == nil {
		return nil, errors.New("core: no gfx backend")
	}
	if deps.Display == nil {
		return nil, errors.New("core: no display")
	}
	if deps.Input == nil {
		deps.Input = input.NewQueue()
	}
	if deps.Timers == nil {
		deps.Timers = timer.New(nil)
	}
	if deps.Broker == nil {
		deps.Broker = event.NewBroker()
	}
	e := &Engine{
		cfg:      cfg,
		hal:      deps.Hal,
		display:  deps.Display,
		input:    deps.Input,
		timers:   deps.Timers,
		broker:   deps.Broker,
		renderer: renderer2d.New(deps.Hal),
		scenes:   make(map[scene.ID]*scene.Scene),
		start:    time.Now(),
		now:      time.Now,
		sleep:    time.Sleep,
	}
	w, h := deps.Display.Size()
	logging.For("core").Info("engine ready", "backend", deps.Hal.Name(), "width", w, "height", h, "maxFPS", cfg.MaxFPS)
	return e, nil
}

func (e *Engine) Config() Config                 { return e.cfg }
func (e *Engine) Hal() gfx.Hal                   { return e.hal }
func (e *Engine) Display() Display               { return e.display }
func (e *Engine) Renderer() *renderer2d.Renderer { return e.renderer }
func (e *Engine) Timers() *timer.Queue           { return e.timers }
func (e *Engine) Broker() *event.Broker          { return e.broker }
func (e *Engine) ActiveScene() *scene.Scene      { return e.active }
func (e *Engine) Scene(id scene.ID) *scene.Scene { return e.scenes[id] }
func (e *Engine) Uptime() time.Duration          { return time.Since(e.start) }
func (e *Engine) Frames() uint64                 { return e.frames }
func (e *Engine) Overlays() *LayerStack          { return &e.overlays }

// FPS is the rate the last frame's work would allow, before pacing.
func (e *Engine) FPS() int { return int(e.fps.Load()) }

// AddScene registers s. A scene with the same ID is replaced; replacing
// the active scene takes effect at the next RequestScene.
func (e *Engine) AddScene(s *scene.Scene) {
	e.scenes[s.ID()] = s
}

// RequestScene schedules a switch to scene id at the next Step.
func (e *Engine) RequestScene(id scene.ID) error {
	if _, ok := e.scenes[id]; !ok {
		return errors.Wrapf(ErrUnknownScene, "scene %d", id)
	}
	e.requested, e.pending = id, true
	return nil
}

// PushOverlay adds a layer above the scene and everything pushed before.
func (e *Engine) PushOverlay(l Layer) {
	e.overlays.Push(l)
	l.OnAttach(e)
	e.redraw = true
}

// PopOverlay removes the topmost layer.
func (e *Engine) PopOverlay() (Layer, bool) {
	l, ok := e.overlays.Pop()
	if ok {
		l.OnDetach(e)
		e.redraw = true
	}
	return l, ok
}

// Terminate stops Run after the current frame. Safe from any goroutine.
func (e *Engine) Terminate() { e.terminate.Store(true) }

func (e *Engine) Terminated() bool { return e.terminate.Load() }

// Step runs one frame. Errors from repaint, render or present are returned
// as they are; the engine state after one is undefined until restarted.
func (e *Engine) Step() error {
	begin := e.now()
	log := logging.For("core")

	e.timers.Poll()

	var ev input.Event
	for e.input.Poll(&ev) {
		e.broker.Publish(event.Touch{Event: ev})
	}
	e.broker.ProcessEvents()

	if e.pending {
		e.switchScene()
	}

	changed, err := e.update()
	if err != nil {
		return errors.Wrap(err, "update")
	}
	if changed || e.redraw {
		if err := e.render(); err != nil {
			return err
		}
		e.redraw = false
		log.Debug("frame", "n", e.frames, "stats", e.renderer.Stats(), "took", e.now().Sub(begin))
	}
	e.frames++

	elapsed := e.now().Sub(begin).Milliseconds()
	e.fps.Store(1000 / max(1, elapsed))
	if wait := e.cfg.frameBudgetMs() - elapsed; wait > 0 {
		e.sleep(time.Duration(wait) * time.Millisecond)
	}
	return nil
}

func (e *Engine) switchScene() {
	next := e.scenes[e.requested]
	e.pending = false
	if next == nil {
		return
	}
	e.input.Flush()
	e.broker.Drop(event.IsTouch)
	if e.active != nil {
		e.broker.Unsubscribe(e.active)
		e.active.Exit()
	}
	e.active = next
	e.broker.Subscribe(next)
	next.Enter()
	e.redraw = true
	logging.For("core").Info("scene switched", "scene", next.Name(), "id", next.ID())
}

func (e *Engine) update() (bool, error) {
	defer profiler.Start("update")()
	changed := false
	if e.active != nil {
		c, err := e.active.UpdateData(e.renderer)
		if err != nil {
			return false, errors.Wrapf(err, "scene %s", e.active.Name())
		}
		changed = c
	}
	err := e.overlays.Each(func(l Layer) error {
		c, err := l.UpdateData(e.renderer)
		changed = changed || c
		return err
	})
	return changed, err
}

func (e *Engine) render() error {
	endRender := profiler.Start("render")
	e.renderer.BeginFrame(e.display.Back())
	err := e.renderer.Clear(e.cfg.ClearColor)
	if err == nil && e.active != nil {
		err = e.active.Render(e.renderer)
	}
	if err == nil {
		err = e.overlays.Each(func(l Layer) error { return l.Render(e.renderer) })
	}
	if endErr := e.renderer.EndFrame(); err == nil {
		err = endErr
	}
	endRender()
	if err != nil {
		return errors.Wrap(err, "render")
	}

	defer profiler.Start("present")()
	return errors.Wrap(e.display.Present(), "present")
}

// Run calls Step until Terminate or ctx is done, both checked between
// frames. It returns nil when stopped and the first Step error otherwise.
// Run locks the calling goroutine to its OS thread for GL backends.
func (e *Engine) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer e.shutdown()

	for !e.terminate.Load() {
		if ctx.Err() != nil {
			return nil
		}
		if err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) shutdown() {
	if e.active != nil {
		e.broker.Unsubscribe(e.active)
		e.active.Exit()
	}
	e.overlays.EachReverse(func(l Layer) bool {
		l.OnDetach(e)
		return false
	})
	logging.For("core").Info("engine exit", "frames", e.frames, "uptime", e.Uptime())
}
