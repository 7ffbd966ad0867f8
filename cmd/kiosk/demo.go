package main

import (
	"time"

	"github.com/hubastard/trellis/engine/assets"
	"github.com/hubastard/trellis/engine/colors"
	"github.com/hubastard/trellis/engine/core"
	"github.com/hubastard/trellis/engine/event"
	"github.com/hubastard/trellis/engine/geom"
	"github.com/hubastard/trellis/engine/logging"
	"github.com/hubastard/trellis/engine/pixels"
	"github.com/hubastard/trellis/engine/scene"
	"github.com/hubastard/trellis/engine/scratch"
	"github.com/hubastard/trellis/engine/text"
	"github.com/hubastard/trellis/engine/timer"
	"github.com/hubastard/trellis/engine/ui"
)

const (
	sceneHome scene.ID = iota + 1
	sceneSettings
)

// evGoto asks the router to switch scenes; its payload is a scene.ID.
const evGoto = "goto"

var (
	background = colors.DarkGray
	accent     = colors.RGB(0xF2, 0xA6, 0x3B)
)

type demo struct {
	eng   *core.Engine
	files *assets.Loader
	title text.Face
	stats *statsLayer
	buf   *scratch.Buffer
}

func newDemo(eng *core.Engine, files *assets.Loader) *demo {
	d := &demo{eng: eng, files: files, buf: scratch.New(64)}
	if f, err := files.Font("title.ttf", 28); err == nil {
		d.title = f
	} else if f, err := text.Default(28); err == nil {
		d.title = f
	}
	eng.Broker().Subscribe(d)
	eng.AddScene(d.home())
	eng.AddScene(d.settings())
	return d
}

// HandleEvent routes navigation requests published by either scene.
func (d *demo) HandleEvent(ev event.Event) bool {
	app, ok := ev.(event.App)
	if !ok || app.Name != evGoto {
		return false
	}
	id, _ := app.Payload.(scene.ID)
	if err := d.eng.RequestScene(id); err != nil {
		logging.For("kiosk").Warn("navigation", "err", err)
	}
	return true
}

func (d *demo) goTo(id scene.ID) ui.Handler {
	return func(geom.Point, ui.ID) {
		d.eng.Broker().Publish(event.App{Name: evGoto, Payload: id})
	}
}

func (d *demo) showStats(on bool) {
	if on && d.stats == nil {
		d.stats = newStatsLayer()
		d.eng.PushOverlay(d.stats)
	} else if !on && d.stats != nil {
		d.eng.PopOverlay()
		d.stats = nil
	}
}

func (d *demo) heading(t *ui.Tree, s string) *ui.UILabel {
	l := ui.Label(t, s).Foreground(accent)
	if d.title != nil {
		l.Font(d.title).Fit()
	}
	return l
}

func (d *demo) home() *scene.Scene {
	w, h := d.eng.Display().Size()
	s := scene.New(sceneHome, "home", w, h)
	t := s.Tree()
	s.Root().Background(background)

	clock := ui.Label(t, time.Now().Format(time.TimeOnly)).Foreground(colors.Gray)
	count := 0
	counter := ui.Label(t, "tapped 0 times")
	tap := ui.Button(t, "  Tap me  ")
	tap.OnClick(func(geom.Point, ui.ID) {
		count++
		counter.SetText(d.buf.Reset().S("tapped ").I(count).S(" times").String())
	})

	level := ui.Label(t, "level 50")
	slider := ui.Slider(t, w/2, 40, 0, 100).SetValue(50).OnChange(func(v int) {
		level.SetText(d.buf.Reset().S("level ").I(v).String())
	})

	row := ui.Panel(t, w, 0).Transparent(true).Children(
		tap,
		ui.Button(t, "Settings").OnClick(d.goTo(sceneSettings)),
	)
	col := ui.Panel(t, w, h).Transparent(true).Children(
		d.heading(t, "trellis"),
		clock,
		ui.Image(t, d.logo()),
		row,
		counter,
		slider,
		level,
	)
	s.Add(col)

	fitHeight(t, row.ID())
	t.Arrange(row.ID(), ui.Stack{Flow: ui.LayoutHorizontal, Gap: 16, MainAlign: ui.AlignCenter, CrossAlign: ui.AlignCenter})
	t.Arrange(col.ID(), ui.Stack{Flow: ui.LayoutVertical, Gap: 12, Padding: [4]int{16, 16, 16, 16}, CrossAlign: ui.AlignCenter})

	var tick timer.ID
	s.OnEnter = func(*scene.Scene) {
		tick = d.eng.Timers().Every(time.Second, func() {
			clock.SetText(time.Now().Format(time.TimeOnly))
		})
	}
	s.OnExit = func(*scene.Scene) { d.eng.Timers().Cancel(tick) }
	return s
}

func (d *demo) settings() *scene.Scene {
	w, h := d.eng.Display().Size()
	s := scene.New(sceneSettings, "settings", w, h)
	t := s.Tree()
	s.Root().Background(background)

	stats := ui.CheckBox(t, "Show stats")
	stats.OnClick(func(geom.Point, ui.ID) { d.showStats(stats.IsChecked()) })
	s.OnEnter = func(*scene.Scene) { stats.Checked(d.stats != nil) }

	dim := ui.CheckBox(t, "Dim background")
	dim.OnClick(func(geom.Point, ui.ID) {
		c := background
		if dim.IsChecked() {
			c = colors.Black
		}
		s.Root().Background(c)
	})

	locked := ui.Button(t, "Factory reset").Enabled(false)
	col := ui.Panel(t, w, h).Transparent(true).Children(
		d.heading(t, "Settings"),
		stats,
		dim,
		locked,
		ui.Button(t, "Back").OnClick(d.goTo(sceneHome)),
	)
	s.Add(col)
	t.Arrange(col.ID(), ui.Stack{Flow: ui.LayoutVertical, Gap: 16, Padding: [4]int{24, 24, 24, 24}, CrossAlign: ui.AlignStart})
	return s
}

// logo loads images/logo.png, or draws a placeholder gradient.
func (d *demo) logo() *pixels.PixelData {
	if pd, err := d.files.Image("logo.png"); err == nil {
		return pd
	}
	const size = 64
	pd := pixels.MustNew(size, size, pixels.RGBA)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := colors.RGB(uint8(x*4), uint8(y*4), 0xC0)
			if (x-size/2)*(x-size/2)+(y-size/2)*(y-size/2) > (size/2)*(size/2) {
				c = colors.None
			}
			_ = pd.SetPixelAt(x, y, c)
		}
	}
	return pd
}

// fitHeight sizes a row panel to its tallest child.
func fitHeight(t *ui.Tree, id ui.ID) {
	row := t.Get(id)
	h := 0
	for _, c := range row.Children() {
		h = max(h, t.Get(c).Area().Height())
	}
	row.SetSize(row.Area().Width(), h)
}
