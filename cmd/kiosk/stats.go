package main

import (
	"time"

	"github.com/hubastard/trellis/engine/colors"
	"github.com/hubastard/trellis/engine/core"
	"github.com/hubastard/trellis/engine/gfx/renderer2d"
	"github.com/hubastard/trellis/engine/profiler"
	"github.com/hubastard/trellis/engine/scratch"
	"github.com/hubastard/trellis/engine/text"
	"github.com/hubastard/trellis/engine/timer"
	"github.com/hubastard/trellis/engine/ui"
)

const statsPeriod = 500 * time.Millisecond

// statsLayer is a translucent readout of frame, renderer and memory
// counters in the top-right corner.
type statsLayer struct {
	tree  *ui.Tree
	panel *ui.UIPanel
	lines []*ui.UILabel
	buf   *scratch.Buffer
	tick  timer.ID
}

func newStatsLayer() *statsLayer {
	l := &statsLayer{tree: ui.NewTree(), buf: scratch.New(128)}
	l.panel = ui.Panel(l.tree, 180, 0).
		Background(colors.Black.WithAlpha(0xA0)).
		Transparent(true)
	for i := 0; i < 6; i++ {
		line := ui.Label(l.tree, "").Foreground(colors.Yellow)
		line.Size(170, text.LineHeight(l.tree.Face()))
		l.lines = append(l.lines, line)
		l.panel.Children(line)
	}
	return l
}

func (l *statsLayer) OnAttach(e *core.Engine) {
	w, _ := e.Display().Size()
	l.refresh(e)
	h := 0
	for _, line := range l.lines {
		h += line.Control().Area().Height() + 2
	}
	l.panel.Size(180, h+8).Position(w-188, 8)
	l.tree.Arrange(l.panel.ID(), ui.Stack{Flow: ui.LayoutVertical, Gap: 2, Padding: [4]int{6, 4, 4, 4}})
	l.tick = e.Timers().Every(statsPeriod, func() { l.refresh(e) })
}

func (l *statsLayer) OnDetach(e *core.Engine) { e.Timers().Cancel(l.tick) }

func (l *statsLayer) refresh(e *core.Engine) {
	st := e.Renderer().Stats()
	mem := profiler.ReadMemory()
	b := l.buf
	l.set(0, b.Reset().Printf("%d fps  frame %u", e.FPS(), e.Frames()))
	l.set(1, b.Reset().S("backend ").S(e.Hal().Name()))
	l.set(2, b.Reset().Printf("draws %d  uploads %d", st.DrawCalls, st.Uploads))
	l.set(3, b.Reset().Printf("textures %d/%d", st.TextureCount, e.Renderer().Textures()))
	l.set(4, b.Reset().S("heap ").F(float64(mem.Alloc)/(1<<20), 2).S(" MB"))
	l.set(5, b.Reset().Printf("goroutines %d", mem.Goroutines))
}

func (l *statsLayer) set(i int, b *scratch.Buffer) {
	if l.lines[i].Text() != string(b.Bytes()) {
		l.lines[i].SetText(b.String())
	}
}

func (l *statsLayer) UpdateData(r *renderer2d.Renderer) (bool, error) {
	return l.tree.UpdateData(l.panel.ID(), r)
}

func (l *statsLayer) Render(r *renderer2d.Renderer) error {
	return l.tree.Render(l.panel.ID(), r)
}
