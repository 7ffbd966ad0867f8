// Command kiosk runs the demo touch interface on a Linux framebuffer, or in
// a desktop window with -sim.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hubastard/trellis/engine/assets"
	"github.com/hubastard/trellis/engine/core"
	"github.com/hubastard/trellis/engine/event"
	"github.com/hubastard/trellis/engine/fbdev"
	"github.com/hubastard/trellis/engine/gfx"
	"github.com/hubastard/trellis/engine/gfx/accel"
	glbackend "github.com/hubastard/trellis/engine/gfx/gl"
	"github.com/hubastard/trellis/engine/gfx/software"
	"github.com/hubastard/trellis/engine/input"
	"github.com/hubastard/trellis/engine/logging"
	"github.com/hubastard/trellis/engine/platform"
	"github.com/hubastard/trellis/engine/profiler"
	"github.com/hubastard/trellis/engine/timer"
	"github.com/pkg/errors"
)

type options struct {
	cfg     core.Config
	sim     bool
	scale   int
	assets  string
	stats   bool
	verbose bool
	profile string
}

func parseFlags() options {
	o := options{cfg: core.DefaultConfig()}
	backend := flag.String("backend", string(o.cfg.Backend), "rasterizer: software or gl (gl needs -sim)")
	flag.StringVar(&o.cfg.Device, "fb", "", "framebuffer device (default $FRAMEBUFFER or "+fbdev.DefaultDevice+")")
	flag.StringVar(&o.cfg.Console, "console", "", "VT to put in graphics mode, - for none (default "+fbdev.DefaultConsole+")")
	flag.StringVar(&o.cfg.TouchDevice, "touch", "", "evdev touch device (default: first panel under "+input.DefaultInputDir+")")
	flag.IntVar(&o.cfg.MaxFPS, "fps", o.cfg.MaxFPS, "frame rate cap")
	flag.IntVar(&o.cfg.Width, "width", o.cfg.Width, "simulated panel width")
	flag.IntVar(&o.cfg.Height, "height", o.cfg.Height, "simulated panel height")
	flag.BoolVar(&o.sim, "sim", false, "run in a desktop window")
	flag.IntVar(&o.scale, "scale", 1, "simulator window scale")
	flag.StringVar(&o.assets, "assets", "assets", "directory with images/ and fonts/")
	flag.BoolVar(&o.stats, "stats", false, "show the stats overlay")
	flag.BoolVar(&o.verbose, "v", false, "debug logging")
	flag.StringVar(&o.profile, "profile", "", "write a speedscope profile here on exit (profile builds)")
	flag.Parse()
	o.cfg.Backend = core.Backend(*backend)
	return o
}

func main() {
	o := parseFlags()
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	log := logging.Text(level)

	if err := run(o); err != nil {
		log.Error("kiosk", "err", err)
		os.Exit(1)
	}
}

// device bundles what run needs to tear down.
type device struct {
	display core.Display
	source  input.Source
	close   func()
}

func run(o options) error {
	if o.profile != "" {
		profiler.Init(1 << 16)
	}

	dev, err := openDevice(o)
	if err != nil {
		return err
	}
	defer dev.close()

	hal, closeHal, err := newHal(o.cfg.Backend, o.sim)
	if err != nil {
		return err
	}
	defer closeHal()

	w, h := dev.display.Size()
	o.cfg.Width, o.cfg.Height = w, h
	broker := event.NewBroker()
	eng, err := core.New(o.cfg, core.Deps{
		Hal:     hal,
		Display: dev.display,
		Input:   dev.source,
		Timers:  timer.New(nil),
		Broker:  broker,
	})
	if err != nil {
		return err
	}

	if sim, ok := dev.display.(*platform.Simulator); ok {
		sim.OnClose(eng.Terminate)
	}

	app := newDemo(eng, assets.Dir(o.assets))
	if o.stats {
		app.showStats(true)
	}
	if err := eng.RequestScene(sceneHome); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = eng.Run(ctx)

	if o.profile != "" {
		if perr := profiler.Dump(o.profile); perr != nil {
			logging.For("kiosk").Warn("profile", "err", perr)
		}
	}
	return err
}

func newHal(b core.Backend, sim bool) (gfx.Hal, func(), error) {
	switch b {
	case core.BackendSoftware:
		return software.New(), func() {}, nil
	case core.BackendGL:
		if !sim {
			return nil, nil, errors.New("the gl backend needs the -sim window")
		}
		d, err := glbackend.NewDevice()
		if err != nil {
			return nil, nil, err
		}
		return accel.New(d), d.Shutdown, nil
	}
	return nil, nil, errors.Errorf("unknown backend %q", b)
}

func openDevice(o options) (*device, error) {
	if o.sim {
		sim, err := platform.NewSimulator(platform.SimulatorConfig{
			Title:  o.cfg.Title,
			Width:  o.cfg.Width,
			Height: o.cfg.Height,
			Scale:  o.scale,
		})
		if err != nil {
			return nil, err
		}
		return &device{display: sim, source: sim, close: sim.Close}, nil
	}

	fb, err := fbdev.Open(fbdev.Config{Device: o.cfg.Device, Console: o.cfg.Console})
	if err != nil {
		return nil, err
	}
	w, h := fb.Size()
	cal := input.Calibration{Width: w, Height: h}
	open := func(path string) (input.Device, error) {
		ts, err := input.OpenTouchscreen(path, cal)
		if err != nil {
			return nil, err
		}
		return ts, nil
	}

	var first input.Device
	if o.cfg.TouchDevice != "" {
		if first, err = open(o.cfg.TouchDevice); err != nil {
			fb.Close()
			return nil, err
		}
	} else {
		nodes, _ := filepath.Glob(filepath.Join(input.DefaultInputDir, "event*"))
		for _, n := range nodes {
			if d, err := open(n); err == nil {
				first = d
				break
			}
		}
	}

	log := logging.For("kiosk")
	var added <-chan string
	watcher, err := input.NewWatcher(input.DefaultInputDir)
	if err != nil {
		log.Warn("touch hotplug disabled", "err", err)
	} else {
		added = watcher.Added()
	}
	if first == nil {
		log.Warn("no touch panel yet, waiting for one")
	}
	hp := input.NewHotplug(first, added, open)
	return &device{
		display: fb,
		source:  hp,
		close: func() {
			if watcher != nil {
				watcher.Close()
			}
			hp.Close()
			if err := fb.Close(); err != nil {
				log.Warn("close framebuffer", "err", err)
			}
		},
	}, nil
}
