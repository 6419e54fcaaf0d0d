package main

import (
	"fmt"
	"io"
	"log"

	"fyne.io/fyne/v2"
	"github.com/itohio/gomp7100/pkg/config"
	"github.com/itohio/gomp7100/pkg/overlay"
	"github.com/itohio/gomp7100/pkg/publish"
	"github.com/itohio/gomp7100/pkg/reading"
)

// outputs fans every reading out to the text file, the rendered overlay
// sinks and, when nothing else shows it, the console.
type outputs struct {
	file    *publish.File
	overlay *overlay.Overlay
	console io.Writer
	quiet   bool

	fileFailed bool
}

// newOutputs creates the outputs selected by cfg. console may be nil.
func newOutputs(cfg *config.Config, console io.Writer) (*outputs, error) {
	o := &outputs{
		file:    publish.NewFile(cfg.Output.File, cfg.Output.Refresh),
		console: console,
		quiet:   cfg.Quiet,
	}

	var sinks []overlay.Sink
	if cfg.Output.Image != "" {
		sinks = append(sinks, overlay.NewPNGSink(cfg.Output.Image))
	}
	if cfg.Output.Framebuffer != "" {
		fb, err := overlay.NewFramebufferSink(cfg.Output.Framebuffer)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, fb)
	}

	if len(sinks) > 0 {
		renderer, err := overlay.NewRenderer(&cfg.Display)
		if err != nil {
			for _, s := range sinks {
				s.Close()
			}
			return nil, err
		}
		o.overlay = overlay.New(renderer, cfg.Quiet, sinks...)
	}

	return o, nil
}

// Update publishes r. It is registered as a reading.Poller callback.
func (o *outputs) Update(r reading.Reading) {
	// A first-write-wins file must not be claimed by a failed cycle
	if !r.Failed() || o.file.Refresh {
		o.writeFile(r.Combined())
	}

	if o.overlay != nil {
		o.overlay.Update(r)
	}

	if o.console != nil {
		volts, amps := r.Lines()
		fmt.Fprintf(o.console, "%s %s\n", volts, amps)
	}
}

// SetDisplay rebuilds the overlay renderer for new display settings.
func (o *outputs) SetDisplay(d *config.DisplayConfig) error {
	if o.overlay == nil {
		return nil
	}
	renderer, err := overlay.NewRenderer(d)
	if err != nil {
		return err
	}
	o.overlay.SetRenderer(renderer)
	return nil
}

// writeFile publishes line, logging the first error of an outage.
func (o *outputs) writeFile(line string) {
	if _, err := o.file.Write(line); err != nil {
		if !o.fileFailed && !o.quiet {
			log.Printf("Error writing output file: %v", err)
		}
		o.fileFailed = true
		return
	}
	o.fileFailed = false
}

// Close releases the overlay sinks.
func (o *outputs) Close() {
	if o.overlay == nil {
		return
	}
	if err := o.overlay.Close(); err != nil {
		log.Printf("Error closing overlay output: %v", err)
	}
}

// updateWidgetOnMainThread schedules a readout update on the main Fyne
// thread. Fyne widgets cannot be updated directly from the poll goroutine.
func updateWidgetOnMainThread(state *appState) func(reading.Reading) {
	return func(r reading.Reading) {
		fyne.Do(func() {
			state.last = r
			state.readout.Update(r)
		})
	}
}
