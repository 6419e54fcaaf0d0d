package overlay

import (
	"fmt"
	"image"
	"log"
	"os"
	"sync"

	"github.com/fogleman/gg"
	"github.com/itohio/gomp7100/pkg/reading"
)

// Sink receives every rendered frame.
type Sink interface {
	Show(img image.Image) error
	Close() error
}

// PNGSink saves each frame as a PNG file for an OBS image source.
// Frames are written to Path+".tmp" and renamed so OBS never loads a
// truncated image.
type PNGSink struct {
	Path string
}

var _ Sink = (*PNGSink)(nil)

// NewPNGSink creates a sink writing to path.
func NewPNGSink(path string) *PNGSink {
	return &PNGSink{Path: path}
}

// Show writes img.
func (s *PNGSink) Show(img image.Image) error {
	tmp := s.Path + ".tmp"
	if err := gg.SavePNG(tmp, img); err != nil {
		return fmt.Errorf("failed to save %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename %s: %w", tmp, err)
	}
	return nil
}

// Close is a no-op.
func (s *PNGSink) Close() error {
	return nil
}

// Overlay renders readings and pushes the frames to its sinks.
type Overlay struct {
	renderer *Renderer
	sinks    []Sink
	quiet    bool

	mu     sync.Mutex
	failed map[Sink]bool
}

// New creates an Overlay. Sink errors are logged unless quiet is set.
func New(renderer *Renderer, quiet bool, sinks ...Sink) *Overlay {
	return &Overlay{
		renderer: renderer,
		sinks:    sinks,
		quiet:    quiet,
		failed:   make(map[Sink]bool),
	}
}

// Update renders r once and shows it on every sink. It has the shape of a
// reading.Poller callback.
func (o *Overlay) Update(r reading.Reading) {
	if len(o.sinks) == 0 {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	img := o.renderer.Render(r)

	for _, sink := range o.sinks {
		err := sink.Show(img)
		switch {
		case err != nil && !o.failed[sink]:
			// Log once per outage, not every frame
			o.failed[sink] = true
			if !o.quiet {
				log.Printf("Overlay output failed: %v", err)
			}
		case err == nil && o.failed[sink]:
			o.failed[sink] = false
			if !o.quiet {
				log.Printf("Overlay output recovered")
			}
		}
	}
}

// SetRenderer replaces the renderer used for the following frames.
func (o *Overlay) SetRenderer(renderer *Renderer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.renderer = renderer
}

// Close closes all sinks.
func (o *Overlay) Close() error {
	var firstErr error
	for _, sink := range o.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
