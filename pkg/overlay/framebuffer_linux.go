//go:build linux

package overlay

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/gonutz/framebuffer"
)

// FramebufferSink draws frames straight onto a Linux framebuffer device
// such as /dev/fb0, for kiosk displays without a window system.
type FramebufferSink struct {
	mu sync.Mutex
	fb *framebuffer.Device
}

var _ Sink = (*FramebufferSink)(nil)

// NewFramebufferSink opens device.
func NewFramebufferSink(device string) (*FramebufferSink, error) {
	fb, err := framebuffer.Open(device)
	if err != nil {
		return nil, fmt.Errorf("error opening framebuffer [%s]: %w", device, err)
	}
	return &FramebufferSink{fb: fb}, nil
}

// Show draws img at the top left corner of the screen.
func (s *FramebufferSink) Show(img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fb == nil {
		return fmt.Errorf("framebuffer closed")
	}
	draw.Draw(s.fb, img.Bounds(), img, image.Point{}, draw.Src)
	return nil
}

// Close unmaps and closes the device.
func (s *FramebufferSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fb == nil {
		return nil
	}
	s.fb.Close()
	s.fb = nil
	return nil
}
