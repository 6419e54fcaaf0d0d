//go:build !linux

package overlay

import (
	"errors"
	"image"
)

var errNoFramebuffer = errors.New("overlay: framebuffer output is only supported on linux")

// FramebufferSink is unavailable on this platform.
type FramebufferSink struct{}

var _ Sink = (*FramebufferSink)(nil)

// NewFramebufferSink always fails on this platform.
func NewFramebufferSink(device string) (*FramebufferSink, error) {
	return nil, errNoFramebuffer
}

func (s *FramebufferSink) Show(image.Image) error { return errNoFramebuffer }

func (s *FramebufferSink) Close() error { return nil }
