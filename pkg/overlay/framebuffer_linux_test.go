//go:build linux

package overlay

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFramebufferSink_Missing(t *testing.T) {
	_, err := NewFramebufferSink(filepath.Join(t.TempDir(), "fb9"))
	assert.Error(t, err)
}

func TestFramebufferSink_ClosedSink(t *testing.T) {
	s := &FramebufferSink{}
	assert.Error(t, s.Show(nil))
	assert.NoError(t, s.Close())
}
