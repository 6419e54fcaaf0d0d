package overlay

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/fogleman/gg"
	"github.com/itohio/gomp7100/pkg/config"
	"github.com/itohio/gomp7100/pkg/reading"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDisplay() *config.DisplayConfig {
	cfg := config.Default()
	return &cfg.Display
}

func TestNewRenderer_DerivedSize(t *testing.T) {
	r, err := NewRenderer(testDisplay())
	require.NoError(t, err)

	w, h := r.Size()
	assert.Greater(t, w, 0)
	assert.Greater(t, h, 0)
	assert.InDelta(t, r.lineHeight*heightFactor, float64(h), 1.0)
	assert.Greater(t, w, h, "nine characters are wider than two lines are tall")
}

func TestNewRenderer_ForcedSize(t *testing.T) {
	cfg := testDisplay()
	cfg.WindowWidth = 640
	cfg.WindowHeight = 200

	r, err := NewRenderer(cfg)
	require.NoError(t, err)

	w, h := r.Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 200, h)
}

func TestNewRenderer_FontSizeScales(t *testing.T) {
	small := testDisplay()
	small.FontSize = 20
	large := testDisplay()
	large.FontSize = 120

	rs, err := NewRenderer(small)
	require.NoError(t, err)
	rl, err := NewRenderer(large)
	require.NoError(t, err)

	ws, _ := rs.Size()
	wl, _ := rl.Size()
	assert.Greater(t, wl, ws)
}

func TestNewRenderer_MissingFont(t *testing.T) {
	cfg := testDisplay()
	cfg.FontPath = filepath.Join(t.TempDir(), "nope.ttf")

	_, err := NewRenderer(cfg)
	assert.Error(t, err)
}

func TestRenderer_Render(t *testing.T) {
	cfg := testDisplay()
	r, err := NewRenderer(cfg)
	require.NoError(t, err)

	img := r.Render(reading.Reading{Volts: "12.345", Amps: "0.512"})
	w, h := r.Size()
	assert.Equal(t, image.Rect(0, 0, w, h), img.Bounds())

	bg := config.MustColor(cfg.BackgroundColor, color.RGBA{})
	assert.Equal(t, bg, rgbaAt(img, 0, 0), "leading space leaves the corner empty")

	volts := config.MustColor(cfg.VoltsColor, color.RGBA{})
	amps := config.MustColor(cfg.AmpsColor, color.RGBA{})

	voltsMin, voltsMax := rowsWithColor(img, volts)
	ampsMin, ampsMax := rowsWithColor(img, amps)
	require.GreaterOrEqual(t, voltsMin, 0, "voltage line not drawn")
	require.GreaterOrEqual(t, ampsMin, 0, "current line not drawn")
	assert.Less(t, voltsMax, ampsMin, "voltage line is above the current line")
	assert.Less(t, ampsMax, h)
}

func TestPNGSink(t *testing.T) {
	r, err := NewRenderer(testDisplay())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "mp7100.png")
	sink := NewPNGSink(path)
	require.NoError(t, sink.Show(r.Render(reading.Placeholder())))
	require.NoError(t, sink.Close())

	img, err := gg.LoadPNG(path)
	require.NoError(t, err)
	w, h := r.Size()
	assert.Equal(t, w, img.Bounds().Dx())
	assert.Equal(t, h, img.Bounds().Dy())

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestPNGSink_BadPath(t *testing.T) {
	sink := NewPNGSink(filepath.Join(t.TempDir(), "missing", "mp7100.png"))
	assert.Error(t, sink.Show(image.NewRGBA(image.Rect(0, 0, 4, 4))))
}

type recordingSink struct {
	frames int
	last   image.Rectangle
	err    error
	closed bool
}

func (s *recordingSink) Show(img image.Image) error {
	s.frames++
	s.last = img.Bounds()
	return s.err
}

func (s *recordingSink) Close() error {
	s.closed = true
	return nil
}

func TestOverlay_Update(t *testing.T) {
	r, err := NewRenderer(testDisplay())
	require.NoError(t, err)

	good := &recordingSink{}
	bad := &recordingSink{err: errors.New("disk full")}
	o := New(r, true, good, bad)

	o.Update(reading.Reading{Volts: "5.000", Amps: "1.000"})
	o.Update(reading.Placeholder())

	assert.Equal(t, 2, good.frames)
	assert.Equal(t, 2, bad.frames, "a failing sink keeps receiving frames")
	assert.True(t, o.failed[bad])
	assert.False(t, o.failed[good])

	bad.err = nil
	o.Update(reading.Placeholder())
	assert.False(t, o.failed[bad])

	require.NoError(t, o.Close())
	assert.True(t, good.closed)
	assert.True(t, bad.closed)
}

func TestOverlay_SetRenderer(t *testing.T) {
	r, err := NewRenderer(testDisplay())
	require.NoError(t, err)

	sink := &recordingSink{}
	o := New(r, true, sink)
	o.Update(reading.Placeholder())
	w, h := r.Size()
	assert.Equal(t, image.Rect(0, 0, w, h), sink.last)

	cfg := testDisplay()
	cfg.WindowWidth = 320
	cfg.WindowHeight = 100
	resized, err := NewRenderer(cfg)
	require.NoError(t, err)

	o.SetRenderer(resized)
	o.Update(reading.Placeholder())
	assert.Equal(t, image.Rect(0, 0, 320, 100), sink.last, "next frame uses the new renderer")
}

func TestOverlay_NoSinks(t *testing.T) {
	o := New(nil, true)
	assert.NotPanics(t, func() { o.Update(reading.Placeholder()) })
	assert.NoError(t, o.Close())
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

// rowsWithColor returns the first and last row holding an exact c pixel,
// or -1, -1.
func rowsWithColor(img image.Image, c color.RGBA) (int, int) {
	first, last := -1, -1
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if rgbaAt(img, x, y) == c {
				if first < 0 {
					first = y
				}
				last = y
				break
			}
		}
	}
	return first, last
}
