package display

import (
	"errors"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/test"
	"github.com/itohio/gomp7100/pkg/config"
	"github.com/itohio/gomp7100/pkg/reading"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowSize_Derived(t *testing.T) {
	cfg := config.Default().Display
	size := windowSize(fyne.NewSize(300.4, 80), &cfg)
	assert.Equal(t, float32(301), size.Width)
	assert.Equal(t, float32(148), size.Height)
}

func TestWindowSize_Forced(t *testing.T) {
	cfg := config.Default().Display
	cfg.WindowWidth = 800
	size := windowSize(fyne.NewSize(300, 80), &cfg)
	assert.Equal(t, float32(800), size.Width)
	assert.Equal(t, float32(148), size.Height)

	cfg.WindowHeight = 120
	size = windowSize(fyne.NewSize(300, 80), &cfg)
	assert.Equal(t, float32(120), size.Height)
}

func TestSecondLineOffset(t *testing.T) {
	assert.Equal(t, float32(80), secondLineOffset(100))
	assert.Equal(t, float32(0), secondLineOffset(0))
}

func TestTextStyle(t *testing.T) {
	cfg := config.Default().Display
	cfg.FontWeight = 400
	assert.Equal(t, fyne.TextStyle{Monospace: true}, TextStyle(&cfg))

	cfg.FontWeight = 700
	assert.Equal(t, fyne.TextStyle{Monospace: true, Bold: true}, TextStyle(&cfg))
}

func TestReadoutWidget_Update(t *testing.T) {
	test.NewApp()
	defer test.NewApp()

	cfg := config.Default().Display
	w := New(&cfg)

	volts, amps := w.Lines()
	assert.Equal(t, " NODATA", volts)
	assert.Equal(t, " NODATA", amps)

	w.Update(reading.Reading{Volts: "12.345", Amps: "0.512"})
	volts, amps = w.Lines()
	assert.Equal(t, " 12.345V", volts)
	assert.Equal(t, "  0.512A", amps)

	w.Update(reading.Reading{Volts: reading.NoData, Amps: reading.NoData, Err: errors.New("timeout")})
	volts, _ = w.Lines()
	assert.Equal(t, " NODATA", volts)
}

func TestReadoutWidget_Renderer(t *testing.T) {
	test.NewApp()
	defer test.NewApp()

	cfg := config.Default().Display
	w := New(&cfg)
	w.Update(reading.Reading{Volts: "5.000", Amps: "1.250"})

	r := test.WidgetRenderer(w)
	objects := r.Objects()
	require.Len(t, objects, 3)

	volts, ok := objects[1].(*canvas.Text)
	require.True(t, ok)
	amps, ok := objects[2].(*canvas.Text)
	require.True(t, ok)

	assert.Equal(t, "  5.000V", volts.Text)
	assert.Equal(t, "  1.250A", amps.Text)
	assert.Equal(t, float32(cfg.FontSize), volts.TextSize)
	assert.True(t, volts.TextStyle.Monospace)

	size := r.MinSize()
	r.Layout(size)
	assert.Greater(t, amps.Position().Y, volts.Position().Y)
	assert.Less(t, amps.Position().Y, size.Height)
}
