package display

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/chewxy/math32"
	"github.com/itohio/gomp7100/pkg/config"
	"github.com/itohio/gomp7100/pkg/reading"
)

const (
	// sizingText is measured to derive the default window size.
	sizingText = " 00.000V "
	// heightFactor scales one text line to the height of both lines.
	heightFactor = 1.85
	// boldWeight and above renders the readout in bold.
	boldWeight = 600
)

// ReadoutWidget is a custom Fyne widget showing the voltage and current
// lines in large monospace text.
type ReadoutWidget struct {
	widget.BaseWidget

	cfg *config.DisplayConfig

	// Data (protected by mu)
	mu    sync.RWMutex
	volts string
	amps  string
}

// New creates a new ReadoutWidget showing the placeholder reading.
func New(cfg *config.DisplayConfig) *ReadoutWidget {
	w := &ReadoutWidget{cfg: cfg}
	w.volts, w.amps = reading.Placeholder().Lines()
	w.ExtendBaseWidget(w)
	return w
}

// Update shows r. This should be called from the poller callback using fyne.Do().
func (w *ReadoutWidget) Update(r reading.Reading) {
	volts, amps := r.Lines()

	w.mu.Lock()
	changed := volts != w.volts || amps != w.amps
	w.volts, w.amps = volts, amps
	w.mu.Unlock()

	// Refresh outside the lock; the renderer takes a read lock
	if changed {
		w.Refresh()
	}
}

// Lines returns the text currently shown.
func (w *ReadoutWidget) Lines() (string, string) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.volts, w.amps
}

// TextStyle returns the style used for both lines.
func (w *ReadoutWidget) TextStyle() fyne.TextStyle {
	return TextStyle(w.cfg)
}

// CreateRenderer creates the widget renderer.
func (w *ReadoutWidget) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(config.MustColor(w.cfg.BackgroundColor, color.RGBA{0, 0, 0, 255}))

	volts := canvas.NewText("", config.MustColor(w.cfg.VoltsColor, color.RGBA{10, 200, 10, 255}))
	amps := canvas.NewText("", config.MustColor(w.cfg.AmpsColor, color.RGBA{200, 200, 10, 255}))
	for _, t := range []*canvas.Text{volts, amps} {
		t.TextSize = float32(config.ClampFontSize(w.cfg.FontSize))
		t.TextStyle = w.TextStyle()
	}

	r := &readoutRenderer{
		readout:    w,
		background: bg,
		voltsText:  volts,
		ampsText:   amps,
		objects:    []fyne.CanvasObject{bg, volts, amps},
	}
	r.Refresh()
	return r
}

// TextStyle returns the monospace style for the configured weight.
func TextStyle(cfg *config.DisplayConfig) fyne.TextStyle {
	return fyne.TextStyle{Monospace: true, Bold: cfg.FontWeight >= boldWeight}
}

// WindowSize returns the window size for cfg: the size of " 00.000V " at
// the configured font size with room for the second line, unless the
// width or height is forced. A running fyne app is required.
func WindowSize(cfg *config.DisplayConfig) fyne.Size {
	size := float32(config.ClampFontSize(cfg.FontSize))
	line := fyne.MeasureText(sizingText, size, TextStyle(cfg))
	return windowSize(line, cfg)
}

func windowSize(line fyne.Size, cfg *config.DisplayConfig) fyne.Size {
	size := fyne.NewSize(math32.Ceil(line.Width), math32.Ceil(line.Height*heightFactor))
	if cfg.WindowWidth > 0 {
		size.Width = float32(cfg.WindowWidth)
	}
	if cfg.WindowHeight > 0 {
		size.Height = float32(cfg.WindowHeight)
	}
	return size
}

// secondLineOffset returns the y position of the current line for a text
// line of the given height; the lines overlap by a fifth of a line.
func secondLineOffset(lineHeight float32) float32 {
	return math32.Floor(lineHeight - lineHeight/5)
}
