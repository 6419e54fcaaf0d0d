package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/itohio/gomp7100/pkg/config"
	"github.com/itohio/gomp7100/pkg/reading"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
)

const (
	// sizingText is measured to derive the default canvas size.
	sizingText = " 00.000V "
	// heightFactor scales one text line to the height of the two line canvas.
	heightFactor = 1.85
	// boldWeight and above selects the bold embedded face.
	boldWeight = 600
)

// Renderer draws a Reading as two large text lines onto an image.
type Renderer struct {
	mu sync.Mutex

	face       font.Face
	lineHeight float64
	width      int
	height     int

	volts      color.RGBA
	amps       color.RGBA
	background color.RGBA
}

// NewRenderer loads the configured font and computes the canvas size.
func NewRenderer(cfg *config.DisplayConfig) (*Renderer, error) {
	size := float64(config.ClampFontSize(cfg.FontSize))

	face, err := loadFace(cfg.FontPath, cfg.FontWeight, size)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		face:       face,
		volts:      config.MustColor(cfg.VoltsColor, color.RGBA{10, 200, 10, 255}),
		amps:       config.MustColor(cfg.AmpsColor, color.RGBA{200, 200, 10, 255}),
		background: config.MustColor(cfg.BackgroundColor, color.RGBA{0, 0, 0, 255}),
	}

	dc := gg.NewContext(1, 1)
	dc.SetFontFace(face)
	w, h := dc.MeasureString(sizingText)
	r.lineHeight = h
	r.width = int(math.Ceil(w))
	r.height = int(math.Ceil(h * heightFactor))

	if cfg.WindowWidth > 0 {
		r.width = cfg.WindowWidth
	}
	if cfg.WindowHeight > 0 {
		r.height = cfg.WindowHeight
	}

	return r, nil
}

// loadFace opens a TrueType font file, or the embedded Go Mono face when
// path is empty.
func loadFace(path string, weight int, size float64) (font.Face, error) {
	if path != "" {
		face, err := gg.LoadFontFace(path, size)
		if err != nil {
			return nil, fmt.Errorf("error trying to open font %s: %w", path, err)
		}
		return face, nil
	}

	ttf := gomono.TTF
	if weight >= boldWeight {
		ttf = gomonobold.TTF
	}
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}

// Size returns the canvas size in pixels.
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// Render draws the voltage line at the top and the current line below it.
func (r *Renderer) Render(rd reading.Reading) image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()

	dc := gg.NewContext(r.width, r.height)
	dc.SetColor(r.background)
	dc.Clear()
	dc.SetFontFace(r.face)

	volts, amps := rd.Lines()

	dc.SetColor(r.volts)
	dc.DrawStringAnchored(volts, 0, 0, 0, 1)

	dc.SetColor(r.amps)
	dc.DrawStringAnchored(amps, 0, r.lineHeight-r.lineHeight/5, 0, 1)

	return dc.Image()
}
