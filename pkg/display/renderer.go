package display

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

// readoutRenderer renders the readout widget.
type readoutRenderer struct {
	readout *ReadoutWidget

	// Background
	background *canvas.Rectangle

	voltsText *canvas.Text
	ampsText  *canvas.Text

	// Objects list for Fyne
	objects []fyne.CanvasObject
}

// MinSize returns the minimum size of the widget.
func (r *readoutRenderer) MinSize() fyne.Size {
	return windowSize(r.voltsText.MinSize(), r.readout.cfg)
}

// Layout arranges the widget components.
func (r *readoutRenderer) Layout(size fyne.Size) {
	// Background fills entire widget
	r.background.Resize(size)

	line := r.voltsText.MinSize()
	r.voltsText.Move(fyne.NewPos(0, 0))
	r.voltsText.Resize(line)

	r.ampsText.Move(fyne.NewPos(0, secondLineOffset(line.Height)))
	r.ampsText.Resize(r.ampsText.MinSize())
}

// Refresh updates the widget display.
func (r *readoutRenderer) Refresh() {
	volts, amps := r.readout.Lines()

	r.voltsText.Text = volts
	r.ampsText.Text = amps

	r.background.Refresh()
	r.voltsText.Refresh()
	r.ampsText.Refresh()
}

// Objects returns the canvas objects.
func (r *readoutRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy is called when the renderer is destroyed.
func (r *readoutRenderer) Destroy() {}
