package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/itohio/gomp7100/pkg/config"
)

// options holds the command line. Zero or negative values leave the
// configuration file value in place.
type options struct {
	port         string
	serialParams string
	configPath   string
	mock         bool

	fontSize   int
	fontPath   string
	fontWeight int
	voltsColor string
	ampsColor  string
	bgColor    string
	width      int
	height     int

	intervalUS int

	outputFile  string
	refresh     bool
	image       string
	framebuffer string
	headless    bool

	debug   bool
	quiet   bool
	version bool
}

// parseFlags parses args into options using fs.
func parseFlags(fs *flag.FlagSet, args []string) (*options, error) {
	o := &options{}

	fs.StringVar(&o.port, "p", "", "Device path (e.g. /dev/usbtmc2, /dev/ttyUSB0 or COM3)")
	fs.StringVar(&o.serialParams, "s", "", "Serial parameters baud:8n1 (e.g. 115200:8n1)")
	fs.StringVar(&o.configPath, "config", "config.yaml", "Configuration file path")
	fs.BoolVar(&o.mock, "mock", false, "Use mocked device instead of a real instrument")

	fs.IntVar(&o.fontSize, "z", -1, "Font size in pt")
	fs.StringVar(&o.fontPath, "fn", "", "TrueType font file")
	fs.IntVar(&o.fontWeight, "fw", -1, "Font weight (600 and above is bold)")
	fs.StringVar(&o.voltsColor, "cv", "", "Volts colour, e.g. 0ac80a")
	fs.StringVar(&o.ampsColor, "ca", "", "Amps colour, e.g. c8c80a")
	fs.StringVar(&o.bgColor, "cb", "", "Background colour, e.g. 101010")
	fs.IntVar(&o.width, "wx", -1, "Force window width")
	fs.IntVar(&o.height, "wy", -1, "Force window height")

	fs.IntVar(&o.intervalUS, "t", -1, "Sleep delay between samples in us (default 100000)")

	fs.StringVar(&o.outputFile, "o", "", "Output text file for external tools")
	fs.BoolVar(&o.refresh, "refresh", false, "Rewrite the output file on every change")
	fs.StringVar(&o.image, "png", "", "Render the readout to a PNG file")
	fs.StringVar(&o.framebuffer, "fb", "", "Render the readout to a framebuffer device (e.g. /dev/fb0)")
	fs.BoolVar(&o.headless, "headless", false, "Run without a window")

	fs.BoolVar(&o.debug, "d", false, "Debug enabled")
	fs.BoolVar(&o.quiet, "q", false, "Quiet output")
	fs.BoolVar(&o.version, "v", false, "Show version")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		err := fmt.Errorf("unexpected arguments: %v", fs.Args())
		fmt.Fprintln(fs.Output(), err)
		fs.Usage()
		return nil, err
	}
	return o, nil
}

// apply overrides cfg with the options that were given.
func (o *options) apply(cfg *config.Config) {
	if o.port != "" {
		cfg.Device.Port = o.port
	}
	if o.serialParams != "" {
		cfg.Device.SerialParams = o.serialParams
	}
	if o.mock {
		cfg.Device.Kind = config.DeviceKindMock
	}

	if o.fontSize >= 0 {
		cfg.Display.FontSize = config.ClampFontSize(o.fontSize)
	}
	if o.fontPath != "" {
		cfg.Display.FontPath = o.fontPath
	}
	if o.fontWeight >= 0 {
		cfg.Display.FontWeight = o.fontWeight
	}
	if o.voltsColor != "" {
		cfg.Display.VoltsColor = o.voltsColor
	}
	if o.ampsColor != "" {
		cfg.Display.AmpsColor = o.ampsColor
	}
	if o.bgColor != "" {
		cfg.Display.BackgroundColor = o.bgColor
	}
	if o.width > 0 {
		cfg.Display.WindowWidth = o.width
	}
	if o.height > 0 {
		cfg.Display.WindowHeight = o.height
	}

	if o.intervalUS >= 0 {
		cfg.Poll.Interval = time.Duration(o.intervalUS) * time.Microsecond
	}

	if o.outputFile != "" {
		cfg.Output.File = o.outputFile
	}
	if o.refresh {
		cfg.Output.Refresh = true
	}
	if o.image != "" {
		cfg.Output.Image = o.image
	}
	if o.framebuffer != "" {
		cfg.Output.Framebuffer = o.framebuffer
	}

	if o.debug {
		cfg.Debug = true
	}
	if o.quiet {
		cfg.Quiet = true
	}
}

// printHelp writes the usage text.
func printHelp(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "MP7100 power supply display\nVersion %s\n\n", version)
	fmt.Fprintf(w, "Usage: mp7100 -p <device path, ie /dev/usbtmc2> [options]\n\n")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nexample: mp7100 -p /dev/usbtmc2\n")
}
