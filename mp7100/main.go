package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"github.com/itohio/gomp7100/pkg/config"
	"github.com/itohio/gomp7100/pkg/display"
	"github.com/itohio/gomp7100/pkg/reading"
	"github.com/itohio/gomp7100/pkg/scpi"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	fs := flag.NewFlagSet("mp7100", flag.ContinueOnError)
	fs.Usage = func() { printHelp(os.Stdout, fs) }

	opts, err := parseFlags(fs, os.Args[1:])
	if err != nil {
		// The flag set has already printed the problem and usage
		os.Exit(1)
	}

	if opts.version {
		fmt.Printf("Version %s\n", version)
		return
	}

	// Load configuration
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Settings are saved from the file values, not the command line overrides
	fileCfg := *cfg

	// Command line overrides the file
	opts.apply(cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Require valid device (ie, -p /dev/usbtmc2 ): %v\nExiting\n", err)
		fs.Usage()
		os.Exit(1)
	}

	device := scpi.New(cfg)
	poller := reading.NewPoller(cfg, device)
	if err := poller.Start(); err != nil {
		fmt.Printf("Error opening device: %v\n", err)
		os.Exit(1)
	}

	if opts.headless {
		runHeadless(cfg, poller)
		return
	}
	runGUI(cfg, &fileCfg, opts.configPath, poller)
}

// runHeadless polls until SIGINT or SIGTERM, feeding only the file and
// overlay outputs.
func runHeadless(cfg *config.Config, poller *reading.Poller) {
	var console io.Writer
	if cfg.Output.Image == "" && cfg.Output.Framebuffer == "" && !cfg.Quiet {
		console = os.Stdout
	}

	out, err := newOutputs(cfg, console)
	if err != nil {
		log.Fatalf("Failed to create outputs: %v", err)
	}
	defer out.Close()
	poller.OnUpdate(out.Update)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poller.Run(ctx)
	if !cfg.Quiet {
		fmt.Println("Stopped")
	}
}

// appState holds the application state.
type appState struct {
	cfg        *config.Config // running configuration, command line applied
	fileCfg    *config.Config // configuration file contents, edited by settings
	configPath string
	window     fyne.Window
	readout    *display.ReadoutWidget
	out        *outputs

	// last is the most recent reading; only touched on the main thread
	last reading.Reading
}

// runGUI shows the readout window and polls until the window is closed or
// q is pressed.
func runGUI(cfg, fileCfg *config.Config, configPath string, poller *reading.Poller) {
	out, err := newOutputs(cfg, nil)
	if err != nil {
		log.Fatalf("Failed to create outputs: %v", err)
	}
	defer out.Close()

	// Create Fyne application
	application := app.NewWithID("com.itohio.gomp7100")

	// Create main window
	window := application.NewWindow("MP7100")
	window.SetPadded(false)

	state := &appState{
		cfg:        cfg,
		fileCfg:    fileCfg,
		configPath: configPath,
		window:     window,
		out:        out,
		last:       reading.Placeholder(),
	}
	setReadout(state)

	window.Canvas().SetOnTypedRune(func(r rune) {
		switch r {
		case 'q', 'Q':
			application.Quit()
		case 's', 'S':
			showSettingsDialog(state)
		}
	})

	poller.OnUpdate(out.Update)
	poller.OnUpdate(updateWidgetOnMainThread(state))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		poller.Run(ctx)
	}()

	window.ShowAndRun()

	// Window closed: stop polling and wait for the device to be released
	cancel()
	<-done
}

// setReadout creates the readout widget for the current display settings,
// sizes the window to fit and shows the last reading.
func setReadout(state *appState) {
	displayCfg := state.cfg.Display
	readout := display.New(&displayCfg)
	readout.Update(state.last)
	state.readout = readout

	state.window.SetContent(container.NewStack(readout))
	state.window.Resize(display.WindowSize(&displayCfg))
}
