package config

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// FontSizeMin and FontSizeMax bound the readout font size in points.
	FontSizeMin = 10
	FontSizeMax = 256

	// DeviceKindSerial selects a serial (tty/COM) port.
	DeviceKindSerial = "serial"
	// DeviceKindUSBTMC selects a kernel USBTMC character device (/dev/usbtmcN).
	DeviceKindUSBTMC = "usbtmc"
	// DeviceKindMock selects the simulated power supply.
	DeviceKindMock = "mock"
)

// Config represents the application configuration.
type Config struct {
	Device  DeviceConfig  `yaml:"device"`
	Display DisplayConfig `yaml:"display"`
	Poll    PollConfig    `yaml:"poll"`
	Output  OutputConfig  `yaml:"output"`
	Mock    MockConfig    `yaml:"mock"`

	Debug bool `yaml:"debug"`
	Quiet bool `yaml:"quiet"`
}

// DeviceConfig contains instrument connection configuration.
type DeviceConfig struct {
	Port         string        `yaml:"port"`          // /dev/ttyUSB0, COM4, /dev/usbtmc2
	Kind         string        `yaml:"kind"`          // serial, usbtmc, mock; empty = guess from port
	SerialParams string        `yaml:"serial_params"` // <baud>:<bits><parity><stop>, e.g. 115200:8n1
	ReadTimeout  time.Duration `yaml:"read_timeout"`
}

// DisplayConfig contains readout appearance configuration.
type DisplayConfig struct {
	FontPath        string `yaml:"font_path"` // TrueType file; empty = built-in monospace
	FontSize        int    `yaml:"font_size"`
	FontWeight      int    `yaml:"font_weight"` // >= 600 renders bold in the window
	VoltsColor      string `yaml:"volts_color"`
	AmpsColor       string `yaml:"amps_color"`
	BackgroundColor string `yaml:"background_color"`
	WindowWidth     int    `yaml:"window_width"`  // 0 = derive from font size
	WindowHeight    int    `yaml:"window_height"` // 0 = derive from font size
}

// PollConfig contains polling cadence.
type PollConfig struct {
	Interval     time.Duration `yaml:"interval"`      // Sleep between successful cycles
	QueryDelay   time.Duration `yaml:"query_delay"`   // Sleep between writing a query and reading its reply
	ErrorBackoff time.Duration `yaml:"error_backoff"` // Sleep after a failed cycle
	BufferSize   int           `yaml:"buffer_size"`   // Reply scratch buffer in bytes
}

// OutputConfig contains optional publishing targets besides the window.
type OutputConfig struct {
	File        string `yaml:"file"`        // Text line for external tools (FlexBV)
	Refresh     bool   `yaml:"refresh"`     // Rewrite File every cycle instead of only when absent
	Image       string `yaml:"image"`       // PNG rendered every cycle for an OBS image source
	Framebuffer string `yaml:"framebuffer"` // Linux framebuffer device, e.g. /dev/fb1
}

// MockConfig contains simulated power supply configuration.
type MockConfig struct {
	Voltage   float64 `yaml:"voltage"`    // Set point (V)
	Current   float64 `yaml:"current"`    // Load current (A)
	Noise     float64 `yaml:"noise"`      // Peak ripple added to both values
	FailEvery int     `yaml:"fail_every"` // Fail every Nth query (0 = never)
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Port:         "",
			Kind:         "",
			SerialParams: "9600:8n1",
			ReadTimeout:  500 * time.Millisecond,
		},
		Display: DisplayConfig{
			FontPath:        "",
			FontSize:        72,
			FontWeight:      600,
			VoltsColor:      "#0ac80a",
			AmpsColor:       "#c8c80a",
			BackgroundColor: "#000000",
		},
		Poll: PollConfig{
			Interval:     100 * time.Millisecond,
			QueryDelay:   20 * time.Millisecond,
			ErrorBackoff: time.Second,
			BufferSize:   100,
		},
		Mock: MockConfig{
			Voltage:   12.0,
			Current:   0.5,
			Noise:     0.002,
			FailEvery: 0,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the values that cannot be silently defaulted.
func (c *Config) Validate() error {
	if c.Device.Port == "" && c.DeviceKind() != DeviceKindMock {
		return fmt.Errorf("device port is required (e.g. -p /dev/usbtmc2)")
	}
	for name, hex := range map[string]string{
		"volts_color":      c.Display.VoltsColor,
		"amps_color":       c.Display.AmpsColor,
		"background_color": c.Display.BackgroundColor,
	} {
		if _, err := ParseColor(hex); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}

// DeviceKind returns the configured device kind, guessing from the port
// name when none was given.
func (c *Config) DeviceKind() string {
	switch strings.ToLower(c.Device.Kind) {
	case DeviceKindSerial:
		return DeviceKindSerial
	case DeviceKindUSBTMC:
		return DeviceKindUSBTMC
	case DeviceKindMock:
		return DeviceKindMock
	}
	if strings.Contains(c.Device.Port, "usbtmc") {
		return DeviceKindUSBTMC
	}
	return DeviceKindSerial
}

// ClampFontSize limits size to [FontSizeMin, FontSizeMax].
func ClampFontSize(size int) int {
	if size < FontSizeMin {
		return FontSizeMin
	}
	if size > FontSizeMax {
		return FontSizeMax
	}
	return size
}

// ParseColor parses "#rrggbb" or "rrggbb" into an opaque color.
func ParseColor(hex string) (color.RGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("color %q: expected 6 hex digits", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", hex, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// MustColor is ParseColor that falls back to fallback on error.
func MustColor(hex string, fallback color.RGBA) color.RGBA {
	c, err := ParseColor(hex)
	if err != nil {
		return fallback
	}
	return c
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Device.SerialParams == "" {
		c.Device.SerialParams = def.Device.SerialParams
	}
	if c.Device.ReadTimeout == 0 {
		c.Device.ReadTimeout = def.Device.ReadTimeout
	}

	if c.Display.FontSize == 0 {
		c.Display.FontSize = def.Display.FontSize
	}
	c.Display.FontSize = ClampFontSize(c.Display.FontSize)
	if c.Display.FontWeight == 0 {
		c.Display.FontWeight = def.Display.FontWeight
	}
	if c.Display.VoltsColor == "" {
		c.Display.VoltsColor = def.Display.VoltsColor
	}
	if c.Display.AmpsColor == "" {
		c.Display.AmpsColor = def.Display.AmpsColor
	}
	if c.Display.BackgroundColor == "" {
		c.Display.BackgroundColor = def.Display.BackgroundColor
	}

	if c.Poll.Interval == 0 {
		c.Poll.Interval = def.Poll.Interval
	}
	if c.Poll.QueryDelay == 0 {
		c.Poll.QueryDelay = def.Poll.QueryDelay
	}
	if c.Poll.ErrorBackoff == 0 {
		c.Poll.ErrorBackoff = def.Poll.ErrorBackoff
	}
	if c.Poll.BufferSize <= 0 {
		c.Poll.BufferSize = def.Poll.BufferSize
	}
}
