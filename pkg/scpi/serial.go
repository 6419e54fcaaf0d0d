package scpi

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"go.bug.st/serial"
)

// DefaultReadTimeout bounds how long Receive waits for reply bytes.
const DefaultReadTimeout = 500 * time.Millisecond

// Port represents a port an instrument can be attached to.
type Port struct {
	Name        string
	Description string
}

// Serial represents an instrument on a serial (tty/COM) port.
type Serial struct {
	port        string
	params      string
	readTimeout time.Duration
	bufSize     int

	conn      serial.Port
	buf       []byte
	mu        sync.RWMutex
	connected bool
}

// NewSerial creates a new Serial instance. params uses the "115200:8n1" form.
func NewSerial(port, params string, readTimeout time.Duration, bufSize int) *Serial {
	if params == "" {
		params = DefaultParams
	}
	if readTimeout == 0 {
		readTimeout = DefaultReadTimeout
	}
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	return &Serial{
		port:        port,
		params:      params,
		readTimeout: readTimeout,
		bufSize:     bufSize,
		buf:         make([]byte, bufSize),
	}
}

// Ports returns the serial ports and USBTMC devices present on this machine.
func Ports() ([]Port, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(names))
	for _, name := range names {
		result = append(result, Port{Name: name, Description: "serial"})
	}

	tmc, _ := filepath.Glob("/dev/usbtmc*")
	for _, name := range tmc {
		result = append(result, Port{Name: name, Description: "usbtmc"})
	}

	return result, nil
}

// Connect opens the serial port with the configured parameters.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return ErrAlreadyConnected
	}

	mode, err := ParseParams(d.params)
	if err != nil {
		return err
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	if err := port.SetReadTimeout(d.readTimeout); err != nil {
		port.Close()
		return fmt.Errorf("failed to set read timeout on %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	return nil
}

// Close closes the serial port.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	var err error
	if d.conn != nil {
		if err = d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}
	d.connected = false

	return err
}

// Send writes a newline terminated command.
func (d *Serial) Send(cmd string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return ErrNotConnected
	}

	// Drop stale bytes from a reply that arrived after a previous timeout
	if err := d.conn.ResetInputBuffer(); err != nil {
		return fmt.Errorf("failed to reset input buffer: %w", err)
	}

	if _, err := d.conn.Write([]byte(cmd + "\n")); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}

	return nil
}

// Receive reads one reply line.
func (d *Serial) Receive() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return "", ErrNotConnected
	}

	return ReadLine(d.conn, d.buf)
}

// IsConnected returns whether the port is currently open.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}
