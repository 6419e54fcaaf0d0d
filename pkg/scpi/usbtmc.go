package scpi

import (
	"fmt"
	"os"
	"sync"
)

// USBTMC represents an instrument bound to the kernel usbtmc driver and
// exposed as a character device such as /dev/usbtmc2. The driver frames
// each write as one bulk-out message and each read returns one bulk-in reply.
type USBTMC struct {
	path    string
	bufSize int

	file      *os.File
	buf       []byte
	mu        sync.Mutex
	connected bool
}

// NewUSBTMC creates a new USBTMC instance for the device node at path.
func NewUSBTMC(path string, bufSize int) *USBTMC {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return &USBTMC{
		path:    path,
		bufSize: bufSize,
		buf:     make([]byte, bufSize),
	}
}

// Connect opens the device node for reading and writing.
func (d *USBTMC) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return ErrAlreadyConnected
	}

	f, err := os.OpenFile(d.path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("error opening device [%s]: %w", d.path, err)
	}

	d.file = f
	d.connected = true
	return nil
}

// Close closes the device node.
func (d *USBTMC) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	err := d.file.Close()
	d.file = nil
	d.connected = false
	return err
}

// Send writes a newline terminated command.
func (d *USBTMC) Send(cmd string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return ErrNotConnected
	}

	if _, err := d.file.Write([]byte(cmd + "\n")); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	return nil
}

// Receive reads one reply line.
func (d *USBTMC) Receive() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return "", ErrNotConnected
	}

	return ReadLine(d.file, d.buf)
}

// IsConnected returns whether the device node is open.
func (d *USBTMC) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected
}
