package scpi

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/itohio/gomp7100/pkg/config"
)

// MockIdentity is the *IDN? reply of the simulated supply.
const MockIdentity = "OWON,SPE3051,MOCK0001,FV:V1.0"

var errMockFailure = errors.New("simulated I/O failure")

// Mock simulates an MP7100 class power supply for testing and development.
type Mock struct {
	cfg *config.MockConfig

	mu        sync.Mutex
	connected bool
	startTime time.Time
	queries   int
	pending   string
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{
			Voltage:   12.0,
			Current:   0.5,
			Noise:     0.002,
			FailEvery: 0,
		}
	}

	return &Mock{cfg: cfg}
}

// Connect simulates opening the device.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return ErrAlreadyConnected
	}

	m.connected = true
	m.startTime = time.Now()
	m.pending = ""

	return nil
}

// Close simulates closing the device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connected = false
	m.pending = ""
	return nil
}

// Send accepts a command and prepares its reply.
func (m *Mock) Send(cmd string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return ErrNotConnected
	}

	m.queries++
	if m.cfg.FailEvery > 0 && m.queries%m.cfg.FailEvery == 0 {
		m.pending = ""
		return errMockFailure
	}

	elapsed := time.Since(m.startTime).Seconds()
	switch strings.ToUpper(strings.TrimSpace(cmd)) {
	case QueryVoltage:
		m.pending = fmt.Sprintf("%.3f\n", m.cfg.Voltage+m.ripple(elapsed))
	case QueryCurrent:
		m.pending = fmt.Sprintf("%.3f\n", m.cfg.Current+m.ripple(elapsed*1.3))
	case QueryIdentity:
		m.pending = MockIdentity + "\n"
	default:
		m.pending = ""
	}

	return nil
}

// Receive returns the reply to the last command.
func (m *Mock) Receive() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return "", ErrNotConnected
	}
	if m.pending == "" {
		return "", ErrNoReply
	}

	reply := string(trimEOL([]byte(m.pending)))
	m.pending = ""
	return reply, nil
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// ripple is a deterministic pseudo noise term in [-Noise, Noise].
func (m *Mock) ripple(t float64) float64 {
	return (math.Sin(t*7.0) + math.Cos(t*11.0)) * m.cfg.Noise * 0.5
}
