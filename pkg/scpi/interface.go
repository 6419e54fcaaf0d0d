package scpi

import (
	"context"
	"fmt"
	"time"

	"github.com/itohio/gomp7100/pkg/config"
)

const (
	// QueryVoltage asks the supply for its measured output voltage.
	QueryVoltage = "MEAS:VOLT?"
	// QueryCurrent asks the supply for its measured output current.
	QueryCurrent = "MEAS:CURR?"
	// QueryIdentity asks for the instrument identification string.
	QueryIdentity = "*IDN?"

	// DefaultBufferSize is the reply scratch buffer size in bytes.
	DefaultBufferSize = 100
)

// Device defines the interface for SCPI instruments (real or mocked).
type Device interface {
	Connect() error
	Close() error
	Send(cmd string) error
	Receive() (string, error)
	IsConnected() bool
}

var (
	_ Device = (*Serial)(nil)
	_ Device = (*USBTMC)(nil)
	_ Device = (*Mock)(nil)
)

// New creates the device selected by the configuration. It is not connected.
func New(cfg *config.Config) Device {
	switch cfg.DeviceKind() {
	case config.DeviceKindMock:
		return NewMock(&cfg.Mock)
	case config.DeviceKindUSBTMC:
		return NewUSBTMC(cfg.Device.Port, cfg.Poll.BufferSize)
	default:
		return NewSerial(cfg.Device.Port, cfg.Device.SerialParams, cfg.Device.ReadTimeout, cfg.Poll.BufferSize)
	}
}

// Query sends cmd, waits delay for the instrument to answer and reads the
// reply line. The wait is cut short if ctx is cancelled.
func Query(ctx context.Context, d Device, cmd string, delay time.Duration) (string, error) {
	if err := d.Send(cmd); err != nil {
		return "", fmt.Errorf("send %s: %w", cmd, err)
	}

	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	reply, err := d.Receive()
	if err != nil {
		return "", fmt.Errorf("read %s reply: %w", cmd, err)
	}
	return reply, nil
}
