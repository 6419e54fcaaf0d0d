package reading

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/itohio/gomp7100/pkg/config"
	"github.com/itohio/gomp7100/pkg/scpi"
)

// Poller owns the instrument and queries it in a loop, publishing every
// Reading to the registered callbacks.
type Poller struct {
	cfg    *config.Config
	device scpi.Device

	// failed is set after a cycle with an I/O error; the next cycle reopens
	// the device before querying.
	failed   bool
	lastGood time.Time

	callbacks []func(Reading)
	cbMu      sync.RWMutex
}

// NewPoller creates a Poller for device. The device is not opened yet.
func NewPoller(cfg *config.Config, device scpi.Device) *Poller {
	return &Poller{
		cfg:       cfg,
		device:    device,
		callbacks: make([]func(Reading), 0),
	}
}

// OnUpdate registers a callback invoked from the polling goroutine after
// every cycle. Callbacks must return quickly.
func (p *Poller) OnUpdate(callback func(Reading)) {
	p.cbMu.Lock()
	defer p.cbMu.Unlock()
	p.callbacks = append(p.callbacks, callback)
}

// Start opens the device. A failure here is fatal for the caller.
func (p *Poller) Start() error {
	if err := p.device.Connect(); err != nil {
		return err
	}
	if !p.cfg.Quiet {
		log.Printf("Device %s opened", p.describe())
	}
	return nil
}

// Run polls until ctx is cancelled, then closes the device.
// Start must have succeeded before Run is called.
func (p *Poller) Run(ctx context.Context) {
	defer func() {
		if err := p.device.Close(); err != nil {
			log.Printf("Error closing device: %v", err)
		}
	}()

	for {
		r := p.Poll(ctx)
		if ctx.Err() != nil {
			return
		}

		p.notifyCallbacks(r)

		wait := p.cfg.Poll.Interval
		if r.Failed() {
			wait = p.cfg.Poll.ErrorBackoff
		}
		if !sleep(ctx, wait) {
			return
		}
	}
}

// Poll runs one cycle: reopen the device if the previous cycle failed,
// then query voltage and current. A failed value is replaced by NoData.
func (p *Poller) Poll(ctx context.Context) Reading {
	r := Reading{Timestamp: time.Now(), Volts: NoData, Amps: NoData}

	if p.failed {
		if err := p.reopen(); err != nil {
			r.Err = err
			return r
		}
	}

	var errs []error

	volts, err := scpi.Query(ctx, p.device, scpi.QueryVoltage, p.cfg.Poll.QueryDelay)
	if err != nil {
		errs = append(errs, err)
		p.logQueryError(ctx, "voltage", err)
	} else {
		r.Volts = volts
	}

	amps, err := scpi.Query(ctx, p.device, scpi.QueryCurrent, p.cfg.Poll.QueryDelay)
	if err != nil {
		errs = append(errs, err)
		p.logQueryError(ctx, "current", err)
	} else {
		r.Amps = amps
	}

	r.Err = errors.Join(errs...)
	p.failed = r.Err != nil
	if !p.failed {
		p.lastGood = r.Timestamp
	}

	if p.cfg.Debug {
		volts, amps := r.Lines()
		log.Printf("%s | %s", volts, amps)
	}

	return r
}

// reopen closes and reopens the device after an I/O error.
func (p *Poller) reopen() error {
	if err := p.device.Close(); err != nil {
		p.logError("Error closing device: %v", err)
	}

	if err := p.device.Connect(); err != nil {
		if p.lastGood.IsZero() {
			p.logError("Error opening device %s: %v", p.describe(), err)
		} else {
			p.logError("Error opening device %s: %v (last reading %s)", p.describe(), err, humanize.Time(p.lastGood))
		}
		return fmt.Errorf("reopen: %w", err)
	}

	p.failed = false
	if !p.cfg.Quiet {
		log.Printf("Device %s reopened", p.describe())
	}
	return nil
}

// notifyCallbacks calls all registered callbacks with r.
func (p *Poller) notifyCallbacks(r Reading) {
	p.cbMu.RLock()
	callbacks := make([]func(Reading), len(p.callbacks))
	copy(callbacks, p.callbacks)
	p.cbMu.RUnlock()

	for _, callback := range callbacks {
		callback(r)
	}
}

// logQueryError reports a failed query unless it failed because of shutdown.
func (p *Poller) logQueryError(ctx context.Context, what string, err error) {
	if ctx.Err() != nil {
		return
	}
	p.logError("Error querying %s: %v", what, err)
}

func (p *Poller) logError(format string, args ...any) {
	if p.cfg.Quiet {
		return
	}
	log.Printf(format, args...)
}

func (p *Poller) describe() string {
	if p.cfg.DeviceKind() == config.DeviceKindMock {
		return "[mock]"
	}
	return "[" + p.cfg.Device.Port + "]"
}

// sleep waits for d or until ctx is cancelled. It reports whether the
// full duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
