// SPDX-License-Identifier: MIT
package transport

import (
	"fmt"
	"sync"
	"time"

	applog "sidegain/internal/log"
)

// MeterPublisher periodically snapshots the peak meters and fans the frames
// out to the attached transports. It runs in a separate goroutine managed by
// Start and Stop methods. While running, it marks the display as active so
// the real-time path keeps the meters fed.
type MeterPublisher struct {
	provider   MeterProvider // Source of meter values and the display-active switch.
	transports []Transport   // Destinations for published frames.
	interval   time.Duration // The interval at which frames are sent.

	ticker   *time.Ticker   // Ticker that triggers frame publishing.
	doneChan chan struct{}  // Channel used to signal the publisher goroutine to stop.
	stopOnce sync.Once      // Ensures the stop logic runs only once per Start/Stop cycle.
	wg       sync.WaitGroup // Waits for the publisher goroutine to finish during Stop.
	mu       sync.Mutex     // Protects access to ticker and doneChan during Start/Stop.

	sequenceNum uint32 // Monotonically increasing sequence number for frames.
}

// NewMeterPublisher creates a publisher for the given provider and transports.
// If the provided interval is invalid (<= 0), it defaults to 33ms (~30Hz).
func NewMeterPublisher(interval time.Duration, provider MeterProvider, transports ...Transport) (*MeterPublisher, error) {
	if provider == nil {
		return nil, fmt.Errorf("MeterPublisher: provider cannot be nil")
	}
	if len(transports) == 0 {
		return nil, fmt.Errorf("MeterPublisher: at least one transport is required")
	}

	if interval <= 0 {
		interval = 33 * time.Millisecond
		applog.Warnf("MeterPublisher: Invalid interval provided, defaulting to %s", interval)
	}

	return &MeterPublisher{
		provider:   provider,
		transports: transports,
		interval:   interval,
	}, nil
}

// Start begins the periodic publishing process.
// It launches a goroutine that ticks at the configured interval, publishing
// one frame per tick until Stop is called.
// It is safe to call Start multiple times; subsequent calls are no-ops if already started.
func (p *MeterPublisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("MeterPublisher: Start called but already running.")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{} // Reset stopOnce for this run

	// Capture local variables for the goroutine to avoid data races on p.ticker/p.doneChan
	ticker := p.ticker
	doneChan := p.doneChan

	p.mu.Unlock()

	p.provider.SetDisplayActive(true)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Infof("MeterPublisher: Publisher goroutine started (Interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.publishFrame()
			case <-doneChan:
				applog.Debugf("MeterPublisher: Publisher goroutine received stop signal.")
				return
			}
		}
	}()
}

// Stop gracefully signals the publisher goroutine to terminate and waits for
// it to exit. The display-active flag is cleared so the real-time path can
// skip metering again.
// It is safe to call Stop multiple times; subsequent calls are no-ops.
func (p *MeterPublisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		applog.Debugf("MeterPublisher: Stop called but not running.")
		return nil
	}

	p.stopOnce.Do(func() {
		applog.Infof("MeterPublisher: Initiating stop sequence...")
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})

	p.mu.Unlock() // Unlock before waiting

	p.wg.Wait()
	p.provider.SetDisplayActive(false)
	applog.Infof("MeterPublisher: Publisher goroutine finished.")
	return nil
}

// publishFrame snapshots the meters and sends one frame to every transport.
// Per-transport errors are logged, not propagated; a slow or broken consumer
// must not stall the others.
func (p *MeterPublisher) publishFrame() {
	p.sequenceNum++
	frame := BuildFrame(p.provider.Processor(), p.sequenceNum, time.Now())

	for _, t := range p.transports {
		if err := t.Send(frame); err != nil {
			applog.Errorf("MeterPublisher: Error sending frame %d: %v", frame.Seq, err)
		}
	}
}

// Close implements the io.Closer interface. It gracefully stops the publisher goroutine.
func (p *MeterPublisher) Close() error {
	return p.Stop()
}

var _ interface{ Close() error } = (*MeterPublisher)(nil)
